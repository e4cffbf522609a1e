package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/benchbus/benchbus/internal/awg"
	"github.com/benchbus/benchbus/internal/bus"
	"github.com/benchbus/benchbus/internal/dmm"
	"github.com/benchbus/benchbus/internal/instrument"
	"github.com/benchbus/benchbus/internal/validate"
)

type jsonResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type instrumentStatus struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Connected bool   `json:"connected"`
}

type functionRequest struct {
	Function  string `json:"function"`
	Secondary bool   `json:"secondary,omitempty"`
}

type waveformRequest struct {
	Channel   int      `json:"channel"`
	Waveform  string   `json:"waveform,omitempty"`
	Frequency *float64 `json:"frequency,omitempty"`
	Amplitude *float64 `json:"amplitude,omitempty"`
	Offset    *float64 `json:"offset,omitempty"`
	Phase     *float64 `json:"phase,omitempty"`
	DutyCycle *float64 `json:"dutyCycle,omitempty"`
	Symmetry  *float64 `json:"symmetry,omitempty"`
}

type outputRequest struct {
	Channel int  `json:"channel"`
	On      bool `json:"on"`
}

type measurementResponse struct {
	Primary   float64  `json:"primary"`
	Secondary *float64 `json:"secondary,omitempty"`
}

func (s *Server) sendJSON(w http.ResponseWriter, httpCode int, status, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpCode)
	if err := json.NewEncoder(w).Encode(jsonResponse{
		Status:  status,
		Message: message,
		Data:    data,
	}); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// sendError maps the error taxonomy onto HTTP status codes: rejected values
// are the client's fault, missing features are unimplemented, and anything
// touching the bus is a server-side failure.
func (s *Server) sendError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, validate.ErrValidation):
		s.sendJSON(w, http.StatusBadRequest, "error", err.Error(), nil)
	case errors.Is(err, instrument.ErrUnsupported):
		s.sendJSON(w, http.StatusNotImplemented, "error", err.Error(), nil)
	case errors.Is(err, bus.ErrNotConnected):
		s.sendJSON(w, http.StatusConflict, "error", err.Error(), nil)
	default:
		s.sendJSON(w, http.StatusInternalServerError, "error", err.Error(), nil)
	}
}

func (s *Server) instrumentFromRequest(w http.ResponseWriter, r *http.Request) (instrument.Device, bool) {
	name := chi.URLParam(r, "name")
	dev, ok := s.instruments[name]
	if !ok {
		s.sendJSON(w, http.StatusNotFound, "error", "no such instrument: "+name, nil)
		return nil, false
	}
	return dev, true
}

func (s *Server) listInstrumentsHandler(w http.ResponseWriter, r *http.Request) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	statuses := make([]instrumentStatus, 0, len(s.instruments))
	for name, dev := range s.instruments {
		statuses = append(statuses, instrumentStatus{
			Name:      name,
			Type:      s.cfg.Instruments[name].Type,
			Connected: dev.Connected(),
		})
	}
	s.sendJSON(w, http.StatusOK, "ok", "", statuses)
}

func (s *Server) connectHandler(w http.ResponseWriter, r *http.Request) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	dev, ok := s.instrumentFromRequest(w, r)
	if !ok {
		return
	}

	if err := dev.Connect(); err != nil {
		s.sendError(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, "ok", "", nil)
}

func (s *Server) disconnectHandler(w http.ResponseWriter, r *http.Request) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	dev, ok := s.instrumentFromRequest(w, r)
	if !ok {
		return
	}

	if err := dev.Disconnect(); err != nil {
		s.sendError(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, "ok", "", nil)
}

func (s *Server) identityHandler(w http.ResponseWriter, r *http.Request) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	dev, ok := s.instrumentFromRequest(w, r)
	if !ok {
		return
	}

	idn, err := dev.Identify()
	if err != nil {
		s.sendError(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, "ok", "", map[string]string{"identity": idn})
}

func (s *Server) resetHandler(w http.ResponseWriter, r *http.Request) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	dev, ok := s.instrumentFromRequest(w, r)
	if !ok {
		return
	}

	type resetter interface{ Reset() error }
	rst, ok := dev.(resetter)
	if !ok {
		s.sendJSON(w, http.StatusNotImplemented, "error", "instrument cannot be reset", nil)
		return
	}

	if err := rst.Reset(); err != nil {
		s.sendError(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, "ok", "", nil)
}

func (s *Server) measureHandler(w http.ResponseWriter, r *http.Request) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	dev, ok := s.instrumentFromRequest(w, r)
	if !ok {
		return
	}

	meter, ok := dev.(dmm.Multimeter)
	if !ok {
		s.sendJSON(w, http.StatusNotImplemented, "error", "instrument is not a multimeter", nil)
		return
	}

	switch r.URL.Query().Get("display") {
	case "", "primary":
		v, err := meter.Primary()
		if err != nil {
			s.sendError(w, err)
			return
		}
		s.sendJSON(w, http.StatusOK, "ok", "", measurementResponse{Primary: v})
	case "secondary":
		v, err := meter.Secondary()
		if err != nil {
			s.sendError(w, err)
			return
		}
		s.sendJSON(w, http.StatusOK, "ok", "", measurementResponse{Secondary: &v})
	case "both":
		primary, secondary, err := meter.Both()
		if err != nil {
			s.sendError(w, err)
			return
		}
		s.sendJSON(w, http.StatusOK, "ok", "", measurementResponse{Primary: primary, Secondary: &secondary})
	default:
		s.sendJSON(w, http.StatusBadRequest, "error", "display must be primary, secondary or both", nil)
	}
}

func (s *Server) functionHandler(w http.ResponseWriter, r *http.Request) {
	var req functionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSON(w, http.StatusBadRequest, "error", "failed to decode request body", nil)
		return
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	dev, ok := s.instrumentFromRequest(w, r)
	if !ok {
		return
	}

	meter, ok := dev.(dmm.Multimeter)
	if !ok {
		s.sendJSON(w, http.StatusNotImplemented, "error", "instrument is not a multimeter", nil)
		return
	}

	var err error
	if req.Secondary {
		err = meter.SetSecondaryFunction(req.Function)
	} else {
		err = meter.SetFunction(req.Function)
	}
	if err != nil {
		s.sendError(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, "ok", "", nil)
}

func (s *Server) waveformHandler(w http.ResponseWriter, r *http.Request) {
	var req waveformRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSON(w, http.StatusBadRequest, "error", "failed to decode request body", nil)
		return
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	dev, ok := s.instrumentFromRequest(w, r)
	if !ok {
		return
	}

	gen, ok := dev.(awg.WaveformGenerator)
	if !ok {
		s.sendJSON(w, http.StatusNotImplemented, "error", "instrument is not a waveform generator", nil)
		return
	}

	err := gen.ConfigureWaveform(req.Channel, awg.WaveformConfig{
		Waveform:  req.Waveform,
		Frequency: req.Frequency,
		Amplitude: req.Amplitude,
		Offset:    req.Offset,
		Phase:     req.Phase,
		DutyCycle: req.DutyCycle,
		Symmetry:  req.Symmetry,
	})
	if err != nil {
		s.sendError(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, "ok", "", nil)
}

func (s *Server) outputHandler(w http.ResponseWriter, r *http.Request) {
	var req outputRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSON(w, http.StatusBadRequest, "error", "failed to decode request body", nil)
		return
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	dev, ok := s.instrumentFromRequest(w, r)
	if !ok {
		return
	}

	type outputSwitcher interface {
		SetOutput(ch int, on bool) error
	}
	sw, ok := dev.(outputSwitcher)
	if !ok {
		s.sendJSON(w, http.StatusNotImplemented, "error", "instrument has no switchable output", nil)
		return
	}

	if err := sw.SetOutput(req.Channel, req.On); err != nil {
		s.sendError(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, "ok", "", nil)
}
