// Package api exposes configured bench instruments over HTTP.
package api

import (
	"fmt"
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/benchbus/benchbus/internal/awg"
	"github.com/benchbus/benchbus/internal/dmm"
	"github.com/benchbus/benchbus/internal/httpserver"
	"github.com/benchbus/benchbus/internal/instrument"
	"github.com/benchbus/benchbus/internal/psu"
)

// Server serves the instrument control API. Bus traffic is serialized with
// a single mutex: these are slow serial-class devices, and interleaved
// command/response exchanges would corrupt each other.
type Server struct {
	cfg         *Config
	instruments map[string]instrument.Device
	mutex       sync.Mutex
	router      *chi.Mux
}

// newDevice builds the facade for one configured instrument.
func newDevice(cfg InstrumentConfig) (instrument.Device, error) {
	opts := cfg.connectOptions()

	switch cfg.Type {
	case "fluke45":
		return dmm.NewFluke45(opts), nil
	case "fluke8845":
		return dmm.NewFluke8845(opts), nil
	case "sdg2042x":
		return awg.NewSDG2042X(opts), nil
	case "pm5139":
		return awg.NewPM5139(opts), nil
	case "dp800":
		return psu.NewDP800(opts), nil
	default:
		return nil, fmt.Errorf("unknown instrument type: %s", cfg.Type)
	}
}

// NewServer creates a new Server instance from the configured instruments.
func NewServer(cfg *Config) (*Server, error) {
	instruments := make(map[string]instrument.Device, len(cfg.Instruments))
	for name, icfg := range cfg.Instruments {
		dev, err := newDevice(icfg)
		if err != nil {
			return nil, fmt.Errorf("instrument %s: %w", name, err)
		}
		instruments[name] = dev
	}

	s := &Server{
		cfg:         cfg,
		instruments: instruments,
		router:      chi.NewRouter(),
	}

	s.router.Use(middleware.Logger)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	s.router.Get("/instruments", s.listInstrumentsHandler)
	s.router.Route("/instruments/{name}", func(r chi.Router) {
		r.Post("/connect", s.connectHandler)
		r.Post("/disconnect", s.disconnectHandler)
		r.Get("/identity", s.identityHandler)
		r.Post("/reset", s.resetHandler)
		r.Get("/measure", s.measureHandler)
		r.Post("/function", s.functionHandler)
		r.Post("/waveform", s.waveformHandler)
		r.Post("/output", s.outputHandler)
	})

	return s, nil
}

// Start starts the API server and blocks until shutdown.
func (s *Server) Start() error {
	defer s.Close()
	return httpserver.StartFromConfig(s.cfg, s.router)
}

// Close disconnects every instrument, reporting all failures together.
func (s *Server) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	names := make([]string, 0, len(s.instruments))
	for name := range s.instruments {
		names = append(names, name)
	}
	sort.Strings(names)

	ec := NewErrorCollector()
	for _, name := range names {
		dev := s.instruments[name]
		if !dev.Connected() {
			continue
		}
		ec.Add(name, dev.Disconnect())
	}
	return ec.Result("failed to disconnect instruments")
}
