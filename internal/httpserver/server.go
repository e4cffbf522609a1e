// Package httpserver runs an HTTP server with signal-driven graceful
// shutdown, shared by every service binary.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const shutdownTimeout = 5 * time.Second

// StartWithGracefulShutdown serves handler on addr until SIGINT or SIGTERM,
// then drains in-flight requests before returning.
func StartWithGracefulShutdown(addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	errc := make(chan error, 1)
	go func() {
		log.Printf("starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errc:
		return fmt.Errorf("server failed: %w", err)
	case <-stop:
	}

	log.Println("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("server gracefully stopped")
	return nil
}

// Config represents common HTTP server configuration.
type Config interface {
	GetListenAddress() string
	GetListenPort() int
}

// StartFromConfig starts an HTTP server using a Config interface.
func StartFromConfig(cfg Config, handler http.Handler) error {
	addr := fmt.Sprintf("%s:%d", cfg.GetListenAddress(), cfg.GetListenPort())
	return StartWithGracefulShutdown(addr, handler)
}
