// Package server binds the storefront handler to a port and drains it on
// shutdown.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/logger"
)

// ShutdownTimeout bounds how long in-flight requests may run after the
// context is cancelled.
var ShutdownTimeout = 10 * time.Second

// Start serves handler on addr until ctx is cancelled, then shuts down
// gracefully.
func Start(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server: listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("server: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server: forced shutdown", "error", err)
		return err
	}
	logger.Info("server: stopped")
	return nil
}
