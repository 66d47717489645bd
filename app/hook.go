package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const shutdownTimeout = 10 * time.Second

// WaitForShutdown blocks until a signal, ctx cancellation or a listener
// failure, then drains the servers and closes the application.
func (app *App) WaitForShutdown(ctx context.Context, errCh <-chan error, servers ...*http.Server) error {
	logger := app.Obs.Logger

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	var runErr error
	select {
	case sig := <-interrupt:
		logger.Info("Shutting down application", slog.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Info("Application context cancelled")
	case runErr = <-errCh:
		logger.Error("HTTP server failed", slog.Any("error", runErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	errs := []error{runErr}
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
	}
	errs = append(errs, app.Close(shutdownCtx))

	err := errors.Join(errs...)
	if err != nil {
		logger.Error("Application shut down with errors", slog.Any("error", err))
		return err
	}
	logger.Info("Application shut down gracefully")
	return nil
}
