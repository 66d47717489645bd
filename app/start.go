package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const readHeaderTimeout = 5 * time.Second

// Start runs the leaderboard scheduler and the HTTP listeners, then blocks
// until ctx is cancelled or a shutdown signal arrives.
func (app *App) Start(ctx context.Context) error {
	logger := app.Obs.Logger

	if err := app.Modules.Leaderboard.Run(ctx); err != nil {
		return fmt.Errorf("failed to start leaderboard module: %w", err)
	}

	srv := &http.Server{
		Addr:              app.Config.HTTP.Address,
		Handler:           app.Router,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	servers := []*http.Server{srv}

	if addr := app.Config.Observability.MetricsAddress; addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(app.Obs.Registry, promhttp.HandlerOpts{}))
		servers = append(servers, &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: readHeaderTimeout,
		})
	}

	errCh := make(chan error, len(servers))
	for _, s := range servers {
		go func(s *http.Server) {
			logger.Info("Starting HTTP server", slog.String("address", s.Addr))
			if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("listen on %s: %w", s.Addr, err)
			}
		}(s)
	}

	return app.WaitForShutdown(ctx, errCh, servers...)
}
