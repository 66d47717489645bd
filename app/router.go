package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	authhandlers "github.com/Black-And-White-Club/gamezone-api/app/modules/auth/infrastructure/handlers"
	"github.com/Black-And-White-Club/gamezone-api/internal/httpjson"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const healthCheckTimeout = 3 * time.Second

func newRouter(allowedOrigins []string) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(authhandlers.CORSMiddleware(allowedOrigins))
	return r
}

// HealthChecker is satisfied by anything /healthz should probe.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type pingChecker struct{ ping func(ctx context.Context) error }

func (p pingChecker) HealthCheck(ctx context.Context) error { return p.ping(ctx) }

func (app *App) mountHealth() {
	checks := map[string]HealthChecker{
		"database":    pingChecker{ping: app.DB.PingContext},
		"leaderboard": app.Modules.Leaderboard,
	}
	app.Router.Get("/healthz", HealthHandler(checks, app.Obs.Logger))
}

// HealthHandler reports 200 when every check passes and 503 naming the first
// failures otherwise.
func HealthHandler(checks map[string]HealthChecker, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		failed := map[string]string{}
		for name, check := range checks {
			if err := check.HealthCheck(ctx); err != nil {
				logger.WarnContext(ctx, "Health check failed",
					slog.String("check", name),
					slog.Any("error", err),
				)
				failed[name] = err.Error()
			}
		}

		if len(failed) > 0 {
			httpjson.Write(w, http.StatusServiceUnavailable, map[string]any{
				"status": "unavailable",
				"failed": failed,
			})
			return
		}
		httpjson.Write(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// mountStatic serves the front-end bundle for every path no API route claims.
func (app *App) mountStatic() {
	dir := app.Config.HTTP.StaticDir
	if dir == "" {
		return
	}
	app.Obs.Logger.Info("Serving static files", slog.String("dir", dir))
	app.Router.Handle("/*", http.FileServer(http.Dir(dir)))
}
