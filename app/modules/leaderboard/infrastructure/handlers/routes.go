package leaderboardhandlers

import (
	authhandlers "github.com/Black-And-White-Club/gamezone-api/app/modules/auth/infrastructure/handlers"
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the public leaderboard reads and the admin-only
// reset and export endpoints.
func (h *LeaderboardHandlers) RegisterRoutes(r chi.Router, auth *authhandlers.Authenticator) {
	r.Get("/api/leaderboard", h.HandleGetLeaderboard)
	r.Get("/api/leaderboard/epoch", h.HandleGetEpoch)
	r.Get("/api/leaderboard/chart.png", h.HandleGetChart)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser, authhandlers.RequireAdmin)
		r.Post("/api/reset-leaderboard", h.HandleManualReset)
		r.Get("/api/admin/leaderboard/export.xlsx", h.HandleExport)
	})
}
