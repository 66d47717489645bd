package userhandlers

import (
	authhandlers "github.com/Black-And-White-Club/gamezone-api/app/modules/auth/infrastructure/handlers"
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the user endpoints under /api. Signup and login are
// rate limited per client IP when limiter is set.
func (h *UserHandlers) RegisterRoutes(r chi.Router, auth *authhandlers.Authenticator, limiter *authhandlers.IPRateLimiter) {
	r.Group(func(r chi.Router) {
		if limiter != nil {
			r.Use(authhandlers.RateLimitMiddleware(limiter))
		}
		r.Post("/api/signup", h.HandleSignup)
		r.Post("/api/login", h.HandleLogin)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser)
		r.Post("/api/logout", h.HandleLogout)
		r.Get("/api/profile", h.HandleGetProfile)
		r.Put("/api/profile", h.HandleUpdateProfile)
		r.Delete("/api/profile", h.HandleDeleteProfile)
		r.Post("/api/update-stats", h.HandleUpdateStats)
		r.Get("/api/user-stats", h.HandleGetStats)

		r.Group(func(r chi.Router) {
			r.Use(authhandlers.RequireAdmin)
			r.Get("/api/admin/users", h.HandleListUsers)
			r.Delete("/api/admin/users/{userID}", h.HandleDeleteUser)
		})
	})
}
