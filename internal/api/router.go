package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	mw "github.com/vincave/vincave/internal/api/middleware"
	"github.com/vincave/vincave/internal/api/response"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	Auth      *mw.Auth
	RateLimit *mw.RateLimit

	HealthHandler http.HandlerFunc

	CreateBottle http.HandlerFunc
	ListBottles  http.HandlerFunc
	GetBottle    http.HandlerFunc
	UpdateBottle http.HandlerFunc
	DeleteBottle http.HandlerFunc

	CreateWine      http.HandlerFunc
	GetWine         http.HandlerFunc
	GenerateProfile http.HandlerFunc

	BackfillHandler       http.HandlerFunc
	BackfillStatusHandler http.HandlerFunc
	CreateKeyHandler      http.HandlerFunc
	ListKeysHandler       http.HandlerFunc
	RevokeKeyHandler      http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	// Public health check
	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Authenticate)
		r.Use(deps.RateLimit.Limit)

		r.Post("/api/v1/bottles", orNotImplemented(deps.CreateBottle))
		r.Get("/api/v1/bottles", orNotImplemented(deps.ListBottles))
		r.Get("/api/v1/bottles/{bottleID}", orNotImplemented(deps.GetBottle))
		r.Patch("/api/v1/bottles/{bottleID}", orNotImplemented(deps.UpdateBottle))
		r.Delete("/api/v1/bottles/{bottleID}", orNotImplemented(deps.DeleteBottle))

		r.Post("/api/v1/wines", orNotImplemented(deps.CreateWine))
		r.Get("/api/v1/wines/{wineID}", orNotImplemented(deps.GetWine))
		r.Post("/api/v1/wines/{wineID}/profile", orNotImplemented(deps.GenerateProfile))

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.RequireScope("admin"))

			r.Post("/api/v1/admin/backfill", orNotImplemented(deps.BackfillHandler))
			r.Get("/api/v1/admin/backfill/{jobID}", orNotImplemented(deps.BackfillStatusHandler))

			r.Post("/api/v1/admin/keys", orNotImplemented(deps.CreateKeyHandler))
			r.Get("/api/v1/admin/keys", orNotImplemented(deps.ListKeysHandler))
			r.Delete("/api/v1/admin/keys/{keyID}", orNotImplemented(deps.RevokeKeyHandler))
		})
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
