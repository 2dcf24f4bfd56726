package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/vincave/vincave/internal/ai"
	"github.com/vincave/vincave/internal/api/response"
	"github.com/vincave/vincave/internal/store"
	"github.com/vincave/vincave/pkg/models"
)

// NewCreateWineHandler returns an http.HandlerFunc for POST /api/v1/wines.
func NewCreateWineHandler(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name     string   `json:"name"`
			Producer string   `json:"producer"`
			Vintage  *int     `json:"vintage"`
			Color    string   `json:"color"`
			Region   string   `json:"region"`
			Country  string   `json:"country"`
			Grapes   []string `json:"grapes"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		if req.Name == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "name is required", nil)
			return
		}

		now := time.Now().UTC()
		wine := &models.Wine{
			ID:        uuid.New(),
			Name:      req.Name,
			Producer:  req.Producer,
			Vintage:   req.Vintage,
			Color:     models.ParseColor(req.Color),
			Region:    req.Region,
			Country:   req.Country,
			Grapes:    req.Grapes,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if wine.Grapes == nil {
			wine.Grapes = []string{}
		}
		if err := s.CreateWine(r.Context(), wine); err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", nil)
			return
		}

		response.Created(w, wine)
	}
}

// NewGetWineHandler returns an http.HandlerFunc for GET /api/v1/wines/{wineID}.
func NewGetWineHandler(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wineID, err := uuid.Parse(chi.URLParam(r, "wineID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "wineID must be a valid UUID", nil)
			return
		}

		wine, err := s.GetWine(r.Context(), wineID)
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "Wine not found", nil)
			return
		}
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", nil)
			return
		}

		response.JSON(w, wine)
	}
}

// ProfileTrigger defines the interface the profile handler depends on.
type ProfileTrigger interface {
	TriggerProfile(ctx context.Context, wineID uuid.UUID) error
}

// NewGenerateProfileHandler returns an http.HandlerFunc for
// POST /api/v1/wines/{wineID}/profile. Profile synthesis is best-effort and
// asynchronous; the handler only confirms the dispatch.
func NewGenerateProfileHandler(svc ProfileTrigger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wineID, err := uuid.Parse(chi.URLParam(r, "wineID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "wineID must be a valid UUID", nil)
			return
		}

		err = svc.TriggerProfile(r.Context(), wineID)
		if err != nil {
			switch {
			case errors.Is(err, store.ErrNotFound):
				response.Error(w, http.StatusNotFound, "NOT_FOUND", "Wine not found", nil)
			case errors.Is(err, ai.ErrProviderUnavailable):
				response.Error(w, http.StatusBadGateway, "AI_PROVIDER_UNAVAILABLE",
					"The AI provider is not available", nil)
			default:
				response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
					"An unexpected error occurred", nil)
			}
			return
		}

		response.Accepted(w, map[string]any{
			"wine_id": wineID,
			"status":  "generating",
		})
	}
}
