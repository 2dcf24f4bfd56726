package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	mw "github.com/vincave/vincave/internal/api/middleware"
	"github.com/vincave/vincave/internal/api/response"
	"github.com/vincave/vincave/internal/store"
	"github.com/vincave/vincave/pkg/models"
)

// NewCreateBottleHandler returns an http.HandlerFunc for POST /api/v1/bottles.
func NewCreateBottleHandler(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
			return
		}

		var req struct {
			WineID        string   `json:"wine_id"`
			PurchasePrice *float64 `json:"purchase_price"`
			Location      string   `json:"location"`
			Notes         string   `json:"notes"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		wineID, err := uuid.Parse(req.WineID)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "wine_id must be a valid UUID", nil)
			return
		}

		if _, err := s.GetWine(r.Context(), wineID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "wine_id does not reference a known wine", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", nil)
			return
		}

		now := time.Now().UTC()
		bottle := &models.Bottle{
			ID:            uuid.New(),
			UserID:        userID,
			WineID:        wineID,
			PurchasePrice: req.PurchasePrice,
			Location:      req.Location,
			Notes:         req.Notes,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.CreateBottle(r.Context(), bottle); err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", nil)
			return
		}

		response.Created(w, bottle)
	}
}

// NewListBottlesHandler returns an http.HandlerFunc for GET /api/v1/bottles.
func NewListBottlesHandler(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
			return
		}

		q := r.URL.Query()
		filter := store.BottleFilter{
			UserID:   userID,
			Location: q.Get("location"),
			Status:   q.Get("status"),
			Page:     intQuery(q.Get("page"), 1),
			Limit:    intQuery(q.Get("limit"), 20),
		}
		if wineID, err := uuid.Parse(q.Get("wine_id")); err == nil {
			filter.WineID = wineID
		}

		bottles, total, err := s.ListBottles(r.Context(), filter)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", nil)
			return
		}
		if bottles == nil {
			bottles = []*models.Bottle{}
		}

		response.Collection(w, bottles, response.PaginationMeta{
			Page:    filter.Page,
			Limit:   filter.Limit,
			Total:   total,
			HasNext: filter.Page*filter.Limit < total,
		})
	}
}

// NewGetBottleHandler returns an http.HandlerFunc for GET /api/v1/bottles/{bottleID}.
func NewGetBottleHandler(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
			return
		}

		bottleID, err := uuid.Parse(chi.URLParam(r, "bottleID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "bottleID must be a valid UUID", nil)
			return
		}

		bottle, err := s.GetBottle(r.Context(), bottleID, userID)
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "Bottle not found", nil)
			return
		}
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", nil)
			return
		}

		response.JSON(w, bottle)
	}
}

// NewUpdateBottleHandler returns an http.HandlerFunc for PATCH /api/v1/bottles/{bottleID}.
// Only the user-editable details are writable here; readiness fields belong
// to the backfill engine.
func NewUpdateBottleHandler(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
			return
		}

		bottleID, err := uuid.Parse(chi.URLParam(r, "bottleID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "bottleID must be a valid UUID", nil)
			return
		}

		bottle, err := s.GetBottle(r.Context(), bottleID, userID)
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "Bottle not found", nil)
			return
		}
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", nil)
			return
		}

		var req struct {
			PurchasePrice *float64 `json:"purchase_price"`
			Location      *string  `json:"location"`
			Notes         *string  `json:"notes"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		if req.PurchasePrice != nil {
			bottle.PurchasePrice = req.PurchasePrice
		}
		if req.Location != nil {
			bottle.Location = *req.Location
		}
		if req.Notes != nil {
			bottle.Notes = *req.Notes
		}

		if err := s.UpdateBottleDetails(r.Context(), bottle); err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", nil)
			return
		}

		response.JSON(w, bottle)
	}
}

// NewDeleteBottleHandler returns an http.HandlerFunc for DELETE /api/v1/bottles/{bottleID}.
func NewDeleteBottleHandler(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
			return
		}

		bottleID, err := uuid.Parse(chi.URLParam(r, "bottleID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "bottleID must be a valid UUID", nil)
			return
		}

		err = s.DeleteBottle(r.Context(), bottleID, userID)
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "Bottle not found", nil)
			return
		}
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", nil)
			return
		}

		response.NoContent(w)
	}
}

func intQuery(v string, defaultVal int) int {
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return defaultVal
	}
	return n
}
