package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/vincave/vincave/internal/api/response"
	"github.com/vincave/vincave/internal/cache"
	"github.com/vincave/vincave/internal/readiness"
	"github.com/vincave/vincave/internal/store"
	"github.com/vincave/vincave/pkg/models"
)

const snapshotTTL = 30 * time.Minute

// BackfillRunner defines the interface the handler depends on.
type BackfillRunner interface {
	Run(ctx context.Context, params readiness.RunParams) (*readiness.RunResult, error)
}

// NewBackfillHandler returns an http.HandlerFunc for POST /api/v1/admin/backfill.
// It runs one invocation of the readiness backfill engine and mirrors the
// result to the cache for cheap polling.
func NewBackfillHandler(engine BackfillRunner, c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			JobID      string `json:"job_id"`
			Mode       string `json:"mode"`
			BatchSize  int    `json:"batch_size"`
			MaxBatches int    `json:"max_batches"`
		}
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
				return
			}
		}

		params := readiness.RunParams{
			BatchSize:  req.BatchSize,
			MaxBatches: req.MaxBatches,
		}

		if req.JobID != "" {
			jobID, err := uuid.Parse(req.JobID)
			if err != nil {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "job_id must be a valid UUID", nil)
				return
			}
			params.JobID = &jobID
		} else {
			if req.Mode != "" && !models.ValidBackfillMode(req.Mode) {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
					"mode must be one of missing_only, stale_or_missing, force_all", nil)
				return
			}
			params.Mode = models.BackfillMode(req.Mode)
		}

		result, err := engine.Run(r.Context(), params)
		if err != nil {
			switch {
			case errors.Is(err, readiness.ErrNotAdmin):
				response.Error(w, http.StatusForbidden, "FORBIDDEN",
					"Backfill requires an administrator account", nil)
			case errors.Is(err, readiness.ErrJobNotFound):
				response.Error(w, http.StatusNotFound, "JOB_NOT_FOUND",
					"No backfill job with that id", nil)
			case errors.Is(err, readiness.ErrInvalidMode):
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
					"mode must be one of missing_only, stale_or_missing, force_all", nil)
			default:
				response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
					"An unexpected error occurred", nil)
			}
			return
		}

		// Best-effort snapshot for pollers; failure here never fails the run.
		if snapshot, err := json.Marshal(result); err == nil {
			_ = c.SetBackfillSnapshot(r.Context(), result.JobID, snapshot, snapshotTTL)
		}

		response.JSON(w, result)
	}
}

// NewBackfillStatusHandler returns an http.HandlerFunc for
// GET /api/v1/admin/backfill/{jobID}. It serves the cached run snapshot when
// present and falls back to the job row.
func NewBackfillStatusHandler(s store.Store, c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID, err := uuid.Parse(chi.URLParam(r, "jobID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "jobID must be a valid UUID", nil)
			return
		}

		if snapshot, ok, err := c.GetBackfillSnapshot(r.Context(), jobID); err == nil && ok {
			var cached json.RawMessage = snapshot
			response.JSON(w, cached)
			return
		}

		job, err := s.GetBackfillJob(r.Context(), jobID)
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "JOB_NOT_FOUND", "No backfill job with that id", nil)
			return
		}
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}

		response.JSON(w, job)
	}
}
