package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vincave/vincave/internal/api"
	mw "github.com/vincave/vincave/internal/api/middleware"
	"github.com/vincave/vincave/internal/cache"
	"github.com/vincave/vincave/internal/store"
	"github.com/vincave/vincave/pkg/models"
)

// --- stub store that returns empty results (all auth fails) ---

type stubStore struct{}

func (s *stubStore) Ping(_ context.Context) error { return nil }
func (s *stubStore) GetUser(_ context.Context, _ uuid.UUID) (*models.User, error) {
	return nil, store.ErrNotFound
}
func (s *stubStore) GetAPIKeyByPrefix(_ context.Context, _ string) ([]*models.APIKey, error) {
	return nil, nil
}
func (s *stubStore) UpdateAPIKeyLastUsed(_ context.Context, _ uuid.UUID) error { return nil }
func (s *stubStore) CreateAPIKey(_ context.Context, _ *models.APIKey) error    { return nil }
func (s *stubStore) ListAPIKeys(_ context.Context, _ uuid.UUID) ([]*models.APIKey, error) {
	return nil, nil
}
func (s *stubStore) RevokeAPIKey(_ context.Context, _ uuid.UUID, _ uuid.UUID) error { return nil }
func (s *stubStore) CreateWine(_ context.Context, _ *models.Wine) error             { return nil }
func (s *stubStore) GetWine(_ context.Context, _ uuid.UUID) (*models.Wine, error) {
	return nil, store.ErrNotFound
}
func (s *stubStore) GetWinesByIDs(_ context.Context, _ []uuid.UUID) (map[uuid.UUID]*models.Wine, error) {
	return nil, nil
}
func (s *stubStore) UpdateWineProfile(_ context.Context, _ uuid.UUID, _ models.StyleProfile) error {
	return nil
}
func (s *stubStore) CreateBottle(_ context.Context, _ *models.Bottle) error { return nil }
func (s *stubStore) GetBottle(_ context.Context, _ uuid.UUID, _ uuid.UUID) (*models.Bottle, error) {
	return nil, store.ErrNotFound
}
func (s *stubStore) ListBottles(_ context.Context, _ store.BottleFilter) ([]*models.Bottle, int, error) {
	return nil, 0, nil
}
func (s *stubStore) UpdateBottleDetails(_ context.Context, _ *models.Bottle) error  { return nil }
func (s *stubStore) DeleteBottle(_ context.Context, _ uuid.UUID, _ uuid.UUID) error { return nil }
func (s *stubStore) ListBottlesAfter(_ context.Context, _ *uuid.UUID, _ int) ([]*models.Bottle, error) {
	return nil, nil
}
func (s *stubStore) UpdateBottleReadiness(_ context.Context, _ uuid.UUID, _ store.ReadinessUpdate) error {
	return nil
}
func (s *stubStore) CountBottles(_ context.Context) (int, error)                      { return 0, nil }
func (s *stubStore) CreateBackfillJob(_ context.Context, _ *models.BackfillJob) error { return nil }
func (s *stubStore) GetBackfillJob(_ context.Context, _ uuid.UUID) (*models.BackfillJob, error) {
	return nil, store.ErrNotFound
}
func (s *stubStore) UpdateBackfillJob(_ context.Context, _ *models.BackfillJob) error { return nil }

// --- stub cache ---

type stubCache struct{}

func (c *stubCache) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error { return nil }
func (c *stubCache) Get(_ context.Context, _ string) ([]byte, bool, error)            { return nil, false, nil }
func (c *stubCache) Delete(_ context.Context, _ string) error                         { return nil }
func (c *stubCache) Ping(_ context.Context) error                                     { return nil }
func (c *stubCache) SetBackfillSnapshot(_ context.Context, _ uuid.UUID, _ []byte, _ time.Duration) error {
	return nil
}
func (c *stubCache) GetBackfillSnapshot(_ context.Context, _ uuid.UUID) ([]byte, bool, error) {
	return nil, false, nil
}
func (c *stubCache) IncrWithExpiry(_ context.Context, _ string, _ time.Duration) (int64, error) {
	return 1, nil
}

// --- router tests ---

func newTestRouter() http.Handler {
	return api.NewRouter(api.Dependencies{
		Auth:      mw.NewAuth(&stubStore{}),
		RateLimit: mw.NewRateLimit(&stubCache{}, 60),
		HealthHandler: func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
		},
	})
}

func TestRouter_HealthEndpoint_Public(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_ProtectedEndpoints_RequireAuth(t *testing.T) {
	router := newTestRouter()

	endpoints := []struct {
		method string
		path   string
	}{
		{"POST", "/api/v1/bottles"},
		{"GET", "/api/v1/bottles"},
		{"POST", "/api/v1/wines"},
		{"POST", "/api/v1/admin/backfill"},
		{"POST", "/api/v1/admin/keys"},
		{"GET", "/api/v1/admin/keys"},
	}

	for _, ep := range endpoints {
		t.Run(ep.method+" "+ep.path, func(t *testing.T) {
			req := httptest.NewRequest(ep.method, ep.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			errObj := body["error"].(map[string]any)
			assert.Equal(t, "INVALID_TOKEN", errObj["code"])
		})
	}
}

func TestRouter_NotFound(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest("GET", "/api/v1/nonexistent", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// Verify unused interfaces are satisfied
var _ store.Store = (*stubStore)(nil)
var _ cache.Cache = (*stubCache)(nil)
