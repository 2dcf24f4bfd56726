package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	mw "github.com/vincave/vincave/internal/api/middleware"
	"github.com/vincave/vincave/internal/store"
	"github.com/vincave/vincave/pkg/models"
)

// testStore is an in-memory store.Store for handler tests. Only the methods
// the handlers under test touch have real behavior.
type testStore struct {
	mu      sync.Mutex
	users   map[uuid.UUID]*models.User
	keys    map[uuid.UUID]*models.APIKey
	wines   map[uuid.UUID]*models.Wine
	bottles map[uuid.UUID]*models.Bottle
	jobs    map[uuid.UUID]*models.BackfillJob

	createBottleErr error
	getWineErr      error
}

func newTestStore() *testStore {
	return &testStore{
		users:   make(map[uuid.UUID]*models.User),
		keys:    make(map[uuid.UUID]*models.APIKey),
		wines:   make(map[uuid.UUID]*models.Wine),
		bottles: make(map[uuid.UUID]*models.Bottle),
		jobs:    make(map[uuid.UUID]*models.BackfillJob),
	}
}

func (s *testStore) Ping(context.Context) error { return nil }

func (s *testStore) GetUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, store.ErrNotFound
}

func (s *testStore) GetAPIKeyByPrefix(_ context.Context, prefix string) ([]*models.APIKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.APIKey
	for _, k := range s.keys {
		if k.KeyPrefix == prefix && k.DeletedAt == nil {
			out = append(out, k)
		}
	}
	return out, nil
}

func (s *testStore) UpdateAPIKeyLastUsed(context.Context, uuid.UUID) error { return nil }

func (s *testStore) CreateAPIKey(_ context.Context, key *models.APIKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key.ID] = key
	return nil
}

func (s *testStore) ListAPIKeys(_ context.Context, userID uuid.UUID) ([]*models.APIKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.APIKey
	for _, k := range s.keys {
		if k.UserID == userID && k.DeletedAt == nil {
			out = append(out, k)
		}
	}
	return out, nil
}

func (s *testStore) RevokeAPIKey(_ context.Context, id uuid.UUID, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, ok := s.keys[id]
	if !ok || k.UserID != userID || k.DeletedAt != nil {
		return store.ErrNotFound
	}
	now := time.Now().UTC()
	k.DeletedAt = &now
	return nil
}

func (s *testStore) CreateWine(_ context.Context, wine *models.Wine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wines[wine.ID] = wine
	return nil
}

func (s *testStore) GetWine(_ context.Context, id uuid.UUID) (*models.Wine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getWineErr != nil {
		return nil, s.getWineErr
	}
	if w, ok := s.wines[id]; ok {
		return w, nil
	}
	return nil, store.ErrNotFound
}

func (s *testStore) GetWinesByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Wine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[uuid.UUID]*models.Wine)
	for _, id := range ids {
		if w, ok := s.wines[id]; ok {
			out[id] = w
		}
	}
	return out, nil
}

func (s *testStore) UpdateWineProfile(_ context.Context, id uuid.UUID, profile models.StyleProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wines[id]
	if !ok {
		return store.ErrNotFound
	}
	w.Profile = &profile
	return nil
}

func (s *testStore) CreateBottle(_ context.Context, bottle *models.Bottle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createBottleErr != nil {
		return s.createBottleErr
	}
	s.bottles[bottle.ID] = bottle
	return nil
}

func (s *testStore) GetBottle(_ context.Context, id uuid.UUID, userID uuid.UUID) (*models.Bottle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bottles[id]
	if !ok || b.UserID != userID {
		return nil, store.ErrNotFound
	}
	return b, nil
}

func (s *testStore) ListBottles(_ context.Context, filter store.BottleFilter) ([]*models.Bottle, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Bottle
	for _, b := range s.bottles {
		if b.UserID == filter.UserID {
			out = append(out, b)
		}
	}
	return out, len(out), nil
}

func (s *testStore) UpdateBottleDetails(_ context.Context, bottle *models.Bottle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bottles[bottle.ID]; !ok {
		return store.ErrNotFound
	}
	s.bottles[bottle.ID] = bottle
	return nil
}

func (s *testStore) DeleteBottle(_ context.Context, id uuid.UUID, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bottles[id]
	if !ok || b.UserID != userID {
		return store.ErrNotFound
	}
	delete(s.bottles, id)
	return nil
}

func (s *testStore) ListBottlesAfter(context.Context, *uuid.UUID, int) ([]*models.Bottle, error) {
	return nil, nil
}

func (s *testStore) UpdateBottleReadiness(context.Context, uuid.UUID, store.ReadinessUpdate) error {
	return nil
}

func (s *testStore) CountBottles(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bottles), nil
}

func (s *testStore) CreateBackfillJob(_ context.Context, job *models.BackfillJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
	return nil
}

func (s *testStore) GetBackfillJob(_ context.Context, id uuid.UUID) (*models.BackfillJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j, ok := s.jobs[id]; ok {
		return j, nil
	}
	return nil, store.ErrNotFound
}

func (s *testStore) UpdateBackfillJob(_ context.Context, job *models.BackfillJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
	return nil
}

var _ store.Store = (*testStore)(nil)

// fakeCache is an in-memory cache.Cache for handler tests.
type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (c *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *fakeCache) Ping(context.Context) error { return nil }

func (c *fakeCache) SetBackfillSnapshot(ctx context.Context, jobID uuid.UUID, snapshot []byte, ttl time.Duration) error {
	return c.Set(ctx, "backfill:job:"+jobID.String(), snapshot, ttl)
}

func (c *fakeCache) GetBackfillSnapshot(ctx context.Context, jobID uuid.UUID) ([]byte, bool, error) {
	return c.Get(ctx, "backfill:job:"+jobID.String())
}

func (c *fakeCache) IncrWithExpiry(context.Context, string, time.Duration) (int64, error) {
	return 1, nil
}

// decorate attaches an authenticated user and optional chi URL params to a
// test request.
func decorate(r *http.Request, userID uuid.UUID, params map[string]string) *http.Request {
	ctx := mw.SetUserID(r.Context(), userID)
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return r.WithContext(ctx)
}
