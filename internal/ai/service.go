package ai

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/vincave/vincave/internal/cache"
	"github.com/vincave/vincave/internal/store"
	"github.com/vincave/vincave/pkg/models"
)

const profileStatusTTL = 30 * time.Minute

// ProfileService orchestrates best-effort style-profile synthesis. It writes
// only the wines profile fields; the readiness backfill engine never calls
// into this service and only sees profiles on its next pass over the store.
type ProfileService struct {
	provider models.AIProvider
	store    store.Store
	cache    cache.Cache
	timeout  time.Duration
}

// NewProfileService creates a new ProfileService.
func NewProfileService(provider models.AIProvider, st store.Store, ca cache.Cache, timeout time.Duration) *ProfileService {
	return &ProfileService{
		provider: provider,
		store:    st,
		cache:    ca,
		timeout:  timeout,
	}
}

// TriggerProfile dispatches profile synthesis for a wine in a background
// goroutine. Returns immediately once the wine is confirmed to exist.
func (s *ProfileService) TriggerProfile(ctx context.Context, wineID uuid.UUID) error {
	wine, err := s.store.GetWine(ctx, wineID)
	if err != nil {
		return fmt.Errorf("loading wine: %w", err)
	}

	_ = s.cache.Set(ctx, cache.WineProfileJobKey(wineID), []byte("generating"), profileStatusTTL)

	go s.generate(*wine)

	return nil
}

// generate performs the actual synthesis in a goroutine. It recovers from
// panics and always leaves a terminal status in the cache.
func (s *ProfileService) generate(wine models.Wine) {
	ctx := context.Background()
	key := cache.WineProfileJobKey(wine.ID)

	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic in profile generation", "error", r, "wine_id", wine.ID)
			_ = s.cache.Set(ctx, key, []byte("failed"), profileStatusTTL)
		}
	}()

	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	profile, err := s.provider.GenerateProfile(genCtx, wine)
	if err != nil {
		slog.Warn("profile generation failed", "wine_id", wine.ID, "provider", s.provider.Name(), "error", err)
		_ = s.cache.Set(ctx, key, []byte("failed"), profileStatusTTL)
		return
	}

	profile = clampProfile(profile)

	if err := s.store.UpdateWineProfile(ctx, wine.ID, profile); err != nil {
		slog.Warn("storing profile failed", "wine_id", wine.ID, "error", err)
		_ = s.cache.Set(ctx, key, []byte("failed"), profileStatusTTL)
		return
	}

	_ = s.cache.Set(ctx, key, []byte("completed"), profileStatusTTL)
	slog.Info("profile generated", "wine_id", wine.ID, "provider", s.provider.Name())
}

// clampProfile bounds the synthesized dimensions. Power is allowed 1-10 for
// continuity with older profile runs; the other four are 1-5.
func clampProfile(p models.StyleProfile) models.StyleProfile {
	p.Body = clamp(p.Body, 1, 5)
	p.Tannin = clamp(p.Tannin, 1, 5)
	p.Acidity = clamp(p.Acidity, 1, 5)
	p.Oak = clamp(p.Oak, 1, 5)
	p.Power = clamp(p.Power, 1, 10)
	return p
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
