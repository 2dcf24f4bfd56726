package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/vincave/vincave/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)

	GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error)
	UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error
	CreateAPIKey(ctx context.Context, key *models.APIKey) error
	ListAPIKeys(ctx context.Context, userID uuid.UUID) ([]*models.APIKey, error)
	RevokeAPIKey(ctx context.Context, id uuid.UUID, userID uuid.UUID) error

	CreateWine(ctx context.Context, wine *models.Wine) error
	GetWine(ctx context.Context, id uuid.UUID) (*models.Wine, error)
	GetWinesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Wine, error)
	UpdateWineProfile(ctx context.Context, id uuid.UUID, profile models.StyleProfile) error

	CreateBottle(ctx context.Context, bottle *models.Bottle) error
	GetBottle(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.Bottle, error)
	ListBottles(ctx context.Context, filter BottleFilter) ([]*models.Bottle, int, error)
	UpdateBottleDetails(ctx context.Context, bottle *models.Bottle) error
	DeleteBottle(ctx context.Context, id uuid.UUID, userID uuid.UUID) error

	// Readiness backfill contract: stable id-ordered pagination, batched
	// wine reads, and single-row overwrites of the readiness field set.
	ListBottlesAfter(ctx context.Context, after *uuid.UUID, limit int) ([]*models.Bottle, error)
	UpdateBottleReadiness(ctx context.Context, bottleID uuid.UUID, upd ReadinessUpdate) error
	CountBottles(ctx context.Context) (int, error)

	CreateBackfillJob(ctx context.Context, job *models.BackfillJob) error
	GetBackfillJob(ctx context.Context, id uuid.UUID) (*models.BackfillJob, error)
	UpdateBackfillJob(ctx context.Context, job *models.BackfillJob) error
}

// BottleFilter narrows and paginates bottle listings.
type BottleFilter struct {
	UserID   uuid.UUID
	WineID   uuid.UUID
	Location string
	Status   string
	Page     int
	Limit    int
}

// ReadinessUpdate is the full readiness field set written by the backfill
// engine. These columns are disjoint from the profile fields the AI path
// writes on wines: each writer owns its columns outright, so idempotent
// overwrites are safe.
type ReadinessUpdate struct {
	Score       int
	Status      models.ReadinessStatus
	WindowStart *int
	WindowEnd   *int
	Confidence  models.Confidence
	Reasons     []string
	Version     int
	UpdatedAt   time.Time
}
