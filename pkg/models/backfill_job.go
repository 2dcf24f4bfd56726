package models

import (
	"time"

	"github.com/google/uuid"
)

// BackfillMode selects which bottles a backfill job recomputes.
type BackfillMode string

const (
	ModeMissingOnly    BackfillMode = "missing_only"
	ModeStaleOrMissing BackfillMode = "stale_or_missing"
	ModeForceAll       BackfillMode = "force_all"
)

// ValidBackfillMode reports whether s names a known mode.
func ValidBackfillMode(s string) bool {
	switch BackfillMode(s) {
	case ModeMissingOnly, ModeStaleOrMissing, ModeForceAll:
		return true
	}
	return false
}

const (
	BackfillStatusRunning   = "running"
	BackfillStatusCompleted = "completed"
)

// MaxRecentFailures bounds the failure ring persisted on a job row.
const MaxRecentFailures = 50

// BackfillFailure records one bottle that could not be updated.
type BackfillFailure struct {
	BottleID uuid.UUID `json:"bottle_id"`
	Reason   string    `json:"reason"`
}

// BackfillJob is the persisted state of one readiness backfill run. Progress
// lives entirely in this row: a killed run is resumed by id from Cursor and
// the counters, never from process memory.
type BackfillJob struct {
	ID             uuid.UUID         `db:"id"              json:"id"`
	Mode           BackfillMode      `db:"mode"            json:"mode"`
	BatchSize      int               `db:"batch_size"      json:"batch_size"`
	TargetVersion  int               `db:"target_version"  json:"target_version"`
	Status         string            `db:"status"          json:"status"`
	Cursor         *uuid.UUID        `db:"cursor"          json:"cursor,omitempty"`
	Processed      int               `db:"processed"       json:"processed"`
	Updated        int               `db:"updated"         json:"updated"`
	Skipped        int               `db:"skipped"         json:"skipped"`
	Failed         int               `db:"failed"          json:"failed"`
	RecentFailures []BackfillFailure `db:"recent_failures" json:"recent_failures,omitempty"`
	EstimatedTotal int               `db:"estimated_total" json:"estimated_total"`
	StartedAt      time.Time         `db:"started_at"      json:"started_at"`
	CompletedAt    *time.Time        `db:"completed_at"    json:"completed_at,omitempty"`
	UpdatedAt      time.Time         `db:"updated_at"      json:"updated_at"`
}
