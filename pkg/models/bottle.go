package models

import (
	"time"

	"github.com/google/uuid"
)

// ReadinessStatus is the closed set of drink-readiness states.
type ReadinessStatus string

const (
	StatusTooYoung    ReadinessStatus = "too_young"
	StatusApproaching ReadinessStatus = "approaching"
	StatusPeak        ReadinessStatus = "peak"
	StatusInWindow    ReadinessStatus = "in_window"
	StatusPastPeak    ReadinessStatus = "past_peak"
	StatusUnknown     ReadinessStatus = "unknown"
)

// Confidence is the qualitative trust level attached to a scoring result.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Bottle is a single physical bottle owned by a user. The readiness fields
// are nil until the backfill engine scores the bottle for the first time;
// the engine is the only writer of those fields.
type Bottle struct {
	ID                 uuid.UUID        `db:"id"                   json:"id"`
	UserID             uuid.UUID        `db:"user_id"              json:"user_id"`
	WineID             uuid.UUID        `db:"wine_id"              json:"wine_id"`
	PurchasePrice      *float64         `db:"purchase_price"       json:"purchase_price,omitempty"`
	Location           string           `db:"location"             json:"location"`
	Notes              string           `db:"notes"                json:"notes"`
	ReadinessScore     *int             `db:"readiness_score"      json:"readiness_score,omitempty"`
	ReadinessStatus    *ReadinessStatus `db:"readiness_status"     json:"readiness_status,omitempty"`
	DrinkWindowStart   *int             `db:"drink_window_start"   json:"drink_window_start,omitempty"`
	DrinkWindowEnd     *int             `db:"drink_window_end"     json:"drink_window_end,omitempty"`
	Confidence         *Confidence      `db:"confidence"           json:"confidence,omitempty"`
	ReadinessReasons   []string         `db:"readiness_reasons"    json:"readiness_reasons,omitempty"`
	ReadinessVersion   int              `db:"readiness_version"    json:"readiness_version"`
	ReadinessUpdatedAt *time.Time       `db:"readiness_updated_at" json:"readiness_updated_at,omitempty"`
	CreatedAt          time.Time        `db:"created_at"           json:"created_at"`
	UpdatedAt          time.Time        `db:"updated_at"           json:"updated_at"`
}
