package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Color is the closed set of wine color/style categories.
type Color string

const (
	ColorRed       Color = "red"
	ColorWhite     Color = "white"
	ColorRose      Color = "rose"
	ColorSparkling Color = "sparkling"
)

// ParseColor maps a free-form color string to a Color. Unrecognized values
// fall back to red, which matches how the cellar treats unlabeled wines.
func ParseColor(s string) Color {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "white":
		return ColorWhite
	case "rose", "rosé":
		return ColorRose
	case "sparkling":
		return ColorSparkling
	default:
		return ColorRed
	}
}

// StyleProfile is the structural profile of a wine, synthesized by the AI
// collaborator. Each dimension is scored 1-5; Power may arrive on a 1-10
// scale from older synthesis runs and is clamped by consumers.
type StyleProfile struct {
	Body    int `db:"profile_body"    json:"body"`
	Tannin  int `db:"profile_tannin"  json:"tannin"`
	Acidity int `db:"profile_acidity" json:"acidity"`
	Oak     int `db:"profile_oak"     json:"oak"`
	Power   int `db:"profile_power"   json:"power"`
}

// Wine represents a wine shared across bottles. The readiness engine reads
// wines but never writes them; only the profile fields are written, and only
// by the AI profile path.
type Wine struct {
	ID        uuid.UUID     `db:"id"         json:"id"`
	Name      string        `db:"name"       json:"name"`
	Producer  string        `db:"producer"   json:"producer"`
	Vintage   *int          `db:"vintage"    json:"vintage,omitempty"`
	Color     Color         `db:"color"      json:"color"`
	Region    string        `db:"region"     json:"region"`
	Country   string        `db:"country"    json:"country"`
	Grapes    []string      `db:"grapes"     json:"grapes"`
	Profile   *StyleProfile `db:"-"          json:"profile,omitempty"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt time.Time     `db:"updated_at" json:"updated_at"`
}
