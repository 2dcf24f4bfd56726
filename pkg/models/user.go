package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account. Bottles belong to users; the backfill engine
// runs across all users but only under an administrator's credentials.
type User struct {
	ID        uuid.UUID `db:"id"         json:"id"`
	Email     string    `db:"email"      json:"email"`
	Name      string    `db:"name"       json:"name"`
	IsAdmin   bool      `db:"is_admin"   json:"is_admin"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
