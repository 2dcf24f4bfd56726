// Package models contains shared data models used across the Vincave codebase.
package models

import (
	"context"
)

// AIProvider is the core interface that all AI integrations must implement.
// Never call specific AI providers directly — always inject this interface.
// The readiness backfill engine must stay independent of it: profiles are a
// best-effort enrichment, read back from the store on the next scoring pass.
type AIProvider interface {
	// GenerateProfile synthesizes a structural style profile for a wine
	// from its facts (grapes, region, vintage).
	GenerateProfile(ctx context.Context, wine Wine) (StyleProfile, error)
	// Name returns the provider identifier (e.g., "ollama", "openai").
	Name() string
}
