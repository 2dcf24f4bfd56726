package readiness

import "errors"

var (
	// ErrNotAdmin is returned when the caller's profile lacks the admin flag.
	ErrNotAdmin = errors.New("caller is not an administrator")
	// ErrJobNotFound is returned when resuming an unknown job id.
	ErrJobNotFound = errors.New("backfill job not found")
	// ErrInvalidMode is returned when a new job names an unknown mode.
	ErrInvalidMode = errors.New("invalid backfill mode")
)
