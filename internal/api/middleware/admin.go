package middleware

import (
	"context"
	"errors"

	"github.com/vincave/vincave/internal/store"
)

// AdminChecker answers whether the caller behind a context is an
// administrator, by checking the is_admin flag on the authenticated user's
// profile. The readiness engine consumes this through its Authorizer
// interface so it never trusts routing alone.
type AdminChecker struct {
	store store.Store
}

// NewAdminChecker creates an AdminChecker backed by the store.
func NewAdminChecker(s store.Store) *AdminChecker {
	return &AdminChecker{store: s}
}

func (c *AdminChecker) IsAdmin(ctx context.Context) (bool, error) {
	id, ok := UserIDFromContext(ctx)
	if !ok {
		return false, nil
	}
	user, err := c.store.GetUser(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return user.IsAdmin, nil
}
