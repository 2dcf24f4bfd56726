package mock

import (
	"context"

	"github.com/vincave/vincave/pkg/models"
)

// MockProvider satisfies models.AIProvider for testing and local development.
type MockProvider struct {
	Name_               string
	GenerateProfileFunc func(ctx context.Context, wine models.Wine) (models.StyleProfile, error)
}

func (m *MockProvider) Name() string { return m.Name_ }

func (m *MockProvider) GenerateProfile(ctx context.Context, wine models.Wine) (models.StyleProfile, error) {
	if m.GenerateProfileFunc != nil {
		return m.GenerateProfileFunc(ctx, wine)
	}
	return models.StyleProfile{}, nil
}

// NewMockProvider returns a MockProvider that synthesizes a deterministic
// mid-range profile from the wine's color, so repeated runs agree.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Name_: "mock",
		GenerateProfileFunc: func(_ context.Context, wine models.Wine) (models.StyleProfile, error) {
			switch wine.Color {
			case models.ColorWhite, models.ColorSparkling:
				return models.StyleProfile{Body: 2, Tannin: 1, Acidity: 4, Oak: 2, Power: 2}, nil
			case models.ColorRose:
				return models.StyleProfile{Body: 2, Tannin: 2, Acidity: 3, Oak: 1, Power: 2}, nil
			default:
				return models.StyleProfile{Body: 3, Tannin: 3, Acidity: 3, Oak: 3, Power: 3}, nil
			}
		},
	}
}

// NewFailingProvider returns a MockProvider that always returns the given error.
func NewFailingProvider(err error) *MockProvider {
	return &MockProvider{
		Name_: "mock-failing",
		GenerateProfileFunc: func(_ context.Context, _ models.Wine) (models.StyleProfile, error) {
			return models.StyleProfile{}, err
		},
	}
}

// NewTimeoutProvider returns a MockProvider that blocks until context is cancelled.
func NewTimeoutProvider() *MockProvider {
	return &MockProvider{
		Name_: "mock-timeout",
		GenerateProfileFunc: func(ctx context.Context, _ models.Wine) (models.StyleProfile, error) {
			<-ctx.Done()
			return models.StyleProfile{}, ctx.Err()
		},
	}
}

// Compile-time check that MockProvider implements AIProvider.
var _ models.AIProvider = (*MockProvider)(nil)
