package anthropic

import (
	"context"

	"github.com/vincave/vincave/internal/config"
	"github.com/vincave/vincave/pkg/models"
)

// Provider implements models.AIProvider using Anthropic.
type Provider struct {
	cfg config.AnthropicConfig
}

func NewProvider(cfg config.AnthropicConfig) *Provider {
	return &Provider{cfg: cfg}
}

func (p *Provider) Name() string { return "anthropic" }

func (p *Provider) GenerateProfile(_ context.Context, _ models.Wine) (models.StyleProfile, error) {
	panic("anthropic.Provider.GenerateProfile not yet implemented")
}

var _ models.AIProvider = (*Provider)(nil)
