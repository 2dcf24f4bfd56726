package openai

import (
	"context"

	"github.com/vincave/vincave/internal/config"
	"github.com/vincave/vincave/pkg/models"
)

// Provider implements models.AIProvider using OpenAI.
type Provider struct {
	cfg config.OpenAIConfig
}

func NewProvider(cfg config.OpenAIConfig) *Provider {
	return &Provider{cfg: cfg}
}

func (p *Provider) Name() string { return "openai" }

func (p *Provider) GenerateProfile(_ context.Context, _ models.Wine) (models.StyleProfile, error) {
	panic("openai.Provider.GenerateProfile not yet implemented")
}

var _ models.AIProvider = (*Provider)(nil)
