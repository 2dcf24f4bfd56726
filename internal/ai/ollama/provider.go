package ollama

import (
	"context"

	"github.com/vincave/vincave/internal/config"
	"github.com/vincave/vincave/pkg/models"
)

// Provider implements models.AIProvider using Ollama.
type Provider struct {
	cfg config.OllamaConfig
}

func NewProvider(cfg config.OllamaConfig) *Provider {
	return &Provider{cfg: cfg}
}

func (p *Provider) Name() string { return "ollama" }

func (p *Provider) GenerateProfile(_ context.Context, _ models.Wine) (models.StyleProfile, error) {
	panic("ollama.Provider.GenerateProfile not yet implemented")
}

var _ models.AIProvider = (*Provider)(nil)
