package factory

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/llm-email-assistant/internal/config"
	"github.com/mikey/llm-email-assistant/internal/core"
	"github.com/mikey/llm-email-assistant/internal/credentials"
)

// Supported LLM providers
const (
	ProviderGemini  = "gemini"
	ProviderOpenAI  = "openai"
	ProviderBedrock = "bedrock"
)

// LLMFactory creates generation clients for the configured provider
type LLMFactory struct {
	cfg      *config.Config
	logger   *zap.Logger
	resolver *credentials.Resolver
}

// NewLLMFactory creates a new LLM factory
func NewLLMFactory(cfg *config.Config, logger *zap.Logger, resolver *credentials.Resolver) *LLMFactory {
	return &LLMFactory{
		cfg:      cfg,
		logger:   logger,
		resolver: resolver,
	}
}

// CreateClient creates a new generation client based on the configuration
func (f *LLMFactory) CreateClient(ctx context.Context) (core.GenerationClient, error) {
	provider := f.cfg.GetLLM().Provider
	f.logger.Debug("Creating generation client", zap.String("provider", provider))

	switch provider {
	case ProviderGemini:
		return NewGeminiFactory(f.cfg, f.logger, f.resolver).CreateClient(ctx)
	case ProviderOpenAI:
		return NewOpenAIFactory(f.cfg, f.logger, f.resolver).CreateClient()
	case ProviderBedrock:
		return NewBedrockFactory(f.cfg, f.logger).CreateClient(ctx)
	default:
		return nil, fmt.Errorf("%w: unsupported LLM provider: %s", core.ErrConfiguration, provider)
	}
}

// ModelName returns the model identifier of the configured provider
func (f *LLMFactory) ModelName() string {
	switch f.cfg.GetLLM().Provider {
	case ProviderOpenAI:
		return f.cfg.GetOpenAI().ModelName
	case ProviderBedrock:
		return f.cfg.GetBedrock().ModelID
	default:
		return f.cfg.GetGemini().ModelName
	}
}
