package factory

import (
	"go.uber.org/zap"

	"github.com/mikey/llm-email-assistant/internal/adapters/openai"
	"github.com/mikey/llm-email-assistant/internal/config"
	"github.com/mikey/llm-email-assistant/internal/core"
	"github.com/mikey/llm-email-assistant/internal/credentials"
)

// OpenAIFactory creates OpenAI generation clients
type OpenAIFactory struct {
	cfg      *config.Config
	logger   *zap.Logger
	resolver *credentials.Resolver
}

// NewOpenAIFactory creates a new OpenAI factory
func NewOpenAIFactory(cfg *config.Config, logger *zap.Logger, resolver *credentials.Resolver) *OpenAIFactory {
	return &OpenAIFactory{
		cfg:      cfg,
		logger:   logger,
		resolver: resolver,
	}
}

// CreateClient creates an OpenAI generation client
func (f *OpenAIFactory) CreateClient() (core.GenerationClient, error) {
	openaiCfg := f.cfg.GetOpenAI()

	apiKey, err := f.resolver.APIKey(ProviderOpenAI, openaiCfg.APIKey)
	if err != nil {
		return nil, err
	}

	return openai.NewOpenAIClient(
		apiKey,
		openaiCfg.BaseURL,
		openaiCfg.ModelName,
		openaiCfg.MaxTokens,
		openaiCfg.Temperature,
		openaiCfg.TopP,
		f.logger,
	), nil
}
