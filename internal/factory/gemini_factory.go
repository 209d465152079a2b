package factory

import (
	"context"

	"go.uber.org/zap"

	"github.com/mikey/llm-email-assistant/internal/adapters/gemini"
	"github.com/mikey/llm-email-assistant/internal/config"
	"github.com/mikey/llm-email-assistant/internal/core"
	"github.com/mikey/llm-email-assistant/internal/credentials"
)

// GeminiFactory creates Gemini generation clients
type GeminiFactory struct {
	cfg      *config.Config
	logger   *zap.Logger
	resolver *credentials.Resolver
}

// NewGeminiFactory creates a new Gemini factory
func NewGeminiFactory(cfg *config.Config, logger *zap.Logger, resolver *credentials.Resolver) *GeminiFactory {
	return &GeminiFactory{
		cfg:      cfg,
		logger:   logger,
		resolver: resolver,
	}
}

// CreateClient creates a Gemini generation client
func (f *GeminiFactory) CreateClient(ctx context.Context) (core.GenerationClient, error) {
	geminiCfg := f.cfg.GetGemini()

	apiKey, err := f.resolver.APIKey(ProviderGemini, geminiCfg.APIKey)
	if err != nil {
		return nil, err
	}

	client, err := gemini.NewGeminiClient(
		ctx,
		apiKey,
		geminiCfg.ModelName,
		geminiCfg.MaxTokens,
		geminiCfg.Temperature,
		geminiCfg.TopP,
		f.logger,
	)
	if err != nil {
		return nil, err
	}
	return client, nil
}
