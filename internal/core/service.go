package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"time"

	"go.uber.org/zap"
)

// GenerationService wraps a GenerationClient with an optional completion cache
type GenerationService struct {
	client       GenerationClient
	cache        CompletionCache
	logger       *zap.Logger
	cacheEnabled bool
	cacheTTL     time.Duration
	modelName    string
}

// NewGenerationService creates a new generation service
func NewGenerationService(
	client GenerationClient,
	cache CompletionCache,
	logger *zap.Logger,
	cacheEnabled bool,
	cacheTTL time.Duration,
	modelName string,
) *GenerationService {
	return &GenerationService{
		client:       client,
		cache:        cache,
		logger:       logger,
		cacheEnabled: cacheEnabled && cache != nil,
		cacheTTL:     cacheTTL,
		modelName:    modelName,
	}
}

// CacheKey derives the cache key for a prompt sent to the given model
func CacheKey(modelName, prompt string) string {
	sum := sha256.Sum256([]byte(modelName + "\x00" + prompt))
	return hex.EncodeToString(sum[:])
}

// Generate returns a completion for the prompt, consulting the cache first when enabled
func (s *GenerationService) Generate(ctx context.Context, prompt string) (string, error) {
	key := CacheKey(s.modelName, prompt)

	if s.cacheEnabled {
		entry, err := s.cache.Get(ctx, key)
		switch {
		case err == nil:
			s.logger.Debug("Cache hit for prompt", zap.String("key", key))
			return entry.Completion, nil
		case !errors.Is(err, ErrCacheMiss):
			s.logger.Warn("Failed to read completion cache", zap.Error(err))
		}
	}

	start := time.Now()
	completion, err := s.client.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	s.logger.Debug("Generation completed",
		zap.String("model", s.modelName),
		zap.Duration("duration", time.Since(start)),
		zap.Int("prompt_size", len(prompt)),
		zap.Int("completion_size", len(completion)))

	if s.cacheEnabled {
		if err := s.cache.Set(ctx, key, completion, s.cacheTTL); err != nil {
			s.logger.Error("Failed to update cache", zap.Error(err))
		}
	}

	return completion, nil
}

// Close releases the underlying client when it holds resources
func (s *GenerationService) Close() error {
	if c, ok := s.client.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
