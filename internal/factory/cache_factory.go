package factory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/llm-email-assistant/internal/adapters/cache"
	"github.com/mikey/llm-email-assistant/internal/config"
	"github.com/mikey/llm-email-assistant/internal/core"
)

// Stopper is implemented by caches that own background tasks or connections
type Stopper interface {
	Stop()
}

// CacheFactory creates completion caches based on configuration
type CacheFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewCacheFactory creates a new cache factory
func NewCacheFactory(cfg *config.Config, logger *zap.Logger) *CacheFactory {
	return &CacheFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateCache creates the configured completion cache. It returns nil when caching
// is disabled.
func (f *CacheFactory) CreateCache(ctx context.Context) (core.CompletionCache, error) {
	cacheCfg, err := f.cfg.GetCache()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrConfiguration, err)
	}
	if !cacheCfg.Enabled {
		return nil, nil
	}

	var c core.CompletionCache
	switch cacheCfg.Type {
	case "memory":
		c = cache.NewMemoryCache(f.logger, cacheCfg.CleanupFrequency)
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cacheCfg.SQLitePath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		c, err = cache.NewSQLiteCache(cacheCfg.SQLitePath, f.logger, cacheCfg.CleanupFrequency)
	case "mysql":
		c, err = cache.NewMySQLCache(cacheCfg.MySQLDSN, f.logger, cacheCfg.CleanupFrequency)
	case "postgres":
		c, err = cache.NewPostgresCache(cacheCfg.PostgresDSN, f.logger, cacheCfg.CleanupFrequency)
	case "redis":
		c, err = cache.NewRedisCache(ctx, cacheCfg.RedisAddr, cacheCfg.RedisPrefix, f.logger)
	default:
		return nil, fmt.Errorf("%w: unsupported cache type: %s", core.ErrConfiguration, cacheCfg.Type)
	}
	if err != nil {
		return nil, err
	}

	f.logger.Info("Completion cache enabled",
		zap.String("type", cacheCfg.Type),
		zap.Duration("ttl", cacheCfg.TTL))
	return c, nil
}

// TTL returns the configured completion lifetime
func (f *CacheFactory) TTL() (time.Duration, error) {
	cacheCfg, err := f.cfg.GetCache()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", core.ErrConfiguration, err)
	}
	return cacheCfg.TTL, nil
}

// IsCacheEnabled returns whether caching is enabled
func (f *CacheFactory) IsCacheEnabled() bool {
	return f.cfg.GetBool("cache.enabled")
}
