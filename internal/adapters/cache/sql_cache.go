package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/mikey/llm-email-assistant/internal/core"
)

// sqlCache holds the queries shared by the database-backed caches. Timestamps are
// stored as unix seconds so every dialect compares them the same way. Queries are
// written with ? placeholders and rebound for the driver.
type sqlCache struct {
	db          *sql.DB
	name        string
	bind        int
	upsertQuery string
	logger      *zap.Logger
	cleanupFreq time.Duration
	now         func() time.Time
	stopCh      chan struct{}
	stopOnce    sync.Once
}

func newSQLCache(db *sql.DB, name string, bind int, upsertQuery string, logger *zap.Logger, cleanupFreq time.Duration) *sqlCache {
	c := &sqlCache{
		db:          db,
		name:        name,
		bind:        bind,
		upsertQuery: sqlx.Rebind(bind, upsertQuery),
		logger:      logger,
		cleanupFreq: cleanupFreq,
		now:         time.Now,
		stopCh:      make(chan struct{}),
	}
	if cleanupFreq > 0 {
		go c.startCleanupTask()
	}
	return c
}

// Get retrieves a live cached completion
func (c *sqlCache) Get(ctx context.Context, key string) (*core.CacheEntry, error) {
	var completion string
	var createdAt, expiresAt int64

	err := c.db.QueryRowContext(ctx, c.rebind(`
		SELECT completion, created_at, expires_at
		FROM completion_cache
		WHERE cache_key = ? AND expires_at > ?
	`), key, c.now().Unix()).Scan(&completion, &createdAt, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to query %s cache: %w", c.name, err)
	}

	return &core.CacheEntry{
		Key:        key,
		Completion: completion,
		CreatedAt:  time.Unix(createdAt, 0),
		ExpiresAt:  time.Unix(expiresAt, 0),
	}, nil
}

// Set stores a completion for the given TTL
func (c *sqlCache) Set(ctx context.Context, key, completion string, ttl time.Duration) error {
	now := c.now()
	_, err := c.db.ExecContext(ctx, c.upsertQuery, key, completion, now.Unix(), now.Add(ttl).Unix())
	if err != nil {
		return fmt.Errorf("failed to insert %s cache entry: %w", c.name, err)
	}
	return nil
}

// Delete removes a cache entry
func (c *sqlCache) Delete(ctx context.Context, key string) error {
	if _, err := c.db.ExecContext(ctx, c.rebind(`DELETE FROM completion_cache WHERE cache_key = ?`), key); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Cleanup removes expired entries
func (c *sqlCache) Cleanup(ctx context.Context) error {
	result, err := c.db.ExecContext(ctx, c.rebind(`DELETE FROM completion_cache WHERE expires_at <= ?`), c.now().Unix())
	if err != nil {
		return fmt.Errorf("failed to clean up expired entries: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.logger.Warn("Failed to get rows affected during cleanup", zap.Error(err))
	} else {
		c.logger.Debug("Cleaned up expired cache entries",
			zap.String("backend", c.name),
			zap.Int64("expired_count", rowsAffected))
	}
	return nil
}

func (c *sqlCache) rebind(query string) string {
	return sqlx.Rebind(c.bind, query)
}

func (c *sqlCache) startCleanupTask() {
	ticker := time.NewTicker(c.cleanupFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Cleanup(context.Background()); err != nil {
				c.logger.Error("Failed to clean up cache", zap.Error(err))
			}
		case <-c.stopCh:
			return
		}
	}
}

// Stop stops the background cleanup task and closes the database connection
func (c *sqlCache) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
		if err := c.db.Close(); err != nil {
			c.logger.Error("Failed to close database", zap.String("backend", c.name), zap.Error(err))
		}
	})
}
