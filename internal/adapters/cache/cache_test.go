package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/llm-email-assistant/internal/core"
)

var (
	_ core.CompletionCache = (*MemoryCache)(nil)
	_ core.CompletionCache = (*SQLiteCache)(nil)
	_ core.CompletionCache = (*MySQLCache)(nil)
	_ core.CompletionCache = (*PostgresCache)(nil)
	_ core.CompletionCache = (*RedisCache)(nil)
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	clk := &clock{t: time.Unix(1_700_000_000, 0)}
	c := NewMemoryCache(zap.NewNop(), 0)
	c.now = clk.now
	defer c.Stop()

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, core.ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "k", "completion", time.Minute))
	e, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "completion", e.Completion)
	assert.Equal(t, clk.t.Add(time.Minute), e.ExpiresAt)

	clk.t = clk.t.Add(time.Minute)
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, core.ErrCacheMiss)

	require.NoError(t, c.Cleanup(ctx))
	assert.Zero(t, c.Len())

	require.NoError(t, c.Set(ctx, "k2", "x", time.Hour))
	require.NoError(t, c.Delete(ctx, "k2"))
	_, err = c.Get(ctx, "k2")
	assert.ErrorIs(t, err, core.ErrCacheMiss)
}

func TestMemoryCache_StopIsIdempotent(t *testing.T) {
	c := NewMemoryCache(zap.NewNop(), time.Millisecond)
	c.Stop()
	c.Stop()
}

func TestSQLiteCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewSQLiteCache(filepath.Join(t.TempDir(), "cache.db"), zap.NewNop(), 0)
	require.NoError(t, err)
	defer c.Stop()

	clk := &clock{t: time.Unix(1_700_000_000, 0)}
	c.now = clk.now

	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, core.ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "k", "first", time.Hour))
	require.NoError(t, c.Set(ctx, "k", "second", time.Hour))
	e, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "second", e.Completion)
	assert.Equal(t, clk.t.Unix(), e.CreatedAt.Unix())

	clk.t = clk.t.Add(2 * time.Hour)
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, core.ErrCacheMiss)

	require.NoError(t, c.Cleanup(ctx))
	var n int
	require.NoError(t, c.db.QueryRow(`SELECT COUNT(*) FROM completion_cache`).Scan(&n))
	assert.Zero(t, n)

	require.NoError(t, c.Set(ctx, "d", "x", time.Hour))
	require.NoError(t, c.Delete(ctx, "d"))
	_, err = c.Get(ctx, "d")
	assert.ErrorIs(t, err, core.ErrCacheMiss)
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	c, err := NewRedisCache(ctx, mr.Addr(), "test:", zap.NewNop())
	require.NoError(t, err)
	defer c.Stop()

	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, core.ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "k", "completion", time.Minute))
	assert.True(t, mr.Exists("test:k"))

	e, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "completion", e.Completion)
	assert.Equal(t, "k", e.Key)

	mr.FastForward(2 * time.Minute)
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, core.ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "d", "x", time.Minute))
	require.NoError(t, c.Delete(ctx, "d"))
	assert.False(t, mr.Exists("test:d"))
	assert.NoError(t, c.Cleanup(ctx))
}

func TestRedisCache_ConnectFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisCache(context.Background(), addr, "", zap.NewNop())
	assert.Error(t, err)
}

func TestSQLCache_RebindsPlaceholders(t *testing.T) {
	pg := newSQLCache(nil, "postgres", sqlx.DOLLAR, "INSERT INTO t VALUES (?, ?)", zap.NewNop(), 0)
	assert.Equal(t, "INSERT INTO t VALUES ($1, $2)", pg.upsertQuery)
	assert.Equal(t, "DELETE FROM t WHERE k = $1", pg.rebind("DELETE FROM t WHERE k = ?"))

	my := newSQLCache(nil, "mysql", sqlx.QUESTION, "INSERT INTO t VALUES (?, ?)", zap.NewNop(), 0)
	assert.Equal(t, "INSERT INTO t VALUES (?, ?)", my.upsertQuery)
}
