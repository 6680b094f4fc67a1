// Package cache provides a read-through Redis cache for hot query paths.
// Cache failures are never surfaced to callers: a broken cache degrades to a
// database read, not an error.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tidwall/gjson"

	"smartops.app/gateway/internal/model"
)

// HistoryCache caches per-user task history lists. Entries are invalidated
// on write by the dispatcher and expire after a short TTL so a missed
// invalidation self-heals.
type HistoryCache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewHistoryCache(redisClient *redis.Client, ttl time.Duration) *HistoryCache {
	return &HistoryCache{redis: redisClient, ttl: ttl}
}

func historyKey(userID int64) string {
	return fmt.Sprintf("history:user-%d", userID)
}

// Get returns the cached history for a user, or (nil, false) on a miss.
// Errors count as misses.
func (c *HistoryCache) Get(ctx context.Context, userID int64) ([]model.Task, bool) {
	if c == nil || c.redis == nil {
		return nil, false
	}

	raw, err := c.redis.Get(ctx, historyKey(userID)).Result()
	if err != nil {
		if err != redis.Nil {
			slog.DebugContext(ctx, "history cache read failed", "error", err)
		}
		return nil, false
	}

	if !gjson.Valid(raw) {
		return nil, false
	}

	var tasks []model.Task
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
		slog.DebugContext(ctx, "history cache entry corrupt, dropping", "error", err)
		_ = c.redis.Del(ctx, historyKey(userID)).Err()
		return nil, false
	}

	return tasks, true
}

// Set stores a user's history list. Failures are logged and swallowed.
func (c *HistoryCache) Set(ctx context.Context, userID int64, tasks []model.Task) {
	if c == nil || c.redis == nil {
		return
	}

	raw, err := json.Marshal(tasks)
	if err != nil {
		slog.DebugContext(ctx, "history cache encode failed", "error", err)
		return
	}

	if err := c.redis.Set(ctx, historyKey(userID), raw, c.ttl).Err(); err != nil {
		slog.DebugContext(ctx, "history cache write failed", "error", err)
	}
}

// Invalidate drops a user's cached history, typically after a new task is
// finalized.
func (c *HistoryCache) Invalidate(ctx context.Context, userID int64) {
	if c == nil || c.redis == nil {
		return
	}

	if err := c.redis.Del(ctx, historyKey(userID)).Err(); err != nil {
		slog.DebugContext(ctx, "history cache invalidation failed", "error", err)
	}
}
