package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/forgottenfelines/tnr-intake-api/internal/models"
)

const queueVersionKey = "queue:version"

// QueueCache caches queue-dashboard listings in Redis. Invalidation bumps a
// version counter baked into every key, so stale entries just expire.
type QueueCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewQueueCache constructs the cache. A nil client disables caching.
func NewQueueCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *QueueCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &QueueCache{client: client, ttl: ttl, logger: logger}
}

// Get returns a cached listing when present.
func (c *QueueCache) Get(ctx context.Context, filter models.SubmissionFilter) ([]models.Submission, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, c.key(ctx, filter)).Bytes()
	if err != nil {
		return nil, false
	}
	var submissions []models.Submission
	if err := json.Unmarshal(raw, &submissions); err != nil {
		return nil, false
	}
	return submissions, true
}

// Set stores a listing. Failures are logged, never surfaced.
func (c *QueueCache) Set(ctx context.Context, filter models.SubmissionFilter, submissions []models.Submission) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(submissions)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key(ctx, filter), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("queue cache set failed", zap.Error(err))
	}
}

// Invalidate drops every cached listing by bumping the version counter.
func (c *QueueCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Incr(ctx, queueVersionKey).Err(); err != nil {
		c.logger.Warn("queue cache invalidate failed", zap.Error(err))
	}
}

func (c *QueueCache) key(ctx context.Context, filter models.SubmissionFilter) string {
	version, err := c.client.Get(ctx, queueVersionKey).Int64()
	if err != nil {
		version = 0
	}
	return fmt.Sprintf("queue:%d:%s:%s:%s:%d:%d",
		version, filter.Mode, filter.Category, filter.Search, filter.Limit, filter.Offset)
}
