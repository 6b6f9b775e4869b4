// Package cache keeps recently fetched question bundles in Redis so that
// repeated page views do not fan out to the backend every time.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/forum-service/internal/domain"
	"github.com/spec-kit/forum-service/internal/observability"
)

const keyPrefix = "forum:question:"

// QuestionCache stores viewer-independent question bundles. Filtering for a
// particular viewer always happens after a read.
type QuestionCache struct {
	client  *redis.Client
	ttl     time.Duration
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewQuestionCache returns a cache. A nil client or non-positive ttl yields a
// cache that always misses.
func NewQuestionCache(client *redis.Client, ttl time.Duration, logger *zap.Logger, metrics *observability.Metrics) *QuestionCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuestionCache{client: client, ttl: ttl, logger: logger, metrics: metrics}
}

// Key returns the Redis key for a question.
func Key(questionID string) string {
	return keyPrefix + questionID
}

func (c *QuestionCache) enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

// Get returns the cached bundle and whether it was found. Redis failures and
// undecodable entries are reported as misses.
func (c *QuestionCache) Get(ctx context.Context, questionID string) (*domain.QuestionBundle, bool) {
	if !c.enabled() {
		return nil, false
	}

	raw, err := c.client.Get(ctx, Key(questionID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("question cache read failed", zap.String("question_id", questionID), zap.Error(err))
		}
		c.metrics.RecordCacheLookup(false)
		return nil, false
	}

	var bundle domain.QuestionBundle
	if err := json.Unmarshal(raw, &bundle); err != nil {
		c.logger.Warn("dropping undecodable cache entry", zap.String("question_id", questionID), zap.Error(err))
		c.Invalidate(ctx, questionID)
		c.metrics.RecordCacheLookup(false)
		return nil, false
	}

	c.metrics.RecordCacheLookup(true)
	return &bundle, true
}

// Set stores a bundle with the configured TTL.
func (c *QuestionCache) Set(ctx context.Context, bundle *domain.QuestionBundle) {
	if !c.enabled() || bundle == nil || bundle.Question.ID == "" {
		return
	}
	raw, err := json.Marshal(bundle)
	if err != nil {
		c.logger.Warn("question cache encode failed", zap.String("question_id", bundle.Question.ID), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, Key(bundle.Question.ID), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("question cache write failed", zap.String("question_id", bundle.Question.ID), zap.Error(err))
	}
}

// Invalidate drops the entry for a question.
func (c *QuestionCache) Invalidate(ctx context.Context, questionID string) {
	if !c.enabled() || questionID == "" {
		return
	}
	if err := c.client.Del(ctx, Key(questionID)).Err(); err != nil {
		c.logger.Warn("question cache invalidate failed", zap.String("question_id", questionID), zap.Error(err))
	}
}
