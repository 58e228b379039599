// Package cache is an optional Redis-backed answer cache. The pipeline is
// fully functional without it; when configured it short-circuits repeated
// questions against the same immutable dataset.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/roarlabs/clubgpt/internal/models"
	"github.com/rs/zerolog"
)

const keyPrefix = "clubgpt:answer:"

type AnswerCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zerolog.Logger
}

func New(client *redis.Client, ttl time.Duration, logger *zerolog.Logger) *AnswerCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &AnswerCache{client: client, ttl: ttl, logger: logger}
}

// Key derives a deterministic cache key from a question. Case and
// surrounding whitespace do not change the key.
func Key(question string) string {
	normalized := strings.ToLower(strings.TrimSpace(question))
	sum := sha256.Sum256([]byte(normalized))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Get returns the cached answer for a question, if any. Redis failures are
// logged and treated as misses; the cache must never fail a request.
func (c *AnswerCache) Get(ctx context.Context, question string) (*models.AnswerResult, bool) {
	data, err := c.client.Get(ctx, Key(question)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn().Err(err).Msg("answer cache read failed")
		}
		return nil, false
	}

	var result models.AnswerResult
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Warn().Err(err).Msg("answer cache entry corrupt, ignoring")
		return nil, false
	}

	return &result, true
}

// Set stores an answer with the configured TTL. Failures are logged only.
func (c *AnswerCache) Set(ctx context.Context, question string, result models.AnswerResult) {
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Warn().Err(err).Msg("answer cache marshal failed")
		return
	}

	if err := c.client.Set(ctx, Key(question), data, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("answer cache write failed")
	}
}
