package redis

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/docquery-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.AnswerCache = (*AnswerCache)(nil)

const answerPrefix = "answer:"

// AnswerCache implements driven.AnswerCache using Redis. Keys combine
// the document hash with a digest of the question, so the same
// question against a different document never collides. Expiry rides
// on Redis TTL.
type AnswerCache struct {
	client *redis.Client
}

// NewAnswerCache creates a Redis-backed AnswerCache.
func NewAnswerCache(client *redis.Client) *AnswerCache {
	return &AnswerCache{client: client}
}

// Get retrieves a cached answer. A missing key is (_, false, nil).
func (c *AnswerCache) Get(ctx context.Context, documentHash, question string) (string, bool, error) {
	answer, err := c.client.Get(ctx, answerKey(documentHash, question)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get cached answer: %w", err)
	}
	return answer, true, nil
}

// Set stores an answer with the given TTL.
func (c *AnswerCache) Set(ctx context.Context, documentHash, question, answer string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := c.client.Set(ctx, answerKey(documentHash, question), answer, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache answer: %w", err)
	}
	return nil
}

func answerKey(documentHash, question string) string {
	sum := md5.Sum([]byte(question))
	return answerPrefix + documentHash + ":" + hex.EncodeToString(sum[:])
}
