package vectorindex

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"juris-rag-be/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const DefaultCacheKeyPrefix = "rag:retrieval:"

// CachedIndex serves repeated searches from Redis. Any cache failure falls
// through to the wrapped index.
type CachedIndex struct {
	next      Index
	redis     *redis.Client
	ttl       time.Duration
	keyPrefix string
	logger    logger.ILogger
}

func NewCachedIndex(next Index, client *redis.Client, ttl time.Duration, log logger.ILogger) *CachedIndex {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &CachedIndex{
		next:      next,
		redis:     client,
		ttl:       ttl,
		keyPrefix: DefaultCacheKeyPrefix,
		logger:    log,
	}
}

func (c *CachedIndex) Search(ctx context.Context, text string, limit int, filter Filter) ([]Hit, error) {
	if c.redis == nil {
		return c.next.Search(ctx, text, limit, filter)
	}

	key := c.cacheKey(text, limit, filter)

	data, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var hits []Hit
		if jsonErr := json.Unmarshal(data, &hits); jsonErr == nil {
			c.logger.Debug("VECTOR_CACHE", "Cache hit", map[string]interface{}{"key": key, "hits": len(hits)})
			return hits, nil
		}
		_ = c.redis.Del(ctx, key).Err()
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("VECTOR_CACHE", "Cache read failed", map[string]interface{}{"error": err.Error()})
	}

	hits, err := c.next.Search(ctx, text, limit, filter)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(hits); err == nil {
		if err := c.redis.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.logger.Warn("VECTOR_CACHE", "Cache write failed", map[string]interface{}{"error": err.Error()})
		}
	}
	return hits, nil
}

func (c *CachedIndex) cacheKey(text string, limit int, filter Filter) string {
	var b strings.Builder
	b.WriteString(text)
	b.WriteByte('|')
	b.WriteString(filter.Court)
	b.WriteByte('|')
	b.WriteString(filter.Judge)
	b.WriteByte('|')
	b.WriteString(strings.Join(filter.Topics, ","))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(limit))

	hash := sha256.Sum256([]byte(b.String()))
	return c.keyPrefix + hex.EncodeToString(hash[:])
}
