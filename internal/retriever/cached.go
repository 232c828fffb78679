package retriever

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/convsearch/retrieval-eval/internal/models"
)

// CachedSearcher is a read-through redis cache in front of a Searcher.
// Repeated evaluation runs over the same dataset re-issue identical
// queries, so cache hits save a backend round-trip per turn. Cache failures
// are logged and fall through to the backend; the cache never makes a
// search fail.
type CachedSearcher struct {
	backend Searcher
	rdb     *redis.Client
	ttl     time.Duration
	logger  *zerolog.Logger
}

func NewCachedSearcher(backend Searcher, rdb *redis.Client, ttl time.Duration, logger *zerolog.Logger) *CachedSearcher {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CachedSearcher{
		backend: backend,
		rdb:     rdb,
		ttl:     ttl,
		logger:  logger,
	}
}

// CacheKey derives the redis key for a query/topK pair. Queries can be long
// conversational sentences, so the key carries a digest rather than the
// raw text.
func CacheKey(query string, topK int) string {
	sum := sha256.Sum256([]byte(query))
	return fmt.Sprintf("retrieval:%s:%d", hex.EncodeToString(sum[:8]), topK)
}

func (c *CachedSearcher) Search(ctx context.Context, query string, topK int) ([]models.ScoredDocument, error) {
	key := CacheKey(query, topK)

	cached, err := c.rdb.Get(ctx, key).Result()
	if err == nil {
		var docs []models.ScoredDocument
		if err := json.Unmarshal([]byte(cached), &docs); err == nil {
			c.logger.Debug().Str("key", key).Msg("retrieval cache hit")
			return docs, nil
		}
		c.logger.Warn().Str("key", key).Msg("corrupt cache entry, refetching")
	} else if err != redis.Nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("retrieval cache read failed")
	}

	docs, err := c.backend.Search(ctx, query, topK)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(docs)
	if err == nil {
		if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("retrieval cache write failed")
		}
	}
	return docs, nil
}
