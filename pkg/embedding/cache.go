package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/metrics"
	"github.com/Ramsey-B/clover/pkg/redis"
)

// Cache is the subset of the Redis client the cached embedder needs.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

// CachedEmbedder wraps an Embedder with a Redis cache keyed on the model and
// text so repeated profiles do not burn API tokens. Cache failures degrade
// to the underlying embedder.
type CachedEmbedder struct {
	inner  Embedder
	cache  Cache
	model  string
	ttl    time.Duration
	logger ectologger.Logger
}

// NewCachedEmbedder wraps inner with a cache. A zero ttl means entries never
// expire.
func NewCachedEmbedder(inner Embedder, cache Cache, model string, ttl time.Duration, logger ectologger.Logger) *CachedEmbedder {
	return &CachedEmbedder{
		inner:  inner,
		cache:  cache,
		model:  model,
		ttl:    ttl,
		logger: logger,
	}
}

// EmbedText returns the cached vector when present, otherwise delegates and
// stores the result.
func (e *CachedEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	key := cacheKey(e.model, text)

	cached, err := e.cache.Get(ctx, key)
	if err == nil {
		var vector []float32
		if jsonErr := json.Unmarshal([]byte(cached), &vector); jsonErr == nil {
			metrics.EmbeddingCacheHits.WithLabelValues("hit").Inc()
			return vector, nil
		}
		// Unreadable entry; fall through and overwrite it.
		e.logger.WithContext(ctx).Warn("Discarding corrupt embedding cache entry")
	} else if !redis.IsNotFound(err) {
		e.logger.WithContext(ctx).WithError(err).Warn("Embedding cache read failed")
	}
	metrics.EmbeddingCacheHits.WithLabelValues("miss").Inc()

	vector, err := e.inner.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(vector)
	if err != nil {
		return nil, fmt.Errorf("failed to encode embedding for caching: %w", err)
	}
	if err := e.cache.Set(ctx, key, string(encoded), e.ttl); err != nil {
		e.logger.WithContext(ctx).WithError(err).Warn("Embedding cache write failed")
	}

	return vector, nil
}

func cacheKey(model, text string) string {
	sum := sha256.Sum256([]byte(model + "|" + text))
	return "embedding:" + hex.EncodeToString(sum[:])
}
