// Package enrichcache memoizes the (summary, embedding) pair by exact input
// text, so repeated uploads of byte-identical content do not re-incur the
// language-model cost. Caching is a cost optimization only: a cache outage
// degrades to calling the provider again.
package enrichcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docdex/internal/db"
	"github.com/kailas-cloud/docdex/internal/domain"
)

var cacheKeyPrefix = domain.KeyPrefix + "enrich_cache:"

// store is the consumer interface for the enrichment cache.
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// entry is the serialized cache value. Summary and embedding travel as one
// value so the pair is always hydrated together, matching how it is computed.
type entry struct {
	Summary   string    `json:"summary"`
	Embedding []float32 `json:"embedding"`
}

// CachedEnricher is a content-addressed caching decorator around a domain.Enricher.
type CachedEnricher struct {
	inner      domain.Enricher
	store      store
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

var _ domain.Enricher = (*CachedEnricher)(nil)

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner domain.Enricher,
	s store,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedEnricher {
	return &CachedEnricher{
		inner:      inner,
		store:      s,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Enrich returns a cached enrichment or calls the inner enricher. Only
// successful enrichments (non-empty embedding) are written back: placeholder
// and failure outcomes stay uncached so a later retry can succeed.
func (c *CachedEnricher) Enrich(ctx context.Context, text string) domain.Enrichment {
	if text == "" {
		return c.inner.Enrich(ctx, text)
	}

	key := c.cacheKey(text)

	if enr, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return enr
	}

	c.incCache("miss")

	result := c.inner.Enrich(ctx, text)
	if len(result.Embedding) > 0 {
		c.putToCache(ctx, key, result)
	}
	return result
}

func (c *CachedEnricher) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedEnricher) cacheKey(text string) string {
	h := sha256.Sum256([]byte(text))
	return cacheKeyPrefix + hex.EncodeToString(h[:])
}

func (c *CachedEnricher) getFromCache(ctx context.Context, key string) (domain.Enrichment, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached enrichment", zap.String("key", key), zap.Error(err))
		}
		return domain.Enrichment{}, false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		c.logger.Warn("Failed to parse cached enrichment", zap.String("key", key), zap.Error(err))
		return domain.Enrichment{}, false
	}
	if len(e.Embedding) == 0 {
		return domain.Enrichment{}, false
	}

	return domain.Enrichment{Summary: e.Summary, Embedding: e.Embedding}, true
}

func (c *CachedEnricher) putToCache(ctx context.Context, key string, enr domain.Enrichment) {
	data, err := json.Marshal(entry{Summary: enr.Summary, Embedding: enr.Embedding})
	if err != nil {
		c.logger.Warn("Failed to encode enrichment", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.Set(ctx, key, data); err != nil {
		c.logger.Warn("Failed to cache enrichment", zap.String("key", key), zap.Error(err))
	}
}
