// Package cache keeps the full taxonomy node set between requests. The
// resolver needs every row for each query, so the set is cached whole and
// dropped on any write.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ikkim/shopadmin-backend/internal/app/model"
	"github.com/ikkim/shopadmin-backend/pkg/logger"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

const taxonomyKey = "taxonomy:nodes"

// TaxonomyCache stores the complete node list. Failures are logged and
// reported as misses; the database stays the source of truth.
type TaxonomyCache interface {
	Get(ctx context.Context) ([]model.TaxonomyNode, bool)
	Set(ctx context.Context, nodes []model.TaxonomyNode)
	Invalidate(ctx context.Context)
}

type memoryTaxonomyCache struct {
	cache *gocache.Cache
}

// NewMemoryTaxonomyCache keeps the node list in process memory for ttl.
func NewMemoryTaxonomyCache(ttl time.Duration) TaxonomyCache {
	return &memoryTaxonomyCache{cache: gocache.New(ttl, 2*ttl)}
}

func (c *memoryTaxonomyCache) Get(_ context.Context) ([]model.TaxonomyNode, bool) {
	x, found := c.cache.Get(taxonomyKey)
	if !found {
		return nil, false
	}
	nodes := x.([]model.TaxonomyNode)
	// Callers may mutate the slice they get back.
	out := make([]model.TaxonomyNode, len(nodes))
	copy(out, nodes)
	return out, true
}

func (c *memoryTaxonomyCache) Set(_ context.Context, nodes []model.TaxonomyNode) {
	stored := make([]model.TaxonomyNode, len(nodes))
	copy(stored, nodes)
	c.cache.Set(taxonomyKey, stored, gocache.DefaultExpiration)
}

func (c *memoryTaxonomyCache) Invalidate(_ context.Context) {
	c.cache.Delete(taxonomyKey)
}

type redisTaxonomyCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisTaxonomyCache shares the node list across instances through Redis.
func NewRedisTaxonomyCache(client *redis.Client, ttl time.Duration) TaxonomyCache {
	return &redisTaxonomyCache{client: client, ttl: ttl}
}

func (c *redisTaxonomyCache) Get(ctx context.Context) ([]model.TaxonomyNode, bool) {
	data, err := c.client.Get(ctx, taxonomyKey).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logger.Warn("Taxonomy cache read failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, false
	}

	var nodes []model.TaxonomyNode
	if err := json.Unmarshal(data, &nodes); err != nil {
		logger.Warn("Taxonomy cache entry is corrupt, ignoring", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, false
	}
	return nodes, true
}

func (c *redisTaxonomyCache) Set(ctx context.Context, nodes []model.TaxonomyNode) {
	data, err := json.Marshal(nodes)
	if err != nil {
		logger.Error("Failed to encode taxonomy cache entry", err)
		return
	}
	if err := c.client.Set(ctx, taxonomyKey, data, c.ttl).Err(); err != nil {
		logger.Warn("Taxonomy cache write failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (c *redisTaxonomyCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, taxonomyKey).Err(); err != nil {
		logger.Warn("Taxonomy cache invalidation failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
