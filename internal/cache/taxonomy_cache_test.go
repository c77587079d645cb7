package cache

import (
	"context"
	"testing"
	"time"

	"github.com/ikkim/shopadmin-backend/internal/app/model"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTaxonomyCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryTaxonomyCache(time.Minute)

	_, ok := c.Get(ctx)
	assert.False(t, ok)

	nodes := []model.TaxonomyNode{{ID: 1, Dept: "Apparel"}, {ID: 2, Dept: "Home"}}
	c.Set(ctx, nodes)
	nodes[0].Dept = "mutated"

	got, ok := c.Get(ctx)
	require.True(t, ok)
	require.Len(t, got, 2)
	assert.Equal(t, "Apparel", got[0].Dept)

	got[1].Dept = "mutated"
	again, _ := c.Get(ctx)
	assert.Equal(t, "Home", again[1].Dept)

	c.Invalidate(ctx)
	_, ok = c.Get(ctx)
	assert.False(t, ok)
}

func TestMemoryTaxonomyCache_Expires(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryTaxonomyCache(20 * time.Millisecond)
	c.Set(ctx, []model.TaxonomyNode{{ID: 1}})

	time.Sleep(40 * time.Millisecond)
	_, ok := c.Get(ctx)
	assert.False(t, ok)
}

func TestRedisTaxonomyCache_UnreachableServerIsAMiss(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { client.Close() })
	c := NewRedisTaxonomyCache(client, time.Minute)

	c.Set(ctx, []model.TaxonomyNode{{ID: 1}})
	_, ok := c.Get(ctx)
	assert.False(t, ok)
	c.Invalidate(ctx)
}
