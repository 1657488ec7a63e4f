// internal/app/system/pagecache/pagecache.go
package pagecache

import (
	"context"
	"time"

	pagestore "github.com/dalemusser/sagov/internal/app/store/pages"
	"github.com/dalemusser/sagov/internal/domain/models"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var lookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "sagov",
	Subsystem: "pagecache",
	Name:      "lookups_total",
	Help:      "Public page lookups by cache result.",
}, []string{"result"})

const (
	DefaultSize = 64
	DefaultTTL  = 5 * time.Minute
)

// Loader reads a page from storage.
type Loader interface {
	GetBySlug(ctx context.Context, slug string) (models.PageContent, error)
}

// Cache keeps recently served pages in memory for the public site.
// Values are shared between readers and must not be modified.
type Cache struct {
	src Loader
	lru *expirable.LRU[string, models.PageContent]
}

// New wraps src. Non-positive size or ttl fall back to the defaults.
func New(src Loader, size int, ttl time.Duration) *Cache {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		src: src,
		lru: expirable.NewLRU[string, models.PageContent](size, nil, ttl),
	}
}

// Get returns the page for slug, loading it on a miss. Errors, including
// mongo.ErrNoDocuments, are returned as-is and never cached.
func (c *Cache) Get(ctx context.Context, slug string) (models.PageContent, error) {
	key := pagestore.NormalizeSlug(slug)
	if p, ok := c.lru.Get(key); ok {
		lookups.WithLabelValues("hit").Inc()
		return p, nil
	}
	lookups.WithLabelValues("miss").Inc()

	p, err := c.src.GetBySlug(ctx, key)
	if err != nil {
		return models.PageContent{}, err
	}
	c.lru.Add(key, p)
	return p, nil
}

// Invalidate drops slug so the next Get reads storage.
func (c *Cache) Invalidate(slug string) {
	c.lru.Remove(pagestore.NormalizeSlug(slug))
}

// Purge empties the cache.
func (c *Cache) Purge() {
	c.lru.Purge()
}

// Len returns the number of cached pages.
func (c *Cache) Len() int {
	return c.lru.Len()
}
