// Package configcache caches resolved storefront configuration per
// (shop, profile). Computed prices are never cached.
package configcache

import (
	"context"
	"strings"
	"time"
)

const (
	DefaultTTL        = 5 * time.Minute
	DefaultMaxEntries = 100

	defaultProfileKey = "default"
)

// Key builds the cache key for a shop and optional profile id.
func Key(shop, profileID string) string {
	profileID = strings.TrimSpace(profileID)
	if profileID == "" || profileID == "0" {
		profileID = defaultProfileKey
	}
	return shop + "-" + profileID
}

// ShopPrefix is the key prefix shared by every entry of shop.
func ShopPrefix(shop string) string {
	return shop + "-"
}

// Store is a configuration cache backend. A miss is reported with ok=false
// and a nil error; errors are reserved for backend failures.
type Store[V any] interface {
	Get(ctx context.Context, shop, profileID string) (value V, ok bool, err error)
	Put(ctx context.Context, shop, profileID string, value V) error
	Invalidator
}

// Invalidator drops every cached entry of a shop. Catalog mutations call it.
type Invalidator interface {
	Invalidate(ctx context.Context, shop string) error
}

type options struct {
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
	metrics    *Metrics
}

type Option func(*options)

func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

// WithMaxEntries bounds the memory store. Ignored by Redis.
func WithMaxEntries(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxEntries = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func buildOptions(opts []Option) options {
	o := options{
		ttl:        DefaultTTL,
		maxEntries: DefaultMaxEntries,
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
