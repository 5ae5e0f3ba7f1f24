package configcache

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// LoadFunc produces the value for a cache miss.
type LoadFunc[V any] func(ctx context.Context) (V, error)

// Loader reads through a Store. Concurrent misses on the same key share a
// single load. Store failures are logged and treated as misses.
type Loader[V any] struct {
	store Store[V]
	log   *zap.Logger
	group singleflight.Group
}

func NewLoader[V any](store Store[V], log *zap.Logger) *Loader[V] {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader[V]{store: store, log: log.Named("configcache")}
}

// Get returns the cached value or calls load and caches its result. The
// boolean reports a cache hit.
func (l *Loader[V]) Get(ctx context.Context, shop, profileID string, load LoadFunc[V]) (V, bool, error) {
	value, ok, err := l.store.Get(ctx, shop, profileID)
	if err != nil {
		l.log.Warn("cache read failed", zap.String("shop", shop), zap.String("profile_id", profileID), zap.Error(err))
	}
	if err == nil && ok {
		return value, true, nil
	}

	res, err, _ := l.group.Do(Key(shop, profileID), func() (any, error) {
		loaded, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if err := l.store.Put(ctx, shop, profileID, loaded); err != nil {
			l.log.Warn("cache write failed", zap.String("shop", shop), zap.String("profile_id", profileID), zap.Error(err))
		}
		return loaded, nil
	})
	if err != nil {
		var zero V
		return zero, false, err
	}
	return res.(V), false, nil
}

// Invalidate forwards to the underlying store.
func (l *Loader[V]) Invalidate(ctx context.Context, shop string) error {
	return l.store.Invalidate(ctx, shop)
}
