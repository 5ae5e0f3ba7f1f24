package configcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/golang/snappy"
	redis "github.com/redis/go-redis/v9"
)

const (
	defaultRedisPrefix = "cushionly:config:"
	scanBatch          = 200
)

// Redis shares cached configuration between instances. Values are stored as
// snappy-compressed JSON with a TTL; entry count is bounded only by the TTL.
type Redis[V any] struct {
	client redis.UniversalClient
	prefix string
	opts   options
}

func NewRedis[V any](client redis.UniversalClient, opts ...Option) *Redis[V] {
	return &Redis[V]{
		client: client,
		prefix: defaultRedisPrefix,
		opts:   buildOptions(opts),
	}
}

func (r *Redis[V]) redisKey(shop, profileID string) string {
	return r.prefix + Key(shop, profileID)
}

func (r *Redis[V]) Get(ctx context.Context, shop, profileID string) (V, bool, error) {
	var zero V
	if r == nil || r.client == nil {
		return zero, false, errors.New("redis cache not configured")
	}

	raw, err := r.client.Get(ctx, r.redisKey(shop, profileID)).Bytes()
	if errors.Is(err, redis.Nil) {
		r.opts.metrics.miss(backendRedis)
		return zero, false, nil
	}
	if err != nil {
		return zero, false, err
	}

	payload, err := snappy.Decode(nil, raw)
	if err != nil {
		return zero, false, fmt.Errorf("decode cached configuration: %w", err)
	}
	var value V
	if err := json.Unmarshal(payload, &value); err != nil {
		return zero, false, fmt.Errorf("unmarshal cached configuration: %w", err)
	}
	r.opts.metrics.hit(backendRedis)
	return value, true, nil
}

func (r *Redis[V]) Put(ctx context.Context, shop, profileID string, value V) error {
	if r == nil || r.client == nil {
		return errors.New("redis cache not configured")
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal configuration: %w", err)
	}
	return r.client.Set(ctx, r.redisKey(shop, profileID), snappy.Encode(nil, payload), r.opts.ttl).Err()
}

func (r *Redis[V]) Invalidate(ctx context.Context, shop string) error {
	if r == nil || r.client == nil {
		return errors.New("redis cache not configured")
	}

	pattern := escapeGlob(r.prefix+ShopPrefix(shop)) + "*"
	iter := r.client.Scan(ctx, 0, pattern, scanBatch).Iterator()

	var (
		batch   []string
		removed int
	)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := r.client.Del(ctx, batch...).Result()
		if err != nil {
			return err
		}
		removed += int(n)
		batch = batch[:0]
		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) >= scanBatch {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if err := flush(); err != nil {
		return err
	}
	r.opts.metrics.invalidate(backendRedis, removed)
	return nil
}

func escapeGlob(s string) string {
	var b strings.Builder
	for _, c := range s {
		switch c {
		case '*', '?', '[', ']', '\\':
			b.WriteRune('\\')
		}
		b.WriteRune(c)
	}
	return b.String()
}
