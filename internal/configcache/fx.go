package configcache

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/cushionly/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("configcache",
	fx.Provide(func() (*Metrics, error) { return NewMetrics(prometheus.DefaultRegisterer) }),
	fx.Provide(NewRedisClient),
)

// NewRedisClient connects to Redis when it is the selected cache backend and
// returns nil otherwise.
func NewRedisClient(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (redis.UniversalClient, error) {
	if cfg.Cache.Backend != config.CacheBackendRedis {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Cache.RedisAddr,
		Password: cfg.Cache.RedisPassword,
		DB:       cfg.Cache.RedisDB,
	})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				return err
			}
			log.Named("configcache").Info("redis connected", zap.String("addr", cfg.Cache.RedisAddr))
			return nil
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return client, nil
}
