package pricing

import (
	"errors"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/cushionly/internal/config"
	"github.com/smallbiznis/cushionly/internal/configcache"
	"github.com/smallbiznis/cushionly/internal/pricing/service"
	"github.com/smallbiznis/cushionly/internal/resolver"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("pricing.service",
	fx.Provide(NewStore),
	fx.Provide(NewLoader),
	fx.Provide(func(l *configcache.Loader[resolver.Configuration]) configcache.Invalidator { return l }),
	fx.Provide(service.New),
)

type StoreParams struct {
	fx.In

	Config  config.Config
	Pricing *config.PricingConfigHolder
	Redis   redis.UniversalClient `optional:"true"`
	Metrics *configcache.Metrics  `optional:"true"`
}

// NewStore builds the configuration cache for the selected backend. Cache
// sizing is read once at startup.
func NewStore(p StoreParams) (configcache.Store[resolver.Configuration], error) {
	cache := p.Pricing.Get().Cache
	opts := []configcache.Option{
		configcache.WithTTL(cache.TTL),
		configcache.WithMaxEntries(cache.MaxEntries),
		configcache.WithMetrics(p.Metrics),
	}

	if p.Config.Cache.Backend == config.CacheBackendRedis {
		if p.Redis == nil {
			return nil, errors.New("redis cache backend selected without a redis client")
		}
		return configcache.NewRedis[resolver.Configuration](p.Redis, opts...), nil
	}
	return configcache.NewMemory[resolver.Configuration](opts...), nil
}

func NewLoader(store configcache.Store[resolver.Configuration], log *zap.Logger) *configcache.Loader[resolver.Configuration] {
	return configcache.NewLoader(store, log)
}
