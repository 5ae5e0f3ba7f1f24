package config

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	catalogdomain "github.com/smallbiznis/cushionly/internal/catalog/domain"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// PricingConfig is read from pricing.yml and reloaded on change.
type PricingConfig struct {
	Cache           PricingCacheConfig               `mapstructure:"cache"`
	MaxPieces       int                              `mapstructure:"maxPieces"`
	DefaultSettings catalogdomain.CalculatorSettings `mapstructure:"defaultSettings"`
}

type PricingCacheConfig struct {
	TTL        time.Duration `mapstructure:"ttl"`
	MaxEntries int           `mapstructure:"maxEntries"`
}

func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		Cache: PricingCacheConfig{
			TTL:        5 * time.Minute,
			MaxEntries: 100,
		},
		MaxPieces:       catalogdomain.MaxPieces,
		DefaultSettings: catalogdomain.DefaultCalculatorSettings(),
	}
}

var defaultPricingPaths = []string{"/etc/cushionly", "."}

type PricingConfigHolder struct {
	current atomic.Value // holds PricingConfig
}

func NewPricingConfigHolder(log *zap.Logger) (*PricingConfigHolder, error) {
	return newPricingConfigHolder(log, defaultPricingPaths...)
}

// NewStaticPricingConfigHolder returns a holder that never reloads.
func NewStaticPricingConfigHolder(cfg PricingConfig) *PricingConfigHolder {
	holder := &PricingConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func newPricingConfigHolder(log *zap.Logger, paths ...string) (*PricingConfigHolder, error) {
	log = log.Named("config.pricing")
	v := viper.New()

	v.SetConfigName("pricing")
	v.SetConfigType("yml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix("CUSHIONLY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setPricingDefaults(v, DefaultPricingConfig())

	found := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		found = false
		log.Info("pricing.yml not found, using defaults")
	}

	cfg, err := decodePricingConfig(v)
	if err != nil {
		return nil, err
	}

	holder := NewStaticPricingConfigHolder(cfg)
	if !found {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := decodePricingConfig(v)
		if err != nil {
			log.Warn("pricing config reload ignored", zap.String("file", e.Name), zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("pricing config reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

func (h *PricingConfigHolder) Get() PricingConfig {
	return h.current.Load().(PricingConfig)
}

func setPricingDefaults(v *viper.Viper, d PricingConfig) {
	v.SetDefault("pricing.cache.ttl", d.Cache.TTL)
	v.SetDefault("pricing.cache.maxEntries", d.Cache.MaxEntries)
	v.SetDefault("pricing.maxPieces", d.MaxPieces)

	s := d.DefaultSettings
	v.SetDefault("pricing.defaultSettings.shippingPercent", s.ShippingPercent)
	v.SetDefault("pricing.defaultSettings.labourPercent", s.LabourPercent)
	v.SetDefault("pricing.defaultSettings.conversionPercent", s.ConversionPercent)
	v.SetDefault("pricing.defaultSettings.tiesIncludeInShippingLabour", s.TiesIncludeInShippingLabour)
	v.SetDefault("pricing.defaultSettings.marginCalculationMethod", string(s.MarginCalculationMethod))
	v.SetDefault("pricing.defaultSettings.flatMarginThreshold", s.FlatMarginThreshold)
	v.SetDefault("pricing.defaultSettings.flatMarginPercent", s.FlatMarginPercent)
	v.SetDefault("pricing.defaultSettings.formulaThreshold", s.FormulaThreshold)
	v.SetDefault("pricing.defaultSettings.formulaLowConstant", s.FormulaLowConstant)
	v.SetDefault("pricing.defaultSettings.formulaLowCoefficient", s.FormulaLowCoefficient)
	v.SetDefault("pricing.defaultSettings.formulaHighConstant", s.FormulaHighConstant)
	v.SetDefault("pricing.defaultSettings.formulaHighCoefficient", s.FormulaHighCoefficient)
}

func decodePricingConfig(v *viper.Viper) (PricingConfig, error) {
	var cfg PricingConfig
	if err := v.UnmarshalKey("pricing", &cfg); err != nil {
		return PricingConfig{}, err
	}
	if err := validatePricingConfig(cfg); err != nil {
		return PricingConfig{}, err
	}
	return cfg, nil
}

func validatePricingConfig(cfg PricingConfig) error {
	if cfg.Cache.TTL <= 0 {
		return errors.New("pricing.cache.ttl must be positive")
	}
	if cfg.Cache.MaxEntries <= 0 {
		return errors.New("pricing.cache.maxEntries must be positive")
	}
	if cfg.MaxPieces < 1 || cfg.MaxPieces > catalogdomain.MaxPieces {
		return fmt.Errorf("pricing.maxPieces must be between 1 and %d", catalogdomain.MaxPieces)
	}
	if err := cfg.DefaultSettings.Validate(); err != nil {
		return fmt.Errorf("pricing.defaultSettings: %w", err)
	}
	return nil
}
