package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	catalogdomain "github.com/smallbiznis/cushionly/internal/catalog/domain"
	"github.com/smallbiznis/cushionly/internal/config"
	"github.com/smallbiznis/cushionly/internal/configcache"
	"github.com/smallbiznis/cushionly/internal/observability/logger"
	"github.com/smallbiznis/cushionly/internal/observability/metrics"
	pricingdomain "github.com/smallbiznis/cushionly/internal/pricing/domain"
	"github.com/smallbiznis/cushionly/internal/pricing/engine"
	"github.com/smallbiznis/cushionly/internal/resolver"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log     *zap.Logger
	Catalog catalogdomain.Service
	Loader  *configcache.Loader[resolver.Configuration]
	Pricing *config.PricingConfigHolder
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	log     *zap.Logger
	catalog catalogdomain.Service
	loader  *configcache.Loader[resolver.Configuration]
	pricing *config.PricingConfigHolder
	metrics *metrics.Metrics
	engine  *engine.Engine
	tracer  trace.Tracer
	now     func() time.Time
}

func New(p Params) pricingdomain.Service {
	return &Service{
		log:     p.Log.Named("pricing.service"),
		catalog: p.Catalog,
		loader:  p.Loader,
		pricing: p.Pricing,
		metrics: p.Metrics,
		engine:  engine.New(),
		tracer:  otel.Tracer("cushionly/pricing"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Configuration(ctx context.Context, shop, profileID string) (*resolver.Configuration, error) {
	ctx, span := s.tracer.Start(ctx, "pricing.Configuration")
	defer span.End()

	cfg, err := s.configuration(ctx, span, shop, profileID)
	if err != nil {
		span.SetStatus(codes.Error, "configuration failed")
		return nil, err
	}
	return cfg, nil
}

func (s *Service) configuration(ctx context.Context, span trace.Span, shop, profileID string) (*resolver.Configuration, error) {
	shop, err := normalizeShop(shop)
	if err != nil {
		return nil, err
	}
	id, err := parseProfileID(profileID)
	if err != nil {
		return nil, err
	}

	key, label := "", "default"
	if id != 0 {
		key = id.String()
		label = key
	}
	span.SetAttributes(attribute.String("shop", shop), attribute.String("profile_id", label))

	cfg, hit, err := s.loader.Get(ctx, shop, key, func(ctx context.Context) (resolver.Configuration, error) {
		snap, err := s.catalog.Snapshot(ctx, shop, id)
		if err != nil {
			return resolver.Configuration{}, err
		}
		return resolver.ResolveAll(*snap), nil
	})
	if err != nil {
		s.metrics.RecordConfigLoad(ctx, metrics.LoadError)
		return nil, err
	}

	span.SetAttributes(attribute.Bool("cache_hit", hit))
	if hit {
		s.metrics.RecordConfigLoad(ctx, metrics.LoadHit)
	} else {
		s.metrics.RecordConfigLoad(ctx, metrics.LoadMiss)
	}
	return &cfg, nil
}

// Quote resolves the request against the shop configuration and prices it.
// Incomplete input still yields a best-effort quote with Complete unset.
func (s *Service) Quote(ctx context.Context, req pricingdomain.QuoteRequest) (*pricingdomain.Quote, error) {
	ctx, span := s.tracer.Start(ctx, "pricing.Quote")
	defer span.End()

	if err := s.validate(req.QuoteInput); err != nil {
		span.SetStatus(codes.Error, "invalid quote")
		return nil, err
	}

	cfg, err := s.configuration(ctx, span, req.Shop, req.ProfileID)
	if err != nil {
		span.SetStatus(codes.Error, "configuration failed")
		return nil, err
	}

	selections := resolver.Select(*cfg, req.QuoteInput)
	breakdown := s.engine.PriceAll(selections, cfg.AdditionalPercent, cfg.Settings, cfg.Tiers)
	finalPrice := breakdown.FinalPrice.StringFixed(2)

	quote := &pricingdomain.Quote{
		ID:         ulid.Make().String(),
		Shop:       cfg.Shop,
		ProfileID:  cfg.ProfileID,
		Breakdown:  breakdown,
		FinalPrice: finalPrice,
		Attributes: map[string]string{pricingdomain.CalculatedPriceAttribute: finalPrice},
		CreatedAt:  s.now(),
	}

	span.SetAttributes(
		attribute.String("quote_id", quote.ID),
		attribute.Int("pieces", len(selections)),
		attribute.Bool("complete", breakdown.Complete),
	)
	s.metrics.RecordQuote(ctx, string(cfg.Settings.MarginCalculationMethod), breakdown.Complete)

	log := logger.WithContext(ctx, s.log)
	if len(breakdown.FormulaIssues) > 0 {
		log.Warn("quote priced with formula issues",
			zap.String("quote_id", quote.ID),
			zap.Int("issues", len(breakdown.FormulaIssues)),
		)
	}
	log.Debug("quote priced",
		zap.String("quote_id", quote.ID),
		zap.String("final_price", finalPrice),
		zap.Bool("complete", breakdown.Complete),
		zap.Float64("margin_percent", breakdown.MarginPercent),
	)
	return quote, nil
}

func (s *Service) Invalidate(ctx context.Context, shop string) error {
	shop, err := normalizeShop(shop)
	if err != nil {
		return err
	}
	return s.loader.Invalidate(ctx, shop)
}

func (s *Service) validate(in resolver.QuoteInput) error {
	if limit := s.pricing.Get().MaxPieces; len(in.Pieces) > limit {
		return fmt.Errorf("%w: %d > %d", pricingdomain.ErrTooManyPieces, len(in.Pieces), limit)
	}
	for i, piece := range in.Pieces {
		if piece.Panels < 0 {
			return fmt.Errorf("%w: piece %d panels", pricingdomain.ErrInvalidQuote, i)
		}
		for key, v := range piece.Dimensions {
			if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: piece %d dimension %q", pricingdomain.ErrInvalidQuote, i, key)
			}
		}
	}
	return nil
}

func normalizeShop(shop string) (string, error) {
	shop = strings.ToLower(strings.TrimSpace(shop))
	if shop == "" {
		return "", pricingdomain.ErrInvalidShop
	}
	return shop, nil
}

// parseProfileID accepts an empty string or "0" for the shop defaults.
func parseProfileID(raw string) (snowflake.ID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "0" {
		return 0, nil
	}
	id, err := snowflake.ParseString(raw)
	if err != nil || id < 0 {
		return 0, pricingdomain.ErrInvalidID
	}
	return id, nil
}
