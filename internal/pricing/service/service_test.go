package service

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/smallbiznis/cushionly/internal/catalog/domain"
	"github.com/smallbiznis/cushionly/internal/config"
	"github.com/smallbiznis/cushionly/internal/configcache"
	pricingdomain "github.com/smallbiznis/cushionly/internal/pricing/domain"
	"github.com/smallbiznis/cushionly/internal/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const shop = "acme.myshopify.com"

type fakeCatalog struct {
	catalogdomain.Service
	snapshots atomic.Int32
}

func (f *fakeCatalog) Snapshot(_ context.Context, shop string, profileID snowflake.ID) (*catalogdomain.Snapshot, error) {
	f.snapshots.Add(1)
	snap := &catalogdomain.Snapshot{
		Shop: shop,
		Shapes: []catalogdomain.Shape{{
			ID:   1,
			Shop: shop,
			Name: "Rectangle",
			InputFields: []catalogdomain.InputField{
				{Key: "length", Required: true},
				{Key: "width", Required: true},
				{Key: "thickness", Required: true, Max: maxThickness()},
			},
			SurfaceAreaFormula: "length*width*2 + length*thickness*2 + width*thickness*2",
			VolumeFormula:      "length*width*thickness",
			IsActive:           true,
			IsDefault:          true,
		}},
		FillTypes: []catalogdomain.FillType{{ID: 10, Name: "Foam", PricePerCubicInch: 0.05, IsActive: true, IsDefault: true}},
		Fabrics:   []catalogdomain.Fabric{{ID: 30, Name: "Canvas", PricePerSqInch: 0.0625, IsActive: true, IsDefault: true}},
		AddOns: []catalogdomain.AddOnOption{
			{ID: 40, Kind: catalogdomain.AddOnPiping, Name: "Piping", PricingMode: catalogdomain.PricingModePrice, Price: 15, IsActive: true},
			{ID: 50, Kind: catalogdomain.AddOnTies, Name: "Ties", PricingMode: catalogdomain.PricingModePrice, Price: 8, IsActive: true},
		},
		Settings: catalogdomain.CalculatorSettings{Shop: shop, MarginCalculationMethod: catalogdomain.MarginMethodTier},
	}
	switch profileID {
	case 0:
	case 7:
		snap.Profile = &catalogdomain.Profile{ID: 7, Shop: shop, Name: "Outdoor", AdditionalPercent: 15}
	default:
		return nil, catalogdomain.ErrProfileNotFound
	}
	return snap, nil
}

func maxThickness() *float64 {
	v := 12.0
	return &v
}

func newTestService(t *testing.T) (*Service, *fakeCatalog) {
	t.Helper()
	catalog := &fakeCatalog{}
	svc := New(Params{
		Log:     zap.NewNop(),
		Catalog: catalog,
		Loader:  configcache.NewLoader[resolver.Configuration](configcache.NewMemory[resolver.Configuration](), zap.NewNop()),
		Pricing: config.NewStaticPricingConfigHolder(config.DefaultPricingConfig()),
	}).(*Service)
	return svc, catalog
}

func id(v int64) *snowflake.ID {
	s := snowflake.ID(v)
	return &s
}

func workedExample() pricingdomain.QuoteRequest {
	return pricingdomain.QuoteRequest{
		Shop:      "ACME.myshopify.com",
		ProfileID: "7",
		QuoteInput: resolver.QuoteInput{
			Pieces: []resolver.PieceInput{{
				Dimensions: map[string]float64{"length": 20, "width": 18, "thickness": 4},
				AddOns: map[catalogdomain.AddOnKind]*snowflake.ID{
					catalogdomain.AddOnPiping: id(40),
					catalogdomain.AddOnTies:   id(50),
				},
			}},
		},
	}
}

func TestQuoteWorkedExample(t *testing.T) {
	svc, _ := newTestService(t)

	quote, err := svc.Quote(context.Background(), workedExample())
	require.NoError(t, err)

	assert.Len(t, quote.ID, 26)
	assert.Equal(t, shop, quote.Shop)
	require.NotNil(t, quote.ProfileID)
	assert.Equal(t, snowflake.ID(7), *quote.ProfileID)
	assert.InDelta(t, 159.0, quote.Subtotal, 1e-9)
	assert.Equal(t, "182.85", quote.FinalPrice)
	assert.Equal(t, "182.85", quote.Attributes[pricingdomain.CalculatedPriceAttribute])
	assert.True(t, quote.Complete)
}

func TestQuoteIncompleteStillPrices(t *testing.T) {
	svc, _ := newTestService(t)

	quote, err := svc.Quote(context.Background(), pricingdomain.QuoteRequest{Shop: shop})
	require.NoError(t, err)

	assert.False(t, quote.Complete)
	assert.Len(t, quote.Missing, 3)
	assert.Equal(t, "0.00", quote.FinalPrice)
}

func TestQuoteOutOfRangeDimensionIsIncomplete(t *testing.T) {
	svc, _ := newTestService(t)

	req := workedExample()
	req.Pieces[0].Dimensions["thickness"] = 20
	quote, err := svc.Quote(context.Background(), req)
	require.NoError(t, err)

	assert.False(t, quote.Complete)
	require.Len(t, quote.Missing, 1)
	assert.Equal(t, "thickness", quote.Missing[0].Key)
}

func TestQuoteValidation(t *testing.T) {
	svc, catalog := newTestService(t)
	ctx := context.Background()

	req := workedExample()
	req.Pieces = make([]resolver.PieceInput, catalogdomain.MaxPieces+1)
	_, err := svc.Quote(ctx, req)
	assert.ErrorIs(t, err, pricingdomain.ErrTooManyPieces)

	req = workedExample()
	req.Pieces[0].Dimensions["width"] = -1
	_, err = svc.Quote(ctx, req)
	assert.ErrorIs(t, err, pricingdomain.ErrInvalidQuote)

	req = workedExample()
	req.Pieces[0].Panels = -2
	_, err = svc.Quote(ctx, req)
	assert.ErrorIs(t, err, pricingdomain.ErrInvalidQuote)

	req = workedExample()
	req.Shop = " "
	_, err = svc.Quote(ctx, req)
	assert.ErrorIs(t, err, pricingdomain.ErrInvalidShop)

	req = workedExample()
	req.ProfileID = "sofa"
	_, err = svc.Quote(ctx, req)
	assert.ErrorIs(t, err, pricingdomain.ErrInvalidID)

	req = workedExample()
	req.ProfileID = "8"
	_, err = svc.Quote(ctx, req)
	assert.ErrorIs(t, err, pricingdomain.ErrProfileNotFound)

	assert.Equal(t, int32(1), catalog.snapshots.Load())
}

func TestConfigurationIsCachedUntilInvalidated(t *testing.T) {
	svc, catalog := newTestService(t)
	ctx := context.Background()

	cfg, err := svc.Configuration(ctx, shop, "")
	require.NoError(t, err)
	assert.Nil(t, cfg.ProfileID)
	require.Len(t, cfg.Pieces, 1)

	_, err = svc.Configuration(ctx, shop, "0")
	require.NoError(t, err)
	_, err = svc.Quote(ctx, pricingdomain.QuoteRequest{Shop: shop})
	require.NoError(t, err)
	assert.Equal(t, int32(1), catalog.snapshots.Load())

	_, err = svc.Configuration(ctx, shop, "7")
	require.NoError(t, err)
	assert.Equal(t, int32(2), catalog.snapshots.Load())

	require.NoError(t, svc.Invalidate(ctx, shop))
	_, err = svc.Configuration(ctx, shop, "")
	require.NoError(t, err)
	_, err = svc.Configuration(ctx, shop, "7")
	require.NoError(t, err)
	assert.Equal(t, int32(4), catalog.snapshots.Load())
}

func TestQuoteIDsAreUnique(t *testing.T) {
	svc, _ := newTestService(t)
	seen := map[string]struct{}{}
	for i := 0; i < 20; i++ {
		quote, err := svc.Quote(context.Background(), workedExample())
		require.NoError(t, err)
		_, dup := seen[quote.ID]
		require.False(t, dup)
		seen[quote.ID] = struct{}{}
	}
}

func TestParseProfileID(t *testing.T) {
	for _, raw := range []string{"", " ", "0"} {
		got, err := parseProfileID(raw)
		require.NoError(t, err)
		assert.Zero(t, got)
	}
	got, err := parseProfileID(" 42 ")
	require.NoError(t, err)
	assert.Equal(t, snowflake.ID(42), got)

	_, err = parseProfileID("-3")
	assert.ErrorIs(t, err, pricingdomain.ErrInvalidID)
}
