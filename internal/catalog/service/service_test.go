package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/golang/mock/gomock"
	catalogdomain "github.com/smallbiznis/cushionly/internal/catalog/domain"
	"github.com/smallbiznis/cushionly/internal/catalog/domain/mock"
	"github.com/smallbiznis/cushionly/internal/catalog/repository"
	"github.com/smallbiznis/cushionly/internal/config"
	"github.com/smallbiznis/cushionly/internal/migration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const shop = "acme.myshopify.com"

type recordingInvalidator struct {
	mu    sync.Mutex
	shops []string
	err   error
}

func (r *recordingInvalidator) Invalidate(_ context.Context, shop string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shops = append(r.shops, shop)
	return r.err
}

func (r *recordingInvalidator) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.shops...)
}

func node(t *testing.T) *snowflake.Node {
	t.Helper()
	n, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return n
}

func newTestService(t *testing.T) (*Service, *recordingInvalidator) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, migration.Run(context.Background(), db))

	inv := &recordingInvalidator{}
	svc := New(Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node(t),
		Repo:        repository.Provide(),
		Pricing:     config.NewStaticPricingConfigHolder(config.DefaultPricingConfig()),
		Invalidator: inv,
	}).(*Service)
	return svc, inv
}

func ptr(v float64) *float64 { return &v }

func rectangle() *catalogdomain.Shape {
	return &catalogdomain.Shape{
		Shop: shop,
		Name: "Rectangle",
		InputFields: datatypes.JSONSlice[catalogdomain.InputField]{
			{Key: "length", Label: "Length", Required: true},
			{Key: "width", Label: "Width", Required: true},
			{Key: "thickness", Label: "Thickness", Required: true},
		},
		SurfaceAreaFormula: "2*(length*width + length*thickness + width*thickness)",
		VolumeFormula:      "length*width*thickness",
		IsActive:           true,
	}
}

func TestSnapshotFallsBackToDefaultSettings(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SaveShape(ctx, rectangle())
	require.NoError(t, err)

	snap, err := svc.Snapshot(ctx, " ACME.myshopify.com ", 0)
	require.NoError(t, err)
	assert.Equal(t, shop, snap.Shop)
	require.Len(t, snap.Shapes, 1)
	assert.Equal(t, []string{"length", "width", "thickness"}, snap.Shapes[0].FieldKeys())
	assert.Nil(t, snap.Profile)
	assert.Equal(t, shop, snap.Settings.Shop)
	assert.Equal(t, catalogdomain.MarginMethodTier, snap.Settings.MarginCalculationMethod)
	assert.Empty(t, snap.Tiers)
}

func TestSnapshotValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Snapshot(ctx, "  ", 0)
	assert.ErrorIs(t, err, catalogdomain.ErrInvalidShop)

	_, err = svc.Snapshot(ctx, shop, 42)
	assert.ErrorIs(t, err, catalogdomain.ErrProfileNotFound)
}

func TestSaveShapeReportsFormulaIssues(t *testing.T) {
	svc, inv := newTestService(t)
	ctx := context.Background()

	shape := rectangle()
	shape.VolumeFormula = "length*width*depth"
	diagnostics, err := svc.SaveShape(ctx, shape)
	require.NoError(t, err)

	assert.NotZero(t, shape.ID)
	assert.Equal(t, 1, shape.MaxPanels)
	require.Len(t, diagnostics, 1)
	assert.Equal(t, "volume_formula", diagnostics[0].Field)
	assert.Equal(t, []string{shop}, inv.calls())

	all, err := svc.DiagnoseShapes(ctx, shop)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSaveShapeRejectsBadInputKeys(t *testing.T) {
	svc, inv := newTestService(t)
	ctx := context.Background()

	dup := rectangle()
	dup.InputFields = append(dup.InputFields, catalogdomain.InputField{Key: "width"})
	_, err := svc.SaveShape(ctx, dup)
	assert.ErrorIs(t, err, catalogdomain.ErrDuplicateInputKey)

	bad := rectangle()
	bad.InputFields[0].Key = "2length"
	_, err = svc.SaveShape(ctx, bad)
	assert.ErrorIs(t, err, catalogdomain.ErrInvalidInputKey)

	bounds := rectangle()
	bounds.InputFields[0].Min = ptr(10)
	bounds.InputFields[0].Max = ptr(5)
	_, err = svc.SaveShape(ctx, bounds)
	assert.ErrorIs(t, err, catalogdomain.ErrInvalidInputKey)

	unnamed := rectangle()
	unnamed.Name = " "
	_, err = svc.SaveShape(ctx, unnamed)
	assert.ErrorIs(t, err, catalogdomain.ErrInvalidName)

	assert.Empty(t, inv.calls())
}

func TestSaveItemsValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.SaveFillType(ctx, &catalogdomain.FillType{Shop: shop, Name: "Foam", PricePerCubicInch: -1}), catalogdomain.ErrInvalidPrice)
	assert.ErrorIs(t, svc.SaveFillType(ctx, &catalogdomain.FillType{Shop: shop, Name: "Foam", DiscountPercent: 120}), catalogdomain.ErrInvalidDiscount)
	assert.NoError(t, svc.SaveFillType(ctx, &catalogdomain.FillType{Shop: shop, Name: "Foam", PricePerCubicInch: 0.05, IsActive: true}))

	assert.ErrorIs(t, svc.SaveFabric(ctx, &catalogdomain.Fabric{Shop: shop, Name: "Canvas", DiscountPercent: -5}), catalogdomain.ErrInvalidDiscount)
	assert.NoError(t, svc.SaveFabricCategory(ctx, &catalogdomain.FabricCategory{Shop: shop, Name: "Outdoor", IsActive: true}))

	assert.ErrorIs(t, svc.SaveAddOn(ctx, &catalogdomain.AddOnOption{Shop: shop, Name: "Cord", Kind: "cord", PricingMode: catalogdomain.PricingModePrice}), catalogdomain.ErrInvalidAddOnKind)
	assert.ErrorIs(t, svc.SaveAddOn(ctx, &catalogdomain.AddOnOption{Shop: shop, Name: "Cord", Kind: catalogdomain.AddOnPiping, PricingMode: "free"}), catalogdomain.ErrInvalidPricingMode)
	assert.NoError(t, svc.SaveAddOn(ctx, &catalogdomain.AddOnOption{Shop: shop, Name: "Cord", Kind: catalogdomain.AddOnPiping, PricingMode: catalogdomain.PricingModePrice, Price: 15, IsActive: true}))

	snap, err := svc.Snapshot(ctx, shop, 0)
	require.NoError(t, err)
	assert.Len(t, snap.FillTypes, 1)
	assert.Len(t, snap.FabricCategories, 1)
	assert.Len(t, snap.AddOns, 1)
}

func TestReplacePriceTiers(t *testing.T) {
	svc, inv := newTestService(t)
	ctx := context.Background()

	tiers, err := svc.ReplacePriceTiers(ctx, shop, []catalogdomain.PriceTier{
		{MinPrice: 200, AdjustmentPercent: 10},
		{MinPrice: 0, MaxPrice: ptr(200), AdjustmentPercent: 20},
	})
	require.NoError(t, err)
	require.Len(t, tiers, 2)
	assert.Equal(t, 0.0, tiers[0].MinPrice)
	assert.Nil(t, tiers[1].MaxPrice)
	assert.NotZero(t, tiers[0].ID)
	assert.Equal(t, []string{shop}, inv.calls())

	snap, err := svc.Snapshot(ctx, shop, 0)
	require.NoError(t, err)
	assert.Len(t, snap.Tiers, 2)

	_, err = svc.ReplacePriceTiers(ctx, shop, []catalogdomain.PriceTier{
		{MinPrice: 0, MaxPrice: ptr(150)},
		{MinPrice: 100, MaxPrice: ptr(300)},
	})
	assert.ErrorIs(t, err, catalogdomain.ErrOverlappingTiers)

	_, err = svc.ReplacePriceTiers(ctx, shop, []catalogdomain.PriceTier{
		{MinPrice: 0},
		{MinPrice: 100, MaxPrice: ptr(300)},
	})
	assert.ErrorIs(t, err, catalogdomain.ErrOverlappingTiers)

	_, err = svc.ReplacePriceTiers(ctx, shop, []catalogdomain.PriceTier{{MinPrice: 50, MaxPrice: ptr(50)}})
	assert.ErrorIs(t, err, catalogdomain.ErrInvalidTierRange)

	cleared, err := svc.ReplacePriceTiers(ctx, shop, nil)
	require.NoError(t, err)
	assert.Empty(t, cleared)
}

func TestSaveSettings(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	err := svc.SaveSettings(ctx, &catalogdomain.CalculatorSettings{Shop: shop, MarginCalculationMethod: "magic"})
	assert.ErrorIs(t, err, catalogdomain.ErrInvalidMarginMethod)

	err = svc.SaveSettings(ctx, &catalogdomain.CalculatorSettings{Shop: shop, MarginCalculationMethod: catalogdomain.MarginMethodTier, ShippingPercent: -1})
	assert.ErrorIs(t, err, catalogdomain.ErrInvalidSettingsValue)

	require.NoError(t, svc.SaveSettings(ctx, &catalogdomain.CalculatorSettings{
		Shop:                    shop,
		ShippingPercent:         10,
		LabourPercent:           5,
		MarginCalculationMethod: catalogdomain.MarginMethodTier,
	}))
	require.NoError(t, svc.SaveSettings(ctx, &catalogdomain.CalculatorSettings{
		Shop:                    shop,
		ShippingPercent:         12,
		MarginCalculationMethod: catalogdomain.MarginMethodTier,
	}))

	snap, err := svc.Snapshot(ctx, shop, 0)
	require.NoError(t, err)
	assert.Equal(t, 12.0, snap.Settings.ShippingPercent)
	assert.Equal(t, 0.0, snap.Settings.LabourPercent)
}

func TestSaveProfile(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	pieces := make([]catalogdomain.ProfilePiece, catalogdomain.MaxPieces+1)
	for i := range pieces {
		pieces[i] = catalogdomain.ProfilePiece{Name: fmt.Sprintf("Piece %d", i), Position: i}
	}
	err := svc.SaveProfile(ctx, &catalogdomain.Profile{Shop: shop, Name: "Sofa", Pieces: pieces})
	assert.ErrorIs(t, err, catalogdomain.ErrTooManyPieces)

	err = svc.SaveProfile(ctx, &catalogdomain.Profile{
		Shop:  shop,
		Name:  "Sofa",
		Rules: datatypes.NewJSONType(catalogdomain.Rules{"cushion": {Visible: true}}),
	})
	assert.ErrorIs(t, err, catalogdomain.ErrInvalidSettingsValue)

	profile := &catalogdomain.Profile{
		Shop:              shop,
		Name:              "Sofa",
		AdditionalPercent: 15,
		EnableMultiPiece:  true,
		Rules:             datatypes.NewJSONType(catalogdomain.Rules{catalogdomain.SectionDesign: {Visible: false}}),
		Pieces: []catalogdomain.ProfilePiece{
			{Name: "Back", Position: 1},
			{Name: "Seat", Position: 0},
		},
	}
	require.NoError(t, svc.SaveProfile(ctx, profile))

	snap, err := svc.Snapshot(ctx, shop, profile.ID)
	require.NoError(t, err)
	require.NotNil(t, snap.Profile)
	assert.Equal(t, 15.0, snap.Profile.AdditionalPercent)
	assert.False(t, snap.Profile.Rules.Data().Rule(catalogdomain.SectionDesign).Visible)
	require.Len(t, snap.Profile.Pieces, 2)
	assert.Equal(t, "Seat", snap.Profile.Pieces[0].Name)
	assert.Equal(t, profile.ID, snap.Profile.Pieces[0].ProfileID)

	profile.Pieces = profile.Pieces[:1]
	require.NoError(t, svc.SaveProfile(ctx, profile))
	snap, err = svc.Snapshot(ctx, shop, profile.ID)
	require.NoError(t, err)
	assert.Len(t, snap.Profile.Pieces, 1)
}

func TestDelete(t *testing.T) {
	svc, inv := newTestService(t)
	ctx := context.Background()

	fill := &catalogdomain.FillType{Shop: shop, Name: "Foam", PricePerCubicInch: 0.05, IsActive: true}
	require.NoError(t, svc.SaveFillType(ctx, fill))

	assert.ErrorIs(t, svc.Delete(ctx, "sofa", shop, fill.ID), catalogdomain.ErrInvalidEntityKind)
	assert.ErrorIs(t, svc.Delete(ctx, catalogdomain.EntityFillType, shop, 0), catalogdomain.ErrInvalidID)
	assert.ErrorIs(t, svc.Delete(ctx, catalogdomain.EntityFillType, "other.myshopify.com", fill.ID), catalogdomain.ErrNotFound)

	require.NoError(t, svc.Delete(ctx, catalogdomain.EntityFillType, shop, fill.ID))
	assert.Equal(t, []string{shop, shop}, inv.calls())

	snap, err := svc.Snapshot(ctx, shop, 0)
	require.NoError(t, err)
	assert.Empty(t, snap.FillTypes)
}

func TestSnapshotWrapsRepositoryErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockRepository(ctrl)
	boom := errors.New("connection reset")
	repo.EXPECT().ListShapes(gomock.Any(), gomock.Any(), shop).Return(nil, boom)

	svc := New(Params{
		Log:     zap.NewNop(),
		GenID:   node(t),
		Repo:    repo,
		Pricing: config.NewStaticPricingConfigHolder(config.DefaultPricingConfig()),
	})

	_, err := svc.Snapshot(context.Background(), shop, 0)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "list shapes")
}

func TestInvalidationFailureDoesNotFailWrite(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockRepository(ctrl)
	repo.EXPECT().Save(gomock.Any(), gomock.Any(), shop, gomock.Any(), gomock.Any()).Return(nil, nil)

	inv := &recordingInvalidator{err: errors.New("redis down")}
	svc := New(Params{
		Log:         zap.NewNop(),
		GenID:       node(t),
		Repo:        repo,
		Pricing:     config.NewStaticPricingConfigHolder(config.DefaultPricingConfig()),
		Invalidator: inv,
	})

	err := svc.SaveFabricCategory(context.Background(), &catalogdomain.FabricCategory{Shop: shop, Name: "Outdoor"})
	assert.NoError(t, err)
	assert.Equal(t, []string{shop}, inv.calls())
}

func TestSaveRejectsIDOfAnotherShop(t *testing.T) {
	svc, inv := newTestService(t)
	ctx := context.Background()
	const other = "other.myshopify.com"

	fill := &catalogdomain.FillType{Shop: shop, Name: "Foam", PricePerCubicInch: 0.05, IsActive: true}
	require.NoError(t, svc.SaveFillType(ctx, fill))

	err := svc.SaveFillType(ctx, &catalogdomain.FillType{ID: fill.ID, Shop: other, Name: "Stolen", PricePerCubicInch: 9, IsActive: true})
	assert.ErrorIs(t, err, catalogdomain.ErrNotFound)
	assert.Equal(t, []string{shop}, inv.calls())

	snap, err := svc.Snapshot(ctx, shop, 0)
	require.NoError(t, err)
	require.Len(t, snap.FillTypes, 1)
	assert.Equal(t, "Foam", snap.FillTypes[0].Name)
	assert.Equal(t, 0.05, snap.FillTypes[0].PricePerCubicInch)

	snap, err = svc.Snapshot(ctx, other, 0)
	require.NoError(t, err)
	assert.Empty(t, snap.FillTypes)
}

func TestSaveProfileRejectsIDOfAnotherShop(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	profile := &catalogdomain.Profile{
		Shop:             shop,
		Name:             "Sofa",
		EnableMultiPiece: true,
		Pieces:           []catalogdomain.ProfilePiece{{Name: "Seat"}, {Name: "Back", Position: 1}},
	}
	require.NoError(t, svc.SaveProfile(ctx, profile))

	err := svc.SaveProfile(ctx, &catalogdomain.Profile{ID: profile.ID, Shop: "other.myshopify.com", Name: "Taken"})
	assert.ErrorIs(t, err, catalogdomain.ErrNotFound)

	snap, err := svc.Snapshot(ctx, shop, profile.ID)
	require.NoError(t, err)
	require.NotNil(t, snap.Profile)
	assert.Equal(t, "Sofa", snap.Profile.Name)
	assert.Len(t, snap.Profile.Pieces, 2)
}

func TestUpdateKeepsCreatedAt(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	created := time.Now().UTC().Add(-48 * time.Hour)

	fabric := &catalogdomain.Fabric{Shop: shop, Name: "Canvas", PricePerSqInch: 0.0625, IsActive: true, CreatedAt: created}
	require.NoError(t, svc.SaveFabric(ctx, fabric))

	update := &catalogdomain.Fabric{ID: fabric.ID, Shop: shop, Name: "Canvas Plus", PricePerSqInch: 0.07, IsActive: true}
	require.NoError(t, svc.SaveFabric(ctx, update))
	assert.WithinDuration(t, created, update.CreatedAt, time.Second)
	assert.True(t, update.UpdatedAt.After(update.CreatedAt))

	snap, err := svc.Snapshot(ctx, shop, 0)
	require.NoError(t, err)
	require.Len(t, snap.Fabrics, 1)
	assert.Equal(t, "Canvas Plus", snap.Fabrics[0].Name)
	assert.WithinDuration(t, created, snap.Fabrics[0].CreatedAt, time.Second)

	profile := &catalogdomain.Profile{Shop: shop, Name: "Bench", CreatedAt: created}
	require.NoError(t, svc.SaveProfile(ctx, profile))
	require.NoError(t, svc.SaveProfile(ctx, &catalogdomain.Profile{ID: profile.ID, Shop: shop, Name: "Bench"}))
	snap, err = svc.Snapshot(ctx, shop, profile.ID)
	require.NoError(t, err)
	assert.WithinDuration(t, created, snap.Profile.CreatedAt, time.Second)
}
