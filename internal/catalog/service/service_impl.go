package service

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/smallbiznis/cushionly/internal/catalog/domain"
	"github.com/smallbiznis/cushionly/internal/config"
	"github.com/smallbiznis/cushionly/internal/configcache"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Repo        catalogdomain.Repository
	Pricing     *config.PricingConfigHolder
	Invalidator configcache.Invalidator `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	repo        catalogdomain.Repository
	pricing     *config.PricingConfigHolder
	invalidator configcache.Invalidator
}

func New(p Params) catalogdomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("catalog.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		pricing:     p.Pricing,
		invalidator: p.Invalidator,
	}
}

var inputKeyPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func (s *Service) Snapshot(ctx context.Context, shop string, profileID snowflake.ID) (*catalogdomain.Snapshot, error) {
	shop, err := normalizeShop(shop)
	if err != nil {
		return nil, err
	}

	snap := &catalogdomain.Snapshot{Shop: shop}
	if snap.Shapes, err = s.repo.ListShapes(ctx, s.db, shop); err != nil {
		return nil, fmt.Errorf("list shapes: %w", err)
	}
	if snap.FillTypes, err = s.repo.ListFillTypes(ctx, s.db, shop); err != nil {
		return nil, fmt.Errorf("list fill types: %w", err)
	}
	if snap.FabricCategories, err = s.repo.ListFabricCategories(ctx, s.db, shop); err != nil {
		return nil, fmt.Errorf("list fabric categories: %w", err)
	}
	if snap.Fabrics, err = s.repo.ListFabrics(ctx, s.db, shop); err != nil {
		return nil, fmt.Errorf("list fabrics: %w", err)
	}
	if snap.AddOns, err = s.repo.ListAddOns(ctx, s.db, shop); err != nil {
		return nil, fmt.Errorf("list add-ons: %w", err)
	}

	if profileID != 0 {
		profile, err := s.repo.FindProfile(ctx, s.db, shop, profileID)
		if err != nil {
			return nil, fmt.Errorf("find profile: %w", err)
		}
		if profile == nil {
			return nil, catalogdomain.ErrProfileNotFound
		}
		snap.Profile = profile
	}

	settings, err := s.repo.FindSettings(ctx, s.db, shop)
	if err != nil {
		return nil, fmt.Errorf("find settings: %w", err)
	}
	if settings != nil {
		snap.Settings = *settings
	} else {
		snap.Settings = s.pricing.Get().DefaultSettings
		snap.Settings.Shop = shop
	}

	if snap.Tiers, err = s.repo.ListPriceTiers(ctx, s.db, shop); err != nil {
		return nil, fmt.Errorf("list price tiers: %w", err)
	}
	return snap, nil
}

// SaveShape stores the shape and returns any formula problems found. Broken
// formulas are saved anyway; they price as zero until fixed.
func (s *Service) SaveShape(ctx context.Context, shape *catalogdomain.Shape) ([]catalogdomain.ShapeDiagnostic, error) {
	if err := s.prepare(&shape.Shop, shape.Name, &shape.ID, &shape.CreatedAt, &shape.UpdatedAt); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(shape.InputFields))
	for _, field := range shape.InputFields {
		if !inputKeyPattern.MatchString(field.Key) {
			return nil, fmt.Errorf("%w: %q", catalogdomain.ErrInvalidInputKey, field.Key)
		}
		if _, dup := seen[field.Key]; dup {
			return nil, fmt.Errorf("%w: %q", catalogdomain.ErrDuplicateInputKey, field.Key)
		}
		seen[field.Key] = struct{}{}
		if field.Min != nil && field.Max != nil && *field.Min > *field.Max {
			return nil, fmt.Errorf("%w: %q min above max", catalogdomain.ErrInvalidInputKey, field.Key)
		}
	}
	if shape.MaxPanels < 1 {
		shape.MaxPanels = 1
	}

	if err := s.save(ctx, shape.Shop, shape.ID, &shape.CreatedAt, shape); err != nil {
		return nil, err
	}

	diagnostics := shape.Diagnose()
	if len(diagnostics) > 0 {
		s.log.Info("shape saved with formula issues",
			zap.String("shop", shape.Shop),
			zap.String("shape_id", shape.ID.String()),
			zap.Int("issues", len(diagnostics)),
		)
	}
	return diagnostics, nil
}

func (s *Service) SaveFillType(ctx context.Context, fill *catalogdomain.FillType) error {
	if err := s.prepare(&fill.Shop, fill.Name, &fill.ID, &fill.CreatedAt, &fill.UpdatedAt); err != nil {
		return err
	}
	if !validAmount(fill.PricePerCubicInch) {
		return catalogdomain.ErrInvalidPrice
	}
	if !validPercent(fill.DiscountPercent) {
		return catalogdomain.ErrInvalidDiscount
	}
	return s.save(ctx, fill.Shop, fill.ID, &fill.CreatedAt, fill)
}

func (s *Service) SaveFabricCategory(ctx context.Context, category *catalogdomain.FabricCategory) error {
	if err := s.prepare(&category.Shop, category.Name, &category.ID, &category.CreatedAt, &category.UpdatedAt); err != nil {
		return err
	}
	return s.save(ctx, category.Shop, category.ID, &category.CreatedAt, category)
}

func (s *Service) SaveFabric(ctx context.Context, fabric *catalogdomain.Fabric) error {
	if err := s.prepare(&fabric.Shop, fabric.Name, &fabric.ID, &fabric.CreatedAt, &fabric.UpdatedAt); err != nil {
		return err
	}
	if !validAmount(fabric.PricePerSqInch) {
		return catalogdomain.ErrInvalidPrice
	}
	if !validPercent(fabric.DiscountPercent) {
		return catalogdomain.ErrInvalidDiscount
	}
	return s.save(ctx, fabric.Shop, fabric.ID, &fabric.CreatedAt, fabric)
}

func (s *Service) SaveAddOn(ctx context.Context, option *catalogdomain.AddOnOption) error {
	if err := s.prepare(&option.Shop, option.Name, &option.ID, &option.CreatedAt, &option.UpdatedAt); err != nil {
		return err
	}
	if !knownAddOnKind(option.Kind) {
		return fmt.Errorf("%w: %q", catalogdomain.ErrInvalidAddOnKind, option.Kind)
	}
	switch option.PricingMode {
	case catalogdomain.PricingModePercent:
		if !validAmount(option.Percent) {
			return catalogdomain.ErrInvalidPrice
		}
	case catalogdomain.PricingModePrice:
		if !validAmount(option.Price) {
			return catalogdomain.ErrInvalidPrice
		}
	default:
		return fmt.Errorf("%w: %q", catalogdomain.ErrInvalidPricingMode, option.PricingMode)
	}
	return s.save(ctx, option.Shop, option.ID, &option.CreatedAt, option)
}

// SaveProfile replaces the profile and its pieces.
func (s *Service) SaveProfile(ctx context.Context, profile *catalogdomain.Profile) error {
	if err := s.prepare(&profile.Shop, profile.Name, &profile.ID, &profile.CreatedAt, &profile.UpdatedAt); err != nil {
		return err
	}
	if math.IsNaN(profile.AdditionalPercent) || math.IsInf(profile.AdditionalPercent, 0) {
		return fmt.Errorf("%w: additional_percent", catalogdomain.ErrInvalidSettingsValue)
	}
	if limit := s.pricing.Get().MaxPieces; len(profile.Pieces) > limit {
		return fmt.Errorf("%w: %d > %d", catalogdomain.ErrTooManyPieces, len(profile.Pieces), limit)
	}
	if err := validateRules(profile.Rules.Data()); err != nil {
		return err
	}

	for i := range profile.Pieces {
		piece := &profile.Pieces[i]
		if strings.TrimSpace(piece.Name) == "" {
			return fmt.Errorf("%w: piece %d", catalogdomain.ErrInvalidName, i)
		}
		if err := validateRules(piece.Rules.Data()); err != nil {
			return err
		}
		piece.ID = s.genID.Generate()
		piece.ProfileID = profile.ID
		piece.CreatedAt = profile.UpdatedAt
		piece.UpdatedAt = profile.UpdatedAt
	}

	created, err := s.repo.SaveProfile(ctx, s.db, profile)
	if err != nil {
		return err
	}
	if created != nil {
		profile.CreatedAt = *created
	}
	s.invalidate(ctx, profile.Shop)
	return nil
}

func (s *Service) Delete(ctx context.Context, kind catalogdomain.EntityKind, shop string, id snowflake.ID) error {
	shop, err := normalizeShop(shop)
	if err != nil {
		return err
	}
	if id == 0 {
		return catalogdomain.ErrInvalidID
	}

	var entity any
	switch kind {
	case catalogdomain.EntityShape:
		entity = &catalogdomain.Shape{}
	case catalogdomain.EntityFillType:
		entity = &catalogdomain.FillType{}
	case catalogdomain.EntityFabricCategory:
		entity = &catalogdomain.FabricCategory{}
	case catalogdomain.EntityFabric:
		entity = &catalogdomain.Fabric{}
	case catalogdomain.EntityAddOn:
		entity = &catalogdomain.AddOnOption{}
	case catalogdomain.EntityProfile:
		entity = &catalogdomain.Profile{}
	default:
		return fmt.Errorf("%w: %q", catalogdomain.ErrInvalidEntityKind, kind)
	}

	deleted, err := s.repo.Delete(ctx, s.db, entity, shop, id)
	if err != nil {
		return err
	}
	if !deleted {
		return catalogdomain.ErrNotFound
	}
	s.invalidate(ctx, shop)
	return nil
}

// ReplacePriceTiers swaps the shop's tiers for the given set. Tiers must not
// overlap, and only the highest tier may be open-ended.
func (s *Service) ReplacePriceTiers(ctx context.Context, shop string, tiers []catalogdomain.PriceTier) ([]catalogdomain.PriceTier, error) {
	shop, err := normalizeShop(shop)
	if err != nil {
		return nil, err
	}

	sorted := make([]catalogdomain.PriceTier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].MinPrice < sorted[j].MinPrice })

	now := time.Now().UTC()
	for i := range sorted {
		t := &sorted[i]
		if !validAmount(t.MinPrice) || (t.MaxPrice != nil && !(*t.MaxPrice > t.MinPrice)) {
			return nil, fmt.Errorf("%w: tier %d", catalogdomain.ErrInvalidTierRange, i)
		}
		if math.IsNaN(t.AdjustmentPercent) || math.IsInf(t.AdjustmentPercent, 0) {
			return nil, fmt.Errorf("%w: tier %d adjustment", catalogdomain.ErrInvalidTierRange, i)
		}
		if i > 0 {
			prev := sorted[i-1]
			if prev.MaxPrice == nil || *prev.MaxPrice > t.MinPrice {
				return nil, fmt.Errorf("%w: [%v, ...) and [%v, ...)", catalogdomain.ErrOverlappingTiers, prev.MinPrice, t.MinPrice)
			}
		}
		t.ID = s.genID.Generate()
		t.Shop = shop
		t.CreatedAt = now
		t.UpdatedAt = now
	}

	if err := s.repo.ReplacePriceTiers(ctx, s.db, shop, sorted); err != nil {
		return nil, err
	}
	s.invalidate(ctx, shop)
	return sorted, nil
}

func (s *Service) SaveSettings(ctx context.Context, settings *catalogdomain.CalculatorSettings) error {
	shop, err := normalizeShop(settings.Shop)
	if err != nil {
		return err
	}
	settings.Shop = shop
	if err := settings.Validate(); err != nil {
		return err
	}
	settings.UpdatedAt = time.Now().UTC()

	if err := s.repo.SaveSettings(ctx, s.db, settings); err != nil {
		return err
	}
	s.invalidate(ctx, shop)
	return nil
}

// DiagnoseShapes reports formula problems across every shape of shop,
// active or not.
func (s *Service) DiagnoseShapes(ctx context.Context, shop string) ([]catalogdomain.ShapeDiagnostic, error) {
	shop, err := normalizeShop(shop)
	if err != nil {
		return nil, err
	}
	shapes, err := s.repo.ListShapes(ctx, s.db, shop)
	if err != nil {
		return nil, err
	}

	out := []catalogdomain.ShapeDiagnostic{}
	for _, shape := range shapes {
		out = append(out, shape.Diagnose()...)
	}
	return out, nil
}

// prepare normalizes the shop, checks the name and stamps id and times.
func (s *Service) prepare(shop *string, name string, id *snowflake.ID, createdAt, updatedAt *time.Time) error {
	normalized, err := normalizeShop(*shop)
	if err != nil {
		return err
	}
	*shop = normalized
	if strings.TrimSpace(name) == "" {
		return catalogdomain.ErrInvalidName
	}

	now := time.Now().UTC()
	if *id == 0 {
		*id = s.genID.Generate()
	}
	if createdAt.IsZero() {
		*createdAt = now
	}
	*updatedAt = now
	return nil
}

// save writes entity and reports the stored creation time back through
// createdAt when an existing row was updated.
func (s *Service) save(ctx context.Context, shop string, id snowflake.ID, createdAt *time.Time, entity any) error {
	created, err := s.repo.Save(ctx, s.db, shop, id, entity)
	if err != nil {
		return err
	}
	if created != nil {
		*createdAt = *created
	}
	s.invalidate(ctx, shop)
	return nil
}

// invalidate drops cached configuration of shop. A failure only delays the
// change until the entries expire, so it is logged and not returned.
func (s *Service) invalidate(ctx context.Context, shop string) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Invalidate(ctx, shop); err != nil {
		s.log.Warn("config cache invalidation failed", zap.String("shop", shop), zap.Error(err))
	}
}

func validateRules(rules catalogdomain.Rules) error {
	for section := range rules {
		if !knownSection(section) {
			return fmt.Errorf("%w: unknown section %q", catalogdomain.ErrInvalidSettingsValue, section)
		}
	}
	return nil
}

func knownSection(s catalogdomain.Section) bool {
	for _, known := range catalogdomain.Sections {
		if known == s {
			return true
		}
	}
	return false
}

func knownAddOnKind(k catalogdomain.AddOnKind) bool {
	for _, known := range catalogdomain.AddOnKinds {
		if known == k {
			return true
		}
	}
	return false
}

func normalizeShop(shop string) (string, error) {
	shop = strings.ToLower(strings.TrimSpace(shop))
	if shop == "" {
		return "", catalogdomain.ErrInvalidShop
	}
	return shop, nil
}

func validAmount(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0)
}

func validPercent(v float64) bool {
	return v >= 0 && v <= 100
}
