package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/cushionly/internal/formula"
)

type Service interface {
	// Snapshot loads the catalog of shop. A zero profileID selects no profile.
	Snapshot(ctx context.Context, shop string, profileID snowflake.ID) (*Snapshot, error)

	SaveShape(ctx context.Context, shape *Shape) ([]ShapeDiagnostic, error)
	SaveFillType(ctx context.Context, fill *FillType) error
	SaveFabricCategory(ctx context.Context, category *FabricCategory) error
	SaveFabric(ctx context.Context, fabric *Fabric) error
	SaveAddOn(ctx context.Context, option *AddOnOption) error
	SaveProfile(ctx context.Context, profile *Profile) error
	Delete(ctx context.Context, kind EntityKind, shop string, id snowflake.ID) error
	ReplacePriceTiers(ctx context.Context, shop string, tiers []PriceTier) ([]PriceTier, error)
	SaveSettings(ctx context.Context, settings *CalculatorSettings) error

	DiagnoseShapes(ctx context.Context, shop string) ([]ShapeDiagnostic, error)
}

// EntityKind names a deletable catalog entity.
type EntityKind string

var (
	EntityShape          EntityKind = "shape"
	EntityFillType       EntityKind = "fill_type"
	EntityFabricCategory EntityKind = "fabric_category"
	EntityFabric         EntityKind = "fabric"
	EntityAddOn          EntityKind = "add_on"
	EntityProfile        EntityKind = "profile"
)

// ShapeDiagnostic lists formula problems of one shape for the merchant.
type ShapeDiagnostic struct {
	ShapeID   snowflake.ID    `json:"shape_id"`
	ShapeName string          `json:"shape_name"`
	Formula   string          `json:"formula"`
	Field     string          `json:"field"`
	Issues    []formula.Issue `json:"issues"`
}

var (
	ErrInvalidShop          = errors.New("invalid_shop")
	ErrInvalidID            = errors.New("invalid_id")
	ErrInvalidName          = errors.New("invalid_name")
	ErrInvalidEntityKind    = errors.New("invalid_entity_kind")
	ErrNotFound             = errors.New("not_found")
	ErrProfileNotFound      = errors.New("profile_not_found")
	ErrDuplicateInputKey    = errors.New("duplicate_input_key")
	ErrInvalidInputKey      = errors.New("invalid_input_key")
	ErrInvalidPrice         = errors.New("invalid_price")
	ErrInvalidDiscount      = errors.New("invalid_discount_percent")
	ErrInvalidAddOnKind     = errors.New("invalid_add_on_kind")
	ErrInvalidPricingMode   = errors.New("invalid_pricing_mode")
	ErrTooManyPieces        = errors.New("too_many_pieces")
	ErrInvalidTierRange     = errors.New("invalid_tier_range")
	ErrOverlappingTiers     = errors.New("overlapping_tiers")
	ErrInvalidMarginMethod  = errors.New("invalid_margin_method")
	ErrInvalidSettingsValue = errors.New("invalid_settings_value")
)
