// Package domain holds the catalog a shop prices against: shapes, fills,
// fabrics, add-ons, profiles and the calculator settings.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// InputField is a customer-entered dimension of a shape, in inches.
type InputField struct {
	Key          string   `json:"key"`
	Label        string   `json:"label"`
	Unit         string   `json:"unit"`
	Min          *float64 `json:"min,omitempty"`
	Max          *float64 `json:"max,omitempty"`
	Required     bool     `json:"required"`
	DefaultValue *float64 `json:"default_value,omitempty"`
}

// InRange reports whether v lies within the field's optional [Min, Max].
func (f InputField) InRange(v float64) bool {
	if f.Min != nil && v < *f.Min {
		return false
	}
	return f.Max == nil || v <= *f.Max
}

type Shape struct {
	ID                            snowflake.ID                    `json:"id" gorm:"primaryKey"`
	Shop                          string                          `json:"shop" gorm:"type:text;not null;index"`
	Name                          string                          `json:"name" gorm:"type:text;not null"`
	InputFields                   datatypes.JSONSlice[InputField] `json:"input_fields" gorm:"type:jsonb"`
	SurfaceAreaFormula            string                          `json:"surface_area_formula" gorm:"type:text"`
	VolumeFormula                 string                          `json:"volume_formula" gorm:"type:text"`
	SurfaceAreaWithoutBaseFormula string                          `json:"surface_area_without_base_formula,omitempty" gorm:"type:text"`
	Is2D                          bool                            `json:"is_2d" gorm:"column:is_2d;not null;default:false"`
	EnablePanels                  bool                            `json:"enable_panels" gorm:"not null;default:false"`
	MaxPanels                     int                             `json:"max_panels" gorm:"not null;default:1"`
	IsActive                      bool                            `json:"is_active" gorm:"not null"`
	IsDefault                     bool                            `json:"is_default" gorm:"not null;default:false"`
	SortOrder                     int                             `json:"sort_order" gorm:"not null;default:0"`
	CreatedAt                     time.Time                       `json:"created_at"`
	UpdatedAt                     time.Time                       `json:"updated_at"`
}

func (Shape) TableName() string { return "shapes" }

// FieldKeys returns the declared input keys in order.
func (s Shape) FieldKeys() []string {
	keys := make([]string, 0, len(s.InputFields))
	for _, f := range s.InputFields {
		keys = append(keys, f.Key)
	}
	return keys
}

type FillType struct {
	ID                snowflake.ID `json:"id" gorm:"primaryKey"`
	Shop              string       `json:"shop" gorm:"type:text;not null;index"`
	Name              string       `json:"name" gorm:"type:text;not null"`
	PricePerCubicInch float64      `json:"price_per_cubic_inch" gorm:"type:numeric;not null"`
	DiscountEnabled   bool         `json:"discount_enabled" gorm:"not null;default:false"`
	DiscountPercent   float64      `json:"discount_percent" gorm:"type:numeric;not null;default:0"`
	IsActive          bool         `json:"is_active" gorm:"not null"`
	IsDefault         bool         `json:"is_default" gorm:"not null;default:false"`
	SortOrder         int          `json:"sort_order" gorm:"not null;default:0"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

func (FillType) TableName() string { return "fill_types" }

type FabricCategory struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	Shop      string       `json:"shop" gorm:"type:text;not null;index"`
	Name      string       `json:"name" gorm:"type:text;not null"`
	IsActive  bool         `json:"is_active" gorm:"not null"`
	SortOrder int          `json:"sort_order" gorm:"not null;default:0"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func (FabricCategory) TableName() string { return "fabric_categories" }

type Fabric struct {
	ID              snowflake.ID  `json:"id" gorm:"primaryKey"`
	Shop            string        `json:"shop" gorm:"type:text;not null;index"`
	Name            string        `json:"name" gorm:"type:text;not null"`
	CategoryID      *snowflake.ID `json:"category_id,omitempty" gorm:"index"`
	PricePerSqInch  float64       `json:"price_per_sq_inch" gorm:"type:numeric;not null"`
	DiscountEnabled bool          `json:"discount_enabled" gorm:"not null;default:false"`
	DiscountPercent float64       `json:"discount_percent" gorm:"type:numeric;not null;default:0"`
	IsActive        bool          `json:"is_active" gorm:"not null"`
	IsDefault       bool          `json:"is_default" gorm:"not null;default:false"`
	SortOrder       int           `json:"sort_order" gorm:"not null;default:0"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

func (Fabric) TableName() string { return "fabrics" }

type AddOnKind string

var (
	AddOnPiping     AddOnKind = "piping"
	AddOnButton     AddOnKind = "button"
	AddOnAntiSkid   AddOnKind = "anti_skid"
	AddOnRodPocket  AddOnKind = "rod_pocket"
	AddOnDesign     AddOnKind = "design"
	AddOnTies       AddOnKind = "ties"
	AddOnFabricTies AddOnKind = "fabric_ties"
)

// AddOnKinds lists every add-on kind in display order.
var AddOnKinds = []AddOnKind{
	AddOnPiping,
	AddOnButton,
	AddOnAntiSkid,
	AddOnRodPocket,
	AddOnDesign,
	AddOnTies,
	AddOnFabricTies,
}

// IsTie reports whether the kind counts toward the ties total.
func (k AddOnKind) IsTie() bool {
	return k == AddOnTies || k == AddOnFabricTies
}

// Section is the calculator section the add-on kind is rendered in.
func (k AddOnKind) Section() Section { return Section(k) }

type PricingMode string

var (
	PricingModePercent PricingMode = "percent"
	PricingModePrice   PricingMode = "price"
)

// AddOnOption is one selectable option of an add-on kind. It is priced either
// as a percentage of a base amount or as a flat price.
type AddOnOption struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey"`
	Shop        string       `json:"shop" gorm:"type:text;not null;index"`
	Kind        AddOnKind    `json:"kind" gorm:"type:text;not null;index"`
	Name        string       `json:"name" gorm:"type:text;not null"`
	PricingMode PricingMode  `json:"pricing_mode" gorm:"type:text;not null"`
	Percent     float64      `json:"percent" gorm:"type:numeric;not null;default:0"`
	Price       float64      `json:"price" gorm:"type:numeric;not null;default:0"`
	IsActive    bool         `json:"is_active" gorm:"not null"`
	IsDefault   bool         `json:"is_default" gorm:"not null;default:false"`
	SortOrder   int          `json:"sort_order" gorm:"not null;default:0"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (AddOnOption) TableName() string { return "add_on_options" }

// MaxPieces bounds the pieces of a multi-piece profile.
const MaxPieces = 5

type Profile struct {
	ID                snowflake.ID              `json:"id" gorm:"primaryKey"`
	Shop              string                    `json:"shop" gorm:"type:text;not null;index"`
	Name              string                    `json:"name" gorm:"type:text;not null"`
	Rules             datatypes.JSONType[Rules] `json:"rules" gorm:"type:jsonb"`
	AdditionalPercent float64                   `json:"additional_percent" gorm:"type:numeric;not null;default:0"`
	EnableMultiPiece  bool                      `json:"enable_multi_piece" gorm:"not null;default:false"`
	Pieces            []ProfilePiece            `json:"pieces" gorm:"foreignKey:ProfileID"`
	CreatedAt         time.Time                 `json:"created_at"`
	UpdatedAt         time.Time                 `json:"updated_at"`
}

func (Profile) TableName() string { return "profiles" }

// ProfilePiece configures one piece of a multi-piece profile. Only
// piece-scoped sections of Rules are honoured.
type ProfilePiece struct {
	ID             snowflake.ID              `json:"id" gorm:"primaryKey"`
	ProfileID      snowflake.ID              `json:"profile_id" gorm:"not null;index"`
	Name           string                    `json:"name" gorm:"type:text;not null"`
	Position       int                       `json:"position" gorm:"not null;default:0"`
	Rules          datatypes.JSONType[Rules] `json:"rules" gorm:"type:jsonb"`
	DefaultShapeID *snowflake.ID             `json:"default_shape_id,omitempty"`
	DefaultFillID  *snowflake.ID             `json:"default_fill_id,omitempty"`
	CreatedAt      time.Time                 `json:"created_at"`
	UpdatedAt      time.Time                 `json:"updated_at"`
}

func (ProfilePiece) TableName() string { return "profile_pieces" }

// PriceTier maps a pre-margin subtotal range [MinPrice, MaxPrice) to a
// margin adjustment. A nil MaxPrice is unbounded.
type PriceTier struct {
	ID                snowflake.ID `json:"id" gorm:"primaryKey"`
	Shop              string       `json:"shop" gorm:"type:text;not null;index"`
	MinPrice          float64      `json:"min_price" gorm:"type:numeric;not null"`
	MaxPrice          *float64     `json:"max_price,omitempty" gorm:"type:numeric"`
	AdjustmentPercent float64      `json:"adjustment_percent" gorm:"type:numeric;not null"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

func (PriceTier) TableName() string { return "price_tiers" }

// Contains reports whether amount falls in [MinPrice, MaxPrice).
func (t PriceTier) Contains(amount float64) bool {
	if amount < t.MinPrice {
		return false
	}
	return t.MaxPrice == nil || amount < *t.MaxPrice
}

type MarginMethod string

var (
	MarginMethodTier    MarginMethod = "tier"
	MarginMethodFormula MarginMethod = "formula"
)

type CalculatorSettings struct {
	Shop                        string       `json:"shop" gorm:"primaryKey;type:text" mapstructure:"-"`
	ShippingPercent             float64      `json:"shipping_percent" gorm:"type:numeric;not null;default:0" mapstructure:"shippingPercent"`
	LabourPercent               float64      `json:"labour_percent" gorm:"type:numeric;not null;default:0" mapstructure:"labourPercent"`
	ConversionPercent           float64      `json:"conversion_percent" gorm:"type:numeric;not null;default:0" mapstructure:"conversionPercent"`
	TiesIncludeInShippingLabour bool         `json:"ties_include_in_shipping_labour" gorm:"not null" mapstructure:"tiesIncludeInShippingLabour"`
	MarginCalculationMethod     MarginMethod `json:"margin_calculation_method" gorm:"type:text;not null;default:tier" mapstructure:"marginCalculationMethod"`
	FlatMarginThreshold         float64      `json:"flat_margin_threshold" gorm:"type:numeric;not null;default:0" mapstructure:"flatMarginThreshold"`
	FlatMarginPercent           float64      `json:"flat_margin_percent" gorm:"type:numeric;not null;default:0" mapstructure:"flatMarginPercent"`
	FormulaThreshold            float64      `json:"formula_threshold" gorm:"type:numeric;not null;default:0" mapstructure:"formulaThreshold"`
	FormulaLowConstant          float64      `json:"formula_low_constant" gorm:"type:numeric;not null;default:0" mapstructure:"formulaLowConstant"`
	FormulaLowCoefficient       float64      `json:"formula_low_coefficient" gorm:"type:numeric;not null;default:0" mapstructure:"formulaLowCoefficient"`
	FormulaHighConstant         float64      `json:"formula_high_constant" gorm:"type:numeric;not null;default:0" mapstructure:"formulaHighConstant"`
	FormulaHighCoefficient      float64      `json:"formula_high_coefficient" gorm:"type:numeric;not null;default:0" mapstructure:"formulaHighCoefficient"`
	UpdatedAt                   time.Time    `json:"updated_at" mapstructure:"-"`
}

func (CalculatorSettings) TableName() string { return "calculator_settings" }
