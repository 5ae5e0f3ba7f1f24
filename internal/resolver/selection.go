package resolver

import (
	"math"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/smallbiznis/cushionly/internal/catalog/domain"
)

// Source records where a selection came from.
type Source string

const (
	SourceUser    Source = "user"
	SourceDefault Source = "default"
	SourceHidden  Source = "hidden"
	SourceNone    Source = "none"
)

// PieceInput is the customer's choice for one piece. A nil id means "use
// the default". In AddOns a present key with a nil value means "none".
type PieceInput struct {
	ShapeID    *snowflake.ID                             `json:"shape_id,omitempty"`
	Dimensions map[string]float64                        `json:"dimensions,omitempty"`
	FillID     *snowflake.ID                             `json:"fill_id,omitempty"`
	AddOns     map[catalogdomain.AddOnKind]*snowflake.ID `json:"add_ons,omitempty"`
	Panels     int                                       `json:"panels,omitempty"`
}

// QuoteInput is the customer's choice for a whole product. Fabric and the
// profile-scoped add-ons (design) are shared by every piece.
type QuoteInput struct {
	FabricID     *snowflake.ID                             `json:"fabric_id,omitempty"`
	AddOns       map[catalogdomain.AddOnKind]*snowflake.ID `json:"add_ons,omitempty"`
	Weatherproof bool                                      `json:"weatherproof"`
	Pieces       []PieceInput                              `json:"pieces"`
}

// ResolvedSelection is the fully resolved choice for one piece, ready to price.
type ResolvedSelection struct {
	PieceID      *snowflake.ID
	PieceName    string
	Shape        *catalogdomain.Shape
	Bindings     map[string]float64
	Missing      []string
	Fill         *catalogdomain.FillType
	Fabric       *catalogdomain.Fabric
	AddOns       map[catalogdomain.AddOnKind]catalogdomain.AddOnOption
	Panels       int
	Weatherproof bool
	Sources      map[catalogdomain.Section]Source
}

// Complete reports whether the piece can be trusted for checkout: a shape is
// selected and no required visible dimension is missing.
func (s ResolvedSelection) Complete() bool {
	return s.Shape != nil && len(s.Missing) == 0
}

// Select applies customer input to a resolved configuration and returns one
// selection per configured piece. Choices outside the allowed options fall
// back to the default; hidden sections always use their preset value.
// Missing piece inputs are treated as empty, extra ones are ignored.
func Select(cfg Configuration, in QuoteInput) []ResolvedSelection {
	if len(cfg.Pieces) == 0 {
		return nil
	}

	shared := cfg.Pieces[0]
	fabric, fabricSource := pickFabric(shared, in.FabricID)

	out := make([]ResolvedSelection, 0, len(cfg.Pieces))
	for i, set := range cfg.Pieces {
		var pin PieceInput
		if i < len(in.Pieces) {
			pin = in.Pieces[i]
		}

		sel := ResolvedSelection{
			PieceID:      set.PieceID,
			PieceName:    set.PieceName,
			Fabric:       fabric,
			Panels:       pin.Panels,
			Weatherproof: in.Weatherproof,
			AddOns:       make(map[catalogdomain.AddOnKind]catalogdomain.AddOnOption),
			Sources:      make(map[catalogdomain.Section]Source, len(catalogdomain.Sections)),
		}
		sel.Sources[catalogdomain.SectionFabric] = fabricSource

		var src Source
		sel.Shape, src = pickShape(set, pin.ShapeID)
		sel.Sources[catalogdomain.SectionShape] = src

		sel.Bindings, sel.Missing, src = bindDimensions(set, sel.Shape, pin.Dimensions)
		sel.Sources[catalogdomain.SectionDimensions] = src

		sel.Fill, src = pickFill(set, pin.FillID)
		sel.Sources[catalogdomain.SectionFill] = src

		for _, kind := range catalogdomain.AddOnKinds {
			// Profile-scoped add-ons are chosen once for the whole product.
			choices, groupSet := pin.AddOns, set
			if !kind.Section().PieceScoped() {
				choices, groupSet = in.AddOns, shared
			}
			chosen, explicit := choices[kind]
			opt, src := pickAddOn(groupSet, kind, chosen, explicit)
			if opt != nil {
				sel.AddOns[kind] = *opt
			}
			sel.Sources[kind.Section()] = src
		}

		out = append(out, sel)
	}
	return out
}

func pickShape(set OptionSet, chosen *snowflake.ID) (*catalogdomain.Shape, Source) {
	if !set.IsVisible(catalogdomain.SectionShape) && set.Hidden.Shape != nil {
		shape := *set.Hidden.Shape
		return &shape, SourceHidden
	}
	// A hidden shape section without a preset still prices the default shape.
	if chosen != nil && set.IsVisible(catalogdomain.SectionShape) {
		for i := range set.Shapes {
			if set.Shapes[i].ID == *chosen {
				shape := set.Shapes[i]
				return &shape, SourceUser
			}
		}
	}
	if set.DefaultShapeID != nil {
		for i := range set.Shapes {
			if set.Shapes[i].ID == *set.DefaultShapeID {
				shape := set.Shapes[i]
				return &shape, SourceDefault
			}
		}
	}
	return nil, SourceNone
}

func pickFill(set OptionSet, chosen *snowflake.ID) (*catalogdomain.FillType, Source) {
	if !set.IsVisible(catalogdomain.SectionFill) {
		if set.Hidden.Fill == nil {
			return nil, SourceNone
		}
		fill := *set.Hidden.Fill
		return &fill, SourceHidden
	}
	if chosen != nil {
		for i := range set.FillTypes {
			if set.FillTypes[i].ID == *chosen {
				fill := set.FillTypes[i]
				return &fill, SourceUser
			}
		}
	}
	if set.DefaultFillID != nil {
		for i := range set.FillTypes {
			if set.FillTypes[i].ID == *set.DefaultFillID {
				fill := set.FillTypes[i]
				return &fill, SourceDefault
			}
		}
	}
	return nil, SourceNone
}

func pickFabric(set OptionSet, chosen *snowflake.ID) (*catalogdomain.Fabric, Source) {
	if !set.IsVisible(catalogdomain.SectionFabric) {
		if set.Hidden.Fabric == nil {
			return nil, SourceNone
		}
		fabric := *set.Hidden.Fabric
		return &fabric, SourceHidden
	}
	if chosen != nil {
		for i := range set.Fabrics {
			if set.Fabrics[i].ID == *chosen {
				fabric := set.Fabrics[i]
				return &fabric, SourceUser
			}
		}
	}
	if set.DefaultFabricID != nil {
		for i := range set.Fabrics {
			if set.Fabrics[i].ID == *set.DefaultFabricID {
				fabric := set.Fabrics[i]
				return &fabric, SourceDefault
			}
		}
	}
	return nil, SourceNone
}

// pickAddOn resolves one add-on kind. explicit with a nil chosen id is the
// customer opting out.
func pickAddOn(set OptionSet, kind catalogdomain.AddOnKind, chosen *snowflake.ID, explicit bool) (*catalogdomain.AddOnOption, Source) {
	if !set.IsVisible(kind.Section()) {
		opt, ok := set.Hidden.AddOns[kind]
		if !ok {
			return nil, SourceNone
		}
		return &opt, SourceHidden
	}

	group, ok := set.AddOnGroup(kind)
	if !ok {
		return nil, SourceNone
	}
	if explicit && chosen == nil {
		return nil, SourceUser
	}
	if chosen != nil {
		for i := range group.Options {
			if group.Options[i].ID == *chosen {
				opt := group.Options[i]
				return &opt, SourceUser
			}
		}
	}
	if group.DefaultID != nil {
		for i := range group.Options {
			if group.Options[i].ID == *group.DefaultID {
				opt := group.Options[i]
				return &opt, SourceDefault
			}
		}
	}
	return nil, SourceNone
}

// bindDimensions builds formula bindings from the shape's input fields.
// Customer values win over field defaults; a hidden dimensions section uses
// defaults only and never reports missing keys. A customer value outside the
// field's min/max is still bound for the preview but reported as missing, so
// the quote is incomplete until it is corrected.
func bindDimensions(set OptionSet, shape *catalogdomain.Shape, values map[string]float64) (map[string]float64, []string, Source) {
	bindings := make(map[string]float64)
	if shape == nil {
		return bindings, nil, SourceNone
	}

	visible := set.IsVisible(catalogdomain.SectionDimensions)
	source := SourceDefault
	if !visible {
		source = SourceHidden
	}

	var missing []string
	for _, field := range shape.InputFields {
		if visible {
			if v, ok := values[field.Key]; ok && !math.IsNaN(v) && !math.IsInf(v, 0) {
				bindings[field.Key] = v
				source = SourceUser
				if !field.InRange(v) {
					missing = append(missing, field.Key)
				}
				continue
			}
		}
		if field.DefaultValue != nil {
			bindings[field.Key] = *field.DefaultValue
			continue
		}
		if visible && field.Required {
			missing = append(missing, field.Key)
		}
	}
	return bindings, missing, source
}
