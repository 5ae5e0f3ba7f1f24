// Package resolver merges a shop catalog with a profile and its pieces into
// the concrete option sets a storefront renders and the pricing engine
// consumes. Resolution is a pure function of its inputs.
package resolver

import (
	"sort"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/smallbiznis/cushionly/internal/catalog/domain"
)

// AddOnGroup is the resolved option list of one add-on kind.
type AddOnGroup struct {
	Kind      catalogdomain.AddOnKind     `json:"kind"`
	Options   []catalogdomain.AddOnOption `json:"options"`
	DefaultID *snowflake.ID               `json:"default_id,omitempty"`
}

// HiddenValues are preset selections of hidden sections. They are used for
// pricing only and never rendered.
type HiddenValues struct {
	Shape  *catalogdomain.Shape                                  `json:"shape,omitempty"`
	Fill   *catalogdomain.FillType                               `json:"fill,omitempty"`
	Fabric *catalogdomain.Fabric                                 `json:"fabric,omitempty"`
	AddOns map[catalogdomain.AddOnKind]catalogdomain.AddOnOption `json:"add_ons,omitempty"`
}

// OptionSet is the resolved configuration of one piece, or of the whole
// product when the profile is not multi-piece.
type OptionSet struct {
	PieceID   *snowflake.ID `json:"piece_id,omitempty"`
	PieceName string        `json:"piece_name,omitempty"`

	Visible map[catalogdomain.Section]bool `json:"visible"`

	Shapes         []catalogdomain.Shape `json:"shapes"`
	DefaultShapeID *snowflake.ID         `json:"default_shape_id,omitempty"`

	FillTypes     []catalogdomain.FillType `json:"fill_types"`
	DefaultFillID *snowflake.ID            `json:"default_fill_id,omitempty"`

	FabricCategories     []catalogdomain.FabricCategory `json:"fabric_categories"`
	Fabrics              []catalogdomain.Fabric         `json:"fabrics"`
	IncludeUncategorized bool                           `json:"include_uncategorized"`
	DefaultFabricID      *snowflake.ID                  `json:"default_fabric_id,omitempty"`

	AddOns []AddOnGroup `json:"add_ons"`

	Hidden HiddenValues `json:"hidden"`
}

// IsVisible reports whether section s is shown.
func (o OptionSet) IsVisible(s catalogdomain.Section) bool {
	return o.Visible[s]
}

// AddOnGroup returns the group of kind, if resolved.
func (o OptionSet) AddOnGroup(kind catalogdomain.AddOnKind) (AddOnGroup, bool) {
	for _, g := range o.AddOns {
		if g.Kind == kind {
			return g, true
		}
	}
	return AddOnGroup{}, false
}

// Configuration is the cacheable payload for one (shop, profile): one option
// set per piece plus everything the pricing engine needs.
type Configuration struct {
	Shop              string                           `json:"shop"`
	ProfileID         *snowflake.ID                    `json:"profile_id,omitempty"`
	ProfileName       string                           `json:"profile_name,omitempty"`
	MultiPiece        bool                             `json:"multi_piece"`
	AdditionalPercent float64                          `json:"additional_percent"`
	Pieces            []OptionSet                      `json:"pieces"`
	Settings          catalogdomain.CalculatorSettings `json:"settings"`
	Tiers             []catalogdomain.PriceTier        `json:"tiers"`
}

// ResolveAll resolves the snapshot's profile into per-piece option sets. A
// profile without multi-piece mode, or without pieces, yields one option set.
func ResolveAll(snap catalogdomain.Snapshot) Configuration {
	cfg := Configuration{
		Shop:     snap.Shop,
		Settings: snap.Settings,
		Tiers:    append([]catalogdomain.PriceTier(nil), snap.Tiers...),
	}

	profile := snap.Profile
	if profile != nil {
		id := profile.ID
		cfg.ProfileID = &id
		cfg.ProfileName = profile.Name
		cfg.AdditionalPercent = profile.AdditionalPercent
	}

	if profile != nil && profile.EnableMultiPiece && len(profile.Pieces) > 0 {
		cfg.MultiPiece = true
		for _, piece := range orderedPieces(profile.Pieces) {
			piece := piece
			cfg.Pieces = append(cfg.Pieces, Resolve(snap, profile, &piece))
		}
		return cfg
	}

	cfg.Pieces = []OptionSet{Resolve(snap, profile, nil)}
	return cfg
}

func orderedPieces(pieces []catalogdomain.ProfilePiece) []catalogdomain.ProfilePiece {
	out := append([]catalogdomain.ProfilePiece(nil), pieces...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > catalogdomain.MaxPieces {
		out = out[:catalogdomain.MaxPieces]
	}
	return out
}

// Resolve builds the option set for a profile (nil for shop defaults) and an
// optional piece of that profile.
func Resolve(snap catalogdomain.Snapshot, profile *catalogdomain.Profile, piece *catalogdomain.ProfilePiece) OptionSet {
	var profileRules, pieceRules catalogdomain.Rules
	if profile != nil {
		profileRules = profile.Rules.Data()
	}
	if piece != nil {
		pieceRules = piece.Rules.Data()
		if pieceRules == nil {
			pieceRules = catalogdomain.Rules{}
		}
	}
	rule := func(s catalogdomain.Section) catalogdomain.SectionRule {
		return mergeRule(profileRules, pieceRules, s)
	}
	snap = sortedSnapshot(snap)

	set := OptionSet{Visible: make(map[catalogdomain.Section]bool, len(catalogdomain.Sections))}
	if piece != nil {
		id := piece.ID
		set.PieceID = &id
		set.PieceName = piece.Name
	}
	for _, s := range catalogdomain.Sections {
		set.Visible[s] = rule(s).Visible
	}

	resolveShapes(&set, snap, rule(catalogdomain.SectionShape), piece)
	resolveFills(&set, snap, rule(catalogdomain.SectionFill), piece)
	resolveFabrics(&set, snap, rule(catalogdomain.SectionFabric))
	resolveAddOns(&set, snap, rule)

	return set
}

// mergeRule picks the rule governing section s. Piece rules replace profile
// rules for piece-scoped sections only; fabric and design always follow the
// profile. pieceRules is nil outside multi-piece resolution.
func mergeRule(profileRules, pieceRules catalogdomain.Rules, s catalogdomain.Section) catalogdomain.SectionRule {
	if pieceRules != nil && s.PieceScoped() {
		return pieceRules.Rule(s)
	}
	return profileRules.Rule(s)
}

func resolveShapes(set *OptionSet, snap catalogdomain.Snapshot, rule catalogdomain.SectionRule, piece *catalogdomain.ProfilePiece) {
	var active []catalogdomain.Shape
	for _, shape := range snap.Shapes {
		if !shape.IsActive {
			continue
		}
		active = append(active, shape)
		if rule.Allows(shape.ID) {
			set.Shapes = append(set.Shapes, shape)
		}
	}

	if piece != nil && piece.DefaultShapeID != nil && containsShape(set.Shapes, *piece.DefaultShapeID) {
		set.DefaultShapeID = idPtr(*piece.DefaultShapeID)
	} else {
		for _, shape := range set.Shapes {
			if shape.IsDefault {
				set.DefaultShapeID = idPtr(shape.ID)
				break
			}
		}
		// Shapes, unlike other categories, fall back to the first option.
		if set.DefaultShapeID == nil && len(set.Shapes) > 0 {
			set.DefaultShapeID = idPtr(set.Shapes[0].ID)
		}
	}

	if hidden := hiddenID(rule); hidden != nil {
		for i := range active {
			if active[i].ID == *hidden {
				shape := active[i]
				set.Hidden.Shape = &shape
				break
			}
		}
	}
}

func resolveFills(set *OptionSet, snap catalogdomain.Snapshot, rule catalogdomain.SectionRule, piece *catalogdomain.ProfilePiece) {
	var active []catalogdomain.FillType
	for _, fill := range snap.FillTypes {
		if !fill.IsActive {
			continue
		}
		active = append(active, fill)
		if rule.Allows(fill.ID) {
			set.FillTypes = append(set.FillTypes, fill)
		}
	}

	if piece != nil && piece.DefaultFillID != nil && containsFill(set.FillTypes, *piece.DefaultFillID) {
		set.DefaultFillID = idPtr(*piece.DefaultFillID)
	} else {
		for _, fill := range set.FillTypes {
			if fill.IsDefault {
				set.DefaultFillID = idPtr(fill.ID)
				break
			}
		}
	}

	if hidden := hiddenID(rule); hidden != nil {
		for i := range active {
			if active[i].ID == *hidden {
				fill := active[i]
				set.Hidden.Fill = &fill
				break
			}
		}
	}
}

// resolveFabrics filters categories by the fabric rule's allow-list. Setting
// any category allow-list also drops uncategorized fabrics.
func resolveFabrics(set *OptionSet, snap catalogdomain.Snapshot, rule catalogdomain.SectionRule) {
	known := make(map[snowflake.ID]struct{}, len(snap.FabricCategories))
	eligible := make(map[snowflake.ID]struct{}, len(snap.FabricCategories))
	for _, category := range snap.FabricCategories {
		known[category.ID] = struct{}{}
		if !category.IsActive || !rule.Allows(category.ID) {
			continue
		}
		eligible[category.ID] = struct{}{}
		set.FabricCategories = append(set.FabricCategories, category)
	}
	set.IncludeUncategorized = !rule.Restricted()

	var active []catalogdomain.Fabric
	for _, fabric := range snap.Fabrics {
		if !fabric.IsActive {
			continue
		}
		active = append(active, fabric)

		uncategorized := fabric.CategoryID == nil
		if !uncategorized {
			if _, ok := known[*fabric.CategoryID]; !ok {
				uncategorized = true
			}
		}
		if uncategorized {
			if set.IncludeUncategorized {
				set.Fabrics = append(set.Fabrics, fabric)
			}
			continue
		}
		if _, ok := eligible[*fabric.CategoryID]; ok {
			set.Fabrics = append(set.Fabrics, fabric)
		}
	}

	for _, fabric := range set.Fabrics {
		if fabric.IsDefault {
			set.DefaultFabricID = idPtr(fabric.ID)
			break
		}
	}

	if hidden := hiddenID(rule); hidden != nil {
		for i := range active {
			if active[i].ID == *hidden {
				fabric := active[i]
				set.Hidden.Fabric = &fabric
				break
			}
		}
	}
}

func resolveAddOns(set *OptionSet, snap catalogdomain.Snapshot, rule func(catalogdomain.Section) catalogdomain.SectionRule) {
	for _, kind := range catalogdomain.AddOnKinds {
		r := rule(kind.Section())
		group := AddOnGroup{Kind: kind, Options: []catalogdomain.AddOnOption{}}

		hidden := hiddenID(r)
		for _, opt := range snap.AddOnsOf(kind) {
			if !opt.IsActive {
				continue
			}
			if hidden != nil && opt.ID == *hidden {
				if set.Hidden.AddOns == nil {
					set.Hidden.AddOns = make(map[catalogdomain.AddOnKind]catalogdomain.AddOnOption)
				}
				set.Hidden.AddOns[kind] = opt
			}
			if !r.Allows(opt.ID) {
				continue
			}
			group.Options = append(group.Options, opt)
			if group.DefaultID == nil && opt.IsDefault {
				group.DefaultID = idPtr(opt.ID)
			}
		}
		set.AddOns = append(set.AddOns, group)
	}
}

// hiddenID returns the preset id of a hidden section, or nil when the section
// is visible or declares no preset.
func hiddenID(rule catalogdomain.SectionRule) *snowflake.ID {
	if rule.Visible || rule.HiddenID == nil {
		return nil
	}
	return rule.HiddenID
}

func containsShape(items []catalogdomain.Shape, id snowflake.ID) bool {
	for _, item := range items {
		if item.ID == id {
			return true
		}
	}
	return false
}

func containsFill(items []catalogdomain.FillType, id snowflake.ID) bool {
	for _, item := range items {
		if item.ID == id {
			return true
		}
	}
	return false
}

// sortedSnapshot returns a copy of snap with every category ordered by
// SortOrder, then ID. The input slices are not modified.
func sortedSnapshot(snap catalogdomain.Snapshot) catalogdomain.Snapshot {
	snap.Shapes = append([]catalogdomain.Shape(nil), snap.Shapes...)
	sort.SliceStable(snap.Shapes, func(i, j int) bool {
		return less(snap.Shapes[i].SortOrder, snap.Shapes[j].SortOrder, snap.Shapes[i].ID, snap.Shapes[j].ID)
	})
	snap.FillTypes = append([]catalogdomain.FillType(nil), snap.FillTypes...)
	sort.SliceStable(snap.FillTypes, func(i, j int) bool {
		return less(snap.FillTypes[i].SortOrder, snap.FillTypes[j].SortOrder, snap.FillTypes[i].ID, snap.FillTypes[j].ID)
	})
	snap.FabricCategories = append([]catalogdomain.FabricCategory(nil), snap.FabricCategories...)
	sort.SliceStable(snap.FabricCategories, func(i, j int) bool {
		return less(snap.FabricCategories[i].SortOrder, snap.FabricCategories[j].SortOrder, snap.FabricCategories[i].ID, snap.FabricCategories[j].ID)
	})
	snap.Fabrics = append([]catalogdomain.Fabric(nil), snap.Fabrics...)
	sort.SliceStable(snap.Fabrics, func(i, j int) bool {
		return less(snap.Fabrics[i].SortOrder, snap.Fabrics[j].SortOrder, snap.Fabrics[i].ID, snap.Fabrics[j].ID)
	})
	snap.AddOns = append([]catalogdomain.AddOnOption(nil), snap.AddOns...)
	sort.SliceStable(snap.AddOns, func(i, j int) bool {
		return less(snap.AddOns[i].SortOrder, snap.AddOns[j].SortOrder, snap.AddOns[i].ID, snap.AddOns[j].ID)
	})
	return snap
}

func less(orderA, orderB int, idA, idB snowflake.ID) bool {
	if orderA != orderB {
		return orderA < orderB
	}
	return idA < idB
}

func idPtr(id snowflake.ID) *snowflake.ID { return &id }
