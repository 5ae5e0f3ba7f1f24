// Package engine turns resolved selections into an itemized price. It is
// pure: the same selections, settings and tiers always produce the same
// breakdown.
package engine

import (
	"math"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	catalogdomain "github.com/smallbiznis/cushionly/internal/catalog/domain"
	"github.com/smallbiznis/cushionly/internal/formula"
	"github.com/smallbiznis/cushionly/internal/margin"
	"github.com/smallbiznis/cushionly/internal/resolver"
)

// LineKind groups line items.
type LineKind string

const (
	LineFabric LineKind = "fabric"
	LineFill   LineKind = "fill"
	LineAddOn  LineKind = "add_on"
	LineTies   LineKind = "ties"
)

// Line is one displayed cost of a piece, rounded for display.
type Line struct {
	Kind      LineKind                `json:"kind"`
	AddOnKind catalogdomain.AddOnKind `json:"add_on_kind,omitempty"`
	ItemID    snowflake.ID            `json:"item_id"`
	Label     string                  `json:"label"`
	Amount    decimal.Decimal         `json:"amount"`
}

// PieceCost is the itemized cost of one piece. Amounts keep full precision
// and already include the panel multiplier.
type PieceCost struct {
	PieceID     *snowflake.ID `json:"piece_id,omitempty"`
	PieceName   string        `json:"piece_name,omitempty"`
	ShapeID     *snowflake.ID `json:"shape_id,omitempty"`
	SurfaceArea float64       `json:"surface_area"`
	Volume      float64       `json:"volume"`
	Panels      int           `json:"panels"`
	FabricCost  float64       `json:"fabric_cost"`
	FillCost    float64       `json:"fill_cost"`
	AddOnCost   float64       `json:"add_on_cost"`
	TiesCost    float64       `json:"ties_cost"`
	Total       float64       `json:"total"`
	Lines       []Line        `json:"lines"`
	Complete    bool          `json:"complete"`
	Missing     []string      `json:"missing,omitempty"`
}

// Discount is a fabric or fill discount taken off the marked-up total.
type Discount struct {
	Source  string          `json:"source"`
	ItemID  snowflake.ID    `json:"item_id"`
	Name    string          `json:"name"`
	Percent float64         `json:"percent"`
	Amount  decimal.Decimal `json:"amount"`
	amount  float64
}

// MissingField is a required dimension not yet supplied.
type MissingField struct {
	Piece int    `json:"piece"`
	Key   string `json:"key"`
}

// Breakdown is the itemized price of a whole product.
type Breakdown struct {
	Pieces            []PieceCost                     `json:"pieces"`
	RawMaterials      float64                         `json:"raw_materials"`
	AfterConversion   float64                         `json:"after_conversion"`
	AddOns            float64                         `json:"add_ons"`
	Ties              float64                         `json:"ties"`
	Subtotal          float64                         `json:"subtotal"`
	Shipping          float64                         `json:"shipping"`
	Labour            float64                         `json:"labour"`
	PreMargin         float64                         `json:"pre_margin"`
	MarginPercent     float64                         `json:"margin_percent"`
	PostMargin        float64                         `json:"post_margin"`
	AdditionalPercent float64                         `json:"additional_percent"`
	ProfileMarkup     float64                         `json:"profile_markup"`
	Discounts         []Discount                      `json:"discounts"`
	Total             float64                         `json:"total"`
	FinalPrice        decimal.Decimal                 `json:"final_price"`
	Complete          bool                            `json:"complete"`
	Missing           []MissingField                  `json:"missing,omitempty"`
	FormulaIssues     []catalogdomain.ShapeDiagnostic `json:"formula_issues,omitempty"`
}

// Engine prices selections. It caches compiled formulas and is safe for
// concurrent use.
type Engine struct {
	programs formula.Memo
}

func New() *Engine {
	return &Engine{}
}

// PriceOne prices a single piece: area and volume from the shape formulas,
// fabric and fill at their unit rates, add-ons, then the panel multiplier.
func (e *Engine) PriceOne(sel resolver.ResolvedSelection) PieceCost {
	return e.price(sel, true)
}

// price prices one piece. Flat-priced shared add-ons are charged only when
// withShared is set, so a product pays for them once.
func (e *Engine) price(sel resolver.ResolvedSelection, withShared bool) PieceCost {
	cost := PieceCost{
		PieceID:   sel.PieceID,
		PieceName: sel.PieceName,
		Panels:    1,
		Complete:  sel.Complete(),
		Missing:   sel.Missing,
		Lines:     []Line{},
	}
	if sel.Shape == nil {
		return cost
	}
	shapeID := sel.Shape.ID
	cost.ShapeID = &shapeID

	cost.SurfaceArea = e.programs.Evaluate(surfaceFormula(*sel.Shape, sel.Weatherproof), sel.Bindings)
	cost.Volume = e.programs.Evaluate(sel.Shape.VolumeFormula, sel.Bindings)

	var lines []lineAmount
	if sel.Fabric != nil {
		cost.FabricCost = cost.SurfaceArea * sel.Fabric.PricePerSqInch
		lines = append(lines, lineAmount{Line{Kind: LineFabric, ItemID: sel.Fabric.ID, Label: sel.Fabric.Name}, cost.FabricCost})
	}
	if sel.Fill != nil {
		cost.FillCost = cost.Volume * sel.Fill.PricePerCubicInch
		lines = append(lines, lineAmount{Line{Kind: LineFill, ItemID: sel.Fill.ID, Label: sel.Fill.Name}, cost.FillCost})
	}

	for _, kind := range catalogdomain.AddOnKinds {
		opt, ok := sel.AddOns[kind]
		if !ok || (!withShared && sharedFlat(opt)) {
			continue
		}
		amount := addOnAmount(opt, cost.FabricCost, cost.FillCost)
		line := Line{Kind: LineAddOn, AddOnKind: kind, ItemID: opt.ID, Label: opt.Name}
		if kind.IsTie() {
			line.Kind = LineTies
			cost.TiesCost += amount
		} else {
			cost.AddOnCost += amount
		}
		lines = append(lines, lineAmount{line, amount})
	}

	if panels := panelCount(*sel.Shape, sel.Panels); panels > 1 {
		n := float64(panels)
		cost.Panels = panels
		cost.FabricCost *= n
		cost.FillCost *= n
		cost.AddOnCost *= n
		cost.TiesCost *= n
		for i := range lines {
			lines[i].amount *= n
		}
	}

	cost.Total = cost.FabricCost + cost.FillCost + cost.AddOnCost + cost.TiesCost
	for _, l := range lines {
		l.line.Amount = Round2(l.amount)
		cost.Lines = append(cost.Lines, l.line)
	}
	return cost
}

type lineAmount struct {
	line   Line
	amount float64
}

// PriceAll prices every piece and applies conversion, shipping, labour,
// margin, the profile markup and discounts, rounding only the final price.
func (e *Engine) PriceAll(sels []resolver.ResolvedSelection, additionalPercent float64, settings catalogdomain.CalculatorSettings, tiers []catalogdomain.PriceTier) Breakdown {
	b := Breakdown{
		Pieces:            make([]PieceCost, 0, len(sels)),
		AdditionalPercent: additionalPercent,
		Discounts:         []Discount{},
		Complete:          len(sels) > 0,
	}

	var fabric, fill float64
	seenShapes := make(map[snowflake.ID]struct{})
	for i, sel := range sels {
		cost := e.price(sel, i == 0)
		b.Pieces = append(b.Pieces, cost)

		fabric += cost.FabricCost
		fill += cost.FillCost
		b.AddOns += cost.AddOnCost
		b.Ties += cost.TiesCost

		if !cost.Complete {
			b.Complete = false
		}
		for _, key := range cost.Missing {
			b.Missing = append(b.Missing, MissingField{Piece: i, Key: key})
		}
		if sel.Shape != nil {
			if _, seen := seenShapes[sel.Shape.ID]; !seen {
				seenShapes[sel.Shape.ID] = struct{}{}
				b.FormulaIssues = append(b.FormulaIssues, sel.Shape.Diagnose()...)
			}
		}
	}

	// Ties always reach the subtotal. The setting only decides whether they
	// are converted with the raw materials and so inflate shipping and labour.
	b.RawMaterials = fabric + fill
	if settings.TiesIncludeInShippingLabour {
		b.RawMaterials += b.Ties
	}
	b.AfterConversion = b.RawMaterials * (1 + settings.ConversionPercent/100)
	b.Subtotal = b.AfterConversion + b.AddOns

	base := b.Subtotal
	if !settings.TiesIncludeInShippingLabour {
		b.Subtotal += b.Ties
	}

	b.Shipping = base * settings.ShippingPercent / 100
	b.Labour = base * settings.LabourPercent / 100
	b.PreMargin = b.Subtotal + b.Shipping + b.Labour

	b.MarginPercent = margin.ComputeMarginPercent(b.PreMargin, settings, tiers)
	b.PostMargin = margin.Apply(b.PreMargin, b.MarginPercent)
	b.ProfileMarkup = b.PostMargin * (1 + additionalPercent/100)

	b.Discounts = discounts(sels, b.ProfileMarkup)
	b.Total = b.ProfileMarkup
	for _, d := range b.Discounts {
		b.Total -= d.amount
	}
	b.FinalPrice = Round2(b.Total)
	return b
}

// discounts collects the fabric discount once and each distinct fill
// discount once, all taken against the same pre-discount total.
func discounts(sels []resolver.ResolvedSelection, total float64) []Discount {
	out := []Discount{}
	if len(sels) == 0 {
		return out
	}

	if f := sels[0].Fabric; f != nil && f.DiscountEnabled && f.DiscountPercent != 0 {
		out = append(out, newDiscount("fabric", f.ID, f.Name, f.DiscountPercent, total))
	}

	seen := make(map[snowflake.ID]struct{})
	for _, sel := range sels {
		f := sel.Fill
		if f == nil || !f.DiscountEnabled || f.DiscountPercent == 0 {
			continue
		}
		if _, ok := seen[f.ID]; ok {
			continue
		}
		seen[f.ID] = struct{}{}
		out = append(out, newDiscount("fill", f.ID, f.Name, f.DiscountPercent, total))
	}
	return out
}

func newDiscount(source string, id snowflake.ID, name string, percent, total float64) Discount {
	amount := total * percent / 100
	return Discount{
		Source:  source,
		ItemID:  id,
		Name:    name,
		Percent: percent,
		Amount:  Round2(amount),
		amount:  amount,
	}
}

// addOnAmount prices one option. Percent options are a share of fabric plus
// fill, except design which is a share of fabric alone.
func addOnAmount(opt catalogdomain.AddOnOption, fabric, fill float64) float64 {
	if opt.PricingMode != catalogdomain.PricingModePercent {
		return opt.Price
	}
	base := fabric + fill
	if opt.Kind == catalogdomain.AddOnDesign {
		base = fabric
	}
	return base * opt.Percent / 100
}

// sharedFlat reports whether opt is chosen once for the whole product and
// priced flat. Percent-priced shared options scale with each piece instead.
func sharedFlat(opt catalogdomain.AddOnOption) bool {
	return !opt.Kind.Section().PieceScoped() && opt.PricingMode != catalogdomain.PricingModePercent
}

// surfaceFormula picks the without-base formula in weatherproof mode when the
// shape defines one.
func surfaceFormula(shape catalogdomain.Shape, weatherproof bool) string {
	if weatherproof && shape.SurfaceAreaWithoutBaseFormula != "" {
		return shape.SurfaceAreaWithoutBaseFormula
	}
	return shape.SurfaceAreaFormula
}

// panelCount bounds the requested panels to [1, MaxPanels] for 2D shapes with
// panels enabled, and is 1 otherwise.
func panelCount(shape catalogdomain.Shape, requested int) int {
	if !shape.Is2D || !shape.EnablePanels {
		return 1
	}
	limit := shape.MaxPanels
	if limit < 1 {
		limit = 1
	}
	switch {
	case requested < 1:
		return 1
	case requested > limit:
		return limit
	}
	return requested
}

// Round2 rounds half up to two decimal places. Values are first snapped to
// six places so binary noise like 164.56499999999997 rounds as 164.565.
func Round2(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v).Round(6).Round(2)
}
