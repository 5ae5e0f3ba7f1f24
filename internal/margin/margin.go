// Package margin computes the margin adjustment applied to a pre-margin
// subtotal, either from price tiers or from a logarithmic formula.
package margin

import (
	"math"
	"sort"

	catalogdomain "github.com/smallbiznis/cushionly/internal/catalog/domain"
)

// ComputeMarginPercent returns the adjustment percentage for subtotal. The
// result may be negative; it is never clamped. Tier mode looks up every
// subtotal, zero included; formula mode yields 0 for a non-positive subtotal
// since the logarithm is undefined there.
func ComputeMarginPercent(subtotal float64, settings catalogdomain.CalculatorSettings, tiers []catalogdomain.PriceTier) float64 {
	if math.IsNaN(subtotal) {
		return 0
	}
	switch settings.MarginCalculationMethod {
	case catalogdomain.MarginMethodFormula:
		if subtotal <= 0 {
			return 0
		}
		return formulaPercent(subtotal, settings)
	default:
		return tierPercent(subtotal, tiers)
	}
}

// Apply returns subtotal adjusted by percent.
func Apply(subtotal, percent float64) float64 {
	return subtotal * (1 + percent/100)
}

// MatchTier returns the first tier, by ascending MinPrice, containing
// subtotal.
func MatchTier(subtotal float64, tiers []catalogdomain.PriceTier) (catalogdomain.PriceTier, bool) {
	sorted := append([]catalogdomain.PriceTier(nil), tiers...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MinPrice < sorted[j].MinPrice
	})
	for _, tier := range sorted {
		if tier.Contains(subtotal) {
			return tier, true
		}
	}
	return catalogdomain.PriceTier{}, false
}

func tierPercent(subtotal float64, tiers []catalogdomain.PriceTier) float64 {
	tier, ok := MatchTier(subtotal, tiers)
	if !ok {
		return 0
	}
	return tier.AdjustmentPercent
}

func formulaPercent(subtotal float64, s catalogdomain.CalculatorSettings) float64 {
	switch {
	case subtotal <= s.FlatMarginThreshold:
		return s.FlatMarginPercent
	case subtotal <= s.FormulaThreshold:
		return s.FormulaLowConstant - s.FormulaLowCoefficient*math.Log(subtotal)
	default:
		return s.FormulaHighConstant - s.FormulaHighCoefficient*math.Log(subtotal)
	}
}
