package domain

import (
	"fmt"
	"math"
)

// DefaultCalculatorSettings are used for shops without a settings row when
// no pricing.yml overrides them.
func DefaultCalculatorSettings() CalculatorSettings {
	return CalculatorSettings{
		MarginCalculationMethod: MarginMethodTier,
	}
}

// Validate checks the settings a merchant may write.
func (s CalculatorSettings) Validate() error {
	switch s.MarginCalculationMethod {
	case MarginMethodTier, MarginMethodFormula:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMarginMethod, s.MarginCalculationMethod)
	}

	percents := map[string]float64{
		"shipping_percent":   s.ShippingPercent,
		"labour_percent":     s.LabourPercent,
		"conversion_percent": s.ConversionPercent,
	}
	for name, v := range percents {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s", ErrInvalidSettingsValue, name)
		}
	}

	if s.MarginCalculationMethod == MarginMethodFormula {
		if s.FlatMarginThreshold < 0 || s.FormulaThreshold < s.FlatMarginThreshold {
			return fmt.Errorf("%w: formula thresholds", ErrInvalidSettingsValue)
		}
	}
	return nil
}
