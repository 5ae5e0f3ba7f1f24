package domain

import "github.com/smallbiznis/cushionly/internal/formula"

// Diagnose checks the shape's formulas against its declared input keys. The
// volume formula of a 2D shape and the optional without-base formula are
// only checked when set.
func (s Shape) Diagnose() []ShapeDiagnostic {
	keys := s.FieldKeys()

	checks := []struct {
		field    string
		src      string
		optional bool
	}{
		{"surface_area_formula", s.SurfaceAreaFormula, false},
		{"volume_formula", s.VolumeFormula, s.Is2D},
		{"surface_area_without_base_formula", s.SurfaceAreaWithoutBaseFormula, true},
	}

	var out []ShapeDiagnostic
	for _, c := range checks {
		if c.optional && c.src == "" {
			continue
		}
		issues := formula.Validate(c.src, keys)
		if len(issues) == 0 {
			continue
		}
		out = append(out, ShapeDiagnostic{
			ShapeID:   s.ID,
			ShapeName: s.Name,
			Formula:   c.src,
			Field:     c.field,
			Issues:    issues,
		})
	}
	return out
}
