package domain

// Snapshot is the catalog of one shop as seen by a single pricing request.
// Profile is nil when the storefront uses the shop defaults.
type Snapshot struct {
	Shop             string             `json:"shop"`
	Shapes           []Shape            `json:"shapes"`
	FillTypes        []FillType         `json:"fill_types"`
	FabricCategories []FabricCategory   `json:"fabric_categories"`
	Fabrics          []Fabric           `json:"fabrics"`
	AddOns           []AddOnOption      `json:"add_ons"`
	Profile          *Profile           `json:"profile,omitempty"`
	Settings         CalculatorSettings `json:"settings"`
	Tiers            []PriceTier        `json:"tiers"`
}

// AddOnsOf returns the add-on options of one kind, in catalog order.
func (s Snapshot) AddOnsOf(kind AddOnKind) []AddOnOption {
	var out []AddOnOption
	for _, opt := range s.AddOns {
		if opt.Kind == kind {
			out = append(out, opt)
		}
	}
	return out
}
