package domain

import "github.com/bwmarrin/snowflake"

// Section is a calculator section a profile can show, hide or restrict.
type Section string

var (
	SectionShape      Section = "shape"
	SectionDimensions Section = "dimensions"
	SectionFill       Section = "fill"
	SectionFabric     Section = "fabric"
	SectionPiping     Section = "piping"
	SectionButton     Section = "button"
	SectionAntiSkid   Section = "anti_skid"
	SectionRodPocket  Section = "rod_pocket"
	SectionTies       Section = "ties"
	SectionFabricTies Section = "fabric_ties"
	SectionDesign     Section = "design"
)

var Sections = []Section{
	SectionShape,
	SectionDimensions,
	SectionFill,
	SectionFabric,
	SectionPiping,
	SectionButton,
	SectionAntiSkid,
	SectionRodPocket,
	SectionTies,
	SectionFabricTies,
	SectionDesign,
}

// PieceScoped reports whether a multi-piece profile configures the section
// per piece. Fabric and design stay shared by all pieces.
func (s Section) PieceScoped() bool {
	switch s {
	case SectionFabric, SectionDesign:
		return false
	}
	return true
}

// SectionRule controls one section. For the fabric section AllowedIDs holds
// fabric category ids.
type SectionRule struct {
	Visible    bool           `json:"visible"`
	AllowedIDs []snowflake.ID `json:"allowed_ids,omitempty"`
	HiddenID   *snowflake.ID  `json:"hidden_id,omitempty"`
}

// Allows reports whether id passes the allow-list. An empty list allows all.
func (r SectionRule) Allows(id snowflake.ID) bool {
	if len(r.AllowedIDs) == 0 {
		return true
	}
	for _, allowed := range r.AllowedIDs {
		if allowed == id {
			return true
		}
	}
	return false
}

// Restricted reports whether an allow-list is set.
func (r SectionRule) Restricted() bool { return len(r.AllowedIDs) > 0 }

// Rules holds the per-section rules of a profile or piece.
type Rules map[Section]SectionRule

// DefaultRule is applied to sections without an explicit rule.
var DefaultRule = SectionRule{Visible: true}

// Rule returns the rule for s, falling back to DefaultRule.
func (r Rules) Rule(s Section) SectionRule {
	if rule, ok := r[s]; ok {
		return rule
	}
	return DefaultRule
}
