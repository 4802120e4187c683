package catalog

// #region imports
import (
	"github.com/threadweaver/threadweaver/go-engine/internal/metrics"
)

// #endregion

// #region tag

// Tag labels the metric concern a card addresses. The vocabulary is
// fixed; unknown tags fail catalog validation.
type Tag string

const (
	TagWaste      Tag = "waste"
	TagEmissions  Tag = "emissions"
	TagCost       Tag = "cost"
	TagEfficiency Tag = "efficiency"
	TagTrust      Tag = "trust"
	TagPolicy     Tag = "policy"
)

var validTags = map[Tag]bool{
	TagWaste:      true,
	TagEmissions:  true,
	TagCost:       true,
	TagEfficiency: true,
	TagTrust:      true,
	TagPolicy:     true,
}

// #endregion tag

// #region severity

// Severity grades how consequential a card is. It doubles as a scoring
// multiplier during card selection.
type Severity string

const (
	SeverityEasy   Severity = "easy"
	SeverityMedium Severity = "medium"
	SeverityHard   Severity = "hard"
)

// Multiplier returns the urgency-scoring weight for the severity.
// Unknown severities score as easy; validation rejects them earlier.
func (s Severity) Multiplier() float64 {
	switch s {
	case SeverityMedium:
		return 1.5
	case SeverityHard:
		return 2.0
	default:
		return 1.0
	}
}

// #endregion severity

// #region option

// Option is one selectable choice within a card. Immutable once loaded.
type Option struct {
	ID          string        `json:"id"`
	Label       string        `json:"label"`
	Description string        `json:"description"`
	Deltas      metrics.Delta `json:"deltas"`
	Explanation string        `json:"explanation"`
}

// #endregion option

// #region triggers

// Triggers gates card eligibility with min/max bounds on the base
// metrics. Nil fields are unbounded; all declared bounds must hold
// (conjunction).
type Triggers struct {
	WasteMin      *float64 `json:"waste_min,omitempty"`
	WasteMax      *float64 `json:"waste_max,omitempty"`
	EmissionsMin  *float64 `json:"emissions_min,omitempty"`
	EmissionsMax  *float64 `json:"emissions_max,omitempty"`
	CostMin       *float64 `json:"cost_min,omitempty"`
	CostMax       *float64 `json:"cost_max,omitempty"`
	EfficiencyMin *float64 `json:"efficiency_min,omitempty"`
	EfficiencyMax *float64 `json:"efficiency_max,omitempty"`
	TrustMin      *float64 `json:"trust_min,omitempty"`
	TrustMax      *float64 `json:"trust_max,omitempty"`
}

// Satisfied reports whether every declared bound holds for the state.
func (t *Triggers) Satisfied(s metrics.State) bool {
	if t == nil {
		return true
	}
	checks := []struct {
		min, max *float64
		v        float64
	}{
		{t.WasteMin, t.WasteMax, s.Waste},
		{t.EmissionsMin, t.EmissionsMax, s.Emissions},
		{t.CostMin, t.CostMax, s.Cost},
		{t.EfficiencyMin, t.EfficiencyMax, s.Efficiency},
		{t.TrustMin, t.TrustMax, s.CommunityTrust},
	}
	for _, c := range checks {
		if c.min != nil && c.v < *c.min {
			return false
		}
		if c.max != nil && c.v > *c.max {
			return false
		}
	}
	return true
}

// bounds returns all declared bound values for range validation.
func (t *Triggers) bounds() []*float64 {
	if t == nil {
		return nil
	}
	return []*float64{
		t.WasteMin, t.WasteMax,
		t.EmissionsMin, t.EmissionsMax,
		t.CostMin, t.CostMax,
		t.EfficiencyMin, t.EfficiencyMax,
		t.TrustMin, t.TrustMax,
	}
}

// #endregion triggers

// #region card

// Card is a single decision definition: when it may be offered and what
// the player can choose. Cards are read-only for the process lifetime.
type Card struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Prompt   string    `json:"prompt"`
	Tags     []Tag     `json:"tags"`
	Severity Severity  `json:"severity"`
	Triggers *Triggers `json:"triggers,omitempty"`
	Options  []Option  `json:"options"`
}

// Option looks up an option by id within the card.
func (c Card) Option(id string) (Option, bool) {
	for _, o := range c.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// #endregion card
