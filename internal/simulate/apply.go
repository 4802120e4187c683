package simulate

// #region imports
import (
	"fmt"

	"github.com/threadweaver/threadweaver/go-engine/internal/catalog"
	"github.com/threadweaver/threadweaver/go-engine/internal/metrics"
)

// #endregion

// #region apply-deltas

// ApplyDeltas adds an option's offsets to the state, clamps every base
// metric to [0,100], and rederives the sustainability score. Pure:
// identical inputs always yield identical output.
func ApplyDeltas(s metrics.State, d metrics.Delta) metrics.State {
	s.Waste += d.Waste
	s.Emissions += d.Emissions
	s.Cost += d.Cost
	s.Efficiency += d.Efficiency
	s.CommunityTrust += d.CommunityTrust
	return metrics.Recompute(s)
}

// #endregion apply-deltas

// #region apply-decision

// ApplyDecision resolves a card and option by id and applies the
// option's deltas. Missing ids are caller errors wrapping
// catalog.ErrNotFound. Returns the new state and the option's
// explanation text unchanged.
func ApplyDecision(cat *catalog.Catalog, s metrics.State, cardID, optionID string) (metrics.State, string, error) {
	card, ok := cat.Get(cardID)
	if !ok {
		return metrics.State{}, "", fmt.Errorf("card %q: %w", cardID, catalog.ErrNotFound)
	}
	opt, ok := card.Option(optionID)
	if !ok {
		return metrics.State{}, "", fmt.Errorf("option %q in card %q: %w", optionID, cardID, catalog.ErrNotFound)
	}
	return ApplyDeltas(s, opt.Deltas), opt.Explanation, nil
}

// #endregion apply-decision
