package simulate

// #region imports
import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/threadweaver/threadweaver/go-engine/internal/catalog"
	"github.com/threadweaver/threadweaver/go-engine/internal/metrics"
	"github.com/threadweaver/threadweaver/go-engine/internal/scoring"
	"github.com/threadweaver/threadweaver/go-engine/internal/timeline"
)

// #endregion

// #region objective-config

// ObjectiveConfig holds the weights of the autopilot objective
// function. Zero values are never used directly; start from
// DefaultObjective and override.
type ObjectiveConfig struct {
	ScoreGainWeight    float64 `yaml:"score_gain_weight"`
	CostSpikeThreshold float64 `yaml:"cost_spike_threshold"`
	CostPenaltyWeight  float64 `yaml:"cost_penalty_weight"`
	TrustDropThreshold float64 `yaml:"trust_drop_threshold"`
	TrustPenaltyWeight float64 `yaml:"trust_penalty_weight"`
	EfficiencyWeight   float64 `yaml:"efficiency_weight"`
}

// DefaultObjective returns the standard autopilot weights.
func DefaultObjective() ObjectiveConfig {
	return ObjectiveConfig{
		ScoreGainWeight:    5.0,
		CostSpikeThreshold: 10,
		CostPenaltyWeight:  2.0,
		TrustDropThreshold: -5,
		TrustPenaltyWeight: 3.0,
		EfficiencyWeight:   1.5,
	}
}

// #endregion objective-config

// #region evaluate-option

// EvaluateOption scores one option against the objective: maximize
// sustainability gain, penalize cost spikes and trust losses, reward
// efficiency. The trust term only ever subtracts — a negative trust
// delta increases the penalty; gains are never penalized.
func EvaluateOption(cfg ObjectiveConfig, opt catalog.Option, s metrics.State) (float64, string) {
	d := opt.Deltas
	projected := ApplyDeltas(s, d)
	scoreGain := projected.SustainabilityScore - s.SustainabilityScore

	var costPenalty float64
	if d.Cost > cfg.CostSpikeThreshold {
		costPenalty = -d.Cost * cfg.CostPenaltyWeight
	}

	var trustPenalty float64
	if d.CommunityTrust < cfg.TrustDropThreshold {
		trustPenalty = d.CommunityTrust * cfg.TrustPenaltyWeight
	}

	objective := scoreGain*cfg.ScoreGainWeight +
		costPenalty +
		trustPenalty +
		d.Efficiency*cfg.EfficiencyWeight

	var reasons []string
	if scoreGain > 0 {
		reasons = append(reasons, fmt.Sprintf("+%.1f sustainability score", scoreGain))
	}
	if d.Waste < 0 {
		reasons = append(reasons, fmt.Sprintf("%.0f waste reduction", d.Waste))
	}
	if d.Emissions < 0 {
		reasons = append(reasons, fmt.Sprintf("%.0f emissions reduction", d.Emissions))
	}
	if d.Efficiency > 0 {
		reasons = append(reasons, fmt.Sprintf("+%.0f efficiency gain", d.Efficiency))
	}
	if d.CommunityTrust > 0 {
		reasons = append(reasons, fmt.Sprintf("+%.0f community trust", d.CommunityTrust))
	}

	explanation := fmt.Sprintf("Selected '%s': %s", opt.Label, strings.Join(reasons, ", "))
	return objective, explanation
}

// BestOption picks the option with the highest objective score. Ties
// resolve to the earlier option in card order.
func BestOption(cfg ObjectiveConfig, card catalog.Card, s metrics.State) (catalog.Option, string) {
	best := card.Options[0]
	bestScore, bestExplain := EvaluateOption(cfg, best, s)
	for _, opt := range card.Options[1:] {
		score, explain := EvaluateOption(cfg, opt, s)
		if score > bestScore {
			best, bestScore, bestExplain = opt, score, explain
		}
	}
	return best, bestExplain
}

// #endregion evaluate-option

// #region planner

// Planner runs multi-step autopilot simulations over a catalog.
type Planner struct {
	cat *catalog.Catalog
	cfg ObjectiveConfig
}

// NewPlanner creates a planner with the given objective weights.
func NewPlanner(cat *catalog.Catalog, cfg ObjectiveConfig) *Planner {
	return &Planner{cat: cat, cfg: cfg}
}

// Run simulates up to steps decisions starting at startStep, carrying
// metrics and used-card state forward each iteration. A per-step seed
// (seed+step) keeps runs reproducible without repeating one draw. When
// selection dead-ends mid-run the partial node list is returned rather
// than discarded.
func (p *Planner) Run(initial metrics.State, steps, startStep int, usedIDs []string, seed *int64) ([]timeline.Node, metrics.State, error) {
	current := initial
	used := append([]string(nil), usedIDs...)
	var nodes []timeline.Node

	for i := 0; i < steps; i++ {
		step := startStep + i

		var stepSeed *int64
		if seed != nil {
			s := *seed + int64(step)
			stepSeed = &s
		}

		sel, err := scoring.SelectCard(p.cat, current, used, stepSeed)
		if err != nil {
			if errors.Is(err, scoring.ErrNoEligibleCards) {
				log.Printf("[AUTOPILOT] no eligible cards at step %d, stopping with %d nodes", step, len(nodes))
				return nodes, current, nil
			}
			return nodes, current, err
		}

		opt, explanation := BestOption(p.cfg, sel.Card, current)
		current = ApplyDeltas(current, opt.Deltas)

		nodes = append(nodes, timeline.Node{
			ID:             uuid.New().String(),
			Step:           step,
			Timestamp:      time.Now().UTC(),
			CardID:         sel.Card.ID,
			ChosenOptionID: opt.ID,
			MetricsAfter:   current,
			Explanation:    explanation,
		})
		used = append(used, sel.Card.ID)
	}

	return nodes, current, nil
}

// #endregion planner
