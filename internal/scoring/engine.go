package scoring

// #region imports
import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/threadweaver/threadweaver/go-engine/internal/catalog"
	"github.com/threadweaver/threadweaver/go-engine/internal/metrics"
)

// #endregion

// #region errors

// ErrNoEligibleCards means the catalog is empty even after the reuse
// fallback. Callers treat this as a terminal empty outcome, not a fault.
var ErrNoEligibleCards = errors.New("no eligible cards available")

// #endregion errors

// #region types

// Factor names one reason a card scored highly.
type Factor struct {
	Name   string  `json:"factor"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

// ScoringDetails is the structured explainability payload for a selection.
type ScoringDetails struct {
	FinalScore           float64  `json:"finalScore"`
	TopFactors           []Factor `json:"topFactors"`
	CandidatesConsidered int      `json:"candidatesConsidered"`
	TotalEligible        int      `json:"totalEligible"`
}

// Selection is the engine's full answer: which card, and why.
type Selection struct {
	Card      catalog.Card
	Rationale string
	Details   ScoringDetails
}

type scoredCard struct {
	card    catalog.Card
	score   float64
	factors []Factor
}

// #endregion types

// #region urgency

const urgentThreshold = 0.6

// Urgency maps each tag to how far its metric sits from the ideal, on a
// 0-1 scale. Waste, emissions, and cost are urgent when high; efficiency
// and trust are urgent when low. Policy carries no metric urgency.
func Urgency(s metrics.State) map[catalog.Tag]float64 {
	return map[catalog.Tag]float64{
		catalog.TagWaste:      s.Waste / 100.0,
		catalog.TagEmissions:  s.Emissions / 100.0,
		catalog.TagCost:       s.Cost / 100.0,
		catalog.TagEfficiency: (100 - s.Efficiency) / 100.0,
		catalog.TagTrust:      (100 - s.CommunityTrust) / 100.0,
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// metricReading returns the raw metric value a tag refers to, for
// factor reasons.
func metricReading(s metrics.State, tag catalog.Tag) float64 {
	switch tag {
	case catalog.TagWaste:
		return s.Waste
	case catalog.TagEmissions:
		return s.Emissions
	case catalog.TagCost:
		return s.Cost
	case catalog.TagEfficiency:
		return s.Efficiency
	case catalog.TagTrust:
		return s.CommunityTrust
	}
	return 0
}

// #endregion urgency

// #region score-card

// scoreCard computes the urgency score for one card: a flat base, tag
// urgency boosts, the severity multiplier, and a bonus when the overall
// sustainability score is struggling.
func scoreCard(card catalog.Card, s metrics.State, urgency map[catalog.Tag]float64) (float64, []Factor) {
	score := 10.0
	var factors []Factor

	for _, tag := range card.Tags {
		u, ok := urgency[tag]
		if !ok {
			continue
		}
		score += u * 30
		if u > urgentThreshold {
			factors = append(factors, Factor{
				Name:  fmt.Sprintf("High %s urgency", tag),
				Score: u * 30,
				Reason: fmt.Sprintf("%s is at %.0f, requiring attention",
					capitalize(string(tag)), metricReading(s, tag)),
			})
		}
	}

	mult := card.Severity.Multiplier()
	score *= mult
	if card.Severity == catalog.SeverityHard {
		factors = append(factors, Factor{
			Name:   "High-impact decision",
			Score:  (mult - 1) * score,
			Reason: "This is a hard decision with significant long-term effects",
		})
	}

	if s.SustainabilityScore < 40 {
		score += 15
		factors = append(factors, Factor{
			Name:   "Low sustainability score",
			Score:  15,
			Reason: fmt.Sprintf("Overall sustainability at %.0f needs improvement", s.SustainabilityScore),
		})
	}

	return score, factors
}

// #endregion score-card

// #region eligibility

// eligible applies the two-stage fallback policy: drop used cards
// (reusing the whole catalog once it is exhausted), then apply trigger
// filtering (falling back to the available set when nothing matches).
// Dead-ending is reserved for a genuinely empty catalog.
func eligible(cat *catalog.Catalog, s metrics.State, usedIDs []string) []catalog.Card {
	all := cat.Cards()
	if len(all) == 0 {
		return nil
	}

	used := make(map[string]bool, len(usedIDs))
	for _, id := range usedIDs {
		used[id] = true
	}

	available := make([]catalog.Card, 0, len(all))
	for _, c := range all {
		if !used[c.ID] {
			available = append(available, c)
		}
	}
	if len(available) == 0 {
		log.Printf("[ENGINE] all %d cards used, allowing reuse", len(all))
		available = all
	}

	matched := make([]catalog.Card, 0, len(available))
	for _, c := range available {
		if c.Triggers.Satisfied(s) {
			matched = append(matched, c)
		}
	}
	if len(matched) == 0 {
		log.Printf("[ENGINE] no cards match triggers, falling back to %d available", len(available))
		matched = available
	}
	return matched
}

// #endregion eligibility

// #region select-card

// SelectCard picks the next decision card for the current state. The
// random generator is constructed per call so concurrent sessions never
// share or perturb each other's sequence; a nil seed draws a fresh one.
func SelectCard(cat *catalog.Catalog, s metrics.State, usedIDs []string, seed *int64) (Selection, error) {
	var rng *rand.Rand
	if seed != nil {
		rng = rand.New(rand.NewSource(*seed))
	} else {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	candidates := eligible(cat, s, usedIDs)
	if len(candidates) == 0 {
		return Selection{}, ErrNoEligibleCards
	}

	urgency := Urgency(s)
	scored := make([]scoredCard, 0, len(candidates))
	for _, c := range candidates {
		score, factors := scoreCard(c, s, urgency)
		scored = append(scored, scoredCard{card: c, score: score, factors: factors})
	}

	// Stable sort keeps catalog order as the tie-breaker.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	topN := 3
	if len(scored) < topN {
		topN = len(scored)
	}
	top := scored[:topN]

	selected := drawWeighted(rng, top)

	topFactors := selected.factors
	if len(topFactors) > 3 {
		topFactors = topFactors[:3]
	}

	var rationale string
	if len(topFactors) > 0 {
		parts := make([]string, len(topFactors))
		for i, f := range topFactors {
			parts[i] = fmt.Sprintf("%s (%s)", f.Name, f.Reason)
		}
		rationale = "This card was chosen because: " + strings.Join(parts, "; ")
	} else {
		rationale = fmt.Sprintf("This %s decision addresses current sustainability needs.", selected.card.Severity)
	}

	return Selection{
		Card:      selected.card,
		Rationale: rationale,
		Details: ScoringDetails{
			FinalScore:           selected.score,
			TopFactors:           topFactors,
			CandidatesConsidered: len(top),
			TotalEligible:        len(scored),
		},
	}, nil
}

// drawWeighted picks one candidate with probability proportional to its
// score. Scores are always positive (10 base times a >=1 multiplier).
func drawWeighted(rng *rand.Rand, candidates []scoredCard) scoredCard {
	var total float64
	for _, c := range candidates {
		total += c.score
	}
	r := rng.Float64() * total
	for _, c := range candidates {
		r -= c.score
		if r < 0 {
			return c
		}
	}
	return candidates[len(candidates)-1]
}

// #endregion select-card
