package replay

// #region imports
import (
	"fmt"
	"log"

	"github.com/threadweaver/threadweaver/go-engine/internal/catalog"
	"github.com/threadweaver/threadweaver/go-engine/internal/metrics"
	"github.com/threadweaver/threadweaver/go-engine/internal/scoring"
	"github.com/threadweaver/threadweaver/go-engine/internal/simulate"
)

// #endregion

// #region types

// StepResult captures the outcome of replaying one recorded step.
type StepResult struct {
	Step        int
	CardID      string
	OptionID    string
	Rationale   string
	Metrics     metrics.State
	Explanation string
}

// Mismatch records a divergence between a replayed step and the
// fixture's expected outcome.
type Mismatch struct {
	Step  int
	Field string // "card" | "option" | "score"
	Want  string
	Got   string
}

// Summary aggregates a replay run.
type Summary struct {
	TotalSteps   int
	Mismatches   []Mismatch
	FinalMetrics metrics.State
}

// Passed reports whether the run matched every expectation.
func (s Summary) Passed() bool {
	return len(s.Mismatches) == 0
}

// #endregion types

// #region replay

// scoreTolerance absorbs float rounding between recorded and replayed
// sustainability scores.
const scoreTolerance = 0.05

// Replay walks the fixture step by step: a pinned card id replays the
// recorded choice, an empty one lets the scoring engine select; a
// pinned option id replays the user's pick, an empty one lets the
// objective choose. Operates entirely in-memory.
func Replay(f *Fixture, cat *catalog.Catalog, objCfg simulate.ObjectiveConfig) ([]StepResult, Summary, error) {
	current := metrics.Recompute(f.InitialMetrics)
	used := make([]string, 0, len(f.Steps))
	results := make([]StepResult, 0, len(f.Steps))

	for _, step := range f.Steps {
		var (
			card      catalog.Card
			rationale string
		)
		if step.CardID != "" {
			c, ok := cat.Get(step.CardID)
			if !ok {
				return results, Summary{}, fmt.Errorf("step %d: card %q: %w", step.Step, step.CardID, catalog.ErrNotFound)
			}
			card = c
			rationale = "replayed recorded choice"
		} else {
			seed := stepSeed(f.Seed, step.Step)
			sel, err := scoring.SelectCard(cat, current, used, seed)
			if err != nil {
				return results, Summary{}, fmt.Errorf("step %d: %w", step.Step, err)
			}
			card = sel.Card
			rationale = sel.Rationale
		}

		optionID := step.OptionID
		if optionID == "" {
			opt, _ := simulate.BestOption(objCfg, card, current)
			optionID = opt.ID
		}

		next, explanation, err := simulate.ApplyDecision(cat, current, card.ID, optionID)
		if err != nil {
			return results, Summary{}, fmt.Errorf("step %d: %w", step.Step, err)
		}

		current = next
		used = append(used, card.ID)
		results = append(results, StepResult{
			Step:        step.Step,
			CardID:      card.ID,
			OptionID:    optionID,
			Rationale:   rationale,
			Metrics:     current,
			Explanation: explanation,
		})
		log.Printf("[REPLAY] step %d: %s/%s score=%.1f", step.Step, card.ID, optionID, current.SustainabilityScore)
	}

	return results, summarize(f, results, current), nil
}

func stepSeed(base *int64, step int) *int64 {
	if base == nil {
		return nil
	}
	s := *base + int64(step)
	return &s
}

// #endregion replay

// #region summarize

func summarize(f *Fixture, results []StepResult, final metrics.State) Summary {
	s := Summary{
		TotalSteps:   len(results),
		FinalMetrics: final,
	}

	byStep := make(map[int]StepResult, len(results))
	for _, r := range results {
		byStep[r.Step] = r
	}

	for _, want := range f.Expected {
		got, ok := byStep[want.Step]
		if !ok {
			s.Mismatches = append(s.Mismatches, Mismatch{
				Step: want.Step, Field: "card",
				Want: want.CardID, Got: "<missing step>",
			})
			continue
		}
		if want.CardID != "" && want.CardID != got.CardID {
			s.Mismatches = append(s.Mismatches, Mismatch{
				Step: want.Step, Field: "card",
				Want: want.CardID, Got: got.CardID,
			})
		}
		if want.OptionID != "" && want.OptionID != got.OptionID {
			s.Mismatches = append(s.Mismatches, Mismatch{
				Step: want.Step, Field: "option",
				Want: want.OptionID, Got: got.OptionID,
			})
		}
		if want.SustainabilityScore != nil {
			diff := got.Metrics.SustainabilityScore - *want.SustainabilityScore
			if diff < -scoreTolerance || diff > scoreTolerance {
				s.Mismatches = append(s.Mismatches, Mismatch{
					Step: want.Step, Field: "score",
					Want: fmt.Sprintf("%.2f", *want.SustainabilityScore),
					Got:  fmt.Sprintf("%.2f", got.Metrics.SustainabilityScore),
				})
			}
		}
	}
	return s
}

// #endregion summarize
