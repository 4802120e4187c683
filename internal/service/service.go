package service

// #region imports
import (
	"context"
	"fmt"

	"github.com/threadweaver/threadweaver/go-engine/internal/catalog"
	"github.com/threadweaver/threadweaver/go-engine/internal/metrics"
	"github.com/threadweaver/threadweaver/go-engine/internal/narrative"
	"github.com/threadweaver/threadweaver/go-engine/internal/scoring"
	"github.com/threadweaver/threadweaver/go-engine/internal/simulate"
	"github.com/threadweaver/threadweaver/go-engine/internal/timeline"
)

// #endregion

// #region request-response

// SelectDecisionRequest asks for the next decision card.
type SelectDecisionRequest struct {
	CurrentMetrics metrics.State `json:"currentMetrics"`
	UsedCardIDs    []string      `json:"usedCardIds"`
	Step           int           `json:"step"`
	Seed           *int64        `json:"seed,omitempty"`
}

// SelectDecisionResponse carries the chosen card with explainability.
type SelectDecisionResponse struct {
	Card           catalog.Card           `json:"card"`
	Rationale      string                 `json:"rationale"`
	ScoringDetails scoring.ScoringDetails `json:"scoringDetails"`
}

// ApplyDecisionRequest applies one option of one card.
type ApplyDecisionRequest struct {
	CurrentMetrics metrics.State `json:"currentMetrics"`
	CardID         string        `json:"cardId"`
	OptionID       string        `json:"optionId"`
}

// ApplyDecisionResponse returns the post-decision state.
type ApplyDecisionResponse struct {
	NewMetrics    metrics.State `json:"newMetrics"`
	Explanation   string        `json:"explanation"`
	BusinessState string        `json:"businessState"`
}

// RunAutopilotRequest simulates a multi-step run.
type RunAutopilotRequest struct {
	InitialMetrics metrics.State `json:"initialMetrics"`
	Steps          int           `json:"steps"`
	StartStep      int           `json:"startStep"`
	UsedCardIDs    []string      `json:"usedCardIds"`
	Seed           *int64        `json:"seed,omitempty"`
}

// RunAutopilotResponse is the full simulated timeline segment.
type RunAutopilotResponse struct {
	Nodes        []timeline.Node `json:"nodes"`
	FinalMetrics metrics.State   `json:"finalMetrics"`
}

// #endregion request-response

// #region service

// Service is the stateless request/response surface over the catalog,
// scoring engine, decision application, and autopilot planner. One
// scoring rng is constructed per call, so concurrent sessions can share
// a Service safely.
type Service struct {
	cat     *catalog.Catalog
	planner *simulate.Planner
	objCfg  simulate.ObjectiveConfig
	gen     narrative.Generator
}

// New wires a service. gen may be nil, in which case template text is
// used for the business-state narrative.
func New(cat *catalog.Catalog, objCfg simulate.ObjectiveConfig, gen narrative.Generator) *Service {
	if gen == nil {
		gen = narrative.NewTemplateGenerator()
	}
	return &Service{
		cat:     cat,
		planner: simulate.NewPlanner(cat, objCfg),
		objCfg:  objCfg,
		gen:     gen,
	}
}

// #endregion service

// #region select-decision

// SelectDecision validates the request and asks the scoring engine for
// the next card. scoring.ErrNoEligibleCards passes through as a
// terminal empty outcome.
func (s *Service) SelectDecision(req SelectDecisionRequest) (SelectDecisionResponse, error) {
	if err := req.CurrentMetrics.Validate(); err != nil {
		return SelectDecisionResponse{}, fmt.Errorf("invalid metrics: %w", err)
	}
	if req.Step < 0 || req.Step > timeline.MaxStep {
		return SelectDecisionResponse{}, fmt.Errorf("step %d out of range [0,%d]", req.Step, timeline.MaxStep)
	}

	sel, err := scoring.SelectCard(s.cat, req.CurrentMetrics, req.UsedCardIDs, req.Seed)
	if err != nil {
		return SelectDecisionResponse{}, err
	}
	return SelectDecisionResponse{
		Card:           sel.Card,
		Rationale:      sel.Rationale,
		ScoringDetails: sel.Details,
	}, nil
}

// #endregion select-decision

// #region apply-decision

// ApplyDecision applies the chosen option and attaches the business-
// state narrative. Narrative failures degrade inside the generator and
// never fail the call.
func (s *Service) ApplyDecision(ctx context.Context, req ApplyDecisionRequest) (ApplyDecisionResponse, error) {
	if err := req.CurrentMetrics.Validate(); err != nil {
		return ApplyDecisionResponse{}, fmt.Errorf("invalid metrics: %w", err)
	}

	newMetrics, explanation, err := simulate.ApplyDecision(s.cat, req.CurrentMetrics, req.CardID, req.OptionID)
	if err != nil {
		return ApplyDecisionResponse{}, err
	}

	card, _ := s.cat.Get(req.CardID)
	opt, _ := card.Option(req.OptionID)
	businessState, err := s.gen.BusinessState(ctx, card, opt, newMetrics)
	if err != nil {
		// Generators degrade internally; a hard error still must not
		// fail the decision.
		businessState = explanation
	}

	return ApplyDecisionResponse{
		NewMetrics:    newMetrics,
		Explanation:   explanation,
		BusinessState: businessState,
	}, nil
}

// #endregion apply-decision

// #region run-autopilot

// RunAutopilot simulates up to Steps decisions. A short node list means
// the planner dead-ended; callers decide whether that is acceptable.
func (s *Service) RunAutopilot(req RunAutopilotRequest) (RunAutopilotResponse, error) {
	if err := req.InitialMetrics.Validate(); err != nil {
		return RunAutopilotResponse{}, fmt.Errorf("invalid metrics: %w", err)
	}
	if req.Steps < 1 || req.Steps > timeline.MaxStep {
		return RunAutopilotResponse{}, fmt.Errorf("steps %d out of range [1,%d]", req.Steps, timeline.MaxStep)
	}
	startStep := req.StartStep
	if startStep == 0 {
		startStep = 1
	}
	if startStep < 0 || startStep > timeline.MaxStep {
		return RunAutopilotResponse{}, fmt.Errorf("startStep %d out of range [0,%d]", req.StartStep, timeline.MaxStep)
	}

	nodes, final, err := s.planner.Run(req.InitialMetrics, req.Steps, startStep, req.UsedCardIDs, req.Seed)
	if err != nil {
		return RunAutopilotResponse{}, err
	}
	return RunAutopilotResponse{Nodes: nodes, FinalMetrics: final}, nil
}

// #endregion run-autopilot

// #region get-card

// GetCardByID is the read-only catalog lookup, wrapping
// catalog.ErrNotFound for unknown ids.
func (s *Service) GetCardByID(id string) (catalog.Card, error) {
	card, ok := s.cat.Get(id)
	if !ok {
		return catalog.Card{}, fmt.Errorf("card %q: %w", id, catalog.ErrNotFound)
	}
	return card, nil
}

// Catalog exposes the underlying catalog for tooling.
func (s *Service) Catalog() *catalog.Catalog {
	return s.cat
}

// #endregion get-card
