package timeline

// #region imports
import (
	"time"

	"github.com/threadweaver/threadweaver/go-engine/internal/metrics"
)

// #endregion

// #region constants

const (
	// MaxStep is the last playable step of any thread.
	MaxStep = 10

	// InitialCardID and InitialOptionID are the sentinel ids carried by
	// every thread's step-0 node.
	InitialCardID   = "initial"
	InitialOptionID = "initial"
)

// #endregion constants

// #region node

// Node records one decision point within a thread. Nodes are created
// once and never mutated, except for narrative backfill via the store's
// UpdateNodeNarrative; they are only removed with their whole thread.
type Node struct {
	ID             string        `json:"id"`
	Step           int           `json:"step"`
	Timestamp      time.Time     `json:"timestamp"`
	CardID         string        `json:"cardId"`
	ChosenOptionID string        `json:"chosenOptionId"`
	MetricsAfter   metrics.State `json:"metricsAfter"`
	Explanation    string        `json:"explanation"`
	Narrative      string        `json:"narrative,omitempty"`
}

// #endregion node

// #region thread

// Thread is one branch of the decision timeline. Nodes are kept ordered
// by step; steps are unique within a thread but not necessarily
// contiguous once branches exist.
type Thread struct {
	ID             string    `json:"id"`
	Label          string    `json:"label"`
	Color          string    `json:"color"`
	Nodes          []Node    `json:"nodes"`
	CreatedAt      time.Time `json:"createdAt"`
	ParentThreadID string    `json:"parentThreadId,omitempty"`
	BranchPoint    *int      `json:"branchPoint,omitempty"`
}

// CurrentStep is the thread's temporal position: the maximum step over
// its nodes, 0 when empty. This is the only correct derivation — node
// count is wrong for branched threads with non-contiguous steps.
func (t *Thread) CurrentStep() int {
	maxStep := 0
	for _, n := range t.Nodes {
		if n.Step > maxStep {
			maxStep = n.Step
		}
	}
	return maxStep
}

// HasStep reports whether a node already occupies the given step.
func (t *Thread) HasStep(step int) bool {
	for _, n := range t.Nodes {
		if n.Step == step {
			return true
		}
	}
	return false
}

// NodeAt returns the node at the given step, if any.
func (t *Thread) NodeAt(step int) (Node, bool) {
	for _, n := range t.Nodes {
		if n.Step == step {
			return n, true
		}
	}
	return Node{}, false
}

// Complete reports whether the thread has reached the final step.
// Derived on demand so it can never go stale against the node list.
func (t *Thread) Complete() bool {
	return t.CurrentStep() >= MaxStep
}

// LatestMetrics returns the metrics snapshot at the thread's current
// step, or the default state for an empty thread.
func (t *Thread) LatestMetrics() metrics.State {
	if len(t.Nodes) == 0 {
		return metrics.Default()
	}
	n, _ := t.NodeAt(t.CurrentStep())
	return n.MetricsAfter
}

// UsedCardIDs lists the non-sentinel card ids consumed by this thread,
// in step order.
func (t *Thread) UsedCardIDs() []string {
	var ids []string
	for _, n := range t.Nodes {
		if n.CardID != InitialCardID {
			ids = append(ids, n.CardID)
		}
	}
	return ids
}

// #endregion thread

// #region session

// Session is the root aggregate: all threads of one simulation run plus
// the active-thread cursor state.
type Session struct {
	ID               string    `json:"id"`
	Scenario         string    `json:"scenario"`
	Threads          []Thread  `json:"threads"`
	ActiveThreadID   string    `json:"activeThreadId"`
	CurrentStep      int       `json:"currentStep"`
	AutopilotEnabled bool      `json:"autopilotEnabled"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Thread returns a pointer into the session's thread list by id.
func (s *Session) Thread(id string) *Thread {
	for i := range s.Threads {
		if s.Threads[i].ID == id {
			return &s.Threads[i]
		}
	}
	return nil
}

// #endregion session
