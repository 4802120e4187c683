package timeline

// #region imports
import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/threadweaver/threadweaver/go-engine/internal/metrics"
)

// #endregion

// #region store-struct

// Store is the in-memory state machine over one Session. A store is
// owned by exactly one session context at a time; concurrent multi-
// session use requires one store per session.
type Store struct {
	session Session
}

// NewStore creates a store with a fresh session for the scenario.
func NewStore(scenario string) *Store {
	st := &Store{}
	st.CreateSession(scenario)
	return st
}

// NewStoreWith wraps an existing session, e.g. one loaded from disk.
func NewStoreWith(sess Session) *Store {
	return &Store{session: sess}
}

// Session returns the current session aggregate.
func (st *Store) Session() *Session {
	return &st.session
}

// ActiveThread returns the active thread, or nil when none exists.
func (st *Store) ActiveThread() *Thread {
	return st.session.Thread(st.session.ActiveThreadID)
}

// #endregion store-struct

// #region create-session

// CreateSession resets the store to a single Baseline thread holding a
// step-0 node with default metrics, and makes it active.
func (st *Store) CreateSession(scenario string) *Session {
	now := time.Now().UTC()
	baseline := Thread{
		ID:        uuid.New().String(),
		Label:     "Baseline",
		Color:     "#3b82f6",
		CreatedAt: now,
		Nodes: []Node{{
			ID:             uuid.New().String(),
			Step:           0,
			Timestamp:      now,
			CardID:         InitialCardID,
			ChosenOptionID: InitialOptionID,
			MetricsAfter:   metrics.Default(),
			Explanation:    "Starting position",
		}},
	}
	st.session = Session{
		ID:             uuid.New().String(),
		Scenario:       scenario,
		Threads:        []Thread{baseline},
		ActiveThreadID: baseline.ID,
		CurrentStep:    0,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return &st.session
}

// #endregion create-session

// #region create-thread

// CreateThread adds a thread and makes it active. With a parent and
// branch point, the new thread starts as a prefix copy of the parent's
// nodes with step <= branchPoint; each copied node gets a fresh id so
// later narrative backfill never aliases the parent.
func (st *Store) CreateThread(label, color string, parentID string, branchPoint *int) (*Thread, error) {
	now := time.Now().UTC()
	t := Thread{
		ID:        uuid.New().String(),
		Label:     label,
		Color:     color,
		CreatedAt: now,
	}

	if parentID != "" {
		parent := st.session.Thread(parentID)
		if parent == nil {
			return nil, fmt.Errorf("parent thread %q not found", parentID)
		}
		if branchPoint == nil {
			return nil, fmt.Errorf("branch point required when branching from %q", parentID)
		}
		t.ParentThreadID = parentID
		bp := *branchPoint
		t.BranchPoint = &bp
		for _, n := range parent.Nodes {
			if n.Step <= bp {
				copied := n
				copied.ID = uuid.New().String()
				t.Nodes = append(t.Nodes, copied)
			}
		}
	}

	st.session.Threads = append(st.session.Threads, t)
	added := &st.session.Threads[len(st.session.Threads)-1]
	st.session.ActiveThreadID = added.ID
	st.session.CurrentStep = added.CurrentStep()
	st.session.UpdatedAt = now
	return added, nil
}

// #endregion create-thread

// #region add-node

// AddNode appends a node to a thread and advances the session cursor.
// A node at an already-occupied step is dropped with a warning: double
// submissions from the UI must not corrupt the step-uniqueness
// invariant. Returns whether the node was added.
func (st *Store) AddNode(threadID string, n Node) (bool, error) {
	t := st.session.Thread(threadID)
	if t == nil {
		return false, fmt.Errorf("thread %q not found", threadID)
	}
	if t.HasStep(n.Step) {
		log.Printf("[TIMELINE] duplicate step %d on thread %s, ignoring node", n.Step, threadID)
		return false, nil
	}
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now().UTC()
	}

	// Keep nodes ordered by step.
	pos := len(t.Nodes)
	for i, existing := range t.Nodes {
		if existing.Step > n.Step {
			pos = i
			break
		}
	}
	t.Nodes = append(t.Nodes, Node{})
	copy(t.Nodes[pos+1:], t.Nodes[pos:])
	t.Nodes[pos] = n

	if threadID == st.session.ActiveThreadID {
		st.session.CurrentStep = t.CurrentStep()
	}
	st.session.UpdatedAt = time.Now().UTC()
	return true, nil
}

// #endregion add-node

// #region set-active

// SetActiveThread switches the active thread and recomputes the step
// cursor from that thread's nodes.
func (st *Store) SetActiveThread(threadID string) error {
	t := st.session.Thread(threadID)
	if t == nil {
		return fmt.Errorf("thread %q not found", threadID)
	}
	st.session.ActiveThreadID = threadID
	st.session.CurrentStep = t.CurrentStep()
	st.session.UpdatedAt = time.Now().UTC()
	return nil
}

// #endregion set-active

// #region delete-thread

// DeleteThread removes a thread. Deleting the active thread atomically
// reassigns the first remaining thread (if any) and recomputes the
// cursor from it.
func (st *Store) DeleteThread(threadID string) error {
	idx := -1
	for i := range st.session.Threads {
		if st.session.Threads[i].ID == threadID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("thread %q not found", threadID)
	}

	wasActive := st.session.ActiveThreadID == threadID
	st.session.Threads = append(st.session.Threads[:idx], st.session.Threads[idx+1:]...)

	if wasActive {
		if len(st.session.Threads) > 0 {
			next := &st.session.Threads[0]
			st.session.ActiveThreadID = next.ID
			st.session.CurrentStep = next.CurrentStep()
		} else {
			st.session.ActiveThreadID = ""
			st.session.CurrentStep = 0
		}
	}
	st.session.UpdatedAt = time.Now().UTC()
	return nil
}

// #endregion delete-thread

// #region cursor-moves

// JumpToStep moves the cursor, clamped to [0,MaxStep].
func (st *Store) JumpToStep(step int) int {
	st.session.CurrentStep = clampStep(step)
	st.session.UpdatedAt = time.Now().UTC()
	return st.session.CurrentStep
}

// RewindToStep moves the cursor like JumpToStep but also reports that a
// decision is available at the rewound position — the one place where
// past intent differs from a plain cursor move.
func (st *Store) RewindToStep(step int) (int, bool) {
	cur := st.JumpToStep(step)
	return cur, true
}

func clampStep(step int) int {
	if step < 0 {
		return 0
	}
	if step > MaxStep {
		return MaxStep
	}
	return step
}

// #endregion cursor-moves

// #region update-narrative

// UpdateNodeNarrative backfills the narrative string on an existing
// node. This is the only mutation a node supports after creation.
func (st *Store) UpdateNodeNarrative(threadID, nodeID, narrative string) error {
	t := st.session.Thread(threadID)
	if t == nil {
		return fmt.Errorf("thread %q not found", threadID)
	}
	for i := range t.Nodes {
		if t.Nodes[i].ID == nodeID {
			t.Nodes[i].Narrative = narrative
			st.session.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return fmt.Errorf("node %q not found in thread %q", nodeID, threadID)
}

// #endregion update-narrative
