package timeline

import (
	"testing"

	"github.com/threadweaver/threadweaver/go-engine/internal/metrics"
)

func nodeAt(step int, cardID string) Node {
	return Node{
		ID:             cardID + "-n",
		Step:           step,
		CardID:         cardID,
		ChosenOptionID: "opt",
		MetricsAfter:   metrics.Default(),
	}
}

func TestCurrentStepIsMaxNotCount(t *testing.T) {
	// A branched thread holds steps {0,1,2,6,7,8}: six nodes, but the
	// position is 8.
	th := Thread{Nodes: []Node{
		nodeAt(0, InitialCardID),
		nodeAt(1, "a"),
		nodeAt(2, "b"),
		nodeAt(6, "c"),
		nodeAt(7, "d"),
		nodeAt(8, "e"),
	}}
	if got := th.CurrentStep(); got != 8 {
		t.Fatalf("CurrentStep = %d, want 8", got)
	}
	if th.Complete() {
		t.Fatal("thread at step 8 must not be complete")
	}
}

func TestCurrentStepEmptyThread(t *testing.T) {
	var th Thread
	if got := th.CurrentStep(); got != 0 {
		t.Fatalf("empty thread CurrentStep = %d, want 0", got)
	}
}

func TestComplete(t *testing.T) {
	th := Thread{Nodes: []Node{nodeAt(MaxStep, "x")}}
	if !th.Complete() {
		t.Fatal("thread at MaxStep must be complete")
	}
}

func TestLatestMetrics(t *testing.T) {
	want := metrics.Recompute(metrics.State{Waste: 30, Emissions: 30, Cost: 30, Efficiency: 70, CommunityTrust: 70})
	n := nodeAt(3, "a")
	n.MetricsAfter = want
	th := Thread{Nodes: []Node{nodeAt(0, InitialCardID), nodeAt(1, "b"), n}}

	got := th.LatestMetrics()
	if got != want {
		t.Fatalf("LatestMetrics = %+v, want %+v", got, want)
	}

	var empty Thread
	if empty.LatestMetrics() != metrics.Default() {
		t.Fatal("empty thread must report default metrics")
	}
}

func TestUsedCardIDsSkipsSentinel(t *testing.T) {
	th := Thread{Nodes: []Node{
		nodeAt(0, InitialCardID),
		nodeAt(1, "compost-program"),
		nodeAt(2, "tray-free-dining"),
	}}
	ids := th.UsedCardIDs()
	if len(ids) != 2 || ids[0] != "compost-program" || ids[1] != "tray-free-dining" {
		t.Fatalf("UsedCardIDs = %v", ids)
	}
}

func TestHasStepAndNodeAt(t *testing.T) {
	th := Thread{Nodes: []Node{nodeAt(0, InitialCardID), nodeAt(3, "a")}}
	if !th.HasStep(3) || th.HasStep(2) {
		t.Fatal("HasStep wrong")
	}
	if n, ok := th.NodeAt(3); !ok || n.CardID != "a" {
		t.Fatalf("NodeAt(3) = %+v, %v", n, ok)
	}
	if _, ok := th.NodeAt(5); ok {
		t.Fatal("NodeAt(5) should miss")
	}
}

func TestSessionThreadLookup(t *testing.T) {
	sess := Session{Threads: []Thread{{ID: "t1"}, {ID: "t2"}}}
	if th := sess.Thread("t2"); th == nil || th.ID != "t2" {
		t.Fatal("thread lookup failed")
	}
	if sess.Thread("nope") != nil {
		t.Fatal("expected nil for unknown thread")
	}

	// The returned pointer aliases session state.
	sess.Thread("t1").Label = "renamed"
	if sess.Threads[0].Label != "renamed" {
		t.Fatal("Thread must return a pointer into the session")
	}
}
