package timeline

import (
	"testing"
)

func intPtr(v int) *int { return &v }

func TestCreateSessionBaseline(t *testing.T) {
	st := NewStore("campus-dining")
	sess := st.Session()

	if len(sess.Threads) != 1 {
		t.Fatalf("expected 1 thread, got %d", len(sess.Threads))
	}
	baseline := sess.Threads[0]
	if baseline.Label != "Baseline" {
		t.Fatalf("label = %q", baseline.Label)
	}
	if sess.ActiveThreadID != baseline.ID {
		t.Fatal("baseline must be active")
	}
	if len(baseline.Nodes) != 1 {
		t.Fatalf("expected 1 node, got %d", len(baseline.Nodes))
	}
	root := baseline.Nodes[0]
	if root.Step != 0 || root.CardID != InitialCardID || root.ChosenOptionID != InitialOptionID {
		t.Fatalf("bad root node: %+v", root)
	}
	if sess.CurrentStep != 0 {
		t.Fatalf("cursor = %d, want 0", sess.CurrentStep)
	}
}

func TestAddNodeAdvancesCursor(t *testing.T) {
	st := NewStore("s")
	threadID := st.Session().ActiveThreadID

	for step := 1; step <= 3; step++ {
		added, err := st.AddNode(threadID, nodeAt(step, "card"))
		if err != nil || !added {
			t.Fatalf("add step %d: added=%v err=%v", step, added, err)
		}
	}
	if st.Session().CurrentStep != 3 {
		t.Fatalf("cursor = %d, want 3", st.Session().CurrentStep)
	}
}

func TestAddNodeDuplicateStepIgnored(t *testing.T) {
	st := NewStore("s")
	threadID := st.Session().ActiveThreadID

	if _, err := st.AddNode(threadID, nodeAt(1, "first")); err != nil {
		t.Fatalf("add: %v", err)
	}
	added, err := st.AddNode(threadID, nodeAt(1, "second"))
	if err != nil {
		t.Fatalf("duplicate step must not error: %v", err)
	}
	if added {
		t.Fatal("duplicate step must be dropped")
	}

	th := st.ActiveThread()
	if n, _ := th.NodeAt(1); n.CardID != "first" {
		t.Fatalf("original node replaced: %+v", n)
	}
	if len(th.Nodes) != 2 {
		t.Fatalf("node count = %d, want 2", len(th.Nodes))
	}
}

func TestAddNodeUnknownThread(t *testing.T) {
	st := NewStore("s")
	if _, err := st.AddNode("missing", nodeAt(1, "a")); err == nil {
		t.Fatal("expected error for unknown thread")
	}
}

func TestAddNodeKeepsStepOrder(t *testing.T) {
	st := NewStore("s")
	threadID := st.Session().ActiveThreadID

	st.AddNode(threadID, nodeAt(3, "c"))
	st.AddNode(threadID, nodeAt(1, "a"))
	st.AddNode(threadID, nodeAt(2, "b"))

	th := st.ActiveThread()
	for i := 1; i < len(th.Nodes); i++ {
		if th.Nodes[i-1].Step >= th.Nodes[i].Step {
			t.Fatalf("nodes out of order at %d: %+v", i, th.Nodes)
		}
	}
}

func TestCreateThreadBranch(t *testing.T) {
	st := NewStore("s")
	parentID := st.Session().ActiveThreadID
	for step := 1; step <= 5; step++ {
		st.AddNode(parentID, nodeAt(step, "card"))
	}

	branch, err := st.CreateThread("What if", "#f59e0b", parentID, intPtr(3))
	if err != nil {
		t.Fatalf("branch: %v", err)
	}

	// Prefix copy: steps 0..3 inclusive.
	if len(branch.Nodes) != 4 {
		t.Fatalf("branch nodes = %d, want 4", len(branch.Nodes))
	}
	if branch.CurrentStep() != 3 {
		t.Fatalf("branch step = %d, want 3", branch.CurrentStep())
	}
	if branch.ParentThreadID != parentID || branch.BranchPoint == nil || *branch.BranchPoint != 3 {
		t.Fatalf("branch lineage wrong: %+v", branch)
	}

	// Copied nodes get fresh ids so narrative backfill never aliases.
	parent := st.Session().Thread(parentID)
	for i, n := range branch.Nodes {
		if n.ID == parent.Nodes[i].ID {
			t.Fatalf("node %d shares id with parent", i)
		}
		if n.Step != parent.Nodes[i].Step || n.CardID != parent.Nodes[i].CardID {
			t.Fatalf("node %d content diverged", i)
		}
	}

	// The branch becomes active and the cursor follows.
	if st.Session().ActiveThreadID != branch.ID {
		t.Fatal("branch must become active")
	}
	if st.Session().CurrentStep != 3 {
		t.Fatalf("cursor = %d, want 3", st.Session().CurrentStep)
	}
}

func TestCreateThreadBranchErrors(t *testing.T) {
	st := NewStore("s")
	if _, err := st.CreateThread("x", "#fff", "missing", intPtr(1)); err == nil {
		t.Fatal("expected error for unknown parent")
	}
	if _, err := st.CreateThread("x", "#fff", st.Session().ActiveThreadID, nil); err == nil {
		t.Fatal("expected error for missing branch point")
	}
}

func TestSetActiveThread(t *testing.T) {
	st := NewStore("s")
	first := st.Session().ActiveThreadID
	for step := 1; step <= 4; step++ {
		st.AddNode(first, nodeAt(step, "card"))
	}
	branch, _ := st.CreateThread("b", "#fff", first, intPtr(2))

	if err := st.SetActiveThread(first); err != nil {
		t.Fatalf("set active: %v", err)
	}
	if st.Session().CurrentStep != 4 {
		t.Fatalf("cursor = %d, want 4", st.Session().CurrentStep)
	}

	if err := st.SetActiveThread(branch.ID); err != nil {
		t.Fatalf("set active: %v", err)
	}
	if st.Session().CurrentStep != 2 {
		t.Fatalf("cursor = %d, want 2", st.Session().CurrentStep)
	}

	if err := st.SetActiveThread("missing"); err == nil {
		t.Fatal("expected error for unknown thread")
	}
}

func TestDeleteThreadReassignsActive(t *testing.T) {
	st := NewStore("s")
	first := st.Session().ActiveThreadID
	st.AddNode(first, nodeAt(1, "card"))
	branch, _ := st.CreateThread("b", "#fff", first, intPtr(1))

	// branch is active; deleting it hands control to the first remaining.
	if err := st.DeleteThread(branch.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if st.Session().ActiveThreadID != first {
		t.Fatal("active thread not reassigned")
	}
	if st.Session().CurrentStep != 1 {
		t.Fatalf("cursor = %d, want 1", st.Session().CurrentStep)
	}

	// Deleting the last thread empties the session.
	if err := st.DeleteThread(first); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if st.Session().ActiveThreadID != "" || st.Session().CurrentStep != 0 {
		t.Fatalf("session not emptied: %+v", st.Session())
	}
}

func TestDeleteInactiveThreadKeepsActive(t *testing.T) {
	st := NewStore("s")
	first := st.Session().ActiveThreadID
	st.AddNode(first, nodeAt(1, "card"))
	branch, _ := st.CreateThread("b", "#fff", first, intPtr(1))

	if err := st.DeleteThread(first); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if st.Session().ActiveThreadID != branch.ID {
		t.Fatal("active thread must not change when deleting another")
	}
}

func TestJumpAndRewind(t *testing.T) {
	st := NewStore("s")

	if got := st.JumpToStep(7); got != 7 {
		t.Fatalf("jump = %d, want 7", got)
	}
	if got := st.JumpToStep(-3); got != 0 {
		t.Fatalf("jump clamped low = %d, want 0", got)
	}
	if got := st.JumpToStep(99); got != MaxStep {
		t.Fatalf("jump clamped high = %d, want %d", got, MaxStep)
	}

	step, decisionAvailable := st.RewindToStep(4)
	if step != 4 || !decisionAvailable {
		t.Fatalf("rewind = (%d, %v)", step, decisionAvailable)
	}
}

func TestUpdateNodeNarrative(t *testing.T) {
	st := NewStore("s")
	threadID := st.Session().ActiveThreadID
	n := nodeAt(1, "card")
	st.AddNode(threadID, n)

	if err := st.UpdateNodeNarrative(threadID, n.ID, "the story so far"); err != nil {
		t.Fatalf("update narrative: %v", err)
	}
	got, _ := st.ActiveThread().NodeAt(1)
	if got.Narrative != "the story so far" {
		t.Fatalf("narrative = %q", got.Narrative)
	}

	if err := st.UpdateNodeNarrative(threadID, "missing", "x"); err == nil {
		t.Fatal("expected error for unknown node")
	}
}
