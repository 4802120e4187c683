package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/threadweaver/threadweaver/go-engine/internal/metrics"
	"github.com/threadweaver/threadweaver/go-engine/internal/timeline"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func buildSession(t *testing.T) *timeline.Session {
	t.Helper()
	tl := timeline.NewStore("campus-dining")
	threadID := tl.Session().ActiveThreadID

	for step := 1; step <= 3; step++ {
		m := metrics.Default()
		m.Waste -= float64(step)
		added, err := tl.AddNode(threadID, timeline.Node{
			Step:           step,
			CardID:         "compost-program",
			ChosenOptionID: "full",
			MetricsAfter:   metrics.Recompute(m),
			Explanation:    "composting rollout",
			Narrative:      "The kitchen hums along.",
		})
		if err != nil || !added {
			t.Fatalf("add node: added=%v err=%v", added, err)
		}
	}

	bp := 2
	if _, err := tl.CreateThread("What if", "#f59e0b", threadID, &bp); err != nil {
		t.Fatalf("branch: %v", err)
	}
	return tl.Session()
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := openTestStore(t)
	sess := buildSession(t)

	if err := s.SaveSession(sess); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := s.LoadSession(sess.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if loaded.ID != sess.ID || loaded.Scenario != sess.Scenario {
		t.Fatalf("identity mismatch: %+v", loaded)
	}
	if loaded.ActiveThreadID != sess.ActiveThreadID {
		t.Fatalf("active thread %q, want %q", loaded.ActiveThreadID, sess.ActiveThreadID)
	}
	if loaded.CurrentStep != sess.CurrentStep {
		t.Fatalf("cursor %d, want %d", loaded.CurrentStep, sess.CurrentStep)
	}
	if len(loaded.Threads) != len(sess.Threads) {
		t.Fatalf("threads %d, want %d", len(loaded.Threads), len(sess.Threads))
	}

	// Thread order, lineage, and node content survive the round trip.
	for i, want := range sess.Threads {
		got := loaded.Threads[i]
		if got.ID != want.ID || got.Label != want.Label || got.Color != want.Color {
			t.Fatalf("thread %d mismatch: %+v", i, got)
		}
		if got.ParentThreadID != want.ParentThreadID {
			t.Fatalf("thread %d parent %q, want %q", i, got.ParentThreadID, want.ParentThreadID)
		}
		if (got.BranchPoint == nil) != (want.BranchPoint == nil) {
			t.Fatalf("thread %d branch point presence mismatch", i)
		}
		if got.BranchPoint != nil && *got.BranchPoint != *want.BranchPoint {
			t.Fatalf("thread %d branch point %d, want %d", i, *got.BranchPoint, *want.BranchPoint)
		}
		if len(got.Nodes) != len(want.Nodes) {
			t.Fatalf("thread %d nodes %d, want %d", i, len(got.Nodes), len(want.Nodes))
		}
		for j, wn := range want.Nodes {
			gn := got.Nodes[j]
			if gn.ID != wn.ID || gn.Step != wn.Step || gn.CardID != wn.CardID || gn.ChosenOptionID != wn.ChosenOptionID {
				t.Fatalf("thread %d node %d mismatch: %+v", i, j, gn)
			}
			if gn.MetricsAfter != wn.MetricsAfter {
				t.Fatalf("thread %d node %d metrics mismatch", i, j)
			}
			if gn.Explanation != wn.Explanation || gn.Narrative != wn.Narrative {
				t.Fatalf("thread %d node %d text mismatch", i, j)
			}
		}
	}
}

func TestSaveSessionIdempotent(t *testing.T) {
	s := openTestStore(t)
	sess := buildSession(t)

	if err := s.SaveSession(sess); err != nil {
		t.Fatalf("save: %v", err)
	}
	// Saving again must replace, not duplicate.
	sess.Scenario = "renamed"
	if err := s.SaveSession(sess); err != nil {
		t.Fatalf("second save: %v", err)
	}

	loaded, err := s.LoadSession(sess.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Scenario != "renamed" {
		t.Fatalf("scenario = %q, want renamed", loaded.Scenario)
	}
	if len(loaded.Threads) != len(sess.Threads) {
		t.Fatalf("threads duplicated: %d", len(loaded.Threads))
	}
}

func TestLoadSessionMissing(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.LoadSession("nope"); err == nil {
		t.Fatal("expected error for missing session")
	}
}

func TestListSessions(t *testing.T) {
	s := openTestStore(t)

	first := buildSession(t)
	if err := s.SaveSession(first); err != nil {
		t.Fatalf("save: %v", err)
	}
	second := buildSession(t)
	second.UpdatedAt = second.UpdatedAt.Add(time.Hour)
	if err := s.SaveSession(second); err != nil {
		t.Fatalf("save: %v", err)
	}

	sums, err := s.ListSessions(10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sums) != 2 {
		t.Fatalf("sessions = %d, want 2", len(sums))
	}
	// Most recently updated first.
	if sums[0].ID != second.ID {
		t.Fatalf("order wrong: %s first", sums[0].ID)
	}
	if sums[0].ThreadCount != 2 {
		t.Fatalf("thread count = %d, want 2", sums[0].ThreadCount)
	}
}

func TestDeleteSession(t *testing.T) {
	s := openTestStore(t)
	sess := buildSession(t)
	if err := s.SaveSession(sess); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := s.DeleteSession(sess.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.LoadSession(sess.ID); err == nil {
		t.Fatal("session still loadable after delete")
	}

	// Dependent rows are gone too.
	var count int
	if err := s.DB().QueryRow(`SELECT COUNT(*) FROM nodes`).Scan(&count); err != nil {
		t.Fatalf("count nodes: %v", err)
	}
	if count != 0 {
		t.Fatalf("orphaned nodes: %d", count)
	}
}

func TestLogDecision(t *testing.T) {
	s := openTestStore(t)

	entry := DecisionEntry{
		SessionID:  "sess-1",
		ThreadID:   "thread-1",
		Step:       4,
		CardID:     "compost-program",
		OptionID:   "full",
		FinalScore: 76.65,
		Rationale:  "High waste urgency",
	}
	if err := s.LogDecision(entry); err != nil {
		t.Fatalf("log: %v", err)
	}

	var (
		step      int
		cardID    string
		score     float64
		rationale string
	)
	err := s.DB().QueryRow(
		`SELECT step, card_id, final_score, rationale FROM decision_log WHERE session_id = ?`,
		"sess-1",
	).Scan(&step, &cardID, &score, &rationale)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if step != 4 || cardID != "compost-program" || score != 76.65 || rationale != "High waste urgency" {
		t.Fatalf("row mismatch: step=%d card=%s score=%f rationale=%q", step, cardID, score, rationale)
	}
}
