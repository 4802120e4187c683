package main

// #region imports
import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/threadweaver/threadweaver/go-engine/internal/metrics"
	"github.com/threadweaver/threadweaver/go-engine/internal/replay"
	"github.com/threadweaver/threadweaver/go-engine/internal/timeline"
)

// #endregion

// #region sessions-cmd

var sessionsLimit int

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List, show, and delete saved sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved sessions",
	RunE:  runSessionsList,
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show a session's threads and timeline",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsShow,
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a saved session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsDelete,
}

var exportOut string

var sessionsExportCmd = &cobra.Command{
	Use:   "export <session-id>",
	Short: "Export a session's active thread as a replay fixture",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsExport,
}

var (
	branchAt    int
	branchLabel string
	branchColor string
)

var sessionsBranchCmd = &cobra.Command{
	Use:   "branch <session-id>",
	Short: "Branch a new thread off the active thread",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsBranch,
}

func init() {
	sessionsListCmd.Flags().IntVar(&sessionsLimit, "limit", 20, "Max sessions to list")
	sessionsExportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default stdout)")
	sessionsBranchCmd.Flags().IntVar(&branchAt, "at", 0, "Branch point step")
	sessionsBranchCmd.Flags().StringVar(&branchLabel, "label", "What if", "Label for the new thread")
	sessionsBranchCmd.Flags().StringVar(&branchColor, "color", "#f59e0b", "Color for the new thread")
	sessionsCmd.AddCommand(sessionsListCmd, sessionsShowCmd, sessionsDeleteCmd, sessionsExportCmd, sessionsBranchCmd)
	rootCmd.AddCommand(sessionsCmd)
}

// #endregion sessions-cmd

// #region sessions-run

func runSessionsList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	sums, err := db.ListSessions(sessionsLimit)
	if err != nil {
		return err
	}
	if len(sums) == 0 {
		fmt.Println("no saved sessions")
		return nil
	}
	for _, s := range sums {
		fmt.Printf("%s  %-16s threads=%d step=%d  %s\n",
			s.ID, s.Scenario, s.ThreadCount, s.CurrentStep, s.UpdatedAt.Format(time.RFC3339))
	}
	return nil
}

func runSessionsShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	sess, err := db.LoadSession(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("session %s (%s), step %d\n", sess.ID, sess.Scenario, sess.CurrentStep)
	for _, t := range sess.Threads {
		marker := " "
		if t.ID == sess.ActiveThreadID {
			marker = "*"
		}
		fmt.Printf("\n%s thread %s %q", marker, t.ID, t.Label)
		if t.ParentThreadID != "" && t.BranchPoint != nil {
			fmt.Printf(" (branched from %s at step %d)", t.ParentThreadID, *t.BranchPoint)
		}
		fmt.Println()
		for _, n := range t.Nodes {
			fmt.Printf("    step %2d  %-22s %-22s score=%.1f\n",
				n.Step, n.CardID, n.ChosenOptionID, n.MetricsAfter.SustainabilityScore)
		}
	}
	return nil
}

func runSessionsDelete(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.DeleteSession(args[0]); err != nil {
		return err
	}
	fmt.Printf("deleted %s\n", args[0])
	return nil
}

// runSessionsExport turns the active thread's decisions into a pinned
// fixture so a recorded run can be re-verified after deck or engine
// changes.
func runSessionsExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	sess, err := db.LoadSession(args[0])
	if err != nil {
		return err
	}
	thread := sess.Thread(sess.ActiveThreadID)
	if thread == nil {
		return fmt.Errorf("session %s has no active thread", args[0])
	}

	f := replay.Fixture{
		Description:    fmt.Sprintf("session %s, thread %q", sess.ID, thread.Label),
		InitialMetrics: metricsAtStepZero(thread),
		StartStep:      1,
	}
	for _, n := range thread.Nodes {
		if n.Step == 0 {
			continue
		}
		f.Steps = append(f.Steps, replay.FixtureStep{
			Step: n.Step, CardID: n.CardID, OptionID: n.ChosenOptionID,
		})
		score := n.MetricsAfter.SustainabilityScore
		f.Expected = append(f.Expected, replay.ExpectedState{
			Step: n.Step, CardID: n.CardID, OptionID: n.ChosenOptionID,
			SustainabilityScore: &score,
		})
	}
	if len(f.Steps) == 0 {
		return fmt.Errorf("thread %q holds no decisions to export", thread.Label)
	}

	out := os.Stdout
	if exportOut != "" {
		file, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("create %s: %w", exportOut, err)
		}
		defer file.Close()
		out = file
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(f)
}

// runSessionsBranch loads a session, forks the active thread at the
// given step, and persists the result. The new thread becomes active.
func runSessionsBranch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	sess, err := db.LoadSession(args[0])
	if err != nil {
		return err
	}
	tl := timeline.NewStoreWith(sess)
	parent := tl.ActiveThread()
	if parent == nil {
		return fmt.Errorf("session %s has no active thread", args[0])
	}

	bp := branchAt
	branch, err := tl.CreateThread(branchLabel, branchColor, parent.ID, &bp)
	if err != nil {
		return err
	}
	if err := db.SaveSession(tl.Session()); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	fmt.Printf("branched thread %s %q at step %d\n", branch.ID, branch.Label, bp)
	return nil
}

func metricsAtStepZero(t *timeline.Thread) metrics.State {
	if n, ok := t.NodeAt(0); ok {
		return n.MetricsAfter
	}
	return metrics.Default()
}

// #endregion sessions-run
