package main

// #region imports
import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/threadweaver/threadweaver/go-engine/internal/replay"
)

// #endregion

// #region replay-cmd

var replayCmd = &cobra.Command{
	Use:   "replay <fixture.json>",
	Short: "Re-run a recorded fixture and verify outcomes",
	Long: `replay loads a fixture of recorded steps, re-runs them through the
engine, and compares cards, options, and scores against the fixture's
expectations. Exits non-zero on any divergence.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
}

// #endregion replay-cmd

// #region replay-run

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	f, err := replay.LoadFixture(args[0])
	if err != nil {
		return err
	}

	results, summary, err := replay.Replay(f, cat, cfg.Objective)
	if err != nil {
		return err
	}

	fmt.Printf("%-5s| %-24s| %-24s| %s\n", "Step", "Card", "Option", "Score")
	for _, r := range results {
		fmt.Printf("%-5d| %-24s| %-24s| %.1f\n", r.Step, r.CardID, r.OptionID, r.Metrics.SustainabilityScore)
	}

	fmt.Printf("\nSummary: %d steps, %d mismatches\n", summary.TotalSteps, len(summary.Mismatches))
	for _, m := range summary.Mismatches {
		fmt.Printf("  step %d %s: want %s, got %s\n", m.Step, m.Field, m.Want, m.Got)
	}
	if !summary.Passed() {
		os.Exit(1)
	}
	return nil
}

// #endregion replay-run
