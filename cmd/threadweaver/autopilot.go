package main

// #region imports
import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/threadweaver/threadweaver/go-engine/internal/config"
	"github.com/threadweaver/threadweaver/go-engine/internal/metrics"
	"github.com/threadweaver/threadweaver/go-engine/internal/service"
	"github.com/threadweaver/threadweaver/go-engine/internal/timeline"
)

// #endregion

// #region autopilot-cmd

var (
	autopilotSteps int
	autopilotSeed  int64
	autopilotSave  bool
)

var autopilotCmd = &cobra.Command{
	Use:   "autopilot",
	Short: "Let the objective function play a run",
	Long: `autopilot simulates a full run from the default starting state,
picking the best option at every step by the configured objective
weights. Use --seed for a reproducible run.`,
	RunE: runAutopilot,
}

func init() {
	autopilotCmd.Flags().IntVar(&autopilotSteps, "steps", timeline.MaxStep, "Number of steps to simulate")
	autopilotCmd.Flags().Int64Var(&autopilotSeed, "seed", -1, "RNG seed (-1 = random)")
	autopilotCmd.Flags().BoolVar(&autopilotSave, "save", false, "Persist the run as a session")
	rootCmd.AddCommand(autopilotCmd)
}

// #endregion autopilot-cmd

// #region autopilot-run

func runAutopilot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	svc := buildService(cfg, cat)

	req := service.RunAutopilotRequest{
		InitialMetrics: metrics.Default(),
		Steps:          autopilotSteps,
		StartStep:      1,
	}
	if autopilotSeed >= 0 {
		seed := autopilotSeed
		req.Seed = &seed
	}

	resp, err := svc.RunAutopilot(req)
	if err != nil {
		return err
	}

	for _, n := range resp.Nodes {
		fmt.Printf("step %2d  %-22s %-22s score=%.1f\n", n.Step, n.CardID, n.ChosenOptionID, n.MetricsAfter.SustainabilityScore)
	}
	if len(resp.Nodes) < autopilotSteps {
		fmt.Printf("stopped early: deck exhausted after %d steps\n", len(resp.Nodes))
	}
	fmt.Println()
	printMetrics(resp.FinalMetrics)

	if autopilotSave {
		return saveAutopilotRun(cfg, resp.Nodes)
	}
	return nil
}

func saveAutopilotRun(cfg config.Config, nodes []timeline.Node) error {
	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	tl := timeline.NewStore("autopilot")
	sess := tl.Session()
	sess.AutopilotEnabled = true
	thread := tl.ActiveThread()
	for _, n := range nodes {
		if _, err := tl.AddNode(thread.ID, n); err != nil {
			return err
		}
	}
	if err := db.SaveSession(sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	fmt.Printf("Session saved: %s\n", sess.ID)
	return nil
}

// #endregion autopilot-run
