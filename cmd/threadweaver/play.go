package main

// #region imports
import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/threadweaver/threadweaver/go-engine/internal/metrics"
	"github.com/threadweaver/threadweaver/go-engine/internal/scoring"
	"github.com/threadweaver/threadweaver/go-engine/internal/service"
	"github.com/threadweaver/threadweaver/go-engine/internal/store"
	"github.com/threadweaver/threadweaver/go-engine/internal/timeline"
)

// #endregion

// #region play-cmd

var playScenario string

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Interactive simulation session",
	Long: `play starts a new session and walks it step by step: the engine
offers a card, you pick an option, metrics update, repeat until step 10.
Type 'status' to see metrics, 'quit' to save and exit.`,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&playScenario, "scenario", "campus-dining", "Scenario label for the session")
	rootCmd.AddCommand(playCmd)
}

// #endregion play-cmd

// #region play-loop

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	svc := buildService(cfg, cat)
	tl := timeline.NewStore(playScenario)
	sess := tl.Session()

	fmt.Printf("Session %s started (%s). %d cards in deck.\n", sess.ID, playScenario, cat.Len())
	printMetrics(metrics.Default())

	scanner := bufio.NewScanner(os.Stdin)
	for {
		thread := tl.ActiveThread()
		if thread.Complete() {
			fmt.Println("\nRun complete.")
			printMetrics(thread.LatestMetrics())
			break
		}

		step := thread.CurrentStep() + 1
		sel, err := svc.SelectDecision(service.SelectDecisionRequest{
			CurrentMetrics: thread.LatestMetrics(),
			UsedCardIDs:    thread.UsedCardIDs(),
			Step:           step,
		})
		if err != nil {
			if errors.Is(err, scoring.ErrNoEligibleCards) {
				fmt.Println("\nNo decisions left to offer. Run ends here.")
				break
			}
			return err
		}

		fmt.Printf("\nStep %d/%d — %s\n%s\n", step, timeline.MaxStep, sel.Card.Title, sel.Card.Prompt)
		fmt.Printf("(%s)\n\n", sel.Rationale)
		for i, opt := range sel.Card.Options {
			fmt.Printf("  %d. %s — %s\n", i+1, opt.Label, opt.Description)
		}
		fmt.Print("\nchoice> ")

		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		switch input {
		case "":
			continue
		case "quit", "exit":
			return saveAndReport(db, sess)
		case "status":
			printMetrics(thread.LatestMetrics())
			continue
		}

		idx, err := strconv.Atoi(input)
		if err != nil || idx < 1 || idx > len(sel.Card.Options) {
			fmt.Printf("pick 1-%d, or 'status'/'quit'\n", len(sel.Card.Options))
			continue
		}
		opt := sel.Card.Options[idx-1]

		resp, err := svc.ApplyDecision(context.Background(), service.ApplyDecisionRequest{
			CurrentMetrics: thread.LatestMetrics(),
			CardID:         sel.Card.ID,
			OptionID:       opt.ID,
		})
		if err != nil {
			return err
		}

		if _, err := tl.AddNode(thread.ID, timeline.Node{
			Step:           step,
			CardID:         sel.Card.ID,
			ChosenOptionID: opt.ID,
			MetricsAfter:   resp.NewMetrics,
			Explanation:    resp.Explanation,
			Narrative:      resp.BusinessState,
		}); err != nil {
			return err
		}

		if err := db.LogDecision(store.DecisionEntry{
			SessionID:  sess.ID,
			ThreadID:   thread.ID,
			Step:       step,
			CardID:     sel.Card.ID,
			OptionID:   opt.ID,
			FinalScore: sel.ScoringDetails.FinalScore,
			Rationale:  sel.Rationale,
			CreatedAt:  time.Now().UTC(),
		}); err != nil {
			fmt.Fprintf(os.Stderr, "log decision: %v\n", err)
		}

		fmt.Printf("\n%s\n", resp.BusinessState)
		printMetrics(resp.NewMetrics)
	}

	return saveAndReport(db, sess)
}

func saveAndReport(db *store.Store, sess *timeline.Session) error {
	if err := db.SaveSession(sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	fmt.Printf("Session saved: %s\n", sess.ID)
	return nil
}

func printMetrics(m metrics.State) {
	fmt.Printf("  waste=%.0f emissions=%.0f cost=%.0f efficiency=%.0f trust=%.0f | score=%.1f\n",
		m.Waste, m.Emissions, m.Cost, m.Efficiency, m.CommunityTrust, m.SustainabilityScore)
}

// #endregion play-loop
