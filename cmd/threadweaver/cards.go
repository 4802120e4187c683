package main

// #region imports
import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// #endregion

// #region cards-cmd

var cardsJSON bool

var cardsCmd = &cobra.Command{
	Use:   "cards",
	Short: "Inspect and validate the decision deck",
}

var cardsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all cards in the deck",
	RunE:  runCardsList,
}

var cardsShowCmd = &cobra.Command{
	Use:   "show <card-id>",
	Short: "Show one card in full",
	Args:  cobra.ExactArgs(1),
	RunE:  runCardsShow,
}

var cardsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configured deck",
	RunE:  runCardsValidate,
}

func init() {
	cardsCmd.PersistentFlags().BoolVar(&cardsJSON, "json", false, "Output JSON")
	cardsCmd.AddCommand(cardsListCmd, cardsShowCmd, cardsValidateCmd)
	rootCmd.AddCommand(cardsCmd)
}

// #endregion cards-cmd

// #region cards-run

func runCardsList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	if cardsJSON {
		return json.NewEncoder(os.Stdout).Encode(cat.Cards())
	}
	for _, c := range cat.Cards() {
		tags := make([]string, len(c.Tags))
		for i, t := range c.Tags {
			tags[i] = string(t)
		}
		fmt.Printf("%-24s %-8s [%s] %s\n", c.ID, c.Severity, strings.Join(tags, ","), c.Title)
	}
	return nil
}

func runCardsShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	card, ok := cat.Get(args[0])
	if !ok {
		return fmt.Errorf("card %q not found", args[0])
	}

	if cardsJSON {
		return json.NewEncoder(os.Stdout).Encode(card)
	}
	fmt.Printf("%s (%s, %s)\n%s\n\n", card.Title, card.ID, card.Severity, card.Prompt)
	for _, opt := range card.Options {
		d := opt.Deltas
		fmt.Printf("  %-24s %s\n", opt.ID, opt.Label)
		fmt.Printf("    %s\n", opt.Description)
		fmt.Printf("    waste%+.0f emissions%+.0f cost%+.0f efficiency%+.0f trust%+.0f\n",
			d.Waste, d.Emissions, d.Cost, d.Efficiency, d.CommunityTrust)
	}
	return nil
}

func runCardsValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cat, err := loadCatalog(cfg)
	if err != nil {
		return fmt.Errorf("deck invalid: %w", err)
	}
	fmt.Printf("deck OK: %d cards\n", cat.Len())
	return nil
}

// #endregion cards-run
