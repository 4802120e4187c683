package main

// #region imports
import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/threadweaver/threadweaver/go-engine/internal/catalog"
	"github.com/threadweaver/threadweaver/go-engine/internal/config"
	"github.com/threadweaver/threadweaver/go-engine/internal/narrative"
	"github.com/threadweaver/threadweaver/go-engine/internal/service"
	"github.com/threadweaver/threadweaver/go-engine/internal/store"
)

// #endregion

// #region root

var (
	// Global flags
	cfgFile   string
	dbPath    string
	cardsPath string
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "threadweaver",
	Short: "Sustainability decision simulator engine",
	Long: `threadweaver runs the campus dining sustainability simulator:
a deck of decision cards, a scoring engine that offers the most urgent
one, and a branching timeline of the choices you make.

Core Commands:
  play       Interactive simulation session
  autopilot  Let the objective function play a run
  cards      Inspect and validate the decision deck
  sessions   List, show, and delete saved sessions
  replay     Re-run a recorded fixture and verify outcomes`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (YAML)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&cardsPath, "cards", "", "Cards JSON path (default: embedded deck)")
}

// #endregion root

// #region helpers

// loadConfig resolves config file, defaults, and flag overrides.
func loadConfig() (config.Config, error) {
	cfg := config.Default()
	if cfgFile != "" {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return config.Config{}, err
		}
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if cardsPath != "" {
		cfg.CardsPath = cardsPath
	}
	return cfg, nil
}

// loadCatalog loads the configured deck, falling back to the embedded one.
func loadCatalog(cfg config.Config) (*catalog.Catalog, error) {
	if cfg.CardsPath != "" {
		return catalog.Load(cfg.CardsPath)
	}
	return catalog.LoadDefault()
}

// openStore opens the configured SQLite database.
func openStore(cfg config.Config) (*store.Store, error) {
	return store.Open(cfg.DBPath)
}

// buildService wires the full service, with the OpenAI narrative
// generator only when configured and an API key is present.
func buildService(cfg config.Config, cat *catalog.Catalog) *service.Service {
	var gen narrative.Generator
	if cfg.Narrative.Enabled {
		if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			gen = narrative.NewOpenAIGenerator(key, cfg.Narrative.Model, cfg.Narrative.Timeout())
		} else {
			fmt.Fprintln(os.Stderr, "narrative enabled but OPENAI_API_KEY unset, using templates")
		}
	}
	return service.New(cat, cfg.Objective, gen)
}

// #endregion helpers
