package config

// #region imports
import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/threadweaver/threadweaver/go-engine/internal/simulate"
)

// #endregion

// #region types

// Narrative configures the optional text-generation collaborator.
type Narrative struct {
	Enabled        bool   `yaml:"enabled"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the narrative call deadline.
func (n Narrative) Timeout() time.Duration {
	return time.Duration(n.TimeoutSeconds) * time.Second
}

// Config is the engine's full configuration.
type Config struct {
	DBPath    string                   `yaml:"db_path"`
	CardsPath string                   `yaml:"cards_path"` // empty = embedded deck
	Narrative Narrative                `yaml:"narrative"`
	Objective simulate.ObjectiveConfig `yaml:"objective"`
}

// #endregion types

// #region default

// Default returns the baseline configuration with env overrides applied.
// Env vars: THREADWEAVER_DB, THREADWEAVER_CARDS, NARRATIVE_ENABLED,
// NARRATIVE_MODEL, NARRATIVE_TIMEOUT.
func Default() Config {
	cfg := Config{
		DBPath: "threadweaver.db",
		Narrative: Narrative{
			Enabled:        false,
			Model:          "gpt-5-mini",
			TimeoutSeconds: 10,
		},
		Objective: simulate.DefaultObjective(),
	}
	if v := os.Getenv("THREADWEAVER_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("THREADWEAVER_CARDS"); v != "" {
		cfg.CardsPath = v
	}
	if v := os.Getenv("NARRATIVE_ENABLED"); v != "" {
		cfg.Narrative.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("NARRATIVE_MODEL"); v != "" {
		cfg.Narrative.Model = v
	}
	if v := os.Getenv("NARRATIVE_TIMEOUT"); v != "" {
		if sec, err := strconv.Atoi(v); err == nil && sec > 0 {
			cfg.Narrative.TimeoutSeconds = sec
		}
	}
	return cfg
}

// #endregion default

// #region load

// Load reads a YAML config file over the defaults. A missing file is an
// error; use Default directly when no file is configured.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the engine cannot run with.
func (c Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("db_path must not be empty")
	}
	if c.Narrative.Enabled && c.Narrative.Model == "" {
		return fmt.Errorf("narrative.model required when narrative is enabled")
	}
	if c.Narrative.TimeoutSeconds <= 0 {
		return fmt.Errorf("narrative.timeout_seconds must be positive")
	}
	if c.Objective.ScoreGainWeight <= 0 {
		return fmt.Errorf("objective.score_gain_weight must be positive")
	}
	return nil
}

// #endregion load
