package replay

// #region imports
import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/threadweaver/threadweaver/go-engine/internal/metrics"
)

// #endregion

// #region fixture-types

// Fixture is the top-level JSON structure for a recorded run. Steps may
// pin an explicit option (replaying a user choice) or leave OptionID
// empty to let the autopilot objective pick.
type Fixture struct {
	Description    string          `json:"description"`
	InitialMetrics metrics.State   `json:"initial_metrics"`
	Seed           *int64          `json:"seed,omitempty"`
	StartStep      int             `json:"start_step"`
	Steps          []FixtureStep   `json:"steps"`
	Expected       []ExpectedState `json:"expected,omitempty"`
}

// FixtureStep pins one turn of the recorded run.
type FixtureStep struct {
	Step     int    `json:"step"`
	CardID   string `json:"card_id,omitempty"`   // empty = engine selects
	OptionID string `json:"option_id,omitempty"` // empty = objective selects
}

// ExpectedState asserts the outcome at a given step.
type ExpectedState struct {
	Step                int      `json:"step"`
	CardID              string   `json:"card_id,omitempty"`
	OptionID            string   `json:"option_id,omitempty"`
	SustainabilityScore *float64 `json:"sustainability_score,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if len(f.Steps) == 0 {
		return nil, fmt.Errorf("fixture %s: no steps", path)
	}
	return &f, nil
}

// #endregion fixture-loader
