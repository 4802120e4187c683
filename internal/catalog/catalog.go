package catalog

// #region imports
import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// #endregion

// #region errors

// ErrNotFound is returned for lookups of unknown card or option ids.
var ErrNotFound = errors.New("not found")

// #endregion errors

// #region embedded

//go:embed data/cards.json
var defaultCards []byte

// #endregion embedded

// #region catalog-struct

// Catalog is the immutable, validated set of decision cards. Iteration
// order matches the source file, which also fixes tie-breaking during
// scoring.
type Catalog struct {
	cards []Card
	byID  map[string]Card
}

// #endregion catalog-struct

// #region constructor

// New validates the card set and builds the catalog. Fails fast on the
// first structural problem so a bad deck never reaches the engine.
func New(cards []Card) (*Catalog, error) {
	byID := make(map[string]Card, len(cards))
	for i, c := range cards {
		if c.ID == "" {
			return nil, fmt.Errorf("card %d: missing id", i)
		}
		if _, dup := byID[c.ID]; dup {
			return nil, fmt.Errorf("card %q: duplicate id", c.ID)
		}
		if c.Title == "" || c.Prompt == "" {
			return nil, fmt.Errorf("card %q: missing title or prompt", c.ID)
		}
		if len(c.Options) < 2 || len(c.Options) > 3 {
			return nil, fmt.Errorf("card %q: must have 2-3 options, found %d", c.ID, len(c.Options))
		}
		optIDs := make(map[string]bool, len(c.Options))
		for j, o := range c.Options {
			if o.ID == "" {
				return nil, fmt.Errorf("card %q: option %d missing id", c.ID, j)
			}
			if optIDs[o.ID] {
				return nil, fmt.Errorf("card %q: duplicate option id %q", c.ID, o.ID)
			}
			optIDs[o.ID] = true
		}
		for _, tag := range c.Tags {
			if !validTags[tag] {
				return nil, fmt.Errorf("card %q: unknown tag %q", c.ID, tag)
			}
		}
		switch c.Severity {
		case SeverityEasy, SeverityMedium, SeverityHard:
		default:
			return nil, fmt.Errorf("card %q: unknown severity %q", c.ID, c.Severity)
		}
		for _, b := range c.Triggers.bounds() {
			if b != nil && (*b < 0 || *b > 100) {
				return nil, fmt.Errorf("card %q: trigger bound %.2f out of range", c.ID, *b)
			}
		}
		byID[c.ID] = c
	}
	return &Catalog{cards: cards, byID: byID}, nil
}

// #endregion constructor

// #region loaders

// cardsFile accepts both a bare JSON array and the wrapped
// {"cards": [...]} layout.
type cardsFile struct {
	Cards []Card `json:"cards"`
}

func parse(data []byte) ([]Card, error) {
	var list []Card
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}
	var wrapped cardsFile
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("parse cards: %w", err)
	}
	if wrapped.Cards == nil {
		return nil, errors.New("cards file must contain a JSON array or an object with a 'cards' key")
	}
	return wrapped.Cards, nil
}

// Load reads and validates a card catalog from a JSON file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cards %s: %w", path, err)
	}
	cards, err := parse(data)
	if err != nil {
		return nil, err
	}
	return New(cards)
}

// LoadDefault builds the catalog from the embedded card set.
func LoadDefault() (*Catalog, error) {
	cards, err := parse(defaultCards)
	if err != nil {
		return nil, err
	}
	return New(cards)
}

// #endregion loaders

// #region accessors

// Get returns the card with the given id.
func (c *Catalog) Get(id string) (Card, bool) {
	card, ok := c.byID[id]
	return card, ok
}

// Cards returns the cards in catalog order. Callers must not mutate.
func (c *Catalog) Cards() []Card {
	return c.cards
}

// Len returns the number of cards in the catalog.
func (c *Catalog) Len() int {
	return len(c.cards)
}

// #endregion accessors
