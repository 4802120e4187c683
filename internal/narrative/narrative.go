package narrative

// #region imports
import (
	"context"

	"github.com/threadweaver/threadweaver/go-engine/internal/catalog"
	"github.com/threadweaver/threadweaver/go-engine/internal/metrics"
)

// #endregion

// #region generator

// Generator produces the business-state flavor text shown after a
// decision. Implementations must never surface failures to callers:
// the core works fully with narrative disabled, so any error degrades
// to deterministic template text.
type Generator interface {
	BusinessState(ctx context.Context, card catalog.Card, option catalog.Option, after metrics.State) (string, error)
}

// #endregion generator
