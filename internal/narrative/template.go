package narrative

// #region imports
import (
	"context"
	"fmt"
	"strings"

	"github.com/threadweaver/threadweaver/go-engine/internal/catalog"
	"github.com/threadweaver/threadweaver/go-engine/internal/metrics"
)

// #endregion

// #region template-generator

// TemplateGenerator composes the business-state narrative from fixed
// metric bands. Fully deterministic; it is both the default generator
// and the fallback when an external one fails.
type TemplateGenerator struct{}

// NewTemplateGenerator returns the canned-text generator.
func NewTemplateGenerator() *TemplateGenerator {
	return &TemplateGenerator{}
}

// BusinessState never fails; the error return satisfies Generator.
func (g *TemplateGenerator) BusinessState(_ context.Context, _ catalog.Card, option catalog.Option, after metrics.State) (string, error) {
	var parts []string

	switch {
	case after.SustainabilityScore >= 70:
		parts = append(parts, "Your campus dining operation is now a sustainability leader, setting the standard for institutional food service.")
	case after.SustainabilityScore >= 50:
		parts = append(parts, "The dining operation is making solid progress on sustainability, with measurable improvements across key areas.")
	case after.SustainabilityScore >= 30:
		parts = append(parts, "Sustainability efforts are underway, though challenges remain in balancing environmental and operational goals.")
	default:
		parts = append(parts, "The dining operation faces significant sustainability challenges that require strategic attention.")
	}

	parts = append(parts, fmt.Sprintf("Your recent decision to %s has reshaped operations.", strings.ToLower(option.Label)))

	if after.Waste <= 30 {
		parts = append(parts, "Food waste has been dramatically reduced through smart sourcing and composting programs.")
	} else if after.Waste >= 70 {
		parts = append(parts, "Food waste remains a persistent challenge, with significant amounts going to landfills daily.")
	}

	if after.Emissions <= 30 {
		parts = append(parts, "Carbon emissions have dropped thanks to local sourcing and energy-efficient equipment.")
	} else if after.Emissions >= 70 {
		parts = append(parts, "The carbon footprint remains high, driven by energy-intensive operations and supply chain choices.")
	}

	if after.Cost <= 30 {
		parts = append(parts, "Cost controls are working well, freeing up budget for further sustainability investments.")
	} else if after.Cost >= 70 {
		parts = append(parts, "Operating costs have risen, putting pressure on the budget and limiting future initiatives.")
	}

	if after.Efficiency >= 70 {
		parts = append(parts, "Operations run smoothly with optimized processes and well-trained staff.")
	} else if after.Efficiency <= 30 {
		parts = append(parts, "Operational inefficiencies are creating bottlenecks and staff frustration.")
	}

	if after.CommunityTrust >= 70 {
		parts = append(parts, "Student satisfaction is high, with strong community support for sustainability initiatives.")
	} else if after.CommunityTrust <= 30 {
		parts = append(parts, "Stakeholder trust is low, with concerns about transparency and commitment to change.")
	}

	return strings.Join(parts, " "), nil
}

// #endregion template-generator
