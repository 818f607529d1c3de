package decompose

import (
	"fmt"

	"github.com/hiveworks/hive/internal/constants"
)

// blueprint names the phases of a routing-derived plan for one
// category. Blueprints carry only names and descriptions; the skills
// come from the routing decision itself.
type blueprint struct {
	phases []phaseLabel
}

type phaseLabel struct {
	name string
	desc string
}

// phase returns the label for phase index i, synthesizing a generic
// label from the squad name when the blueprint runs short.
func (b blueprint) phase(i int, squad string) (string, string) {
	if i < len(b.phases) {
		return b.phases[i].name, b.phases[i].desc
	}
	return fmt.Sprintf("PHASE %d", i+1), fmt.Sprintf("Work routed to the %s squad", squad)
}

// blueprintFor returns the phase blueprint for a goal category.
//
//nolint:gocyclo // A flat switch over the closed category enum
func blueprintFor(category constants.GoalCategory) blueprint {
	switch category {
	case constants.CategoryLaunch:
		return blueprint{phases: []phaseLabel{
			{"PLAN", "Research, positioning, and the launch campaign brief"},
			{"CREATE", "Launch copy and creative assets"},
			{"ACTIVATE", "Distribution across owned and paid channels"},
			{"MEASURE", "Launch performance measurement"},
		}}
	case constants.CategoryContent:
		return blueprint{phases: []phaseLabel{
			{"CREATE", "Editorial plan and content drafts"},
			{"ACTIVATE", "Search optimization of published content"},
			{"MEASURE", "Content performance measurement"},
		}}
	case constants.CategoryOptimization:
		return blueprint{phases: []phaseLabel{
			{"AUDIT", "Funnel diagnostics and conversion opportunities"},
			{"CREATE", "Copy revisions supporting conversion changes"},
			{"MEASURE", "Experiment design and measurement"},
		}}
	case constants.CategoryGrowth:
		return blueprint{phases: []phaseLabel{
			{"PLAN", "Market context and acquisition plan"},
			{"ACTIVATE", "Acquisition channel execution"},
			{"MEASURE", "Growth experiment measurement"},
		}}
	case constants.CategoryRetention:
		return blueprint{phases: []phaseLabel{
			{"PLAN", "Lifecycle program planning"},
			{"CREATE", "Retention messaging and content"},
			{"ACTIVATE", "Lifecycle email execution"},
			{"MEASURE", "Retention cohort measurement"},
		}}
	case constants.CategoryAnalysis:
		return blueprint{phases: []phaseLabel{
			{"MEASURE", "Measurement and reporting work"},
		}}
	default:
		return blueprint{}
	}
}
