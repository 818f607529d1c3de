// Package decompose converts a goal plus its routing decision into an
// ordered plan of phases. Decomposition is template-first: when the
// goal's category maps to a known pipeline template the template's
// steps become the phases one to one; otherwise phases are built from
// the routing decision using a fixed per-category blueprint, with safe
// parallelism detected on the catalog's dependency graph.
package decompose

import (
	"fmt"

	"github.com/hiveworks/hive/internal/catalog"
	"github.com/hiveworks/hive/internal/constants"
	"github.com/hiveworks/hive/internal/domain"
)

// Decomposer builds goal plans over a validated catalog.
type Decomposer struct {
	catalog catalog.Catalog
}

// New creates a Decomposer.
func New(cat catalog.Catalog) *Decomposer {
	return &Decomposer{catalog: cat}
}

// categoryTemplates maps goal categories to the pipeline template that
// decomposition prefers. Categories absent here (retention) always take
// the blueprint path.
//
//nolint:gochecknoglobals // Read-only lookup table
var categoryTemplates = map[constants.GoalCategory]string{
	constants.CategoryOptimization: "Conversion Sprint",
	constants.CategoryContent:      "Content Engine",
	constants.CategoryLaunch:       "Launch Campaign",
	constants.CategoryGrowth:       "Growth Audit",
	constants.CategoryAnalysis:     "Growth Audit",
}

// Decompose converts a goal and its routing decision into a plan.
func (d *Decomposer) Decompose(goal *domain.Goal, decision domain.RoutingDecision) (*domain.GoalPlan, error) {
	if name, ok := categoryTemplates[goal.Category]; ok {
		if tmpl, found := d.catalog.Template(name); found {
			return d.planFromTemplate(goal, tmpl), nil
		}
	}
	return d.planFromRouting(goal, decision), nil
}

// TemplateFor returns the pipeline template decomposition would use for
// a category, if one is mapped and present in the catalog.
func (d *Decomposer) TemplateFor(category constants.GoalCategory) (domain.PipelineTemplate, bool) {
	name, ok := categoryTemplates[category]
	if !ok {
		return domain.PipelineTemplate{}, false
	}
	return d.catalog.Template(name)
}

// planFromTemplate converts template steps 1:1 into phases: a
// sequential step becomes a one-skill non-parallel phase, a parallel
// step a multi-skill parallel phase, each depending on its predecessor.
func (d *Decomposer) planFromTemplate(goal *domain.Goal, tmpl domain.PipelineTemplate) *domain.GoalPlan {
	plan := &domain.GoalPlan{GoalID: goal.ID}

	for i, step := range tmpl.Steps {
		skills := append([]string(nil), step.SkillSet()...)
		phase := domain.PlanPhase{
			Name:        fmt.Sprintf("%s step %d", tmpl.Name, i+1),
			Description: phaseDescription(d.catalog, skills),
			Skills:      skills,
			Parallel:    step.Parallel(),
		}
		if i > 0 {
			prev := i - 1
			phase.DependsOnPhase = &prev
		}
		plan.Phases = append(plan.Phases, phase)
		plan.EstimatedTaskCount += len(skills)
	}

	return plan
}

// planFromRouting builds phases from the routing decision: one phase
// per route, named by the category's blueprint, with the parallel flag
// computed from the dependency graph.
func (d *Decomposer) planFromRouting(goal *domain.Goal, decision domain.RoutingDecision) *domain.GoalPlan {
	plan := &domain.GoalPlan{GoalID: goal.ID}
	blueprint := blueprintFor(goal.Category)

	for i, route := range decision.Routes {
		name, desc := blueprint.phase(i, route.Squad)
		skills := append([]string(nil), route.Skills...)
		phase := domain.PlanPhase{
			Name:        name,
			Description: desc,
			Skills:      skills,
			Parallel:    d.CanRunParallel(skills),
		}
		if i > 0 {
			prev := i - 1
			phase.DependsOnPhase = &prev
		}
		plan.Phases = append(plan.Phases, phase)
		plan.EstimatedTaskCount += len(skills)
	}

	return plan
}

// CanRunParallel reports whether a skill set is safe to run
// concurrently: true iff no skill in the set is a direct producer for
// any other skill in the same set, checked in both directions. Empty
// and singleton sets are trivially parallel-safe.
func (d *Decomposer) CanRunParallel(skills []string) bool {
	if len(skills) < 2 {
		return true
	}
	inSet := make(map[string]bool, len(skills))
	for _, s := range skills {
		inSet[s] = true
	}
	for _, s := range skills {
		for _, down := range d.catalog.DownstreamOf(s) {
			if inSet[down] {
				return false
			}
		}
	}
	return true
}

// phaseDescription summarizes what a skill set produces.
func phaseDescription(cat catalog.Catalog, skills []string) string {
	if len(skills) == 1 {
		if s, ok := cat.Skill(skills[0]); ok && s.Description != "" {
			return s.Description
		}
		return fmt.Sprintf("Work produced by %s", skills[0])
	}
	return fmt.Sprintf("Parallel work across %d skills", len(skills))
}
