// Package router maps goal categories to ordered squad routes.
//
// Routing is a fixed table keyed by the closed goal category enum.
// Every decision's last route targets the measure squad; this is an
// enforced invariant, not a convention, and the router validates it at
// construction time so a bad table fails fast.
package router

import (
	"fmt"

	"github.com/hiveworks/hive/internal/catalog"
	"github.com/hiveworks/hive/internal/constants"
	"github.com/hiveworks/hive/internal/domain"
	hiveerrors "github.com/hiveworks/hive/internal/errors"
)

// Router answers routing queries for goal categories.
type Router struct {
	table map[constants.GoalCategory][]domain.SquadRoute
}

// New builds a Router over the default routing table, validating every
// route against the catalog (squad exists, skills registered, decision
// ends with measure).
func New(cat catalog.Catalog) (*Router, error) {
	r := &Router{table: defaultTable()}
	if err := r.validate(cat); err != nil {
		return nil, err
	}
	return r, nil
}

// RouteGoal returns the routing decision for a goal category.
func (r *Router) RouteGoal(category constants.GoalCategory) (domain.RoutingDecision, error) {
	routes, ok := r.table[category]
	if !ok {
		return domain.RoutingDecision{}, fmt.Errorf("%w: %q", hiveerrors.ErrUnknownCategory, category)
	}

	// Copy so callers cannot mutate the table.
	out := make([]domain.SquadRoute, len(routes))
	for i, route := range routes {
		out[i] = domain.SquadRoute{
			Squad:  route.Squad,
			Skills: append([]string(nil), route.Skills...),
			Reason: route.Reason,
		}
	}
	return domain.RoutingDecision{Routes: out, MeasureSquadFinal: true}, nil
}

// SelectSkills flattens a decision's routes into a de-duplicated,
// order-preserving skill list. First occurrence wins.
func SelectSkills(decision domain.RoutingDecision) []string {
	seen := make(map[string]bool)
	var out []string
	for _, route := range decision.Routes {
		for _, skill := range route.Skills {
			if seen[skill] {
				continue
			}
			seen[skill] = true
			out = append(out, skill)
		}
	}
	return out
}

// validate checks every table entry against the catalog and the
// measure-final invariant.
func (r *Router) validate(cat catalog.Catalog) error {
	for category, routes := range r.table {
		if len(routes) == 0 {
			return fmt.Errorf("%w: category %q has no routes", hiveerrors.ErrCatalogInvalid, category)
		}
		for _, route := range routes {
			if len(route.Skills) == 0 {
				return fmt.Errorf("%w: category %q routes squad %q with no skills",
					hiveerrors.ErrCatalogInvalid, category, route.Squad)
			}
			for _, skill := range route.Skills {
				s, ok := cat.Skill(skill)
				if !ok {
					return fmt.Errorf("%w: category %q references %q", hiveerrors.ErrSkillNotFound, category, skill)
				}
				if s.Squad != route.Squad {
					return fmt.Errorf("%w: skill %q is not in squad %q",
						hiveerrors.ErrCatalogInvalid, skill, route.Squad)
				}
			}
		}
		if routes[len(routes)-1].Squad != constants.MeasureSquad {
			return fmt.Errorf("%w: category %q ends with squad %q",
				hiveerrors.ErrRouteMissingMeasure, category, routes[len(routes)-1].Squad)
		}
	}
	return nil
}

// defaultTable is the fixed category-to-route mapping. Order matters:
// routes execute in sequence and measurement always closes the loop.
func defaultTable() map[constants.GoalCategory][]domain.SquadRoute {
	return map[constants.GoalCategory][]domain.SquadRoute{
		constants.CategoryLaunch: {
			{Squad: "strategy", Skills: []string{"market-research", "positioning", "campaign-planning"},
				Reason: "launches start from research-backed positioning and a campaign brief"},
			{Squad: "creative", Skills: []string{"copywriting", "visual-direction"},
				Reason: "launch assets need copy and creative direction"},
			{Squad: "activate", Skills: []string{"email-marketing", "paid-social"},
				Reason: "launch distribution across owned and paid channels"},
			{Squad: "measure", Skills: []string{"analytics"},
				Reason: "launch performance must be measured from day one"},
		},
		constants.CategoryContent: {
			{Squad: "creative", Skills: []string{"content-strategy", "copywriting"},
				Reason: "content goals start from an editorial plan and copy"},
			{Squad: "activate", Skills: []string{"seo"},
				Reason: "content must be discoverable"},
			{Squad: "measure", Skills: []string{"analytics"},
				Reason: "content performance tracking"},
		},
		constants.CategoryOptimization: {
			{Squad: "convert", Skills: []string{"funnel-audit", "page-cro", "offer-design"},
				Reason: "optimization goals center on the conversion funnel"},
			{Squad: "creative", Skills: []string{"copywriting"},
				Reason: "conversion changes usually need copy revisions"},
			{Squad: "measure", Skills: []string{"analytics", "experiment-design"},
				Reason: "optimization requires measured experiments"},
		},
		constants.CategoryGrowth: {
			{Squad: "strategy", Skills: []string{"market-research", "campaign-planning"},
				Reason: "growth bets need market context and a plan"},
			{Squad: "activate", Skills: []string{"paid-social", "seo"},
				Reason: "growth channels for acquisition"},
			{Squad: "measure", Skills: []string{"analytics", "experiment-design"},
				Reason: "growth experiments must be instrumented"},
		},
		constants.CategoryRetention: {
			{Squad: "strategy", Skills: []string{"campaign-planning"},
				Reason: "retention programs need a lifecycle plan"},
			{Squad: "creative", Skills: []string{"copywriting", "content-strategy"},
				Reason: "retention lives on ongoing content and messaging"},
			{Squad: "activate", Skills: []string{"email-marketing"},
				Reason: "lifecycle email is the main retention channel"},
			{Squad: "measure", Skills: []string{"analytics"},
				Reason: "retention cohort measurement"},
		},
		constants.CategoryAnalysis: {
			{Squad: "measure", Skills: []string{"analytics", "experiment-design"},
				Reason: "analysis goals are measurement work end to end"},
		},
	}
}
