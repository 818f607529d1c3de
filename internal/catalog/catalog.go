// Package catalog provides the static skill and pipeline registry for
// hive. The catalog holds the skill fleet, squad membership, the
// producer-to-consumer dependency graph, reusable pipeline templates,
// and per-skill quality criteria.
//
// The catalog may be backed by compiled defaults or by an externally
// loaded YAML file; both constructors funnel through the same
// validation routine and callers depend only on the Catalog interface.
package catalog

import (
	"fmt"
	"sort"

	"github.com/hiveworks/hive/internal/domain"
	hiveerrors "github.com/hiveworks/hive/internal/errors"
)

// Catalog exposes pure query methods over the validated registry.
// All data is immutable after construction.
type Catalog interface {
	// Skills returns every registered skill, foundation skill included.
	Skills() []domain.Skill

	// Skill returns a skill by name.
	Skill(name string) (domain.Skill, bool)

	// Squads returns every squad name, sorted.
	Squads() []string

	// FoundationSkill returns the single skill with no squad.
	FoundationSkill() domain.Skill

	// SkillsInSquad returns the skills owned by a squad.
	SkillsInSquad(squad string) []string

	// DownstreamOf returns the skills that consume the given skill's
	// output (direct edges only).
	DownstreamOf(skill string) []string

	// UpstreamOf returns the skills whose output the given skill
	// consumes (direct edges only).
	UpstreamOf(skill string) []string

	// Templates returns every pipeline template.
	Templates() []domain.PipelineTemplate

	// Template returns a template by name.
	Template(name string) (domain.PipelineTemplate, bool)

	// QualityCriteria returns the judging criteria for a skill.
	QualityCriteria(skill string) (domain.QualityCriteria, bool)
}

// registry is the concrete validated catalog.
type registry struct {
	skills     map[string]domain.Skill
	squads     map[string][]string
	foundation string
	downstream map[string][]string
	upstream   map[string][]string
	templates  map[string]domain.PipelineTemplate
	criteria   map[string]domain.QualityCriteria
	order      []string // skill names in registration order
	tmplOrder  []string
}

// build assembles and validates a registry from raw inputs. Both the
// compiled defaults and the YAML loader end up here, so they validate
// identically.
func build(skills []domain.Skill, templates []domain.PipelineTemplate, criteria map[string]domain.QualityCriteria) (*registry, error) {
	r := &registry{
		skills:     make(map[string]domain.Skill, len(skills)),
		squads:     make(map[string][]string),
		downstream: make(map[string][]string, len(skills)),
		upstream:   make(map[string][]string, len(skills)),
		templates:  make(map[string]domain.PipelineTemplate, len(templates)),
		criteria:   criteria,
	}
	if r.criteria == nil {
		r.criteria = make(map[string]domain.QualityCriteria)
	}

	for _, s := range skills {
		if s.Name == "" {
			return nil, fmt.Errorf("%w: skill with empty name", hiveerrors.ErrCatalogInvalid)
		}
		if _, dup := r.skills[s.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate skill %q", hiveerrors.ErrCatalogInvalid, s.Name)
		}
		r.skills[s.Name] = s
		r.order = append(r.order, s.Name)
		if s.Squad == "" {
			if r.foundation != "" {
				return nil, fmt.Errorf("%w: multiple foundation skills (%q and %q)",
					hiveerrors.ErrCatalogInvalid, r.foundation, s.Name)
			}
			r.foundation = s.Name
			continue
		}
		r.squads[s.Squad] = append(r.squads[s.Squad], s.Name)
	}

	if r.foundation == "" {
		return nil, fmt.Errorf("%w: no foundation skill registered", hiveerrors.ErrCatalogInvalid)
	}

	// Squad membership is derived from the skills themselves, so every
	// squad that exists owns at least one skill by construction.

	// Resolve the dependency graph and its reverse.
	for _, s := range skills {
		for _, down := range s.Downstream {
			if down == s.Name {
				return nil, fmt.Errorf("%w: skill %q lists itself downstream",
					hiveerrors.ErrCatalogInvalid, s.Name)
			}
			if _, ok := r.skills[down]; !ok {
				return nil, fmt.Errorf("%w: skill %q references unknown downstream skill %q",
					hiveerrors.ErrCatalogInvalid, s.Name, down)
			}
			r.downstream[s.Name] = append(r.downstream[s.Name], down)
			r.upstream[down] = append(r.upstream[down], s.Name)
		}
	}

	for _, t := range templates {
		if t.Name == "" {
			return nil, fmt.Errorf("%w: template with empty name", hiveerrors.ErrCatalogInvalid)
		}
		if _, dup := r.templates[t.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate template %q", hiveerrors.ErrCatalogInvalid, t.Name)
		}
		for i, step := range t.Steps {
			for _, skill := range step.SkillSet() {
				if _, ok := r.skills[skill]; !ok {
					return nil, fmt.Errorf("%w: template %q step %d references unknown skill %q",
						hiveerrors.ErrCatalogInvalid, t.Name, i, skill)
				}
			}
		}
		r.templates[t.Name] = t
		r.tmplOrder = append(r.tmplOrder, t.Name)
	}

	for skill := range r.criteria {
		if _, ok := r.skills[skill]; !ok {
			return nil, fmt.Errorf("%w: quality criteria for unknown skill %q",
				hiveerrors.ErrCatalogInvalid, skill)
		}
	}

	return r, nil
}

// Skills returns every registered skill in registration order.
func (r *registry) Skills() []domain.Skill {
	out := make([]domain.Skill, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.skills[name])
	}
	return out
}

// Skill returns a skill by name.
func (r *registry) Skill(name string) (domain.Skill, bool) {
	s, ok := r.skills[name]
	return s, ok
}

// Squads returns every squad name, sorted.
func (r *registry) Squads() []string {
	out := make([]string, 0, len(r.squads))
	for squad := range r.squads {
		out = append(out, squad)
	}
	sort.Strings(out)
	return out
}

// FoundationSkill returns the single skill with no squad.
func (r *registry) FoundationSkill() domain.Skill {
	return r.skills[r.foundation]
}

// SkillsInSquad returns a copy of the squad's member list.
func (r *registry) SkillsInSquad(squad string) []string {
	return append([]string(nil), r.squads[squad]...)
}

// DownstreamOf returns a copy of the skill's direct consumers.
func (r *registry) DownstreamOf(skill string) []string {
	return append([]string(nil), r.downstream[skill]...)
}

// UpstreamOf returns a copy of the skill's direct producers.
func (r *registry) UpstreamOf(skill string) []string {
	return append([]string(nil), r.upstream[skill]...)
}

// Templates returns every template in registration order.
func (r *registry) Templates() []domain.PipelineTemplate {
	out := make([]domain.PipelineTemplate, 0, len(r.tmplOrder))
	for _, name := range r.tmplOrder {
		out = append(out, r.templates[name])
	}
	return out
}

// Template returns a template by name.
func (r *registry) Template(name string) (domain.PipelineTemplate, bool) {
	t, ok := r.templates[name]
	return t, ok
}

// QualityCriteria returns the judging criteria for a skill.
func (r *registry) QualityCriteria(skill string) (domain.QualityCriteria, bool) {
	c, ok := r.criteria[skill]
	return c, ok
}
