package domain

import "github.com/hiveworks/hive/internal/constants"

// Skill is a named unit of specialized agent work. The single skill
// with an empty squad is the foundation skill, whose output is treated
// as input context for all others.
type Skill struct {
	// Name is the unique skill identifier (e.g. "copywriting").
	Name string `json:"name" yaml:"name"`

	// Squad is the owning squad, empty only for the foundation skill.
	Squad string `json:"squad,omitempty" yaml:"squad,omitempty"`

	// Description summarizes what the skill produces.
	Description string `json:"description" yaml:"description"`

	// Downstream lists the skills that consume this skill's output.
	Downstream []string `json:"downstream,omitempty" yaml:"downstream,omitempty"`
}

// PipelineTemplate is a reusable, named sequence of steps with a
// default priority and human-readable trigger text.
type PipelineTemplate struct {
	// Name is the unique template name (e.g. "Conversion Sprint").
	Name string `json:"name" yaml:"name"`

	// Steps is the ordered step list.
	Steps []TemplateStep `json:"steps" yaml:"steps"`

	// DefaultPriority is used when the instantiation supplies none.
	DefaultPriority constants.Priority `json:"default_priority" yaml:"default_priority"`

	// Trigger is free text describing when the pipeline should run.
	// The factory parses it into a schedule (weekly/monthly/daily/manual).
	Trigger string `json:"trigger" yaml:"trigger"`
}

// TemplateStep is one step of a pipeline template: either a single
// skill (sequential) or a skill set (parallel).
type TemplateStep struct {
	// Skill is set for a sequential single-skill step.
	Skill string `json:"skill,omitempty" yaml:"skill,omitempty"`

	// Skills is set for a parallel multi-skill step.
	Skills []string `json:"skills,omitempty" yaml:"skills,omitempty"`

	// Review marks a step that yields no tasks and instead requests a
	// director review pass.
	Review bool `json:"review,omitempty" yaml:"review,omitempty"`
}

// Parallel returns true when the step fans out across multiple skills.
func (s TemplateStep) Parallel() bool {
	return len(s.Skills) > 0
}

// SkillSet returns the skills the step touches, regardless of shape.
func (s TemplateStep) SkillSet() []string {
	if s.Parallel() {
		return s.Skills
	}
	if s.Skill == "" {
		return nil
	}
	return []string{s.Skill}
}

// QualityCriteria describes how one skill's output is judged.
type QualityCriteria struct {
	// Dimensions are the weighted scoring dimensions for the skill.
	Dimensions []QualityDimension `json:"dimensions" yaml:"dimensions"`

	// ApproveAbove is the minimum overall score for approval.
	ApproveAbove float64 `json:"approve_above" yaml:"approve_above"`

	// ReviseBelow is the overall score under which revision is requested.
	ReviseBelow float64 `json:"revise_below" yaml:"revise_below"`

	// RejectBelow is the overall score under which output is rejected.
	RejectBelow float64 `json:"reject_below" yaml:"reject_below"`
}

// QualityDimension is one weighted judging dimension.
type QualityDimension struct {
	// Tag identifies the dimension (completeness, clarity, ...).
	Tag string `json:"tag" yaml:"tag"`

	// Weight is the dimension's share of the overall score. Weights for
	// one skill sum to approximately 1.0.
	Weight float64 `json:"weight" yaml:"weight"`

	// MinScore is the floor below which the dimension drags the verdict.
	MinScore float64 `json:"min_score" yaml:"min_score"`
}
