package catalog

import (
	"github.com/hiveworks/hive/internal/constants"
	"github.com/hiveworks/hive/internal/domain"
)

// Default returns the compiled-in catalog: the standard marketing skill
// fleet, its dependency graph, the built-in pipeline templates, and
// default quality criteria. The result is validated exactly like an
// externally loaded catalog.
func Default() (Catalog, error) {
	return build(defaultSkills(), defaultTemplates(), defaultCriteria())
}

// MustDefault returns the compiled-in catalog and panics on validation
// failure. The defaults are covered by tests, so a failure here is a
// programming error.
func MustDefault() Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// defaultSkills defines the standard fleet. Downstream edges express
// "this skill's output feeds that skill"; the foundation skill has no
// edges because its output reaches every task as shared context.
func defaultSkills() []domain.Skill {
	return []domain.Skill{
		{
			Name:        "brand-foundation",
			Description: "Maintains the brand voice, positioning pillars, and audience context shared by every skill.",
		},
		{
			Name:        "market-research",
			Squad:       "strategy",
			Description: "Audience, competitor, and market landscape research.",
			Downstream:  []string{"positioning", "campaign-planning"},
		},
		{
			Name:        "positioning",
			Squad:       "strategy",
			Description: "Value proposition and messaging hierarchy.",
			Downstream:  []string{"copywriting", "page-cro", "offer-design"},
		},
		{
			Name:        "campaign-planning",
			Squad:       "strategy",
			Description: "Campaign briefs, channel mix, and timelines.",
			Downstream:  []string{"email-marketing", "paid-social", "content-strategy"},
		},
		{
			Name:        "copywriting",
			Squad:       "creative",
			Description: "Headlines, body copy, and CTAs across channels.",
			Downstream:  []string{"email-marketing", "paid-social"},
		},
		{
			Name:        "content-strategy",
			Squad:       "creative",
			Description: "Editorial calendars and content briefs.",
			Downstream:  []string{"copywriting", "seo"},
		},
		{
			Name:        "visual-direction",
			Squad:       "creative",
			Description: "Creative direction for visual assets.",
			Downstream:  []string{"paid-social"},
		},
		{
			Name:        "funnel-audit",
			Squad:       "convert",
			Description: "End-to-end funnel diagnostics and drop-off analysis.",
			Downstream:  []string{"page-cro", "offer-design"},
		},
		{
			Name:        "page-cro",
			Squad:       "convert",
			Description: "Landing and pricing page conversion optimization.",
			Downstream:  []string{"experiment-design"},
		},
		{
			Name:        "offer-design",
			Squad:       "convert",
			Description: "Pricing, packaging, and promotional offer design.",
			Downstream:  []string{"email-marketing"},
		},
		{
			Name:        "email-marketing",
			Squad:       "activate",
			Description: "Lifecycle and campaign email programs.",
			Downstream:  []string{"analytics"},
		},
		{
			Name:        "paid-social",
			Squad:       "activate",
			Description: "Paid social campaign creation and management.",
			Downstream:  []string{"analytics"},
		},
		{
			Name:        "seo",
			Squad:       "activate",
			Description: "Organic search optimization and technical SEO.",
			Downstream:  []string{"analytics"},
		},
		{
			Name:        "analytics",
			Squad:       "measure",
			Description: "Performance measurement, attribution, and reporting.",
			Downstream:  []string{"experiment-design"},
		},
		{
			Name:        "experiment-design",
			Squad:       "measure",
			Description: "A/B test design and statistical readouts.",
		},
	}
}

// defaultTemplates defines the built-in pipeline templates.
func defaultTemplates() []domain.PipelineTemplate {
	return []domain.PipelineTemplate{
		{
			Name:            "Conversion Sprint",
			DefaultPriority: constants.PriorityP1,
			Trigger:         "manual kickoff for conversion pushes",
			Steps: []domain.TemplateStep{
				{Skill: "funnel-audit"},
				{Skills: []string{"page-cro", "copywriting"}},
				{Skill: "analytics"},
			},
		},
		{
			Name:            "Content Engine",
			DefaultPriority: constants.PriorityP2,
			Trigger:         "weekly content production run",
			Steps: []domain.TemplateStep{
				{Skill: "content-strategy"},
				{Skills: []string{"copywriting", "seo"}},
				{Skill: "analytics"},
			},
		},
		{
			Name:            "Launch Campaign",
			DefaultPriority: constants.PriorityP0,
			Trigger:         "manual launch coordination",
			Steps: []domain.TemplateStep{
				{Skill: "positioning"},
				{Skill: "campaign-planning"},
				{Skills: []string{"copywriting", "visual-direction"}},
				{Skills: []string{"email-marketing", "paid-social"}},
				{Skill: "analytics"},
			},
		},
		{
			Name:            "Growth Audit",
			DefaultPriority: constants.PriorityP2,
			Trigger:         "monthly growth review",
			Steps: []domain.TemplateStep{
				{Skill: "analytics"},
				{Skills: []string{"funnel-audit", "experiment-design"}},
			},
		},
	}
}

// defaultCriteria builds per-skill quality criteria. Every working
// skill shares the baseline dimensions; measure-squad skills weight
// data-drivenness up, creative skills carry a creativity dimension.
func defaultCriteria() map[string]domain.QualityCriteria {
	baseline := func() domain.QualityCriteria {
		return domain.QualityCriteria{
			ApproveAbove: 7.0,
			ReviseBelow:  7.0,
			RejectBelow:  4.0,
			Dimensions: []domain.QualityDimension{
				{Tag: "completeness", Weight: 0.25, MinScore: 4},
				{Tag: "clarity", Weight: 0.20, MinScore: 3},
				{Tag: "actionability", Weight: 0.20, MinScore: 3},
				{Tag: "data_driven", Weight: 0.15, MinScore: 2},
				{Tag: "brand_alignment", Weight: 0.20, MinScore: 3},
			},
		}
	}

	creative := func() domain.QualityCriteria {
		return domain.QualityCriteria{
			ApproveAbove: 7.0,
			ReviseBelow:  7.0,
			RejectBelow:  4.0,
			Dimensions: []domain.QualityDimension{
				{Tag: "completeness", Weight: 0.20, MinScore: 4},
				{Tag: "clarity", Weight: 0.20, MinScore: 3},
				{Tag: "brand_alignment", Weight: 0.25, MinScore: 4},
				{Tag: "creativity", Weight: 0.20, MinScore: 2},
				{Tag: "actionability", Weight: 0.15, MinScore: 2},
			},
		}
	}

	measure := func() domain.QualityCriteria {
		return domain.QualityCriteria{
			ApproveAbove: 7.5,
			ReviseBelow:  7.5,
			RejectBelow:  4.0,
			Dimensions: []domain.QualityDimension{
				{Tag: "completeness", Weight: 0.20, MinScore: 4},
				{Tag: "clarity", Weight: 0.15, MinScore: 3},
				{Tag: "data_driven", Weight: 0.35, MinScore: 5},
				{Tag: "technical_accuracy", Weight: 0.15, MinScore: 3},
				{Tag: "actionability", Weight: 0.15, MinScore: 3},
			},
		}
	}

	out := map[string]domain.QualityCriteria{
		"market-research":   baseline(),
		"positioning":       baseline(),
		"campaign-planning": baseline(),
		"copywriting":       creative(),
		"content-strategy":  creative(),
		"visual-direction":  creative(),
		"funnel-audit":      measure(),
		"page-cro":          baseline(),
		"offer-design":      baseline(),
		"email-marketing":   baseline(),
		"paid-social":       creative(),
		"seo":               baseline(),
		"analytics":         measure(),
		"experiment-design": measure(),
	}
	return out
}
