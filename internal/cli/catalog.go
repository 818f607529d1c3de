package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hiveworks/hive/internal/pipeline"
)

// newCatalogCmd creates the catalog command group.
func newCatalogCmd(flags *GlobalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the skill catalog",
	}

	cmd.AddCommand(
		newCatalogSkillsCmd(flags),
		newCatalogSquadsCmd(flags),
		newCatalogTemplatesCmd(flags),
	)
	return cmd
}

func newCatalogSkillsCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "skills",
		Short: "List registered skills",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(flags)
			if err != nil {
				return err
			}
			defer app.Close()

			skills := app.Catalog.Skills()
			if flags.Output == OutputJSON {
				return printJSON(cmd.OutOrStdout(), skills)
			}

			rows := [][]string{{"NAME", "SQUAD", "DOWNSTREAM", "DESCRIPTION"}}
			for _, s := range skills {
				squad := s.Squad
				if squad == "" {
					squad = "(foundation)"
				}
				rows = append(rows, []string{
					s.Name, squad,
					strings.Join(s.Downstream, ","),
					truncate(s.Description, 50),
				})
			}
			return table(cmd.OutOrStdout(), rows)
		},
	}
}

func newCatalogSquadsCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "squads",
		Short: "List squads and their skills",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(flags)
			if err != nil {
				return err
			}
			defer app.Close()

			squads := app.Catalog.Squads()
			if flags.Output == OutputJSON {
				view := make(map[string][]string, len(squads))
				for _, squad := range squads {
					view[squad] = app.Catalog.SkillsInSquad(squad)
				}
				return printJSON(cmd.OutOrStdout(), view)
			}

			out := cmd.OutOrStdout()
			for _, squad := range squads {
				fmt.Fprintf(out, "%s: %s\n", squad, strings.Join(app.Catalog.SkillsInSquad(squad), ", "))
			}
			return nil
		},
	}
}

func newCatalogTemplatesCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List pipeline templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(flags)
			if err != nil {
				return err
			}
			defer app.Close()

			templates := app.Catalog.Templates()
			if flags.Output == OutputJSON {
				return printJSON(cmd.OutOrStdout(), templates)
			}

			rows := [][]string{{"NAME", "PRIORITY", "STEPS", "SCHEDULE", "TRIGGER"}}
			for _, tmpl := range templates {
				rows = append(rows, []string{
					tmpl.Name, string(tmpl.DefaultPriority),
					fmt.Sprintf("%d", len(tmpl.Steps)),
					pipeline.ParseTrigger(tmpl.Trigger),
					truncate(tmpl.Trigger, 40),
				})
			}
			return table(cmd.OutOrStdout(), rows)
		},
	}
}
