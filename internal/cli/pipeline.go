package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hiveworks/hive/internal/constants"
)

// newPipelineCmd creates the pipeline command group.
func newPipelineCmd(flags *GlobalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Start and inspect pipeline runs",
	}

	cmd.AddCommand(
		newPipelineStartCmd(flags),
		newPipelineListCmd(flags),
	)
	return cmd
}

func newPipelineStartCmd(flags *GlobalFlags) *cobra.Command {
	var (
		description string
		priority    string
	)

	cmd := &cobra.Command{
		Use:   "start <template>",
		Short: "Instantiate a pipeline template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(flags)
			if err != nil {
				return err
			}
			defer app.Close()

			run, tasks, err := app.Director.StartPipeline(cmd.Context(), args[0], description, constants.Priority(priority))
			if err != nil {
				return err
			}

			if flags.Output == OutputJSON {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"run":   run,
					"tasks": tasks,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Run %s started with %d task(s):\n", run.ID, len(tasks))
			for _, t := range tasks {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s -> %s (%s)\n", t.ID, t.To, t.Priority)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "run description (defaults to the template trigger text)")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "priority override (P0|P1|P2|P3)")
	return cmd
}

func newPipelineListCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List pipeline runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(flags)
			if err != nil {
				return err
			}
			defer app.Close()

			runs, err := app.Store.ListRuns(cmd.Context())
			if err != nil {
				return err
			}

			if flags.Output == OutputJSON {
				return printJSON(cmd.OutOrStdout(), runs)
			}

			rows := [][]string{{"ID", "STATUS", "STEP", "TASKS", "STARTED", "GOAL"}}
			for _, r := range runs {
				goalID := r.GoalID
				if goalID == "" {
					goalID = "-"
				}
				rows = append(rows, []string{
					r.ID, string(r.Status),
					fmt.Sprintf("%d", r.CurrentStepIndex),
					fmt.Sprintf("%d", len(r.TaskIDs)),
					formatTime(r.StartedAt), goalID,
				})
			}
			return table(cmd.OutOrStdout(), rows)
		},
	}
}
