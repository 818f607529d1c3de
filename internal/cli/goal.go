package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hiveworks/hive/internal/constants"
)

// newGoalCmd creates the goal command group.
func newGoalCmd(flags *GlobalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goal",
		Short: "Create, plan, and advance goals",
	}

	cmd.AddCommand(
		newGoalCreateCmd(flags),
		newGoalPlanCmd(flags),
		newGoalAdvanceCmd(flags),
		newGoalShowCmd(flags),
		newGoalListCmd(flags),
	)
	return cmd
}

func newGoalCreateCmd(flags *GlobalFlags) *cobra.Command {
	var (
		category string
		priority string
		deadline string
	)

	cmd := &cobra.Command{
		Use:   "create <description>",
		Short: "Create a goal and route it to squads",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(flags)
			if err != nil {
				return err
			}
			defer app.Close()

			var due *time.Time
			if deadline != "" {
				parsed, parseErr := time.Parse("2006-01-02", deadline)
				if parseErr != nil {
					return fmt.Errorf("invalid deadline %q: expected YYYY-MM-DD", deadline)
				}
				due = &parsed
			}

			goal, err := app.Director.CreateGoal(cmd.Context(), args[0],
				constants.GoalCategory(category), constants.Priority(priority), due)
			if err != nil {
				return err
			}

			if flags.Output == OutputJSON {
				return printJSON(cmd.OutOrStdout(), goal)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Goal %s created (%s, %s)\n", goal.ID, goal.Category, goal.Priority)
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", string(constants.CategoryOptimization), "goal category (launch|content|optimization|growth|retention|analysis)")
	cmd.Flags().StringVarP(&priority, "priority", "p", string(constants.PriorityP2), "priority (P0|P1|P2|P3)")
	cmd.Flags().StringVar(&deadline, "deadline", "", "completion deadline (YYYY-MM-DD)")
	return cmd
}

func newGoalPlanCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "plan <goal-id>",
		Short: "Decompose a goal and materialize its first-phase tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(flags)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := cmd.Context()
			goal, err := app.Store.ReadGoal(ctx, args[0])
			if err != nil {
				return err
			}

			run, tasks, err := app.Director.PlanGoalTasks(ctx, goal)
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
}

func newGoalAdvanceCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "advance <goal-id>",
		Short: "Advance a goal to its next phase if the current one is done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(flags)
			if err != nil {
				return err
			}
			defer app.Close()

			tasks, done, err := app.Director.AdvanceGoal(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if flags.Output == OutputJSON {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"complete": done,
					"tasks":    tasks,
				})
			}
			out := cmd.OutOrStdout()
			switch {
			case done:
				fmt.Fprintln(out, "Goal complete.")
			case len(tasks) == 0:
				fmt.Fprintln(out, "Current phase still in progress.")
			default:
				fmt.Fprintf(out, "Next phase started with %d task(s):\n", len(tasks))
				for _, t := range tasks {
					fmt.Fprintf(out, "  %s -> %s (%s)\n", t.ID, t.To, t.Priority)
				}
			}
			return nil
		},
	}
}

func newGoalShowCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <goal-id>",
		Short: "Show a goal and its plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(flags)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := cmd.Context()
			goal, err := app.Store.ReadGoal(ctx, args[0])
			if err != nil {
				return err
			}

			// The plan is optional; the goal may not be decomposed yet.
			plan, planErr := app.Store.ReadPlan(ctx, goal.ID)

			if flags.Output == OutputJSON {
				view := map[string]any{"goal": goal}
				if planErr == nil {
					view["plan"] = plan
				}
				return printJSON(cmd.OutOrStdout(), view)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s  %s  %s  created %s\n", goal.ID, goal.Category, goal.Priority, formatTime(goal.CreatedAt))
			fmt.Fprintf(out, "  %s\n", goal.Description)
			if planErr == nil {
				fmt.Fprintf(out, "  Plan (%d estimated tasks):\n", plan.EstimatedTaskCount)
				for i, phase := range plan.Phases {
					mode := "sequential"
					if phase.Parallel {
						mode = "parallel"
					}
					fmt.Fprintf(out, "    %d. %s [%s]: %v\n", i+1, phase.Name, mode, phase.Skills)
				}
			}
			return nil
		},
	}
}

func newGoalListCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List goals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(flags)
			if err != nil {
				return err
			}
			defer app.Close()

			goals, err := app.Store.ListGoals(cmd.Context())
			if err != nil {
				return err
			}

			if flags.Output == OutputJSON {
				return printJSON(cmd.OutOrStdout(), goals)
			}

			rows := [][]string{{"ID", "CATEGORY", "PRIORITY", "CREATED", "DESCRIPTION"}}
			for _, g := range goals {
				rows = append(rows, []string{
					g.ID, string(g.Category), string(g.Priority),
					formatTime(g.CreatedAt), truncate(g.Description, 60),
				})
			}
			return table(cmd.OutOrStdout(), rows)
		},
	}
}
