package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hiveworks/hive/internal/constants"
	"github.com/hiveworks/hive/internal/domain"
)

// newReviewCmd creates the review command group for the human review
// queue.
func newReviewCmd(flags *GlobalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Inspect and resolve escalated review items",
	}

	cmd.AddCommand(
		newReviewPendingCmd(flags),
		newReviewFeedbackCmd(flags),
		newReviewStatsCmd(flags),
	)
	return cmd
}

func newReviewPendingCmd(flags *GlobalFlags) *cobra.Command {
	var (
		urgency string
		skill   string
		goalID  string
	)

	cmd := &cobra.Command{
		Use:   "pending",
		Short: "List pending human review items, most urgent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(flags)
			if err != nil {
				return err
			}
			defer app.Close()

			items, err := app.Human.PendingReviews(cmd.Context(), &domain.ReviewFilter{
				Urgency: constants.Urgency(urgency),
				Skill:   skill,
				GoalID:  goalID,
			})
			if err != nil {
				return err
			}

			if flags.Output == OutputJSON {
				return printJSON(cmd.OutOrStdout(), items)
			}

			rows := [][]string{{"ID", "URGENCY", "REASON", "TASK", "MESSAGE"}}
			for _, item := range items {
				rows = append(rows, []string{
					item.ID, string(item.Urgency), string(item.Reason),
					item.TaskID, truncate(item.Message, 60),
				})
			}
			return table(cmd.OutOrStdout(), rows)
		},
	}

	cmd.Flags().StringVarP(&urgency, "urgency", "u", "", "filter by urgency (critical|high|normal)")
	cmd.Flags().StringVarP(&skill, "skill", "s", "", "filter by task skill")
	cmd.Flags().StringVarP(&goalID, "goal", "g", "", "filter by goal id")
	return cmd
}

func newReviewFeedbackCmd(flags *GlobalFlags) *cobra.Command {
	var (
		decision     string
		notes        string
		instructions string
	)

	cmd := &cobra.Command{
		Use:   "feedback <item-id>",
		Short: "Resolve a review item with a decision",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(flags)
			if err != nil {
				return err
			}
			defer app.Close()

			res, err := app.Human.SubmitFeedback(cmd.Context(), args[0], domain.HumanFeedback{
				Decision:             constants.HumanDecision(decision),
				Notes:                notes,
				RevisionInstructions: instructions,
				SubmittedAt:          time.Now().UTC(),
			})
			if err != nil {
				return err
			}

			if flags.Output == OutputJSON {
				return printJSON(cmd.OutOrStdout(), res)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Item %s resolved: %s\n", args[0], decision)
			for _, t := range res.ResumedTasks {
				fmt.Fprintf(out, "  %s -> %s (%s)\n", t.ID, t.Status, t.To)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&decision, "decision", "d", "", "decision (approve|override_approve|revise|reject|cancel)")
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "free-text commentary")
	cmd.Flags().StringVarP(&instructions, "instructions", "i", "", "revision instructions (required for revise)")
	_ = cmd.MarkFlagRequired("decision")
	return cmd
}

func newReviewStatsCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize the human review queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(flags)
			if err != nil {
				return err
			}
			defer app.Close()

			stats, err := app.Human.Stats(cmd.Context())
			if err != nil {
				return err
			}

			if flags.Output == OutputJSON {
				return printJSON(cmd.OutOrStdout(), stats)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "By status:")
			for status, count := range stats.ByStatus {
				fmt.Fprintf(out, "  %s: %d\n", status, count)
			}
			fmt.Fprintln(out, "By urgency:")
			for urgency, count := range stats.ByUrgency {
				fmt.Fprintf(out, "  %s: %d\n", urgency, count)
			}
			if stats.AvgResolution != nil {
				fmt.Fprintf(out, "Average resolution: %s\n", stats.AvgResolution)
			}
			return nil
		},
	}
}
