package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newBudgetCmd creates the budget status command.
func newBudgetCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "budget",
		Short: "Show the current month's budget state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(flags)
			if err != nil {
				return err
			}
			defer app.Close()

			state := app.BudgetState()
			if flags.Output == OutputJSON {
				return printJSON(cmd.OutOrStdout(), state)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Budget:  $%.2f\n", state.TotalBudget)
			fmt.Fprintf(out, "Spent:   $%.2f (%.1f%%)\n", state.Spent, state.PercentUsed)
			fmt.Fprintf(out, "Level:   %s\n", state.Level)
			fmt.Fprintf(out, "Allowed: %v\n", state.AllowedPriorities)
			if state.ModelOverride != "" {
				fmt.Fprintf(out, "Model override: %s\n", state.ModelOverride)
			}
			return nil
		},
	}
}
