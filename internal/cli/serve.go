package cli

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/hiveworks/hive/internal/agent"
	"github.com/hiveworks/hive/internal/constants"
	"github.com/hiveworks/hive/internal/errors"
	"github.com/hiveworks/hive/internal/eventbus"
	"github.com/hiveworks/hive/internal/queue"
	"github.com/hiveworks/hive/internal/scheduler"
	"github.com/hiveworks/hive/internal/signal"
	"github.com/hiveworks/hive/internal/webhook"
)

const shutdownTimeout = 10 * time.Second

// newServeCmd creates the serve command: the long-running worker that
// executes queued tasks, advances goals, and optionally runs the
// webhook server and the pipeline scheduler.
func newServeCmd(flags *GlobalFlags) *cobra.Command {
	var pollInterval time.Duration

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the hive worker loop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(flags)
			if err != nil {
				return err
			}
			defer app.Close()

			if app.Model == nil {
				return errors.Wrapf(errors.ErrConfigInvalid,
					"serve requires an API key in %s", app.Config.AI.APIKeyEnvVar)
			}

			return runServe(cmd.Context(), app, pollInterval)
		},
	}

	cmd.Flags().DurationVar(&pollInterval, "poll", 10*time.Second, "workspace poll interval")
	return cmd
}

func runServe(parent context.Context, app *App, pollInterval time.Duration) error {
	handler := signal.NewHandler(parent)
	defer handler.Stop()
	ctx := handler.Context()

	runner, err := agent.New(app.Model, app.Store, app.Catalog, app.BudgetState,
		agent.WithLogger(app.Logger))
	if err != nil {
		return err
	}

	q := queue.New(queue.ProcessorFunc(func(ctx context.Context, taskID string) error {
		_, cost, execErr := app.Director.ExecuteAndReviewTask(ctx, taskID, runner)
		app.RecordSpend(ctx, cost)
		return execErr
	}), queue.WithWorkers(app.Config.Queue.Workers), queue.WithLogger(app.Logger))
	q.Start(ctx)
	defer q.Stop()

	bus := eventbus.New()

	var sched *scheduler.Scheduler
	if app.Config.Scheduler.Enabled {
		sched = scheduler.New(app.Director,
			scheduler.WithEventBus(bus), scheduler.WithLogger(app.Logger))
		registered, regErr := sched.RegisterCatalog(app.Catalog)
		if regErr != nil {
			return regErr
		}
		sched.Start()
		defer sched.Stop()
		app.Logger.Info().Int("templates", registered).Msg("scheduler started")
	}

	var srv *webhook.Server
	if app.Config.Webhook.Enabled {
		srv = webhook.New(app.Config.Webhook.Addr, app.Director,
			webhook.WithEventBus(bus), webhook.WithLogger(app.Logger))
		go func() {
			if serveErr := srv.Start(); serveErr != nil {
				app.Logger.Error().Err(serveErr).Msg("webhook server stopped")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if shutErr := srv.Shutdown(shutdownCtx); shutErr != nil {
				app.Logger.Error().Err(shutErr).Msg("webhook shutdown failed")
			}
		}()
		app.Logger.Info().Str("addr", app.Config.Webhook.Addr).Msg("webhook listening")
	}

	app.Logger.Info().
		Int("workers", app.Config.Queue.Workers).
		Dur("poll", pollInterval).
		Msg("hive serving")

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			if handler.WasInterrupted() {
				app.Logger.Info().Msg("interrupt received, shutting down")
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
			pollOnce(ctx, app, q)
		}
	}
}

// pollOnce feeds pending tasks to the queue and nudges active goals
// whose current phase may have completed. Every error is logged and
// swallowed; the next tick retries.
func pollOnce(ctx context.Context, app *App, q *queue.Queue) {
	tasks, err := app.Store.ListTasks(ctx)
	if err != nil {
		app.Logger.Error().Err(err).Msg("listing tasks failed")
		return
	}
	for _, t := range tasks {
		if t.Status != constants.TaskStatusPending {
			continue
		}
		if enqErr := q.Enqueue(t.ID); enqErr != nil && !stderrors.Is(enqErr, errors.ErrTaskInFlight) {
			app.Logger.Warn().Err(enqErr).Str("task_id", t.ID).Msg("enqueue failed")
		}
	}

	runs, err := app.Store.ListRuns(ctx)
	if err != nil {
		app.Logger.Error().Err(err).Msg("listing runs failed")
		return
	}
	for _, run := range runs {
		if run.GoalID == "" || run.Status == constants.RunStatusCompleted || run.Status == constants.RunStatusFailed {
			continue
		}
		next, done, advErr := app.Director.AdvanceGoal(ctx, run.GoalID)
		if advErr != nil {
			app.Logger.Warn().Err(advErr).Str("goal_id", run.GoalID).Msg("advance failed")
			continue
		}
		if done {
			app.Logger.Info().Str("goal_id", run.GoalID).Msg("goal complete")
		}
		if len(next) > 0 {
			app.Logger.Info().
				Str("goal_id", run.GoalID).
				Int("tasks", len(next)).
				Msg("phase advanced")
		}
	}
}
