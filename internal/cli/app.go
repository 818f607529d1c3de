package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/hiveworks/hive/internal/ai"
	"github.com/hiveworks/hive/internal/budget"
	"github.com/hiveworks/hive/internal/catalog"
	"github.com/hiveworks/hive/internal/config"
	"github.com/hiveworks/hive/internal/constants"
	"github.com/hiveworks/hive/internal/director"
	"github.com/hiveworks/hive/internal/domain"
	"github.com/hiveworks/hive/internal/humanreview"
	"github.com/hiveworks/hive/internal/logging"
	"github.com/hiveworks/hive/internal/quality"
	"github.com/hiveworks/hive/internal/review"
	"github.com/hiveworks/hive/internal/workspace"
)

// App wires the collaborators a command needs from loaded
// configuration. Construction is cheap; nothing connects to the
// network until a model call happens.
type App struct {
	Config   *config.Config
	Store    *workspace.FileStore
	Catalog  catalog.Catalog
	Budget   *budget.Engine
	Reviews  *review.Engine
	Human    *humanreview.Manager
	Director *director.Director
	Logger   zerolog.Logger

	// Model is nil when no API key is configured; review and scoring
	// degrade to structural evaluation, and serve refuses to start.
	Model *ai.Client

	logCloser io.Closer
}

// newApp loads configuration and assembles the application. The
// workspace flag wins over the configured base directory.
func newApp(flags *GlobalFlags) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	baseDir := cfg.Workspace.BaseDir
	if flags.Workspace != "" {
		baseDir = flags.Workspace
	}

	store, err := workspace.NewFileStore(baseDir)
	if err != nil {
		return nil, err
	}

	logger, logCloser, err := buildLogger(cfg, flags, store.BaseDir())
	if err != nil {
		return nil, err
	}

	cat, err := loadCatalog(cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:    cfg,
		Store:     store,
		Catalog:   cat,
		Budget:    budget.NewEngine(cfg.Budget.TotalUSD),
		Logger:    logger,
		logCloser: logCloser,
	}

	reviewOpts := []review.Option{review.WithLogger(logger)}
	if key := os.Getenv(cfg.AI.APIKeyEnvVar); key != "" {
		model, clientErr := ai.NewClient(ai.Config{
			APIKey:    key,
			Timeout:   cfg.AI.Timeout,
			MaxTokens: cfg.AI.MaxTokens,
			Logger:    logger,
		})
		if clientErr != nil {
			app.Close()
			return nil, clientErr
		}
		app.Model = model
		scorer := quality.NewScorer(quality.WithModelClient(model), quality.WithLogger(logger))
		reviewOpts = append(reviewOpts,
			review.WithModelClient(model),
			review.WithScorer(scorer),
		)
	} else {
		reviewOpts = append(reviewOpts, review.WithScorer(quality.NewScorer(quality.WithLogger(logger))))
	}
	app.Reviews = review.New(reviewOpts...)

	app.Human = humanreview.New(store, humanreview.WithLogger(logger))

	dir, err := director.New(director.Config{
		Store:    store,
		Catalog:  cat,
		Reviews:  app.Reviews,
		Human:    app.Human,
		BudgetFn: app.BudgetState,
		Logger:   logger,
	})
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Director = dir

	return app, nil
}

// Close releases the log file writer, if any.
func (a *App) Close() {
	if a.logCloser != nil {
		_ = a.logCloser.Close()
	}
}

// BudgetState derives the current budget state from the spend ledger.
// A ledger read failure degrades to zero spend rather than blocking
// the decision path.
func (a *App) BudgetState() domain.BudgetState {
	month := workspace.SpendMonth(time.Now())
	spent, err := a.Store.Spend(context.Background(), month)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("spend ledger unavailable, assuming zero spend")
		spent = 0
	}
	return a.Budget.ComputeBudgetState(spent)
}

// RecordSpend adds a cost to the current month's ledger.
func (a *App) RecordSpend(ctx context.Context, amount float64) {
	if amount <= 0 {
		return
	}
	month := workspace.SpendMonth(time.Now())
	if _, err := a.Store.AddSpend(ctx, month, amount); err != nil {
		a.Logger.Error().Err(err).Float64("amount", amount).Msg("recording spend failed")
	}
}

// buildLogger assembles the console/file logger. Flags shift the level:
// verbose forces debug, quiet forces warn. An empty configured file
// path defaults to <workspace>/logs/hive.log.
func buildLogger(cfg *config.Config, flags *GlobalFlags, baseDir string) (zerolog.Logger, io.Closer, error) {
	level := cfg.Logging.Level
	switch {
	case flags.Verbose:
		level = "debug"
	case flags.Quiet:
		level = "warn"
	}

	file := cfg.Logging.File
	if file == "" {
		file = filepath.Join(baseDir, constants.LogsDir, constants.CLILogFileName)
	}

	return logging.New(logging.Options{
		Level:      level,
		File:       file,
		Console:    cfg.Logging.Console,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
}

// loadCatalog resolves the skill catalog: the configured YAML file when
// set, otherwise the compiled-in default.
func loadCatalog(cfg *config.Config) (catalog.Catalog, error) {
	if cfg.Workspace.CatalogPath != "" {
		return catalog.Load(cfg.Workspace.CatalogPath)
	}
	return catalog.Default()
}
