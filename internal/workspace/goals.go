package workspace

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hiveworks/hive/internal/constants"
	"github.com/hiveworks/hive/internal/ctxutil"
	"github.com/hiveworks/hive/internal/domain"
	hiveerrors "github.com/hiveworks/hive/internal/errors"
)

// SaveGoal writes or overwrites a goal document.
func (s *FileStore) SaveGoal(ctx context.Context, g *domain.Goal) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if err := validateID(g.ID); err != nil {
		return fmt.Errorf("saving goal: %w", err)
	}
	return s.writeJSON(ctx, filepath.Join(constants.GoalsDir, g.ID+".json"), g)
}

// ReadGoal loads a goal by id.
func (s *FileStore) ReadGoal(ctx context.Context, id string) (*domain.Goal, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id); err != nil {
		return nil, fmt.Errorf("reading goal: %w", err)
	}
	var g domain.Goal
	if err := s.readJSON(filepath.Join(constants.GoalsDir, id+".json"), &g, hiveerrors.ErrGoalNotFound); err != nil {
		return nil, err
	}
	return &g, nil
}

// ListGoals loads every stored goal.
func (s *FileStore) ListGoals(ctx context.Context) ([]*domain.Goal, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}
	paths, err := s.jsonFiles(constants.GoalsDir)
	if err != nil {
		return nil, err
	}
	goals := make([]*domain.Goal, 0, len(paths))
	for _, p := range paths {
		var g domain.Goal
		if err := s.readJSONAbs(p, &g); err != nil {
			return nil, err
		}
		goals = append(goals, &g)
	}
	return goals, nil
}

// SavePlan writes a goal's plan document next to the goal.
func (s *FileStore) SavePlan(ctx context.Context, plan *domain.GoalPlan) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if err := validateID(plan.GoalID); err != nil {
		return fmt.Errorf("saving plan: %w", err)
	}
	return s.writeJSON(ctx, filepath.Join(constants.GoalsDir, plan.GoalID+".plan.json"), plan)
}

// ReadPlan loads a goal's plan document.
func (s *FileStore) ReadPlan(ctx context.Context, goalID string) (*domain.GoalPlan, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}
	if err := validateID(goalID); err != nil {
		return nil, fmt.Errorf("reading plan: %w", err)
	}
	var plan domain.GoalPlan
	rel := filepath.Join(constants.GoalsDir, goalID+".plan.json")
	if err := s.readJSON(rel, &plan, hiveerrors.ErrGoalNotFound); err != nil {
		return nil, err
	}
	return &plan, nil
}

// SaveRun writes or overwrites a pipeline run document.
func (s *FileStore) SaveRun(ctx context.Context, run *domain.PipelineRun) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if err := validateID(run.ID); err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	return s.writeJSON(ctx, filepath.Join(constants.PipelinesDir, run.ID+".json"), run)
}

// ReadRun loads a pipeline run by id.
func (s *FileStore) ReadRun(ctx context.Context, id string) (*domain.PipelineRun, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id); err != nil {
		return nil, fmt.Errorf("reading run: %w", err)
	}
	var run domain.PipelineRun
	rel := filepath.Join(constants.PipelinesDir, id+".json")
	if err := s.readJSON(rel, &run, hiveerrors.ErrGoalNotFound); err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns loads every stored pipeline run.
func (s *FileStore) ListRuns(ctx context.Context) ([]*domain.PipelineRun, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}
	paths, err := s.jsonFiles(constants.PipelinesDir)
	if err != nil {
		return nil, err
	}
	runs := make([]*domain.PipelineRun, 0, len(paths))
	for _, p := range paths {
		var run domain.PipelineRun
		if err := s.readJSONAbs(p, &run); err != nil {
			return nil, err
		}
		runs = append(runs, &run)
	}
	return runs, nil
}

// AppendLearning appends one entry to the learning journal, a JSON
// lines file, with the journal lock held.
func (s *FileStore) AppendLearning(ctx context.Context, l *domain.Learning) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	path := filepath.Join(s.baseDir, constants.LearningsFile)
	if err := os.MkdirAll(s.baseDir, dirPerm); err != nil {
		return fmt.Errorf("creating store root: %w", err)
	}

	lock, err := s.acquireLock(ctx, path)
	if err != nil {
		return err
	}
	defer func() { _ = releaseLock(lock) }()

	data, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("encoding learning: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, filePerm) // #nosec G304 -- fixed journal path under baseDir
	if err != nil {
		return fmt.Errorf("opening learning journal: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("appending learning: %w", err)
	}
	return nil
}

// ReadLearnings loads the full learning journal in append order.
// Undecodable lines are skipped; the journal is advisory, not
// authoritative state.
func (s *FileStore) ReadLearnings(ctx context.Context) ([]domain.Learning, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	path := filepath.Join(s.baseDir, constants.LearningsFile)
	f, err := os.Open(path) // #nosec G304 -- fixed journal path under baseDir
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening learning journal: %w", err)
	}
	defer func() { _ = f.Close() }()

	var learnings []domain.Learning
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var l domain.Learning
		if err := json.Unmarshal(line, &l); err != nil {
			continue
		}
		learnings = append(learnings, l)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning learning journal: %w", err)
	}
	return learnings, nil
}
