package scheduler

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiveworks/hive/internal/catalog"
	"github.com/hiveworks/hive/internal/constants"
	"github.com/hiveworks/hive/internal/domain"
	"github.com/hiveworks/hive/internal/errors"
)

type stubStarter struct {
	mu      sync.Mutex
	started []string
	err     error
}

func (s *stubStarter) StartPipeline(_ context.Context, templateName, _ string, _ constants.Priority) (*domain.PipelineRun, []*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, nil, s.err
	}
	s.started = append(s.started, templateName)
	return &domain.PipelineRun{ID: "run-1"}, nil, nil
}

func (s *stubStarter) names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.started...)
}

func TestRegister_ValidSpec(t *testing.T) {
	t.Parallel()

	s := New(&stubStarter{})
	require.NoError(t, s.Register("Content Engine", "0 9 * * 1", "weekly content run", constants.PriorityP2))
}

func TestRegister_InvalidSpec(t *testing.T) {
	t.Parallel()

	s := New(&stubStarter{})
	err := s.Register("Content Engine", "every tuesday", "weekly content run", constants.PriorityP2)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrScheduleInvalid)
	assert.Contains(t, err.Error(), "Content Engine")
}

func TestRegisterCatalog_SkipsManualTemplates(t *testing.T) {
	t.Parallel()

	cat := catalog.MustDefault()
	s := New(&stubStarter{})

	registered, err := s.RegisterCatalog(cat)
	require.NoError(t, err)

	// Content Engine is weekly and Growth Audit monthly; the other two
	// default templates are manual.
	assert.Equal(t, 2, registered)
}

func TestFire_StartsPipeline(t *testing.T) {
	t.Parallel()

	starter := &stubStarter{}
	s := New(starter)

	s.fire("Growth Audit", "Scheduled run: Growth Audit", constants.PriorityP2)
	assert.Equal(t, []string{"Growth Audit"}, starter.names())
}

func TestFire_StarterErrorIsSwallowed(t *testing.T) {
	t.Parallel()

	starter := &stubStarter{err: errors.ErrTemplateNotFound}
	s := New(starter)

	s.fire("Moonshot", "no such template", constants.PriorityP2)
	assert.Empty(t, starter.names())
}
