// Package scheduler runs cron-scheduled pipeline templates through the
// director. Templates whose trigger parses to a cron spec (weekly,
// monthly, daily) fire automatically; manual templates never register.
package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/hiveworks/hive/internal/catalog"
	"github.com/hiveworks/hive/internal/constants"
	"github.com/hiveworks/hive/internal/domain"
	"github.com/hiveworks/hive/internal/errors"
	"github.com/hiveworks/hive/internal/eventbus"
	"github.com/hiveworks/hive/internal/pipeline"
)

// PipelineStarter is the consumed slice of the director.
type PipelineStarter interface {
	StartPipeline(ctx context.Context, templateName, description string, priority constants.Priority) (*domain.PipelineRun, []*domain.Task, error)
}

// Scheduler fires scheduled pipeline templates.
type Scheduler struct {
	cron    *cron.Cron
	starter PipelineStarter
	bus     *eventbus.Bus
	log     zerolog.Logger
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithEventBus gates schedule fires through the bus's cooldown windows.
func WithEventBus(bus *eventbus.Bus) Option {
	return func(s *Scheduler) { s.bus = bus }
}

// WithLogger sets the scheduler's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Scheduler) { s.log = log }
}

// New creates a scheduler dispatching to the given starter.
func New(starter PipelineStarter, opts ...Option) *Scheduler {
	s := &Scheduler{
		cron:    cron.New(),
		starter: starter,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register schedules one template on a cron spec. Specs are validated
// up front; a bad spec fails with ErrScheduleInvalid.
func (s *Scheduler) Register(templateName, spec, description string, priority constants.Priority) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return errors.Wrapf(errors.ErrScheduleInvalid, "template %s spec %q: %v", templateName, spec, err)
	}

	_, err := s.cron.AddFunc(spec, func() {
		s.fire(templateName, description, priority)
	})
	if err != nil {
		return errors.Wrapf(errors.ErrScheduleInvalid, "template %s: %v", templateName, err)
	}

	s.log.Info().Str("template", templateName).Str("spec", spec).Msg("schedule registered")
	return nil
}

// RegisterCatalog schedules every non-manual template in the catalog
// using its parsed trigger. Returns the number registered.
func (s *Scheduler) RegisterCatalog(cat catalog.Catalog) (int, error) {
	registered := 0
	for _, tmpl := range cat.Templates() {
		spec := pipeline.ParseTrigger(tmpl.Trigger)
		if spec == pipeline.ScheduleManual {
			continue
		}
		desc := "Scheduled run: " + tmpl.Name
		if err := s.Register(tmpl.Name, spec, desc, tmpl.DefaultPriority); err != nil {
			return registered, err
		}
		registered++
	}
	return registered, nil
}

func (s *Scheduler) fire(templateName, description string, priority constants.Priority) {
	eventType := "schedule." + templateName
	if s.bus != nil {
		if !s.bus.ShouldTrigger(eventType, "") {
			s.log.Debug().Str("template", templateName).Msg("schedule fire suppressed by cooldown")
			return
		}
		s.bus.RecordTrigger(eventType, "")
	}

	run, tasks, err := s.starter.StartPipeline(context.Background(), templateName, description, priority)
	if err != nil {
		s.log.Error().Err(err).Str("template", templateName).Msg("scheduled pipeline failed to start")
		return
	}
	s.log.Info().
		Str("template", templateName).
		Str("run_id", run.ID).
		Int("tasks", len(tasks)).
		Msg("scheduled pipeline started")
}

// Start begins firing schedules.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the cron loop and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
