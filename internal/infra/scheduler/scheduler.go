package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is a named task run on a cron spec. Timeout bounds a single run; zero
// means one minute.
type Job struct {
	Name    string
	Spec    string
	Timeout time.Duration
	Run     func(ctx context.Context) error
}

// Scheduler runs jobs in UTC. Overlapping runs of the same job are skipped and
// panics are recovered.
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
	log    *zerolog.Logger
}

func New(logger *zerolog.Logger) *Scheduler {
	l := logger.With().Str("component", "Scheduler").Logger()
	cl := cronLogger{log: &l}
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{cron: c, ctx: ctx, cancel: cancel, log: &l}
}

// Add registers job. It fails on an invalid spec.
func (s *Scheduler) Add(job Job) error {
	if job.Run == nil {
		return fmt.Errorf("job %s: nil run func", job.Name)
	}
	if _, err := s.cron.AddFunc(job.Spec, s.wrap(job)); err != nil {
		return fmt.Errorf("job %s: %w", job.Name, err)
	}
	s.log.Info().Str("job", job.Name).Str("spec", job.Spec).Msg("job scheduled")
	return nil
}

func (s *Scheduler) wrap(job Job) func() {
	timeout := job.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	return func() {
		ctx, cancel := context.WithTimeout(s.ctx, timeout)
		defer cancel()
		start := time.Now()
		if err := job.Run(ctx); err != nil {
			s.log.Error().Err(err).Str("job", job.Name).Msg("job failed")
			return
		}
		s.log.Debug().Str("job", job.Name).Dur("duration", time.Since(start)).Msg("job done")
	}
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop cancels running jobs' contexts and waits for them until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	s.cancel()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler stop: %w", ctx.Err())
	}
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	log *zerolog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
