package cron

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"go.uber.org/multierr"

	"github.com/angelmondragon/dealtracker-backend/pkg/logger"
	"github.com/angelmondragon/dealtracker-backend/pkg/metrics"
)

const (
	defaultInterval    = 24 * time.Hour
	defaultServiceName = "cron"
)

// ServiceParams configure the cron service.
type ServiceParams struct {
	Name     string
	Logger   *logger.Logger
	Registry *Registry
	Lock     Lock
	Metrics  *metrics.CronJobMetrics
	Interval time.Duration
}

// Service runs every registered job once per interval. Cycles execute on the
// caller's goroutine, so a slow cycle swallows ticks rather than overlapping.
type Service struct {
	name     string
	logg     *logger.Logger
	jobs     *Registry
	lock     Lock
	metrics  *metrics.CronJobMetrics
	interval time.Duration
}

func NewService(params ServiceParams) (*Service, error) {
	switch {
	case params.Logger == nil:
		return nil, errors.New("cron: logger required")
	case params.Lock == nil:
		return nil, errors.New("cron: lock required")
	}
	s := &Service{
		name:     params.Name,
		logg:     params.Logger,
		jobs:     params.Registry,
		lock:     params.Lock,
		metrics:  params.Metrics,
		interval: params.Interval,
	}
	if s.name == "" {
		s.name = defaultServiceName
	}
	if s.jobs == nil {
		s.jobs = NewRegistry()
	}
	if s.interval <= 0 {
		s.interval = defaultInterval
	}
	return s, nil
}

// Run starts with an immediate cycle and repeats every interval until ctx ends,
// returning ctx.Err(). Cancellation never interrupts a cycle already running.
func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = s.logg.WithField(ctx, "cron_service", s.name)
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"jobs":     s.jobs.Names(),
		"interval": s.interval.String(),
	}), "cron service started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		s.cycle(ctx)
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "cron service stopping")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *Service) cycle(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := s.runCycle(context.WithoutCancel(ctx)); err != nil {
		s.logg.Error(ctx, "cron cycle finished with errors", err)
	}
}

// runCycle executes each job under the lock. One failing job does not stop the
// ones after it; their errors are combined.
func (s *Service) runCycle(ctx context.Context) error {
	held, err := s.lock.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !held {
		s.logg.Info(ctx, "cycle skipped, lock held elsewhere")
		s.metrics.IncSkipped(s.name)
		return nil
	}

	var errs error
	for _, job := range s.jobs.Jobs() {
		if jobErr := s.runJob(ctx, job); jobErr != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", job.Name(), jobErr))
		}
	}
	if err := s.lock.Release(ctx); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("release lock: %w", err))
	}
	return errs
}

func (s *Service) runJob(ctx context.Context, job Job) error {
	ctx = s.logg.WithFields(ctx, map[string]any{"job": job.Name(), "event": "cron.job"})
	started := time.Now()
	err := runRecovering(ctx, job)
	elapsed := time.Since(started)

	s.metrics.ObserveDuration(job.Name(), elapsed)
	ctx = s.logg.WithField(ctx, "duration_ms", elapsed.Milliseconds())
	if err != nil {
		s.metrics.IncFailure(job.Name())
		s.logg.Warn(ctx, "job failed")
		return err
	}
	s.metrics.IncSuccess(job.Name())
	s.logg.Debug(ctx, "job finished")
	return nil
}

func runRecovering(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()
	return job.Run(ctx)
}
