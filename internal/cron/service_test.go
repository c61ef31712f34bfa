package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/dealtracker-backend/pkg/logger"
	"github.com/angelmondragon/dealtracker-backend/pkg/metrics"
)

type countingJob struct {
	name string
	err  error
	runs atomic.Int32
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run(context.Context) error {
	j.runs.Add(1)
	return j.err
}

type panicJob struct{}

func (panicJob) Name() string              { return "panics" }
func (panicJob) Run(context.Context) error { panic("kaboom") }

type erroringLock struct{ err error }

func (l erroringLock) Acquire(context.Context) (bool, error) { return false, l.err }
func (erroringLock) Release(context.Context) error           { return nil }

func assertSeries(t *testing.T, reg *prometheus.Registry, name string, want int) {
	t.Helper()
	got, err := testutil.GatherAndCount(reg, name)
	require.NoError(t, err)
	assert.Equal(t, want, got, name)
}

func newTestService(t *testing.T, lock Lock, jobs ...Job) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Logger: logger.Nop(), Registry: NewRegistry(jobs...), Lock: lock})
	require.NoError(t, err)
	return svc
}

func TestRunCycleKeepsGoingAfterFailures(t *testing.T) {
	ok := &countingJob{name: "ok"}
	failing := &countingJob{name: "failing", err: errors.New("boom")}
	after := &countingJob{name: "after"}
	lock := NewLocalLock()
	svc := newTestService(t, lock, failing, panicJob{}, ok, after)

	err := svc.runCycle(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failing: boom")
	assert.Contains(t, err.Error(), "panics: panic: kaboom")
	assert.EqualValues(t, 1, ok.runs.Load())
	assert.EqualValues(t, 1, after.runs.Load())

	held, _ := lock.Acquire(context.Background())
	assert.True(t, held, "lock must be released after the cycle")
}

func TestRunCycleSkipsWhenLockHeld(t *testing.T) {
	reg := prometheus.NewRegistry()
	job := &countingJob{name: "guarded"}
	lock := NewLocalLock()
	_, _ = lock.Acquire(context.Background())

	svc, err := NewService(ServiceParams{
		Name:     "scanner",
		Logger:   logger.Nop(),
		Registry: NewRegistry(job),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(reg),
	})
	require.NoError(t, err)

	require.NoError(t, svc.runCycle(context.Background()))
	assert.Zero(t, job.runs.Load())

	assertSeries(t, reg, "dealtracker_cron_cycle_skipped_total", 1)
}

func TestRunCycleReportsLockErrors(t *testing.T) {
	job := &countingJob{name: "never"}
	svc := newTestService(t, erroringLock{err: errors.New("redis down")}, job)

	err := svc.runCycle(context.Background())
	assert.ErrorContains(t, err, "redis down")
	assert.Zero(t, job.runs.Load())
}

func TestRunCycleRecordsJobOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewCronJobMetrics(reg)
	svc, err := NewService(ServiceParams{
		Logger:   logger.Nop(),
		Registry: NewRegistry(&countingJob{name: "good"}, &countingJob{name: "bad", err: errors.New("x")}),
		Lock:     NewLocalLock(),
		Metrics:  m,
	})
	require.NoError(t, err)

	_ = svc.runCycle(context.Background())
	assertSeries(t, reg, "dealtracker_cron_job_runs_total", 2)
	assertSeries(t, reg, "dealtracker_cron_job_duration_seconds", 2)
	assertSeries(t, reg, "dealtracker_cron_job_last_success_timestamp_seconds", 1)
}

type blockingJob struct {
	started  chan struct{}
	release  chan struct{}
	finished chan error
}

func (b *blockingJob) Name() string { return "blocking" }

func (b *blockingJob) Run(ctx context.Context) error {
	close(b.started)
	<-b.release
	b.finished <- ctx.Err()
	return nil
}

func TestRunLetsInFlightCycleFinish(t *testing.T) {
	job := &blockingJob{started: make(chan struct{}), release: make(chan struct{}), finished: make(chan error, 1)}
	svc, err := NewService(ServiceParams{
		Logger:   logger.Nop(),
		Registry: NewRegistry(job),
		Lock:     NewLocalLock(),
		Interval: time.Hour,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	<-job.started
	cancel()
	select {
	case <-done:
		t.Fatal("Run returned before the in-flight cycle finished")
	case <-time.After(50 * time.Millisecond):
	}
	close(job.release)

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.NoError(t, <-job.finished, "in-flight job must not observe cancellation")
}

func TestRunRepeatsEveryInterval(t *testing.T) {
	job := &countingJob{name: "tick"}
	svc, err := NewService(ServiceParams{
		Logger:   logger.Nop(),
		Registry: NewRegistry(job),
		Lock:     NewLocalLock(),
		Interval: 5 * time.Millisecond,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	require.Eventually(t, func() bool { return job.runs.Load() >= 3 }, 2*time.Second, time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestNewServiceDefaults(t *testing.T) {
	_, err := NewService(ServiceParams{Lock: NewLocalLock()})
	assert.Error(t, err)
	_, err = NewService(ServiceParams{Logger: logger.Nop()})
	assert.Error(t, err)

	svc, err := NewService(ServiceParams{Logger: logger.Nop(), Lock: NewLocalLock()})
	require.NoError(t, err)
	assert.Equal(t, defaultInterval, svc.interval)
	assert.Equal(t, defaultServiceName, svc.name)
	assert.Empty(t, svc.jobs.Names())
}
