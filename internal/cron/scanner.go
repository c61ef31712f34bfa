package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/dealtracker-backend/pkg/logger"
	"github.com/angelmondragon/dealtracker-backend/pkg/metrics"
)

const defaultScanInterval = 30 * time.Second

// ErrSchedulerStopped means the scan loop exited while its context was still live.
var ErrSchedulerStopped = errors.New("price alert scheduler stopped")

type ScannerParams struct {
	Logger       *logger.Logger
	DB           txRunner
	Store        priceAlertStore
	Lock         Lock
	Metrics      *metrics.PriceAlertMetrics
	CronMetrics  *metrics.CronJobMetrics
	Interval     time.Duration
	FetchTimeout time.Duration
	WriteTimeout time.Duration
}

// Scanner is a running price alert loop.
type Scanner struct {
	done chan struct{}
	err  error
}

// StartPriceAlertScanner arms the recurring scan and returns without waiting for
// the first tick. Canceling ctx stops the loop once any in-flight scan finishes.
func StartPriceAlertScanner(ctx context.Context, params ScannerParams) (*Scanner, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context required")
	}
	job, err := NewPriceAlertJob(PriceAlertJobParams{
		Logger:       params.Logger,
		DB:           params.DB,
		Store:        params.Store,
		Metrics:      params.Metrics,
		FetchTimeout: params.FetchTimeout,
		WriteTimeout: params.WriteTimeout,
	})
	if err != nil {
		return nil, err
	}
	lock := params.Lock
	if lock == nil {
		lock = NewLocalLock()
	}
	interval := params.Interval
	if interval <= 0 {
		interval = defaultScanInterval
	}
	svc, err := NewService(ServiceParams{
		Name:     PriceAlertJobName,
		Logger:   params.Logger,
		Registry: NewRegistry(job),
		Lock:     lock,
		Metrics:  params.CronMetrics,
		Interval: interval,
	})
	if err != nil {
		return nil, err
	}

	s := &Scanner{done: make(chan struct{})}
	go func() {
		defer close(s.done)
		s.err = runScanLoop(ctx, svc)
		if s.err != nil {
			params.Logger.Error(ctx, "price alert scanner stopped", s.err)
		}
	}()
	params.Logger.Info(params.Logger.WithField(ctx, "interval", interval.String()), "price alert scanner started")
	return s, nil
}

func runScanLoop(ctx context.Context, svc *Service) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", ErrSchedulerStopped, r)
		}
	}()
	runErr := svc.Run(ctx)
	if ctx.Err() != nil && errors.Is(runErr, ctx.Err()) {
		return nil
	}
	if runErr == nil {
		return ErrSchedulerStopped
	}
	return fmt.Errorf("%w: %v", ErrSchedulerStopped, runErr)
}

// Done is closed once the loop has exited.
func (s *Scanner) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the loop exits. It returns nil after a requested shutdown and
// an error wrapping ErrSchedulerStopped otherwise.
func (s *Scanner) Wait() error {
	<-s.done
	return s.err
}
