package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/dealtracker-backend/internal/cron"
)

type countingScanner struct {
	calls   int
	summary cron.PriceAlertSummary
	err     error
}

func (s *countingScanner) Scan(context.Context) (cron.PriceAlertSummary, error) {
	s.calls++
	return s.summary, s.err
}

func TestScanOnceSkipsWhenLockHeld(t *testing.T) {
	lock := cron.NewLocalLock()
	won, err := lock.Acquire(context.Background())
	require.NoError(t, err)
	require.True(t, won)

	job := &countingScanner{}
	var out bytes.Buffer
	require.NoError(t, scanOnce(context.Background(), lock, job, &out))
	assert.Zero(t, job.calls)
	assert.Contains(t, out.String(), "skipped")
}

func TestScanOnceReleasesLockAfterScan(t *testing.T) {
	lock := cron.NewLocalLock()
	job := &countingScanner{summary: cron.PriceAlertSummary{Scanned: 3, Alerts: 1}, err: errors.New("one entry failed")}

	var out bytes.Buffer
	err := scanOnce(context.Background(), lock, job, &out)
	assert.EqualError(t, err, "one entry failed")
	assert.Equal(t, 1, job.calls)
	assert.Contains(t, out.String(), "scanned=3 alerts=1")

	won, err := lock.Acquire(context.Background())
	require.NoError(t, err)
	assert.True(t, won, "lock is free again after the scan")
}

func TestScanOnceWithoutLock(t *testing.T) {
	job := &countingScanner{}
	require.NoError(t, scanOnce(context.Background(), nil, job, &bytes.Buffer{}))
	assert.Equal(t, 1, job.calls)
}
