package cron

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/dealtracker-backend/pkg/logger"
)

const (
	NotificationCleanupJobName = "notification-cleanup"

	defaultRetentionDays = 30
)

type NotificationCleanupJobParams struct {
	Logger        *logger.Logger
	DB            txRunner
	Repository    notificationPruner
	RetentionDays int
}

type notificationPruner interface {
	DeleteOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

// NewNotificationCleanupJob prunes notifications older than the retention window,
// read or not.
func NewNotificationCleanupJob(params NotificationCleanupJobParams) (*NotificationCleanupJob, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	days := params.RetentionDays
	if days <= 0 {
		days = defaultRetentionDays
	}
	return &NotificationCleanupJob{
		logg:      params.Logger,
		db:        params.DB,
		repo:      params.Repository,
		retention: time.Duration(days) * 24 * time.Hour,
		now:       time.Now,
	}, nil
}

type NotificationCleanupJob struct {
	logg      *logger.Logger
	db        txRunner
	repo      notificationPruner
	retention time.Duration
	now       func() time.Time
}

func (j *NotificationCleanupJob) Name() string { return NotificationCleanupJobName }

func (j *NotificationCleanupJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.retention)
	var deleted int64
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := j.repo.DeleteOlderThan(ctx, tx, cutoff)
		deleted = rows
		return err
	})
	if err != nil {
		return fmt.Errorf("prune notifications before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff,
		"rows_deleted": deleted,
	}), "notification cleanup complete")
	return nil
}
