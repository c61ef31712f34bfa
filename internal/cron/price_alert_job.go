package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/angelmondragon/dealtracker-backend/internal/pricealerts"
	"github.com/angelmondragon/dealtracker-backend/pkg/logger"
	"github.com/angelmondragon/dealtracker-backend/pkg/metrics"
)

const (
	PriceAlertJobName = "price-alerts"

	defaultFetchTimeout = 10 * time.Second
	defaultWriteTimeout = 5 * time.Second
)

type priceAlertStore interface {
	FetchAlertCandidates(ctx context.Context) ([]pricealerts.Candidate, error)
	UpdateSavedPrice(ctx context.Context, tx *gorm.DB, wishlistItemID uuid.UUID, expected, next decimal.Decimal) (bool, error)
	CreateNotification(ctx context.Context, tx *gorm.DB, userID uuid.UUID, title, message string) error
}

type PriceAlertJobParams struct {
	Logger       *logger.Logger
	DB           txRunner
	Store        priceAlertStore
	Metrics      *metrics.PriceAlertMetrics
	FetchTimeout time.Duration
	WriteTimeout time.Duration
}

// PriceAlertSummary reports what one scan did.
type PriceAlertSummary struct {
	Scanned    int
	Alerts     int
	NoBaseline int
	Unchanged  int
	Stale      int
	Failed     int
}

// PriceAlertJob compares every alert-enabled wishlist entry against its deal's
// current price and notifies the owner when the price fell below the saved one.
type PriceAlertJob struct {
	logg         *logger.Logger
	db           txRunner
	store        priceAlertStore
	metrics      *metrics.PriceAlertMetrics
	fetchTimeout time.Duration
	writeTimeout time.Duration
}

func NewPriceAlertJob(params PriceAlertJobParams) (*PriceAlertJob, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("price alert store required")
	}
	fetchTimeout := params.FetchTimeout
	if fetchTimeout <= 0 {
		fetchTimeout = defaultFetchTimeout
	}
	writeTimeout := params.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}
	return &PriceAlertJob{
		logg:         params.Logger,
		db:           params.DB,
		store:        params.Store,
		metrics:      params.Metrics,
		fetchTimeout: fetchTimeout,
		writeTimeout: writeTimeout,
	}, nil
}

func (j *PriceAlertJob) Name() string { return PriceAlertJobName }

func (j *PriceAlertJob) Run(ctx context.Context) error {
	_, err := j.Scan(ctx)
	return err
}

// Scan runs one pass. A failed fetch aborts the pass; a failed entry is logged,
// counted, and folded into the returned error while the remaining entries proceed.
func (j *PriceAlertJob) Scan(ctx context.Context) (PriceAlertSummary, error) {
	var summary PriceAlertSummary

	fetchCtx, cancel := context.WithTimeout(ctx, j.fetchTimeout)
	candidates, err := j.store.FetchAlertCandidates(fetchCtx)
	cancel()
	if err != nil {
		j.metrics.IncFetchFailure()
		return summary, fmt.Errorf("fetch alert candidates: %w", err)
	}
	summary.Scanned = len(candidates)
	j.metrics.AddCandidates(len(candidates))

	var errs error
	for _, candidate := range candidates {
		entryCtx := j.logg.WithFields(ctx, map[string]any{
			"wishlist_item_id": candidate.WishlistItemID.String(),
			"deal_id":          candidate.DealID.String(),
			"user_id":          candidate.UserID.String(),
		})

		switch pricealerts.Evaluate(candidate) {
		case pricealerts.DecisionSkipNoBaseline:
			summary.NoBaseline++
			continue
		case pricealerts.DecisionNoDrop:
			summary.Unchanged++
			continue
		}

		applied, err := j.applyDrop(entryCtx, candidate)
		if err != nil {
			summary.Failed++
			j.metrics.IncEntryFailure()
			j.logg.Error(entryCtx, "price alert entry failed", err)
			errs = multierr.Append(errs, fmt.Errorf("wishlist item %s: %w", candidate.WishlistItemID, err))
			continue
		}
		if !applied {
			summary.Stale++
			j.metrics.IncStaleSkip()
			j.logg.Debug(entryCtx, "wishlist entry changed since fetch; skipping")
			continue
		}
		summary.Alerts++
		j.metrics.IncAlert()
		j.logg.Info(j.logg.WithFields(entryCtx, map[string]any{
			"saved_price":   candidate.SavedPrice.Decimal.StringFixed(2),
			"current_price": candidate.CurrentPrice.StringFixed(2),
		}), "price drop alert created")
	}

	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"scanned":     summary.Scanned,
		"alerts":      summary.Alerts,
		"no_baseline": summary.NoBaseline,
		"unchanged":   summary.Unchanged,
		"stale":       summary.Stale,
		"failed":      summary.Failed,
	}), "price alert scan complete")
	return summary, errs
}

// applyDrop rebases the saved price and inserts the notification atomically. The
// rebase is conditional on the fetched baseline, so a concurrent edit or a second
// scanner leaves the row untouched and no notification is written.
func (j *PriceAlertJob) applyDrop(ctx context.Context, c pricealerts.Candidate) (bool, error) {
	writeCtx, cancel := context.WithTimeout(ctx, j.writeTimeout)
	defer cancel()

	var applied bool
	err := j.db.WithTx(writeCtx, func(tx *gorm.DB) error {
		ok, err := j.store.UpdateSavedPrice(writeCtx, tx, c.WishlistItemID, c.SavedPrice.Decimal, c.CurrentPrice)
		if err != nil {
			return fmt.Errorf("rebase saved price: %w", err)
		}
		if !ok {
			return nil
		}
		message := pricealerts.AlertMessage(c.DealTitle, c.CurrentPrice, c.SavedPrice.Decimal)
		if err := j.store.CreateNotification(writeCtx, tx, c.UserID, pricealerts.AlertTitle, message); err != nil {
			return fmt.Errorf("create notification: %w", err)
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}
