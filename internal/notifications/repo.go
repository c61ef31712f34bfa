package notifications

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/dealtracker-backend/pkg/db/models"
	"github.com/angelmondragon/dealtracker-backend/pkg/pagination"
)

const DefaultListLimit = 20

// Query selects one page of a user's notifications.
type Query struct {
	UserID     uuid.UUID
	Limit      int
	Cursor     *pagination.Cursor
	UnreadOnly bool
}

// Repository persists notifications through gorm.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a copy bound to tx; nil keeps the current handle.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, n *models.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *Repository) owned(ctx context.Context, userID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID)
}

// Page returns up to q.Limit+1 rows so the caller can tell whether another page exists.
func (r *Repository) Page(ctx context.Context, q Query) ([]models.Notification, error) {
	query := r.owned(ctx, q.UserID)
	if q.UnreadOnly {
		query = query.Where("is_read = ?", false)
	}
	var rows []models.Notification
	err := query.
		Scopes(pagination.Keyset(q.Cursor)).
		Limit(pagination.LimitWithBuffer(q.Limit, DefaultListLimit)).
		Find(&rows).Error
	return rows, err
}

func (r *Repository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := r.owned(ctx, userID).Where("is_read = ?", false).Count(&n).Error
	return n, err
}

// MarkRead flags one notification read. found is false when the user does not own it;
// an already-read notification is found and left untouched.
func (r *Repository) MarkRead(ctx context.Context, userID, notificationID uuid.UUID, now time.Time) (found bool, err error) {
	var current models.Notification
	err = r.owned(ctx, userID).Select("id", "is_read").Where("id = ?", notificationID).Take(&current).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return false, nil
	case err != nil:
		return false, err
	case current.IsRead:
		return true, nil
	}
	err = r.owned(ctx, userID).
		Where("id = ? AND is_read = ?", notificationID, false).
		Updates(map[string]any{"is_read": true, "read_at": now}).Error
	return err == nil, err
}

func (r *Repository) MarkAllRead(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
	res := r.owned(ctx, userID).
		Where("is_read = ?", false).
		Updates(map[string]any{"is_read": true, "read_at": now})
	return res.RowsAffected, res.Error
}

// DeleteOlderThan removes notifications created before cutoff, read or not.
func (r *Repository) DeleteOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	res := r.WithTx(tx).db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}
