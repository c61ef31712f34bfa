package cron

import (
	"context"

	"gorm.io/gorm"
)

// txRunner is the transactional surface of db.Client that jobs depend on.
type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}
