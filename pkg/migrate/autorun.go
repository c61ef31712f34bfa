package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/dealtracker-backend/pkg/config"
	"github.com/angelmondragon/dealtracker-backend/pkg/db"
	"github.com/angelmondragon/dealtracker-backend/pkg/logger"
)

// MaybeRunDev applies the embedded migrations at boot in dev when auto-migrate is on.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}
	migrator, err := New(sqlDB, nil, logg)
	if err != nil {
		return err
	}
	defer migrator.Close()

	ctx = logg.WithField(ctx, "env", cfg.App.Env)
	logg.Info(ctx, "migrate.autorun.start")
	if err := migrator.Up(ctx); err != nil {
		return err
	}
	logg.Info(ctx, "migrate.autorun.done")
	return nil
}
