package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/angelmondragon/dealtracker-backend/pkg/config"
	"github.com/angelmondragon/dealtracker-backend/pkg/db"
	"github.com/angelmondragon/dealtracker-backend/pkg/logger"
)

// app holds the lazily bootstrapped resources shared by subcommands.
type app struct {
	cfg  *config.Config
	logg *logger.Logger
	db   *db.Client
}

func main() {
	a := &app{logg: logger.New(logger.Options{ServiceName: "admin"})}
	defer a.close()

	if err := newRootCmd(a).Execute(); err != nil {
		a.close()
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Operational tooling for the deal tracker",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			_ = godotenv.Load()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logg = logger.New(logger.Options{
				ServiceName: "admin",
				Level:       logger.ParseLevel(cfg.App.LogLevel),
				WarnStack:   cfg.App.LogWarnStack,
			})
			return nil
		},
	}
	root.AddCommand(
		newMigrateCmd(a),
		newSeedCmd(a),
		newDealsCmd(a),
		newUsersCmd(a),
		newAlertsCmd(a),
	)
	return root
}

// database connects on first use so commands like "migrate create" stay offline.
func (a *app) database(ctx context.Context) (*db.Client, error) {
	if a.db != nil {
		return a.db, nil
	}
	client, err := db.New(ctx, a.cfg.DB, a.logg)
	if err != nil {
		return nil, fmt.Errorf("bootstrap database: %w", err)
	}
	a.db = client
	return client, nil
}

func (a *app) close() {
	if a.db == nil {
		return
	}
	if err := a.db.Close(); err != nil {
		a.logg.Error(context.Background(), "error closing database", err)
	}
	a.db = nil
}
