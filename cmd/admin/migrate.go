package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/angelmondragon/dealtracker-backend/pkg/migrate"
)

func newMigrateCmd(a *app) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage goose schema migrations",
	}
	cmd.PersistentFlags().StringVar(&dir, "dir", migrate.DefaultDir, "migrations directory; the default reads the embedded set")

	withMigrator := func(c *cobra.Command, fn func(context.Context, *migrate.Migrator) error) error {
		client, err := a.database(c.Context())
		if err != nil {
			return err
		}
		sqlDB, err := client.DB().DB()
		if err != nil {
			return fmt.Errorf("extracting sql.DB: %w", err)
		}
		m, err := migrate.New(sqlDB, migrate.FromDir(dir), a.logg)
		if err != nil {
			return err
		}
		defer m.Close()
		ctx := a.logg.WithFields(c.Context(), map[string]any{"cmd": c.Name(), "dir": dir, "env": a.cfg.App.Env})
		return fn(ctx, m)
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(c *cobra.Command, _ []string) error {
				return withMigrator(c, func(ctx context.Context, m *migrate.Migrator) error { return m.Up(ctx) })
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the latest migration",
			Args:  cobra.NoArgs,
			RunE: func(c *cobra.Command, _ []string) error {
				return withMigrator(c, func(ctx context.Context, m *migrate.Migrator) error { return m.Down(ctx) })
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "List migrations and when they were applied",
			Args:  cobra.NoArgs,
			RunE: func(c *cobra.Command, _ []string) error {
				return withMigrator(c, func(ctx context.Context, m *migrate.Migrator) error {
					statuses, err := m.Status(ctx)
					if err != nil {
						return err
					}
					tw := tabwriter.NewWriter(c.OutOrStdout(), 0, 4, 2, ' ', 0)
					fmt.Fprintln(tw, "VERSION\tSTATE\tAPPLIED AT\tFILE")
					for _, s := range statuses {
						applied := "-"
						if !s.AppliedAt.IsZero() {
							applied = s.AppliedAt.UTC().Format("2006-01-02 15:04:05")
						}
						fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", s.Source.Version, s.State, applied, s.Source.Path)
					}
					return tw.Flush()
				})
			},
		},
		&cobra.Command{
			Use:   "version <YYYYMMDDHHMMSS>",
			Short: "Migrate up or down to an exact version",
			Args:  cobra.ExactArgs(1),
			RunE: func(c *cobra.Command, args []string) error {
				return withMigrator(c, func(ctx context.Context, m *migrate.Migrator) error { return m.To(ctx, args[0]) })
			},
		},
		&cobra.Command{
			Use:   "create <name>",
			Short: "Create a timestamped SQL migration on disk",
			Args:  cobra.ExactArgs(1),
			RunE: func(c *cobra.Command, args []string) error {
				path, err := migrate.CreateSQLMigration(dir, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(c.OutOrStdout(), "created migration:", path)
				return nil
			},
		},
		&cobra.Command{
			Use:   "validate",
			Short: "Check migration files without touching the database",
			Args:  cobra.NoArgs,
			RunE: func(c *cobra.Command, _ []string) error {
				if err := migrate.Validate(migrate.FromDir(dir)); err != nil {
					return err
				}
				fmt.Fprintln(c.OutOrStdout(), "migration validation passed")
				return nil
			},
		},
	)
	return cmd
}
