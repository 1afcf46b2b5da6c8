package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ratiba-events/server/internal/storage/postgres"
)

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
		Long: `Apply or roll back database migrations with golang-migrate.

Examples:
  ratiba migrate up
  ratiba migrate down --steps 1
  ratiba migrate status`,
	}
	cmd.PersistentFlags().StringVar(&path, "path", "", "migrations directory (default: config database.migrations_path)")

	migrationsPath := func(configured string) string {
		if path != "" {
			return path
		}
		return configured
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if err := postgres.MigrateUp(cfg.Database.URL, migrationsPath(cfg.Database.MigrationsPath)); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps <= 0 {
				return fmt.Errorf("--steps must be greater than zero")
			}
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if err := postgres.MigrateDown(cfg.Database.URL, migrationsPath(cfg.Database.MigrationsPath), steps); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rolled back %d migration(s)\n", steps)
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	status := &cobra.Command{
		Use:   "status",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			version, dirty, err := postgres.MigrationVersion(cfg.Database.URL, migrationsPath(cfg.Database.MigrationsPath))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version: %d\ndirty:   %t\n", version, dirty)
			return nil
		},
	}

	cmd.AddCommand(up, down, status)
	return cmd
}
