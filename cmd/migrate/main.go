package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	schema "github.com/narwhalmedia/wrongopinions/internal/infrastructure/persistence/gorm"
	"github.com/narwhalmedia/wrongopinions/pkg/config"
	"github.com/narwhalmedia/wrongopinions/pkg/database"
	"github.com/narwhalmedia/wrongopinions/pkg/logger"
)

// migrateConfig is the subset of the service configuration migrations need,
// so the tool runs without auth or upstream settings.
type migrateConfig struct {
	Database config.DatabaseConfig `koanf:"database"`
}

func (c *migrateConfig) Validate() error {
	switch c.Database.Driver {
	case config.DriverSQLite, config.DriverPostgres:
		return nil
	default:
		return fmt.Errorf("unsupported database driver: %q", c.Database.Driver)
	}
}

func main() {
	var debug bool

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Apply and inspect schema migrations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "Log every SQL statement")

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(debug, func(m *database.Migrator) error {
					pending, err := m.GetPendingMigrations()
					if err != nil {
						return err
					}
					if len(pending) == 0 {
						fmt.Fprintln(cmd.OutOrStdout(), "No pending migrations.")
						return nil
					}
					if err := m.Migrate(); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s).\n", len(pending))
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show applied and pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(debug, func(m *database.Migrator) error {
					applied, err := m.Applied()
					if err != nil {
						return err
					}
					pending, err := m.GetPendingMigrations()
					if err != nil {
						return err
					}

					w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
					fmt.Fprintln(w, "VERSION\tNAME\tAPPLIED AT")
					for _, migration := range applied {
						fmt.Fprintf(w, "%s\t%s\t%s\n", migration.Version, migration.Name, migration.AppliedAt.Format("2006-01-02 15:04:05"))
					}
					for _, migration := range pending {
						fmt.Fprintf(w, "%s\t%s\tpending\n", migration.Version, migration.Name)
					}
					return w.Flush()
				})
			},
		},
		&cobra.Command{
			Use:   "pending",
			Short: "List migrations that would be applied",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(debug, func(m *database.Migrator) error {
					pending, err := m.GetPendingMigrations()
					if err != nil {
						return err
					}
					if len(pending) == 0 {
						fmt.Fprintln(cmd.OutOrStdout(), "No pending migrations.")
						return nil
					}
					for _, migration := range pending {
						fmt.Fprintf(cmd.OutOrStdout(), "%s | %s\n", migration.Version, migration.Name)
					}
					return nil
				})
			},
		},
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func withMigrator(debug bool, fn func(*database.Migrator) error) error {
	cfg := &migrateConfig{Database: config.GetDefaults().Database}
	if err := config.NewManager(config.DefaultServiceName).LoadConfig(cfg); err != nil {
		return err
	}

	zapLogger, err := logger.NewZapLogger(true, "info")
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	db, cleanup, err := database.Open(cfg.Database, zapLogger.Zap(), debug)
	if err != nil {
		return err
	}
	defer cleanup()

	return fn(database.NewMigrator(db, schema.Migrations(), zapLogger))
}
