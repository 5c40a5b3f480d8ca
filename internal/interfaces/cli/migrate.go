package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/followup-compliance/internal/bootstrap"
	"github.com/turtacn/followup-compliance/internal/infrastructure/database/postgres"
	"github.com/turtacn/followup-compliance/pkg/errors"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, func(m *postgres.Migrator) error {
				if err := m.Down(steps); err != nil {
					return err
				}
				PrintSuccess(cmd, fmt.Sprintf("rolled back %d migration(s)", steps))
				return nil
			})
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(cmd, func(m *postgres.Migrator) error {
					if err := m.Up(); err != nil {
						return err
					}
					PrintSuccess(cmd, "schema is up to date")
					return nil
				})
			},
		},
		down,
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(cmd, func(m *postgres.Migrator) error {
					v, dirty, err := m.Version()
					if err != nil {
						return err
					}
					return PrintResult(cmd, schemaVersion{Version: v, Dirty: dirty})
				})
			},
		},
	)
	return cmd
}

type schemaVersion struct {
	Version uint `json:"version"`
	Dirty   bool `json:"dirty"`
}

func (s schemaVersion) TableHeaders() []string { return []string{"VERSION", "DIRTY"} }

func (s schemaVersion) TableRows() [][]string {
	return [][]string{{fmt.Sprint(s.Version), fmt.Sprint(s.Dirty)}}
}

func withMigrator(cmd *cobra.Command, fn func(m *postgres.Migrator) error) error {
	return withContainer(cmd, func(_ context.Context, cc *CLIContext, c *bootstrap.Container) error {
		if c.DB == nil {
			return errors.InvalidParam("migrations need a database").WithDetail("app.use_mock_data is enabled")
		}
		m, err := postgres.NewMigrator(c.DB.DB(), cc.Config.Database.MigrationsPath, cc.Logger)
		if err != nil {
			return err
		}
		defer m.Close()
		return fn(m)
	}, bootstrap.StorageOnly())
}
