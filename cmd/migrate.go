package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dtroode/accounts-server/internal/config"
	"github.com/dtroode/accounts-server/internal/repository/postgres"
)

func newMigrateCmd() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run Migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	for _, c := range []struct {
		command string
		short   string
	}{
		{postgres.MigrateUp, "Apply all pending migrations"},
		{postgres.MigrateDown, "Roll back the latest migration"},
		{postgres.MigrateStatus, "Display status of each migration"},
	} {
		command := c.command
		migrateCmd.AddCommand(&cobra.Command{
			Use:   command,
			Short: c.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runMigration(cmd, command)
			},
		})
	}

	return migrateCmd
}

func runMigration(cmd *cobra.Command, command string) error {
	cfg, err := config.NewConfig()
	if err != nil {
		return err
	}
	if cfg.Database.Driver != config.DriverPostgres {
		return fmt.Errorf("migrations apply to the postgres driver only, configured %q", cfg.Database.Driver)
	}

	conn, err := postgres.NewConnection(cmd.Context(), cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer conn.Close()

	return conn.Migrate(cmd.Context(), command)
}
