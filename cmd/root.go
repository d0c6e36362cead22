package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/dtroode/accounts-server/internal/config"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "accounts-server",
		Short:        "Account service with session authentication and role-gated administration",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if err := config.LoadDotEnv(); err != nil {
				log.Println("Error loading .env file, skipping:", err)
			}
		},
	}

	root.AddCommand(newServeCmd(), newMigrateCmd(), newCreateAdminCmd())

	return root
}
