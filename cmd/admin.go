package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dtroode/accounts-server/internal/config"
	"github.com/dtroode/accounts-server/internal/logger"
	"github.com/dtroode/accounts-server/internal/password"
	"github.com/dtroode/accounts-server/internal/service"
	"github.com/dtroode/accounts-server/internal/token"
)

func newCreateAdminCmd() *cobra.Command {
	var name, email, plain string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Provision an administrator account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewConfig()
			if err != nil {
				return err
			}
			lg := logger.NewWithFormat(os.Stderr, cfg.LogLevel, cfg.LogFormat)

			tokenManager, err := token.NewJWT(cfg.JWT.Secret)
			if err != nil {
				return err
			}

			store, err := openStorage(cmd.Context(), cfg.Database, lg)
			if err != nil {
				return err
			}
			defer store.Close()

			auth := service.NewAuth(store.users, password.NewBcrypt(cfg.Bcrypt.Cost), tokenManager,
				service.AuthPolicy{AllowRoleSelect: cfg.Auth.AllowRoleSelect}, lg)

			user, err := auth.CreateAdmin(cmd.Context(), name, email, plain)
			if err != nil {
				return err
			}

			cmd.Printf("admin %s created with id %s\n", user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "full name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&plain, "password", "", "password")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
