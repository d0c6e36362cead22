package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httpcontext "github.com/dtroode/accounts-server/internal/api/http/context"
	"github.com/dtroode/accounts-server/internal/api/http/handler"
	"github.com/dtroode/accounts-server/internal/api/http/router"
	httpserver "github.com/dtroode/accounts-server/internal/api/http/server"
	"github.com/dtroode/accounts-server/internal/config"
	"github.com/dtroode/accounts-server/internal/logger"
	"github.com/dtroode/accounts-server/internal/model"
	"github.com/dtroode/accounts-server/internal/password"
	"github.com/dtroode/accounts-server/internal/server"
	"github.com/dtroode/accounts-server/internal/service"
	"github.com/dtroode/accounts-server/internal/token"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		return err
	}
	lg := logger.NewWithFormat(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	tokenManager, err := token.NewJWT(cfg.JWT.Secret)
	if err != nil {
		lg.Fatal("refusing to start without a session signing secret", "error", err)
	}

	store, err := openStorage(ctx, cfg.Database, lg)
	if err != nil {
		lg.Fatal("failed to initialize storage", "error", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			lg.Error("failed to close storage", "error", err)
		}
	}()

	hasher := password.NewBcrypt(cfg.Bcrypt.Cost)
	authService := service.NewAuth(store.users, hasher, tokenManager,
		service.AuthPolicy{AllowRoleSelect: cfg.Auth.AllowRoleSelect}, lg)

	r := router.New(router.Services{
		Auth:    authService,
		Profile: service.NewProfile(store.users, hasher, lg),
		Admin:   service.NewAdmin(store.users, cfg.Admin.MaxPageLimit, lg),
		Tokens:  service.NewTokenService(tokenManager, lg),
		Users:   store.users,
		Health:  store,
	}, handler.CookieConfig{Secure: cfg.HTTP.SecureCookie}, httpcontext.NewManager(), lg)

	httpServer := httpserver.NewHTTPServer(r.Register(), fmt.Sprintf(":%s", cfg.HTTP.Port))
	sl := server.NewSecurityLayer(cfg.HTTP)

	return runServer(ctx, httpServer, sl, lg)
}

// runServer serves until ctx is done or the server fails, then shuts down
// gracefully. A start failure is returned so the process exits non-zero.
func runServer(ctx context.Context, s model.Server, sl model.SecurityLayer, lg *logger.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		startErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		lg.Info("Starting server on", "address", s.Address())
		if err := s.Start(sl); err != nil {
			lg.Error("failed to start server", "error", err)
			startErr = err
			cancel()
		}
	}()

	logAppVersion()

	<-ctx.Done()
	lg.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := s.Stop(shutdownCtx); err != nil {
		lg.Error("error during server shutdown", "error", err, "address", s.Address())
	}

	wg.Wait()
	if startErr != nil {
		return fmt.Errorf("server failed: %w", startErr)
	}

	lg.Info("shutdown complete")
	return nil
}
