package main

import (
	"context"
	"fmt"

	"github.com/dtroode/accounts-server/internal/config"
	"github.com/dtroode/accounts-server/internal/logger"
	"github.com/dtroode/accounts-server/internal/model"
	"github.com/dtroode/accounts-server/internal/repository/mongo"
	"github.com/dtroode/accounts-server/internal/repository/postgres"
)

// storage is an opened user store together with its connection lifecycle.
type storage struct {
	users model.UserStore
	ping  func(ctx context.Context) error
	close func() error
}

func (s *storage) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

func (s *storage) Close() error {
	return s.close()
}

// openStorage connects to the configured backend and brings its schema up to date.
func openStorage(ctx context.Context, cfg config.Database, lg *logger.Logger) (*storage, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		conn, err := mongo.NewConnection(ctx, cfg.DSN, cfg.MongoName)
		if err != nil {
			return nil, err
		}
		repo := mongo.NewUserRepository(conn)
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to ensure indexes: %w", err)
		}
		lg.Info("connected to user store", "driver", cfg.Driver, "database", cfg.MongoName)
		return &storage{users: repo, ping: conn.Ping, close: conn.Close}, nil

	case config.DriverPostgres:
		conn, err := postgres.NewConnection(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		if err := conn.Migrate(ctx, postgres.MigrateUp); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
		lg.Info("connected to user store", "driver", cfg.Driver)
		return &storage{users: postgres.NewUserRepository(conn), ping: conn.Ping, close: conn.Close}, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
