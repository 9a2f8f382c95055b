package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/BradenHooton/roster/internal/config"
	"github.com/BradenHooton/roster/internal/database"
	"github.com/BradenHooton/roster/internal/query"
	"github.com/BradenHooton/roster/internal/repositories"
	"github.com/BradenHooton/roster/internal/services"
)

// accountStore is the repository of the configured backend plus what main
// needs to operate it.
type accountStore interface {
	services.AccountRepository
	Dialect() query.Dialect
}

type store struct {
	accounts    accountStore
	healthCheck func(ctx context.Context) error
	migrate     func(ctx context.Context) error
	close       func()
}

func openStore(cfg *config.DatabaseConfig, logger *slog.Logger) (*store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		db, err := database.NewConnection(cfg, logger)
		if err != nil {
			return nil, err
		}
		return &store{
			accounts:    repositories.NewAccountRepository(db),
			healthCheck: db.HealthCheck,
			migrate:     db.Migrate,
			close:       db.Close,
		}, nil

	case config.DriverSQLite:
		db, err := database.OpenSQLite(cfg.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		return &store{
			accounts:    repositories.NewSQLiteAccountRepository(db),
			healthCheck: db.HealthCheck,
			migrate:     db.Migrate,
			close: func() {
				if err := db.Close(); err != nil {
					logger.Error("failed to close sqlite database", slog.Any("error", err))
				}
			},
		}, nil
	}

	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}
