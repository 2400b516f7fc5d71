package main

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"

	"github.com/angelmondragon/shopdesk-backend/internal/catalog"
	"github.com/angelmondragon/shopdesk-backend/internal/users"
	"github.com/angelmondragon/shopdesk-backend/pkg/config"
	"github.com/angelmondragon/shopdesk-backend/pkg/db"
	"github.com/angelmondragon/shopdesk-backend/pkg/logger"
)

// app holds what every subcommand needs once config and the database are up.
type app struct {
	cfg     *config.Config
	logg    *logger.Logger
	db      *db.Client
	catalog catalog.Service
	users   *users.Repository
}

func bootApp(ctx context.Context) (*app, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.Service.Kind = "catalogctl"

	logg := logger.New(logger.Options{
		ServiceName: "catalogctl",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return nil, err
	}

	catalogService, err := catalog.NewService(catalog.ServiceParams{
		TxRunner:     dbClient,
		Repository:   catalog.NewRepository(dbClient.DB()),
		Fetcher:      catalog.NewFetcher(cfg.Catalog.FetchTimeout, cfg.Catalog.MaxFeedBytes),
		MaxFeedBytes: cfg.Catalog.MaxFeedBytes,
		Logger:       logg,
	})
	if err != nil {
		return nil, multierr.Append(err, dbClient.Close())
	}

	return &app{
		cfg:     cfg,
		logg:    logg,
		db:      dbClient,
		catalog: catalogService,
		users:   users.NewRepository(dbClient.DB()),
	}, nil
}

func (a *app) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	return a.db.Close()
}
