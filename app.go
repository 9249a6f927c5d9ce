package main

import (
	"fmt"

	"go.uber.org/zap"

	"maintenance-cloud/internal/cache"
	"maintenance-cloud/internal/config"
	"maintenance-cloud/internal/dataaccess"
	"maintenance-cloud/internal/logging"
	"maintenance-cloud/internal/observability/metrics"
	predictionapp "maintenance-cloud/internal/prediction/application"
	"maintenance-cloud/internal/prediction/infrastructure/files"
	"maintenance-cloud/internal/prediction/model"
	reportingapp "maintenance-cloud/internal/reporting/application"
)

// app holds the wired service components.
type app struct {
	cfg     config.Config
	logger  *zap.Logger
	engine  *predictionapp.Engine
	cache   *cache.Cache
	store   *dataaccess.CachedStore
	reports *reportingapp.Service
}

func loadApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output)
	if err != nil {
		return nil, err
	}
	return buildApp(cfg, logger)
}

func buildApp(cfg config.Config, logger *zap.Logger) (*app, error) {
	metrics.Init()
	paths := cfg.Paths()

	features, err := files.NewFeatureReader(paths.Features)
	if err != nil {
		return nil, err
	}
	snapshots, err := files.NewSnapshotStore(paths.Snapshot)
	if err != nil {
		return nil, err
	}
	models, err := model.NewFileLoader(cfg.ModelPath)
	if err != nil {
		return nil, err
	}
	engine, err := predictionapp.NewEngine(features, models, snapshots, logger.Named("prediction"),
		predictionapp.WithSnapshotLocation(paths.Snapshot),
	)
	if err != nil {
		return nil, fmt.Errorf("prediction engine: %w", err)
	}

	store, err := dataaccess.NewStore(paths, logger.Named("dataaccess"), dataaccess.WithSnapshotComputer(engine))
	if err != nil {
		return nil, err
	}
	c := cache.New()
	cached, err := dataaccess.NewCachedStore(store, c)
	if err != nil {
		return nil, err
	}
	reports, err := reportingapp.NewService(cached, engine, logger.Named("reporting"))
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:     cfg,
		logger:  logger,
		engine:  engine,
		cache:   c,
		store:   cached,
		reports: reports,
	}, nil
}
