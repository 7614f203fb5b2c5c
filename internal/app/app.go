package app

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"gridpulse/internal/cache"
	"gridpulse/internal/config"
	httpserver "gridpulse/internal/http"
	"gridpulse/internal/http/handlers"
	"gridpulse/internal/repository"
	"gridpulse/internal/service"
	"gridpulse/internal/ws"
	"gridpulse/libs/db"
	libredis "gridpulse/libs/redis"
)

// App wires telemetry service dependencies.
type App struct {
	server *httpserver.Server
	db     *sql.DB
	logger *zap.Logger
}

// New constructs application components.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	sqlDB, err := db.NewPostgres(cfg.Database.DSN, db.PoolOptions{
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		return nil, err
	}

	if err := repository.EnsureSchema(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}

	stateRepo := repository.NewCurrentStateRepository(sqlDB)
	historyRepo := repository.NewHistoryRepository(sqlDB)
	txRunner := repository.NewTxRunner(sqlDB)

	var summaryCache service.SummaryCache
	if cfg.CacheEnabled() {
		client, err := libredis.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			sqlDB.Close()
			return nil, err
		}
		summaryCache = cache.NewSummaryStore(client, cfg.Redis.SummaryTTL)
	}

	ingestService := service.NewIngestService(txRunner, stateRepo, historyRepo, logger)
	performanceService := service.NewPerformanceService(historyRepo, service.IdentityMeterResolver{}, summaryCache, logger)

	ingestHandler := handlers.NewIngestHandler(ingestService, logger)
	routes := httpserver.Routes{
		IngestMeter:        ingestHandler.HandleMeter,
		IngestMeterBatch:   ingestHandler.HandleMeterBatch,
		IngestVehicle:      ingestHandler.HandleVehicle,
		IngestVehicleBatch: ingestHandler.HandleVehicleBatch,
		VehiclePerformance: handlers.NewPerformanceHandler(performanceService, logger),
		DeviceState:        handlers.NewStateHandler(stateRepo, logger),
		LiveFeed:           ws.NewFeed(stateRepo, cfg.Feed.Interval, logger),
		Health:             handlers.NewHealthHandler(),
	}

	router := httpserver.NewRouter(routes)
	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger)

	return &App{
		server: server,
		db:     sqlDB,
		logger: logger,
	}, nil
}

// Run starts serving HTTP requests.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx)
}

// Close releases resources.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
}
