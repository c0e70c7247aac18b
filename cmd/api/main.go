package main

import (
	"context"

	_ "chargehub-api/docs"
	"chargehub-api/internal/config"
	"chargehub-api/internal/datasource"
	"chargehub-api/internal/handler"
	"chargehub-api/internal/ledger"
	"chargehub-api/internal/logging"
	"chargehub-api/internal/metrics"
	"chargehub-api/internal/repository"
	"chargehub-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

//	@title			ChargeHub API
//	@version		1.0
//	@description	Search EV charging stations by postal code and track malfunction reports.
//	@BasePath		/
func main() {
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logging.Setup(cfg.LogLevel, cfg.LogFormat)
	gin.SetMode(cfg.GinMode)
	metrics.Init()

	// Database connection, only when a backend needs it
	var repo *repository.Repository
	if cfg.NeedsDatabase() {
		conn, err := pgxpool.New(context.Background(), cfg.DBSource)
		if err != nil {
			log.Fatal().Err(err).Msg("cannot connect to db")
		}
		defer conn.Close()

		repo = repository.NewRepository(conn, cfg.StationsTable, cfg.ReportsTable)
		if err := repo.EnsureSchema(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("cannot create schema")
		}
	}

	// Initialize layers
	var stationRepo service.StationRepository
	if cfg.StationsBackend == config.BackendPostgres {
		stationRepo = repo
	} else {
		opts := datasource.Options{}
		if cfg.BBoxEnabled {
			opts.BoundingBox = &datasource.BoundingBox{
				MinLat: cfg.BBoxMinLat,
				MaxLat: cfg.BBoxMaxLat,
				MinLon: cfg.BBoxMinLon,
				MaxLon: cfg.BBoxMaxLon,
			}
		}
		stationRepo = datasource.NewCSVRepository(cfg.StationsCSVPath, datasource.NewCache(opts))
	}

	var reportLedger service.Ledger
	if cfg.LedgerBackend == config.BackendPostgres {
		reportLedger = repo
	} else {
		reportLedger = ledger.Open(cfg.LedgerPath)
	}

	stationService := service.NewStationService(stationRepo)
	malfunctionService := service.NewMalfunctionService(reportLedger)
	dashboardService := service.NewDashboardService(stationService, malfunctionService)

	stationHandler := handler.NewStationHandler(dashboardService)
	malfunctionHandler := handler.NewMalfunctionHandler(malfunctionService)

	r := handler.NewRouter(stationHandler, malfunctionHandler)

	log.Info().
		Str("address", cfg.ServerAddress).
		Str("stations_backend", cfg.StationsBackend).
		Str("ledger_backend", cfg.LedgerBackend).
		Msg("chargehub api starting")

	if err := r.Run(cfg.ServerAddress); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
