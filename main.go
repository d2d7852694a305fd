package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/bizradar/poi-ingest/pkg/config"
	"github.com/bizradar/poi-ingest/pkg/database"
	"github.com/bizradar/poi-ingest/pkg/ingest"
	"github.com/bizradar/poi-ingest/pkg/logging"
	"github.com/bizradar/poi-ingest/pkg/models"
	"github.com/bizradar/poi-ingest/pkg/photocache"
	"github.com/bizradar/poi-ingest/pkg/providers/places"
	"github.com/bizradar/poi-ingest/pkg/providers/yelp"
	"github.com/bizradar/poi-ingest/pkg/ratelimit"
	"github.com/bizradar/poi-ingest/pkg/repositories"
	"github.com/bizradar/poi-ingest/pkg/scrape"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for migrations
)

func main() {
	os.Exit(run())
}

func run() int {
	// Best-effort .env load for local runs; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Error("Failed to load config", zap.Error(err))
		return 1
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		return 1
	}
	defer logger.Sync() //nolint:errcheck // stderr sync failure is harmless at exit

	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("database", logging.SanitizeConnectionString(cfg.DatabaseURL)),
		zap.Float64("center_lat", cfg.Ingest.CenterLat),
		zap.Float64("center_lon", cfg.Ingest.CenterLon),
		zap.Int("radius_meters", cfg.Ingest.RadiusMeters),
		zap.Int("target_count", cfg.Ingest.TargetCount),
		zap.Strings("categories", cfg.Ingest.Categories),
		zap.Bool("enrichment_enabled", cfg.SecondaryEnabled()))

	// An interrupt finishes the current record and skips the rest.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewConnection(ctx, &database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		logger.Error("Failed to connect to database", zap.Error(err))
		return 1
	}
	defer db.Close()

	if err := runMigrations(cfg, logger); err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return 1
	}

	total, err := runIngestion(ctx, cfg, db, logger)
	if err != nil {
		logger.Error("Ingestion aborted",
			zap.Int("businesses_committed", total),
			zap.String("reason", logging.SanitizeError(err)))
		return 1
	}

	logger.Info("Ingestion complete", zap.Int("businesses_upserted", total))
	return 0
}

func runMigrations(cfg *config.Config, logger *zap.Logger) error {
	sqlDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer sqlDB.Close()
	return database.RunMigrations(sqlDB, cfg.MigrationsPath, logger)
}

// runIngestion wires the collaborators over a single run-spanning
// transaction and executes the loop. Committed only when the run finishes
// or truncates voluntarily; a fatal error rolls back the uncommitted
// remainder.
func runIngestion(ctx context.Context, cfg *config.Config, db *database.DB, logger *zap.Logger) (int, error) {
	timeout := time.Duration(cfg.Providers.TimeoutSeconds) * time.Second
	gap := time.Duration(cfg.Providers.RateLimitMS) * time.Millisecond

	placesClient := places.NewClient(cfg.PrimaryAPIKey, cfg.Providers.PrimaryBaseURL, timeout, ratelimit.New(gap), logger)

	var yelpClient yelp.Client
	if cfg.SecondaryEnabled() {
		yelpClient = yelp.NewClient(cfg.SecondaryAPIKey, cfg.Providers.SecondaryBaseURL, timeout, ratelimit.New(gap), logger)
	}

	photos, err := photocache.New(cfg.Ingest.PhotoCacheDir, timeout, logger)
	if err != nil {
		return 0, err
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(context.Background()) //nolint:errcheck // rollback after commit is a no-op

	rc := models.NewRunContext(
		models.Center{Lat: cfg.Ingest.CenterLat, Lon: cfg.Ingest.CenterLon},
		cfg.Ingest.RadiusMeters,
		cfg.Ingest.Categories,
		cfg.Ingest.TargetCount,
	)

	orchestrator := ingest.NewOrchestrator(ingest.Deps{
		RunContext: rc,
		Places:     placesClient,
		Yelp:       yelpClient,
		Scraper:    scrape.NewScraper(logger),
		Photos:     photos,
		Businesses: repositories.NewBusinessRepository(tx),
		Reviews:    repositories.NewReviewRepository(tx),
		Deals:      repositories.NewDealRepository(tx, cfg),
		Extras:     repositories.NewExtrasRepository(tx),
	}, logger)

	total, err := orchestrator.Run(ctx)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return total, nil
}

// Compile-time check that config satisfies the offer table contract the
// deal repository expects.
var _ repositories.OfferTable = (*config.Config)(nil)
