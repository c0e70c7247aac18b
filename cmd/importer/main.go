package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"chargehub-api/internal/config"
	"chargehub-api/internal/datasource"
	"chargehub-api/internal/logging"
	"chargehub-api/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

func main() {
	file := flag.String("file", "", "Path to the Ladesäulenregister CSV file to import")
	dryRun := flag.Bool("dry-run", false, "Parse and report only; no database writes")
	berlinOnly := flag.Bool("berlin-only", false, "Keep only stations inside the Berlin bounding box")
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "Error: --file flag is required")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	log.Info().Str("file", *file).Msg("starting import")

	opts := datasource.Options{}
	if *berlinOnly {
		box := datasource.BerlinBoundingBox
		opts.BoundingBox = &box
	}

	stations, stats, err := datasource.LoadFile(*file, opts)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot parse csv")
	}

	log.Info().
		Int("rows", stats.Rows).
		Int("loaded", stats.Loaded).
		Int("malformed", stats.Malformed).
		Int("no_postal_code", stats.NoPostal).
		Int("filtered", stats.Filtered).
		Bool("latin1", stats.Latin1).
		Msg("parsed stations")

	if *dryRun {
		log.Info().Msg("dry run complete, no changes made")
		return
	}

	if cfg.DBSource == "" {
		log.Fatal().Msg("DB_SOURCE is not configured")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	conn, err := pgxpool.New(ctx, cfg.DBSource)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot connect to db")
	}
	defer conn.Close()

	repo := repository.NewRepository(conn, cfg.StationsTable, cfg.ReportsTable)

	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("cannot create schema")
	}

	n, err := repo.ReplaceStations(ctx, stations)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot insert stations")
	}

	if err := verifyImport(ctx, repo, len(stations)); err != nil {
		log.Fatal().Err(err).Msg("import verification failed")
	}

	log.Info().Int64("stations", n).Msg("successfully imported stations")
}

func verifyImport(ctx context.Context, repo *repository.Repository, expectedCount int) error {
	count, err := repo.CountStations(ctx)
	if err != nil {
		return err
	}

	if count != expectedCount {
		return fmt.Errorf("record count mismatch: expected %d, got %d", expectedCount, count)
	}
	return nil
}
