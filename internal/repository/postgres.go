package repository

import (
	"context"
	"errors"
	"fmt"

	"chargehub-api/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

const undefinedTable = "42P01"

// Repository implements the station lookup and malfunction ledger on PostgreSQL
type Repository struct {
	db       *pgxpool.Pool
	stations string
	reports  string

	stationsTable string
	reportsTable  string
}

// NewRepository creates a new PostgreSQL repository. Table names are quoted as
// identifiers, so they may come from configuration.
func NewRepository(db *pgxpool.Pool, stationsTable, reportsTable string) *Repository {
	return &Repository{
		db:            db,
		stations:      stationsTable,
		reports:       reportsTable,
		stationsTable: pq.QuoteIdentifier(stationsTable),
		reportsTable:  pq.QuoteIdentifier(reportsTable),
	}
}

// SchemaSQL returns the DDL for both tables.
func SchemaSQL(stationsTable, reportsTable string) string {
	st := pq.QuoteIdentifier(stationsTable)
	rt := pq.QuoteIdentifier(reportsTable)
	return fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %[1]s (
		row_order INTEGER PRIMARY KEY,
		id VARCHAR(64) NOT NULL,
		stable_key TEXT NOT NULL,
		operator TEXT NOT NULL,
		street TEXT NOT NULL,
		postal_code CHAR(5) NOT NULL,
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL
	);
	CREATE INDEX IF NOT EXISTS %[3]s ON %[1]s (postal_code);
	CREATE TABLE IF NOT EXISTS %[2]s (
		station_id VARCHAR(255) PRIMARY KEY,
		reason TEXT NOT NULL,
		reported_at TIMESTAMPTZ NOT NULL
	);
	`, st, rt, pq.QuoteIdentifier(stationsTable+"_postal_code_idx"))
}

// EnsureSchema creates the tables if they do not exist
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, SchemaSQL(r.stations, r.reports)); err != nil {
		return fmt.Errorf("repository: failed to create schema: %w", err)
	}
	return nil
}

// FindByPostalCode returns the stations with exactly this postal code in import order
func (r *Repository) FindByPostalCode(ctx context.Context, code string) ([]models.Station, error) {
	sql := fmt.Sprintf(`
		SELECT
			id,
			stable_key,
			operator,
			street,
			postal_code,
			latitude,
			longitude
		FROM %s
		WHERE postal_code = $1
		ORDER BY row_order
	`, r.stationsTable)

	rows, err := r.db.Query(ctx, sql, code)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == undefinedTable {
			return nil, fmt.Errorf("repository: stations have not been imported: %w", models.ErrDataSourceNotFound)
		}
		return nil, fmt.Errorf("repository: failed to execute station query: %w", err)
	}
	defer rows.Close()

	stations := []models.Station{}
	for rows.Next() {
		var s models.Station
		err := rows.Scan(
			&s.ID,
			&s.StableKey,
			&s.Operator,
			&s.Street,
			&s.PostalCode,
			&s.Latitude,
			&s.Longitude,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan station: %w", err)
		}
		stations = append(stations, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating rows: %w", err)
	}

	return stations, nil
}

// ReplaceStations swaps the full station table for stations inside one transaction
func (r *Repository) ReplaceStations(ctx context.Context, stations []models.Station) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "TRUNCATE "+r.stationsTable); err != nil {
		return 0, fmt.Errorf("repository: failed to truncate stations: %w", err)
	}

	n, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{r.stations},
		[]string{"row_order", "id", "stable_key", "operator", "street", "postal_code", "latitude", "longitude"},
		pgx.CopyFromSlice(len(stations), func(i int) ([]any, error) {
			s := stations[i]
			return []any{i, s.ID, s.StableKey, s.Operator, s.Street, s.PostalCode, s.Latitude, s.Longitude}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to copy stations: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("repository: failed to commit stations: %w", err)
	}
	return n, nil
}

// CountStations returns the number of imported stations
func (r *Repository) CountStations(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM "+r.stationsTable).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to count stations: %w", err)
	}
	return count, nil
}

// Report upserts the open report for a station
func (r *Repository) Report(ctx context.Context, report models.MalfunctionReport) error {
	sql := fmt.Sprintf(`
		INSERT INTO %s (station_id, reason, reported_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (station_id) DO UPDATE
		SET reason = EXCLUDED.reason, reported_at = EXCLUDED.reported_at
	`, r.reportsTable)

	if _, err := r.db.Exec(ctx, sql, report.StationID, report.Reason, report.ReportedAt); err != nil {
		return fmt.Errorf("repository: failed to save report: %v: %w", err, models.ErrLedgerStorage)
	}
	return nil
}

// Resolve deletes the open report for a station, if there is one
func (r *Repository) Resolve(ctx context.Context, stationID string) error {
	sql := fmt.Sprintf(`DELETE FROM %s WHERE station_id = $1`, r.reportsTable)
	if _, err := r.db.Exec(ctx, sql, stationID); err != nil {
		return fmt.Errorf("repository: failed to delete report: %v: %w", err, models.ErrLedgerStorage)
	}
	return nil
}

// Get returns the open report for a station
func (r *Repository) Get(ctx context.Context, stationID string) (models.MalfunctionReport, bool, error) {
	sql := fmt.Sprintf(`SELECT station_id, reason, reported_at FROM %s WHERE station_id = $1`, r.reportsTable)

	var report models.MalfunctionReport
	err := r.db.QueryRow(ctx, sql, stationID).Scan(&report.StationID, &report.Reason, &report.ReportedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.MalfunctionReport{}, false, nil
		}
		return models.MalfunctionReport{}, false, fmt.Errorf("repository: failed to read report: %w", err)
	}
	report.ReportedAt = report.ReportedAt.UTC()
	return report, true, nil
}

// All returns every open report ordered by station id
func (r *Repository) All(ctx context.Context) ([]models.MalfunctionReport, error) {
	sql := fmt.Sprintf(`SELECT station_id, reason, reported_at FROM %s ORDER BY station_id`, r.reportsTable)

	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to execute report query: %w", err)
	}
	defer rows.Close()

	reports := []models.MalfunctionReport{}
	for rows.Next() {
		var report models.MalfunctionReport
		if err := rows.Scan(&report.StationID, &report.Reason, &report.ReportedAt); err != nil {
			return nil, fmt.Errorf("repository: failed to scan report: %w", err)
		}
		report.ReportedAt = report.ReportedAt.UTC()
		reports = append(reports, report)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating rows: %w", err)
	}

	return reports, nil
}
