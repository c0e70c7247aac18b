package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"chargehub-api/internal/metrics"
	"chargehub-api/internal/models"

	"github.com/rs/zerolog/log"
)

// Ledger stores at most one open malfunction report per station.
type Ledger interface {
	Report(ctx context.Context, r models.MalfunctionReport) error
	Resolve(ctx context.Context, stationID string) error
	Get(ctx context.Context, stationID string) (models.MalfunctionReport, bool, error)
	All(ctx context.Context) ([]models.MalfunctionReport, error)
}

// MalfunctionService files, clears and answers questions about malfunction reports.
type MalfunctionService struct {
	ledger Ledger
	now    func() time.Time
}

// NewMalfunctionService creates a new malfunction service
func NewMalfunctionService(ledger Ledger) *MalfunctionService {
	return &MalfunctionService{ledger: ledger, now: time.Now}
}

// WithClock replaces the clock used to stamp reports.
func (s *MalfunctionService) WithClock(now func() time.Time) *MalfunctionService {
	s.now = now
	return s
}

// ReportMalfunction opens a report for stationID. A second report for the same station
// replaces the first. The reason is stored exactly as given; only blank reasons are
// rejected.
func (s *MalfunctionService) ReportMalfunction(ctx context.Context, stationID, reason string) error {
	stationID = strings.TrimSpace(stationID)
	if stationID == "" {
		return fmt.Errorf("service: station id cannot be empty: %w", models.ErrInvalidReport)
	}
	if strings.TrimSpace(reason) == "" {
		return fmt.Errorf("service: reason cannot be empty: %w", models.ErrInvalidReport)
	}

	report := models.MalfunctionReport{
		StationID:  stationID,
		Reason:     reason,
		ReportedAt: s.now().UTC().Truncate(time.Second),
	}
	if err := s.ledger.Report(ctx, report); err != nil {
		metrics.ObserveLedgerOp("report", metrics.ResultError)
		return fmt.Errorf("service: failed to save report: %w", err)
	}

	metrics.ObserveLedgerOp("report", metrics.ResultSuccess)
	s.refreshOpenGauge(ctx)
	log.Info().Str("station_id", stationID).Str("reason", reason).Msg("malfunction reported")
	return nil
}

// ResolveMalfunction clears the open report for stationID. Clearing a station that has
// no report is not an error.
func (s *MalfunctionService) ResolveMalfunction(ctx context.Context, stationID string) error {
	stationID = strings.TrimSpace(stationID)
	if stationID == "" {
		return fmt.Errorf("service: station id cannot be empty: %w", models.ErrInvalidReport)
	}

	if err := s.ledger.Resolve(ctx, stationID); err != nil {
		metrics.ObserveLedgerOp("resolve", metrics.ResultError)
		return fmt.Errorf("service: failed to resolve report: %w", err)
	}

	metrics.ObserveLedgerOp("resolve", metrics.ResultSuccess)
	s.refreshOpenGauge(ctx)
	log.Info().Str("station_id", stationID).Msg("malfunction resolved")
	return nil
}

// IsBroken reports whether stationID has an open report.
func (s *MalfunctionService) IsBroken(ctx context.Context, stationID string) (bool, error) {
	_, ok, err := s.ledger.Get(ctx, strings.TrimSpace(stationID))
	if err != nil {
		return false, fmt.Errorf("service: failed to read report: %w", err)
	}
	return ok, nil
}

// GetReason returns the reason of the open report for stationID.
func (s *MalfunctionService) GetReason(ctx context.Context, stationID string) (string, bool, error) {
	report, ok, err := s.GetReport(ctx, stationID)
	if err != nil || !ok {
		return "", false, err
	}
	return report.Reason, true, nil
}

// GetReport returns the open report for stationID.
func (s *MalfunctionService) GetReport(ctx context.Context, stationID string) (models.MalfunctionReport, bool, error) {
	report, ok, err := s.ledger.Get(ctx, strings.TrimSpace(stationID))
	if err != nil {
		return models.MalfunctionReport{}, false, fmt.Errorf("service: failed to read report: %w", err)
	}
	return report, ok, nil
}

// ListOpenReports returns all open reports ordered by station id.
func (s *MalfunctionService) ListOpenReports(ctx context.Context) ([]models.MalfunctionReport, error) {
	reports, err := s.ledger.All(ctx)
	if err != nil {
		return []models.MalfunctionReport{}, fmt.Errorf("service: failed to list reports: %w", err)
	}
	if reports == nil {
		reports = []models.MalfunctionReport{}
	}
	return reports, nil
}

func (s *MalfunctionService) refreshOpenGauge(ctx context.Context) {
	reports, err := s.ledger.All(ctx)
	if err != nil {
		return
	}
	metrics.SetOpenReports(len(reports))
}
