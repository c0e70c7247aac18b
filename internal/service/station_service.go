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

// StationService contains the business logic for station lookups
type StationService struct {
	repo StationRepository
}

// StationRepository interface for dependency injection
type StationRepository interface {
	FindByPostalCode(ctx context.Context, code string) ([]models.Station, error)
}

// NewStationService creates a new station service
func NewStationService(repo StationRepository) *StationService {
	return &StationService{repo: repo}
}

// FindByPostalCode returns the stations registered under code, in data source order.
// Codes that are not exactly five digits fail with models.ErrInvalidPostalCode without
// touching the repository. Repository failures still return an empty slice so callers
// can render "no data".
func (s *StationService) FindByPostalCode(ctx context.Context, code string) ([]models.Station, error) {
	start := time.Now()
	code = strings.TrimSpace(code)

	if err := models.ValidatePostalCode(code); err != nil {
		metrics.ObserveSearch(metrics.ResultInvalid, time.Since(start))
		return []models.Station{}, fmt.Errorf("service: %w", err)
	}

	stations, err := s.repo.FindByPostalCode(ctx, code)
	if err != nil {
		metrics.ObserveSearch(metrics.ResultError, time.Since(start))
		log.Warn().Err(err).Str("postal_code", code).Msg("station lookup degraded to empty result")
		return []models.Station{}, fmt.Errorf("service: failed to find stations: %w", err)
	}
	if stations == nil {
		stations = []models.Station{}
	}

	metrics.ObserveSearch(metrics.ResultSuccess, time.Since(start))
	return stations, nil
}
