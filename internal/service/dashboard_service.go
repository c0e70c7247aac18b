package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chargehub-api/internal/models"
)

// DashboardService joins station search results with their malfunction status.
type DashboardService struct {
	stations     *StationService
	malfunctions *MalfunctionService
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(stations *StationService, malfunctions *MalfunctionService) *DashboardService {
	return &DashboardService{stations: stations, malfunctions: malfunctions}
}

// Search looks up the stations for code and marks those with an open report.
// Invalid codes fail with models.ErrInvalidPostalCode. When the station data is
// unavailable the result is empty and carries a warning instead of an error.
func (s *DashboardService) Search(ctx context.Context, code string) (models.SearchResult, error) {
	stations, err := s.stations.FindByPostalCode(ctx, code)
	result := models.SearchResult{PostalCode: strings.TrimSpace(code), Stations: []models.StationStatus{}}
	if err != nil {
		if errors.Is(err, models.ErrInvalidPostalCode) {
			return result, err
		}
		if errors.Is(err, models.ErrDataSourceNotFound) || errors.Is(err, models.ErrDataSourceUnreadable) {
			result.Warning = "station data is currently unavailable"
			return result, nil
		}
		return result, err
	}

	for _, st := range stations {
		report, broken, err := s.malfunctions.GetReport(ctx, st.ID)
		if err != nil {
			return result, fmt.Errorf("service: failed to join malfunction status: %w", err)
		}
		status := models.StationStatus{Station: st, Broken: broken}
		if broken {
			status.Reason = report.Reason
			result.BrokenCount++
		}
		result.Stations = append(result.Stations, status)
	}
	result.Count = len(result.Stations)
	return result, nil
}
