package datasource

import (
	"context"

	"chargehub-api/internal/models"
)

// CSVRepository answers station queries from a CSV file held in a Cache.
type CSVRepository struct {
	path  string
	cache *Cache
}

// NewCSVRepository creates a repository reading path through cache
func NewCSVRepository(path string, cache *Cache) *CSVRepository {
	return &CSVRepository{path: path, cache: cache}
}

// FindByPostalCode returns the stations whose postal code equals code exactly, in file order.
func (r *CSVRepository) FindByPostalCode(ctx context.Context, code string) ([]models.Station, error) {
	stations, err := r.cache.Load(r.path)
	if err != nil {
		return []models.Station{}, err
	}

	found := []models.Station{}
	for _, s := range stations {
		if s.PostalCode == code {
			found = append(found, s)
		}
	}
	return found, nil
}
