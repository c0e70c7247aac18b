package datasource

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"chargehub-api/internal/metrics"
	"chargehub-api/internal/models"

	"github.com/rs/zerolog/log"
)

type cacheEntry struct {
	modTime  time.Time
	size     int64
	stations []models.Station
}

// Cache memoizes parsed station files per path. An entry stays valid while the file's
// modification time and size are unchanged.
type Cache struct {
	opts Options

	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewCache creates an empty cache that parses files with opts.
func NewCache(opts Options) *Cache {
	return &Cache{opts: opts, entries: make(map[string]cacheEntry)}
}

// Load returns the stations for path, parsing the file only when it changed since the
// last successful load. Failed loads are not cached.
func (c *Cache) Load(path string) ([]models.Station, error) {
	info, err := os.Stat(path)
	if err != nil {
		c.Invalidate(path)
		metrics.ObserveStationLoad(metrics.LoadResultError)
		if errors.Is(err, os.ErrNotExist) {
			return []models.Station{}, fmt.Errorf("datasource: %s: %w", path, models.ErrDataSourceNotFound)
		}
		return []models.Station{}, fmt.Errorf("datasource: failed to stat %s: %v: %w", path, err, models.ErrDataSourceUnreadable)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[path]; ok && entry.modTime.Equal(info.ModTime()) && entry.size == info.Size() {
		metrics.ObserveStationLoad(metrics.LoadResultHit)
		return entry.stations, nil
	}

	stations, stats, err := LoadFile(path, c.opts)
	if err != nil {
		delete(c.entries, path)
		metrics.ObserveStationLoad(metrics.LoadResultError)
		return stations, err
	}

	c.entries[path] = cacheEntry{modTime: info.ModTime(), size: info.Size(), stations: stations}
	metrics.ObserveStationLoad(metrics.LoadResultMiss)
	metrics.SetStationsLoaded(len(stations))
	log.Info().Str("path", path).Int("stations", stats.Loaded).Msg("station data loaded")
	return stations, nil
}

// Invalidate drops the cached entry for path.
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	delete(c.entries, path)
	c.mu.Unlock()
}
