package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"chargehub-api/internal/models"

	"github.com/rs/zerolog/log"
)

// entry is the on-disk shape of one open report.
type entry struct {
	Reason     string    `json:"reason"`
	ReportedAt time.Time `json:"reportedAt,omitzero"`
}

// legacyReport is one element of the older list-shaped ledger file.
type legacyReport struct {
	StationID   string `json:"station_id"`
	Description string `json:"description"`
	Timestamp   string `json:"timestamp"`
	Status      string `json:"status"`
}

// FileLedger keeps open malfunction reports in a single JSON object keyed by station id.
// The whole file is rewritten on every mutation.
//
// The mutex only serializes callers of one instance. Two processes (or two ledgers)
// writing the same file race, and the last write wins.
type FileLedger struct {
	path string

	mu      sync.Mutex
	reports map[string]entry
}

// Open loads the ledger at path. It never fails: a missing, empty or corrupt file
// yields an empty ledger, and the next successful write repairs it.
func Open(path string) *FileLedger {
	l := &FileLedger{path: path, reports: make(map[string]entry)}
	l.ensureFile()
	l.load()
	return l
}

// Path returns the backing file.
func (l *FileLedger) Path() string {
	return l.path
}

func (l *FileLedger) ensureFile() {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		log.Warn().Err(err).Str("path", l.path).Msg("cannot create ledger directory")
		return
	}
	if _, err := os.Stat(l.path); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(l.path, []byte("{}\n"), 0o644); err != nil {
			log.Warn().Err(err).Str("path", l.path).Msg("cannot create ledger file")
		}
	}
}

func (l *FileLedger) load() {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warn().Err(err).Str("path", l.path).Msg("cannot read ledger, starting empty")
		}
		return
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return
	}

	if data[0] == '[' {
		var legacy []legacyReport
		if err := json.Unmarshal(data, &legacy); err != nil {
			log.Warn().Err(err).Str("path", l.path).Msg("corrupt ledger, starting empty")
			return
		}
		l.reports = migrateLegacy(legacy)
		log.Info().Str("path", l.path).Int("reports", len(l.reports)).Msg("migrated list-shaped ledger")
		return
	}

	var stored map[string]*entry
	if err := json.Unmarshal(data, &stored); err != nil {
		log.Warn().Err(err).Str("path", l.path).Msg("corrupt ledger, starting empty")
		return
	}
	reports := make(map[string]entry, len(stored))
	for id, e := range stored {
		if e == nil || strings.TrimSpace(e.Reason) == "" {
			log.Warn().Str("path", l.path).Str("station_id", id).Msg("skipping ledger entry without reason")
			continue
		}
		reports[id] = *e
	}
	l.reports = reports

	log.Debug().Str("path", l.path).Int("reports", len(reports)).Msg("ledger loaded")
}

// migrateLegacy folds list entries into the map form; later entries win.
func migrateLegacy(legacy []legacyReport) map[string]entry {
	reports := make(map[string]entry, len(legacy))
	for _, r := range legacy {
		if r.StationID == "" || strings.TrimSpace(r.Description) == "" {
			continue
		}
		e := entry{Reason: r.Description}
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999"} {
			if t, err := time.Parse(layout, r.Timestamp); err == nil {
				e.ReportedAt = t
				break
			}
		}
		reports[r.StationID] = e
	}
	return reports
}

// Report stores r as the open report for its station, replacing any previous one.
func (l *FileLedger) Report(ctx context.Context, r models.MalfunctionReport) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	prev, existed := l.reports[r.StationID]
	l.reports[r.StationID] = entry{Reason: r.Reason, ReportedAt: r.ReportedAt}

	if err := l.persist(); err != nil {
		if existed {
			l.reports[r.StationID] = prev
		} else {
			delete(l.reports, r.StationID)
		}
		return err
	}
	return nil
}

// Resolve deletes the open report for stationID. Resolving a station without a report
// does nothing.
func (l *FileLedger) Resolve(ctx context.Context, stationID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	prev, ok := l.reports[stationID]
	if !ok {
		return nil
	}
	delete(l.reports, stationID)

	if err := l.persist(); err != nil {
		l.reports[stationID] = prev
		return err
	}
	return nil
}

// Get returns the open report for stationID, if any.
func (l *FileLedger) Get(ctx context.Context, stationID string) (models.MalfunctionReport, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.reports[stationID]
	if !ok {
		return models.MalfunctionReport{}, false, nil
	}
	return models.MalfunctionReport{StationID: stationID, Reason: e.Reason, ReportedAt: e.ReportedAt}, true, nil
}

// All returns every open report ordered by station id.
func (l *FileLedger) All(ctx context.Context) ([]models.MalfunctionReport, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	reports := make([]models.MalfunctionReport, 0, len(l.reports))
	for id, e := range l.reports {
		reports = append(reports, models.MalfunctionReport{StationID: id, Reason: e.Reason, ReportedAt: e.ReportedAt})
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].StationID < reports[j].StationID })
	return reports, nil
}

// persist writes the full state through a temp file and rename. Callers hold mu.
func (l *FileLedger) persist() error {
	data, err := json.MarshalIndent(l.reports, "", "    ")
	if err != nil {
		return fmt.Errorf("ledger: failed to marshal reports: %v: %w", err, models.ErrLedgerStorage)
	}

	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ledger: failed to create %s: %v: %w", dir, err, models.ErrLedgerStorage)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(l.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("ledger: failed to create temp file: %v: %w", err, models.ErrLedgerStorage)
	}
	tmpName := tmp.Name()

	werr := tmp.Chmod(0o644)
	if werr == nil {
		_, werr = tmp.Write(append(data, '\n'))
	}
	cerr := tmp.Close()
	if werr != nil || cerr != nil {
		os.Remove(tmpName)
		return fmt.Errorf("ledger: failed to write %s: %v: %w", tmpName, errors.Join(werr, cerr), models.ErrLedgerStorage)
	}

	if err := os.Rename(tmpName, l.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("ledger: failed to replace %s: %v: %w", l.path, err, models.ErrLedgerStorage)
	}
	return nil
}
