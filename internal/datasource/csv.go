package datasource

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"chargehub-api/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

// stationNamespace seeds the UUIDv5 stable keys.
var stationNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("chargehub-api/stations"))

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Candidate header names per field, first match wins.
var (
	operatorColumns   = []string{"Betreiber"}
	postalCodeColumns = []string{"Postleitzahl", "PLZ"}
	latitudeColumns   = []string{"Breitengrad"}
	longitudeColumns  = []string{"Längengrad", "Laengengrad"}
	streetColumns     = []string{"Straße", "Strasse"}
	houseColumns      = []string{"Hausnummer"}
)

// BoundingBox restricts loaded stations to an inclusive lat/lon rectangle.
type BoundingBox struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// BerlinBoundingBox covers the Berlin city area.
var BerlinBoundingBox = BoundingBox{MinLat: 52.3, MaxLat: 52.7, MinLon: 13.0, MaxLon: 13.8}

// Contains reports whether the point lies inside the box, edges included.
func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

// Options tune how a station CSV is turned into records.
type Options struct {
	// BoundingBox, when set, drops stations outside the rectangle.
	BoundingBox *BoundingBox
}

// LoadStats summarizes a single load.
type LoadStats struct {
	Rows      int
	Loaded    int
	Malformed int
	NoPostal  int
	Filtered  int
	// NoCoordinates counts kept rows whose position was unusable and set to (0,0).
	NoCoordinates int
	Latin1        bool
	// MissingColumns lists expected headers that could not be resolved.
	MissingColumns []string
}

// LoadFile reads a semicolon separated Ladesäulenregister CSV. A missing file yields
// models.ErrDataSourceNotFound, an unusable file models.ErrDataSourceUnreadable; in both
// cases the returned slice is empty, never nil.
func LoadFile(path string, opts Options) ([]models.Station, LoadStats, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []models.Station{}, LoadStats{}, fmt.Errorf("datasource: %s: %w", path, models.ErrDataSourceNotFound)
		}
		return []models.Station{}, LoadStats{}, fmt.Errorf("datasource: failed to read %s: %v: %w", path, err, models.ErrDataSourceUnreadable)
	}

	text, latin1 := decode(raw)
	stations, stats, err := Parse(strings.NewReader(text), opts)
	stats.Latin1 = latin1
	if err != nil {
		return []models.Station{}, stats, fmt.Errorf("datasource: %s: %w", path, err)
	}

	log.Debug().
		Str("path", path).
		Int("rows", stats.Rows).
		Int("loaded", stats.Loaded).
		Int("malformed", stats.Malformed).
		Int("no_postal_code", stats.NoPostal).
		Int("filtered", stats.Filtered).
		Int("no_coordinates", stats.NoCoordinates).
		Bool("latin1", latin1).
		Msg("station csv loaded")

	return stations, stats, nil
}

// decode strips a UTF-8 BOM and reads every line that is not valid UTF-8 as Latin-1.
// Valid lines are kept as they are, so a single stray byte does not garble the header.
func decode(raw []byte) (string, bool) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(raw) {
		return string(raw), false
	}

	dec := charmap.ISO8859_1.NewDecoder()
	var b strings.Builder
	b.Grow(len(raw))
	for _, line := range bytes.SplitAfter(raw, []byte("\n")) {
		if utf8.Valid(line) {
			b.Write(line)
			continue
		}
		// Every byte sequence is valid ISO-8859-1, so this cannot fail.
		decoded, _ := dec.Bytes(line)
		b.Write(decoded)
	}
	return b.String(), true
}

// Parse reads station rows from already decoded CSV text.
func Parse(r io.Reader, opts Options) ([]models.Station, LoadStats, error) {
	var stats LoadStats

	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1 // Allow variable number of fields

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []models.Station{}, stats, fmt.Errorf("empty file: %w", models.ErrDataSourceUnreadable)
		}
		return []models.Station{}, stats, fmt.Errorf("failed to read header: %v: %w", err, models.ErrDataSourceUnreadable)
	}

	cols := newColumns(header)
	if cols.postalCode < 0 {
		return []models.Station{}, stats, fmt.Errorf("no postal code column: %w", models.ErrDataSourceUnreadable)
	}
	if cols.latitude < 0 {
		stats.MissingColumns = append(stats.MissingColumns, latitudeColumns[0])
	}
	if cols.longitude < 0 {
		stats.MissingColumns = append(stats.MissingColumns, longitudeColumns[0])
	}
	if len(stats.MissingColumns) > 0 {
		log.Warn().Strs("columns", stats.MissingColumns).Msg("coordinate columns not found, stations load without positions")
	}

	stations := []models.Station{}
	serials := make(map[string]int)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		stats.Rows++
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				stats.Malformed++
				continue
			}
			return []models.Station{}, stats, fmt.Errorf("failed to read record: %v: %w", err, models.ErrDataSourceUnreadable)
		}

		postalCode, err := models.NormalizePostalCode(field(record, cols.postalCode))
		if err != nil {
			stats.NoPostal++
			continue
		}

		lat, lon, located := parseCoordinates(field(record, cols.latitude), field(record, cols.longitude))
		if opts.BoundingBox != nil && !opts.BoundingBox.Contains(lat, lon) {
			stats.Filtered++
			continue
		}
		if !located {
			stats.NoCoordinates++
		}

		operator := strings.TrimSpace(field(record, cols.operator))
		street := strings.TrimSpace(strings.TrimSpace(field(record, cols.street)) + " " + strings.TrimSpace(field(record, cols.house)))

		serials[postalCode]++
		stations = append(stations, models.Station{
			ID:         fmt.Sprintf("BER-%s-%d", postalCode, serials[postalCode]),
			StableKey:  StableKey(operator, street, postalCode),
			Operator:   operator,
			Street:     street,
			PostalCode: postalCode,
			Latitude:   lat,
			Longitude:  lon,
		})
	}

	stats.Loaded = len(stations)
	return stations, stats, nil
}

// StableKey derives a content based identifier that survives reloads as long as the
// operator, street and postal code are unchanged.
func StableKey(operator, street, postalCode string) string {
	canon := func(s string) string {
		return strings.ToLower(strings.Join(strings.Fields(s), " "))
	}
	name := canon(operator) + "|" + canon(street) + "|" + postalCode
	return uuid.NewSHA1(stationNamespace, []byte(name)).String()
}

// parseCoordinates converts a German decimal pair ("52,5200", "13,4050"). The pair is
// kept only if both values are finite and within WGS84 range; otherwise it becomes
// (0,0), the unknown sentinel.
func parseCoordinates(latRaw, lonRaw string) (float64, float64, bool) {
	lat, latOK := parseCoordinate(latRaw, 90)
	lon, lonOK := parseCoordinate(lonRaw, 180)
	if !latOK || !lonOK {
		return 0, 0, false
	}
	return lat, lon, true
}

func parseCoordinate(s string, limit float64) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > limit {
		return 0, false
	}
	return v, true
}

type columns struct {
	operator, postalCode, latitude, longitude, street, house int
}

func newColumns(header []string) columns {
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = norm.NFC.String(strings.TrimSpace(name))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	find := func(candidates []string) int {
		for _, c := range candidates {
			if i, ok := index[c]; ok {
				return i
			}
		}
		return -1
	}
	return columns{
		operator:   find(operatorColumns),
		postalCode: find(postalCodeColumns),
		latitude:   find(latitudeColumns),
		longitude:  find(longitudeColumns),
		street:     find(streetColumns),
		house:      find(houseColumns),
	}
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return record[i]
}
