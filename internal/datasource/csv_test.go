package datasource

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"chargehub-api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

const header = "Betreiber;Straße;Hausnummer;Postleitzahl;Ort;Breitengrad;Längengrad;Nennleistung Ladeeinrichtung [kW]\n"

func writeFile(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Ladesaeulenregister.csv")
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestLoadFile_GermanDecimals(t *testing.T) {
	path := writeFile(t, []byte(header+
		"Vattenfall;Invalidenstraße;1;10115;Berlin;52,5200;13,4050;22\n"))

	stations, stats, err := LoadFile(path, Options{})
	require.NoError(t, err)
	require.Len(t, stations, 1)

	s := stations[0]
	assert.Equal(t, "BER-10115-1", s.ID)
	assert.Equal(t, "Vattenfall", s.Operator)
	assert.Equal(t, "Invalidenstraße 1", s.Street)
	assert.Equal(t, "10115", s.PostalCode)
	assert.Equal(t, 52.52, s.Latitude)
	assert.Equal(t, 13.405, s.Longitude)
	assert.NotEmpty(t, s.StableKey)
	assert.Equal(t, 1, stats.Rows)
	assert.False(t, stats.Latin1)
}

func TestLoadFile_BOMAndHeaderWhitespace(t *testing.T) {
	content := append([]byte{0xEF, 0xBB, 0xBF},
		[]byte(" Betreiber ; Straße ;Hausnummer; Postleitzahl ;Breitengrad ; Längengrad\n"+
			"Allego;Unter den Linden;5;10117;52,51;13,39\n")...)
	path := writeFile(t, content)

	stations, _, err := LoadFile(path, Options{})
	require.NoError(t, err)
	require.Len(t, stations, 1)
	assert.Equal(t, "Allego", stations[0].Operator)
	assert.Equal(t, "10117", stations[0].PostalCode)
	assert.Equal(t, 52.51, stations[0].Latitude)
	assert.Equal(t, 13.39, stations[0].Longitude)
}

func TestLoadFile_Latin1Fallback(t *testing.T) {
	text := header + "Stromnetz Berlin;Müllerstraße;12;13353;Berlin;52,54;13,35;11\n"
	encoded, err := charmap.ISO8859_1.NewEncoder().String(text)
	require.NoError(t, err)
	path := writeFile(t, []byte(encoded))

	stations, stats, err := LoadFile(path, Options{})
	require.NoError(t, err)
	require.Len(t, stations, 1)
	assert.True(t, stats.Latin1)
	assert.Equal(t, "Müllerstraße 12", stations[0].Street)
	assert.Equal(t, 13.35, stations[0].Longitude)
}

func TestLoadFile_ColumnFallbacks(t *testing.T) {
	path := writeFile(t, []byte(
		"Betreiber;Strasse;Hausnummer;PLZ;Ort;Breitengrad;Laengengrad\n"+
			"Vattenfall;Musterstrasse;1;10115;Berlin;52.5;13.4\n"))

	stations, _, err := LoadFile(path, Options{})
	require.NoError(t, err)
	require.Len(t, stations, 1)
	assert.Equal(t, "Musterstrasse 1", stations[0].Street)
	assert.Equal(t, 52.5, stations[0].Latitude)
	assert.Equal(t, 13.4, stations[0].Longitude)
}

func TestLoadFile_DecomposedUmlautHeader(t *testing.T) {
	// "Längengrad" spelled with a combining diaeresis.
	path := writeFile(t, []byte(
		"Betreiber;Postleitzahl;Breitengrad;La\u0308ngengrad\n"+
			"EnBW;10115;52,53;13,38\n"))

	stations, _, err := LoadFile(path, Options{})
	require.NoError(t, err)
	require.Len(t, stations, 1)
	assert.Equal(t, 13.38, stations[0].Longitude)
}

func TestLoadFile_RowPolicies(t *testing.T) {
	path := writeFile(t, []byte(header+
		"A;Weg;1;10115;Berlin;52,5;13,4;22\n"+
		"B;Weg;2;;Berlin;52,5;13,4;22\n"+ // no postal code, dropped
		"C;Weg;3;1011x;Berlin;52,5;13,4;22\n"+ // bad postal code, dropped
		"D;Weg;4;1067;Dresden;51,05;13,74;22\n"+ // padded to 01067
		"E;Weg;5;10115;Berlin;unbekannt;;22\n"+ // unknown coordinates become 0,0
		"F;We\"g;6;10115;Berlin;52,5;13,4;22\n"+ // bare quote, malformed
		"G;Weg;7;10117\n"+ // short row still usable
		"H;Weg;8;10115;Berlin;52,6;13,5;22\n"))

	stations, stats, err := LoadFile(path, Options{})
	require.NoError(t, err)

	ids := make([]string, 0, len(stations))
	for _, s := range stations {
		ids = append(ids, s.Operator+":"+s.ID)
	}
	assert.Equal(t, []string{
		"A:BER-10115-1",
		"D:BER-01067-1",
		"E:BER-10115-2",
		"G:BER-10117-1",
		"H:BER-10115-3",
	}, ids)

	assert.Equal(t, 0.0, stations[2].Latitude)
	assert.Equal(t, 0.0, stations[2].Longitude)
	assert.False(t, stations[2].HasCoordinates())

	assert.Equal(t, 8, stats.Rows)
	assert.Equal(t, 5, stats.Loaded)
	assert.Equal(t, 2, stats.NoPostal)
	assert.Equal(t, 1, stats.Malformed)
	assert.Equal(t, 2, stats.NoCoordinates)
	assert.Empty(t, stats.MissingColumns)
}

func TestLoadFile_UnusableCoordinates(t *testing.T) {
	tests := []struct {
		name string
		lat  string
		lon  string
	}{
		{name: "nan latitude", lat: "NaN", lon: "13,4"},
		{name: "infinite latitude", lat: "Inf", lon: "13,4"},
		{name: "negative infinite longitude", lat: "52,5", lon: "-Infinity"},
		{name: "latitude out of range", lat: "91", lon: "13,4"},
		{name: "longitude out of range", lat: "52,5", lon: "181,0"},
		{name: "only latitude parses", lat: "52,5", lon: "kaputt"},
		{name: "only longitude parses", lat: "", lon: "13,4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, []byte(header+
				"Vattenfall;Weg;1;10117;Berlin;"+tt.lat+";"+tt.lon+";22\n"))

			stations, stats, err := LoadFile(path, Options{})
			require.NoError(t, err)
			require.Len(t, stations, 1)

			assert.Equal(t, 0.0, stations[0].Latitude)
			assert.Equal(t, 0.0, stations[0].Longitude)
			assert.False(t, stations[0].HasCoordinates())
			assert.Equal(t, 1, stats.NoCoordinates)

			_, err = json.Marshal(stations)
			assert.NoError(t, err)
		})
	}
}

func TestLoadFile_CoordinateRangeEdges(t *testing.T) {
	path := writeFile(t, []byte(header+
		"Pole;Weg;1;10115;Berlin;-90;180;22\n"))

	stations, stats, err := LoadFile(path, Options{})
	require.NoError(t, err)
	require.Len(t, stations, 1)
	assert.Equal(t, -90.0, stations[0].Latitude)
	assert.Equal(t, 180.0, stations[0].Longitude)
	assert.Equal(t, 0, stats.NoCoordinates)
}

func TestLoadFile_MixedEncoding(t *testing.T) {
	content := []byte(header +
		"Vattenfall;Invalidenstraße;1;10115;Berlin;52,53;13,38;22\n" +
		"Caf\xe9 Strom;Weg;2;10115;Berlin;52,52;13,37;22\n")
	path := writeFile(t, content)

	stations, stats, err := LoadFile(path, Options{})
	require.NoError(t, err)
	require.Len(t, stations, 2)
	assert.True(t, stats.Latin1)
	assert.Empty(t, stats.MissingColumns)

	assert.Equal(t, "Invalidenstraße 1", stations[0].Street)
	assert.Equal(t, 13.38, stations[0].Longitude)
	assert.Equal(t, "Café Strom", stations[1].Operator)
	assert.Equal(t, "Weg 2", stations[1].Street)
	assert.Equal(t, 13.37, stations[1].Longitude)
}

func TestLoadFile_MissingCoordinateColumns(t *testing.T) {
	path := writeFile(t, []byte(
		"Betreiber;Straße;Hausnummer;Postleitzahl;Breitengrad\n"+
			"Vattenfall;Weg;1;10115;52,5\n"))

	stations, stats, err := LoadFile(path, Options{})
	require.NoError(t, err)
	require.Len(t, stations, 1)
	assert.Equal(t, []string{"Längengrad"}, stats.MissingColumns)
	assert.False(t, stations[0].HasCoordinates())
	assert.Equal(t, 1, stats.NoCoordinates)
}

func TestLoadFile_BoundingBox(t *testing.T) {
	path := writeFile(t, []byte(header+
		"Inside;Weg;1;10115;Berlin;52,5;13,4;22\n"+
		"Edge;Weg;2;10115;Berlin;52,7;13,8;22\n"+
		"Potsdam;Weg;3;14467;Potsdam;52,39;12,9;22\n"+
		"Unknown;Weg;4;10115;Berlin;;;22\n"))

	box := BerlinBoundingBox
	stations, stats, err := LoadFile(path, Options{BoundingBox: &box})
	require.NoError(t, err)

	require.Len(t, stations, 2)
	assert.Equal(t, "Inside", stations[0].Operator)
	assert.Equal(t, "Edge", stations[1].Operator)
	assert.Equal(t, "BER-10115-2", stations[1].ID)
	assert.Equal(t, 2, stats.Filtered)
}

func TestLoadFile_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		stations, _, err := LoadFile(filepath.Join(t.TempDir(), "nope.csv"), Options{})
		assert.ErrorIs(t, err, models.ErrDataSourceNotFound)
		assert.NotNil(t, stations)
		assert.Empty(t, stations)
	})

	t.Run("empty file", func(t *testing.T) {
		stations, _, err := LoadFile(writeFile(t, nil), Options{})
		assert.ErrorIs(t, err, models.ErrDataSourceUnreadable)
		assert.Empty(t, stations)
	})

	t.Run("no postal code column", func(t *testing.T) {
		stations, _, err := LoadFile(writeFile(t, []byte("Betreiber;Ort\nVattenfall;Berlin\n")), Options{})
		assert.ErrorIs(t, err, models.ErrDataSourceUnreadable)
		assert.Empty(t, stations)
	})
}

func TestStableKey(t *testing.T) {
	a := StableKey("Vattenfall", "Invalidenstraße 1", "10115")
	b := StableKey(" vattenfall ", "Invalidenstraße  1", "10115")
	c := StableKey("Vattenfall", "Invalidenstraße 1", "10117")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestParse_FileOrderPreserved(t *testing.T) {
	var b strings.Builder
	b.WriteString(header)
	for _, op := range []string{"Z", "A", "M"} {
		b.WriteString(op + ";Weg;1;10115;Berlin;52,5;13,4;22\n")
	}

	stations, _, err := Parse(strings.NewReader(b.String()), Options{})
	require.NoError(t, err)
	require.Len(t, stations, 3)
	assert.Equal(t, "Z", stations[0].Operator)
	assert.Equal(t, "A", stations[1].Operator)
	assert.Equal(t, "M", stations[2].Operator)
}
