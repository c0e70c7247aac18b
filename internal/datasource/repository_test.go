package datasource

import (
	"context"
	"path/filepath"
	"testing"

	"chargehub-api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVRepository_FindByPostalCode(t *testing.T) {
	path := writeFile(t, []byte(header+
		"Vattenfall;Invalidenstraße;1;10115;Berlin;52,5;13,4;22\n"+
		"Allego;Unter den Linden;5;10117;Berlin;52,51;13,39;50\n"+
		"EnBW;Chausseestraße;10;10115;Berlin;52,53;13,38;22\n"))
	repo := NewCSVRepository(path, NewCache(Options{}))

	tests := []struct {
		name      string
		code      string
		operators []string
	}{
		{name: "exact match keeps file order", code: "10115", operators: []string{"Vattenfall", "EnBW"}},
		{name: "substring does not match", code: "115", operators: []string{}},
		{name: "unknown code", code: "00000", operators: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := repo.FindByPostalCode(context.Background(), tt.code)
			require.NoError(t, err)

			operators := []string{}
			for _, s := range found {
				assert.Equal(t, tt.code, s.PostalCode)
				operators = append(operators, s.Operator)
			}
			assert.Equal(t, tt.operators, operators)
		})
	}
}

func TestCSVRepository_MissingFile(t *testing.T) {
	repo := NewCSVRepository(filepath.Join(t.TempDir(), "missing.csv"), NewCache(Options{}))

	found, err := repo.FindByPostalCode(context.Background(), "10115")
	assert.ErrorIs(t, err, models.ErrDataSourceNotFound)
	assert.NotNil(t, found)
	assert.Empty(t, found)
}
