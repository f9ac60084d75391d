package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTablesValid(t *testing.T) {
	require.NoError(t, DefaultTables().Validate())
}

func TestValidateMissingDefault(t *testing.T) {
	tables := DefaultTables()
	delete(tables.Servers, Default)

	assert.Error(t, tables.Validate())
}

func TestValidateDanglingContinentRegion(t *testing.T) {
	tables := DefaultTables()
	tables.Continents["EU"] = Region("atlantis")

	assert.Error(t, tables.Validate())
}

func TestValidateDanglingCountryRegion(t *testing.T) {
	tables := DefaultTables()
	tables.Countries["TR"] = Region("atlantis")

	assert.Error(t, tables.Validate())
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "eu", Label("eu.example.io"))
	assert.Equal(t, "us", Label("us.example.io"))
	assert.Equal(t, "localhost", Label("localhost"))
}

func TestOrUnknown(t *testing.T) {
	assert.Equal(t, "FR", OrUnknown("FR"))
	assert.Equal(t, Unknown, OrUnknown(""))
}
