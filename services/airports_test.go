package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbeddedAirports(t *testing.T) {
	table, err := LoadEmbeddedAirports()
	require.NoError(t, err)
	assert.Greater(t, table.Len(), 50)

	jfk, ok := table.Lookup("JFK")
	require.True(t, ok)
	assert.Equal(t, "New York", jfk.City)
	assert.InDelta(t, 40.6413, jfk.Lat, 1e-9)

	records := table.Records()
	assert.Equal(t, "JFK", records[0].Code)

	seen := map[string]bool{}
	for _, r := range records {
		assert.Len(t, r.Code, 3)
		assert.False(t, seen[r.Code], "duplicate %s", r.Code)
		seen[r.Code] = true
	}
}

func TestNewAirportTable(t *testing.T) {
	table, err := NewAirportTable([]AirportRecord{
		{Code: " aaa ", City: "Alpha", Lat: 0, Lon: 0},
		{Code: "BBB", City: "Beta", Lat: 0, Lon: 10},
	})
	require.NoError(t, err)
	_, ok := table.Lookup("AAA")
	assert.True(t, ok)

	_, err = NewAirportTable([]AirportRecord{{Code: "AAA"}, {Code: "aaa"}})
	assert.ErrorContains(t, err, "duplicate")

	_, err = NewAirportTable([]AirportRecord{{Code: "ABCD"}})
	assert.ErrorContains(t, err, "invalid airport code")
}

func TestAirportTable_Records_IsCopy(t *testing.T) {
	table, err := NewAirportTable([]AirportRecord{{Code: "AAA", City: "Alpha"}})
	require.NoError(t, err)

	records := table.Records()
	records[0].City = "changed"

	a, _ := table.Lookup("AAA")
	assert.Equal(t, "Alpha", a.City)
}

func TestAirportTable_Nearest(t *testing.T) {
	table, err := LoadEmbeddedAirports()
	require.NoError(t, err)

	// Eiffel Tower
	a, ok := table.Nearest(48.8584, 2.2945)
	require.True(t, ok)
	assert.Equal(t, "CDG", a.Code)

	// middle of the Pacific still yields something
	_, ok = table.Nearest(0, -150)
	assert.True(t, ok)

	var empty *AirportTable
	_, ok = empty.Nearest(0, 0)
	assert.False(t, ok)
	assert.Equal(t, 0, empty.Len())
}
