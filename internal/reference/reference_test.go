package reference

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixhommels/mcsbt-capstone-be/pkg/models"
)

// brokenLookup fails every call.
type brokenLookup struct{}

func (brokenLookup) Airports(context.Context, []string) (map[string]models.AirportInfo, error) {
	return nil, errors.New("connection refused")
}

func (brokenLookup) Airline(context.Context, string) (*models.AirlineInfo, error) {
	return nil, errors.New("connection refused")
}

func (brokenLookup) EmissionFactor(context.Context, string) (*float64, error) {
	return nil, errors.New("connection refused")
}

func TestMemoryAirportsReturnsOnlyMatches(t *testing.T) {
	m := SeedAirports(NewMemory())

	got, err := m.Airports(context.Background(), []string{"ZRH", "XXX", "JFK", "ZRH", ""})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "Zurich Airport", got["ZRH"].Name)
	assert.Contains(t, got, "JFK")
	assert.NotContains(t, got, "XXX")
}

func TestMemoryMissesAreNil(t *testing.T) {
	m := NewMemory()

	airline, err := m.Airline(context.Background(), "ZZZ")
	require.NoError(t, err)
	assert.Nil(t, airline)

	f, err := m.EmissionFactor(context.Background(), "C172")
	require.NoError(t, err)
	assert.Nil(t, f)
}

func TestAirlineName(t *testing.T) {
	m := SeedAirports(NewMemory())
	ctx := context.Background()

	tests := []struct {
		name   string
		lookup Lookup
		icao   string
		want   string
	}{
		{"hit", m, "SWR", "Swiss International Air Lines"},
		{"miss", m, "ZZZ", UnknownAirline},
		{"empty code", m, "", UnknownAirline},
		{"lookup failure", brokenLookup{}, "SWR", UnknownAirline},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, AirlineName(ctx, tc.lookup, tc.icao))
		})
	}
}

func TestEmissionFactorOrZero(t *testing.T) {
	m := NewMemory()
	m.AddEmissionFactor("B77W", 120)
	ctx := context.Background()

	assert.Equal(t, 120.0, EmissionFactorOrZero(ctx, m, "B77W"))
	assert.Equal(t, 0.0, EmissionFactorOrZero(ctx, m, "A388"))
	assert.Equal(t, 0.0, EmissionFactorOrZero(ctx, brokenLookup{}, "B77W"))
}

func TestMemoryReplace(t *testing.T) {
	m := NewMemory()
	m.AddAirline(models.AirlineInfo{ICAOCode: "SWR", Name: "Swissair"})
	m.AddAirline(models.AirlineInfo{ICAOCode: "SWR", Name: "Swiss"})

	got, err := m.Airline(context.Background(), "SWR")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Swiss", got.Name)
}
