package geo

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceSymmetric(t *testing.T) {
	points := []struct {
		name       string
		lat1, lon1 float64
		lat2, lon2 float64
	}{
		{"ZRH-JFK", 47.4647, 8.5492, 40.6413, -73.7781},
		{"SYD-LHR", -33.9399, 151.1753, 51.4700, -0.4543},
		{"antimeridian", 35.0, 179.9, 35.0, -179.9},
		{"poles", 90, 0, -90, 0},
	}

	for _, p := range points {
		t.Run(p.name, func(t *testing.T) {
			ab := Distance(p.lat1, p.lon1, p.lat2, p.lon2)
			ba := Distance(p.lat2, p.lon2, p.lat1, p.lon1)
			assert.Equal(t, ab, ba)
			assert.Greater(t, ab, 0.0)
		})
	}
}

func TestDistanceIdentical(t *testing.T) {
	assert.Equal(t, 0.0, Distance(49.1967, -123.1815, 49.1967, -123.1815))
}

func TestDistanceRoundedToTwoDecimals(t *testing.T) {
	d := Distance(47.4647, 8.5492, 40.6413, -73.7781)
	assert.InDelta(t, 6320, d, 50)
	assert.Equal(t, d, math.Round(d*100)/100)
}

func TestEstimateDuration(t *testing.T) {
	assert.InDelta(t, 1.0, EstimateDuration(850), 1e-9)
	assert.InDelta(t, 0.5, EstimateDuration(425), 1e-9)
	assert.Equal(t, 0.0, EstimateDuration(0))
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		hours float64
		want  string
	}{
		{0, "00:00"},
		{0.5, "00:30"},
		{1.25, "01:15"},
		{9.411764, "09:25"},
		{1.999, "02:00"},
		{123.5, "123:30"},
		{-1, "00:00"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.hours), "hours=%v", tt.hours)
	}
}

func TestParseDuration(t *testing.T) {
	h, err := ParseDuration("09:25")
	require.NoError(t, err)
	assert.InDelta(t, 9+25.0/60, h, 1e-9)

	h, err = ParseDuration("123:30")
	require.NoError(t, err)
	assert.InDelta(t, 123.5, h, 1e-9)

	for _, bad := range []string{"", "9", "ab:cd", "01:60", "-1:00", "01:-5"} {
		_, err := ParseDuration(bad)
		assert.ErrorIs(t, err, ErrInvalidDuration, "input %q", bad)
	}
}

func TestDurationRoundTripLongHaul(t *testing.T) {
	d := Distance(47.4647, 8.5492, 1.3644, 103.9915)
	require.InDelta(t, 10300, d, 400)

	fixtures := []float64{8000, d}
	for _, km := range fixtures {
		hours := EstimateDuration(km)
		parsed, err := ParseDuration(FormatDuration(hours))
		require.NoError(t, err)
		assert.InDelta(t, hours, parsed, 1.0/60, "km=%v", km)
	}
}

func TestLocalize(t *testing.T) {
	got, err := Localize("2025-02-18", "13:00", "Europe/Zurich")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 2, 18, 12, 0, 0, 0, time.UTC), got.UTC())

	// Summer time in Zurich is UTC+2.
	got, err = Localize("2025-07-01", "13:00", "Europe/Zurich")
	require.NoError(t, err)
	assert.Equal(t, int64(1751367600), got.Unix())
}

func TestLocalizeInvalid(t *testing.T) {
	_, err := Localize("2025-02-18", "13:00", "Mars/Olympus")
	assert.Error(t, err)

	_, err = Localize("2025-02-30", "13:00", "UTC")
	assert.Error(t, err)

	_, err = Localize("2025-02-18", "25:00", "UTC")
	assert.Error(t, err)

	for _, zone := range []string{"", "Local"} {
		_, err = Localize("2025-02-18", "13:00", zone)
		assert.Error(t, err, "zone %q", zone)
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		clock   string
		wantErr bool
	}{
		{"00:00", false},
		{"23:59", false},
		{"24:00", true},
		{"99:99", true},
		{"8am", true},
		{"", true},
	}
	for _, tt := range tests {
		t.Run(tt.clock, func(t *testing.T) {
			err := ParseClock(tt.clock)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
