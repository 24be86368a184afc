// Package geo derives great-circle distance and flight duration estimates and
// converts between decimal hours and "HH:MM" text.
package geo

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	earthRadiusKm = 6371.0

	// CruiseSpeedKmh is the average speed used to turn distance into time.
	CruiseSpeedKmh = 850.0

	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// ErrInvalidDuration is returned by ParseDuration for text that is not "HH:MM".
var ErrInvalidDuration = errors.New("invalid duration")

// Distance returns the haversine distance in kilometers between two points,
// rounded to two decimals.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180.0
	dLon := (lon2 - lon1) * math.Pi / 180.0
	lat1r := lat1 * math.Pi / 180.0
	lat2r := lat2 * math.Pi / 180.0

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return Round2(earthRadiusKm * c)
}

// EstimateDuration returns the flight time in decimal hours for a distance.
func EstimateDuration(distanceKm float64) float64 {
	return distanceKm / CruiseSpeedKmh
}

// FormatDuration renders decimal hours as zero-padded "HH:MM". Minutes are
// rounded; a result of 60 carries into the hour.
func FormatDuration(hours float64) string {
	if hours < 0 || math.IsNaN(hours) || math.IsInf(hours, 0) {
		hours = 0
	}
	whole := int(hours)
	minutes := int(math.Round((hours - math.Floor(hours)) * 60))
	if minutes == 60 {
		whole++
		minutes = 0
	}
	return fmt.Sprintf("%02d:%02d", whole, minutes)
}

// ParseDuration converts "HH:MM" back to decimal hours.
func ParseDuration(s string) (float64, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}
	hours, err := strconv.Atoi(h)
	if err != nil || hours < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}
	minutes, err := strconv.Atoi(m)
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}
	return float64(hours) + float64(minutes)/60, nil
}

// Localize interprets a civil date ("2006-01-02") and wall-clock time
// ("15:04") in the named IANA zone and returns the absolute instant.
func Localize(date, clock, zone string) (time.Time, error) {
	loc, err := LoadZone(zone)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.ParseInLocation(dateLayout+" "+timeLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing %q %q: %w", date, clock, err)
	}
	return t, nil
}

// LoadZone loads a named IANA zone. The empty name and "Local" are rejected
// since they resolve to UTC or the host zone rather than a departure airport.
func LoadZone(zone string) (*time.Location, error) {
	if zone == "" || zone == "Local" {
		return nil, fmt.Errorf("zone %q is not an IANA zone name", zone)
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("loading zone %q: %w", zone, err)
	}
	return loc, nil
}

// ParseClock checks a wall-clock "15:04" time.
func ParseClock(clock string) error {
	if _, err := time.Parse(timeLayout, clock); err != nil {
		return fmt.Errorf("parsing time %q: %w", clock, err)
	}
	return nil
}

// ParseDate parses a civil "2006-01-02" date at UTC midnight.
func ParseDate(date string) (time.Time, error) {
	return time.Parse(dateLayout, date)
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
