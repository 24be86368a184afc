// Package reference resolves airport, airline and aircraft emission-factor
// reference data by key.
//
// Misses are reported as absent values, never as errors. Whether a miss is
// fatal is the caller's decision: airports are required for distance, while
// AirlineName and EmissionFactorOrZero degrade to sentinels.
package reference

import (
	"context"
	"strings"
	"sync"

	"github.com/felixhommels/mcsbt-capstone-be/internal/logging"
	"github.com/felixhommels/mcsbt-capstone-be/internal/metrics"
	"github.com/felixhommels/mcsbt-capstone-be/pkg/models"
)

// UnknownAirline is the name reported when an operator code has no match.
const UnknownAirline = "Unknown"

var log = logging.For("reference")

// Lookup is a keyed, read-only reference source.
type Lookup interface {
	// Airports returns the subset of codes that resolved.
	Airports(ctx context.Context, codes []string) (map[string]models.AirportInfo, error)
	// Airline returns nil when the ICAO code is unknown.
	Airline(ctx context.Context, icao string) (*models.AirlineInfo, error)
	// EmissionFactor returns kg CO2 per passenger per hour, or nil when unknown.
	EmissionFactor(ctx context.Context, aircraft string) (*float64, error)
}

// AirlineName resolves an operator code to a display name, degrading to
// UnknownAirline on a miss or a lookup failure.
func AirlineName(ctx context.Context, l Lookup, icao string) string {
	info, err := l.Airline(ctx, icao)
	switch {
	case err != nil:
		metrics.ReferenceLookups.WithLabelValues("airline", "error").Inc()
		log.Warn("airline lookup failed", "icao", icao, "error", err)
		return UnknownAirline
	case info == nil:
		metrics.ReferenceLookups.WithLabelValues("airline", "miss").Inc()
		log.Warn("airline not found", "icao", icao)
		return UnknownAirline
	}
	metrics.ReferenceLookups.WithLabelValues("airline", "hit").Inc()
	return info.Name
}

// EmissionFactorOrZero resolves an aircraft type's emission factor,
// degrading to 0 on a miss or a lookup failure.
func EmissionFactorOrZero(ctx context.Context, l Lookup, aircraft string) float64 {
	f, err := l.EmissionFactor(ctx, aircraft)
	switch {
	case err != nil:
		metrics.ReferenceLookups.WithLabelValues("emission", "error").Inc()
		log.Warn("emission factor lookup failed", "aircraft", aircraft, "error", err)
		return 0
	case f == nil:
		metrics.ReferenceLookups.WithLabelValues("emission", "miss").Inc()
		log.Warn("emission factor not found", "aircraft", aircraft)
		return 0
	}
	metrics.ReferenceLookups.WithLabelValues("emission", "hit").Inc()
	return *f
}

// dedupe drops empty and repeated codes, keeping first-seen order.
func dedupe(codes []string) []string {
	out := make([]string, 0, len(codes))
	seen := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// ---------------------------------------------------------------------------
// In-memory fixture
// ---------------------------------------------------------------------------

// Memory is a map-backed Lookup, safe for concurrent use.
type Memory struct {
	mu        sync.RWMutex
	airports  map[string]models.AirportInfo
	airlines  map[string]models.AirlineInfo
	emissions map[string]float64
}

// NewMemory creates an empty in-memory reference source.
func NewMemory() *Memory {
	return &Memory{
		airports:  make(map[string]models.AirportInfo),
		airlines:  make(map[string]models.AirlineInfo),
		emissions: make(map[string]float64),
	}
}

// AddAirport registers or replaces an airport.
func (m *Memory) AddAirport(a models.AirportInfo) {
	m.mu.Lock()
	m.airports[a.IATACode] = a
	m.mu.Unlock()
}

// AddAirline registers or replaces an airline.
func (m *Memory) AddAirline(a models.AirlineInfo) {
	m.mu.Lock()
	m.airlines[a.ICAOCode] = a
	m.mu.Unlock()
}

// AddEmissionFactor registers or replaces an aircraft emission factor.
func (m *Memory) AddEmissionFactor(aircraft string, kgPerPaxHour float64) {
	m.mu.Lock()
	m.emissions[aircraft] = kgPerPaxHour
	m.mu.Unlock()
}

func (m *Memory) Airports(_ context.Context, codes []string) (map[string]models.AirportInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]models.AirportInfo, len(codes))
	for _, c := range dedupe(codes) {
		if a, ok := m.airports[c]; ok {
			out[c] = a
		}
	}
	return out, nil
}

func (m *Memory) Airline(_ context.Context, icao string) (*models.AirlineInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.airlines[icao]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (m *Memory) EmissionFactor(_ context.Context, aircraft string) (*float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	f, ok := m.emissions[aircraft]
	if !ok {
		return nil, nil
	}
	return &f, nil
}
