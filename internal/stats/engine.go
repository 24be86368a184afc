// Package stats folds a user's flight history into totals and count
// breakdowns.
//
// The input is trusted: callers filter out soft-deleted flights before
// aggregating.
package stats

import (
	"github.com/felixhommels/mcsbt-capstone-be/internal/geo"
	"github.com/felixhommels/mcsbt-capstone-be/internal/logging"
	"github.com/felixhommels/mcsbt-capstone-be/internal/metrics"
	"github.com/felixhommels/mcsbt-capstone-be/pkg/models"
)

var log = logging.For("stats")

// accumulator holds unrounded running sums for one snapshot.
type accumulator struct {
	distance float64
	carbon   float64
	hours    float64
	flights  int
	airports map[string]int
	airlines map[string]int
	aircraft map[string]int
	routes   map[string]int
}

func newAccumulator() *accumulator {
	return &accumulator{
		airports: make(map[string]int),
		airlines: make(map[string]int),
		aircraft: make(map[string]int),
		routes:   make(map[string]int),
	}
}

// add folds in one record. hours is the record's parsed duration, ok false
// when its time text was malformed.
func (a *accumulator) add(r models.FlightRecord, hours float64, ok bool) {
	a.flights++
	if r.EstimatedDistance != nil {
		a.distance += *r.EstimatedDistance
	}
	if r.EstimatedCO2 != nil {
		a.carbon += *r.EstimatedCO2
	}
	if ok {
		a.hours += hours
	}
	count(a.airports, r.OriginIATA)
	count(a.airports, r.DestinationIATA)
	count(a.airlines, r.AirlineName)
	count(a.aircraft, r.Aircraft)
	count(a.routes, r.Route)
}

func (a *accumulator) snapshot() models.Snapshot {
	return models.Snapshot{
		TotalDistance: geo.Round2(a.distance),
		TotalFlights:  a.flights,
		TotalCarbon:   geo.Round2(a.carbon),
		TotalTime:     geo.FormatDuration(a.hours),
		TopAirports:   a.airports,
		TopAirlines:   a.airlines,
		TopAircraft:   a.aircraft,
		TopRoutes:     a.routes,
	}
}

func count(m map[string]int, key *string) {
	if key == nil || *key == "" {
		return
	}
	m[*key]++
}

// recordHours parses a record's duration. A missing duration counts as zero;
// malformed text reports ok false and is left out of time totals.
func recordHours(r models.FlightRecord) (float64, bool) {
	if r.EstimatedTime == nil || *r.EstimatedTime == "" {
		return 0, true
	}
	h, err := geo.ParseDuration(*r.EstimatedTime)
	if err != nil {
		log.Debug("excluding malformed flight time", "flight_id", r.FlightID, "estimated_time", *r.EstimatedTime)
		return 0, false
	}
	return h, true
}

// Aggregate computes overall totals for records.
func Aggregate(records []models.FlightRecord) models.Snapshot {
	metrics.Aggregations.Inc()

	total := newAccumulator()
	for _, r := range records {
		h, ok := recordHours(r)
		total.add(r, h, ok)
	}
	return total.snapshot()
}

// AggregateYearly computes overall totals plus one snapshot per calendar
// year, keyed by the first four characters of the flight date. Flights
// without a date count toward the overall totals only.
func AggregateYearly(records []models.FlightRecord) models.Snapshot {
	metrics.Aggregations.Inc()

	total := newAccumulator()
	years := make(map[string]*accumulator)
	for _, r := range records {
		h, ok := recordHours(r)
		total.add(r, h, ok)

		if r.Date == nil || len(*r.Date) < 4 {
			continue
		}
		year := (*r.Date)[:4]
		acc, found := years[year]
		if !found {
			acc = newAccumulator()
			years[year] = acc
		}
		acc.add(r, h, ok)
	}

	snap := total.snapshot()
	snap.YearlyStatistics = make(map[string]*models.Snapshot, len(years))
	for year, acc := range years {
		s := acc.snapshot()
		snap.YearlyStatistics[year] = &s
	}
	return snap
}
