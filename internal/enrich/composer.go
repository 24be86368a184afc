// Package enrich composes canonical flight records from a bare flight
// identifier or a manually entered flight.
package enrich

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/felixhommels/mcsbt-capstone-be/internal/geo"
	"github.com/felixhommels/mcsbt-capstone-be/internal/ingestion"
	"github.com/felixhommels/mcsbt-capstone-be/internal/logging"
	"github.com/felixhommels/mcsbt-capstone-be/internal/metrics"
	"github.com/felixhommels/mcsbt-capstone-be/internal/reference"
	"github.com/felixhommels/mcsbt-capstone-be/internal/store"
	"github.com/felixhommels/mcsbt-capstone-be/pkg/models"
)

var log = logging.For("enrich")

// Resolver finds the telemetry of a scheduled flight.
type Resolver interface {
	Resolve(ctx context.Context, q ingestion.Query) (models.RawTelemetry, error)
}

// EnrichRequest identifies a flight to enrich for a user.
type EnrichRequest struct {
	UserID        string `json:"user_id" binding:"required"`
	FlightNumber  string `json:"flight_number" binding:"required"`
	Date          string `json:"date" binding:"required"`
	DepartureTime string `json:"departure_time" binding:"required"`
	Timezone      string `json:"timezone" binding:"required"`
}

// Composer orchestrates telemetry resolution, reference joins and the
// distance, duration and emission derivations.
type Composer struct {
	resolver Resolver
	ref      reference.Lookup
	store    store.Store
	newID    func() string
}

// Option configures a Composer.
type Option func(*Composer)

// WithStore sets the store used by EnrichAndStore and ManualAndStore.
func WithStore(s store.Store) Option {
	return func(c *Composer) { c.store = s }
}

// WithIDGenerator overrides flight id generation.
func WithIDGenerator(f func() string) Option {
	return func(c *Composer) { c.newID = f }
}

// NewComposer creates a Composer.
func NewComposer(r Resolver, ref reference.Lookup, opts ...Option) *Composer {
	c := &Composer{
		resolver: r,
		ref:      ref,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enrich resolves telemetry for req and composes the canonical record.
// Nothing is persisted.
func (c *Composer) Enrich(ctx context.Context, req EnrichRequest) (rec models.FlightRecord, err error) {
	start := time.Now()
	defer func() {
		metrics.Enrichments.WithLabelValues(outcome(err)).Inc()
		metrics.EnrichmentLatency.Observe(time.Since(start).Seconds())
	}()

	raw, err := c.resolver.Resolve(ctx, ingestion.Query{
		FlightNumber:  req.FlightNumber,
		Date:          req.Date,
		DepartureTime: req.DepartureTime,
		Timezone:      req.Timezone,
	})
	if err != nil {
		return models.FlightRecord{}, wrap("resolve telemetry", err)
	}

	orig, dest, err := c.endpoints(ctx, raw.OrigIATA, raw.DestIATA)
	if err != nil {
		return models.FlightRecord{}, err
	}

	rec = models.FlightRecord{
		FlightID:      c.newID(),
		UserID:        req.UserID,
		FlightNumber:  models.String(req.FlightNumber),
		Date:          models.String(req.Date),
		DepartureTime: models.String(req.DepartureTime),
		Timezone:      models.String(req.Timezone),
		AirlineICAO:   optional(raw.OperatingAs),
		AirlineName:   models.String(reference.AirlineName(ctx, c.ref, raw.OperatingAs)),
		Aircraft:      optional(raw.Type),
		Registration:  optional(raw.Reg),
	}
	c.derive(ctx, &rec, orig, dest)

	log.Info("flight enriched",
		"flight_id", rec.FlightID,
		"flight", req.FlightNumber,
		"route", *rec.Route,
		"distance_km", *rec.EstimatedDistance)
	return rec, nil
}

// EnrichAndStore enriches req and inserts the record. The store sees only
// fully composed records.
func (c *Composer) EnrichAndStore(ctx context.Context, req EnrichRequest) (models.FlightRecord, error) {
	rec, err := c.Enrich(ctx, req)
	if err != nil {
		return models.FlightRecord{}, err
	}
	return rec, c.save(ctx, rec)
}

// Manual composes a record from user-entered details. Distance, duration and
// emissions are always derived from the resolved airports and aircraft.
func (c *Composer) Manual(ctx context.Context, in models.ManualFlight) (models.FlightRecord, error) {
	if _, err := geo.ParseDate(in.Date); err != nil {
		return models.FlightRecord{}, wrap("manual flight", fmt.Errorf("%w: date %q", ErrInvalidTimeSpec, in.Date))
	}
	if in.DepartureTime != nil {
		if err := geo.ParseClock(*in.DepartureTime); err != nil {
			return models.FlightRecord{}, wrap("manual flight", fmt.Errorf("%w: %v", ErrInvalidTimeSpec, err))
		}
	}
	if in.Timezone != nil {
		if _, err := geo.LoadZone(*in.Timezone); err != nil {
			return models.FlightRecord{}, wrap("manual flight", fmt.Errorf("%w: %v", ErrInvalidTimeSpec, err))
		}
	}
	if in.DepartureTime != nil && in.Timezone != nil {
		if _, err := geo.Localize(in.Date, *in.DepartureTime, *in.Timezone); err != nil {
			return models.FlightRecord{}, wrap("manual flight", fmt.Errorf("%w: %v", ErrInvalidTimeSpec, err))
		}
	}

	orig, dest, err := c.endpoints(ctx, in.OriginIATA, in.DestinationIATA)
	if err != nil {
		return models.FlightRecord{}, err
	}

	rec := models.FlightRecord{
		FlightID:      c.newID(),
		UserID:        in.UserID,
		FlightNumber:  in.FlightNumber,
		Date:          models.String(in.Date),
		DepartureTime: in.DepartureTime,
		Timezone:      in.Timezone,
		AirlineICAO:   in.AirlineICAO,
		AirlineName:   in.AirlineName,
		Aircraft:      in.Aircraft,
		Registration:  in.Registration,
	}
	if rec.AirlineName == nil && in.AirlineICAO != nil {
		rec.AirlineName = models.String(reference.AirlineName(ctx, c.ref, *in.AirlineICAO))
	}
	c.derive(ctx, &rec, orig, dest)

	log.Info("manual flight composed", "flight_id", rec.FlightID, "route", *rec.Route)
	return rec, nil
}

// ManualAndStore composes a manual flight and inserts it.
func (c *Composer) ManualAndStore(ctx context.Context, in models.ManualFlight) (models.FlightRecord, error) {
	rec, err := c.Manual(ctx, in)
	if err != nil {
		return models.FlightRecord{}, err
	}
	return rec, c.save(ctx, rec)
}

func (c *Composer) save(ctx context.Context, rec models.FlightRecord) error {
	if c.store == nil {
		return &Error{Op: "store flight", Err: fmt.Errorf("no store configured")}
	}
	if err := c.store.Insert(ctx, rec); err != nil {
		return &Error{Op: "store flight", Err: err}
	}
	return nil
}

// endpoints resolves both airports. Either one missing is fatal.
func (c *Composer) endpoints(ctx context.Context, origCode, destCode string) (models.AirportInfo, models.AirportInfo, error) {
	found, err := c.ref.Airports(ctx, []string{origCode, destCode})
	if err != nil {
		metrics.ReferenceLookups.WithLabelValues("airport", "error").Inc()
		return models.AirportInfo{}, models.AirportInfo{}, &Error{Op: "lookup airports", Err: err}
	}

	orig, okOrig := found[origCode]
	dest, okDest := found[destCode]
	if !okOrig || !okDest {
		metrics.ReferenceLookups.WithLabelValues("airport", "miss").Inc()
		var missing []string
		if !okOrig {
			missing = append(missing, fmt.Sprintf("%q", origCode))
		}
		if !okDest {
			missing = append(missing, fmt.Sprintf("%q", destCode))
		}
		return models.AirportInfo{}, models.AirportInfo{}, wrap("lookup airports",
			fmt.Errorf("%w: airport %v", ErrReferenceDataMissing, missing))
	}
	metrics.ReferenceLookups.WithLabelValues("airport", "hit").Inc()
	return orig, dest, nil
}

// derive fills the route, coordinates and the distance, duration and
// emission chain. Duration is computed from distance and emissions from
// duration.
func (c *Composer) derive(ctx context.Context, rec *models.FlightRecord, orig, dest models.AirportInfo) {
	km := geo.Distance(orig.Latitude, orig.Longitude, dest.Latitude, dest.Longitude)
	hours := geo.EstimateDuration(km)

	var factor float64
	if rec.Aircraft != nil && *rec.Aircraft != "" {
		factor = reference.EmissionFactorOrZero(ctx, c.ref, *rec.Aircraft)
	}

	rec.OriginIATA = models.String(orig.IATACode)
	rec.OriginName = models.String(orig.Name)
	rec.DestinationIATA = models.String(dest.IATACode)
	rec.DestinationName = models.String(dest.Name)
	rec.Route = models.String(orig.IATACode + " - " + dest.IATACode)
	rec.DepLat = models.Float(orig.Latitude)
	rec.DepLong = models.Float(orig.Longitude)
	rec.ArrLat = models.Float(dest.Latitude)
	rec.ArrLong = models.Float(dest.Longitude)
	rec.EstimatedDistance = models.Float(km)
	rec.EstimatedTime = models.String(geo.FormatDuration(hours))
	rec.EstimatedCO2 = models.Float(geo.Round2(factor * hours))
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
