package ingestion

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/felixhommels/mcsbt-capstone-be/internal/geo"
	"github.com/felixhommels/mcsbt-capstone-be/internal/logging"
	"github.com/felixhommels/mcsbt-capstone-be/internal/metrics"
	"github.com/felixhommels/mcsbt-capstone-be/pkg/models"
)

// DefaultStaleWindowDays is how far back the provider keeps position history.
const DefaultStaleWindowDays = 30

// probeOffsets is the retry ladder, probed in order after scheduled departure.
var probeOffsets = [...]time.Duration{
	30 * time.Minute,
	60 * time.Minute,
	90 * time.Minute,
	120 * time.Minute,
}

var (
	ErrStaleRequest      = errors.New("date too far in the past")
	ErrTelemetryNotFound = errors.New("telemetry not found")
	ErrInvalidTimeSpec   = errors.New("invalid date, time or timezone")
)

var log = logging.For("ingestion")

// Provider looks up positions for a flight at one instant.
type Provider interface {
	Lookup(ctx context.Context, flight string, at time.Time) ([]models.RawTelemetry, error)
}

// Query identifies a scheduled departure in local civil time.
type Query struct {
	FlightNumber  string
	Date          string // 2006-01-02
	DepartureTime string // 15:04
	Timezone      string // IANA zone name
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithClock replaces time.Now for the stale-date check.
func WithClock(now func() time.Time) ResolverOption {
	return func(r *Resolver) { r.now = now }
}

// WithStaleWindow sets the maximum age in days of a resolvable date.
func WithStaleWindow(days int) ResolverOption {
	return func(r *Resolver) {
		if days > 0 {
			r.staleDays = days
		}
	}
}

// Resolver walks the offset ladder against a Provider until a probe matches.
type Resolver struct {
	provider  Provider
	now       func() time.Time
	staleDays int
}

// NewResolver creates a resolver over the given provider.
func NewResolver(p Provider, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		provider:  p,
		now:       time.Now,
		staleDays: DefaultStaleWindowDays,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Attempts is the fixed number of probes per resolution.
func Attempts() int { return len(probeOffsets) }

// Resolve returns the first telemetry record found on the ladder. Probes run
// back-to-back in ascending offset order; a provider error counts as an
// empty probe unless the context is done.
func (r *Resolver) Resolve(ctx context.Context, q Query) (models.RawTelemetry, error) {
	requested, err := geo.ParseDate(q.Date)
	if err != nil {
		return models.RawTelemetry{}, fmt.Errorf("%w: date %q", ErrInvalidTimeSpec, q.Date)
	}
	if r.isStale(requested) {
		return models.RawTelemetry{}, fmt.Errorf("%w: %s is older than %d days", ErrStaleRequest, q.Date, r.staleDays)
	}

	departure, err := geo.Localize(q.Date, q.DepartureTime, q.Timezone)
	if err != nil {
		return models.RawTelemetry{}, fmt.Errorf("%w: %v", ErrInvalidTimeSpec, err)
	}

	for attempt, offset := range probeOffsets {
		at := departure.Add(offset)
		start := time.Now()
		found, err := r.provider.Lookup(ctx, q.FlightNumber, at)
		metrics.ProviderLatency.Observe(time.Since(start).Seconds())

		if err != nil {
			metrics.ProviderProbes.WithLabelValues("error").Inc()
			if ctxErr := ctx.Err(); ctxErr != nil {
				return models.RawTelemetry{}, ctxErr
			}
			log.Debug("probe failed", "flight", q.FlightNumber, "attempt", attempt+1,
				"offset_min", offset.Minutes(), "instant", at.Unix(), "error", err)
			continue
		}
		if len(found) == 0 {
			metrics.ProviderProbes.WithLabelValues("empty").Inc()
			log.Debug("probe empty", "flight", q.FlightNumber, "attempt", attempt+1,
				"offset_min", offset.Minutes(), "instant", at.Unix())
			continue
		}

		metrics.ProviderProbes.WithLabelValues("match").Inc()
		metrics.ProbeMatches.WithLabelValues(strconv.Itoa(int(offset.Minutes()))).Inc()
		log.Debug("probe matched", "flight", q.FlightNumber, "attempt", attempt+1,
			"offset_min", offset.Minutes(), "instant", at.Unix())
		return found[0], nil
	}

	return models.RawTelemetry{}, fmt.Errorf("%w: %s after %d probes", ErrTelemetryNotFound, q.FlightNumber, len(probeOffsets))
}

// isStale compares calendar dates so the time of day does not matter.
func (r *Resolver) isStale(requested time.Time) bool {
	now := r.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	days := int(today.Sub(requested).Hours() / 24)
	return days > r.staleDays
}
