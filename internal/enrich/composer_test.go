package enrich

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixhommels/mcsbt-capstone-be/internal/geo"
	"github.com/felixhommels/mcsbt-capstone-be/internal/ingestion"
	"github.com/felixhommels/mcsbt-capstone-be/internal/reference"
	"github.com/felixhommels/mcsbt-capstone-be/internal/store"
	"github.com/felixhommels/mcsbt-capstone-be/pkg/models"
)

type fakeResolver struct {
	raw   models.RawTelemetry
	err   error
	calls int
}

func (f *fakeResolver) Resolve(context.Context, ingestion.Query) (models.RawTelemetry, error) {
	f.calls++
	return f.raw, f.err
}

// failingStore rejects every insert.
type failingStore struct{ store.Store }

func (failingStore) Insert(context.Context, models.FlightRecord) error {
	return errors.New("disk full")
}

func lx14() models.RawTelemetry {
	return models.RawTelemetry{
		Flight:      "LX14",
		Type:        "B77W",
		Reg:         "HB-JNA",
		OperatingAs: "SWR",
		OrigIATA:    "ZRH",
		DestIATA:    "JFK",
	}
}

func request() EnrichRequest {
	return EnrichRequest{
		UserID:        "alice",
		FlightNumber:  "LX14",
		Date:          "2025-02-18",
		DepartureTime: "13:00",
		Timezone:      "Europe/Zurich",
	}
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("flight-%d", n)
	}
}

func newComposer(r Resolver, opts ...Option) *Composer {
	opts = append([]Option{WithIDGenerator(sequentialIDs())}, opts...)
	return NewComposer(r, reference.SeedAirports(reference.NewMemory()), opts...)
}

func TestEnrichComposesConsistentRecord(t *testing.T) {
	c := newComposer(&fakeResolver{raw: lx14()})

	rec, err := c.Enrich(context.Background(), request())
	require.NoError(t, err)

	assert.Equal(t, "flight-1", rec.FlightID)
	assert.Equal(t, "alice", rec.UserID)
	assert.Equal(t, "ZRH - JFK", *rec.Route)
	assert.Equal(t, "Zurich Airport", *rec.OriginName)
	assert.Equal(t, "John F. Kennedy International Airport", *rec.DestinationName)
	assert.Equal(t, "Swiss International Air Lines", *rec.AirlineName)
	assert.Equal(t, "SWR", *rec.AirlineICAO)
	assert.Equal(t, "B77W", *rec.Aircraft)
	assert.Equal(t, "HB-JNA", *rec.Registration)
	assert.Equal(t, "Europe/Zurich", *rec.Timezone)
	assert.False(t, rec.Deleted)

	km := geo.Distance(47.4647, 8.5492, 40.6413, -73.7781)
	hours := geo.EstimateDuration(km)
	assert.Equal(t, km, *rec.EstimatedDistance)
	assert.Equal(t, geo.FormatDuration(hours), *rec.EstimatedTime)
	assert.Equal(t, geo.Round2(120*hours), *rec.EstimatedCO2)
	assert.InDelta(t, 6320, km, 50)
	assert.Equal(t, 47.4647, *rec.DepLat)
	assert.Equal(t, -73.7781, *rec.ArrLong)
}

func TestEnrichToleratesReferenceGaps(t *testing.T) {
	raw := lx14()
	raw.OperatingAs = "ZZZ"
	raw.Type = "C172"
	c := newComposer(&fakeResolver{raw: raw})

	rec, err := c.Enrich(context.Background(), request())
	require.NoError(t, err)
	assert.Equal(t, reference.UnknownAirline, *rec.AirlineName)
	assert.Equal(t, 0.0, *rec.EstimatedCO2)
	assert.NotZero(t, *rec.EstimatedDistance)
}

func TestEnrichMissingAirportIsFatal(t *testing.T) {
	tests := []struct {
		name       string
		orig, dest string
	}{
		{"origin", "XXX", "JFK"},
		{"destination", "ZRH", "XXX"},
		{"both", "XXX", "YYY"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			raw := lx14()
			raw.OrigIATA, raw.DestIATA = tc.orig, tc.dest
			st := store.NewMemory()
			c := newComposer(&fakeResolver{raw: raw}, WithStore(st))

			_, err := c.EnrichAndStore(context.Background(), request())
			assert.ErrorIs(t, err, ErrReferenceDataMissing)

			var e *Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, ErrReferenceDataMissing, e.Kind)

			stored, err := st.QueryByUser(context.Background(), "alice", true)
			require.NoError(t, err)
			assert.Empty(t, stored)
		})
	}
}

func TestEnrichPropagatesResolverKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
	}{
		{"stale", fmt.Errorf("%w: too old", ingestion.ErrStaleRequest), ErrStaleRequest},
		{"not found", fmt.Errorf("%w: LX14", ingestion.ErrTelemetryNotFound), ErrTelemetryNotFound},
		{"invalid time", fmt.Errorf("%w: bad zone", ingestion.ErrInvalidTimeSpec), ErrInvalidTimeSpec},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newComposer(&fakeResolver{err: tc.err})
			_, err := c.Enrich(context.Background(), request())
			assert.ErrorIs(t, err, tc.kind)

			var e *Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tc.kind, e.Kind)
			assert.Equal(t, "resolve telemetry", e.Op)
		})
	}
}

func TestEnrichContextErrorHasNoKind(t *testing.T) {
	c := newComposer(&fakeResolver{err: context.DeadlineExceeded})
	_, err := c.Enrich(context.Background(), request())

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Nil(t, e.Kind)
}

func TestEnrichAndStorePersists(t *testing.T) {
	st := store.NewMemory()
	c := newComposer(&fakeResolver{raw: lx14()}, WithStore(st))

	rec, err := c.EnrichAndStore(context.Background(), request())
	require.NoError(t, err)

	got, err := st.Get(context.Background(), rec.FlightID)
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestSaveFailures(t *testing.T) {
	_, err := newComposer(&fakeResolver{raw: lx14()}).EnrichAndStore(context.Background(), request())
	assert.ErrorContains(t, err, "no store configured")

	c := newComposer(&fakeResolver{raw: lx14()}, WithStore(failingStore{}))
	_, err = c.EnrichAndStore(context.Background(), request())
	assert.ErrorContains(t, err, "disk full")
}

func TestManualDerivesFromAirports(t *testing.T) {
	r := &fakeResolver{}
	st := store.NewMemory()
	c := newComposer(r, WithStore(st))

	rec, err := c.ManualAndStore(context.Background(), models.ManualFlight{
		UserID:          "alice",
		Date:            "2019-07-04",
		OriginIATA:      "LHR",
		DestinationIATA: "JFK",
		AirlineICAO:     models.String("BAW"),
		Aircraft:        models.String("B77W"),
	})
	require.NoError(t, err)
	assert.Zero(t, r.calls)

	assert.Equal(t, "British Airways", *rec.AirlineName)
	assert.Equal(t, "LHR - JFK", *rec.Route)
	hours := geo.EstimateDuration(*rec.EstimatedDistance)
	assert.Equal(t, geo.FormatDuration(hours), *rec.EstimatedTime)
	assert.Equal(t, geo.Round2(120*hours), *rec.EstimatedCO2)
	assert.Nil(t, rec.FlightNumber)

	stored, err := st.QueryByUser(context.Background(), "alice", false)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestManualKeepsGivenAirlineName(t *testing.T) {
	c := newComposer(&fakeResolver{})
	rec, err := c.Manual(context.Background(), models.ManualFlight{
		UserID:          "alice",
		Date:            "2024-01-01",
		OriginIATA:      "ZRH",
		DestinationIATA: "CDG",
		AirlineICAO:     models.String("SWR"),
		AirlineName:     models.String("Swiss"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Swiss", *rec.AirlineName)
	assert.Equal(t, 0.0, *rec.EstimatedCO2, "no aircraft means no emission factor")
}

func TestManualValidation(t *testing.T) {
	c := newComposer(&fakeResolver{})
	ctx := context.Background()

	invalid := []struct {
		name     string
		date     string
		clock    *string
		timezone *string
	}{
		{"bad date", "04/07/2019", nil, nil},
		{"bad zone", "2019-07-04", models.String("10:00"), models.String("Mars/Olympus")},
		{"bad time without zone", "2019-07-04", models.String("99:99"), nil},
		{"bad time with zone", "2019-07-04", models.String("25:00"), models.String("Europe/London")},
		{"empty zone", "2019-07-04", nil, models.String("")},
		{"host zone", "2019-07-04", models.String("10:00"), models.String("Local")},
	}
	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.Manual(ctx, models.ManualFlight{
				UserID: "alice", Date: tc.date, OriginIATA: "LHR", DestinationIATA: "JFK",
				DepartureTime: tc.clock, Timezone: tc.timezone,
			})
			assert.ErrorIs(t, err, ErrInvalidTimeSpec)
		})
	}

	_, err := c.Manual(ctx, models.ManualFlight{
		UserID: "alice", Date: "2019-07-04", OriginIATA: "LHR", DestinationIATA: "JFK",
		DepartureTime: models.String("10:00"),
	})
	assert.NoError(t, err)

	_, err = c.Manual(ctx, models.ManualFlight{UserID: "alice", Date: "2019-07-04", OriginIATA: "LHR", DestinationIATA: "XXX"})
	assert.ErrorIs(t, err, ErrReferenceDataMissing)
}

func TestEnrichAgainstResolver(t *testing.T) {
	p := providerFunc(func(_ context.Context, flight string, at time.Time) ([]models.RawTelemetry, error) {
		if at.Sub(time.Date(2025, 2, 18, 12, 0, 0, 0, time.UTC)) < 90*time.Minute {
			return nil, nil
		}
		return []models.RawTelemetry{lx14()}, nil
	})
	now := func() time.Time { return time.Date(2025, 2, 19, 0, 0, 0, 0, time.UTC) }
	c := newComposer(ingestion.NewResolver(p, ingestion.WithClock(now)))

	rec, err := c.Enrich(context.Background(), request())
	require.NoError(t, err)
	assert.Equal(t, "ZRH - JFK", *rec.Route)
}

type providerFunc func(ctx context.Context, flight string, at time.Time) ([]models.RawTelemetry, error)

func (f providerFunc) Lookup(ctx context.Context, flight string, at time.Time) ([]models.RawTelemetry, error) {
	return f(ctx, flight, at)
}
