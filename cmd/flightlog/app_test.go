package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixhommels/mcsbt-capstone-be/internal/config"
	"github.com/felixhommels/mcsbt-capstone-be/pkg/models"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	chdir(t, t.TempDir())
	v := config.New()
	v.Set("database.dsn", filepath.Join(t.TempDir(), "flightlog.db"))
	cfg, err := config.Load(v, "")
	require.NoError(t, err)
	return cfg
}

func newProvider(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"flight":"LX14","type":"B77W","reg":"HB-JNA","operating_as":"SWR","orig_iata":"ZRH","dest_iata":"JFK"}]}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewAppSeedsReferenceData(t *testing.T) {
	for _, cache := range []string{"memory", "none"} {
		t.Run(cache, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.Reference.Cache = cache

			app, err := NewApp(context.Background(), cfg)
			require.NoError(t, err)
			defer app.Close()

			airports, err := app.lookup.Airports(context.Background(), []string{"ZRH", "JFK"})
			require.NoError(t, err)
			assert.Len(t, airports, 2)
		})
	}
}

func TestNewAppUnknownDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.Database.Driver = "oracle"
	_, err := NewApp(context.Background(), cfg)
	assert.Error(t, err)
}

func TestServeRequiresSecret(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig(t))
	require.NoError(t, err)
	defer app.Close()

	assert.ErrorContains(t, app.Serve(context.Background()), "jwt_secret")
}

func TestServeStopsOnCancel(t *testing.T) {
	cfg := testConfig(t)
	cfg.Auth.JWTSecret = "secret"
	cfg.HTTP.Addr = "127.0.0.1"
	cfg.HTTP.Port = 0

	app, err := NewApp(context.Background(), cfg)
	require.NoError(t, err)
	defer app.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	assert.NoError(t, app.Serve(ctx))
}

func TestCLIEnrichAndStats(t *testing.T) {
	srv := newProvider(t)
	chdir(t, t.TempDir())
	t.Setenv("FLIGHTLOG_DATABASE_DSN", filepath.Join(t.TempDir(), "cli.db"))
	t.Setenv("FLIGHTLOG_FR24_BASE_URL", srv.URL)
	t.Setenv("FLIGHTLOG_LOG_LEVEL", "error")

	date := time.Now().UTC().Format("2006-01-02")
	run := func(args ...string) []byte {
		var out bytes.Buffer
		cmd := rootCommand()
		cmd.SetOut(&out)
		cmd.SetArgs(args)
		require.NoError(t, cmd.Execute())
		return out.Bytes()
	}

	var rec models.FlightRecord
	out := run("enrich", "--flight", "LX14", "--date", date, "--time", "08:00", "--tz", "UTC", "--user", "alice", "--save")
	require.NoError(t, json.Unmarshal(out, &rec))
	assert.Equal(t, "ZRH - JFK", *rec.Route)
	assert.Equal(t, "Swiss International Air Lines", *rec.AirlineName)

	var snap models.Snapshot
	require.NoError(t, json.Unmarshal(run("stats", "--user", "alice", "--yearly"), &snap))
	assert.Equal(t, 1, snap.TotalFlights)
	assert.Equal(t, *rec.EstimatedDistance, snap.TotalDistance)
	assert.Equal(t, 1, snap.YearlyStatistics[date[:4]].TotalFlights)
}
