package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Address())
	assert.Equal(t, "HS256", cfg.Auth.Algorithm)
	assert.Equal(t, []string{"*"}, cfg.CORS.Origins)
	assert.Equal(t, 30*time.Second, cfg.FR24.Timeout)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "memory", cfg.Reference.Cache)
	assert.Equal(t, 6*time.Hour, cfg.Reference.CacheTTL)
	assert.Equal(t, 30, cfg.StaleWindowDays)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	path := filepath.Join(dir, "flightlog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  port: 9090
database:
  driver: postgres
  dsn: host=db user=flightlog
fr24:
  timeout: 5s
stale_window_days: 14
`), 0o600))

	t.Setenv("FLIGHTLOG_DATABASE_DSN", "host=override")
	t.Setenv("FLIGHTLOG_AUTH_JWT_SECRET", "s3cret")
	t.Setenv("FLIGHTLOG_LOG_LEVEL", "debug")

	cfg, err := Load(New(), path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "host=override", cfg.Database.DSN)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, 5*time.Second, cfg.FR24.Timeout)
	assert.Equal(t, 14, cfg.StaleWindowDays)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadExplicitMissingFile(t *testing.T) {
	chdir(t, t.TempDir())
	_, err := Load(New(), "does-not-exist.yaml")
	assert.Error(t, err)
}

func TestValidateCollectsAllErrors(t *testing.T) {
	chdir(t, t.TempDir())
	cfg, err := Load(New(), "")
	require.NoError(t, err)

	cfg.HTTP.Port = 0
	cfg.Auth.Algorithm = "RS256"
	cfg.Database.Driver = "oracle"
	cfg.Reference.Cache = "memcached"
	cfg.StaleWindowDays = -1

	err = cfg.Validate()
	require.Error(t, err)

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 5)
	assert.Contains(t, err.Error(), "http.port")
	assert.Contains(t, err.Error(), "auth.algorithm")
	assert.Contains(t, err.Error(), "database.driver")
	assert.Contains(t, err.Error(), "reference.cache")
	assert.Contains(t, err.Error(), "stale_window_days")
}

func TestValidateRedisNeedsAddr(t *testing.T) {
	chdir(t, t.TempDir())
	cfg, err := Load(New(), "")
	require.NoError(t, err)

	cfg.Reference.Cache = "redis"
	cfg.Redis.Addr = ""
	assert.ErrorContains(t, cfg.Validate(), "redis.addr")
}
