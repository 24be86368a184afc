// Package config loads service settings from defaults, an optional YAML
// file, a .env file and FLIGHTLOG_* environment variables, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. FLIGHTLOG_DATABASE_DSN.
const EnvPrefix = "FLIGHTLOG"

type Config struct {
	HTTP          HTTPConfig          `mapstructure:"http"`
	Auth          AuthConfig          `mapstructure:"auth"`
	CORS          CORSConfig          `mapstructure:"cors"`
	FR24          FR24Config          `mapstructure:"fr24"`
	AviationStack AviationStackConfig `mapstructure:"aviationstack"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Reference     ReferenceConfig     `mapstructure:"reference"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Log           LogConfig           `mapstructure:"log"`

	StaleWindowDays int `mapstructure:"stale_window_days"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
	Port int    `mapstructure:"port"`
}

// Address returns the listen address.
func (h HTTPConfig) Address() string {
	return fmt.Sprintf("%s:%d", h.Addr, h.Port)
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Algorithm string `mapstructure:"algorithm"`
}

type CORSConfig struct {
	Origins []string `mapstructure:"origins"`
}

type FR24Config struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type AviationStackConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type ReferenceConfig struct {
	Cache    string        `mapstructure:"cache"` // memory, redis or none
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
	Seed     bool          `mapstructure:"seed"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", "0.0.0.0")
	v.SetDefault("http.port", 8080)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.algorithm", "HS256")
	v.SetDefault("cors.origins", []string{"*"})

	v.SetDefault("fr24.api_key", "")
	v.SetDefault("fr24.base_url", "https://fr24api.flightradar24.com")
	v.SetDefault("fr24.timeout", 30*time.Second)
	v.SetDefault("aviationstack.api_key", "")
	v.SetDefault("aviationstack.base_url", "https://api.aviationstack.com/v1/flights")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "flightlog.db")

	v.SetDefault("reference.cache", "memory")
	v.SetDefault("reference.cache_ttl", 6*time.Hour)
	v.SetDefault("reference.seed", true)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 28)

	v.SetDefault("stale_window_days", 30)
}

// New returns a viper instance with defaults and environment binding
// installed.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configuration into a validated Config. An empty path searches
// for config.yaml in the working directory and /etc/flightlog; a missing
// file is not an error.
func Load(v *viper.Viper, path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/flightlog")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		result = multierror.Append(result, fmt.Errorf("http.port %d out of range", c.HTTP.Port))
	}
	switch c.Auth.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		result = multierror.Append(result, fmt.Errorf("auth.algorithm %q is not an HMAC algorithm", c.Auth.Algorithm))
	}
	switch c.Database.Driver {
	case "sqlite", "mysql", "postgres":
	default:
		result = multierror.Append(result, fmt.Errorf("database.driver %q is not one of sqlite, mysql, postgres", c.Database.Driver))
	}
	if c.Database.DSN == "" {
		result = multierror.Append(result, errors.New("database.dsn is required"))
	}
	switch c.Reference.Cache {
	case "memory", "none":
	case "redis":
		if c.Redis.Addr == "" {
			result = multierror.Append(result, errors.New("redis.addr is required when reference.cache is redis"))
		}
	default:
		result = multierror.Append(result, fmt.Errorf("reference.cache %q is not one of memory, redis, none", c.Reference.Cache))
	}
	if c.FR24.Timeout <= 0 {
		result = multierror.Append(result, errors.New("fr24.timeout must be positive"))
	}
	if c.StaleWindowDays <= 0 {
		result = multierror.Append(result, fmt.Errorf("stale_window_days %d must be positive", c.StaleWindowDays))
	}

	return result.ErrorOrNil()
}
