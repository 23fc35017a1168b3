package config

import (
	"ev-route-planner/internal/domain"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all planner configuration.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Router      RouterConfig      `mapstructure:"router"`
	Geocoder    GeocoderConfig    `mapstructure:"geocoder"`
	Search      SearchConfig      `mapstructure:"search"`
	Geolocation GeolocationConfig `mapstructure:"geolocation"`
	Map         MapConfig         `mapstructure:"map"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Log         LogConfig         `mapstructure:"log"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// RouterConfig points at the routing service that computes routes and lists charging stations.
type RouterConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type GeocoderConfig struct {
	URL     string        `mapstructure:"url"`
	APIKey  string        `mapstructure:"api_key"`
	Country string        `mapstructure:"country"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type SearchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// GeolocationConfig controls the single startup position lookup.
// Static ("lat,lon") pins the device position and takes precedence over URL.
// With neither set the map starts at the default centre.
type GeolocationConfig struct {
	Static  string        `mapstructure:"static"`
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
	MaxAge  time.Duration `mapstructure:"max_age"`
}

type MapConfig struct {
	DefaultLat float64 `mapstructure:"default_lat"`
	DefaultLon float64 `mapstructure:"default_lon"`
}

type CacheConfig struct {
	Backend     string        `mapstructure:"backend"`
	RedisAddr   string        `mapstructure:"redis_addr"`
	DatabaseURL string        `mapstructure:"database_url"`
	TTL         time.Duration `mapstructure:"ttl"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Cache backends.
const (
	CacheNone     = "none"
	CacheRedis    = "redis"
	CachePostgres = "postgres"
)

// Load reads configuration from an optional planner.yaml and PLANNER_* environment variables.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("router.url", "http://localhost:8000")
	v.SetDefault("router.timeout", 60*time.Second)
	v.SetDefault("geocoder.url", "https://api.openrouteservice.org")
	v.SetDefault("geocoder.api_key", "")
	v.SetDefault("geocoder.country", "DE")
	v.SetDefault("geocoder.timeout", 10*time.Second)
	v.SetDefault("search.debounce", 250*time.Millisecond)
	v.SetDefault("geolocation.static", "")
	v.SetDefault("geolocation.url", "")
	v.SetDefault("geolocation.timeout", 5*time.Second)
	v.SetDefault("geolocation.max_age", 30*time.Second)
	v.SetDefault("map.default_lat", 48.7758)
	v.SetDefault("map.default_lon", 9.1829)
	v.SetDefault("cache.backend", CacheNone)
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.database_url", "")
	v.SetDefault("cache.ttl", 24*time.Hour)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetConfigName("planner")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // optional

	// PLANNER_ROUTER_URL -> router.url
	v.SetEnvPrefix("PLANNER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if err := checkURL(c.Router.URL); err != nil {
		errs = append(errs, "router.url "+err.Error())
	}
	if err := checkURL(c.Geocoder.URL); err != nil {
		errs = append(errs, "geocoder.url "+err.Error())
	}
	if len(c.Geocoder.Country) != 2 {
		errs = append(errs, fmt.Sprintf("geocoder.country must be a 2-letter ISO code, got %q", c.Geocoder.Country))
	}
	if c.Geolocation.URL != "" {
		if err := checkURL(c.Geolocation.URL); err != nil {
			errs = append(errs, "geolocation.url "+err.Error())
		}
	}
	if c.Geolocation.Static != "" {
		if _, err := domain.ParseCoordinate(c.Geolocation.Static); err != nil {
			errs = append(errs, "geolocation.static "+err.Error())
		}
	}
	if c.Search.Debounce < 0 {
		errs = append(errs, "search.debounce must not be negative")
	}
	if c.Router.Timeout <= 0 || c.Geocoder.Timeout <= 0 || c.Geolocation.Timeout <= 0 {
		errs = append(errs, "timeouts must be positive")
	}
	if c.Map.DefaultLat < -90 || c.Map.DefaultLat > 90 || c.Map.DefaultLon < -180 || c.Map.DefaultLon > 180 {
		errs = append(errs, "map default centre out of range")
	}

	switch c.Cache.Backend {
	case CacheNone:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			errs = append(errs, "cache.redis_addr is required for the redis backend")
		}
	case CachePostgres:
		if c.Cache.DatabaseURL == "" {
			errs = append(errs, "cache.database_url is required for the postgres backend")
		}
	default:
		errs = append(errs, fmt.Sprintf("cache.backend must be one of none, redis, postgres, got %q", c.Cache.Backend))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func checkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("is invalid: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("must be an http(s) URL, got %q", raw)
	}
	return nil
}

// Get returns the environment variable key or fallback when unset.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
