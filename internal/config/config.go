package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full service configuration as read from YAML. Time
// values are plain integers (seconds or milliseconds) per field name;
// the wiring layer converts them to durations.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Marketplace MarketplaceConfig `yaml:"marketplace"`
	Collection  CollectionConfig  `yaml:"collection"`
	Cache       CacheConfig       `yaml:"cache"`
	Archive     ArchiveConfig     `yaml:"archive"`
	Stream      StreamConfig      `yaml:"stream"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host               string `yaml:"host"`
	Port               int    `yaml:"port"`
	ReadTimeoutSecs    int    `yaml:"read_timeout_secs"`
	WriteTimeoutSecs   int    `yaml:"write_timeout_secs"`
	IdleTimeoutSecs    int    `yaml:"idle_timeout_secs"`
	RequestTimeoutSecs int    `yaml:"request_timeout_secs"`
}

// MarketplaceConfig holds the marketplace API client settings.
type MarketplaceConfig struct {
	BaseURL            string  `yaml:"base_url"`
	RequestTimeoutSecs int     `yaml:"request_timeout_secs"`
	RateLimitRPS       float64 `yaml:"rate_limit_rps"`
	Burst              int     `yaml:"burst"`
	MaxRetries         int     `yaml:"max_retries"`
	RetryBackoffMS     int     `yaml:"retry_backoff_ms"`
	UserAgent          string  `yaml:"user_agent"`
}

// CollectionConfig identifies the tracked NFT collection.
type CollectionConfig struct {
	ID string `yaml:"id"`
}

// CacheConfig selects the snapshot cache backend. An empty RedisAddr
// means the in-process memory cache.
type CacheConfig struct {
	RedisAddr string `yaml:"redis_addr"`
	TTLSecs   int    `yaml:"ttl_secs"`
}

// ArchiveConfig enables the optional Postgres snapshot archive when
// DSN is set.
type ArchiveConfig struct {
	DSN         string `yaml:"dsn"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// StreamConfig controls the WebSocket push cadence.
type StreamConfig struct {
	RefreshSecs int `yaml:"refresh_secs"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:               "127.0.0.1",
			Port:               8080,
			ReadTimeoutSecs:    10,
			WriteTimeoutSecs:   15,
			IdleTimeoutSecs:    60,
			RequestTimeoutSecs: 10,
		},
		Marketplace: MarketplaceConfig{
			RequestTimeoutSecs: 10,
			RateLimitRPS:       2.0,
			Burst:              4,
			MaxRetries:         2,
			RetryBackoffMS:     500,
		},
		Cache: CacheConfig{
			TTLSecs: 120,
		},
		Archive: ArchiveConfig{
			TimeoutSecs: 5,
		},
		Stream: StreamConfig{
			RefreshSecs: 30,
		},
	}
}

// Load reads configuration from a YAML file, fills defaults and
// applies environment overrides. A missing file is not an error; the
// defaults plus environment are used.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the required fields.
func (c *Config) Validate() error {
	if c.Marketplace.BaseURL == "" {
		return fmt.Errorf("marketplace.base_url is required")
	}
	if c.Collection.ID == "" {
		return fmt.Errorf("collection.id is required")
	}
	if c.Cache.TTLSecs <= 0 {
		return fmt.Errorf("cache.ttl_secs must be positive")
	}
	return nil
}

// CacheTTL returns the snapshot TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSecs) * time.Second
}

// StreamRefresh returns the WebSocket push interval as a duration.
func (c *Config) StreamRefresh() time.Duration {
	return time.Duration(c.Stream.RefreshSecs) * time.Second
}

// ArchiveTimeout returns the archive statement timeout as a duration.
func (c *Config) ArchiveTimeout() time.Duration {
	return time.Duration(c.Archive.TimeoutSecs) * time.Second
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("HTTP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}
	if v := os.Getenv("MARKETPLACE_BASE_URL"); v != "" {
		cfg.Marketplace.BaseURL = v
	}
	if v := os.Getenv("COLLECTION_ID"); v != "" {
		cfg.Collection.ID = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Archive.DSN = v
	}
}
