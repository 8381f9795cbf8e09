// Package config loads process settings from the environment.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every variable name.
const EnvPrefix = "FUNNEL_"

// Storage backends for the reference service.
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

// Config is the settings shared by every command.
type Config struct {
	// APIURL is the base URL of a remote funnel service. Empty means funnels
	// come from CatalogDir.
	APIURL string `env:"API_URL"`

	Addr       string `env:"ADDR" envDefault:":8080"`
	Storage    string `env:"STORAGE" envDefault:"memory"`
	CatalogDir string `env:"CATALOG_DIR" envDefault:"funnels"`

	Redis RedisConfig `envPrefix:"REDIS_"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	CacheSize int           `env:"CACHE_SIZE" envDefault:"128"`
	CacheTTL  time.Duration `env:"CACHE_TTL" envDefault:"1m"`

	// SessionKey is a base64 AES-256 key. When set, hosted sessions are
	// encrypted at rest.
	SessionKey          string   `env:"SESSION_KEY"`
	SessionKeyFallbacks []string `env:"SESSION_KEY_FALLBACKS"`

	// MaskFields holds element id patterns whose values are masked in
	// stored sessions.
	MaskFields []string `env:"MASK_FIELDS"`
}

// RedisConfig configures the redis storage backend.
type RedisConfig struct {
	Addr       string        `env:"ADDR" envDefault:"localhost:6379"`
	Password   string        `env:"PASSWORD"`
	DB         int           `env:"DB" envDefault:"0"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`
}

// Load reads dotenvFiles (missing files are skipped) and parses the
// environment. Variables already set win over dotenv values.
func Load(dotenvFiles ...string) (*Config, error) {
	for _, f := range dotenvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return parse(env.Options{Prefix: EnvPrefix})
}

// FromMap parses settings from an explicit variable map instead of the
// process environment.
func FromMap(vars map[string]string) (*Config, error) {
	return parse(env.Options{Prefix: EnvPrefix, Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values the environment parser cannot.
func (c *Config) Validate() error {
	switch c.Storage {
	case StorageMemory, StorageRedis:
	default:
		return fmt.Errorf("unknown storage %q (want %s or %s)", c.Storage, StorageMemory, StorageRedis)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache size must not be negative, got %d", c.CacheSize)
	}
	if _, _, err := c.SessionKeys(); err != nil {
		return err
	}
	return nil
}

// SessionKeys decodes the session encryption keys. A nil active key means
// encryption is off.
func (c *Config) SessionKeys() (active []byte, fallbacks [][]byte, err error) {
	if c.SessionKey == "" {
		if len(c.SessionKeyFallbacks) > 0 {
			return nil, nil, errors.New("session key fallbacks set without a session key")
		}
		return nil, nil, nil
	}
	active, err = base64.StdEncoding.DecodeString(c.SessionKey)
	if err != nil {
		return nil, nil, fmt.Errorf("decode session key: %w", err)
	}
	for i, k := range c.SessionKeyFallbacks {
		key, err := base64.StdEncoding.DecodeString(k)
		if err != nil {
			return nil, nil, fmt.Errorf("decode session key fallback %d: %w", i, err)
		}
		fallbacks = append(fallbacks, key)
	}
	return active, fallbacks, nil
}
