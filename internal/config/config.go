package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/aretw0/spotlist/internal/logging"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix namespaces every environment override.
const EnvPrefix = "SPOTLIST_"

// Store backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Config is the host configuration. Precedence: defaults, then the YAML file,
// then SPOTLIST_* environment variables. Command flags are applied by the caller.
type Config struct {
	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT"`

	HTTP    HTTPConfig    `yaml:"http" envPrefix:"HTTP_"`
	Store   StoreConfig   `yaml:"store" envPrefix:"STORE_"`
	Locate  LocateConfig  `yaml:"locate" envPrefix:"LOCATE_"`
	Catalog CatalogConfig `yaml:"catalog" envPrefix:"CATALOG_"`

	// MaxInputSize caps a single line of terminal input, in bytes.
	MaxInputSize int `yaml:"max_input_size" env:"MAX_INPUT_SIZE"`
}

type HTTPConfig struct {
	Addr    string `yaml:"addr" env:"ADDR"`
	Metrics bool   `yaml:"metrics" env:"METRICS"`
}

type StoreConfig struct {
	Backend string      `yaml:"backend" env:"BACKEND"`
	Dir     string      `yaml:"dir" env:"DIR"`
	Redis   RedisConfig `yaml:"redis" envPrefix:"REDIS_"`
	// LockTTL bounds the distributed session lock (redis only).
	LockTTL time.Duration `yaml:"lock_ttl" env:"LOCK_TTL"`

	// EncryptionKey (base64, 32 bytes) seals contact numbers and addresses at rest.
	EncryptionKey string `yaml:"encryption_key" env:"ENCRYPTION_KEY"`
	// FallbackKeys still open values sealed with a rotated-out key.
	FallbackKeys []string `yaml:"fallback_keys" env:"FALLBACK_KEYS" envSeparator:","`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr" env:"ADDR"`
	Password string        `yaml:"password" env:"PASSWORD"`
	DB       int           `yaml:"db" env:"DB"`
	Prefix   string        `yaml:"prefix" env:"PREFIX"`
	TTL      time.Duration `yaml:"ttl" env:"TTL"`
}

type LocateConfig struct {
	Timeout      time.Duration `yaml:"timeout" env:"TIMEOUT"`
	HighAccuracy bool          `yaml:"high_accuracy" env:"HIGH_ACCURACY"`
}

type CatalogConfig struct {
	Dir string `yaml:"dir" env:"DIR"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: string(logging.FormatText),
		HTTP:      HTTPConfig{Addr: ":8080"},
		Store: StoreConfig{
			Backend: BackendMemory,
			Dir:     ".spotlist/sessions",
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "spotlist:session:",
			},
			LockTTL: 10 * time.Second,
		},
		Locate: LocateConfig{
			Timeout:      10 * time.Second,
			HighAccuracy: true,
		},
		MaxInputSize: 4096,
	}
}

// Load builds the configuration. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	switch logging.Format(c.LogFormat) {
	case logging.FormatText, logging.FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}
	switch c.Store.Backend {
	case BackendMemory, BackendFile, BackendRedis:
	default:
		errs = append(errs, fmt.Errorf("unknown store backend %q", c.Store.Backend))
	}
	if c.Locate.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("locate timeout must be positive, got %s", c.Locate.Timeout))
	}
	if c.MaxInputSize < 0 {
		errs = append(errs, fmt.Errorf("max input size must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}
