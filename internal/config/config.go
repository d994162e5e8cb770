// Package config loads the process configuration from an optional YAML file
// overlaid with TRIPORBIT_-prefixed environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/triporbit/triporbit/internal/domain"
)

const envPrefix = "TRIPORBIT_"

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Cache     CacheConfig     `koanf:"cache"`
	Health    HealthConfig    `koanf:"health"`
	Providers ProvidersConfig `koanf:"providers"`
}

type ServerConfig struct {
	Port           int `koanf:"port"`
	RequestTimeout int `koanf:"request_timeout_seconds"`
}

type TelemetryConfig struct {
	TracingEnabled bool `koanf:"tracing_enabled"`
}

type CacheConfig struct {
	Size       int `koanf:"size"`
	TTLSeconds int `koanf:"ttl_seconds"`
}

func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

type HealthConfig struct {
	IntervalSeconds int `koanf:"interval_seconds"`
}

func (c HealthConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

type ProvidersConfig struct {
	Kiwi      VendorConfig `koanf:"kiwi"`
	SeatsAero VendorConfig `koanf:"seatsaero"`
	PointMe   VendorConfig `koanf:"pointme"`
	Hotelbeds VendorConfig `koanf:"hotelbeds"`
	Viator    VendorConfig `koanf:"viator"`
}

// VendorConfig is one provider block. Zero values defer to the provider
// layer's defaults.
type VendorConfig struct {
	Enabled        bool                    `koanf:"enabled"`
	APIKey         string                  `koanf:"api_key"`
	BaseURL        string                  `koanf:"base_url"`
	TimeoutSeconds int                     `koanf:"timeout_seconds"`
	MaxRetries     int                     `koanf:"max_retries"`
	RetryDelayMS   int                     `koanf:"retry_delay_ms"`
	RateLimit      *domain.RateLimitConfig `koanf:"rate_limit"`
}

// ProviderConfig converts the block into the domain-level configuration the
// provider constructors consume.
func (v VendorConfig) ProviderConfig(name string, vertical domain.Vertical) domain.ProviderConfig {
	return domain.ProviderConfig{
		Name:       name,
		Vertical:   vertical,
		APIKey:     v.APIKey,
		BaseURL:    v.BaseURL,
		Timeout:    time.Duration(v.TimeoutSeconds) * time.Second,
		MaxRetries: v.MaxRetries,
		RetryDelay: time.Duration(v.RetryDelayMS) * time.Millisecond,
		RateLimit:  v.RateLimit,
	}
}

// Load reads configuration in precedence order: defaults, then the YAML file
// at path (skipped when path is empty or missing), then environment
// variables. Env keys use double underscores as section separators, so
// TRIPORBIT_PROVIDERS__KIWI__API_KEY sets providers.kiwi.api_key.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	for key, val := range map[string]interface{}{
		"server.port":                    8080,
		"server.request_timeout_seconds": 60,
		"cache.size":                     512,
		"cache.ttl_seconds":              300,
		"health.interval_seconds":        60,
	} {
		k.Set(key, val)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("load config file %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
