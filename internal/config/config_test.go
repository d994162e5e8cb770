package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/triporbit/triporbit/internal/domain"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Cache.TTL() != 5*time.Minute {
		t.Errorf("cache TTL = %v, want 5m", cfg.Cache.TTL())
	}
	if cfg.Health.Interval() != time.Minute {
		t.Errorf("health interval = %v, want 1m", cfg.Health.Interval())
	}
	if cfg.Providers.Kiwi.Enabled {
		t.Error("providers must default to disabled")
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
server:
  port: 9090
providers:
  kiwi:
    enabled: true
    api_key: test-key
    timeout_seconds: 15
    max_retries: 2
    rate_limit:
      requests_per_minute: 90
  seatsaero:
    enabled: true
    api_key: partner-key
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	kiwi := cfg.Providers.Kiwi
	if !kiwi.Enabled || kiwi.APIKey != "test-key" {
		t.Errorf("kiwi block not loaded: %+v", kiwi)
	}
	if kiwi.RateLimit == nil || kiwi.RateLimit.RequestsPerMinute != 90 {
		t.Errorf("kiwi rate limit not loaded: %+v", kiwi.RateLimit)
	}
	if !cfg.Providers.SeatsAero.Enabled {
		t.Error("seatsaero block not loaded")
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("TRIPORBIT_SERVER__PORT", "7070")
	t.Setenv("TRIPORBIT_PROVIDERS__KIWI__API_KEY", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("port = %d, want env override 7070", cfg.Server.Port)
	}
	if cfg.Providers.Kiwi.APIKey != "from-env" {
		t.Errorf("kiwi api key = %q, want env value", cfg.Providers.Kiwi.APIKey)
	}
}

func TestLoadMissingFileIsSkipped(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() with missing file should fall back to defaults, got %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want default", cfg.Server.Port)
	}
}

func TestVendorConfigConversion(t *testing.T) {
	v := VendorConfig{
		APIKey:         "key",
		BaseURL:        "https://api.example.com",
		TimeoutSeconds: 20,
		MaxRetries:     2,
		RetryDelayMS:   500,
		RateLimit:      &domain.RateLimitConfig{RequestsPerMinute: 30},
	}

	got := v.ProviderConfig("kiwi", domain.VerticalFlight)
	if got.Name != "kiwi" || got.Vertical != domain.VerticalFlight {
		t.Errorf("identity fields wrong: %+v", got)
	}
	if got.Timeout != 20*time.Second || got.RetryDelay != 500*time.Millisecond {
		t.Errorf("durations wrong: timeout=%v retryDelay=%v", got.Timeout, got.RetryDelay)
	}
	if got.RateLimit.RequestsPerMinute != 30 {
		t.Errorf("rate limit not carried: %+v", got.RateLimit)
	}
}
