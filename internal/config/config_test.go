package config

import (
	"testing"
	"time"
)

var envKeys = []string{
	"PORT", "FLIGHT_PROVIDER", "SERPAPI_API_KEY", "SERPAPI_BASE_URL", "PROVIDER_RPS",
	"PROVIDER_TIMEOUT", "MAX_RETRIES", "SEARCH_WORKERS", "STRATEGY_TIMEOUT",
	"AIRPORTS_FILE", "POLICIES_FILE", "CACHE_ENABLED", "REDIS_HOST", "REDIS_PORT",
	"REDIS_PASSWORD", "REDIS_TTL", "KAFKA_ENABLED", "KAFKA_BROKER", "KAFKA_TOPIC",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != "8080" || cfg.Provider != ProviderSimulated {
		t.Errorf("port = %s, provider = %s", cfg.Port, cfg.Provider)
	}
	if cfg.ProviderRPS != 2 || cfg.MaxRetries != 2 || cfg.SearchWorkers != 3 {
		t.Errorf("rps = %v, retries = %d, workers = %d", cfg.ProviderRPS, cfg.MaxRetries, cfg.SearchWorkers)
	}
	if cfg.StrategyTimeout != 60*time.Second || cfg.ProviderTimeout != 30*time.Second {
		t.Errorf("timeouts = %v / %v", cfg.StrategyTimeout, cfg.ProviderTimeout)
	}
	if cfg.CacheEnabled || cfg.KafkaEnabled {
		t.Error("cache and kafka should be off by default")
	}
	if cfg.RedisTTL != 10*time.Minute || cfg.KafkaTopic != "flightscout.search.completed" {
		t.Errorf("ttl = %v, topic = %s", cfg.RedisTTL, cfg.KafkaTopic)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("FLIGHT_PROVIDER", "SerpAPI")
	t.Setenv("SERPAPI_API_KEY", "secret")
	t.Setenv("PROVIDER_RPS", "0.5")
	t.Setenv("SEARCH_WORKERS", "5")
	t.Setenv("STRATEGY_TIMEOUT", "15s")
	t.Setenv("CACHE_ENABLED", "true")
	t.Setenv("KAFKA_ENABLED", "1")
	t.Setenv("MAX_RETRIES", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Provider != ProviderSerpAPI || cfg.SerpAPIKey != "secret" {
		t.Errorf("provider = %s, key = %q", cfg.Provider, cfg.SerpAPIKey)
	}
	if cfg.ProviderRPS != 0.5 || cfg.SearchWorkers != 5 || cfg.StrategyTimeout != 15*time.Second {
		t.Errorf("rps = %v, workers = %d, timeout = %v", cfg.ProviderRPS, cfg.SearchWorkers, cfg.StrategyTimeout)
	}
	if !cfg.CacheEnabled || !cfg.KafkaEnabled {
		t.Error("cache and kafka should be enabled")
	}
	if cfg.MaxRetries != 2 {
		t.Errorf("invalid MAX_RETRIES should fall back to 2, got %d", cfg.MaxRetries)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"serpapi without key", map[string]string{"FLIGHT_PROVIDER": "serpapi"}},
		{"unknown provider", map[string]string{"FLIGHT_PROVIDER": "amadeus"}},
		{"zero rps", map[string]string{"PROVIDER_RPS": "0"}},
		{"no workers", map[string]string{"SEARCH_WORKERS": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}
