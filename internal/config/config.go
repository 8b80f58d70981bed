package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderSimulated = "simulated"
	ProviderSerpAPI   = "serpapi"
)

type Config struct {
	Port string

	// Flight data provider
	Provider        string
	SerpAPIKey      string
	SerpAPIBaseURL  string
	ProviderRPS     float64
	ProviderTimeout time.Duration
	MaxRetries      int

	// Search engine
	SearchWorkers   int
	StrategyTimeout time.Duration

	// Reference data; empty means the embedded data set
	AirportsFile string
	PoliciesFile string

	CacheEnabled  bool
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisTTL      time.Duration

	KafkaEnabled bool
	KafkaBroker  string
	KafkaTopic   string
}

// Load reads .env when present, then the environment.
func Load() (*Config, error) {
	godotenv.Load()

	cfg := &Config{
		Port: getEnv("PORT", "8080"),

		Provider:        strings.ToLower(getEnv("FLIGHT_PROVIDER", ProviderSimulated)),
		SerpAPIKey:      getEnv("SERPAPI_API_KEY", ""),
		SerpAPIBaseURL:  getEnv("SERPAPI_BASE_URL", "https://serpapi.com/search"),
		ProviderRPS:     getEnvFloat("PROVIDER_RPS", 2),
		ProviderTimeout: getEnvDuration("PROVIDER_TIMEOUT", 30*time.Second),
		MaxRetries:      getEnvInt("MAX_RETRIES", 2),

		SearchWorkers:   getEnvInt("SEARCH_WORKERS", 3),
		StrategyTimeout: getEnvDuration("STRATEGY_TIMEOUT", 60*time.Second),

		AirportsFile: getEnv("AIRPORTS_FILE", ""),
		PoliciesFile: getEnv("POLICIES_FILE", ""),

		CacheEnabled:  getEnvBool("CACHE_ENABLED", false),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTTL:      getEnvDuration("REDIS_TTL", 10*time.Minute),

		KafkaEnabled: getEnvBool("KAFKA_ENABLED", false),
		KafkaBroker:  getEnv("KAFKA_BROKER", "localhost:9092"),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "flightscout.search.completed"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Provider {
	case ProviderSimulated:
	case ProviderSerpAPI:
		if c.SerpAPIKey == "" {
			return fmt.Errorf("SERPAPI_API_KEY environment variable is required for provider %q", c.Provider)
		}
	default:
		return fmt.Errorf("unknown FLIGHT_PROVIDER %q", c.Provider)
	}

	if c.ProviderRPS <= 0 {
		return fmt.Errorf("PROVIDER_RPS must be positive, got %v", c.ProviderRPS)
	}
	if c.SearchWorkers < 1 {
		return fmt.Errorf("SEARCH_WORKERS must be at least 1, got %d", c.SearchWorkers)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return defaultValue
	}
	return value
}
