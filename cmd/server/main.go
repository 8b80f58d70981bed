package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/dharmasatrya/flightscout/internal/airports"
	"github.com/dharmasatrya/flightscout/internal/cache"
	"github.com/dharmasatrya/flightscout/internal/config"
	"github.com/dharmasatrya/flightscout/internal/events"
	"github.com/dharmasatrya/flightscout/internal/executor"
	"github.com/dharmasatrya/flightscout/internal/handler"
	"github.com/dharmasatrya/flightscout/internal/providers"
	"github.com/dharmasatrya/flightscout/internal/ratelimit"
	"github.com/dharmasatrya/flightscout/internal/service"
	"github.com/dharmasatrya/flightscout/internal/strategy"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	directory, err := airports.Load(airports.Config{
		AirportsFile: cfg.AirportsFile,
		PoliciesFile: cfg.PoliciesFile,
	})
	if err != nil {
		log.Fatalf("Failed to load airport directory: %v", err)
	}

	provider, err := initializeProvider(cfg, directory)
	if err != nil {
		log.Fatalf("Failed to initialize provider: %v", err)
	}
	rateLimiter := ratelimit.NewProviderLimiterWithDefaults()
	rateLimiter.SetProviderLimit(provider.Name(), cfg.ProviderRPS, 1)
	log.Printf("Using flight provider %s (one call every %v)", provider.Name(), rateLimiter.MinInterval(provider.Name()))

	var legCache cache.Cache
	if cfg.CacheEnabled {
		redisCache, err := cache.NewRedisCache(cache.RedisConfig{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			TTL:      cfg.RedisTTL,
		})
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		legCache = redisCache
		log.Printf("Redis cache enabled (host: %s:%s, TTL: %v)", cfg.RedisHost, cfg.RedisPort, cfg.RedisTTL)
	} else {
		legCache = cache.NewNoOpCache()
		log.Println("Cache disabled")
	}
	defer legCache.Close()

	var publisher events.Publisher
	if cfg.KafkaEnabled {
		publisher = events.NewKafkaPublisher(events.KafkaConfig{
			Broker: cfg.KafkaBroker,
			Topic:  cfg.KafkaTopic,
		})
		log.Printf("Publishing search events to %s (topic: %s)", cfg.KafkaBroker, cfg.KafkaTopic)
	} else {
		publisher = events.NewNoOpPublisher()
	}
	defer publisher.Close()

	execConfig := executor.DefaultConfig()
	execConfig.Workers = cfg.SearchWorkers
	execConfig.StrategyTimeout = cfg.StrategyTimeout
	execConfig.MaxRetries = cfg.MaxRetries

	generator := strategy.NewGenerator(directory, strategy.DefaultConfig())
	exec := executor.New(provider, rateLimiter, legCache, directory, execConfig)
	searchService := service.NewSearchService(generator, exec, publisher)
	searchHandler := handler.NewSearchHandler(searchService, directory)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewRequestValidator()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())

	api := e.Group("/api/v1")
	api.POST("/flights/search", searchHandler.Search)
	api.POST("/flights/strategies", searchHandler.Strategies)
	api.GET("/airports", searchHandler.Airports)
	api.GET("/airports/:code", searchHandler.Airport)
	api.GET("/airports/:code/transport/:to", searchHandler.Transport)
	e.GET("/health", searchHandler.Health)

	go func() {
		log.Printf("Starting flightscout server on port %s", cfg.Port)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown failed: %v", err)
	}
	log.Println("Server stopped")
}

func initializeProvider(cfg *config.Config, directory *airports.Directory) (providers.Provider, error) {
	switch cfg.Provider {
	case config.ProviderSerpAPI:
		return providers.NewSerpAPIProvider(providers.SerpAPIConfig{
			APIKey:  cfg.SerpAPIKey,
			BaseURL: cfg.SerpAPIBaseURL,
			Timeout: cfg.ProviderTimeout,
		}, directory)
	default:
		return providers.NewSimulatedProvider(directory, providers.DefaultSimulatedConfig()), nil
	}
}
