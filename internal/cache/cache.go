package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dharmasatrya/flightscout/internal/models"
)

// Cache stores provider answers per leg query. Only successful answers are
// cached; a miss and a decode failure look the same to callers.
type Cache interface {
	Get(ctx context.Context, provider string, q models.LegQuery) (*models.ProviderResult, bool)
	Set(ctx context.Context, provider string, q models.LegQuery, result *models.ProviderResult) error
	Close() error
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Host:     "localhost",
		Port:     "6379",
		Password: "",
		DB:       0,
		TTL:      10 * time.Minute,
	}
}

func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Host + ":" + cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return &RedisCache{
		client: client,
		ttl:    cfg.TTL,
	}, nil
}

func (c *RedisCache) Get(ctx context.Context, provider string, q models.LegQuery) (*models.ProviderResult, bool) {
	data, err := c.client.Get(ctx, Key(provider, q)).Bytes()
	if err != nil {
		return nil, false
	}

	var result models.ProviderResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, false
	}

	return &result, true
}

func (c *RedisCache) Set(ctx context.Context, provider string, q models.LegQuery, result *models.ProviderResult) error {
	if result == nil {
		return nil
	}

	data, err := json.Marshal(result)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, Key(provider, q), data, c.ttl).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

type NoOpCache struct{}

func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) Get(ctx context.Context, provider string, q models.LegQuery) (*models.ProviderResult, bool) {
	return nil, false
}

func (c *NoOpCache) Set(ctx context.Context, provider string, q models.LegQuery, result *models.ProviderResult) error {
	return nil
}

func (c *NoOpCache) Close() error {
	return nil
}

// Key is stable for equal queries and also serves as the singleflight key.
func Key(provider string, q models.LegQuery) string {
	keyData := struct {
		Provider      string
		Origin        string
		Destination   string
		DepartureDate string
		ReturnDate    string
		Passengers    models.Passengers
		TravelClass   string
	}{
		Provider:      provider,
		Origin:        strings.ToUpper(q.Origin),
		Destination:   strings.ToUpper(q.Destination),
		DepartureDate: q.DepartureDate,
		ReturnDate:    q.ReturnDate,
		Passengers:    q.Passengers,
		TravelClass:   strings.ToLower(q.TravelClass),
	}

	data, _ := json.Marshal(keyData)
	hash := sha256.Sum256(data)
	return "leg:" + hex.EncodeToString(hash[:])
}
