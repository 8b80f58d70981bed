package cache

import (
	"context"
	"strings"
	"testing"

	"github.com/dharmasatrya/flightscout/internal/models"
)

func query() models.LegQuery {
	return models.LegQuery{
		Origin:        "SFO",
		Destination:   "NRT",
		DepartureDate: "2025-10-18",
		Passengers:    models.Passengers{Adults: 1},
		TravelClass:   "economy",
	}
}

func TestKey(t *testing.T) {
	base := Key("serpapi", query())
	if !strings.HasPrefix(base, "leg:") {
		t.Errorf("Key() = %q, want leg: prefix", base)
	}

	normalized := query()
	normalized.Origin = "sfo"
	normalized.TravelClass = "Economy"
	if Key("serpapi", normalized) != base {
		t.Error("case differences should map to the same key")
	}

	tests := []struct {
		name   string
		mutate func(*models.LegQuery)
	}{
		{"date", func(q *models.LegQuery) { q.DepartureDate = "2025-10-19" }},
		{"return", func(q *models.LegQuery) { q.ReturnDate = "2025-10-25" }},
		{"passengers", func(q *models.LegQuery) { q.Passengers.Children = 1 }},
		{"class", func(q *models.LegQuery) { q.TravelClass = "business" }},
		{"direction", func(q *models.LegQuery) { q.Origin, q.Destination = q.Destination, q.Origin }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := query()
			tt.mutate(&q)
			if Key("serpapi", q) == base {
				t.Error("different queries should not share a key")
			}
		})
	}

	if Key("simulated", query()) == base {
		t.Error("providers should not share keys")
	}
}

func TestNoOpCache(t *testing.T) {
	c := NewNoOpCache()
	ctx := context.Background()

	if err := c.Set(ctx, "serpapi", query(), &models.ProviderResult{Provider: "serpapi"}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, ok := c.Get(ctx, "serpapi", query()); ok {
		t.Error("NoOpCache should never hit")
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestNewRedisCacheUnreachable(t *testing.T) {
	cfg := DefaultRedisConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = "1"

	if _, err := NewRedisCache(cfg); err == nil {
		t.Error("expected an error when Redis is unreachable")
	}
}
