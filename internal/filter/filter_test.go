package filter

import (
	"testing"

	"github.com/dharmasatrya/flightscout/internal/models"
)

func enriched(id, airline string, price float64, stops, minutes int) models.EnrichedFlight {
	l := models.Leg{
		ID:              id,
		Airline:         models.Airline{Code: airline},
		Stops:           stops,
		DurationMinutes: minutes,
	}
	if price > 0 {
		l.Price = &models.Price{Total: price}
	}
	return models.EnrichedFlight{Flight: models.FromLeg(l)}
}

func ptr[T any](v T) *T { return &v }

func TestApply(t *testing.T) {
	flights := []models.EnrichedFlight{
		enriched("ua-direct", "UA", 800, 0, 900),
		enriched("tg-onestop", "TG", 500, 1, 1200),
		enriched("nh-twostop", "NH", 400, 2, 1500),
		enriched("unpriced", "UA", 0, 0, 900),
	}

	tests := []struct {
		name    string
		filters *models.SearchFilters
		want    []string
	}{
		{"no filters", nil, []string{"ua-direct", "tg-onestop", "nh-twostop", "unpriced"}},
		{"price max", &models.SearchFilters{PriceMax: ptr(600.0)}, []string{"tg-onestop", "nh-twostop"}},
		{"max stops", &models.SearchFilters{MaxStops: ptr(1)}, []string{"ua-direct", "tg-onestop", "unpriced"}},
		{"nonstop only", &models.SearchFilters{MaxStops: ptr(0)}, []string{"ua-direct", "unpriced"}},
		{"airlines", &models.SearchFilters{Airlines: []string{"tg", "NH"}}, []string{"tg-onestop", "nh-twostop"}},
		{"duration", &models.SearchFilters{MaxDurationMinutes: ptr(1000)}, []string{"ua-direct", "unpriced"}},
		{"combined", &models.SearchFilters{PriceMax: ptr(900.0), MaxStops: ptr(1), Airlines: []string{"UA"}}, []string{"ua-direct"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(flights, tt.filters)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d flights, want %v", len(got), tt.want)
			}
			for i, f := range got {
				if f.ID() != tt.want[i] {
					t.Errorf("flight %d = %s, want %s", i, f.ID(), tt.want[i])
				}
			}
		})
	}
}
