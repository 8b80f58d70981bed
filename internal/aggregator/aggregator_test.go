package aggregator

import (
	"fmt"
	"testing"

	"github.com/dharmasatrya/flightscout/internal/models"
)

func flight(id string, t models.StrategyType, cost *float64) models.EnrichedFlight {
	l := models.Leg{ID: id, Origin: "SFO", Destination: "BKK", DurationMinutes: 900}
	if cost != nil {
		l.Price = &models.Price{Total: *cost, Currency: "USD"}
	}
	return models.EnrichedFlight{
		Flight:                 models.FromLeg(l),
		StrategyType:           t,
		TotalCostWithTransport: cost,
	}
}

func cost(v float64) *float64 { return &v }

func ids(flights []models.EnrichedFlight) []string {
	out := make([]string, len(flights))
	for i, f := range flights {
		out[i] = f.ID()
	}
	return out
}

func TestSortByCost(t *testing.T) {
	flights := []models.EnrichedFlight{
		flight("unknown1", models.StrategyDirect, nil),
		flight("b", models.StrategyDirect, cost(300)),
		flight("a", models.StrategyDirect, cost(100)),
		flight("unknown2", models.StrategyDirect, nil),
		flight("c", models.StrategyDirect, cost(300)),
	}

	SortByCost(flights)
	want := []string{"a", "b", "c", "unknown1", "unknown2"}
	got := ids(flights)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}

	SortByCost(flights)
	again := ids(flights)
	for i := range want {
		if again[i] != want[i] {
			t.Fatalf("sorting twice changed order: %v", again)
		}
	}
}

func TestAggregateBuckets(t *testing.T) {
	var direct, hub []models.EnrichedFlight
	for i := 0; i < 5; i++ {
		direct = append(direct, flight(fmt.Sprintf("d%d", i), models.StrategyDirect, cost(float64(500+i))))
		hub = append(hub, flight(fmt.Sprintf("h%d", i), models.StrategyHub, cost(float64(400+i))))
	}
	results := []models.SearchResult{
		{Strategy: models.SearchStrategy{Explanation: "direct"}, Success: true, Flights: direct},
		{Strategy: models.SearchStrategy{Explanation: "hub"}, Success: true, Flights: hub},
		{Strategy: models.SearchStrategy{Explanation: "broken"}, Success: false, Error: "boom"},
	}

	resp := Aggregate(results, models.SearchRequest{Origin: "SFO", Destination: "BKK"}, nil, "")

	if resp.SearchSummary.TotalStrategiesAttempted != 3 || resp.SearchSummary.SuccessfulSearches != 2 {
		t.Errorf("summary = %+v", resp.SearchSummary)
	}
	if resp.SearchSummary.TotalFlightsFound != 10 {
		t.Errorf("TotalFlightsFound = %d, want 10", resp.SearchSummary.TotalFlightsFound)
	}
	if got := ids(resp.Results.BestDeals); len(got) != BestDealsCap || got[0] != "h0" || got[4] != "h4" {
		t.Errorf("best deals = %v", got)
	}
	if got := ids(resp.Results.DirectFlights); len(got) != BucketCap || got[0] != "d0" {
		t.Errorf("direct bucket = %v", got)
	}
	if len(resp.Results.HubConnections) != BucketCap {
		t.Errorf("hub bucket = %d, want %d", len(resp.Results.HubConnections), BucketCap)
	}
	if resp.Results.NearbyAirportOptions == nil || resp.Results.CreativeRoutes == nil {
		t.Error("empty buckets should be non-nil")
	}
	if len(resp.DebugInfo.FailedSearches) != 1 || resp.DebugInfo.FailedSearches[0] != (models.FailedSearch{Strategy: "broken", Error: "boom"}) {
		t.Errorf("failed searches = %+v", resp.DebugInfo.FailedSearches)
	}
	for _, f := range resp.Flights {
		if f.BestValueScore == 0 {
			t.Errorf("flight %s has no best value score", f.ID())
		}
	}
}

func TestAggregateAppliesFilters(t *testing.T) {
	results := []models.SearchResult{{
		Success: true,
		Flights: []models.EnrichedFlight{
			flight("cheap", models.StrategyDirect, cost(200)),
			flight("pricey", models.StrategyDirect, cost(900)),
			flight("unknown", models.StrategyDirect, nil),
		},
	}}
	req := models.SearchRequest{Filters: &models.SearchFilters{PriceMax: cost(500)}}

	resp := Aggregate(results, req, nil, "")
	if got := ids(resp.Flights); len(got) != 1 || got[0] != "cheap" {
		t.Errorf("flights = %v, want [cheap]", got)
	}
	if resp.SearchSummary.TotalFlightsFound != 1 {
		t.Errorf("TotalFlightsFound = %d, want 1", resp.SearchSummary.TotalFlightsFound)
	}
}

func TestAggregateAllFailed(t *testing.T) {
	results := []models.SearchResult{
		{Strategy: models.SearchStrategy{Explanation: "a"}, Error: "timeout"},
		{Strategy: models.SearchStrategy{Explanation: "b"}, Error: "down"},
	}

	resp := Aggregate(results, models.SearchRequest{}, nil, "")
	if len(resp.DebugInfo.FailedSearches) != 2 {
		t.Errorf("failed searches = %d, want 2", len(resp.DebugInfo.FailedSearches))
	}
	if resp.Results.BestDeals == nil || len(resp.Results.BestDeals) != 0 {
		t.Errorf("best deals = %v, want empty", resp.Results.BestDeals)
	}
	if resp.BudgetAirlineAlternatives == nil {
		t.Error("budget alternatives should be an empty list")
	}
}

func TestDedupeBudgetAlternatives(t *testing.T) {
	alts := []models.BudgetAlternative{
		{Airline: "Ryanair", AirlineCode: "FR", Note: "first"},
		{Airline: "Wizz Air", AirlineCode: "W6"},
		{Airline: "Ryanair", AirlineCode: "fr", Note: "second"},
		{Airline: "Nameless"},
		{Airline: "nameless"},
	}

	got := DedupeBudgetAlternatives(alts)
	if len(got) != 3 {
		t.Fatalf("got %d alternatives, want 3: %+v", len(got), got)
	}
	if got[0].Note != "first" {
		t.Errorf("first occurrence should win, got %q", got[0].Note)
	}
}
