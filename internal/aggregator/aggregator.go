// Package aggregator merges per-strategy search results into the single
// ranked and bucketed response returned to callers.
package aggregator

import (
	"sort"
	"strings"

	"github.com/dharmasatrya/flightscout/internal/filter"
	"github.com/dharmasatrya/flightscout/internal/models"
	"github.com/dharmasatrya/flightscout/internal/ranking"
)

const (
	BucketCap    = 3
	BestDealsCap = 5
)

// Aggregate never fails: when every strategy failed the response simply has
// empty buckets and one failed_searches entry per strategy.
func Aggregate(results []models.SearchResult, req models.SearchRequest, budgetAlternatives []models.BudgetAlternative, primaryURL string) *models.AggregatedResponse {
	resp := &models.AggregatedResponse{
		SearchSummary: models.SearchSummary{
			TotalStrategiesAttempted: len(results),
			SearchRequest:            req,
		},
		Results:                   emptyBuckets(),
		BudgetAirlineAlternatives: DedupeBudgetAlternatives(budgetAlternatives),
		GoogleFlightsURL:          primaryURL,
		DebugInfo: models.DebugInfo{
			FailedSearches: []models.FailedSearch{},
		},
	}

	var flights []models.EnrichedFlight
	for _, r := range results {
		if !r.Success {
			resp.DebugInfo.FailedSearches = append(resp.DebugInfo.FailedSearches, models.FailedSearch{
				Strategy: r.Strategy.Explanation,
				Error:    r.Error,
			})
			continue
		}
		resp.SearchSummary.SuccessfulSearches++
		flights = append(flights, r.Flights...)
	}

	flights = filter.Apply(flights, req.Filters)
	SortByCost(flights)
	ranking.CalculateScores(flights)

	resp.Flights = flights
	resp.SearchSummary.TotalFlightsFound = len(flights)
	resp.Results.BestDeals = capped(flights, BestDealsCap)

	for _, f := range flights {
		switch f.StrategyType {
		case models.StrategyDirect:
			resp.Results.DirectFlights = appendCapped(resp.Results.DirectFlights, f)
		case models.StrategyNearby:
			resp.Results.NearbyAirportOptions = appendCapped(resp.Results.NearbyAirportOptions, f)
		case models.StrategyHub:
			resp.Results.HubConnections = appendCapped(resp.Results.HubConnections, f)
		case models.StrategyCreative:
			resp.Results.CreativeRoutes = appendCapped(resp.Results.CreativeRoutes, f)
		}
	}

	return resp
}

// SortByCost orders flights by total cost including ground transport,
// cheapest first. Flights with unknown cost go last; ties keep their order.
func SortByCost(flights []models.EnrichedFlight) {
	sort.SliceStable(flights, func(i, j int) bool {
		a, b := flights[i].TotalCostWithTransport, flights[j].TotalCostWithTransport
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a < *b
		}
	})
}

// DedupeBudgetAlternatives keeps the first alternative per airline code.
func DedupeBudgetAlternatives(alts []models.BudgetAlternative) []models.BudgetAlternative {
	seen := make(map[string]bool, len(alts))
	out := make([]models.BudgetAlternative, 0, len(alts))
	for _, a := range alts {
		key := strings.ToUpper(a.AirlineCode)
		if key == "" {
			key = strings.ToUpper(a.Airline)
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, a)
	}
	return out
}

func emptyBuckets() models.ResultBuckets {
	return models.ResultBuckets{
		BestDeals:            []models.EnrichedFlight{},
		DirectFlights:        []models.EnrichedFlight{},
		NearbyAirportOptions: []models.EnrichedFlight{},
		HubConnections:       []models.EnrichedFlight{},
		CreativeRoutes:       []models.EnrichedFlight{},
	}
}

func appendCapped(bucket []models.EnrichedFlight, f models.EnrichedFlight) []models.EnrichedFlight {
	if len(bucket) >= BucketCap {
		return bucket
	}
	return append(bucket, f)
}

func capped(flights []models.EnrichedFlight, n int) []models.EnrichedFlight {
	out := make([]models.EnrichedFlight, 0, min(len(flights), n))
	return append(out, flights[:min(len(flights), n)]...)
}
