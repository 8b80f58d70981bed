package executor

import (
	"github.com/dharmasatrya/flightscout/internal/airports"
	"github.com/dharmasatrya/flightscout/internal/models"
)

// enrich tags flights with the strategy that found them, the cost including
// ground transport, and the operating airline's policies.
func (e *Executor) enrich(s models.SearchStrategy, flights []models.Flight, dep, ret, deepLink string) []models.EnrichedFlight {
	out := make([]models.EnrichedFlight, 0, len(flights))
	for _, f := range flights {
		ef := models.EnrichedFlight{
			Flight:              f,
			StrategyType:        s.Type,
			StrategyExplanation: s.Explanation,
			RoutingUsed:         s.OutboundRoute,
			ReturnRouting:       s.ReturnRoute,
			DepartureDate:       dep,
			ReturnDate:          ret,
			DeepLinkURL:         deepLink,
			ExtraTransportCost:  s.ExtraTransportCost,
		}

		if price, ok := f.TotalPrice(); ok {
			total := price + s.ExtraTransportCost
			ef.TotalCostWithTransport = &total
		}

		airline := f.PrimaryAirline()
		ef.AirlineName = airline.Name
		if code := airline.Code; code != "" && e.policies != nil {
			if ef.AirlineName == "" {
				ef.AirlineName = e.policies.AirlineName(code)
			}
			ef.BaggagePolicy = e.policies.AirlinePolicy(code, airports.PolicyBaggage)
			ef.CancellationPolicy = e.policies.AirlinePolicy(code, airports.PolicyCancellation)
		}

		out = append(out, ef)
	}
	return out
}
