package models

type EnrichedFlight struct {
	Flight

	StrategyType        StrategyType `json:"search_strategy"`
	StrategyExplanation string       `json:"strategy_explanation"`
	RoutingUsed         []string     `json:"routing_used"`
	ReturnRouting       []string     `json:"return_routing,omitempty"`
	DepartureDate       string       `json:"departure_date"`
	ReturnDate          string       `json:"return_date,omitempty"`
	DeepLinkURL         string       `json:"booking_url,omitempty"`

	ExtraTransportCost     float64  `json:"extra_transport_cost"`
	TotalCostWithTransport *float64 `json:"total_cost_with_transport"`

	AirlineName        string         `json:"airline_name,omitempty"`
	BaggagePolicy      map[string]any `json:"baggage_policy,omitempty"`
	CancellationPolicy map[string]any `json:"cancellation_policy,omitempty"`

	BestValueScore float64 `json:"best_value_score,omitempty"`
}

// SearchResult is the outcome of executing one strategy. A successful result
// may legitimately carry no flights.
type SearchResult struct {
	Strategy           SearchStrategy      `json:"strategy"`
	Flights            []EnrichedFlight    `json:"flights"`
	Success            bool                `json:"success"`
	Error              string              `json:"error,omitempty"`
	BudgetAlternatives []BudgetAlternative `json:"budget_airline_alternatives,omitempty"`
	DeepLinkURL        string              `json:"google_flights_url,omitempty"`
}

func Failed(s SearchStrategy, msg string) SearchResult {
	if msg == "" {
		msg = "unknown error"
	}
	return SearchResult{Strategy: s, Success: false, Error: msg}
}

type SearchSummary struct {
	TotalStrategiesAttempted int           `json:"total_strategies_attempted"`
	SuccessfulSearches       int           `json:"successful_searches"`
	TotalFlightsFound        int           `json:"total_flights_found"`
	SearchRequest            SearchRequest `json:"search_request"`
}

type ResultBuckets struct {
	BestDeals            []EnrichedFlight `json:"best_deals"`
	DirectFlights        []EnrichedFlight `json:"direct_flights"`
	NearbyAirportOptions []EnrichedFlight `json:"nearby_airport_options"`
	HubConnections       []EnrichedFlight `json:"hub_connections"`
	CreativeRoutes       []EnrichedFlight `json:"creative_routes"`
}

type FailedSearch struct {
	Strategy string `json:"strategy"`
	Error    string `json:"error"`
}

type DebugInfo struct {
	FailedSearches    []FailedSearch `json:"failed_searches"`
	SkippedStrategies []string       `json:"skipped_strategies,omitempty"`
}

type AggregatedResponse struct {
	SearchID                  string              `json:"search_id"`
	SearchSummary             SearchSummary       `json:"search_summary"`
	Results                   ResultBuckets       `json:"results"`
	BudgetAirlineAlternatives []BudgetAlternative `json:"budget_airline_alternatives"`
	GoogleFlightsURL          string              `json:"google_flights_url,omitempty"`
	DebugInfo                 DebugInfo           `json:"debug_info"`
	SearchTimeMs              int64               `json:"search_time_ms"`

	// Flights is the full sorted list the buckets were cut from.
	Flights []EnrichedFlight `json:"-"`
}

type StrategiesResponse struct {
	SearchRequest SearchRequest    `json:"search_request"`
	Count         int              `json:"count"`
	Strategies    []SearchStrategy `json:"strategies"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
