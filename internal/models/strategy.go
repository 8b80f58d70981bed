package models

import "fmt"

type StrategyType string

const (
	StrategyDirect   StrategyType = "direct"
	StrategyNearby   StrategyType = "nearby"
	StrategyHub      StrategyType = "hub"
	StrategyCreative StrategyType = "creative"
)

// Priority orders strategy types; lower runs first.
func (t StrategyType) Priority() int {
	switch t {
	case StrategyDirect:
		return 1
	case StrategyNearby:
		return 2
	case StrategyHub:
		return 3
	case StrategyCreative:
		return 4
	}
	return 5
}

// SearchStrategy is one candidate route to try against the flight provider.
type SearchStrategy struct {
	OutboundRoute      []string     `json:"outbound_route"`
	ReturnRoute        []string     `json:"return_route,omitempty"`
	Type               StrategyType `json:"strategy_type"`
	ExtraTransportCost float64      `json:"extra_transport_cost"`
	Explanation        string       `json:"explanation"`

	// Set when the strategy was produced by flexible-date expansion.
	DepartureDate string  `json:"departure_date,omitempty"`
	ReturnDate    *string `json:"return_date,omitempty"`
	DateOffset    int     `json:"date_offset,omitempty"`
}

func (s SearchStrategy) IsRoundTrip() bool {
	return len(s.ReturnRoute) > 0
}

// Stops is the number of intermediate airports on the outbound route.
func (s SearchStrategy) Stops() int {
	return len(s.OutboundRoute) - 2
}

// Dates resolves the concrete travel dates for the strategy, falling back to
// the request when the strategy carries no override.
func (s SearchStrategy) Dates(req SearchRequest) (string, string) {
	dep := req.DepartureDate
	if s.DepartureDate != "" {
		dep = s.DepartureDate
	}

	ret := ""
	if req.ReturnDate != nil {
		ret = *req.ReturnDate
	}
	if s.ReturnDate != nil {
		ret = *s.ReturnDate
	}
	if !s.IsRoundTrip() {
		ret = ""
	}
	return dep, ret
}

// Validate checks that no two adjacent airports on either route are the same.
func (s SearchStrategy) Validate() error {
	if err := validateRoute(s.OutboundRoute); err != nil {
		return fmt.Errorf("outbound route: %w", err)
	}
	if s.IsRoundTrip() {
		if err := validateRoute(s.ReturnRoute); err != nil {
			return fmt.Errorf("return route: %w", err)
		}
	}
	return nil
}

type RouteError struct {
	Route []string
	Index int
}

func (e *RouteError) Error() string {
	return fmt.Sprintf("airport %s repeated at position %d of %v", e.Route[e.Index], e.Index, e.Route)
}

func validateRoute(route []string) error {
	if len(route) < 2 || len(route) > 4 {
		return fmt.Errorf("route %v must have 2 to 4 airports", route)
	}
	for i := 1; i < len(route); i++ {
		if route[i] == route[i-1] {
			return &RouteError{Route: route, Index: i}
		}
	}
	return nil
}
