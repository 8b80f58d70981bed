package strategy

import (
	"log"
	"sort"
	"strings"

	"github.com/dharmasatrya/flightscout/internal/models"
)

// Rank orders strategies by type priority, then number of hops, then ground
// transport cost. The sort is stable so equal strategies keep generation order.
func Rank(strategies []models.SearchStrategy) []models.SearchStrategy {
	sort.SliceStable(strategies, func(i, j int) bool {
		a, b := strategies[i], strategies[j]
		if pa, pb := a.Type.Priority(), b.Type.Priority(); pa != pb {
			return pa < pb
		}
		if la, lb := len(a.OutboundRoute), len(b.OutboundRoute); la != lb {
			return la < lb
		}
		return a.ExtraTransportCost < b.ExtraTransportCost
	})
	return strategies
}

// builder collects the strategies for one date, dropping duplicates and
// routes that would revisit an airport back to back.
type builder struct {
	roundTrip  bool
	seen       map[string]bool
	strategies []models.SearchStrategy
}

func newBuilder(roundTrip bool) *builder {
	return &builder{roundTrip: roundTrip, seen: make(map[string]bool)}
}

// add appends a strategy whose return route, for round trips, mirrors the
// outbound route.
func (b *builder) add(t models.StrategyType, outbound []string, cost float64, explanation string) bool {
	if !b.roundTrip {
		return b.push(models.SearchStrategy{
			OutboundRoute:      outbound,
			Type:               t,
			ExtraTransportCost: cost,
			Explanation:        explanation,
		})
	}
	return b.addRoundTrip(t, outbound, reversed(outbound), cost, explanation)
}

func (b *builder) addRoundTrip(t models.StrategyType, outbound, ret []string, cost float64, explanation string) bool {
	return b.push(models.SearchStrategy{
		OutboundRoute:      outbound,
		ReturnRoute:        ret,
		Type:               t,
		ExtraTransportCost: cost,
		Explanation:        explanation,
	})
}

func (b *builder) push(s models.SearchStrategy) bool {
	if err := s.Validate(); err != nil {
		log.Printf("Dropping strategy %q: %v", s.Explanation, err)
		return false
	}
	key := strings.Join(s.OutboundRoute, "-") + "|" + strings.Join(s.ReturnRoute, "-")
	if b.seen[key] {
		return false
	}
	b.seen[key] = true
	b.strategies = append(b.strategies, s)
	return true
}

func reversed(route []string) []string {
	out := make([]string, len(route))
	for i, code := range route {
		out[len(route)-1-i] = code
	}
	return out
}
