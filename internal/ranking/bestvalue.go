package ranking

import (
	"math"

	"github.com/dharmasatrya/flightscout/internal/models"
)

const (
	PriceWeight    = 0.5
	DurationWeight = 0.3
	StopsWeight    = 0.2
)

// CalculateScores sets BestValueScore on every flight in place.
func CalculateScores(flights []models.EnrichedFlight) []models.EnrichedFlight {
	if len(flights) == 0 {
		return flights
	}

	maxCost := findMaxCost(flights)
	maxDuration := findMaxDuration(flights)

	for i := range flights {
		flights[i].BestValueScore = CalculateBestValue(flights[i], maxCost, maxDuration)
	}

	return flights
}

// Lower score = better value. Cost includes ground transport; an unknown cost
// scores as the most expensive.
func CalculateBestValue(flight models.EnrichedFlight, maxCost, maxDuration float64) float64 {
	priceScore := 100.0
	if flight.TotalCostWithTransport != nil && maxCost > 0 {
		priceScore = (*flight.TotalCostWithTransport / maxCost) * 100
	}

	durationScore := 0.0
	if maxDuration > 0 {
		durationScore = (float64(flight.DurationMinutes()) / maxDuration) * 100
	}

	stopsScore := float64(flight.Stops()) * 15
	score := (priceScore * PriceWeight) + (durationScore * DurationWeight) + (stopsScore * StopsWeight)

	return math.Round(score*100) / 100
}

func findMaxCost(flights []models.EnrichedFlight) float64 {
	maxCost := 0.0
	for _, f := range flights {
		if f.TotalCostWithTransport != nil && *f.TotalCostWithTransport > maxCost {
			maxCost = *f.TotalCostWithTransport
		}
	}
	return maxCost
}

func findMaxDuration(flights []models.EnrichedFlight) float64 {
	maxDuration := 0.0
	for _, f := range flights {
		dur := float64(f.DurationMinutes())
		if dur > maxDuration {
			maxDuration = dur
		}
	}
	return maxDuration
}
