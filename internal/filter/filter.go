package filter

import (
	"strings"

	"github.com/dharmasatrya/flightscout/internal/models"
)

// Apply keeps the flights that satisfy every filter set in filters. Order is
// preserved. A price ceiling excludes flights whose price is unknown.
func Apply(flights []models.EnrichedFlight, filters *models.SearchFilters) []models.EnrichedFlight {
	if filters == nil {
		return flights
	}

	result := make([]models.EnrichedFlight, 0, len(flights))

	for _, f := range flights {
		if matchesFilters(f, filters) {
			result = append(result, f)
		}
	}

	return result
}

func matchesFilters(f models.EnrichedFlight, filters *models.SearchFilters) bool {
	if filters.PriceMax != nil {
		price, ok := f.TotalPrice()
		if !ok || price > *filters.PriceMax {
			return false
		}
	}

	if filters.MaxStops != nil && f.Stops() > *filters.MaxStops {
		return false
	}

	if len(filters.Airlines) > 0 {
		code := f.PrimaryAirline().Code
		found := false
		for _, airline := range filters.Airlines {
			if strings.EqualFold(code, airline) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if filters.MaxDurationMinutes != nil && f.DurationMinutes() > *filters.MaxDurationMinutes {
		return false
	}

	return true
}
