// Package connection stitches independently fetched flights into connecting
// itineraries at a hub.
package connection

import (
	"time"

	"github.com/dharmasatrya/flightscout/internal/models"
	"github.com/dharmasatrya/flightscout/pkg/currency"
)

const (
	DefaultMinLayover = 60
	DefaultMaxLayover = 480

	connectionBaseRate = 0.8
)

type Matcher struct {
	MinLayoverMinutes int
	MaxLayoverMinutes int
}

func NewMatcher() *Matcher {
	return &Matcher{
		MinLayoverMinutes: DefaultMinLayover,
		MaxLayoverMinutes: DefaultMaxLayover,
	}
}

type Pair struct {
	First          models.Flight
	Second         models.Flight
	LayoverMinutes int
}

// Pairs returns every (first, second) combination whose layover at the hub
// falls within the matcher bounds, in input order. Flights without a usable
// arrival or departure time are never paired. Price and airline play no part.
func (m *Matcher) Pairs(first, second []models.Flight) []Pair {
	minLayover := time.Duration(m.MinLayoverMinutes) * time.Minute
	maxLayover := time.Duration(m.MaxLayoverMinutes) * time.Minute

	var pairs []Pair
	for _, f := range first {
		arr, ok := f.Arrival()
		if !ok {
			continue
		}
		for _, s := range second {
			dep, ok := s.Departure()
			if !ok {
				continue
			}
			layover := dep.Sub(arr)
			if layover < minLayover || layover > maxLayover {
				continue
			}
			pairs = append(pairs, Pair{First: f, Second: s, LayoverMinutes: int(layover.Minutes())})
		}
	}
	return pairs
}

// Match pairs the two flight sets and synthesizes one combined offer per
// compatible pair.
func (m *Matcher) Match(first, second []models.Flight, hub string) []models.CombinedOffer {
	pairs := m.Pairs(first, second)
	offers := make([]models.CombinedOffer, 0, len(pairs))
	for _, p := range pairs {
		offers = append(offers, Synthesize(p.First, p.Second, hub))
	}
	return offers
}

// Synthesize joins first and second at hub. The price is the sum of both
// parts, shown with a synthetic 80/20 base/tax split; it stays unknown if
// either part has no price.
func Synthesize(first, second models.Flight, hub string) models.CombinedOffer {
	segments := make([]models.Segment, 0, len(first.Segments())+len(second.Segments()))
	segments = append(segments, first.Segments()...)
	segments = append(segments, second.Segments()...)

	offer := models.CombinedOffer{
		ID:              "conn_" + first.ID() + "_" + second.ID(),
		ComponentIDs:    []string{first.ID(), second.ID()},
		Origin:          first.Origin(),
		Destination:     second.Destination(),
		Segments:        segments,
		FlightMinutes:   flightMinutes(first) + flightMinutes(second),
		LayoverMinutes:  layoverMinutes(first) + layoverMinutes(second),
		HubCode:         hub,
		Hubs:            append(append(hubs(first), hub), hubs(second)...),
		IsHubConnection: true,
	}

	dep, depOK := first.Departure()
	arr, arrOK := second.Arrival()
	if depOK {
		offer.DepartureTime = dep
	}
	if arrOK {
		offer.ArrivalTime = arr
	}

	if a, ok := first.Arrival(); ok {
		if d, ok := second.Departure(); ok {
			offer.LayoverMinutes += int(d.Sub(a).Minutes())
		}
	}

	if depOK && arrOK {
		offer.DurationMinutes = int(arr.Sub(dep).Minutes())
	} else {
		offer.DurationMinutes = offer.FlightMinutes + offer.LayoverMinutes
	}

	p1, ok1 := first.TotalPrice()
	p2, ok2 := second.TotalPrice()
	if ok1 && ok2 {
		offer.Price = models.SplitPrice(p1+p2, first.Currency(), connectionBaseRate, currency.FormatUSD)
	}

	return offer
}

func flightMinutes(f models.Flight) int {
	if f.Kind == models.KindConnection {
		return f.Connection.FlightMinutes
	}
	return f.DurationMinutes()
}

func layoverMinutes(f models.Flight) int {
	if f.Kind == models.KindConnection {
		return f.Connection.LayoverMinutes
	}
	return 0
}

func hubs(f models.Flight) []string {
	if f.Kind == models.KindConnection {
		return append([]string{}, f.Connection.Hubs...)
	}
	return nil
}
