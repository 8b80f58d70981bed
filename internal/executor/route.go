package executor

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/dharmasatrya/flightscout/internal/models"
	"github.com/dharmasatrya/flightscout/pkg/currency"
)

const roundTripBaseRate = 0.8

// routeMeta is the provider metadata gathered while searching a route.
type routeMeta struct {
	budget   []models.BudgetAlternative
	deepLink string
}

func (m *routeMeta) merge(o routeMeta) {
	m.budget = append(m.budget, o.budget...)
	if m.deepLink == "" {
		m.deepLink = o.deepLink
	}
}

func (m *routeMeta) add(r *models.ProviderResult) {
	m.merge(routeMeta{budget: r.BudgetAlternatives, deepLink: r.DeepLinkURL})
}

// searchRoute finds one-way itineraries along route departing on date. Routes
// with hubs are solved by searching everything up to the last hub, then the
// final leg, and matching the two at that hub. An empty first part ends the
// search without querying the rest.
func (e *Executor) searchRoute(ctx context.Context, route []string, date string, req models.SearchRequest) ([]models.Flight, routeMeta, error) {
	var meta routeMeta

	if len(route) == 2 {
		res, err := e.fetch(ctx, e.legQuery(route[0], route[1], date, "", req))
		if err != nil {
			return nil, meta, err
		}
		meta.add(res)
		return legsToFlights(res.Flights), meta, nil
	}

	n := len(route)
	hub := route[n-2]

	first, firstMeta, err := e.searchRoute(ctx, route[:n-1], date, req)
	meta.merge(firstMeta)
	if err != nil {
		return nil, meta, err
	}
	if len(first) == 0 {
		return nil, meta, nil
	}

	var onward []models.Flight
	for _, d := range e.onwardDates(first, date) {
		res, err := e.fetch(ctx, e.legQuery(hub, route[n-1], d, "", req))
		if err != nil {
			return nil, meta, fmt.Errorf("%s→%s on %s: %w", hub, route[n-1], d, err)
		}
		meta.add(res)
		onward = append(onward, legsToFlights(res.Flights)...)
	}
	if len(onward) == 0 {
		return nil, meta, nil
	}

	offers := e.matcher.Match(first, onward, hub)
	flights := make([]models.Flight, 0, len(offers))
	for _, o := range offers {
		flights = append(flights, models.FromConnection(o))
	}
	return flights, meta, nil
}

// onwardDates lists the local dates on which a connecting departure could
// fall: the arrival date of each inbound flight and the date the layover
// window closes. Earliest dates win when there are more than the limit.
func (e *Executor) onwardDates(inbound []models.Flight, fallback string) []string {
	maxLayover := time.Duration(e.matcher.MaxLayoverMinutes) * time.Minute

	seen := make(map[string]bool)
	var dates []string
	for _, f := range inbound {
		arr, ok := f.Arrival()
		if !ok {
			continue
		}
		for _, t := range []time.Time{arr, arr.Add(maxLayover)} {
			d := t.Format(models.DateLayout)
			if !seen[d] {
				seen[d] = true
				dates = append(dates, d)
			}
		}
	}
	if len(dates) == 0 {
		return []string{fallback}
	}

	sort.Strings(dates)
	if len(dates) > e.config.MaxOnwardDates {
		log.Printf("Onward search limited to %d of %d dates, skipping %v", e.config.MaxOnwardDates, len(dates), dates[e.config.MaxOnwardDates:])
		dates = dates[:e.config.MaxOnwardDates]
	}
	return dates
}

func (e *Executor) searchRoundTripFare(ctx context.Context, route []string, dep, ret string, req models.SearchRequest) ([]models.Flight, routeMeta, error) {
	var meta routeMeta
	res, err := e.fetch(ctx, e.legQuery(route[0], route[1], dep, ret, req))
	if err != nil {
		return nil, meta, err
	}
	meta.add(res)
	return legsToFlights(res.Flights), meta, nil
}

// searchRoundTripHalves searches outbound and return as separate one-way
// trips and pairs the first candidates from each side.
func (e *Executor) searchRoundTripHalves(ctx context.Context, s models.SearchStrategy, dep, ret string, req models.SearchRequest) ([]models.Flight, routeMeta, error) {
	outbound, meta, err := e.searchRoute(ctx, s.OutboundRoute, dep, req)
	if err != nil {
		return nil, meta, fmt.Errorf("outbound: %w", err)
	}
	if len(outbound) == 0 {
		return nil, meta, nil
	}

	inbound, inMeta, err := e.searchRoute(ctx, s.ReturnRoute, ret, req)
	meta.merge(inMeta)
	if err != nil {
		return nil, meta, fmt.Errorf("return: %w", err)
	}
	if len(inbound) == 0 {
		return nil, meta, nil
	}

	outbound = outbound[:min(len(outbound), e.config.MaxRoundTripPairs)]
	inbound = inbound[:min(len(inbound), e.config.MaxRoundTripPairs)]

	flights := make([]models.Flight, 0, len(outbound)*len(inbound))
	for _, o := range outbound {
		for _, r := range inbound {
			flights = append(flights, models.FromRoundTrip(combineRoundTrip(o, r)))
		}
	}
	return flights, meta, nil
}

func combineRoundTrip(out, ret models.Flight) models.RoundTripOffer {
	offer := models.RoundTripOffer{
		ID:       "rt_" + out.ID() + "_" + ret.ID(),
		Outbound: out,
		Return:   ret,
	}
	p1, ok1 := out.TotalPrice()
	p2, ok2 := ret.TotalPrice()
	if ok1 && ok2 {
		offer.Price = models.SplitPrice(p1+p2, out.Currency(), roundTripBaseRate, currency.FormatUSD)
	}
	return offer
}

func (e *Executor) legQuery(origin, destination, date, returnDate string, req models.SearchRequest) models.LegQuery {
	return models.LegQuery{
		Origin:        origin,
		Destination:   destination,
		DepartureDate: date,
		ReturnDate:    returnDate,
		Passengers:    req.Passengers(),
		TravelClass:   req.TravelClass,
	}
}

func legsToFlights(legs []models.Leg) []models.Flight {
	out := make([]models.Flight, 0, len(legs))
	for _, l := range legs {
		out = append(out, models.FromLeg(l))
	}
	return out
}
