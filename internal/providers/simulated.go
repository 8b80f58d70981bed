package providers

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/dharmasatrya/flightscout/internal/geo"
	"github.com/dharmasatrya/flightscout/internal/models"
	"github.com/dharmasatrya/flightscout/internal/timezone"
	"github.com/dharmasatrya/flightscout/pkg/currency"
)

// Geography is the airport data the simulated provider needs to build
// plausible schedules.
type Geography interface {
	Coordinates(code string) (geo.Coordinates, bool)
	Timezone(code string) string
}

type SimulatedConfig struct {
	MinLatency  time.Duration
	MaxLatency  time.Duration
	FailureRate float64
	// Legs longer than this have no service.
	MaxRangeKm float64
}

func DefaultSimulatedConfig() SimulatedConfig {
	return SimulatedConfig{
		MinLatency:  50 * time.Millisecond,
		MaxLatency:  150 * time.Millisecond,
		FailureRate: 0,
		MaxRangeKm:  14500,
	}
}

var simulatedCarriers = []models.Airline{
	{Code: "UA", Name: "United Airlines"},
	{Code: "DL", Name: "Delta Air Lines"},
	{Code: "AA", Name: "American Airlines"},
	{Code: "NH", Name: "All Nippon Airways"},
	{Code: "JL", Name: "Japan Airlines"},
	{Code: "KE", Name: "Korean Air"},
	{Code: "BR", Name: "EVA Air"},
	{Code: "CX", Name: "Cathay Pacific"},
	{Code: "TG", Name: "Thai Airways"},
	{Code: "SQ", Name: "Singapore Airlines"},
	{Code: "EK", Name: "Emirates"},
	{Code: "QR", Name: "Qatar Airways"},
	{Code: "TK", Name: "Turkish Airlines"},
	{Code: "BA", Name: "British Airways"},
	{Code: "LH", Name: "Lufthansa"},
}

var classMultiplier = map[string]float64{
	"economy":         1,
	"premium_economy": 1.6,
	"business":        3.2,
	"first":           5,
}

// SimulatedProvider generates deterministic schedules from great-circle
// distances. The same query always yields the same flights, which makes it
// usable for local runs and tests without an API key.
type SimulatedProvider struct {
	geo    Geography
	config SimulatedConfig
	budget *BudgetChecker

	mu  sync.Mutex
	rng *rand.Rand
}

func NewSimulatedProvider(g Geography, config SimulatedConfig) *SimulatedProvider {
	if config.MaxLatency < config.MinLatency {
		config.MaxLatency = config.MinLatency
	}
	if config.MaxRangeKm <= 0 {
		config.MaxRangeKm = DefaultSimulatedConfig().MaxRangeKm
	}
	return &SimulatedProvider{
		geo:    g,
		config: config,
		budget: NewBudgetChecker(),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (p *SimulatedProvider) Name() string {
	return "simulated"
}

func (p *SimulatedProvider) Search(ctx context.Context, q models.LegQuery) (*models.ProviderResult, error) {
	delay, fail := p.roll()
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if fail {
		return nil, NewProviderError(p.Name(), ErrTemporaryFailure)
	}

	result := &models.ProviderResult{
		Provider:           p.Name(),
		Flights:            []models.Leg{},
		BudgetAlternatives: p.budget.Alternatives(q),
	}

	from, ok1 := p.geo.Coordinates(q.Origin)
	to, ok2 := p.geo.Coordinates(q.Destination)
	if !ok1 || !ok2 {
		return result, nil
	}
	distance := geo.Distance(from, to)
	if distance > p.config.MaxRangeKm || distance < 50 {
		return result, nil
	}

	result.Flights = p.schedule(q, distance)
	result.DeepLinkURL = fmt.Sprintf("https://www.google.com/travel/flights?q=Flights%%20from%%20%s%%20to%%20%s%%20on%%20%s",
		q.Origin, q.Destination, q.DepartureDate)
	return result, nil
}

func (p *SimulatedProvider) roll() (time.Duration, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delay := p.config.MinLatency
	if span := p.config.MaxLatency - p.config.MinLatency; span > 0 {
		delay += time.Duration(p.rng.Int63n(int64(span)))
	}
	return delay, p.config.FailureRate > 0 && p.rng.Float64() < p.config.FailureRate
}

func (p *SimulatedProvider) schedule(q models.LegQuery, distance float64) []models.Leg {
	rng := rand.New(rand.NewSource(seed(q.Origin, q.Destination, q.DepartureDate)))

	block := int(math.Round(distance/800*60)) + 30
	base := 60 + distance*0.09
	mult, ok := classMultiplier[strings.ToLower(q.TravelClass)]
	if !ok {
		mult = 1
	}
	pax := float64(max(q.Passengers.Adults+q.Passengers.Children, 1)) + 0.1*float64(q.Passengers.Infants)

	count := 2 + rng.Intn(3)
	legs := make([]models.Leg, 0, count)
	for i := 0; i < count; i++ {
		carrier := simulatedCarriers[rng.Intn(len(simulatedCarriers))]
		minuteOfDay := (6*60 + rng.Intn(16*60)) / 5 * 5

		dep, err := timezone.AtLocalTime(q.DepartureDate, minuteOfDay, p.geo.Timezone(q.Origin))
		if err != nil {
			return legs
		}
		arr := dep.Add(time.Duration(block) * time.Minute).In(timezone.Location(p.geo.Timezone(q.Destination)))

		fare := base * mult * (0.8 + 0.5*rng.Float64()) * pax
		if q.ReturnDate != "" {
			fare *= 1.8
		}
		fare = math.Round(fare)

		number := fmt.Sprintf("%s %d", carrier.Code, 100+rng.Intn(900))
		legs = append(legs, models.Leg{
			ID:              fmt.Sprintf("sim_%s_%s_%s_%d", q.Origin, q.Destination, strings.ReplaceAll(q.DepartureDate, "-", ""), i),
			Provider:        p.Name(),
			Origin:          q.Origin,
			Destination:     q.Destination,
			DepartureTime:   dep,
			ArrivalTime:     arr,
			DurationMinutes: block,
			Airline:         carrier,
			Segments: []models.Segment{{
				Airline:          carrier,
				FlightNumber:     number,
				DepartureAirport: q.Origin,
				ArrivalAirport:   q.Destination,
				DepartureTime:    dep,
				ArrivalTime:      arr,
				DurationMinutes:  block,
				CabinClass:       q.TravelClass,
			}},
			Price:         models.SplitPrice(fare, "USD", serpAPIBaseRate, currency.FormatUSD),
			CabinClass:    q.TravelClass,
			RoundTripFare: q.ReturnDate != "",
		})
	}
	return legs
}

func seed(parts ...string) int64 {
	h := fnv.New64a()
	for _, s := range parts {
		h.Write([]byte(strings.ToUpper(s)))
		h.Write([]byte{0})
	}
	return int64(h.Sum64())
}
