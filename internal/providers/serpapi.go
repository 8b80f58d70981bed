package providers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dharmasatrya/flightscout/internal/models"
	"github.com/dharmasatrya/flightscout/internal/timezone"
	"github.com/dharmasatrya/flightscout/pkg/currency"
)

const (
	DefaultSerpAPIURL = "https://serpapi.com/search"
	serpAPIBaseRate   = 0.85
)

var travelClassCodes = map[string]string{
	"economy":         "1",
	"premium_economy": "2",
	"business":        "3",
	"first":           "4",
}

// ZoneLookup resolves an airport code to its IANA timezone.
type ZoneLookup interface {
	Timezone(code string) string
}

type SerpAPIConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

type SerpAPIProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
	zones   ZoneLookup
	budget  *BudgetChecker
}

func NewSerpAPIProvider(cfg SerpAPIConfig, zones ZoneLookup) (*SerpAPIProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("serpapi: api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultSerpAPIURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &SerpAPIProvider{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
		zones:   zones,
		budget:  NewBudgetChecker(),
	}, nil
}

func (p *SerpAPIProvider) Name() string {
	return "serpapi"
}

type serpResponse struct {
	Error            string          `json:"error"`
	SearchMetadata   map[string]any  `json:"search_metadata"`
	SearchParameters map[string]any  `json:"search_parameters"`
	BestFlights      []serpItinerary `json:"best_flights"`
	OtherFlights     []serpItinerary `json:"other_flights"`
}

type serpItinerary struct {
	Flights       []serpSegment `json:"flights"`
	Layovers      []serpLayover `json:"layovers"`
	TotalDuration int           `json:"total_duration"`
	Price         *float64      `json:"price"`
	Type          string        `json:"type"`
}

type serpSegment struct {
	DepartureAirport serpAirport `json:"departure_airport"`
	ArrivalAirport   serpAirport `json:"arrival_airport"`
	Duration         int         `json:"duration"`
	Airplane         string      `json:"airplane"`
	Airline          string      `json:"airline"`
	TravelClass      string      `json:"travel_class"`
	FlightNumber     string      `json:"flight_number"`
}

type serpAirport struct {
	Name string `json:"name"`
	ID   string `json:"id"`
	Time string `json:"time"`
}

type serpLayover struct {
	Duration int    `json:"duration"`
	Name     string `json:"name"`
	ID       string `json:"id"`
}

func (p *SerpAPIProvider) Search(ctx context.Context, q models.LegQuery) (*models.ProviderResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+p.params(q).Encode(), nil)
	if err != nil {
		return nil, NewProviderError(p.Name(), err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, NewProviderError(p.Name(), fmt.Errorf("%w: %v", ErrTemporaryFailure, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewProviderError(p.Name(), fmt.Errorf("%w: %v", ErrTemporaryFailure, err))
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, NewProviderError(p.Name(), fmt.Errorf("%w: status %d", ErrTemporaryFailure, resp.StatusCode))
	case resp.StatusCode >= 400:
		return nil, NewProviderError(p.Name(), fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(body), 200)))
	}

	var payload serpResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, NewProviderError(p.Name(), fmt.Errorf("%w: %v", ErrMalformedPayload, err))
	}
	if payload.Error != "" {
		// SerpAPI reports an empty search as an error string.
		if strings.Contains(strings.ToLower(payload.Error), "returned any results") {
			return &models.ProviderResult{Provider: p.Name(), Flights: []models.Leg{}}, nil
		}
		return nil, NewProviderError(p.Name(), errors.New(payload.Error))
	}

	return p.transform(payload, q), nil
}

func (p *SerpAPIProvider) params(q models.LegQuery) url.Values {
	v := url.Values{}
	v.Set("engine", "google_flights")
	v.Set("departure_id", strings.ToUpper(q.Origin))
	v.Set("arrival_id", strings.ToUpper(q.Destination))
	v.Set("outbound_date", q.DepartureDate)
	v.Set("currency", "USD")
	v.Set("hl", "en")
	v.Set("adults", strconv.Itoa(max(q.Passengers.Adults, 1)))
	v.Set("children", strconv.Itoa(q.Passengers.Children))
	v.Set("infants_in_seat", strconv.Itoa(q.Passengers.Infants))

	class, ok := travelClassCodes[strings.ToLower(q.TravelClass)]
	if !ok {
		class = "1"
	}
	v.Set("travel_class", class)

	if q.ReturnDate != "" {
		v.Set("type", "1")
		v.Set("return_date", q.ReturnDate)
	} else {
		v.Set("type", "2")
	}
	v.Set("api_key", p.apiKey)
	return v
}

func (p *SerpAPIProvider) transform(payload serpResponse, q models.LegQuery) *models.ProviderResult {
	result := &models.ProviderResult{
		Provider:    p.Name(),
		Flights:     make([]models.Leg, 0, len(payload.BestFlights)+len(payload.OtherFlights)),
		DeepLinkURL: deepLink(payload),
	}

	all := append(append([]serpItinerary{}, payload.BestFlights...), payload.OtherFlights...)
	for idx, it := range all {
		leg, err := p.toLeg(it, idx, q)
		if err != nil {
			log.Printf("serpapi: skipping itinerary %d: %v", idx, err)
			continue
		}
		result.Flights = append(result.Flights, leg)
	}

	result.BudgetAlternatives = p.budget.Alternatives(q)
	return result
}

func (p *SerpAPIProvider) toLeg(it serpItinerary, idx int, q models.LegQuery) (models.Leg, error) {
	if len(it.Flights) == 0 {
		return models.Leg{}, errors.New("no segments")
	}

	segments := make([]models.Segment, 0, len(it.Flights))
	for _, s := range it.Flights {
		segments = append(segments, p.toSegment(s))
	}
	first, last := segments[0], segments[len(segments)-1]

	duration := it.TotalDuration
	if duration == 0 && !first.DepartureTime.IsZero() && !last.ArrivalTime.IsZero() {
		duration = int(last.ArrivalTime.Sub(first.DepartureTime).Minutes())
	}

	leg := models.Leg{
		ID:              legID(p.Name(), idx, it),
		Provider:        p.Name(),
		Origin:          first.DepartureAirport,
		Destination:     last.ArrivalAirport,
		DepartureTime:   first.DepartureTime,
		ArrivalTime:     last.ArrivalTime,
		DurationMinutes: duration,
		Stops:           len(it.Layovers),
		Airline:         first.Airline,
		Segments:        segments,
		CabinClass:      q.TravelClass,
		RoundTripFare:   q.ReturnDate != "",
	}
	if it.Price != nil {
		leg.Price = models.SplitPrice(*it.Price, "USD", serpAPIBaseRate, currency.FormatUSD)
	}
	return leg, nil
}

func (p *SerpAPIProvider) toSegment(s serpSegment) models.Segment {
	seg := models.Segment{
		Airline:          models.Airline{Code: airlineCode(s), Name: s.Airline},
		FlightNumber:     s.FlightNumber,
		DepartureAirport: s.DepartureAirport.ID,
		ArrivalAirport:   s.ArrivalAirport.ID,
		DurationMinutes:  s.Duration,
		Aircraft:         s.Airplane,
		CabinClass:       s.TravelClass,
	}
	if t, err := timezone.ParseTimeWithOffset(s.DepartureAirport.Time, p.zone(s.DepartureAirport.ID)); err == nil {
		seg.DepartureTime = t
	}
	if t, err := timezone.ParseTimeWithOffset(s.ArrivalAirport.Time, p.zone(s.ArrivalAirport.ID)); err == nil {
		seg.ArrivalTime = t
	}
	return seg
}

func (p *SerpAPIProvider) zone(code string) string {
	if p.zones == nil {
		return ""
	}
	return p.zones.Timezone(code)
}

// deepLink prefers search_metadata, then search_parameters, then a raw HTML
// link that points at Google Flights.
func deepLink(payload serpResponse) string {
	if s, ok := payload.SearchMetadata["google_flights_url"].(string); ok && s != "" {
		return s
	}
	if s, ok := payload.SearchParameters["google_flights_url"].(string); ok && s != "" {
		return s
	}
	if s, ok := payload.SearchMetadata["raw_html_link"].(string); ok && strings.Contains(s, "google.com/travel/flights") {
		return s
	}
	return ""
}

func airlineCode(s serpSegment) string {
	if fields := strings.Fields(s.FlightNumber); len(fields) > 0 {
		return fields[0]
	}
	if len(s.Airline) >= 2 {
		return strings.ToUpper(s.Airline[:2])
	}
	return strings.ToUpper(s.Airline)
}

func legID(provider string, idx int, it serpItinerary) string {
	var b strings.Builder
	for _, s := range it.Flights {
		b.WriteString(s.FlightNumber)
		b.WriteString(s.DepartureAirport.Time)
	}
	sum := sha256.Sum256([]byte(b.String()))
	return fmt.Sprintf("%s_%d_%s", provider, idx, hex.EncodeToString(sum[:4]))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
