package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/dharmasatrya/flightscout/internal/models"
)

type zoneMap map[string]string

func (z zoneMap) Timezone(code string) string { return z[code] }

var testZones = zoneMap{
	"SFO": "America/Los_Angeles",
	"NRT": "Asia/Tokyo",
	"BKK": "Asia/Bangkok",
}

const serpPayload = `{
  "search_metadata": {"google_flights_url": "https://www.google.com/travel/flights?tfs=abc"},
  "best_flights": [{
    "flights": [
      {"departure_airport": {"id": "SFO", "time": "2025-10-18 10:30"},
       "arrival_airport": {"id": "NRT", "time": "2025-10-19 14:00"},
       "duration": 690, "airline": "United", "flight_number": "UA 837", "travel_class": "Economy"},
      {"departure_airport": {"id": "NRT", "time": "2025-10-19 17:00"},
       "arrival_airport": {"id": "BKK", "time": "2025-10-19 21:40"},
       "duration": 400, "airline": "ANA", "flight_number": "NH 805"}
    ],
    "layovers": [{"duration": 180, "id": "NRT"}],
    "total_duration": 1270,
    "price": 1200
  }],
  "other_flights": [
    {"flights": [], "price": 10},
    {"flights": [
      {"departure_airport": {"id": "SFO", "time": "2025-10-18 23:55"},
       "arrival_airport": {"id": "BKK", "time": "2025-10-20 06:10"},
       "duration": 1035, "airline": "Thai", "flight_number": "TG 7"}
    ]}
  ]
}`

func newTestSerpAPI(t *testing.T, handler http.HandlerFunc) *SerpAPIProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p, err := NewSerpAPIProvider(SerpAPIConfig{APIKey: "test-key", BaseURL: srv.URL, Timeout: 5 * time.Second}, testZones)
	if err != nil {
		t.Fatalf("NewSerpAPIProvider() error = %v", err)
	}
	return p
}

func serpQuery() models.LegQuery {
	return models.LegQuery{
		Origin:        "SFO",
		Destination:   "BKK",
		DepartureDate: "2025-10-18",
		Passengers:    models.Passengers{Adults: 2, Infants: 1},
		TravelClass:   "business",
	}
}

func TestNewSerpAPIProviderRequiresKey(t *testing.T) {
	if _, err := NewSerpAPIProvider(SerpAPIConfig{}, nil); err == nil {
		t.Error("expected an error without an API key")
	}
}

func TestSerpAPISearch(t *testing.T) {
	var got url.Values
	p := newTestSerpAPI(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(serpPayload))
	})

	res, err := p.Search(context.Background(), serpQuery())
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	wantParams := map[string]string{
		"engine":          "google_flights",
		"departure_id":    "SFO",
		"arrival_id":      "BKK",
		"outbound_date":   "2025-10-18",
		"adults":          "2",
		"infants_in_seat": "1",
		"travel_class":    "3",
		"type":            "2",
		"api_key":         "test-key",
	}
	for k, v := range wantParams {
		if got.Get(k) != v {
			t.Errorf("param %s = %q, want %q", k, got.Get(k), v)
		}
	}
	if got.Has("return_date") {
		t.Error("one-way search should not send return_date")
	}

	if len(res.Flights) != 2 {
		t.Fatalf("got %d flights, want 2 (itinerary without segments skipped)", len(res.Flights))
	}
	if res.DeepLinkURL != "https://www.google.com/travel/flights?tfs=abc" {
		t.Errorf("deep link = %q", res.DeepLinkURL)
	}
	if len(res.BudgetAlternatives) == 0 {
		t.Error("expected budget alternatives for a US departure")
	}

	leg := res.Flights[0]
	if leg.Origin != "SFO" || leg.Destination != "BKK" || leg.Stops != 1 {
		t.Errorf("leg = %s→%s with %d stops", leg.Origin, leg.Destination, leg.Stops)
	}
	if leg.DurationMinutes != 1270 {
		t.Errorf("duration = %d, want 1270", leg.DurationMinutes)
	}
	if leg.Airline.Code != "UA" || len(leg.Segments) != 2 {
		t.Errorf("airline = %s, segments = %d", leg.Airline.Code, len(leg.Segments))
	}
	wantDep := time.Date(2025, 10, 18, 17, 30, 0, 0, time.UTC)
	if !leg.DepartureTime.Equal(wantDep) {
		t.Errorf("departure = %v, want %v", leg.DepartureTime, wantDep)
	}
	wantArr := time.Date(2025, 10, 19, 14, 40, 0, 0, time.UTC)
	if !leg.ArrivalTime.Equal(wantArr) {
		t.Errorf("arrival = %v, want %v", leg.ArrivalTime, wantArr)
	}
	if leg.Price == nil || leg.Price.Total != 1200 || leg.Price.Base != 1020 || leg.Price.Formatted != "$1,200" {
		t.Errorf("price = %+v", leg.Price)
	}

	if res.Flights[1].Price != nil {
		t.Error("itinerary without a price should have an unknown price")
	}
}

func TestSerpAPIRoundTripParams(t *testing.T) {
	var got url.Values
	p := newTestSerpAPI(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		w.Write([]byte(serpPayload))
	})

	q := serpQuery()
	q.ReturnDate = "2025-10-25"
	res, err := p.Search(context.Background(), q)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if got.Get("type") != "1" || got.Get("return_date") != "2025-10-25" {
		t.Errorf("type = %q, return_date = %q", got.Get("type"), got.Get("return_date"))
	}
	if !res.Flights[0].RoundTripFare {
		t.Error("round-trip query should mark legs as round-trip fares")
	}
}

func TestSerpAPIErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantErr   bool
		retryable bool
		malformed bool
	}{
		{"rate limited", http.StatusTooManyRequests, `{}`, true, true, false},
		{"server error", http.StatusBadGateway, `oops`, true, true, false},
		{"bad request", http.StatusBadRequest, `{"error": "Invalid API key"}`, true, false, false},
		{"malformed", http.StatusOK, `{"best_flights": [`, true, false, true},
		{"payload error", http.StatusOK, `{"error": "Unsupported arrival_id"}`, true, false, false},
		{"no results", http.StatusOK, `{"error": "Google Flights hasn't returned any results for this query."}`, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestSerpAPI(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			res, err := p.Search(context.Background(), serpQuery())
			if (err != nil) != tt.wantErr {
				t.Fatalf("Search() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				if res == nil || len(res.Flights) != 0 {
					t.Errorf("result = %+v, want empty", res)
				}
				return
			}
			if IsRetryable(err) != tt.retryable {
				t.Errorf("IsRetryable(%v) = %v, want %v", err, IsRetryable(err), tt.retryable)
			}
			if errors.Is(err, ErrMalformedPayload) != tt.malformed {
				t.Errorf("malformed = %v, want %v", errors.Is(err, ErrMalformedPayload), tt.malformed)
			}
		})
	}
}

func TestSerpAPIContextCancelled(t *testing.T) {
	p := newTestSerpAPI(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := p.Search(ctx, serpQuery())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Search() error = %v, want deadline exceeded", err)
	}
	if IsRetryable(err) {
		t.Error("context errors should not be retried")
	}
}

func TestDeepLinkFallbacks(t *testing.T) {
	tests := []struct {
		name    string
		payload serpResponse
		want    string
	}{
		{"parameters", serpResponse{SearchParameters: map[string]any{"google_flights_url": "https://p"}}, "https://p"},
		{"raw html", serpResponse{SearchMetadata: map[string]any{"raw_html_link": "https://www.google.com/travel/flights/x"}}, "https://www.google.com/travel/flights/x"},
		{"unrelated raw html", serpResponse{SearchMetadata: map[string]any{"raw_html_link": "https://serpapi.com/x.html"}}, ""},
		{"none", serpResponse{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := deepLink(tt.payload); got != tt.want {
				t.Errorf("deepLink() = %q, want %q", got, tt.want)
			}
		})
	}
}
