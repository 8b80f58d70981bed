package models

import "time"

type Airline struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type Price struct {
	Total     float64 `json:"total"`
	Base      float64 `json:"base"`
	Tax       float64 `json:"tax"`
	Currency  string  `json:"currency"`
	Formatted string  `json:"formatted"`
}

type Segment struct {
	Airline          Airline   `json:"airline"`
	FlightNumber     string    `json:"flight_number"`
	DepartureAirport string    `json:"departure_airport"`
	ArrivalAirport   string    `json:"arrival_airport"`
	DepartureTime    time.Time `json:"departure_time"`
	ArrivalTime      time.Time `json:"arrival_time"`
	DurationMinutes  int       `json:"duration_minutes"`
	Aircraft         string    `json:"aircraft,omitempty"`
	CabinClass       string    `json:"cabin_class,omitempty"`
}

// Leg is a single flight as returned by a provider. It may itself consist of
// several segments. Zero times mean the provider did not report them.
type Leg struct {
	ID              string    `json:"id"`
	Provider        string    `json:"provider"`
	Origin          string    `json:"origin"`
	Destination     string    `json:"destination"`
	DepartureTime   time.Time `json:"departure_time"`
	ArrivalTime     time.Time `json:"arrival_time"`
	DurationMinutes int       `json:"duration_minutes"`
	Stops           int       `json:"stops"`
	Airline         Airline   `json:"airline"`
	Segments        []Segment `json:"segments"`
	Price           *Price    `json:"price,omitempty"`
	CabinClass      string    `json:"cabin_class"`
	RoundTripFare   bool      `json:"round_trip_fare,omitempty"`
}

func (l Leg) Departure() (time.Time, bool) {
	if !l.DepartureTime.IsZero() {
		return l.DepartureTime, true
	}
	if len(l.Segments) > 0 && !l.Segments[0].DepartureTime.IsZero() {
		return l.Segments[0].DepartureTime, true
	}
	return time.Time{}, false
}

func (l Leg) Arrival() (time.Time, bool) {
	if !l.ArrivalTime.IsZero() {
		return l.ArrivalTime, true
	}
	if n := len(l.Segments); n > 0 && !l.Segments[n-1].ArrivalTime.IsZero() {
		return l.Segments[n-1].ArrivalTime, true
	}
	return time.Time{}, false
}

// CombinedOffer is an itinerary stitched together from two independently
// fetched flights that meet at a hub.
type CombinedOffer struct {
	ID              string    `json:"id"`
	ComponentIDs    []string  `json:"component_ids"`
	Origin          string    `json:"origin"`
	Destination     string    `json:"destination"`
	DepartureTime   time.Time `json:"departure_time"`
	ArrivalTime     time.Time `json:"arrival_time"`
	Segments        []Segment `json:"segments"`
	Price           *Price    `json:"price,omitempty"`
	FlightMinutes   int       `json:"flight_minutes"`
	LayoverMinutes  int       `json:"layover_minutes"`
	DurationMinutes int       `json:"duration_minutes"`
	HubCode         string    `json:"hub_code"`
	Hubs            []string  `json:"hubs"`
	IsHubConnection bool      `json:"is_hub_connection"`
}

// RoundTripOffer pairs an outbound and a return itinerary that were searched
// as two one-way trips.
type RoundTripOffer struct {
	ID       string `json:"id"`
	Outbound Flight `json:"outbound"`
	Return   Flight `json:"return"`
	Price    *Price `json:"price,omitempty"`
}

type FlightKind string

const (
	KindLeg        FlightKind = "leg"
	KindConnection FlightKind = "hub_connection"
	KindRoundTrip  FlightKind = "round_trip"
)

const (
	defaultCurrency   = "USD"
	syntheticBaseRate = 0.8
)

// Flight is a tagged union: exactly one of Leg, Connection or RoundTrip is set,
// matching Kind.
type Flight struct {
	Kind       FlightKind      `json:"kind"`
	Leg        *Leg            `json:"leg,omitempty"`
	Connection *CombinedOffer  `json:"connection,omitempty"`
	RoundTrip  *RoundTripOffer `json:"round_trip,omitempty"`
}

func FromLeg(l Leg) Flight {
	return Flight{Kind: KindLeg, Leg: &l}
}

func FromConnection(c CombinedOffer) Flight {
	return Flight{Kind: KindConnection, Connection: &c}
}

func FromRoundTrip(r RoundTripOffer) Flight {
	return Flight{Kind: KindRoundTrip, RoundTrip: &r}
}

func (f Flight) ID() string {
	switch f.Kind {
	case KindLeg:
		return f.Leg.ID
	case KindConnection:
		return f.Connection.ID
	case KindRoundTrip:
		return f.RoundTrip.ID
	}
	return ""
}

func (f Flight) price() *Price {
	switch f.Kind {
	case KindLeg:
		return f.Leg.Price
	case KindConnection:
		return f.Connection.Price
	case KindRoundTrip:
		return f.RoundTrip.Price
	}
	return nil
}

// TotalPrice reports the itinerary price, and false when it is unknown.
func (f Flight) TotalPrice() (float64, bool) {
	p := f.price()
	if p == nil {
		return 0, false
	}
	return p.Total, true
}

func (f Flight) Currency() string {
	if p := f.price(); p != nil && p.Currency != "" {
		return p.Currency
	}
	return defaultCurrency
}

func (f Flight) Departure() (time.Time, bool) {
	switch f.Kind {
	case KindLeg:
		return f.Leg.Departure()
	case KindConnection:
		return f.Connection.DepartureTime, !f.Connection.DepartureTime.IsZero()
	case KindRoundTrip:
		return f.RoundTrip.Outbound.Departure()
	}
	return time.Time{}, false
}

func (f Flight) Arrival() (time.Time, bool) {
	switch f.Kind {
	case KindLeg:
		return f.Leg.Arrival()
	case KindConnection:
		return f.Connection.ArrivalTime, !f.Connection.ArrivalTime.IsZero()
	case KindRoundTrip:
		return f.RoundTrip.Outbound.Arrival()
	}
	return time.Time{}, false
}

func (f Flight) Segments() []Segment {
	switch f.Kind {
	case KindLeg:
		return f.Leg.Segments
	case KindConnection:
		return f.Connection.Segments
	case KindRoundTrip:
		segs := append([]Segment{}, f.RoundTrip.Outbound.Segments()...)
		return append(segs, f.RoundTrip.Return.Segments()...)
	}
	return nil
}

// Origin and Destination describe the outbound direction.
func (f Flight) Origin() string {
	switch f.Kind {
	case KindLeg:
		return f.Leg.Origin
	case KindConnection:
		return f.Connection.Origin
	case KindRoundTrip:
		return f.RoundTrip.Outbound.Origin()
	}
	return ""
}

func (f Flight) Destination() string {
	switch f.Kind {
	case KindLeg:
		return f.Leg.Destination
	case KindConnection:
		return f.Connection.Destination
	case KindRoundTrip:
		return f.RoundTrip.Outbound.Destination()
	}
	return ""
}

func (f Flight) PrimaryAirline() Airline {
	if f.Kind == KindLeg && f.Leg.Airline.Code != "" {
		return f.Leg.Airline
	}
	if segs := f.Segments(); len(segs) > 0 {
		return segs[0].Airline
	}
	return Airline{}
}

func (f Flight) Stops() int {
	switch f.Kind {
	case KindLeg:
		return f.Leg.Stops
	case KindConnection:
		if n := len(f.Connection.Segments); n > 0 {
			return n - 1
		}
		return len(f.Connection.Hubs)
	case KindRoundTrip:
		return f.RoundTrip.Outbound.Stops() + f.RoundTrip.Return.Stops()
	}
	return 0
}

// DurationMinutes is door-to-door travel time, including layovers.
func (f Flight) DurationMinutes() int {
	switch f.Kind {
	case KindLeg:
		return f.Leg.DurationMinutes
	case KindConnection:
		return f.Connection.DurationMinutes
	case KindRoundTrip:
		return f.RoundTrip.Outbound.DurationMinutes() + f.RoundTrip.Return.DurationMinutes()
	}
	return 0
}

// SplitPrice builds a display price with a synthetic base/tax split, used when
// a provider reports only a total.
func SplitPrice(total float64, currency string, baseRate float64, format func(float64) string) *Price {
	if currency == "" {
		currency = defaultCurrency
	}
	if baseRate <= 0 || baseRate > 1 {
		baseRate = syntheticBaseRate
	}
	base := total * baseRate
	p := &Price{
		Total:    total,
		Base:     base,
		Tax:      total - base,
		Currency: currency,
	}
	if format != nil {
		p.Formatted = format(total)
	}
	return p
}

type BudgetAlternative struct {
	Airline     string   `json:"airline"`
	AirlineCode string   `json:"airline_code"`
	CheckURL    string   `json:"check_url"`
	Note        string   `json:"note"`
	Regions     []string `json:"regions"`
	Confidence  string   `json:"confidence"`
}

// ProviderResult is the outcome of one provider call. An empty Flights slice
// is a normal "nothing found" answer, not an error.
type ProviderResult struct {
	Provider           string              `json:"provider"`
	Flights            []Leg               `json:"flights"`
	BudgetAlternatives []BudgetAlternative `json:"budget_airline_alternatives,omitempty"`
	DeepLinkURL        string              `json:"google_flights_url,omitempty"`
}
