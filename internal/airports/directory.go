// Package airports holds the read-only reference data used to build search
// strategies: coordinates, nearby airports with ground-transport costs, hubs
// reachable from each airport, and airline baggage/cancellation policies.
package airports

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/dharmasatrya/flightscout/internal/airports/data"
	"github.com/dharmasatrya/flightscout/internal/geo"
)

const (
	PolicyBaggage      = "baggage_policies"
	PolicyCancellation = "cancellation_policies"
)

// Ground transport modes considered when pricing a nearby-airport substitution.
var costedTransportModes = []string{"uber", "bus", "train"}

type TransportOption struct {
	CostUSD float64 `json:"cost_usd"`
	TimeMin int     `json:"time_min"`
}

type NearbyAirport struct {
	Code             string                     `json:"code"`
	DistanceKm       float64                    `json:"distance_km"`
	TransportOptions map[string]TransportOption `json:"transport_options"`
}

// CheapestTransport returns the lowest uber/bus/train cost, or 0 when none of
// those modes is listed.
func (n NearbyAirport) CheapestTransport() float64 {
	cheapest := -1.0
	for _, mode := range costedTransportModes {
		opt, ok := n.TransportOptions[mode]
		if !ok {
			continue
		}
		if cheapest < 0 || opt.CostUSD < cheapest {
			cheapest = opt.CostUSD
		}
	}
	if cheapest < 0 {
		return 0
	}
	return cheapest
}

type ReachableHub struct {
	Code              string  `json:"code"`
	FlightCostTypical float64 `json:"flight_cost_typical"`
	FlightTimeMin     int     `json:"flight_time_min"`
}

type AirportRecord struct {
	Code                     string           `json:"code"`
	Name                     string           `json:"name"`
	City                     string           `json:"city"`
	Country                  string           `json:"country"`
	Timezone                 string           `json:"timezone"`
	Coordinates              *geo.Coordinates `json:"coordinates,omitempty"`
	AnnualPassengersMillions float64          `json:"annual_passengers_millions"`
	NearbyAirports           []NearbyAirport  `json:"nearby_airports"`
	ReachableHubs            []ReachableHub   `json:"reachable_hubs"`
}

type Config struct {
	AirportsFile string
	PoliciesFile string
}

type Directory struct {
	airports map[string]AirportRecord
	policies map[string]map[string]any
}

// Load reads the airport and airline policy files named in cfg. Empty paths
// use the data compiled into the binary; a configured file that does not exist
// is logged and replaced by the embedded data.
func Load(cfg Config) (*Directory, error) {
	airportsJSON, err := readOrEmbedded(cfg.AirportsFile, data.Airports)
	if err != nil {
		return nil, err
	}
	policiesJSON, err := readOrEmbedded(cfg.PoliciesFile, data.AirlinePolicies)
	if err != nil {
		return nil, err
	}
	return Parse(airportsJSON, policiesJSON)
}

// Default returns the directory built from the embedded data set.
func Default() (*Directory, error) {
	return Parse(data.Airports, data.AirlinePolicies)
}

func Parse(airportsJSON, policiesJSON []byte) (*Directory, error) {
	var airports map[string]AirportRecord
	if err := json.Unmarshal(airportsJSON, &airports); err != nil {
		return nil, fmt.Errorf("parse airports: %w", err)
	}

	var policies map[string]map[string]any
	if len(policiesJSON) > 0 {
		if err := json.Unmarshal(policiesJSON, &policies); err != nil {
			return nil, fmt.Errorf("parse airline policies: %w", err)
		}
	}

	d := &Directory{
		airports: make(map[string]AirportRecord, len(airports)),
		policies: make(map[string]map[string]any, len(policies)),
	}
	for code, rec := range airports {
		code = strings.ToUpper(code)
		rec.Code = code
		d.airports[code] = rec
	}
	for code, p := range policies {
		d.policies[strings.ToUpper(code)] = p
	}

	log.Printf("Airport directory loaded: %d airports, %d airlines", len(d.airports), len(d.policies))
	return d, nil
}

func readOrEmbedded(path string, embedded []byte) ([]byte, error) {
	if path == "" {
		return embedded, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("Data file %s not found, using embedded data", path)
			return embedded, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return b, nil
}

func (d *Directory) AirportInfo(code string) (AirportRecord, bool) {
	rec, ok := d.airports[strings.ToUpper(code)]
	return rec, ok
}

func (d *Directory) Coordinates(code string) (geo.Coordinates, bool) {
	rec, ok := d.AirportInfo(code)
	if !ok || rec.Coordinates == nil {
		return geo.Coordinates{}, false
	}
	return *rec.Coordinates, true
}

func (d *Directory) NearbyAirports(code string) []NearbyAirport {
	rec, _ := d.AirportInfo(code)
	return rec.NearbyAirports
}

func (d *Directory) ReachableHubs(code string) []ReachableHub {
	rec, _ := d.AirportInfo(code)
	return rec.ReachableHubs
}

// HubDestinations lists the airport codes a hub connects onward to.
func (d *Directory) HubDestinations(hubCode string) []string {
	hubs := d.ReachableHubs(hubCode)
	out := make([]string, len(hubs))
	for i, h := range hubs {
		out[i] = h.Code
	}
	return out
}

func (d *Directory) HubMeta(hubCode string) geo.HubMeta {
	rec, _ := d.AirportInfo(hubCode)
	return geo.HubMeta{
		Code:                     strings.ToUpper(hubCode),
		AnnualPassengersMillions: rec.AnnualPassengersMillions,
		Destinations:             d.HubDestinations(hubCode),
	}
}

// AirlinePolicy returns one policy block (see PolicyBaggage, PolicyCancellation)
// for the airline, or nil when unknown.
func (d *Directory) AirlinePolicy(airlineCode, policyType string) map[string]any {
	airline, ok := d.policies[strings.ToUpper(airlineCode)]
	if !ok {
		return nil
	}
	policy, ok := airline[policyType].(map[string]any)
	if !ok {
		return nil
	}
	return policy
}

func (d *Directory) AirlineName(airlineCode string) string {
	if name, ok := d.policies[strings.ToUpper(airlineCode)]["name"].(string); ok {
		return name
	}
	return ""
}

// TransportCost returns the cost of getting from one airport to a nearby one
// with the given mode.
func (d *Directory) TransportCost(from, to, mode string) (float64, bool) {
	for _, n := range d.NearbyAirports(from) {
		if !strings.EqualFold(n.Code, to) {
			continue
		}
		opt, ok := n.TransportOptions[mode]
		return opt.CostUSD, ok
	}
	return 0, false
}

func (d *Directory) Timezone(code string) string {
	rec, _ := d.AirportInfo(code)
	return rec.Timezone
}

func (d *Directory) Codes() []string {
	codes := make([]string, 0, len(d.airports))
	for code := range d.airports {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

type Stats struct {
	TotalAirports          int `json:"total_airports"`
	TotalAirlines          int `json:"total_airlines"`
	TotalNearbyConnections int `json:"total_nearby_connections"`
	TotalHubConnections    int `json:"total_hub_connections"`
	AirportsWithNearby     int `json:"airports_with_nearby"`
	AirportsWithHubs       int `json:"airports_with_hubs"`
}

func (d *Directory) Stats() Stats {
	s := Stats{
		TotalAirports: len(d.airports),
		TotalAirlines: len(d.policies),
	}
	for _, rec := range d.airports {
		s.TotalNearbyConnections += len(rec.NearbyAirports)
		s.TotalHubConnections += len(rec.ReachableHubs)
		if len(rec.NearbyAirports) > 0 {
			s.AirportsWithNearby++
		}
		if len(rec.ReachableHubs) > 0 {
			s.AirportsWithHubs++
		}
	}
	return s
}
