package providers

import (
	"fmt"
	"strings"

	"github.com/dharmasatrya/flightscout/internal/models"
)

type budgetAirline struct {
	Name    string
	Code    string
	Regions []string
	BaseURL string
}

// Low-cost carriers that rarely show up in aggregator results, by region.
var budgetAirlines = []budgetAirline{
	{Name: "Ryanair", Code: "FR", Regions: []string{"europe"}, BaseURL: "https://www.ryanair.com"},
	{Name: "Wizz Air", Code: "W6", Regions: []string{"europe"}, BaseURL: "https://wizzair.com"},
	{Name: "easyJet", Code: "U2", Regions: []string{"europe"}, BaseURL: "https://www.easyjet.com"},
	{Name: "Spirit Airlines", Code: "NK", Regions: []string{"us", "caribbean"}, BaseURL: "https://www.spirit.com"},
	{Name: "Frontier Airlines", Code: "F9", Regions: []string{"us"}, BaseURL: "https://www.flyfrontier.com"},
	{Name: "Allegiant Air", Code: "G4", Regions: []string{"us"}, BaseURL: "https://www.allegiantair.com"},
	{Name: "AirAsia", Code: "AK", Regions: []string{"asia"}, BaseURL: "https://www.airasia.com"},
	{Name: "Scoot", Code: "TR", Regions: []string{"asia"}, BaseURL: "https://www.flyscoot.com"},
	{Name: "VietJet Air", Code: "VJ", Regions: []string{"asia"}, BaseURL: "https://www.vietjetair.com"},
	{Name: "IndiGo", Code: "6E", Regions: []string{"asia"}, BaseURL: "https://www.goindigo.in"},
	{Name: "Fastjet", Code: "FN", Regions: []string{"africa"}, BaseURL: "https://www.fastjet.com"},
	{Name: "FlySafair", Code: "FA", Regions: []string{"africa"}, BaseURL: "https://www.flysafair.co.za"},
}

var regionAirports = []struct {
	region string
	codes  map[string]bool
}{
	{"europe", codeSet("LHR", "LGW", "STN", "LTN", "CDG", "ORY", "FRA", "MUC", "BCN", "MAD", "FCO", "MXP", "AMS", "BRU", "VIE", "ZRH", "CPH", "ARN", "OSL", "DUB", "CRL", "EIN", "ATH", "LIS", "OPO", "PRG", "WAW", "BUD", "IST")},
	{"us", codeSet("JFK", "LGA", "LAX", "ORD", "DFW", "ATL", "DEN", "SFO", "OAK", "SJC", "SEA", "LAS", "MCO", "MIA", "BOS", "IAH", "EWR", "CLT", "PHX", "IAD", "MSP", "DTW", "PHL")},
	{"asia", codeSet("BKK", "DMK", "SIN", "HKG", "NRT", "HND", "ICN", "PVG", "DEL", "BOM", "KUL", "CGK", "MNL", "HAN", "SGN", "BLR", "DPS", "TPE")},
	{"africa", codeSet("JNB", "CPT", "NBO", "CAI", "ADD", "LOS", "DAR", "ACC", "CMN", "TUN")},
}

func codeSet(codes ...string) map[string]bool {
	m := make(map[string]bool, len(codes))
	for _, c := range codes {
		m[c] = true
	}
	return m
}

// BudgetChecker suggests low-cost carriers worth checking directly for a
// route. It never calls the airlines; it only builds their search URLs.
type BudgetChecker struct{}

func NewBudgetChecker() *BudgetChecker {
	return &BudgetChecker{}
}

func (b *BudgetChecker) Alternatives(q models.LegQuery) []models.BudgetAlternative {
	region := DetectRegion(q.Origin, q.Destination)
	if region == "" {
		return nil
	}

	var out []models.BudgetAlternative
	for _, airline := range budgetAirlines {
		if !contains(airline.Regions, region) {
			continue
		}
		confidence := "medium"
		note := fmt.Sprintf("Check %s for potential savings", airline.Name)
		if airline.Code == "FR" {
			confidence = "high"
			note = "Often 30-50% cheaper than aggregators"
		}
		out = append(out, models.BudgetAlternative{
			Airline:     airline.Name,
			AirlineCode: airline.Code,
			CheckURL:    buildBudgetURL(airline, q),
			Note:        note,
			Regions:     airline.Regions,
			Confidence:  confidence,
		})
	}
	return out
}

// DetectRegion classifies a route by the first region either endpoint belongs
// to, checked in europe, us, asia, africa order. Unknown routes return "".
func DetectRegion(origin, destination string) string {
	origin = strings.ToUpper(origin)
	destination = strings.ToUpper(destination)
	for _, r := range regionAirports {
		if r.codes[origin] || r.codes[destination] {
			return r.region
		}
	}
	return ""
}

func buildBudgetURL(a budgetAirline, q models.LegQuery) string {
	switch a.Code {
	case "FR":
		base := "https://www.ryanair.com/gb/en/booking/home"
		return fmt.Sprintf("%s/%s/%s/%s/%s/%d/%d/%d", base, q.Origin, q.Destination,
			q.DepartureDate, q.ReturnDate, max(q.Passengers.Adults, 1), q.Passengers.Children, q.Passengers.Infants)
	case "W6":
		return fmt.Sprintf("%s/en-gb/flights/%s/%s", a.BaseURL, q.Origin, q.Destination)
	case "U2":
		return fmt.Sprintf("%s/en/cheap-flights/%s-to-%s", a.BaseURL, q.Origin, q.Destination)
	case "NK":
		return a.BaseURL + "/book/flights"
	case "F9":
		return fmt.Sprintf("%s/flights-from-%s-to-%s", a.BaseURL, q.Origin, q.Destination)
	case "AK":
		return fmt.Sprintf("%s/flights/from-%s-to-%s", a.BaseURL, q.Origin, q.Destination)
	default:
		return a.BaseURL
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
