// Package strategy turns a single travel request into the ranked set of
// candidate routes the executor searches: the direct route, nearby-airport
// substitutions, single and double hub connections, asymmetric round-trip
// hubs, nearby-airport + hub combinations, and shifted dates.
package strategy

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dharmasatrya/flightscout/internal/airports"
	"github.com/dharmasatrya/flightscout/internal/geo"
	"github.com/dharmasatrya/flightscout/internal/models"
)

// Directory is the reference data the generator reads.
type Directory interface {
	Coordinates(code string) (geo.Coordinates, bool)
	NearbyAirports(code string) []airports.NearbyAirport
	ReachableHubs(code string) []airports.ReachableHub
	HubMeta(code string) geo.HubMeta
}

type Config struct {
	HubTolerance  float64
	MaxHubs       int
	MaxAsymmetric int

	DoubleHubMinKmOneWay    float64
	DoubleHubMinKmRoundTrip float64
	DoubleHubMaxDetour      float64
	DoubleHubSeeds          int
	MaxDoubleHubOneWay      int
	MaxDoubleHubRoundTrip   int

	CreativeNearby        int
	CreativeHubsOneWay    int
	CreativeHubsRoundTrip int
}

func DefaultConfig() Config {
	return Config{
		HubTolerance:  geo.DefaultHubTolerance,
		MaxHubs:       5,
		MaxAsymmetric: 5,

		DoubleHubMinKmOneWay:    3000,
		DoubleHubMinKmRoundTrip: 4000,
		DoubleHubMaxDetour:      1.6,
		DoubleHubSeeds:          3,
		MaxDoubleHubOneWay:      3,
		MaxDoubleHubRoundTrip:   2,

		CreativeNearby:        3,
		CreativeHubsOneWay:    3,
		CreativeHubsRoundTrip: 2,
	}
}

type Generator struct {
	dir    Directory
	config Config
}

func NewGenerator(dir Directory, config Config) *Generator {
	return &Generator{dir: dir, config: config}
}

// Generate validates req and returns its ranked strategies.
func (g *Generator) Generate(req models.SearchRequest) ([]models.SearchStrategy, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var strategies []models.SearchStrategy
	if req.FlexibleDays > 0 {
		strategies = g.expandDates(req)
	} else {
		strategies = g.forDate(req)
	}
	return Rank(strategies), nil
}

// expandDates strategises every departure date in [-n, +n] around the
// requested one. Return dates move by the same offset.
func (g *Generator) expandDates(req models.SearchRequest) []models.SearchStrategy {
	base := req.Departure()
	var ret time.Time
	if req.IsRoundTrip() {
		ret, _ = time.Parse(models.DateLayout, *req.ReturnDate)
	}

	var out []models.SearchStrategy
	for offset := -req.FlexibleDays; offset <= req.FlexibleDays; offset++ {
		shifted := req
		shifted.FlexibleDays = 0
		dep := base.AddDate(0, 0, offset)
		shifted.DepartureDate = dep.Format(models.DateLayout)
		if req.IsRoundTrip() {
			r := ret.AddDate(0, 0, offset).Format(models.DateLayout)
			shifted.ReturnDate = &r
		}

		label := dateLabel(offset, dep)
		for _, s := range g.forDate(shifted) {
			s.DepartureDate = shifted.DepartureDate
			if shifted.ReturnDate != nil && s.IsRoundTrip() {
				r := *shifted.ReturnDate
				s.ReturnDate = &r
			}
			s.DateOffset = offset
			s.Explanation = s.Explanation + " (" + label + ")"
			out = append(out, s)
		}
	}
	return out
}

func dateLabel(offset int, dep time.Time) string {
	day := dep.Format("Mon Jan 2")
	switch {
	case offset == 0:
		return "requested date, " + day
	case offset == 1 || offset == -1:
		return fmt.Sprintf("%+d day, %s", offset, day)
	default:
		return fmt.Sprintf("%+d days, %s", offset, day)
	}
}

func (g *Generator) forDate(req models.SearchRequest) []models.SearchStrategy {
	b := newBuilder(req.IsRoundTrip())
	o, d := req.Origin, req.Destination

	b.add(models.StrategyDirect, []string{o, d}, 0, fmt.Sprintf("Direct search %s → %s", o, d))

	g.nearby(b, o, d)

	hubs := g.sensibleHubs(o, d)
	g.singleHub(b, o, d, hubs)
	if b.roundTrip {
		g.asymmetric(b, o, d, hubs)
	}
	g.doubleHub(b, o, d, hubs)
	g.creative(b, o, d)

	return b.strategies
}

func (g *Generator) nearby(b *builder, o, d string) {
	for _, n := range g.dir.NearbyAirports(o) {
		code := strings.ToUpper(n.Code)
		if code == o || code == d {
			continue
		}
		cost := n.CheapestTransport()
		b.add(models.StrategyNearby, []string{code, d}, cost,
			fmt.Sprintf("Fly from nearby %s (%.0f km from %s, ground transport $%.0f)", code, n.DistanceKm, o, cost))
	}
}

func (g *Generator) singleHub(b *builder, o, d string, hubs []scoredHub) {
	for _, h := range limit(hubs, g.config.MaxHubs) {
		b.add(models.StrategyHub, []string{o, h.code, d}, 0,
			fmt.Sprintf("Connect via %s (%.0f%% detour)", h.code, (h.detour-1)*100))
	}
}

// asymmetric pairs different outbound and return hubs.
func (g *Generator) asymmetric(b *builder, o, d string, hubs []scoredHub) {
	top := limit(hubs, g.config.MaxHubs)
	if len(top) < 2 {
		return
	}

	count := 0
	for _, out := range top {
		for _, in := range top {
			if count >= g.config.MaxAsymmetric {
				return
			}
			if out.code == in.code {
				continue
			}
			if b.addRoundTrip(models.StrategyHub, []string{o, out.code, d}, []string{d, in.code, o}, 0,
				fmt.Sprintf("Out via %s, back via %s", out.code, in.code)) {
				count++
			}
		}
	}
}

func (g *Generator) doubleHub(b *builder, o, d string, hubs []scoredHub) {
	oc, ok1 := g.dir.Coordinates(o)
	dc, ok2 := g.dir.Coordinates(d)
	if !ok1 || !ok2 {
		return
	}

	direct := geo.Distance(oc, dc)
	minKm, maxCount := g.config.DoubleHubMinKmOneWay, g.config.MaxDoubleHubOneWay
	if b.roundTrip {
		minKm, maxCount = g.config.DoubleHubMinKmRoundTrip, g.config.MaxDoubleHubRoundTrip
	}
	if direct <= minKm {
		return
	}

	count := 0
	for _, h1 := range limit(hubs, g.config.DoubleHubSeeds) {
		for _, rh := range g.dir.ReachableHubs(h1.code) {
			if count >= maxCount {
				return
			}
			h2 := strings.ToUpper(rh.Code)
			if h2 == o || h2 == d || h2 == h1.code {
				continue
			}
			c2, ok := g.dir.Coordinates(h2)
			if !ok {
				continue
			}
			if !geo.IsHubSensible(h1.coords, c2, dc, g.config.HubTolerance) {
				continue
			}
			total := geo.RouteDistance(oc, h1.coords, c2, dc)
			if total > g.config.DoubleHubMaxDetour*direct {
				continue
			}

			if b.add(models.StrategyHub, []string{o, h1.code, h2, d}, 0,
				fmt.Sprintf("Double connection via %s and %s (%.0f%% detour)", h1.code, h2, (total/direct-1)*100)) {
				count++
			}
		}
	}
}

// creative combines a nearby-airport departure with a hub that makes sense
// from that airport.
func (g *Generator) creative(b *builder, o, d string) {
	nearby := append([]airports.NearbyAirport{}, g.dir.NearbyAirports(o)...)
	sort.SliceStable(nearby, func(i, j int) bool {
		return nearby[i].CheapestTransport() < nearby[j].CheapestTransport()
	})

	perNearby := g.config.CreativeHubsOneWay
	if b.roundTrip {
		perNearby = g.config.CreativeHubsRoundTrip
	}

	for _, n := range limit(nearby, g.config.CreativeNearby) {
		code := strings.ToUpper(n.Code)
		if code == o || code == d {
			continue
		}
		cost := n.CheapestTransport()

		added := 0
		for _, h := range g.sensibleHubs(code, d) {
			if added >= perNearby {
				break
			}
			if h.code == o {
				continue
			}
			if b.add(models.StrategyCreative, []string{code, h.code, d}, cost,
				fmt.Sprintf("Fly from nearby %s and connect via %s (ground transport $%.0f)", code, h.code, cost)) {
				added++
			}
		}
	}
}

type scoredHub struct {
	code   string
	coords geo.Coordinates
	score  float64
	detour float64
}

// sensibleHubs returns the hubs reachable from "from" that pass the detour
// gate towards "to", best score first. Either endpoint lacking coordinates
// yields no hubs.
func (g *Generator) sensibleHubs(from, to string) []scoredHub {
	fc, ok1 := g.dir.Coordinates(from)
	tc, ok2 := g.dir.Coordinates(to)
	if !ok1 || !ok2 {
		return nil
	}

	seen := make(map[string]bool)
	var hubs []scoredHub
	for _, rh := range g.dir.ReachableHubs(from) {
		code := strings.ToUpper(rh.Code)
		if code == from || code == to || seen[code] {
			continue
		}
		seen[code] = true

		hc, ok := g.dir.Coordinates(code)
		if !ok {
			continue
		}
		if !geo.IsHubSensible(fc, hc, tc, g.config.HubTolerance) {
			continue
		}
		hubs = append(hubs, scoredHub{
			code:   code,
			coords: hc,
			score:  geo.ScoreHub(fc, hc, tc, g.dir.HubMeta(code), to),
			detour: geo.DetourRatio(fc, hc, tc),
		})
	}

	sort.SliceStable(hubs, func(i, j int) bool {
		return hubs[i].score < hubs[j].score
	})
	return hubs
}

func limit[T any](s []T, n int) []T {
	if n >= 0 && len(s) > n {
		return s[:n]
	}
	return s
}
