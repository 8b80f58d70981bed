package geo

import (
	"math"
	"strings"
)

const EarthRadiusKm = 6371.0

const (
	DefaultHubTolerance = 1.4

	detourWeight      = 0.5
	noRoutePenalty    = 0.5
	wrongWayPenalty   = 0.3
	sameDirectionBand = 5.0 // degrees of latitude treated as "level" with the origin
)

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// HubMeta is the static information about a hub needed to score it.
type HubMeta struct {
	Code                     string
	AnnualPassengersMillions float64
	Destinations             []string
}

func (m HubMeta) Serves(code string) bool {
	for _, d := range m.Destinations {
		if strings.EqualFold(d, code) {
			return true
		}
	}
	return false
}

// Distance returns the great-circle distance between a and b in kilometres.
func Distance(a, b Coordinates) float64 {
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusKm * c
}

// RouteDistance sums the distance of every hop along points.
func RouteDistance(points ...Coordinates) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += Distance(points[i-1], points[i])
	}
	return total
}

// DetourRatio is the via-hub distance divided by the direct distance.
// Coincident endpoints yield +Inf so that no hub is ever considered sensible.
func DetourRatio(origin, hub, dest Coordinates) float64 {
	direct := Distance(origin, dest)
	if direct == 0 {
		return math.Inf(1)
	}
	return RouteDistance(origin, hub, dest) / direct
}

func IsHubSensible(origin, hub, dest Coordinates, tolerance float64) bool {
	direct := Distance(origin, dest)
	if direct == 0 {
		return false
	}
	return RouteDistance(origin, hub, dest) <= tolerance*direct
}

// ScoreHub ranks a hub for the origin/destination pair. Lower is better.
//
//	0.5*detour + 1/(passengers+1) + 0.5 if the hub does not list dest
//	+ 0.3 if the hub lies in the opposite latitudinal direction to dest
func ScoreHub(origin, hub, dest Coordinates, meta HubMeta, destCode string) float64 {
	score := detourWeight * DetourRatio(origin, hub, dest)
	score += 1 / (math.Max(meta.AnnualPassengersMillions, 0) + 1)

	if !meta.Serves(destCode) {
		score += noRoutePenalty
	}
	if !SameDirection(origin, hub, dest) {
		score += wrongWayPenalty
	}
	return score
}

// SameDirection reports whether hub is roughly on the same north/south side of
// origin as dest. Hubs within a few degrees of the origin's latitude count as
// level and therefore in either direction.
func SameDirection(origin, hub, dest Coordinates) bool {
	hubDelta := hub.Lat - origin.Lat
	destDelta := dest.Lat - origin.Lat

	if math.Abs(hubDelta) <= sameDirectionBand || math.Abs(destDelta) <= sameDirectionBand {
		return true
	}
	return (hubDelta > 0) == (destDelta > 0)
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
