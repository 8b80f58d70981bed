package geo

import (
	"math"
	"testing"
)

var (
	sfo = Coordinates{Lat: 37.6189, Lng: -122.375}
	bkk = Coordinates{Lat: 13.69, Lng: 100.7501}
	nrt = Coordinates{Lat: 35.772, Lng: 140.3929}
	jnb = Coordinates{Lat: -26.1392, Lng: 28.246}
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b Coordinates
		want float64
		tol  float64
	}{
		{"same point", sfo, sfo, 0, 1e-9},
		{"SFO-BKK", sfo, bkk, 12750, 50},
		{"symmetric", bkk, sfo, 12750, 50},
		{"quarter meridian", Coordinates{0, 0}, Coordinates{90, 0}, math.Pi / 2 * EarthRadiusKm, 1e-6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.a, tt.b)
			if math.Abs(got-tt.want) > tt.tol {
				t.Errorf("Distance() = %.2f, want %.2f ± %.2f", got, tt.want, tt.tol)
			}
		})
	}
}

func TestIsHubSensible(t *testing.T) {
	if !IsHubSensible(sfo, nrt, bkk, DefaultHubTolerance) {
		t.Error("NRT should be a sensible hub for SFO→BKK")
	}
	if IsHubSensible(sfo, jnb, bkk, DefaultHubTolerance) {
		t.Error("JNB should not be a sensible hub for SFO→BKK")
	}
	if IsHubSensible(sfo, nrt, sfo, DefaultHubTolerance) {
		t.Error("no hub is sensible when origin equals destination")
	}
}

func TestDetourRatio(t *testing.T) {
	if r := DetourRatio(sfo, nrt, sfo); !math.IsInf(r, 1) {
		t.Errorf("DetourRatio with coincident endpoints = %v, want +Inf", r)
	}

	r := DetourRatio(sfo, nrt, bkk)
	if r < 1 || r > DefaultHubTolerance {
		t.Errorf("DetourRatio(SFO,NRT,BKK) = %.3f, want within [1, %.1f]", r, DefaultHubTolerance)
	}
}

func TestScoreHub(t *testing.T) {
	serving := HubMeta{Code: "NRT", AnnualPassengersMillions: 0, Destinations: []string{"bkk"}}
	notServing := HubMeta{Code: "NRT", AnnualPassengersMillions: 0}

	base := ScoreHub(sfo, nrt, bkk, serving, "BKK")
	want := 0.5*DetourRatio(sfo, nrt, bkk) + 1
	if math.Abs(base-want) > 1e-9 {
		t.Errorf("ScoreHub() = %v, want %v", base, want)
	}

	if diff := ScoreHub(sfo, nrt, bkk, notServing, "BKK") - base; math.Abs(diff-0.5) > 1e-9 {
		t.Errorf("missing onward route penalty = %v, want 0.5", diff)
	}

	big := serving
	big.AnnualPassengersMillions = 99
	if ScoreHub(sfo, nrt, bkk, big, "BKK") >= base {
		t.Error("a busier hub should score better (lower)")
	}
}

func TestSameDirection(t *testing.T) {
	origin := Coordinates{Lat: 0, Lng: 0}

	tests := []struct {
		name string
		hub  Coordinates
		dest Coordinates
		want bool
	}{
		{"both north", Coordinates{20, 10}, Coordinates{40, 20}, true},
		{"opposite", Coordinates{-20, 10}, Coordinates{40, 20}, false},
		{"hub level with origin", Coordinates{3, 10}, Coordinates{-40, 20}, true},
		{"destination level with origin", Coordinates{-30, 10}, Coordinates{2, 20}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SameDirection(origin, tt.hub, tt.dest); got != tt.want {
				t.Errorf("SameDirection() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWrongWayPenalty(t *testing.T) {
	origin := Coordinates{Lat: 0, Lng: 0}
	dest := Coordinates{Lat: 40, Lng: 40}
	meta := HubMeta{Destinations: []string{"DST"}}

	north := ScoreHub(origin, Coordinates{Lat: 20, Lng: 20}, dest, meta, "DST")
	north -= 0.5 * DetourRatio(origin, Coordinates{Lat: 20, Lng: 20}, dest)
	south := ScoreHub(origin, Coordinates{Lat: -20, Lng: 20}, dest, meta, "DST")
	south -= 0.5 * DetourRatio(origin, Coordinates{Lat: -20, Lng: 20}, dest)

	if math.Abs((south-north)-0.3) > 1e-9 {
		t.Errorf("wrong-way penalty = %v, want 0.3", south-north)
	}
}
