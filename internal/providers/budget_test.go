package providers

import (
	"strings"
	"testing"

	"github.com/dharmasatrya/flightscout/internal/models"
)

func TestDetectRegion(t *testing.T) {
	tests := []struct {
		origin, destination string
		want                string
	}{
		{"LHR", "JFK", "europe"},
		{"SFO", "BKK", "us"},
		{"bkk", "sin", "asia"},
		{"JNB", "NBO", "africa"},
		{"XXX", "YYY", ""},
	}

	for _, tt := range tests {
		t.Run(tt.origin+"-"+tt.destination, func(t *testing.T) {
			if got := DetectRegion(tt.origin, tt.destination); got != tt.want {
				t.Errorf("DetectRegion() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBudgetAlternatives(t *testing.T) {
	b := NewBudgetChecker()
	alts := b.Alternatives(models.LegQuery{
		Origin:        "STN",
		Destination:   "BCN",
		DepartureDate: "2025-10-18",
		Passengers:    models.Passengers{Adults: 2},
	})

	if len(alts) != 3 {
		t.Fatalf("got %d alternatives, want 3 European carriers", len(alts))
	}
	fr := alts[0]
	if fr.AirlineCode != "FR" || fr.Confidence != "high" {
		t.Errorf("first alternative = %+v, want Ryanair with high confidence", fr)
	}
	if !strings.Contains(fr.CheckURL, "/STN/BCN/2025-10-18//2/0/0") {
		t.Errorf("Ryanair URL = %q", fr.CheckURL)
	}
	if alts[1].Confidence != "medium" || alts[1].Note != "Check Wizz Air for potential savings" {
		t.Errorf("second alternative = %+v", alts[1])
	}

	if got := b.Alternatives(models.LegQuery{Origin: "XXX", Destination: "YYY"}); got != nil {
		t.Errorf("unknown region should have no alternatives, got %v", got)
	}
}
