package google

import (
	"testing"
	"time"

	"googlemaps.github.io/maps"

	"github.com/campusnav/campusnav/internal/directions"
	"github.com/campusnav/campusnav/pkg/geo"
)

func TestMapRoute(t *testing.T) {
	route := maps.Route{
		Legs: []*maps.Leg{
			{
				Distance: maps.Distance{HumanReadable: "1.2 km", Meters: 1200},
				Duration: 15 * time.Minute,
				Steps: []*maps.Step{
					{
						HTMLInstructions: "Head <b>north</b> on Campus Drive",
						Distance:         maps.Distance{HumanReadable: "0.4 km", Meters: 400},
						Duration:         5 * time.Minute,
						StartLocation:    maps.LatLng{Lat: 52.000, Lng: 4.000},
						EndLocation:      maps.LatLng{Lat: 52.004, Lng: 4.000},
					},
					{
						HTMLInstructions: "Turn <b>left</b>",
						Distance:         maps.Distance{HumanReadable: "0.8 km", Meters: 800},
						Duration:         10 * time.Minute,
						StartLocation:    maps.LatLng{Lat: 52.004, Lng: 4.000},
						EndLocation:      maps.LatLng{Lat: 52.004, Lng: 4.012},
					},
				},
			},
		},
		OverviewPolyline: maps.Polyline{Points: "_p~iF~ps|U_ulLnnqC"},
	}

	result := mapRoute(route)

	if result.Distance == nil || *result.Distance != 1200 {
		t.Errorf("unexpected total distance: %+v", result.Distance)
	}
	if result.Duration == nil || *result.Duration != 900 {
		t.Errorf("unexpected total duration: %+v", result.Duration)
	}

	if len(result.Legs) != 1 {
		t.Fatalf("expected 1 leg, got %d", len(result.Legs))
	}
	leg := result.Legs[0]
	if leg.Distance.Text != "1.2 km" || leg.Duration.Text != "15 mins" {
		t.Errorf("unexpected leg texts: %+v", leg)
	}

	if len(leg.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(leg.Steps))
	}
	first := leg.Steps[0]
	if first.HTMLInstructions != "Head <b>north</b> on Campus Drive" {
		t.Errorf("instructions must be copied raw, got %q", first.HTMLInstructions)
	}
	if first.Duration.Text != "5 mins" {
		t.Errorf("unexpected step duration text: %q", first.Duration.Text)
	}
	if first.EndLocation != (directions.LatLng{Lat: 52.004, Lng: 4.000}) {
		t.Errorf("unexpected step end location: %+v", first.EndLocation)
	}

	if len(result.Coordinates) != 2 {
		t.Fatalf("expected 2 decoded overview coordinates, got %d", len(result.Coordinates))
	}
	want := geo.Coordinate{Latitude: 38.5, Longitude: -120.2}
	if got := result.Coordinates[0]; got != want {
		t.Errorf("expected decoded polyline start %+v, got %+v", want, got)
	}
}

func TestMapRoute_MultiLegTotals(t *testing.T) {
	route := maps.Route{
		Legs: []*maps.Leg{
			{Distance: maps.Distance{Meters: 500}, Duration: 5 * time.Minute},
			{Distance: maps.Distance{Meters: 700}, Duration: 7 * time.Minute},
		},
	}

	result := mapRoute(route)
	if *result.Distance != 1200 {
		t.Errorf("expected summed distance 1200, got %f", *result.Distance)
	}
	if *result.Duration != 720 {
		t.Errorf("expected summed duration 720s, got %f", *result.Duration)
	}
	if len(result.Coordinates) != 0 {
		t.Errorf("expected no coordinates without an overview polyline, got %d", len(result.Coordinates))
	}
}

func TestHumanizeDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{20 * time.Second, "1 min"},
		{time.Minute, "1 min"},
		{12 * time.Minute, "12 mins"},
		{time.Hour, "1 hour"},
		{2 * time.Hour, "2 hours"},
		{65 * time.Minute, "1 hour 5 mins"},
		{121 * time.Minute, "2 hours 1 min"},
	}

	for _, tt := range tests {
		if got := humanizeDuration(tt.d); got != tt.want {
			t.Errorf("humanizeDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestTravelMode(t *testing.T) {
	tests := []struct {
		mode directions.TransportMode
		want maps.Mode
	}{
		{directions.ModeDriving, maps.TravelModeDriving},
		{directions.ModeWalking, maps.TravelModeWalking},
		{directions.ModeBicycling, maps.TravelModeBicycling},
		{directions.ModeTransit, maps.TravelModeTransit},
		{directions.TransportMode("BOGUS"), maps.TravelModeWalking},
	}

	for _, tt := range tests {
		if got := travelMode(tt.mode); got != tt.want {
			t.Errorf("travelMode(%s) = %v, want %v", tt.mode, got, tt.want)
		}
	}
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Error("expected error for missing API key")
	}
}
