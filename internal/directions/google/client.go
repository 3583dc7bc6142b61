// Package google implements the directions provider against the Google
// Directions API.
package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"googlemaps.github.io/maps"

	"github.com/campusnav/campusnav/internal/directions"
	"github.com/campusnav/campusnav/internal/provider/resilience"
	"github.com/campusnav/campusnav/pkg/geo"
	"github.com/campusnav/campusnav/pkg/polyline"
)

// providerName identifies this provider in logs and breaker names.
const providerName = "google-directions"

// Config holds configuration for the Google directions client.
type Config struct {
	// APIKey is the Google Maps API key.
	APIKey string

	// HTTPClient overrides the HTTP client used for API calls. When nil, a
	// resilient client (circuit breaker + retries, 10s timeout) is built.
	HTTPClient *http.Client

	// Logger for provider operations.
	Logger zerolog.Logger
}

// Client fetches routes from the Google Directions API and maps them into
// the engine's route-result shape.
type Client struct {
	maps      *maps.Client
	transport *resilience.Transport
	logger    zerolog.Logger
}

// NewClient creates a Google directions client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("google: API key is required")
	}

	var transport *resilience.Transport
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		transport = resilience.NewTransport(resilience.TransportConfig{
			Name:   providerName,
			Logger: cfg.Logger,
		})
		httpClient = transport.Client(10 * time.Second)
	}

	mapsClient, err := maps.NewClient(
		maps.WithAPIKey(cfg.APIKey),
		maps.WithHTTPClient(httpClient),
	)
	if err != nil {
		return nil, fmt.Errorf("google: create maps client: %w", err)
	}

	return &Client{maps: mapsClient, transport: transport, logger: cfg.Logger}, nil
}

// CircuitState reports the circuit breaker state for the underlying
// transport, or the empty string when a custom HTTP client is in use.
func (c *Client) CircuitState() string {
	if c.transport == nil {
		return ""
	}
	return c.transport.State().String()
}

// Name returns the provider identifier.
func (c *Client) Name() string {
	return providerName
}

// FetchRoute requests a route between two points and maps the first result
// into the engine's RouteResult shape. The caller stamps the session
// generation token before handing the result to the controller.
func (c *Client) FetchRoute(ctx context.Context, origin, destination geo.Coordinate, mode directions.TransportMode) (*directions.RouteResult, error) {
	if err := validateCoordinate(origin); err != nil {
		return nil, fmt.Errorf("%w: origin: %v", directions.ErrInvalidCoordinates, err)
	}
	if err := validateCoordinate(destination); err != nil {
		return nil, fmt.Errorf("%w: destination: %v", directions.ErrInvalidCoordinates, err)
	}

	c.logger.Debug().
		Float64("origin_lat", origin.Latitude).
		Float64("origin_lng", origin.Longitude).
		Float64("dest_lat", destination.Latitude).
		Float64("dest_lng", destination.Longitude).
		Str("mode", string(mode)).
		Msg("fetching directions")

	routes, _, err := c.maps.Directions(ctx, &maps.DirectionsRequest{
		Origin:      formatLatLng(origin),
		Destination: formatLatLng(destination),
		Mode:        travelMode(mode),
		Units:       maps.UnitsMetric,
	})
	if err != nil {
		if errors.Is(err, resilience.ErrCircuitOpen) {
			return nil, fmt.Errorf("%w: %v", directions.ErrProviderUnavailable, err)
		}
		return nil, fmt.Errorf("google: directions request: %w", err)
	}
	if len(routes) == 0 {
		return nil, directions.ErrNoRouteFound
	}

	result := mapRoute(routes[0])
	c.logger.Debug().
		Int("step_count", providerSteps(result)).
		Int("coordinate_count", len(result.Coordinates)).
		Msg("directions fetched")
	return result, nil
}

func providerSteps(r *directions.RouteResult) int {
	if len(r.Legs) == 0 {
		return 0
	}
	return len(r.Legs[0].Steps)
}

// mapRoute converts a Google route into the engine's wire shape. Totals are
// summed across legs; the polyline comes from the overview geometry.
func mapRoute(route maps.Route) *directions.RouteResult {
	var distanceMeters float64
	var duration time.Duration

	legs := make([]directions.RouteLeg, 0, len(route.Legs))
	for _, leg := range route.Legs {
		distanceMeters += float64(leg.Distance.Meters)
		duration += leg.Duration

		steps := make([]directions.ProviderStep, 0, len(leg.Steps))
		for _, step := range leg.Steps {
			steps = append(steps, directions.ProviderStep{
				HTMLInstructions: step.HTMLInstructions,
				Distance:         directions.TextValue{Text: step.Distance.HumanReadable},
				Duration:         directions.TextValue{Text: humanizeDuration(step.Duration)},
				StartLocation:    directions.LatLng{Lat: step.StartLocation.Lat, Lng: step.StartLocation.Lng},
				EndLocation:      directions.LatLng{Lat: step.EndLocation.Lat, Lng: step.EndLocation.Lng},
			})
		}

		legs = append(legs, directions.RouteLeg{
			Distance: directions.TextValue{Text: leg.Distance.HumanReadable},
			Duration: directions.TextValue{Text: humanizeDuration(leg.Duration)},
			Steps:    steps,
		})
	}

	durationSeconds := duration.Seconds()
	return &directions.RouteResult{
		Distance:    &distanceMeters,
		Duration:    &durationSeconds,
		Legs:        legs,
		Coordinates: polyline.Decode(route.OverviewPolyline.Points),
	}
}

// travelMode maps the engine transport mode onto the Google mode constant.
func travelMode(mode directions.TransportMode) maps.Mode {
	switch mode {
	case directions.ModeDriving:
		return maps.TravelModeDriving
	case directions.ModeBicycling:
		return maps.TravelModeBicycling
	case directions.ModeTransit:
		return maps.TravelModeTransit
	default:
		return maps.TravelModeWalking
	}
}

// humanizeDuration renders a duration the way the Directions API texts read:
// "1 min", "12 mins", "1 hour 5 mins".
func humanizeDuration(d time.Duration) string {
	minutes := int(d.Round(time.Minute) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}

	hours := minutes / 60
	minutes %= 60

	switch {
	case hours == 0:
		return pluralize(minutes, "min")
	case minutes == 0:
		return pluralize(hours, "hour")
	default:
		return pluralize(hours, "hour") + " " + pluralize(minutes, "min")
	}
}

func pluralize(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return strconv.Itoa(n) + " " + unit + "s"
}

func formatLatLng(c geo.Coordinate) string {
	return fmt.Sprintf("%f,%f", c.Latitude, c.Longitude)
}

func validateCoordinate(c geo.Coordinate) error {
	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("latitude %f out of range [-90, 90]", c.Latitude)
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("longitude %f out of range [-180, 180]", c.Longitude)
	}
	return nil
}
