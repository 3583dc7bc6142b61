// Package directions owns the navigation session state machine: route
// preview and turn-by-turn lifecycle, route-result ingestion, step
// advancement, and off-route detection.
package directions

import (
	"errors"

	"github.com/campusnav/campusnav/pkg/geo"
)

// Sentinel errors for route fetching. The state machine itself never fails;
// these classify provider transport errors for the collaborator that
// surfaces them into the state's Error field.
var (
	// ErrProviderUnavailable indicates the directions provider is down or the circuit breaker is open.
	ErrProviderUnavailable = errors.New("directions provider unavailable")
	// ErrNoRouteFound indicates no route exists between the given points.
	ErrNoRouteFound = errors.New("no route found between the given points")
	// ErrInvalidCoordinates indicates the provided coordinates are out of range.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

// TransportMode represents the mode of travel requested from the provider.
type TransportMode string

const (
	ModeDriving   TransportMode = "DRIVING"
	ModeWalking   TransportMode = "WALKING"
	ModeBicycling TransportMode = "BICYCLING"
	ModeTransit   TransportMode = "TRANSIT"
)

// DefaultTransportMode is the mode of a fresh session. Campus navigation is
// on foot unless the user picks otherwise.
const DefaultTransportMode = ModeWalking

// RouteStep is one turn-by-turn instruction of the current route.
type RouteStep struct {
	// Instruction is the raw provider instruction text. It may contain
	// inline HTML markup; consumers strip it before display.
	Instruction string `json:"instruction"`

	// DistanceText and DurationText are the provider's human-readable
	// segment distance and duration.
	DistanceText string `json:"distanceText"`
	DurationText string `json:"durationText"`

	// Maneuver is the provider maneuver code ("turn-left", ...). Empty when
	// the provider reports none.
	Maneuver string `json:"maneuver,omitempty"`

	StartLocation geo.Coordinate `json:"startLocation"`
	EndLocation   geo.Coordinate `json:"endLocation"`
}

// RouteInfo holds aggregate totals for the current route. Nil pointers and
// empty strings mean the provider has not reported the value.
type RouteInfo struct {
	Distance     *float64 `json:"distance"`
	Duration     *float64 `json:"duration"`
	DistanceText string   `json:"distanceText,omitempty"`
	DurationText string   `json:"durationText,omitempty"`
}

// State is the navigation session aggregate. Snapshots returned by
// Controller.State are deep copies; mutating one never affects the session.
//
// Invariants maintained by the controller:
//   - IsActive implies Origin and Destination are both set.
//   - CurrentStepIndex stays within [0, len(Steps)-1] when Steps is non-empty.
//   - Steps, RouteCoordinates and RouteInfo reset whenever the
//     origin/destination pair changes or the session ends.
//   - IsOffRoute is always false outside an active session with steps.
type State struct {
	Origin      *geo.Coordinate `json:"origin"`
	Destination *geo.Coordinate `json:"destination"`

	// IsActive is true while turn-by-turn navigation is in progress, false
	// for idle and preview sessions.
	IsActive bool `json:"isActive"`

	TransportMode TransportMode `json:"transportMode"`

	// Loading and Error surface the collaborator's route-fetch transport
	// state; the controller never performs I/O itself.
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`

	RouteInfo        RouteInfo   `json:"routeInfo"`
	Steps            []RouteStep `json:"steps"`
	CurrentStepIndex int         `json:"currentStepIndex"`

	// RouteCoordinates is the provider polyline for the current route.
	RouteCoordinates []geo.Coordinate `json:"routeCoordinates"`

	IsOffRoute bool `json:"isOffRoute"`
}

// LatLng is a provider coordinate pair in the directions wire shape.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Coordinate converts the wire pair to the engine coordinate type.
func (l LatLng) Coordinate() geo.Coordinate {
	return geo.Coordinate{Latitude: l.Lat, Longitude: l.Lng}
}

// TextValue is a provider distance or duration with display text.
type TextValue struct {
	Text string `json:"text"`
}

// ProviderStep is one step of a provider route leg, in the directions wire
// shape. All fields are optional; absent fields degrade to zero values.
type ProviderStep struct {
	HTMLInstructions string    `json:"html_instructions"`
	Distance         TextValue `json:"distance"`
	Duration         TextValue `json:"duration"`
	Maneuver         string    `json:"maneuver,omitempty"`
	StartLocation    LatLng    `json:"start_location"`
	EndLocation      LatLng    `json:"end_location"`
}

// RouteLeg is one leg of a provider route.
type RouteLeg struct {
	Distance TextValue      `json:"distance"`
	Duration TextValue      `json:"duration"`
	Steps    []ProviderStep `json:"steps"`
}

// RouteResult is the untrusted external provider result consumed by
// Controller.ApplyRoute. Missing legs or coordinates are valid and degrade
// to empty state rather than erroring.
type RouteResult struct {
	Distance    *float64         `json:"distance,omitempty"`
	Duration    *float64         `json:"duration,omitempty"`
	Legs        []RouteLeg       `json:"legs,omitempty"`
	Coordinates []geo.Coordinate `json:"coordinates,omitempty"`

	// Generation ties the result to the session it was requested for. When
	// set, ApplyRoute drops the result if the session has since changed.
	// Empty means "apply unconditionally".
	Generation string `json:"-"`
}
