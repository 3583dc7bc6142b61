package directions

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/campusnav/campusnav/pkg/geo"
)

// Progress thresholds, in meters. Step advancement fires inside the arrival
// radius; off-route fires beyond the deviation radius. Calibrated values,
// do not change without recalibrating the fixtures that depend on them.
const (
	StepArrivalRadiusMeters = 25.0
	OffRouteRadiusMeters    = 50.0
)

// ControllerConfig holds configuration for the directions controller.
type ControllerConfig struct {
	// Logger for session transitions.
	Logger zerolog.Logger

	// OnChange, if set, is invoked with a state snapshot after every real
	// state change. Operations that leave the state untouched (a
	// CheckProgress tick that neither advances the step nor flips the
	// off-route flag) do not fire it.
	OnChange func(State)
}

// Controller is the navigation session state machine. All operations are
// synchronous and non-blocking; route fetching is a collaborator concern and
// arrives through ApplyRoute.
type Controller struct {
	logger   zerolog.Logger
	onChange func(State)

	mu         sync.Mutex
	state      State
	generation string
}

// NewController creates a controller in the idle state.
func NewController(cfg ControllerConfig) *Controller {
	return &Controller{
		logger:   cfg.Logger,
		onChange: cfg.OnChange,
		state:    initialState(),
	}
}

// initialState is the idle session value. TransportMode keeps its default
// here; transitions that preserve the mode copy it over explicitly.
func initialState() State {
	return State{TransportMode: DefaultTransportMode}
}

// Generation returns the current session token. A collaborator fetching a
// route captures the token before the fetch and stamps it on the
// RouteResult; ApplyRoute drops results from superseded sessions.
func (c *Controller) Generation() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// State returns a deep snapshot of the session state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// Start begins turn-by-turn navigation between two points. Any previous
// route data is cleared; the transport mode is preserved.
func (c *Controller) Start(origin, destination geo.Coordinate) {
	c.mu.Lock()
	c.beginSession(origin, destination, true)
	st := c.snapshot()
	c.mu.Unlock()

	c.logger.Info().
		Float64("origin_lat", origin.Latitude).
		Float64("origin_lng", origin.Longitude).
		Float64("dest_lat", destination.Latitude).
		Float64("dest_lng", destination.Longitude).
		Msg("navigation started")
	c.notify(st)
}

// StartToBuilding begins navigation from the current location to a building
// footprint, routing to a guaranteed-interior point of the polygon.
func (c *Controller) StartToBuilding(current geo.Coordinate, footprint geo.Polygon) {
	c.Start(current, geo.InteriorPoint(footprint))
}

// Preview sets an origin/destination pair without starting live navigation.
func (c *Controller) Preview(origin, destination geo.Coordinate) {
	c.mu.Lock()
	c.beginSession(origin, destination, false)
	st := c.snapshot()
	c.mu.Unlock()

	c.logger.Debug().Msg("route preview started")
	c.notify(st)
}

// End resets the session to the idle state. Safe to call at any time,
// including while a route fetch is in flight: the generation token rotates,
// so the stale response is dropped when it arrives.
func (c *Controller) End() {
	c.mu.Lock()
	c.state = initialState()
	c.generation = ""
	st := c.snapshot()
	c.mu.Unlock()

	c.logger.Info().Msg("navigation ended")
	c.notify(st)
}

// beginSession resets route data for a new origin/destination pair.
// Caller holds the lock.
func (c *Controller) beginSession(origin, destination geo.Coordinate, active bool) {
	mode := c.state.TransportMode
	c.state = initialState()
	c.state.TransportMode = mode
	c.state.Origin = &origin
	c.state.Destination = &destination
	c.state.IsActive = active
	c.generation = uuid.New().String()
}

// ApplyRoute consumes an external provider result. It never fails: malformed
// or partial results degrade to empty steps and nil totals. Results stamped
// with a superseded generation token are dropped.
func (c *Controller) ApplyRoute(result RouteResult) {
	c.mu.Lock()

	if result.Generation != "" && result.Generation != c.generation {
		c.mu.Unlock()
		c.logger.Warn().
			Str("result_generation", result.Generation).
			Msg("dropping route result for superseded session")
		return
	}

	steps := make([]RouteStep, 0, providerStepCount(result))
	info := RouteInfo{Distance: result.Distance, Duration: result.Duration}

	if len(result.Legs) > 0 {
		leg := result.Legs[0]
		info.DistanceText = leg.Distance.Text
		info.DurationText = leg.Duration.Text

		for _, s := range leg.Steps {
			steps = append(steps, RouteStep{
				Instruction:   s.HTMLInstructions,
				DistanceText:  s.Distance.Text,
				DurationText:  s.Duration.Text,
				Maneuver:      s.Maneuver,
				StartLocation: s.StartLocation.Coordinate(),
				EndLocation:   s.EndLocation.Coordinate(),
			})
		}
	}

	c.state.Steps = steps
	c.state.CurrentStepIndex = 0
	c.state.RouteCoordinates = append([]geo.Coordinate(nil), result.Coordinates...)
	c.state.RouteInfo = info
	c.state.IsOffRoute = false
	c.state.Loading = false
	c.state.Error = ""

	st := c.snapshot()
	c.mu.Unlock()

	c.logger.Debug().
		Int("step_count", len(steps)).
		Int("coordinate_count", len(result.Coordinates)).
		Msg("route applied")
	c.notify(st)
}

func providerStepCount(result RouteResult) int {
	if len(result.Legs) == 0 {
		return 0
	}
	return len(result.Legs[0].Steps)
}

// NextStep advances to the next instruction, clamped to the last step.
// A no-op when the route has no steps.
func (c *Controller) NextStep() {
	c.shiftStep(1)
}

// PrevStep moves back one instruction, clamped to the first step.
// A no-op when the route has no steps.
func (c *Controller) PrevStep() {
	c.shiftStep(-1)
}

func (c *Controller) shiftStep(delta int) {
	c.mu.Lock()
	if len(c.state.Steps) == 0 {
		c.mu.Unlock()
		return
	}

	next := clamp(c.state.CurrentStepIndex+delta, 0, len(c.state.Steps)-1)
	if next == c.state.CurrentStepIndex {
		c.mu.Unlock()
		return
	}

	c.state.CurrentStepIndex = next
	st := c.snapshot()
	c.mu.Unlock()
	c.notify(st)
}

// SetTransportMode updates the travel mode. The session itself is untouched;
// collaborators re-query the provider and deliver fresh data via ApplyRoute.
func (c *Controller) SetTransportMode(mode TransportMode) {
	c.mu.Lock()
	if c.state.TransportMode == mode {
		c.mu.Unlock()
		return
	}
	c.state.TransportMode = mode
	st := c.snapshot()
	c.mu.Unlock()
	c.notify(st)
}

// SetLoading surfaces the collaborator's route-fetch progress.
func (c *Controller) SetLoading(loading bool) {
	c.mu.Lock()
	if c.state.Loading == loading {
		c.mu.Unlock()
		return
	}
	c.state.Loading = loading
	st := c.snapshot()
	c.mu.Unlock()
	c.notify(st)
}

// SetError surfaces a collaborator-reported transport failure. Pass the
// empty string to clear.
func (c *Controller) SetError(message string) {
	c.mu.Lock()
	if c.state.Error == message {
		c.mu.Unlock()
		return
	}
	c.state.Error = message
	c.state.Loading = false
	st := c.snapshot()
	c.mu.Unlock()
	c.notify(st)
}

// CheckProgress ingests a location sample during active navigation. Within
// the arrival radius of the current step's end it advances to the next step
// (never past the last: arrival is signaled by staying on the final step;
// ending the session is an explicit action). It flags off-route when the
// minimum distance to the route polyline, or to the current step's segment
// when the provider sent no polyline, exceeds the deviation radius.
//
// When neither the step index nor the off-route flag changes, no state is
// rewritten and no change notification fires.
func (c *Controller) CheckProgress(location geo.Coordinate) {
	c.mu.Lock()

	if !c.state.IsActive || len(c.state.Steps) == 0 {
		c.mu.Unlock()
		return
	}

	idx := c.state.CurrentStepIndex
	step := c.state.Steps[idx]

	advanced := false
	if geo.Haversine(location, step.EndLocation) <= StepArrivalRadiusMeters &&
		idx < len(c.state.Steps)-1 {
		idx++
		advanced = true
	}

	line := c.state.RouteCoordinates
	if len(line) == 0 {
		line = []geo.Coordinate{step.StartLocation, step.EndLocation}
	}
	offRoute := geo.DistanceToPolyline(location, line) > OffRouteRadiusMeters

	if !advanced && offRoute == c.state.IsOffRoute {
		c.mu.Unlock()
		return
	}

	c.state.CurrentStepIndex = idx
	c.state.IsOffRoute = offRoute
	st := c.snapshot()
	c.mu.Unlock()

	if advanced {
		c.logger.Debug().Int("step_index", idx).Msg("advanced to next step")
	}
	if offRoute {
		c.logger.Debug().Msg("user deviated from route")
	}
	c.notify(st)
}

// snapshot deep-copies the state. Caller holds the lock.
func (c *Controller) snapshot() State {
	st := c.state
	if st.Origin != nil {
		origin := *st.Origin
		st.Origin = &origin
	}
	if st.Destination != nil {
		dest := *st.Destination
		st.Destination = &dest
	}
	if st.RouteInfo.Distance != nil {
		d := *st.RouteInfo.Distance
		st.RouteInfo.Distance = &d
	}
	if st.RouteInfo.Duration != nil {
		d := *st.RouteInfo.Duration
		st.RouteInfo.Duration = &d
	}
	st.Steps = append([]RouteStep(nil), c.state.Steps...)
	st.RouteCoordinates = append([]geo.Coordinate(nil), c.state.RouteCoordinates...)
	return st
}

// notify runs outside the lock so a subscriber may call back in.
func (c *Controller) notify(st State) {
	if c.onChange != nil {
		c.onChange(st)
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
