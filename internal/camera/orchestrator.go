// Package camera turns directions-state transitions and live location into
// map camera commands, issued through an injected map handle.
package camera

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/campusnav/campusnav/internal/campus"
	"github.com/campusnav/campusnav/internal/directions"
	"github.com/campusnav/campusnav/pkg/geo"
)

// Camera constants. The deltas and paddings are calibrated against the
// mobile map view; preserve them exactly.
const (
	// AnimateDuration is the duration of every camera animation.
	AnimateDuration = 600 * time.Millisecond

	// AutoCenterDelta is the region span used when centering on the user at
	// session start.
	AutoCenterDelta = 0.005
)

// EdgePadding is the screen-edge padding for fit-to-coordinates commands.
type EdgePadding struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Fit paddings. Navigation padding reserves extra space at the bottom for
// the on-screen turn-by-turn panel.
var (
	PreviewPadding    = EdgePadding{Top: 80, Right: 50, Bottom: 80, Left: 50}
	NavigationPadding = EdgePadding{Top: 160, Right: 50, Bottom: 220, Left: 50}
)

// Handle abstracts the mounted map view. Nil-safe by contract of the
// orchestrator: commands are skipped, not errored, while no map is attached.
type Handle interface {
	// AnimateToRegion moves the camera to frame the region.
	AnimateToRegion(region geo.Region, duration time.Duration)

	// FitToCoordinates frames all coordinates with the given padding.
	FitToCoordinates(coords []geo.Coordinate, padding EdgePadding, animated bool)
}

// session holds the per-active-session camera flags.
//
// centeredOnUser is cleared when a session ends, so the next session
// re-centers. fitPending is armed when a session becomes active and cleared
// by the first route-ready framing, so later route refreshes (a transport
// mode change, say) do not yank the camera.
type session struct {
	active         bool
	centeredOnUser bool
	fitPending     bool
}

// OrchestratorConfig holds configuration for the camera orchestrator.
type OrchestratorConfig struct {
	// Controller is the directions state machine the camera reacts to.
	Controller *directions.Controller

	// Logger for camera decisions.
	Logger zerolog.Logger
}

// Orchestrator watches the directions controller and live location and
// drives the map camera. It owns no durable state beyond the two session
// flags; everything else is derived per call.
type Orchestrator struct {
	ctrl   *directions.Controller
	logger zerolog.Logger

	mu           sync.Mutex
	handle       Handle
	sess         session
	lastCampusID string
	lastLocation *geo.Coordinate
}

// NewOrchestrator creates an orchestrator bound to a directions controller.
// A map handle is attached separately once the map mounts.
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	return &Orchestrator{
		ctrl:   cfg.Controller,
		logger: cfg.Logger,
	}
}

// Attach installs the mounted map handle. Camera commands issued before
// attachment are skipped silently.
func (o *Orchestrator) Attach(h Handle) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.handle = h
}

// Detach removes the map handle, e.g. when the map view unmounts.
func (o *Orchestrator) Detach() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.handle = nil
}

// SetCampus reacts to a campus selection. The camera animates to the campus
// initial region only when the campus identity actually changes; repeated
// evaluations with the same campus issue no command. The identity latches
// only when a command was issued, so a campus selected before the map
// mounts is still framed on the first evaluation after Attach.
func (o *Orchestrator) SetCampus(c *campus.Campus) {
	if c == nil {
		return
	}

	o.mu.Lock()
	handle := o.handle
	if c.ID == o.lastCampusID || handle == nil {
		o.mu.Unlock()
		return
	}
	o.lastCampusID = c.ID
	o.mu.Unlock()

	o.logger.Debug().Str("campus_id", c.ID).Msg("campus changed, framing initial region")
	handle.AnimateToRegion(c.InitialRegion, AnimateDuration)
}

// ObserveLocation ingests one location sample. While a session is active it
// forwards each distinct coordinate to the controller's progress check, and
// centers the camera on the user once per active session.
func (o *Orchestrator) ObserveLocation(loc geo.Coordinate) {
	st := o.ctrl.State()

	o.mu.Lock()
	o.syncSession(st.IsActive)

	if !st.IsActive {
		o.lastLocation = &loc
		o.mu.Unlock()
		return
	}

	repeated := o.lastLocation != nil && *o.lastLocation == loc
	o.lastLocation = &loc

	handle := o.handle
	shouldCenter := !o.sess.centeredOnUser && handle != nil
	if shouldCenter {
		o.sess.centeredOnUser = true
	}
	o.mu.Unlock()

	if !repeated {
		o.ctrl.CheckProgress(loc)
	}

	if shouldCenter && handle != nil {
		handle.AnimateToRegion(geo.Region{
			Latitude:       loc.Latitude,
			Longitude:      loc.Longitude,
			LatitudeDelta:  AutoCenterDelta,
			LongitudeDelta: AutoCenterDelta,
		}, AnimateDuration)
	}
}

// HandleRouteReady delivers a provider route result. The state update always
// happens first, regardless of camera availability; framing is best-effort.
//
// Previews fit generously; the first route of an active session fits with
// navigation padding and disarms further fits for that session. Empty
// coordinates or a detached handle skip the camera command, which is not an
// error.
func (o *Orchestrator) HandleRouteReady(result directions.RouteResult) {
	o.ctrl.ApplyRoute(result)
	if result.Generation != "" && result.Generation != o.ctrl.Generation() {
		// The controller dropped a superseded result. Framing it would
		// consume the session's pending fit on a route that is not shown.
		o.logger.Debug().Msg("ignoring superseded route result")
		return
	}
	st := o.ctrl.State()

	o.mu.Lock()
	o.syncSession(st.IsActive)

	handle := o.handle
	var padding *EdgePadding
	if handle != nil && len(result.Coordinates) > 0 {
		switch {
		case !st.IsActive:
			padding = &PreviewPadding
		case o.sess.fitPending:
			padding = &NavigationPadding
			o.sess.fitPending = false
		}
	}
	o.mu.Unlock()

	if padding == nil {
		return
	}

	o.logger.Debug().
		Int("coordinate_count", len(result.Coordinates)).
		Bool("active", st.IsActive).
		Msg("fitting camera to route")
	handle.FitToCoordinates(result.Coordinates, *padding, true)
}

// syncSession resets the session flags on IsActive edges. Caller holds the
// lock.
func (o *Orchestrator) syncSession(active bool) {
	switch {
	case active && !o.sess.active:
		o.sess = session{active: true, fitPending: true}
	case !active && o.sess.active:
		o.sess = session{}
	}
}
