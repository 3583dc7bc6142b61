package directions

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/campusnav/campusnav/pkg/geo"
)

// Provider is the external routing provider consumed by the engine. The
// engine never computes routes itself.
type Provider interface {
	// FetchRoute retrieves a route between two points for the given mode.
	FetchRoute(ctx context.Context, origin, destination geo.Coordinate, mode TransportMode) (*RouteResult, error)
	// Name returns the provider identifier for logging.
	Name() string
}

// FetcherConfig holds configuration for the route fetcher.
type FetcherConfig struct {
	// Controller is the session whose route data the fetcher maintains.
	Controller *Controller

	// Provider supplies routes.
	Provider Provider

	// Deliver receives each fetched result. Defaults to
	// Controller.ApplyRoute; the camera orchestrator's HandleRouteReady is
	// installed here when map framing is wanted.
	Deliver func(RouteResult)

	// Logger for fetch operations.
	Logger zerolog.Logger
}

// Fetcher bridges the controller and the routing provider: it reads the
// session's endpoints, fetches a route, and delivers the result stamped with
// the session generation token so stale responses are dropped.
type Fetcher struct {
	ctrl     *Controller
	provider Provider
	deliver  func(RouteResult)
	logger   zerolog.Logger
}

// NewFetcher creates a fetcher.
func NewFetcher(cfg FetcherConfig) *Fetcher {
	deliver := cfg.Deliver
	if deliver == nil {
		deliver = cfg.Controller.ApplyRoute
	}
	return &Fetcher{
		ctrl:     cfg.Controller,
		provider: cfg.Provider,
		deliver:  deliver,
		logger:   cfg.Logger,
	}
}

// Refresh fetches a route for the current session endpoints and delivers it.
// A no-op when the session has no origin/destination pair. Call it after
// Start/Preview and after a transport mode change.
//
// Ending the session mid-fetch is safe: the generation token captured here
// no longer matches and the controller drops the late result.
func (f *Fetcher) Refresh(ctx context.Context) error {
	st := f.ctrl.State()
	if st.Origin == nil || st.Destination == nil {
		return nil
	}
	generation := f.ctrl.Generation()

	f.ctrl.SetLoading(true)

	result, err := f.provider.FetchRoute(ctx, *st.Origin, *st.Destination, st.TransportMode)
	if err != nil {
		f.logger.Error().Err(err).
			Str("provider", f.provider.Name()).
			Msg("route fetch failed")
		f.ctrl.SetError(err.Error())
		return err
	}

	result.Generation = generation
	f.deliver(*result)
	return nil
}
