package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/campusnav/campusnav/internal/api/models"
	"github.com/campusnav/campusnav/internal/api/response"
	"github.com/campusnav/campusnav/internal/directions"
	"github.com/campusnav/campusnav/pkg/geo"
)

// RouteHandler handles route computation endpoints.
type RouteHandler struct {
	provider directions.Provider
	logger   zerolog.Logger
}

// NewRouteHandler creates a new RouteHandler.
func NewRouteHandler(provider directions.Provider, logger zerolog.Logger) *RouteHandler {
	return &RouteHandler{
		provider: provider,
		logger:   logger,
	}
}

// ComputeRoute handles POST /v1/routes:compute - fetch a route between two
// points from the configured directions provider.
func (h *RouteHandler) ComputeRoute(w http.ResponseWriter, r *http.Request) {
	if h.provider == nil {
		response.ServiceUnavailable(w, r, "no directions provider configured")
		return
	}

	var req models.ComputeRouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid request body", nil)
		return
	}

	mode, fieldErrs := parseMode(req.Mode)
	if len(fieldErrs) > 0 {
		response.BadRequest(w, r, "invalid request", fieldErrs)
		return
	}

	origin := geo.Coordinate{Latitude: req.Origin.Lat, Longitude: req.Origin.Lng}
	destination := geo.Coordinate{Latitude: req.Destination.Lat, Longitude: req.Destination.Lng}

	result, err := h.provider.FetchRoute(r.Context(), origin, destination, mode)
	if err != nil {
		h.writeRouteError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, toRouteResponse(result))
}

func (h *RouteHandler) writeRouteError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, directions.ErrInvalidCoordinates):
		response.BadRequest(w, r, "coordinates are out of range", nil)
	case errors.Is(err, directions.ErrNoRouteFound):
		response.NotFound(w, r, "no route found between the given points")
	case errors.Is(err, directions.ErrProviderUnavailable):
		response.ServiceUnavailable(w, r, "directions provider unavailable")
	default:
		h.logger.Error().Err(err).Msg("route computation failed")
		response.InternalError(w, r, "route computation failed")
	}
}

func parseMode(mode string) (directions.TransportMode, []models.FieldError) {
	switch mode {
	case "":
		return directions.DefaultTransportMode, nil
	case "walking":
		return directions.ModeWalking, nil
	case "driving":
		return directions.ModeDriving, nil
	case "bicycling":
		return directions.ModeBicycling, nil
	case "transit":
		return directions.ModeTransit, nil
	default:
		return "", []models.FieldError{{
			Field:   "mode",
			Message: "must be one of walking, driving, bicycling, transit",
		}}
	}
}

func toRouteResponse(result *directions.RouteResult) models.RouteResponse {
	resp := models.RouteResponse{
		Steps:       []models.RouteStep{},
		Coordinates: make([]models.Point, 0, len(result.Coordinates)),
	}
	if result.Distance != nil {
		resp.DistanceMeters = *result.Distance
	}
	if result.Duration != nil {
		resp.DurationSeconds = *result.Duration
	}

	for _, leg := range result.Legs {
		for _, step := range leg.Steps {
			resp.Steps = append(resp.Steps, models.RouteStep{
				Instruction:  step.HTMLInstructions,
				DistanceText: step.Distance.Text,
				DurationText: step.Duration.Text,
				Maneuver:     step.Maneuver,
				Start:        models.Point{Lat: step.StartLocation.Lat, Lng: step.StartLocation.Lng},
				End:          models.Point{Lat: step.EndLocation.Lat, Lng: step.EndLocation.Lng},
			})
		}
	}

	for _, c := range result.Coordinates {
		resp.Coordinates = append(resp.Coordinates, models.Point{Lat: c.Latitude, Lng: c.Longitude})
	}

	return resp
}
