package models

// ComputeRouteRequest is the request body for POST /v1/routes:compute.
type ComputeRouteRequest struct {
	Origin      Point  `json:"origin"`
	Destination Point  `json:"destination"`
	Mode        string `json:"mode,omitempty"`
}

// RouteStep describes a single maneuver along a computed route.
type RouteStep struct {
	Instruction  string `json:"instruction"`
	DistanceText string `json:"distanceText,omitempty"`
	DurationText string `json:"durationText,omitempty"`
	Maneuver     string `json:"maneuver,omitempty"`
	Start        Point  `json:"start"`
	End          Point  `json:"end"`
}

// RouteResponse is the response for POST /v1/routes:compute.
type RouteResponse struct {
	DistanceMeters  float64     `json:"distanceMeters"`
	DurationSeconds float64     `json:"durationSeconds"`
	Steps           []RouteStep `json:"steps"`
	Coordinates     []Point     `json:"coordinates"`
}
