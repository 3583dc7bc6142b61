package models

// CampusSummary describes a campus available on this deployment.
type CampusSummary struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	InitialRegion Region `json:"initialRegion"`
	BuildingCount int    `json:"buildingCount"`
}

// CampusListResponse is the response for GET /v1/campuses.
type CampusListResponse struct {
	Campuses []CampusSummary `json:"campuses"`
}

// BuildingMatch describes a building containing a queried point.
type BuildingMatch struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Code          string `json:"code,omitempty"`
	InteriorPoint Point  `json:"interiorPoint"`
}

// LocateResponse is the response for GET /v1/buildings/locate.
// Building is null when the point falls outside every footprint.
type LocateResponse struct {
	Building *BuildingMatch `json:"building"`
}
