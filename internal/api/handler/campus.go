package handler

import (
	"net/http"
	"strconv"

	"github.com/campusnav/campusnav/internal/api/models"
	"github.com/campusnav/campusnav/internal/api/response"
	"github.com/campusnav/campusnav/internal/campus"
)

// CampusHandler handles campus dataset and building lookup endpoints.
type CampusHandler struct {
	campuses []campus.Campus
	locator  *campus.Locator
}

// NewCampusHandler creates a new CampusHandler.
func NewCampusHandler(campuses []campus.Campus, locator *campus.Locator) *CampusHandler {
	return &CampusHandler{
		campuses: campuses,
		locator:  locator,
	}
}

// ListCampuses handles GET /v1/campuses - the campuses in the loaded dataset.
func (h *CampusHandler) ListCampuses(w http.ResponseWriter, r *http.Request) {
	resp := models.CampusListResponse{
		Campuses: make([]models.CampusSummary, 0, len(h.campuses)),
	}
	for _, c := range h.campuses {
		resp.Campuses = append(resp.Campuses, models.CampusSummary{
			ID:   c.ID,
			Name: c.Name,
			InitialRegion: models.Region{
				Latitude:       c.InitialRegion.Latitude,
				Longitude:      c.InitialRegion.Longitude,
				LatitudeDelta:  c.InitialRegion.LatitudeDelta,
				LongitudeDelta: c.InitialRegion.LongitudeDelta,
			},
			BuildingCount: len(c.Buildings),
		})
	}
	response.JSON(w, r, http.StatusOK, resp)
}

// LocateBuilding handles GET /v1/buildings/locate?lat=&lng= - point-in-building
// lookup across all loaded campuses.
func (h *CampusHandler) LocateBuilding(w http.ResponseWriter, r *http.Request) {
	lat, lng, fieldErrs := parseLatLng(r)
	if len(fieldErrs) > 0 {
		response.BadRequest(w, r, "invalid query parameters", fieldErrs)
		return
	}

	b := h.locator.FindBuilding(lat, lng)
	if b == nil {
		response.JSON(w, r, http.StatusOK, models.LocateResponse{})
		return
	}

	interior := b.InteriorPoint()
	response.JSON(w, r, http.StatusOK, models.LocateResponse{
		Building: &models.BuildingMatch{
			ID:   b.ID,
			Name: b.Name,
			Code: b.Code,
			InteriorPoint: models.Point{
				Lat: interior.Latitude,
				Lng: interior.Longitude,
			},
		},
	})
}

// parseLatLng extracts and validates the lat/lng query parameters.
func parseLatLng(r *http.Request) (lat, lng float64, errs []models.FieldError) {
	q := r.URL.Query()

	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil || lat < -90 || lat > 90 {
		errs = append(errs, models.FieldError{
			Field:   "lat",
			Message: "must be a number between -90 and 90",
		})
	}

	lng, err = strconv.ParseFloat(q.Get("lng"), 64)
	if err != nil || lng < -180 || lng > 180 {
		errs = append(errs, models.FieldError{
			Field:   "lng",
			Message: "must be a number between -180 and 180",
		})
	}

	return lat, lng, errs
}
