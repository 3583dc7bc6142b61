package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusnav/campusnav/internal/api/models"
	"github.com/campusnav/campusnav/internal/campus"
	"github.com/campusnav/campusnav/internal/directions"
	"github.com/campusnav/campusnav/pkg/geo"
)

// stubProvider returns a fixed route for every request.
type stubProvider struct {
	result *directions.RouteResult
	err    error
}

func (s *stubProvider) FetchRoute(_ context.Context, _, _ geo.Coordinate, _ directions.TransportMode) (*directions.RouteResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubProvider) Name() string         { return "stub" }
func (s *stubProvider) CircuitState() string { return "closed" }

func testCampuses() []campus.Campus {
	return []campus.Campus{
		{
			ID:   "main",
			Name: "Main Campus",
			InitialRegion: geo.Region{
				Latitude:       52.005,
				Longitude:      4.005,
				LatitudeDelta:  0.02,
				LongitudeDelta: 0.02,
			},
			Buildings: []campus.Building{
				{
					ID:   "lib",
					Name: "Library",
					Code: "LIB",
					Polygon: geo.Polygon{
						{Latitude: 52.000, Longitude: 4.000},
						{Latitude: 52.000, Longitude: 4.002},
						{Latitude: 52.002, Longitude: 4.002},
						{Latitude: 52.002, Longitude: 4.000},
					},
				},
			},
		},
	}
}

func testRouter(provider *stubProvider) http.Handler {
	campuses := testCampuses()
	cfg := RouterConfig{
		Version:  "test",
		Logger:   zerolog.Nop(),
		Campuses: campuses,
		Locator:  campus.NewLocator(campuses, zerolog.Nop()),
	}
	if provider != nil {
		cfg.Provider = provider
		cfg.ProviderInfo = provider
	}
	return NewRouter(cfg)
}

func TestRouterHealth(t *testing.T) {
	router := testRouter(nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/ops/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	var health models.Health
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, models.HealthStatusOK, health.Status)
	assert.Equal(t, "test", health.Details["version"])
}

func TestRouterStatusReportsProvider(t *testing.T) {
	router := testRouter(&stubProvider{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/ops/status", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var status models.SystemStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	require.Len(t, status.Providers, 1)
	assert.Equal(t, "stub", status.Providers[0].Provider)
	assert.Equal(t, "closed", status.Providers[0].CircuitState)
}

func TestRouterListCampuses(t *testing.T) {
	router := testRouter(nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/campuses", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp models.CampusListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Campuses, 1)
	assert.Equal(t, "main", resp.Campuses[0].ID)
	assert.Equal(t, 1, resp.Campuses[0].BuildingCount)
	assert.InDelta(t, 52.005, resp.Campuses[0].InitialRegion.Latitude, 1e-9)
}

func TestRouterLocateBuilding(t *testing.T) {
	router := testRouter(nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/buildings/locate?lat=52.001&lng=4.001", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp models.LocateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Building)
	assert.Equal(t, "lib", resp.Building.ID)
	assert.Equal(t, "LIB", resp.Building.Code)
}

func TestRouterLocateBuildingMiss(t *testing.T) {
	router := testRouter(nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/buildings/locate?lat=51.0&lng=3.0", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp models.LocateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Nil(t, resp.Building)
}

func TestRouterLocateBuildingBadParams(t *testing.T) {
	router := testRouter(nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/buildings/locate?lat=abc&lng=4.001", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	var problem models.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, models.ProblemTypeValidation, problem.Type)
	require.Len(t, problem.Errors, 1)
	assert.Equal(t, "lat", problem.Errors[0].Field)
}

func TestRouterComputeRoute(t *testing.T) {
	distance := 150.0
	duration := 120.0
	provider := &stubProvider{
		result: &directions.RouteResult{
			Distance: &distance,
			Duration: &duration,
			Legs: []directions.RouteLeg{{
				Steps: []directions.ProviderStep{{
					HTMLInstructions: "Head north",
					Distance:         directions.TextValue{Text: "150 m"},
					Duration:         directions.TextValue{Text: "2 mins"},
					StartLocation:    directions.LatLng{Lat: 52.000, Lng: 4.000},
					EndLocation:      directions.LatLng{Lat: 52.001, Lng: 4.000},
				}},
			}},
			Coordinates: []geo.Coordinate{
				{Latitude: 52.000, Longitude: 4.000},
				{Latitude: 52.001, Longitude: 4.000},
			},
		},
	}
	router := testRouter(provider)

	body, _ := json.Marshal(models.ComputeRouteRequest{
		Origin:      models.Point{Lat: 52.000, Lng: 4.000},
		Destination: models.Point{Lat: 52.001, Lng: 4.000},
		Mode:        "walking",
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/routes:compute", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp models.RouteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.InDelta(t, 150.0, resp.DistanceMeters, 1e-9)
	assert.InDelta(t, 120.0, resp.DurationSeconds, 1e-9)
	require.Len(t, resp.Steps, 1)
	assert.Equal(t, "Head north", resp.Steps[0].Instruction)
	assert.Len(t, resp.Coordinates, 2)
}

func TestRouterComputeRouteProviderErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"no route", directions.ErrNoRouteFound, http.StatusNotFound},
		{"invalid coordinates", directions.ErrInvalidCoordinates, http.StatusBadRequest},
		{"unavailable", directions.ErrProviderUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := testRouter(&stubProvider{err: tt.err})

			body, _ := json.Marshal(models.ComputeRouteRequest{
				Origin:      models.Point{Lat: 52.000, Lng: 4.000},
				Destination: models.Point{Lat: 52.001, Lng: 4.000},
			})

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/v1/routes:compute", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRouterComputeRouteRejectsNonJSON(t *testing.T) {
	router := testRouter(&stubProvider{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/routes:compute", bytes.NewReader([]byte("lat=52")))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	var problem models.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, models.ProblemTypeValidation, problem.Type)
}

func TestRouterComputeRouteBadMode(t *testing.T) {
	router := testRouter(&stubProvider{})

	body, _ := json.Marshal(models.ComputeRouteRequest{
		Origin:      models.Point{Lat: 52.000, Lng: 4.000},
		Destination: models.Point{Lat: 52.001, Lng: 4.000},
		Mode:        "teleport",
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/routes:compute", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var problem models.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	require.Len(t, problem.Errors, 1)
	assert.Equal(t, "mode", problem.Errors[0].Field)
}
