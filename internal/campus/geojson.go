package campus

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/campusnav/campusnav/pkg/geo"
)

// Dataset loading errors.
var (
	// ErrNotFeatureCollection indicates the document is not a GeoJSON FeatureCollection.
	ErrNotFeatureCollection = errors.New("document is not a GeoJSON FeatureCollection")
)

// featureCollection is the subset of GeoJSON this package consumes.
type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	ID         json.RawMessage `json:"id"`
	Geometry   geometry        `json:"geometry"`
	Properties map[string]any  `json:"properties"`
}

type geometry struct {
	Type string `json:"type"`
	// Coordinates holds polygon rings of [lng, lat] pairs. Only the outer
	// ring (index 0) is used; campus footprints carry no holes.
	Coordinates [][][]float64 `json:"coordinates"`
}

// ParseFeatureCollection parses a GeoJSON feature collection of building
// footprints. Features without a polygon ring are skipped. Missing optional
// properties degrade to defaults rather than failing the parse.
func ParseFeatureCollection(data []byte) ([]Building, error) {
	var fc featureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse feature collection: %w", err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, ErrNotFeatureCollection
	}

	buildings := make([]Building, 0, len(fc.Features))
	for _, f := range fc.Features {
		polygon := ringToPolygon(f.Geometry)
		if len(polygon) < 3 {
			continue
		}

		buildings = append(buildings, Building{
			ID:         featureID(f),
			Name:       stringProperty(f.Properties, "name", DefaultBuildingName),
			Code:       stringProperty(f.Properties, "code", ""),
			Polygon:    polygon,
			Properties: f.Properties,
		})
	}
	return buildings, nil
}

// ringToPolygon converts the outer ring of a GeoJSON polygon geometry.
// GeoJSON positions are [longitude, latitude] pairs.
func ringToPolygon(g geometry) geo.Polygon {
	if len(g.Coordinates) == 0 {
		return nil
	}

	ring := g.Coordinates[0]
	polygon := make(geo.Polygon, 0, len(ring))
	for _, pos := range ring {
		if len(pos) < 2 {
			continue
		}
		polygon = append(polygon, geo.Coordinate{Latitude: pos[1], Longitude: pos[0]})
	}
	return polygon
}

// featureID renders a GeoJSON feature id (string or number) as a string.
func featureID(f feature) string {
	if len(f.ID) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(f.ID, &s); err == nil {
		return s
	}

	var n json.Number
	if err := json.Unmarshal(f.ID, &n); err == nil {
		return n.String()
	}
	return ""
}

// stringProperty reads a string property with a default for absent or
// non-string values.
func stringProperty(props map[string]any, key, fallback string) string {
	if v, ok := props[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// manifest describes the campuses in a dataset directory.
type manifest struct {
	Campuses []manifestEntry `json:"campuses"`
}

type manifestEntry struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	InitialRegion geo.Region `json:"initialRegion"`
	File          string    `json:"file"`
}

// LoadDataset loads all campuses described by the campuses.json manifest in
// dir, reading each campus's GeoJSON feature collection. The campus order in
// the manifest is the locator's tie-break order.
func LoadDataset(dir string) ([]Campus, error) {
	raw, err := os.ReadFile(filepath.Join(dir, "campuses.json"))
	if err != nil {
		return nil, fmt.Errorf("read campus manifest: %w", err)
	}

	var m manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse campus manifest: %w", err)
	}

	campuses := make([]Campus, 0, len(m.Campuses))
	for _, entry := range m.Campuses {
		data, err := os.ReadFile(filepath.Join(dir, entry.File))
		if err != nil {
			return nil, fmt.Errorf("read campus %q: %w", entry.ID, err)
		}

		buildings, err := ParseFeatureCollection(data)
		if err != nil {
			return nil, fmt.Errorf("parse campus %q: %w", entry.ID, err)
		}

		campuses = append(campuses, Campus{
			ID:            entry.ID,
			Name:          entry.Name,
			InitialRegion: entry.InitialRegion,
			Buildings:     buildings,
		})
	}
	return campuses, nil
}
