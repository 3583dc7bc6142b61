// Package campus holds the static campus datasets and the building locator.
package campus

import (
	"github.com/campusnav/campusnav/pkg/geo"
)

// DefaultBuildingName is used when a building feature carries no name.
const DefaultBuildingName = "Unnamed building"

// Building is a single campus building footprint.
// Buildings are immutable for the lifetime of the app session.
type Building struct {
	// ID is the feature identifier from the source dataset.
	ID string `json:"id"`

	// Name is the display name. Defaults to DefaultBuildingName when the
	// source feature has none.
	Name string `json:"name"`

	// Code is the short building code (e.g. "LIB"). Empty when absent.
	Code string `json:"code"`

	// Polygon is the building footprint ring.
	Polygon geo.Polygon `json:"polygon"`

	// Properties carries the remaining source feature properties verbatim.
	Properties map[string]any `json:"properties,omitempty"`
}

// InteriorPoint returns a routing destination inside the building footprint,
// used when no door coordinate is known.
func (b *Building) InteriorPoint() geo.Coordinate {
	return geo.InteriorPoint(b.Polygon)
}

// Campus is one campus dataset: its map framing region and its buildings.
type Campus struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	InitialRegion geo.Region `json:"initialRegion"`
	Buildings     []Building `json:"buildings,omitempty"`
}
