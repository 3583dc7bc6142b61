package campus

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/campusnav/campusnav/pkg/geo"
)

// Locator resolves a coordinate to the campus building containing it.
//
// The dataset is injected at construction and never mutated, so lookups over
// it are pure. The locator memoizes the last queried coordinate: the mobile
// client re-derives "building the user is inside" on every location tick, and
// ticks frequently repeat the same coordinate.
type Locator struct {
	logger    zerolog.Logger
	buildings []locatedBuilding

	mu        sync.Mutex
	lastQuery geo.Coordinate
	lastMatch *Building
	primed    bool
}

// locatedBuilding pairs a building with its bounding box for cheap rejection
// before the full containment test.
type locatedBuilding struct {
	building Building
	bounds   geo.Bounds
}

// NewLocator builds a locator over the given campuses. Buildings are
// concatenated in campus order; when footprints overlap (a data-quality
// issue) the first match in dataset order wins, deterministically.
func NewLocator(campuses []Campus, logger zerolog.Logger) *Locator {
	var buildings []locatedBuilding
	for _, c := range campuses {
		for _, b := range c.Buildings {
			buildings = append(buildings, locatedBuilding{
				building: b,
				bounds:   geo.BoundsOf(b.Polygon),
			})
		}
	}

	logger.Debug().
		Int("campus_count", len(campuses)).
		Int("building_count", len(buildings)).
		Msg("building locator initialized")

	return &Locator{logger: logger, buildings: buildings}
}

// FindBuilding returns the building whose footprint contains the coordinate,
// or nil when the point is outside every known building. Results are
// memoized per coordinate; repeating the previous query skips the scan.
//
// The returned building is a copy: callers may mutate it freely without
// touching the shared dataset.
func (l *Locator) FindBuilding(latitude, longitude float64) *Building {
	query := geo.Coordinate{Latitude: latitude, Longitude: longitude}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.primed && query == l.lastQuery {
		return copyBuilding(l.lastMatch)
	}

	match := l.locate(query)
	l.lastQuery = query
	l.lastMatch = match
	l.primed = true
	return copyBuilding(match)
}

func copyBuilding(b *Building) *Building {
	if b == nil {
		return nil
	}
	c := *b
	c.Polygon = append(geo.Polygon(nil), b.Polygon...)
	if b.Properties != nil {
		c.Properties = make(map[string]any, len(b.Properties))
		for k, v := range b.Properties {
			c.Properties[k] = v
		}
	}
	return &c
}

func (l *Locator) locate(p geo.Coordinate) *Building {
	for i := range l.buildings {
		lb := &l.buildings[i]
		if p.Latitude < lb.bounds.MinLat || p.Latitude > lb.bounds.MaxLat ||
			p.Longitude < lb.bounds.MinLon || p.Longitude > lb.bounds.MaxLon {
			continue
		}
		if geo.PointInPolygon(p, lb.building.Polygon) {
			return &lb.building
		}
	}
	return nil
}
