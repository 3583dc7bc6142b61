// Package geo provides the geometric primitives for campus navigation:
// point-in-polygon containment, interior-point computation, and the
// spherical/planar distance math used for route progress tracking.
package geo

import (
	"math"
)

// Coordinate represents a geographic point in WGS-84 degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Polygon is an ordered ring of coordinates. The ring is treated as
// implicitly closed: the last vertex connects back to the first.
type Polygon []Coordinate

// Region represents a map region as a center point plus a span,
// mirroring the shape consumed by mobile map views.
type Region struct {
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	LatitudeDelta  float64 `json:"latitudeDelta"`
	LongitudeDelta float64 `json:"longitudeDelta"`
}

// Bounds is an axis-aligned geographic bounding box.
type Bounds struct {
	MinLat float64
	MinLon float64
	MaxLat float64
	MaxLon float64
}

const earthRadiusMeters = 6371000

// interiorGridSteps is the grid resolution used by InteriorPoint when the
// centroid falls outside a concave polygon.
const interiorGridSteps = 20

// PointInPolygon reports whether p lies inside the polygon using the
// ray-casting algorithm: a horizontal ray in the longitude direction toggles
// containment each time it crosses an edge. The latitude test is half-open
// and the x-intercept comparison is strict, so behavior for points exactly
// on an edge or vertex is unspecified (the standard ray-casting convention).
// Polygons with fewer than 3 vertices never contain anything.
func PointInPolygon(p Coordinate, polygon Polygon) bool {
	n := len(polygon)
	if n < 3 {
		return false
	}

	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		yi, xi := polygon[i].Latitude, polygon[i].Longitude
		yj, xj := polygon[j].Latitude, polygon[j].Longitude

		if (yi > p.Latitude) != (yj > p.Latitude) &&
			p.Longitude < (xj-xi)*(p.Latitude-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// Centroid returns the arithmetic mean of the polygon's vertices.
func Centroid(polygon Polygon) Coordinate {
	if len(polygon) == 0 {
		return Coordinate{}
	}

	var lat, lon float64
	for _, v := range polygon {
		lat += v.Latitude
		lon += v.Longitude
	}
	n := float64(len(polygon))
	return Coordinate{Latitude: lat / n, Longitude: lon / n}
}

// BoundsOf returns the axis-aligned bounding box of the polygon.
func BoundsOf(polygon Polygon) Bounds {
	if len(polygon) == 0 {
		return Bounds{}
	}

	b := Bounds{
		MinLat: polygon[0].Latitude,
		MaxLat: polygon[0].Latitude,
		MinLon: polygon[0].Longitude,
		MaxLon: polygon[0].Longitude,
	}
	for _, v := range polygon[1:] {
		b.MinLat = math.Min(b.MinLat, v.Latitude)
		b.MaxLat = math.Max(b.MaxLat, v.Latitude)
		b.MinLon = math.Min(b.MinLon, v.Longitude)
		b.MaxLon = math.Max(b.MaxLon, v.Longitude)
	}
	return b
}

// InteriorPoint returns a point inside the polygon, used as a label anchor
// and as the routing destination when only a building footprint is known.
//
// The centroid is returned directly when it passes the containment test,
// which covers convex polygons cheaply. For concave polygons where the
// centroid escapes the shape, a 20x20 grid spanning the bounding box is
// scanned in row-major order (19 interior steps per axis, skipping the box
// edges) and the first contained candidate wins. If no candidate is inside,
// which should not happen for a valid simple polygon, the centroid is
// returned as a best-effort fallback.
func InteriorPoint(polygon Polygon) Coordinate {
	centroid := Centroid(polygon)
	if PointInPolygon(centroid, polygon) {
		return centroid
	}

	b := BoundsOf(polygon)
	latSpan := b.MaxLat - b.MinLat
	lonSpan := b.MaxLon - b.MinLon

	for i := 1; i < interiorGridSteps; i++ {
		for j := 1; j < interiorGridSteps; j++ {
			candidate := Coordinate{
				Latitude:  b.MinLat + latSpan*float64(i)/interiorGridSteps,
				Longitude: b.MinLon + lonSpan*float64(j)/interiorGridSteps,
			}
			if PointInPolygon(candidate, polygon) {
				return candidate
			}
		}
	}

	return centroid
}

// Haversine returns the great-circle distance between two coordinates
// in meters.
func Haversine(a, b Coordinate) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	sinDLat := math.Sin(dLat / 2)
	sinDLon := math.Sin(dLon / 2)

	h := sinDLat*sinDLat + math.Cos(lat1)*math.Cos(lat2)*sinDLon*sinDLon
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}

// DistanceToSegment returns the distance in meters from p to the segment
// between a and b. Coordinates are projected onto a local tangent plane
// around p (equirectangular approximation), which is accurate at the scale
// of campus route segments.
func DistanceToSegment(p, a, b Coordinate) float64 {
	metersPerDegree := earthRadiusMeters * math.Pi / 180
	cosLat := math.Cos(p.Latitude * math.Pi / 180)

	ax := (a.Longitude - p.Longitude) * cosLat * metersPerDegree
	ay := (a.Latitude - p.Latitude) * metersPerDegree
	bx := (b.Longitude - p.Longitude) * cosLat * metersPerDegree
	by := (b.Latitude - p.Latitude) * metersPerDegree

	dx := bx - ax
	dy := by - ay

	lengthSq := dx*dx + dy*dy
	if lengthSq == 0 {
		return math.Hypot(ax, ay)
	}

	// Clamp the projection of p (the origin) onto the segment.
	t := -(ax*dx + ay*dy) / lengthSq
	t = math.Max(0, math.Min(1, t))

	return math.Hypot(ax+t*dx, ay+t*dy)
}

// DistanceToPolyline returns the minimum distance in meters from p to the
// polyline. A single-point polyline degenerates to a point distance.
// Returns +Inf for an empty polyline.
func DistanceToPolyline(p Coordinate, line []Coordinate) float64 {
	switch len(line) {
	case 0:
		return math.Inf(1)
	case 1:
		return Haversine(p, line[0])
	}

	min := math.Inf(1)
	for i := 1; i < len(line); i++ {
		if d := DistanceToSegment(p, line[i-1], line[i]); d < min {
			min = d
		}
	}
	return min
}
