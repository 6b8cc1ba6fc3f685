// Package geo provides fleet-map helpers: marker severity and view
// framing for a set of coordinates.
package geo

// Marker severities, in the map legend's terms.
const (
	SeverityDestructive = "destructive"
	SeverityWarning     = "warning"
	SeveritySuccess     = "success"
)

const warningFillThreshold = 75

// MarkerSeverity classifies a bin for map coloring: full bins are
// critical, nearly full bins warn, everything else is fine.
func MarkerSeverity(binPercentage float64, isFull bool) string {
	switch {
	case isFull:
		return SeverityDestructive
	case binPercentage >= warningFillThreshold:
		return SeverityWarning
	default:
		return SeveritySuccess
	}
}

// Point is a WGS84 coordinate.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Bounds is an axis-aligned bounding box over coordinates.
type Bounds struct {
	MinLat float64 `json:"minLat"`
	MaxLat float64 `json:"maxLat"`
	MinLng float64 `json:"minLng"`
	MaxLng float64 `json:"maxLng"`
}

// BoundingBox frames a set of points. Returns false for an empty set.
func BoundingBox(points []Point) (Bounds, bool) {
	if len(points) == 0 {
		return Bounds{}, false
	}

	b := Bounds{
		MinLat: points[0].Latitude,
		MaxLat: points[0].Latitude,
		MinLng: points[0].Longitude,
		MaxLng: points[0].Longitude,
	}
	for _, p := range points[1:] {
		if p.Latitude < b.MinLat {
			b.MinLat = p.Latitude
		}
		if p.Latitude > b.MaxLat {
			b.MaxLat = p.Latitude
		}
		if p.Longitude < b.MinLng {
			b.MinLng = p.Longitude
		}
		if p.Longitude > b.MaxLng {
			b.MaxLng = p.Longitude
		}
	}
	return b, true
}

// Center returns the midpoint of the bounds.
func (b Bounds) Center() Point {
	return Point{
		Latitude:  (b.MinLat + b.MaxLat) / 2,
		Longitude: (b.MinLng + b.MaxLng) / 2,
	}
}
