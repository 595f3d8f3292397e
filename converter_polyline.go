package commonroad

import (
	"github.com/paulmach/orb"
	"github.com/twpayne/go-polyline"
)

// PreparePolyline returns encoded polyline representation of LineString.
// Coordinates are encoded in (y, x) order as encoded polylines expect (lat, lon)
func PreparePolyline(line orb.LineString) string {
	coords := make([][]float64, len(line))
	for i, pt := range line {
		coords[i] = []float64{pt.Y(), pt.X()}
	}
	return string(polyline.EncodeCoords(coords))
}

// decodePolyline is inverse of PreparePolyline
func decodePolyline(encoded string) (orb.LineString, error) {
	coords, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, err
	}
	line := make(orb.LineString, len(coords))
	for i, coord := range coords {
		line[i] = orb.Point{coord[1], coord[0]}
	}
	return line, nil
}
