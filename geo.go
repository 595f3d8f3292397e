package commonroad

import (
	"math"

	"github.com/paulmach/orb"
)

const (
	earthR = 20037508.34
)

// epsg4326To3857 projects WGS84 longitude/latitude onto Web Mercator meters
func epsg4326To3857(lon, lat float64) (float64, float64) {
	x := lon * earthR / 180
	y := math.Log(math.Tan((90+lat)*math.Pi/360)) / (math.Pi / 180)
	y = y * earthR / 180
	return x, y
}

// pointToEuclidean projects WGS84 point (lon, lat) onto Web Mercator
func pointToEuclidean(pt orb.Point) orb.Point {
	euclideanX, euclideanY := epsg4326To3857(pt.Lon(), pt.Lat())
	return orb.Point{euclideanX, euclideanY}
}

// pointToLocal projects WGS84 point onto plane with origin at given WGS84 point.
// Web Mercator scale factor at origin latitude is removed, so result is close to meters around origin
func pointToLocal(pt orb.Point, origin orb.Point) orb.Point {
	p := pointToEuclidean(pt)
	o := pointToEuclidean(origin)
	scale := math.Cos(origin.Lat() * math.Pi / 180)
	return orb.Point{(p.X() - o.X()) * scale, (p.Y() - o.Y()) * scale}
}

// angleBetweenLines returs angle between two lines
//
// Note: panics if number of points in any line is less than 2
func angleBetweenLines(l1 orb.LineString, l2 orb.LineString) float64 {
	angle1 := math.Atan2(l1[len(l1)-1].Y()-l1[0].Y(), l1[len(l1)-1].X()-l1[0].X())
	angle2 := math.Atan2(l2[len(l2)-1].Y()-l2[0].Y(), l2[len(l2)-1].X()-l2[0].X())
	return AngleDifference(angle2, angle1)
}
