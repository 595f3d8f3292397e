package commonroad

import (
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

type GeometryFormat uint16

const (
	GEOMETRY_FORMAT_WKT = GeometryFormat(iota + 1)
	GEOMETRY_FORMAT_GEOJSON
	GEOMETRY_FORMAT_POLYLINE
)

func (iotaIdx GeometryFormat) String() string {
	return [...]string{"wkt", "geojson", "polyline"}[iotaIdx-1]
}

var (
	geometryFormats = map[string]GeometryFormat{
		"wkt":      GEOMETRY_FORMAT_WKT,
		"geojson":  GEOMETRY_FORMAT_GEOJSON,
		"polyline": GEOMETRY_FORMAT_POLYLINE,
	}
)

// ParseGeometryFormat returns geometry format by its name
func ParseGeometryFormat(str string) (GeometryFormat, error) {
	if found, ok := geometryFormats[str]; ok {
		return found, nil
	}
	return 0, errors.Errorf("unknown geometry format '%s'. Expected one of: wkt, geojson, polyline", str)
}

// PrepareLinestring returns text representation of line in given format
func PrepareLinestring(line orb.LineString, format GeometryFormat) string {
	switch format {
	case GEOMETRY_FORMAT_GEOJSON:
		return PrepareGeoJSONLinestring(line)
	case GEOMETRY_FORMAT_POLYLINE:
		return PreparePolyline(line)
	default:
		return PrepareWKTLinestring(line)
	}
}

// PreparePolygon returns text representation of closed ring in given format.
// Encoded polyline keeps the ring as a closed line
func PreparePolygon(ring orb.Ring, format GeometryFormat) string {
	switch format {
	case GEOMETRY_FORMAT_GEOJSON:
		return PrepareGeoJSONPolygon(ring)
	case GEOMETRY_FORMAT_POLYLINE:
		return PreparePolyline(orb.LineString(ring))
	default:
		return PrepareWKTPolygon(ring)
	}
}

// PreparePoint returns text representation of point in given format.
// Encoded polyline holds the point as a single vertex line
func PreparePoint(pt orb.Point, format GeometryFormat) string {
	switch format {
	case GEOMETRY_FORMAT_GEOJSON:
		return PrepareGeoJSONPoint(pt)
	case GEOMETRY_FORMAT_POLYLINE:
		return PreparePolyline(orb.LineString{pt})
	default:
		return PrepareWKTPoint(pt)
	}
}
