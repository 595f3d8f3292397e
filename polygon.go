package commonroad

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/peterstace/simplefeatures/geom"
	"github.com/pkg/errors"
)

// ContainmentType is mode for shape against lanelet intersection check
type ContainmentType uint16

const (
	PARTIALLY_CONTAINED = ContainmentType(iota + 1)
	COMPLETELY_CONTAINED
)

func (iotaIdx ContainmentType) String() string {
	if !iotaIdx.IsValid() {
		return "undefined"
	}
	return [...]string{"partially_contained", "completely_contained"}[iotaIdx-1]
}

// IsValid checks if containment mode is one of known constants
func (iotaIdx ContainmentType) IsValid() bool {
	return iotaIdx == PARTIALLY_CONTAINED || iotaIdx == COMPLETELY_CONTAINED
}

// toSimpleFeature passes orb geometry to simplefeatures through WKB, so coordinates are kept bit for bit
func toSimpleFeature(g orb.Geometry) (geom.Geometry, error) {
	data, err := wkb.Marshal(g)
	if err != nil {
		return geom.Geometry{}, errors.Wrap(err, "Can't encode geometry to WKB")
	}
	converted, err := geom.UnmarshalWKB(data)
	if err != nil {
		return geom.Geometry{}, errors.Wrap(err, "Can't decode WKB geometry")
	}
	return converted, nil
}

// ringGeometry converts ring to polygon. Ring collapsed into single point becomes point,
// ring collapsed into a line (zero area) becomes closed line string
func ringGeometry(ring orb.Ring) (geom.Geometry, error) {
	if len(ring) == 0 {
		return geom.Geometry{}, errors.Wrap(ErrEmptyPolyline, "Can't convert ring")
	}
	if isPointRing(ring) {
		return toSimpleFeature(ring[0])
	}
	closed := closeRing(ring)
	polygon, err := toSimpleFeature(orb.Polygon{closed})
	if err == nil {
		return polygon, nil
	}
	line, errLine := toSimpleFeature(orb.LineString(closed))
	if errLine != nil {
		return geom.Geometry{}, errors.Wrapf(err, "Can't convert ring of %d vertices", len(ring))
	}
	return line, nil
}

// RingsIntersect checks if two closed rings share at least one point (boundary included)
func RingsIntersect(a, b orb.Ring) bool {
	ga, err := ringGeometry(a)
	if err != nil {
		return false
	}
	gb, err := ringGeometry(b)
	if err != nil {
		return false
	}
	return geom.Intersects(ga, gb)
}

// RingWithin checks if inner ring lies entirely within outer ring (touching boundary is allowed)
func RingWithin(inner, outer orb.Ring) bool {
	gi, err := ringGeometry(inner)
	if err != nil {
		return false
	}
	gOuter, err := ringGeometry(outer)
	if err != nil {
		return false
	}
	return geometryCoveredBy(gi, gOuter)
}

func geometryCoveredBy(inner, outer geom.Geometry) bool {
	covered, err := geom.CoveredBy(inner, outer)
	if err != nil {
		return false
	}
	return covered
}

// isPointRing checks if every vertex of ring is the same point
func isPointRing(ring orb.Ring) bool {
	for _, pt := range ring[1:] {
		if !pt.Equal(ring[0]) {
			return false
		}
	}
	return true
}

// closeRing returns closed copy of given vertices
func closeRing(pts []orb.Point) orb.Ring {
	ring := make(orb.Ring, len(pts), len(pts)+1)
	copy(ring, pts)
	if len(ring) > 0 && !ring[0].Equal(ring[len(ring)-1]) {
		ring = append(ring, ring[0])
	}
	return ring
}

// correctRing closes ring and makes its orientation counter-clockwise
func correctRing(ring orb.Ring) orb.Ring {
	corrected := closeRing(ring)
	if len(corrected) > 3 && corrected.Orientation() == orb.CW {
		corrected.Reverse()
	}
	return corrected
}

// pointRing returns degenerated ring for a single point
func pointRing(pt orb.Point) orb.Ring {
	return orb.Ring{pt, pt, pt, pt}
}
