package commonroad

import (
	"fmt"
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

const (
	defaultResamplingStep           = 2.0
	defaultProjectionDomainWidth    = 20.0
	defaultTolerance                = 0.1
	defaultPolygonSimplifyTolerance = 0.01
)

// CurvilinearCoordinateSystem maps Cartesian points onto (longitudinal, lateral) coordinates
// relative to a resampled reference path and back.
//
// Longitudinal coordinate is clamped to [0, Length()] in both directions of conversion
type CurvilinearCoordinateSystem struct {
	referencePath orb.LineString
	pathLength    []float64

	resamplingStep        float64
	projectionDomainWidth float64
	tolerance             float64
}

func (ccs *CurvilinearCoordinateSystem) String() string {
	return fmt.Sprintf(`
Curvilinear coordinate system:
	vertices: %d
	length: %f
	resampling_step: %f
	projection_domain_width: %f
	tolerance: %f
	`,
		len(ccs.referencePath),
		ccs.Length(),
		ccs.resamplingStep,
		ccs.projectionDomainWidth,
		ccs.tolerance,
	)
}

// NewCurvilinearCoordinateSystem builds coordinate system over given reference path.
// Returns ErrDegeneratePath if path has less than two distinct points
func NewCurvilinearCoordinateSystem(referencePath orb.LineString, options ...func(*CurvilinearCoordinateSystem)) (*CurvilinearCoordinateSystem, error) {
	ccs := &CurvilinearCoordinateSystem{
		resamplingStep:        defaultResamplingStep,
		projectionDomainWidth: defaultProjectionDomainWidth,
		tolerance:             defaultTolerance,
	}
	for _, option := range options {
		option(ccs)
	}
	distinct := dedupeConsecutive(referencePath, ccs.tolerance)
	if len(distinct) < 2 {
		return nil, errors.Wrapf(ErrDegeneratePath, "Can't build curvilinear coordinate system from %d distinct points (%d given)", len(distinct), len(referencePath))
	}
	lengths := PathLength(distinct)
	if lengths[len(lengths)-1] <= 0 {
		return nil, errors.Wrap(ErrDegeneratePath, "Can't build curvilinear coordinate system from zero-length path")
	}
	ccs.referencePath = Resample(distinct, ccs.resamplingStep)
	ccs.pathLength = PathLength(ccs.referencePath)
	return ccs, nil
}

func WithResamplingStep(step float64) func(*CurvilinearCoordinateSystem) {
	return func(ccs *CurvilinearCoordinateSystem) {
		ccs.resamplingStep = step
	}
}

func WithProjectionDomainWidth(width float64) func(*CurvilinearCoordinateSystem) {
	return func(ccs *CurvilinearCoordinateSystem) {
		ccs.projectionDomainWidth = width
	}
}

func WithTolerance(tolerance float64) func(*CurvilinearCoordinateSystem) {
	return func(ccs *CurvilinearCoordinateSystem) {
		ccs.tolerance = tolerance
	}
}

// ReferencePath returns copy of the resampled reference path
func (ccs *CurvilinearCoordinateSystem) ReferencePath() orb.LineString {
	return copyLine(ccs.referencePath)
}

// Length returns length of the reference path
func (ccs *CurvilinearCoordinateSystem) Length() float64 {
	return ccs.pathLength[len(ccs.pathLength)-1]
}

func (ccs *CurvilinearCoordinateSystem) ProjectionDomainWidth() float64 {
	return ccs.projectionDomainWidth
}

// projection is result of projecting a point onto the reference path
type projection struct {
	segment int // index of segment end vertex
	t       float64
	rawT    float64
	s       float64
	d       float64
}

func (ccs *CurvilinearCoordinateSystem) project(pt orb.Point) projection {
	best := projection{segment: -1}
	bestDist := math.Inf(1)
	for i := 1; i < len(ccs.referencePath); i++ {
		a, b := ccs.referencePath[i-1], ccs.referencePath[i]
		segmentLength := ccs.pathLength[i] - ccs.pathLength[i-1]
		abx, aby := b.X()-a.X(), b.Y()-a.Y()
		rawT := ((pt.X()-a.X())*abx + (pt.Y()-a.Y())*aby) / (segmentLength * segmentLength)
		t := lo.Clamp(rawT, 0, 1)
		closest := orb.Point{a.X() + t*abx, a.Y() + t*aby}
		dist := planar.DistanceSquared(closest, pt)
		if dist >= bestDist {
			continue
		}
		bestDist = dist
		lateral := cross(a, b, pt) / segmentLength
		if t != rawT {
			lateral = math.Copysign(math.Sqrt(dist), lateral)
		}
		best = projection{
			segment: i,
			t:       t,
			rawT:    rawT,
			s:       ccs.pathLength[i-1] + t*segmentLength,
			d:       lateral,
		}
	}
	return best
}

// ToCurvilinear returns longitudinal and lateral (positive to the left) coordinates of given Cartesian point.
// Closest segment of reference path wins, the earliest one on ties
func (ccs *CurvilinearCoordinateSystem) ToCurvilinear(x, y float64) (float64, float64) {
	proj := ccs.project(orb.Point{x, y})
	return proj.s, proj.d
}

// segmentAt returns index of end vertex of the segment which contains given longitudinal position
func (ccs *CurvilinearCoordinateSystem) segmentAt(s float64) int {
	idx := sort.SearchFloat64s(ccs.pathLength, s)
	if idx < 1 {
		return 1
	}
	if idx > len(ccs.pathLength)-1 {
		return len(ccs.pathLength) - 1
	}
	return idx
}

// ToCartesian returns Cartesian point for given curvilinear coordinates
func (ccs *CurvilinearCoordinateSystem) ToCartesian(s, d float64) (float64, float64) {
	s = lo.Clamp(s, 0, ccs.Length())
	idx := ccs.segmentAt(s)
	a, b := ccs.referencePath[idx-1], ccs.referencePath[idx]
	segmentLength := ccs.pathLength[idx] - ccs.pathLength[idx-1]
	base := pointOnSegmentByFraction(a, b, (s-ccs.pathLength[idx-1])/segmentLength)
	normalX := -(b.Y() - a.Y()) / segmentLength
	normalY := (b.X() - a.X()) / segmentLength
	return base.X() + d*normalX, base.Y() + d*normalY
}

// TangentAt returns orientation of reference path at given longitudinal position
func (ccs *CurvilinearCoordinateSystem) TangentAt(s float64) float64 {
	idx := ccs.segmentAt(lo.Clamp(s, 0, ccs.Length()))
	a, b := ccs.referencePath[idx-1], ccs.referencePath[idx]
	return math.Atan2(b.Y()-a.Y(), b.X()-a.X())
}

// InProjectionDomain checks if given point projects orthogonally onto the reference path
// and lies within half of the projection domain width from it
func (ccs *CurvilinearCoordinateSystem) InProjectionDomain(x, y float64) bool {
	proj := ccs.project(orb.Point{x, y})
	if proj.segment == 1 && proj.rawT < 0 {
		return false
	}
	if proj.segment == len(ccs.referencePath)-1 && proj.rawT > 1 {
		return false
	}
	return math.Abs(proj.d) <= ccs.projectionDomainWidth/2
}

// ConvertPolygon maps every vertex of given ring into curvilinear coordinates (X - longitudinal, Y - lateral)
func (ccs *CurvilinearCoordinateSystem) ConvertPolygon(ring orb.Ring) []orb.Point {
	return lo.Map(ring, func(pt orb.Point, _ int) orb.Point {
		s, d := ccs.ToCurvilinear(pt.X(), pt.Y())
		return orb.Point{s, d}
	})
}
