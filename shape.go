package commonroad

import (
	"math"

	"github.com/paulmach/orb"
)

// circleSegments is number of polygon vertices approximating a circle
const circleSegments = 16

// Shape is geometric template of an obstacle in its local frame.
// Implemented by Rectangle and Circle only
type Shape interface {
	isShape()
}

// Rectangle is centered at the obstacle reference point. Length is along the heading
type Rectangle struct {
	Length float64
	Width  float64
}

func (Rectangle) isShape() {}

// Circle has its center shifted from the obstacle reference point in local frame
type Circle struct {
	Radius float64
	Center orb.Point
}

func (Circle) isShape() {}

// shapeVertices returns polygon vertices of given shape in local frame, counter-clockwise
func shapeVertices(shape Shape) []orb.Point {
	switch s := shape.(type) {
	case Rectangle:
		halfLength, halfWidth := s.Length/2, s.Width/2
		return []orb.Point{
			{-halfLength, -halfWidth},
			{halfLength, -halfWidth},
			{halfLength, halfWidth},
			{-halfLength, halfWidth},
		}
	case *Rectangle:
		return shapeVertices(*s)
	case Circle:
		pts := make([]orb.Point, circleSegments)
		for i := range pts {
			angle := 2 * math.Pi * float64(i) / circleSegments
			pts[i] = orb.Point{
				s.Center.X() + s.Radius*math.Cos(angle),
				s.Center.Y() + s.Radius*math.Sin(angle),
			}
		}
		return pts
	case *Circle:
		return shapeVertices(*s)
	default:
		return nil
	}
}

// shapeLongitudinalExtent returns distances from reference point to the front and to the rear of shape along heading
func shapeLongitudinalExtent(shape Shape) (float64, float64) {
	switch s := shape.(type) {
	case Rectangle:
		return s.Length / 2, s.Length / 2
	case *Rectangle:
		return shapeLongitudinalExtent(*s)
	case Circle:
		return s.Center.X() + s.Radius, s.Radius - s.Center.X()
	case *Circle:
		return shapeLongitudinalExtent(*s)
	default:
		return 0, 0
	}
}

// PlaceShape rotates shape by orientation and translates it to given position. Returns closed ring
func PlaceShape(shape Shape, x, y, orientation float64) orb.Ring {
	vertices := shapeVertices(shape)
	if len(vertices) == 0 {
		return orb.Ring{}
	}
	placed := RotateAndTranslate(vertices, orb.Point{x, y}, orientation)
	return closeRing(placed)
}
