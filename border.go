package commonroad

import (
	"github.com/paulmach/orb"
)

// Border is one side of a lanelet: vertices with per-segment distances and curvature at each vertex
type Border struct {
	vertices  orb.LineString
	distances []float64
	curvature []float64
}

func newBorder(vertices orb.LineString) Border {
	vs := copyLine(vertices)
	return Border{
		vertices:  vs,
		distances: PathDistances(vs),
		curvature: Curvature(vs),
	}
}

func (border Border) Vertices() orb.LineString {
	return border.vertices
}

func (border Border) Distances() []float64 {
	return border.distances
}

func (border Border) Curvature() []float64 {
	return border.curvature
}
