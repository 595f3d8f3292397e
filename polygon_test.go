package commonroad

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func square(x0, y0, size float64) orb.Ring {
	return orb.Ring{{x0, y0}, {x0 + size, y0}, {x0 + size, y0 + size}, {x0, y0 + size}, {x0, y0}}
}

func TestRingsIntersect(t *testing.T) {
	tests := []struct {
		name   string
		a      orb.Ring
		b      orb.Ring
		result bool
	}{
		{name: "overlapping squares", a: square(0, 0, 2), b: square(1, 1, 2), result: true},
		{name: "shared edge", a: square(0, 0, 2), b: square(2, 0, 2), result: true},
		{name: "shared corner", a: square(0, 0, 2), b: square(2, 2, 2), result: true},
		{name: "nested squares", a: square(0, 0, 4), b: square(1, 1, 1), result: true},
		{name: "disjoint squares", a: square(0, 0, 2), b: square(3, 3, 2), result: false},
		{name: "point on boundary", a: square(0, 0, 2), b: pointRing(orb.Point{2, 1}), result: true},
		{name: "point outside", a: square(0, 0, 2), b: pointRing(orb.Point{2.5, 1}), result: false},
		{name: "collapsed ring inside", a: square(0, 0, 2), b: orb.Ring{{0.5, 0.5}, {2.5, 0.5}, {0.5, 0.5}}, result: true},
		{name: "empty ring", a: square(0, 0, 2), b: orb.Ring{}, result: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.result, RingsIntersect(tt.a, tt.b))
			assert.Equal(t, tt.result, RingsIntersect(tt.b, tt.a))
		})
	}
}

func TestRingWithin(t *testing.T) {
	tests := []struct {
		name   string
		inner  orb.Ring
		outer  orb.Ring
		result bool
	}{
		{name: "strictly inside", inner: square(1, 1, 1), outer: square(0, 0, 4), result: true},
		{name: "touches boundary from inside", inner: square(0, 1, 1), outer: square(0, 0, 4), result: true},
		{name: "same square", inner: square(0, 0, 4), outer: square(0, 0, 4), result: true},
		{name: "sticks out", inner: square(3, 3, 2), outer: square(0, 0, 4), result: false},
		{name: "disjoint", inner: square(5, 5, 1), outer: square(0, 0, 4), result: false},
		{name: "point on boundary", inner: pointRing(orb.Point{4, 2}), outer: square(0, 0, 4), result: true},
		{name: "empty inner", inner: orb.Ring{}, outer: square(0, 0, 4), result: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.result, RingWithin(tt.inner, tt.outer))
		})
	}
}

func TestCorrectRing(t *testing.T) {
	clockwise := orb.Ring{{0, 0}, {0, 1}, {1, 1}, {1, 0}}
	corrected := correctRing(clockwise)
	assert.Len(t, corrected, 5)
	assert.Equal(t, orb.CCW, corrected.Orientation())
	assert.Equal(t, corrected[0], corrected[len(corrected)-1])
	assert.True(t, isPointRing(pointRing(orb.Point{1, 2})))
	assert.False(t, isPointRing(clockwise))
}
