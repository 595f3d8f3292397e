package commonroad

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChain(t *testing.T) (*Lanelet, *Lanelet, *Lanelet) {
	t.Helper()
	a := newStraightLanelet(t, 1, 0, 10, 0)
	b := newStraightLanelet(t, 2, 10, 20, 0)
	c := newStraightLanelet(t, 3, 20, 30, 0)
	connect(a, b)
	connect(b, c)
	return a, b, c
}

func TestLaneConcatenation(t *testing.T) {
	a, b, c := newChain(t)
	lane, err := NewLane([]*Lanelet{a, b, c}, WithLaneID(7))
	require.NoError(t, err)
	assert.Equal(t, LaneID(7), lane.ID)
	assert.Equal(t, []LaneletID{1, 2, 3}, lane.ContainedLaneletIDs())

	// Shared joint vertices are kept once
	assert.Equal(t, orb.LineString{{0, 1}, {5, 1}, {10, 1}, {15, 1}, {20, 1}, {25, 1}, {30, 1}}, lane.LeftBorderVertices())
	assert.Len(t, lane.RightBorderVertices(), 7)
	assert.Len(t, lane.CenterVertices(), 7)
	assert.InDelta(t, 30.0, lane.Spanning().Length(), 1e-9)
	assert.Equal(t, LaneletID(1), lane.Spanning().ID)
	assert.Equal(t, orb.Bound{Min: orb.Point{0, -1}, Max: orb.Point{30, 1}}, lane.Bound())
	assert.Equal(t, []LaneletType{LANELET_URBAN}, lane.LaneletTypes())
	assert.InDelta(t, 2.0, lane.Width(17), 1e-9)

	assert.True(t, lane.CheckIntersection(PlaceShape(Rectangle{Length: 4, Width: 1}, 10, 0, 0), COMPLETELY_CONTAINED))
	orientation, err := lane.OrientationAtPosition(12, 0.5)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, orientation, 1e-9)
}

func TestLaneGapIsNotSkipped(t *testing.T) {
	a := newStraightLanelet(t, 1, 0, 10, 0)
	b := newStraightLanelet(t, 2, 10.5, 20, 0)
	connect(a, b)
	lane, err := NewLane([]*Lanelet{a, b})
	require.NoError(t, err)
	assert.Len(t, lane.LeftBorderVertices(), 6)
}

func TestLaneTopologyErrors(t *testing.T) {
	a, _, c := newChain(t)
	_, err := NewLane([]*Lanelet{a, c})
	assert.ErrorIs(t, err, ErrTopology)

	_, err = NewLane(nil)
	assert.ErrorIs(t, err, ErrTopology)

	// Cycle of two lanelets can't contain the same lanelet twice
	x := newStraightLanelet(t, 10, 0, 10, 10)
	y := newStraightLanelet(t, 11, 10, 20, 10)
	connect(x, y)
	connect(y, x)
	_, err = NewLane([]*Lanelet{x, y, x})
	assert.ErrorIs(t, err, ErrTopology)
}

func TestLaneSuccessorLanelets(t *testing.T) {
	a, b, c := newChain(t)
	lane, err := NewLane([]*Lanelet{a, b, c})
	require.NoError(t, err)
	assert.Equal(t, []LaneletID{2, 3}, laneletIDs(lane.SuccessorLanelets(a)))
	assert.Equal(t, []LaneletID{3}, laneletIDs(lane.SuccessorLanelets(b)))
	assert.Empty(t, lane.SuccessorLanelets(c))
	assert.Nil(t, lane.SuccessorLanelets(newStraightLanelet(t, 99, 0, 1, 0)))
}

func TestLaneIsPartOf(t *testing.T) {
	a, b, c := newChain(t)
	full, err := NewLane([]*Lanelet{a, b, c})
	require.NoError(t, err)
	head, err := NewLane([]*Lanelet{a, b})
	require.NoError(t, err)
	assert.True(t, head.IsPartOf(full))
	assert.False(t, full.IsPartOf(head))
	assert.True(t, full.ContainsLanelet(3))
	assert.False(t, head.ContainsLanelet(3))

	lanes := removeSubPartLanes([]*Lane{head, full, full})
	require.Len(t, lanes, 1)
	assert.Same(t, full, lanes[0])
}

func TestLaneCurvilinearCoordinateSystem(t *testing.T) {
	a, b, c := newChain(t)
	lane, err := NewLane([]*Lanelet{a, b, c})
	require.NoError(t, err)
	ccs, err := lane.CurvilinearCoordinateSystem()
	require.NoError(t, err)
	assert.InDelta(t, 30.0, ccs.Length(), 1e-6)

	s, d := ccs.ToCurvilinear(15, 0.5)
	assert.InDelta(t, 15.0, s, 1e-6)
	assert.InDelta(t, 0.5, d, 1e-6)

	again, err := lane.CurvilinearCoordinateSystem()
	require.NoError(t, err)
	assert.Same(t, ccs, again)
}

func TestLanePrebuiltCoordinateSystem(t *testing.T) {
	a, _, _ := newChain(t)
	ccs, err := NewCurvilinearCoordinateSystem(orb.LineString{{0, 0}, {50, 0}})
	require.NoError(t, err)
	lane, err := NewLane([]*Lanelet{a}, WithLaneCCS(ccs))
	require.NoError(t, err)
	got, err := lane.CurvilinearCoordinateSystem()
	require.NoError(t, err)
	assert.Same(t, ccs, got)
}
