package commonroad

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorldObstacles(t *testing.T) {
	net := newChainNetwork(t)
	first, err := NewObstacle(2, OBSTACLE_CAR, Rectangle{Length: 4, Width: 2}, WithCurrentState(NewState(0, 5, 0, 0)))
	require.NoError(t, err)
	second, err := NewObstacle(1, OBSTACLE_CAR, Rectangle{Length: 4, Width: 2}, WithCurrentState(NewState(0, 25, 0, 0)))
	require.NoError(t, err)

	world, err := NewWorld(1, 0, 0.1, net, first, second)
	require.NoError(t, err)
	assert.Equal(t, TimeStep(0), world.TimeStep())
	assert.Equal(t, 0.1, world.DT())
	assert.Same(t, net, world.RoadNetwork())

	obstacles := world.Obstacles()
	require.Len(t, obstacles, 2)
	assert.Equal(t, ObstacleID(1), obstacles[0].ID)
	assert.Equal(t, ObstacleID(2), obstacles[1].ID)

	found, err := world.FindObstacle(2)
	require.NoError(t, err)
	assert.Same(t, first, found)
	_, err = world.FindObstacle(3)
	assert.ErrorIs(t, err, ErrObstacleNotFound)

	_, err = NewWorld(2, 0, 0.1, net, first, first)
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestWorldOccupiedLaneletsAt(t *testing.T) {
	net := newChainNetwork(t)
	obstacles := []*Obstacle{}
	for i := 0; i < 30; i++ {
		x := float64(i)
		obstacle, err := NewObstacle(ObstacleID(i+1), OBSTACLE_CAR, Rectangle{Length: 1, Width: 1},
			WithCurrentState(NewState(0, x+0.5, 0, 0)),
		)
		require.NoError(t, err)
		obstacles = append(obstacles, obstacle)
	}
	late, err := NewObstacle(100, OBSTACLE_CAR, Rectangle{Length: 1, Width: 1}, WithCurrentState(NewState(5, 5, 0, 0)))
	require.NoError(t, err)
	obstacles = append(obstacles, late)

	world, err := NewWorld(1, 0, 0.1, net, obstacles...)
	require.NoError(t, err)
	occupancy, err := world.OccupiedLaneletsAt(0)
	require.NoError(t, err)
	require.Len(t, occupancy, 30)
	assert.NotContains(t, occupancy, ObstacleID(100))

	assert.Equal(t, []LaneletID{1}, laneletIDs(occupancy[1]))
	assert.Equal(t, []LaneletID{2}, laneletIDs(occupancy[16]))
	assert.Equal(t, []LaneletID{3}, laneletIDs(occupancy[30]))
	// Touches the joint of lanelets 1 and 2
	assert.Equal(t, []LaneletID{1, 2}, laneletIDs(occupancy[10]))

	empty, err := world.OccupiedLaneletsAt(42)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
