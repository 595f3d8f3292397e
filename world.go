package commonroad

import (
	"cmp"
	"fmt"
	"runtime"
	"slices"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

type WorldID int64

// World is a scenario snapshot: road network with obstacles moving over it
type World struct {
	ID       WorldID
	timeStep TimeStep
	dt       float64
	net      *RoadNetwork

	obstacles  map[ObstacleID]*Obstacle
	numWorkers int
}

func (world *World) String() string {
	return fmt.Sprintf("World %d: time step: %d, dt: %f, obstacles: %d", world.ID, world.timeStep, world.dt, len(world.obstacles))
}

// NewWorld creates world. Identifiers of obstacles must be unique
func NewWorld(id WorldID, timeStep TimeStep, dt float64, net *RoadNetwork, obstacles ...*Obstacle) (*World, error) {
	world := &World{
		ID:         id,
		timeStep:   timeStep,
		dt:         dt,
		net:        net,
		obstacles:  make(map[ObstacleID]*Obstacle, len(obstacles)),
		numWorkers: runtime.NumCPU(),
	}
	for _, obstacle := range obstacles {
		if _, ok := world.obstacles[obstacle.ID]; ok {
			return nil, errors.Wrapf(ErrDuplicateID, "Can't create world %d: obstacle %d", id, obstacle.ID)
		}
		world.obstacles[obstacle.ID] = obstacle
	}
	return world, nil
}

func (world *World) TimeStep() TimeStep {
	return world.timeStep
}

func (world *World) DT() float64 {
	return world.dt
}

func (world *World) RoadNetwork() *RoadNetwork {
	return world.net
}

// FindObstacle returns obstacle with given identifier or ErrObstacleNotFound
func (world *World) FindObstacle(id ObstacleID) (*Obstacle, error) {
	obstacle, ok := world.obstacles[id]
	if !ok {
		return nil, errors.Wrapf(ErrObstacleNotFound, "Can't find obstacle %d in world %d", id, world.ID)
	}
	return obstacle, nil
}

// Obstacles returns obstacles sorted by identifier
func (world *World) Obstacles() []*Obstacle {
	obstacles := lo.Values(world.obstacles)
	slices.SortFunc(obstacles, func(a, b *Obstacle) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return obstacles
}

type occupancyResult struct {
	obstacleID ObstacleID
	lanelets   []*Lanelet
	err        error
}

// OccupiedLaneletsAt returns lanelets occupied by every obstacle having a state at given time step.
// Obstacles are processed concurrently, only read-only queries of the road network are used
func (world *World) OccupiedLaneletsAt(timeStep TimeStep) (map[ObstacleID][]*Lanelet, error) {
	obstacles := lo.Filter(world.Obstacles(), func(obstacle *Obstacle, _ int) bool {
		_, err := obstacle.StateByTimeStep(timeStep)
		return err == nil
	})
	pool := newWorkerPool[*Obstacle, occupancyResult](min(world.numWorkers, len(obstacles)), len(obstacles))
	pool.start(func(obstacle *Obstacle) occupancyResult {
		lanelets, err := obstacle.OccupiedLanelets(world.net, timeStep)
		return occupancyResult{obstacleID: obstacle.ID, lanelets: lanelets, err: err}
	})
	for _, obstacle := range obstacles {
		pool.addJob(obstacle)
	}
	pool.wait()

	occupancy := make(map[ObstacleID][]*Lanelet, len(obstacles))
	var firstErr error
	for result := range pool.collectResults() {
		if result.err != nil {
			if firstErr == nil {
				firstErr = errors.Wrapf(result.err, "Can't find lanelets occupied by obstacle %d", result.obstacleID)
			}
			continue
		}
		occupancy[result.obstacleID] = result.lanelets
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return occupancy, nil
}
