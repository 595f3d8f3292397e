package commonroad

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

type ObstacleID int64

// drivingDirectionTolerance is max absolute difference between obstacle heading and lanelet orientation
// for the lanelet to be driven along
const drivingDirectionTolerance = math.Pi / 4

// Obstacle is a traffic participant with time-indexed states.
//
// States are split into recorded history, current state and predicted trajectory.
// Occupied lanelets, occupied lanes and reference lanes are cached per time step
type Obstacle struct {
	ID           ObstacleID
	obstacleType ObstacleType
	static       bool
	shape        Shape

	history      map[TimeStep]*State
	currentState *State
	prediction   map[TimeStep]*State
	timeSteps    []TimeStep

	vMax float64
	aMax float64

	initialHistory    []*State
	initialTrajectory []*State

	mu                         sync.Mutex
	fixedReferenceLane         *Lane
	occupiedLanelets           map[TimeStep][]*Lanelet
	occupiedLaneletsDrivingDir map[TimeStep][]*Lanelet
	occupiedLanes              map[TimeStep][]*Lane
	referenceLanes             map[TimeStep]*Lane
	convertedWith              map[TimeStep]LaneID
}

func (obstacle *Obstacle) String() string {
	return fmt.Sprintf("Obstacle %d: type: %s, static: %t, states: %d", obstacle.ID, obstacle.obstacleType, obstacle.static, len(obstacle.timeSteps))
}

// NewObstacle creates obstacle of given shape. States from WithCurrentState and WithTrajectory must have
// unique and increasing time steps. States from WithTrajectoryHistory must precede them
func NewObstacle(id ObstacleID, obstacleType ObstacleType, shape Shape, options ...func(*Obstacle)) (*Obstacle, error) {
	obstacle := &Obstacle{
		ID:                         id,
		obstacleType:               obstacleType,
		shape:                      shape,
		history:                    make(map[TimeStep]*State),
		prediction:                 make(map[TimeStep]*State),
		vMax:                       math.Inf(1),
		aMax:                       math.Inf(1),
		occupiedLanelets:           make(map[TimeStep][]*Lanelet),
		occupiedLaneletsDrivingDir: make(map[TimeStep][]*Lanelet),
		occupiedLanes:              make(map[TimeStep][]*Lane),
		referenceLanes:             make(map[TimeStep]*Lane),
		convertedWith:              make(map[TimeStep]LaneID),
	}
	for _, option := range options {
		option(obstacle)
	}
	if obstacle.currentState != nil {
		obstacle.timeSteps = append(obstacle.timeSteps, obstacle.currentState.TimeStep)
	}
	for _, state := range obstacle.initialTrajectory {
		err := obstacle.AppendStateToTrajectory(state)
		if err != nil {
			return nil, errors.Wrapf(err, "Can't create obstacle %d", id)
		}
	}
	for _, state := range obstacle.initialHistory {
		err := obstacle.AppendStateToHistory(state)
		if err != nil {
			return nil, errors.Wrapf(err, "Can't create obstacle %d", id)
		}
	}
	obstacle.initialTrajectory = nil
	obstacle.initialHistory = nil
	return obstacle, nil
}

func WithCurrentState(state *State) func(*Obstacle) {
	return func(obstacle *Obstacle) {
		obstacle.currentState = state
	}
}

// WithTrajectory sets predicted states. They are appended one by one after the current state
func WithTrajectory(states []*State) func(*Obstacle) {
	return func(obstacle *Obstacle) {
		obstacle.initialTrajectory = append(obstacle.initialTrajectory, states...)
	}
}

// WithTrajectoryHistory sets recorded states preceding the current state
func WithTrajectoryHistory(states []*State) func(*Obstacle) {
	return func(obstacle *Obstacle) {
		obstacle.initialHistory = append(obstacle.initialHistory, states...)
	}
}

func WithKinematics(vMax, aMax float64) func(*Obstacle) {
	return func(obstacle *Obstacle) {
		obstacle.vMax = vMax
		obstacle.aMax = aMax
	}
}

func WithStatic() func(*Obstacle) {
	return func(obstacle *Obstacle) {
		obstacle.static = true
	}
}

func (obstacle *Obstacle) ObstacleType() ObstacleType {
	return obstacle.obstacleType
}

func (obstacle *Obstacle) IsStatic() bool {
	return obstacle.static
}

func (obstacle *Obstacle) Shape() Shape {
	return obstacle.shape
}

func (obstacle *Obstacle) VMax() float64 {
	return obstacle.vMax
}

func (obstacle *Obstacle) AMax() float64 {
	return obstacle.aMax
}

// CurrentState returns initial state or nil
func (obstacle *Obstacle) CurrentState() *State {
	return obstacle.currentState
}

// TimeSteps returns time steps of all known states (history, current and prediction) in increasing order
func (obstacle *Obstacle) TimeSteps() []TimeStep {
	return slices.Clone(obstacle.timeSteps)
}

// HistoryTimeSteps returns time steps of recorded states in increasing order
func (obstacle *Obstacle) HistoryTimeSteps() []TimeStep {
	return sortedTimeSteps(obstacle.history)
}

// TrajectoryHistory returns recorded states in increasing order of time steps
func (obstacle *Obstacle) TrajectoryHistory() []*State {
	return statesOf(obstacle.history)
}

// TrajectoryPrediction returns predicted states in increasing order of time steps
func (obstacle *Obstacle) TrajectoryPrediction() []*State {
	return statesOf(obstacle.prediction)
}

func sortedTimeSteps(states map[TimeStep]*State) []TimeStep {
	timeSteps := lo.Keys(states)
	slices.Sort(timeSteps)
	return timeSteps
}

func statesOf(states map[TimeStep]*State) []*State {
	return lo.Map(sortedTimeSteps(states), func(timeStep TimeStep, _ int) *State { return states[timeStep] })
}

// indexTimeSteps rebuilds sorted time steps of all known states
func (obstacle *Obstacle) indexTimeSteps() {
	timeSteps := make([]TimeStep, 0, len(obstacle.history)+len(obstacle.prediction)+1)
	timeSteps = append(timeSteps, lo.Keys(obstacle.history)...)
	if obstacle.currentState != nil {
		timeSteps = append(timeSteps, obstacle.currentState.TimeStep)
	}
	timeSteps = append(timeSteps, lo.Keys(obstacle.prediction)...)
	slices.Sort(timeSteps)
	obstacle.timeSteps = timeSteps
}

// AppendStateToTrajectory adds predicted state after the last known one
func (obstacle *Obstacle) AppendStateToTrajectory(state *State) error {
	if _, err := obstacle.StateByTimeStep(state.TimeStep); err == nil {
		return errors.Wrapf(ErrDuplicateTimeStep, "Can't append state of obstacle %d at time step %d", obstacle.ID, state.TimeStep)
	}
	if len(obstacle.timeSteps) > 0 && state.TimeStep < obstacle.timeSteps[len(obstacle.timeSteps)-1] {
		return errors.Wrapf(ErrTimeOrder, "Can't append state of obstacle %d at time step %d after time step %d", obstacle.ID, state.TimeStep, obstacle.timeSteps[len(obstacle.timeSteps)-1])
	}
	obstacle.prediction[state.TimeStep] = state
	obstacle.timeSteps = append(obstacle.timeSteps, state.TimeStep)
	return nil
}

// AppendStateToHistory adds recorded state. It must precede the current state and every predicted one
func (obstacle *Obstacle) AppendStateToHistory(state *State) error {
	if _, err := obstacle.StateByTimeStep(state.TimeStep); err == nil {
		return errors.Wrapf(ErrDuplicateTimeStep, "Can't record state of obstacle %d at time step %d", obstacle.ID, state.TimeStep)
	}
	recent := lo.Keys(obstacle.prediction)
	if obstacle.currentState != nil {
		recent = append(recent, obstacle.currentState.TimeStep)
	}
	if len(recent) > 0 && state.TimeStep > slices.Min(recent) {
		return errors.Wrapf(ErrTimeOrder, "Can't record state of obstacle %d at time step %d after time step %d", obstacle.ID, state.TimeStep, slices.Min(recent))
	}
	obstacle.history[state.TimeStep] = state
	obstacle.indexTimeSteps()
	return nil
}

// UpdateCurrentState moves current state to history and replaces it with given one.
// Predicted states up to the time step of the new state are dropped
func (obstacle *Obstacle) UpdateCurrentState(state *State) error {
	obstacle.mu.Lock()
	defer obstacle.mu.Unlock()
	if obstacle.currentState != nil {
		if state.TimeStep <= obstacle.currentState.TimeStep {
			return errors.Wrapf(ErrTimeOrder, "Can't update state of obstacle %d: time step %d is not after current time step %d", obstacle.ID, state.TimeStep, obstacle.currentState.TimeStep)
		}
		obstacle.history[obstacle.currentState.TimeStep] = obstacle.currentState
	}
	for timeStep := range obstacle.prediction {
		if timeStep <= state.TimeStep {
			delete(obstacle.prediction, timeStep)
			obstacle.forgetTimeStep(timeStep)
		}
	}
	obstacle.currentState = state
	obstacle.indexTimeSteps()
	return nil
}

// forgetTimeStep drops every cached value of given time step
func (obstacle *Obstacle) forgetTimeStep(timeStep TimeStep) {
	delete(obstacle.occupiedLanelets, timeStep)
	delete(obstacle.occupiedLaneletsDrivingDir, timeStep)
	delete(obstacle.occupiedLanes, timeStep)
	delete(obstacle.referenceLanes, timeStep)
	delete(obstacle.convertedWith, timeStep)
}

// StateByTimeStep returns state at given time step or ErrNoState
func (obstacle *Obstacle) StateByTimeStep(timeStep TimeStep) (*State, error) {
	if state, ok := obstacle.prediction[timeStep]; ok {
		return state, nil
	}
	if obstacle.currentState != nil && obstacle.currentState.TimeStep == timeStep {
		return obstacle.currentState, nil
	}
	if state, ok := obstacle.history[timeStep]; ok {
		return state, nil
	}
	return nil, errors.Wrapf(ErrNoState, "Can't find state of obstacle %d at time step %d", obstacle.ID, timeStep)
}

// FirstTimeStep returns time step of the earliest state
func (obstacle *Obstacle) FirstTimeStep() (TimeStep, error) {
	if len(obstacle.timeSteps) == 0 {
		return 0, errors.Wrapf(ErrNoState, "Obstacle %d has no states", obstacle.ID)
	}
	return obstacle.timeSteps[0], nil
}

// FinalTimeStep returns time step of the latest state
func (obstacle *Obstacle) FinalTimeStep() (TimeStep, error) {
	if len(obstacle.timeSteps) == 0 {
		return 0, errors.Wrapf(ErrNoState, "Obstacle %d has no states", obstacle.ID)
	}
	return obstacle.timeSteps[len(obstacle.timeSteps)-1], nil
}

// previousTimeStep returns time step of the state preceding given one
func (obstacle *Obstacle) previousTimeStep(timeStep TimeStep) (TimeStep, bool) {
	idx, found := slices.BinarySearch(obstacle.timeSteps, timeStep)
	if !found || idx == 0 {
		return 0, false
	}
	return obstacle.timeSteps[idx-1], true
}

// OccupancyPolygonShape returns shape placed at position and orientation of state at given time step.
// Computed on every call
func (obstacle *Obstacle) OccupancyPolygonShape(timeStep TimeStep) (orb.Ring, error) {
	state, err := obstacle.StateByTimeStep(timeStep)
	if err != nil {
		return nil, err
	}
	return PlaceShape(obstacle.shape, state.X, state.Y, state.Orientation), nil
}

// OccupiedLanelets returns lanelets partially occupied by the obstacle at given time step
func (obstacle *Obstacle) OccupiedLanelets(net *RoadNetwork, timeStep TimeStep) ([]*Lanelet, error) {
	obstacle.mu.Lock()
	defer obstacle.mu.Unlock()
	return obstacle.occupiedLaneletsLocked(net, timeStep)
}

func (obstacle *Obstacle) occupiedLaneletsLocked(net *RoadNetwork, timeStep TimeStep) ([]*Lanelet, error) {
	if lanelets, ok := obstacle.occupiedLanelets[timeStep]; ok {
		return lanelets, nil
	}
	shape, err := obstacle.OccupancyPolygonShape(timeStep)
	if err != nil {
		return nil, err
	}
	lanelets := net.FindOccupiedLaneletsByShape(shape)
	obstacle.occupiedLanelets[timeStep] = lanelets
	return lanelets, nil
}

// OccupiedLanes returns lanes containing any of lanelets occupied at given time step, sorted by identifier.
// Lanes of the network are assembled if none were registered yet
func (obstacle *Obstacle) OccupiedLanes(net *RoadNetwork, timeStep TimeStep) ([]*Lane, error) {
	obstacle.mu.Lock()
	defer obstacle.mu.Unlock()
	return obstacle.occupiedLanesLocked(net, timeStep)
}

func (obstacle *Obstacle) occupiedLanesLocked(net *RoadNetwork, timeStep TimeStep) ([]*Lane, error) {
	if lanes, ok := obstacle.occupiedLanes[timeStep]; ok {
		return lanes, nil
	}
	lanelets, err := obstacle.occupiedLaneletsLocked(net, timeStep)
	if err != nil {
		return nil, err
	}
	err = net.ensureLanes()
	if err != nil {
		return nil, errors.Wrap(err, "Can't assemble lanes")
	}
	lanes := []*Lane{}
	for _, lanelet := range lanelets {
		lanes = append(lanes, net.FindLanesByContainedLanelet(lanelet.ID)...)
	}
	lanes = lo.UniqBy(lanes, func(lane *Lane) LaneID { return lane.ID })
	slices.SortFunc(lanes, func(a, b *Lane) int {
		return cmp.Compare(a.ID, b.ID)
	})
	obstacle.occupiedLanes[timeStep] = lanes
	return lanes, nil
}

// OccupiedLaneletsDrivingDirection returns occupied lanelets whose orientation at the obstacle position
// differs from the obstacle heading by less than a quarter of pi
func (obstacle *Obstacle) OccupiedLaneletsDrivingDirection(net *RoadNetwork, timeStep TimeStep) ([]*Lanelet, error) {
	obstacle.mu.Lock()
	defer obstacle.mu.Unlock()
	return obstacle.drivingDirectionLocked(net, timeStep)
}

func (obstacle *Obstacle) drivingDirectionLocked(net *RoadNetwork, timeStep TimeStep) ([]*Lanelet, error) {
	if lanelets, ok := obstacle.occupiedLaneletsDrivingDir[timeStep]; ok {
		return lanelets, nil
	}
	state, err := obstacle.StateByTimeStep(timeStep)
	if err != nil {
		return nil, err
	}
	occupied, err := obstacle.occupiedLaneletsLocked(net, timeStep)
	if err != nil {
		return nil, err
	}
	lanelets := lo.Filter(occupied, func(lanelet *Lanelet, _ int) bool {
		orientation, err := lanelet.OrientationAtPosition(state.X, state.Y)
		return err == nil && math.Abs(AngleDifference(orientation, state.Orientation)) < drivingDirectionTolerance
	})
	obstacle.occupiedLaneletsDrivingDir[timeStep] = lanelets
	return lanelets, nil
}

// OccupiedLaneletsOppositeDirection returns occupied lanelets which are not in driving direction of the obstacle
func (obstacle *Obstacle) OccupiedLaneletsOppositeDirection(net *RoadNetwork, timeStep TimeStep) ([]*Lanelet, error) {
	obstacle.mu.Lock()
	defer obstacle.mu.Unlock()
	drivingDir, err := obstacle.drivingDirectionLocked(net, timeStep)
	if err != nil {
		return nil, err
	}
	occupied, err := obstacle.occupiedLaneletsLocked(net, timeStep)
	if err != nil {
		return nil, err
	}
	return lo.Without(occupied, drivingDir...), nil
}

// FrontPosition returns Cartesian point of the front of the obstacle along its heading
func (obstacle *Obstacle) FrontPosition(timeStep TimeStep) (orb.Point, error) {
	state, err := obstacle.StateByTimeStep(timeStep)
	if err != nil {
		return orb.Point{}, err
	}
	front, _ := shapeLongitudinalExtent(obstacle.shape)
	return orb.Point{state.X + front*math.Cos(state.Orientation), state.Y + front*math.Sin(state.Orientation)}, nil
}

// BackPosition returns Cartesian point of the back of the obstacle along its heading
func (obstacle *Obstacle) BackPosition(timeStep TimeStep) (orb.Point, error) {
	state, err := obstacle.StateByTimeStep(timeStep)
	if err != nil {
		return orb.Point{}, err
	}
	_, rear := shapeLongitudinalExtent(obstacle.shape)
	return orb.Point{state.X - rear*math.Cos(state.Orientation), state.Y - rear*math.Sin(state.Orientation)}, nil
}

// OccupiedLaneletsByFront returns lanelets containing the front of the obstacle
func (obstacle *Obstacle) OccupiedLaneletsByFront(net *RoadNetwork, timeStep TimeStep) ([]*Lanelet, error) {
	front, err := obstacle.FrontPosition(timeStep)
	if err != nil {
		return nil, err
	}
	return net.FindLaneletsByPosition(front.X(), front.Y()), nil
}

// OccupiedLaneletsByBack returns lanelets containing the back of the obstacle
func (obstacle *Obstacle) OccupiedLaneletsByBack(net *RoadNetwork, timeStep TimeStep) ([]*Lanelet, error) {
	back, err := obstacle.BackPosition(timeStep)
	if err != nil {
		return nil, err
	}
	return net.FindLaneletsByPosition(back.X(), back.Y()), nil
}

// SetReferenceLane fixes lane used for every time step
func (obstacle *Obstacle) SetReferenceLane(lane *Lane) {
	obstacle.mu.Lock()
	defer obstacle.mu.Unlock()
	obstacle.fixedReferenceLane = lane
	clear(obstacle.referenceLanes)
}

// ReferenceLane returns lane the obstacle is assigned to at given time step.
//
// Lane fixed by SetReferenceLane wins. Otherwise the lane assigned at previous time step is kept
// while it still intersects the occupancy. Otherwise occupied lanes heading along the obstacle
// are preferred, and among them the one with center line closest to the obstacle position is taken,
// the smallest identifier on ties
func (obstacle *Obstacle) ReferenceLane(net *RoadNetwork, timeStep TimeStep) (*Lane, error) {
	obstacle.mu.Lock()
	defer obstacle.mu.Unlock()
	return obstacle.referenceLaneLocked(net, timeStep)
}

func (obstacle *Obstacle) referenceLaneLocked(net *RoadNetwork, timeStep TimeStep) (*Lane, error) {
	if obstacle.fixedReferenceLane != nil {
		return obstacle.fixedReferenceLane, nil
	}
	if lane, ok := obstacle.referenceLanes[timeStep]; ok {
		return lane, nil
	}
	state, err := obstacle.StateByTimeStep(timeStep)
	if err != nil {
		return nil, err
	}
	shape, err := obstacle.OccupancyPolygonShape(timeStep)
	if err != nil {
		return nil, err
	}
	if previous, ok := obstacle.previousTimeStep(timeStep); ok {
		if lane, ok := obstacle.referenceLanes[previous]; ok && lane.CheckIntersection(shape, PARTIALLY_CONTAINED) {
			obstacle.referenceLanes[timeStep] = lane
			return lane, nil
		}
	}
	candidates, err := obstacle.occupiedLanesLocked(net, timeStep)
	if err != nil {
		return nil, err
	}
	occupied := lo.Filter(candidates, func(lane *Lane, _ int) bool {
		return lane.CheckIntersection(shape, PARTIALLY_CONTAINED)
	})
	drivingDir := lo.Filter(occupied, func(lane *Lane, _ int) bool {
		orientation, err := lane.OrientationAtPosition(state.X, state.Y)
		return err == nil && math.Abs(AngleDifference(orientation, state.Orientation)) < drivingDirectionTolerance
	})
	if len(drivingDir) > 0 {
		occupied = drivingDir
	}
	var best *Lane
	bestDist := math.Inf(1)
	// Candidates are sorted by identifier, so strict comparison keeps the smallest one on ties
	for _, lane := range occupied {
		dist := PolylineDistance(lane.CenterVertices(), state.Position())
		if dist < bestDist {
			best, bestDist = lane, dist
		}
	}
	if best == nil {
		return nil, errors.Wrapf(ErrNoLane, "Can't assign lane to obstacle %d at time step %d", obstacle.ID, timeStep)
	}
	obstacle.referenceLanes[timeStep] = best
	return best, nil
}

// ConvertPointToCurvilinear projects state at given time step into coordinate system of the reference lane
func (obstacle *Obstacle) ConvertPointToCurvilinear(net *RoadNetwork, timeStep TimeStep) error {
	obstacle.mu.Lock()
	defer obstacle.mu.Unlock()
	_, err := obstacle.convertLocked(net, timeStep)
	return err
}

func (obstacle *Obstacle) convertLocked(net *RoadNetwork, timeStep TimeStep) (*State, error) {
	state, err := obstacle.StateByTimeStep(timeStep)
	if err != nil {
		return nil, err
	}
	lane, err := obstacle.referenceLaneLocked(net, timeStep)
	if err != nil {
		return nil, err
	}
	laneID, converted := obstacle.convertedWith[timeStep]
	if converted && laneID == lane.ID && state.valid.Has(VALID_LON_POSITION|VALID_LAT_POSITION) {
		return state, nil
	}
	ccs, err := lane.CurvilinearCoordinateSystem()
	if err != nil {
		state.invalidateCurvilinear()
		return nil, err
	}
	state.ConvertPointToCurvilinear(ccs)
	obstacle.convertedWith[timeStep] = lane.ID
	return state, nil
}

// LonPosition returns longitudinal position along the reference lane at given time step
func (obstacle *Obstacle) LonPosition(net *RoadNetwork, timeStep TimeStep) (float64, error) {
	obstacle.mu.Lock()
	defer obstacle.mu.Unlock()
	state, err := obstacle.convertLocked(net, timeStep)
	if err != nil {
		return 0, err
	}
	return state.lonPosition, nil
}

// LatPosition returns lateral position relative to the reference lane at given time step
func (obstacle *Obstacle) LatPosition(net *RoadNetwork, timeStep TimeStep) (float64, error) {
	obstacle.mu.Lock()
	defer obstacle.mu.Unlock()
	state, err := obstacle.convertLocked(net, timeStep)
	if err != nil {
		return 0, err
	}
	return state.latPosition, nil
}

// CurvilinearOrientation returns orientation relative to the reference path of the lane at given time step
func (obstacle *Obstacle) CurvilinearOrientation(net *RoadNetwork, timeStep TimeStep) (float64, error) {
	obstacle.mu.Lock()
	defer obstacle.mu.Unlock()
	state, err := obstacle.convertLocked(net, timeStep)
	if err != nil {
		return 0, err
	}
	return state.curvilinearOrientation, nil
}

// rectangleShape returns rectangle of the obstacle or ErrNotSupported for other shapes
func (obstacle *Obstacle) rectangleShape() (Rectangle, error) {
	switch rect := obstacle.shape.(type) {
	case Rectangle:
		return rect, nil
	case *Rectangle:
		return *rect, nil
	}
	return Rectangle{}, errors.Wrapf(ErrNotSupported, "Can't evaluate curvilinear extents of obstacle %d: shape is not a rectangle", obstacle.ID)
}

// rotatedHalfExtents returns longitudinal and lateral half extents of rectangle rotated by given angle
func rotatedHalfExtents(rect Rectangle, angle float64) (float64, float64) {
	cosT := math.Abs(math.Cos(angle))
	sinT := math.Abs(math.Sin(angle))
	return rect.Length/2*cosT + rect.Width/2*sinT, rect.Length/2*sinT + rect.Width/2*cosT
}

// halfExtents returns longitudinal and lateral half extents of rotated rectangle in curvilinear frame
func (obstacle *Obstacle) halfExtents(net *RoadNetwork, timeStep TimeStep) (*State, float64, float64, error) {
	rect, err := obstacle.rectangleShape()
	if err != nil {
		return nil, 0, 0, err
	}
	state, err := obstacle.convertLocked(net, timeStep)
	if err != nil {
		return nil, 0, 0, err
	}
	lonHalf, latHalf := rotatedHalfExtents(rect, state.curvilinearOrientation)
	return state, lonHalf, latHalf, nil
}

// lateralBoundsIn returns left and right lateral positions of the obstacle in given coordinate system.
// Cached curvilinear fields of the state are not touched
func (obstacle *Obstacle) lateralBoundsIn(ccs *CurvilinearCoordinateSystem, timeStep TimeStep) (float64, float64, error) {
	rect, err := obstacle.rectangleShape()
	if err != nil {
		return 0, 0, err
	}
	state, err := obstacle.StateByTimeStep(timeStep)
	if err != nil {
		return 0, 0, err
	}
	s, d := ccs.ToCurvilinear(state.X, state.Y)
	_, latHalf := rotatedHalfExtents(rect, WrapToPi(state.Orientation-ccs.TangentAt(s)))
	return d + latHalf, d - latHalf, nil
}

// FrontS returns longitudinal position of the front of the obstacle
func (obstacle *Obstacle) FrontS(net *RoadNetwork, timeStep TimeStep) (float64, error) {
	obstacle.mu.Lock()
	defer obstacle.mu.Unlock()
	state, lonHalf, _, err := obstacle.halfExtents(net, timeStep)
	if err != nil {
		return 0, err
	}
	return state.lonPosition + lonHalf, nil
}

// RearS returns longitudinal position of the rear of the obstacle
func (obstacle *Obstacle) RearS(net *RoadNetwork, timeStep TimeStep) (float64, error) {
	obstacle.mu.Lock()
	defer obstacle.mu.Unlock()
	state, lonHalf, _, err := obstacle.halfExtents(net, timeStep)
	if err != nil {
		return 0, err
	}
	return state.lonPosition - lonHalf, nil
}

// LeftD returns lateral position of the left side of the obstacle
func (obstacle *Obstacle) LeftD(net *RoadNetwork, timeStep TimeStep) (float64, error) {
	obstacle.mu.Lock()
	defer obstacle.mu.Unlock()
	state, _, latHalf, err := obstacle.halfExtents(net, timeStep)
	if err != nil {
		return 0, err
	}
	return state.latPosition + latHalf, nil
}

// RightD returns lateral position of the right side of the obstacle
func (obstacle *Obstacle) RightD(net *RoadNetwork, timeStep TimeStep) (float64, error) {
	obstacle.mu.Lock()
	defer obstacle.mu.Unlock()
	state, _, latHalf, err := obstacle.halfExtents(net, timeStep)
	if err != nil {
		return 0, err
	}
	return state.latPosition - latHalf, nil
}

// LateralDistanceToObstacle returns lateral gap between sides of the obstacle and other obstacle at given time step.
// Both are measured in coordinate system of the reference lane of the obstacle
func (obstacle *Obstacle) LateralDistanceToObstacle(net *RoadNetwork, timeStep TimeStep, other *Obstacle) (float64, error) {
	obstacle.mu.Lock()
	defer obstacle.mu.Unlock()
	state, _, latHalf, err := obstacle.halfExtents(net, timeStep)
	if err != nil {
		return 0, err
	}
	lane, err := obstacle.referenceLaneLocked(net, timeStep)
	if err != nil {
		return 0, err
	}
	ccs, err := lane.CurvilinearCoordinateSystem()
	if err != nil {
		return 0, err
	}
	leftOther, rightOther, err := other.lateralBoundsIn(ccs, timeStep)
	if err != nil {
		return 0, errors.Wrapf(err, "Can't evaluate lateral distance between obstacles %d and %d", obstacle.ID, other.ID)
	}
	leftThis, rightThis := state.latPosition+latHalf, state.latPosition-latHalf
	return math.Min(math.Abs(rightThis-leftOther), math.Abs(leftThis-rightOther)), nil
}
