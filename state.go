package commonroad

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

type TimeStep int64

// ValidStates is a set of flags telling which fields of State are set
type ValidStates uint16

const (
	VALID_X_POSITION = ValidStates(1 << iota)
	VALID_Y_POSITION
	VALID_VELOCITY
	VALID_ACCELERATION
	VALID_LON_POSITION
	VALID_LAT_POSITION
	VALID_GLOBAL_ORIENTATION
	VALID_CURVILINEAR_ORIENTATION
)

// Has checks if every given flag is set
func (valid ValidStates) Has(flags ValidStates) bool {
	return valid&flags == flags
}

// State is a kinematic state of an obstacle at a single time step.
// Curvilinear fields are valid only after conversion against a lane
type State struct {
	TimeStep     TimeStep
	X            float64
	Y            float64
	Orientation  float64
	Velocity     float64
	Acceleration float64

	lonPosition            float64
	latPosition            float64
	curvilinearOrientation float64
	valid                  ValidStates
}

func (state *State) String() string {
	return fmt.Sprintf("State %d: x: %f, y: %f, orientation: %f, velocity: %f", state.TimeStep, state.X, state.Y, state.Orientation, state.Velocity)
}

// NewState creates state with Cartesian position and global orientation
func NewState(timeStep TimeStep, x, y, orientation float64, options ...func(*State)) *State {
	state := &State{
		TimeStep:    timeStep,
		X:           x,
		Y:           y,
		Orientation: orientation,
		valid:       VALID_X_POSITION | VALID_Y_POSITION | VALID_GLOBAL_ORIENTATION,
	}
	for _, option := range options {
		option(state)
	}
	return state
}

func WithVelocity(velocity float64) func(*State) {
	return func(state *State) {
		state.Velocity = velocity
		state.valid |= VALID_VELOCITY
	}
}

func WithAcceleration(acceleration float64) func(*State) {
	return func(state *State) {
		state.Acceleration = acceleration
		state.valid |= VALID_ACCELERATION
	}
}

// WithCurvilinearPosition sets known curvilinear coordinates
func WithCurvilinearPosition(lon, lat float64) func(*State) {
	return func(state *State) {
		state.lonPosition = lon
		state.latPosition = lat
		state.valid |= VALID_LON_POSITION | VALID_LAT_POSITION
	}
}

func (state *State) Position() orb.Point {
	return orb.Point{state.X, state.Y}
}

func (state *State) Valid() ValidStates {
	return state.valid
}

func (state *State) LonPosition() float64 {
	return state.lonPosition
}

func (state *State) LatPosition() float64 {
	return state.latPosition
}

func (state *State) CurvilinearOrientation() float64 {
	return state.curvilinearOrientation
}

// ConvertPointToCurvilinear projects position of the state into given coordinate system.
// Sets longitudinal and lateral positions together with orientation relative to the reference path
func (state *State) ConvertPointToCurvilinear(ccs *CurvilinearCoordinateSystem) {
	state.lonPosition, state.latPosition = ccs.ToCurvilinear(state.X, state.Y)
	state.curvilinearOrientation = WrapToPi(state.Orientation - ccs.TangentAt(state.lonPosition))
	state.valid |= VALID_LON_POSITION | VALID_LAT_POSITION | VALID_CURVILINEAR_ORIENTATION
}

// invalidateCurvilinear drops curvilinear fields, e.g. when reference lane changes
func (state *State) invalidateCurvilinear() {
	state.lonPosition = math.NaN()
	state.latPosition = math.NaN()
	state.curvilinearOrientation = math.NaN()
	state.valid &^= VALID_LON_POSITION | VALID_LAT_POSITION | VALID_CURVILINEAR_ORIENTATION
}
