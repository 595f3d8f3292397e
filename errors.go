package commonroad

import (
	"github.com/pkg/errors"
)

var (
	ErrEmptyPolyline        = errors.New("polyline is empty")
	ErrLengthMismatch       = errors.New("polylines have different number of vertices")
	ErrDegeneratePath       = errors.New("reference path is degenerate")
	ErrLaneletNotFound      = errors.New("lanelet not found")
	ErrLaneNotFound         = errors.New("lane not found")
	ErrObstacleNotFound     = errors.New("obstacle not found")
	ErrTrafficLightNotFound = errors.New("traffic light not found")
	ErrTrafficSignNotFound  = errors.New("traffic sign not found")
	ErrIntersectionNotFound = errors.New("intersection not found")
	ErrDuplicateID          = errors.New("duplicate identifier")
	ErrTopology             = errors.New("lanelets are not topologically connected")
	ErrNoState              = errors.New("no state for time step")
	ErrDuplicateTimeStep    = errors.New("state for time step already exists")
	ErrTimeOrder            = errors.New("time steps must be increasing")
	ErrNoLane               = errors.New("no lane could be assigned")
	ErrNoPath               = errors.New("no path between lanelets")
	// ErrNotSupported is returned instead of a meaningless numeric value
	ErrNotSupported = errors.New("operation is not supported")
)
