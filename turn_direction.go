package commonroad

import (
	"math"

	"github.com/paulmach/orb"
)

type TurnDirection uint16

const (
	TURN_STRAIGHT = TurnDirection(iota + 1)
	TURN_RIGHT
	TURN_LEFT
	TURN_U_TURN
)

func (iotaIdx TurnDirection) String() string {
	return [...]string{"straight", "right", "left", "u_turn"}[iotaIdx-1]
}

// turnBetweenLines classifies movement from the end of the first line towards the end of the second one.
//
// Note: panics if number of points in any line is less than 2
func turnBetweenLines(l1 orb.LineString, l2 orb.LineString) TurnDirection {
	endL1, endL2 := l1[len(l1)-1], l2[len(l2)-1]
	angleDiff := angleBetweenLines(l1, orb.LineString{endL1, endL2})

	switch {
	case -0.25*math.Pi <= angleDiff && angleDiff <= 0.25*math.Pi:
		return TURN_STRAIGHT
	case angleDiff < -0.25*math.Pi && angleDiff >= -0.75*math.Pi:
		return TURN_RIGHT
	case angleDiff > 0.25*math.Pi && angleDiff <= 0.75*math.Pi:
		return TURN_LEFT
	default:
		return TURN_U_TURN
	}
}

// TurnDirectionBetween classifies movement from incoming lanelet into outgoing one by their center lines
func TurnDirectionBetween(incoming, outgoing *Lanelet) TurnDirection {
	return turnBetweenLines(incoming.centerVertices, outgoing.centerVertices)
}
