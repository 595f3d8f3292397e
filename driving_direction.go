package commonroad

type DrivingDirection uint16

const (
	DRIVING_DIRECTION_SAME = DrivingDirection(iota + 1)
	DRIVING_DIRECTION_OPPOSITE
	DRIVING_DIRECTION_INVALID
)

func (iotaIdx DrivingDirection) String() string {
	return [...]string{"same", "opposite", "invalid"}[iotaIdx-1]
}

// Adjacency is a non-owning reference to laterally adjacent lanelet
type Adjacency struct {
	Lanelet   *Lanelet
	Direction DrivingDirection
}
