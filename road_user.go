package commonroad

type RoadUser uint16

const (
	ROAD_USER_VEHICLE = RoadUser(iota + 1)
	ROAD_USER_CAR
	ROAD_USER_TRUCK
	ROAD_USER_BUS
	ROAD_USER_PRIORITY_VEHICLE
	ROAD_USER_MOTORCYCLE
	ROAD_USER_BICYCLE
	ROAD_USER_PEDESTRIAN
	ROAD_USER_TRAIN
	ROAD_USER_TAXI
)

func (iotaIdx RoadUser) String() string {
	return [...]string{"vehicle", "car", "truck", "bus", "priorityVehicle", "motorcycle", "bicycle", "pedestrian", "train", "taxi"}[iotaIdx-1]
}

var (
	// roadUsersByParticipant maps Lanelet2 'participants:*' tag suffix onto road users
	roadUsersByParticipant = map[string][]RoadUser{
		"vehicle":            {ROAD_USER_VEHICLE, ROAD_USER_CAR, ROAD_USER_TRUCK, ROAD_USER_BUS, ROAD_USER_PRIORITY_VEHICLE, ROAD_USER_MOTORCYCLE, ROAD_USER_TAXI},
		"vehicle:car":        {ROAD_USER_CAR},
		"vehicle:truck":      {ROAD_USER_TRUCK},
		"vehicle:bus":        {ROAD_USER_BUS},
		"vehicle:taxi":       {ROAD_USER_TAXI},
		"vehicle:emergency":  {ROAD_USER_PRIORITY_VEHICLE},
		"vehicle:motorcycle": {ROAD_USER_MOTORCYCLE},
		"bicycle":            {ROAD_USER_BICYCLE},
		"pedestrian":         {ROAD_USER_PEDESTRIAN},
		"train":              {ROAD_USER_TRAIN},
	}
)

type ObstacleType uint16

const (
	OBSTACLE_UNKNOWN = ObstacleType(iota + 1)
	OBSTACLE_CAR
	OBSTACLE_TRUCK
	OBSTACLE_BUS
	OBSTACLE_BICYCLE
	OBSTACLE_PEDESTRIAN
	OBSTACLE_PRIORITY_VEHICLE
	OBSTACLE_MOTORCYCLE
	OBSTACLE_TAXI
	OBSTACLE_PARKED_VEHICLE
	OBSTACLE_CONSTRUCTION_ZONE
	OBSTACLE_ROAD_BOUNDARY
)

func (iotaIdx ObstacleType) String() string {
	return [...]string{"unknown", "car", "truck", "bus", "bicycle", "pedestrian", "priorityVehicle", "motorcycle", "taxi", "parkedVehicle", "constructionZone", "roadBoundary"}[iotaIdx-1]
}
