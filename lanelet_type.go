package commonroad

type LaneletType uint16

const (
	LANELET_INTERSTATE = LaneletType(iota + 1)
	LANELET_URBAN
	LANELET_CROSSWALK
	LANELET_BUS_STOP
	LANELET_COUNTRY
	LANELET_HIGHWAY
	LANELET_DRIVE_WAY
	LANELET_MAIN_CARRIAGE_WAY
	LANELET_ACCESS_RAMP
	LANELET_EXIT_RAMP
	LANELET_SHOULDER
	LANELET_BICYCLE_LANE
	LANELET_SIDEWALK
	LANELET_BUS_LANE
	LANELET_INTERSECTION
	LANELET_PARKING
	LANELET_RESTRICTED
	LANELET_BORDER
	LANELET_UNKNOWN
)

func (iotaIdx LaneletType) String() string {
	return [...]string{"interstate", "urban", "crosswalk", "busStop", "country", "highway", "driveWay", "mainCarriageWay", "accessRamp", "exitRamp", "shoulder", "bicycleLane", "sidewalk", "busLane", "intersection", "parking", "restricted", "border", "unknown"}[iotaIdx-1]
}

// classifyingLaneletTypes are types which lanes are assembled by, in priority order
var classifyingLaneletTypes = []LaneletType{
	LANELET_ACCESS_RAMP,
	LANELET_EXIT_RAMP,
	LANELET_MAIN_CARRIAGE_WAY,
	LANELET_SHOULDER,
	LANELET_URBAN,
}

func getLaneletType(str string) LaneletType {
	if found, ok := laneletTypes[str]; ok {
		return found
	}
	return LANELET_UNKNOWN
}

var (
	laneletTypes = map[string]LaneletType{
		"interstate":      LANELET_INTERSTATE,
		"urban":           LANELET_URBAN,
		"crosswalk":       LANELET_CROSSWALK,
		"busStop":         LANELET_BUS_STOP,
		"country":         LANELET_COUNTRY,
		"highway":         LANELET_HIGHWAY,
		"driveWay":        LANELET_DRIVE_WAY,
		"mainCarriageWay": LANELET_MAIN_CARRIAGE_WAY,
		"accessRamp":      LANELET_ACCESS_RAMP,
		"exitRamp":        LANELET_EXIT_RAMP,
		"shoulder":        LANELET_SHOULDER,
		"bicycleLane":     LANELET_BICYCLE_LANE,
		"sidewalk":        LANELET_SIDEWALK,
		"busLane":         LANELET_BUS_LANE,
		"intersection":    LANELET_INTERSECTION,
		"parking":         LANELET_PARKING,
		"restricted":      LANELET_RESTRICTED,
		"border":          LANELET_BORDER,
		"unknown":         LANELET_UNKNOWN,
	}

	// laneletTypesBySubtype maps Lanelet2 'subtype' tag onto lanelet types
	laneletTypesBySubtype = map[string][]LaneletType{
		"road":           {LANELET_URBAN},
		"highway":        {LANELET_HIGHWAY, LANELET_MAIN_CARRIAGE_WAY},
		"play_street":    {LANELET_URBAN},
		"emergency_lane": {LANELET_SHOULDER},
		"bus_lane":       {LANELET_BUS_LANE},
		"bicycle_lane":   {LANELET_BICYCLE_LANE},
		"walkway":        {LANELET_SIDEWALK},
		"shared_walkway": {LANELET_SIDEWALK},
		"crosswalk":      {LANELET_CROSSWALK},
		"stairs":         {LANELET_SIDEWALK},
		"exit":           {LANELET_HIGHWAY, LANELET_EXIT_RAMP},
		"entry":          {LANELET_HIGHWAY, LANELET_ACCESS_RAMP},
	}
)
