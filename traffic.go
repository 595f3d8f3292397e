package commonroad

import (
	"github.com/paulmach/orb"
)

type TrafficLightID int64

type TrafficSignID int64

type TrafficLightColor uint16

const (
	TRAFFIC_LIGHT_RED = TrafficLightColor(iota + 1)
	TRAFFIC_LIGHT_RED_YELLOW
	TRAFFIC_LIGHT_GREEN
	TRAFFIC_LIGHT_YELLOW
	TRAFFIC_LIGHT_INACTIVE
)

func (iotaIdx TrafficLightColor) String() string {
	return [...]string{"red", "redYellow", "green", "yellow", "inactive"}[iotaIdx-1]
}

type TrafficLightCycleElement struct {
	Color    TrafficLightColor
	Duration int
}

// TrafficLight is shared between lanelets and stop lines referencing it
type TrafficLight struct {
	ID       TrafficLightID
	Position orb.Point
	Cycle    []TrafficLightCycleElement
	Offset   int
	Active   bool
}

// ElementAtTime returns cycle element which is active at given time step
func (light *TrafficLight) ElementAtTime(timeStep TimeStep) TrafficLightCycleElement {
	total := 0
	for _, element := range light.Cycle {
		total += element.Duration
	}
	if !light.Active || total <= 0 {
		return TrafficLightCycleElement{Color: TRAFFIC_LIGHT_INACTIVE}
	}
	t := (int(timeStep) - light.Offset) % total
	if t < 0 {
		t += total
	}
	for _, element := range light.Cycle {
		if t < element.Duration {
			return element
		}
		t -= element.Duration
	}
	return light.Cycle[len(light.Cycle)-1]
}

// TrafficSignElement is a single sign with country-specific type identifier (e.g. 'de206') and additional values
type TrafficSignElement struct {
	TypeID           string
	AdditionalValues []string
}

// TrafficSign is shared between lanelets and stop lines referencing it
type TrafficSign struct {
	ID       TrafficSignID
	Elements []TrafficSignElement
	Position orb.Point
	Virtual  bool
}

// HasElement checks if sign carries element of given type
func (sign *TrafficSign) HasElement(typeID string) bool {
	for _, element := range sign.Elements {
		if element.TypeID == typeID {
			return true
		}
	}
	return false
}

type StopLine struct {
	Points        [2]orb.Point
	TrafficSigns  []*TrafficSign
	TrafficLights []*TrafficLight
}
