package commonroad

import (
	"fmt"

	"github.com/samber/lo"
)

type IntersectionID int64

type IncomingGroupID int64

// IncomingGroup is a set of incoming lanelets of an intersection with lanelets they lead to grouped by turn direction
type IncomingGroup struct {
	ID               IncomingGroupID
	IncomingLanelets []*Lanelet
	OutgoingStraight []*Lanelet
	OutgoingLeft     []*Lanelet
	OutgoingRight    []*Lanelet
	Oncomings        []*Lanelet
	// IsLeftOf is identifier of incoming group this one is on the left of. Zero if unknown
	IsLeftOf IncomingGroupID
}

// NewIncomingGroup creates group and classifies successors of incoming lanelets by turn direction
func NewIncomingGroup(id IncomingGroupID, incomingLanelets []*Lanelet) *IncomingGroup {
	group := &IncomingGroup{
		ID:               id,
		IncomingLanelets: incomingLanelets,
	}
	for _, incoming := range incomingLanelets {
		for _, successor := range incoming.successors {
			group.AddOutgoing(incoming, successor)
		}
	}
	return group
}

// AddOutgoing puts outgoing lanelet into the group by direction of turn from given incoming lanelet.
// U-turns are not stored
func (group *IncomingGroup) AddOutgoing(incoming, outgoing *Lanelet) {
	switch TurnDirectionBetween(incoming, outgoing) {
	case TURN_STRAIGHT:
		group.OutgoingStraight = appendLanelet(group.OutgoingStraight, outgoing)
	case TURN_LEFT:
		group.OutgoingLeft = appendLanelet(group.OutgoingLeft, outgoing)
	case TURN_RIGHT:
		group.OutgoingRight = appendLanelet(group.OutgoingRight, outgoing)
	default:
		// U-turn
	}
}

// Outgoings returns all outgoing lanelets of the group
func (group *IncomingGroup) Outgoings() []*Lanelet {
	all := make([]*Lanelet, 0, len(group.OutgoingStraight)+len(group.OutgoingLeft)+len(group.OutgoingRight))
	all = append(all, group.OutgoingStraight...)
	all = append(all, group.OutgoingLeft...)
	all = append(all, group.OutgoingRight...)
	return all
}

// Intersection is a set of incoming groups and crossings
type Intersection struct {
	ID             IntersectionID
	IncomingGroups []*IncomingGroup
	Crossings      []*Lanelet
}

func (intersection *Intersection) String() string {
	return fmt.Sprintf("Intersection %d: incomings: %d, crossings: %v", intersection.ID, len(intersection.IncomingGroups), laneletIDs(intersection.Crossings))
}

// NewIntersection creates intersection and marks all outgoing lanelets of its groups with intersection type
func NewIntersection(id IntersectionID, groups []*IncomingGroup, crossings []*Lanelet) *Intersection {
	intersection := &Intersection{
		ID:             id,
		IncomingGroups: groups,
		Crossings:      crossings,
	}
	for _, group := range groups {
		for _, outgoing := range group.Outgoings() {
			outgoing.ApplyIntersectionType()
		}
	}
	return intersection
}

// ContainsLanelet checks if lanelet is incoming, outgoing or crossing lanelet of the intersection
func (intersection *Intersection) ContainsLanelet(id LaneletID) bool {
	if containsLanelet(intersection.Crossings, id) {
		return true
	}
	return lo.ContainsBy(intersection.IncomingGroups, func(group *IncomingGroup) bool {
		return containsLanelet(group.IncomingLanelets, id) || containsLanelet(group.Outgoings(), id)
	})
}

// MemberLanelets returns lanelets which belong to the inner part of the intersection
func (intersection *Intersection) MemberLanelets() []*Lanelet {
	members := []*Lanelet{}
	for _, group := range intersection.IncomingGroups {
		for _, outgoing := range group.Outgoings() {
			members = appendLanelet(members, outgoing)
		}
	}
	return members
}

func appendLanelet(lanelets []*Lanelet, lanelet *Lanelet) []*Lanelet {
	if containsLanelet(lanelets, lanelet.ID) {
		return lanelets
	}
	return append(lanelets, lanelet)
}
