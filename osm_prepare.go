package commonroad

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/osm"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// laneletBorders is lanelet relation with resolved borders oriented in driving direction
type laneletBorders struct {
	relation   *osm.Relation
	leftWay    osm.WayID
	rightWay   osm.WayID
	leftNodes  []osm.NodeID
	rightNodes []osm.NodeID
	lanelet    *Lanelet
}

func (data *Lanelet2DataRaw) prepareRoadNetwork(parser *Parser) (*RoadNetwork, error) {
	origin := orb.Point{parser.origin[1], parser.origin[0]}
	if !parser.hasOrigin {
		if first, ok := data.nodes[data.firstNode]; ok {
			origin = first.lonLat
		}
	}
	project := func(nodeID osm.NodeID) (orb.Point, bool) {
		node, ok := data.nodes[nodeID]
		if !ok {
			return orb.Point{}, false
		}
		if node.hasLocal {
			return node.local, true
		}
		return pointToLocal(node.lonLat, origin), true
	}
	wayPoints := func(nodeIDs []osm.NodeID) (orb.LineString, error) {
		line := make(orb.LineString, 0, len(nodeIDs))
		for _, nodeID := range nodeIDs {
			pt, ok := project(nodeID)
			if !ok {
				return nil, errors.Errorf("node %d is missing", nodeID)
			}
			line = append(line, pt)
		}
		return line, nil
	}

	if parser.verbose {
		fmt.Printf("\tPreparing lanelets... ")
	}
	st := time.Now()
	slices.SortFunc(data.lanelets, func(a, b *osm.Relation) int {
		return cmp.Compare(a.ID, b.ID)
	})
	nextID := parser.startLaneletID
	prepared := make([]*laneletBorders, 0, len(data.lanelets))
	for _, relation := range data.lanelets {
		borders, err := data.resolveBorders(relation, project)
		if err != nil {
			if parser.verbose {
				fmt.Printf("\n\t[WARNING]: Lanelet relation %d is skipped: %s\n", relation.ID, err.Error())
			}
			continue
		}
		left, err := wayPoints(borders.leftNodes)
		if err != nil {
			return nil, errors.Wrapf(err, "Can't prepare left border of lanelet relation %d", relation.ID)
		}
		right, err := wayPoints(borders.rightNodes)
		if err != nil {
			return nil, errors.Wrapf(err, "Can't prepare right border of lanelet relation %d", relation.ID)
		}
		// Borders must be paired vertex by vertex
		if len(left) != len(right) {
			count := max(len(left), len(right))
			left = ResampleByCount(left, count)
			right = ResampleByCount(right, count)
		}
		id := LaneletID(relation.ID)
		if parser.startLaneletID > 0 {
			id = LaneletID(nextID)
			nextID++
		}
		oneWay, bidirectional := laneletUsers(relation.Tags)
		lanelet, err := NewLanelet(
			id,
			left,
			right,
			laneletTypesFromTags(relation.Tags),
			WithUsersOneWay(oneWay),
			WithUsersBidirectional(bidirectional),
			WithSimplifyTolerance(parser.cfg.Lanelet.PolygonSimplifyTolerance),
		)
		if err != nil {
			return nil, errors.Wrapf(err, "Can't create lanelet from relation %d", relation.ID)
		}
		borders.lanelet = lanelet
		prepared = append(prepared, borders)
	}
	if parser.verbose {
		fmt.Printf("Done in %v (%d lanelets)\n", time.Since(st), len(prepared))
	}

	if parser.verbose {
		fmt.Printf("\tPreparing topology... ")
	}
	st = time.Now()
	connectLanelets(prepared)
	if parser.verbose {
		fmt.Printf("Done in %v\n", time.Since(st))
	}

	if parser.verbose {
		fmt.Printf("\tPreparing regulatory elements... ")
	}
	st = time.Now()
	lights, signs := data.prepareRegulatoryElements(prepared, wayPoints)
	if parser.verbose {
		fmt.Printf("Done in %v (traffic lights: %d, traffic signs: %d)\n", time.Since(st), len(lights), len(signs))
	}

	lanelets := lo.Map(prepared, func(borders *laneletBorders, _ int) *Lanelet { return borders.lanelet })
	return NewRoadNetwork(
		lanelets,
		WithCountry(parser.country),
		WithTrafficLights(lights),
		WithTrafficSigns(signs),
		WithConfig(parser.cfg),
	)
}

// resolveBorders finds left and right ways of lanelet relation and orients right border along the left one
func (data *Lanelet2DataRaw) resolveBorders(relation *osm.Relation, project func(osm.NodeID) (orb.Point, bool)) (*laneletBorders, error) {
	borders := &laneletBorders{
		relation: relation,
	}
	for _, member := range relation.Members {
		if member.Type != osm.TypeWay {
			continue
		}
		way, ok := data.ways[osm.WayID(member.Ref)]
		if !ok {
			continue
		}
		switch member.Role {
		case "left":
			borders.leftWay = way.ID
			borders.leftNodes = slices.Clone(way.Nodes)
		case "right":
			borders.rightWay = way.ID
			borders.rightNodes = slices.Clone(way.Nodes)
		default:
			// Centerline and others are derived
		}
	}
	if len(borders.leftNodes) < 2 || len(borders.rightNodes) < 2 {
		return nil, errors.Errorf("left border has %d nodes, right border has %d nodes", len(borders.leftNodes), len(borders.rightNodes))
	}
	leftStart, ok1 := project(borders.leftNodes[0])
	leftEnd, ok2 := project(borders.leftNodes[len(borders.leftNodes)-1])
	rightStart, ok3 := project(borders.rightNodes[0])
	rightEnd, ok4 := project(borders.rightNodes[len(borders.rightNodes)-1])
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return nil, errors.New("border nodes are missing")
	}
	aligned := planar.Distance(leftStart, rightStart) + planar.Distance(leftEnd, rightEnd)
	inverted := planar.Distance(leftStart, rightEnd) + planar.Distance(leftEnd, rightStart)
	if inverted < aligned {
		slices.Reverse(borders.rightNodes)
	}
	return borders, nil
}

// connectLanelets sets successors by shared border end nodes and adjacency by shared border ways
func connectLanelets(prepared []*laneletBorders) {
	byStart := make(map[[2]osm.NodeID][]*laneletBorders, len(prepared))
	for _, borders := range prepared {
		key := [2]osm.NodeID{borders.leftNodes[0], borders.rightNodes[0]}
		byStart[key] = append(byStart[key], borders)
	}
	for _, borders := range prepared {
		key := [2]osm.NodeID{borders.leftNodes[len(borders.leftNodes)-1], borders.rightNodes[len(borders.rightNodes)-1]}
		for _, next := range byStart[key] {
			if next == borders {
				continue
			}
			borders.lanelet.AddSuccessor(next.lanelet)
			next.lanelet.AddPredecessor(borders.lanelet)
		}
	}
	for i, a := range prepared {
		for _, b := range prepared[i+1:] {
			connectAdjacent(a, b)
			connectAdjacent(b, a)
		}
	}
}

// connectAdjacent sets left neighbour of a if its left border is shared with b.
// Shared left borders mean opposite driving directions
func connectAdjacent(a, b *laneletBorders) {
	switch {
	case slices.Equal(a.leftNodes, b.rightNodes):
		a.lanelet.SetLeftAdjacent(b.lanelet, DRIVING_DIRECTION_SAME)
		b.lanelet.SetRightAdjacent(a.lanelet, DRIVING_DIRECTION_SAME)
	case a.leftWay == b.leftWay:
		a.lanelet.SetLeftAdjacent(b.lanelet, DRIVING_DIRECTION_OPPOSITE)
		b.lanelet.SetLeftAdjacent(a.lanelet, DRIVING_DIRECTION_OPPOSITE)
	}
}

// laneletTypesFromTags returns types by 'commonroad:type' tag if any, by 'subtype' and 'location' tags otherwise
func laneletTypesFromTags(tags osm.Tags) []LaneletType {
	if explicit := tags.Find("commonroad:type"); explicit != "" {
		return lo.Map(strings.Split(explicit, ","), func(str string, _ int) LaneletType {
			return getLaneletType(strings.TrimSpace(str))
		})
	}
	types := []LaneletType{}
	if found, ok := laneletTypesBySubtype[tags.Find("subtype")]; ok {
		types = append(types, found...)
	}
	switch tags.Find("location") {
	case "urban":
		types = append(types, LANELET_URBAN)
	case "nonurban":
		types = append(types, LANELET_COUNTRY)
	}
	if len(types) == 0 {
		types = append(types, LANELET_UNKNOWN)
	}
	return lo.Uniq(types)
}

// laneletUsers returns one-way and bidirectional road users by 'participants:*' and 'one_way' tags
func laneletUsers(tags osm.Tags) ([]RoadUser, []RoadUser) {
	users := []RoadUser{}
	for _, tag := range tags {
		participant, ok := strings.CutPrefix(tag.Key, "participants:")
		if !ok || tag.Value != "yes" {
			continue
		}
		users = append(users, roadUsersByParticipant[participant]...)
	}
	if len(users) == 0 {
		switch tags.Find("subtype") {
		case "walkway", "shared_walkway", "crosswalk", "stairs":
			users = append(users, ROAD_USER_PEDESTRIAN)
		case "bicycle_lane":
			users = append(users, ROAD_USER_BICYCLE)
		default:
			users = append(users, roadUsersByParticipant["vehicle"]...)
		}
	}
	users = lo.Uniq(users)
	oneWay := tags.Find("one_way")
	if oneWay == "no" || (oneWay == "" && lo.Contains(users, ROAD_USER_PEDESTRIAN)) {
		return []RoadUser{}, users
	}
	return users, []RoadUser{}
}
