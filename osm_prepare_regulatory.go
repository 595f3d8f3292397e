package commonroad

import (
	"cmp"
	"slices"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/samber/lo"
)

// prepareRegulatoryElements creates traffic lights and signs referenced by lanelets and attaches them.
// Position is taken from the first 'refers' linestring, stop line from 'ref_line'
func (data *Lanelet2DataRaw) prepareRegulatoryElements(prepared []*laneletBorders, wayPoints func([]osm.NodeID) (orb.LineString, error)) ([]*TrafficLight, []*TrafficSign) {
	lightsByRelation := make(map[osm.RelationID]*TrafficLight)
	signsByRelation := make(map[osm.RelationID]*TrafficSign)
	stopLines := make(map[osm.RelationID]orb.LineString)

	ids := lo.Keys(data.regulatoryElements)
	slices.Sort(ids)
	for _, relationID := range ids {
		relation := data.regulatoryElements[relationID]
		var refers, refLine orb.LineString
		var refersTags osm.Tags
		for _, member := range relation.Members {
			if member.Type != osm.TypeWay {
				continue
			}
			way, ok := data.ways[osm.WayID(member.Ref)]
			if !ok {
				continue
			}
			line, err := wayPoints(way.Nodes)
			if err != nil || len(line) == 0 {
				continue
			}
			switch member.Role {
			case "refers":
				if refers == nil {
					refers = line
					refersTags = way.Tags
				}
			case "ref_line":
				refLine = line
			}
		}
		if len(refLine) >= 2 {
			stopLines[relationID] = refLine
		}
		switch relation.Tags.Find("subtype") {
		case "traffic_light":
			light := &TrafficLight{
				ID:     TrafficLightID(relationID),
				Active: true,
			}
			if len(refers) > 0 {
				light.Position = lineCentroid(refers)
			}
			lightsByRelation[relationID] = light
		case "traffic_sign":
			sign := &TrafficSign{
				ID: TrafficSignID(relationID),
			}
			if len(refers) > 0 {
				sign.Position = refers[0]
			}
			typeID := refersTags.Find("subtype")
			if typeID == "" {
				typeID = relation.Tags.Find("sign_type")
			}
			if typeID != "" {
				sign.Elements = append(sign.Elements, TrafficSignElement{TypeID: typeID})
			}
			signsByRelation[relationID] = sign
		default:
			// Right of way and speed limits are not modelled
		}
	}

	for _, borders := range prepared {
		for _, member := range borders.relation.Members {
			if member.Type != osm.TypeRelation || member.Role != "regulatory_element" {
				continue
			}
			relationID := osm.RelationID(member.Ref)
			light, isLight := lightsByRelation[relationID]
			sign, isSign := signsByRelation[relationID]
			if !isLight && !isSign {
				continue
			}
			if isLight {
				borders.lanelet.AddTrafficLight(light)
			}
			if isSign {
				borders.lanelet.AddTrafficSign(sign)
			}
			line, ok := stopLines[relationID]
			if !ok {
				continue
			}
			stopLine := borders.lanelet.StopLine()
			if stopLine == nil {
				stopLine = &StopLine{Points: [2]orb.Point{line[0], line[len(line)-1]}}
				borders.lanelet.SetStopLine(stopLine)
			}
			if isLight {
				stopLine.TrafficLights = append(stopLine.TrafficLights, light)
			}
			if isSign {
				stopLine.TrafficSigns = append(stopLine.TrafficSigns, sign)
			}
		}
	}

	lights := lo.Values(lightsByRelation)
	slices.SortFunc(lights, func(a, b *TrafficLight) int { return cmp.Compare(a.ID, b.ID) })
	signs := lo.Values(signsByRelation)
	slices.SortFunc(signs, func(a, b *TrafficSign) int { return cmp.Compare(a.ID, b.ID) })
	return lights, signs
}

// lineCentroid returns mean of line vertices
func lineCentroid(line orb.LineString) orb.Point {
	var x, y float64
	for _, pt := range line {
		x += pt.X()
		y += pt.Y()
	}
	n := float64(len(line))
	return orb.Point{x / n, y / n}
}
