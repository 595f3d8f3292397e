package commonroad

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	geojson "github.com/paulmach/go.geojson"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// ExportToCSV writes lanelets, registered lanes and regulatory elements into
// '<base>_lanelets.csv', '<base>_lanes.csv' and '<base>_regulatory.csv'
func (net *RoadNetwork) ExportToCSV(fname string, format GeometryFormat) error {
	fnameParts := strings.Split(fname, ".csv")
	fnameLanelets := fnameParts[0] + "_lanelets.csv"
	fnameLanes := fnameParts[0] + "_lanes.csv"
	fnameRegulatory := fnameParts[0] + "_regulatory.csv"

	err := net.exportLaneletsToCSV(fnameLanelets, format)
	if err != nil {
		return errors.Wrap(err, "Can't export lanelets")
	}

	err = net.exportLanesToCSV(fnameLanes, format)
	if err != nil {
		return errors.Wrap(err, "Can't export lanes")
	}

	err = net.exportRegulatoryToCSV(fnameRegulatory, format)
	if err != nil {
		return errors.Wrap(err, "Can't export regulatory elements")
	}
	return nil
}

func joinStringers[T fmt.Stringer](items []T) string {
	return strings.Join(lo.Map(items, func(item T, _ int) string { return item.String() }), ",")
}

func joinIDs[T ~int64](ids []T) string {
	return strings.Join(lo.Map(ids, func(id T, _ int) string { return fmt.Sprintf("%d", id) }), ",")
}

func adjacencyToStrings(adjacency *Adjacency) (string, string) {
	if adjacency == nil || adjacency.Lanelet == nil {
		return "", ""
	}
	return fmt.Sprintf("%d", adjacency.Lanelet.ID), adjacency.Direction.String()
}

func (net *RoadNetwork) exportLaneletsToCSV(fname string, format GeometryFormat) error {
	file, err := os.Create(fname)
	if err != nil {
		return errors.Wrap(err, "Can't create file")
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()
	writer.Comma = ';'

	err = writer.Write([]string{"id", "lanelet_types", "users_one_way", "users_bidirectional", "predecessors", "successors", "adjacent_left", "adjacent_left_direction", "adjacent_right", "adjacent_right_direction", "length", "traffic_lights", "traffic_signs", "center_geom", "polygon_geom"})
	if err != nil {
		return errors.Wrap(err, "Can't write header")
	}

	for _, lanelet := range net.lanelets {
		leftID, leftDirection := adjacencyToStrings(lanelet.adjacentLeft)
		rightID, rightDirection := adjacencyToStrings(lanelet.adjacentRight)
		err = writer.Write([]string{
			fmt.Sprintf("%d", lanelet.ID),
			joinStringers(lanelet.laneletTypes),
			joinStringers(lanelet.usersOneWay),
			joinStringers(lanelet.usersBidirectional),
			joinIDs(laneletIDs(lanelet.predecessors)),
			joinIDs(laneletIDs(lanelet.successors)),
			leftID,
			leftDirection,
			rightID,
			rightDirection,
			fmt.Sprintf("%f", lanelet.Length()),
			joinIDs(lo.Map(lanelet.trafficLights, func(l *TrafficLight, _ int) TrafficLightID { return l.ID })),
			joinIDs(lo.Map(lanelet.trafficSigns, func(s *TrafficSign, _ int) TrafficSignID { return s.ID })),
			PrepareLinestring(lanelet.centerVertices, format),
			PreparePolygon(lanelet.outerPolygon, format),
		})
		if err != nil {
			return errors.Wrap(err, "Can't write lanelet")
		}
	}
	return nil
}

func (net *RoadNetwork) exportLanesToCSV(fname string, format GeometryFormat) error {
	file, err := os.Create(fname)
	if err != nil {
		return errors.Wrap(err, "Can't create file")
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()
	writer.Comma = ';'

	err = writer.Write([]string{"id", "lanelets", "lanelet_types", "length", "center_geom"})
	if err != nil {
		return errors.Wrap(err, "Can't write header")
	}

	for _, lane := range net.Lanes() {
		err = writer.Write([]string{
			fmt.Sprintf("%d", lane.ID),
			joinIDs(lane.ContainedLaneletIDs()),
			joinStringers(lane.LaneletTypes()),
			fmt.Sprintf("%f", lane.spanning.Length()),
			PrepareLinestring(lane.CenterVertices(), format),
		})
		if err != nil {
			return errors.Wrap(err, "Can't write lane")
		}
	}
	return nil
}

func lightCycleToString(light *TrafficLight) string {
	return strings.Join(lo.Map(light.Cycle, func(element TrafficLightCycleElement, _ int) string {
		return fmt.Sprintf("%s:%d", element.Color, element.Duration)
	}), ",")
}

func signElementsToString(sign *TrafficSign) string {
	return strings.Join(lo.Map(sign.Elements, func(element TrafficSignElement, _ int) string { return element.TypeID }), ",")
}

func (net *RoadNetwork) exportRegulatoryToCSV(fname string, format GeometryFormat) error {
	file, err := os.Create(fname)
	if err != nil {
		return errors.Wrap(err, "Can't create file")
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()
	writer.Comma = ';'

	err = writer.Write([]string{"kind", "id", "elements", "active", "geom"})
	if err != nil {
		return errors.Wrap(err, "Can't write header")
	}

	for _, light := range net.trafficLights {
		err = writer.Write([]string{
			"traffic_light",
			fmt.Sprintf("%d", light.ID),
			lightCycleToString(light),
			fmt.Sprintf("%t", light.Active),
			PreparePoint(light.Position, format),
		})
		if err != nil {
			return errors.Wrap(err, "Can't write traffic light")
		}
	}
	for _, sign := range net.trafficSigns {
		err = writer.Write([]string{
			"traffic_sign",
			fmt.Sprintf("%d", sign.ID),
			signElementsToString(sign),
			fmt.Sprintf("%t", !sign.Virtual),
			PreparePoint(sign.Position, format),
		})
		if err != nil {
			return errors.Wrap(err, "Can't write traffic sign")
		}
	}
	return nil
}

// ToGeoJSON returns feature collection of lanelet polygons, center lines of registered lanes
// and positions of traffic lights and signs
func (net *RoadNetwork) ToGeoJSON() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, lanelet := range net.lanelets {
		feature := geojson.NewPolygonFeature([][][]float64{lineToCoordinates(lanelet.outerPolygon)})
		feature.SetProperty("kind", "lanelet")
		feature.SetProperty("id", int64(lanelet.ID))
		feature.SetProperty("lanelet_types", joinStringers(lanelet.laneletTypes))
		feature.SetProperty("successors", laneletIDs(lanelet.successors))
		fc.AddFeature(feature)
	}
	for _, lane := range net.Lanes() {
		feature := geojson.NewLineStringFeature(lineToCoordinates(lane.CenterVertices()))
		feature.SetProperty("kind", "lane")
		feature.SetProperty("id", int64(lane.ID))
		feature.SetProperty("lanelets", lane.ContainedLaneletIDs())
		fc.AddFeature(feature)
	}
	for _, light := range net.trafficLights {
		feature := geojson.NewPointFeature([]float64{light.Position.X(), light.Position.Y()})
		feature.SetProperty("kind", "traffic_light")
		feature.SetProperty("id", int64(light.ID))
		feature.SetProperty("cycle", lightCycleToString(light))
		fc.AddFeature(feature)
	}
	for _, sign := range net.trafficSigns {
		feature := geojson.NewPointFeature([]float64{sign.Position.X(), sign.Position.Y()})
		feature.SetProperty("kind", "traffic_sign")
		feature.SetProperty("id", int64(sign.ID))
		feature.SetProperty("elements", signElementsToString(sign))
		fc.AddFeature(feature)
	}
	return fc
}
