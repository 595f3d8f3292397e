package commonroad

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLanelet2 = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6" generator="test">
  <node id="1" lat="48.0" lon="11.0"><tag k="local_x" v="0"/><tag k="local_y" v="1"/></node>
  <node id="2" lat="48.0" lon="11.0"><tag k="local_x" v="10"/><tag k="local_y" v="1"/></node>
  <node id="3" lat="48.0" lon="11.0"><tag k="local_x" v="0"/><tag k="local_y" v="-1"/></node>
  <node id="4" lat="48.0" lon="11.0"><tag k="local_x" v="10"/><tag k="local_y" v="-1"/></node>
  <node id="5" lat="48.0" lon="11.0"><tag k="local_x" v="20"/><tag k="local_y" v="1"/></node>
  <node id="6" lat="48.0" lon="11.0"><tag k="local_x" v="20"/><tag k="local_y" v="-1"/></node>
  <node id="7" lat="48.0" lon="11.0"><tag k="local_x" v="0"/><tag k="local_y" v="3"/></node>
  <node id="8" lat="48.0" lon="11.0"><tag k="local_x" v="10"/><tag k="local_y" v="3"/></node>
  <node id="9" lat="48.0" lon="11.0"><tag k="local_x" v="10"/><tag k="local_y" v="3"/></node>
  <node id="10" lat="48.0" lon="11.0"><tag k="local_x" v="20"/><tag k="local_y" v="3"/></node>
  <node id="11" lat="48.0" lon="11.0"><tag k="local_x" v="12"/><tag k="local_y" v="5"/></node>
  <node id="12" lat="48.0" lon="11.0"><tag k="local_x" v="12"/><tag k="local_y" v="6"/></node>
  <node id="13" lat="48.0" lon="11.0"><tag k="local_x" v="9"/><tag k="local_y" v="-2"/></node>
  <way id="1001"><nd ref="1"/><nd ref="2"/><tag k="type" v="line_thin"/></way>
  <way id="1002"><nd ref="4"/><nd ref="3"/><tag k="type" v="line_thin"/></way>
  <way id="1003"><nd ref="2"/><nd ref="5"/><tag k="type" v="line_thin"/></way>
  <way id="1004"><nd ref="4"/><nd ref="6"/><tag k="type" v="line_thin"/></way>
  <way id="1005"><nd ref="7"/><nd ref="8"/><tag k="type" v="curbstone"/></way>
  <way id="1006"><nd ref="9"/><nd ref="10"/><tag k="type" v="curbstone"/></way>
  <way id="1010"><nd ref="11"/><nd ref="12"/><tag k="type" v="traffic_light"/></way>
  <way id="1011"><nd ref="2"/><nd ref="4"/><tag k="type" v="stop_line"/></way>
  <way id="1012"><nd ref="13"/><tag k="type" v="traffic_sign"/><tag k="subtype" v="de206"/></way>
  <relation id="100">
    <member type="way" ref="1001" role="left"/>
    <member type="way" ref="1002" role="right"/>
    <member type="relation" ref="200" role="regulatory_element"/>
    <tag k="type" v="lanelet"/><tag k="subtype" v="road"/><tag k="location" v="urban"/><tag k="one_way" v="yes"/>
  </relation>
  <relation id="101">
    <member type="way" ref="1003" role="left"/>
    <member type="way" ref="1004" role="right"/>
    <member type="relation" ref="201" role="regulatory_element"/>
    <tag k="type" v="lanelet"/><tag k="subtype" v="road"/><tag k="location" v="urban"/>
  </relation>
  <relation id="102">
    <member type="way" ref="1005" role="left"/>
    <member type="way" ref="1001" role="right"/>
    <tag k="type" v="lanelet"/><tag k="commonroad:type" v="mainCarriageWay, urban"/>
  </relation>
  <relation id="103">
    <member type="way" ref="1003" role="left"/>
    <member type="way" ref="1006" role="right"/>
    <tag k="type" v="lanelet"/><tag k="subtype" v="road"/><tag k="one_way" v="no"/>
  </relation>
  <relation id="104">
    <member type="way" ref="1005" role="left"/>
    <tag k="type" v="lanelet"/><tag k="subtype" v="road"/>
  </relation>
  <relation id="200">
    <member type="way" ref="1010" role="refers"/>
    <member type="way" ref="1011" role="ref_line"/>
    <tag k="type" v="regulatory_element"/><tag k="subtype" v="traffic_light"/>
  </relation>
  <relation id="201">
    <member type="way" ref="1012" role="refers"/>
    <tag k="type" v="regulatory_element"/><tag k="subtype" v="traffic_sign"/>
  </relation>
  <relation id="300">
    <member type="way" ref="1005" role="outer"/>
    <tag k="type" v="multipolygon"/>
  </relation>
</osm>
`

func TestReadLanelet2Topology(t *testing.T) {
	parser := NewParser("sample.osm", WithParserCountry("DEU"))
	net, err := parser.ReadLanelet2(strings.NewReader(sampleLanelet2), ".osm")
	require.NoError(t, err)
	assert.Equal(t, "DEU", net.Country())

	// Relation without right border is skipped
	require.Equal(t, []LaneletID{100, 101, 102, 103}, laneletIDs(net.Lanelets()))

	first, err := net.FindLaneletByID(100)
	require.NoError(t, err)
	assertLineInDelta(t, orb.LineString{{0, 0}, {10, 0}}, first.CenterVertices())
	// Inverted right border is aligned with the left one
	assertLineInDelta(t, orb.LineString{{0, -1}, {10, -1}}, first.RightBorderVertices())
	assert.Equal(t, []LaneletID{101}, laneletIDs(first.Successors()))
	assert.Empty(t, first.Predecessors())

	second, err := net.FindLaneletByID(101)
	require.NoError(t, err)
	assert.Equal(t, []LaneletID{100}, laneletIDs(second.Predecessors()))

	require.NotNil(t, first.AdjacentLeft())
	assert.Equal(t, LaneletID(102), first.AdjacentLeft().Lanelet.ID)
	assert.Equal(t, DRIVING_DIRECTION_SAME, first.AdjacentLeft().Direction)
	left, err := net.FindLaneletByID(102)
	require.NoError(t, err)
	require.NotNil(t, left.AdjacentRight())
	assert.Equal(t, LaneletID(100), left.AdjacentRight().Lanelet.ID)

	require.NotNil(t, second.AdjacentLeft())
	assert.Equal(t, LaneletID(103), second.AdjacentLeft().Lanelet.ID)
	assert.Equal(t, DRIVING_DIRECTION_OPPOSITE, second.AdjacentLeft().Direction)
	opposite, err := net.FindLaneletByID(103)
	require.NoError(t, err)
	require.NotNil(t, opposite.AdjacentLeft())
	assert.Equal(t, LaneletID(101), opposite.AdjacentLeft().Lanelet.ID)
}

func TestReadLanelet2Attributes(t *testing.T) {
	net, err := NewParser("sample.osm").ReadLanelet2(strings.NewReader(sampleLanelet2), ".osm")
	require.NoError(t, err)

	first, err := net.FindLaneletByID(100)
	require.NoError(t, err)
	assert.Equal(t, []LaneletType{LANELET_URBAN}, first.LaneletTypes())
	assert.True(t, first.IsOneWayFor(ROAD_USER_CAR))
	assert.Empty(t, first.UsersBidirectional())

	left, err := net.FindLaneletByID(102)
	require.NoError(t, err)
	assert.Equal(t, []LaneletType{LANELET_MAIN_CARRIAGE_WAY, LANELET_URBAN}, left.LaneletTypes())

	opposite, err := net.FindLaneletByID(103)
	require.NoError(t, err)
	assert.Empty(t, opposite.UsersOneWay())
	assert.Contains(t, opposite.UsersBidirectional(), ROAD_USER_CAR)
}

func TestReadLanelet2RegulatoryElements(t *testing.T) {
	net, err := NewParser("sample.osm").ReadLanelet2(strings.NewReader(sampleLanelet2), ".osm")
	require.NoError(t, err)

	require.Len(t, net.TrafficLights(), 1)
	light, err := net.FindTrafficLightByID(200)
	require.NoError(t, err)
	assert.InDelta(t, 12.0, light.Position.X(), 1e-9)
	assert.InDelta(t, 5.5, light.Position.Y(), 1e-9)
	assert.True(t, light.Active)

	first, err := net.FindLaneletByID(100)
	require.NoError(t, err)
	require.Len(t, first.TrafficLights(), 1)
	assert.Same(t, light, first.TrafficLights()[0])
	stopLine := first.StopLine()
	require.NotNil(t, stopLine)
	assert.Equal(t, [2]orb.Point{{10, 1}, {10, -1}}, stopLine.Points)
	assert.Equal(t, []*TrafficLight{light}, stopLine.TrafficLights)

	sign, err := net.FindTrafficSignByID(201)
	require.NoError(t, err)
	assert.True(t, sign.HasElement("de206"))
	assert.Equal(t, orb.Point{9, -2}, sign.Position)
	second, err := net.FindLaneletByID(101)
	require.NoError(t, err)
	assert.Equal(t, []*TrafficSign{sign}, second.TrafficSigns())
	assert.Nil(t, second.StopLine())
}

func TestReadLanelet2Lanes(t *testing.T) {
	net, err := NewParser("sample.osm").ReadLanelet2(strings.NewReader(sampleLanelet2), ".osm")
	require.NoError(t, err)
	_, err = net.CreateLanes()
	require.NoError(t, err)

	lanes := net.FindLanesByContainedLanelet(100)
	require.Len(t, lanes, 1)
	assert.Equal(t, []LaneletID{100, 101}, lanes[0].ContainedLaneletIDs())

	graph, err := net.LaneletGraph()
	require.NoError(t, err)
	path, cost, err := graph.ShortestPath(100, 101)
	require.NoError(t, err)
	assert.Equal(t, []LaneletID{100, 101}, path)
	assert.InDelta(t, 10.0, cost, 1e-6)
}

func TestReadLanelet2StartLaneletID(t *testing.T) {
	net, err := NewParser("sample.osm", WithStartLaneletID(1)).ReadLanelet2(strings.NewReader(sampleLanelet2), ".osm")
	require.NoError(t, err)
	assert.Equal(t, []LaneletID{1, 2, 3, 4}, laneletIDs(net.Lanelets()))
	first, err := net.FindLaneletByID(1)
	require.NoError(t, err)
	assert.Equal(t, []LaneletID{2}, laneletIDs(first.Successors()))
}

func TestReadRoadNetworkFromFile(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "map.osm")
	require.NoError(t, os.WriteFile(fname, []byte(sampleLanelet2), 0o600))

	net, err := NewParser(fname).ReadRoadNetwork()
	require.NoError(t, err)
	assert.Len(t, net.Lanelets(), 4)

	_, err = NewParser(filepath.Join(t.TempDir(), "missing.osm")).ReadRoadNetwork()
	assert.Error(t, err)

	_, err = NewParser("map.json").ReadLanelet2(strings.NewReader("{}"), ".json")
	assert.Error(t, err)
}

func TestReadLanelet2WithoutLocalCoordinates(t *testing.T) {
	const geodetic = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6">
  <node id="1" lat="48.00001" lon="11.0"/>
  <node id="2" lat="48.00001" lon="11.001"/>
  <node id="3" lat="47.99999" lon="11.0"/>
  <node id="4" lat="47.99999" lon="11.001"/>
  <way id="10"><nd ref="1"/><nd ref="2"/></way>
  <way id="11"><nd ref="3"/><nd ref="4"/></way>
  <relation id="20">
    <member type="way" ref="10" role="left"/>
    <member type="way" ref="11" role="right"/>
    <tag k="type" v="lanelet"/><tag k="subtype" v="road"/>
  </relation>
</osm>
`
	net, err := NewParser("geodetic.osm", WithOrigin(48.0, 11.0)).ReadLanelet2(strings.NewReader(geodetic), ".osm")
	require.NoError(t, err)
	lanelet, err := net.FindLaneletByID(20)
	require.NoError(t, err)

	// 0.001 degree of longitude at 48 degrees of latitude is about 74.5 meters
	assert.InDelta(t, 74.5, lanelet.Length(), 0.5)
	assert.InDelta(t, 2.2, lanelet.Width(10), 0.1)
	center := lanelet.CenterVertices()
	assert.InDelta(t, 0.0, center[0].X(), 1e-6)
	assert.InDelta(t, 0.0, center[0].Y(), 0.01)
}
