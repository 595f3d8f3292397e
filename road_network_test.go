package commonroad

import (
	"encoding/csv"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChainNetwork(t *testing.T, options ...func(*RoadNetwork)) *RoadNetwork {
	t.Helper()
	a, b, c := newChain(t)
	net, err := NewRoadNetwork([]*Lanelet{a, b, c}, options...)
	require.NoError(t, err)
	return net
}

func TestRoadNetworkDuplicateID(t *testing.T) {
	a := newStraightLanelet(t, 1, 0, 10, 0)
	b := newStraightLanelet(t, 1, 10, 20, 0)
	_, err := NewRoadNetwork([]*Lanelet{a, b})
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestFindLaneletByID(t *testing.T) {
	net := newChainNetwork(t, WithCountry("DEU"))
	assert.Equal(t, "DEU", net.Country())
	lanelet, err := net.FindLaneletByID(2)
	require.NoError(t, err)
	assert.Equal(t, LaneletID(2), lanelet.ID)

	_, err = net.FindLaneletByID(42)
	assert.ErrorIs(t, err, ErrLaneletNotFound)
}

func TestFindLaneletsByPosition(t *testing.T) {
	net := newChainNetwork(t)
	assert.Equal(t, []LaneletID{1}, laneletIDs(net.FindLaneletsByPosition(5, 0)))
	assert.Equal(t, []LaneletID{1, 2}, laneletIDs(net.FindLaneletsByPosition(10, 0.5)))
	assert.Empty(t, net.FindLaneletsByPosition(5, 3))
	assert.Empty(t, net.FindOccupiedLaneletsByShape(orb.Ring{}))
}

func TestFindOccupiedLaneletsByShapeMatchesBruteForce(t *testing.T) {
	lanelets := []*Lanelet{}
	for i := 0; i < 10; i++ {
		for j := 0; j < 5; j++ {
			id := LaneletID(i*5 + j + 1)
			lanelets = append(lanelets, newStraightLanelet(t, id, float64(10*i), float64(10*i+10), float64(3*j)))
		}
	}
	cfg := DefaultConfig()
	cfg.RTree.MinChildren = 2
	cfg.RTree.MaxChildren = 4
	net, err := NewRoadNetwork(lanelets, WithConfig(cfg))
	require.NoError(t, err)

	rnd := rand.New(rand.NewSource(42))
	for k := 0; k < 200; k++ {
		shape := PlaceShape(
			Rectangle{Length: 1 + 7*rnd.Float64(), Width: 1 + 3*rnd.Float64()},
			-5+110*rnd.Float64(),
			-5+22*rnd.Float64(),
			2*math.Pi*rnd.Float64(),
		)
		expected := []LaneletID{}
		for _, lanelet := range lanelets {
			if lanelet.CheckIntersection(shape, PARTIALLY_CONTAINED) {
				expected = append(expected, lanelet.ID)
			}
		}
		assert.Equal(t, expected, laneletIDs(net.FindOccupiedLaneletsByShape(shape)), "shape %v", shape)
	}
}

func TestCreateLanesChain(t *testing.T) {
	net := newChainNetwork(t)
	lanes, err := net.CreateLanes()
	require.NoError(t, err)
	require.Len(t, lanes, 1)
	assert.Equal(t, LaneID(4), lanes[0].ID)
	assert.Equal(t, []LaneletID{1, 2, 3}, lanes[0].ContainedLaneletIDs())

	found, err := net.FindLaneByID(4)
	require.NoError(t, err)
	assert.Same(t, lanes[0], found)
	_, err = net.FindLaneByID(5)
	assert.ErrorIs(t, err, ErrLaneNotFound)

	assert.Len(t, net.FindLanesByBaseLanelet(1), 1)
	assert.Empty(t, net.FindLanesByBaseLanelet(2))
	assert.Len(t, net.FindLanesByContainedLanelet(3), 1)
}

func TestCreateLanesFork(t *testing.T) {
	a := newStraightLanelet(t, 1, 0, 10, 0)
	b := newStraightLanelet(t, 2, 10, 20, 0)
	c := newStraightLanelet(t, 4, 10, 20, 4)
	connect(a, b)
	connect(a, c)
	net, err := NewRoadNetwork([]*Lanelet{a, b, c})
	require.NoError(t, err)

	lanes, err := net.CreateLanes()
	require.NoError(t, err)
	require.Len(t, lanes, 2)
	assert.Equal(t, LaneID(5), lanes[0].ID)
	assert.Equal(t, []LaneletID{1, 2}, lanes[0].ContainedLaneletIDs())
	assert.Equal(t, LaneID(6), lanes[1].ID)
	assert.Equal(t, []LaneletID{1, 4}, lanes[1].ContainedLaneletIDs())

	assert.Len(t, net.FindLanesByBaseLanelet(1), 2)
	byContained := net.FindLanesByContainedLanelet(4)
	require.Len(t, byContained, 1)
	assert.Equal(t, LaneID(6), byContained[0].ID)
}

func TestCreateLanesByClassifyingType(t *testing.T) {
	a := newStraightLanelet(t, 1, 0, 10, 0)
	b := newStraightLanelet(t, 2, 10, 20, 0)
	c, err := NewLanelet(3, orb.LineString{{20, 1}, {30, 1}}, orb.LineString{{20, -1}, {30, -1}}, []LaneletType{LANELET_MAIN_CARRIAGE_WAY})
	require.NoError(t, err)
	border, err := NewLanelet(9, orb.LineString{{0, 3}, {10, 3}}, orb.LineString{{0, 1}, {10, 1}}, []LaneletType{LANELET_BORDER})
	require.NoError(t, err)
	connect(a, b)
	connect(b, c)
	net, err := NewRoadNetwork([]*Lanelet{a, b, c, border})
	require.NoError(t, err)

	lanes, err := net.CreateLanes()
	require.NoError(t, err)
	require.Len(t, lanes, 2)
	assert.Equal(t, []LaneletID{1, 2}, lanes[0].ContainedLaneletIDs())
	assert.Equal(t, []LaneletID{3}, lanes[1].ContainedLaneletIDs())
	assert.Empty(t, net.FindLanesByContainedLanelet(9))
}

func TestCreateLanesMaxDepth(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Lanes.MaxDepth = 2
	net := newChainNetwork(t, WithConfig(cfg))
	lanes, err := net.CreateLanes()
	require.NoError(t, err)
	require.Len(t, lanes, 2)
	assert.Equal(t, []LaneletID{1, 2}, lanes[0].ContainedLaneletIDs())
	assert.Equal(t, []LaneletID{3}, lanes[1].ContainedLaneletIDs())
}

func TestCreateLanesOnCycle(t *testing.T) {
	a := newStraightLanelet(t, 1, 0, 10, 0)
	b := newStraightLanelet(t, 2, 10, 20, 0)
	connect(a, b)
	connect(b, a)
	net, err := NewRoadNetwork([]*Lanelet{b, a})
	require.NoError(t, err)
	lanes, err := net.CreateLanes()
	require.NoError(t, err)
	require.Len(t, lanes, 1)
	assert.Equal(t, []LaneletID{1, 2}, lanes[0].ContainedLaneletIDs())
}

func TestAddLanesIsIdempotent(t *testing.T) {
	net := newChainNetwork(t)
	lanes, err := net.CreateLanes()
	require.NoError(t, err)
	a, _ := net.FindLaneletByID(1)
	b, _ := net.FindLaneletByID(2)
	c, _ := net.FindLaneletByID(3)

	duplicate, err := NewLane([]*Lanelet{a, b, c})
	require.NoError(t, err)
	registered := net.AddLanes([]*Lane{duplicate}, 2)
	require.Len(t, registered, 1)
	assert.Same(t, lanes[0], registered[0])
	assert.Len(t, net.Lanes(), 1)
	assert.Len(t, net.FindLanesByBaseLanelet(2), 1)

	tail, err := NewLane([]*Lanelet{b, c})
	require.NoError(t, err)
	registered = net.AddLanes([]*Lane{tail}, 2)
	require.Len(t, registered, 1)
	assert.Equal(t, LaneID(5), registered[0].ID)
	assert.Len(t, net.Lanes(), 2)
	assert.Len(t, net.FindLanesByBaseLanelet(2), 2)
}

func TestCombineLaneletAndSuccessorsToLanes(t *testing.T) {
	a, b, c := newChain(t)
	d := newStraightLanelet(t, 4, 10, 20, 4)
	connect(a, d)
	chains := CombineLaneletAndSuccessorsToLanes(a, LANELET_URBAN, 0)
	require.Len(t, chains, 2)
	assert.Equal(t, []LaneletID{1, 2, 3}, laneletIDs(chains[0]))
	assert.Equal(t, []LaneletID{1, 4}, laneletIDs(chains[1]))

	assert.Equal(t, [][]*Lanelet{{b, c}}, CombineLaneletAndSuccessorsToLanes(b, LANELET_URBAN, 0))
	assert.Equal(t, [][]*Lanelet{{c}}, CombineLaneletAndSuccessorsToLanes(c, LANELET_URBAN, 0))
}

func newGraphNetwork(t *testing.T) *RoadNetwork {
	t.Helper()
	a, b, c := newChain(t)
	left := newStraightLanelet(t, 5, 10, 20, 2)
	leftNext := newStraightLanelet(t, 6, 20, 30, 2)
	connect(left, leftNext)
	b.SetLeftAdjacent(left, DRIVING_DIRECTION_SAME)
	left.SetRightAdjacent(b, DRIVING_DIRECTION_SAME)
	net, err := NewRoadNetwork([]*Lanelet{a, b, c, left, leftNext})
	require.NoError(t, err)
	return net
}

func TestLaneletGraphFindPaths(t *testing.T) {
	net := newGraphNetwork(t)
	graph, err := net.LaneletGraph()
	require.NoError(t, err)

	assert.Equal(t, [][]LaneletID{{1, 2, 3}}, graph.FindPaths(1, 3, false))
	assert.Empty(t, graph.FindPaths(1, 6, false))
	assert.Equal(t, [][]LaneletID{{1, 2, 5, 6}}, graph.FindPaths(1, 6, true))
	assert.Equal(t, [][]LaneletID{{1, 2, 3}}, graph.FindPaths(1, 3, true))
	assert.Equal(t, [][]LaneletID{{5, 2, 3}}, graph.FindPaths(5, 3, true))
	assert.Empty(t, graph.FindPaths(99, 3, true))
}

func TestLaneletGraphShortestPath(t *testing.T) {
	net := newGraphNetwork(t)
	graph, err := net.LaneletGraph()
	require.NoError(t, err)

	path, cost, err := graph.ShortestPath(1, 3)
	require.NoError(t, err)
	assert.Equal(t, []LaneletID{1, 2, 3}, path)
	assert.InDelta(t, 20.0, cost, 1e-6)

	path, cost, err = graph.ShortestPath(2, 2)
	require.NoError(t, err)
	assert.Equal(t, []LaneletID{2}, path)
	assert.Equal(t, 0.0, cost)

	_, _, err = graph.ShortestPath(3, 1)
	assert.ErrorIs(t, err, ErrNoPath)
	_, _, err = graph.ShortestPath(1, 99)
	assert.ErrorIs(t, err, ErrLaneletNotFound)
}

func TestIntersection(t *testing.T) {
	incoming := newStraightLanelet(t, 1, 0, 10, 0)
	straight := newStraightLanelet(t, 2, 10, 20, 0)
	left, err := NewLaneletFromCenterLine(3, orb.LineString{{10, 0}, {10, 10}}, 2, []LaneletType{LANELET_URBAN})
	require.NoError(t, err)
	right, err := NewLaneletFromCenterLine(4, orb.LineString{{10, 0}, {10, -10}}, 2, []LaneletType{LANELET_URBAN})
	require.NoError(t, err)
	crossing, err := NewLaneletFromCenterLine(5, orb.LineString{{0, 5}, {0, -5}}, 2, []LaneletType{LANELET_CROSSWALK})
	require.NoError(t, err)
	connect(incoming, straight)
	connect(incoming, left)
	connect(incoming, right)

	group := NewIncomingGroup(100, []*Lanelet{incoming})
	assert.Equal(t, []LaneletID{2}, laneletIDs(group.OutgoingStraight))
	assert.Equal(t, []LaneletID{3}, laneletIDs(group.OutgoingLeft))
	assert.Equal(t, []LaneletID{4}, laneletIDs(group.OutgoingRight))

	intersection := NewIntersection(200, []*IncomingGroup{group}, []*Lanelet{crossing})
	assert.True(t, left.HasLaneletType(LANELET_INTERSECTION))
	assert.False(t, incoming.HasLaneletType(LANELET_INTERSECTION))
	assert.Equal(t, []LaneletID{2, 3, 4}, laneletIDs(intersection.MemberLanelets()))

	net, err := NewRoadNetwork(
		[]*Lanelet{incoming, straight, left, right, crossing},
		WithIntersections([]*Intersection{intersection}),
	)
	require.NoError(t, err)

	found, err := net.FindIntersectionByID(200)
	require.NoError(t, err)
	assert.Same(t, intersection, found)
	_, err = net.FindIntersectionByID(201)
	assert.ErrorIs(t, err, ErrIntersectionNotFound)

	assert.Len(t, net.FindIntersectionsByLanelet(5), 1)
	assert.Len(t, net.FindIntersectionsByLanelet(3), 1)
	groupByLanelet, err := net.IncomingGroupByLanelet(1)
	require.NoError(t, err)
	assert.Same(t, group, groupByLanelet)
	_, err = net.IncomingGroupByLanelet(2)
	assert.ErrorIs(t, err, ErrIntersectionNotFound)
}

func TestTurnDirection(t *testing.T) {
	incoming := newStraightLanelet(t, 1, 0, 10, 0)
	back, err := NewLaneletFromCenterLine(2, orb.LineString{{10, 0}, {0, 0.5}}, 2, []LaneletType{LANELET_URBAN})
	require.NoError(t, err)
	assert.Equal(t, TURN_U_TURN, TurnDirectionBetween(incoming, back))
	assert.Equal(t, "u_turn", TURN_U_TURN.String())
}

func TestRegulatoryElementLookup(t *testing.T) {
	light := &TrafficLight{ID: 10, Active: true}
	sign := &TrafficSign{ID: 20}
	net := newChainNetwork(t, WithTrafficLights([]*TrafficLight{light}), WithTrafficSigns([]*TrafficSign{sign}))

	foundLight, err := net.FindTrafficLightByID(10)
	require.NoError(t, err)
	assert.Same(t, light, foundLight)
	_, err = net.FindTrafficLightByID(11)
	assert.ErrorIs(t, err, ErrTrafficLightNotFound)

	foundSign, err := net.FindTrafficSignByID(20)
	require.NoError(t, err)
	assert.Same(t, sign, foundSign)
	_, err = net.FindTrafficSignByID(21)
	assert.ErrorIs(t, err, ErrTrafficSignNotFound)
}

func TestExportToCSV(t *testing.T) {
	net := newChainNetwork(t)
	_, err := net.CreateLanes()
	require.NoError(t, err)

	base := filepath.Join(t.TempDir(), "network.csv")
	err = net.ExportToCSV(base, GEOMETRY_FORMAT_WKT)
	require.NoError(t, err)

	readRows := func(fname string) [][]string {
		file, err := os.Open(fname)
		require.NoError(t, err)
		defer file.Close()
		reader := csv.NewReader(file)
		reader.Comma = ';'
		rows, err := reader.ReadAll()
		require.NoError(t, err)
		return rows
	}

	lanelets := readRows(filepath.Join(filepath.Dir(base), "network_lanelets.csv"))
	require.Len(t, lanelets, 4)
	assert.Equal(t, "id", lanelets[0][0])
	assert.Equal(t, "1", lanelets[1][0])
	assert.Equal(t, "urban", lanelets[1][1])
	assert.Equal(t, "2", lanelets[1][5])
	assert.Equal(t, "10.000000", lanelets[1][10])
	assert.True(t, strings.HasPrefix(lanelets[1][13], "LINESTRING"))
	assert.True(t, strings.HasPrefix(lanelets[1][14], "POLYGON"))

	lanes := readRows(filepath.Join(filepath.Dir(base), "network_lanes.csv"))
	require.Len(t, lanes, 2)
	assert.Equal(t, []string{"4", "1,2,3", "urban", "30.000000"}, lanes[1][:4])
}

func TestToGeoJSON(t *testing.T) {
	net := newChainNetwork(t)
	_, err := net.CreateLanes()
	require.NoError(t, err)
	fc := net.ToGeoJSON()
	require.Len(t, fc.Features, 4)
	assert.Equal(t, "lanelet", fc.Features[0].Properties["kind"])
	assert.True(t, fc.Features[0].Geometry.IsPolygon())
	assert.Equal(t, "lane", fc.Features[3].Properties["kind"])
	assert.True(t, fc.Features[3].Geometry.IsLineString())
}

func newRegulatoryNetwork(t *testing.T) *RoadNetwork {
	t.Helper()
	light := &TrafficLight{
		ID:       7,
		Position: orb.Point{12, 5.5},
		Cycle:    []TrafficLightCycleElement{{Color: TRAFFIC_LIGHT_RED, Duration: 10}, {Color: TRAFFIC_LIGHT_GREEN, Duration: 5}},
		Active:   true,
	}
	sign := &TrafficSign{
		ID:       8,
		Elements: []TrafficSignElement{{TypeID: "de206"}},
		Position: orb.Point{9, -2},
	}
	return newChainNetwork(t, WithTrafficLights([]*TrafficLight{light}), WithTrafficSigns([]*TrafficSign{sign}))
}

func TestExportRegulatoryElements(t *testing.T) {
	net := newRegulatoryNetwork(t)
	base := filepath.Join(t.TempDir(), "network.csv")
	require.NoError(t, net.ExportToCSV(base, GEOMETRY_FORMAT_WKT))

	file, err := os.Open(filepath.Join(filepath.Dir(base), "network_regulatory.csv"))
	require.NoError(t, err)
	defer file.Close()
	reader := csv.NewReader(file)
	reader.Comma = ';'
	rows, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"kind", "id", "elements", "active", "geom"}, rows[0])
	assert.Equal(t, []string{"traffic_light", "7", "red:10,green:5", "true"}, rows[1][:4])
	assert.True(t, strings.HasPrefix(rows[1][4], "POINT"))
	assert.Equal(t, []string{"traffic_sign", "8", "de206", "true"}, rows[2][:4])
	assert.True(t, strings.HasPrefix(rows[2][4], "POINT"))
}

func TestToGeoJSONRegulatoryElements(t *testing.T) {
	net := newRegulatoryNetwork(t)
	fc := net.ToGeoJSON()
	// No lanes were created: 3 lanelets, 1 light, 1 sign
	require.Len(t, fc.Features, 5)
	light := fc.Features[3]
	assert.Equal(t, "traffic_light", light.Properties["kind"])
	require.True(t, light.Geometry.IsPoint())
	assert.Equal(t, []float64{12, 5.5}, light.Geometry.Point)
	sign := fc.Features[4]
	assert.Equal(t, "traffic_sign", sign.Properties["kind"])
	assert.Equal(t, "de206", sign.Properties["elements"])
}

func TestPreparePoint(t *testing.T) {
	pt := orb.Point{9, -2}
	assert.True(t, strings.HasPrefix(PreparePoint(pt, GEOMETRY_FORMAT_WKT), "POINT"))
	assert.Contains(t, PreparePoint(pt, GEOMETRY_FORMAT_GEOJSON), `"Point"`)
	decoded, err := decodePolyline(PreparePoint(pt, GEOMETRY_FORMAT_POLYLINE))
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	assert.InDelta(t, 9.0, decoded[0].X(), 1e-5)
	assert.InDelta(t, -2.0, decoded[0].Y(), 1e-5)
}

func TestSortLaneletsExtremeIDs(t *testing.T) {
	lanelets := []*Lanelet{{ID: math.MaxInt64}, {ID: -2}, {ID: 5}, {ID: math.MinInt64}}
	sortLanelets(lanelets)
	assert.Equal(t, []LaneletID{math.MinInt64, -2, 5, math.MaxInt64}, laneletIDs(lanelets))
}
