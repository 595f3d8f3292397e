package commonroad

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"
	"github.com/peterstace/simplefeatures/geom"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

type LaneletID int64

// Lanelet is an atomic directed road segment bounded by left and right borders.
//
// Center line, outer polygon and its bound are computed on construction.
// Orientation, path length and width series are computed on first use.
// Predecessors, successors and adjacent lanelets are references to peers, never owners
type Lanelet struct {
	ID LaneletID

	leftBorder     Border
	rightBorder    Border
	centerVertices orb.LineString
	outerPolygon   orb.Ring
	outerGeometry  geom.Geometry
	bound          orb.Bound

	predecessors  []*Lanelet
	successors    []*Lanelet
	adjacentLeft  *Adjacency
	adjacentRight *Adjacency

	laneletTypes       []LaneletType
	usersOneWay        []RoadUser
	usersBidirectional []RoadUser
	trafficLights      []*TrafficLight
	trafficSigns       []*TrafficSign
	stopLine           *StopLine

	simplifyTolerance float64

	derivedOnce sync.Once
	orientation []float64
	pathLength  []float64
	width       []float64
}

func (lanelet *Lanelet) String() string {
	types := lo.Map(lanelet.laneletTypes, func(t LaneletType, _ int) string { return t.String() })
	return fmt.Sprintf("Lanelet %d: vertices: %d, types: [%s], predecessors: %v, successors: %v",
		lanelet.ID,
		len(lanelet.centerVertices),
		strings.Join(types, ","),
		laneletIDs(lanelet.predecessors),
		laneletIDs(lanelet.successors),
	)
}

// NewLanelet creates lanelet from paired left and right borders.
// Borders must have the same number of vertices (at least two)
func NewLanelet(id LaneletID, leftBorder, rightBorder orb.LineString, laneletTypes []LaneletType, options ...func(*Lanelet)) (*Lanelet, error) {
	if len(leftBorder) != len(rightBorder) {
		return nil, errors.Wrapf(ErrLengthMismatch, "Can't create lanelet %d: left border has %d vertices, right border has %d", id, len(leftBorder), len(rightBorder))
	}
	if len(leftBorder) < 2 {
		return nil, errors.Wrapf(ErrEmptyPolyline, "Can't create lanelet %d: borders must have at least two vertices", id)
	}
	lanelet := &Lanelet{
		ID:                id,
		leftBorder:        newBorder(leftBorder),
		rightBorder:       newBorder(rightBorder),
		simplifyTolerance: defaultPolygonSimplifyTolerance,
	}
	for _, laneletType := range laneletTypes {
		lanelet.AddLaneletType(laneletType)
	}
	for _, option := range options {
		option(lanelet)
	}
	lanelet.createCenterVertices()
	err := lanelet.createOuterPolygon()
	if err != nil {
		return nil, err
	}
	return lanelet, nil
}

// NewLaneletFromCenterLine creates lanelet of constant width around given center line
func NewLaneletFromCenterLine(id LaneletID, centerLine orb.LineString, width float64, laneletTypes []LaneletType, options ...func(*Lanelet)) (*Lanelet, error) {
	if len(centerLine) < 2 {
		return nil, errors.Wrapf(ErrEmptyPolyline, "Can't create lanelet %d: center line must have at least two vertices", id)
	}
	return NewLanelet(id, OffsetPolyline(centerLine, width/2), OffsetPolyline(centerLine, -width/2), laneletTypes, options...)
}

func WithUsersOneWay(users []RoadUser) func(*Lanelet) {
	return func(lanelet *Lanelet) {
		lanelet.usersOneWay = lo.Uniq(users)
	}
}

func WithUsersBidirectional(users []RoadUser) func(*Lanelet) {
	return func(lanelet *Lanelet) {
		lanelet.usersBidirectional = lo.Uniq(users)
	}
}

func WithPredecessors(predecessors []*Lanelet) func(*Lanelet) {
	return func(lanelet *Lanelet) {
		for _, predecessor := range predecessors {
			lanelet.AddPredecessor(predecessor)
		}
	}
}

func WithSuccessors(successors []*Lanelet) func(*Lanelet) {
	return func(lanelet *Lanelet) {
		for _, successor := range successors {
			lanelet.AddSuccessor(successor)
		}
	}
}

func WithLaneletTrafficLights(lights []*TrafficLight) func(*Lanelet) {
	return func(lanelet *Lanelet) {
		for _, light := range lights {
			lanelet.AddTrafficLight(light)
		}
	}
}

func WithLaneletTrafficSigns(signs []*TrafficSign) func(*Lanelet) {
	return func(lanelet *Lanelet) {
		for _, sign := range signs {
			lanelet.AddTrafficSign(sign)
		}
	}
}

func WithStopLine(stopLine *StopLine) func(*Lanelet) {
	return func(lanelet *Lanelet) {
		lanelet.stopLine = stopLine
	}
}

func WithSimplifyTolerance(tolerance float64) func(*Lanelet) {
	return func(lanelet *Lanelet) {
		lanelet.simplifyTolerance = tolerance
	}
}

func (lanelet *Lanelet) createCenterVertices() {
	left := lanelet.leftBorder.vertices
	right := lanelet.rightBorder.vertices
	lanelet.centerVertices = make(orb.LineString, len(left))
	for i := range left {
		lanelet.centerVertices[i] = midpoint(left[i], right[i])
	}
}

// createOuterPolygon builds closed counter-clockwise polygon: left border forward and right border backward
func (lanelet *Lanelet) createOuterPolygon() error {
	left := lanelet.leftBorder.vertices
	right := lanelet.rightBorder.vertices
	pts := make([]orb.Point, 0, len(left)+len(right)+1)
	pts = append(pts, left...)
	pts = append(pts, reverseLine(right)...)
	ring := closeRing(pts)
	if lanelet.simplifyTolerance > 0 {
		simplified := simplify.DouglasPeucker(lanelet.simplifyTolerance).Ring(ring.Clone())
		if len(simplified) >= 4 {
			ring = simplified
		}
	}
	ring = orb.Ring(dedupeConsecutive(orb.LineString(ring), 0))
	lanelet.outerPolygon = correctRing(ring)
	lanelet.bound = lanelet.outerPolygon.Bound()
	outerGeometry, err := ringGeometry(lanelet.outerPolygon)
	if err != nil {
		return errors.Wrapf(err, "Can't prepare outer polygon of lanelet %d", lanelet.ID)
	}
	lanelet.outerGeometry = outerGeometry
	return nil
}

func (lanelet *Lanelet) computeDerived() {
	lanelet.derivedOnce.Do(func() {
		lanelet.orientation = Orientation(lanelet.centerVertices)
		lanelet.pathLength = PathLength(lanelet.centerVertices)
		// Borders are checked to be paired on construction
		lanelet.width, _ = WidthBetween(lanelet.leftBorder.vertices, lanelet.rightBorder.vertices)
	})
}

// CheckIntersection checks given closed shape against the outer polygon of the lanelet.
// Modes other than PARTIALLY_CONTAINED and COMPLETELY_CONTAINED never match
func (lanelet *Lanelet) CheckIntersection(shape orb.Ring, mode ContainmentType) bool {
	if !mode.IsValid() || len(shape) == 0 {
		return false
	}
	g, err := ringGeometry(shape)
	if err != nil {
		return false
	}
	return lanelet.checkGeometry(g, shape.Bound(), mode)
}

// checkGeometry is CheckIntersection for shape already converted to simple features geometry
func (lanelet *Lanelet) checkGeometry(shape geom.Geometry, shapeBound orb.Bound, mode ContainmentType) bool {
	if !lanelet.bound.Intersects(shapeBound) {
		return false
	}
	switch mode {
	case PARTIALLY_CONTAINED:
		return geom.Intersects(shape, lanelet.outerGeometry)
	case COMPLETELY_CONTAINED:
		return geometryCoveredBy(shape, lanelet.outerGeometry)
	}
	return false
}

// OrientationAtPosition returns heading of the center line at the center vertex nearest to given position
func (lanelet *Lanelet) OrientationAtPosition(x, y float64) (float64, error) {
	idx, err := NearestVertexIndex(lanelet.centerVertices, orb.Point{x, y})
	if err != nil {
		return 0, errors.Wrapf(err, "Can't evaluate orientation of lanelet %d", lanelet.ID)
	}
	from, to := idx, idx+1
	if idx == len(lanelet.centerVertices)-1 {
		from, to = idx-1, idx
	}
	a, b := lanelet.centerVertices[from], lanelet.centerVertices[to]
	return WrapToPi(math.Atan2(b.Y()-a.Y(), b.X()-a.X())), nil
}

// Width returns distance between borders at given longitudinal position along the center line
func (lanelet *Lanelet) Width(lonPosition float64) float64 {
	lanelet.computeDerived()
	// Series have the same non-zero length
	width, _ := Interpolate(lonPosition, lanelet.pathLength, lanelet.width)
	return width
}

// Orientation returns heading of center line at each center vertex
func (lanelet *Lanelet) Orientation() []float64 {
	lanelet.computeDerived()
	return lanelet.orientation
}

// PathLength returns accumulated length of center line at each center vertex
func (lanelet *Lanelet) PathLength() []float64 {
	lanelet.computeDerived()
	return lanelet.pathLength
}

// Length returns length of center line
func (lanelet *Lanelet) Length() float64 {
	pathLength := lanelet.PathLength()
	return pathLength[len(pathLength)-1]
}

func (lanelet *Lanelet) LeftBorder() Border {
	return lanelet.leftBorder
}

func (lanelet *Lanelet) RightBorder() Border {
	return lanelet.rightBorder
}

func (lanelet *Lanelet) LeftBorderVertices() orb.LineString {
	return lanelet.leftBorder.vertices
}

func (lanelet *Lanelet) RightBorderVertices() orb.LineString {
	return lanelet.rightBorder.vertices
}

func (lanelet *Lanelet) CenterVertices() orb.LineString {
	return lanelet.centerVertices
}

func (lanelet *Lanelet) OuterPolygon() orb.Ring {
	return lanelet.outerPolygon
}

func (lanelet *Lanelet) Bound() orb.Bound {
	return lanelet.bound
}

func (lanelet *Lanelet) Predecessors() []*Lanelet {
	return lanelet.predecessors
}

func (lanelet *Lanelet) Successors() []*Lanelet {
	return lanelet.successors
}

// AdjacentLeft returns left neighbour or nil
func (lanelet *Lanelet) AdjacentLeft() *Adjacency {
	return lanelet.adjacentLeft
}

// AdjacentRight returns right neighbour or nil
func (lanelet *Lanelet) AdjacentRight() *Adjacency {
	return lanelet.adjacentRight
}

func (lanelet *Lanelet) LaneletTypes() []LaneletType {
	return lanelet.laneletTypes
}

func (lanelet *Lanelet) UsersOneWay() []RoadUser {
	return lanelet.usersOneWay
}

func (lanelet *Lanelet) UsersBidirectional() []RoadUser {
	return lanelet.usersBidirectional
}

func (lanelet *Lanelet) TrafficLights() []*TrafficLight {
	return lanelet.trafficLights
}

func (lanelet *Lanelet) TrafficSigns() []*TrafficSign {
	return lanelet.trafficSigns
}

// StopLine returns stop line or nil
func (lanelet *Lanelet) StopLine() *StopLine {
	return lanelet.stopLine
}

func (lanelet *Lanelet) HasLaneletType(laneletType LaneletType) bool {
	return lo.Contains(lanelet.laneletTypes, laneletType)
}

func (lanelet *Lanelet) HasAnyLaneletType(laneletTypes ...LaneletType) bool {
	return lo.ContainsBy(laneletTypes, lanelet.HasLaneletType)
}

// IsOneWayFor checks if lanelet can be used by given road user in driving direction only
func (lanelet *Lanelet) IsOneWayFor(user RoadUser) bool {
	return lo.Contains(lanelet.usersOneWay, user)
}

// AddPredecessor appends predecessor unless it is already present
func (lanelet *Lanelet) AddPredecessor(predecessor *Lanelet) {
	if predecessor == nil || containsLanelet(lanelet.predecessors, predecessor.ID) {
		return
	}
	lanelet.predecessors = append(lanelet.predecessors, predecessor)
}

// AddSuccessor appends successor unless it is already present
func (lanelet *Lanelet) AddSuccessor(successor *Lanelet) {
	if successor == nil || containsLanelet(lanelet.successors, successor.ID) {
		return
	}
	lanelet.successors = append(lanelet.successors, successor)
}

// SetLeftAdjacent overwrites left neighbour
func (lanelet *Lanelet) SetLeftAdjacent(adjacent *Lanelet, direction DrivingDirection) {
	lanelet.adjacentLeft = &Adjacency{Lanelet: adjacent, Direction: direction}
}

// SetRightAdjacent overwrites right neighbour
func (lanelet *Lanelet) SetRightAdjacent(adjacent *Lanelet, direction DrivingDirection) {
	lanelet.adjacentRight = &Adjacency{Lanelet: adjacent, Direction: direction}
}

func (lanelet *Lanelet) AddLaneletType(laneletType LaneletType) {
	if lanelet.HasLaneletType(laneletType) {
		return
	}
	lanelet.laneletTypes = append(lanelet.laneletTypes, laneletType)
}

// ApplyIntersectionType marks lanelet as a part of an intersection
func (lanelet *Lanelet) ApplyIntersectionType() {
	lanelet.AddLaneletType(LANELET_INTERSECTION)
}

func (lanelet *Lanelet) AddTrafficLight(light *TrafficLight) {
	if light == nil || lo.ContainsBy(lanelet.trafficLights, func(l *TrafficLight) bool { return l.ID == light.ID }) {
		return
	}
	lanelet.trafficLights = append(lanelet.trafficLights, light)
}

func (lanelet *Lanelet) AddTrafficSign(sign *TrafficSign) {
	if sign == nil || lo.ContainsBy(lanelet.trafficSigns, func(s *TrafficSign) bool { return s.ID == sign.ID }) {
		return
	}
	lanelet.trafficSigns = append(lanelet.trafficSigns, sign)
}

func (lanelet *Lanelet) SetStopLine(stopLine *StopLine) {
	lanelet.stopLine = stopLine
}

func containsLanelet(lanelets []*Lanelet, id LaneletID) bool {
	return lo.ContainsBy(lanelets, func(l *Lanelet) bool { return l.ID == id })
}

func laneletIDs(lanelets []*Lanelet) []LaneletID {
	return lo.Map(lanelets, func(l *Lanelet, _ int) LaneletID { return l.ID })
}
