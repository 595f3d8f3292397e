package commonroad

import (
	"cmp"
	"fmt"
	"slices"
	"sync"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// laneRecord is registered lane with identifiers of lanelets which it was created from
type laneRecord struct {
	lane  *Lane
	seeds map[LaneletID]struct{}
}

// RoadNetwork owns lanelets, lanes, intersections and regulatory elements.
//
// Read-only queries (FindOccupiedLaneletsByShape, FindLaneletsByPosition, FindLaneletByID)
// are safe for concurrent use as long as topology of lanelets is not mutated meanwhile
type RoadNetwork struct {
	lanelets      []*Lanelet
	laneletsByID  map[LaneletID]*Lanelet
	country       string
	trafficSigns  []*TrafficSign
	trafficLights []*TrafficLight
	intersections []*Intersection

	cfg   *Config
	rtree *rtreego.Rtree

	lanesMu       sync.RWMutex
	laneRecords   map[string]*laneRecord
	lanes         []*Lane
	laneAllocator *IDAllocator
	lanesOnce     sync.Once

	graphOnce sync.Once
	graph     *LaneletGraph
	graphErr  error
}

func (net *RoadNetwork) String() string {
	net.lanesMu.RLock()
	defer net.lanesMu.RUnlock()
	return fmt.Sprintf(`
Road network:
	country: '%s'
	lanelets: %d
	lanes: %d
	intersections: %d
	traffic_lights: %d
	traffic_signs: %d
	`,
		net.country,
		len(net.lanelets),
		len(net.lanes),
		len(net.intersections),
		len(net.trafficLights),
		len(net.trafficSigns),
	)
}

// NewRoadNetwork indexes given lanelets. Identifiers of lanelets must be unique
func NewRoadNetwork(lanelets []*Lanelet, options ...func(*RoadNetwork)) (*RoadNetwork, error) {
	net := &RoadNetwork{
		lanelets:     slices.Clone(lanelets),
		laneletsByID: make(map[LaneletID]*Lanelet, len(lanelets)),
		cfg:          DefaultConfig(),
		laneRecords:  make(map[string]*laneRecord),
	}
	for _, option := range options {
		option(net)
	}
	maxID := LaneletID(0)
	for _, lanelet := range lanelets {
		if _, ok := net.laneletsByID[lanelet.ID]; ok {
			return nil, errors.Wrapf(ErrDuplicateID, "Can't create road network: lanelet %d", lanelet.ID)
		}
		net.laneletsByID[lanelet.ID] = lanelet
		maxID = max(maxID, lanelet.ID)
	}
	if net.laneAllocator == nil {
		net.laneAllocator = NewIDAllocator(int64(maxID) + 1)
	}
	tree, err := buildRTree(net.lanelets, net.cfg.RTree.MinChildren, net.cfg.RTree.MaxChildren)
	if err != nil {
		return nil, errors.Wrap(err, "Can't build spatial index")
	}
	net.rtree = tree
	return net, nil
}

func WithCountry(country string) func(*RoadNetwork) {
	return func(net *RoadNetwork) {
		net.country = country
	}
}

func WithTrafficSigns(signs []*TrafficSign) func(*RoadNetwork) {
	return func(net *RoadNetwork) {
		net.trafficSigns = signs
	}
}

func WithTrafficLights(lights []*TrafficLight) func(*RoadNetwork) {
	return func(net *RoadNetwork) {
		net.trafficLights = lights
	}
}

func WithIntersections(intersections []*Intersection) func(*RoadNetwork) {
	return func(net *RoadNetwork) {
		net.intersections = intersections
	}
}

// WithIDAllocator sets allocator for identifiers of lanes
func WithIDAllocator(allocator *IDAllocator) func(*RoadNetwork) {
	return func(net *RoadNetwork) {
		net.laneAllocator = allocator
	}
}

func WithConfig(cfg *Config) func(*RoadNetwork) {
	return func(net *RoadNetwork) {
		if cfg != nil {
			net.cfg = cfg
		}
	}
}

func (net *RoadNetwork) Lanelets() []*Lanelet {
	return net.lanelets
}

func (net *RoadNetwork) Country() string {
	return net.country
}

func (net *RoadNetwork) TrafficSigns() []*TrafficSign {
	return net.trafficSigns
}

func (net *RoadNetwork) TrafficLights() []*TrafficLight {
	return net.trafficLights
}

func (net *RoadNetwork) Intersections() []*Intersection {
	return net.intersections
}

func (net *RoadNetwork) Config() *Config {
	return net.cfg
}

// FindLaneletByID returns lanelet with given identifier or ErrLaneletNotFound
func (net *RoadNetwork) FindLaneletByID(id LaneletID) (*Lanelet, error) {
	lanelet, ok := net.laneletsByID[id]
	if !ok {
		return nil, errors.Wrapf(ErrLaneletNotFound, "Can't find lanelet %d", id)
	}
	return lanelet, nil
}

// FindOccupiedLaneletsByShape returns lanelets partially occupied by given shape, sorted by identifier.
// Candidates are found by bounds in R-tree first, then checked exactly against lanelet polygons
func (net *RoadNetwork) FindOccupiedLaneletsByShape(shape orb.Ring) []*Lanelet {
	if len(shape) == 0 {
		return []*Lanelet{}
	}
	candidates, err := searchBound(net.rtree, shape.Bound())
	if err != nil {
		// Padded rectangles always have positive sides
		return []*Lanelet{}
	}
	g, err := ringGeometry(shape)
	if err != nil {
		return []*Lanelet{}
	}
	shapeBound := shape.Bound()
	result := make([]*Lanelet, 0, len(candidates))
	for _, id := range candidates {
		lanelet := net.laneletsByID[id]
		if lanelet.checkGeometry(g, shapeBound, PARTIALLY_CONTAINED) {
			result = append(result, lanelet)
		}
	}
	sortLanelets(result)
	return result
}

// FindLaneletsByPosition returns lanelets containing given point
func (net *RoadNetwork) FindLaneletsByPosition(x, y float64) []*Lanelet {
	return net.FindOccupiedLaneletsByShape(pointRing(orb.Point{x, y}))
}

// AddLanes registers lanes created from given seed lanelet.
// Lanes are identified by set of contained lanelets: already registered lane is reused
// (and the seed is remembered for it), new one gets identifier from the allocator.
// Returns registered lanes in order of input
func (net *RoadNetwork) AddLanes(newLanes []*Lane, seedLaneletID LaneletID) []*Lane {
	net.lanesMu.Lock()
	defer net.lanesMu.Unlock()
	result := make([]*Lane, 0, len(newLanes))
	for _, lane := range newLanes {
		key := laneKey(lane.ContainedLaneletIDs())
		if record, ok := net.laneRecords[key]; ok {
			record.seeds[seedLaneletID] = struct{}{}
			result = append(result, record.lane)
			continue
		}
		lane.ID = LaneID(net.laneAllocator.Next())
		net.laneRecords[key] = &laneRecord{
			lane:  lane,
			seeds: map[LaneletID]struct{}{seedLaneletID: {}},
		}
		net.lanes = append(net.lanes, lane)
		result = append(result, lane)
	}
	return result
}

// Lanes returns registered lanes in order of registration
func (net *RoadNetwork) Lanes() []*Lane {
	net.lanesMu.RLock()
	defer net.lanesMu.RUnlock()
	return slices.Clone(net.lanes)
}

// FindLaneByID returns registered lane with given identifier or ErrLaneNotFound
func (net *RoadNetwork) FindLaneByID(id LaneID) (*Lane, error) {
	net.lanesMu.RLock()
	defer net.lanesMu.RUnlock()
	lane, ok := lo.Find(net.lanes, func(l *Lane) bool { return l.ID == id })
	if !ok {
		return nil, errors.Wrapf(ErrLaneNotFound, "Can't find lane %d", id)
	}
	return lane, nil
}

// FindLanesByBaseLanelet returns registered lanes which were created from given seed lanelet
func (net *RoadNetwork) FindLanesByBaseLanelet(id LaneletID) []*Lane {
	net.lanesMu.RLock()
	defer net.lanesMu.RUnlock()
	return lo.Filter(net.lanes, func(lane *Lane, _ int) bool {
		_, ok := net.laneRecords[laneKey(lane.ContainedLaneletIDs())].seeds[id]
		return ok
	})
}

// FindLanesByContainedLanelet returns registered lanes which contain given lanelet
func (net *RoadNetwork) FindLanesByContainedLanelet(id LaneletID) []*Lane {
	net.lanesMu.RLock()
	defer net.lanesMu.RUnlock()
	return lo.Filter(net.lanes, func(lane *Lane, _ int) bool {
		return lane.ContainsLanelet(id)
	})
}

// ensureLanes assembles lanes once if none were registered before
func (net *RoadNetwork) ensureLanes() error {
	var err error
	net.lanesOnce.Do(func() {
		net.lanesMu.RLock()
		empty := len(net.lanes) == 0
		net.lanesMu.RUnlock()
		if empty {
			_, err = net.CreateLanes()
		}
	})
	return err
}

// LaneletGraph returns topological graph of lanelets. Built on first use
func (net *RoadNetwork) LaneletGraph() (*LaneletGraph, error) {
	net.graphOnce.Do(func() {
		net.graph, net.graphErr = NewLaneletGraph(net.lanelets)
	})
	return net.graph, net.graphErr
}

func (net *RoadNetwork) FindTrafficLightByID(id TrafficLightID) (*TrafficLight, error) {
	light, ok := lo.Find(net.trafficLights, func(l *TrafficLight) bool { return l.ID == id })
	if !ok {
		return nil, errors.Wrapf(ErrTrafficLightNotFound, "Can't find traffic light %d", id)
	}
	return light, nil
}

func (net *RoadNetwork) FindTrafficSignByID(id TrafficSignID) (*TrafficSign, error) {
	sign, ok := lo.Find(net.trafficSigns, func(s *TrafficSign) bool { return s.ID == id })
	if !ok {
		return nil, errors.Wrapf(ErrTrafficSignNotFound, "Can't find traffic sign %d", id)
	}
	return sign, nil
}

func (net *RoadNetwork) FindIntersectionByID(id IntersectionID) (*Intersection, error) {
	intersection, ok := lo.Find(net.intersections, func(i *Intersection) bool { return i.ID == id })
	if !ok {
		return nil, errors.Wrapf(ErrIntersectionNotFound, "Can't find intersection %d", id)
	}
	return intersection, nil
}

// FindIntersectionsByLanelet returns intersections which have given lanelet as incoming or outgoing one
func (net *RoadNetwork) FindIntersectionsByLanelet(id LaneletID) []*Intersection {
	return lo.Filter(net.intersections, func(intersection *Intersection, _ int) bool {
		return intersection.ContainsLanelet(id)
	})
}

// IncomingGroupByLanelet returns incoming group which has given lanelet as incoming one
func (net *RoadNetwork) IncomingGroupByLanelet(id LaneletID) (*IncomingGroup, error) {
	for _, intersection := range net.intersections {
		for _, group := range intersection.IncomingGroups {
			if containsLanelet(group.IncomingLanelets, id) {
				return group, nil
			}
		}
	}
	return nil, errors.Wrapf(ErrIntersectionNotFound, "Can't find incoming group for lanelet %d", id)
}

func sortLanelets(lanelets []*Lanelet) {
	slices.SortFunc(lanelets, func(a, b *Lanelet) int {
		return cmp.Compare(a.ID, b.ID)
	})
}
