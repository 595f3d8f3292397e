package commonroad

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

type LaneID int64

// jointTolerance is max distance between border end of one lanelet and border start of its successor
// to consider them a shared vertex while concatenating
const jointTolerance = 1e-6

// Lane is an ordered chain of topologically connected lanelets sharing one curvilinear coordinate system.
//
// Set of contained lanelets is fixed on construction. Coordinate system is built on first use
type Lane struct {
	ID LaneID

	containedLanelets []*Lanelet
	containedIDs      map[LaneletID]struct{}
	spanning          *Lanelet

	cfg *Config

	ccsOnce sync.Once
	ccs     *CurvilinearCoordinateSystem
	ccsErr  error
}

func (lane *Lane) String() string {
	return fmt.Sprintf("Lane %d: lanelets: %v", lane.ID, lane.ContainedLaneletIDs())
}

// NewLane creates lane from lanelets where each one is a successor of the previous one
func NewLane(containedLanelets []*Lanelet, options ...func(*Lane)) (*Lane, error) {
	if len(containedLanelets) == 0 {
		return nil, errors.Wrap(ErrTopology, "Can't create lane from empty list of lanelets")
	}
	lane := &Lane{
		containedLanelets: slices.Clone(containedLanelets),
		containedIDs:      make(map[LaneletID]struct{}, len(containedLanelets)),
		cfg:               DefaultConfig(),
	}
	for _, option := range options {
		option(lane)
	}
	for i, lanelet := range containedLanelets {
		if i > 0 && !containsLanelet(containedLanelets[i-1].successors, lanelet.ID) {
			return nil, errors.Wrapf(ErrTopology, "Can't create lane: lanelet %d is not a successor of lanelet %d", lanelet.ID, containedLanelets[i-1].ID)
		}
		if _, ok := lane.containedIDs[lanelet.ID]; ok {
			return nil, errors.Wrapf(ErrTopology, "Can't create lane: lanelet %d is met twice", lanelet.ID)
		}
		lane.containedIDs[lanelet.ID] = struct{}{}
	}
	spanning, err := spanningLanelet(lane.containedLanelets, lane.cfg)
	if err != nil {
		return nil, errors.Wrap(err, "Can't create spanning lanelet for lane")
	}
	lane.spanning = spanning
	return lane, nil
}

// WithLaneCCS sets pre-built coordinate system
func WithLaneCCS(ccs *CurvilinearCoordinateSystem) func(*Lane) {
	return func(lane *Lane) {
		lane.ccs = ccs
	}
}

func WithLaneConfig(cfg *Config) func(*Lane) {
	return func(lane *Lane) {
		if cfg != nil {
			lane.cfg = cfg
		}
	}
}

func WithLaneID(id LaneID) func(*Lane) {
	return func(lane *Lane) {
		lane.ID = id
	}
}

// spanningLanelet concatenates borders of given chain. Shared joint vertices are kept once
func spanningLanelet(chain []*Lanelet, cfg *Config) (*Lanelet, error) {
	first := chain[0]
	left := copyLine(first.leftBorder.vertices)
	right := copyLine(first.rightBorder.vertices)
	laneletTypes := slices.Clone(first.laneletTypes)
	for _, lanelet := range chain[1:] {
		nextLeft := lanelet.leftBorder.vertices
		nextRight := lanelet.rightBorder.vertices
		shared := planar.Distance(left[len(left)-1], nextLeft[0]) <= jointTolerance &&
			planar.Distance(right[len(right)-1], nextRight[0]) <= jointTolerance
		if shared {
			nextLeft = nextLeft[1:]
			nextRight = nextRight[1:]
		}
		left = append(left, nextLeft...)
		right = append(right, nextRight...)
		laneletTypes = append(laneletTypes, lanelet.laneletTypes...)
	}
	last := chain[len(chain)-1]
	return NewLanelet(
		first.ID,
		left,
		right,
		lo.Uniq(laneletTypes),
		WithUsersOneWay(first.usersOneWay),
		WithUsersBidirectional(first.usersBidirectional),
		WithPredecessors(first.predecessors),
		WithSuccessors(last.successors),
		WithSimplifyTolerance(cfg.Lanelet.PolygonSimplifyTolerance),
	)
}

// CurvilinearCoordinateSystem returns coordinate system along the lane center line.
// Center line is smoothed by corner cutting and resampled before the system is built
func (lane *Lane) CurvilinearCoordinateSystem() (*CurvilinearCoordinateSystem, error) {
	lane.ccsOnce.Do(func() {
		if lane.ccs != nil {
			return
		}
		params := lane.cfg.Curvilinear
		referencePath := ChaikinCornerCutting(lane.spanning.centerVertices, params.CornerCuttingRefinements)
		referencePath = Resample(referencePath, params.ResamplingStep)
		lane.ccs, lane.ccsErr = NewCurvilinearCoordinateSystem(
			referencePath,
			WithResamplingStep(params.ResamplingStep),
			WithProjectionDomainWidth(params.ProjectionDomainWidth),
			WithTolerance(params.Tolerance),
		)
		if lane.ccsErr != nil {
			lane.ccsErr = errors.Wrapf(lane.ccsErr, "Can't build curvilinear coordinate system for lane %d", lane.ID)
		}
	})
	return lane.ccs, lane.ccsErr
}

// SuccessorLanelets returns lanelets of this lane reachable forward from given one, in lane order
func (lane *Lane) SuccessorLanelets(from *Lanelet) []*Lanelet {
	idx := slices.IndexFunc(lane.containedLanelets, func(l *Lanelet) bool { return l.ID == from.ID })
	if idx < 0 {
		return nil
	}
	result := []*Lanelet{}
	for i := idx; i < len(lane.containedLanelets)-1; i++ {
		next := lane.containedLanelets[i+1]
		if !containsLanelet(lane.containedLanelets[i].successors, next.ID) {
			break
		}
		result = append(result, next)
	}
	return result
}

func (lane *Lane) ContainedLanelets() []*Lanelet {
	return lane.containedLanelets
}

// ContainedLaneletIDs returns identifiers of contained lanelets in lane order
func (lane *Lane) ContainedLaneletIDs() []LaneletID {
	return laneletIDs(lane.containedLanelets)
}

func (lane *Lane) ContainsLanelet(id LaneletID) bool {
	_, ok := lane.containedIDs[id]
	return ok
}

// IsPartOf checks if every lanelet of this lane is contained in other lane
func (lane *Lane) IsPartOf(other *Lane) bool {
	for id := range lane.containedIDs {
		if !other.ContainsLanelet(id) {
			return false
		}
	}
	return true
}

// Spanning returns lanelet built from concatenated borders of contained lanelets
func (lane *Lane) Spanning() *Lanelet {
	return lane.spanning
}

func (lane *Lane) CheckIntersection(shape orb.Ring, mode ContainmentType) bool {
	return lane.spanning.CheckIntersection(shape, mode)
}

func (lane *Lane) OrientationAtPosition(x, y float64) (float64, error) {
	return lane.spanning.OrientationAtPosition(x, y)
}

func (lane *Lane) Width(lonPosition float64) float64 {
	return lane.spanning.Width(lonPosition)
}

func (lane *Lane) CenterVertices() orb.LineString {
	return lane.spanning.centerVertices
}

func (lane *Lane) LeftBorderVertices() orb.LineString {
	return lane.spanning.leftBorder.vertices
}

func (lane *Lane) RightBorderVertices() orb.LineString {
	return lane.spanning.rightBorder.vertices
}

func (lane *Lane) OuterPolygon() orb.Ring {
	return lane.spanning.outerPolygon
}

func (lane *Lane) Bound() orb.Bound {
	return lane.spanning.bound
}

func (lane *Lane) LaneletTypes() []LaneletType {
	return lane.spanning.laneletTypes
}

// laneKey returns key of lanelet identifiers set
func laneKey(ids []LaneletID) string {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = strconv.FormatInt(int64(id), 10)
	}
	return strings.Join(parts, ",")
}
