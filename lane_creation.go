package commonroad

import (
	"slices"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// ClassifyingLaneletType returns the first of classifying types the lanelet has. Urban if none
func ClassifyingLaneletType(lanelet *Lanelet) LaneletType {
	for _, laneletType := range classifyingLaneletTypes {
		if lanelet.HasLaneletType(laneletType) {
			return laneletType
		}
	}
	return LANELET_URBAN
}

// CombineLaneletAndSuccessorsToLanes greedily extends chain from start lanelet by successors
// of the same classifying type. Every branching successor spawns separate chain sharing the prefix.
// Chain is never extended by lanelet it already contains. Zero maxDepth means unlimited chain length
func CombineLaneletAndSuccessorsToLanes(start *Lanelet, classifying LaneletType, maxDepth int) [][]*Lanelet {
	return combineLaneletAndSuccessors(start, classifying, maxDepth, nil)
}

func combineLaneletAndSuccessors(current *Lanelet, classifying LaneletType, maxDepth int, prefix []*Lanelet) [][]*Lanelet {
	chain := make([]*Lanelet, 0, len(prefix)+1)
	chain = append(chain, prefix...)
	chain = append(chain, current)
	if maxDepth > 0 && len(chain) >= maxDepth {
		return [][]*Lanelet{chain}
	}
	next := lo.Filter(current.successors, func(successor *Lanelet, _ int) bool {
		return !successor.HasLaneletType(LANELET_BORDER) &&
			ClassifyingLaneletType(successor) == classifying &&
			!containsLanelet(chain, successor.ID)
	})
	if len(next) == 0 {
		return [][]*Lanelet{chain}
	}
	chains := [][]*Lanelet{}
	for _, successor := range next {
		chains = append(chains, combineLaneletAndSuccessors(successor, classifying, maxDepth, chain)...)
	}
	return chains
}

// isLaneSeed checks if lanelet has no predecessor of the same classifying type
func isLaneSeed(lanelet *Lanelet) bool {
	classifying := ClassifyingLaneletType(lanelet)
	return !lo.ContainsBy(lanelet.predecessors, func(predecessor *Lanelet) bool {
		return ClassifyingLaneletType(predecessor) == classifying
	})
}

// CreateLanesBySingleLanelets assembles lanes starting from every given seed lanelet and registers them.
// Returns registered lanes without duplicates
func (net *RoadNetwork) CreateLanesBySingleLanelets(seeds []*Lanelet) ([]*Lane, error) {
	result := []*Lane{}
	seen := make(map[LaneID]struct{})
	for _, seed := range seeds {
		// Border is not a real lane
		if seed.HasLaneletType(LANELET_BORDER) {
			continue
		}
		chains := CombineLaneletAndSuccessorsToLanes(seed, ClassifyingLaneletType(seed), net.cfg.Lanes.MaxDepth)
		lanes := make([]*Lane, 0, len(chains))
		for _, chain := range chains {
			lane, err := NewLane(chain, WithLaneConfig(net.cfg))
			if err != nil {
				return nil, errors.Wrapf(err, "Can't create lane from seed lanelet %d", seed.ID)
			}
			lanes = append(lanes, lane)
		}
		for _, lane := range net.AddLanes(removeSubPartLanes(lanes), seed.ID) {
			if _, ok := seen[lane.ID]; ok {
				continue
			}
			seen[lane.ID] = struct{}{}
			result = append(result, lane)
		}
	}
	return result, nil
}

// CreateLanes assembles lanes over the whole network.
// Seeds are lanelets with no predecessor of the same classifying type.
// Lanelets left uncovered (e.g. on cycles) become seeds afterwards in order of identifiers
func (net *RoadNetwork) CreateLanes() ([]*Lane, error) {
	seeds := lo.Filter(net.lanelets, func(lanelet *Lanelet, _ int) bool {
		return isLaneSeed(lanelet)
	})
	lanes, err := net.CreateLanesBySingleLanelets(seeds)
	if err != nil {
		return nil, err
	}
	covered := make(map[LaneletID]struct{})
	markCovered := func(lanes []*Lane) {
		for _, lane := range lanes {
			for id := range lane.containedIDs {
				covered[id] = struct{}{}
			}
		}
	}
	markCovered(lanes)

	rest := slices.Clone(net.lanelets)
	sortLanelets(rest)
	for _, lanelet := range rest {
		if _, ok := covered[lanelet.ID]; ok || lanelet.HasLaneletType(LANELET_BORDER) {
			continue
		}
		fallback, err := net.CreateLanesBySingleLanelets([]*Lanelet{lanelet})
		if err != nil {
			return nil, err
		}
		markCovered(fallback)
		lanes = append(lanes, fallback...)
	}
	return lanes, nil
}

// removeSubPartLanes drops lanes which lanelets are all contained in another lane of the list.
// Lanes with equal sets of lanelets are kept once
func removeSubPartLanes(lanes []*Lane) []*Lane {
	unique := lo.UniqBy(lanes, func(lane *Lane) string {
		return laneKey(lane.ContainedLaneletIDs())
	})
	return lo.Filter(unique, func(lane *Lane, i int) bool {
		for j, other := range unique {
			if i != j && lane.IsPartOf(other) {
				return false
			}
		}
		return true
	})
}
