package commonroad

import (
	"slices"

	"github.com/LdDl/ch"
	"github.com/pkg/errors"
)

// LaneletGraph is topological graph of lanelets.
//
// Successor relation is directed. Adjacency in the same driving direction is added in both directions
type LaneletGraph struct {
	successors             map[LaneletID][]LaneletID
	successorsAndAdjacents map[LaneletID][]LaneletID
	router                 *ch.Graph
}

// NewLaneletGraph builds graph and prepares contraction hierarchies over successor relation.
// Weight of edge is length of its source lanelet
func NewLaneletGraph(lanelets []*Lanelet) (*LaneletGraph, error) {
	graph := &LaneletGraph{
		successors:             make(map[LaneletID][]LaneletID, len(lanelets)),
		successorsAndAdjacents: make(map[LaneletID][]LaneletID, len(lanelets)),
		router:                 &ch.Graph{},
	}
	addAdjacent := func(from, to LaneletID) {
		if !slices.Contains(graph.successorsAndAdjacents[from], to) {
			graph.successorsAndAdjacents[from] = append(graph.successorsAndAdjacents[from], to)
		}
	}
	for _, lanelet := range lanelets {
		err := graph.router.CreateVertex(int64(lanelet.ID))
		if err != nil {
			return nil, errors.Wrapf(err, "Can't add vertex for lanelet %d", lanelet.ID)
		}
	}
	for _, lanelet := range lanelets {
		if _, ok := graph.successors[lanelet.ID]; !ok {
			graph.successors[lanelet.ID] = []LaneletID{}
		}
		if _, ok := graph.successorsAndAdjacents[lanelet.ID]; !ok {
			graph.successorsAndAdjacents[lanelet.ID] = []LaneletID{}
		}
		for _, adjacency := range []*Adjacency{lanelet.adjacentLeft, lanelet.adjacentRight} {
			if adjacency == nil || adjacency.Lanelet == nil || adjacency.Direction != DRIVING_DIRECTION_SAME {
				continue
			}
			addAdjacent(lanelet.ID, adjacency.Lanelet.ID)
			addAdjacent(adjacency.Lanelet.ID, lanelet.ID)
		}
		weight := lanelet.Length()
		for _, successor := range lanelet.successors {
			graph.successors[lanelet.ID] = append(graph.successors[lanelet.ID], successor.ID)
			addAdjacent(lanelet.ID, successor.ID)
			err := graph.router.AddEdge(int64(lanelet.ID), int64(successor.ID), weight)
			if err != nil {
				return nil, errors.Wrapf(err, "Can't add edge from lanelet %d to lanelet %d", lanelet.ID, successor.ID)
			}
		}
	}
	graph.router.PrepareContractionHierarchies()
	return graph, nil
}

// FindPaths returns all simple paths from source lanelet to target one in breadth-first order.
// If considerAdjacency is set then lane changes into adjacent lanelets of the same driving direction are allowed
func (graph *LaneletGraph) FindPaths(source, target LaneletID, considerAdjacency bool) [][]LaneletID {
	edges := graph.successors
	if considerAdjacency {
		edges = graph.successorsAndAdjacents
	}
	paths := [][]LaneletID{}
	if _, ok := edges[source]; !ok {
		return paths
	}
	queue := [][]LaneletID{{source}}
	for len(queue) > 0 {
		path := queue[0]
		queue = queue[1:]
		last := path[len(path)-1]
		if last == target {
			if !slices.ContainsFunc(paths, func(p []LaneletID) bool { return slices.Equal(p, path) }) {
				paths = append(paths, path)
			}
			continue
		}
		for _, next := range edges[last] {
			if slices.Contains(path, next) {
				continue
			}
			newPath := make([]LaneletID, len(path), len(path)+1)
			copy(newPath, path)
			queue = append(queue, append(newPath, next))
		}
	}
	return paths
}

// ShortestPath returns sequence of lanelets along successor relation with minimal total length
// of passed lanelets. Returns ErrNoPath if target is unreachable
func (graph *LaneletGraph) ShortestPath(source, target LaneletID) ([]LaneletID, float64, error) {
	if _, ok := graph.successors[source]; !ok {
		return nil, 0, errors.Wrapf(ErrLaneletNotFound, "Can't find source lanelet %d", source)
	}
	if _, ok := graph.successors[target]; !ok {
		return nil, 0, errors.Wrapf(ErrLaneletNotFound, "Can't find target lanelet %d", target)
	}
	if source == target {
		return []LaneletID{source}, 0, nil
	}
	cost, vertices := graph.router.ShortestPath(int64(source), int64(target))
	if cost < 0 || len(vertices) == 0 {
		return nil, 0, errors.Wrapf(ErrNoPath, "Can't route from lanelet %d to lanelet %d", source, target)
	}
	path := make([]LaneletID, len(vertices))
	for i, vertex := range vertices {
		path[i] = LaneletID(vertex)
	}
	return path, cost, nil
}
