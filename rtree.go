package commonroad

import (
	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// boundPadding extends every rectangle stored in or queried from the tree:
// rectangles which only touch each other are reported as intersecting then
const boundPadding = 1e-6

// laneletEntry is lanelet bound stored in R-tree
type laneletEntry struct {
	id   LaneletID
	rect rtreego.Rect
}

// Bounds implements rtreego.Spatial interface
func (entry *laneletEntry) Bounds() rtreego.Rect {
	return entry.rect
}

// boundToRect converts bound into R-tree rectangle padded by boundPadding
func boundToRect(bound orb.Bound) (rtreego.Rect, error) {
	rect, err := rtreego.NewRect(
		rtreego.Point{bound.Min.X() - boundPadding, bound.Min.Y() - boundPadding},
		[]float64{bound.Max.X() - bound.Min.X() + 2*boundPadding, bound.Max.Y() - bound.Min.Y() + 2*boundPadding},
	)
	if err != nil {
		return rtreego.Rect{}, errors.Wrapf(err, "Can't convert bound %v to rectangle", bound)
	}
	return rect, nil
}

// buildRTree indexes bounds of given lanelets
func buildRTree(lanelets []*Lanelet, minChildren, maxChildren int) (*rtreego.Rtree, error) {
	entries := make([]rtreego.Spatial, 0, len(lanelets))
	for _, lanelet := range lanelets {
		rect, err := boundToRect(lanelet.bound)
		if err != nil {
			return nil, errors.Wrapf(err, "Can't index lanelet %d", lanelet.ID)
		}
		entries = append(entries, &laneletEntry{id: lanelet.ID, rect: rect})
	}
	// Bulk loading
	return rtreego.NewTree(2, minChildren, maxChildren, entries...), nil
}

// searchBound returns identifiers of lanelets which bounds intersect given one
func searchBound(tree *rtreego.Rtree, bound orb.Bound) ([]LaneletID, error) {
	rect, err := boundToRect(bound)
	if err != nil {
		return nil, err
	}
	found := tree.SearchIntersect(rect)
	ids := make([]LaneletID, 0, len(found))
	for _, obj := range found {
		ids = append(ids, obj.(*laneletEntry).id)
	}
	return ids, nil
}
