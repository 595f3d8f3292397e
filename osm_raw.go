package commonroad

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
	"github.com/pkg/errors"
)

type OSMScanner interface {
	Scan() bool
	Close() error
	Err() error
	Object() osm.Object
}

// nodeRaw is Lanelet2 point: WGS84 position and optional local metric coordinates
type nodeRaw struct {
	lonLat   orb.Point
	local    orb.Point
	hasLocal bool
}

// wayRaw is Lanelet2 linestring
type wayRaw struct {
	ID    osm.WayID
	Nodes []osm.NodeID
	Tags  osm.Tags
}

// Lanelet2DataRaw holds scanned objects of Lanelet2 map before assembling
type Lanelet2DataRaw struct {
	nodes              map[osm.NodeID]*nodeRaw
	ways               map[osm.WayID]*wayRaw
	lanelets           []*osm.Relation
	regulatoryElements map[osm.RelationID]*osm.Relation
	firstNode          osm.NodeID
}

func newOSMScanner(r io.Reader, ext string) (OSMScanner, error) {
	switch ext {
	case ".osm", ".xml":
		return osmxml.New(context.Background(), r), nil
	case ".pbf", ".osm.pbf":
		return osmpbf.New(context.Background(), r, 4), nil
	default:
		return nil, fmt.Errorf("File extension '%s' is not handled yet", ext)
	}
}

func readLanelet2Raw(r io.Reader, ext string, verbose bool) (*Lanelet2DataRaw, error) {
	scanner, err := newOSMScanner(r, ext)
	if err != nil {
		return nil, err
	}
	defer scanner.Close()

	if verbose {
		fmt.Printf("\tScanning OSM objects... ")
	}
	st := time.Now()
	data := &Lanelet2DataRaw{
		nodes:              make(map[osm.NodeID]*nodeRaw),
		ways:               make(map[osm.WayID]*wayRaw),
		lanelets:           []*osm.Relation{},
		regulatoryElements: make(map[osm.RelationID]*osm.Relation),
	}
	for scanner.Scan() {
		switch obj := scanner.Object().(type) {
		case *osm.Node:
			node := &nodeRaw{
				lonLat: orb.Point{obj.Lon, obj.Lat},
			}
			localX, errX := strconv.ParseFloat(obj.Tags.Find("local_x"), 64)
			localY, errY := strconv.ParseFloat(obj.Tags.Find("local_y"), 64)
			if errX == nil && errY == nil {
				node.local = orb.Point{localX, localY}
				node.hasLocal = true
			}
			if len(data.nodes) == 0 {
				data.firstNode = obj.ID
			}
			data.nodes[obj.ID] = node
		case *osm.Way:
			way := &wayRaw{
				ID:    obj.ID,
				Nodes: make([]osm.NodeID, 0, len(obj.Nodes)),
				Tags:  make(osm.Tags, len(obj.Tags)),
			}
			copy(way.Tags, obj.Tags)
			for _, node := range obj.Nodes {
				way.Nodes = append(way.Nodes, node.ID)
			}
			data.ways[obj.ID] = way
		case *osm.Relation:
			switch obj.Tags.Find("type") {
			case "lanelet":
				data.lanelets = append(data.lanelets, obj)
			case "regulatory_element":
				data.regulatoryElements[obj.ID] = obj
			default:
				// Areas, multipolygons and others are not needed
			}
		default:
			// Changesets, notes and others are not needed
		}
	}
	err = scanner.Err()
	if err != nil {
		return nil, errors.Wrap(err, "Can't scan OSM objects")
	}
	if verbose {
		fmt.Printf("Done in %v (nodes: %d, ways: %d, lanelets: %d, regulatory elements: %d)\n", time.Since(st), len(data.nodes), len(data.ways), len(data.lanelets), len(data.regulatoryElements))
	}
	return data, nil
}
