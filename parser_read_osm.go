package commonroad

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ReadRoadNetwork reads file given to the parser. Format is guessed by file extension
func (parser *Parser) ReadRoadNetwork() (*RoadNetwork, error) {
	if parser.verbose {
		fmt.Printf("Opening file: '%s'...\n", parser.filename)
	}
	file, err := os.Open(parser.filename)
	if err != nil {
		return nil, errors.Wrap(err, "Can't open file")
	}
	defer file.Close()

	ext := filepath.Ext(parser.filename)
	if strings.HasSuffix(parser.filename, ".osm.pbf") {
		ext = ".pbf"
	}
	return parser.ReadLanelet2(file, ext)
}

// ReadLanelet2 reads Lanelet2 map from given reader. Extension is one of '.osm', '.xml', '.pbf'
func (parser *Parser) ReadLanelet2(r io.Reader, ext string) (*RoadNetwork, error) {
	st := time.Now()
	data, err := readLanelet2Raw(r, ext, parser.verbose)
	if err != nil {
		return nil, errors.Wrap(err, "Can't parse OSM data")
	}
	net, err := data.prepareRoadNetwork(parser)
	if err != nil {
		return nil, errors.Wrap(err, "Can't prepare road network")
	}
	if parser.verbose {
		fmt.Printf("Road network is ready in %v\n", time.Since(st))
	}
	return net, nil
}
