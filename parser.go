package commonroad

import (
	"fmt"
)

// Parser reads Lanelet2 maps (OSM XML or PBF) into road network
type Parser struct {
	filename       string
	origin         [2]float64
	hasOrigin      bool
	startLaneletID int64
	country        string
	verbose        bool
	cfg            *Config
}

func (parser *Parser) String() string {
	return fmt.Sprintf(`
Lanelet2 parser parameters:
	filename: '%s'
	origin (lat, lon): %v
	origin provided?: %t
	start_lanelet_id: %d
	country: '%s'
	verbose: %t
	`,
		parser.filename,
		parser.origin,
		parser.hasOrigin,
		parser.startLaneletID,
		parser.country,
		parser.verbose,
	)
}

func NewParser(fileName string, options ...func(*Parser)) *Parser {
	parser := &Parser{
		filename:       fileName,
		startLaneletID: 0,
		verbose:        false,
		cfg:            DefaultConfig(),
	}
	for _, option := range options {
		option(parser)
	}
	return parser
}

// WithOrigin sets WGS84 origin of local Cartesian frame.
// If not set, the first scanned node is used as origin.
// Nodes carrying 'local_x' and 'local_y' tags are never projected
func WithOrigin(lat, lon float64) func(*Parser) {
	return func(parser *Parser) {
		parser.origin = [2]float64{lat, lon}
		parser.hasOrigin = true
	}
}

// WithStartLaneletID makes parser number lanelets sequentially from given identifier
// in order of relation identifiers. Zero keeps identifiers of relations
func WithStartLaneletID(startLaneletID int64) func(*Parser) {
	return func(parser *Parser) {
		parser.startLaneletID = startLaneletID
	}
}

func WithParserCountry(country string) func(*Parser) {
	return func(parser *Parser) {
		parser.country = country
	}
}

func WithVerbose(verbose bool) func(*Parser) {
	return func(parser *Parser) {
		parser.verbose = verbose
	}
}

func WithParserConfig(cfg *Config) func(*Parser) {
	return func(parser *Parser) {
		if cfg != nil {
			parser.cfg = cfg
		}
	}
}
