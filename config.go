package commonroad

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds tunables of road network assembly and curvilinear projection
type Config struct {
	Curvilinear CurvilinearConfig `yaml:"curvilinear"`
	Lanelet     LaneletConfig     `yaml:"lanelet"`
	RTree       RTreeConfig       `yaml:"rtree"`
	Lanes       LanesConfig       `yaml:"lanes"`
	Export      ExportConfig      `yaml:"export"`
	Server      ServerConfig      `yaml:"server"`
}

type CurvilinearConfig struct {
	ResamplingStep           float64 `yaml:"resampling_step"`
	ProjectionDomainWidth    float64 `yaml:"projection_domain_width"`
	Tolerance                float64 `yaml:"tolerance"`
	CornerCuttingRefinements int     `yaml:"corner_cutting_refinements"`
}

type LaneletConfig struct {
	PolygonSimplifyTolerance float64 `yaml:"polygon_simplify_tolerance"`
}

type RTreeConfig struct {
	MinChildren int `yaml:"min_children"`
	MaxChildren int `yaml:"max_children"`
}

type LanesConfig struct {
	// MaxDepth limits number of lanelets in a single lane. Zero means unlimited
	MaxDepth int `yaml:"max_depth"`
}

type ExportConfig struct {
	GeometryFormat string `yaml:"geometry_format"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DefaultConfig returns configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Curvilinear: CurvilinearConfig{
			ResamplingStep:           defaultResamplingStep,
			ProjectionDomainWidth:    defaultProjectionDomainWidth,
			Tolerance:                defaultTolerance,
			CornerCuttingRefinements: 4,
		},
		Lanelet: LaneletConfig{
			PolygonSimplifyTolerance: defaultPolygonSimplifyTolerance,
		},
		RTree: RTreeConfig{
			MinChildren: 25,
			MaxChildren: 50,
		},
		Lanes: LanesConfig{
			MaxDepth: 0,
		},
		Export: ExportConfig{
			GeometryFormat: "wkt",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// LoadConfig reads YAML file on top of default configuration
func LoadConfig(fileName string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, errors.Wrap(err, "Can't read configuration file")
	}
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "Can't parse configuration file")
	}
	err = cfg.Validate()
	if err != nil {
		return nil, errors.Wrap(err, "Invalid configuration")
	}
	return cfg, nil
}

// Validate checks configuration values
func (cfg *Config) Validate() error {
	if cfg.Curvilinear.ResamplingStep <= 0 {
		return errors.Errorf("resampling_step must be positive, got %f", cfg.Curvilinear.ResamplingStep)
	}
	if cfg.Curvilinear.ProjectionDomainWidth <= 0 {
		return errors.Errorf("projection_domain_width must be positive, got %f", cfg.Curvilinear.ProjectionDomainWidth)
	}
	if cfg.Curvilinear.Tolerance < 0 {
		return errors.Errorf("tolerance must not be negative, got %f", cfg.Curvilinear.Tolerance)
	}
	if cfg.Curvilinear.CornerCuttingRefinements < 0 {
		return errors.Errorf("corner_cutting_refinements must not be negative, got %d", cfg.Curvilinear.CornerCuttingRefinements)
	}
	if cfg.RTree.MinChildren < 1 || cfg.RTree.MaxChildren < 2*cfg.RTree.MinChildren-1 {
		return errors.Errorf("rtree children bounds are invalid: min %d, max %d", cfg.RTree.MinChildren, cfg.RTree.MaxChildren)
	}
	if cfg.Lanes.MaxDepth < 0 {
		return errors.Errorf("max_depth must not be negative, got %d", cfg.Lanes.MaxDepth)
	}
	if _, err := ParseGeometryFormat(cfg.Export.GeometryFormat); err != nil {
		return err
	}
	return nil
}
