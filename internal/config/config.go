// Package config handles configuration loading and shared data structures.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/woozymasta/remap/internal/correction"
	"github.com/woozymasta/remap/internal/geo"

	"gopkg.in/yaml.v3"
)

// Types lists the supported map value types.
var Types = []string{
	"int8", "uint8", "int16", "uint16", "int32", "uint32", "int64", "uint64",
	"float32", "float64",
}

// Projection kinds.
const (
	ProjectionSimpleCylindrical = "simple_cylindrical"
	ProjectionMercator          = "mercator"
	ProjectionOrthographic      = "orthographic"
)

// Source kinds.
const (
	SourceRaster = "raster"
	SourcePhoto  = "photo"
)

// Config represents the root configuration file structure.
type Config struct {
	Body    geo.Body `yaml:"body" json:"body"`
	Workers int      `yaml:"workers,omitempty" json:"workers,omitempty"`
	Maps    []Map    `yaml:"maps" json:"maps"`
}

// Map describes one rendered map. Angles are in degrees.
type Map struct {
	Name        string     `yaml:"name" json:"name"`
	Type        string     `yaml:"type" json:"type"`
	Samples     int        `yaml:"samples" json:"samples"`
	Lines       int        `yaml:"lines" json:"lines"`
	Blank       *float64   `yaml:"blank,omitempty" json:"blank,omitempty"`
	Minimum     *float64   `yaml:"minimum,omitempty" json:"minimum,omitempty"`
	Maximum     *float64   `yaml:"maximum,omitempty" json:"maximum,omitempty"`
	Scan        bool       `yaml:"scan,omitempty" json:"scan,omitempty"`
	PreviewSize int        `yaml:"preview_size,omitempty" json:"preview_size,omitempty"`
	Projection  Projection `yaml:"projection" json:"projection"`
	Sources     []Source   `yaml:"sources" json:"sources,omitempty"`
}

// Projection selects and parameterises the map projection.
type Projection struct {
	Kind string `yaml:"kind" json:"kind"`

	// simple_cylindrical, mercator
	LatMin      float64 `yaml:"lat_min,omitempty" json:"lat_min,omitempty"`
	LatMax      float64 `yaml:"lat_max,omitempty" json:"lat_max,omitempty"`
	LonMin      float64 `yaml:"lon_min,omitempty" json:"lon_min,omitempty"`
	LonMax      float64 `yaml:"lon_max,omitempty" json:"lon_max,omitempty"`
	Graphic     bool    `yaml:"graphic,omitempty" json:"graphic,omitempty"`
	MaxLatitude float64 `yaml:"max_latitude,omitempty" json:"max_latitude,omitempty"`

	// orthographic
	SubObserverLat float64  `yaml:"sub_observer_lat,omitempty" json:"sub_observer_lat,omitempty"`
	SubObserverLon float64  `yaml:"sub_observer_lon,omitempty" json:"sub_observer_lon,omitempty"`
	PositionAngle  float64  `yaml:"position_angle,omitempty" json:"position_angle,omitempty"`
	KmPerPixel     float64  `yaml:"km_per_pixel,omitempty" json:"km_per_pixel,omitempty"`
	CenterLine     *float64 `yaml:"center_line,omitempty" json:"center_line,omitempty"`
	CenterSample   *float64 `yaml:"center_sample,omitempty" json:"center_sample,omitempty"`
}

// Source is one input image of a map.
type Source struct {
	Kind        string      `yaml:"kind" json:"kind"`
	Path        string      `yaml:"path" json:"path"`
	LatMin      float64     `yaml:"lat_min" json:"lat_min"`
	LatMax      float64     `yaml:"lat_max" json:"lat_max"`
	LonMin      float64     `yaml:"lon_min" json:"lon_min"`
	LonMax      float64     `yaml:"lon_max" json:"lon_max"`
	Scale       *float64    `yaml:"scale,omitempty" json:"scale,omitempty"`
	Offset      float64     `yaml:"offset,omitempty" json:"offset,omitempty"`
	NoData      *float64    `yaml:"nodata,omitempty" json:"nodata,omitempty"`
	Interpolate bool        `yaml:"interpolate,omitempty" json:"interpolate,omitempty"`
	Photo       *Photo      `yaml:"photo,omitempty" json:"photo,omitempty"`
	Correction  *Correction `yaml:"correction,omitempty" json:"correction,omitempty"`
}

// Photo is the camera geometry of a photo source.
type Photo struct {
	SubObserverLat    float64 `yaml:"sub_observer_lat" json:"sub_observer_lat"`
	SubObserverLon    float64 `yaml:"sub_observer_lon" json:"sub_observer_lon"`
	Range             float64 `yaml:"range" json:"range"`
	FocalLength       float64 `yaml:"focal_length" json:"focal_length"`
	PixelScale        float64 `yaml:"pixel_scale" json:"pixel_scale"`
	OpticalAxisLine   float64 `yaml:"optical_axis_line" json:"optical_axis_line"`
	OpticalAxisSample float64 `yaml:"optical_axis_sample" json:"optical_axis_sample"`
	PositionAngle     float64 `yaml:"position_angle,omitempty" json:"position_angle,omitempty"`
}

// Correction selects the geometric correction of a photo source.
type Correction struct {
	Kind correction.Kind `yaml:"kind" json:"kind"`

	correction.LensParams `yaml:",inline"`
}

// Load reads and parses the YAML configuration file from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Parse(data)
}

// Parse decodes and validates a YAML configuration.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the body, names, dimensions and known kinds.
func (c *Config) Validate() error {
	if err := c.Body.Validate(); err != nil {
		return err
	}
	if c.Workers < 0 {
		return fmt.Errorf("negative worker count %d", c.Workers)
	}
	if len(c.Maps) == 0 {
		return errors.New("no maps configured")
	}

	seen := make(map[string]bool, len(c.Maps))
	for i := range c.Maps {
		m := &c.Maps[i]
		if err := m.Validate(); err != nil {
			return err
		}
		if seen[m.Name] {
			return fmt.Errorf("duplicate map name %q", m.Name)
		}
		seen[m.Name] = true
	}

	return nil
}

// Find returns the map with the given name.
func (c *Config) Find(name string) (*Map, bool) {
	for i := range c.Maps {
		if c.Maps[i].Name == name {
			return &c.Maps[i], true
		}
	}
	return nil, false
}

// Validate checks a single map.
func (m *Map) Validate() error {
	if m.Name == "" || strings.ContainsAny(m.Name, `/\`) || strings.HasPrefix(m.Name, ".") {
		return fmt.Errorf("invalid map name %q", m.Name)
	}
	if !slices.Contains(Types, m.Type) {
		return fmt.Errorf("map %q: unknown type %q", m.Name, m.Type)
	}
	if m.Samples <= 0 || m.Lines <= 0 {
		return fmt.Errorf("map %q: invalid dimensions %dx%d", m.Name, m.Samples, m.Lines)
	}
	if m.PreviewSize < 0 {
		return fmt.Errorf("map %q: negative preview size", m.Name)
	}

	switch m.Projection.Kind {
	case ProjectionSimpleCylindrical, ProjectionMercator, ProjectionOrthographic:
	default:
		return fmt.Errorf("map %q: unknown projection %q", m.Name, m.Projection.Kind)
	}

	if len(m.Sources) == 0 {
		return fmt.Errorf("map %q: no sources", m.Name)
	}
	for i, s := range m.Sources {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("map %q source %d: %w", m.Name, i, err)
		}
	}

	return nil
}

// Validate checks a single source.
func (s *Source) Validate() error {
	if s.Path == "" {
		return errors.New("missing path")
	}

	switch s.Kind {
	case SourceRaster, "":
		if s.LatMin >= s.LatMax || s.LonMin >= s.LonMax {
			return fmt.Errorf("invalid footprint [%g, %g] x [%g, %g]", s.LatMin, s.LatMax, s.LonMin, s.LonMax)
		}
	case SourcePhoto:
		if s.Photo == nil {
			return errors.New("photo source without camera geometry")
		}
	default:
		return fmt.Errorf("unknown source kind %q", s.Kind)
	}

	if s.Correction != nil {
		switch s.Correction.Kind {
		case correction.KindNone, correction.KindGalileoSSI, correction.KindLens, "":
		default:
			return fmt.Errorf("unknown correction %q", s.Correction.Kind)
		}
	}

	return nil
}
