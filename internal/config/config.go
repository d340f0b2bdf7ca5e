package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/navtrace/internal/export"
	"github.com/san-kum/navtrace/internal/geom"
	"github.com/san-kum/navtrace/internal/palette"
	"github.com/san-kum/navtrace/internal/plotly"
	"github.com/san-kum/navtrace/internal/scene"
)

const (
	DefaultAddr         = ":8080"
	DefaultBodyLimit    = "64M"
	DefaultMaxSessions  = 16
	DefaultSliderFrame  = 300
	DefaultPlayFrame    = 500
	DefaultFPS          = 4
	DefaultExportWidth  = 800
	DefaultExportHeight = 600
	DefaultDataDir      = "traces"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	Renderer  RendererConfig  `yaml:"renderer"`
	Animation AnimationConfig `yaml:"animation"`
	Server    ServerConfig    `yaml:"server"`
	Viewer    ViewerConfig    `yaml:"viewer"`
	Export    ExportConfig    `yaml:"export"`
	DataDir   string          `yaml:"data_dir"`
}

type RendererConfig struct {
	Marker             string  `yaml:"marker"`
	MarkerSides        int     `yaml:"marker_sides"`
	MarkerRadius       float64 `yaml:"marker_radius"`
	DestinationSize    float64 `yaml:"destination_size"`
	ArrowWidth         float64 `yaml:"arrow_width"`
	ArrowHeadWidth     float64 `yaml:"arrow_head_width"`
	ArrowHeadLength    float64 `yaml:"arrow_head_length"`
	AlternateState     string  `yaml:"alternate_state"`
	OccupancyOpacity   float64 `yaml:"occupancy_opacity"`
	AgentOpacity       float64 `yaml:"agent_opacity"`
	DestinationOpacity float64 `yaml:"destination_opacity"`
	PalettePeriod      int     `yaml:"palette_period"`
	PaletteSaturation  float64 `yaml:"palette_saturation"`
	EmptyColor         string  `yaml:"empty_color"`
	ArrowColor         string  `yaml:"arrow_color"`
	Workers            int     `yaml:"workers"`
}

type AnimationConfig struct {
	SliderFrameMs int `yaml:"slider_frame_ms"`
	PlayFrameMs   int `yaml:"play_frame_ms"`
}

type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	BodyLimit      string   `yaml:"body_limit"`
	MaxSessions    int      `yaml:"max_sessions"`
	CORSOrigins    []string `yaml:"cors_origins"`
	PersistUploads bool     `yaml:"persist_uploads"`
}

type ViewerConfig struct {
	Theme string `yaml:"theme"`
	FPS   int    `yaml:"fps"`
}

type ExportConfig struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	PlotlyCDN string `yaml:"plotly_cdn"`
}

func DefaultConfig() *Config {
	sc := scene.DefaultConfig()
	return &Config{
		Renderer: RendererConfig{
			Marker:             string(sc.Marker),
			MarkerSides:        sc.MarkerSides,
			MarkerRadius:       sc.MarkerRadius,
			DestinationSize:    sc.DestinationSize,
			ArrowWidth:         sc.Arrow.ShaftHalfWidth,
			ArrowHeadWidth:     sc.Arrow.HeadHalfWidth,
			ArrowHeadLength:    sc.Arrow.HeadLength,
			AlternateState:     sc.AlternateState,
			OccupancyOpacity:   sc.OccupancyOpacity,
			AgentOpacity:       sc.AgentOpacity,
			DestinationOpacity: sc.DestinationOpacity,
			PalettePeriod:      palette.DefaultPeriod,
			PaletteSaturation:  palette.DefaultSaturation,
			EmptyColor:         sc.EmptyColor,
			ArrowColor:         sc.ArrowColor,
			Workers:            sc.Workers,
		},
		Animation: AnimationConfig{
			SliderFrameMs: DefaultSliderFrame,
			PlayFrameMs:   DefaultPlayFrame,
		},
		Server: ServerConfig{
			Addr:        DefaultAddr,
			BodyLimit:   DefaultBodyLimit,
			MaxSessions: DefaultMaxSessions,
			CORSOrigins: []string{"*"},
		},
		Viewer: ViewerConfig{
			Theme: "default",
			FPS:   DefaultFPS,
		},
		Export: ExportConfig{
			Width:     DefaultExportWidth,
			Height:    DefaultExportHeight,
			PlotlyCDN: plotly.DefaultCDN,
		},
		DataDir: DefaultDataDir,
	}
}

// Load reads a YAML file over the defaults; keys the file omits keep their
// default values.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := LoadInto(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadInto overlays a YAML file on cfg, typically a preset, and validates
// the result.
func LoadInto(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg.Validate()
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	r := c.Renderer
	switch scene.MarkerKind(r.Marker) {
	case scene.MarkerPolygon, scene.MarkerDiamond:
	default:
		return fmt.Errorf("%w: unknown marker %q", ErrInvalid, r.Marker)
	}
	if r.Marker == string(scene.MarkerPolygon) && r.MarkerSides < 3 {
		return fmt.Errorf("%w: marker_sides must be at least 3", ErrInvalid)
	}
	if r.MarkerRadius <= 0 || r.DestinationSize <= 0 {
		return fmt.Errorf("%w: marker sizes must be positive", ErrInvalid)
	}
	if r.ArrowWidth <= 0 || r.ArrowHeadWidth < r.ArrowWidth || r.ArrowHeadLength <= 0 {
		return fmt.Errorf("%w: arrow head must be at least as wide as the shaft", ErrInvalid)
	}
	for name, v := range map[string]float64{
		"occupancy_opacity":   r.OccupancyOpacity,
		"agent_opacity":       r.AgentOpacity,
		"destination_opacity": r.DestinationOpacity,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: %s must be in [0,1]", ErrInvalid, name)
		}
	}
	if c.Animation.SliderFrameMs <= 0 || c.Animation.PlayFrameMs <= 0 {
		return fmt.Errorf("%w: frame durations must be positive", ErrInvalid)
	}
	if c.Server.MaxSessions < 1 {
		return fmt.Errorf("%w: max_sessions must be at least 1", ErrInvalid)
	}
	if c.Export.Width <= 0 || c.Export.Height <= 0 {
		return fmt.Errorf("%w: export size must be positive", ErrInvalid)
	}
	return nil
}

// Scene converts the renderer section into a scene configuration.
func (c *Config) Scene() scene.Config {
	r := c.Renderer
	sc := scene.DefaultConfig()
	sc.Marker = scene.MarkerKind(r.Marker)
	sc.MarkerSides = r.MarkerSides
	sc.MarkerRadius = r.MarkerRadius
	sc.DestinationSize = r.DestinationSize
	sc.Arrow = geom.ArrowStyle{
		ShaftHalfWidth: r.ArrowWidth,
		HeadHalfWidth:  r.ArrowHeadWidth,
		HeadLength:     r.ArrowHeadLength,
	}
	sc.AlternateState = r.AlternateState
	sc.OccupancyOpacity = r.OccupancyOpacity
	sc.AgentOpacity = r.AgentOpacity
	sc.DestinationOpacity = r.DestinationOpacity
	sc.Palette = palette.New(r.PalettePeriod, r.PaletteSaturation)
	if r.EmptyColor != "" {
		sc.EmptyColor = r.EmptyColor
	}
	if r.ArrowColor != "" {
		sc.ArrowColor = r.ArrowColor
	}
	sc.Workers = r.Workers
	return sc
}

func (c *Config) Plotly() plotly.Options {
	return plotly.Options{SliderFrameMs: c.Animation.SliderFrameMs, PlayFrameMs: c.Animation.PlayFrameMs}
}

func (c *Config) GIF() export.GIFOptions {
	return export.GIFOptions{Width: c.Export.Width, Height: c.Export.Height, FrameMs: c.Animation.PlayFrameMs, Workers: c.Renderer.Workers}
}
