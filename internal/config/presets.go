package config

import (
	"fmt"
	"sort"
	"strings"
)

// Presets holds complete configurations keyed by trace kind, then name.
var Presets = map[string]map[string]*Config{
	"seat": {
		"classic": preset(func(c *Config) {}),
		"bold": preset(func(c *Config) {
			c.Renderer.OccupancyOpacity = 0.7
			c.Renderer.AgentOpacity = 1
			c.Renderer.ArrowWidth = 0.03
			c.Renderer.ArrowHeadWidth = 0.1
		}),
		"quiet": preset(func(c *Config) {
			c.Renderer.ArrowColor = "#b0b0b0"
			c.Renderer.OccupancyOpacity = 0.2
			c.Animation.PlayFrameMs = 800
		}),
	},
	"grid": {
		"diamond": preset(func(c *Config) {
			c.Renderer.Marker = "diamond"
		}),
		"smooth": preset(func(c *Config) {
			c.Renderer.MarkerSides = 32
			c.Animation.SliderFrameMs = 100
			c.Animation.PlayFrameMs = 150
			c.Viewer.FPS = 10
		}),
		"crowd": preset(func(c *Config) {
			c.Renderer.MarkerRadius = 0.2
			c.Renderer.PalettePeriod = 24
			c.Renderer.DestinationOpacity = 0.3
		}),
	},
}

func preset(apply func(*Config)) *Config {
	c := DefaultConfig()
	apply(c)
	return c
}

// GetPreset returns a copy so callers may override fields freely.
func GetPreset(kind, name string) *Config {
	kindPresets, ok := Presets[kind]
	if !ok {
		return nil
	}
	cfg, ok := kindPresets[name]
	if !ok {
		return nil
	}
	cp := *cfg
	cp.Server.CORSOrigins = append([]string(nil), cfg.Server.CORSOrigins...)
	return &cp
}

func ListPresets(kind string) []string {
	kindPresets, ok := Presets[kind]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(kindPresets))
	for name := range kindPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func Kinds() []string {
	kinds := make([]string, 0, len(Presets))
	for k := range Presets {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Resolve builds the effective configuration for a trace of the given kind:
// defaults, then the named preset, then the config file. The preset may be
// qualified as "kind/name", which overrides kind.
func Resolve(kind, presetName, path string) (*Config, error) {
	cfg := DefaultConfig()
	if presetName != "" {
		if k, name, ok := strings.Cut(presetName, "/"); ok {
			if kind != "" && k != kind {
				return nil, fmt.Errorf("%w: preset %q is for %s traces, not %s", ErrInvalid, presetName, k, kind)
			}
			kind, presetName = k, name
		}
		if kind == "" {
			return nil, fmt.Errorf("%w: preset %q needs a trace kind, use kind/name", ErrInvalid, presetName)
		}
		cfg = GetPreset(kind, presetName)
		if cfg == nil {
			return nil, fmt.Errorf("%w: unknown preset %q for %s traces (available: %v)", ErrInvalid, presetName, kind, ListPresets(kind))
		}
	}
	if path != "" {
		if err := LoadInto(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}
	return cfg, nil
}
