package argallery

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the gallery's tunables. The zero value is not useful; start
// from DefaultConfig or LoadConfig.
type Config struct {
	// Mode is the initial placement mode.
	Mode PlacementMode `yaml:"mode"`
	// ShortSide is the physical length in meters of a painting's shorter
	// side. The longer side follows the image aspect ratio.
	ShortSide float64 `yaml:"short_side"`
	// FreeFloatDistance is how far in front of the camera free-float
	// paintings are placed.
	FreeFloatDistance float64 `yaml:"free_float_distance"`
	// Frame configures the border around each painting.
	Frame FrameConfig `yaml:"frame"`
	// Decorations configures the spinning corner cubes.
	Decorations DecorConfig `yaml:"decorations"`
	// GridColor tints the placeholder grids over detected walls.
	GridColor Color `yaml:"grid_color"`
	// Seed seeds decoration randomness. Zero draws a random seed.
	Seed uint64 `yaml:"seed"`
	// Debug turns on scene debug mode.
	Debug bool `yaml:"debug"`
}

// FrameConfig configures painting frames.
type FrameConfig struct {
	Thickness float64 `yaml:"thickness"`
	Color     Color   `yaml:"color"`
	// Texture is an optional image file (for example a wood grain) tiled
	// over every frame segment instead of the flat color.
	Texture string `yaml:"texture"`
	// Tiling is how many times the texture repeats along a segment.
	Tiling float64 `yaml:"tiling"`
}

// DecorConfig configures the decorative cubes placed around paintings.
type DecorConfig struct {
	Enabled bool `yaml:"enabled"`
	// Size is the range the per-placement cube edge length is drawn from.
	Size Range `yaml:"size"`
	// Rate is the range of per-axis angular rates in radians per second.
	Rate Range `yaml:"rate"`
	// SnapshotSize is the edge length in pixels the view snapshot is
	// downscaled to before texturing the cubes. Zero keeps it as is.
	SnapshotSize int `yaml:"snapshot_size"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		Mode:              PlaceOnWall,
		ShortSide:         0.2,
		FreeFloatDistance: 0.7,
		Frame: FrameConfig{
			Thickness: 0.02,
			Color:     Color{0.45, 0.3, 0.18, 1},
			Tiling:    1,
		},
		Decorations: DecorConfig{
			Enabled:      false,
			Size:         Range{Min: 0.01, Max: 0.04},
			Rate:         Range{Min: 0.5, Max: 3},
			SnapshotSize: 64,
		},
		GridColor: Color{0.3, 0.8, 1, 0.6},
	}
}

// LoadConfig reads a YAML config file over DefaultConfig. A missing file
// yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err = ParseConfig(data)
	if err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes YAML over DefaultConfig and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case !positive(c.ShortSide):
		return fmt.Errorf("short_side must be positive, got %v", c.ShortSide)
	case !positive(c.FreeFloatDistance):
		return fmt.Errorf("free_float_distance must be positive, got %v", c.FreeFloatDistance)
	case c.Frame.Thickness < 0 || math.IsNaN(c.Frame.Thickness):
		return fmt.Errorf("frame.thickness must not be negative, got %v", c.Frame.Thickness)
	case c.Mode != PlaceOnWall && c.Mode != PlaceFreeFloat:
		return fmt.Errorf("unknown mode %v", c.Mode)
	}
	if d := c.Decorations; d.Enabled {
		switch {
		case !positive(d.Size.Min) || d.Size.Max < d.Size.Min:
			return fmt.Errorf("decorations.size must be a positive range, got [%v, %v]", d.Size.Min, d.Size.Max)
		case d.Rate.Max < d.Rate.Min:
			return fmt.Errorf("decorations.rate is inverted: [%v, %v]", d.Rate.Min, d.Rate.Max)
		case d.SnapshotSize < 0:
			return fmt.Errorf("decorations.snapshot_size must not be negative, got %d", d.SnapshotSize)
		}
	}
	return nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

// RunConfig configures the window opened by Run.
type RunConfig struct {
	Title   string
	Width   int
	Height  int
	ShowFPS bool
	// ImagePath is the image the O key picks.
	ImagePath string
	// Script, when set, replays scripted steps on top of live input.
	Script *Script
}
