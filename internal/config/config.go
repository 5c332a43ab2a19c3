// Package config handles tangentcam configuration loading and validation.
package config

import (
	"fmt"

	"github.com/lotuspc25/TangentialCAM/internal/gcode"
	"github.com/lotuspc25/TangentialCAM/internal/mesh"
	"github.com/lotuspc25/TangentialCAM/internal/toolpath"
	"go.uber.org/multierr"
)

// Config holds all settings.
type Config struct {
	Model   ModelConfig   `yaml:"model"`
	Path    PathConfig    `yaml:"path"`
	Gcode   GcodeConfig   `yaml:"gcode"`
	Logging LoggingConfig `yaml:"logging"`
}

// ModelConfig holds the model orientation, in degrees, and uniform scale.
type ModelConfig struct {
	RotX  float64 `yaml:"rot_x"`
	RotY  float64 `yaml:"rot_y"`
	RotZ  float64 `yaml:"rot_z"`
	Scale float64 `yaml:"scale"`
}

// PathConfig holds path generation settings.
type PathConfig struct {
	MinArea         float64 `yaml:"min_area"`
	TriangleMinArea float64 `yaml:"triangle_min_area"`
	Decimate        int     `yaml:"decimate"`
	Rotate90        bool    `yaml:"rotate_90"`
	Depth           float64 `yaml:"depth"`
}

// GcodeConfig holds program output settings.
type GcodeConfig struct {
	Mode        string  `yaml:"mode"`
	FeedXY      float64 `yaml:"feed_xy"`
	FeedZ       float64 `yaml:"feed_z"`
	RapidFeed   float64 `yaml:"rapid_feed"`
	SafeZ       float64 `yaml:"safe_z"`
	CutZ        float64 `yaml:"cut_z"`
	KnifeAxis   string  `yaml:"knife_axis"`
	KnifeOffset float64 `yaml:"knife_offset"`
	Origin      string  `yaml:"origin"`
	Precision   int     `yaml:"precision"`
	Title       string  `yaml:"title"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Model: ModelConfig{
			Scale: 1,
		},
		Path: PathConfig{
			MinArea:  0.0001,
			Decimate: 1,
			Rotate90: true,
			Depth:    1.0,
		},
		Gcode: GcodeConfig{
			Mode:      string(gcode.ModeFlat),
			FeedXY:    2000,
			FeedZ:     800,
			RapidFeed: 10000,
			SafeZ:     5,
			CutZ:      -1,
			KnifeAxis: "A",
			Origin:    string(gcode.BottomLeft),
			Precision: 3,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var err error
	check := func(bad bool, format string, args ...any) {
		if bad {
			err = multierr.Append(err, fmt.Errorf(format, args...))
		}
	}

	check(c.Model.Scale <= 0, "model.scale must be positive, got %g", c.Model.Scale)
	check(c.Path.MinArea < 0, "path.min_area must not be negative, got %g", c.Path.MinArea)
	check(c.Path.TriangleMinArea < 0, "path.triangle_min_area must not be negative, got %g", c.Path.TriangleMinArea)
	check(c.Path.Decimate < 1, "path.decimate must be at least 1, got %d", c.Path.Decimate)
	check(c.Gcode.FeedXY <= 0, "gcode.feed_xy must be positive, got %g", c.Gcode.FeedXY)
	check(c.Gcode.FeedZ <= 0, "gcode.feed_z must be positive, got %g", c.Gcode.FeedZ)
	check(c.Gcode.RapidFeed <= 0, "gcode.rapid_feed must be positive, got %g", c.Gcode.RapidFeed)
	check(c.Gcode.Precision < 0 || c.Gcode.Precision > 10, "gcode.precision must be in 0..10, got %d", c.Gcode.Precision)

	if _, kerr := gcode.NewKnife(c.Gcode.KnifeAxis, c.Gcode.KnifeOffset); kerr != nil {
		err = multierr.Append(err, kerr)
	}
	if _, merr := gcode.ParseMode(c.Gcode.Mode); merr != nil {
		err = multierr.Append(err, merr)
	}
	return err
}

// Transform returns the model transform Scale · Rz · Ry · Rx.
func (c *Config) Transform() mesh.Transform {
	return mesh.Compose(c.Model.RotX, c.Model.RotY, c.Model.RotZ, c.Model.Scale)
}

func (c *Config) Params() toolpath.Params {
	return toolpath.Params{
		MinArea:         c.Path.MinArea,
		TriangleMinArea: c.Path.TriangleMinArea,
		Decimate:        c.Path.Decimate,
		Rotate90:        c.Path.Rotate90,
		DepthFromTop:    c.Path.Depth,
	}
}

// GcodeOptions returns the emitter settings and the selected mode.
func (c *Config) GcodeOptions() (gcode.Mode, gcode.Options, error) {
	mode, err := gcode.ParseMode(c.Gcode.Mode)
	if err != nil {
		return "", gcode.Options{}, err
	}
	knife, err := gcode.NewKnife(c.Gcode.KnifeAxis, c.Gcode.KnifeOffset)
	if err != nil {
		return "", gcode.Options{}, err
	}
	return mode, gcode.Options{
		Title:     c.Gcode.Title,
		FeedXY:    c.Gcode.FeedXY,
		FeedZ:     c.Gcode.FeedZ,
		RapidFeed: c.Gcode.RapidFeed,
		SafeZ:     c.Gcode.SafeZ,
		CutZ:      c.Gcode.CutZ,
		Knife:     knife,
		Origin:    gcode.OriginMode(c.Gcode.Origin),
		Precision: c.Gcode.Precision,
	}, nil
}
