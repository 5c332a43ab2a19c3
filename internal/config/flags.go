package config

import "flag"

// Flags binds every configuration key to a command-line flag. Only flags
// the user actually sets override the file and defaults.
type Flags struct {
	fs   *flag.FlagSet
	path string
	v    Config
}

// RegisterFlags adds the configuration flags to fs. Flag defaults show the
// built-in defaults in usage output.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{fs: fs, v: *Default()}
	v := &f.v

	fs.StringVar(&f.path, "config", "", "Path to config file.")

	fs.Float64Var(&v.Model.RotX, "rot-x", v.Model.RotX, "Rotate the model about X, in degrees.")
	fs.Float64Var(&v.Model.RotY, "rot-y", v.Model.RotY, "Rotate the model about Y, in degrees.")
	fs.Float64Var(&v.Model.RotZ, "rot-z", v.Model.RotZ, "Rotate the model about Z, in degrees.")
	fs.Float64Var(&v.Model.Scale, "scale", v.Model.Scale, "Uniform model scale factor.")

	fs.Float64Var(&v.Path.MinArea, "min-area", v.Path.MinArea, "Reject the outline when its area in mm^2 is below this.")
	fs.Float64Var(&v.Path.TriangleMinArea, "triangle-min-area", v.Path.TriangleMinArea, "Ignore projected triangles with area in mm^2 at or below this.")
	fs.IntVar(&v.Path.Decimate, "decimate", v.Path.Decimate, "Keep every Nth outline point.")
	fs.BoolVar(&v.Path.Rotate90, "rotate-90", v.Path.Rotate90, "Rotate the path by 90 degrees to match the machine axes.")
	fs.Float64Var(&v.Path.Depth, "depth", v.Path.Depth, "Knife depth below the model surface in mm.")

	fs.StringVar(&v.Gcode.Mode, "mode", v.Gcode.Mode, "G-code mode: flat (constant depth) or 3d (follow surface).")
	fs.Float64Var(&v.Gcode.FeedXY, "feed-xy", v.Gcode.FeedXY, "Cutting feed rate in mm/min.")
	fs.Float64Var(&v.Gcode.FeedZ, "feed-z", v.Gcode.FeedZ, "Plunge feed rate in mm/min (3d mode).")
	fs.Float64Var(&v.Gcode.RapidFeed, "rapid-feed", v.Gcode.RapidFeed, "Rapid feed rate in mm/min for cycle time estimation.")
	fs.Float64Var(&v.Gcode.SafeZ, "safe-z", v.Gcode.SafeZ, "Z height for rapid moves.")
	fs.Float64Var(&v.Gcode.CutZ, "cut-z", v.Gcode.CutZ, "Cut depth in flat mode when the path has none.")
	fs.StringVar(&v.Gcode.KnifeAxis, "knife-axis", v.Gcode.KnifeAxis, "Rotary axis letter that turns the knife.")
	fs.Float64Var(&v.Gcode.KnifeOffset, "knife-offset", v.Gcode.KnifeOffset, "Angle in degrees added to every knife angle.")
	fs.StringVar(&v.Gcode.Origin, "origin", v.Gcode.Origin, "Work origin: bottom_left, bottom_right, top_left, top_right or center.")
	fs.IntVar(&v.Gcode.Precision, "precision", v.Gcode.Precision, "Decimal places in G-code numbers.")
	fs.StringVar(&v.Gcode.Title, "title", v.Gcode.Title, "Comment line at the top of the program.")

	fs.StringVar(&v.Logging.Level, "log-level", v.Logging.Level, "Log level: debug, info, warn or error.")
	fs.StringVar(&v.Logging.LogFile, "log-file", v.Logging.LogFile, "Also log to this file, with rotation.")

	return f
}

// ConfigPath returns the explicit config path if provided via -config.
func (f *Flags) ConfigPath() string {
	if f == nil {
		return ""
	}
	return f.path
}

// applyFlags copies the values of flags that were set on the command line.
func (f *Flags) applyFlags(cfg *Config) {
	if f == nil {
		return
	}
	v := &f.v
	set := map[string]func(){
		"rot-x":             func() { cfg.Model.RotX = v.Model.RotX },
		"rot-y":             func() { cfg.Model.RotY = v.Model.RotY },
		"rot-z":             func() { cfg.Model.RotZ = v.Model.RotZ },
		"scale":             func() { cfg.Model.Scale = v.Model.Scale },
		"min-area":          func() { cfg.Path.MinArea = v.Path.MinArea },
		"triangle-min-area": func() { cfg.Path.TriangleMinArea = v.Path.TriangleMinArea },
		"decimate":          func() { cfg.Path.Decimate = v.Path.Decimate },
		"rotate-90":         func() { cfg.Path.Rotate90 = v.Path.Rotate90 },
		"depth":             func() { cfg.Path.Depth = v.Path.Depth },
		"mode":              func() { cfg.Gcode.Mode = v.Gcode.Mode },
		"feed-xy":           func() { cfg.Gcode.FeedXY = v.Gcode.FeedXY },
		"feed-z":            func() { cfg.Gcode.FeedZ = v.Gcode.FeedZ },
		"rapid-feed":        func() { cfg.Gcode.RapidFeed = v.Gcode.RapidFeed },
		"safe-z":            func() { cfg.Gcode.SafeZ = v.Gcode.SafeZ },
		"cut-z":             func() { cfg.Gcode.CutZ = v.Gcode.CutZ },
		"knife-axis":        func() { cfg.Gcode.KnifeAxis = v.Gcode.KnifeAxis },
		"knife-offset":      func() { cfg.Gcode.KnifeOffset = v.Gcode.KnifeOffset },
		"origin":            func() { cfg.Gcode.Origin = v.Gcode.Origin },
		"precision":         func() { cfg.Gcode.Precision = v.Gcode.Precision },
		"title":             func() { cfg.Gcode.Title = v.Gcode.Title },
		"log-level":         func() { cfg.Logging.Level = v.Logging.Level },
		"log-file":          func() { cfg.Logging.LogFile = v.Logging.LogFile },
	}
	f.fs.Visit(func(fl *flag.Flag) {
		if apply, ok := set[fl.Name]; ok {
			apply()
		}
	})
}
