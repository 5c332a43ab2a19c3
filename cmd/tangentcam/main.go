package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"

	"github.com/lotuspc25/TangentialCAM/internal/config"
	"github.com/lotuspc25/TangentialCAM/internal/gcode"
	"github.com/lotuspc25/TangentialCAM/internal/logger"
	"github.com/lotuspc25/TangentialCAM/internal/mesh"
	"github.com/lotuspc25/TangentialCAM/internal/progress"
	"github.com/lotuspc25/TangentialCAM/internal/toolpath"
	"go.uber.org/zap"
)

func main() {
	fs := flag.CommandLine
	cfgFlags := config.RegisterFlags(fs)

	output := fs.String("o", "", "Write G-code to this file instead of stdout.")
	saveConfig := fs.String("save-config", "", "Write the effective configuration to this YAML file.")
	quiet := fs.Bool("quiet", false, "Suppress progress and summary output.")
	cpuProfile := fs.String("cpuprofile", "", "Write CPU profile to file.")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: tangentcam [flags] MODEL.stl\n")
		fs.PrintDefaults()
	}

	flag.Parse()

	args := flag.Args()
	if len(args) != 1 {
		fs.Usage()
		os.Exit(1)
	}
	stlFile := args[0]

	cfg, err := config.Load(cfgFlags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	level := cfg.Logging.Level
	if *quiet {
		level = "warn"
	}
	if err := logger.Init(level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			logger.Log.Fatal("create cpu profile", zap.Error(err))
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	if *saveConfig != "" {
		if err := cfg.SaveTo(*saveConfig); err != nil {
			logger.Log.Error("save config", zap.String("path", *saveConfig), zap.Error(err))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, stlFile, *output); err != nil {
		logger.Log.Error("tangentcam failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, stlFile, output string) error {
	mode, opt, err := cfg.GcodeOptions()
	if err != nil {
		return err
	}
	if !opt.Origin.Known() {
		logger.Log.Warn("unrecognised origin, emitting without offset", zap.String("origin", string(opt.Origin)))
	}

	m, err := mesh.LoadSTL(stlFile)
	if err != nil {
		return fmt.Errorf("load %s: %w", stlFile, err)
	}
	b := m.Bounds()
	logger.Log.Info("model loaded",
		zap.String("file", stlFile),
		zap.Int("vertices", m.NumVertices()),
		zap.Int("faces", m.NumFaces()),
		zap.Float64("width", b.Max.X-b.Min.X),
		zap.Float64("height", b.Max.Y-b.Min.Y),
		zap.Float64("depth", b.Max.Z-b.Min.Z),
	)

	var rep progress.Reporter = logger.NewProgressReporter()
	pd, err := toolpath.Generate(ctx, m, cfg.Transform(), cfg.Params(), rep)
	if err != nil {
		return err
	}

	var prog *gcode.Program
	if mode == gcode.Mode3D {
		prog, err = gcode.ThreeDProgram(pd, opt)
	} else {
		prog, err = gcode.FlatProgram(pd, opt)
	}
	if err != nil {
		return err
	}

	pb := pd.Bounds()
	logger.Log.Info("path ready",
		zap.Int("points", pd.Len()),
		zap.String("mode", string(mode)),
		zap.Float64("x_range", pb.Max.X-pb.Min.X),
		zap.Float64("y_range", pb.Max.Y-pb.Min.Y),
		zap.Float64("cycle_time_secs", prog.CycleTime()),
	)

	text := prog.ToGcode() + "\n"
	if output == "" {
		_, err = os.Stdout.WriteString(text)
		return err
	}
	return os.WriteFile(output, []byte(text), 0644)
}
