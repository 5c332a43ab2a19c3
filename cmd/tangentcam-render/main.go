package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"

	"github.com/lotuspc25/TangentialCAM/internal/config"
	"github.com/lotuspc25/TangentialCAM/internal/logger"
	"github.com/lotuspc25/TangentialCAM/internal/mesh"
	"github.com/lotuspc25/TangentialCAM/internal/preview"
	"github.com/lotuspc25/TangentialCAM/internal/toolpath"
	"go.uber.org/zap"
)

func main() {
	fs := flag.CommandLine
	cfgFlags := config.RegisterFlags(fs)

	width := fs.Int("width", 400, "Set the width of the preview in pixels.")
	height := fs.Int("height", 400, "Set the height of the preview in pixels.")
	png := fs.String("png", "", "Output PNG filename.")
	bottom := fs.Bool("bottom", false, "Draw the bottom side instead of the top.")
	plotAngles := fs.String("plot-angles", "", "Write a chart of knife angle per point to this file (.png, .svg or .pdf).")
	plotOutline := fs.String("plot-outline", "", "Write a chart of the machine-space path to this file.")
	quiet := fs.Bool("quiet", false, "Suppress output of dimensions and progress.")
	cpuProfile := fs.String("cpuprofile", "", "Write CPU profile to file.")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: tangentcam-render [flags] MODEL.stl\n")
		fs.PrintDefaults()
	}

	flag.Parse()

	args := flag.Args()
	if len(args) != 1 {
		fs.Usage()
		os.Exit(1)
	}
	stlFile := args[0]

	if *png == "" {
		*png = stlFile + ".png"
	}

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	job := renderJob{
		cfg:         cfg,
		stlFile:     stlFile,
		pngFile:     *png,
		plotAngles:  *plotAngles,
		plotOutline: *plotOutline,
		options:     preview.Options{Width: *width, Height: *height, Bottom: *bottom},
	}
	if err := job.run(ctx); err != nil {
		logger.Log.Error("tangentcam-render failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

type renderJob struct {
	cfg         *config.Config
	stlFile     string
	pngFile     string
	plotAngles  string
	plotOutline string
	options     preview.Options
}

func (j renderJob) run(ctx context.Context) error {
	m, err := mesh.LoadSTL(j.stlFile)
	if err != nil {
		return fmt.Errorf("load %s: %w", j.stlFile, err)
	}

	// the path is generated on the transformed mesh, so draw that one
	tm := m.Transform(j.cfg.Transform())

	r, err := preview.NewRenderer(tm, j.options)
	if err != nil {
		return err
	}
	w, h, d := r.Size()
	logger.Log.Info("preview",
		zap.Int("width_px", j.options.Width),
		zap.Int("height_px", j.options.Height),
		zap.Float64("width_mm", w),
		zap.Float64("height_mm", h),
		zap.Float64("depth_mm", d),
	)

	if err := r.Render(ctx, logger.NewProgressReporter()); err != nil {
		return err
	}

	pd, err := toolpath.Generate(ctx, tm, mesh.Identity(), j.cfg.Params(), logger.NewProgressReporter())
	if err != nil {
		return err
	}

	if err := preview.WritePNG(j.pngFile, r.Image(pd.XYGeom())); err != nil {
		return fmt.Errorf("write %s: %w", j.pngFile, err)
	}
	logger.Log.Info("wrote preview", zap.String("file", j.pngFile), zap.Int("points", pd.Len()))

	if j.plotAngles != "" {
		if err := preview.PlotAngles(pd, j.plotAngles); err != nil {
			return fmt.Errorf("write %s: %w", j.plotAngles, err)
		}
	}
	if j.plotOutline != "" {
		if err := preview.PlotOutline(pd, j.plotOutline); err != nil {
			return fmt.Errorf("write %s: %w", j.plotOutline, err)
		}
	}
	return nil
}
