package config

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/lotuspc25/TangentialCAM/internal/gcode"
	"go.uber.org/multierr"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Model.Scale != 1 {
		t.Errorf("expected scale 1, got %g", cfg.Model.Scale)
	}
	if cfg.Path.MinArea != 0.0001 {
		t.Errorf("expected min area 0.0001, got %g", cfg.Path.MinArea)
	}
	if cfg.Path.Decimate != 1 {
		t.Errorf("expected decimate 1, got %d", cfg.Path.Decimate)
	}
	if !cfg.Path.Rotate90 {
		t.Error("expected rotate_90 to be true by default")
	}
	if cfg.Path.Depth != 1.0 {
		t.Errorf("expected depth 1, got %g", cfg.Path.Depth)
	}
	if cfg.Gcode.FeedXY != 2000 || cfg.Gcode.FeedZ != 800 {
		t.Errorf("expected feeds 2000/800, got %g/%g", cfg.Gcode.FeedXY, cfg.Gcode.FeedZ)
	}
	if cfg.Gcode.SafeZ != 5 || cfg.Gcode.CutZ != -1 {
		t.Errorf("expected safe/cut Z 5/-1, got %g/%g", cfg.Gcode.SafeZ, cfg.Gcode.CutZ)
	}
	if cfg.Gcode.KnifeAxis != "A" {
		t.Errorf("expected knife axis A, got %s", cfg.Gcode.KnifeAxis)
	}
	if cfg.Gcode.Origin != "bottom_left" {
		t.Errorf("expected origin bottom_left, got %s", cfg.Gcode.Origin)
	}
	if cfg.Gcode.Precision != 3 {
		t.Errorf("expected precision 3, got %d", cfg.Gcode.Precision)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "tangentcam.yaml")

	yamlContent := `
model:
  rot_x: 90
  scale: 25.4

path:
  decimate: 3
  rotate_90: false
  depth: -2.5

gcode:
  mode: 3d
  knife_axis: C
  knife_offset: 180
  origin: center

logging:
  level: debug
  log_file: cam.log
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Model.RotX != 90 || cfg.Model.Scale != 25.4 {
		t.Errorf("model not loaded: %+v", cfg.Model)
	}
	if cfg.Path.Decimate != 3 || cfg.Path.Rotate90 || cfg.Path.Depth != -2.5 {
		t.Errorf("path not loaded: %+v", cfg.Path)
	}
	// keys absent from the file keep their defaults
	if cfg.Path.MinArea != 0.0001 {
		t.Errorf("expected default min area to survive, got %g", cfg.Path.MinArea)
	}
	if cfg.Gcode.Mode != "3d" || cfg.Gcode.KnifeAxis != "C" || cfg.Gcode.KnifeOffset != 180 || cfg.Gcode.Origin != "center" {
		t.Errorf("gcode not loaded: %+v", cfg.Gcode)
	}
	if cfg.Gcode.FeedXY != 2000 {
		t.Errorf("expected default feed to survive, got %g", cfg.Gcode.FeedXY)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.LogFile != "cam.log" {
		t.Errorf("logging not loaded: %+v", cfg.Logging)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid.yaml")
	if err := os.WriteFile(configPath, []byte("path:\n  decimate: lots\n  bad syntax\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if err := loadFromFile(Default(), configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if err := loadFromFile(Default(), "/nonexistent/path/tangentcam.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
}

func TestFindConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	chdir(t, tmpDir)

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	if err := os.WriteFile(filepath.Join(tmpDir, "tangentcam.yaml"), []byte("path:\n  decimate: 2\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}
	if path := findConfigFile(); path == "" {
		t.Error("expected to find tangentcam.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		verify func(*testing.T, *Config)
	}{
		{
			name: "no flags keeps file values",
			args: nil,
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Path.Decimate != 7 {
					t.Errorf("expected decimate 7 from file, got %d", cfg.Path.Decimate)
				}
			},
		},
		{
			name: "decimate flag",
			args: []string{"-decimate", "4"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Path.Decimate != 4 {
					t.Errorf("expected decimate 4, got %d", cfg.Path.Decimate)
				}
			},
		},
		{
			name: "flag set to the default still overrides",
			args: []string{"-decimate=1"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Path.Decimate != 1 {
					t.Errorf("expected decimate 1, got %d", cfg.Path.Decimate)
				}
			},
		},
		{
			name: "rotate and knife flags",
			args: []string{"-rotate-90=false", "-knife-axis", "B", "-knife-offset", "90", "-mode", "3d"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Path.Rotate90 {
					t.Error("expected rotate_90 false")
				}
				if cfg.Gcode.KnifeAxis != "B" || cfg.Gcode.KnifeOffset != 90 || cfg.Gcode.Mode != "3d" {
					t.Errorf("gcode flags not applied: %+v", cfg.Gcode)
				}
			},
		},
		{
			name: "log flags",
			args: []string{"-log-level", "warn", "-log-file", "x.log"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "warn" || cfg.Logging.LogFile != "x.log" {
					t.Errorf("logging flags not applied: %+v", cfg.Logging)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := flag.NewFlagSet("test", flag.ContinueOnError)
			f := RegisterFlags(fs)
			if err := fs.Parse(tt.args); err != nil {
				t.Fatalf("parse: %v", err)
			}

			cfg := Default()
			cfg.Path.Decimate = 7 // as if loaded from a file
			f.applyFlags(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "job.yaml")
	if err := os.WriteFile(configPath, []byte("path:\n  depth: 3\ngcode:\n  precision: 4\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f := RegisterFlags(fs)
	if err := fs.Parse([]string{"-config", configPath, "-precision", "2"}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	cfg, err := Load(f)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Path.Depth != 3 {
		t.Errorf("expected depth 3 from file, got %g", cfg.Path.Depth)
	}
	if cfg.Gcode.Precision != 2 {
		t.Errorf("expected precision 2 from flag, got %d", cfg.Gcode.Precision)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f := RegisterFlags(fs)
	chdir(t, t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	if err := fs.Parse([]string{"-decimate", "0"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := Load(f); err == nil {
		t.Error("expected invalid decimate to fail")
	}
}

func TestValidateCollectsAll(t *testing.T) {
	cfg := Default()
	cfg.Model.Scale = 0
	cfg.Path.Decimate = 0
	cfg.Path.MinArea = -1
	cfg.Gcode.FeedXY = 0
	cfg.Gcode.Precision = 11
	cfg.Gcode.KnifeAxis = "X"
	cfg.Gcode.Mode = "spiral"

	err := cfg.Validate()
	if n := len(multierr.Errors(err)); n != 7 {
		t.Errorf("expected 7 errors, got %d: %v", n, err)
	}
	if !errors.Is(err, gcode.ErrInvalidKnife) {
		t.Errorf("expected ErrInvalidKnife in %v", err)
	}
	if !errors.Is(err, gcode.ErrUnknownMode) {
		t.Errorf("expected ErrUnknownMode in %v", err)
	}
}

func TestConversions(t *testing.T) {
	cfg := Default()
	cfg.Gcode.KnifeAxis = "c"
	cfg.Gcode.Mode = "3D"
	cfg.Path.Depth = -2

	mode, opt, err := cfg.GcodeOptions()
	if err != nil {
		t.Fatalf("gcode options: %v", err)
	}
	if mode != gcode.Mode3D {
		t.Errorf("expected 3d mode, got %s", mode)
	}
	if opt.Knife.Axis != "C" || opt.Origin != gcode.BottomLeft || opt.FeedZ != 800 {
		t.Errorf("unexpected options: %+v", opt)
	}

	p := cfg.Params()
	if p.DepthFromTop != -2 || !p.Rotate90 || p.Decimate != 1 {
		t.Errorf("unexpected params: %+v", p)
	}

	if !cfg.Transform().IsIdentity() {
		t.Error("default transform should be the identity")
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "tangentcam.yaml")
	cfg := Default()
	cfg.Gcode.Title = "saved"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("saved config differs:\n got %+v\nwant %+v", loaded, cfg)
	}
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})
}
