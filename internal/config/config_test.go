package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/color-tracker/internal/capture"
	"github.com/ironsheep/color-tracker/internal/imaging"
)

// writeFile writes content into a temp file and returns its path.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Capture.Width != 300 || cfg.Capture.Height != 169 {
		t.Errorf("size: got %dx%d, want 300x169", cfg.Capture.Width, cfg.Capture.Height)
	}
	if !cfg.Capture.Mirror {
		t.Error("mirror should default to true")
	}
	if len(cfg.Colors) != 3 {
		t.Fatalf("colors: got %d, want 3", len(cfg.Colors))
	}

	want := imaging.NewColorBoundary([3]int{100, 150, 0}, [3]int{140, 255, 255})
	if got := cfg.Boundaries()[1]; got != want {
		t.Errorf("blue boundary: got %v, want %v", got, want)
	}
	if got := cfg.ColorName(want); got != "blue" {
		t.Errorf("ColorName: got %q, want blue", got)
	}
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "tracker.yaml", `
capture:
  backend: still
  inputs: [a.png, b.png]
  loop: true
  width: 160
  height: 90
  mirror: false
colors:
  - name: green
    lower: [50, 100, 100]
    upper: [70, 255, 255]
stream:
  listen: ":8089"
`)

	cfg, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Capture.Backend != BackendStill || len(cfg.Capture.Inputs) != 2 || !cfg.Capture.Loop {
		t.Errorf("capture: got %+v", cfg.Capture)
	}
	if cfg.Capture.Width != 160 || cfg.Capture.Height != 90 || cfg.Capture.Mirror {
		t.Errorf("size/mirror: got %+v", cfg.Capture)
	}
	if len(cfg.Colors) != 1 || cfg.Colors[0].Name != "green" {
		t.Errorf("colors should be replaced, got %+v", cfg.Colors)
	}
	if cfg.Colors[0].Upper != [3]int{70, 255, 255} {
		t.Errorf("upper: got %v", cfg.Colors[0].Upper)
	}
	if cfg.Stream.Listen != ":8089" {
		t.Errorf("listen: got %q", cfg.Stream.Listen)
	}
	// Untouched sections keep their defaults.
	if cfg.Log.Level != "info" {
		t.Errorf("log level: got %q, want info", cfg.Log.Level)
	}
}

func TestLoad_EmptyYAML(t *testing.T) {
	path := writeFile(t, "empty.yaml", "")
	cfg, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.Colors) != 3 {
		t.Errorf("colors: got %d, want defaults", len(cfg.Colors))
	}
}

func TestLoad_UnknownField(t *testing.T) {
	path := writeFile(t, "bad.yaml", "capture:\n  fps: 30\n")
	if _, err := Load(path, ""); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), ""); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvBackend, "ffmpeg")
	t.Setenv(EnvDevice, "2")
	t.Setenv(EnvWidth, "320")
	t.Setenv(EnvHeight, "180")
	t.Setenv(EnvMirror, "false")
	t.Setenv(EnvInput, "clip.mp4")
	t.Setenv(EnvLevel, "debug")

	cfg, err := Load("", "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	c := cfg.Capture
	if c.Backend != BackendFFmpeg || c.Device != 2 || c.Width != 320 || c.Height != 180 || c.Mirror {
		t.Errorf("capture: got %+v", c)
	}
	if len(c.Inputs) != 1 || c.Inputs[0] != "clip.mp4" {
		t.Errorf("inputs: got %v", c.Inputs)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level: got %q", cfg.Log.Level)
	}
}

func TestLoad_EnvBadInt(t *testing.T) {
	t.Setenv(EnvWidth, "wide")
	_, err := Load("", "")
	if err == nil || !strings.Contains(err.Error(), EnvWidth) {
		t.Fatalf("expected %s error, got %v", EnvWidth, err)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	// Register for cleanup; godotenv sets the variable directly.
	t.Setenv(EnvListen, "")
	os.Unsetenv(EnvListen)

	envPath := writeFile(t, ".env", EnvListen+"=127.0.0.1:9000\n")
	cfg, err := Load("", envPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Stream.Listen != "127.0.0.1:9000" {
		t.Errorf("listen: got %q", cfg.Stream.Listen)
	}
}

func TestLoad_MissingEnvFile(t *testing.T) {
	if _, err := Load("", filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Fatalf("missing .env should be ignored, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"unknown backend", func(c *Config) { c.Capture.Backend = "vfw" }, true},
		{"still without inputs", func(c *Config) { c.Capture.Backend = BackendStill }, true},
		{"negative device", func(c *Config) { c.Capture.Device = -1 }, true},
		{"zero width", func(c *Config) { c.Capture.Width = 0 }, true},
		{"no colors", func(c *Config) { c.Colors = nil }, true},
		{"hue out of range", func(c *Config) { c.Colors[0].Upper[0] = 180 }, true},
		{"negative saturation", func(c *Config) { c.Colors[0].Lower[1] = -1 }, true},
		{"inverted range is allowed", func(c *Config) { c.Colors[0].Lower[0], c.Colors[0].Upper[0] = 30, 10 }, false},
		{"bad listen", func(c *Config) { c.Stream.Listen = "8080" }, true},
		{"good listen", func(c *Config) { c.Stream.Listen = "localhost:8080" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOpener(t *testing.T) {
	cfg := DefaultConfig()

	cfg.Capture.Backend = BackendGoCV
	_, err := cfg.Opener(imaging.NewImageCache())
	if capture.GoCVAvailable && err != nil {
		t.Errorf("gocv opener: %v", err)
	}
	if !capture.GoCVAvailable && !errors.Is(err, capture.ErrNoBackend) {
		t.Errorf("gocv without tag: got %v, want ErrNoBackend", err)
	}

	cfg.Capture.Backend = BackendFFmpeg
	if op, err := cfg.Opener(nil); err != nil || op == nil {
		t.Errorf("ffmpeg opener: %v", err)
	}

	cfg.Capture.Backend = BackendStill
	cfg.Capture.Inputs = []string{filepath.Join(t.TempDir(), "missing.png")}
	op, err := cfg.Opener(imaging.NewImageCache())
	if err != nil {
		t.Fatalf("still opener: %v", err)
	}
	if _, err := op(0); err == nil {
		t.Error("expected missing still image to fail on open")
	}
}
