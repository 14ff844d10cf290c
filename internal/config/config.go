// Package config loads color-tracker settings.
//
// Values are layered, later layers winning:
//
//  1. DefaultConfig
//  2. an optional YAML file
//  3. an optional .env file (copied into the process environment)
//  4. COLOR_TRACKER_* environment variables
//
// Validate runs last.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/color-tracker/internal/capture"
	"github.com/ironsheep/color-tracker/internal/imaging"
)

// Environment variable names.
const (
	EnvPrefix = "COLOR_TRACKER_"

	EnvBackend = EnvPrefix + "BACKEND"
	EnvDevice  = EnvPrefix + "DEVICE"
	EnvInput   = EnvPrefix + "INPUT"
	EnvWidth   = EnvPrefix + "WIDTH"
	EnvHeight  = EnvPrefix + "HEIGHT"
	EnvMirror  = EnvPrefix + "MIRROR"
	EnvListen  = EnvPrefix + "LISTEN"
	EnvLevel   = EnvPrefix + "LOG_LEVEL"
)

// Capture backends.
const (
	BackendGoCV   = "gocv"
	BackendFFmpeg = "ffmpeg"
	BackendStill  = "still"
)

// Config is the full application configuration.
type Config struct {
	Capture CaptureConfig `yaml:"capture"`
	Colors  []ColorSpec   `yaml:"colors"`
	Log     LogConfig     `yaml:"log"`
	Stream  StreamConfig  `yaml:"stream"`
}

// CaptureConfig selects and tunes the frame source.
type CaptureConfig struct {
	Backend string   `yaml:"backend"` // gocv, ffmpeg or still
	Device  int      `yaml:"device"`  // camera index (/dev/videoN)
	Inputs  []string `yaml:"inputs"`  // video file for ffmpeg, image files for still
	Loop    bool     `yaml:"loop"`    // replay still inputs forever
	Width   int      `yaml:"width"`
	Height  int      `yaml:"height"`
	Mirror  bool     `yaml:"mirror"`
}

// ColorSpec names one tracked HSV range.
type ColorSpec struct {
	Name  string `yaml:"name" json:"name"`
	Lower [3]int `yaml:"lower" json:"lower"`
	Upper [3]int `yaml:"upper" json:"upper"`
}

// Boundary converts the spec into an imaging.ColorBoundary.
func (c ColorSpec) Boundary() imaging.ColorBoundary {
	return imaging.NewColorBoundary(c.Lower, c.Upper)
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
}

// StreamConfig holds the websocket fan-out settings.
type StreamConfig struct {
	// Listen is the address for the /ws endpoint. Empty disables it.
	Listen string `yaml:"listen"`
}

// DefaultConfig returns camera 0 through OpenCV at 300x169, mirrored, tracking
// skin, blue and red.
func DefaultConfig() *Config {
	cc := capture.DefaultConfig()
	return &Config{
		Capture: CaptureConfig{
			Backend: BackendGoCV,
			Device:  cc.DeviceIndex,
			Width:   cc.Width,
			Height:  cc.Height,
			Mirror:  cc.Mirror,
		},
		Colors: DefaultColors(),
		Log:    LogConfig{Level: "info"},
	}
}

// DefaultColors returns the three stock color ranges.
func DefaultColors() []ColorSpec {
	return []ColorSpec{
		{Name: "skin", Lower: [3]int{0, 58, 50}, Upper: [3]int{30, 255, 255}},
		{Name: "blue", Lower: [3]int{100, 150, 0}, Upper: [3]int{140, 255, 255}},
		{Name: "red", Lower: [3]int{160, 100, 20}, Upper: [3]int{179, 255, 255}},
	}
}

// Load builds a Config from defaults, the YAML file at path and the .env
// file at envPath, then applies environment overrides and validates.
// Either path may be empty; a missing .env file is not an error.
func Load(path, envPath string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := cfg.decode(data); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// decode overlays YAML data onto c. Unknown keys are rejected.
func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Capture.Backend = getEnvOrDefault(EnvBackend, c.Capture.Backend)
	c.Log.Level = getEnvOrDefault(EnvLevel, c.Log.Level)
	c.Stream.Listen = getEnvOrDefault(EnvListen, c.Stream.Listen)

	if v := os.Getenv(EnvInput); v != "" {
		c.Capture.Inputs = strings.Split(v, ",")
	}

	var err error
	if c.Capture.Device, err = getEnvAsIntOrDefault(EnvDevice, c.Capture.Device); err != nil {
		return err
	}
	if c.Capture.Width, err = getEnvAsIntOrDefault(EnvWidth, c.Capture.Width); err != nil {
		return err
	}
	if c.Capture.Height, err = getEnvAsIntOrDefault(EnvHeight, c.Capture.Height); err != nil {
		return err
	}
	if v := os.Getenv(EnvMirror); v != "" {
		b, perr := strconv.ParseBool(v)
		if perr != nil {
			return fmt.Errorf("%s: %w", EnvMirror, perr)
		}
		c.Capture.Mirror = b
	}
	return nil
}

// Validate checks that the configuration can build a pipeline.
func (c *Config) Validate() error {
	switch c.Capture.Backend {
	case BackendGoCV, BackendFFmpeg:
	case BackendStill:
		if len(c.Capture.Inputs) == 0 {
			return fmt.Errorf("backend %q needs at least one input", BackendStill)
		}
	default:
		return fmt.Errorf("unknown capture backend %q", c.Capture.Backend)
	}

	if c.Capture.Device < 0 {
		return fmt.Errorf("invalid device index: %d", c.Capture.Device)
	}
	if c.Capture.Width <= 0 || c.Capture.Height <= 0 {
		return fmt.Errorf("invalid frame size: %dx%d", c.Capture.Width, c.Capture.Height)
	}

	if len(c.Colors) == 0 {
		return fmt.Errorf("no colors configured")
	}
	for i, col := range c.Colors {
		if err := col.Validate(); err != nil {
			return fmt.Errorf("color %d (%s): %w", i, col.Name, err)
		}
	}

	if c.Stream.Listen != "" {
		if _, _, err := net.SplitHostPort(c.Stream.Listen); err != nil {
			return fmt.Errorf("invalid listen address %q: %w", c.Stream.Listen, err)
		}
	}
	return nil
}

// Validate checks every channel against the 8-bit HSV ranges. Lower above
// upper is allowed; such a range matches nothing.
func (c ColorSpec) Validate() error {
	maxima := [3]int{179, 255, 255}
	for ch := 0; ch < 3; ch++ {
		if c.Lower[ch] < 0 || c.Lower[ch] > maxima[ch] {
			return fmt.Errorf("lower[%d]=%d out of range 0-%d", ch, c.Lower[ch], maxima[ch])
		}
		if c.Upper[ch] < 0 || c.Upper[ch] > maxima[ch] {
			return fmt.Errorf("upper[%d]=%d out of range 0-%d", ch, c.Upper[ch], maxima[ch])
		}
	}
	return nil
}

// Boundaries returns the configured colors as boundaries, in config order.
func (c *Config) Boundaries() []imaging.ColorBoundary {
	out := make([]imaging.ColorBoundary, len(c.Colors))
	for i, col := range c.Colors {
		out[i] = col.Boundary()
	}
	return out
}

// ColorName returns the configured name of b, or its String form.
func (c *Config) ColorName(b imaging.ColorBoundary) string {
	for _, col := range c.Colors {
		if col.Boundary() == b && col.Name != "" {
			return col.Name
		}
	}
	return b.String()
}

// SourceConfig returns the capture.Source settings.
func (c *Config) SourceConfig() capture.Config {
	return capture.Config{
		DeviceIndex: c.Capture.Device,
		Width:       c.Capture.Width,
		Height:      c.Capture.Height,
		Mirror:      c.Capture.Mirror,
	}
}

// Opener builds the capture opener for the configured backend. Still
// images are decoded through cache.
func (c *Config) Opener(cache *imaging.ImageCache) (capture.Opener, error) {
	switch c.Capture.Backend {
	case BackendGoCV:
		if !capture.GoCVAvailable {
			return nil, fmt.Errorf("backend %q: %w (build with -tags gocv)", BackendGoCV, capture.ErrNoBackend)
		}
		return capture.GoCVOpener(), nil
	case BackendFFmpeg:
		fc := capture.FFmpegConfig{}
		if len(c.Capture.Inputs) > 0 {
			fc.Input = c.Capture.Inputs[0]
		}
		return capture.FFmpegOpener(fc), nil
	case BackendStill:
		return capture.StillOpener(cache, c.Capture.Loop, c.Capture.Inputs...), nil
	default:
		return nil, fmt.Errorf("unknown capture backend %q", c.Capture.Backend)
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
