package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/color-tracker/internal/config"
	"github.com/ironsheep/color-tracker/internal/imaging"
	"github.com/ironsheep/color-tracker/internal/log"
	"github.com/ironsheep/color-tracker/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const usage = `color-tracker - HSV color-blob tracking

Usage: color-tracker [command] [options]

Commands:
  serve       Run the MCP server over stdin/stdout (default)
  track       Stream detection results as JSON lines on stdout
  snapshot    Grab one frame and save a key-point overlay PNG
  version     Print version information
  help        Print this help message

Common options:
  -config file    YAML configuration file
  -env file       .env file to load (default .env, ignored if missing)

track options:
  -mode m         clusters, keypoints, normalized or basic (default normalized)
  -frames N       Stop after N frames, 0 runs until interrupted
  -listen addr    Also broadcast each result to websocket viewers at /ws

snapshot options:
  -out file       Output PNG path (required)
  -mode m         keypoints or normalized (default keypoints)
  -scale N        Enlarge the overlay N times (default 1)
  -surface-width N, -surface-height N
                  Normalized surface size (default 900x800)

Environment variables:
  COLOR_TRACKER_LOG_LEVEL=debug   Enable debug logging
  COLOR_TRACKER_BACKEND           gocv, ffmpeg or still
  COLOR_TRACKER_INPUT             Comma separated input files
  COLOR_TRACKER_DEVICE, COLOR_TRACKER_WIDTH, COLOR_TRACKER_HEIGHT,
  COLOR_TRACKER_MIRROR, COLOR_TRACKER_LISTEN
`

var errUsage = errors.New("usage")

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "color-tracker: %v\n", err)
		}
		os.Exit(1)
	}
}

// run dispatches to a command. stdout is reserved for protocol and result
// output; everything else goes to stderr.
func run(ctx context.Context, args []string, stdout io.Writer) error {
	cmd := "serve"
	if len(args) > 0 && len(args[0]) > 0 && args[0][0] != '-' {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "version", "--version", "-v":
		fmt.Fprintf(stdout, "color-tracker %s\n", Version)
		fmt.Fprintf(stdout, "  Build time: %s\n", BuildTime)
		fmt.Fprintf(stdout, "  Git commit: %s\n", GitCommit)
		return nil
	case "help", "--help", "-h":
		fmt.Fprint(stdout, usage)
		return nil
	case "serve":
		return runServe(args)
	case "track":
		return runTrack(ctx, args, stdout)
	case "snapshot":
		return runSnapshot(args, stdout)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		return errUsage
	}
}

// commonFlags registers the options every command shares.
type commonFlags struct {
	configPath string
	envPath    string
}

func newFlagSet(name string, c *commonFlags) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.StringVar(&c.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&c.envPath, "env", ".env", ".env file to load")
	return fs
}

// loadConfig loads the configuration and initializes logging from it.
func (c commonFlags) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.configPath, c.envPath)
	if err != nil {
		return nil, err
	}
	log.Init(cfg.Log.Level)
	return cfg, nil
}

func runServe(args []string) error {
	var common commonFlags
	fs := newFlagSet("serve", &common)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	cfg, err := common.loadConfig()
	if err != nil {
		return err
	}

	log.Debug("starting MCP server", "version", Version, "built", BuildTime, "commit", GitCommit)

	// Still-image tools work without a camera, so a missing backend only
	// disables camera_key_points.
	opener, err := cfg.Opener(imaging.NewImageCache())
	if err != nil {
		log.Warn("camera disabled", "error", err)
		opener = nil
	}

	server.Version = Version
	srv := server.New(cfg, opener)
	if err := srv.Run(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
