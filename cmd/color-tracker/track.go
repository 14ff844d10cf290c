package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/anthonynsimon/bild/imgio"

	"github.com/ironsheep/color-tracker/internal/capture"
	"github.com/ironsheep/color-tracker/internal/config"
	"github.com/ironsheep/color-tracker/internal/hub"
	"github.com/ironsheep/color-tracker/internal/imaging"
	"github.com/ironsheep/color-tracker/internal/log"
	"github.com/ironsheep/color-tracker/internal/pipeline"
	"github.com/ironsheep/color-tracker/internal/render"
)

// newDriver opens the configured backend and runs the seed capture cycle.
func newDriver(cfg *config.Config) (*pipeline.Driver, error) {
	opener, err := cfg.Opener(imaging.NewImageCache())
	if err != nil {
		return nil, err
	}
	src, err := capture.New(cfg.SourceConfig(), opener)
	if err != nil {
		return nil, err
	}
	return pipeline.New(src), nil
}

func runTrack(ctx context.Context, args []string, stdout io.Writer) error {
	var common commonFlags
	fs := newFlagSet("track", &common)
	mode := fs.String("mode", "normalized", "clusters, keypoints, normalized or basic")
	frames := fs.Int("frames", 0, "stop after N frames, 0 runs until interrupted")
	listen := fs.String("listen", "", "websocket address, overrides the configured one")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *frames < 0 {
		return fmt.Errorf("frames must not be negative, got %d", *frames)
	}

	cfg, err := common.loadConfig()
	if err != nil {
		return err
	}
	if *listen != "" {
		cfg.Stream.Listen = *listen
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	d, err := newDriver(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var h *hub.Hub
	if cfg.Stream.Listen != "" {
		h, err = startHub(ctx, cfg.Stream.Listen)
		if err != nil {
			return err
		}
	}

	e := &emitter{ctx: ctx, out: stdout, hub: h, limit: *frames}
	boundaries := cfg.Boundaries()
	namer := cfg.ColorName

	switch *mode {
	case "clusters":
		return emit(e, d.Clusters(boundaries), func(f pipeline.ClusterFrame) pipeline.Message { return f.Message(namer) })
	case "keypoints":
		return emit(e, d.KeyPoints(boundaries), func(f pipeline.KeyPointFrame) pipeline.Message { return f.Message(namer) })
	case "normalized":
		return emit(e, d.NormalizedKeyPoints(boundaries), func(f pipeline.NormalizedFrame) pipeline.Message { return f.Message(namer) })
	case "basic":
		return emit(e, d.BasicRects(boundaries), func(f pipeline.BasicRectFrame) pipeline.Message { return f.Message(namer) })
	default:
		return fmt.Errorf("unknown mode %q (want clusters, keypoints, normalized or basic)", *mode)
	}
}

// emitter writes numbered results as JSON lines and mirrors them to the hub.
type emitter struct {
	ctx   context.Context
	out   io.Writer
	hub   *hub.Hub
	limit int
	seq   int
}

func (e *emitter) write(m pipeline.Message) error {
	e.seq++
	m.Seq = e.seq
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	if _, err := e.out.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	if e.hub != nil {
		e.hub.Broadcast(data)
	}
	return nil
}

func (e *emitter) done() bool {
	return e.ctx.Err() != nil || (e.limit > 0 && e.seq >= e.limit)
}

// emit pulls s until the frame limit, cancellation or a capture error.
// Leaving the range loop closes the stream and releases the device.
func emit[T any](e *emitter, s *pipeline.Stream[T], message func(T) pipeline.Message) error {
	log.Info("tracking", "stream_id", s.ID(), "frames", e.limit)
	for v := range s.All() {
		if err := e.write(message(v)); err != nil {
			return err
		}
		if e.done() {
			break
		}
	}
	log.Info("tracking stopped", "stream_id", s.ID(), "frames", s.Frames())
	return s.Err()
}

// startHub serves /ws on addr until ctx is cancelled.
func startHub(ctx context.Context, addr string) (*hub.Hub, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}

	h := hub.New()
	go h.Run(ctx)

	srv := &http.Server{Handler: h.Mux(), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("websocket server failed", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownServer(srv, 2*time.Second)
	}()

	log.Info("websocket viewers", "url", "ws://"+ln.Addr().String()+"/ws")
	return h, nil
}

// shutdownServer stops srv, waiting up to timeout for open connections.
func shutdownServer(srv *http.Server, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("websocket server shutdown failed", "error", err)
		return err
	}
	return nil
}

func runSnapshot(args []string, stdout io.Writer) error {
	var common commonFlags
	fs := newFlagSet("snapshot", &common)
	out := fs.String("out", "", "output PNG path")
	mode := fs.String("mode", "keypoints", "keypoints or normalized")
	scale := fs.Int("scale", 1, "enlarge the overlay N times")
	surfaceW := fs.Int("surface-width", render.DefaultSurfaceWidth, "normalized surface width")
	surfaceH := fs.Int("surface-height", render.DefaultSurfaceHeight, "normalized surface height")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *out == "" {
		return fmt.Errorf("snapshot needs -out")
	}
	if *scale < 1 || *scale > 8 {
		return fmt.Errorf("scale must be between 1 and 8, got %d", *scale)
	}
	switch *mode {
	case "keypoints":
	case "normalized":
		if *surfaceW < 1 || *surfaceW > render.MaxSurfaceSize || *surfaceH < 1 || *surfaceH > render.MaxSurfaceSize {
			return fmt.Errorf("surface must be between 1 and %d pixels per side, got %dx%d",
				render.MaxSurfaceSize, *surfaceW, *surfaceH)
		}
	default:
		return fmt.Errorf("unknown snapshot mode %q", *mode)
	}

	cfg, err := common.loadConfig()
	if err != nil {
		return err
	}
	d, err := newDriver(cfg)
	if err != nil {
		return err
	}

	opts := render.DefaultOptions()
	opts.Scale = *scale

	var (
		img *image.NRGBA
		m   pipeline.Message
	)
	if *mode == "normalized" {
		nf, err := first(d.NormalizedKeyPoints(cfg.Boundaries()))
		if err != nil {
			return err
		}
		img, err = render.Normalized(*surfaceW, *surfaceH, nf.Boundaries, nf.Points, opts)
		if err != nil {
			return err
		}
		m = nf.Message(cfg.ColorName)
	} else {
		kp, err := first(d.KeyPoints(cfg.Boundaries()))
		if err != nil {
			return err
		}
		img, err = render.KeyPoints(kp.Frame, kp.Boundaries, kp.Points, opts)
		if err != nil {
			return err
		}
		m = kp.Message(cfg.ColorName)
	}

	if err := imgio.Save(*out, img, imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("save %s: %w", *out, err)
	}

	m.Seq = 1
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(stdout, "%s\n", data)
	return err
}

// first takes one result from s and closes it.
func first[T any](s *pipeline.Stream[T]) (T, error) {
	defer s.Close()
	var zero T
	if !s.Next() {
		if err := s.Err(); err != nil {
			return zero, err
		}
		return zero, fmt.Errorf("no frame captured")
	}
	v := s.Value()
	if err := s.Close(); err != nil {
		return zero, err
	}
	return v, nil
}
