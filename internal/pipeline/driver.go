package pipeline

import (
	"log/slog"

	"github.com/ironsheep/color-tracker/internal/capture"
	"github.com/ironsheep/color-tracker/internal/detection"
	"github.com/ironsheep/color-tracker/internal/imaging"
	"github.com/ironsheep/color-tracker/internal/log"
)

// FrameSource is the part of capture.Source the driver uses.
type FrameSource interface {
	Acquire() error
	Release() error
	GrabFrame(updateCache bool) (*imaging.Frame, error)
	Current() *imaging.Frame
}

var _ FrameSource = (*capture.Source)(nil)

// ClusterFrame is one frame's raw cluster output.
type ClusterFrame struct {
	// Frame is the HSV frame the clusters were computed from.
	Frame *imaging.Frame

	// Boundaries lists the tracked colors in caller order, duplicates removed.
	Boundaries []imaging.ColorBoundary

	// Filtered holds the color-filtered frame per boundary.
	Filtered map[imaging.ColorBoundary]*imaging.Frame

	// Clusters holds every cluster rect per boundary, in label order.
	Clusters detection.ClusterMap
}

// KeyPointFrame is one frame's largest cluster per color.
type KeyPointFrame struct {
	Frame      *imaging.Frame
	Boundaries []imaging.ColorBoundary
	Points     detection.KeyPointMap
}

// NormalizedFrame is a KeyPointFrame rescaled into [0, 1].
type NormalizedFrame struct {
	Frame      *imaging.Frame
	Boundaries []imaging.ColorBoundary
	Points     detection.NormalizedKeyPointMap
}

// BasicRectFrame holds one tight rect around all matching pixels per color,
// without separating clusters. Found is false for colors with no matching
// pixel; their Rects entry is the zero Rect.
type BasicRectFrame struct {
	Frame      *imaging.Frame
	Boundaries []imaging.ColorBoundary
	Filtered   map[imaging.ColorBoundary]*imaging.Frame
	Rects      map[imaging.ColorBoundary]detection.Rect
	Found      map[imaging.ColorBoundary]bool
}

// Driver runs the per-frame detection cycle over a FrameSource and exposes
// it as streams.
//
// Every stream shares the same cycle: grab a frame (updating the source's
// cached frame), filter it once per boundary, extract clusters per
// boundary. Only one stream at a time may hold the device.
type Driver struct {
	src   FrameSource
	owner string
	log   *slog.Logger
}

// New creates a driver over src.
func New(src FrameSource) *Driver {
	return &Driver{
		src: src,
		log: log.With("component", "pipeline"),
	}
}

// Current returns the source's most recently cached frame.
func (d *Driver) Current() *imaging.Frame {
	return d.src.Current()
}

// Clusters streams every cluster of every color, every frame.
func (d *Driver) Clusters(boundaries []imaging.ColorBoundary) *Stream[ClusterFrame] {
	bs := Unique(boundaries)
	return newStream(d, "clusters", func() (ClusterFrame, error) {
		return d.clusterCycle(bs)
	})
}

// KeyPoints streams the largest cluster per color, every frame.
func (d *Driver) KeyPoints(boundaries []imaging.ColorBoundary) *Stream[KeyPointFrame] {
	bs := Unique(boundaries)
	return newStream(d, "keypoints", func() (KeyPointFrame, error) {
		return d.keyPointCycle(bs)
	})
}

// NormalizedKeyPoints streams key points rescaled into [0, 1] by the
// dimensions of the frame they were found in.
func (d *Driver) NormalizedKeyPoints(boundaries []imaging.ColorBoundary) *Stream[NormalizedFrame] {
	bs := Unique(boundaries)
	return newStream(d, "normalized", func() (NormalizedFrame, error) {
		kp, err := d.keyPointCycle(bs)
		if err != nil {
			return NormalizedFrame{}, err
		}
		return NormalizedFrame{
			Frame:      kp.Frame,
			Boundaries: kp.Boundaries,
			Points:     detection.NormalizeAll(kp.Points, kp.Frame),
		}, nil
	})
}

// BasicRects streams one rect around all matching pixels per color.
func (d *Driver) BasicRects(boundaries []imaging.ColorBoundary) *Stream[BasicRectFrame] {
	bs := Unique(boundaries)
	return newStream(d, "basic", func() (BasicRectFrame, error) {
		frame, err := d.src.GrabFrame(true)
		if err != nil {
			return BasicRectFrame{}, err
		}
		return DetectBasic(frame, bs), nil
	})
}

func (d *Driver) clusterCycle(bs []imaging.ColorBoundary) (ClusterFrame, error) {
	frame, err := d.src.GrabFrame(true)
	if err != nil {
		return ClusterFrame{}, err
	}
	return Detect(frame, bs), nil
}

func (d *Driver) keyPointCycle(bs []imaging.ColorBoundary) (KeyPointFrame, error) {
	cf, err := d.clusterCycle(bs)
	if err != nil {
		return KeyPointFrame{}, err
	}
	return KeyPointFrame{
		Frame:      cf.Frame,
		Boundaries: cf.Boundaries,
		Points:     detection.SelectKeyPoints(cf.Clusters),
	}, nil
}

// claim acquires the device for stream id.
func (d *Driver) claim(id string) error {
	if d.owner != "" && d.owner != id {
		return ErrStreamActive
	}
	if err := d.src.Acquire(); err != nil {
		return err
	}
	d.owner = id
	return nil
}

// release gives the device back if stream id holds it.
func (d *Driver) release(id string) error {
	if d.owner != id {
		return nil
	}
	d.owner = ""
	return d.src.Release()
}

// DetectBasic filters a single frame and bounds every match per color
// without labeling clusters.
func DetectBasic(frame *imaging.Frame, boundaries []imaging.ColorBoundary) BasicRectFrame {
	bs := Unique(boundaries)
	out := BasicRectFrame{
		Frame:      frame,
		Boundaries: bs,
		Filtered:   make(map[imaging.ColorBoundary]*imaging.Frame, len(bs)),
		Rects:      make(map[imaging.ColorBoundary]detection.Rect, len(bs)),
		Found:      make(map[imaging.ColorBoundary]bool, len(bs)),
	}
	for _, b := range bs {
		filtered := imaging.Filter(frame, b)
		out.Filtered[b] = filtered
		out.Rects[b], out.Found[b] = detection.FindFrameRect(filtered)
	}
	return out
}

// Detect runs the filter and cluster stages on a single frame. Streams use
// it per frame; tools that work on still images call it directly.
func Detect(frame *imaging.Frame, boundaries []imaging.ColorBoundary) ClusterFrame {
	bs := Unique(boundaries)
	out := ClusterFrame{
		Frame:      frame,
		Boundaries: bs,
		Filtered:   make(map[imaging.ColorBoundary]*imaging.Frame, len(bs)),
		Clusters:   make(detection.ClusterMap, len(bs)),
	}
	for _, b := range bs {
		filtered := imaging.Filter(frame, b)
		out.Filtered[b] = filtered
		out.Clusters[b] = detection.ExtractClusters(filtered)
	}
	return out
}

// Unique returns boundaries in order with later duplicates removed.
func Unique(boundaries []imaging.ColorBoundary) []imaging.ColorBoundary {
	seen := make(map[imaging.ColorBoundary]bool, len(boundaries))
	out := make([]imaging.ColorBoundary, 0, len(boundaries))
	for _, b := range boundaries {
		if seen[b] {
			continue
		}
		seen[b] = true
		out = append(out, b)
	}
	return out
}
