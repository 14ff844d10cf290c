package pipeline

import (
	"github.com/ironsheep/color-tracker/internal/detection"
	"github.com/ironsheep/color-tracker/internal/imaging"
)

// Namer maps a boundary to a display name.
type Namer func(imaging.ColorBoundary) string

// ColorResult is one tracked color's share of a Message. Only the fields
// belonging to the producing mode are set; a color with no clusters omits
// the clusters key.
type ColorResult struct {
	Name     string                `json:"name"`
	Boundary imaging.ColorBoundary `json:"boundary"`
	Clusters []detection.Rect      `json:"clusters,omitempty"`
	Rect     *detection.Rect       `json:"rect,omitempty"`
	Norm     *detection.NormRect   `json:"normalized,omitempty"`
	Found    *bool                 `json:"found,omitempty"`
	Pixels   int                   `json:"pixels,omitempty"`
}

// Message is the JSON form of one stream result, written as a JSON line
// by the CLI and broadcast to websocket viewers.
type Message struct {
	Mode   string        `json:"mode"`
	Seq    int           `json:"seq"`
	Width  int           `json:"width"`
	Height int           `json:"height"`
	Colors []ColorResult `json:"colors"`
}

func newMessage(mode string, frame *imaging.Frame, n int) Message {
	m := Message{Mode: mode, Colors: make([]ColorResult, 0, n)}
	if frame != nil {
		m.Width, m.Height = frame.Width, frame.Height
	}
	return m
}

func nameOf(name Namer, b imaging.ColorBoundary) string {
	if name == nil {
		return b.String()
	}
	return name(b)
}

// Message converts the result, colors in boundary order.
func (f ClusterFrame) Message(name Namer) Message {
	m := newMessage("clusters", f.Frame, len(f.Boundaries))
	for _, b := range f.Boundaries {
		cr := ColorResult{Name: nameOf(name, b), Boundary: b, Clusters: f.Clusters[b]}
		if fl := f.Filtered[b]; fl != nil {
			cr.Pixels = fl.CountNonzero()
		}
		m.Colors = append(m.Colors, cr)
	}
	return m
}

// Message converts the result, colors in boundary order. Absent colors
// carry the (0,0,0,0) rect.
func (f KeyPointFrame) Message(name Namer) Message {
	m := newMessage("keypoints", f.Frame, len(f.Boundaries))
	for _, b := range f.Boundaries {
		r := f.Points[b]
		m.Colors = append(m.Colors, ColorResult{Name: nameOf(name, b), Boundary: b, Rect: &r})
	}
	return m
}

// Message converts the result, colors in boundary order.
func (f NormalizedFrame) Message(name Namer) Message {
	m := newMessage("normalized", f.Frame, len(f.Boundaries))
	for _, b := range f.Boundaries {
		r := f.Points[b]
		m.Colors = append(m.Colors, ColorResult{Name: nameOf(name, b), Boundary: b, Norm: &r})
	}
	return m
}

// Message converts the result, colors in boundary order.
func (f BasicRectFrame) Message(name Namer) Message {
	m := newMessage("basic", f.Frame, len(f.Boundaries))
	for _, b := range f.Boundaries {
		r, found := f.Rects[b], f.Found[b]
		cr := ColorResult{Name: nameOf(name, b), Boundary: b, Rect: &r, Found: &found}
		if fl := f.Filtered[b]; fl != nil {
			cr.Pixels = fl.CountNonzero()
		}
		m.Colors = append(m.Colors, cr)
	}
	return m
}
