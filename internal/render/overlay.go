// Package render draws detection results onto frames for snapshots and the
// MCP overlay tool.
package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"strconv"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/color-tracker/internal/detection"
	cimg "github.com/ironsheep/color-tracker/internal/imaging"
)

// Options controls overlay drawing.
type Options struct {
	// Palette is cycled per tracked color, in boundary order. Hex "#RRGGBB"
	// or "#RRGGBBAA".
	Palette []string

	// LineColor joins the centers of consecutive key points.
	LineColor string

	// DotRadius is the key point center dot radius in output pixels. Zero
	// disables dots.
	DotRadius int

	// Labels draws each cluster's index next to its box.
	Labels bool

	// Scale enlarges the output with nearest-neighbour sampling. Values
	// below 1 are treated as 1.
	Scale int
}

// DefaultOptions returns a six-color palette, white lines and 3px dots.
func DefaultOptions() Options {
	return Options{
		Palette:   []string{"#FF0000", "#00FF00", "#0000FF", "#FFFF00", "#FF00FF", "#00FFFF"},
		LineColor: "#FFFFFF",
		DotRadius: 3,
		Scale:     1,
	}
}

// Canvas is an RGB drawing surface.
type Canvas struct {
	img     *image.NRGBA
	palette []color.NRGBA
	line    color.NRGBA
	opts    Options
}

// NewCanvas starts a canvas from an HSV frame converted back to RGB.
func NewCanvas(frame *cimg.Frame, opts Options) (*Canvas, error) {
	if frame == nil {
		return nil, fmt.Errorf("nil frame")
	}
	return newCanvas(cimg.ToRGB(frame), opts)
}

// NewBlankCanvas starts a black canvas of the given size.
func NewBlankCanvas(width, height int, opts Options) (*Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", width, height)
	}
	return newCanvas(imaging.New(width, height, color.NRGBA{0, 0, 0, 255}), opts)
}

func newCanvas(img *image.NRGBA, opts Options) (*Canvas, error) {
	if len(opts.Palette) == 0 {
		opts.Palette = DefaultOptions().Palette
	}
	palette := make([]color.NRGBA, len(opts.Palette))
	for i, hex := range opts.Palette {
		c, err := parseHexColor(hex)
		if err != nil {
			return nil, fmt.Errorf("palette[%d] %q: %w", i, hex, err)
		}
		palette[i] = c
	}

	line := color.NRGBA{255, 255, 255, 255}
	if opts.LineColor != "" {
		c, err := parseHexColor(opts.LineColor)
		if err != nil {
			return nil, fmt.Errorf("line color %q: %w", opts.LineColor, err)
		}
		line = c
	}

	return &Canvas{img: img, palette: palette, line: line, opts: opts}, nil
}

// Color returns the palette entry for the i-th tracked color.
func (c *Canvas) Color(i int) color.NRGBA {
	return c.palette[i%len(c.palette)]
}

// Box draws the one-pixel outline of r. Corners are inclusive.
func (c *Canvas) Box(r detection.Rect, col color.NRGBA) {
	for x := r.XMin; x <= r.XMax; x++ {
		c.set(x, r.YMin, col)
		c.set(x, r.YMax, col)
	}
	for y := r.YMin; y <= r.YMax; y++ {
		c.set(r.XMin, y, col)
		c.set(r.XMax, y, col)
	}
}

// Line draws a straight line with Bresenham's algorithm.
func (c *Canvas) Line(x0, y0, x1, y1 int, col color.NRGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		c.set(x0, y0, col)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// Dot draws a filled circle.
func (c *Canvas) Dot(cx, cy, radius int, col color.NRGBA) {
	for y := -radius; y <= radius; y++ {
		for x := -radius; x <= radius; x++ {
			if x*x+y*y <= radius*radius {
				c.set(cx+x, cy+y, col)
			}
		}
	}
}

// Label draws digits and commas with a 3x5 pixel font on a dark backing.
func (c *Canvas) Label(x, y int, text string) {
	drawLabel(c.img, x, y, text, color.NRGBA{255, 255, 255, 255}, color.NRGBA{0, 0, 0, 180})
}

// Image returns the finished drawing, enlarged by Options.Scale.
func (c *Canvas) Image() *image.NRGBA {
	if c.opts.Scale <= 1 {
		return c.img
	}
	b := c.img.Bounds()
	return imaging.Resize(c.img, b.Dx()*c.opts.Scale, b.Dy()*c.opts.Scale, imaging.NearestNeighbor)
}

func (c *Canvas) set(x, y int, col color.NRGBA) {
	if image.Pt(x, y).In(c.img.Bounds()) {
		c.img.SetNRGBA(x, y, col)
	}
}

// Clusters draws every cluster box, colored by boundary order.
func Clusters(frame *cimg.Frame, boundaries []cimg.ColorBoundary, clusters detection.ClusterMap, opts Options) (*image.NRGBA, error) {
	c, err := NewCanvas(frame, opts)
	if err != nil {
		return nil, err
	}
	for i, b := range boundaries {
		col := c.Color(i)
		for j, r := range clusters[b] {
			c.Box(r, col)
			if opts.Labels {
				c.Label(r.XMin+1, r.YMin+1, strconv.Itoa(j))
			}
		}
	}
	return c.Image(), nil
}

// KeyPoints draws each color's key point box and center dot, and a line
// between the centers of consecutive colors. Sentinel rects are skipped,
// and so is any line touching one.
func KeyPoints(frame *cimg.Frame, boundaries []cimg.ColorBoundary, points detection.KeyPointMap, opts Options) (*image.NRGBA, error) {
	c, err := NewCanvas(frame, opts)
	if err != nil {
		return nil, err
	}

	for i := 0; i+1 < len(boundaries); i++ {
		p1, p2 := points[boundaries[i]], points[boundaries[i+1]]
		if p1.IsZero() || p2.IsZero() {
			continue
		}
		x1, y1 := p1.Center()
		x2, y2 := p2.Center()
		c.Line(round(x1), round(y1), round(x2), round(y2), c.line)
	}

	for i, b := range boundaries {
		r := points[b]
		if r.IsZero() {
			continue
		}
		col := c.Color(i)
		c.Box(r, col)
		if opts.DotRadius > 0 {
			x, y := r.Center()
			c.Dot(round(x), round(y), opts.DotRadius, col)
		}
	}
	return c.Image(), nil
}

// Default surface size for Normalized.
const (
	DefaultSurfaceWidth  = 900
	DefaultSurfaceHeight = 800
	MaxSurfaceSize       = 4096
)

// Normalized draws normalized key points onto a black width x height
// surface, the way a display consumer scales them to its own window.
func Normalized(width, height int, boundaries []cimg.ColorBoundary, points detection.NormalizedKeyPointMap, opts Options) (*image.NRGBA, error) {
	c, err := NewBlankCanvas(width, height, opts)
	if err != nil {
		return nil, err
	}
	w, h := float64(width), float64(height)

	for i := 0; i+1 < len(boundaries); i++ {
		p1, p2 := points[boundaries[i]], points[boundaries[i+1]]
		if p1.IsZero() || p2.IsZero() {
			continue
		}
		x1, y1 := p1.Center()
		x2, y2 := p2.Center()
		c.Line(round(x1*w), round(y1*h), round(x2*w), round(y2*h), c.line)
	}

	for i, b := range boundaries {
		p := points[b]
		if p.IsZero() {
			continue
		}
		col := c.Color(i)
		xMin, yMin, xMax, yMax := p.Scale(w, h)
		c.Box(detection.Rect{XMin: round(xMin), YMin: round(yMin), XMax: round(xMax), YMax: round(yMax)}, col)
		if opts.DotRadius > 0 {
			x, y := p.Center()
			c.Dot(round(x*w), round(y*h), opts.DotRadius, col)
		}
	}
	return c.Image(), nil
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeBase64PNG encodes img as base64 PNG for JSON transport.
func EncodeBase64PNG(img image.Image) (string, error) {
	data, err := EncodePNG(img)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

func round(v float64) int {
	return int(math.Round(v))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
