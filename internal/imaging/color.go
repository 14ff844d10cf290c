package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// ColorBoundary is an inclusive HSV range defining one trackable color.
//
// ColorBoundary is a comparable value type and is used directly as a map key
// in cluster and key-point results, so the same logical color keeps the same
// identity from frame to frame.
type ColorBoundary struct {
	Lower HSV `json:"lower"`
	Upper HSV `json:"upper"`
}

// NewColorBoundary builds a boundary from two H, S, V triples.
//
// Values are clamped into uint8 range; hue is not wrapped, callers that need
// a red range crossing 179 -> 0 track it as two boundaries.
func NewColorBoundary(lower, upper [3]int) ColorBoundary {
	return ColorBoundary{
		Lower: HSV{H: clampByte(lower[0]), S: clampByte(lower[1]), V: clampByte(lower[2])},
		Upper: HSV{H: clampByte(upper[0]), S: clampByte(upper[1]), V: clampByte(upper[2])},
	}
}

// Contains reports whether p lies inside the boundary on all three channels.
func (b ColorBoundary) Contains(p HSV) bool {
	return p.H >= b.Lower.H && p.H <= b.Upper.H &&
		p.S >= b.Lower.S && p.S <= b.Upper.S &&
		p.V >= b.Lower.V && p.V <= b.Upper.V
}

// Valid reports whether lower <= upper on every channel. An invalid boundary
// is not an error anywhere in the pipeline; it simply matches nothing.
func (b ColorBoundary) Valid() bool {
	return b.Lower.H <= b.Upper.H && b.Lower.S <= b.Upper.S && b.Lower.V <= b.Upper.V
}

// String renders the boundary as "(h,s,v)-(h,s,v)".
func (b ColorBoundary) String() string {
	return fmt.Sprintf("(%d,%d,%d)-(%d,%d,%d)",
		b.Lower.H, b.Lower.S, b.Lower.V, b.Upper.H, b.Upper.S, b.Upper.V)
}

// ToHSV converts an RGB image into an HSV Frame.
//
// The conversion goes through go-colorful and then rescales into the 8-bit
// OpenCV convention:
//   - H: degrees / 2, rounded, 180 wraps to 0
//   - S: saturation * 255, rounded
//   - V: value * 255, rounded
//
// Fully transparent pixels are treated as black.
func ToHSV(img image.Image) *Frame {
	bounds := img.Bounds()
	frame := NewFrame(bounds.Dx(), bounds.Dy())

	for y := 0; y < frame.Height; y++ {
		for x := 0; x < frame.Width; x++ {
			frame.Set(x, y, rgbToHSV(img.At(x+bounds.Min.X, y+bounds.Min.Y)))
		}
	}
	return frame
}

// ToRGB converts an HSV frame back to an RGB image for display and overlays.
func ToRGB(frame *Frame) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, frame.Width, frame.Height))
	for y := 0; y < frame.Height; y++ {
		for x := 0; x < frame.Width; x++ {
			p := frame.At(x, y)
			c := colorful.Hsv(float64(p.H)*2, float64(p.S)/255.0, float64(p.V)/255.0)
			r, g, b := c.Clamped().RGB255()
			out.SetNRGBA(x, y, color.NRGBA{R: r, G: g, B: b, A: 255})
		}
	}
	return out
}

func rgbToHSV(c color.Color) HSV {
	cf, ok := colorful.MakeColor(c)
	if !ok {
		return HSV{}
	}
	h, s, v := cf.Hsv()

	hue := int(math.Round(h / 2))
	if hue >= 180 {
		hue -= 180
	}
	return HSV{
		H: uint8(hue),
		S: clampByte(int(math.Round(s * 255))),
		V: clampByte(int(math.Round(v * 255))),
	}
}

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
