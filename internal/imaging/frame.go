package imaging

import (
	"encoding/json"
	"fmt"
)

// HSV is a single pixel in the 8-bit hue-saturation-value convention used by
// OpenCV: H is degrees/2 (0-179), S and V are scaled to 0-255.
type HSV struct {
	H uint8
	S uint8
	V uint8
}

// MarshalJSON encodes the pixel as [h, s, v].
func (p HSV) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]int{int(p.H), int(p.S), int(p.V)})
}

// UnmarshalJSON decodes an [h, s, v] array, clamping into 0-255.
func (p *HSV) UnmarshalJSON(data []byte) error {
	var v [3]int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = HSV{H: clampByte(v[0]), S: clampByte(v[1]), V: clampByte(v[2])}
	return nil
}

// IsZero reports whether all three channels are zero.
func (p HSV) IsZero() bool {
	return p.H == 0 && p.S == 0 && p.V == 0
}

// Frame is a row-major HSV pixel grid.
//
// Pixel (x, y) occupies Pix[(y*Width+x)*3 : (y*Width+x)*3+3] in H, S, V order.
// X is the column (0 = leftmost), Y is the row (0 = topmost).
//
// A Frame handed out by a capture source is read-only to its consumers; call
// Clone before modifying it.
type Frame struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewFrame allocates an all-zero frame.
func NewFrame(width, height int) *Frame {
	if width < 0 || height < 0 {
		width, height = 0, 0
	}
	return &Frame{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*3),
	}
}

// Shape returns the frame dimensions as (height, width), matching the
// argument order of detection.Normalize.
func (f *Frame) Shape() (height, width int) {
	return f.Height, f.Width
}

// InBounds reports whether (x, y) lies inside the frame.
func (f *Frame) InBounds(x, y int) bool {
	return x >= 0 && x < f.Width && y >= 0 && y < f.Height
}

// At returns the pixel at (x, y). Out-of-bounds reads return the zero pixel.
func (f *Frame) At(x, y int) HSV {
	if !f.InBounds(x, y) {
		return HSV{}
	}
	i := (y*f.Width + x) * 3
	return HSV{H: f.Pix[i], S: f.Pix[i+1], V: f.Pix[i+2]}
}

// Set writes the pixel at (x, y). Out-of-bounds writes are ignored.
func (f *Frame) Set(x, y int, p HSV) {
	if !f.InBounds(x, y) {
		return
	}
	i := (y*f.Width + x) * 3
	f.Pix[i], f.Pix[i+1], f.Pix[i+2] = p.H, p.S, p.V
}

// Nonzero reports whether any channel of (x, y) is set.
func (f *Frame) Nonzero(x, y int) bool {
	return !f.At(x, y).IsZero()
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	pix := make([]uint8, len(f.Pix))
	copy(pix, f.Pix)
	return &Frame{Width: f.Width, Height: f.Height, Pix: pix}
}

// CountNonzero returns the number of pixels with at least one nonzero channel.
func (f *Frame) CountNonzero() int {
	n := 0
	for i := 0; i+2 < len(f.Pix); i += 3 {
		if f.Pix[i] != 0 || f.Pix[i+1] != 0 || f.Pix[i+2] != 0 {
			n++
		}
	}
	return n
}

// String implements fmt.Stringer for log output.
func (f *Frame) String() string {
	if f == nil {
		return "frame(nil)"
	}
	return fmt.Sprintf("frame(%dx%d)", f.Width, f.Height)
}
