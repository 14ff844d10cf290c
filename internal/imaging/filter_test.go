package imaging

import (
	"encoding/json"
	"image"
	"image/color"
	"testing"
)

func TestFilter(t *testing.T) {
	frame := ToHSV(createPatternImage(4, 4))
	blue := NewColorBoundary([3]int{100, 150, 0}, [3]int{140, 255, 255})

	out := Filter(frame, blue)
	if out == frame {
		t.Fatal("Filter must return a new frame")
	}

	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			inBlue := x < 2 && y >= 2
			got := out.At(x, y)
			if inBlue && got != frame.At(x, y) {
				t.Errorf("(%d,%d): member pixel changed to %+v", x, y, got)
			}
			if !inBlue && !got.IsZero() {
				t.Errorf("(%d,%d): non-member pixel kept %+v", x, y, got)
			}
		}
	}
	if out.CountNonzero() != 4 {
		t.Errorf("CountNonzero: got %d, want 4", out.CountNonzero())
	}

	// The input is untouched.
	if frame.CountNonzero() != 16 {
		t.Errorf("input modified: %d nonzero", frame.CountNonzero())
	}
}

func TestFilter_InvertedBoundary(t *testing.T) {
	frame := ToHSV(createPatternImage(4, 4))
	inverted := NewColorBoundary([3]int{140, 0, 0}, [3]int{100, 255, 255})

	if n := Filter(frame, inverted).CountNonzero(); n != 0 {
		t.Errorf("inverted boundary matched %d pixels", n)
	}
}

func TestFilter_OnlyInRange(t *testing.T) {
	// Every pixel of a gradient is either kept unchanged or zeroed, and kept
	// pixels are exactly those inside the boundary.
	img := image.NewRGBA(image.Rect(0, 0, 32, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 8), uint8(y * 32), 200, 255})
		}
	}
	frame := ToHSV(img)
	b := NewColorBoundary([3]int{110, 40, 0}, [3]int{130, 255, 255})
	out := Filter(frame, b)
	mask := Mask(frame, b)

	for y := 0; y < 8; y++ {
		for x := 0; x < 32; x++ {
			p := frame.At(x, y)
			member := b.Contains(p)
			if mask[y*32+x] != member {
				t.Fatalf("(%d,%d): mask %v, Contains %v", x, y, mask[y*32+x], member)
			}
			if member && out.At(x, y) != p {
				t.Errorf("(%d,%d): kept pixel changed", x, y)
			}
			if !member && !out.At(x, y).IsZero() {
				t.Errorf("(%d,%d): %+v outside range but kept", x, y, p)
			}
		}
	}
}

func TestFrame(t *testing.T) {
	f := NewFrame(3, 2)
	if h, w := f.Shape(); h != 2 || w != 3 {
		t.Errorf("Shape: got (%d,%d), want (2,3)", h, w)
	}

	f.Set(2, 1, HSV{10, 20, 30})
	f.Set(5, 5, HSV{1, 1, 1})
	if got := f.At(2, 1); got != (HSV{10, 20, 30}) {
		t.Errorf("At: got %+v", got)
	}
	if !f.At(-1, 0).IsZero() {
		t.Error("out-of-bounds At should be zero")
	}
	if !f.Nonzero(2, 1) || f.Nonzero(0, 0) {
		t.Error("Nonzero mismatch")
	}

	c := f.Clone()
	c.Set(0, 0, HSV{V: 9})
	if f.Nonzero(0, 0) {
		t.Error("Clone shares pixels with the original")
	}
	if c.CountNonzero() != 2 || f.CountNonzero() != 1 {
		t.Errorf("CountNonzero: clone %d, original %d", c.CountNonzero(), f.CountNonzero())
	}

	if f.String() != "frame(3x2)" {
		t.Errorf("String: got %s", f)
	}
	if neg := NewFrame(-1, 4); neg.Width != 0 || neg.Height != 0 || len(neg.Pix) != 0 {
		t.Errorf("negative size: got %dx%d", neg.Width, neg.Height)
	}
}

func TestHSV_JSON(t *testing.T) {
	data, err := json.Marshal(HSV{H: 179, S: 58, V: 255})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != "[179,58,255]" {
		t.Errorf("got %s", data)
	}

	var p HSV
	if err := json.Unmarshal([]byte("[-3,300,7]"), &p); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if p != (HSV{0, 255, 7}) {
		t.Errorf("clamped: got %+v", p)
	}
	if err := json.Unmarshal([]byte(`"red"`), &p); err == nil {
		t.Error("expected error for string")
	}
}
