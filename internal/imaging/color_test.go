package imaging

import (
	"encoding/json"
	"image"
	"image/color"
	"testing"
)

// createInMemoryImage creates an in-memory test image
func createInMemoryImage(width, height int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createPatternImage creates an image with different colors in each quadrant
func createPatternImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.Color
			if x < width/2 && y < height/2 {
				c = color.RGBA{255, 0, 0, 255} // Red top-left
			} else if x >= width/2 && y < height/2 {
				c = color.RGBA{0, 255, 0, 255} // Green top-right
			} else if x < width/2 && y >= height/2 {
				c = color.RGBA{0, 0, 255, 255} // Blue bottom-left
			} else {
				c = color.RGBA{255, 255, 255, 255} // White bottom-right
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func TestToHSV_KnownColors(t *testing.T) {
	tests := []struct {
		name  string
		color color.Color
		want  HSV
	}{
		{"pure red", color.RGBA{255, 0, 0, 255}, HSV{0, 255, 255}},
		{"pure green", color.RGBA{0, 255, 0, 255}, HSV{60, 255, 255}},
		{"pure blue", color.RGBA{0, 0, 255, 255}, HSV{120, 255, 255}},
		{"yellow", color.RGBA{255, 255, 0, 255}, HSV{30, 255, 255}},
		{"magenta", color.RGBA{255, 0, 255, 255}, HSV{150, 255, 255}},
		{"white", color.RGBA{255, 255, 255, 255}, HSV{0, 0, 255}},
		{"black", color.RGBA{0, 0, 0, 255}, HSV{0, 0, 0}},
		{"gray", color.RGBA{128, 128, 128, 255}, HSV{0, 0, 128}},
		{"dark blue", color.RGBA{0, 0, 128, 255}, HSV{120, 255, 128}},
		{"transparent", color.RGBA{0, 0, 0, 0}, HSV{0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := ToHSV(createInMemoryImage(1, 1, tt.color))
			if got := frame.At(0, 0); got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestToHSV_Layout(t *testing.T) {
	frame := ToHSV(createPatternImage(4, 4))
	if frame.Width != 4 || frame.Height != 4 {
		t.Fatalf("size: got %dx%d", frame.Width, frame.Height)
	}

	tests := []struct {
		x, y int
		hue  uint8
	}{
		{0, 0, 0},   // red
		{3, 0, 60},  // green
		{0, 3, 120}, // blue
	}
	for _, tt := range tests {
		if got := frame.At(tt.x, tt.y).H; got != tt.hue {
			t.Errorf("(%d,%d) hue: got %d, want %d", tt.x, tt.y, got, tt.hue)
		}
	}
	if got := frame.At(3, 3); got.S != 0 || got.V != 255 {
		t.Errorf("white: got %+v", got)
	}
}

func TestToHSV_OffsetBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(5, 5, 7, 6))
	img.Set(6, 5, color.RGBA{0, 0, 255, 255})

	frame := ToHSV(img)
	if frame.Width != 2 || frame.Height != 1 {
		t.Fatalf("size: got %dx%d", frame.Width, frame.Height)
	}
	if frame.At(1, 0).H != 120 {
		t.Errorf("offset pixel not mapped to (1,0): %+v", frame.At(1, 0))
	}
}

func TestToRGB_RoundTrip(t *testing.T) {
	colors := []color.RGBA{
		{255, 0, 0, 255},
		{0, 255, 0, 255},
		{0, 0, 255, 255},
		{255, 255, 255, 255},
		{0, 0, 0, 255},
	}
	for _, c := range colors {
		out := ToRGB(ToHSV(createInMemoryImage(1, 1, c)))
		got := out.NRGBAAt(0, 0)
		if got.R != c.R || got.G != c.G || got.B != c.B || got.A != 255 {
			t.Errorf("%v: got %v", c, got)
		}
	}
}

func TestColorBoundary(t *testing.T) {
	b := NewColorBoundary([3]int{100, 150, 0}, [3]int{140, 255, 255})

	tests := []struct {
		name string
		p    HSV
		want bool
	}{
		{"inside", HSV{120, 200, 100}, true},
		{"lower corner", HSV{100, 150, 0}, true},
		{"upper corner", HSV{140, 255, 255}, true},
		{"hue below", HSV{99, 200, 100}, false},
		{"hue above", HSV{141, 200, 100}, false},
		{"saturation below", HSV{120, 149, 100}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := b.Contains(tt.p); got != tt.want {
				t.Errorf("Contains(%+v): got %v, want %v", tt.p, got, tt.want)
			}
		})
	}

	if !b.Valid() {
		t.Error("boundary should be valid")
	}
	if inverted := NewColorBoundary([3]int{10, 0, 0}, [3]int{5, 255, 255}); inverted.Valid() {
		t.Error("inverted boundary should be invalid")
	}
	if b.String() != "(100,150,0)-(140,255,255)" {
		t.Errorf("String: got %s", b)
	}
}

func TestNewColorBoundary_Clamps(t *testing.T) {
	b := NewColorBoundary([3]int{-5, 0, 0}, [3]int{300, 255, 999})
	if b.Lower.H != 0 || b.Upper.H != 255 || b.Upper.V != 255 {
		t.Errorf("got %v", b)
	}
}

func TestColorBoundary_MapKey(t *testing.T) {
	a := NewColorBoundary([3]int{0, 58, 50}, [3]int{30, 255, 255})
	b := NewColorBoundary([3]int{0, 58, 50}, [3]int{30, 255, 255})

	m := map[ColorBoundary]string{a: "skin"}
	if m[b] != "skin" {
		t.Error("equal boundaries should be the same map key")
	}
}

func TestColorBoundary_JSON(t *testing.T) {
	b := NewColorBoundary([3]int{0, 58, 50}, [3]int{30, 255, 255})
	data, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `{"lower":[0,58,50],"upper":[30,255,255]}` {
		t.Errorf("got %s", data)
	}

	var back ColorBoundary
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back != b {
		t.Errorf("got %v, want %v", back, b)
	}
}
