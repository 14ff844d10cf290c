package capture

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ironsheep/color-tracker/internal/imaging"
)

// createTestImage creates a solid color test image
func createTestImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// fakeDevice serves frames from a fixed list and counts releases.
type fakeDevice struct {
	frames   []image.Image
	next     int
	released *int
	relErr   error
}

func (d *fakeDevice) Read() (image.Image, bool) {
	if d.next >= len(d.frames) {
		return nil, false
	}
	img := d.frames[d.next]
	d.next++
	return img, true
}

func (d *fakeDevice) Release() error {
	*d.released++
	return d.relErr
}

// fakeOpener opens fakeDevices that each serve frames reads.
type fakeOpener struct {
	frames   []image.Image
	opens    int
	released int
	openErr  error
	relErr   error
	indexes  []int
}

func (o *fakeOpener) open(index int) (Device, error) {
	o.indexes = append(o.indexes, index)
	if o.openErr != nil {
		return nil, o.openErr
	}
	o.opens++
	return &fakeDevice{frames: o.frames, released: &o.released, relErr: o.relErr}, nil
}

func smallConfig() Config {
	return Config{DeviceIndex: 2, Width: 4, Height: 2}
}

func TestNew_SeedCycle(t *testing.T) {
	o := &fakeOpener{frames: []image.Image{createTestImage(8, 4, color.RGBA{0, 0, 255, 255})}}

	s, err := New(smallConfig(), o.open)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if o.opens != 1 || o.released != 1 {
		t.Errorf("seed cycle: opens %d releases %d, want 1 and 1", o.opens, o.released)
	}
	if s.Acquired() {
		t.Error("device still acquired after New")
	}
	if len(o.indexes) != 1 || o.indexes[0] != 2 {
		t.Errorf("device index: got %v", o.indexes)
	}

	cur := s.Current()
	if cur == nil {
		t.Fatal("Current is nil after New")
	}
	if cur.Width != 4 || cur.Height != 2 {
		t.Errorf("Current size: got %dx%d, want 4x2", cur.Width, cur.Height)
	}
	if cur.At(0, 0).H != 120 {
		t.Errorf("Current pixel: got %+v", cur.At(0, 0))
	}
}

func TestNew_Errors(t *testing.T) {
	img := createTestImage(4, 2, color.White)

	tests := []struct {
		name    string
		cfg     Config
		opener  *fakeOpener
		wantAcq bool
	}{
		{"nil opener", smallConfig(), nil, false},
		{"zero size", Config{Width: 0, Height: 2}, &fakeOpener{frames: []image.Image{img}}, false},
		{"open fails", smallConfig(), &fakeOpener{openErr: errors.New("busy")}, true},
		{"no seed frame", smallConfig(), &fakeOpener{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var open Opener
			if tt.opener != nil {
				open = tt.opener.open
			}
			_, err := New(tt.cfg, open)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.Is(err, ErrAcquisition); got != tt.wantAcq {
				t.Errorf("errors.Is(ErrAcquisition): got %v, want %v (%v)", got, tt.wantAcq, err)
			}
		})
	}
}

func TestNew_SeedReadFailureReleases(t *testing.T) {
	o := &fakeOpener{}
	if _, err := New(smallConfig(), o.open); err == nil {
		t.Fatal("expected error")
	}
	if o.opens != 1 || o.released != 1 {
		t.Errorf("opens %d releases %d, want 1 and 1", o.opens, o.released)
	}
}

func TestSource_GrabBeforeAcquire(t *testing.T) {
	o := &fakeOpener{frames: []image.Image{createTestImage(4, 2, color.White)}}
	s, err := New(smallConfig(), o.open)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := s.GrabFrame(true); !errors.Is(err, ErrInvalidState) {
		t.Errorf("got %v, want ErrInvalidState", err)
	}
}

func TestSource_AcquireReleaseIdempotent(t *testing.T) {
	o := &fakeOpener{frames: []image.Image{createTestImage(4, 2, color.White)}}
	s, err := New(smallConfig(), o.open)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := s.Acquire(); err != nil {
			t.Fatalf("Acquire: %v", err)
		}
	}
	if o.opens != 2 {
		t.Errorf("opens: got %d, want 2", o.opens)
	}

	for i := 0; i < 3; i++ {
		if err := s.Release(); err != nil {
			t.Fatalf("Release: %v", err)
		}
	}
	if o.released != 2 {
		t.Errorf("releases: got %d, want 2", o.released)
	}
}

func TestSource_GrabFrame(t *testing.T) {
	red := createTestImage(4, 2, color.RGBA{255, 0, 0, 255})
	green := createTestImage(4, 2, color.RGBA{0, 255, 0, 255})
	o := &fakeOpener{frames: []image.Image{red, green}}

	s, err := New(smallConfig(), o.open)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	seed := s.Current()

	if err := s.Acquire(); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer s.Release()

	f, err := s.GrabFrame(false)
	if err != nil {
		t.Fatalf("GrabFrame: %v", err)
	}
	if f.At(0, 0).H != 0 {
		t.Errorf("first frame hue: got %d", f.At(0, 0).H)
	}
	if s.Current() != seed {
		t.Error("GrabFrame(false) replaced Current")
	}

	f, err = s.GrabFrame(true)
	if err != nil {
		t.Fatalf("GrabFrame: %v", err)
	}
	if s.Current() != f || f.At(0, 0).H != 60 {
		t.Error("GrabFrame(true) did not update Current")
	}

	_, err = s.GrabFrame(true)
	var acqErr *AcquisitionError
	if !errors.As(err, &acqErr) {
		t.Fatalf("got %v, want *AcquisitionError", err)
	}
	if acqErr.Op != "read" || acqErr.Device != 2 {
		t.Errorf("AcquisitionError: %+v", acqErr)
	}
	if s.Current() != f {
		t.Error("failed read replaced Current")
	}
}

func TestSource_Mirror(t *testing.T) {
	img := createTestImage(4, 2, color.Black)
	img.Set(0, 0, color.RGBA{0, 0, 255, 255})
	img.Set(0, 1, color.RGBA{0, 0, 255, 255})

	cfg := smallConfig()
	cfg.Mirror = true
	s, err := New(cfg, ImagesOpener(false, img))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if !s.Current().Nonzero(3, 0) || s.Current().Nonzero(0, 0) {
		t.Error("frame was not mirrored")
	}
}

func TestSource_ReleaseError(t *testing.T) {
	o := &fakeOpener{frames: []image.Image{createTestImage(4, 2, color.White)}, relErr: errors.New("stuck")}
	if _, err := New(smallConfig(), o.open); err == nil {
		t.Fatal("expected seed release error")
	}
	if o.released != 1 {
		t.Errorf("releases: got %d, want 1", o.released)
	}
}

func TestAcquisitionError(t *testing.T) {
	cause := errors.New("no such device")
	err := error(&AcquisitionError{Device: 1, Op: "open", Err: cause})

	if !errors.Is(err, ErrAcquisition) {
		t.Error("errors.Is(ErrAcquisition) false")
	}
	if !errors.Is(err, cause) {
		t.Error("cause not unwrapped")
	}
	if errors.Is(err, ErrInvalidState) {
		t.Error("matched ErrInvalidState")
	}
	if err.Error() != "capture: open device 1: no such device" {
		t.Errorf("Error: got %q", err.Error())
	}

	bare := &AcquisitionError{Device: 0, Op: "read"}
	if bare.Error() != "capture: read device 0 failed" {
		t.Errorf("Error: got %q", bare.Error())
	}
}

func TestImagesOpener(t *testing.T) {
	a := createTestImage(2, 2, color.White)
	b := createTestImage(2, 2, color.Black)

	tests := []struct {
		name  string
		loop  bool
		reads int
		want  int // successful reads
	}{
		{"once", false, 4, 2},
		{"loop", true, 5, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev, err := ImagesOpener(tt.loop, a, b)(0)
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			defer dev.Release()

			got := 0
			for i := 0; i < tt.reads; i++ {
				img, ok := dev.Read()
				if !ok {
					break
				}
				want := image.Image(a)
				if i%2 == 1 {
					want = b
				}
				if img != want {
					t.Errorf("read %d returned the wrong image", i)
				}
				got++
			}
			if got != tt.want {
				t.Errorf("reads: got %d, want %d", got, tt.want)
			}
		})
	}

	if _, err := ImagesOpener(true)(0); err == nil {
		t.Error("expected error with no images")
	}
}

func TestStillOpener(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "frame.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := png.Encode(f, createTestImage(8, 4, color.RGBA{0, 0, 255, 255})); err != nil {
		t.Fatalf("encode: %v", err)
	}
	f.Close()

	cache := imaging.NewImageCache()
	s, err := New(smallConfig(), StillOpener(cache, true, path))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if s.Current().At(1, 1).H != 120 {
		t.Errorf("pixel: got %+v", s.Current().At(1, 1))
	}
	if cache.Len() != 1 {
		t.Errorf("cache: got %d images, want 1", cache.Len())
	}

	_, err = New(smallConfig(), StillOpener(cache, true, filepath.Join(dir, "missing.png")))
	if !errors.Is(err, ErrAcquisition) {
		t.Errorf("missing file: got %v, want ErrAcquisition", err)
	}
	if _, err := New(smallConfig(), StillOpener(cache, true)); err == nil {
		t.Error("expected error with no paths")
	}
}
