package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Default capture target resolution.
const (
	DefaultWidth  = 300
	DefaultHeight = 169
)

// PrepareOptions controls how a raw capture is turned into a working frame.
type PrepareOptions struct {
	// Width and Height are the target resolution. Zero keeps the source size.
	Width  int
	Height int

	// Mirror flips the image horizontally so a user-facing camera behaves
	// like a mirror.
	Mirror bool
}

// DefaultPrepareOptions returns the capture defaults: 300x169, mirrored.
func DefaultPrepareOptions() PrepareOptions {
	return PrepareOptions{
		Width:  DefaultWidth,
		Height: DefaultHeight,
		Mirror: true,
	}
}

// Prepare mirrors and downscales a raw image, then converts it to HSV.
//
// Resizing uses the Box filter, which averages all source pixels falling
// under each destination pixel. For downscaling that is an area average and
// avoids the aliasing a nearest-neighbour resize would introduce.
func Prepare(img image.Image, opts PrepareOptions) (*Frame, error) {
	if img == nil {
		return nil, fmt.Errorf("nil image")
	}
	if opts.Width < 0 || opts.Height < 0 {
		return nil, fmt.Errorf("invalid target size %dx%d", opts.Width, opts.Height)
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("empty image")
	}

	var work image.Image = img
	if opts.Mirror {
		work = imaging.FlipH(work)
	}

	width, height := opts.Width, opts.Height
	if width == 0 {
		width = bounds.Dx()
	}
	if height == 0 {
		height = bounds.Dy()
	}
	if width != work.Bounds().Dx() || height != work.Bounds().Dy() {
		work = imaging.Resize(work, width, height, imaging.Box)
	}

	return ToHSV(work), nil
}
