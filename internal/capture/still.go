package capture

import (
	"fmt"
	"image"

	"github.com/ironsheep/color-tracker/internal/imaging"
)

// stillDevice replays a fixed list of images as frames.
type stillDevice struct {
	frames []image.Image
	next   int
	loop   bool
}

func (d *stillDevice) Read() (image.Image, bool) {
	if d.next >= len(d.frames) {
		if !d.loop || len(d.frames) == 0 {
			return nil, false
		}
		d.next = 0
	}
	img := d.frames[d.next]
	d.next++
	return img, true
}

func (d *stillDevice) Release() error {
	return nil
}

// ImagesOpener replays in-memory images. With loop the sequence repeats
// forever; without it the read after the last image fails the way an
// unplugged camera does. The device index is ignored.
func ImagesOpener(loop bool, imgs ...image.Image) Opener {
	return func(int) (Device, error) {
		if len(imgs) == 0 {
			return nil, fmt.Errorf("no images to replay")
		}
		return &stillDevice{frames: imgs, loop: loop}, nil
	}
}

// StillOpener replays image files loaded through cache. Every file is
// decoded when the device is opened, so a missing file fails Acquire rather
// than a later read.
func StillOpener(cache *imaging.ImageCache, loop bool, paths ...string) Opener {
	return func(int) (Device, error) {
		if len(paths) == 0 {
			return nil, fmt.Errorf("no image paths to replay")
		}
		imgs := make([]image.Image, 0, len(paths))
		for _, p := range paths {
			img, err := cache.Load(p)
			if err != nil {
				return nil, err
			}
			imgs = append(imgs, img)
		}
		return &stillDevice{frames: imgs, loop: loop}, nil
	}
}
