//go:build gocv

package capture

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// GoCVAvailable reports whether this build links OpenCV.
const GoCVAvailable = true

// gocvDevice reads frames from an OpenCV VideoCapture.
type gocvDevice struct {
	vc  *gocv.VideoCapture
	mat gocv.Mat
}

// GoCVOpener opens camera devices through OpenCV.
func GoCVOpener() Opener {
	return func(index int) (Device, error) {
		vc, err := gocv.OpenVideoCapture(index)
		if err != nil {
			return nil, fmt.Errorf("open video capture %d: %w", index, err)
		}
		if !vc.IsOpened() {
			vc.Close()
			return nil, fmt.Errorf("video capture %d did not open", index)
		}
		return &gocvDevice{vc: vc, mat: gocv.NewMat()}, nil
	}
}

func (d *gocvDevice) Read() (image.Image, bool) {
	if ok := d.vc.Read(&d.mat); !ok || d.mat.Empty() {
		return nil, false
	}
	// ToImage converts OpenCV's BGR layout into an RGBA image.
	img, err := d.mat.ToImage()
	if err != nil {
		return nil, false
	}
	return img, true
}

func (d *gocvDevice) Release() error {
	d.mat.Close()
	return d.vc.Close()
}
