//go:build !gocv

package capture

// GoCVAvailable reports whether this build links OpenCV.
const GoCVAvailable = false

// GoCVOpener returns an opener that always fails with ErrNoBackend.
// Build with -tags gocv to link OpenCV.
func GoCVOpener() Opener {
	return func(int) (Device, error) {
		return nil, ErrNoBackend
	}
}
