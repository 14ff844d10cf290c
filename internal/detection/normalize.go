package detection

import "github.com/ironsheep/color-tracker/internal/imaging"

// Normalize rescales r into [0, 1]: x coordinates by frameWidth, y
// coordinates by frameHeight.
//
// The sentinel is not special-cased; (0,0,0,0) normalizes to (0,0,0,0), so
// "absent" is detected the same way before and after normalization. A
// non-positive dimension also yields the sentinel instead of dividing by zero.
func Normalize(r Rect, frameHeight, frameWidth int) NormRect {
	if frameHeight <= 0 || frameWidth <= 0 {
		return NormRect{}
	}
	w, h := float64(frameWidth), float64(frameHeight)
	return NormRect{
		XMin: float64(r.XMin) / w,
		YMin: float64(r.YMin) / h,
		XMax: float64(r.XMax) / w,
		YMax: float64(r.YMax) / h,
	}
}

// NormalizeAll normalizes every key point against frame's dimensions.
func NormalizeAll(points KeyPointMap, frame *imaging.Frame) NormalizedKeyPointMap {
	height, width := frame.Shape()
	out := make(NormalizedKeyPointMap, len(points))
	for boundary, r := range points {
		out[boundary] = Normalize(r, height, width)
	}
	return out
}
