package detection

import "github.com/ironsheep/color-tracker/internal/imaging"

// ExtractClusters labels the connected regions of a filtered frame and
// returns the bounding rect of each, ordered by label id.
//
// The frame is binarized first (any nonzero channel is set). An all-zero
// frame yields an empty, non-nil slice: no clusters is not an error.
func ExtractClusters(frame *imaging.Frame) []Rect {
	return ExtractMaskClusters(Binarize(frame))
}

// ExtractMaskClusters is ExtractClusters for an already binary mask.
//
// Each rect is the minimal box covering exactly the pixels of one 8-connected
// component. Rects are reduced in a single pass over the label image rather
// than isolating every label separately; the result is identical.
func ExtractMaskClusters(m *Mask) []Rect {
	labels, count := Label(m)
	rects := make([]Rect, count)
	if count == 0 {
		return rects
	}

	seen := make([]bool, count)
	for idx, l := range labels {
		if l == 0 {
			continue
		}
		x, y := idx%m.Width, idx/m.Width
		i := l - 1
		if !seen[i] {
			seen[i] = true
			rects[i] = Rect{XMin: x, YMin: y, XMax: x, YMax: y}
			continue
		}
		r := &rects[i]
		if x < r.XMin {
			r.XMin = x
		}
		if x > r.XMax {
			r.XMax = x
		}
		// Raster order never revisits an earlier row, so YMin is final.
		if y > r.YMax {
			r.YMax = y
		}
	}

	return rects
}

// FindBasicRect returns the tight bounding box of every set pixel in m:
// (min column, min row, max column, max row).
//
// ok is false when no pixel is set. That "no rectangle" result is distinct
// from the (0,0,0,0) sentinel used after key-point selection.
func FindBasicRect(m *Mask) (r Rect, ok bool) {
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if !m.Bits[y*m.Width+x] {
				continue
			}
			if !ok {
				r = Rect{XMin: x, YMin: y, XMax: x, YMax: y}
				ok = true
				continue
			}
			if x < r.XMin {
				r.XMin = x
			}
			if x > r.XMax {
				r.XMax = x
			}
			r.YMax = y
		}
	}
	return r, ok
}

// FindFrameRect is FindBasicRect over a filtered frame.
func FindFrameRect(frame *imaging.Frame) (Rect, bool) {
	return FindBasicRect(Binarize(frame))
}
