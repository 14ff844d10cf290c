package imaging

// Mask returns the per-pixel membership of frame in boundary, in row-major
// order. A pixel is a member when all three channels fall inside the
// inclusive range.
func Mask(frame *Frame, boundary ColorBoundary) []bool {
	mask := make([]bool, frame.Width*frame.Height)
	for i := range mask {
		p := HSV{H: frame.Pix[i*3], S: frame.Pix[i*3+1], V: frame.Pix[i*3+2]}
		mask[i] = boundary.Contains(p)
	}
	return mask
}

// Filter returns a copy of frame where every pixel outside boundary is zeroed
// on all channels and member pixels keep their value.
//
// Filter never fails. A boundary with lower > upper on some channel yields an
// all-zero frame.
func Filter(frame *Frame, boundary ColorBoundary) *Frame {
	out := NewFrame(frame.Width, frame.Height)
	for i, member := range Mask(frame, boundary) {
		if member {
			copy(out.Pix[i*3:i*3+3], frame.Pix[i*3:i*3+3])
		}
	}
	return out
}
