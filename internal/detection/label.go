package detection

import "github.com/ironsheep/color-tracker/internal/imaging"

// Mask is a row-major binary image. Bits[y*Width+x] is true for set pixels.
type Mask struct {
	Width  int
	Height int
	Bits   []bool
}

// NewMask allocates an empty mask.
func NewMask(width, height int) *Mask {
	return &Mask{Width: width, Height: height, Bits: make([]bool, width*height)}
}

// Get reports whether (x, y) is set. Out-of-bounds reads return false.
func (m *Mask) Get(x, y int) bool {
	if x < 0 || x >= m.Width || y < 0 || y >= m.Height {
		return false
	}
	return m.Bits[y*m.Width+x]
}

// Set marks (x, y). Out-of-bounds writes are ignored.
func (m *Mask) Set(x, y int, v bool) {
	if x < 0 || x >= m.Width || y < 0 || y >= m.Height {
		return
	}
	m.Bits[y*m.Width+x] = v
}

// Binarize turns a filtered frame into a mask: any nonzero channel becomes a
// set pixel. Collapsing values first keeps neighbouring pixels of different
// shades from being treated as different regions.
func Binarize(frame *imaging.Frame) *Mask {
	m := NewMask(frame.Width, frame.Height)
	for i := range m.Bits {
		p := frame.Pix[i*3 : i*3+3]
		m.Bits[i] = p[0] != 0 || p[1] != 0 || p[2] != 0
	}
	return m
}

// Label assigns a component id to every set pixel of m using 8-connectivity
// (diagonal neighbours are connected).
//
// Returns a row-major label image (0 = background) and the number of
// components. Ids run 1..count in the raster order of each component's first
// pixel, the same ordering scikit-image's label produces.
//
// # Algorithm
//
// Classic two-pass labeling with union-find:
//
//  1. First pass: scan in raster order. For each set pixel look at the
//     already-visited neighbours (W, NW, N, NE). With none, allocate a new
//     provisional label; otherwise take the smallest and union the rest.
//  2. Second pass: replace each provisional label by its root, then renumber
//     roots sequentially in the order they are first met.
//
// Provisional labels are allocated in increasing raster order and union keeps
// the smaller root, so every root is the provisional label of its component's
// first raster pixel and renumbering preserves that order.
func Label(m *Mask) (labels []int, count int) {
	w, h := m.Width, m.Height
	labels = make([]int, w*h)
	parent := []int{0}

	find := func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	union := func(a, b int) int {
		ra, rb := find(a), find(b)
		if ra == rb {
			return ra
		}
		if ra < rb {
			parent[rb] = ra
			return ra
		}
		parent[ra] = rb
		return rb
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			if !m.Bits[idx] {
				continue
			}

			current := 0
			for _, n := range [4][2]int{{-1, 0}, {-1, -1}, {0, -1}, {1, -1}} {
				nx, ny := x+n[0], y+n[1]
				if nx < 0 || nx >= w || ny < 0 {
					continue
				}
				nl := labels[ny*w+nx]
				if nl == 0 {
					continue
				}
				if current == 0 {
					current = find(nl)
				} else {
					current = union(current, nl)
				}
			}

			if current == 0 {
				current = len(parent)
				parent = append(parent, current)
			}
			labels[idx] = current
		}
	}

	final := make([]int, len(parent))
	for idx, l := range labels {
		if l == 0 {
			continue
		}
		root := find(l)
		if final[root] == 0 {
			count++
			final[root] = count
		}
		labels[idx] = final[root]
	}

	return labels, count
}
