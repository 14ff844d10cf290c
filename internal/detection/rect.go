package detection

import (
	"encoding/json"
	"fmt"

	"github.com/ironsheep/color-tracker/internal/imaging"
)

// Rect is an axis-aligned bounding box in pixel coordinates.
//
// X is the column and Y is the row. Both corners are inclusive: a single
// pixel at (3, 4) has the rect (3, 4, 3, 4).
//
// The all-zero Rect is the "no detection" sentinel. It is distinguished from
// a legitimate zero-area region at the origin by convention only; see IsZero.
type Rect struct {
	XMin int
	YMin int
	XMax int
	YMax int
}

// Area returns (XMax-XMin)*(YMax-YMin). A single-pixel or single-row cluster
// has zero area.
func (r Rect) Area() int {
	return (r.XMax - r.XMin) * (r.YMax - r.YMin)
}

// IsZero reports whether r is the (0,0,0,0) "absent" sentinel.
func (r Rect) IsZero() bool {
	return r.XMin == 0 && r.YMin == 0 && r.XMax == 0 && r.YMax == 0
}

// Center returns the midpoint of the rect.
func (r Rect) Center() (x, y float64) {
	return float64(r.XMin+r.XMax) / 2, float64(r.YMin+r.YMax) / 2
}

// Width returns XMax - XMin.
func (r Rect) Width() int { return r.XMax - r.XMin }

// Height returns YMax - YMin.
func (r Rect) Height() int { return r.YMax - r.YMin }

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d,%d,%d)", r.XMin, r.YMin, r.XMax, r.YMax)
}

// MarshalJSON encodes the rect as [xmin, ymin, xmax, ymax].
func (r Rect) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]int{r.XMin, r.YMin, r.XMax, r.YMax})
}

// UnmarshalJSON decodes a [xmin, ymin, xmax, ymax] array.
func (r *Rect) UnmarshalJSON(data []byte) error {
	var v [4]int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = Rect{XMin: v[0], YMin: v[1], XMax: v[2], YMax: v[3]}
	return nil
}

// NormRect is a Rect rescaled into [0, 1] by the frame width and height.
type NormRect struct {
	XMin float64
	YMin float64
	XMax float64
	YMax float64
}

// IsZero reports whether all four coordinates are exactly zero, the same
// "absent" test used before normalization.
func (r NormRect) IsZero() bool {
	return r.XMin == 0 && r.YMin == 0 && r.XMax == 0 && r.YMax == 0
}

// Center returns the midpoint of the rect.
func (r NormRect) Center() (x, y float64) {
	return (r.XMin + r.XMax) / 2, (r.YMin + r.YMax) / 2
}

// Scale maps the rect onto a surface of the given size.
func (r NormRect) Scale(width, height float64) (xMin, yMin, xMax, yMax float64) {
	return r.XMin * width, r.YMin * height, r.XMax * width, r.YMax * height
}

func (r NormRect) String() string {
	return fmt.Sprintf("(%.4f,%.4f,%.4f,%.4f)", r.XMin, r.YMin, r.XMax, r.YMax)
}

// MarshalJSON encodes the rect as [xmin, ymin, xmax, ymax].
func (r NormRect) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]float64{r.XMin, r.YMin, r.XMax, r.YMax})
}

// UnmarshalJSON decodes a [xmin, ymin, xmax, ymax] array.
func (r *NormRect) UnmarshalJSON(data []byte) error {
	var v [4]float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = NormRect{XMin: v[0], YMin: v[1], XMax: v[2], YMax: v[3]}
	return nil
}

// ClusterMap holds every cluster found for each tracked color in one frame,
// in label order.
type ClusterMap map[imaging.ColorBoundary][]Rect

// KeyPointMap holds the largest cluster per color, or the sentinel.
type KeyPointMap map[imaging.ColorBoundary]Rect

// NormalizedKeyPointMap is a KeyPointMap rescaled into [0, 1].
type NormalizedKeyPointMap map[imaging.ColorBoundary]NormRect
