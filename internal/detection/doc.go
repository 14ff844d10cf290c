// Package detection groups color-filtered pixels into clusters and reduces
// them to tracked rectangles.
//
// # Pipeline
//
//  1. Binarize: any nonzero pixel of a filtered frame becomes set
//  2. Label: two-pass union-find connected-component labeling, 8-connected
//  3. ExtractClusters: one minimal bounding Rect per component, label order
//  4. SelectKeyPoints: the largest-area Rect per color, or the sentinel
//  5. Normalize: rescale into [0, 1] by frame width and height
//
// # Coordinate System
//
// Rects use screen convention:
//   - X is the column, Y is the row, origin at the top-left
//   - Both corners are inclusive
//   - (0,0,0,0) means "no detection"
//
// Empty results are values, not errors. A frame with nothing in range gives
// an empty cluster list and a sentinel key point, so tracking loops never
// need error handling for the common "nothing this frame" case.
package detection
