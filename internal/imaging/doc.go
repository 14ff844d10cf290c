// Package imaging turns raw RGB captures into HSV frames and filters them by
// color.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based with the origin at the
// top-left corner:
//   - X: column (0 = leftmost pixel)
//   - Y: row (0 = topmost pixel)
//
// # Color Representation
//
// Frames store HSV in the 8-bit convention used by OpenCV, so HSV ranges
// written for cv2.inRange work unchanged:
//   - H: 0-179 (degrees / 2)
//   - S: 0-255
//   - V: 0-255
//
// # Pipeline Stages
//
//   - Prepare: mirror, area-average downscale (disintegration/imaging Box
//     filter) and RGB to HSV (go-colorful)
//   - Filter: zero every pixel outside an inclusive ColorBoundary
//   - ToRGB: convert an HSV frame back for overlays
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Frame is a plain value container
// and must be synchronized by the caller if shared and mutated.
package imaging
