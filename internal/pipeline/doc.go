// Package pipeline turns a capture source into streams of detection results.
//
// Each stream pulls one frame per step and runs the same cycle over it:
//
//	GrabFrame -> Filter (per color) -> ExtractClusters (per color)
//
// then shapes the output for its mode:
//   - Clusters: every cluster rect per color
//   - KeyPoints: the largest cluster per color
//   - NormalizedKeyPoints: key points rescaled into [0, 1]
//   - BasicRects: one rect around all matching pixels per color
//
// Streams acquire the device lazily and release it exactly once, whether
// the consumer closes the stream, breaks out of All, or the device fails.
package pipeline
