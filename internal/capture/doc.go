// Package capture acquires raw camera frames and turns them into HSV frames.
//
// # Lifecycle
//
// A Source owns at most one open Device:
//   - Acquire opens it (idempotent)
//   - GrabFrame reads, mirrors, resizes (area average) and converts to HSV
//   - Release closes it (idempotent)
//
// New runs one acquire, grab, release cycle so a freshly built Source
// already has a Current frame.
//
// # Backends
//
//   - GoCVOpener: OpenCV VideoCapture, requires building with -tags gocv
//   - FFmpegOpener: an ffmpeg child process reading v4l2 devices or video
//     files, decoded as rgb24 rawvideo
//   - StillOpener / ImagesOpener: replays still images, for tools and tests
//
// # Errors
//
// GrabFrame before Acquire returns ErrInvalidState. Open and read failures
// return *AcquisitionError, which matches ErrAcquisition. Neither is
// retried here; recovery is the caller's decision.
package capture
