package capture

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/ironsheep/color-tracker/internal/imaging"
	"github.com/ironsheep/color-tracker/internal/log"
)

// Device is an opened capture handle.
type Device interface {
	// Read returns the next raw RGB frame. ok is false when no frame could
	// be read, e.g. the device was disconnected.
	Read() (img image.Image, ok bool)

	// Release closes the handle.
	Release() error
}

// Opener opens the capture device with the given index.
type Opener func(index int) (Device, error)

// Config holds frame source settings.
type Config struct {
	DeviceIndex int  // Index passed to the Opener
	Width       int  // Target frame width after resize
	Height      int  // Target frame height after resize
	Mirror      bool // Flip horizontally before resizing
}

// DefaultConfig returns device 0 at 300x169, mirrored.
func DefaultConfig() Config {
	return Config{
		DeviceIndex: 0,
		Width:       imaging.DefaultWidth,
		Height:      imaging.DefaultHeight,
		Mirror:      true,
	}
}

// Source acquires raw frames from a Device and turns them into HSV frames.
//
// The device is exclusively owned by the Source while acquired. Source is
// not safe for concurrent use; the pipeline pulls from it on one goroutine.
type Source struct {
	cfg     Config
	open    Opener
	dev     Device
	current *imaging.Frame
	log     *slog.Logger
}

// New creates a Source and runs one acquire, grab, release cycle so that
// Current returns a valid frame before any streaming starts.
func New(cfg Config, open Opener) (*Source, error) {
	if open == nil {
		return nil, fmt.Errorf("capture: nil opener")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("capture: invalid target size %dx%d", cfg.Width, cfg.Height)
	}

	s := &Source{
		cfg:  cfg,
		open: open,
		log:  log.With("component", "capture", "device", cfg.DeviceIndex),
	}

	if err := s.Acquire(); err != nil {
		return nil, err
	}
	_, grabErr := s.GrabFrame(true)
	relErr := s.Release()
	if grabErr != nil {
		return nil, fmt.Errorf("capture: seed frame: %w", grabErr)
	}
	if relErr != nil {
		return nil, fmt.Errorf("capture: seed release: %w", relErr)
	}

	return s, nil
}

// Config returns the source settings.
func (s *Source) Config() Config {
	return s.cfg
}

// Acquired reports whether the device is currently open.
func (s *Source) Acquired() bool {
	return s.dev != nil
}

// Acquire opens the device. Calling it again while acquired is a no-op.
func (s *Source) Acquire() error {
	if s.dev != nil {
		return nil
	}
	dev, err := s.open(s.cfg.DeviceIndex)
	if err != nil {
		return &AcquisitionError{Device: s.cfg.DeviceIndex, Op: "open", Err: err}
	}
	s.dev = dev
	s.log.Debug("device acquired")
	return nil
}

// Release closes the device. It does nothing if the device is not acquired.
func (s *Source) Release() error {
	if s.dev == nil {
		return nil
	}
	dev := s.dev
	s.dev = nil
	if err := dev.Release(); err != nil {
		s.log.Warn("device release failed", "error", err)
		return fmt.Errorf("capture: release device %d: %w", s.cfg.DeviceIndex, err)
	}
	s.log.Debug("device released")
	return nil
}

// GrabFrame reads one frame, mirrors it, resizes it to the configured size
// with area averaging and converts it to HSV. With updateCache the frame
// becomes the Current frame.
//
// Returns ErrInvalidState before Acquire and an AcquisitionError when the
// device read fails. Neither is retried.
func (s *Source) GrabFrame(updateCache bool) (*imaging.Frame, error) {
	if s.dev == nil {
		return nil, ErrInvalidState
	}

	raw, ok := s.dev.Read()
	if !ok || raw == nil {
		return nil, &AcquisitionError{Device: s.cfg.DeviceIndex, Op: "read"}
	}

	frame, err := imaging.Prepare(raw, imaging.PrepareOptions{
		Width:  s.cfg.Width,
		Height: s.cfg.Height,
		Mirror: s.cfg.Mirror,
	})
	if err != nil {
		return nil, &AcquisitionError{Device: s.cfg.DeviceIndex, Op: "read", Err: err}
	}

	if updateCache {
		s.current = frame
	}
	return frame, nil
}

// Current returns the most recently cached frame.
func (s *Source) Current() *imaging.Frame {
	return s.current
}
