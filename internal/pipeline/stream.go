package pipeline

import (
	"errors"
	"iter"
	"log/slog"

	"github.com/google/uuid"
)

// Sentinel errors for stream misuse.
var (
	// ErrStreamActive is returned when a second stream tries to take the
	// device while another stream of the same driver still holds it.
	ErrStreamActive = errors.New("pipeline: another stream holds the device")

	// ErrStreamClosed is returned by Next on a stream that was already closed.
	ErrStreamClosed = errors.New("pipeline: stream closed")
)

type streamState int

const (
	stateIdle streamState = iota
	stateRunning
	stateClosed
)

func (s streamState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateRunning:
		return "running"
	default:
		return "closed"
	}
}

// Stream is a pull-based, single-pass sequence of per-frame results.
//
// The lifecycle is an explicit state machine:
//
//	idle --Next--> running --Close / read error--> closed
//
// The device is acquired on the first Next and released exactly once when
// the stream closes, whichever way that happens. A closed stream never
// restarts; ask the Driver for a new one.
//
// Stream is not safe for concurrent use.
//
// Typical use:
//
//	s := driver.KeyPoints(boundaries)
//	defer s.Close()
//	for s.Next() {
//	    points := s.Value()
//	    ...
//	}
//	if err := s.Err(); err != nil {
//	    ...
//	}
type Stream[T any] struct {
	id     string
	driver *Driver
	step   func() (T, error)
	state  streamState
	value  T
	err    error
	frames int
	log    *slog.Logger
}

func newStream[T any](d *Driver, mode string, step func() (T, error)) *Stream[T] {
	id := uuid.NewString()
	return &Stream[T]{
		id:     id,
		driver: d,
		step:   step,
		log:    d.log.With("stream_id", id, "mode", mode),
	}
}

// ID returns the stream's unique id, also attached to its log lines.
func (s *Stream[T]) ID() string {
	return s.id
}

// Frames returns the number of results produced so far.
func (s *Stream[T]) Frames() int {
	return s.frames
}

// Next produces the next result. It returns false when the stream is
// closed or a frame could not be produced; Err tells which.
func (s *Stream[T]) Next() bool {
	switch s.state {
	case stateClosed:
		if s.err == nil {
			s.err = ErrStreamClosed
		}
		return false
	case stateIdle:
		if err := s.driver.claim(s.id); err != nil {
			s.err = err
			s.state = stateClosed
			return false
		}
		s.state = stateRunning
		s.log.Debug("stream started")
	}

	v, err := s.step()
	if err != nil {
		if relErr := s.shutdown(); relErr != nil {
			err = errors.Join(err, relErr)
		}
		s.err = err
		s.log.Error("stream stopped", "error", err, "frames", s.frames)
		return false
	}

	s.value = v
	s.frames++
	return true
}

// Value returns the result produced by the last successful Next.
func (s *Stream[T]) Value() T {
	return s.value
}

// Err returns the error that ended the stream, or nil if it was closed by
// the consumer (or is still running).
func (s *Stream[T]) Err() error {
	if errors.Is(s.err, ErrStreamClosed) {
		return nil
	}
	return s.err
}

// Close stops the stream and releases the device. It is safe to call more
// than once; only the first call releases.
func (s *Stream[T]) Close() error {
	if s.state == stateClosed {
		return nil
	}
	if s.state == stateIdle {
		s.state = stateClosed
		return nil
	}
	s.log.Debug("stream closed by consumer", "frames", s.frames)
	return s.shutdown()
}

func (s *Stream[T]) shutdown() error {
	s.state = stateClosed
	return s.driver.release(s.id)
}

// All adapts the stream to a range-over-func sequence. Breaking out of the
// loop, returning, or panicking inside it closes the stream and releases the
// device. Check Err after the loop for the reason it ended.
func (s *Stream[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		defer s.Close()
		for s.Next() {
			if !yield(s.Value()) {
				return
			}
		}
	}
}
