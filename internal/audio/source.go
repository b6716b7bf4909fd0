package audio

import (
	"context"
	"errors"
	"fmt"
)

// DefaultBufferSize matches a 2048-point analyser, which serves 1024
// time-domain samples per request.
const DefaultBufferSize = 1024

// Acquisition failure kinds
var (
	ErrPermissionDenied = errors.New("audio input permission denied")
	ErrNoDevice         = errors.New("no audio input device")
	ErrUnsupported      = errors.New("audio input format not supported")
)

// ErrReleased is returned by an analyser after Close.
var ErrReleased = errors.New("audio analyser released")

// AcquisitionError reports that a live stream could not be opened. It is the
// only recoverable, user-facing recording error: the caller may retry.
type AcquisitionError struct {
	Source string
	Err    error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("acquire %s: %v", e.Source, e.Err)
}

func (e *AcquisitionError) Unwrap() error {
	return e.Err
}

// Analyser is a live analysis handle over an acquired stream.
type Analyser interface {
	// Size is the fixed number of samples served per request.
	Size() int
	// TimeDomain fills dst with unsigned 8-bit samples centred on 128.
	// It returns ErrReleased once the handle has been closed.
	TimeDomain(dst []byte) error
	// Close stops the stream. It is safe to call more than once.
	Close() error
}

// Source acquires a continuous audio stream.
type Source interface {
	Name() string
	Acquire(ctx context.Context) (Analyser, error)
}

// toByteSample converts a [-1, 1] sample to the analyser byte scale.
func toByteSample(v float64) byte {
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	return byte(128 + v*127)
}
