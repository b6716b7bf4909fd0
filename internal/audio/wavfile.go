package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"
)

// FileSource replays a WAV file as if it were a live input, paced by the
// wall clock and looping at the end of the file.
type FileSource struct {
	Path       string
	BufferSize int
	Now        func() time.Time
}

// Name implements Source.
func (s *FileSource) Name() string {
	return "file " + s.Path
}

// Acquire implements Source.
func (s *FileSource) Acquire(ctx context.Context) (Analyser, error) {
	if err := ctx.Err(); err != nil {
		return nil, &AcquisitionError{Source: s.Name(), Err: err}
	}
	reader, meta, err := OpenAudioFile(s.Path)
	if err != nil {
		kind := err
		if errors.Is(err, os.ErrNotExist) {
			kind = fmt.Errorf("%w: %v", ErrNoDevice, err)
		} else if errors.Is(err, os.ErrPermission) {
			kind = fmt.Errorf("%w: %v", ErrPermissionDenied, err)
		}
		return nil, &AcquisitionError{Source: s.Name(), Err: kind}
	}

	size := s.BufferSize
	if size <= 0 {
		size = DefaultBufferSize
	}
	now := s.Now
	if now == nil {
		now = time.Now
	}

	return &fileAnalyser{
		reader:     reader,
		sampleRate: meta.SampleRate,
		size:       size,
		start:      now(),
		now:        now,
		scratch:    make([]float64, size),
	}, nil
}

type fileAnalyser struct {
	mu         sync.Mutex
	reader     *Reader
	sampleRate int
	size       int
	start      time.Time
	now        func() time.Time
	scratch    []float64
	closed     bool
}

func (a *fileAnalyser) Size() int { return a.size }

func (a *fileAnalyser) TimeDomain(dst []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrReleased
	}

	offset := int(a.now().Sub(a.start).Seconds() * float64(a.sampleRate))
	if err := a.reader.ReadAt(a.scratch, offset, true); err != nil {
		return err
	}
	for i := range dst {
		if i < len(a.scratch) {
			dst[i] = toByteSample(a.scratch[i])
		} else {
			dst[i] = 128
		}
	}
	return nil
}

func (a *fileAnalyser) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	return nil
}
