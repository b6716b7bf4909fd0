package audio

import (
	"context"
	"math"
	"sync"
	"time"
)

// SynthSource generates a breathing-like tone for demos and headless runs
// without an input device.
type SynthSource struct {
	Frequency  float64 // tone frequency in Hz
	SampleRate int
	BufferSize int
	Now        func() time.Time

	// Fail, when set, is returned from every Acquire call.
	Fail error
}

// Name implements Source.
func (s *SynthSource) Name() string {
	return "synthetic tone"
}

// Acquire implements Source.
func (s *SynthSource) Acquire(ctx context.Context) (Analyser, error) {
	if err := ctx.Err(); err != nil {
		return nil, &AcquisitionError{Source: s.Name(), Err: err}
	}
	if s.Fail != nil {
		return nil, &AcquisitionError{Source: s.Name(), Err: s.Fail}
	}

	a := &synthAnalyser{
		freq:       s.Frequency,
		sampleRate: s.SampleRate,
		size:       s.BufferSize,
		now:        s.Now,
	}
	if a.freq <= 0 {
		a.freq = 220
	}
	if a.sampleRate <= 0 {
		a.sampleRate = 44100
	}
	if a.size <= 0 {
		a.size = DefaultBufferSize
	}
	if a.now == nil {
		a.now = time.Now
	}
	a.start = a.now()
	return a, nil
}

type synthAnalyser struct {
	mu         sync.Mutex
	freq       float64
	sampleRate int
	size       int
	start      time.Time
	now        func() time.Time
	closed     bool
}

func (a *synthAnalyser) Size() int { return a.size }

func (a *synthAnalyser) TimeDomain(dst []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrReleased
	}

	t0 := a.now().Sub(a.start).Seconds()
	// Slow 0.25 Hz envelope approximates an inhale/exhale cycle.
	envelope := 0.35 + 0.3*math.Sin(2*math.Pi*0.25*t0)
	for i := range dst {
		t := t0 + float64(i)/float64(a.sampleRate)
		dst[i] = toByteSample(envelope * math.Sin(2*math.Pi*a.freq*t))
	}
	return nil
}

func (a *synthAnalyser) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	return nil
}
