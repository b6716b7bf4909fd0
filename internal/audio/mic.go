package audio

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// MicSource captures the system microphone through PortAudio.
type MicSource struct {
	// Device selects an input by 1-based index or name prefix; empty picks
	// the default input device.
	Device     string
	SampleRate int
	BufferSize int
}

// Name implements Source.
func (s *MicSource) Name() string {
	if s.Device == "" {
		return "default microphone"
	}
	return "microphone " + s.Device
}

// Acquire implements Source.
func (s *MicSource) Acquire(ctx context.Context) (Analyser, error) {
	if err := ctx.Err(); err != nil {
		return nil, &AcquisitionError{Source: s.Name(), Err: err}
	}

	if err := portaudio.Initialize(); err != nil {
		return nil, &AcquisitionError{Source: s.Name(), Err: fmt.Errorf("%w: %v", ErrNoDevice, err)}
	}

	info, err := s.findDevice()
	if err != nil {
		portaudio.Terminate()
		return nil, &AcquisitionError{Source: s.Name(), Err: err}
	}

	size := s.BufferSize
	if size <= 0 {
		size = DefaultBufferSize
	}
	sampleRate := float64(s.SampleRate)
	if sampleRate <= 0 {
		sampleRate = info.DefaultSampleRate
	}

	a := &micAnalyser{
		size: size,
		ring: make([]float32, size),
	}

	p := portaudio.LowLatencyParameters(info, nil)
	p.Input.Channels = 1
	p.Output.Channels = 0
	p.SampleRate = sampleRate
	p.FramesPerBuffer = size

	stream, err := portaudio.OpenStream(p, a.capture)
	if err != nil {
		portaudio.Terminate()
		return nil, &AcquisitionError{Source: s.Name(), Err: streamError("open input", err)}
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, &AcquisitionError{Source: s.Name(), Err: streamError("start input", err)}
	}

	a.stream = stream
	return a, nil
}

// streamError maps a PortAudio failure onto the acquisition error kinds.
// Host API errors are how operating systems refuse microphone access.
func streamError(op string, err error) error {
	var kind error
	switch {
	case errors.Is(err, portaudio.InvalidDevice),
		errors.Is(err, portaudio.DeviceUnavailable),
		errors.Is(err, portaudio.NoDefaultInputDevice),
		errors.Is(err, portaudio.InvalidChannelCount),
		errors.Is(err, portaudio.BadIODeviceCombination):
		kind = ErrNoDevice
	case errors.Is(err, portaudio.InvalidSampleRate),
		errors.Is(err, portaudio.SampleFormatNotSupported),
		errors.Is(err, portaudio.BufferTooBig),
		errors.Is(err, portaudio.BufferTooSmall),
		errors.Is(err, portaudio.InvalidFlag):
		kind = ErrUnsupported
	case errors.As(err, new(portaudio.UnanticipatedHostError)):
		kind = ErrPermissionDenied
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %v", kind, op, err)
}

func (s *MicSource) findDevice() (*portaudio.DeviceInfo, error) {
	if s.Device == "" {
		info, err := portaudio.DefaultInputDevice()
		if err != nil || info == nil || info.MaxInputChannels == 0 {
			return nil, ErrNoDevice
		}
		return info, nil
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoDevice, err)
	}

	if i, err := strconv.Atoi(s.Device); err == nil && i > 0 && i <= len(devices) {
		if devices[i-1].MaxInputChannels > 0 {
			return devices[i-1], nil
		}
	}
	for _, d := range devices {
		if d.MaxInputChannels > 0 && strings.HasPrefix(d.Name, s.Device) {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoDevice, s.Device)
}

// ListInputDevices returns the names of devices that can record, numbered as
// accepted by MicSource.Device.
func ListInputDevices() ([]string, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}
	defer portaudio.Terminate()

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}

	var list []string
	for i, d := range devices {
		if d.MaxInputChannels == 0 {
			continue
		}
		list = append(list, fmt.Sprintf("%d. %s (in:%d, %.0f Hz)", i+1, d.Name, d.MaxInputChannels, d.DefaultSampleRate))
	}
	return list, nil
}

type micAnalyser struct {
	mu     sync.Mutex
	stream *portaudio.Stream
	size   int
	ring   []float32
	closed bool
}

// capture runs on the PortAudio callback thread.
func (a *micAnalyser) capture(in []float32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(in) >= len(a.ring) {
		copy(a.ring, in[len(in)-len(a.ring):])
		return
	}
	copy(a.ring, a.ring[len(in):])
	copy(a.ring[len(a.ring)-len(in):], in)
}

func (a *micAnalyser) Size() int { return a.size }

func (a *micAnalyser) TimeDomain(dst []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrReleased
	}
	for i := range dst {
		if i < len(a.ring) {
			dst[i] = toByteSample(float64(a.ring[i]))
		} else {
			dst[i] = 128
		}
	}
	return nil
}

func (a *micAnalyser) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	stream := a.stream
	a.mu.Unlock()

	// Stop outside the lock: PortAudio waits for the callback to return.
	var err error
	if stream != nil {
		if stopErr := stream.Stop(); stopErr != nil {
			err = fmt.Errorf("stop input: %w", stopErr)
		}
		stream.Close()
	}
	portaudio.Terminate()
	return err
}
