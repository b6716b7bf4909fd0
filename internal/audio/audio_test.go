package audio

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/gordonklaus/portaudio"
)

// writeTestTone writes a 16-bit mono sine WAV file and returns its path.
func writeTestTone(t *testing.T, sampleRate int, secs float64, freq float64) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "tone.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create wav: %v", err)
	}
	defer f.Close()

	n := int(secs * float64(sampleRate))
	data := make([]int, n)
	for i := range data {
		data[i] = int(0.5 * math.MaxInt16 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)))
	}

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("write wav: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close wav: %v", err)
	}
	return path
}

func TestOpenAudioFile(t *testing.T) {
	path := writeTestTone(t, 8000, 0.5, 440)

	reader, meta, err := OpenAudioFile(path)
	if err != nil {
		t.Fatalf("OpenAudioFile failed: %v", err)
	}
	if meta.SampleRate != 8000 {
		t.Errorf("SampleRate = %d, want 8000", meta.SampleRate)
	}
	if meta.Channels != 1 {
		t.Errorf("Channels = %d, want 1", meta.Channels)
	}
	if math.Abs(meta.Duration-0.5) > 0.01 {
		t.Errorf("Duration = %.3f, want 0.5", meta.Duration)
	}
	if reader.Len() != 4000 {
		t.Errorf("Len() = %d, want 4000", reader.Len())
	}

	// Normalised peak should reach 1.0
	buf := make([]float64, reader.Len())
	if err := reader.ReadAt(buf, 0, false); err != nil {
		t.Fatalf("ReadAt failed: %v", err)
	}
	peak := 0.0
	for _, v := range buf {
		peak = math.Max(peak, math.Abs(v))
	}
	if math.Abs(peak-1.0) > 1e-6 {
		t.Errorf("peak = %f, want 1.0 after normalisation", peak)
	}

	if err := reader.ReadAt(buf, reader.Len(), false); !errors.Is(err, ErrEndOfFile) {
		t.Errorf("ReadAt past end = %v, want ErrEndOfFile", err)
	}
}

func TestFileSourceAcquire(t *testing.T) {
	path := writeTestTone(t, 8000, 0.25, 200)

	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	src := &FileSource{Path: path, BufferSize: 256, Now: func() time.Time { return clock }}

	a, err := src.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if a.Size() != 256 {
		t.Errorf("Size() = %d, want 256", a.Size())
	}

	dst := make([]byte, a.Size())
	// Replay wraps past the end of the file
	clock = clock.Add(10 * time.Second)
	if err := a.TimeDomain(dst); err != nil {
		t.Fatalf("TimeDomain failed: %v", err)
	}

	varied := false
	for _, b := range dst {
		if b != 128 {
			varied = true
			break
		}
	}
	if !varied {
		t.Error("TimeDomain returned flat silence for a sine file")
	}

	if err := a.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := a.TimeDomain(dst); !errors.Is(err, ErrReleased) {
		t.Errorf("TimeDomain after Close = %v, want ErrReleased", err)
	}
}

func TestFileSourceMissingFile(t *testing.T) {
	src := &FileSource{Path: filepath.Join(t.TempDir(), "missing.wav")}

	_, err := src.Acquire(context.Background())
	var acqErr *AcquisitionError
	if !errors.As(err, &acqErr) {
		t.Fatalf("Acquire error = %v, want *AcquisitionError", err)
	}
	if !errors.Is(err, ErrNoDevice) {
		t.Errorf("Acquire error = %v, want ErrNoDevice", err)
	}
}

func TestSynthSource(t *testing.T) {
	t.Run("serves_samples", func(t *testing.T) {
		src := &SynthSource{BufferSize: 128}
		a, err := src.Acquire(context.Background())
		if err != nil {
			t.Fatalf("Acquire failed: %v", err)
		}
		dst := make([]byte, a.Size())
		if err := a.TimeDomain(dst); err != nil {
			t.Fatalf("TimeDomain failed: %v", err)
		}
		a.Close()
		a.Close()
		if err := a.TimeDomain(dst); !errors.Is(err, ErrReleased) {
			t.Errorf("TimeDomain after Close = %v, want ErrReleased", err)
		}
	})

	t.Run("configured_failure", func(t *testing.T) {
		src := &SynthSource{Fail: ErrPermissionDenied}
		_, err := src.Acquire(context.Background())
		if !errors.Is(err, ErrPermissionDenied) {
			t.Errorf("Acquire error = %v, want ErrPermissionDenied", err)
		}
	})
}

func TestAcquireCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sources := []Source{
		&SynthSource{},
		&FileSource{Path: "unused.wav"},
		&MicSource{},
	}
	for _, src := range sources {
		t.Run(src.Name(), func(t *testing.T) {
			_, err := src.Acquire(ctx)
			var acqErr *AcquisitionError
			if !errors.As(err, &acqErr) {
				t.Fatalf("Acquire error = %v, want *AcquisitionError", err)
			}
			if !errors.Is(err, context.Canceled) {
				t.Errorf("Acquire error = %v, want context.Canceled", err)
			}
		})
	}
}

func TestStreamError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"busy_device", portaudio.DeviceUnavailable, ErrNoDevice},
		{"invalid_device", portaudio.InvalidDevice, ErrNoDevice},
		{"mono_unsupported", portaudio.InvalidChannelCount, ErrNoDevice},
		{"sample_rate", portaudio.InvalidSampleRate, ErrUnsupported},
		{"sample_format", portaudio.SampleFormatNotSupported, ErrUnsupported},
		{"host_refusal", portaudio.UnanticipatedHostError{Code: -9999, Text: "access denied"}, ErrPermissionDenied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := streamError("open input", tt.err)
			if !errors.Is(err, tt.want) {
				t.Errorf("streamError(%v) = %v, want %v", tt.err, err, tt.want)
			}
			if tt.want != ErrPermissionDenied && errors.Is(err, ErrPermissionDenied) {
				t.Errorf("streamError(%v) reported a permission problem", tt.err)
			}
		})
	}

	t.Run("unclassified", func(t *testing.T) {
		cause := portaudio.InternalError
		err := streamError("start input", cause)
		if !errors.Is(err, cause) {
			t.Errorf("streamError lost its cause: %v", err)
		}
		for _, kind := range []error{ErrNoDevice, ErrUnsupported, ErrPermissionDenied} {
			if errors.Is(err, kind) {
				t.Errorf("streamError(%v) classified as %v", cause, kind)
			}
		}
	})
}

func TestToByteSample(t *testing.T) {
	tests := []struct {
		in   float64
		want byte
	}{
		{0, 128},
		{1, 255},
		{-1, 1},
		{2, 255},
		{-2, 1},
	}
	for _, tt := range tests {
		if got := toByteSample(tt.in); got != tt.want {
			t.Errorf("toByteSample(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
