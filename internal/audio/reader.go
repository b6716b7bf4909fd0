// Package audio provides the audio input boundary: sources that acquire a
// live stream and the analysis handles that serve time-domain sample buffers.
package audio

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/transforms"
	"github.com/go-audio/wav"
)

// Metadata contains audio file metadata
type Metadata struct {
	Duration   float64 // seconds
	SampleRate int
	Channels   int
	BitDepth   int
}

// Reader decodes a WAV file into memory for replay as a live stream
type Reader struct {
	path    string
	samples []float64 // mono, normalised to [-1, 1]
	meta    *Metadata
}

// OpenAudioFile opens a WAV file and decodes it to a mono float buffer
func OpenAudioFile(filename string) (*Reader, *Metadata, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, nil, fmt.Errorf("invalid WAV file: %s", filename)
	}

	pcm, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode PCM data: %w", err)
	}
	if pcm == nil || len(pcm.Data) == 0 {
		return nil, nil, fmt.Errorf("no audio samples found in file: %s", filename)
	}

	format := pcm.Format
	if format == nil {
		format = decoder.Format()
	}

	floatBuf := pcm.AsFloatBuffer()
	floatBuf.Format = &audio.Format{NumChannels: format.NumChannels, SampleRate: format.SampleRate}
	if format.NumChannels > 1 {
		if err := transforms.MonoDownmix(floatBuf); err != nil {
			return nil, nil, fmt.Errorf("failed to downmix: %w", err)
		}
	}
	transforms.NormalizeMax(floatBuf)

	frames := len(floatBuf.Data)
	metadata := &Metadata{
		SampleRate: format.SampleRate,
		Channels:   format.NumChannels,
		BitDepth:   int(decoder.BitDepth),
	}
	if format.SampleRate > 0 {
		metadata.Duration = float64(frames) / float64(format.SampleRate)
	}

	reader := &Reader{
		path:    filename,
		samples: floatBuf.Data,
		meta:    metadata,
	}

	return reader, metadata, nil
}

// ErrEndOfFile is returned by ReadAt past the last sample
var ErrEndOfFile = errors.New("end of audio file")

// ReadAt copies mono samples starting at frame offset into dst, wrapping to
// the start of the file when loop is true
func (r *Reader) ReadAt(dst []float64, offset int, loop bool) error {
	n := len(r.samples)
	if n == 0 {
		return ErrEndOfFile
	}
	if !loop && offset >= n {
		return ErrEndOfFile
	}
	for i := range dst {
		pos := offset + i
		if loop {
			pos %= n
		} else if pos >= n {
			dst[i] = 0
			continue
		}
		dst[i] = r.samples[pos]
	}
	return nil
}

// Len returns the number of decoded mono frames
func (r *Reader) Len() int {
	return len(r.samples)
}

// Metadata returns the file metadata
func (r *Reader) Metadata() *Metadata {
	return r.meta
}
