// Package waveform draws live time-domain audio samples onto a canvas
// surface, one frame per display refresh, while a recording is active.
package waveform

import (
	"image/color"

	"github.com/aeropulse/aeropulse/internal/audio"
	"github.com/aeropulse/aeropulse/internal/canvas"
	"github.com/aeropulse/aeropulse/internal/sched"
)

// Palette
var (
	Background = color.RGBA{15, 23, 42, 255}    // dark slate
	GridColor  = color.RGBA{255, 255, 255, 26}  // 10% white
	NormalLine = color.RGBA{34, 197, 94, 255}   // #22c55e
	AlertLine  = color.RGBA{239, 68, 68, 255}   // #ef4444
)

const (
	gridSpacing = 20
	lineWidth   = 2
	glowRadius  = 10
)

// DefaultThreshold is the level above which the waveform is drawn in the
// alert colour.
const DefaultThreshold = 50

// Renderer schedules the frame loop. Level reports the current wheezing level
// each frame; OnFrame, when set, is called after every drawn frame.
type Renderer struct {
	Sched     sched.Scheduler
	Level     func() float64
	Threshold float64
	OnFrame   func(canvas.Surface)
}

// Task is a running frame loop. It stops when cancelled or when its analyser
// is released.
type Task struct {
	cancel  sched.Cancel
	stopped bool
	frames  int
}

// Cancel stops the loop and drops the pending frame.
func (t *Task) Cancel() {
	if t == nil {
		return
	}
	t.stopped = true
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}

// Done reports whether the loop has stopped.
func (t *Task) Done() bool {
	return t == nil || t.stopped
}

// Frames returns the number of frames drawn so far.
func (t *Task) Frames() int {
	if t == nil {
		return 0
	}
	return t.frames
}

// Start draws the first frame immediately and re-schedules itself on every
// following frame. A nil analyser or surface yields a finished task.
func (r *Renderer) Start(a audio.Analyser, s canvas.Surface) *Task {
	t := &Task{}
	if a == nil || s == nil || r.Sched == nil {
		t.stopped = true
		return t
	}

	buf := make([]byte, a.Size())
	var draw func()
	draw = func() {
		if t.stopped {
			return
		}
		// A released handle ends the loop quietly.
		if err := a.TimeDomain(buf); err != nil {
			t.stopped = true
			t.cancel = nil
			return
		}

		DrawFrame(s, buf, r.level(), r.threshold())
		t.frames++
		if r.OnFrame != nil {
			r.OnFrame(s)
		}
		if !t.stopped {
			t.cancel = r.Sched.NextFrame(draw)
		}
	}
	draw()
	return t
}

func (r *Renderer) level() float64 {
	if r.Level == nil {
		return 0
	}
	return r.Level()
}

func (r *Renderer) threshold() float64 {
	if r.Threshold <= 0 {
		return DefaultThreshold
	}
	return r.Threshold
}

// DrawFrame paints one frame: background, grid, then the sample polyline in
// the colour for the current level.
func DrawFrame(s canvas.Surface, samples []byte, level, threshold float64) {
	if s == nil {
		return
	}
	w, h := s.Size()
	width, height := float64(w), float64(h)

	s.FillRect(0, 0, width, height, Background)

	grid := canvas.Stroke{Color: GridColor, Width: 0.5}
	for y := 0.0; y < height; y += gridSpacing {
		s.Polyline([]canvas.Point{{X: 0, Y: y}, {X: width, Y: y}}, grid)
	}
	for x := 0.0; x < width; x += gridSpacing {
		s.Polyline([]canvas.Point{{X: x, Y: 0}, {X: x, Y: height}}, grid)
	}

	if len(samples) == 0 {
		return
	}

	s.Polyline(SamplePoints(samples, width, height), StrokeFor(level, threshold))
}

// SamplePoints maps byte samples across the surface: sample/128 scaled by half
// the height, so 128 sits on the centre line. The trace ends at the right
// edge's centre.
func SamplePoints(samples []byte, width, height float64) []canvas.Point {
	points := make([]canvas.Point, 0, len(samples)+1)
	slice := width / float64(len(samples))
	x := 0.0
	for _, b := range samples {
		v := float64(b) / 128.0
		points = append(points, canvas.Point{X: x, Y: v * height / 2})
		x += slice
	}
	return append(points, canvas.Point{X: width, Y: height / 2})
}

// StrokeFor returns the waveform stroke for a level: green at or below the
// threshold, red with a glow above it.
func StrokeFor(level, threshold float64) canvas.Stroke {
	if level > threshold {
		return canvas.Stroke{Color: AlertLine, Width: lineWidth, Glow: glowRadius}
	}
	return canvas.Stroke{Color: NormalLine, Width: lineWidth}
}
