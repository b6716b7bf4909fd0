package waveform

import (
	"image/color"
	"testing"
	"time"

	"github.com/aeropulse/aeropulse/internal/audio"
	"github.com/aeropulse/aeropulse/internal/canvas"
	"github.com/aeropulse/aeropulse/internal/sched"
)

var epoch = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

// recorder is a Surface that keeps the last frame's drawing calls.
type recorder struct {
	w, h   int
	fills  []color.Color
	lines  [][]canvas.Point
	stroke []canvas.Stroke
}

func (r *recorder) Size() (int, int) { return r.w, r.h }

func (r *recorder) FillRect(_, _, _, _ float64, c color.Color) {
	r.fills = append(r.fills, c)
	r.lines = nil
	r.stroke = nil
}

func (r *recorder) Polyline(points []canvas.Point, s canvas.Stroke) {
	r.lines = append(r.lines, points)
	r.stroke = append(r.stroke, s)
}

func (r *recorder) trace() ([]canvas.Point, canvas.Stroke) {
	n := len(r.lines)
	return r.lines[n-1], r.stroke[n-1]
}

// fixedAnalyser serves the same samples until released.
type fixedAnalyser struct {
	samples []byte
	closed  bool
}

func (a *fixedAnalyser) Size() int { return len(a.samples) }

func (a *fixedAnalyser) TimeDomain(dst []byte) error {
	if a.closed {
		return audio.ErrReleased
	}
	copy(dst, a.samples)
	return nil
}

func (a *fixedAnalyser) Close() error {
	a.closed = true
	return nil
}

func TestSamplePoints(t *testing.T) {
	points := SamplePoints([]byte{0, 128, 255, 128}, 100, 80)

	want := []canvas.Point{
		{X: 0, Y: 0},
		{X: 25, Y: 40},
		{X: 50, Y: 255.0 / 128.0 * 40},
		{X: 75, Y: 40},
		{X: 100, Y: 40},
	}
	if len(points) != len(want) {
		t.Fatalf("got %d points, want %d", len(points), len(want))
	}
	for i := range want {
		if points[i] != want[i] {
			t.Errorf("point %d = %v, want %v", i, points[i], want[i])
		}
	}
}

func TestStrokeFor(t *testing.T) {
	tests := []struct {
		name  string
		level float64
		color color.RGBA
		glow  bool
	}{
		{"below threshold", 30, NormalLine, false},
		{"at threshold", 50, NormalLine, false},
		{"above threshold", 50.5, AlertLine, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := StrokeFor(tt.level, 50)
			if s.Color != tt.color {
				t.Errorf("Color = %v, want %v", s.Color, tt.color)
			}
			if (s.Glow > 0) != tt.glow {
				t.Errorf("Glow = %v, want glow %v", s.Glow, tt.glow)
			}
		})
	}
}

func TestDrawFrameLayers(t *testing.T) {
	s := &recorder{w: 100, h: 60}
	DrawFrame(s, []byte{128, 128}, 10, 50)

	if len(s.fills) != 1 || s.fills[0] != Background {
		t.Fatalf("fills = %v, want one background fill", s.fills)
	}
	// 3 horizontal (0, 20, 40) and 5 vertical (0..80) grid lines, then the trace.
	if len(s.lines) != 3+5+1 {
		t.Fatalf("drew %d polylines, want 9", len(s.lines))
	}
	for i := 0; i < 8; i++ {
		if s.stroke[i].Color != GridColor {
			t.Errorf("line %d colour = %v, want grid", i, s.stroke[i].Color)
		}
	}
	trace, stroke := s.trace()
	if stroke.Color != NormalLine {
		t.Errorf("trace colour = %v, want normal", stroke.Color)
	}
	if last := trace[len(trace)-1]; last != (canvas.Point{X: 100, Y: 30}) {
		t.Errorf("trace ends at %v, want right-edge centre", last)
	}
}

func TestDrawFrameNoSamples(t *testing.T) {
	s := &recorder{w: 40, h: 40}
	DrawFrame(s, nil, 90, 50)

	for _, st := range s.stroke {
		if st.Color != GridColor {
			t.Fatalf("unexpected trace stroke %v with no samples", st)
		}
	}
}

func TestRendererFrameLoop(t *testing.T) {
	v := sched.NewVirtual(epoch, 16*time.Millisecond)
	level := 20.0
	frames := 0
	r := &Renderer{
		Sched:     v,
		Level:     func() float64 { return level },
		Threshold: 50,
		OnFrame:   func(canvas.Surface) { frames++ },
	}
	s := &recorder{w: 64, h: 32}
	a := &fixedAnalyser{samples: []byte{100, 150, 128}}

	task := r.Start(a, s)
	if task.Frames() != 1 {
		t.Fatalf("first frame not drawn synchronously: frames = %d", task.Frames())
	}

	v.Advance(160 * time.Millisecond)
	if task.Frames() != 11 || frames != 11 {
		t.Errorf("frames = %d (OnFrame %d), want 11", task.Frames(), frames)
	}
	if v.Pending() != 1 {
		t.Errorf("Pending() = %d, want exactly one queued frame", v.Pending())
	}

	level = 75
	v.Advance(16 * time.Millisecond)
	if _, stroke := s.trace(); stroke.Color != AlertLine {
		t.Errorf("trace colour = %v after level rose, want alert", stroke.Color)
	}

	task.Cancel()
	task.Cancel()
	if !task.Done() {
		t.Error("Done() = false after Cancel")
	}
	if v.Pending() != 0 {
		t.Errorf("Pending() = %d after Cancel, want 0", v.Pending())
	}
	before := task.Frames()
	v.Advance(time.Second)
	if task.Frames() != before {
		t.Errorf("frames advanced after Cancel: %d -> %d", before, task.Frames())
	}
}

func TestRendererStopsOnRelease(t *testing.T) {
	v := sched.NewVirtual(epoch, 16*time.Millisecond)
	r := &Renderer{Sched: v}
	a := &fixedAnalyser{samples: []byte{128}}

	task := r.Start(a, &recorder{w: 10, h: 10})
	v.Advance(32 * time.Millisecond)
	a.Close()
	v.Advance(16 * time.Millisecond)

	if !task.Done() {
		t.Fatal("loop still running after analyser release")
	}
	if v.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", v.Pending())
	}
	if task.Frames() != 3 {
		t.Errorf("frames = %d, want 3", task.Frames())
	}
}

func TestRendererNilInputs(t *testing.T) {
	v := sched.NewVirtual(epoch, 16*time.Millisecond)
	r := &Renderer{Sched: v}

	tests := []struct {
		name string
		a    audio.Analyser
		s    canvas.Surface
	}{
		{"nil analyser", nil, &recorder{w: 1, h: 1}},
		{"nil surface", &fixedAnalyser{samples: []byte{1}}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := r.Start(tt.a, tt.s)
			if !task.Done() || task.Frames() != 0 {
				t.Errorf("task = done %v frames %d, want done no-op", task.Done(), task.Frames())
			}
			if v.Pending() != 0 {
				t.Errorf("Pending() = %d, want 0", v.Pending())
			}
		})
	}
}
