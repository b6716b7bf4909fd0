package monitor

import (
	"bytes"
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/aeropulse/aeropulse/internal/audio"
	"github.com/aeropulse/aeropulse/internal/canvas"
	"github.com/aeropulse/aeropulse/internal/sched"
)

var epoch = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

// constRand always returns the same draw.
type constRand float64

func (c constRand) Float64() float64 { return float64(c) }

func TestNextLevelClamps(t *testing.T) {
	draws := []float64{0, 0.5, 0.999999}
	values := []float64{0, 0.5, 30, 50, 99.9, 100}
	volatilities := []float64{0, 0.15, 0.3, 1}

	for _, d := range draws {
		for _, prev := range values {
			for _, base := range values {
				for _, vol := range volatilities {
					got := NextLevel(prev, base, vol, constRand(d))
					if got < 0 || got > 100 {
						t.Fatalf("NextLevel(%v, %v, %v) with draw %v = %v, outside [0,100]", prev, base, vol, d, got)
					}
				}
			}
		}
	}
}

func TestNextLevelBlend(t *testing.T) {
	tests := []struct {
		name       string
		previous   float64
		baseline   float64
		volatility float64
		draw       float64
		want       float64
	}{
		{"centre draw pulls toward baseline", 0, 30, 0.15, 0.5, 9},
		{"steady at baseline", 30, 30, 0.3, 0.5, 30},
		{"lowest draw", 50, 30, 1, 0, 35},
		{"overflow clamps", 100, 100, 1, 0.999999, 100},
		{"negative input clamps", -500, 0, 0, 0.5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextLevel(tt.previous, tt.baseline, tt.volatility, constRand(tt.draw))
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("NextLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHistoryDisplayIsSuffix(t *testing.T) {
	h := NewHistory(DefaultWindow)
	for i := 0; i < 27; i++ {
		h.Append(DataPoint{Timestamp: time.Duration(i).String(), Level: float64(i)})

		complete, display := h.Complete(), h.Display()
		wantLen := min(i+1, DefaultWindow)
		if len(display) != wantLen {
			t.Fatalf("after %d appends display len = %d, want %d", i+1, len(display), wantLen)
		}
		offset := len(complete) - len(display)
		for j := range display {
			if display[j] != complete[offset+j] {
				t.Fatalf("display[%d] = %v, want %v", j, display[j], complete[offset+j])
			}
		}
	}
	if h.Len() != 27 {
		t.Errorf("Len() = %d, want 27", h.Len())
	}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name    string
		levels  []float64
		seconds int
		avg     int
		max     int
	}{
		{"empty", nil, 0, 0, 0},
		{"three even", []float64{10, 20, 30}, 65, 20, 30},
		{"rounded", []float64{10, 60, 90}, 5, 53, 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var points []DataPoint
			for _, l := range tt.levels {
				points = append(points, DataPoint{Level: l})
			}
			s := Summarize(points, Session{StartedAt: epoch, DurationSeconds: tt.seconds}, false)
			if s.AverageLevel != tt.avg || s.MaxLevel != tt.max {
				t.Errorf("avg/max = %d/%d, want %d/%d", s.AverageLevel, s.MaxLevel, tt.avg, tt.max)
			}
			if s.PointCount != len(tt.levels) {
				t.Errorf("PointCount = %d, want %d", s.PointCount, len(tt.levels))
			}
			if s.Status != StatusPaused {
				t.Errorf("Status = %q, want %q", s.Status, StatusPaused)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := map[int]string{0: "00:00", 9: "00:09", 65: "01:05", 3600: "60:00", -3: "00:00"}
	for secs, want := range tests {
		if got := FormatDuration(secs); got != want {
			t.Errorf("FormatDuration(%d) = %q, want %q", secs, got, want)
		}
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	points := []DataPoint{{"09:00:01", 10.4}, {"09:00:03", 60.5}}
	if err := WriteCSV(&buf, points); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	want := "Time,Wheezing Level\n09:00:01,10\n09:00:03,61\n"
	if buf.String() != want {
		t.Errorf("csv = %q, want %q", buf.String(), want)
	}
	if got := CSVFilename(epoch); got != "aeropulse_data_2026-03-02.csv" {
		t.Errorf("CSVFilename() = %q", got)
	}
}

// events records observer calls.
type events struct {
	levels    []float64
	alerts    []bool
	points    int
	durations []int
	states    []State
}

func (e *events) LevelChanged(level float64, alert bool) {
	e.levels = append(e.levels, level)
	e.alerts = append(e.alerts, alert)
}
func (e *events) PointAdded(DataPoint)        { e.points++ }
func (e *events) DurationChanged(seconds int) { e.durations = append(e.durations, seconds) }
func (e *events) StateChanged(s State)        { e.states = append(e.states, s) }

func newTestRecorder(draw float64) (*Recorder, *sched.Virtual, *audio.SynthSource) {
	v := sched.NewVirtual(epoch, 16*time.Millisecond)
	src := &audio.SynthSource{BufferSize: 64, Now: v.Now}
	cfg := DefaultConfig()
	r := NewRecorder(cfg, v, src, NewSmoother(cfg.Baseline, cfg.Volatility, constRand(draw)))
	return r, v, src
}

func TestRecorderStopResume(t *testing.T) {
	r, v, _ := newTestRecorder(0.5)
	ev := &events{}
	r.Observer = ev
	ctx := context.Background()

	if err := r.Start(ctx, IntentResume); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	v.Advance(4500 * time.Millisecond)

	snap := r.Snapshot()
	if len(snap.Complete) != 3 || snap.Session.DurationSeconds != 4 {
		t.Fatalf("points=%d duration=%d, want 3 and 4", len(snap.Complete), snap.Session.DurationSeconds)
	}
	if snap.Complete[0].Timestamp != "09:00:01" {
		t.Errorf("first label = %q, want 09:00:01", snap.Complete[0].Timestamp)
	}
	started := snap.Session.StartedAt

	r.Stop()
	if r.State() != Stopped {
		t.Fatalf("State() = %v, want stopped", r.State())
	}
	if v.Pending() != 0 {
		t.Fatalf("Pending() = %d after Stop, want 0", v.Pending())
	}
	v.Advance(10 * time.Second)
	if got := r.Snapshot(); len(got.Complete) != 3 || got.Session.DurationSeconds != 4 {
		t.Fatalf("history changed while stopped: %d points, %ds", len(got.Complete), got.Session.DurationSeconds)
	}

	if err := r.Start(ctx, IntentResume); err != nil {
		t.Fatalf("resume failed: %v", err)
	}
	v.Advance(1500 * time.Millisecond)
	snap = r.Snapshot()
	if len(snap.Complete) != 4 || snap.Session.DurationSeconds != 5 {
		t.Errorf("after resume points=%d duration=%d, want 4 and 5", len(snap.Complete), snap.Session.DurationSeconds)
	}
	if !snap.Session.StartedAt.Equal(started) {
		t.Errorf("StartedAt moved on resume: %v -> %v", started, snap.Session.StartedAt)
	}

	wantStates := []State{Recording, Stopped, Recording}
	if len(ev.states) != len(wantStates) {
		t.Fatalf("states = %v, want %v", ev.states, wantStates)
	}
	if ev.points != 4 || len(ev.levels) != 4 {
		t.Errorf("observer saw %d points %d levels, want 4", ev.points, len(ev.levels))
	}
}

func TestRecorderNewSessionResets(t *testing.T) {
	r, v, _ := newTestRecorder(0.5)
	ctx := context.Background()

	r.Start(ctx, IntentResume)
	v.Advance(3 * time.Second)
	r.Stop()

	if err := r.Start(ctx, IntentNew); err != nil {
		t.Fatalf("Start(new) failed: %v", err)
	}
	snap := r.Snapshot()
	if len(snap.Complete) != 0 || snap.Session.DurationSeconds != 0 {
		t.Errorf("new session kept %d points, %ds", len(snap.Complete), snap.Session.DurationSeconds)
	}
	if !snap.Session.StartedAt.Equal(epoch.Add(3 * time.Second)) {
		t.Errorf("StartedAt = %v, want restart time", snap.Session.StartedAt)
	}
	if snap.Session.CurrentLevel != 0 {
		t.Errorf("CurrentLevel = %v, want reset to 0", snap.Session.CurrentLevel)
	}
}

func TestRecorderStartWhileRecording(t *testing.T) {
	r, v, _ := newTestRecorder(0.5)
	r.Surface = canvas.NewBraille(8, 2)
	ctx := context.Background()

	r.Start(ctx, IntentResume)
	pending := v.Pending()
	if pending != 3 {
		t.Fatalf("Pending() = %d, want sample, duration and frame", pending)
	}
	for _, intent := range []Intent{IntentResume, IntentNew} {
		if err := r.Start(ctx, intent); err != nil {
			t.Fatalf("Start while recording returned %v", err)
		}
	}
	if v.Pending() != pending {
		t.Errorf("Pending() = %d after repeated Start, want %d", v.Pending(), pending)
	}

	v.Advance(1500 * time.Millisecond)
	if n := len(r.Snapshot().Complete); n != 1 {
		t.Errorf("points = %d, want 1 (no double scheduling)", n)
	}
}

func TestRecorderAcquisitionFailure(t *testing.T) {
	ctx := context.Background()

	t.Run("fresh start returns to idle", func(t *testing.T) {
		r, v, src := newTestRecorder(0.5)
		src.Fail = audio.ErrPermissionDenied

		err := r.Start(ctx, IntentResume)
		var acqErr *audio.AcquisitionError
		if !errors.As(err, &acqErr) || !errors.Is(err, audio.ErrPermissionDenied) {
			t.Fatalf("Start() error = %v, want AcquisitionError(permission denied)", err)
		}
		if r.State() != Idle || v.Pending() != 0 {
			t.Errorf("state %v pending %d, want idle with nothing scheduled", r.State(), v.Pending())
		}
		if !r.Snapshot().Session.StartedAt.IsZero() {
			t.Error("failed start left a start time")
		}

		src.Fail = nil
		if err := r.Start(ctx, IntentResume); err != nil {
			t.Fatalf("retry failed: %v", err)
		}
		if r.State() != Recording {
			t.Errorf("State() = %v after retry, want recording", r.State())
		}
	})

	t.Run("resume keeps history", func(t *testing.T) {
		r, v, src := newTestRecorder(0.5)
		r.Start(ctx, IntentResume)
		v.Advance(3 * time.Second)
		r.Stop()

		src.Fail = audio.ErrNoDevice
		if err := r.Start(ctx, IntentResume); !errors.Is(err, audio.ErrNoDevice) {
			t.Fatalf("Start() error = %v, want no device", err)
		}
		snap := r.Snapshot()
		if r.State() != Stopped || len(snap.Complete) != 2 || snap.Session.DurationSeconds != 3 {
			t.Errorf("state %v points %d duration %d, want stopped with 2 points, 3s",
				r.State(), len(snap.Complete), snap.Session.DurationSeconds)
		}
	})

	t.Run("new session fails to idle", func(t *testing.T) {
		r, v, src := newTestRecorder(0.5)
		r.Start(ctx, IntentResume)
		v.Advance(3 * time.Second)
		r.Stop()

		src.Fail = audio.ErrNoDevice
		if err := r.Start(ctx, IntentNew); err == nil {
			t.Fatal("Start(new) succeeded with a failing source")
		}
		if r.State() != Idle || r.Snapshot().Session.DurationSeconds != 0 {
			t.Errorf("state %v, want idle with cleared session", r.State())
		}
	})
}

func TestRecorderAlert(t *testing.T) {
	v := sched.NewVirtual(epoch, 16*time.Millisecond)
	src := &audio.SynthSource{Now: v.Now}
	cfg := DefaultConfig()
	cfg.Baseline = 90
	r := NewRecorder(cfg, v, src, NewSmoother(cfg.Baseline, 0, constRand(0.5)))
	ev := &events{}
	r.Observer = ev

	r.Start(context.Background(), IntentResume)
	v.Advance(6 * time.Second)

	// 27, 45.9, 59.13, 68.39: the alert turns on with the third point.
	want := []bool{false, false, true, true}
	if len(ev.alerts) != len(want) {
		t.Fatalf("alerts = %v, want %v", ev.alerts, want)
	}
	for i := range want {
		if ev.alerts[i] != want[i] {
			t.Errorf("alert %d (level %.2f) = %v, want %v", i, ev.levels[i], ev.alerts[i], want[i])
		}
	}
	if !r.Alert() {
		t.Error("Alert() = false at final level")
	}
}

func TestRecorderReleasesAnalyser(t *testing.T) {
	r, v, _ := newTestRecorder(0.5)
	r.Surface = canvas.NewBraille(4, 1)
	frames := 0
	r.OnFrame = func(canvas.Surface) { frames++ }

	r.Start(context.Background(), IntentResume)
	v.Advance(48 * time.Millisecond)
	r.Stop()
	drawn := frames
	v.Advance(time.Second)

	if drawn != 4 {
		t.Errorf("frames while recording = %d, want 4", drawn)
	}
	if frames != drawn {
		t.Errorf("frames kept drawing after Stop: %d -> %d", drawn, frames)
	}
}

func TestRecorderReset(t *testing.T) {
	r, v, _ := newTestRecorder(0.5)
	r.Start(context.Background(), IntentResume)
	v.Advance(2 * time.Second)
	r.Reset()

	if r.State() != Idle || len(r.Snapshot().Complete) != 0 || v.Pending() != 0 {
		t.Errorf("Reset left state %v, %d points, %d timers", r.State(), len(r.Snapshot().Complete), v.Pending())
	}
}
