// Package monitor implements the session recorder: the state machine that
// acquires audio, ticks the synthetic wheezing level, and accumulates the
// session history while recording is active.
package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/aeropulse/aeropulse/internal/audio"
	"github.com/aeropulse/aeropulse/internal/canvas"
	"github.com/aeropulse/aeropulse/internal/logging"
	"github.com/aeropulse/aeropulse/internal/sched"
	"github.com/aeropulse/aeropulse/internal/waveform"
)

// State is the recorder lifecycle state.
type State int

const (
	// Idle means no session exists.
	Idle State = iota
	// Recording means audio and all timers are running.
	Recording
	// Stopped means a session exists but audio and timers are released.
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Recording:
		return "recording"
	case Stopped:
		return "stopped"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Intent says whether a Start continues the current session or begins a new
// one.
type Intent int

const (
	// IntentResume continues a stopped session. From Idle it starts fresh.
	IntentResume Intent = iota
	// IntentNew discards the current session before starting.
	IntentNew
)

// Observer receives recorder events. Every call happens on the scheduler's
// goroutine.
type Observer interface {
	LevelChanged(level float64, alert bool)
	PointAdded(p DataPoint)
	DurationChanged(seconds int)
	StateChanged(state State)
}

// Config holds the recorder's timing and signal parameters.
type Config struct {
	Baseline       float64
	Volatility     float64
	SampleInterval time.Duration
	DurationTick   time.Duration
	AlertThreshold float64
	Window         int
}

// DefaultConfig returns the live monitor's settings.
func DefaultConfig() Config {
	return Config{
		Baseline:       DefaultBaseline,
		Volatility:     LiveVolatility,
		SampleInterval: 1500 * time.Millisecond,
		DurationTick:   time.Second,
		AlertThreshold: waveform.DefaultThreshold,
		Window:         DefaultWindow,
	}
}

// Snapshot is a copy of the recorder's state at one moment.
type Snapshot struct {
	State    State
	Session  Session
	Complete []DataPoint
	Display  []DataPoint
}

// Recorder coordinates audio acquisition, level sampling, duration timing and
// the waveform frame loop. All methods must be called on the scheduler's
// goroutine.
type Recorder struct {
	// Surface is the waveform target; nil disables drawing.
	Surface canvas.Surface
	// OnFrame is called after every drawn waveform frame.
	OnFrame func(canvas.Surface)
	// Observer receives events; nil is allowed.
	Observer Observer
	// Label formats a sample time for display, default "15:04:05".
	Label func(time.Time) string
	// NewID returns an identifier for each new session.
	NewID func() string
	Log   *logging.Logger

	cfg      Config
	sched    sched.Scheduler
	source   audio.Source
	smoother *Smoother

	state    State
	session  Session
	history  *History
	analyser audio.Analyser
	frames   *waveform.Task
	cancels  []sched.Cancel
}

// NewRecorder creates an idle recorder. A nil smoother uses a randomly seeded
// one built from cfg.
func NewRecorder(cfg Config, s sched.Scheduler, src audio.Source, smoother *Smoother) *Recorder {
	if cfg.SampleInterval <= 0 {
		cfg.SampleInterval = DefaultConfig().SampleInterval
	}
	if cfg.DurationTick <= 0 {
		cfg.DurationTick = DefaultConfig().DurationTick
	}
	if cfg.AlertThreshold <= 0 {
		cfg.AlertThreshold = waveform.DefaultThreshold
	}
	if smoother == nil {
		smoother = NewSmoother(cfg.Baseline, cfg.Volatility, nil)
	}
	return &Recorder{
		cfg:      cfg,
		sched:    s,
		source:   src,
		smoother: smoother,
		history:  NewHistory(cfg.Window),
	}
}

// Config returns the recorder's effective configuration.
func (r *Recorder) Config() Config {
	return r.cfg
}

// State returns the current lifecycle state.
func (r *Recorder) State() State {
	return r.state
}

// Level returns the current wheezing level.
func (r *Recorder) Level() float64 {
	return r.session.CurrentLevel
}

// Alert reports whether the current level is above the alert threshold.
func (r *Recorder) Alert() bool {
	return r.session.CurrentLevel > r.cfg.AlertThreshold
}

// Start begins or resumes recording. Starting while already recording does
// nothing. A fresh start that cannot acquire audio returns to Idle; a failed
// resume stays Stopped with the history intact. Acquisition failures are
// returned as *audio.AcquisitionError.
func (r *Recorder) Start(ctx context.Context, intent Intent) error {
	if r.state == Recording {
		r.Log.Printf("[RECORDER] Start ignored: already recording")
		return nil
	}

	fresh := r.state == Idle || intent == IntentNew
	if fresh {
		r.history.Reset()
		r.session = Session{}
		if r.NewID != nil {
			r.session.ID = r.NewID()
		}
		if r.state != Idle {
			r.setState(Idle)
		}
	}

	a, err := r.source.Acquire(ctx)
	if err != nil {
		r.Log.Printf("[RECORDER] Acquire failed (fresh=%v): %v", fresh, err)
		return err
	}

	r.analyser = a
	if r.session.StartedAt.IsZero() {
		r.session.StartedAt = r.sched.Now()
	}
	r.session.Active = true

	r.cancels = append(r.cancels,
		r.sched.Every(r.cfg.SampleInterval, r.sample),
		r.sched.Every(r.cfg.DurationTick, r.tickDuration),
	)

	renderer := &waveform.Renderer{
		Sched:     r.sched,
		Level:     r.Level,
		Threshold: r.cfg.AlertThreshold,
		OnFrame:   r.OnFrame,
	}
	r.frames = renderer.Start(a, r.Surface)

	r.Log.Printf("[RECORDER] Recording session %s (fresh=%v, points=%d)", r.session.ID, fresh, r.history.Len())
	r.setState(Recording)
	return nil
}

// Stop releases audio and cancels the sampling timer, the duration timer and
// the frame loop. The history is kept. Stop outside Recording does nothing.
func (r *Recorder) Stop() {
	if r.state != Recording {
		return
	}

	for _, cancel := range r.cancels {
		cancel()
	}
	r.cancels = nil

	r.frames.Cancel()
	r.frames = nil

	if r.analyser != nil {
		if err := r.analyser.Close(); err != nil {
			r.Log.Printf("[RECORDER] Release audio: %v", err)
		}
		r.analyser = nil
	}

	r.Log.Printf("[RECORDER] Stopped after %ds with %d points", r.session.DurationSeconds, r.history.Len())
	r.setState(Stopped)
}

// Reset stops recording and discards the session, returning to Idle.
func (r *Recorder) Reset() {
	r.Stop()
	r.history.Reset()
	r.session = Session{}
	if r.state != Idle {
		r.setState(Idle)
	}
}

// Snapshot copies the current state.
func (r *Recorder) Snapshot() Snapshot {
	return Snapshot{
		State:    r.state,
		Session:  r.session,
		Complete: r.history.Complete(),
		Display:  r.history.Display(),
	}
}

func (r *Recorder) sample() {
	level := r.smoother.Next(r.session.CurrentLevel)
	r.session.CurrentLevel = level

	p := DataPoint{Timestamp: r.TimeLabel(r.sched.Now()), Level: level}
	r.history.Append(p)

	if r.Observer != nil {
		r.Observer.PointAdded(p)
		r.Observer.LevelChanged(level, r.Alert())
	}
}

func (r *Recorder) tickDuration() {
	r.session.DurationSeconds++
	if r.Observer != nil {
		r.Observer.DurationChanged(r.session.DurationSeconds)
	}
}

// TimeLabel formats t the way sample timestamps are labelled.
func (r *Recorder) TimeLabel(t time.Time) string {
	if r.Label != nil {
		return r.Label(t)
	}
	return t.Format("15:04:05")
}

func (r *Recorder) setState(s State) {
	r.state = s
	if r.Observer != nil {
		r.Observer.StateChanged(s)
	}
}
