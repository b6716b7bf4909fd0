// Package live glues the session recorder to the report pipeline: start and
// stop, new sessions, and the pause-export-resume cycle behind Export.
package live

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/aeropulse/aeropulse/internal/logging"
	"github.com/aeropulse/aeropulse/internal/monitor"
	"github.com/aeropulse/aeropulse/internal/patient"
	"github.com/aeropulse/aeropulse/internal/report"
	"github.com/aeropulse/aeropulse/internal/sched"
)

// ErrNoData is returned by ExportCSV before any point has been recorded.
var ErrNoData = errors.New("no data points recorded")

// Export describes one completed report export.
type Export struct {
	Report  *report.Result
	LogPath string // empty unless session logs are enabled
	Resumed bool   // recording was paused for the export and resumed
}

// Controller drives a Recorder on behalf of the UI. Like the recorder, every
// method must be called on the scheduler's goroutine.
type Controller struct {
	// Patient is reported with the live level; nil omits the patient section.
	Patient *patient.Patient
	// Capture supplies the chart image; defaults to a chart of the display
	// window.
	Capture report.Capturer
	// FormatTime renders session and generation times.
	FormatTime func(time.Time) string
	// CSVDir receives raw data exports.
	CSVDir string
	// SessionLog writes a text log next to every report.
	SessionLog bool
	Log        *logging.Logger

	rec       *monitor.Recorder
	reports   *report.Pipeline
	sched     sched.Scheduler
	observers []*subscription
}

type subscription struct {
	monitor.Observer
}

// New wires a controller to rec and registers itself as the recorder's
// observer.
func New(rec *monitor.Recorder, reports *report.Pipeline, s sched.Scheduler) *Controller {
	c := &Controller{
		CSVDir:  ".",
		rec:     rec,
		reports: reports,
		sched:   s,
	}
	c.Capture = &report.ChartCapture{Points: func() []monitor.DataPoint {
		return rec.Snapshot().Display
	}}
	rec.Observer = c
	return c
}

// Recorder returns the controlled recorder.
func (c *Controller) Recorder() *monitor.Recorder {
	return c.rec
}

// Subscribe registers o for recorder events and returns a function that
// removes it.
func (c *Controller) Subscribe(o monitor.Observer) func() {
	sub := &subscription{o}
	c.observers = append(c.observers, sub)
	return func() {
		for i, s := range c.observers {
			if s == sub {
				c.observers = append(c.observers[:i], c.observers[i+1:]...)
				return
			}
		}
	}
}

// Start begins recording, resuming a stopped session.
func (c *Controller) Start(ctx context.Context) error {
	return c.rec.Start(ctx, monitor.IntentResume)
}

// Stop pauses recording and keeps the session.
func (c *Controller) Stop() {
	c.rec.Stop()
}

// Toggle stops a running recording or starts one.
func (c *Controller) Toggle(ctx context.Context) error {
	if c.rec.State() == monitor.Recording {
		c.Stop()
		return nil
	}
	return c.Start(ctx)
}

// NewSession discards the current session and starts recording a new one.
func (c *Controller) NewSession(ctx context.Context) error {
	c.rec.Stop()
	return c.rec.Start(ctx, monitor.IntentNew)
}

// Export pauses an active recording, renders and saves the report, and
// resumes. The recording is resumed even when the export fails; both
// failures are joined into the returned error.
func (c *Controller) Export(ctx context.Context) (*Export, error) {
	wasRecording := c.rec.State() == monitor.Recording
	if wasRecording {
		c.rec.Stop()
	}

	out, err := c.export(ctx, wasRecording)
	if !wasRecording {
		return out, err
	}

	// Resume even if the export context was cancelled.
	if resumeErr := c.rec.Start(context.WithoutCancel(ctx), monitor.IntentResume); resumeErr != nil {
		c.Log.Printf("[LIVE] Resume after export failed: %v", resumeErr)
		return out, errors.Join(err, fmt.Errorf("resuming recording: %w", resumeErr))
	}
	if out != nil {
		out.Resumed = true
	}
	return out, err
}

func (c *Controller) export(ctx context.Context, recording bool) (*Export, error) {
	snap := c.rec.Snapshot()
	now := c.sched.Now()

	history := snap.Complete
	if len(history) == 0 {
		history = []monitor.DataPoint{{Timestamp: c.rec.TimeLabel(now), Level: snap.Session.CurrentLevel}}
	}

	in := report.Input{
		History:     history,
		Capture:     c.Capture,
		GeneratedAt: now,
		FormatTime:  c.FormatTime,
	}

	var summary *monitor.Summary
	if snap.State != monitor.Idle {
		s := monitor.Summarize(snap.Complete, snap.Session, recording)
		summary = &s
		in.Summary = summary
	}

	if c.Patient != nil {
		started := now
		if !snap.Session.StartedAt.IsZero() {
			started = snap.Session.StartedAt
		}
		p := c.Patient.With(int(math.Round(snap.Session.CurrentLevel)), c.formatTime(started))
		in.Patient = &p
	}

	c.Log.Printf("[LIVE] Exporting %d points (state=%s)", len(history), snap.State)
	result, err := c.reports.Export(ctx, in)
	if err != nil {
		return nil, err
	}

	out := &Export{Report: result}
	if !c.SessionLog {
		return out, nil
	}

	data := logging.SessionLogData{
		ReportPath:     result.Path,
		Generator:      result.Generator,
		FallbackReason: result.PrimaryErr,
		SessionID:      snap.Session.ID,
		StartedAt:      snap.Session.StartedAt,
		ExportedAt:     now,
		Duration:       monitor.FormatDuration(snap.Session.DurationSeconds),
		AlertThreshold: c.rec.Config().AlertThreshold,
	}
	if summary != nil {
		data.Status = summary.Status
	}
	if in.Patient != nil {
		data.PatientName = in.Patient.Name
	}
	for _, p := range snap.Complete {
		data.Labels = append(data.Labels, p.Timestamp)
		data.Levels = append(data.Levels, p.Level)
	}

	path, err := logging.WriteSessionLog(data)
	if err != nil {
		return out, fmt.Errorf("writing session log: %w", err)
	}
	out.LogPath = path
	return out, nil
}

// ExportCSV writes the complete history as CSV into CSVDir and returns the
// file path.
func (c *Controller) ExportCSV() (string, error) {
	points := c.rec.Snapshot().Complete
	if len(points) == 0 {
		return "", ErrNoData
	}

	if err := os.MkdirAll(c.CSVDir, 0755); err != nil {
		return "", fmt.Errorf("creating csv directory: %w", err)
	}
	path := filepath.Join(c.CSVDir, monitor.CSVFilename(c.sched.Now()))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating csv: %w", err)
	}
	if err := monitor.WriteCSV(f, points); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing csv: %w", err)
	}

	c.Log.Printf("[LIVE] Wrote %d points to %s", len(points), path)
	return path, nil
}

func (c *Controller) formatTime(t time.Time) string {
	if c.FormatTime != nil {
		return c.FormatTime(t)
	}
	return t.Format("2006-01-02 15:04:05")
}

// LevelChanged implements monitor.Observer.
func (c *Controller) LevelChanged(level float64, alert bool) {
	for _, o := range c.snapshotObservers() {
		o.LevelChanged(level, alert)
	}
}

// PointAdded implements monitor.Observer.
func (c *Controller) PointAdded(p monitor.DataPoint) {
	for _, o := range c.snapshotObservers() {
		o.PointAdded(p)
	}
}

// DurationChanged implements monitor.Observer.
func (c *Controller) DurationChanged(seconds int) {
	for _, o := range c.snapshotObservers() {
		o.DurationChanged(seconds)
	}
}

// StateChanged implements monitor.Observer.
func (c *Controller) StateChanged(state monitor.State) {
	for _, o := range c.snapshotObservers() {
		o.StateChanged(state)
	}
}

// snapshotObservers lets an observer unsubscribe from inside a callback.
func (c *Controller) snapshotObservers() []*subscription {
	return append([]*subscription(nil), c.observers...)
}
