package ui

import (
	"image/color"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/aeropulse/aeropulse/internal/canvas"
	"github.com/aeropulse/aeropulse/internal/live"
	"github.com/aeropulse/aeropulse/internal/monitor"
)

// LevelMsg carries a new wheezing level
type LevelMsg struct {
	Level float64
	Alert bool // level above the alert threshold
}

// PointMsg carries a newly recorded data point
type PointMsg struct {
	Point monitor.DataPoint
}

// DurationMsg carries the session duration in seconds
type DurationMsg struct {
	Seconds int
}

// StateMsg indicates a recorder state transition
type StateMsg struct {
	State monitor.State
}

// FrameMsg carries one rendered waveform frame
type FrameMsg struct {
	Waveform string
	Color    color.RGBA
}

// ActionMsg reports the outcome of start, stop or new session
type ActionMsg struct {
	Action string
	Err    error
}

// ExportMsg reports a finished PDF export
type ExportMsg struct {
	Export *live.Export
	Err    error
}

// CSVMsg reports a finished CSV export
type CSVMsg struct {
	Path string
	Err  error
}

// Bridge forwards recorder events into a running program. Callbacks arrive
// on the scheduler goroutine; Send must be safe to call from it, as
// tea.Program.Send is.
type Bridge struct {
	Send func(tea.Msg)
}

// LevelChanged implements monitor.Observer.
func (b Bridge) LevelChanged(level float64, alert bool) {
	b.Send(LevelMsg{Level: level, Alert: alert})
}

// PointAdded implements monitor.Observer.
func (b Bridge) PointAdded(p monitor.DataPoint) {
	b.Send(PointMsg{Point: p})
}

// DurationChanged implements monitor.Observer.
func (b Bridge) DurationChanged(seconds int) {
	b.Send(DurationMsg{Seconds: seconds})
}

// StateChanged implements monitor.Observer.
func (b Bridge) StateChanged(state monitor.State) {
	b.Send(StateMsg{State: state})
}

// Frame snapshots a braille surface after each waveform frame. Other
// surfaces are ignored.
func (b Bridge) Frame(s canvas.Surface) {
	grid, ok := s.(*canvas.Braille)
	if !ok {
		return
	}
	b.Send(FrameMsg{Waveform: grid.String(), Color: grid.Color()})
}
