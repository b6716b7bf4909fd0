// Package ui provides the Bubbletea terminal dashboard for the live monitor
package ui

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/aeropulse/aeropulse/internal/logging"
	"github.com/aeropulse/aeropulse/internal/monitor"
)

type keyMap struct {
	Toggle    key.Binding
	New       key.Binding
	Export    key.Binding
	ExportCSV key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Toggle:    key.NewBinding(key.WithKeys(" ", "s"), key.WithHelp("space", "start/stop")),
		New:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new session")),
		Export:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export pdf")),
		ExportCSV: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "export csv")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Export, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.New},
		{k.Export, k.ExportCSV},
		{k.Help, k.Quit},
	}
}

// Model is the Bubbletea model for the live monitor dashboard
type Model struct {
	// Recorder state, mirrored from observer messages
	State    monitor.State
	Level    float64
	Alert    bool
	Seconds  int
	Points   []monitor.DataPoint // display window
	Window   int
	Waveform FrameMsg

	// Context shown in the header
	PatientName string
	SourceName  string

	// Status line: the last action outcome
	Status   string
	Err      error
	Busy     bool
	Quitting bool

	// Terminal dimensions
	Width  int
	Height int

	actions  Actions
	keys     keyMap
	help     help.Model
	progress progress.Model
	log      *logging.Logger
}

// NewModel creates a dashboard driving actions. window bounds the trend
// sparkline.
func NewModel(actions Actions, window int, log *logging.Logger) Model {
	if window <= 0 {
		window = monitor.DefaultWindow
	}
	return Model{
		Window:  window,
		actions: actions,
		keys:    defaultKeys(),
		help:    help.New(),
		progress: progress.New(
			progress.WithGradient("#22c55e", "#ef4444"),
			progress.WithWidth(barWidth),
			progress.WithoutPercentage(),
		),
		log: log,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.help.Width = msg.Width
		m.log.Printf("[UI] Window size: %dx%d", m.Width, m.Height)

	case LevelMsg:
		m.Level = msg.Level
		m.Alert = msg.Alert

	case PointMsg:
		m.Points = append(m.Points, msg.Point)
		if len(m.Points) > m.Window {
			m.Points = m.Points[len(m.Points)-m.Window:]
		}

	case DurationMsg:
		m.Seconds = msg.Seconds

	case StateMsg:
		m.log.Printf("[UI] State: %s -> %s", m.State, msg.State)
		if msg.State == monitor.Idle {
			m.Points = nil
			m.Seconds = 0
			m.Level = 0
			m.Alert = false
		}
		m.State = msg.State

	case FrameMsg:
		m.Waveform = msg

	case ActionMsg:
		m.Busy = false
		m.Err = msg.Err
		if msg.Err == nil {
			m.Status = msg.Action
		} else {
			m.Status = ""
		}

	case ExportMsg:
		m.Busy = false
		m.Err = msg.Err
		m.Status = ""
		if msg.Export != nil {
			m.Status = exportStatus(msg.Export.Report.Path, msg.Export.Report.Generator, msg.Export.LogPath)
		}

	case CSVMsg:
		m.Busy = false
		m.Err = msg.Err
		m.Status = ""
		if msg.Err == nil {
			m.Status = "Raw data saved to " + filepath.Base(msg.Path)
		}
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	// One action at a time; the recorder handles them in order anyway.
	if m.Busy || m.actions == nil {
		return m, nil
	}

	var cmd tea.Cmd
	switch {
	case key.Matches(msg, m.keys.Toggle):
		action := "Recording stopped"
		if m.State != monitor.Recording {
			action = "Recording started"
		}
		cmd = func() tea.Msg {
			return ActionMsg{Action: action, Err: m.actions.Toggle()}
		}
	case key.Matches(msg, m.keys.New):
		cmd = func() tea.Msg {
			return ActionMsg{Action: "New session started", Err: m.actions.NewSession()}
		}
	case key.Matches(msg, m.keys.Export):
		m.Status = "Generating PDF with complete session data..."
		cmd = func() tea.Msg {
			out, err := m.actions.Export()
			return ExportMsg{Export: out, Err: err}
		}
	case key.Matches(msg, m.keys.ExportCSV):
		cmd = func() tea.Msg {
			path, err := m.actions.ExportCSV()
			return CSVMsg{Path: path, Err: err}
		}
	default:
		return m, nil
	}

	m.Busy = true
	m.Err = nil
	return m, cmd
}

// View renders the UI
func (m Model) View() string {
	if m.Quitting {
		return ""
	}
	if m.Width == 0 {
		return "Initializing..."
	}
	return renderDashboard(m)
}

func exportStatus(path, generator, logPath string) string {
	s := fmt.Sprintf("Report saved to %s", filepath.Base(path))
	if generator != "primary" {
		s += " (simplified export)"
	}
	if logPath != "" {
		s += ", log " + filepath.Base(logPath)
	}
	return s
}
