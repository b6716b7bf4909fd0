package ui

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aeropulse/aeropulse/internal/live"
)

// Spinner frames for indeterminate progress
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// RecordModel is the Bubbletea model for a timed recording: it shows
// progress towards the target duration, then the export result.
type RecordModel struct {
	Target  time.Duration
	Seconds int
	Level   float64
	Alert   bool

	// spinner state
	spinnerIndex int

	// Results (populated when complete)
	Export   *live.Export
	Error    error
	Done     bool
	Quitting bool

	// Terminal dimensions
	Width  int
	Height int
}

// RecordDoneMsg signals the recording has been exported
type RecordDoneMsg struct {
	Export *live.Export
	Err    error
}

// tickMsg is sent for spinner animation
type tickMsg time.Time

// NewRecordModel creates a model for a recording of the given length
func NewRecordModel(target time.Duration) RecordModel {
	return RecordModel{Target: target}
}

// Init initializes the model
func (m RecordModel) Init() tea.Cmd {
	return tickCmd()
}

// tickCmd returns a command that sends a tick message every 100ms
func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages and updates the model
func (m RecordModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.Quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case tickMsg:
		if !m.Done {
			m.spinnerIndex = (m.spinnerIndex + 1) % len(spinnerFrames)
			return m, tickCmd()
		}
		return m, nil

	case DurationMsg:
		m.Seconds = msg.Seconds

	case LevelMsg:
		m.Level = msg.Level
		m.Alert = msg.Alert

	case RecordDoneMsg:
		m.Export = msg.Export
		m.Error = msg.Err
		m.Done = true
		return m, tea.Quit
	}

	return m, nil
}

// Progress returns the fraction of the target duration recorded so far
func (m RecordModel) Progress() float64 {
	if m.Target <= 0 {
		return 0
	}
	p := time.Duration(m.Seconds) * time.Second
	return math.Min(1, float64(p)/float64(m.Target))
}

// View renders the UI
func (m RecordModel) View() string {
	if m.Width == 0 {
		return "Initializing..."
	}

	var b strings.Builder

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(accent).
		Render("Aeropulse")

	subtitle := lipgloss.NewStyle().
		Foreground(muted).
		Italic(true).
		Render("Timed Recording")

	b.WriteString(title + " " + subtitle)
	b.WriteString("\n\n")

	if m.Done {
		b.WriteString(renderRecordResult(m))
		return b.String()
	}

	spinner := lipgloss.NewStyle().Foreground(accent).Render(spinnerFrames[m.spinnerIndex])
	elapsed := time.Duration(m.Seconds) * time.Second
	b.WriteString(spinner)
	b.WriteString(" ")
	b.WriteString(renderRecordProgressBar(m.Progress(), barWidth, elapsed, m.Target))
	b.WriteString("\n")

	level := fmt.Sprintf("\nWheezing Level: %d%%", int(math.Round(m.Level)))
	if m.Alert {
		level = lipgloss.NewStyle().Foreground(alertRed).Bold(true).Render(level + " (high)")
	}
	b.WriteString(level)

	return b.String()
}

func renderRecordResult(m RecordModel) string {
	if m.Export == nil {
		return lipgloss.NewStyle().Foreground(alertRed).Render(fmt.Sprintf("✗ Failed: %v", m.Error))
	}
	icon := lipgloss.NewStyle().Foreground(accent).Render("✓")
	s := fmt.Sprintf(" %s Report saved to %s", icon, filepath.Base(m.Export.Report.Path))
	if m.Export.LogPath != "" {
		s += fmt.Sprintf("\n %s Session log saved to %s", icon, filepath.Base(m.Export.LogPath))
	}
	if m.Error != nil {
		s += lipgloss.NewStyle().Foreground(alertRed).Render(fmt.Sprintf("\n   %v", m.Error))
	}
	return s
}

// renderRecordProgressBar renders a progress bar with percentage and elapsed time
func renderRecordProgressBar(progress float64, width int, elapsed, target time.Duration) string {
	filled := int(progress * float64(width))
	empty := width - filled

	filledStyle := lipgloss.NewStyle().Foreground(accent)
	emptyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))

	bar := filledStyle.Render(strings.Repeat("━", filled)) +
		emptyStyle.Render(strings.Repeat("━", empty))

	percentage := int(progress * 100)

	return fmt.Sprintf("%s %3d%% [%s / %s]", bar, percentage, formatElapsed(elapsed), formatElapsed(target))
}

// formatElapsed formats elapsed time as MM:SS or HH:MM:SS
func formatElapsed(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
