package ui

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aeropulse/aeropulse/internal/monitor"
)

const (
	panelWidth = 64
	barWidth   = 40
)

var (
	accent    = lipgloss.Color("#22C55E")
	alertRed  = lipgloss.Color("#EF4444")
	muted     = lipgloss.Color("#888888")
	slate     = lipgloss.Color("#334155")
	sparkRune = []rune("▁▂▃▄▅▆▇█")
)

// renderDashboard renders the live monitor view
func renderDashboard(m Model) string {
	var b strings.Builder

	b.WriteString(renderHeader(m))
	b.WriteString("\n\n")
	b.WriteString(renderWaveform(m))
	b.WriteString("\n")
	b.WriteString(renderCurrentStatus(m))
	b.WriteString("\n")
	b.WriteString(renderTrend(m))
	b.WriteString("\n")
	if line := renderStatusLine(m); line != "" {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))

	return b.String()
}

// renderHeader renders the application header
func renderHeader(m Model) string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(accent).
		Render("Aeropulse - Live Breathing Monitor")

	parts := []string{}
	if m.PatientName != "" {
		parts = append(parts, "Patient: "+m.PatientName)
	}
	if m.SourceName != "" {
		parts = append(parts, "Input: "+m.SourceName)
	}
	if len(parts) == 0 {
		return title
	}

	subtitle := lipgloss.NewStyle().
		Foreground(muted).
		Italic(true).
		Render(strings.Join(parts, " | "))

	return title + "\n" + subtitle
}

// renderWaveform renders the respiratory waveform panel
func renderWaveform(m Model) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(slate).
		Padding(0, 1).
		Width(panelWidth)

	var content strings.Builder
	content.WriteString(renderRecordingIndicator(m))
	content.WriteString("\n")

	switch {
	case m.Waveform.Waveform != "":
		content.WriteString(lipgloss.NewStyle().
			Foreground(hexColor(m.Waveform.Color)).
			Render(m.Waveform.Waveform))
	case m.State == monitor.Idle:
		content.WriteString(lipgloss.NewStyle().Foreground(muted).Render("Press space to start recording"))
	default:
		content.WriteString(lipgloss.NewStyle().Foreground(muted).Render("Waiting for audio..."))
	}

	return box.Render(content.String())
}

// renderRecordingIndicator renders the session state and duration
func renderRecordingIndicator(m Model) string {
	duration := monitor.FormatDuration(m.Seconds)
	switch m.State {
	case monitor.Recording:
		dot := lipgloss.NewStyle().Foreground(alertRed).Render("●")
		return fmt.Sprintf("%s Recording: %s", dot, duration)
	case monitor.Stopped:
		return lipgloss.NewStyle().Foreground(muted).Render("Paused: " + duration)
	}
	return lipgloss.NewStyle().Foreground(muted).Render("No active session")
}

// renderCurrentStatus renders the wheezing level gauge and alert
func renderCurrentStatus(m Model) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(muted).
		Padding(0, 1).
		Width(panelWidth)

	var content strings.Builder
	content.WriteString(fmt.Sprintf("Wheezing Level %d%%\n", int(math.Round(m.Level))))
	content.WriteString(m.progress.ViewAs(m.Level / 100))
	content.WriteString("\n")
	content.WriteString(renderScale(barWidth))

	if m.Alert {
		warning := lipgloss.NewStyle().
			Bold(true).
			Foreground(alertRed).
			Render("Warning: High wheezing levels detected. Please check breathing pattern.")
		content.WriteString("\n\n")
		content.WriteString(warning)
	}

	return box.Render(content.String())
}

// renderScale renders the Normal/Moderate/Severe labels under the gauge
func renderScale(width int) string {
	left, mid, right := "Normal", "Moderate", "Severe"
	gap := width - len(left) - len(mid) - len(right)
	if gap < 2 {
		return left + " " + mid + " " + right
	}
	pad := gap / 2
	scale := left + strings.Repeat(" ", pad) + mid + strings.Repeat(" ", gap-pad) + right
	return lipgloss.NewStyle().Foreground(muted).Render(scale)
}

// renderTrend renders the display window as a sparkline
func renderTrend(m Model) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(muted).
		Padding(0, 1).
		Width(panelWidth)

	if len(m.Points) == 0 {
		return box.Render("Session Trend\n" + lipgloss.NewStyle().Foreground(muted).Render("No data yet"))
	}

	first, last := m.Points[0], m.Points[len(m.Points)-1]
	labels := first.Timestamp
	if len(m.Points) > 1 {
		labels += " - " + last.Timestamp
	}
	content := fmt.Sprintf("Session Trend (%s)\n%s", labels, Sparkline(monitor.Levels(m.Points)))
	return box.Render(content)
}

// renderStatusLine renders the last action result or error
func renderStatusLine(m Model) string {
	if m.Err != nil {
		return lipgloss.NewStyle().Foreground(alertRed).Render("Error: " + m.Err.Error())
	}
	if m.Status != "" {
		return lipgloss.NewStyle().Foreground(accent).Render(m.Status)
	}
	return ""
}

// Sparkline renders levels in [0,100] as block characters
func Sparkline(levels []float64) string {
	var b strings.Builder
	top := len(sparkRune) - 1
	for _, level := range levels {
		i := int(math.Round(level / 100 * float64(top)))
		i = max(0, min(top, i))
		b.WriteRune(sparkRune[i])
	}
	return b.String()
}

func hexColor(c color.RGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B))
}
