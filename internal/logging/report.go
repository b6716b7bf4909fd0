// Package logging writes the debug log and the plain-text session logs saved
// alongside exported reports.

package logging

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// interpretLevel describes a wheezing level band.
//
// Bands follow the dashboard's progress bar: the lowest quarter reads as
// normal, anything above the alert threshold as moderate or worse.
func interpretLevel(level float64) string {
	switch {
	case math.IsNaN(level):
		return ""
	case level < 25:
		return "normal"
	case level < 50:
		return "mild"
	case level < 75:
		return "moderate"
	default:
		return "severe"
	}
}

// writeSection writes a section header with title and dashed underline.
// The underline length matches the title length.
func writeSection(w io.Writer, title string) {
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("-", len(title)))
}

// SessionLogData contains everything recorded in a session log.
type SessionLogData struct {
	ReportPath     string
	Generator      string
	FallbackReason error // why the primary generator was not used

	SessionID   string
	PatientName string
	StartedAt   time.Time
	ExportedAt  time.Time
	Duration    string
	Status      string

	// Labels and Levels are the complete history, oldest first.
	Labels []string
	Levels []float64

	AlertThreshold float64
}

// SessionLogPath returns the log path for a report: report.pdf → report.log
func SessionLogPath(reportPath string) string {
	return strings.TrimSuffix(reportPath, filepath.Ext(reportPath)) + ".log"
}

// WriteSessionLog creates the session log next to the report.
func WriteSessionLog(data SessionLogData) (string, error) {
	logPath := SessionLogPath(data.ReportPath)

	f, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create log file: %w", err)
	}
	defer f.Close()

	if err := FormatSessionLog(f, data); err != nil {
		return "", err
	}
	return logPath, nil
}

// FormatSessionLog writes the session log body to w.
//
// Log structure:
// 1. Header - session, patient and report
// 2. Session Summary - counts and rounded statistics
// 3. Level Trend - three-column table (Early/Middle/Late)
// 4. Alerts - points above the threshold
// 5. Data Points - the full history
func FormatSessionLog(w io.Writer, data SessionLogData) error {
	if len(data.Labels) != len(data.Levels) {
		return fmt.Errorf("session log: %d labels for %d levels", len(data.Labels), len(data.Levels))
	}
	if data.AlertThreshold <= 0 {
		data.AlertThreshold = 50
	}

	writeLogHeader(w, data)
	writeSessionSummary(w, data)
	writeTrendTable(w, data)
	writeAlerts(w, data)
	writeDataPoints(w, data)
	return nil
}

func writeLogHeader(w io.Writer, data SessionLogData) {
	fmt.Fprintln(w, "Aeropulse Session Log")
	fmt.Fprintln(w, "=====================")
	if data.SessionID != "" {
		fmt.Fprintf(w, "Session: %s\n", data.SessionID)
	}
	patient := data.PatientName
	if patient == "" {
		patient = "anonymous"
	}
	fmt.Fprintf(w, "Patient: %s\n", patient)
	if !data.StartedAt.IsZero() {
		fmt.Fprintf(w, "Started: %s\n", data.StartedAt.Format("2006-01-02 15:04:05 MST"))
	}
	fmt.Fprintf(w, "Exported: %s\n", data.ExportedAt.Format("2006-01-02 15:04:05 MST"))

	report := fmt.Sprintf("%s (%s generator)", filepath.Base(data.ReportPath), data.Generator)
	fmt.Fprintf(w, "Report: %s\n", report)
	if data.FallbackReason != nil {
		fmt.Fprintf(w, "Fallback: %v\n", data.FallbackReason)
	}
	fmt.Fprintln(w, "")
}

func writeSessionSummary(w io.Writer, data SessionLogData) {
	writeSection(w, "Session Summary")

	fmt.Fprintf(w, "Duration:       %s\n", orMissing(data.Duration))
	fmt.Fprintf(w, "Status:         %s\n", orMissing(data.Status))
	fmt.Fprintf(w, "Data Points:    %d\n", len(data.Levels))
	if len(data.Levels) > 0 {
		mean, _, hi := stats(data.Levels)
		fmt.Fprintf(w, "Average Level:  %d%% (%s)\n", int(math.Round(mean)), interpretLevel(mean))
		fmt.Fprintf(w, "Maximum Level:  %d%%\n", int(math.Round(hi)))
	}
	fmt.Fprintln(w, "")
}

// writeTrendTable splits the history into thirds and compares them.
func writeTrendTable(w io.Writer, data SessionLogData) {
	if len(data.Levels) < 3 {
		return
	}
	writeSection(w, "Level Trend")

	thirds := splitThirds(data.Levels)
	means := make([]float64, 3)
	lows := make([]float64, 3)
	highs := make([]float64, 3)
	alerts := make([]int, 3)
	for i, part := range thirds {
		means[i], lows[i], highs[i] = stats(part)
		alerts[i] = countAbove(part, data.AlertThreshold)
	}

	table := NewPhaseTable()
	table.Levels("Mean", interpretLevel(means[2]), means...)
	table.Levels("Minimum", "", lows...)
	table.Levels("Maximum", "", highs...)
	table.Counts("Alerts", alerts...)
	table.Changes("Change", means...)

	table.WriteTo(w)
	fmt.Fprintln(w, "")
}

func writeAlerts(w io.Writer, data SessionLogData) {
	writeSection(w, "Alerts")

	n := 0
	for i, level := range data.Levels {
		if level > data.AlertThreshold {
			fmt.Fprintf(w, "%-12s %s\n", data.Labels[i], percent(level))
			n++
		}
	}
	if n == 0 {
		fmt.Fprintf(w, "No levels above %.0f%%\n", data.AlertThreshold)
	}
	fmt.Fprintln(w, "")
}

func writeDataPoints(w io.Writer, data SessionLogData) {
	writeSection(w, "Data Points")

	table := &PhaseTable{Columns: []string{"Level"}}
	for i, level := range data.Levels {
		table.Levels(data.Labels[i], "", level)
	}
	table.WriteTo(w)
}

func splitThirds(levels []float64) [3][]float64 {
	n := len(levels)
	a, b := n/3, 2*n/3
	return [3][]float64{levels[:a], levels[a:b], levels[b:]}
}

func stats(levels []float64) (mean, lo, hi float64) {
	if len(levels) == 0 {
		return math.NaN(), math.NaN(), math.NaN()
	}
	lo, hi = levels[0], levels[0]
	var sum float64
	for _, l := range levels {
		sum += l
		lo = math.Min(lo, l)
		hi = math.Max(hi, l)
	}
	return sum / float64(len(levels)), lo, hi
}

func countAbove(levels []float64, threshold float64) int {
	n := 0
	for _, l := range levels {
		if l > threshold {
			n++
		}
	}
	return n
}

func orMissing(s string) string {
	if s == "" {
		return missing
	}
	return s
}
