package logging

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestInterpretLevel(t *testing.T) {
	tests := []struct {
		level float64
		want  string
	}{
		{0, "normal"},
		{24.9, "normal"},
		{25, "mild"},
		{50, "moderate"},
		{74.9, "moderate"},
		{75, "severe"},
		{100, "severe"},
	}

	for _, tt := range tests {
		if got := interpretLevel(tt.level); got != tt.want {
			t.Errorf("interpretLevel(%v) = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestSessionLogPath(t *testing.T) {
	got := SessionLogPath("/tmp/out/aeropulse_report_John_Doe_2026-03-02.pdf")
	if got != "/tmp/out/aeropulse_report_John_Doe_2026-03-02.log" {
		t.Errorf("SessionLogPath() = %q", got)
	}
}

func TestFormatSessionLog(t *testing.T) {
	exported := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	data := SessionLogData{
		ReportPath:     "aeropulse_report_John_Doe_2026-03-02.pdf",
		Generator:      "simplified",
		FallbackReason: errors.New("primary generator panicked"),
		SessionID:      "5f0a",
		PatientName:    "John Doe",
		StartedAt:      exported.Add(-time.Minute),
		ExportedAt:     exported,
		Duration:       "01:00",
		Status:         "Paused",
		Labels:         []string{"t1", "t2", "t3"},
		Levels:         []float64{10, 60, 90},
	}

	var buf bytes.Buffer
	if err := FormatSessionLog(&buf, data); err != nil {
		t.Fatalf("FormatSessionLog failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Aeropulse Session Log",
		"Patient: John Doe",
		"Report: aeropulse_report_John_Doe_2026-03-02.pdf (simplified generator)",
		"Fallback: primary generator panicked",
		"Data Points:    3",
		"Average Level:  53% (moderate)",
		"Maximum Level:  90%",
		"Level Trend",
		"Early",
		"t2           60.0%",
		"t3           90.0%",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "t1           10.0%") {
		t.Error("t1 is below the threshold and should not be listed as an alert")
	}
}

func TestFormatSessionLogEmpty(t *testing.T) {
	var buf bytes.Buffer
	err := FormatSessionLog(&buf, SessionLogData{ExportedAt: time.Now(), Generator: "primary"})
	if err != nil {
		t.Fatalf("FormatSessionLog failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Patient: anonymous") || !strings.Contains(out, "No levels above 50%") {
		t.Errorf("unexpected empty log:\n%s", out)
	}
	if strings.Contains(out, "Level Trend") {
		t.Error("trend table needs at least three points")
	}
}

func TestFormatSessionLogMismatch(t *testing.T) {
	err := FormatSessionLog(&bytes.Buffer{}, SessionLogData{Labels: []string{"a"}})
	if err == nil {
		t.Error("expected an error for mismatched labels and levels")
	}
}

func TestWriteSessionLog(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteSessionLog(SessionLogData{
		ReportPath: filepath.Join(dir, "report.pdf"),
		ExportedAt: time.Now(),
		Labels:     []string{"t1"},
		Levels:     []float64{42},
	})
	if err != nil {
		t.Fatalf("WriteSessionLog failed: %v", err)
	}
	if path != filepath.Join(dir, "report.log") {
		t.Errorf("path = %q", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("log not written: %v", err)
	}
}

func TestLoggerNilSafe(t *testing.T) {
	var l *Logger
	l.Printf("[TEST] %d", 1)
	if err := l.Close(); err != nil {
		t.Errorf("Close on nil logger = %v", err)
	}

	var buf bytes.Buffer
	NewLogger(&buf).Printf("[TEST] level %.1f", 53.3)
	if buf.String() != "[TEST] level 53.3\n" {
		t.Errorf("logged %q", buf.String())
	}
}
