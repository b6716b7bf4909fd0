package logging

import (
	"math"
	"strings"
	"testing"
)

func TestPercent(t *testing.T) {
	tests := []struct {
		name   string
		value  float64
		want   string
		signed string
	}{
		{"zero", 0, "0.0%", "+0.0%"},
		{"level", 53.333, "53.3%", "+53.3%"},
		{"fall", -3.25, "-3.2%", "-3.2%"},
		{"nan", math.NaN(), missing, missing},
		{"positive_inf", math.Inf(1), missing, missing},
		{"negative_inf", math.Inf(-1), missing, missing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := percent(tt.value); got != tt.want {
				t.Errorf("percent(%v) = %q, want %q", tt.value, got, tt.want)
			}
			if got := signedPercent(tt.value); got != tt.signed {
				t.Errorf("signedPercent(%v) = %q, want %q", tt.value, got, tt.signed)
			}
		})
	}
}

func TestPhaseTable(t *testing.T) {
	t.Run("levels", func(t *testing.T) {
		table := NewPhaseTable()
		table.Levels("Mean", "", 12, 35.5, 61.2)
		table.Levels("Maximum", "", 20, 48, 90)

		out := table.String()
		for _, want := range []string{"Early", "Middle", "Late", "Maximum", "61.2%", "90.0%"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
		if strings.Contains(out, "Note") {
			t.Error("no note header expected without notes")
		}
	})

	t.Run("note", func(t *testing.T) {
		table := NewPhaseTable()
		table.Levels("Mean", "moderate", 10, 20, 70)

		out := table.String()
		if !strings.Contains(out, "Note") || !strings.Contains(out, "moderate") {
			t.Errorf("note missing:\n%s", out)
		}
	})

	t.Run("changes", func(t *testing.T) {
		table := NewPhaseTable()
		table.Changes("Change", 10, 25, 20)

		lines := strings.Split(table.String(), "\n")
		want := "Change      -  +15.0%  -5.0%"
		if lines[1] != want {
			t.Errorf("change row = %q, want %q", lines[1], want)
		}
	})

	t.Run("short_row", func(t *testing.T) {
		table := NewPhaseTable()
		table.Counts("Alerts", 1)

		lines := strings.Split(table.String(), "\n")
		if strings.Count(lines[1], " - ") < 1 || !strings.HasSuffix(lines[1], "-") {
			t.Errorf("absent cells should display as dash: %q", lines[1])
		}
	})

	t.Run("nan", func(t *testing.T) {
		table := NewPhaseTable()
		table.Levels("Mean", "", 23.5, math.NaN(), 16)

		lines := strings.Split(table.String(), "\n")
		if !strings.Contains(lines[1], "23.5%") || !strings.Contains(lines[1], " - ") {
			t.Errorf("unexpected data line %q", lines[1])
		}
	})

	t.Run("empty", func(t *testing.T) {
		if out := NewPhaseTable().String(); out != "" {
			t.Errorf("empty table should render nothing, got %q", out)
		}
	})
}

func TestPhaseTableAlignment(t *testing.T) {
	table := &PhaseTable{Columns: []string{"Level"}}
	table.Levels("t1", "", 1)
	table.Levels("09:00:03 PM", "", 100)

	lines := strings.Split(strings.TrimRight(table.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	// Right-aligned cells end in the same column.
	if len(lines[1]) != len(lines[2]) {
		t.Errorf("columns not aligned:\n%s\n%s", lines[1], lines[2])
	}
}
