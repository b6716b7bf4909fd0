package logging

import (
	"fmt"
	"io"
	"math"
	"strings"
)

// missing stands in for a level that could not be computed.
const missing = "-"

// PhaseTable lays out per-phase level statistics in aligned columns with an
// optional trailing note.
type PhaseTable struct {
	Columns []string
	rows    []phaseRow
}

type phaseRow struct {
	label string
	cells []string
	note  string
}

// NewPhaseTable returns a table comparing the early, middle and late parts of
// a session.
func NewPhaseTable() *PhaseTable {
	return &PhaseTable{Columns: []string{"Early", "Middle", "Late"}}
}

// Levels adds a row of percentages with one decimal. NaN cells render as "-".
func (t *PhaseTable) Levels(label, note string, levels ...float64) {
	cells := make([]string, len(levels))
	for i, v := range levels {
		cells[i] = percent(v)
	}
	t.add(label, note, cells)
}

// Changes adds a row of signed differences. The first phase has nothing to
// compare against and is left blank.
func (t *PhaseTable) Changes(label string, means ...float64) {
	cells := make([]string, len(means))
	for i := range means {
		if i == 0 {
			cells[i] = missing
			continue
		}
		cells[i] = signedPercent(means[i] - means[i-1])
	}
	t.add(label, "", cells)
}

// Counts adds a row of integer counts.
func (t *PhaseTable) Counts(label string, counts ...int) {
	cells := make([]string, len(counts))
	for i, n := range counts {
		cells[i] = fmt.Sprint(n)
	}
	t.add(label, "", cells)
}

func (t *PhaseTable) add(label, note string, cells []string) {
	t.rows = append(t.rows, phaseRow{label: label, cells: cells, note: note})
}

// WriteTo renders the table to w. A table without rows writes nothing.
func (t *PhaseTable) WriteTo(w io.Writer) (int64, error) {
	if len(t.rows) == 0 {
		return 0, nil
	}

	labelWidth := 0
	cellWidth := make([]int, len(t.Columns))
	for i, c := range t.Columns {
		cellWidth[i] = len(c)
	}
	notes := false
	for _, row := range t.rows {
		labelWidth = max(labelWidth, len(row.label))
		notes = notes || row.note != ""
		for i, c := range row.cells {
			if i < len(cellWidth) {
				cellWidth[i] = max(cellWidth[i], len(c))
			}
		}
	}

	var sb strings.Builder
	sb.WriteString(strings.Repeat(" ", labelWidth))
	for i, c := range t.Columns {
		fmt.Fprintf(&sb, "  %*s", cellWidth[i], c)
	}
	if notes {
		sb.WriteString("  Note")
	}
	sb.WriteString("\n")

	for _, row := range t.rows {
		line := fmt.Sprintf("%-*s", labelWidth, row.label)
		for i := range t.Columns {
			cell := missing
			if i < len(row.cells) && row.cells[i] != "" {
				cell = row.cells[i]
			}
			line += fmt.Sprintf("  %*s", cellWidth[i], cell)
		}
		if row.note != "" {
			line += "  " + row.note
		}
		sb.WriteString(strings.TrimRight(line, " ") + "\n")
	}

	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}

// String renders the table.
func (t *PhaseTable) String() string {
	var sb strings.Builder
	t.WriteTo(&sb)
	return sb.String()
}

func percent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return missing
	}
	return fmt.Sprintf("%.1f%%", v)
}

func signedPercent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return missing
	}
	return fmt.Sprintf("%+.1f%%", v)
}
