package report

import (
	"context"
	"fmt"

	"github.com/aeropulse/aeropulse/internal/logging"
)

const (
	lineHeight    = 10.0
	simpleSpacing = 15.0

	// The simplified chart needs a little more room than a text section.
	simpleChartLimit = pageHeight - 120
)

// Simple renders the plain-text fallback report.
type Simple struct {
	Title string
	Log   *logging.Logger
}

// Name implements Generator.
func (g *Simple) Name() string { return "simplified" }

// Render implements Generator.
func (g *Simple) Render(ctx context.Context, in Input) (*Document, error) {
	title := g.Title
	if title == "" {
		title = DefaultTitle
	}

	l := newLayout(title, g.Log)
	l.header(title, in, lineHeight+5, lineHeight+simpleSpacing)

	if p := in.Patient; p != nil {
		l.textSection("Patient Information", []string{
			"Name: " + p.Name,
			fmt.Sprintf("Age: %d", p.Age),
			"Gender: " + p.Gender,
			"Medical History: " + p.MedicalHistory,
			fmt.Sprintf("Wheezing Level: %d%%", p.WheezingLevel),
			fmt.Sprintf("Respiratory Rate: %d bpm", p.RespiratoryRate),
			fmt.Sprintf("Oxygen Level: %d%%", p.OxygenLevel),
		})
	}

	if s := in.Summary; s != nil {
		var lines []string
		for _, row := range sessionRows(s, in) {
			lines = append(lines, row[0]+": "+row[1])
		}
		l.textSection("Session Summary", lines)
	}

	if in.Summary == nil && len(in.History) > 0 {
		var lines []string
		for _, row := range derivedRows(in.History, averageLevel(in.History)) {
			lines = append(lines, row[0]+": "+row[1])
		}
		l.textSection("Session Summary", lines)
	}

	if len(in.History) > 1 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		l.ensure(simpleChartLimit)
		l.text(16, green, "Wheezing Level Trend")
		l.y += lineHeight

		bottom := l.y + chartHeight
		drawChart(l.pdf, chartArea{
			Left:   margin,
			Bottom: bottom,
			Width:  contentWidth,
			Height: chartHeight,
		}, in.History, l.tr)
		l.y = bottom
	}

	return l.finish(g.Name())
}

// textSection writes a heading and one line per entry, moving to a new page
// whenever a line would fall below the bottom margin.
func (l *layout) textSection(heading string, lines []string) {
	l.ensure(sectionLimit)
	l.text(16, black, heading)
	l.y += lineHeight

	for _, line := range lines {
		l.ensure(pageHeight - margin)
		l.text(12, black, line)
		l.y += lineHeight
	}
	l.y += simpleSpacing
}
