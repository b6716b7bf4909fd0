package report

import (
	"bytes"
	"context"
	"fmt"
	"image/png"

	"github.com/go-pdf/fpdf"

	"github.com/aeropulse/aeropulse/internal/logging"
)

const (
	sectionSpacing = 10.0

	keyColumn = 50.0
	cellPad   = 1.5
	cellLine  = 5.0
)

// Primary renders the full report: tables, the drawn chart and the chart
// capture.
type Primary struct {
	Title string
	Log   *logging.Logger
}

// Name implements Generator.
func (g *Primary) Name() string { return "primary" }

// Render implements Generator.
func (g *Primary) Render(ctx context.Context, in Input) (*Document, error) {
	title := g.Title
	if title == "" {
		title = DefaultTitle
	}

	l := newLayout(title, g.Log)
	l.header(title, in, 10, sectionSpacing+5)

	if in.Summary != nil {
		l.ensure(sectionLimit)
		l.heading("Session Summary")
		l.table([2]string{"Metric", "Value"}, sessionRows(in.Summary, in))
	}

	if in.Patient != nil {
		l.ensure(sectionLimit)
		l.heading("Patient Information")
		l.table([2]string{"Field", "Value"}, patientRows(in.Patient))
	}

	average := averageLevel(in.History)
	if in.Summary == nil && len(in.History) > 0 {
		l.ensure(sectionLimit)
		l.heading("Session Summary")
		l.table([2]string{"Metric", "Value"}, derivedRows(in.History, average))
	}

	if len(in.History) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		g.chartPage(l, in, average)
	}

	return l.finish(g.Name())
}

func (g *Primary) chartPage(l *layout, in Input, average int) {
	l.newPage()
	l.text(16, green, "Session Trend Chart")
	l.y += 10
	l.text(12, black, fmt.Sprintf("Average Wheezing Level: %d%%", average))
	l.y += sectionSpacing

	if len(in.History) > 1 {
		bottom := l.y + chartHeight
		l.text(14, black, "Wheezing Level Trend")
		l.y += 5

		drawChart(l.pdf, chartArea{
			Left:    margin,
			Bottom:  bottom,
			Width:   contentWidth,
			Height:  chartHeight,
			Markers: true,
			YLabels: true,
			XLabels: true,
		}, in.History, l.tr)
		l.y = bottom + 20
	}

	if in.Capture != nil {
		if err := g.embedCapture(l, in.Capture); err != nil {
			g.Log.Printf("[REPORT] Chart capture skipped: %v", err)
		}
	}
}

// embedCapture adds the captured chart image. Failures leave the document
// as it was.
func (g *Primary) embedCapture(l *layout, c Capturer) error {
	img, err := c.Capture()
	if err != nil {
		return err
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return fmt.Errorf("empty capture")
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode capture: %w", err)
	}
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	l.pdf.RegisterImageOptionsReader("chart-capture", opts, &buf)
	if err := l.pdf.Error(); err != nil {
		l.pdf.ClearError()
		return fmt.Errorf("register capture: %w", err)
	}

	if l.y > sectionLimit {
		l.newPage()
	} else {
		l.y += sectionSpacing
	}
	l.text(14, green, "Live Monitor Visualization")
	l.y += 10

	w := contentWidth
	h := float64(b.Dy()) * w / float64(b.Dx())
	if l.y+h > pageHeight-margin {
		l.newPage()
	}
	l.pdf.ImageOptions("chart-capture", margin, l.y, w, h, false, opts, 0, "")
	l.y += h
	return nil
}

func (l *layout) heading(s string) {
	l.text(16, black, s)
	l.y += 5
}

// table draws a two-column grid with a green header row. Rows that do not fit
// move to a new page under a repeated header.
func (l *layout) table(head [2]string, rows [][2]string) {
	valueColumn := contentWidth - keyColumn
	l.pdf.SetFontSize(10)

	l.tableRow(head, []string{head[1]}, true)
	for _, row := range rows {
		lines := l.wrap(row[1], valueColumn-2*cellPad)
		h := rowHeight(len(lines))
		if l.y+h > pageHeight-margin {
			l.newPage()
			l.pdf.SetFontSize(10)
			l.tableRow(head, []string{head[1]}, true)
		}
		l.tableRow(row, lines, false)
	}
	l.y += sectionSpacing
}

func (l *layout) wrap(s string, width float64) []string {
	var lines []string
	for _, b := range l.pdf.SplitLines([]byte(l.tr(s)), width) {
		lines = append(lines, string(b))
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	return lines
}

func rowHeight(lines int) float64 {
	if lines < 1 {
		lines = 1
	}
	return float64(lines)*cellLine + 2*cellPad
}

func (l *layout) tableRow(row [2]string, valueLines []string, header bool) {
	h := rowHeight(len(valueLines))
	style := "D"
	text := black
	if header {
		style = "FD"
		text = white
		l.pdf.SetFillColor(green.r, green.g, green.b)
	}
	l.pdf.SetDrawColor(rule.r, rule.g, rule.b)
	l.pdf.SetLineWidth(0.1)
	l.pdf.Rect(margin, l.y, keyColumn, h, style)
	l.pdf.Rect(margin+keyColumn, l.y, contentWidth-keyColumn, h, style)

	l.color(text)
	baseline := l.y + cellPad + cellLine*0.75
	l.pdf.Text(margin+cellPad, baseline, l.tr(row[0]))
	for i, line := range valueLines {
		l.pdf.Text(margin+keyColumn+cellPad, baseline+float64(i)*cellLine, line)
	}
	l.y += h
}
