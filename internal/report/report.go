// Package report builds the session report PDF. The primary generator emits
// tables, a drawn trend chart and an optional chart capture; the simplified
// generator emits plain text lines and is used when the primary one fails.
package report

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"math"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/aeropulse/aeropulse/internal/logging"
	"github.com/aeropulse/aeropulse/internal/monitor"
	"github.com/aeropulse/aeropulse/internal/patient"
)

// DefaultTitle heads every report.
const DefaultTitle = "Aeropulse - Respiratory Monitoring Report"

// FooterLine is printed under the page number on every page.
const FooterLine = "Aeropulse - Respiratory Monitoring System"

// A4 portrait layout in millimetres
const (
	pageWidth    = 210.0
	pageHeight   = 297.0
	margin       = 15.0
	contentWidth = pageWidth - 2*margin
	chartHeight  = 80.0

	// A section starts on a new page when the cursor is below this line.
	sectionLimit = pageHeight - 100
)

type rgb struct{ r, g, b int }

var (
	green = rgb{39, 174, 96}
	grey  = rgb{100, 100, 100}
	black = rgb{0, 0, 0}
	white = rgb{255, 255, 255}
	rule  = rgb{187, 187, 187}
)

// Capturer renders an image of the on-screen trend chart.
type Capturer interface {
	Capture() (image.Image, error)
}

// Input is everything a generator needs. Patient, Summary and Capture are
// optional.
type Input struct {
	Patient     *patient.Patient
	History     []monitor.DataPoint
	Summary     *monitor.Summary
	Capture     Capturer
	GeneratedAt time.Time
	// FormatTime renders timestamps such as the generation time; default
	// "2006-01-02 15:04:05".
	FormatTime func(time.Time) string
}

func (in Input) formatTime(t time.Time) string {
	if t.IsZero() {
		return "Unknown"
	}
	if in.FormatTime != nil {
		return in.FormatTime(t)
	}
	return t.Format("2006-01-02 15:04:05")
}

// Generator renders a report document.
type Generator interface {
	Name() string
	Render(ctx context.Context, in Input) (*Document, error)
}

// Document is a rendered PDF.
type Document struct {
	Generator string
	Pages     int
	data      []byte
}

// Bytes returns the encoded PDF.
func (d *Document) Bytes() []byte {
	return d.data
}

// WriteTo writes the encoded PDF to w.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(d.data)
	return int64(n), err
}

// Filename names the report for a patient, or for an anonymous session when p
// is nil.
func Filename(p *patient.Patient, day time.Time) string {
	date := day.Format("2006-01-02")
	if p == nil || strings.TrimSpace(p.Name) == "" {
		return "aeropulse_report_session_" + date + ".pdf"
	}
	return "aeropulse_report_" + strings.Join(strings.Fields(p.Name), "_") + "_" + date + ".pdf"
}

// layout tracks the write cursor on the current page.
type layout struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
	log *logging.Logger
	y   float64
}

func newLayout(title string, log *logging.Logger) *layout {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(title, true)
	pdf.SetCreator("Aeropulse", true)
	pdf.SetFont("Helvetica", "", 10)

	l := &layout{
		pdf: pdf,
		tr:  pdf.UnicodeTranslatorFromDescriptor(""),
		log: log,
	}
	l.newPage()
	return l
}

func (l *layout) newPage() {
	l.pdf.AddPage()
	l.y = margin
}

// ensure starts a new page when the cursor is past limit.
func (l *layout) ensure(limit float64) {
	if l.y > limit {
		l.newPage()
	}
}

func (l *layout) color(c rgb) {
	l.pdf.SetTextColor(c.r, c.g, c.b)
}

// text writes s with its baseline on the cursor line.
func (l *layout) text(size float64, c rgb, s string) {
	l.pdf.SetFontSize(size)
	l.color(c)
	l.pdf.Text(margin, l.y, l.tr(s))
}

// header writes the title and generation time. titleGap and dateGap are the
// cursor advances after each line.
func (l *layout) header(title string, in Input, titleGap, dateGap float64) {
	l.text(20, green, title)
	l.y += titleGap
	l.text(10, grey, "Generated on: "+in.formatTime(in.GeneratedAt))
	l.y += dateGap
}

// footers stamps every page once the page count is final.
func (l *layout) footers() {
	total := l.pdf.PageCount()
	for page := 1; page <= total; page++ {
		l.pdf.SetPage(page)
		l.pdf.SetFontSize(8)
		l.color(grey)
		l.centred(pageHeight-10, fmt.Sprintf("Page %d of %d", page, total))
		l.centred(pageHeight-5, FooterLine)
	}
}

func (l *layout) centred(y float64, s string) {
	s = l.tr(s)
	l.pdf.Text((pageWidth-l.pdf.GetStringWidth(s))/2, y, s)
}

// finish encodes the document.
func (l *layout) finish(generator string) (*Document, error) {
	if err := l.pdf.Error(); err != nil {
		return nil, fmt.Errorf("%s layout: %w", generator, err)
	}
	l.footers()
	pages := l.pdf.PageCount()

	var buf bytes.Buffer
	if err := l.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%s output: %w", generator, err)
	}
	return &Document{Generator: generator, Pages: pages, data: buf.Bytes()}, nil
}

func sessionRows(s *monitor.Summary, in Input) [][2]string {
	return [][2]string{
		{"Session Start", in.formatTime(s.Start)},
		{"Session Duration", s.Duration},
		{"Data Points", fmt.Sprint(s.PointCount)},
		{"Average Wheezing Level", fmt.Sprintf("%d%%", s.AverageLevel)},
		{"Maximum Wheezing Level", fmt.Sprintf("%d%%", s.MaxLevel)},
		{"Current Status", s.Status},
	}
}

// derivedRows summarise a history when no session summary was supplied.
func derivedRows(points []monitor.DataPoint, average int) [][2]string {
	rows := [][2]string{
		{"Total Data Points", fmt.Sprint(len(points))},
		{"Average Wheezing Level", fmt.Sprintf("%d%%", average)},
	}
	if len(points) > 1 {
		period := points[0].Timestamp + " - " + points[len(points)-1].Timestamp
		rows = append(rows, [2]string{"Session Period", period})
	}
	return rows
}

func averageLevel(points []monitor.DataPoint) int {
	return roundInt(monitor.Average(monitor.Levels(points)))
}

func patientRows(p *patient.Patient) [][2]string {
	return [][2]string{
		{"Name", p.Name},
		{"Age", fmt.Sprint(p.Age)},
		{"Gender", p.Gender},
		{"Medical History", p.MedicalHistory},
		{"Status", p.Status},
		{"Current Wheezing Level", fmt.Sprintf("%d%%", p.WheezingLevel)},
		{"Respiratory Rate", fmt.Sprintf("%d bpm", p.RespiratoryRate)},
		{"Oxygen Level", fmt.Sprintf("%d%%", p.OxygenLevel)},
		{"Medications", p.MedicationList()},
		{"Notes", p.Notes},
	}
}

func roundInt(v float64) int {
	return int(math.Round(v))
}
