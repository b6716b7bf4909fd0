package report

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/aeropulse/aeropulse/internal/canvas"
	"github.com/aeropulse/aeropulse/internal/monitor"
)

// ErrNothingToCapture is returned when the chart has no points.
var ErrNothingToCapture = errors.New("no chart data to capture")

var (
	captureBackground = color.RGBA{255, 255, 255, 255}
	captureGrid       = color.RGBA{55, 65, 81, 90} // #374151
	captureAxis       = color.RGBA{107, 114, 128, 255}
	captureLine       = color.RGBA{39, 174, 96, 255}
)

// ChartCapture draws the trend chart the dashboard shows: the display window
// on a 0-100 axis.
type ChartCapture struct {
	Points func() []monitor.DataPoint
	Width  int
	Height int
}

// Capture implements Capturer.
func (c *ChartCapture) Capture() (image.Image, error) {
	if c.Points == nil {
		return nil, ErrNothingToCapture
	}
	points := c.Points()
	if len(points) == 0 {
		return nil, ErrNothingToCapture
	}
	w, h := c.Width, c.Height
	if w <= 0 {
		w = 600
	}
	if h <= 0 {
		h = 200
	}
	if w < 80 || h < 60 {
		return nil, fmt.Errorf("capture size %dx%d too small", w, h)
	}

	r := canvas.NewRaster(w, h)
	r.FillRect(0, 0, float64(w), float64(h), captureBackground)

	// Plot area leaves room for the axis labels.
	left, top := 40.0, 10.0
	right, bottom := float64(w)-10, float64(h)-25
	plotW, plotH := right-left, bottom-top

	grid := canvas.Stroke{Color: captureGrid, Width: 1}
	for i := 0; i <= 4; i++ {
		y := bottom - plotH*float64(i)/4
		r.Polyline([]canvas.Point{{X: left, Y: y}, {X: right, Y: y}}, grid)
		r.TextAnchored(fmt.Sprint(i*25), left-6, y, 1, 0.5, captureAxis)
	}

	axis := canvas.Stroke{Color: captureAxis, Width: 1}
	r.Polyline([]canvas.Point{{X: left, Y: top}, {X: left, Y: bottom}, {X: right, Y: bottom}}, axis)

	xs := make([]canvas.Point, len(points))
	for i, p := range points {
		x := left + plotW/2
		if len(points) > 1 {
			x = left + plotW*float64(i)/float64(len(points)-1)
		}
		xs[i] = canvas.Point{X: x, Y: bottom - plotH*p.Level/monitor.MaxLevel}
	}
	r.Polyline(xs, canvas.Stroke{Color: captureLine, Width: 2})
	for i, pt := range xs {
		r.Circle(pt.X, pt.Y, 2, captureLine)
		if i == 0 || i == len(xs)-1 || i == len(xs)/2 {
			r.TextAnchored(shortTime(points[i].Timestamp), pt.X, bottom+14, 0.5, 0.5, captureAxis)
		}
	}
	return r.Image(), nil
}

// shortTime drops the seconds from a clock label.
func shortTime(label string) string {
	parts := strings.Split(label, ":")
	if len(parts) < 2 {
		return label
	}
	short := parts[0] + ":" + parts[1]
	if len(parts) > 2 {
		if i := strings.IndexByte(parts[2], ' '); i >= 0 {
			short += parts[2][i:]
		}
	}
	return short
}
