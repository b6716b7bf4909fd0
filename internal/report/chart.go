package report

import "github.com/aeropulse/aeropulse/internal/monitor"

// drawer is the slice of the PDF API the trend chart needs.
type drawer interface {
	SetDrawColor(r, g, b int)
	SetFillColor(r, g, b int)
	SetTextColor(r, g, b int)
	SetLineWidth(width float64)
	SetFontSize(size float64)
	Line(x1, y1, x2, y2 float64)
	Circle(x, y, r float64, styleStr string)
	Text(x, y float64, txtStr string)
}

// chartArea places a trend chart. Bottom is the x-axis line.
type chartArea struct {
	Left, Bottom  float64
	Width, Height float64

	Markers bool // filled circle on every point
	YLabels bool // 0% to 100% in quarters
	XLabels bool // first, middle and last timestamps
}

// drawChart draws axes and the level line for two or more points and
// returns the number of line segments drawn.
func drawChart(d drawer, area chartArea, points []monitor.DataPoint, tr func(string) string) int {
	if len(points) < 2 {
		return 0
	}
	if tr == nil {
		tr = func(s string) string { return s }
	}

	left, bottom := area.Left, area.Bottom
	top := bottom - area.Height

	d.SetDrawColor(black.r, black.g, black.b)
	d.SetLineWidth(0.5)
	d.Line(left, bottom, left, top)
	d.Line(left, bottom, left+area.Width, bottom)

	if area.YLabels {
		d.SetFontSize(8)
		d.SetTextColor(black.r, black.g, black.b)
		d.Text(left-10, top, "100%")
		d.Text(left-8, bottom-area.Height*0.75, "75%")
		d.Text(left-8, bottom-area.Height*0.5, "50%")
		d.Text(left-8, bottom-area.Height*0.25, "25%")
		d.Text(left-5, bottom, "0%")
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	last := float64(len(points) - 1)
	for i, p := range points {
		xs[i] = left + float64(i)/last*area.Width
		ys[i] = bottom - p.Level/monitor.MaxLevel*area.Height
	}

	d.SetDrawColor(green.r, green.g, green.b)
	d.SetLineWidth(1)
	segments := 0
	for i := 0; i < len(points)-1; i++ {
		d.Line(xs[i], ys[i], xs[i+1], ys[i+1])
		segments++
	}

	if area.Markers {
		d.SetFillColor(green.r, green.g, green.b)
		for i := range points {
			d.Circle(xs[i], ys[i], 1, "F")
		}
	}

	if area.XLabels && len(points) >= 3 {
		d.SetFontSize(8)
		d.SetTextColor(black.r, black.g, black.b)
		d.Text(left, bottom+10, tr(points[0].Timestamp))
		d.Text(left+area.Width/2, bottom+10, tr(points[len(points)/2].Timestamp))
		d.Text(left+area.Width-15, bottom+10, tr(points[len(points)-1].Timestamp))
	}
	return segments
}
