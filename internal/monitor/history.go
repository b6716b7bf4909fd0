package monitor

// DefaultWindow is the number of points kept in the display view.
const DefaultWindow = 20

// DataPoint is one sampled level with its display time label.
type DataPoint struct {
	Timestamp string  `json:"timestamp"`
	Level     float64 `json:"level"`
}

// History is the append-only log of a session. The bounded display view is
// always sliced from the end of the log, so it can never drift from it.
type History struct {
	points []DataPoint
	window int
}

// NewHistory creates an empty history with the given display window.
func NewHistory(window int) *History {
	if window <= 0 {
		window = DefaultWindow
	}
	return &History{window: window}
}

// Append adds a point to the end of the log.
func (h *History) Append(p DataPoint) {
	h.points = append(h.points, p)
}

// Reset empties the log.
func (h *History) Reset() {
	h.points = nil
}

// Len returns the number of points recorded.
func (h *History) Len() int {
	return len(h.points)
}

// Window returns the display view capacity.
func (h *History) Window() int {
	return h.window
}

// Complete returns a copy of the whole log.
func (h *History) Complete() []DataPoint {
	return append([]DataPoint(nil), h.points...)
}

// Display returns a copy of the last Window points.
func (h *History) Display() []DataPoint {
	start := len(h.points) - h.window
	if start < 0 {
		start = 0
	}
	return append([]DataPoint(nil), h.points[start:]...)
}

// Levels returns the level of every point, oldest first.
func Levels(points []DataPoint) []float64 {
	levels := make([]float64, len(points))
	for i, p := range points {
		levels[i] = p.Level
	}
	return levels
}
