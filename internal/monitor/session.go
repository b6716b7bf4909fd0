package monitor

import (
	"fmt"
	"math"
	"time"
)

// Session is one logical recording episode. It survives stop/resume cycles
// until a new session is started.
type Session struct {
	ID              string
	StartedAt       time.Time // zero until the first successful start
	DurationSeconds int
	Active          bool
	CurrentLevel    float64
}

// Status labels used in summaries.
const (
	StatusRecording = "Recording"
	StatusPaused    = "Paused"
)

// Summary is the derived session overview used in reports.
type Summary struct {
	Start        time.Time
	Duration     string
	PointCount   int
	AverageLevel int
	MaxLevel     int
	Status       string
}

// Summarize derives a summary from the complete history. recording selects
// the reported status.
func Summarize(points []DataPoint, s Session, recording bool) Summary {
	levels := Levels(points)
	status := StatusPaused
	if recording {
		status = StatusRecording
	}
	return Summary{
		Start:        s.StartedAt,
		Duration:     FormatDuration(s.DurationSeconds),
		PointCount:   len(points),
		AverageLevel: int(math.Round(Average(levels))),
		MaxLevel:     int(math.Round(Max(levels))),
		Status:       status,
	}
}

// Average returns the mean level, or 0 for no levels.
func Average(levels []float64) float64 {
	if len(levels) == 0 {
		return 0
	}
	var sum float64
	for _, l := range levels {
		sum += l
	}
	return sum / float64(len(levels))
}

// Max returns the highest level, or 0 for no levels.
func Max(levels []float64) float64 {
	var m float64
	for _, l := range levels {
		if l > m {
			m = l
		}
	}
	return m
}

// FormatDuration renders seconds as mm:ss.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
