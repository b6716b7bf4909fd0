package monitor

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"
)

// CSVHeader is the first row of a raw data export.
var CSVHeader = []string{"Time", "Wheezing Level"}

// WriteCSV writes one row per point with the level rounded to an integer.
func WriteCSV(w io.Writer, points []DataPoint) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, p := range points {
		row := []string{p.Timestamp, strconv.Itoa(int(math.Round(p.Level)))}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSVFilename names a raw data export for the given day.
func CSVFilename(day time.Time) string {
	return "aeropulse_data_" + day.Format("2006-01-02") + ".csv"
}
