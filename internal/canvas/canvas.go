// Package canvas provides the 2D drawing surfaces the waveform renderer and
// the chart capture draw on: an anti-aliased raster image and a braille dot
// grid for terminals.
package canvas

import "image/color"

// Point is a position in surface pixels, origin top-left.
type Point struct {
	X, Y float64
}

// Stroke describes how a polyline is drawn.
type Stroke struct {
	Color color.RGBA
	Width float64
	Glow  float64 // shadow blur radius in pixels; 0 disables
}

// Surface is a canvas-like drawing target with pixel dimensions. No double
// buffering is implied: drawing lands on the surface directly.
type Surface interface {
	Size() (width, height int)
	FillRect(x, y, w, h float64, c color.Color)
	Polyline(points []Point, s Stroke)
}
