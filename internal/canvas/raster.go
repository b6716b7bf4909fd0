package canvas

import (
	"image"
	"image/color"
	"io"

	"github.com/fogleman/gg"
)

// Raster is an in-memory RGBA surface.
type Raster struct {
	dc *gg.Context
}

// NewRaster allocates a width x height surface.
func NewRaster(width, height int) *Raster {
	return &Raster{dc: gg.NewContext(width, height)}
}

// Size implements Surface.
func (r *Raster) Size() (int, int) {
	return r.dc.Width(), r.dc.Height()
}

// FillRect implements Surface.
func (r *Raster) FillRect(x, y, w, h float64, c color.Color) {
	r.dc.SetColor(c)
	r.dc.DrawRectangle(x, y, w, h)
	r.dc.Fill()
}

// Polyline implements Surface. Glow is approximated by widening translucent
// passes under the main stroke.
func (r *Raster) Polyline(points []Point, s Stroke) {
	if len(points) < 2 {
		return
	}

	if s.Glow > 0 {
		const passes = 3
		for i := passes; i >= 1; i-- {
			r.dc.SetRGBA255(int(s.Color.R), int(s.Color.G), int(s.Color.B), 48)
			r.dc.SetLineWidth(s.Width + s.Glow*float64(i)/passes)
			r.path(points)
			r.dc.Stroke()
		}
	}

	r.dc.SetColor(s.Color)
	r.dc.SetLineWidth(s.Width)
	r.path(points)
	r.dc.Stroke()
}

func (r *Raster) path(points []Point) {
	r.dc.NewSubPath()
	r.dc.MoveTo(points[0].X, points[0].Y)
	for _, p := range points[1:] {
		r.dc.LineTo(p.X, p.Y)
	}
}

// Circle draws a filled circle.
func (r *Raster) Circle(x, y, radius float64, c color.Color) {
	r.dc.SetColor(c)
	r.dc.DrawCircle(x, y, radius)
	r.dc.Fill()
}

// Text draws s with its left baseline at (x, y) in the built-in face.
func (r *Raster) Text(s string, x, y float64, c color.Color) {
	r.dc.SetColor(c)
	r.dc.DrawString(s, x, y)
}

// TextAnchored draws s anchored at (x, y); ax and ay are in [0, 1].
func (r *Raster) TextAnchored(s string, x, y, ax, ay float64, c color.Color) {
	r.dc.SetColor(c)
	r.dc.DrawStringAnchored(s, x, y, ax, ay)
}

// At returns the colour of one pixel.
func (r *Raster) At(x, y int) color.Color {
	return r.dc.Image().At(x, y)
}

// Image returns the backing image.
func (r *Raster) Image() image.Image {
	return r.dc.Image()
}

// EncodePNG writes the surface as PNG.
func (r *Raster) EncodePNG(w io.Writer) error {
	return r.dc.EncodePNG(w)
}

// SavePNG writes the surface to a PNG file.
func (r *Raster) SavePNG(path string) error {
	return r.dc.SavePNG(path)
}
