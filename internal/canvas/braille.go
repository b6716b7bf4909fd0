package canvas

import (
	"image/color"
	"math"
	"strings"
)

// Braille is a terminal surface: each character cell holds a 2x4 dot matrix,
// so a cols x rows grid exposes (2*cols) x (4*rows) pixels. There is no
// colour per dot; the last opaque stroke colour is kept for the caller to
// style the whole grid.
type Braille struct {
	cols, rows int
	dots       []bool
	last       color.RGBA
}

// minOpacity is the alpha below which strokes are not plotted: translucent
// detail such as grid lines would swamp a dot grid.
const minOpacity = 128

// braille dot bits indexed by [y%4][x%2]
var brailleBits = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// NewBraille allocates a grid of cols x rows character cells.
func NewBraille(cols, rows int) *Braille {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return &Braille{
		cols: cols,
		rows: rows,
		dots: make([]bool, cols*2*rows*4),
	}
}

// Size implements Surface.
func (b *Braille) Size() (int, int) {
	return b.cols * 2, b.rows * 4
}

// FillRect implements Surface by clearing the covered dots.
func (b *Braille) FillRect(x, y, w, h float64, _ color.Color) {
	width, height := b.Size()
	x0, y0 := clampInt(int(x), 0, width), clampInt(int(y), 0, height)
	x1, y1 := clampInt(int(math.Ceil(x+w)), 0, width), clampInt(int(math.Ceil(y+h)), 0, height)
	for py := y0; py < y1; py++ {
		for px := x0; px < x1; px++ {
			b.dots[py*width+px] = false
		}
	}
}

// Polyline implements Surface.
func (b *Braille) Polyline(points []Point, s Stroke) {
	if len(points) < 2 || s.Color.A < minOpacity {
		return
	}
	b.last = s.Color
	for i := 0; i < len(points)-1; i++ {
		b.line(points[i], points[i+1])
	}
}

// Color returns the colour of the last plotted stroke.
func (b *Braille) Color() color.RGBA {
	return b.last
}

// Set reports whether the dot at (x, y) is raised.
func (b *Braille) Set(x, y int) bool {
	width, height := b.Size()
	if x < 0 || y < 0 || x >= width || y >= height {
		return false
	}
	return b.dots[y*width+x]
}

// String renders the grid as rows of braille characters.
func (b *Braille) String() string {
	width, _ := b.Size()
	var sb strings.Builder
	for row := 0; row < b.rows; row++ {
		if row > 0 {
			sb.WriteByte('\n')
		}
		for col := 0; col < b.cols; col++ {
			r := rune(0x2800)
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if b.dots[(row*4+dy)*width+col*2+dx] {
						r |= brailleBits[dy][dx]
					}
				}
			}
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// line plots a Bresenham segment.
func (b *Braille) line(p0, p1 Point) {
	width, height := b.Size()
	x0, y0 := int(math.Round(p0.X)), int(math.Round(p0.Y))
	x1, y1 := int(math.Round(p1.X)), int(math.Round(p1.Y))

	dx := absInt(x1 - x0)
	dy := -absInt(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		if x0 >= 0 && y0 >= 0 && x0 < width && y0 < height {
			b.dots[y0*width+x0] = true
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
