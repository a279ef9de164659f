package viz

import (
	"math"
	"strings"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const brailleBlank = 0x2800

// Canvas is a Braille pixel grid of Width x Height cells, i.e.
// (2*Width) x (4*Height) dots. Unit coordinates map [-1, 1] on both axes
// onto the full grid with +y pointing up.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set lights the dot at (x, y) in dot coordinates.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// dot converts unit coordinates to dot coordinates, pinning anything
// outside [-1, 1] to the border.
func (c *Canvas) dot(u, v float64) (int, int) {
	w, h := float64(2*c.Width-1), float64(4*c.Height-1)
	u, v = clampUnit(u), clampUnit(v)
	return int(math.Round((u + 1) / 2 * w)), int(math.Round((1 - v) / 2 * h))
}

// Point lights the dot nearest to (u, v) in unit coordinates. Points off
// the canvas are dropped.
func (c *Canvas) Point(u, v float64) {
	if !(math.Abs(u) <= 1 && math.Abs(v) <= 1) {
		return
	}
	c.Set(c.dot(u, v))
}

// Line draws from (u0, v0) to (u1, v1) in unit coordinates. Endpoints off
// the canvas are pinned to its border; a NaN endpoint draws nothing.
func (c *Canvas) Line(u0, v0, u1, v1 float64) {
	if math.IsNaN(u0) || math.IsNaN(v0) || math.IsNaN(u1) || math.IsNaN(v1) {
		return
	}
	x0, y0 := c.dot(u0, v0)
	x1, y1 := c.dot(u1, v1)
	c.drawLine(x0, y0, x1, y1)
}

// Circle outlines the unit circle.
func (c *Canvas) Circle() {
	n := 4 * (c.Width + c.Height)
	for i := 0; i < n; i++ {
		sin, cos := math.Sincos(2 * math.Pi * float64(i) / float64(n))
		c.Point(cos, sin)
	}
}

// drawLine is Bresenham's algorithm in dot coordinates.
func (c *Canvas) drawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func clampUnit(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	return math.Max(-1, math.Min(1, x))
}
