package shapes

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// drawPolygon strokes the closed polygon pts onto img with a square pen of
// the given width.
func drawPolygon(img draw.Image, pts []image.Point, c color.Color, width int) {
	switch len(pts) {
	case 0:
		return
	case 1:
		stamp(img, pts[0], c, width)
		return
	}
	for i := range pts {
		drawLine(img, pts[i], pts[(i+1)%len(pts)], c, width)
	}
}

// drawLine rasterizes a segment with Bresenham's algorithm.
func drawLine(img draw.Image, a, b image.Point, c color.Color, width int) {
	dx := abs(b.X - a.X)
	dy := -abs(b.Y - a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}
	e := dx + dy
	p := a
	for {
		stamp(img, p, c, width)
		if p == b {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			p.X += sx
		}
		if e2 <= dx {
			e += dx
			p.Y += sy
		}
	}
}

func stamp(img draw.Image, p image.Point, c color.Color, width int) {
	r := image.Rect(p.X-(width-1)/2, p.Y-(width-1)/2, p.X+width/2+1, p.Y+width/2+1)
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
}

// drawLabel writes text with its baseline just above anchor, clamped inside
// the image.
func drawLabel(img draw.Image, anchor image.Point, text string, c color.Color) {
	face := basicfont.Face7x13
	d := &font.Drawer{Dst: img, Src: image.NewUniform(c), Face: face}

	b := img.Bounds()
	width := d.MeasureString(text).Ceil()
	ascent := face.Metrics().Ascent.Ceil()

	x := anchor.X
	if x+width > b.Max.X {
		x = b.Max.X - width
	}
	if x < b.Min.X {
		x = b.Min.X
	}
	y := anchor.Y - 3
	if y-ascent < b.Min.Y {
		y = b.Min.Y + ascent
	}
	d.Dot = fixed.P(x, y)
	d.DrawString(text)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
