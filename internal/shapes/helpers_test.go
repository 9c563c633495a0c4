package shapes

import (
	"image"
	"image/color"
	"math"
)

// createCanvas creates a white RGBA image.
func createCanvas(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.White)
		}
	}
	return img
}

// fillRect fills [x1,x2) × [y1,y2) with c.
func fillRect(img *image.RGBA, x1, y1, x2, y2 int, c color.Color) {
	for y := y1; y < y2; y++ {
		for x := x1; x < x2; x++ {
			img.Set(x, y, c)
		}
	}
}

// fillCircle fills every pixel whose centre lies within radius of (cx, cy).
func fillCircle(img *image.RGBA, cx, cy int, radius float64, c color.Color) {
	r := int(math.Ceil(radius))
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			dx, dy := float64(x-cx), float64(y-cy)
			if dx*dx+dy*dy <= radius*radius {
				img.Set(x, y, c)
			}
		}
	}
}

// fillTriangle fills an upright equilateral triangle with apex (ax, ay).
func fillTriangle(img *image.RGBA, ax, ay int, side float64, c color.Color) {
	height := side * math.Sqrt(3) / 2
	for y := 0; y <= int(height); y++ {
		half := float64(y) / math.Sqrt(3)
		for x := int(math.Round(-half)); x <= int(math.Round(half)); x++ {
			img.Set(ax+x, ay+y, c)
		}
	}
}

// permissive returns default parameters with room for large test shapes.
func permissive() Params {
	p := DefaultParams()
	p.MaxArea = 20000
	return p
}
