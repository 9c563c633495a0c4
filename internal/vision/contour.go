package vision

import (
	"image"
)

// Neighbour offsets in clockwise order on screen (Y grows downward),
// starting from the right-hand neighbour.
var neighbours = [8]image.Point{
	{X: 1, Y: 0},
	{X: 1, Y: 1},
	{X: 0, Y: 1},
	{X: -1, Y: 1},
	{X: -1, Y: 0},
	{X: -1, Y: -1},
	{X: 0, Y: -1},
	{X: 1, Y: -1},
}

const dirLeft = 4

// direction returns the index in neighbours of the offset d.
func direction(d image.Point) int {
	for i, n := range neighbours {
		if n == d {
			return i
		}
	}
	return -1
}

// binaryGrid is a copy of a mask padded with one background pixel on every
// side, so border following never has to check image bounds.
type binaryGrid struct {
	width, height int // padded dimensions
	fg            []bool
	outside       []bool // background reachable from the frame
	labelled      []bool // foreground pixels already assigned to a component
}

func newBinaryGrid(mask *image.Gray) *binaryGrid {
	b := mask.Bounds()
	g := &binaryGrid{
		width:  b.Dx() + 2,
		height: b.Dy() + 2,
	}
	n := g.width * g.height
	g.fg = make([]bool, n)
	g.outside = make([]bool, n)
	g.labelled = make([]bool, n)

	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			if mask.Pix[mask.PixOffset(b.Min.X+x, b.Min.Y+y)] != 0 {
				g.fg[g.index(x+1, y+1)] = true
			}
		}
	}
	g.markOutside()
	return g
}

func (g *binaryGrid) index(x, y int) int {
	return y*g.width + x
}

func (g *binaryGrid) isForeground(p image.Point) bool {
	return g.fg[g.index(p.X, p.Y)]
}

// markOutside flood-fills the background connected to the padding frame.
// Background uses 4-connectivity, the dual of 8-connected foreground, so a
// shape touching another only at a corner still encloses its holes.
func (g *binaryGrid) markOutside() {
	stack := []image.Point{{X: 0, Y: 0}}
	g.outside[0] = true

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, d := range [4]image.Point{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}} {
			q := p.Add(d)
			if q.X < 0 || q.X >= g.width || q.Y < 0 || q.Y >= g.height {
				continue
			}
			i := g.index(q.X, q.Y)
			if g.fg[i] || g.outside[i] {
				continue
			}
			g.outside[i] = true
			stack = append(stack, q)
		}
	}
}

// labelComponent marks every foreground pixel 8-connected to start.
func (g *binaryGrid) labelComponent(start image.Point) {
	stack := []image.Point{start}
	g.labelled[g.index(start.X, start.Y)] = true

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, d := range neighbours {
			q := p.Add(d)
			i := g.index(q.X, q.Y)
			if !g.fg[i] || g.labelled[i] {
				continue
			}
			g.labelled[i] = true
			stack = append(stack, q)
		}
	}
}

// FindExternalContours traces the outer border of every foreground region of
// mask that is not enclosed by another region. Holes and anything inside them
// are ignored. Any non-zero pixel counts as foreground.
//
// Borders are traced with the Suzuki-Abe border following procedure over
// 8-connected foreground and returned chain-compressed: runs of points moving
// in the same direction are reduced to their end points. Contours are ordered
// by the raster position of their top-left-most pixel.
func FindExternalContours(mask *image.Gray) []Contour {
	b := mask.Bounds()
	if b.Empty() {
		return nil
	}

	g := newBinaryGrid(mask)
	contours := make([]Contour, 0)

	for y := 1; y < g.height-1; y++ {
		for x := 1; x < g.width-1; x++ {
			i := g.index(x, y)
			if !g.fg[i] || g.labelled[i] {
				continue
			}
			// The first pixel met in raster order lies on the component's
			// outer border. Components whose outer border faces a hole
			// rather than the outside are nested and skipped.
			start := image.Point{X: x, Y: y}
			nested := !g.outside[g.index(x-1, y)]
			g.labelComponent(start)
			if nested {
				continue
			}

			border := g.followBorder(start)
			contour := compressChain(border)
			offset := b.Min.Sub(image.Point{X: 1, Y: 1})
			for j := range contour {
				contour[j] = contour[j].Add(offset)
			}
			contours = append(contours, contour)
		}
	}
	return contours
}

// followBorder walks the outer border starting at start, whose left
// neighbour is background. Points are returned in visiting order, each
// border pixel once per pass (pixels on one-pixel-wide spurs are visited
// twice).
func (g *binaryGrid) followBorder(start image.Point) Contour {
	// Look clockwise around start, beginning at its left neighbour, for the
	// first foreground pixel. That pixel is the last one visited before the
	// walk returns to start.
	first := -1
	for k := 0; k < 8; k++ {
		d := (dirLeft + k) % 8
		if g.isForeground(start.Add(neighbours[d])) {
			first = d
			break
		}
	}
	if first < 0 {
		// Isolated pixel.
		return Contour{start}
	}

	last := start.Add(neighbours[first])
	prev, cur := last, start
	border := make(Contour, 0, 64)

	for {
		// Examine cur's neighbours counter-clockwise, starting just after prev.
		from := direction(prev.Sub(cur))
		next := cur
		for k := 1; k <= 8; k++ {
			d := (from - k + 8) % 8
			q := cur.Add(neighbours[d])
			if g.isForeground(q) {
				next = q
				break
			}
		}

		border = append(border, cur)
		if next == start && cur == last {
			break
		}
		prev, cur = cur, next
	}
	return border
}

// compressChain drops points that continue the previous step's direction,
// keeping only the corners of horizontal, vertical and diagonal runs.
func compressChain(c Contour) Contour {
	n := len(c)
	if n < 3 {
		out := make(Contour, n)
		copy(out, c)
		return out
	}

	out := make(Contour, 0, n)
	for i := 0; i < n; i++ {
		prev := c[(i+n-1)%n]
		next := c[(i+1)%n]
		if c[i].Sub(prev) != next.Sub(c[i]) {
			out = append(out, c[i])
		}
	}
	if len(out) == 0 {
		// Degenerate: every step identical, which cannot close a loop.
		return Contour{c[0]}
	}
	return out
}
