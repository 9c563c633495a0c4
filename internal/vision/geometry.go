package vision

import (
	"image"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

func vec(p image.Point) r2.Vec {
	return r2.Vec{X: float64(p.X), Y: float64(p.Y)}
}

// ContourArea returns the area enclosed by c using the shoelace formula.
// The result is always non-negative regardless of winding direction.
func ContourArea(c Contour) float64 {
	n := len(c)
	if n < 3 {
		return 0
	}

	var sum float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += r2.Cross(vec(c[i]), vec(c[j]))
	}
	return math.Abs(sum) / 2
}

// ArcLength returns the perimeter of c treated as a closed curve.
func ArcLength(c Contour) float64 {
	n := len(c)
	if n < 2 {
		return 0
	}

	var length float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		length += r2.Norm(r2.Sub(vec(c[j]), vec(c[i])))
	}
	return length
}

// BoundingRect returns the smallest axis-aligned rectangle containing every
// point of c. Max is exclusive, so Dx and Dy count pixels. An empty contour
// yields the zero rectangle.
func BoundingRect(c Contour) image.Rectangle {
	if len(c) == 0 {
		return image.Rectangle{}
	}

	r := image.Rectangle{Min: c[0], Max: c[0]}
	for _, p := range c[1:] {
		if p.X < r.Min.X {
			r.Min.X = p.X
		}
		if p.Y < r.Min.Y {
			r.Min.Y = p.Y
		}
		if p.X > r.Max.X {
			r.Max.X = p.X
		}
		if p.Y > r.Max.Y {
			r.Max.Y = p.Y
		}
	}
	r.Max = r.Max.Add(image.Point{X: 1, Y: 1})
	return r
}

// ApproxPolygon simplifies the closed contour c into a polygon whose edges
// stay within epsilon pixels of the original boundary.
//
// # Algorithm
//
//  1. Seeding: pick two mutually distant contour points a and b. Both are
//     extreme points, so they survive as vertices of any reasonable
//     approximation.
//  2. Douglas-Peucker on the two chains a→b and b→a: keep the point farthest
//     from the chord and recurse while that distance exceeds epsilon.
//  3. Clean-up: drop vertices lying within epsilon of the line through their
//     two neighbours, which removes seeds that landed on a straight edge.
//
// Contours with fewer than three points are returned unchanged (copied).
func ApproxPolygon(c Contour, epsilon float64) Contour {
	n := len(c)
	if n < 3 {
		out := make(Contour, n)
		copy(out, c)
		return out
	}

	a := 0
	b := farthestFrom(c, a)
	a = farthestFrom(c, b)
	b = farthestFrom(c, a)
	if c[a] == c[b] {
		return Contour{c[a]}
	}

	first := simplifyChain(cyclicChain(c, a, b), epsilon)
	second := simplifyChain(cyclicChain(c, b, a), epsilon)

	polygon := make(Contour, 0, len(first)+len(second))
	polygon = append(polygon, first...)
	polygon = append(polygon, second[1:len(second)-1]...)

	return dropCollinear(polygon, epsilon)
}

// farthestFrom returns the index of the point of c farthest from c[from].
func farthestFrom(c Contour, from int) int {
	origin := vec(c[from])
	best, bestDist := from, -1.0
	for i, p := range c {
		d := r2.Norm2(r2.Sub(vec(p), origin))
		if d > bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// cyclicChain returns the points of c from index from to index to inclusive,
// walking forward and wrapping around the end.
func cyclicChain(c Contour, from, to int) Contour {
	n := len(c)
	chain := make(Contour, 0, n)
	for i := from; ; i = (i + 1) % n {
		chain = append(chain, c[i])
		if i == to {
			break
		}
	}
	return chain
}

// simplifyChain runs Douglas-Peucker on an open polyline, always keeping both
// end points. The kept points are returned in their original order.
func simplifyChain(chain Contour, epsilon float64) Contour {
	last := len(chain) - 1
	if last < 2 {
		return chain
	}

	keep := make([]bool, len(chain))
	keep[0], keep[last] = true, true

	type span struct{ start, end int }
	stack := []span{{0, last}}

	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if s.end-s.start < 2 {
			continue
		}

		maxDist, maxIdx := -1.0, s.start
		for i := s.start + 1; i < s.end; i++ {
			d := distanceToLine(chain[i], chain[s.start], chain[s.end])
			if d > maxDist {
				maxDist, maxIdx = d, i
			}
		}

		if maxDist > epsilon {
			keep[maxIdx] = true
			stack = append(stack, span{s.start, maxIdx}, span{maxIdx, s.end})
		}
	}

	out := make(Contour, 0, len(chain))
	for i, k := range keep {
		if k {
			out = append(out, chain[i])
		}
	}
	return out
}

// dropCollinear makes one pass over the closed polygon removing vertices
// within epsilon of the line through their neighbours. At least three
// vertices are always kept.
func dropCollinear(polygon Contour, epsilon float64) Contour {
	out := polygon
	for i := 0; i < len(out) && len(out) > 3; {
		n := len(out)
		prev := out[(i+n-1)%n]
		next := out[(i+1)%n]
		if distanceToLine(out[i], prev, next) <= epsilon {
			out = append(out[:i], out[i+1:]...)
			continue
		}
		i++
	}
	return out
}

// distanceToLine returns the perpendicular distance from p to the infinite
// line through a and b, or the distance to a when a and b coincide.
func distanceToLine(p, a, b image.Point) float64 {
	ab := r2.Sub(vec(b), vec(a))
	ap := r2.Sub(vec(p), vec(a))
	length := r2.Norm(ab)
	if length == 0 {
		return r2.Norm(ap)
	}
	return math.Abs(r2.Cross(ab, ap)) / length
}
