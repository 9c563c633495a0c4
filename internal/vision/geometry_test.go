package vision

import (
	"image"
	"math"
	"testing"
)

func TestContourArea(t *testing.T) {
	tests := []struct {
		name    string
		contour Contour
		want    float64
	}{
		{"empty", Contour{}, 0},
		{"two points", Contour{{0, 0}, {5, 5}}, 0},
		{"right triangle", Contour{{0, 0}, {10, 0}, {0, 10}}, 50},
		{"square clockwise", Contour{{0, 0}, {10, 0}, {10, 10}, {0, 10}}, 100},
		{"square counter-clockwise", Contour{{0, 0}, {0, 10}, {10, 10}, {10, 0}}, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ContourArea(tt.contour); got != tt.want {
				t.Errorf("ContourArea() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestArcLength(t *testing.T) {
	tests := []struct {
		name    string
		contour Contour
		want    float64
	}{
		{"single point", Contour{{3, 3}}, 0},
		{"out and back", Contour{{0, 0}, {4, 0}}, 8},
		{"3-4-5 triangle", Contour{{0, 0}, {4, 0}, {4, 3}}, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ArcLength(tt.contour); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ArcLength() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBoundingRect(t *testing.T) {
	c := Contour{{10, 20}, {29, 20}, {29, 44}, {10, 44}}
	r := BoundingRect(c)

	if r.Min != (image.Point{X: 10, Y: 20}) {
		t.Errorf("Min = %v, want (10,20)", r.Min)
	}
	if r.Dx() != 20 || r.Dy() != 25 {
		t.Errorf("Size = %dx%d, want 20x25", r.Dx(), r.Dy())
	}

	if !BoundingRect(nil).Empty() {
		t.Error("BoundingRect(nil) should be empty")
	}
}

// squareOutline returns every boundary pixel of a side×side square, in order.
func squareOutline(x0, y0, side int) Contour {
	c := make(Contour, 0, 4*side)
	for y := y0; y < y0+side-1; y++ {
		c = append(c, image.Point{X: x0, Y: y})
	}
	for x := x0; x < x0+side-1; x++ {
		c = append(c, image.Point{X: x, Y: y0 + side - 1})
	}
	for y := y0 + side - 1; y > y0; y-- {
		c = append(c, image.Point{X: x0 + side - 1, Y: y})
	}
	for x := x0 + side - 1; x > x0; x-- {
		c = append(c, image.Point{X: x, Y: y0})
	}
	return c
}

// circleOutline samples n points on a circle, rounded to pixel positions.
func circleOutline(cx, cy int, radius float64, n int) Contour {
	c := make(Contour, 0, n)
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		c = append(c, image.Point{
			X: cx + int(math.Round(radius*math.Cos(a))),
			Y: cy + int(math.Round(radius*math.Sin(a))),
		})
	}
	return c
}

func TestApproxPolygon_Square(t *testing.T) {
	c := squareOutline(20, 20, 50)
	poly := ApproxPolygon(c, 0.02*ArcLength(c))

	if len(poly) != 4 {
		t.Fatalf("Expected 4 vertices, got %d: %v", len(poly), poly)
	}

	r := BoundingRect(poly)
	if r.Dx() != 50 || r.Dy() != 50 {
		t.Errorf("Polygon bounds = %dx%d, want 50x50", r.Dx(), r.Dy())
	}
}

func TestApproxPolygon_SquareStartingMidEdge(t *testing.T) {
	c := squareOutline(0, 0, 40)
	// Rotate so the first point sits in the middle of the left edge.
	c = append(c[20:], c[:20]...)

	poly := ApproxPolygon(c, 0.02*ArcLength(c))
	if len(poly) != 4 {
		t.Errorf("Expected 4 vertices, got %d: %v", len(poly), poly)
	}
}

func TestApproxPolygon_Triangle(t *testing.T) {
	c := Contour{}
	corners := Contour{{50, 10}, {10, 80}, {90, 80}}
	for i := range corners {
		a, b := corners[i], corners[(i+1)%len(corners)]
		steps := 40
		for s := 0; s < steps; s++ {
			f := float64(s) / float64(steps)
			c = append(c, image.Point{
				X: a.X + int(math.Round(f*float64(b.X-a.X))),
				Y: a.Y + int(math.Round(f*float64(b.Y-a.Y))),
			})
		}
	}

	poly := ApproxPolygon(c, 0.02*ArcLength(c))
	if len(poly) != 3 {
		t.Errorf("Expected 3 vertices, got %d: %v", len(poly), poly)
	}
}

func TestApproxPolygon_CircleKeepsManyVertices(t *testing.T) {
	c := circleOutline(100, 100, 31, 200)

	poly := ApproxPolygon(c, 0.02*ArcLength(c))
	if len(poly) < 5 {
		t.Errorf("Expected at least 5 vertices for a circle, got %d", len(poly))
	}

	// A looser tolerance collapses the circle, which is why 2% is used.
	loose := ApproxPolygon(c, 0.2*ArcLength(c))
	if len(loose) >= len(poly) {
		t.Errorf("Looser tolerance should give fewer vertices: %d >= %d", len(loose), len(poly))
	}
}

func TestApproxPolygon_Degenerate(t *testing.T) {
	if got := ApproxPolygon(Contour{{1, 1}}, 1); len(got) != 1 {
		t.Errorf("Single point: got %v", got)
	}
	if got := ApproxPolygon(Contour{{1, 1}, {1, 1}, {1, 1}}, 1); len(got) != 1 {
		t.Errorf("Coincident points: got %v", got)
	}
}

func TestDistanceToLine(t *testing.T) {
	tests := []struct {
		name    string
		p, a, b image.Point
		want    float64
	}{
		{"on line", image.Pt(5, 0), image.Pt(0, 0), image.Pt(10, 0), 0},
		{"above horizontal", image.Pt(5, 3), image.Pt(0, 0), image.Pt(10, 0), 3},
		{"beyond segment end", image.Pt(20, 4), image.Pt(0, 0), image.Pt(10, 0), 4},
		{"coincident endpoints", image.Pt(3, 4), image.Pt(0, 0), image.Pt(0, 0), 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := distanceToLine(tt.p, tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("distanceToLine() = %v, want %v", got, tt.want)
			}
		})
	}
}
