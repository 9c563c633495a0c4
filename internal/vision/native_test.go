package vision

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"
)

func TestBinarize_Polarity(t *testing.T) {
	img := createCanvas(60, 60)
	drawFilledRect(img, 20, 20, 40, 40, color.Black)

	mask := Binarize(img, DefaultOptions())

	if mask.Bounds() != img.Bounds() {
		t.Errorf("Mask bounds = %v, want %v", mask.Bounds(), img.Bounds())
	}
	if got := mask.GrayAt(30, 30).Y; got != 255 {
		t.Errorf("Dark shape pixel = %d, want 255 (foreground)", got)
	}
	if got := mask.GrayAt(2, 2).Y; got != 0 {
		t.Errorf("Light background pixel = %d, want 0", got)
	}
}

func TestBinarize_Threshold(t *testing.T) {
	tests := []struct {
		name      string
		level     uint8
		threshold uint8
		want      uint8
	}{
		{"darker than cutoff", 100, 127, 255},
		{"lighter than cutoff", 200, 127, 0},
		{"at cutoff", 127, 127, 255},
		{"just above cutoff", 128, 127, 0},
		{"raised cutoff", 200, 220, 255},
		{"lowered cutoff", 100, 60, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := createCanvas(10, 10)
			drawFilledRect(img, 0, 0, 10, 10, color.RGBA{tt.level, tt.level, tt.level, 255})

			opts := DefaultOptions()
			opts.BlurKernel = 1
			opts.Threshold = tt.threshold

			mask := Binarize(img, opts)
			if got := mask.GrayAt(5, 5).Y; got != tt.want {
				t.Errorf("Pixel = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGaussianKernel(t *testing.T) {
	// sigma = 1.4 for seven taps
	want := []float64{0.0290, 0.1038, 0.2232, 0.2881, 0.2232, 0.1038, 0.0290}

	k := gaussianKernel(7)
	if k.Width != 7 || k.Height != 1 {
		t.Fatalf("Kernel size = %dx%d, want 7x1", k.Width, k.Height)
	}
	for i, w := range want {
		if got := k.Matrix[i]; math.Abs(got-w) > 1e-3 {
			t.Errorf("Tap %d = %.4f, want %.4f", i, got, w)
		}
	}
}

func TestGaussianKernel_Normalized(t *testing.T) {
	for _, size := range []int{3, 5, 7, 9} {
		k := gaussianKernel(size)
		var sum float64
		for i, v := range k.Matrix {
			sum += v
			if mirror := k.Matrix[size-1-i]; math.Abs(v-mirror) > 1e-12 {
				t.Errorf("size %d: tap %d = %v, mirror = %v", size, i, v, mirror)
			}
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("size %d: taps sum to %v, want 1", size, sum)
		}
	}
}

func TestBinarize_BlurKeepsThinStroke(t *testing.T) {
	// Only the outer four taps see white at the stripe centre, about 68.
	img := createCanvas(40, 40)
	drawFilledRect(img, 19, 0, 22, 40, color.Black)

	mask := Binarize(img, DefaultOptions())
	if got := mask.GrayAt(20, 20).Y; got != 255 {
		t.Errorf("Stripe centre = %d, want 255", got)
	}
	if got := mask.GrayAt(5, 20).Y; got != 0 {
		t.Errorf("Background = %d, want 0", got)
	}
}

func TestBinarize_ColourOnlyContrastMatters(t *testing.T) {
	img := createCanvas(40, 40)
	drawFilledRect(img, 10, 10, 30, 30, color.RGBA{0, 0, 200, 255}) // dark blue, luma ≈ 23

	mask := Binarize(img, DefaultOptions())
	if got := mask.GrayAt(20, 20).Y; got != 255 {
		t.Errorf("Dark blue pixel = %d, want 255", got)
	}
}

func TestBinarize_EmptyImage(t *testing.T) {
	mask := Binarize(image.NewRGBA(image.Rect(0, 0, 0, 0)), DefaultOptions())
	if !mask.Bounds().Empty() {
		t.Errorf("Expected empty mask, got bounds %v", mask.Bounds())
	}
}

func TestNativeMeasure_BlankImage(t *testing.T) {
	ms, err := NewNative().Measure(createCanvas(80, 80), DefaultOptions())
	if err != nil {
		t.Fatalf("Measure failed: %v", err)
	}
	if len(ms) != 0 {
		t.Errorf("Expected no measurements on blank image, got %d", len(ms))
	}
}

func TestNativeMeasure_Shapes(t *testing.T) {
	tests := []struct {
		name         string
		draw         func(img *image.RGBA)
		wantVertices func(n int) bool
		minArea      float64
		maxArea      float64
	}{
		{
			"square",
			func(img *image.RGBA) { drawFilledRect(img, 50, 50, 110, 110, color.Black) },
			func(n int) bool { return n == 4 },
			3300, 3600,
		},
		{
			"triangle",
			func(img *image.RGBA) { drawFilledTriangle(img, 100, 40, 80, color.Black) },
			func(n int) bool { return n == 3 },
			2300, 3000,
		},
		{
			"circle",
			func(img *image.RGBA) { drawFilledCircle(img, 100, 100, 31, color.Black) },
			func(n int) bool { return n >= 5 },
			2800, 3100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := createCanvas(200, 200)
			tt.draw(img)

			ms, err := NewNative().Measure(img, DefaultOptions())
			if err != nil {
				t.Fatalf("Measure failed: %v", err)
			}
			if len(ms) != 1 {
				t.Fatalf("Expected 1 measurement, got %d", len(ms))
			}

			m := ms[0]
			if !tt.wantVertices(len(m.Polygon)) {
				t.Errorf("Unexpected vertex count %d: %v", len(m.Polygon), m.Polygon)
			}
			if m.Area < tt.minArea || m.Area > tt.maxArea {
				t.Errorf("Area = %.1f, want within [%v, %v]", m.Area, tt.minArea, tt.maxArea)
			}
			if m.Perimeter <= 0 {
				t.Errorf("Perimeter = %v, want > 0", m.Perimeter)
			}
		})
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"", "native", "Native "} {
		b, err := ByName(name)
		if err != nil {
			t.Fatalf("ByName(%q) failed: %v", name, err)
		}
		if b.Name() != "native" {
			t.Errorf("ByName(%q).Name() = %q, want native", name, b.Name())
		}
	}

	if _, err := ByName("hough"); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("ByName(hough) error = %v, want ErrUnknownBackend", err)
	}
}
