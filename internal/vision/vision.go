package vision

import (
	"errors"
	"fmt"
	"image"
	"strings"
)

var (
	// ErrOpenCVUnavailable is returned when the opencv backend or the display
	// window is requested from a binary built without the "opencv" tag.
	ErrOpenCVUnavailable = errors.New("opencv support not compiled in (build with -tags opencv)")

	// ErrDisplayUnavailable is returned by Show when no window system can be used.
	ErrDisplayUnavailable = errors.New("interactive display unavailable")

	// ErrUnknownBackend is returned by ByName for unrecognised backend names.
	ErrUnknownBackend = errors.New("unknown vision backend")
)

// Contour is an ordered, closed sequence of boundary points.
type Contour []image.Point

// Options controls the preprocessing and approximation steps.
type Options struct {
	// BlurKernel is the side of the square Gaussian kernel. Must be odd.
	// Values <= 1 disable smoothing.
	BlurKernel int

	// Threshold is the binarization cutoff. Pixels with intensity <= Threshold
	// become foreground.
	Threshold uint8

	// EpsilonFactor scales the contour perimeter into the polygon
	// approximation tolerance (0.02 = 2% of the perimeter).
	EpsilonFactor float64
}

// DefaultOptions returns the calibrated settings for the reference image.
func DefaultOptions() Options {
	return Options{
		BlurKernel:    7,
		Threshold:     127,
		EpsilonFactor: 0.02,
	}
}

// Measurement describes one outer contour and its approximated polygon.
type Measurement struct {
	// Contour is the chain-compressed outer boundary.
	Contour Contour

	// Area is the area enclosed by Contour in square pixels.
	Area float64

	// Perimeter is the closed arc length of Contour in pixels.
	Perimeter float64

	// Polygon is Contour simplified with tolerance EpsilonFactor × Perimeter.
	Polygon Contour

	// Bounds is the axis-aligned bounding box of Polygon. Dx and Dy are pixel
	// counts (max - min + 1).
	Bounds image.Rectangle
}

// Backend extracts measured outer contours from an image.
type Backend interface {
	// Name identifies the backend ("native" or "opencv").
	Name() string

	// Measure runs grayscale, blur, threshold and contour extraction on img
	// and measures every outer contour found. An image without foreground
	// yields an empty slice and a nil error.
	Measure(img image.Image, opts Options) ([]Measurement, error)
}

// ByName returns the backend registered under name. An empty name selects the
// native backend.
func ByName(name string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "native":
		return NewNative(), nil
	case "opencv", "gocv":
		return NewOpenCV()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
}
