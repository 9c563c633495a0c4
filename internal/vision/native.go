package vision

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/convolution"
	"github.com/anthonynsimon/bild/effect"
)

// BT.601 luma weights, the same ones OpenCV uses for BGR2GRAY.
const (
	lumaR = 0.299
	lumaG = 0.587
	lumaB = 0.114
)

// Native is the pure Go backend.
type Native struct{}

// NewNative returns the pure Go backend.
func NewNative() *Native {
	return &Native{}
}

// Name implements Backend.
func (n *Native) Name() string {
	return "native"
}

// Measure implements Backend.
func (n *Native) Measure(img image.Image, opts Options) ([]Measurement, error) {
	mask := Binarize(img, opts)
	contours := FindExternalContours(mask)

	measurements := make([]Measurement, 0, len(contours))
	for _, c := range contours {
		perimeter := ArcLength(c)
		polygon := ApproxPolygon(c, opts.EpsilonFactor*perimeter)
		measurements = append(measurements, Measurement{
			Contour:   c,
			Area:      ContourArea(c),
			Perimeter: perimeter,
			Polygon:   polygon,
			Bounds:    BoundingRect(polygon),
		})
	}
	return measurements, nil
}

// Binarize converts img into an inverted binary mask.
//
// The image is converted to grayscale, smoothed with a BlurKernel×BlurKernel
// Gaussian, and thresholded so that pixels with intensity <= opts.Threshold
// become 255 (foreground) and everything else becomes 0. The returned mask
// has the same bounds as img.
func Binarize(img image.Image, opts Options) *image.Gray {
	bounds := img.Bounds()
	mask := image.NewGray(bounds)
	if bounds.Empty() {
		return mask
	}

	gray := effect.GrayscaleWithWeights(img, lumaR, lumaG, lumaB)
	smoothed := smooth(gray, opts.BlurKernel)

	sb := smoothed.Bounds()
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			v := smoothed.GrayAt(sb.Min.X+x, sb.Min.Y+y).Y
			if v <= opts.Threshold {
				mask.Pix[mask.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)] = 255
			}
		}
	}
	return mask
}

// smooth blurs gray with a kernel×kernel Gaussian and returns the
// single-channel result. Borders are extended, not reflected.
func smooth(gray *image.RGBA, kernel int) *image.Gray {
	blurred := gray
	if kernel > 1 {
		k := gaussianKernel(kernel)
		opts := &convolution.Options{}
		blurred = convolution.Convolve(gray, k, opts)
		blurred = convolution.Convolve(blurred, k.Transposed(), opts)
	}

	bb := blurred.Bounds()
	out := image.NewGray(bb)
	for y := bb.Min.Y; y < bb.Max.Y; y++ {
		for x := bb.Min.X; x < bb.Max.X; x++ {
			// R, G and B are equal for a gray source.
			out.Pix[out.PixOffset(x, y)] = blurred.Pix[blurred.PixOffset(x, y)]
		}
	}
	return out
}

// gaussianKernel returns the normalized 1-D taps OpenCV uses for a k-tap
// Gaussian when sigma is left at 0.
func gaussianKernel(k int) *convolution.Kernel {
	sigma := 0.3*(float64(k-1)*0.5-1) + 0.8
	kern := convolution.NewKernel(k, 1)
	var sum float64
	for i := range kern.Matrix {
		x := float64(i - (k-1)/2)
		kern.Matrix[i] = math.Exp(-x * x / (2 * sigma * sigma))
		sum += kern.Matrix[i]
	}
	for i := range kern.Matrix {
		kern.Matrix[i] /= sum
	}
	return kern
}
