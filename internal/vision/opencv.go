//go:build opencv

package vision

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// OpenCV is the gocv-backed implementation. It is only compiled with the
// "opencv" build tag and needs OpenCV 4 installed on the system.
type OpenCV struct{}

// NewOpenCV returns the gocv-backed backend.
func NewOpenCV() (Backend, error) {
	return &OpenCV{}, nil
}

// Name implements Backend.
func (o *OpenCV) Name() string {
	return "opencv"
}

// Measure implements Backend.
func (o *OpenCV) Measure(img image.Image, opts Options) ([]Measurement, error) {
	src, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image to mat: %w", err)
	}
	defer src.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)

	blurred := gocv.NewMat()
	defer blurred.Close()
	if opts.BlurKernel > 1 {
		k := image.Pt(opts.BlurKernel, opts.BlurKernel)
		gocv.GaussianBlur(gray, &blurred, k, 0, 0, gocv.BorderDefault)
	} else {
		gray.CopyTo(&blurred)
	}

	binary := gocv.NewMat()
	defer binary.Close()
	gocv.Threshold(blurred, &binary, float32(opts.Threshold), 255, gocv.ThresholdBinaryInv)

	contours := gocv.FindContours(binary, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	offset := img.Bounds().Min
	measurements := make([]Measurement, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		c := contours.At(i)
		perimeter := gocv.ArcLength(c, true)

		approx := gocv.ApproxPolyDP(c, opts.EpsilonFactor*perimeter, true)
		bounds := gocv.BoundingRect(approx)
		polygon := toContour(approx.ToPoints(), offset)
		approx.Close()

		measurements = append(measurements, Measurement{
			Contour:   toContour(c.ToPoints(), offset),
			Area:      gocv.ContourArea(c),
			Perimeter: perimeter,
			Polygon:   polygon,
			Bounds:    bounds.Add(offset),
		})
	}
	return measurements, nil
}

func toContour(points []image.Point, offset image.Point) Contour {
	c := make(Contour, len(points))
	for i, p := range points {
		c[i] = p.Add(offset)
	}
	return c
}

// Show opens a window titled title showing img and blocks until a key is
// pressed.
func Show(title string, img image.Image) error {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return fmt.Errorf("failed to convert image to mat: %w", err)
	}
	defer mat.Close()

	window := gocv.NewWindow(title)
	defer window.Close()

	window.IMShow(mat)
	window.WaitKey(0)
	return nil
}
