package shapes

import (
	"errors"
	"fmt"

	"github.com/ironsheep/shape-counter/internal/vision"
)

// Params are the tunable thresholds of the pipeline.
type Params struct {
	// MinArea and MaxArea bound the contour area (inclusive) for a contour to
	// be classified. Smaller contours are noise, larger ones the paper border.
	MinArea float64 `json:"min_area"`
	MaxArea float64 `json:"max_area"`

	// EpsilonFactor scales the perimeter into the polygon approximation
	// tolerance.
	EpsilonFactor float64 `json:"epsilon_factor"`

	// Threshold is the gray level at or below which a pixel is foreground.
	Threshold uint8 `json:"threshold"`

	// BlurKernel is the odd side length of the Gaussian blur kernel.
	BlurKernel int `json:"blur_kernel"`

	// SquareMinRatio and SquareMaxRatio bound the width/height ratio of a
	// 4-vertex polygon classified as a square.
	SquareMinRatio float64 `json:"square_min_ratio"`
	SquareMaxRatio float64 `json:"square_max_ratio"`

	// LineWidth is the outline thickness in pixels.
	LineWidth int `json:"line_width"`

	// Labels enables a kind name next to each outline.
	Labels bool `json:"labels"`
}

// DefaultParams returns the values calibrated against the sample image.
func DefaultParams() Params {
	o := vision.DefaultOptions()
	return Params{
		MinArea:        500,
		MaxArea:        10000,
		EpsilonFactor:  o.EpsilonFactor,
		Threshold:      o.Threshold,
		BlurKernel:     o.BlurKernel,
		SquareMinRatio: 0.95,
		SquareMaxRatio: 1.05,
		LineWidth:      2,
	}
}

// Validate checks that the parameters are usable.
func (p Params) Validate() error {
	var errs []error
	if p.MinArea < 0 {
		errs = append(errs, fmt.Errorf("min_area must not be negative, got %v", p.MinArea))
	}
	if p.MinArea > p.MaxArea {
		errs = append(errs, fmt.Errorf("min_area (%v) exceeds max_area (%v)", p.MinArea, p.MaxArea))
	}
	if p.EpsilonFactor <= 0 {
		errs = append(errs, fmt.Errorf("epsilon_factor must be positive, got %v", p.EpsilonFactor))
	}
	if p.BlurKernel < 1 || p.BlurKernel%2 == 0 {
		errs = append(errs, fmt.Errorf("blur_kernel must be a positive odd number, got %d", p.BlurKernel))
	}
	if p.SquareMinRatio > p.SquareMaxRatio {
		errs = append(errs, fmt.Errorf("square_min_ratio (%v) exceeds square_max_ratio (%v)", p.SquareMinRatio, p.SquareMaxRatio))
	}
	if p.LineWidth < 1 {
		errs = append(errs, fmt.Errorf("line_width must be at least 1, got %d", p.LineWidth))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid parameters: %w", errors.Join(errs...))
	}
	return nil
}

// VisionOptions returns the subset of p consumed by a vision backend.
func (p Params) VisionOptions() vision.Options {
	return vision.Options{
		BlurKernel:    p.BlurKernel,
		Threshold:     p.Threshold,
		EpsilonFactor: p.EpsilonFactor,
	}
}
