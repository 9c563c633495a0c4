//go:build !opencv

package vision

import (
	"fmt"
	"image"
)

// NewOpenCV reports that the binary was built without the "opencv" tag.
func NewOpenCV() (Backend, error) {
	return nil, ErrOpenCVUnavailable
}

// Show needs an OpenCV window; without the "opencv" tag it always fails.
func Show(title string, img image.Image) error {
	return fmt.Errorf("%w: %w", ErrDisplayUnavailable, ErrOpenCVUnavailable)
}
