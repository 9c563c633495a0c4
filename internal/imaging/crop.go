package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Crop extracts r grown by margin pixels on every side, clipped to the image,
// and optionally rescales it. A scale of 0 or 1 keeps the original size.
func Crop(img image.Image, r image.Rectangle, margin int, scale float64) (*EncodedImage, error) {
	if r.Empty() {
		return nil, fmt.Errorf("invalid crop region %v", r)
	}
	if margin < 0 {
		return nil, fmt.Errorf("margin must not be negative, got %d", margin)
	}
	if scale < 0 {
		return nil, fmt.Errorf("scale must not be negative, got %g", scale)
	}

	region := r.Inset(-margin).Intersect(img.Bounds())
	if region.Empty() {
		return nil, fmt.Errorf("crop region %v outside image bounds %v", r, img.Bounds())
	}

	cropped := imaging.Crop(img, region)
	if scale != 0 && scale != 1 {
		w := int(float64(cropped.Bounds().Dx()) * scale)
		h := int(float64(cropped.Bounds().Dy()) * scale)
		if w < 1 || h < 1 {
			return nil, fmt.Errorf("scale %g shrinks the crop to nothing", scale)
		}
		cropped = imaging.Resize(cropped, w, h, imaging.Lanczos)
	}

	return EncodePNGBase64(cropped)
}
