package vision

import (
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"
)

// WriteMaskNPY writes mask as a rows×cols float64 NumPy array (0 or 255 per
// pixel). Useful for inspecting the binarization step while calibrating the
// threshold and blur settings.
func WriteMaskNPY(w io.Writer, mask *image.Gray) error {
	b := mask.Bounds()
	if b.Empty() {
		return errors.New("cannot dump an empty mask")
	}

	data := make([]float64, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			data = append(data, float64(mask.GrayAt(x, y).Y))
		}
	}

	m := mat.NewDense(b.Dy(), b.Dx(), data)
	if err := npyio.Write(w, m); err != nil {
		return fmt.Errorf("failed to write npy: %w", err)
	}
	return nil
}
