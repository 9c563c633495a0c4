package shapes

import (
	"fmt"
	"image/color"

	"github.com/ironsheep/shape-counter/internal/imaging"
)

// Palette holds the outline colour for each kind.
type Palette [numKinds]color.RGBA

// DefaultPalette returns blue triangles, green squares, red rectangles and
// black circles.
func DefaultPalette() Palette {
	return Palette{
		Triangle:  {R: 0, G: 0, B: 255, A: 255},
		Square:    {R: 0, G: 255, B: 0, A: 255},
		Rectangle: {R: 255, G: 0, B: 0, A: 255},
		Circle:    {R: 0, G: 0, B: 0, A: 255},
	}
}

// Color returns the outline colour for k.
func (p Palette) Color(k Kind) color.RGBA {
	if !k.Valid() {
		return color.RGBA{A: 255}
	}
	return p[k]
}

// ParsePalette overrides the default palette with hex colours keyed by kind
// name, e.g. {"circle": "#FF00FF"}. Kinds not mentioned keep their default.
func ParsePalette(hex map[string]string) (Palette, error) {
	p := DefaultPalette()
	for name, value := range hex {
		k, err := ParseKind(name)
		if err != nil {
			return p, fmt.Errorf("palette: %w", err)
		}
		c, err := imaging.ParseHexColor(value)
		if err != nil {
			return p, fmt.Errorf("palette %s: %w", k, err)
		}
		p[k] = c
	}
	return p, nil
}
