package shapes

import (
	"errors"
	"fmt"
	"image"

	"go.uber.org/zap"

	"github.com/ironsheep/shape-counter/internal/imaging"
	"github.com/ironsheep/shape-counter/internal/vision"
)

// ErrImageLoad is wrapped by every error DetectFile returns when the input
// image cannot be opened or decoded.
var ErrImageLoad = errors.New("can not load image")

// Point is a pixel coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Bounds is an axis-aligned box. Width and Height count pixels.
type Bounds struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Rect returns b as a half-open image rectangle.
func (b Bounds) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height)
}

// Shape is one classified contour.
type Shape struct {
	Kind        Kind    `json:"kind"`
	Vertices    int     `json:"vertices"`
	Area        float64 `json:"area"`
	Perimeter   float64 `json:"perimeter"`
	AspectRatio float64 `json:"aspect_ratio"`
	Bounds      Bounds  `json:"bounds"`
	Center      Point   `json:"center"`
	Polygon     []Point `json:"polygon"`

	// FillColor is the "#RRGGBB" colour of the input image at Center.
	FillColor string `json:"fill_color,omitempty"`
}

// Result is the outcome of one detection run.
type Result struct {
	// Annotated is a copy of the input with coloured outlines drawn on it.
	// Its bounds start at the origin.
	Annotated *image.NRGBA `json:"-"`

	Counts Counts  `json:"counts"`
	Shapes []Shape `json:"shapes"`
}

// Detector classifies and counts shapes. A Detector holds no per-run state
// and is safe for concurrent use.
type Detector struct {
	backend vision.Backend
	params  Params
	palette Palette
	images  *imaging.ImageCache
	logger  *zap.Logger
}

// Option configures a Detector.
type Option func(*Detector)

// WithParams replaces the default parameters.
func WithParams(p Params) Option {
	return func(d *Detector) { d.params = p }
}

// WithPalette replaces the default outline colours.
func WithPalette(p Palette) Option {
	return func(d *Detector) { d.palette = p }
}

// WithImageCache makes DetectFile load through cache.
func WithImageCache(cache *imaging.ImageCache) Option {
	return func(d *Detector) { d.images = cache }
}

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(l *zap.Logger) Option {
	return func(d *Detector) {
		if l == nil {
			l = zap.NewNop()
		}
		d.logger = l
	}
}

// NewDetector returns a Detector measuring contours with backend. A nil
// backend selects the native one.
func NewDetector(backend vision.Backend, opts ...Option) *Detector {
	if backend == nil {
		backend = vision.NewNative()
	}
	d := &Detector{
		backend: backend,
		params:  DefaultParams(),
		palette: DefaultPalette(),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Params returns the parameters the detector runs with.
func (d *Detector) Params() Params {
	return d.params
}

// Backend returns the name of the vision backend in use.
func (d *Detector) Backend() string {
	return d.backend.Name()
}

// DetectFile loads the image at path and runs Detect on it.
func (d *Detector) DetectFile(path string) (*Result, error) {
	var (
		img image.Image
		err error
	)
	if d.images != nil {
		img, err = d.images.Load(path)
	} else {
		img, err = imaging.Open(path)
	}
	if err != nil {
		d.logger.Warn("image load failed", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrImageLoad, err)
	}
	return d.Detect(img)
}

// Detect finds, classifies and outlines the shapes in img. img itself is
// never modified; outlines are drawn on Result.Annotated.
func (d *Detector) Detect(img image.Image) (*Result, error) {
	if img == nil {
		return nil, errors.New("nil image")
	}
	if err := d.params.Validate(); err != nil {
		return nil, err
	}

	measurements, err := d.backend.Measure(img, d.params.VisionOptions())
	if err != nil {
		return nil, fmt.Errorf("contour extraction failed: %w", err)
	}

	res := &Result{
		Annotated: imaging.Clone(img),
		Shapes:    make([]Shape, 0, len(measurements)),
	}
	origin := img.Bounds().Min

	for i, m := range measurements {
		if m.Area < d.params.MinArea || m.Area > d.params.MaxArea {
			d.logger.Debug("contour rejected by area",
				zap.Int("index", i),
				zap.Float64("area", m.Area),
			)
			continue
		}

		shape := d.classify(img, m)
		res.Counts.Add(shape.Kind)
		res.Shapes = append(res.Shapes, shape)

		c := d.palette.Color(shape.Kind)
		local := make([]image.Point, len(m.Polygon))
		for j, p := range m.Polygon {
			local[j] = p.Sub(origin)
		}
		drawPolygon(res.Annotated, local, c, d.params.LineWidth)
		if d.params.Labels {
			drawLabel(res.Annotated, m.Bounds.Min.Sub(origin), shape.Kind.String(), c)
		}

		d.logger.Debug("shape classified",
			zap.Stringer("kind", shape.Kind),
			zap.Int("vertices", shape.Vertices),
			zap.Float64("area", shape.Area),
			zap.Float64("ratio", shape.AspectRatio),
		)
	}

	d.logger.Info("detection complete",
		zap.String("backend", d.backend.Name()),
		zap.Int("contours", len(measurements)),
		zap.Int("shapes", res.Counts.Total()),
	)
	return res, nil
}

func (d *Detector) classify(img image.Image, m vision.Measurement) Shape {
	w, h := m.Bounds.Dx(), m.Bounds.Dy()
	ratio := 0.0
	if h > 0 {
		ratio = float64(w) / float64(h)
	}

	center := image.Pt(m.Bounds.Min.X+w/2, m.Bounds.Min.Y+h/2)
	polygon := make([]Point, len(m.Polygon))
	for i, p := range m.Polygon {
		polygon[i] = Point{X: p.X, Y: p.Y}
	}

	s := Shape{
		Kind:        Classify(len(m.Polygon), ratio, d.params),
		Vertices:    len(m.Polygon),
		Area:        m.Area,
		Perimeter:   m.Perimeter,
		AspectRatio: ratio,
		Bounds:      Bounds{X: m.Bounds.Min.X, Y: m.Bounds.Min.Y, Width: w, Height: h},
		Center:      Point{X: center.X, Y: center.Y},
		Polygon:     polygon,
	}
	if fill, err := imaging.SampleColor(img, center.X, center.Y); err == nil {
		s.FillColor = fill.Hex
	}
	return s
}
