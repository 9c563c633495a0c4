// Package imaging loads, describes and writes the raster images the shape
// counter works on.
//
// Decoding and encoding go through github.com/disintegration/imaging, so JPEG,
// PNG, GIF, BMP and TIFF are supported and EXIF orientation is applied on load.
// Colors are converted with github.com/lucasb-eyer/go-colorful. Crop cuts a
// zoomable PNG around a region such as a detected shape's bounding box.
//
// # Coordinate System
//
// All pixel coordinates are absolute image coordinates with (0,0) at the
// top-left corner of a freshly decoded image, X increasing rightward and Y
// increasing downward.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Cached images are shared between
// callers and must be treated as read-only; use Clone before drawing.
//
// # Error Handling
//
// Load errors distinguish a file that cannot be opened ("failed to open
// image") from one that cannot be decoded ("failed to decode image"). The
// underlying cause is wrapped, so errors.Is(err, fs.ErrNotExist) works.
package imaging
