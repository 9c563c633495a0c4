// Package vision turns a raster image into measured outer contours.
//
// A Backend runs the fixed front half of the shape pipeline:
//
//  1. Grayscale: drop colour, keep luminance (ITU-R BT.601 weights)
//  2. Smoothing: Gaussian blur with a square kernel (7×7 by default)
//  3. Binarization: fixed threshold with inverted polarity, so dark shapes on
//     a light background become foreground (255) and the background becomes 0
//  4. Contour extraction: outermost borders only, no holes, no nested shapes
//  5. Measurement: enclosed area, closed perimeter, polygon approximation with
//     a tolerance proportional to the perimeter, and the polygon's bounding box
//
// Two backends are available:
//
//   - native: pure Go. Grayscale and blur come from bild; border following,
//     polygon approximation and the geometry helpers live in this package.
//   - opencv: gocv bindings, compiled only with the "opencv" build tag.
//
// # Coordinate System
//
// Contour points are pixel centres in the input image's coordinate space:
//   - Origin at the image's Bounds().Min (usually (0, 0))
//   - X increases rightward, Y increases downward
//
// Areas and perimeters are measured over those centres, so a filled w×h
// rectangle has a contour area of (w-1)×(h-1). Bounding boxes follow the
// OpenCV convention and count pixels: a polygon spanning x=10..19 has width 10.
package vision
