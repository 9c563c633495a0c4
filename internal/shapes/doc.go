// Package shapes counts triangles, squares, rectangles and circles in a
// raster image.
//
// A Detector asks a vision.Backend for the outer contours of the dark
// regions of an image, keeps those whose area lies within
// [Params.MinArea, Params.MaxArea], and classifies each from the vertex
// count of its approximated polygon:
//
//	3 vertices            triangle
//	4 vertices, w/h ratio in [0.95, 1.05]   square
//	4 vertices otherwise  rectangle
//	anything else         circle
//
// Every kept contour is outlined on a copy of the input in its kind's
// Palette colour. The input image is never modified.
//
// # Example Usage
//
//	d := shapes.NewDetector(vision.NewNative())
//	res, err := d.DetectFile("assets/input_images/Shapes.jpg")
//	if err != nil {
//	    return err // wraps shapes.ErrImageLoad
//	}
//	shapes.WriteReport(os.Stdout, res.Counts)
package shapes
