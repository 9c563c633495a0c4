package shapes

// Classify maps an approximated polygon to a Kind.
//
// Three vertices make a triangle. Four vertices make a square when the
// width/height ratio of the bounding box lies within
// [SquareMinRatio, SquareMaxRatio] (both ends inclusive) and a rectangle
// otherwise. Every other vertex count, including fewer than three, is a
// circle.
func Classify(vertices int, ratio float64, p Params) Kind {
	switch vertices {
	case 3:
		return Triangle
	case 4:
		if ratio >= p.SquareMinRatio && ratio <= p.SquareMaxRatio {
			return Square
		}
		return Rectangle
	default:
		return Circle
	}
}
