package analyzer

import "image"

// AngleExtractor estimates the dominant orientation of the largest contour
// in an encoded image.
type AngleExtractor interface {
	// ExtractAngle decodes data and runs the full pipeline. A missing contour
	// is reported through Extraction.Orientation, not through the error.
	ExtractAngle(data []byte) (Extraction, error)

	// Backend names the implementation ("native" or "opencv").
	Backend() string
}

// EdgeDetector produces a binary edge map (255 = edge, 0 = background).
type EdgeDetector interface {
	DetectEdges(gray *image.Gray) *image.Gray
}

// ContourFinder traces the borders of the non-zero regions of a binary map.
type ContourFinder interface {
	FindContours(edges *image.Gray) []Contour
}

// AxisEstimator computes the principal axis of a point set.
type AxisEstimator interface {
	PrincipalAxis(points []image.Point) (Axis, error)
}
