//go:build !opencv

package analyzer

// OpenCVAvailable reports whether this binary was built with OpenCV support
const OpenCVAvailable = false

// NewOpenCVExtractor always fails in builds without OpenCV
func NewOpenCVExtractor(options ExtractionOptions) (AngleExtractor, error) {
	return nil, ErrOpenCVUnavailable
}
