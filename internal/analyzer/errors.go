package analyzer

import (
	"errors"
	"fmt"
)

// ErrOpenCVUnavailable is returned when the opencv backend is requested from
// a binary built without the opencv build tag.
var ErrOpenCVUnavailable = errors.New("opencv backend requires building with -tags opencv")

// ImageDecodeError is returned when the input bytes are not a decodable image.
type ImageDecodeError struct {
	Cause error
}

func (e *ImageDecodeError) Error() string {
	if e.Cause == nil {
		return "image decode failed"
	}
	return fmt.Sprintf("image decode failed: %v", e.Cause)
}

func (e *ImageDecodeError) Unwrap() error {
	return e.Cause
}

// DegenerateGeometryError is returned when the selected contour cannot
// support a principal component analysis.
type DegenerateGeometryError struct {
	Points int
	Reason string
}

func (e *DegenerateGeometryError) Error() string {
	return fmt.Sprintf("degenerate contour geometry (%d points): %s", e.Points, e.Reason)
}
