package analyzer

import (
	"image"
	"math"

	"github.com/anime-shed/asl-inspector-go/pkg/models"
)

// nativeExtractor implements AngleExtractor in pure Go and orchestrates the
// pipeline stages
type nativeExtractor struct {
	options       ExtractionOptions
	edgeDetector  EdgeDetector
	contourFinder ContourFinder
	axisEstimator AxisEstimator
}

// NewAngleExtractor creates a pure Go extractor with the given options
func NewAngleExtractor(options ExtractionOptions) AngleExtractor {
	options = options.normalized()
	return &nativeExtractor{
		options:       options,
		edgeDetector:  NewCannyDetector(options.CannyLow, options.CannyHigh),
		contourFinder: NewContourFinder(),
		axisEstimator: NewAxisEstimator(),
	}
}

func (e *nativeExtractor) Backend() string {
	return BackendNative
}

// ExtractAngle decodes data and estimates the orientation of its largest contour
func (e *nativeExtractor) ExtractAngle(data []byte) (Extraction, error) {
	img, err := decodeImage(data)
	if err != nil {
		return Extraction{}, err
	}
	return e.ExtractImageAngle(img)
}

// ExtractImageAngle runs the pipeline on an already decoded image
func (e *nativeExtractor) ExtractImageAngle(img image.Image) (Extraction, error) {
	bounds := img.Bounds()
	result := Extraction{
		Orientation: models.Absent{},
		Diagnostics: models.PipelineDiagnostics{
			Backend:       BackendNative,
			Width:         bounds.Dx(),
			Height:        bounds.Dy(),
			SelectedIndex: -1,
		},
	}

	gray := toGray(img)
	blurred := gaussianBlur(gray, e.options.BlurSigma)
	edges := e.edgeDetector.DetectEdges(blurred)
	if e.options.Diagnostics {
		result.Diagnostics.EdgePixels = countNonZero(edges)
	}

	contours := e.contourFinder.FindContours(edges)
	result.Diagnostics.ContourCount = len(contours)
	if len(contours) == 0 {
		return result, nil
	}

	return orientationFromContours(result, contours, e.axisEstimator)
}

// orientationFromContours selects the largest contour and converts its
// principal axis to an angle. It is shared by every backend.
func orientationFromContours(result Extraction, contours []Contour, estimator AxisEstimator) (Extraction, error) {
	idx, area := LargestContour(contours)
	selected := contours[idx].Points
	result.Diagnostics.SelectedIndex = idx
	result.Diagnostics.SelectedArea = area
	result.Diagnostics.SelectedPoints = len(selected)

	axis, err := estimator.PrincipalAxis(selected)
	if err != nil {
		return result, err
	}
	raw := AxisAngle(axis.Direction)
	if math.IsNaN(raw) {
		return result, &DegenerateGeometryError{Points: len(selected), Reason: "principal axis is undefined"}
	}

	result.Diagnostics.Centroid = axis.Centroid
	result.Diagnostics.Eigenvalues = axis.Eigenvalues
	result.Diagnostics.RawAngle = raw
	result.Orientation = models.Angle(NormalizeAngle(raw))
	return result, nil
}

func countNonZero(gray *image.Gray) int {
	n := 0
	for _, v := range gray.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}
