//go:build opencv

package analyzer

import (
	"errors"
	"image"

	"gocv.io/x/gocv"

	"github.com/anime-shed/asl-inspector-go/pkg/models"
)

// openCVExtractor implements AngleExtractor with OpenCV through gocv.
// The principal axis is still computed by the shared Gonum estimator.
type openCVExtractor struct {
	options       ExtractionOptions
	axisEstimator AxisEstimator
}

// OpenCVAvailable reports whether this binary was built with OpenCV support
const OpenCVAvailable = true

// NewOpenCVExtractor creates an OpenCV backed extractor
func NewOpenCVExtractor(options ExtractionOptions) (AngleExtractor, error) {
	return &openCVExtractor{
		options:       options.normalized(),
		axisEstimator: NewAxisEstimator(),
	}, nil
}

func (e *openCVExtractor) Backend() string {
	return BackendOpenCV
}

// ExtractAngle decodes data with OpenCV and runs the same stages as the
// native extractor
func (e *openCVExtractor) ExtractAngle(data []byte) (Extraction, error) {
	if len(data) == 0 {
		return Extraction{}, &ImageDecodeError{Cause: errEmptyInput}
	}
	img, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return Extraction{}, &ImageDecodeError{Cause: err}
	}
	defer img.Close()
	if img.Empty() {
		return Extraction{}, &ImageDecodeError{Cause: errors.New("opencv could not decode image")}
	}

	result := Extraction{
		Orientation: models.Absent{},
		Diagnostics: models.PipelineDiagnostics{
			Backend:       BackendOpenCV,
			Width:         img.Cols(),
			Height:        img.Rows(),
			SelectedIndex: -1,
		},
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)

	blurred := gocv.NewMat()
	defer blurred.Close()
	k := e.options.BlurKernelSize
	gocv.GaussianBlur(gray, &blurred, image.Point{X: k, Y: k}, e.options.BlurSigma, e.options.BlurSigma, gocv.BorderDefault)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(blurred, &edges, float32(e.options.CannyLow), float32(e.options.CannyHigh))
	if e.options.Diagnostics {
		result.Diagnostics.EdgePixels = gocv.CountNonZero(edges)
	}

	found := gocv.FindContours(edges, gocv.RetrievalTree, gocv.ChainApproxSimple)
	defer found.Close()

	contours := make([]Contour, 0, found.Size())
	for i := 0; i < found.Size(); i++ {
		contours = append(contours, Contour{Points: found.At(i).ToPoints(), Parent: -1})
	}
	result.Diagnostics.ContourCount = len(contours)
	if len(contours) == 0 {
		return result, nil
	}

	return orientationFromContours(result, contours, e.axisEstimator)
}
