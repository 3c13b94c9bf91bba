package analyzer

import (
	"image"

	"github.com/anime-shed/asl-inspector-go/pkg/models"
)

// Extraction is the result of running the pipeline on one image.
type Extraction struct {
	Orientation models.Orientation
	Diagnostics models.PipelineDiagnostics
}

// Contour is one border traced in an edge map. Points are compressed so that
// straight horizontal, vertical and diagonal runs keep only their end points.
type Contour struct {
	Points []image.Point
	Hole   bool
	// Parent is the index of the enclosing contour, or -1 for top-level borders.
	Parent int
}

// Axis is the dominant principal component of a point set.
type Axis struct {
	Centroid    [2]float64
	Direction   [2]float64
	Eigenvalues [2]float64 // major, minor
}
