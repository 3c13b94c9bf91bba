package analyzer

import (
	"image"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// pcaEstimator implements AxisEstimator with a 2x2 covariance
// eigendecomposition.
type pcaEstimator struct{}

// NewAxisEstimator creates an AxisEstimator backed by Gonum
func NewAxisEstimator() AxisEstimator {
	return pcaEstimator{}
}

// PrincipalAxis returns the eigenvector of the largest covariance eigenvalue.
// At least two points are required.
func (pcaEstimator) PrincipalAxis(points []image.Point) (Axis, error) {
	if len(points) < 2 {
		return Axis{}, &DegenerateGeometryError{Points: len(points), Reason: "at least two points are required"}
	}

	data := mat.NewDense(len(points), 2, nil)
	for i, p := range points {
		data.Set(i, 0, float64(p.X))
		data.Set(i, 1, float64(p.Y))
	}

	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, data, nil)

	var eig mat.EigenSym
	if ok := eig.Factorize(&cov, true); !ok {
		return Axis{}, &DegenerateGeometryError{Points: len(points), Reason: "covariance factorization failed"}
	}
	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	// eigenvalues are in ascending order
	major, minor := 1, 0
	if values[0] > values[1] {
		major, minor = 0, 1
	}

	return Axis{
		Centroid:    [2]float64{stat.Mean(mat.Col(nil, 0, data), nil), stat.Mean(mat.Col(nil, 1, data), nil)},
		Direction:   [2]float64{vectors.At(0, major), vectors.At(1, major)},
		Eigenvalues: [2]float64{values[major], values[minor]},
	}, nil
}

// AxisAngle converts a direction vector to degrees relative to the x axis.
func AxisAngle(dir [2]float64) float64 {
	return math.Atan2(dir[1], dir[0]) * 180 / math.Pi
}

// NormalizeAngle folds degrees into [0, 180). An axis and its opposite
// direction map to the same value.
func NormalizeAngle(deg float64) float64 {
	a := math.Mod(deg, 180)
	if a < 0 {
		a += 180
	}
	if a >= 180 || a == 0 {
		// also turns -0 into 0
		a = 0
	}
	return a
}
