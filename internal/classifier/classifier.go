package classifier

import (
	"math"

	"github.com/anime-shed/asl-inspector-go/pkg/models"
)

// Bands holds the angle ranges, in degrees, that map to each letter. All
// comparisons are strict, so a value sitting exactly on a bound is unknown.
type Bands struct {
	// GMax and GMin: angles below GMax or above GMin are a horizontal
	// index finger, read as G
	GMax float64
	GMin float64

	// ULow and UHigh: angles strictly between them are an upright pair of
	// fingers, read as U
	ULow  float64
	UHigh float64
}

// DefaultBands returns the bands the pipeline constants were tuned with
func DefaultBands() Bands {
	return Bands{
		GMax:  25,
		GMin:  155,
		ULow:  65,
		UHigh: 115,
	}
}

// LetterClassifier maps an orientation to a letter. It holds no mutable
// state and is safe for concurrent use.
type LetterClassifier struct {
	bands Bands
}

// New creates a classifier with the default bands
func New() *LetterClassifier {
	return NewWithBands(DefaultBands())
}

// NewWithBands creates a classifier with custom bands
func NewWithBands(bands Bands) *LetterClassifier {
	return &LetterClassifier{bands: bands}
}

// Bands returns the configured bands
func (c *LetterClassifier) Bands() Bands {
	return c.bands
}

// Classify returns G, U or unknown. Absent orientations and angles outside
// [0, 180) are unknown.
func (c *LetterClassifier) Classify(o models.Orientation) models.Label {
	a, ok := models.Degrees(o)
	if !ok || math.IsNaN(a) || a < 0 || a >= 180 {
		return models.LabelUnknown
	}

	switch {
	case a < c.bands.GMax || a > c.bands.GMin:
		return models.LabelG
	case a > c.bands.ULow && a < c.bands.UHigh:
		return models.LabelU
	default:
		return models.LabelUnknown
	}
}
