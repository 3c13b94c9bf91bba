package models

// Orientation is the outcome of angle extraction. The only implementations
// are Angle and Absent, so a type switch over both is exhaustive.
type Orientation interface {
	isOrientation()
}

// Angle is the undirected orientation of a contour's principal axis in
// degrees, in [0, 180).
type Angle float64

// Absent means no contour was found in the image.
type Absent struct{}

func (Angle) isOrientation()  {}
func (Absent) isOrientation() {}

// Degrees returns the angle value and whether one is present.
func Degrees(o Orientation) (float64, bool) {
	if a, ok := o.(Angle); ok {
		return float64(a), true
	}
	return 0, false
}

// Label is a predicted ASL letter.
type Label string

const (
	LabelG       Label = "G"
	LabelU       Label = "U"
	LabelUnknown Label = "unknown"
)
