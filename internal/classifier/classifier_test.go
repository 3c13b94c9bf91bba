package classifier

import (
	"math"
	"testing"

	"github.com/anime-shed/asl-inspector-go/pkg/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		in   models.Orientation
		want models.Label
	}{
		{"absent", models.Absent{}, models.LabelUnknown},
		{"nil", nil, models.LabelUnknown},
		{"zero", models.Angle(0), models.LabelG},
		{"just below G max", models.Angle(24.99), models.LabelG},
		{"G max bound", models.Angle(25), models.LabelUnknown},
		{"between bands low", models.Angle(45), models.LabelUnknown},
		{"U low bound", models.Angle(65), models.LabelUnknown},
		{"just above U low", models.Angle(65.01), models.LabelU},
		{"vertical", models.Angle(90), models.LabelU},
		{"just below U high", models.Angle(114.99), models.LabelU},
		{"U high bound", models.Angle(115), models.LabelUnknown},
		{"between bands high", models.Angle(135), models.LabelUnknown},
		{"G min bound", models.Angle(155), models.LabelUnknown},
		{"just above G min", models.Angle(155.01), models.LabelG},
		{"almost horizontal", models.Angle(179.9), models.LabelG},
		{"out of range high", models.Angle(180), models.LabelUnknown},
		{"out of range negative", models.Angle(-5), models.LabelUnknown},
		{"not a number", models.Angle(math.NaN()), models.LabelUnknown},
	}

	c := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Classify(tt.in); got != tt.want {
				t.Errorf("Classify(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestClassify_TotalOverRange(t *testing.T) {
	c := New()
	for a := 0.0; a < 180; a += 0.25 {
		switch c.Classify(models.Angle(a)) {
		case models.LabelG, models.LabelU, models.LabelUnknown:
		default:
			t.Fatalf("Unexpected label for %v", a)
		}
	}
}

func TestNewWithBands(t *testing.T) {
	c := NewWithBands(Bands{GMax: 10, GMin: 170, ULow: 80, UHigh: 100})
	if got := c.Classify(models.Angle(20)); got != models.LabelUnknown {
		t.Errorf("Expected unknown with narrow G band, got %q", got)
	}
	if got := c.Classify(models.Angle(70)); got != models.LabelUnknown {
		t.Errorf("Expected unknown with narrow U band, got %q", got)
	}
	if got := c.Classify(models.Angle(90)); got != models.LabelU {
		t.Errorf("Expected U, got %q", got)
	}
	if c.Bands().GMax != 10 {
		t.Errorf("Expected configured bands to be returned, got %+v", c.Bands())
	}
}

func TestDefaultBands(t *testing.T) {
	want := Bands{GMax: 25, GMin: 155, ULow: 65, UHigh: 115}
	if got := DefaultBands(); got != want {
		t.Errorf("DefaultBands() = %+v, want %+v", got, want)
	}
}
