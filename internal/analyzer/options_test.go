package analyzer

import "testing"

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if opts.BlurKernelSize != 5 {
		t.Errorf("Expected BlurKernelSize to be 5, got %d", opts.BlurKernelSize)
	}
	if opts.BlurSigma != 0 {
		t.Errorf("Expected BlurSigma to be 0, got %f", opts.BlurSigma)
	}
	if opts.CannyLow != 100 || opts.CannyHigh != 200 {
		t.Errorf("Expected Canny thresholds 100/200, got %v/%v", opts.CannyLow, opts.CannyHigh)
	}
	if !opts.Diagnostics {
		t.Error("Expected Diagnostics to be enabled by default")
	}
}

func TestWithCannyThresholds(t *testing.T) {
	opts := DefaultOptions().WithCannyThresholds(50, 150)

	if opts.CannyLow != 50 || opts.CannyHigh != 150 {
		t.Errorf("Expected 50/150, got %v/%v", opts.CannyLow, opts.CannyHigh)
	}
	if DefaultOptions().CannyLow != 100 {
		t.Error("WithCannyThresholds must not modify the defaults")
	}
}

func TestWithoutDiagnostics(t *testing.T) {
	if DefaultOptions().WithoutDiagnostics().Diagnostics {
		t.Error("Expected Diagnostics to be disabled")
	}
}

func TestNormalizedOptions(t *testing.T) {
	tests := []struct {
		name      string
		in        ExtractionOptions
		low, high float64
		kernel    int
	}{
		{"zero value falls back to defaults", ExtractionOptions{}, 100, 200, 5},
		{"swapped thresholds are reordered", ExtractionOptions{BlurKernelSize: 5, CannyLow: 200, CannyHigh: 100}, 100, 200, 5},
		{"unsupported kernel size", ExtractionOptions{BlurKernelSize: 7, CannyLow: 10, CannyHigh: 20}, 10, 20, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.normalized()
			if got.CannyLow != tt.low || got.CannyHigh != tt.high {
				t.Errorf("thresholds = %v/%v, want %v/%v", got.CannyLow, got.CannyHigh, tt.low, tt.high)
			}
			if got.BlurKernelSize != tt.kernel {
				t.Errorf("kernel = %d, want %d", got.BlurKernelSize, tt.kernel)
			}
		})
	}
}
