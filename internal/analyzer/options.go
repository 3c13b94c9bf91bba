package analyzer

// Backend identifiers
const (
	BackendNative = "native"
	BackendOpenCV = "opencv"
)

// ExtractionOptions configures the angle extraction pipeline
type ExtractionOptions struct {
	// Gaussian smoothing
	BlurKernelSize int
	BlurSigma      float64 // 0 derives the kernel from its size

	// Hysteresis thresholds applied to the L1 gradient magnitude
	CannyLow  float64
	CannyHigh float64

	// Diagnostics toggles collection of intermediate values
	Diagnostics bool
}

// DefaultOptions returns the pipeline constants the classifier bands were
// tuned against. Changing them changes classification results.
func DefaultOptions() ExtractionOptions {
	return ExtractionOptions{
		BlurKernelSize: 5,
		BlurSigma:      0,
		CannyLow:       100,
		CannyHigh:      200,
		Diagnostics:    true,
	}
}

// WithCannyThresholds returns options with custom hysteresis thresholds
func (opts ExtractionOptions) WithCannyThresholds(low, high float64) ExtractionOptions {
	opts.CannyLow = low
	opts.CannyHigh = high
	return opts
}

// WithoutDiagnostics disables collection of intermediate values
func (opts ExtractionOptions) WithoutDiagnostics() ExtractionOptions {
	opts.Diagnostics = false
	return opts
}

// normalized fills in invalid values with defaults and orders the thresholds.
func (opts ExtractionOptions) normalized() ExtractionOptions {
	def := DefaultOptions()
	if opts.BlurKernelSize != 5 {
		// only the 5x5 kernel is implemented natively
		opts.BlurKernelSize = def.BlurKernelSize
	}
	if opts.BlurSigma < 0 {
		opts.BlurSigma = 0
	}
	if opts.CannyLow <= 0 && opts.CannyHigh <= 0 {
		opts.CannyLow, opts.CannyHigh = def.CannyLow, def.CannyHigh
	}
	if opts.CannyLow > opts.CannyHigh {
		opts.CannyLow, opts.CannyHigh = opts.CannyHigh, opts.CannyLow
	}
	return opts
}
