package sweep

import (
	"fmt"
	"math"
)

// Encoding is the per-parameter strategy for getting setpoints onto the
// device.
type Encoding int

const (
	// EncodeArray stores the setpoints as an explicit device array with
	// per-iteration indexed lookup.
	EncodeArray Encoding = iota
	// EncodeProgression stores only (start, step) and derives the value
	// from the loop induction variable. Saves device memory at the cost
	// of approximating the original array.
	EncodeProgression
)

// Options tunes the encoding decision. The progression tolerance is the
// maximum standard deviation of consecutive setpoint differences,
// relative to their mean, below which an array is treated as an
// arithmetic progression. The boundary is exclusive. The exact threshold
// is deliberately configurable; 0.1 is this implementation's documented
// default.
type Options struct {
	ProgressionTolerance float64
}

// DefaultOptions returns the documented default encoding options.
func DefaultOptions() Options {
	return Options{ProgressionTolerance: 0.1}
}

// Warning records one lossy arithmetic-progression encoding. Progression
// encoding approximates the original array, so it is always surfaced to
// the user, never silently applied.
type Warning struct {
	Param  string
	Length int
	Start  float64
	Step   float64
}

func (w Warning) String() string {
	return fmt.Sprintf(
		"sweep parameter %s: %d-point array encoded as arithmetic progression (start=%v, step=%v)",
		w.Param, w.Length, w.Start, w.Step)
}

// decideEncoding picks the encoding for one setpoint array. Integer
// device variables additionally require integral start and step.
func decideEncoding(values []float64, integral bool, tol float64) (Encoding, float64, float64) {
	if len(values) < 3 {
		return EncodeArray, 0, 0
	}
	n := len(values) - 1
	diffs := make([]float64, n)
	var mean float64
	for i := 0; i < n; i++ {
		diffs[i] = values[i+1] - values[i]
		mean += diffs[i]
	}
	mean /= float64(n)

	var variance float64
	for _, d := range diffs {
		variance += (d - mean) * (d - mean)
	}
	variance /= float64(n)
	std := math.Sqrt(variance)

	if std >= tol*math.Abs(mean) {
		return EncodeArray, 0, 0
	}
	start, step := values[0], mean
	if integral && (start != math.Trunc(start) || step != math.Trunc(step)) {
		return EncodeArray, 0, 0
	}
	return EncodeProgression, start, step
}
