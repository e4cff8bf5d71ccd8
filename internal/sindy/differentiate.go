package sindy

import "fmt"

// TimeSpec is either a uniform time step or an explicit per-sample time
// vector. The zero value means a unit step.
type TimeSpec struct {
	Step   float64
	Points []float64
}

// Vector materializes the sample times for n samples.
func (ts TimeSpec) Vector(n int) ([]float64, error) {
	if ts.Points != nil {
		if len(ts.Points) != n {
			return nil, fmt.Errorf("time vector length %d does not match %d samples", len(ts.Points), n)
		}
		return ts.Points, nil
	}
	step := ts.Step
	if step == 0 {
		step = 1
	}
	if step < 0 {
		return nil, fmt.Errorf("time step must be > 0")
	}
	t := make([]float64, n)
	for i := range t {
		t[i] = float64(i) * step
	}
	return t, nil
}

// Slice restricts the spec to the sample range [begin, end). Step specs
// materialize their points so the slice keeps its position on the original
// time axis.
func (ts TimeSpec) Slice(begin, end int) TimeSpec {
	if ts.Points != nil {
		return TimeSpec{Points: ts.Points[begin:end]}
	}
	step := ts.Step
	if step == 0 {
		step = 1
	}
	if step < 0 {
		// Invalid steps surface in Vector.
		return ts
	}
	points := make([]float64, end-begin)
	for i := range points {
		points[i] = float64(begin+i) * step
	}
	return TimeSpec{Points: points}
}

// FiniteDifference approximates time derivatives with second-order finite
// differences: centered in the interior, one-sided at the boundaries.
func FiniteDifference(x [][]float64, t []float64) ([][]float64, error) {
	n := len(x)
	if n < 3 {
		return nil, ErrTooFewSamples
	}
	if len(t) != n {
		return nil, fmt.Errorf("time vector length %d does not match %d samples", len(t), n)
	}

	dims := len(x[0])
	xDot := make([][]float64, n)
	for i := range xDot {
		xDot[i] = make([]float64, dims)
	}

	for j := 0; j < dims; j++ {
		xDot[0][j] = (-3*x[0][j] + 4*x[1][j] - x[2][j]) / (t[2] - t[0])
		for i := 1; i < n-1; i++ {
			xDot[i][j] = (x[i+1][j] - x[i-1][j]) / (t[i+1] - t[i-1])
		}
		xDot[n-1][j] = (3*x[n-1][j] - 4*x[n-2][j] + x[n-3][j]) / (t[n-1] - t[n-3])
	}
	return xDot, nil
}
