package sindy

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Options configures the sequentially thresholded least-squares optimizer.
type Options struct {
	// Threshold prunes coefficients whose magnitude falls below it.
	Threshold float64
	// Ridge is the L2 regularization strength of each least-squares pass.
	Ridge float64
	// MaxIterations bounds the threshold-and-refit loop.
	MaxIterations int
}

func (o Options) withDefaults() Options {
	if o.Threshold == 0 {
		o.Threshold = 0.1
	}
	if o.Ridge == 0 {
		o.Ridge = 0.05
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = 10
	}
	return o
}

func (o Options) validate() error {
	if o.Threshold < 0 {
		return fmt.Errorf("threshold must be >= 0")
	}
	if o.Ridge < 0 {
		return fmt.Errorf("ridge must be >= 0")
	}
	return nil
}

// stlsq solves theta * w = b for each target column of xDot independently,
// repeatedly zeroing small coefficients and refitting on the surviving
// support. Returns a dims x features coefficient matrix.
func stlsq(theta [][]float64, xDot [][]float64, opts Options) ([][]float64, error) {
	n := len(theta)
	if n == 0 || n != len(xDot) {
		return nil, fmt.Errorf("design matrix and targets disagree: %d vs %d rows", n, len(xDot))
	}
	p := len(theta[0])
	dims := len(xDot[0])

	coef := make([][]float64, dims)
	b := make([]float64, n)
	for d := 0; d < dims; d++ {
		for i := 0; i < n; i++ {
			b[i] = xDot[i][d]
		}
		w, err := stlsqColumn(theta, b, p, opts)
		if err != nil {
			return nil, fmt.Errorf("target %d: %w", d, err)
		}
		coef[d] = w
	}
	return coef, nil
}

func stlsqColumn(theta [][]float64, b []float64, p int, opts Options) ([]float64, error) {
	active := make([]int, p)
	for j := range active {
		active[j] = j
	}

	w := make([]float64, p)
	for iter := 0; iter < opts.MaxIterations; iter++ {
		if len(active) == 0 {
			return w, nil
		}

		sub, err := ridgeSolve(theta, b, active, opts.Ridge)
		if err != nil {
			return nil, err
		}

		for j := range w {
			w[j] = 0
		}
		survivors := active[:0]
		pruned := false
		for k, j := range active {
			if abs(sub[k]) < opts.Threshold {
				pruned = true
				continue
			}
			w[j] = sub[k]
			survivors = append(survivors, j)
		}
		active = survivors
		if !pruned {
			return w, nil
		}
	}
	return w, nil
}

// ridgeSolve fits b against the active columns of theta via the normal
// equations with ridge regularization, keeping the system well-posed even
// when candidate features are collinear.
func ridgeSolve(theta [][]float64, b []float64, active []int, ridge float64) ([]float64, error) {
	n := len(theta)
	k := len(active)

	a := mat.NewDense(n, k, nil)
	for i := 0; i < n; i++ {
		for c, j := range active {
			a.Set(i, c, theta[i][j])
		}
	}
	rhs := mat.NewVecDense(n, append([]float64(nil), b...))

	var ata mat.Dense
	ata.Mul(a.T(), a)
	for i := 0; i < k; i++ {
		ata.Set(i, i, ata.At(i, i)+ridge)
	}
	var atb mat.VecDense
	atb.MulVec(a.T(), rhs)

	var w mat.VecDense
	if err := w.SolveVec(&ata, &atb); err != nil {
		return nil, fmt.Errorf("least squares solve failed: %w", err)
	}

	out := make([]float64, k)
	for i := range out {
		out[i] = w.AtVec(i)
	}
	return out, nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
