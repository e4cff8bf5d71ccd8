package sindy

import (
	"fmt"
	"strings"

	"symdyn/internal/metrics"
)

// Model couples a feature library with the sparse regression optimizer. A
// fitted model exposes the recovered coefficients and can predict the
// right-hand side or simulate the identified system forward in time.
type Model struct {
	lib  *Library
	opts Options

	coef   [][]float64 // dims x features
	fitted bool
}

func NewModel(lib *Library, opts Options) (*Model, error) {
	if lib == nil {
		return nil, fmt.Errorf("feature library is required")
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &Model{lib: lib, opts: opts.withDefaults()}, nil
}

// Fit identifies the coefficient matrix from a trajectory. When xDot is nil,
// derivatives are computed by finite differences over the time spec, which
// requires at least 3 samples.
func (m *Model) Fit(x [][]float64, ts TimeSpec, xDot [][]float64) error {
	if len(x) == 0 {
		return fmt.Errorf("empty training data")
	}
	t, err := ts.Vector(len(x))
	if err != nil {
		return err
	}
	if xDot == nil {
		xDot, err = FiniteDifference(x, t)
		if err != nil {
			return err
		}
	} else if len(xDot) != len(x) {
		return fmt.Errorf("derivative rows %d do not match %d samples", len(xDot), len(x))
	}

	theta, err := m.lib.Transform(x, t)
	if err != nil {
		return err
	}
	coef, err := stlsq(theta, xDot, m.opts)
	if err != nil {
		return err
	}
	m.coef = coef
	m.fitted = true
	return nil
}

// Score predicts derivatives over x and scores them against xDot (or its
// finite-difference estimate when nil) with the supplied metric.
func (m *Model) Score(x [][]float64, ts TimeSpec, xDot [][]float64, metric metrics.Metric) (float64, error) {
	if metric == nil {
		metric = metrics.R2
	}
	t, err := ts.Vector(len(x))
	if err != nil {
		return 0, err
	}
	if xDot == nil {
		xDot, err = FiniteDifference(x, t)
		if err != nil {
			return 0, err
		}
	}
	pred, err := m.Predict(x, ts)
	if err != nil {
		return 0, err
	}
	return metric(xDot, pred)
}

// Coefficients returns the fitted dims x features matrix. Row d holds the
// feature weights of the d-th state derivative, matching the library's
// feature order.
func (m *Model) Coefficients() [][]float64 {
	out := make([][]float64, len(m.coef))
	for i, row := range m.coef {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

// Predict evaluates the fitted right-hand side at the given states.
func (m *Model) Predict(x [][]float64, ts TimeSpec) ([][]float64, error) {
	if !m.fitted {
		return nil, fmt.Errorf("model is not fitted")
	}
	t, err := ts.Vector(len(x))
	if err != nil {
		return nil, err
	}
	theta, err := m.lib.Transform(x, t)
	if err != nil {
		return nil, err
	}

	dims := len(m.coef)
	pred := make([][]float64, len(x))
	for i := range theta {
		pred[i] = make([]float64, dims)
		for d := 0; d < dims; d++ {
			sum := 0.0
			for j, v := range theta[i] {
				sum += m.coef[d][j] * v
			}
			pred[i][d] = sum
		}
	}
	return pred, nil
}

// Simulate integrates the identified system forward from x0 over the given
// time points with the classic fourth-order Runge-Kutta scheme.
func (m *Model) Simulate(x0 []float64, t []float64) ([][]float64, error) {
	if !m.fitted {
		return nil, fmt.Errorf("model is not fitted")
	}
	if len(x0) != m.lib.cfg.Dims {
		return nil, fmt.Errorf("initial condition has %d dims, want %d", len(x0), m.lib.cfg.Dims)
	}
	if len(t) < 2 {
		return nil, fmt.Errorf("at least 2 time points are required")
	}

	traj := make([][]float64, len(t))
	traj[0] = append([]float64(nil), x0...)
	for i := 1; i < len(t); i++ {
		traj[i] = m.rk4Step(traj[i-1], t[i-1], t[i]-t[i-1])
	}
	return traj, nil
}

func (m *Model) rk4Step(state []float64, t, h float64) []float64 {
	k1 := m.rhs(state, t)
	k2 := m.rhs(axpy(state, k1, h/2), t+h/2)
	k3 := m.rhs(axpy(state, k2, h/2), t+h/2)
	k4 := m.rhs(axpy(state, k3, h), t+h)

	next := make([]float64, len(state))
	for i := range next {
		next[i] = state[i] + h/6*(k1[i]+2*k2[i]+2*k3[i]+k4[i])
	}
	return next
}

func (m *Model) rhs(state []float64, t float64) []float64 {
	args := m.lib.args(state, t)
	out := make([]float64, len(m.coef))
	for d, row := range m.coef {
		sum := 0.0
		for j, f := range m.lib.features {
			if row[j] == 0 {
				continue
			}
			sum += row[j] * f.Eval(args)
		}
		out[d] = sum
	}
	return out
}

// Equations renders the identified system, one line per state dimension,
// omitting zeroed terms.
func (m *Model) Equations() []string {
	names := m.lib.FeatureNames()
	out := make([]string, len(m.coef))
	for d, row := range m.coef {
		terms := make([]string, 0, len(row))
		for j, c := range row {
			if c == 0 {
				continue
			}
			terms = append(terms, fmt.Sprintf("%+.4f * %s", c, names[j]))
		}
		if len(terms) == 0 {
			terms = append(terms, "0")
		}
		out[d] = fmt.Sprintf("dx%d/dt = %s", d, strings.Join(terms, " "))
	}
	return out
}

func axpy(x, y []float64, a float64) []float64 {
	out := make([]float64, len(x))
	for i := range out {
		out[i] = x[i] + a*y[i]
	}
	return out
}
