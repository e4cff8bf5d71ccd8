// Package sindy implements sparse identification of nonlinear dynamics over a
// caller-supplied candidate feature library: a design matrix is built by
// evaluating the features along the observed trajectory, and a sequentially
// thresholded least-squares fit recovers a sparse coefficient matrix mapping
// features to state derivatives.
package sindy

import (
	"errors"
	"fmt"
)

// ErrTooFewSamples is returned when the differentiation window cannot be
// formed; finite differences need at least 3 time samples.
var ErrTooFewSamples = errors.New("at least 3 time samples are required")

// Feature is one named candidate function. Eval receives the full argument
// vector: state variables, then symbolic constants, then time when present.
type Feature struct {
	Name string
	Eval func(args []float64) float64
}

// LibraryConfig describes how feature arguments are assembled from data.
type LibraryConfig struct {
	Dims int
	// Constants are the values bound to the symbolic-constant slots.
	Constants []float64
	// TimeDependent appends the sample time as the last argument.
	TimeDependent bool
}

// Library is an ordered set of candidate feature functions. Feature order
// fixes the column order of the design matrix and of the fitted coefficients.
type Library struct {
	cfg      LibraryConfig
	features []Feature
}

func NewLibrary(cfg LibraryConfig, features []Feature) (*Library, error) {
	if cfg.Dims <= 0 {
		return nil, fmt.Errorf("dims must be > 0")
	}
	if len(features) == 0 {
		return nil, fmt.Errorf("at least one feature is required")
	}
	for i, f := range features {
		if f.Eval == nil {
			return nil, fmt.Errorf("feature %d has no eval function", i)
		}
	}
	return &Library{cfg: cfg, features: features}, nil
}

func (l *Library) Len() int { return len(l.features) }

func (l *Library) FeatureNames() []string {
	names := make([]string, len(l.features))
	for i, f := range l.features {
		names[i] = f.Name
	}
	return names
}

// Transform evaluates every feature at every sample, producing the
// samples x features design matrix. The time vector may be nil when the
// library is not time-dependent.
func (l *Library) Transform(x [][]float64, t []float64) ([][]float64, error) {
	if len(x) == 0 {
		return nil, fmt.Errorf("empty input")
	}
	if l.cfg.TimeDependent && len(t) != len(x) {
		return nil, fmt.Errorf("time vector length %d does not match %d samples", len(t), len(x))
	}

	argLen := l.cfg.Dims + len(l.cfg.Constants)
	if l.cfg.TimeDependent {
		argLen++
	}
	args := make([]float64, argLen)

	theta := make([][]float64, len(x))
	for i, row := range x {
		if len(row) != l.cfg.Dims {
			return nil, fmt.Errorf("sample %d has %d dims, want %d", i, len(row), l.cfg.Dims)
		}
		copy(args, row)
		copy(args[l.cfg.Dims:], l.cfg.Constants)
		if l.cfg.TimeDependent {
			args[argLen-1] = t[i]
		}

		theta[i] = make([]float64, len(l.features))
		for j, f := range l.features {
			theta[i][j] = f.Eval(args)
		}
	}
	return theta, nil
}

// args assembles the argument vector for a single state, used by the
// right-hand-side evaluation during simulation.
func (l *Library) args(state []float64, t float64) []float64 {
	argLen := l.cfg.Dims + len(l.cfg.Constants)
	if l.cfg.TimeDependent {
		argLen++
	}
	args := make([]float64, argLen)
	copy(args, state)
	copy(args[l.cfg.Dims:], l.cfg.Constants)
	if l.cfg.TimeDependent {
		args[argLen-1] = t
	}
	return args
}
