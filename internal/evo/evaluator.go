package evo

import (
	"fmt"

	"symdyn/internal/expr"
	"symdyn/internal/metrics"
	"symdyn/internal/sindy"
)

// Evaluator scores individuals by fitting a sparse dynamics model over the
// feature library their trees define. Fitness is the held-out metric score
// minus a sparsity penalty for trees whose coefficients survived nonzero.
type Evaluator struct {
	PSet     *expr.PrimitiveSet
	MaxDepth int

	XTrain [][]float64
	// XDotTrain may be nil; derivatives then come from finite differences.
	XDotTrain [][]float64
	Time      sindy.TimeSpec

	SindyOptions sindy.Options
	Metric       metrics.Metric
	// SplitRatio is the fraction of samples used for fitting; the remainder
	// scores. 1 disables the split.
	SplitRatio float64
	// SparsityPenalty toggles the zero-node size penalty.
	SparsityPenalty bool
	// ConstantValues bind the symbolic-constant slots; defaults to all ones.
	ConstantValues []float64
}

func (e *Evaluator) validate() error {
	if e.PSet == nil {
		return fmt.Errorf("primitive set is required")
	}
	if e.MaxDepth <= 0 {
		return fmt.Errorf("max depth must be > 0")
	}
	if len(e.XTrain) == 0 {
		return fmt.Errorf("training data is required")
	}
	if e.XDotTrain != nil && len(e.XDotTrain) != len(e.XTrain) {
		return fmt.Errorf("derivative rows %d do not match %d samples", len(e.XDotTrain), len(e.XTrain))
	}
	if e.SplitRatio <= 0 || e.SplitRatio > 1 {
		return fmt.Errorf("split ratio must be in (0, 1]")
	}
	if e.ConstantValues != nil && len(e.ConstantValues) != e.PSet.Constants() {
		return fmt.Errorf("got %d constant values, want %d", len(e.ConstantValues), e.PSet.Constants())
	}
	return nil
}

func (e *Evaluator) constants() []float64 {
	if e.ConstantValues != nil {
		return e.ConstantValues
	}
	values := make([]float64, e.PSet.Constants())
	for i := range values {
		values[i] = 1
	}
	return values
}

// library compiles the individual's trees into a candidate feature library,
// one feature per tree, in tree order.
func (e *Evaluator) library(ind *Individual) (*sindy.Library, error) {
	features := make([]sindy.Feature, len(ind.Trees))
	for i, tree := range ind.Trees {
		eval, err := expr.Compile(tree, e.PSet)
		if err != nil {
			return nil, fmt.Errorf("compile tree %d: %w", i, err)
		}
		features[i] = sindy.Feature{Name: tree.String(e.PSet), Eval: eval}
	}
	return sindy.NewLibrary(sindy.LibraryConfig{
		Dims:          e.PSet.Dims(),
		Constants:     e.constants(),
		TimeDependent: e.PSet.TimeDependent(),
	}, features)
}

// Evaluate fits on the train portion of the split, scores on the held-out
// portion, and subtracts the sparsity penalty. Fewer than 3 samples in total
// is an error.
func (e *Evaluator) Evaluate(ind *Individual) (float64, error) {
	if err := e.validate(); err != nil {
		return 0, err
	}
	if len(e.XTrain) < 3 {
		return 0, fmt.Errorf("%d samples: %w", len(e.XTrain), sindy.ErrTooFewSamples)
	}

	nTrain := splitPoint(len(e.XTrain), e.SplitRatio)
	if nTrain < 1 {
		return 0, fmt.Errorf("split ratio %v leaves no train samples", e.SplitRatio)
	}

	lib, err := e.library(ind)
	if err != nil {
		return 0, err
	}
	model, err := sindy.NewModel(lib, e.SindyOptions)
	if err != nil {
		return 0, err
	}

	xFit, xDotFit := e.XTrain[:nTrain], sliceRows(e.XDotTrain, 0, nTrain)
	xScore, xDotScore := e.XTrain, e.XDotTrain
	scoreTime := e.Time
	if nTrain < len(e.XTrain) {
		xScore, xDotScore = e.XTrain[nTrain:], sliceRows(e.XDotTrain, nTrain, len(e.XTrain))
		scoreTime = e.Time.Slice(nTrain, len(e.XTrain))
	}

	if err := model.Fit(xFit, e.Time.Slice(0, nTrain), xDotFit); err != nil {
		return 0, fmt.Errorf("fit: %w", err)
	}
	score, err := model.Score(xScore, scoreTime, xDotScore, e.Metric)
	if err != nil {
		return 0, fmt.Errorf("score: %w", err)
	}
	if e.SparsityPenalty {
		score -= e.penalty(ind, model.Coefficients())
	}
	return score, nil
}

// Materialize re-fits the individual over the entire training window, no
// split, and returns the resulting model.
func (e *Evaluator) Materialize(ind *Individual) (*sindy.Model, error) {
	if err := e.validate(); err != nil {
		return nil, err
	}
	if len(e.XTrain) < 3 {
		return nil, fmt.Errorf("%d samples: %w", len(e.XTrain), sindy.ErrTooFewSamples)
	}

	lib, err := e.library(ind)
	if err != nil {
		return nil, err
	}
	model, err := sindy.NewModel(lib, e.SindyOptions)
	if err != nil {
		return nil, err
	}
	if err := model.Fit(e.XTrain, e.Time, e.XDotTrain); err != nil {
		return nil, fmt.Errorf("fit: %w", err)
	}
	return model, nil
}

// penalty charges each tree its node count, except trees whose coefficient
// column is zero across every state dimension, normalized by the largest
// possible individual size at the depth limit.
func (e *Evaluator) penalty(ind *Individual, coef [][]float64) float64 {
	nodes := 0
	for j, tree := range ind.Trees {
		active := false
		for d := range coef {
			if coef[d][j] != 0 {
				active = true
				break
			}
		}
		if active {
			nodes += len(tree)
		}
	}
	capacity := float64(int(1)<<(1+e.MaxDepth)) * float64(len(ind.Trees))
	return float64(nodes) / capacity
}

// splitPoint truncates toward zero, matching integer split semantics.
func splitPoint(n int, ratio float64) int {
	return int(ratio * float64(n))
}

func sliceRows(x [][]float64, begin, end int) [][]float64 {
	if x == nil {
		return nil
	}
	return x[begin:end]
}
