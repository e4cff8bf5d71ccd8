// Package metrics provides scoring functions for comparing observed and
// predicted trajectories. Every metric follows the larger-is-better
// convention so scores can drive fitness maximization directly.
package metrics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Metric scores a prediction against ground truth. Both arguments are
// time-major (samples x dims) and must agree in shape.
type Metric func(y, yPred [][]float64) (float64, error)

// R2 is the coefficient of determination, uniformly averaged across output
// dimensions. A perfect prediction scores 1; predicting the mean scores 0.
func R2(y, yPred [][]float64) (float64, error) {
	cols, err := checkShapes(y, yPred)
	if err != nil {
		return 0, err
	}

	total := 0.0
	column := make([]float64, len(y))
	for j := 0; j < cols; j++ {
		for i := range y {
			column[i] = y[i][j]
		}
		mean := stat.Mean(column, nil)

		ssRes, ssTot := 0.0, 0.0
		for i := range y {
			res := y[i][j] - yPred[i][j]
			ssRes += res * res
			dev := y[i][j] - mean
			ssTot += dev * dev
		}
		if ssTot == 0 {
			if ssRes > 0 {
				continue
			}
			total++
			continue
		}
		total += 1 - ssRes/ssTot
	}
	return total / float64(cols), nil
}

// NegMSE is the negated mean squared error over all entries.
func NegMSE(y, yPred [][]float64) (float64, error) {
	cols, err := checkShapes(y, yPred)
	if err != nil {
		return 0, err
	}

	sum := 0.0
	for i := range y {
		for j := 0; j < cols; j++ {
			d := y[i][j] - yPred[i][j]
			sum += d * d
		}
	}
	return -sum / float64(len(y)*cols), nil
}

// NegMAE is the negated mean absolute error over all entries.
func NegMAE(y, yPred [][]float64) (float64, error) {
	cols, err := checkShapes(y, yPred)
	if err != nil {
		return 0, err
	}

	sum := 0.0
	for i := range y {
		for j := 0; j < cols; j++ {
			sum += math.Abs(y[i][j] - yPred[i][j])
		}
	}
	return -sum / float64(len(y)*cols), nil
}

func checkShapes(y, yPred [][]float64) (int, error) {
	if len(y) == 0 || len(yPred) == 0 {
		return 0, fmt.Errorf("metric requires non-empty inputs")
	}
	if len(y) != len(yPred) {
		return 0, fmt.Errorf("sample count mismatch: %d vs %d", len(y), len(yPred))
	}
	cols := len(y[0])
	if cols == 0 {
		return 0, fmt.Errorf("metric requires at least one output dimension")
	}
	for i := range y {
		if len(y[i]) != cols || len(yPred[i]) != cols {
			return 0, fmt.Errorf("dimension mismatch at sample %d", i)
		}
	}
	return cols, nil
}
