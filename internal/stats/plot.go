package stats

import "symdyn/internal/model"

// PlotPoint is one sample of a plottable series, keyed by generation.
type PlotPoint struct {
	Generation int     `json:"generation"`
	Value      float64 `json:"value"`
}

// BuildMaxFitnessPlot extracts the per-generation best fitness series from
// the logbook.
func BuildMaxFitnessPlot(log []model.GenerationRecord) []PlotPoint {
	points := make([]PlotPoint, 0, len(log))
	for _, rec := range log {
		points = append(points, PlotPoint{Generation: rec.Generation, Value: rec.Fitness.Max})
	}
	return points
}

// BuildMeanFitnessPlot extracts the per-generation mean fitness series.
func BuildMeanFitnessPlot(log []model.GenerationRecord) []PlotPoint {
	points := make([]PlotPoint, 0, len(log))
	for _, rec := range log {
		points = append(points, PlotPoint{Generation: rec.Generation, Value: rec.Fitness.Mean})
	}
	return points
}

// BuildMeanSizePlot extracts the per-generation mean individual size series.
func BuildMeanSizePlot(log []model.GenerationRecord) []PlotPoint {
	points := make([]PlotPoint, 0, len(log))
	for _, rec := range log {
		points = append(points, PlotPoint{Generation: rec.Generation, Value: rec.Size.Mean})
	}
	return points
}
