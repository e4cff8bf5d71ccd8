package stats

import (
	"testing"

	"symdyn/internal/model"
)

func TestBuildFitnessPlots(t *testing.T) {
	log := []model.GenerationRecord{
		{Generation: 0, Fitness: model.ValueSummary{Max: 0.2, Mean: -0.1}, Size: model.ValueSummary{Mean: 8}},
		{Generation: 1, Fitness: model.ValueSummary{Max: 0.5, Mean: 0.1}, Size: model.ValueSummary{Mean: 9.5}},
		{Generation: 2, Fitness: model.ValueSummary{Max: 0.5, Mean: 0.3}, Size: model.ValueSummary{Mean: 7}},
	}

	maxPlot := BuildMaxFitnessPlot(log)
	if len(maxPlot) != 3 {
		t.Fatalf("max plot length: want 3 got %d", len(maxPlot))
	}
	if maxPlot[1].Generation != 1 || maxPlot[1].Value != 0.5 {
		t.Fatalf("max plot point: %+v", maxPlot[1])
	}

	meanPlot := BuildMeanFitnessPlot(log)
	if meanPlot[2].Value != 0.3 {
		t.Fatalf("mean plot point: %+v", meanPlot[2])
	}

	sizePlot := BuildMeanSizePlot(log)
	if sizePlot[0].Value != 8 {
		t.Fatalf("size plot point: %+v", sizePlot[0])
	}
}

func TestBuildPlotsEmptyLog(t *testing.T) {
	if got := BuildMaxFitnessPlot(nil); len(got) != 0 {
		t.Fatalf("expected empty plot, got %+v", got)
	}
}
