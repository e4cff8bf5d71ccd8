package storage

import (
	"context"
	"testing"

	"symdyn/internal/model"
)

func testRun(id string) model.RunRecord {
	return model.RunRecord{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: CurrentSchemaVersion,
			CodecVersion:  CurrentCodecVersion,
		},
		ID:             id,
		CreatedAtUTC:   "2026-08-25T10:00:00Z",
		System:         "linear2d",
		Dims:           2,
		NTrees:         5,
		PopulationSize: 300,
		Generations:    5,
		Seed:           42,
		SplitRatio:     0.8,
		BestFitness:    0.87,
	}
}

func TestMemoryStoreRunRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	if err := store.SaveRun(ctx, testRun("run-1")); err != nil {
		t.Fatalf("save run: %v", err)
	}
	run, ok, err := store.GetRun(ctx, "run-1")
	if err != nil || !ok {
		t.Fatalf("get run: ok=%v err=%v", ok, err)
	}
	if run.BestFitness != 0.87 || run.System != "linear2d" {
		t.Fatalf("run roundtrip: %+v", run)
	}

	if _, ok, _ := store.GetRun(ctx, "missing"); ok {
		t.Fatal("expected miss for unknown run")
	}

	if err := store.SaveRun(ctx, testRun("run-2")); err != nil {
		t.Fatalf("save second run: %v", err)
	}
	runs, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("list runs: want 2 got %d", len(runs))
	}
}

func TestMemoryStoreHistoryIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	history := []float64{0.1, 0.4, 0.8}
	if err := store.SaveFitnessHistory(ctx, "run-1", history); err != nil {
		t.Fatalf("save history: %v", err)
	}
	history[0] = -99

	got, ok, err := store.GetFitnessHistory(ctx, "run-1")
	if err != nil || !ok {
		t.Fatalf("get history: ok=%v err=%v", ok, err)
	}
	if got[0] != 0.1 {
		t.Fatal("store aliases the caller's slice")
	}
	got[1] = -99
	again, _, _ := store.GetFitnessHistory(ctx, "run-1")
	if again[1] != 0.4 {
		t.Fatal("returned slice aliases the stored one")
	}

	if _, ok, _ := store.GetFitnessHistory(ctx, "missing"); ok {
		t.Fatal("expected miss for unknown history")
	}
}

func TestMemoryStoreGenerationLogAndBestModel(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	log := []model.GenerationRecord{
		{Generation: 0, Evaluations: 300},
		{Generation: 1, Evaluations: 180},
	}
	if err := store.SaveGenerationLog(ctx, "run-1", log); err != nil {
		t.Fatalf("save log: %v", err)
	}
	gotLog, ok, err := store.GetGenerationLog(ctx, "run-1")
	if err != nil || !ok {
		t.Fatalf("get log: ok=%v err=%v", ok, err)
	}
	if len(gotLog) != 2 || gotLog[1].Evaluations != 180 {
		t.Fatalf("log roundtrip: %+v", gotLog)
	}

	best := model.BestModelRecord{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: CurrentSchemaVersion,
			CodecVersion:  CurrentCodecVersion,
		},
		RunID:        "run-1",
		Fitness:      0.87,
		FeatureNames: []string{"x0", "x1"},
		Coefficients: [][]float64{{-0.1, 2}, {-2, -0.1}},
	}
	if err := store.SaveBestModel(ctx, best); err != nil {
		t.Fatalf("save best model: %v", err)
	}
	gotBest, ok, err := store.GetBestModel(ctx, "run-1")
	if err != nil || !ok {
		t.Fatalf("get best model: ok=%v err=%v", ok, err)
	}
	if gotBest.Fitness != 0.87 || len(gotBest.FeatureNames) != 2 {
		t.Fatalf("best model roundtrip: %+v", gotBest)
	}
}
