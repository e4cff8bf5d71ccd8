package storage

import (
	"errors"
	"testing"

	"symdyn/internal/model"
)

func TestRunCodecRoundTrip(t *testing.T) {
	run := testRun("run-1")

	data, err := EncodeRun(run)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeRun(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.ID != "run-1" || decoded.BestFitness != 0.87 || decoded.Seed != 42 {
		t.Fatalf("roundtrip: %+v", decoded)
	}
}

func TestDecodeRunRejectsVersionMismatch(t *testing.T) {
	run := testRun("run-1")
	run.SchemaVersion = CurrentSchemaVersion + 1

	data, err := EncodeRun(run)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := DecodeRun(data); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("want ErrVersionMismatch, got %v", err)
	}
}

func TestBestModelCodec(t *testing.T) {
	best := model.BestModelRecord{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: CurrentSchemaVersion,
			CodecVersion:  CurrentCodecVersion,
		},
		RunID:        "run-1",
		Fitness:      0.87,
		FeatureNames: []string{"x0", "mul(x0, x1)"},
		Coefficients: [][]float64{{1, 0}, {0, -2}},
		Equations:    []string{"dx0/dt = +1.0000 * x0"},
	}

	data, err := EncodeBestModel(best)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeBestModel(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.FeatureNames[1] != "mul(x0, x1)" || decoded.Coefficients[1][1] != -2 {
		t.Fatalf("roundtrip: %+v", decoded)
	}

	decoded.CodecVersion = CurrentCodecVersion + 1
	bad, err := EncodeBestModel(decoded)
	if err != nil {
		t.Fatalf("encode mismatched: %v", err)
	}
	if _, err := DecodeBestModel(bad); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("want ErrVersionMismatch, got %v", err)
	}
}

func TestHistoryAndLogCodecs(t *testing.T) {
	history := []float64{0.1, 0.5, 0.9}
	data, err := EncodeFitnessHistory(history)
	if err != nil {
		t.Fatalf("encode history: %v", err)
	}
	decoded, err := DecodeFitnessHistory(data)
	if err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(decoded) != 3 || decoded[2] != 0.9 {
		t.Fatalf("history roundtrip: %+v", decoded)
	}

	log := []model.GenerationRecord{{Generation: 3, Evaluations: 42}}
	data, err = EncodeGenerationLog(log)
	if err != nil {
		t.Fatalf("encode log: %v", err)
	}
	decodedLog, err := DecodeGenerationLog(data)
	if err != nil {
		t.Fatalf("decode log: %v", err)
	}
	if len(decodedLog) != 1 || decodedLog[0].Generation != 3 {
		t.Fatalf("log roundtrip: %+v", decodedLog)
	}
}
