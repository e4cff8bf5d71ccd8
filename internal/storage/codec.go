package storage

import (
	"encoding/json"
	"errors"

	"symdyn/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeRun(r model.RunRecord) ([]byte, error) {
	return json.Marshal(r)
}

func DecodeRun(data []byte) (model.RunRecord, error) {
	var run model.RunRecord
	if err := json.Unmarshal(data, &run); err != nil {
		return model.RunRecord{}, err
	}
	if err := checkVersion(run.VersionedRecord); err != nil {
		return model.RunRecord{}, err
	}
	return run, nil
}

func EncodeBestModel(b model.BestModelRecord) ([]byte, error) {
	return json.Marshal(b)
}

func DecodeBestModel(data []byte) (model.BestModelRecord, error) {
	var best model.BestModelRecord
	if err := json.Unmarshal(data, &best); err != nil {
		return model.BestModelRecord{}, err
	}
	if err := checkVersion(best.VersionedRecord); err != nil {
		return model.BestModelRecord{}, err
	}
	return best, nil
}

func EncodeGenerationLog(log []model.GenerationRecord) ([]byte, error) {
	return json.Marshal(log)
}

func DecodeGenerationLog(data []byte) ([]model.GenerationRecord, error) {
	var log []model.GenerationRecord
	if err := json.Unmarshal(data, &log); err != nil {
		return nil, err
	}
	return log, nil
}

func EncodeFitnessHistory(history []float64) ([]byte, error) {
	return json.Marshal(history)
}

func DecodeFitnessHistory(data []byte) ([]float64, error) {
	var history []float64
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
