package storage

import (
	"context"

	"symdyn/internal/model"
)

// Store defines persistence operations for run records and their artifacts.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.RunRecord) error
	GetRun(ctx context.Context, id string) (model.RunRecord, bool, error)
	ListRuns(ctx context.Context) ([]model.RunRecord, error)
	SaveFitnessHistory(ctx context.Context, runID string, history []float64) error
	GetFitnessHistory(ctx context.Context, runID string) ([]float64, bool, error)
	SaveGenerationLog(ctx context.Context, runID string, log []model.GenerationRecord) error
	GetGenerationLog(ctx context.Context, runID string) ([]model.GenerationRecord, bool, error)
	SaveBestModel(ctx context.Context, best model.BestModelRecord) error
	GetBestModel(ctx context.Context, runID string) (model.BestModelRecord, bool, error)
}
