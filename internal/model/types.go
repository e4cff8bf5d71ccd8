package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// RunRecord summarizes one evolutionary regression run.
type RunRecord struct {
	VersionedRecord
	ID             string  `json:"id"`
	CreatedAtUTC   string  `json:"created_at_utc"`
	System         string  `json:"system,omitempty"`
	Dims           int     `json:"dims"`
	NConstants     int     `json:"n_constants"`
	NTrees         int     `json:"n_trees"`
	PopulationSize int     `json:"population_size"`
	Generations    int     `json:"generations"`
	Seed           int64   `json:"seed"`
	SplitRatio     float64 `json:"split_ratio"`
	BestFitness    float64 `json:"best_fitness"`
}

// ValueSummary holds order statistics of one per-generation quantity.
type ValueSummary struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

// GenerationRecord is one line of the evolution logbook.
type GenerationRecord struct {
	Generation  int          `json:"generation"`
	Evaluations int          `json:"evaluations"`
	Fitness     ValueSummary `json:"fitness"`
	Size        ValueSummary `json:"size"`
}

// BestModelRecord is the deployable artifact of a run: the winning
// individual's feature expressions and the sparse model fitted from them.
type BestModelRecord struct {
	VersionedRecord
	RunID        string      `json:"run_id"`
	Fitness      float64     `json:"fitness"`
	FeatureNames []string    `json:"feature_names"`
	Coefficients [][]float64 `json:"coefficients"`
	Equations    []string    `json:"equations"`
}
