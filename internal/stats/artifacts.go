// Package stats persists run artifacts as JSON files under a base directory,
// one subdirectory per run, plus a flat index for discovery.
package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"symdyn/internal/model"
)

const runIndexFile = "run_index.json"

// RunConfig is the reproducibility record of a run: everything needed to
// replay it with the same outcome.
type RunConfig struct {
	RunID          string  `json:"run_id"`
	System         string  `json:"system,omitempty"`
	Dims           int     `json:"dims"`
	NConstants     int     `json:"n_constants"`
	TimeDependent  bool    `json:"time_dependent"`
	NTrees         int     `json:"n_trees"`
	MaxDepth       int     `json:"max_depth"`
	PopulationSize int     `json:"population_size"`
	Generations    int     `json:"generations"`
	CrossoverProb  float64 `json:"crossover_prob"`
	MutationProb   float64 `json:"mutation_prob"`
	SplitRatio     float64 `json:"split_ratio"`
	Metric         string  `json:"metric"`
	Threshold      float64 `json:"threshold"`
	Ridge          float64 `json:"ridge"`
	Seed           int64   `json:"seed"`
	Workers        int     `json:"workers"`
}

// RunArtifacts bundles everything a completed run writes to disk.
type RunArtifacts struct {
	Config           RunConfig                `json:"config"`
	GenerationLog    []model.GenerationRecord `json:"generation_log"`
	BestByGeneration []float64                `json:"best_by_generation"`
	FinalBestFitness float64                  `json:"final_best_fitness"`
	BestModel        model.BestModelRecord    `json:"best_model"`
}

// RunIndexEntry is one line of the flat run index.
type RunIndexEntry struct {
	RunID            string  `json:"run_id"`
	System           string  `json:"system,omitempty"`
	PopulationSize   int     `json:"population_size"`
	Generations      int     `json:"generations"`
	Seed             int64   `json:"seed"`
	FinalBestFitness float64 `json:"final_best_fitness"`
	CreatedAtUTC     string  `json:"created_at_utc"`
}

// WriteRunArtifacts writes the run's files under baseDir/<run id> and returns
// the run directory.
func WriteRunArtifacts(baseDir string, artifacts RunArtifacts) (string, error) {
	if artifacts.Config.RunID == "" {
		return "", fmt.Errorf("run id is required")
	}

	runDir := filepath.Join(baseDir, artifacts.Config.RunID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, "config.json"), artifacts.Config); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "fitness_history.json"), map[string]any{
		"best_by_generation": artifacts.BestByGeneration,
		"final_best_fitness": artifacts.FinalBestFitness,
	}); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "generation_log.json"), artifacts.GenerationLog); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "best_model.json"), artifacts.BestModel); err != nil {
		return "", err
	}

	return runDir, nil
}

// AppendRunIndex upserts the entry into baseDir's run index, keyed by run id.
func AppendRunIndex(baseDir string, entry RunIndexEntry) error {
	if entry.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}

	index, err := ListRunIndex(baseDir)
	if err != nil {
		return err
	}

	for i := range index {
		if index[i].RunID == entry.RunID {
			index[i] = entry
			return writeJSON(filepath.Join(baseDir, runIndexFile), index)
		}
	}

	index = append(index, entry)
	return writeJSON(filepath.Join(baseDir, runIndexFile), index)
}

// ListRunIndex returns the index entries, most recent first. A missing index
// file is an empty index.
func ListRunIndex(baseDir string) ([]RunIndexEntry, error) {
	path := filepath.Join(baseDir, runIndexFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunIndexEntry{}, nil
		}
		return nil, err
	}

	var entries []RunIndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	type indexedEntry struct {
		entry RunIndexEntry
		idx   int
	}
	indexed := make([]indexedEntry, len(entries))
	for i := range entries {
		indexed[i] = indexedEntry{entry: entries[i], idx: i}
	}
	sort.Slice(indexed, func(i, j int) bool {
		if indexed[i].entry.CreatedAtUTC == indexed[j].entry.CreatedAtUTC {
			// Prefer later appended entries for equal timestamps.
			return indexed[i].idx > indexed[j].idx
		}
		return indexed[i].entry.CreatedAtUTC > indexed[j].entry.CreatedAtUTC
	})

	sorted := make([]RunIndexEntry, 0, len(indexed))
	for _, item := range indexed {
		sorted = append(sorted, item.entry)
	}
	return sorted, nil
}

// ReadRunConfig loads a run's config. The second return reports whether the
// run exists.
func ReadRunConfig(baseDir, runID string) (RunConfig, bool, error) {
	path := filepath.Join(baseDir, runID, "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return RunConfig{}, false, nil
		}
		return RunConfig{}, false, err
	}

	var cfg RunConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return RunConfig{}, false, err
	}
	return cfg, true, nil
}

// ReadGenerationLog loads a run's per-generation logbook.
func ReadGenerationLog(baseDir, runID string) ([]model.GenerationRecord, bool, error) {
	path := filepath.Join(baseDir, runID, "generation_log.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var log []model.GenerationRecord
	if err := json.Unmarshal(data, &log); err != nil {
		return nil, false, err
	}
	return log, true, nil
}

// ReadBestModel loads a run's fitted champion model record.
func ReadBestModel(baseDir, runID string) (model.BestModelRecord, bool, error) {
	path := filepath.Join(baseDir, runID, "best_model.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.BestModelRecord{}, false, nil
		}
		return model.BestModelRecord{}, false, err
	}

	var best model.BestModelRecord
	if err := json.Unmarshal(data, &best); err != nil {
		return model.BestModelRecord{}, false, err
	}
	return best, true, nil
}

// WriteRunConfig writes just the config file of a run, creating its directory.
func WriteRunConfig(baseDir, runID string, cfg RunConfig) error {
	if strings.TrimSpace(runID) == "" {
		return fmt.Errorf("run id is required")
	}
	if strings.TrimSpace(cfg.RunID) == "" {
		cfg.RunID = strings.TrimSpace(runID)
	}
	if cfg.RunID != strings.TrimSpace(runID) {
		return fmt.Errorf("run config run id mismatch: got=%s want=%s", cfg.RunID, strings.TrimSpace(runID))
	}
	runDir := filepath.Join(baseDir, runID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return err
	}
	return writeJSON(filepath.Join(runDir, "config.json"), cfg)
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}
