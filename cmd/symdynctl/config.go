package main

import (
	"encoding/json"
	"fmt"
	"os"
)

// runFileConfig mirrors the run command's flags for JSON configuration files.
// File values override flag values field by field; zero values defer to flags.
type runFileConfig struct {
	System      string  `json:"system,omitempty"`
	Samples     int     `json:"samples,omitempty"`
	DT          float64 `json:"dt,omitempty"`
	NTrees      int     `json:"n_trees,omitempty"`
	MaxDepth    int     `json:"max_depth,omitempty"`
	Population  int     `json:"population,omitempty"`
	Generations int     `json:"generations,omitempty"`
	CXPB        float64 `json:"crossover_prob,omitempty"`
	MutPB       float64 `json:"mutation_prob,omitempty"`
	Split       float64 `json:"split_ratio,omitempty"`
	Metric      string  `json:"metric,omitempty"`
	Sparsity    string  `json:"sparsity,omitempty"`
	Threshold   float64 `json:"threshold,omitempty"`
	Ridge       float64 `json:"ridge,omitempty"`
	Seed        int64   `json:"seed,omitempty"`
	Workers     int     `json:"workers,omitempty"`
}

func loadRunConfig(path string) (runFileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return runFileConfig{}, err
	}
	var cfg runFileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return runFileConfig{}, fmt.Errorf("parse run config %s: %w", path, err)
	}
	return cfg, nil
}

func (c runFileConfig) merge(over runFileConfig) runFileConfig {
	if over.System != "" {
		c.System = over.System
	}
	if over.Samples != 0 {
		c.Samples = over.Samples
	}
	if over.DT != 0 {
		c.DT = over.DT
	}
	if over.NTrees != 0 {
		c.NTrees = over.NTrees
	}
	if over.MaxDepth != 0 {
		c.MaxDepth = over.MaxDepth
	}
	if over.Population != 0 {
		c.Population = over.Population
	}
	if over.Generations != 0 {
		c.Generations = over.Generations
	}
	if over.CXPB != 0 {
		c.CXPB = over.CXPB
	}
	if over.MutPB != 0 {
		c.MutPB = over.MutPB
	}
	if over.Split != 0 {
		c.Split = over.Split
	}
	if over.Metric != "" {
		c.Metric = over.Metric
	}
	if over.Sparsity != "" {
		c.Sparsity = over.Sparsity
	}
	if over.Threshold != 0 {
		c.Threshold = over.Threshold
	}
	if over.Ridge != 0 {
		c.Ridge = over.Ridge
	}
	if over.Seed != 0 {
		c.Seed = over.Seed
	}
	if over.Workers != 0 {
		c.Workers = over.Workers
	}
	return c
}
