package evo

import (
	"fmt"
	"math/rand"

	"symdyn/internal/expr"
)

// Individual is a candidate solution: a fixed-length tuple of independently
// evolved expression trees, one per library feature, with an invalidatable
// fitness record.
type Individual struct {
	Trees   []expr.Tree
	Fitness float64
	Valid   bool
}

// Invalidate clears the fitness record after a structural change.
func (ind *Individual) Invalidate() {
	ind.Fitness = 0
	ind.Valid = false
}

// SetFitness records an evaluated fitness.
func (ind *Individual) SetFitness(f float64) {
	ind.Fitness = f
	ind.Valid = true
}

// Size is the total node count across all trees.
func (ind *Individual) Size() int {
	total := 0
	for _, t := range ind.Trees {
		total += len(t)
	}
	return total
}

// Clone deep-copies the individual, fitness record included.
func (ind *Individual) Clone() *Individual {
	trees := make([]expr.Tree, len(ind.Trees))
	for i, t := range ind.Trees {
		trees[i] = t.Clone()
	}
	return &Individual{Trees: trees, Fitness: ind.Fitness, Valid: ind.Valid}
}

// Expressions renders every tree of the individual.
func (ind *Individual) Expressions(ps *expr.PrimitiveSet) []string {
	out := make([]string, len(ind.Trees))
	for i, t := range ind.Trees {
		out[i] = t.String(ps)
	}
	return out
}

// NewPopulation grows size individuals of ntrees trees each with the ramped
// half-and-half expansion. All fitness records start invalid.
func NewPopulation(rng *rand.Rand, ps *expr.PrimitiveSet, size, ntrees, minDepth, maxDepth int) ([]*Individual, error) {
	if size <= 0 {
		return nil, fmt.Errorf("population size must be > 0")
	}
	if ntrees <= 0 {
		return nil, fmt.Errorf("ntrees must be > 0")
	}

	population := make([]*Individual, size)
	for i := range population {
		trees := make([]expr.Tree, ntrees)
		for k := range trees {
			tree, err := expr.Generate(rng, ps, minDepth, maxDepth)
			if err != nil {
				return nil, fmt.Errorf("grow individual %d tree %d: %w", i, k, err)
			}
			trees[k] = tree
		}
		population[i] = &Individual{Trees: trees}
	}
	return population, nil
}
