package evo

import (
	"fmt"
	"math/rand"

	"symdyn/internal/expr"
)

// Variation applies the crossover and mutation stage to a mating pool.
// Crossover touches one randomly chosen tree index per adjacent pair, gated
// by CrossoverProb; mutation is gated independently per tree index of every
// individual. Offspring exceeding the height limit fall back to the
// pre-operation parent tree.
type Variation struct {
	PSet          *expr.PrimitiveSet
	CrossoverProb float64
	MutationProb  float64
	// LeafBias is the terminal-selection probability of the leaf-biased
	// crossover branch.
	LeafBias    float64
	HeightLimit int
}

func (v *Variation) validate() error {
	if v.PSet == nil {
		return fmt.Errorf("primitive set is required")
	}
	if v.CrossoverProb < 0 || v.CrossoverProb > 1 {
		return fmt.Errorf("crossover probability must be in [0, 1]")
	}
	if v.MutationProb < 0 || v.MutationProb > 1 {
		return fmt.Errorf("mutation probability must be in [0, 1]")
	}
	if v.HeightLimit <= 0 {
		return fmt.Errorf("height limit must be > 0")
	}
	return nil
}

// Apply clones the pool and varies the clones in place. The input pool is
// never modified.
func (v *Variation) Apply(rng *rand.Rand, pool []*Individual) []*Individual {
	offspring := make([]*Individual, len(pool))
	for i, ind := range pool {
		offspring[i] = ind.Clone()
	}

	for i := 1; i < len(offspring); i += 2 {
		if rng.Float64() >= v.CrossoverProb {
			continue
		}
		left, right := offspring[i-1], offspring[i]
		k := rng.Intn(len(left.Trees))
		left.Trees[k], right.Trees[k] = v.mate(rng, left.Trees[k], right.Trees[k])
		left.Invalidate()
		right.Invalidate()
	}

	for _, ind := range offspring {
		for k := range ind.Trees {
			if rng.Float64() >= v.MutationProb {
				continue
			}
			ind.Trees[k] = v.mutate(rng, ind.Trees[k])
			ind.Invalidate()
		}
	}
	return offspring
}

// mate picks uniformly between the plain and the leaf-biased one-point
// crossover, then enforces the static height limit per offspring.
func (v *Variation) mate(rng *rand.Rand, a, b expr.Tree) (expr.Tree, expr.Tree) {
	var childA, childB expr.Tree
	if rng.Float64() < 0.5 {
		childA, childB = expr.CxOnePoint(rng, a, b)
	} else {
		childA, childB = expr.CxOnePointLeafBiased(rng, a, b, v.LeafBias)
	}
	if childA.Height() > v.HeightLimit {
		childA = a.Clone()
	}
	if childB.Height() > v.HeightLimit {
		childB = b.Clone()
	}
	return childA, childB
}

// mutate picks the mutation branch with the reference probabilities: insert
// below 0.5, shrink below 0.66, node replacement otherwise.
func (v *Variation) mutate(rng *rand.Rand, t expr.Tree) expr.Tree {
	var mutated expr.Tree
	roll := rng.Float64()
	switch {
	case roll < 0.5:
		mutated = expr.MutInsert(rng, t, v.PSet)
	case roll < 0.66:
		mutated = expr.MutShrink(rng, t)
	default:
		mutated = expr.MutNodeReplacement(rng, t, v.PSet)
	}
	if mutated.Height() > v.HeightLimit {
		return t.Clone()
	}
	return mutated
}
