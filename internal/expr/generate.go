package expr

import (
	"fmt"
	"math/rand"
)

// Generate grows a random tree with the ramped half-and-half scheme: a target
// depth is drawn uniformly from [minDepth, maxDepth], then the tree is grown
// either full (every branch reaches the target depth) or grow-shaped (branches
// may stop early at terminals), with equal probability.
func Generate(rng *rand.Rand, ps *PrimitiveSet, minDepth, maxDepth int) (Tree, error) {
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	if ps == nil {
		return nil, fmt.Errorf("primitive set is required")
	}
	if minDepth < 0 || maxDepth < minDepth {
		return nil, fmt.Errorf("invalid depth bounds: [%d, %d]", minDepth, maxDepth)
	}

	depth := minDepth + rng.Intn(maxDepth-minDepth+1)
	full := rng.Float64() < 0.5

	tree := make(Tree, 0, 1<<uint(depth+1))
	tree = expand(tree, rng, ps, depth, full)
	return tree, nil
}

func expand(tree Tree, rng *rand.Rand, ps *PrimitiveSet, depth int, full bool) Tree {
	if depth == 0 || (!full && rng.Float64() < ps.terminalRatio()) {
		return append(tree, Node{Slot: rng.Intn(ps.NumArgs())})
	}
	prim := &ps.primitives[rng.Intn(len(ps.primitives))]
	tree = append(tree, Node{Prim: prim})
	for i := 0; i < prim.Arity; i++ {
		tree = expand(tree, rng, ps, depth-1, full)
	}
	return tree
}

// randomTerminal returns a fresh terminal node over the set's argument slots.
func randomTerminal(rng *rand.Rand, ps *PrimitiveSet) Node {
	return Node{Slot: rng.Intn(ps.NumArgs())}
}
