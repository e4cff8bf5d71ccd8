package expr

import "math/rand"

// CxOnePoint swaps a uniformly chosen subtree between two trees. Inputs are
// not modified; the offspring are fresh copies. Trees too small to cross are
// returned as-is.
func CxOnePoint(rng *rand.Rand, a, b Tree) (Tree, Tree) {
	if len(a) < 2 || len(b) < 2 {
		return a.Clone(), b.Clone()
	}

	beginA := rng.Intn(len(a))
	beginB := rng.Intn(len(b))
	return swapSubtrees(a, b, beginA, beginB)
}

// CxOnePointLeafBiased swaps a single subtree, biasing each tree's crossover
// point toward leaves with probability termpb and toward internal nodes
// otherwise. The bias is rolled independently per tree.
func CxOnePointLeafBiased(rng *rand.Rand, a, b Tree, termpb float64) (Tree, Tree) {
	if len(a) < 2 || len(b) < 2 {
		return a.Clone(), b.Clone()
	}

	beginA := pickPoint(rng, a, rng.Float64() < termpb)
	beginB := pickPoint(rng, b, rng.Float64() < termpb)
	return swapSubtrees(a, b, beginA, beginB)
}

func pickPoint(rng *rand.Rand, t Tree, wantTerminal bool) int {
	candidates := make([]int, 0, len(t))
	for i, node := range t {
		if node.IsTerminal() == wantTerminal {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return rng.Intn(len(t))
	}
	return candidates[rng.Intn(len(candidates))]
}

func swapSubtrees(a, b Tree, beginA, beginB int) (Tree, Tree) {
	endA := a.SearchSubtree(beginA)
	endB := b.SearchSubtree(beginB)

	childA := make(Tree, 0, beginA+(endB-beginB)+len(a)-endA)
	childA = append(childA, a[:beginA]...)
	childA = append(childA, b[beginB:endB]...)
	childA = append(childA, a[endA:]...)

	childB := make(Tree, 0, beginB+(endA-beginA)+len(b)-endB)
	childB = append(childB, b[:beginB]...)
	childB = append(childB, a[beginA:endA]...)
	childB = append(childB, b[endB:]...)

	return childA, childB
}
