package expr

import "math/rand"

// MutInsert inserts a new primitive at a random position. The subtree at that
// position becomes one of the new primitive's arguments; the remaining
// arguments are fresh random terminals.
func MutInsert(rng *rand.Rand, t Tree, ps *PrimitiveSet) Tree {
	begin := rng.Intn(len(t))
	end := t.SearchSubtree(begin)

	prim := &ps.primitives[rng.Intn(len(ps.primitives))]
	keepAt := rng.Intn(prim.Arity)

	mutated := make(Tree, 0, len(t)+prim.Arity)
	mutated = append(mutated, t[:begin]...)
	mutated = append(mutated, Node{Prim: prim})
	for i := 0; i < prim.Arity; i++ {
		if i == keepAt {
			mutated = append(mutated, t[begin:end]...)
		} else {
			mutated = append(mutated, randomTerminal(rng, ps))
		}
	}
	mutated = append(mutated, t[end:]...)
	return mutated
}

// MutShrink removes a random primitive node by promoting one of its argument
// subtrees in its place. Trees without primitives are returned unchanged.
func MutShrink(rng *rand.Rand, t Tree) Tree {
	prims := make([]int, 0, len(t))
	for i, node := range t {
		if !node.IsTerminal() {
			prims = append(prims, i)
		}
	}
	if len(prims) == 0 {
		return t.Clone()
	}

	begin := prims[rng.Intn(len(prims))]
	end := t.SearchSubtree(begin)

	// Walk to a uniformly chosen argument subtree of the shrunk primitive.
	arg := rng.Intn(t[begin].Arity())
	argBegin := begin + 1
	for i := 0; i < arg; i++ {
		argBegin = t.SearchSubtree(argBegin)
	}
	argEnd := t.SearchSubtree(argBegin)

	mutated := make(Tree, 0, len(t)-(end-begin)+(argEnd-argBegin))
	mutated = append(mutated, t[:begin]...)
	mutated = append(mutated, t[argBegin:argEnd]...)
	mutated = append(mutated, t[end:]...)
	return mutated
}

// MutNodeReplacement replaces a random node with another of the same arity: a
// terminal becomes a different argument slot, a primitive becomes a different
// primitive with identical arity so the prefix structure is preserved.
func MutNodeReplacement(rng *rand.Rand, t Tree, ps *PrimitiveSet) Tree {
	mutated := t.Clone()
	idx := rng.Intn(len(mutated))
	node := mutated[idx]

	if node.IsTerminal() {
		mutated[idx] = randomTerminal(rng, ps)
		return mutated
	}

	candidates := ps.primitivesWithArity(node.Arity())
	if len(candidates) == 0 {
		return mutated
	}
	mutated[idx] = Node{Prim: candidates[rng.Intn(len(candidates))]}
	return mutated
}
