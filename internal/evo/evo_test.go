package evo

import (
	"math/rand"
	"testing"

	"symdyn/internal/expr"
)

func testSet(t *testing.T) *expr.PrimitiveSet {
	t.Helper()
	ps, err := expr.NewPrimitiveSet(expr.Config{Dims: 2})
	if err != nil {
		t.Fatalf("primitive set: %v", err)
	}
	return ps
}

// dampedOscillator integrates dx0 = a x0 + b x1, dx1 = -b x0 + a x1 and
// returns the trajectory alongside its analytic derivatives.
func dampedOscillator(n int, dt float64) (x, xDot [][]float64) {
	const a, b = -0.1, 2.0
	deriv := func(s []float64) []float64 {
		return []float64{a*s[0] + b*s[1], -b*s[0] + a*s[1]}
	}
	step := func(s []float64) []float64 {
		k1 := deriv(s)
		k2 := deriv([]float64{s[0] + dt/2*k1[0], s[1] + dt/2*k1[1]})
		k3 := deriv([]float64{s[0] + dt/2*k2[0], s[1] + dt/2*k2[1]})
		k4 := deriv([]float64{s[0] + dt*k3[0], s[1] + dt*k3[1]})
		return []float64{
			s[0] + dt/6*(k1[0]+2*k2[0]+2*k3[0]+k4[0]),
			s[1] + dt/6*(k1[1]+2*k2[1]+2*k3[1]+k4[1]),
		}
	}

	x = make([][]float64, n)
	xDot = make([][]float64, n)
	state := []float64{2, 0}
	for i := 0; i < n; i++ {
		x[i] = append([]float64(nil), state...)
		xDot[i] = deriv(state)
		state = step(state)
	}
	return x, xDot
}

func terminalTree(slot int) expr.Tree {
	return expr.Tree{{Slot: slot}}
}

func treesEqual(a, b []expr.Tree) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				return false
			}
		}
	}
	return true
}

func TestNewPopulationShapeAndDepth(t *testing.T) {
	ps := testSet(t)
	rng := rand.New(rand.NewSource(7))

	population, err := NewPopulation(rng, ps, 30, 3, 0, 2)
	if err != nil {
		t.Fatalf("new population: %v", err)
	}
	if len(population) != 30 {
		t.Fatalf("population size: want 30 got %d", len(population))
	}
	for i, ind := range population {
		if ind.Valid {
			t.Fatalf("individual %d starts with a valid fitness", i)
		}
		if len(ind.Trees) != 3 {
			t.Fatalf("individual %d has %d trees", i, len(ind.Trees))
		}
		for k, tree := range ind.Trees {
			if tree.Height() > 2 {
				t.Fatalf("individual %d tree %d height %d exceeds limit", i, k, tree.Height())
			}
		}
	}

	if _, err := NewPopulation(rng, ps, 0, 3, 0, 2); err == nil {
		t.Fatal("expected error for empty population")
	}
	if _, err := NewPopulation(rng, ps, 5, 0, 0, 2); err == nil {
		t.Fatal("expected error for zero trees")
	}
}

func TestCloneIsolation(t *testing.T) {
	ind := &Individual{Trees: []expr.Tree{terminalTree(0), terminalTree(1)}}
	ind.SetFitness(0.5)

	clone := ind.Clone()
	clone.Trees[0][0].Slot = 1
	clone.Invalidate()

	if ind.Trees[0][0].Slot != 0 {
		t.Fatal("clone mutation leaked into the original")
	}
	if !ind.Valid || ind.Fitness != 0.5 {
		t.Fatal("clone invalidation leaked into the original")
	}
	if ind.Size() != 2 {
		t.Fatalf("size: want 2 got %d", ind.Size())
	}
}

func TestVariationLeavesPoolUntouched(t *testing.T) {
	ps := testSet(t)
	rng := rand.New(rand.NewSource(11))

	pool, err := NewPopulation(rng, ps, 20, 3, 0, 2)
	if err != nil {
		t.Fatalf("new population: %v", err)
	}
	for _, ind := range pool {
		ind.SetFitness(1)
	}
	snapshot := make([][]expr.Tree, len(pool))
	for i, ind := range pool {
		snapshot[i] = ind.Clone().Trees
	}

	v := &Variation{PSet: ps, CrossoverProb: 1, MutationProb: 1, LeafBias: 0.5, HeightLimit: 2}
	offspring := v.Apply(rng, pool)

	if len(offspring) != len(pool) {
		t.Fatalf("offspring size: want %d got %d", len(pool), len(offspring))
	}
	for i, ind := range pool {
		if !treesEqual(ind.Trees, snapshot[i]) {
			t.Fatalf("pool individual %d was modified", i)
		}
		if !ind.Valid {
			t.Fatalf("pool individual %d was invalidated", i)
		}
	}
}

func TestVariationRespectsHeightLimit(t *testing.T) {
	ps := testSet(t)
	rng := rand.New(rand.NewSource(13))

	pool, err := NewPopulation(rng, ps, 40, 2, 0, 2)
	if err != nil {
		t.Fatalf("new population: %v", err)
	}
	for _, ind := range pool {
		ind.SetFitness(0)
	}

	v := &Variation{PSet: ps, CrossoverProb: 1, MutationProb: 1, LeafBias: 0.5, HeightLimit: 2}
	for round := 0; round < 20; round++ {
		offspring := v.Apply(rng, pool)
		for i, ind := range offspring {
			for k, tree := range ind.Trees {
				if tree.Height() > 2 {
					t.Fatalf("round %d individual %d tree %d height %d exceeds limit",
						round, i, k, tree.Height())
				}
				if err := tree.Validate(ps); err != nil {
					t.Fatalf("round %d individual %d tree %d invalid: %v", round, i, k, err)
				}
			}
		}
		pool = offspring
		for _, ind := range pool {
			ind.SetFitness(0)
		}
	}
}

func TestVariationInvalidatesChangedOffspring(t *testing.T) {
	ps := testSet(t)
	rng := rand.New(rand.NewSource(17))

	pool, err := NewPopulation(rng, ps, 10, 2, 0, 2)
	if err != nil {
		t.Fatalf("new population: %v", err)
	}
	for _, ind := range pool {
		ind.SetFitness(0.9)
	}

	quiet := &Variation{PSet: ps, CrossoverProb: 0, MutationProb: 0, LeafBias: 0.5, HeightLimit: 2}
	for i, ind := range quiet.Apply(rng, pool) {
		if !ind.Valid || ind.Fitness != 0.9 {
			t.Fatalf("untouched offspring %d lost its fitness", i)
		}
	}

	noisy := &Variation{PSet: ps, CrossoverProb: 1, MutationProb: 1, LeafBias: 0.5, HeightLimit: 2}
	for i, ind := range noisy.Apply(rng, pool) {
		if ind.Valid {
			t.Fatalf("varied offspring %d kept a stale fitness", i)
		}
	}
}

func TestTournamentSelection(t *testing.T) {
	rng := rand.New(rand.NewSource(19))

	population := make([]*Individual, 10)
	for i := range population {
		population[i] = &Individual{Trees: []expr.Tree{terminalTree(0)}}
		population[i].SetFitness(0)
	}
	population[4].SetFitness(1)

	s := &TournamentSelector{TournamentSize: 2}
	selected := s.Select(rng, population, 200)
	if len(selected) != 200 {
		t.Fatalf("selected size: want 200 got %d", len(selected))
	}

	bestCount := 0
	for _, ind := range selected {
		if ind == population[4] {
			bestCount++
		}
	}
	// P(best in a size-2 tournament) = 1 - 0.9^2 = 0.19.
	if bestCount < 20 {
		t.Fatalf("fittest individual selected only %d/200 times", bestCount)
	}
}

func TestHallOfFame(t *testing.T) {
	hof := &HallOfFame{}
	if hof.Best() != nil {
		t.Fatal("expected empty hall of fame")
	}

	a := &Individual{Trees: []expr.Tree{terminalTree(0)}}
	a.SetFitness(0.5)
	stale := &Individual{Trees: []expr.Tree{terminalTree(1)}}

	hof.Update([]*Individual{stale, a})
	if hof.Best() == nil || hof.Best().Fitness != 0.5 {
		t.Fatal("champion not captured")
	}

	// Equal fitness does not displace the champion.
	b := &Individual{Trees: []expr.Tree{terminalTree(1)}}
	b.SetFitness(0.5)
	hof.Update([]*Individual{b})
	if hof.Best().Trees[0][0].Slot != 0 {
		t.Fatal("equal fitness displaced the champion")
	}

	// A worse generation does not regress the champion.
	c := &Individual{Trees: []expr.Tree{terminalTree(1)}}
	c.SetFitness(0.1)
	hof.Update([]*Individual{c})
	if hof.Best().Fitness != 0.5 {
		t.Fatal("champion regressed")
	}

	// The champion is a clone, immune to later modification.
	a.Trees[0][0].Slot = 1
	a.SetFitness(-1)
	if hof.Best().Trees[0][0].Slot != 0 || hof.Best().Fitness != 0.5 {
		t.Fatal("champion aliases the population individual")
	}

	d := &Individual{Trees: []expr.Tree{terminalTree(1)}}
	d.SetFitness(0.9)
	hof.Update([]*Individual{d})
	if hof.Best().Fitness != 0.9 {
		t.Fatal("strict improvement not captured")
	}
}

func TestSplitPoint(t *testing.T) {
	if got := splitPoint(10, 0.8); got != 8 {
		t.Fatalf("splitPoint(10, 0.8): want 8 got %d", got)
	}
	if got := splitPoint(7, 0.5); got != 3 {
		t.Fatalf("splitPoint(7, 0.5): want 3 got %d", got)
	}
	if got := splitPoint(5, 1); got != 5 {
		t.Fatalf("splitPoint(5, 1): want 5 got %d", got)
	}
}
