package evo

import (
	"fmt"
	"math/rand"
)

// TournamentSelector draws k contestants with replacement per slot and keeps
// the fittest, maximizing.
type TournamentSelector struct {
	TournamentSize int
}

func (s *TournamentSelector) validate() error {
	if s.TournamentSize <= 0 {
		return fmt.Errorf("tournament size must be > 0")
	}
	return nil
}

// Select returns n winners drawn from the population. Winners are references,
// not copies; the variation stage clones before modifying.
func (s *TournamentSelector) Select(rng *rand.Rand, population []*Individual, n int) []*Individual {
	selected := make([]*Individual, n)
	for i := range selected {
		best := population[rng.Intn(len(population))]
		for j := 1; j < s.TournamentSize; j++ {
			challenger := population[rng.Intn(len(population))]
			if challenger.Fitness > best.Fitness {
				best = challenger
			}
		}
		selected[i] = best
	}
	return selected
}
