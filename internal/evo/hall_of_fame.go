package evo

// HallOfFame keeps a clone of the single best individual seen so far.
// Updates only on strict improvement, so the first of equally fit champions
// is retained.
type HallOfFame struct {
	best *Individual
}

// Update inspects every valid individual and captures a clone of any strict
// improvement over the current champion.
func (h *HallOfFame) Update(population []*Individual) {
	for _, ind := range population {
		if !ind.Valid {
			continue
		}
		if h.best == nil || ind.Fitness > h.best.Fitness {
			h.best = ind.Clone()
		}
	}
}

// Best returns the champion, or nil before any update.
func (h *HallOfFame) Best() *Individual {
	return h.best
}
