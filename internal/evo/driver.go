package evo

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"

	"gonum.org/v1/gonum/stat"

	"symdyn/internal/model"
	"symdyn/internal/sindy"
)

// DriverConfig wires the evolutionary loop: an evaluator, the variation
// probabilities, and the population schedule.
type DriverConfig struct {
	Evaluator *Evaluator

	PopulationSize int
	Generations    int
	NTrees         int
	MinDepth       int

	CrossoverProb float64
	MutationProb  float64
	// LeafBias is the terminal-pick probability of the leaf-biased crossover.
	LeafBias       float64
	TournamentSize int

	Workers int
	Seed    int64
}

// Result is the outcome of a completed run: the champion, its full-window
// model, the per-generation logbook, and the final population.
type Result struct {
	Best            *Individual
	BestFitness     float64
	Model           *sindy.Model
	Log             []model.GenerationRecord
	FinalPopulation []*Individual
}

// Driver runs the generational loop: tournament selection, crossover and
// mutation, re-evaluation of changed individuals, full replacement.
type Driver struct {
	cfg       DriverConfig
	rng       *rand.Rand
	variation *Variation
	selector  *TournamentSelector
}

func NewDriver(cfg DriverConfig) (*Driver, error) {
	if cfg.Evaluator == nil {
		return nil, fmt.Errorf("evaluator is required")
	}
	if err := cfg.Evaluator.validate(); err != nil {
		return nil, fmt.Errorf("evaluator: %w", err)
	}
	if cfg.PopulationSize <= 0 {
		return nil, fmt.Errorf("population size must be > 0")
	}
	if cfg.Generations < 0 {
		return nil, fmt.Errorf("generations must be >= 0")
	}
	if cfg.NTrees <= 0 {
		return nil, fmt.Errorf("ntrees must be > 0")
	}
	if cfg.MinDepth < 0 || cfg.MinDepth > cfg.Evaluator.MaxDepth {
		return nil, fmt.Errorf("min depth must be in [0, max depth]")
	}
	if cfg.LeafBias < 0 || cfg.LeafBias > 1 {
		return nil, fmt.Errorf("leaf bias must be in [0, 1]")
	}
	if cfg.TournamentSize <= 0 {
		cfg.TournamentSize = 2
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}

	variation := &Variation{
		PSet:          cfg.Evaluator.PSet,
		CrossoverProb: cfg.CrossoverProb,
		MutationProb:  cfg.MutationProb,
		LeafBias:      cfg.LeafBias,
		HeightLimit:   cfg.Evaluator.MaxDepth,
	}
	if err := variation.validate(); err != nil {
		return nil, err
	}
	selector := &TournamentSelector{TournamentSize: cfg.TournamentSize}
	if err := selector.validate(); err != nil {
		return nil, err
	}

	return &Driver{
		cfg:       cfg,
		rng:       rand.New(rand.NewSource(cfg.Seed)),
		variation: variation,
		selector:  selector,
	}, nil
}

// Run executes the configured number of generations and re-fits the champion
// over the full training window. Any fitting error aborts the run.
func (d *Driver) Run(ctx context.Context) (Result, error) {
	population, err := NewPopulation(d.rng, d.cfg.Evaluator.PSet,
		d.cfg.PopulationSize, d.cfg.NTrees, d.cfg.MinDepth, d.cfg.Evaluator.MaxDepth)
	if err != nil {
		return Result{}, err
	}

	hof := &HallOfFame{}
	log := make([]model.GenerationRecord, 0, d.cfg.Generations+1)

	evaluated, err := d.evaluateInvalid(ctx, population)
	if err != nil {
		return Result{}, err
	}
	hof.Update(population)
	log = append(log, summarize(population, 0, evaluated))

	for gen := 1; gen <= d.cfg.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		pool := d.selector.Select(d.rng, population, len(population))
		offspring := d.variation.Apply(d.rng, pool)

		evaluated, err = d.evaluateInvalid(ctx, offspring)
		if err != nil {
			return Result{}, err
		}
		hof.Update(offspring)
		population = offspring
		log = append(log, summarize(population, gen, evaluated))
	}

	best := hof.Best()
	if best == nil {
		return Result{}, fmt.Errorf("no individual was evaluated")
	}
	fitted, err := d.cfg.Evaluator.Materialize(best)
	if err != nil {
		return Result{}, fmt.Errorf("refit best individual: %w", err)
	}

	return Result{
		Best:            best,
		BestFitness:     best.Fitness,
		Model:           fitted,
		Log:             log,
		FinalPopulation: population,
	}, nil
}

// evaluateInvalid scores every individual whose fitness record is invalid,
// fanning the work out over the configured worker count. The count of
// evaluations performed is returned for the logbook.
func (d *Driver) evaluateInvalid(ctx context.Context, population []*Individual) (int, error) {
	pending := make([]int, 0, len(population))
	for i, ind := range population {
		if !ind.Valid {
			pending = append(pending, i)
		}
	}
	if len(pending) == 0 {
		return 0, nil
	}

	type job struct {
		idx int
	}
	type result struct {
		idx     int
		fitness float64
		err     error
	}

	jobs := make(chan job)
	results := make(chan result, len(pending))

	workerCount := d.cfg.Workers
	if workerCount > len(pending) {
		workerCount = len(pending)
	}

	var wg sync.WaitGroup
	wg.Add(workerCount)
	for w := 0; w < workerCount; w++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				if err := ctx.Err(); err != nil {
					results <- result{idx: j.idx, err: err}
					continue
				}
				fitness, err := d.cfg.Evaluator.Evaluate(population[j.idx])
				results <- result{idx: j.idx, fitness: fitness, err: err}
			}
		}()
	}

	for _, idx := range pending {
		jobs <- job{idx: idx}
	}
	close(jobs)

	wg.Wait()
	close(results)

	for res := range results {
		if res.err != nil {
			return 0, fmt.Errorf("evaluate individual %d: %w", res.idx, res.err)
		}
		population[res.idx].SetFitness(res.fitness)
	}
	return len(pending), nil
}

func summarize(population []*Individual, generation, evaluations int) model.GenerationRecord {
	fitness := make([]float64, len(population))
	sizes := make([]float64, len(population))
	for i, ind := range population {
		fitness[i] = ind.Fitness
		sizes[i] = float64(ind.Size())
	}
	return model.GenerationRecord{
		Generation:  generation,
		Evaluations: evaluations,
		Fitness:     summarizeValues(fitness),
		Size:        summarizeValues(sizes),
	}
}

func summarizeValues(values []float64) model.ValueSummary {
	if len(values) == 0 {
		return model.ValueSummary{}
	}
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		min = math.Min(min, v)
		max = math.Max(max, v)
	}
	std := 0.0
	if len(values) > 1 {
		std = stat.StdDev(values, nil)
	}
	return model.ValueSummary{
		Min:  min,
		Max:  max,
		Mean: stat.Mean(values, nil),
		Std:  std,
	}
}
