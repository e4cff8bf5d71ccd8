// Package symdyn is the public entry point: it evolves sparse symbolic models
// of dynamical systems from observed trajectories and persists run artifacts.
package symdyn

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"symdyn/internal/evo"
	"symdyn/internal/expr"
	"symdyn/internal/metrics"
	"symdyn/internal/model"
	"symdyn/internal/sindy"
	"symdyn/internal/stats"
	"symdyn/internal/storage"
)

const (
	defaultArtifactsDir = "runs"
	defaultDBPath       = "symdyn.db"
)

// Options configure a Regressor. Zero values take the defaults noted per
// field.
type Options struct {
	// System is an optional label recorded with the run.
	System string

	Dims          int // state dimensions, default 2
	NConstants    int // symbolic constant slots, default 0
	TimeDependent bool
	// ConstantValues bind the symbolic-constant slots; defaults to all ones.
	ConstantValues []float64

	NTrees         int     // trees per individual, default 5
	MaxDepth       int     // tree height limit, default 2
	PopulationSize int     // default 300
	Generations    int     // default 5
	CrossoverProb  float64 // default 0.7
	MutationProb   float64 // default 0.8
	SplitRatio     float64 // fit/score split, default 0.8
	Metric         string  // r2 | neg_mse | neg_mae, default r2
	// Sparsity selects the size penalty: n_zero_nodes (default) or none.
	Sparsity  string
	Threshold float64 // optimizer pruning threshold, default 0.1
	Ridge     float64 // optimizer ridge regularization, default 0.05
	Seed      int64
	Workers   int // default 4

	StoreKind    string // memory | sqlite
	DBPath       string
	ArtifactsDir string
}

func (o Options) withDefaults() Options {
	if o.Dims <= 0 {
		o.Dims = 2
	}
	if o.NTrees <= 0 {
		o.NTrees = 5
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = 2
	}
	if o.PopulationSize <= 0 {
		o.PopulationSize = 300
	}
	if o.Generations <= 0 {
		o.Generations = 5
	}
	if o.CrossoverProb <= 0 {
		o.CrossoverProb = 0.7
	}
	if o.MutationProb <= 0 {
		o.MutationProb = 0.8
	}
	if o.SplitRatio <= 0 {
		o.SplitRatio = 0.8
	}
	if o.Metric == "" {
		o.Metric = "r2"
	}
	if o.Sparsity == "" {
		o.Sparsity = "n_zero_nodes"
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.DBPath == "" {
		o.DBPath = defaultDBPath
	}
	if o.ArtifactsDir == "" {
		o.ArtifactsDir = defaultArtifactsDir
	}
	return o
}

// FitOptions carry the per-call inputs of Fit beyond the trajectory itself.
type FitOptions struct {
	// XDot are the observed derivatives; nil means finite differences.
	XDot [][]float64
	// TimeStep is the uniform sample spacing. Ignored when TimePoints is set;
	// zero means unit spacing.
	TimeStep float64
	// TimePoints are explicit sample times, one per trajectory row.
	TimePoints []float64
}

// FitSummary reports a completed fit.
type FitSummary struct {
	RunID            string
	ArtifactsDir     string
	BestFitness      float64
	BestByGeneration []float64
	Equations        []string
	Expressions      []string
}

// ScoreSummary holds the state-trajectory score and, when derivative data was
// supplied and scorable, the derivative score.
type ScoreSummary struct {
	State      float64
	Derivative *float64
}

// Regressor evolves a library of candidate expressions and fits a sparse
// dynamics model over the winner. A Regressor is single-run: Fit replaces any
// previous result.
type Regressor struct {
	opts   Options
	metric metrics.Metric
	store  storage.Store

	ps     *expr.PrimitiveSet
	result *evo.Result
	runID  string
}

// NewRegressor validates the options and opens the backing store.
func NewRegressor(opts Options) (*Regressor, error) {
	opts = opts.withDefaults()

	metric, err := metricFromName(opts.Metric)
	if err != nil {
		return nil, err
	}
	switch opts.Sparsity {
	case "n_zero_nodes", "none":
	default:
		return nil, fmt.Errorf("unsupported sparsity mode: %s", opts.Sparsity)
	}
	if opts.NConstants < 0 {
		return nil, fmt.Errorf("n constants must be >= 0")
	}
	if opts.ConstantValues != nil && len(opts.ConstantValues) != opts.NConstants {
		return nil, fmt.Errorf("got %d constant values, want %d", len(opts.ConstantValues), opts.NConstants)
	}
	if opts.SplitRatio > 1 {
		return nil, fmt.Errorf("split ratio must be in (0, 1]")
	}

	ps, err := expr.NewPrimitiveSet(expr.Config{
		Dims:          opts.Dims,
		Constants:     opts.NConstants,
		TimeDependent: opts.TimeDependent,
	})
	if err != nil {
		return nil, err
	}

	store, err := storage.NewStore(opts.StoreKind, opts.DBPath)
	if err != nil {
		return nil, err
	}

	return &Regressor{opts: opts, metric: metric, store: store, ps: ps}, nil
}

func (r *Regressor) Close() error {
	return storage.CloseIfSupported(r.store)
}

// Fit runs the evolutionary search over the trajectory and persists the run:
// artifacts on disk plus records in the store.
func (r *Regressor) Fit(ctx context.Context, x [][]float64, fit FitOptions) (FitSummary, error) {
	if len(x) == 0 {
		return FitSummary{}, errors.New("training trajectory is required")
	}
	for i, row := range x {
		if len(row) != r.opts.Dims {
			return FitSummary{}, fmt.Errorf("sample %d has %d dims, want %d", i, len(row), r.opts.Dims)
		}
	}
	if fit.TimePoints != nil && len(fit.TimePoints) != len(x) {
		return FitSummary{}, fmt.Errorf("got %d time points for %d samples", len(fit.TimePoints), len(x))
	}

	ts := sindy.TimeSpec{Step: fit.TimeStep, Points: fit.TimePoints}
	evaluator := &evo.Evaluator{
		PSet:      r.ps,
		MaxDepth:  r.opts.MaxDepth,
		XTrain:    x,
		XDotTrain: fit.XDot,
		Time:      ts,
		SindyOptions: sindy.Options{
			Threshold: r.opts.Threshold,
			Ridge:     r.opts.Ridge,
		},
		Metric:          r.metric,
		SplitRatio:      r.opts.SplitRatio,
		SparsityPenalty: r.opts.Sparsity == "n_zero_nodes",
		ConstantValues:  r.opts.ConstantValues,
	}
	driver, err := evo.NewDriver(evo.DriverConfig{
		Evaluator:      evaluator,
		PopulationSize: r.opts.PopulationSize,
		Generations:    r.opts.Generations,
		NTrees:         r.opts.NTrees,
		MinDepth:       0,
		CrossoverProb:  r.opts.CrossoverProb,
		MutationProb:   r.opts.MutationProb,
		LeafBias:       0.5,
		TournamentSize: 2,
		Workers:        r.opts.Workers,
		Seed:           r.opts.Seed,
	})
	if err != nil {
		return FitSummary{}, err
	}

	result, err := driver.Run(ctx)
	if err != nil {
		return FitSummary{}, err
	}
	r.result = &result

	now := time.Now().UTC()
	r.runID = uuid.NewString()
	summary := FitSummary{
		RunID:            r.runID,
		BestFitness:      result.BestFitness,
		BestByGeneration: bestByGeneration(result.Log),
		Equations:        result.Model.Equations(),
		Expressions:      result.Best.Expressions(r.ps),
	}

	runDir, err := r.persist(ctx, now, summary, result)
	if err != nil {
		return FitSummary{}, err
	}
	summary.ArtifactsDir = filepath.Clean(runDir)
	return summary, nil
}

func (r *Regressor) persist(ctx context.Context, now time.Time, summary FitSummary, result evo.Result) (string, error) {
	versioned := model.VersionedRecord{
		SchemaVersion: storage.CurrentSchemaVersion,
		CodecVersion:  storage.CurrentCodecVersion,
	}
	createdAt := now.Format(time.RFC3339Nano)

	runDir, err := stats.WriteRunArtifacts(r.opts.ArtifactsDir, stats.RunArtifacts{
		Config: stats.RunConfig{
			RunID:          summary.RunID,
			System:         r.opts.System,
			Dims:           r.opts.Dims,
			NConstants:     r.opts.NConstants,
			TimeDependent:  r.opts.TimeDependent,
			NTrees:         r.opts.NTrees,
			MaxDepth:       r.opts.MaxDepth,
			PopulationSize: r.opts.PopulationSize,
			Generations:    r.opts.Generations,
			CrossoverProb:  r.opts.CrossoverProb,
			MutationProb:   r.opts.MutationProb,
			SplitRatio:     r.opts.SplitRatio,
			Metric:         r.opts.Metric,
			Threshold:      r.opts.Threshold,
			Ridge:          r.opts.Ridge,
			Seed:           r.opts.Seed,
			Workers:        r.opts.Workers,
		},
		GenerationLog:    result.Log,
		BestByGeneration: summary.BestByGeneration,
		FinalBestFitness: result.BestFitness,
		BestModel: model.BestModelRecord{
			VersionedRecord: versioned,
			RunID:           summary.RunID,
			Fitness:         result.BestFitness,
			FeatureNames:    summary.Expressions,
			Coefficients:    result.Model.Coefficients(),
			Equations:       summary.Equations,
		},
	})
	if err != nil {
		return "", err
	}
	if err := stats.AppendRunIndex(r.opts.ArtifactsDir, stats.RunIndexEntry{
		RunID:            summary.RunID,
		System:           r.opts.System,
		PopulationSize:   r.opts.PopulationSize,
		Generations:      r.opts.Generations,
		Seed:             r.opts.Seed,
		FinalBestFitness: result.BestFitness,
		CreatedAtUTC:     createdAt,
	}); err != nil {
		return "", err
	}

	if err := r.store.Init(ctx); err != nil {
		return "", err
	}
	if err := r.store.SaveRun(ctx, model.RunRecord{
		VersionedRecord: versioned,
		ID:              summary.RunID,
		CreatedAtUTC:    createdAt,
		System:          r.opts.System,
		Dims:            r.opts.Dims,
		NConstants:      r.opts.NConstants,
		NTrees:          r.opts.NTrees,
		PopulationSize:  r.opts.PopulationSize,
		Generations:     r.opts.Generations,
		Seed:            r.opts.Seed,
		SplitRatio:      r.opts.SplitRatio,
		BestFitness:     result.BestFitness,
	}); err != nil {
		return "", err
	}
	if err := r.store.SaveFitnessHistory(ctx, summary.RunID, summary.BestByGeneration); err != nil {
		return "", err
	}
	if err := r.store.SaveGenerationLog(ctx, summary.RunID, result.Log); err != nil {
		return "", err
	}
	if err := r.store.SaveBestModel(ctx, model.BestModelRecord{
		VersionedRecord: versioned,
		RunID:           summary.RunID,
		Fitness:         result.BestFitness,
		FeatureNames:    summary.Expressions,
		Coefficients:    result.Model.Coefficients(),
		Equations:       summary.Equations,
	}); err != nil {
		return "", err
	}
	return runDir, nil
}

// Predict simulates the identified system from x0 over the time points and
// returns the simulated trajectory alongside its predicted derivatives.
func (r *Regressor) Predict(x0 []float64, t []float64) (x, xDot [][]float64, err error) {
	if r.result == nil {
		return nil, nil, errors.New("regressor is not fitted")
	}
	x, err = r.result.Model.Simulate(x0, t)
	if err != nil {
		return nil, nil, err
	}
	xDot, err = r.result.Model.Predict(x, sindy.TimeSpec{Points: t})
	if err != nil {
		return nil, nil, err
	}
	return x, xDot, nil
}

// Score compares observed against predicted trajectories. The derivative
// score is reported only when both derivative arguments are present and the
// metric succeeds on them.
func (r *Regressor) Score(x, xPred, xDot, xDotPred [][]float64) (ScoreSummary, error) {
	state, err := r.metric(x, xPred)
	if err != nil {
		return ScoreSummary{}, err
	}

	summary := ScoreSummary{State: state}
	if xDot != nil && xDotPred != nil {
		if deriv, err := r.metric(xDot, xDotPred); err == nil {
			summary.Derivative = &deriv
		}
	}
	return summary, nil
}

// Equations renders the identified system, one line per state dimension.
func (r *Regressor) Equations() ([]string, error) {
	if r.result == nil {
		return nil, errors.New("regressor is not fitted")
	}
	return r.result.Model.Equations(), nil
}

// Expressions renders the winning individual's feature expressions.
func (r *Regressor) Expressions() ([]string, error) {
	if r.result == nil {
		return nil, errors.New("regressor is not fitted")
	}
	return r.result.Best.Expressions(r.ps), nil
}

// RunID returns the persisted id of the last fit.
func (r *Regressor) RunID() string { return r.runID }

func bestByGeneration(log []model.GenerationRecord) []float64 {
	best := make([]float64, 0, len(log))
	for _, rec := range log {
		best = append(best, rec.Fitness.Max)
	}
	return best
}

func metricFromName(name string) (metrics.Metric, error) {
	switch name {
	case "r2":
		return metrics.R2, nil
	case "neg_mse":
		return metrics.NegMSE, nil
	case "neg_mae":
		return metrics.NegMAE, nil
	default:
		return nil, fmt.Errorf("unsupported metric: %s", name)
	}
}
