package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"symdyn/internal/dataset"
	"symdyn/internal/dynamics"
	"symdyn/internal/stats"
	"symdyn/internal/storage"
	"symdyn/pkg/symdyn"
)

const artifactsDir = "runs"

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "run":
		return runRun(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "log":
		return runLog(ctx, args[1:])
	case "best":
		return runBest(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional run config JSON path")
	system := fs.String("system", "linear2d", "synthetic system: linear2d|vanderpol|lorenz")
	samples := fs.Int("samples", 400, "trajectory sample count")
	dt := fs.Float64("dt", 0.01, "sample spacing")
	dataPath := fs.String("data", "", "observed trajectory CSV path (overrides -system)")
	dataHeader := fs.Bool("data-header", true, "trajectory CSV has a header row")
	timeCol := fs.String("time-col", "", "trajectory CSV time column name (empty: no time column)")
	stateCols := fs.String("state-cols", "", "comma-separated state column names (empty: all non-time columns)")
	normalize := fs.String("normalize", "none", "trajectory normalization: none|minmax|zscore")
	ntrees := fs.Int("ntrees", 5, "trees per individual")
	maxDepth := fs.Int("max-depth", 2, "tree height limit")
	population := fs.Int("pop", 300, "population size")
	generations := fs.Int("gens", 5, "generation count")
	cxpb := fs.Float64("cxpb", 0.7, "crossover probability")
	mutpb := fs.Float64("mutpb", 0.8, "mutation probability")
	split := fs.Float64("split", 0.8, "fit/score split ratio")
	metric := fs.String("metric", "r2", "fitness metric: r2|neg_mse|neg_mae")
	sparsity := fs.String("sparsity", "n_zero_nodes", "sparsity penalty: n_zero_nodes|none")
	threshold := fs.Float64("threshold", 0.1, "optimizer pruning threshold")
	ridge := fs.Float64("ridge", 0.05, "optimizer ridge regularization")
	seed := fs.Int64("seed", 1, "rng seed")
	workers := fs.Int("workers", 4, "worker count")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "symdyn.db", "sqlite database path")
	outDir := fs.String("artifacts-dir", artifactsDir, "run artifacts directory")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := runFileConfig{
		System:      *system,
		Samples:     *samples,
		DT:          *dt,
		NTrees:      *ntrees,
		MaxDepth:    *maxDepth,
		Population:  *population,
		Generations: *generations,
		CXPB:        *cxpb,
		MutPB:       *mutpb,
		Split:       *split,
		Metric:      *metric,
		Sparsity:    *sparsity,
		Threshold:   *threshold,
		Ridge:       *ridge,
		Seed:        *seed,
		Workers:     *workers,
	}
	if *configPath != "" {
		loaded, err := loadRunConfig(*configPath)
		if err != nil {
			return err
		}
		cfg = cfg.merge(loaded)
	}

	var (
		x, xDot [][]float64
		ts      []float64
		label   string
		dims    int
	)
	if *dataPath != "" {
		traj, err := loadTrajectoryFile(*dataPath, *dataHeader, *timeCol, *stateCols, *normalize)
		if err != nil {
			return err
		}
		x = traj.X
		ts = traj.Times
		label = "csv:" + filepath.Base(*dataPath)
		dims = len(traj.Names)
	} else {
		sys, err := dynamics.ByName(cfg.System)
		if err != nil {
			return err
		}
		if cfg.Samples < 2 {
			return errors.New("samples must be >= 2")
		}
		ts = dynamics.TimeGrid(0, float64(cfg.Samples-1)*cfg.DT, cfg.Samples)
		x, xDot, err = dynamics.Observe(sys, sys.DefaultInitial(), ts)
		if err != nil {
			return err
		}
		label = cfg.System
		dims = sys.Dims()
	}

	reg, err := symdyn.NewRegressor(symdyn.Options{
		System:         label,
		Dims:           dims,
		NTrees:         cfg.NTrees,
		MaxDepth:       cfg.MaxDepth,
		PopulationSize: cfg.Population,
		Generations:    cfg.Generations,
		CrossoverProb:  cfg.CXPB,
		MutationProb:   cfg.MutPB,
		SplitRatio:     cfg.Split,
		Metric:         cfg.Metric,
		Sparsity:       cfg.Sparsity,
		Threshold:      cfg.Threshold,
		Ridge:          cfg.Ridge,
		Seed:           cfg.Seed,
		Workers:        cfg.Workers,
		StoreKind:      *storeKind,
		DBPath:         *dbPath,
		ArtifactsDir:   *outDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = reg.Close()
	}()

	fit := symdyn.FitOptions{XDot: xDot, TimePoints: ts}
	if ts == nil {
		fit.TimeStep = cfg.DT
	}
	summary, err := reg.Fit(ctx, x, fit)
	if err != nil {
		return err
	}

	fmt.Printf("run=%s system=%s best_fitness=%.6f artifacts=%s\n",
		summary.RunID, label, summary.BestFitness, summary.ArtifactsDir)
	for _, eq := range summary.Equations {
		fmt.Println(eq)
	}
	return nil
}

func runRuns(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	outDir := fs.String("artifacts-dir", artifactsDir, "run artifacts directory")
	limit := fs.Int("limit", 20, "maximum runs to list")
	asJSON := fs.Bool("json", false, "emit JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	entries, err := stats.ListRunIndex(*outDir)
	if err != nil {
		return err
	}
	if len(entries) > *limit {
		entries = entries[:*limit]
	}

	if *asJSON {
		return printJSON(entries)
	}
	for _, e := range entries {
		fmt.Printf("%s  %s  system=%s pop=%d gens=%d seed=%d best=%.6f\n",
			e.CreatedAtUTC, e.RunID, e.System, e.PopulationSize, e.Generations, e.Seed, e.FinalBestFitness)
	}
	return nil
}

func runLog(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("log", flag.ContinueOnError)
	outDir := fs.String("artifacts-dir", artifactsDir, "run artifacts directory")
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "use the most recent run")
	asJSON := fs.Bool("json", false, "emit JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	id, err := resolveRunID(*outDir, *runID, *latest)
	if err != nil {
		return err
	}

	log, ok, err := stats.ReadGenerationLog(*outDir, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("generation log not found for run id: %s", id)
	}

	if *asJSON {
		return printJSON(log)
	}
	for _, rec := range log {
		fmt.Printf("gen=%d evals=%d fitness[min=%.4f max=%.4f mean=%.4f std=%.4f] size[mean=%.2f]\n",
			rec.Generation, rec.Evaluations,
			rec.Fitness.Min, rec.Fitness.Max, rec.Fitness.Mean, rec.Fitness.Std,
			rec.Size.Mean)
	}
	return nil
}

func runBest(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("best", flag.ContinueOnError)
	outDir := fs.String("artifacts-dir", artifactsDir, "run artifacts directory")
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "use the most recent run")
	asJSON := fs.Bool("json", false, "emit JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	id, err := resolveRunID(*outDir, *runID, *latest)
	if err != nil {
		return err
	}

	best, ok, err := stats.ReadBestModel(*outDir, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("best model not found for run id: %s", id)
	}

	if *asJSON {
		return printJSON(best)
	}
	fmt.Printf("run=%s fitness=%.6f\n", best.RunID, best.Fitness)
	for i, name := range best.FeatureNames {
		fmt.Printf("feature %d: %s\n", i, name)
	}
	for _, eq := range best.Equations {
		fmt.Println(eq)
	}
	return nil
}

func loadTrajectoryFile(path string, hasHeader bool, timeCol, stateCols, normalize string) (dataset.Trajectory, error) {
	file, err := os.Open(path)
	if err != nil {
		return dataset.Trajectory{}, err
	}
	defer file.Close()

	opts := dataset.TrajectoryOptions{
		HasHeader:       hasHeader,
		TimeColumnName:  timeCol,
		TimeColumnIndex: -1,
		Normalize:       normalize,
	}
	if stateCols != "" {
		for _, name := range strings.Split(stateCols, ",") {
			opts.StateColumnNames = append(opts.StateColumnNames, strings.TrimSpace(name))
		}
	}
	return dataset.LoadTrajectoryCSV(file, opts)
}

func resolveRunID(baseDir, runID string, latest bool) (string, error) {
	if runID != "" && latest {
		return "", errors.New("use either run id or latest")
	}
	if runID != "" {
		return runID, nil
	}
	if !latest {
		return "", errors.New("run id or latest is required")
	}
	entries, err := stats.ListRunIndex(baseDir)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", errors.New("no runs available")
	}
	return entries[0].RunID, nil
}

func printJSON(value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: symdynctl <run|runs|log|best> [flags]", msg)
}
