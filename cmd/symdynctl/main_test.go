package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"symdyn/internal/dynamics"
	"symdyn/internal/stats"
)

func TestRunCommandEndToEnd(t *testing.T) {
	outDir := t.TempDir()

	err := run(context.Background(), []string{"run",
		"-system", "linear2d",
		"-samples", "80",
		"-pop", "16",
		"-gens", "2",
		"-ntrees", "3",
		"-seed", "7",
		"-workers", "2",
		"-store", "memory",
		"-artifacts-dir", outDir,
	})
	if err != nil {
		t.Fatalf("run command: %v", err)
	}

	entries, err := stats.ListRunIndex(outDir)
	if err != nil {
		t.Fatalf("list run index: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 indexed run, got %d", len(entries))
	}

	if err := run(context.Background(), []string{"runs", "-artifacts-dir", outDir}); err != nil {
		t.Fatalf("runs command: %v", err)
	}
	if err := run(context.Background(), []string{"log", "-artifacts-dir", outDir, "-latest"}); err != nil {
		t.Fatalf("log command: %v", err)
	}
	if err := run(context.Background(), []string{"best", "-artifacts-dir", outDir, "-latest", "-json"}); err != nil {
		t.Fatalf("best command: %v", err)
	}
}

func TestRunCommandWithCSVData(t *testing.T) {
	outDir := t.TempDir()
	dataPath := filepath.Join(t.TempDir(), "traj.csv")

	var sb []byte
	sb = append(sb, []byte("t,x0,x1\n")...)
	sys, err := dynamics.ByName("linear2d")
	if err != nil {
		t.Fatalf("system: %v", err)
	}
	ts := dynamics.TimeGrid(0, 0.6, 61)
	x, _, err := dynamics.Observe(sys, sys.DefaultInitial(), ts)
	if err != nil {
		t.Fatalf("observe: %v", err)
	}
	for i := range x {
		sb = append(sb, []byte(fmt.Sprintf("%g,%g,%g\n", ts[i], x[i][0], x[i][1]))...)
	}
	if err := os.WriteFile(dataPath, sb, 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	err = run(context.Background(), []string{"run",
		"-data", dataPath,
		"-time-col", "t",
		"-pop", "12",
		"-gens", "1",
		"-ntrees", "2",
		"-seed", "3",
		"-store", "memory",
		"-artifacts-dir", outDir,
	})
	if err != nil {
		t.Fatalf("run with csv: %v", err)
	}

	entries, err := stats.ListRunIndex(outDir)
	if err != nil {
		t.Fatalf("list run index: %v", err)
	}
	if len(entries) != 1 || entries[0].System != "csv:traj.csv" {
		t.Fatalf("run index: %+v", entries)
	}
}

func TestRunCommandUnknownSystem(t *testing.T) {
	err := run(context.Background(), []string{"run",
		"-system", "nope",
		"-store", "memory",
		"-artifacts-dir", t.TempDir(),
	})
	if err == nil {
		t.Fatal("expected error for unknown system")
	}
}

func TestCommandDispatch(t *testing.T) {
	if err := run(context.Background(), nil); err == nil {
		t.Fatal("expected usage error for missing command")
	}
	if err := run(context.Background(), []string{"bogus"}); err == nil {
		t.Fatal("expected usage error for unknown command")
	}
	if err := run(context.Background(), []string{"log", "-artifacts-dir", t.TempDir()}); err == nil {
		t.Fatal("expected error without run id or latest")
	}
	if err := run(context.Background(), []string{"log", "-artifacts-dir", t.TempDir(), "-run-id", "a", "-latest"}); err == nil {
		t.Fatal("expected error for run id and latest together")
	}
}

func TestLoadRunConfigAndMerge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	body := []byte(`{"system":"vanderpol","population":24,"seed":99,"metric":"neg_mse"}`)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	loaded, err := loadRunConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	base := runFileConfig{System: "linear2d", Samples: 400, Population: 300, Metric: "r2", Seed: 1}
	merged := base.merge(loaded)
	if merged.System != "vanderpol" || merged.Population != 24 || merged.Seed != 99 || merged.Metric != "neg_mse" {
		t.Fatalf("merge: %+v", merged)
	}
	if merged.Samples != 400 {
		t.Fatalf("merge clobbered unset field: %+v", merged)
	}

	if _, err := loadRunConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
