package main

// stats indexes one set of the multi-task dataset, writes a CSV with one row
// per sample and plots sample counts per category, person and posture.
//
// Usage:
//   go run ./cmd/stats -basepath /datasets/NICR-Multi-Task-Dataset -set train -batch-size 32
//   go run ./cmd/stats -config stats.json -set valid

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Noofbiz/multitask/datasets"
)

func main() {
	cfg, err := parseConfig(os.Args[0], os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("stats failed", zap.Error(err))
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(cfg Config, logger *zap.Logger) error {
	ds, err := datasets.LoadSet(cfg.Basepath, cfg.Set, datasets.WithLogger(logger))
	if err != nil {
		return err
	}
	if cfg.BatchSize > 0 {
		before := ds.Len()
		if err := ds.StripToMultipleOfBatchSize(cfg.BatchSize); err != nil {
			return err
		}
		logger.Info("stripped to batch multiple", zap.Int("batch_size", cfg.BatchSize),
			zap.Int("before", before), zap.Int("after", ds.Len()))
	}

	var out io.Writer
	if cfg.OutCSV != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.OutCSV), 0o755); err != nil {
			return err
		}
		f, err := os.Create(cfg.OutCSV)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", cfg.OutCSV, err)
		}
		defer f.Close()
		out = f
	}

	stats, err := collect(ds, cfg.ReadAnnotations, out, logger)
	if err != nil {
		return err
	}
	if cfg.OutCSV != "" {
		logger.Info("wrote sample index", zap.String("path", cfg.OutCSV), zap.Int("rows", stats.Total))
	}

	fmt.Printf("%s set: %d samples\n", cfg.Set, stats.Total)
	printCounts("category", stats.ByCategory)
	printCounts("person", stats.ByPerson)
	if cfg.ReadAnnotations {
		printCounts("posture", stats.ByPosture)
	}

	if cfg.PlotDir == "" {
		return nil
	}
	charts := []struct {
		name, title string
		counts      map[string]int
	}{
		{"categories", fmt.Sprintf("Samples per category (%s)", cfg.Set), stats.ByCategory},
		{"persons", fmt.Sprintf("Samples per person (%s)", cfg.Set), stats.ByPerson},
		{"postures", fmt.Sprintf("Samples per posture (%s)", cfg.Set), stats.ByPosture},
	}
	for _, c := range charts {
		if len(c.counts) == 0 {
			continue
		}
		path, err := plotCounts(cfg.PlotDir, c.name, c.title, c.counts)
		if err != nil {
			return err
		}
		logger.Info("wrote plot", zap.String("path", path))
	}
	return nil
}

func printCounts(label string, counts map[string]int) {
	fmt.Printf("  by %s:\n", label)
	for _, k := range sortedKeys(counts) {
		fmt.Printf("    %-40s %d\n", k, counts[k])
	}
}
