package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
)

// Config holds the settings of the stats command. Values come from an
// optional JSON file; flags set explicitly on the command line take
// precedence over the file.
type Config struct {
	Basepath  string `json:"basepath"`
	Set       string `json:"set"`
	BatchSize int    `json:"batch_size"`
	OutCSV    string `json:"out_csv"`
	PlotDir   string `json:"plot_dir"`
	// ReadAnnotations reads every annotation to count postures. Without it
	// only path-derived fields are reported.
	ReadAnnotations bool `json:"read_annotations"`
	Debug           bool `json:"debug"`
}

// defaultConfig mirrors the flag defaults.
func defaultConfig() Config {
	return Config{
		Basepath:        "../../assets/NICR-Multi-Task-Dataset",
		Set:             "train",
		BatchSize:       0,
		OutCSV:          "output/samples.csv",
		PlotDir:         "plots",
		ReadAnnotations: true,
	}
}

// registerFlags binds cfg's fields to flags on fs.
func registerFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.Basepath, "basepath", cfg.Basepath, "dataset root directory")
	fs.StringVar(&cfg.Set, "set", cfg.Set, "set to load: train, valid or test")
	fs.IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "if > 0, strip the set to a multiple of this batch size first")
	fs.StringVar(&cfg.OutCSV, "out-csv", cfg.OutCSV, "path of the per-sample CSV index (empty disables it)")
	fs.StringVar(&cfg.PlotDir, "out", cfg.PlotDir, "output directory for plots (empty disables plotting)")
	fs.BoolVar(&cfg.ReadAnnotations, "read-annotations", cfg.ReadAnnotations, "read annotations to report postures")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "enable debug logging")
}

// parseConfig parses args into a Config. A -config file is applied first and
// then every flag the user passed explicitly is re-applied on top of it.
func parseConfig(name string, args []string) (Config, error) {
	cfg := defaultConfig()
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	configPath := fs.String("config", "", "path to a JSON config file (optional)")
	registerFlags(fs, &cfg)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if *configPath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(*configPath)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", *configPath, err)
	}
	fileCfg := defaultConfig()
	if err := json.Unmarshal(data, &fileCfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", *configPath, err)
	}

	// replay explicit flags onto the file values
	explicit := flag.NewFlagSet(name, flag.ContinueOnError)
	registerFlags(explicit, &fileCfg)
	var replayErr error
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "config" || replayErr != nil {
			return
		}
		replayErr = explicit.Set(f.Name, f.Value.String())
	})
	if replayErr != nil {
		return Config{}, replayErr
	}
	return fileCfg, nil
}
