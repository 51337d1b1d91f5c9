// Command gofstrips solves planning problems described in YAML using the
// relaxed-planning-graph heuristics.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/gitrdm/gofstrips/pkg/loader"
	"github.com/gitrdm/gofstrips/pkg/rpg"
	"github.com/gitrdm/gofstrips/pkg/search"
)

// fileConfig mirrors the optional YAML configuration file. Timeout is a
// Go duration string such as "30s".
type fileConfig struct {
	Heuristic rpg.Config `yaml:"heuristic"`
	Search    struct {
		Workers int    `yaml:"workers"`
		Timeout string `yaml:"timeout"`
	} `yaml:"search"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

func defaultFileConfig() fileConfig {
	var cfg fileConfig
	cfg.Heuristic = rpg.DefaultConfig()
	cfg.Search.Workers = 1
	cfg.Logging.Level = "info"
	return cfg
}

var (
	flagProblem   string
	flagConfig    string
	flagHeuristic string
	flagMaxLayers int
	flagWorkers   int
	flagTimeout   time.Duration
	flagLogLevel  string
	flagValidate  bool
)

func main() {
	root := &cobra.Command{
		Use:   "gofstrips",
		Short: "A forward-search planner for finite-domain functional STRIPS problems",
	}

	solve := &cobra.Command{
		Use:   "solve",
		Short: "Solve a YAML problem description and print the plan",
		RunE:  runSolve,
	}
	solve.Flags().StringVarP(&flagProblem, "problem", "p", "", "path to the YAML problem description (required)")
	solve.Flags().StringVarP(&flagConfig, "config", "c", "", "path to an optional YAML configuration file")
	solve.Flags().StringVar(&flagHeuristic, "heuristic", "", "heuristic variant: direct_crpg, direct_hmax or unreached_atom")
	solve.Flags().IntVar(&flagMaxLayers, "max-layers", 0, "cap on relaxed graph layers per evaluation (0 = from config; unbounded by default)")
	solve.Flags().IntVar(&flagWorkers, "workers", 0, "parallel heuristic evaluations per expansion (0 = from config)")
	solve.Flags().DurationVar(&flagTimeout, "timeout", 0, "overall search timeout (0 = none)")
	solve.Flags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn or error")
	solve.Flags().BoolVar(&flagValidate, "validate", true, "replay the plan from the initial state before reporting it")
	_ = solve.MarkFlagRequired("problem")
	root.AddCommand(solve)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runSolve(cmd *cobra.Command, _ []string) error {
	cfg := defaultFileConfig()
	if flagConfig != "" {
		data, err := os.ReadFile(flagConfig)
		if err != nil {
			return err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	if flagHeuristic != "" {
		cfg.Heuristic.Variant = rpg.Variant(flagHeuristic)
	}
	if flagMaxLayers > 0 {
		cfg.Heuristic.MaxLayers = flagMaxLayers
	}
	if flagWorkers > 0 {
		cfg.Search.Workers = flagWorkers
	}
	timeout := flagTimeout
	if timeout == 0 && cfg.Search.Timeout != "" {
		parsed, err := time.ParseDuration(cfg.Search.Timeout)
		if err != nil {
			return fmt.Errorf("config: search.timeout: %w", err)
		}
		timeout = parsed
	}
	if flagLogLevel != "" {
		cfg.Logging.Level = flagLogLevel
	}

	log, err := buildLogger(cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	problem, err := loader.LoadFile(flagProblem)
	if err != nil {
		return err
	}
	log.Info("problem loaded",
		zap.String("path", flagProblem),
		zap.Int("variables", problem.Info.NumVariables()),
		zap.Int("atoms", problem.Atoms.Size()),
		zap.Int("ground_actions", len(problem.Ground)))

	heuristic, err := rpg.New(problem, cfg.Heuristic, log.Named("heuristic"))
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	engine := search.NewEngine(problem, heuristic, cfg.Search.Workers, log.Named("search"))
	started := time.Now()
	result, err := engine.Solve(ctx)
	if err != nil {
		return err
	}
	if flagValidate {
		ok, err := search.Validate(problem, result.Plan)
		if err != nil {
			return fmt.Errorf("plan validation: %w", err)
		}
		if !ok {
			return fmt.Errorf("plan validation: goal not reached")
		}
	}

	fmt.Printf("; run %s, %d expanded, %d evaluated, %s\n",
		result.Stats.RunID, result.Stats.Expanded, result.Stats.Evaluated, time.Since(started).Round(time.Millisecond))
	for step, idx := range result.Plan {
		fmt.Printf("%d: (%s)\n", step, problem.Ground[idx].Name)
	}
	fmt.Printf("; plan length %d\n", len(result.Plan))
	return nil
}

func buildLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}
