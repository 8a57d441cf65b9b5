package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"flappyevo/internal/config"
	"flappyevo/internal/logging"
	"flappyevo/internal/sim"
	"flappyevo/internal/storage"
)

func main() {
	configPath := flag.String("config", "configs/default.yaml", "path to config file")
	generations := flag.Int("generations", -1, "number of generations to run (0 runs until interrupted, -1 uses the config)")
	seed := flag.Int64("seed", 0, "random seed (0 uses the config, then the clock)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *generations >= 0 {
		cfg.Sim.Generations = *generations
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	logger, err := logging.NewLogger(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *configPath, logger); err != nil {
		logger.Error("training failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, configPath string, logger *slog.Logger) error {
	runID := uuid.NewString()

	store, err := storage.NewStore(cfg.Logging.Store, cfg.Logging.StorePath)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	if store != nil {
		if err := store.Init(ctx); err != nil {
			return fmt.Errorf("initializing store: %w", err)
		}
		defer store.Close()

		snapshot, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("marshaling config: %w", err)
		}
		meta := storage.Run{ID: runID, Seed: cfg.Seed, StartedAt: time.Now(), Config: string(snapshot)}
		if err := store.SaveRun(ctx, meta); err != nil {
			return fmt.Errorf("saving run: %w", err)
		}
	}

	if cfg.Logging.CSVPath != "" {
		snapshotPath := filepath.Join(filepath.Dir(cfg.Logging.CSVPath), "config.yaml")
		if err := cfg.WriteYAML(snapshotPath); err != nil {
			logger.Warn("config snapshot failed", "path", snapshotPath, "error", err)
		}
	}

	rec, err := logging.NewRecorder(logging.RecorderOptions{
		CSVPath:  cfg.Logging.CSVPath,
		JSONPath: cfg.Logging.JSONPath,
		Store:    store,
		RunID:    runID,
		TopN:     cfg.Logging.TopN,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	defer rec.Close()

	s := sim.NewFromConfig(cfg, cfg.Seed, logger)

	var best float64
	var recordErr error
	s.OnGeneration = func(r sim.GenerationReport) {
		if len(r.Fitness) > 0 && r.Fitness[0] > best {
			best = r.Fitness[0]
		}
		if err := rec.Record(ctx, r); err != nil && recordErr == nil {
			recordErr = err
			logger.Error("recording generation failed", "generation", r.Generation, "error", err)
		}
	}

	logger.Info("training started",
		"run_id", runID,
		"config", configPath,
		"seed", cfg.Seed,
		"population", s.Population().Size(),
		"activation", cfg.NN.Activation,
		"bias", cfg.NN.Bias,
		"mutation_step", cfg.NN.MutationStep,
		"generations", cfg.Sim.Generations,
	)

	start := time.Now()
	err = s.RunGenerations(ctx, cfg.Physics.TickDT, cfg.Sim.Generations)
	if errors.Is(err, context.Canceled) {
		logger.Info("training interrupted", "generation", s.Generation())
		err = nil
	}
	if err != nil {
		return err
	}

	logger.Info("training complete",
		"run_id", runID,
		"generations", s.Generation(),
		"best_fitness", best,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return recordErr
}
