package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flappyevo/internal/config"
	"flappyevo/internal/env"
	"flappyevo/internal/logging"
	"flappyevo/internal/sim"
)

func main() {
	configPath := flag.String("config", "configs/default.yaml", "path to config file")
	seed := flag.Int64("seed", 0, "random seed for pipe gaps (0 uses the config, then the clock)")
	statusEvery := flag.Duration("status", time.Second, "interval between status lines")
	flag.Parse()

	if err := validateStatusInterval(*statusEvery); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipes := env.NewPipeField(cfg.PipeSettings(), rand.New(rand.NewSource(cfg.Seed)))
	game := sim.NewHuman(sim.SettingsFromConfig(cfg), pipes, logger)

	fmt.Println("Press Enter to flap, Ctrl+C to exit")

	// every line on stdin is one thrust edge
	eof := make(chan struct{})
	go func() {
		defer close(eof)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			game.Thrust()
		}
	}()

	dt := cfg.Physics.TickDT
	ticker := time.NewTicker(time.Duration(float64(dt) * float64(time.Second)))
	defer ticker.Stop()
	status := time.NewTicker(*statusEvery)
	defer status.Stop()

	var last sim.AgentView
	for {
		select {
		case <-ctx.Done():
			logger.Info("exiting", "attempts", game.Attempts(), "best", game.Best())
			return
		case <-eof:
			logger.Info("input closed", "attempts", game.Attempts(), "best", game.Best())
			return
		case <-ticker.C:
			last = game.Advance(dt)
		case <-status.C:
			f := game.Frame()
			nearest, ok := env.Nearest(f.Obstacles, f.AgentX)
			args := []any{
				"attempt", game.Attempts(),
				"y", last.Position,
				"vy", last.Velocity,
				"score", last.Fitness,
				"best", game.Best(),
			}
			if ok {
				args = append(args, "pipe_dx", nearest.X-f.AgentX, "pipe_gap", nearest.Gap)
			}
			logger.Info("status", args...)
		}
	}
}

func validateStatusInterval(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("-status must be positive, got %v", d)
	}
	return nil
}
