package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flappyevo/internal/config"
	"flappyevo/internal/env"
	"flappyevo/internal/logging"
	"flappyevo/internal/server"
	"flappyevo/internal/sim"
)

// hello tells clients how to draw the playfield
type hello struct {
	Mode      string  `json:"mode"`
	AgentX    float32 `json:"agent_x"`
	Top       float32 `json:"top"`
	Bottom    float32 `json:"bottom"`
	SpawnX    float32 `json:"spawn_x"`
	DespawnX  float32 `json:"despawn_x"`
	GapSize   float32 `json:"gap_size"`
	PipeWidth float32 `json:"pipe_width"`
}

// game is the part of sim.Simulation and sim.Human the frame loop needs
type game interface {
	step(dt float32)
	Frame() sim.Frame
}

type evolveGame struct{ *sim.Simulation }

func (g evolveGame) step(dt float32) { g.Advance(dt) }

type humanGame struct{ *sim.Human }

func (g humanGame) step(dt float32) { g.Advance(dt) }

func main() {
	configPath := flag.String("config", "configs/default.yaml", "path to config file")
	addr := flag.String("addr", "", "listen address (overrides serve.addr)")
	human := flag.Bool("human", false, "let clients play instead of running evolution")
	seed := flag.Int64("seed", 0, "random seed (0 uses the config, then the clock)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Serve.Addr = *addr
	}
	if *human {
		cfg.Serve.Human = true
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

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("serve failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	h := hello{
		Mode:      "evolve",
		AgentX:    cfg.Physics.AgentX,
		Top:       cfg.Collision.Top,
		Bottom:    cfg.Collision.Bottom,
		SpawnX:    cfg.Pipes.SpawnX,
		DespawnX:  cfg.Pipes.DespawnX,
		GapSize:   cfg.Pipes.GapSize,
		PipeWidth: cfg.Pipes.Width,
	}

	var g game
	var onThrust func()
	if cfg.Serve.Human {
		h.Mode = "human"
		pipes := env.NewPipeField(cfg.PipeSettings(), rand.New(rand.NewSource(cfg.Seed)))
		player := sim.NewHuman(sim.SettingsFromConfig(cfg), pipes, logger)
		g = humanGame{player}
		onThrust = player.Thrust
	} else {
		s := sim.NewFromConfig(cfg, cfg.Seed, logger)
		s.OnGeneration = func(r sim.GenerationReport) {
			logger.Info("generation", "stats", logging.Summarize(r))
		}
		g = evolveGame{s}
	}

	hub := server.NewHub(h, onThrust, logger)
	srv := &http.Server{Addr: cfg.Serve.Addr, Handler: hub.Handler()}

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Serve.Addr, "mode", h.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	dt := cfg.Physics.TickDT
	frameEvery := max(cfg.Serve.FrameEvery, 1)
	ticker := time.NewTicker(time.Duration(float64(dt) * float64(time.Second)))
	defer ticker.Stop()

	for tick := 0; ; tick++ {
		select {
		case <-ctx.Done():
			hub.Close()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		case err := <-errc:
			return fmt.Errorf("http server: %w", err)
		case <-ticker.C:
			g.step(dt)
			if tick%frameEvery == 0 && hub.Clients() > 0 {
				hub.Broadcast(g.Frame())
			}
		}
	}
}
