// Package sim runs the tick-driven neuroevolution game: every tick it moves the
// pipes, lets each living agent's brain decide, accumulates fitness, applies the
// termination check and, once every agent is dead, replaces the population.
package sim

import (
	"context"
	"log/slog"
	"math/rand"
	"runtime"
	"time"

	"flappyevo/internal/config"
	"flappyevo/internal/env"
	"flappyevo/internal/ga"
	"flappyevo/internal/nn"
)

// Settings holds everything a Simulation needs besides its state
type Settings struct {
	AgentX       float32
	Physics      env.Physics
	Bounds       env.Bounds
	Reproduction ga.Reproduction
	Brain        nn.Options
	Workers      int // 0 means runtime.NumCPU
	ParallelMin  int // populations smaller than this step serially
	MaxTicks     int // per generation; 0 means unbounded
}

// SettingsFromConfig extracts simulation settings from a validated config
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		AgentX:       cfg.Physics.AgentX,
		Physics:      cfg.PhysicsParams(),
		Bounds:       cfg.Bounds(),
		Reproduction: cfg.Reproduction(),
		Brain:        cfg.NNOptions(),
		Workers:      cfg.Sim.Workers,
		ParallelMin:  cfg.Sim.ParallelMin,
		MaxTicks:     cfg.Sim.MaxTicks,
	}
}

// GenerationReport describes a generation that just ended
type GenerationReport struct {
	Generation int
	Ticks      int
	SimTime    float32 // simulated seconds
	Duration   time.Duration
	Fitness    []float64 // ranked, descending
	Deaths     map[env.DeathReason]int
	Best       nn.Brain
	BestOrigin ga.Origin
	NextSize   int
}

// Simulation is the population aggregate. It is not safe for concurrent use;
// hosts drive it from one goroutine and consume Frames.
type Simulation struct {
	settings Settings
	workers  int

	pop   *ga.Population
	pipes *env.PipeField
	rng   *rand.Rand

	tick     int
	simTime  float32
	genStart time.Time

	logger *slog.Logger

	// OnGeneration is called after each transition with the ended generation
	OnGeneration func(GenerationReport)
}

// New creates a simulation over an existing population
func New(settings Settings, pop *ga.Population, pipes *env.PipeField, rng *rand.Rand, logger *slog.Logger) *Simulation {
	workers := settings.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Simulation{
		settings: settings,
		workers:  workers,
		pop:      pop,
		pipes:    pipes,
		rng:      rng,
		genStart: time.Now(),
		logger:   logger,
	}
}

// NewFromConfig builds the first population and pipe field from cfg.
// Genetics and pipe spawning draw from separate sources derived from seed.
func NewFromConfig(cfg *config.Config, seed int64, logger *slog.Logger) *Simulation {
	rng := rand.New(rand.NewSource(seed))
	pipeRNG := rand.New(rand.NewSource(seed + 1))

	opts := cfg.NNOptions()
	var pop *ga.Population
	if cfg.GA.SeedBrain {
		pop = ga.NewSeededPopulation(cfg.GA.Population, rng, opts)
	} else {
		pop = ga.NewPopulation(cfg.GA.Population, rng, opts)
	}

	pipes := env.NewPipeField(cfg.PipeSettings(), pipeRNG)
	return New(SettingsFromConfig(cfg), pop, pipes, rng, logger)
}

// Population returns the active population
func (s *Simulation) Population() *ga.Population {
	return s.pop
}

// Generation returns the active generation number
func (s *Simulation) Generation() int {
	return s.pop.Generation
}

// Tick returns the number of ticks run in the active generation
func (s *Simulation) Tick() int {
	return s.tick
}

// Pipes returns the owned obstacle field
func (s *Simulation) Pipes() *env.PipeField {
	return s.pipes
}

// Advance runs one tick against the owned pipe field and performs the
// generation transition when the tick killed the last agent. The returned
// views describe the agents as they were at the end of the tick, before any
// replacement.
func (s *Simulation) Advance(dt float32) []AgentView {
	if len(s.pop.Agents) == 0 {
		return nil
	}

	s.pipes.Update(dt)
	views := s.Step(dt, s.pipes.Obstacles())

	if s.settings.MaxTicks > 0 && s.tick >= s.settings.MaxTicks {
		for _, a := range s.pop.Agents {
			a.Kill(env.DeathTimeout)
		}
	}
	if s.IsGenerationOver() {
		s.NextGeneration()
	}
	return views
}

// Step applies physics, the decision policy, fitness accumulation and the
// termination check to every living agent. It never replaces the population;
// hosts that own their obstacles call Step, IsGenerationOver and NextGeneration.
func (s *Simulation) Step(dt float32, obstacles []env.Obstacle) []AgentView {
	agentX := s.settings.AgentX
	physics := s.settings.Physics
	bounds := s.settings.Bounds

	// identical for every agent, so resolved once
	nearest, ok := env.Nearest(obstacles, agentX)

	s.forEachAlive(func(a *ga.Agent) {
		a.Position, a.Velocity = physics.Integrate(a.Position, a.Velocity, dt)
		if Decide(a, agentX, nearest, ok) == ActionThrust {
			a.Velocity = physics.Thrust
		}
		a.Fitness += dt
		if reason := bounds.Check(a.Position, agentX, obstacles); reason != env.DeathNone {
			a.Kill(reason)
		}
	})

	s.tick++
	s.simTime += dt
	return viewsOf(s.pop.Agents)
}

// IsGenerationOver reports whether every agent of the active population is dead
func (s *Simulation) IsGenerationOver() bool {
	return s.pop.IsGenerationOver()
}

// NextGeneration replaces the population with the offspring of the ranked
// current one and clears the pipe field. It is a no-op returning false for an
// empty population.
func (s *Simulation) NextGeneration() bool {
	prev := s.pop
	next, ok := s.settings.Reproduction.Next(prev, s.rng, s.settings.Brain)
	if !ok {
		s.logger.Warn("generation_transition_skipped", "generation", prev.Generation, "reason", "empty population")
		return false
	}

	report := s.report(prev, next.Size())

	s.pop = next
	s.pipes.Clear()
	s.tick = 0
	s.simTime = 0
	s.genStart = time.Now()

	if s.OnGeneration != nil {
		s.OnGeneration(report)
	}
	return true
}

func (s *Simulation) report(pop *ga.Population, nextSize int) GenerationReport {
	ranked := pop.Ranked()
	best := pop.Best()
	fitness := make([]float64, len(ranked))
	deaths := make(map[env.DeathReason]int)
	for i, a := range ranked {
		fitness[i] = float64(a.Fitness)
		deaths[a.Death]++
	}
	return GenerationReport{
		Generation: pop.Generation,
		Ticks:      s.tick,
		SimTime:    s.simTime,
		Duration:   time.Since(s.genStart),
		Fitness:    fitness,
		Deaths:     deaths,
		Best:       best.Brain,
		BestOrigin: best.Origin,
		NextSize:   nextSize,
	}
}

// Frame returns a snapshot of the current tick for presentation
func (s *Simulation) Frame() Frame {
	obstacles := append([]env.Obstacle(nil), s.pipes.Obstacles()...)
	return Frame{
		Mode:       "evolve",
		Generation: s.pop.Generation,
		Tick:       s.tick,
		AgentX:     s.settings.AgentX,
		Alive:      s.pop.Alive(),
		Obstacles:  obstacles,
		Agents:     viewsOf(s.pop.Agents),
	}
}

// RunGenerations advances by dt until n more generations have ended, or forever
// when n is 0. It returns ctx.Err() if cancelled first.
func (s *Simulation) RunGenerations(ctx context.Context, dt float32, n int) error {
	target := s.pop.Generation + n
	for n == 0 || s.pop.Generation < target {
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(s.pop.Agents) == 0 {
			s.logger.Warn("empty_population", "generation", s.pop.Generation)
			return nil
		}
		s.Advance(dt)
	}
	return nil
}
