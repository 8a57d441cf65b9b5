package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"flappyevo/internal/env"
	"flappyevo/internal/ga"
	"flappyevo/internal/nn"
)

// Config is the root configuration structure
type Config struct {
	Seed      int64           `yaml:"seed"` // 0 means time-based
	Physics   PhysicsConfig   `yaml:"physics"`
	Pipes     PipesConfig     `yaml:"pipes"`
	Collision CollisionConfig `yaml:"collision"`
	NN        NNConfig        `yaml:"nn"`
	GA        GAConfig        `yaml:"ga"`
	Sim       SimConfig       `yaml:"sim"`
	Logging   LogConfig       `yaml:"logging"`
	Serve     ServeConfig     `yaml:"serve"`
}

// PhysicsConfig defines the vertical integrator and the agents' fixed x
type PhysicsConfig struct {
	Gravity float32 `yaml:"gravity"`
	Thrust  float32 `yaml:"thrust"`  // velocity set by a flap
	AgentX  float32 `yaml:"agent_x"` // horizontal position shared by every agent
	TickDT  float32 `yaml:"tick_dt"` // seconds per simulated tick
}

// PipesConfig defines obstacle spawning and scrolling
type PipesConfig struct {
	Speed         float32 `yaml:"speed"`
	SpawnInterval float32 `yaml:"spawn_interval"`
	SpawnX        float32 `yaml:"spawn_x"`
	DespawnX      float32 `yaml:"despawn_x"`
	GapMin        float32 `yaml:"gap_min"`
	GapMax        float32 `yaml:"gap_max"`
	GapSize       float32 `yaml:"gap_size"` // presentation only
	Width         float32 `yaml:"width"`    // presentation only
}

// CollisionConfig defines the playfield bounds and pipe tolerances
type CollisionConfig struct {
	Top            float32 `yaml:"top"`
	Bottom         float32 `yaml:"bottom"`
	AlignTolerance float32 `yaml:"align_tolerance"`
	GapTolerance   float32 `yaml:"gap_tolerance"`
}

// NNConfig defines the brain activation and mutation policy
type NNConfig struct {
	Activation   string  `yaml:"activation"` // sigmoid|tanh
	Bias         bool    `yaml:"bias"`
	MutationStep float32 `yaml:"mutation_step"`
}

// GAConfig defines generation transition parameters
type GAConfig struct {
	Population     int  `yaml:"population"` // initial population size
	Elites         int  `yaml:"elites"`
	Offspring      int  `yaml:"offspring"`
	OffspringDecay int  `yaml:"offspring_decay"`
	Fresh          int  `yaml:"fresh"`
	CarryForward   int  `yaml:"carry_forward"`
	SeedBrain      bool `yaml:"seed_brain"` // put the literal seed brain in the first population
}

// SimConfig defines run length and parallelism
type SimConfig struct {
	Workers     int `yaml:"workers"`      // 0 means runtime.NumCPU
	Generations int `yaml:"generations"`  // 0 means run forever
	MaxTicks    int `yaml:"max_ticks"`    // per generation; 0 means unbounded
	ParallelMin int `yaml:"parallel_min"` // below this many agents ticks run serially
}

// LogConfig defines logging and telemetry outputs
type LogConfig struct {
	Level     string `yaml:"level"`  // debug|info|warn|error
	Format    string `yaml:"format"` // text|json
	CSVPath   string `yaml:"csv_path"`
	JSONPath  string `yaml:"json_path"`
	Store     string `yaml:"store"` // sqlite|memory|none
	StorePath string `yaml:"store_path"`
	TopN      int    `yaml:"topn"`
}

// ServeConfig defines the websocket presentation server
type ServeConfig struct {
	Addr       string `yaml:"addr"`
	FrameEvery int    `yaml:"frame_every"` // broadcast every N ticks
	Human      bool   `yaml:"human"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Seed: 0,
		Physics: PhysicsConfig{
			Gravity: 2000,
			Thrust:  700,
			AgentX:  -500,
			TickDT:  1.0 / 60.0,
		},
		Pipes: PipesConfig{
			Speed:         400,
			SpawnInterval: 2,
			SpawnX:        1500,
			DespawnX:      -1500,
			GapMin:        -250,
			GapMax:        250,
			GapSize:       200,
			Width:         50,
		},
		Collision: CollisionConfig{
			Top:            350,
			Bottom:         -350,
			AlignTolerance: 45,
			GapTolerance:   80,
		},
		NN: NNConfig{
			Activation:   "sigmoid",
			Bias:         true,
			MutationStep: nn.FineMutationStep,
		},
		GA: GAConfig{
			Population:   1000,
			Elites:       40,
			Offspring:    20,
			Fresh:        100,
			CarryForward: 39,
			SeedBrain:    true,
		},
		Sim: SimConfig{
			ParallelMin: 256,
		},
		Logging: LogConfig{
			Level:     "info",
			Format:    "text",
			CSVPath:   "runs/run.csv",
			JSONPath:  "runs/run.jsonl",
			Store:     "sqlite",
			StorePath: "runs/history.db",
			TopN:      5,
		},
		Serve: ServeConfig{
			Addr:       ":8080",
			FrameEvery: 2,
		},
	}
}

// Load reads a YAML config file over the defaults and validates the result.
// An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks ranges that would make the simulation meaningless
func (c *Config) Validate() error {
	var errs []error
	if _, err := nn.ParseActivation(c.NN.Activation); err != nil {
		errs = append(errs, err)
	}
	if c.NN.MutationStep < 0 {
		errs = append(errs, errors.New("nn.mutation_step must be >= 0"))
	}
	if c.Physics.TickDT <= 0 {
		errs = append(errs, errors.New("physics.tick_dt must be > 0"))
	}
	if c.Collision.Top <= c.Collision.Bottom {
		errs = append(errs, errors.New("collision.top must be above collision.bottom"))
	}
	if c.Pipes.GapMax < c.Pipes.GapMin {
		errs = append(errs, errors.New("pipes.gap_max must be >= pipes.gap_min"))
	}
	if c.Pipes.SpawnInterval <= 0 {
		errs = append(errs, errors.New("pipes.spawn_interval must be > 0"))
	}
	if c.GA.Population < 0 || c.GA.Elites < 0 || c.GA.Offspring < 0 ||
		c.GA.OffspringDecay < 0 || c.GA.Fresh < 0 || c.GA.CarryForward < 0 {
		errs = append(errs, errors.New("ga counts must be >= 0"))
	}
	switch c.Logging.Store {
	case "sqlite", "memory", "none", "":
	default:
		errs = append(errs, fmt.Errorf("logging.store: unknown store %q", c.Logging.Store))
	}
	return errors.Join(errs...)
}

// NNOptions converts the nn section into brain options. Call after Validate.
func (c *Config) NNOptions() nn.Options {
	act, _ := nn.ParseActivation(c.NN.Activation)
	return nn.Options{
		Activation:   act,
		Bias:         c.NN.Bias,
		MutationStep: c.NN.MutationStep,
	}
}

// Reproduction converts the ga section into transition constants
func (c *Config) Reproduction() ga.Reproduction {
	return ga.Reproduction{
		Elites:         c.GA.Elites,
		Offspring:      c.GA.Offspring,
		OffspringDecay: c.GA.OffspringDecay,
		Fresh:          c.GA.Fresh,
		CarryForward:   c.GA.CarryForward,
	}
}

// PhysicsParams returns the integrator settings
func (c *Config) PhysicsParams() env.Physics {
	return env.Physics{Gravity: c.Physics.Gravity, Thrust: c.Physics.Thrust}
}

// Bounds returns the termination check settings
func (c *Config) Bounds() env.Bounds {
	return env.Bounds{
		Top:            c.Collision.Top,
		Bottom:         c.Collision.Bottom,
		AlignTolerance: c.Collision.AlignTolerance,
		GapTolerance:   c.Collision.GapTolerance,
	}
}

// PipeSettings returns the obstacle field settings
func (c *Config) PipeSettings() env.PipeSettings {
	return env.PipeSettings{
		Speed:         c.Pipes.Speed,
		SpawnInterval: c.Pipes.SpawnInterval,
		SpawnX:        c.Pipes.SpawnX,
		DespawnX:      c.Pipes.DespawnX,
		GapMin:        c.Pipes.GapMin,
		GapMax:        c.Pipes.GapMax,
	}
}

// WriteYAML saves the effective configuration, creating parent directories
func (c *Config) WriteYAML(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
