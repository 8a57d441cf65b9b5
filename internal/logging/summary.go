package logging

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"

	"flappyevo/internal/env"
	"flappyevo/internal/sim"
	"flappyevo/internal/storage"
)

// GenerationSummary holds per-generation statistics
type GenerationSummary struct {
	Generation    int     `csv:"generation" json:"generation"`
	Agents        int     `csv:"agents" json:"agents"`
	Ticks         int     `csv:"ticks" json:"ticks"`
	SimTime       float64 `csv:"sim_time" json:"sim_time"`
	BestFitness   float64 `csv:"best_fitness" json:"best_fitness"`
	MeanFitness   float64 `csv:"mean_fitness" json:"mean_fitness"`
	StdFitness    float64 `csv:"std_fitness" json:"std_fitness"`
	P50Fitness    float64 `csv:"p50_fitness" json:"p50_fitness"`
	P90Fitness    float64 `csv:"p90_fitness" json:"p90_fitness"`
	WorstFitness  float64 `csv:"worst_fitness" json:"worst_fitness"`
	DeathsBounds  int     `csv:"deaths_bounds" json:"deaths_bounds"`
	DeathsPipe    int     `csv:"deaths_pipe" json:"deaths_pipe"`
	DeathsTimeout int     `csv:"deaths_timeout" json:"deaths_timeout"`
	BestOrigin    string  `csv:"best_origin" json:"best_origin"`
	NextSize      int     `csv:"next_size" json:"next_size"`
	DurationMS    int64   `csv:"duration_ms" json:"duration_ms"`
}

// Summarize reduces a generation report to scalar statistics
func Summarize(r sim.GenerationReport) GenerationSummary {
	s := GenerationSummary{
		Generation:    r.Generation,
		Agents:        len(r.Fitness),
		Ticks:         r.Ticks,
		SimTime:       float64(r.SimTime),
		DeathsBounds:  r.Deaths[env.DeathBounds],
		DeathsPipe:    r.Deaths[env.DeathPipe],
		DeathsTimeout: r.Deaths[env.DeathTimeout],
		BestOrigin:    r.BestOrigin.String(),
		NextSize:      r.NextSize,
		DurationMS:    r.Duration.Milliseconds(),
	}
	if len(r.Fitness) == 0 {
		return s
	}

	// stat.Quantile needs ascending data
	sorted := append([]float64(nil), r.Fitness...)
	sort.Float64s(sorted)

	s.WorstFitness = sorted[0]
	s.BestFitness = sorted[len(sorted)-1]
	s.MeanFitness = stat.Mean(sorted, nil)
	if len(sorted) > 1 {
		s.StdFitness = stat.StdDev(sorted, nil)
	}
	s.P50Fitness = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	s.P90Fitness = stat.Quantile(0.9, stat.Empirical, sorted, nil)
	return s
}

// Record converts the summary into a history store row
func (s GenerationSummary) Record() storage.GenerationRecord {
	return storage.GenerationRecord{
		Generation:  s.Generation,
		Agents:      s.Agents,
		Ticks:       s.Ticks,
		BestFitness: s.BestFitness,
		MeanFitness: s.MeanFitness,
		StdFitness:  s.StdFitness,
		P50Fitness:  s.P50Fitness,
		P90Fitness:  s.P90Fitness,
		NextSize:    s.NextSize,
		DurationMS:  s.DurationMS,
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s GenerationSummary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("generation", s.Generation),
		slog.Int("agents", s.Agents),
		slog.Int("ticks", s.Ticks),
		slog.Float64("best", s.BestFitness),
		slog.Float64("mean", s.MeanFitness),
		slog.Float64("std", s.StdFitness),
		slog.Float64("p50", s.P50Fitness),
		slog.Float64("p90", s.P90Fitness),
		slog.Int("deaths_bounds", s.DeathsBounds),
		slog.Int("deaths_pipe", s.DeathsPipe),
		slog.Int("deaths_timeout", s.DeathsTimeout),
		slog.String("best_origin", s.BestOrigin),
		slog.Int("next_size", s.NextSize),
		slog.Int64("duration_ms", s.DurationMS),
	)
}
