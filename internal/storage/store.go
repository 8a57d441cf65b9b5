// Package storage keeps the per-generation history of training runs. Only
// scalar statistics are stored; brains are never persisted.
package storage

import (
	"context"
	"fmt"
	"time"
)

// Run identifies one training process
type Run struct {
	ID        string
	Seed      int64
	StartedAt time.Time
	Config    string // effective YAML configuration
}

// GenerationRecord is the summary of one finished generation
type GenerationRecord struct {
	Generation  int
	Agents      int
	Ticks       int
	BestFitness float64
	MeanFitness float64
	StdFitness  float64
	P50Fitness  float64
	P90Fitness  float64
	NextSize    int
	DurationMS  int64
}

// Store persists run history
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run Run) error
	GetRun(ctx context.Context, id string) (Run, bool, error)
	SaveGeneration(ctx context.Context, runID string, rec GenerationRecord) error
	Generations(ctx context.Context, runID string) ([]GenerationRecord, error)
	Close() error
}

// NewStore returns an uninitialized store of the given kind. "none" returns a nil Store.
func NewStore(kind, sqlitePath string) (Store, error) {
	switch kind {
	case "none":
		return nil, nil
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		if sqlitePath == "" {
			return nil, fmt.Errorf("sqlite store requires a path")
		}
		return NewSQLiteStore(sqlitePath), nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", kind)
	}
}
