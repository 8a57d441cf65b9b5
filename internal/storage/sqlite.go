package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run Run) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO runs (id, seed, started_at, config)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			seed = excluded.seed,
			started_at = excluded.started_at,
			config = excluded.config
	`, run.ID, run.Seed, run.StartedAt.UnixNano(), run.Config)
	return err
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (Run, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return Run{}, false, err
	}

	run := Run{ID: id}
	var started int64
	err = db.QueryRowContext(ctx, `SELECT seed, started_at, config FROM runs WHERE id = ?`, id).
		Scan(&run.Seed, &started, &run.Config)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, false, nil
		}
		return Run{}, false, err
	}
	run.StartedAt = time.Unix(0, started)
	return run, true, nil
}

func (s *SQLiteStore) SaveGeneration(ctx context.Context, runID string, rec GenerationRecord) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO generations (
			run_id, generation, agents, ticks, best_fitness, mean_fitness,
			std_fitness, p50_fitness, p90_fitness, next_size, duration_ms
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, generation) DO UPDATE SET
			agents = excluded.agents,
			ticks = excluded.ticks,
			best_fitness = excluded.best_fitness,
			mean_fitness = excluded.mean_fitness,
			std_fitness = excluded.std_fitness,
			p50_fitness = excluded.p50_fitness,
			p90_fitness = excluded.p90_fitness,
			next_size = excluded.next_size,
			duration_ms = excluded.duration_ms
	`, runID, rec.Generation, rec.Agents, rec.Ticks, rec.BestFitness, rec.MeanFitness,
		rec.StdFitness, rec.P50Fitness, rec.P90Fitness, rec.NextSize, rec.DurationMS)
	return err
}

func (s *SQLiteStore) Generations(ctx context.Context, runID string) ([]GenerationRecord, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT generation, agents, ticks, best_fitness, mean_fitness,
			std_fitness, p50_fitness, p90_fitness, next_size, duration_ms
		FROM generations
		WHERE run_id = ?
		ORDER BY generation
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GenerationRecord
	for rows.Next() {
		var rec GenerationRecord
		if err := rows.Scan(&rec.Generation, &rec.Agents, &rec.Ticks, &rec.BestFitness, &rec.MeanFitness,
			&rec.StdFitness, &rec.P50Fitness, &rec.P90Fitness, &rec.NextSize, &rec.DurationMS); err != nil {
			return nil, fmt.Errorf("scan generation: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			seed INTEGER NOT NULL,
			started_at INTEGER NOT NULL,
			config TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS generations (
			run_id TEXT NOT NULL,
			generation INTEGER NOT NULL,
			agents INTEGER NOT NULL,
			ticks INTEGER NOT NULL,
			best_fitness REAL NOT NULL,
			mean_fitness REAL NOT NULL,
			std_fitness REAL NOT NULL,
			p50_fitness REAL NOT NULL,
			p90_fitness REAL NOT NULL,
			next_size INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			PRIMARY KEY (run_id, generation)
		);
	`)
	return err
}
