package storage

import (
	"context"
	"errors"
	"sync"
)

// MemoryStore keeps history in process memory
type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	runs        map[string]Run
	generations map[string][]GenerationRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.runs = make(map[string]Run)
	s.generations = make(map[string][]GenerationRecord)
	return nil
}

func (s *MemoryStore) SaveRun(_ context.Context, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errors.New("store is not initialized")
	}
	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (Run, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	return run, ok, nil
}

func (s *MemoryStore) SaveGeneration(_ context.Context, runID string, rec GenerationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errors.New("store is not initialized")
	}
	history := s.generations[runID]
	for i := range history {
		if history[i].Generation == rec.Generation {
			history[i] = rec
			return nil
		}
	}
	s.generations[runID] = append(history, rec)
	return nil
}

func (s *MemoryStore) Generations(_ context.Context, runID string) ([]GenerationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.generations[runID]
	out := make([]GenerationRecord, len(history))
	copy(out, history)
	return out, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
