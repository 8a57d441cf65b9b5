package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"flappyevo/internal/sim"
	"flappyevo/internal/storage"
)

// RecorderOptions configures where generation telemetry goes. Empty paths and
// a nil Store disable that output.
type RecorderOptions struct {
	CSVPath  string
	JSONPath string
	Store    storage.Store
	RunID    string
	TopN     int
	Logger   *slog.Logger
}

// Recorder handles all per-generation training output
type Recorder struct {
	csvFile          *os.File
	csvHeaderWritten bool
	jsonFile         *os.File
	jsonEnc          *json.Encoder

	store storage.Store
	runID string
	topN  int

	logger *slog.Logger
}

// NewRecorder creates the output files, truncating existing ones
func NewRecorder(opts RecorderOptions) (*Recorder, error) {
	r := &Recorder{
		store:  opts.Store,
		runID:  opts.RunID,
		topN:   opts.TopN,
		logger: opts.Logger,
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}

	if opts.CSVPath != "" {
		f, err := createFile(opts.CSVPath)
		if err != nil {
			return nil, fmt.Errorf("creating csv output: %w", err)
		}
		r.csvFile = f
	}

	if opts.JSONPath != "" {
		f, err := createFile(opts.JSONPath)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("creating json output: %w", err)
		}
		r.jsonFile = f
		r.jsonEnc = json.NewEncoder(f)
	}

	return r, nil
}

func createFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	return os.Create(path)
}

// Record logs one finished generation to every configured output
func (r *Recorder) Record(ctx context.Context, report sim.GenerationReport) error {
	summary := Summarize(report)
	r.logger.Info("generation", "stats", summary)

	if r.topN > 0 && r.logger.Enabled(ctx, slog.LevelDebug) {
		n := min(r.topN, len(report.Fitness))
		r.logger.Debug("top_agents", "generation", report.Generation, "fitness", report.Fitness[:n])
		r.logger.Debug("best_brain", "generation", report.Generation, "weights", report.Best.Weights())
	}

	if r.csvFile != nil {
		records := []GenerationSummary{summary}
		if !r.csvHeaderWritten {
			if err := gocsv.Marshal(records, r.csvFile); err != nil {
				return fmt.Errorf("writing csv: %w", err)
			}
			r.csvHeaderWritten = true
		} else {
			if err := gocsv.MarshalWithoutHeaders(records, r.csvFile); err != nil {
				return fmt.Errorf("writing csv: %w", err)
			}
		}
	}

	if r.jsonEnc != nil {
		if err := r.jsonEnc.Encode(summary); err != nil {
			return fmt.Errorf("writing json: %w", err)
		}
	}

	if r.store != nil {
		if err := r.store.SaveGeneration(ctx, r.runID, summary.Record()); err != nil {
			return fmt.Errorf("saving generation %d: %w", summary.Generation, err)
		}
	}
	return nil
}

// Close closes all output files. The store is owned by the caller.
func (r *Recorder) Close() error {
	var firstErr error
	if r.csvFile != nil {
		if err := r.csvFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if r.jsonFile != nil {
		if err := r.jsonFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
