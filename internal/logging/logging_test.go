package logging

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"flappyevo/internal/env"
	"flappyevo/internal/ga"
	"flappyevo/internal/nn"
	"flappyevo/internal/sim"
	"flappyevo/internal/storage"
)

func testReport(gen int) sim.GenerationReport {
	return sim.GenerationReport{
		Generation: gen,
		Ticks:      120,
		SimTime:    2,
		Duration:   1500 * time.Millisecond,
		Fitness:    []float64{10, 8, 6, 4, 2},
		Deaths:     map[env.DeathReason]int{env.DeathBounds: 3, env.DeathPipe: 2},
		Best:       nn.New(nn.DefaultOptions()),
		BestOrigin: ga.OriginElite,
		NextSize:   7,
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(testReport(3))

	if s.Generation != 3 || s.Agents != 5 || s.Ticks != 120 || s.NextSize != 7 {
		t.Errorf("unexpected header fields: %+v", s)
	}
	if s.BestFitness != 10 || s.WorstFitness != 2 || s.MeanFitness != 6 {
		t.Errorf("unexpected fitness stats: %+v", s)
	}
	// sample standard deviation of 2,4,6,8,10
	if math.Abs(s.StdFitness-math.Sqrt(10)) > 1e-9 {
		t.Errorf("std: got %v", s.StdFitness)
	}
	if s.P50Fitness != 6 || s.P90Fitness != 10 {
		t.Errorf("quantiles: p50=%v p90=%v", s.P50Fitness, s.P90Fitness)
	}
	if s.DeathsBounds != 3 || s.DeathsPipe != 2 || s.DeathsTimeout != 0 {
		t.Errorf("deaths: %+v", s)
	}
	if s.BestOrigin != "elite" || s.DurationMS != 1500 {
		t.Errorf("origin=%s duration=%d", s.BestOrigin, s.DurationMS)
	}
}

func TestSummarizeSmallPopulations(t *testing.T) {
	empty := Summarize(sim.GenerationReport{Generation: 1})
	if empty.Agents != 0 || empty.BestFitness != 0 {
		t.Errorf("empty report: %+v", empty)
	}

	single := Summarize(sim.GenerationReport{Fitness: []float64{4}})
	if single.StdFitness != 0 || single.MeanFitness != 4 || single.P90Fitness != 4 {
		t.Errorf("single agent: %+v", single)
	}
}

func TestRecorderOutputs(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	store := storage.NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatal(err)
	}

	var logs bytes.Buffer
	logger, err := NewLogger(&logs, "debug", "text")
	if err != nil {
		t.Fatal(err)
	}

	rec, err := NewRecorder(RecorderOptions{
		CSVPath:  filepath.Join(dir, "out", "run.csv"),
		JSONPath: filepath.Join(dir, "out", "run.jsonl"),
		Store:    store,
		RunID:    "run-1",
		TopN:     2,
		Logger:   logger,
	})
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}
	for gen := 0; gen < 3; gen++ {
		if err := rec.Record(ctx, testReport(gen)); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	csvData, err := os.ReadFile(filepath.Join(dir, "out", "run.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(csvData)), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header and 3 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "generation,agents,ticks") {
		t.Errorf("unexpected header: %s", lines[0])
	}

	f, err := os.Open(filepath.Join(dir, "out", "run.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	gens := 0
	for scanner.Scan() {
		var s GenerationSummary
		if err := json.Unmarshal(scanner.Bytes(), &s); err != nil {
			t.Fatalf("bad json line: %v", err)
		}
		if s.Generation != gens || s.BestFitness != 10 {
			t.Errorf("line %d: %+v", gens, s)
		}
		gens++
	}
	if gens != 3 {
		t.Errorf("expected 3 json lines, got %d", gens)
	}

	history, _ := store.Generations(ctx, "run-1")
	if len(history) != 3 || history[2].P50Fitness != 6 {
		t.Errorf("store history: %+v", history)
	}

	out := logs.String()
	if strings.Count(out, "msg=generation") != 3 || !strings.Contains(out, "top_agents") || !strings.Contains(out, "best_brain") {
		t.Errorf("unexpected log output:\n%s", out)
	}
}

func TestRecorderDisabledOutputs(t *testing.T) {
	rec, err := NewRecorder(RecorderOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if err := rec.Record(context.Background(), testReport(0)); err != nil {
		t.Errorf("Record without outputs: %v", err)
	}
	if err := rec.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "warn", "json")
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("hidden")
	logger.Warn("shown", "k", 1)
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), `"msg":"shown"`) {
		t.Errorf("unexpected output: %s", buf.String())
	}

	if _, err := NewLogger(&buf, "loud", "text"); err == nil {
		t.Error("expected error for unknown level")
	}
	if _, err := NewLogger(&buf, "info", "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestRecorderLogsBestBrainWeights(t *testing.T) {
	var logs bytes.Buffer
	logger, err := NewLogger(&logs, "debug", "json")
	if err != nil {
		t.Fatal(err)
	}
	rec, err := NewRecorder(RecorderOptions{TopN: 1, Logger: logger})
	if err != nil {
		t.Fatal(err)
	}
	defer rec.Close()

	if err := rec.Record(context.Background(), testReport(0)); err != nil {
		t.Fatal(err)
	}

	var found bool
	scanner := bufio.NewScanner(&logs)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var line struct {
			Msg     string     `json:"msg"`
			Weights nn.Weights `json:"weights"`
		}
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
			t.Fatalf("bad log line: %v", err)
		}
		if line.Msg != "best_brain" {
			continue
		}
		found = true
		if line.Weights.Activation != "sigmoid" || len(line.Weights.HiddenWeights) != nn.NumHidden*nn.NumInputs {
			t.Errorf("unexpected weights: %+v", line.Weights)
		}
		if line.Weights.OutputBias[0] != nn.New(nn.DefaultOptions()).OutputBias[0] {
			t.Error("logged weights are not the best brain's")
		}
	}
	if !found {
		t.Fatalf("no best_brain line in:\n%s", logs.String())
	}
}
