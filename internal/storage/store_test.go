package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/lyricfield/internal/content"
	"github.com/san-kum/lyricfield/internal/dynamo"
	"github.com/san-kum/lyricfield/internal/engine"
)

func testSamples() []Sample {
	return []Sample{
		{Time: 0, Bubbles: 2, Displayed: 2, Songs: 1, Tags: 1, Selections: 2},
		{Time: 0.5, Bubbles: 3, Displayed: 3, Songs: 1, People: 1, Tags: 1, Selections: 3, ForcedRotations: 1, CompletedCycles: 1, Unresolved: 1},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	meta := RunMetadata{
		Catalog:  "songs.yaml",
		Seed:     42,
		Dt:       0.5,
		Duration: 1,
		Metrics:  map[string]float64{"coverage": 0.75},
	}
	runID, err := st.Save(meta, testSamples())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	got, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got.Seed != 42 || got.Catalog != "songs.yaml" || got.ID != runID {
		t.Errorf("unexpected metadata %+v", got)
	}
	if got.Metrics["coverage"] != 0.75 {
		t.Errorf("expected coverage 0.75, got %f", got.Metrics["coverage"])
	}

	samples, err := st.LoadSamples(runID)
	if err != nil {
		t.Fatalf("load samples failed: %v", err)
	}
	want := testSamples()
	if len(samples) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(samples))
	}
	for i := range want {
		if samples[i] != want[i] {
			t.Errorf("sample %d = %+v, want %+v", i, samples[i], want[i])
		}
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for i := 2; i >= 0; i-- {
		if _, err := st.Save(RunMetadata{Timestamp: base.Add(time.Duration(i) * time.Minute)}, nil); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	for i := 1; i < len(runs); i++ {
		if runs[i].Timestamp.Before(runs[i-1].Timestamp) {
			t.Error("runs not sorted by timestamp")
		}
	}
}

func TestStoreListMissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "nope")).List()
	if err != nil || len(runs) != 0 {
		t.Errorf("List() = %v, %v", runs, err)
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runID, err := st.Save(RunMetadata{}, testSamples())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	for _, name := range []string{"metadata.json", "samples.csv"} {
		if _, err := os.Stat(filepath.Join(tmpDir, runID, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}

func TestExportJSON(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save(RunMetadata{Seed: 7}, testSamples())
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := st.ExportJSON(&buf, runID); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("invalid export: %v", err)
	}
	if data.Run.Seed != 7 || len(data.Samples) != 2 {
		t.Errorf("unexpected export %+v", data)
	}

	if err := st.ExportJSON(io.Discard, "missing"); err == nil {
		t.Error("expected error for missing run")
	}
}

func TestSampleColumn(t *testing.T) {
	s := testSamples()[1]
	tests := []struct {
		name string
		want float64
	}{
		{"time", 0.5},
		{"bubbles", 3},
		{"forced_rotations", 1},
		{"unresolved", 1},
	}
	for _, tt := range tests {
		got, ok := s.Column(tt.name)
		if !ok || got != tt.want {
			t.Errorf("Column(%q) = %v, %v; want %v", tt.name, got, ok, tt.want)
		}
	}
	if _, ok := s.Column("energy"); ok {
		t.Error("unknown column should not resolve")
	}
}

func TestRecorderWithEngine(t *testing.T) {
	rec := NewRecorder(4)
	p := dynamo.DefaultParams()
	p.MaxBubbles, p.MaxDisplayedItems = 3, 3
	e := engine.New(p, engine.WithSeed(3), engine.WithLogger(log.New(io.Discard, "", 0)), engine.WithObserver(rec))
	e.Initialize(content.Catalog{Tags: []string{"a", "b", "c", "d"}})

	if _, err := e.RunFor(context.Background(), 2, 0.125); err != nil {
		t.Fatal(err)
	}
	samples := rec.Samples()
	if len(samples) != 4 {
		t.Fatalf("expected 4 samples from 16 frames, got %d", len(samples))
	}
	if samples[0].Bubbles != 3 || samples[0].Tags != 3 {
		t.Errorf("unexpected first sample %+v", samples[0])
	}
}
