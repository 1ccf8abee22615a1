package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/flipsim/internal/config"
	"github.com/san-kum/flipsim/internal/dynamo"
)

func testFrames() []dynamo.FrameStats {
	return []dynamo.FrameStats{
		{Frame: 1, Time: 0.1, KineticEnergy: 0.5, MaxSpeed: 1, Residual: 0.01, FluidCells: 100, MeanHeight: -0.2, CenterX: -0.1},
		{Frame: 2, Time: 0.2, KineticEnergy: 0.75, MaxSpeed: 1.5, Residual: 0.02, FluidCells: 98, MeanHeight: -0.25, CenterX: -0.05},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg := config.GetPreset("coarse")
	meta := RunMetadata{
		Preset:     "coarse",
		Resolution: cfg.Scene.Resolution,
		Dt:         cfg.Dt,
		Frames:     2,
		StepsTaken: 2,
		Metrics:    map[string]float64{"kinetic_energy": 0.625},
	}

	runID, err := st.Save(meta, cfg, testFrames())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "coarse_") {
		t.Errorf("unexpected run id %q", runID)
	}

	loaded, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.ID != runID || loaded.Resolution != 10 {
		t.Errorf("unexpected metadata %+v", loaded)
	}
	if loaded.Metrics["kinetic_energy"] != 0.625 {
		t.Errorf("expected metric 0.625, got %f", loaded.Metrics["kinetic_energy"])
	}

	frames, err := st.LoadFrames(runID)
	if err != nil {
		t.Fatalf("load frames failed: %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}
	if frames[1] != testFrames()[1] {
		t.Errorf("frame mismatch: %+v", frames[1])
	}

	loadedCfg, err := st.LoadConfig(runID)
	if err != nil {
		t.Fatalf("load config failed: %v", err)
	}
	if loadedCfg.Params() != cfg.Params() {
		t.Errorf("config params differ")
	}
}

func TestStoreEmptyFrames(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save(RunMetadata{}, nil, nil)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "run_") {
		t.Errorf("unexpected run id %q", runID)
	}
	frames, err := st.LoadFrames(runID)
	if err != nil {
		t.Fatalf("load frames failed: %v", err)
	}
	if len(frames) != 0 {
		t.Errorf("expected no frames, got %d", len(frames))
	}
}

func TestStoreList(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}

	first, err := st.Save(RunMetadata{Preset: "a"}, nil, testFrames())
	if err != nil {
		t.Fatal(err)
	}
	second, err := st.Save(RunMetadata{Preset: "b"}, nil, testFrames())
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != first || runs[1].ID != second {
		t.Errorf("runs out of order: %s, %s", runs[0].ID, runs[1].ID)
	}
}

func TestLoadMissing(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("nope"); err == nil {
		t.Error("expected error for missing run")
	}
	if _, err := st.LoadFrames("nope"); err == nil {
		t.Error("expected error for missing frames")
	}
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportJSON(&buf, RunMetadata{ID: "x"}, testFrames()); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if data.Run.ID != "x" || len(data.Frames) != 2 {
		t.Errorf("unexpected export %+v", data)
	}
}

func TestFrameWriterMatchesExportCSV(t *testing.T) {
	var streamed, batch bytes.Buffer
	fw := NewFrameWriter(&streamed)
	for _, f := range testFrames() {
		fw.OnStep(nil, f)
	}
	if err := fw.Err(); err != nil {
		t.Fatalf("stream failed: %v", err)
	}
	if err := ExportCSV(&batch, testFrames()); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	if streamed.String() != batch.String() {
		t.Errorf("streamed csv differs:\n%s\nvs\n%s", streamed.String(), batch.String())
	}
	if lines := strings.Count(batch.String(), "\n"); lines != 3 {
		t.Errorf("expected header plus 2 rows, got %d lines", lines)
	}
	if !strings.HasPrefix(batch.String(), "frame,time,kinetic_energy") {
		t.Errorf("unexpected header: %q", strings.SplitN(batch.String(), "\n", 2)[0])
	}
}
