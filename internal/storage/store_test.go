package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/lagsim/internal/config"
	"github.com/san-kum/lagsim/internal/dynamo"
	"github.com/san-kum/lagsim/internal/sim"
)

func sampleTrajectory() *sim.Trajectory {
	return &sim.Trajectory{
		Name:        "elastic",
		Coordinates: []string{"theta", "r"},
		StateNames:  []string{"theta", "theta_dot", "r", "r_dot"},
		Times:       []float64{0, 0.02},
		States: []dynamo.State{
			{1.5707963267948966, 1, 1, 7},
			{1.59, 0.98, 1.139, 6.9},
		},
		Positions: [][]sim.Point{
			{{X: 0, Y: -2}},
			{{X: -0.04, Y: -2.139}},
		},
		Complete: true,
		Steps:    8,
		Metrics:  map[string]float64{"energy_drift": 1.5e-9},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg := config.DefaultConfig()
	tr := sampleTrajectory()

	runID, err := st.Save(cfg, tr, nil)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if !strings.HasPrefix(runID, "elastic_") {
		t.Errorf("unexpected run id %q", runID)
	}

	meta, loaded, err := st.LoadTrajectory(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if meta.Geometry != "elastic" || meta.Records != 2 || meta.Steps != 8 || !meta.Complete {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.Params["k"] != 10 {
		t.Errorf("expected k=10, got %f", meta.Params["k"])
	}
	if meta.Metrics["energy_drift"] != 1.5e-9 {
		t.Errorf("expected drift 1.5e-9, got %g", meta.Metrics["energy_drift"])
	}

	if loaded.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", loaded.Len())
	}
	for i := range tr.States {
		for j := range tr.States[i] {
			if loaded.States[i][j] != tr.States[i][j] {
				t.Errorf("state %d/%d: expected %v, got %v", i, j, tr.States[i][j], loaded.States[i][j])
			}
		}
		if loaded.Positions[i][0] != tr.Positions[i][0] {
			t.Errorf("position %d: expected %v, got %v", i, tr.Positions[i][0], loaded.Positions[i][0])
		}
	}
	if len(loaded.StateNames) != 4 || loaded.StateNames[3] != "r_dot" {
		t.Errorf("unexpected state names %v", loaded.StateNames)
	}
}

func TestStoreSavesPartialRun(t *testing.T) {
	st := New(t.TempDir())
	tr := sampleTrajectory()
	tr.Complete = false

	runID, err := st.Save(config.DefaultConfig(), tr, dynamo.ErrNumericDivergence)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Complete || !strings.Contains(meta.Error, "divergence") {
		t.Errorf("expected incomplete run with error, got %+v", meta)
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := st.Save(config.DefaultConfig(), sampleTrajectory(), nil); err != nil {
			t.Fatalf("save %d failed: %v", i, err)
		}
	}
	if err := os.MkdirAll(filepath.Join(tmpDir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 3 {
		t.Errorf("expected 3 runs, got %d", len(runs))
	}
}

func TestStoreListMissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "missing")).List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected empty list, got %v (%v)", runs, err)
	}
}

func TestReadCSVRejectsRaggedRows(t *testing.T) {
	in := "time,x,x_dot,body0.x,body0.y\n0,1,0,1\n"
	_, err := ReadCSV(strings.NewReader(in))
	if err == nil {
		t.Fatal("expected error for ragged row")
	}
}

func TestReadCSVOscillatorColumns(t *testing.T) {
	in := "time,x,x_dot,body0.x,body0.y\n0,1,0,1,0\n0.1,0.99,-0.1,0.99,0\n"
	tr, err := ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(tr.Coordinates) != 1 || tr.Coordinates[0] != "x" {
		t.Errorf("unexpected coordinates %v", tr.Coordinates)
	}
	if tr.Len() != 2 || tr.Positions[1][0].X != 0.99 {
		t.Errorf("unexpected trajectory %+v", tr)
	}
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportJSON(&buf, "rk4", sampleTrajectory()); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if data.Geometry != "elastic" || data.Solver != "rk4" || len(data.Records) != 2 {
		t.Errorf("unexpected export %+v", data)
	}
	if data.Records[1].Coordinates[1] != 1.139 || data.Records[0].Positions[0].Y != -2 {
		t.Errorf("unexpected record %+v", data.Records[1])
	}
	if data.MaxRadius <= 2 {
		t.Errorf("expected max radius above 2, got %f", data.MaxRadius)
	}
}
