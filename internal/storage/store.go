package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/lagsim/internal/config"
	"github.com/san-kum/lagsim/internal/dynamo"
	"github.com/san-kum/lagsim/internal/sim"
)

const (
	metadataFile   = "metadata.json"
	trajectoryFile = "trajectory.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Geometry    string             `json:"geometry"`
	Timestamp   time.Time          `json:"timestamp"`
	Solver      string             `json:"solver"`
	MaxDt       float64            `json:"max_dt"`
	Tolerance   float64            `json:"tolerance"`
	Grid        config.GridConfig  `json:"grid"`
	Params      map[string]float64 `json:"params"`
	Initial     map[string]float64 `json:"initial"`
	Coordinates []string           `json:"coordinates"`
	Records     int                `json:"records"`
	Steps       int                `json:"steps"`
	Complete    bool               `json:"complete"`
	MaxRadius   float64            `json:"max_radius"`
	Metrics     map[string]float64 `json:"metrics"`
	Error       string             `json:"error,omitempty"`
}

// Save writes a run directory holding metadata.json and trajectory.csv.
// A partial trajectory is saved with the error that stopped it.
func (s *Store) Save(cfg *config.Config, tr *sim.Trajectory, runErr error) (string, error) {
	runID := fmt.Sprintf("%s_%s", cfg.Geometry, uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Geometry:    cfg.Geometry,
		Timestamp:   time.Now(),
		Solver:      cfg.Solver,
		MaxDt:       cfg.MaxDt,
		Tolerance:   cfg.Tolerance,
		Grid:        cfg.Grid,
		Params:      cfg.Params,
		Initial:     cfg.Initial,
		Coordinates: tr.Coordinates,
		Records:     tr.Len(),
		Steps:       tr.Steps,
		Complete:    tr.Complete,
		MaxRadius:   tr.MaxRadius(),
		Metrics:     tr.Metrics,
	}
	if runErr != nil {
		meta.Error = runErr.Error()
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, trajectoryFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteCSV(csvFile, tr); err != nil {
		return "", err
	}
	return runID, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 17, 64)
}

func positionHeader(body int) []string {
	return []string{fmt.Sprintf("body%d.x", body), fmt.Sprintf("body%d.y", body)}
}

// WriteCSV writes one row per record: time, the interleaved state, then
// x and y of every body.
func WriteCSV(w io.Writer, tr *sim.Trajectory) error {
	cw := csv.NewWriter(w)

	header := append([]string{"time"}, tr.StateNames...)
	bodies := 0
	if tr.Len() > 0 {
		bodies = len(tr.Positions[0])
	}
	for b := 0; b < bodies; b++ {
		header = append(header, positionHeader(b)...)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for i := 0; i < tr.Len(); i++ {
		row := make([]string, 0, len(header))
		row = append(row, formatFloat(tr.Times[i]))
		for _, v := range tr.States[i] {
			row = append(row, formatFloat(v))
		}
		for _, p := range tr.Positions[i] {
			row = append(row, formatFloat(p.X), formatFloat(p.Y))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV parses what WriteCSV produced.
func ReadCSV(r io.Reader) (*sim.Trajectory, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: missing csv header", dynamo.ErrDimensionMismatch)
	}

	header := records[0]
	dim := 0
	for _, name := range header[1:] {
		if strings.Contains(name, ".") {
			break
		}
		dim++
	}
	bodies := (len(header) - 1 - dim) / 2

	tr := &sim.Trajectory{
		StateNames: header[1 : 1+dim],
		Metrics:    make(map[string]float64),
		Complete:   true,
	}
	for i := 0; i < dim; i += 2 {
		tr.Coordinates = append(tr.Coordinates, header[1+i])
	}

	for n, rec := range records[1:] {
		if len(rec) != len(header) {
			return nil, fmt.Errorf("%w: row %d has %d fields, header has %d", dynamo.ErrDimensionMismatch, n+1, len(rec), len(header))
		}
		vals := make([]float64, len(rec))
		for i, field := range rec {
			if vals[i], err = strconv.ParseFloat(field, 64); err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", n+1, header[i], err)
			}
		}
		tr.Times = append(tr.Times, vals[0])
		tr.States = append(tr.States, dynamo.State(vals[1:1+dim]))
		ps := make([]sim.Point, bodies)
		for b := range ps {
			ps[b] = sim.Point{X: vals[1+dim+2*b], Y: vals[2+dim+2*b]}
		}
		tr.Positions = append(tr.Positions, ps)
	}
	return tr, nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadTrajectory reads a saved run back, restoring its metadata fields.
func (s *Store) LoadTrajectory(runID string) (*RunMetadata, *sim.Trajectory, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, nil, err
	}

	file, err := os.Open(filepath.Join(s.baseDir, runID, trajectoryFile))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	tr, err := ReadCSV(file)
	if err != nil {
		return nil, nil, err
	}
	tr.Name = meta.Geometry
	tr.Coordinates = meta.Coordinates
	tr.Complete = meta.Complete
	tr.Steps = meta.Steps
	if meta.Metrics != nil {
		tr.Metrics = meta.Metrics
	}
	return meta, tr, nil
}
