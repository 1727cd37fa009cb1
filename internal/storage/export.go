package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/lagsim/internal/sim"
)

// ExportRecord is one (time, coordinates, positions) record.
type ExportRecord struct {
	Time        float64     `json:"t"`
	Coordinates []float64   `json:"q"`
	Velocities  []float64   `json:"v"`
	Positions   []sim.Point `json:"positions"`
}

type ExportData struct {
	Geometry    string             `json:"geometry"`
	Solver      string             `json:"solver,omitempty"`
	Coordinates []string           `json:"coordinates"`
	Complete    bool               `json:"complete"`
	Steps       int                `json:"steps"`
	MaxRadius   float64            `json:"max_radius"`
	Metrics     map[string]float64 `json:"metrics"`
	Records     []ExportRecord     `json:"records"`
}

func NewExportData(solver string, tr *sim.Trajectory) ExportData {
	data := ExportData{
		Geometry:    tr.Name,
		Solver:      solver,
		Coordinates: tr.Coordinates,
		Complete:    tr.Complete,
		Steps:       tr.Steps,
		MaxRadius:   tr.MaxRadius(),
		Metrics:     tr.Metrics,
		Records:     make([]ExportRecord, tr.Len()),
	}
	for i, rec := range tr.Records() {
		data.Records[i] = ExportRecord{
			Time:        rec.Time,
			Coordinates: rec.Coordinates,
			Velocities:  rec.Velocities,
			Positions:   rec.Positions,
		}
	}
	return data
}

// ExportJSON writes the trajectory as indented JSON.
func ExportJSON(w io.Writer, solver string, tr *sim.Trajectory) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewExportData(solver, tr))
}
