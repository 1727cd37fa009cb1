package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/lagsim/internal/analysis"
	"github.com/san-kum/lagsim/internal/config"
	"github.com/san-kum/lagsim/internal/dynamo"
	"github.com/san-kum/lagsim/internal/export"
	"github.com/san-kum/lagsim/internal/integrators"
	"github.com/san-kum/lagsim/internal/metrics"
	"github.com/san-kum/lagsim/internal/physics"
	"github.com/san-kum/lagsim/internal/sim"
	"github.com/san-kum/lagsim/internal/storage"
)

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// loadRun reads a stored run. Energies are not stored, so they are
// recomputed from the compiled geometry when it is still in the catalog.
func loadRun(runID string) (*storage.RunMetadata, *sim.Trajectory, error) {
	st := storage.New(dataDir)
	meta, tr, err := st.LoadTrajectory(runID)
	if err != nil {
		return nil, nil, err
	}

	compiled, err := registry.Compiled(meta.Geometry)
	if err != nil {
		logger.Warn("energies unavailable", "run", runID, "err", err)
		return meta, tr, nil
	}
	sys, err := sim.NewSystem(compiled.Model, meta.Params)
	if err != nil {
		logger.Warn("energies unavailable", "run", runID, "err", err)
		return meta, tr, nil
	}
	tr.Energies = make([]float64, tr.Len())
	for i, x := range tr.States {
		tr.Energies[i] = sys.Energy(x)
	}
	return meta, tr, nil
}

func stateIndex(tr *sim.Trajectory, name string, fallback int) (int, error) {
	if name == "" {
		if fallback >= len(tr.StateNames) {
			return 0, dynamo.Invalidf("run has only %d state components", len(tr.StateNames))
		}
		return fallback, nil
	}
	for i, n := range tr.StateNames {
		if n == name {
			return i, nil
		}
	}
	return 0, dynamo.Invalidf("unknown state %q (available: %v)", name, tr.StateNames)
}

func deriveEquations(cmd *cobra.Command, args []string) error {
	compiled, err := registry.Compiled(args[0])
	if err != nil {
		return err
	}
	eq := compiled.Equations

	fmt.Printf("geometry: %s\n", args[0])
	fmt.Printf("arguments: %s\n\n", strings.Join(compiled.Model.Order.Names(), ", "))

	lines := eq.Strings()
	if latex {
		lines = eq.LaTeX()
	}
	for _, line := range lines {
		fmt.Println(line)
	}
	fmt.Printf("\ndet M = %s\n", eq.Determinant.String())
	return nil
}

func listGeometries(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "GEOMETRY\tPARAMS\tDESCRIPTION")
	for _, name := range registry.ListGeometries() {
		entry, err := physics.Lookup(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", name, formatValues(entry.Params), entry.Description)
	}
	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	geometries := config.Geometries()
	if len(args) > 0 {
		geometries = args[:1]
	}

	fmt.Println("available presets:")
	for _, g := range geometries {
		names := config.ListPresets(g)
		if len(names) == 0 {
			fmt.Printf("\n  %s: none\n", g)
			continue
		}
		fmt.Printf("\n  %s:\n", g)
		for _, p := range names {
			cfg := config.GetPreset(g, p)
			fmt.Printf("    %-12s %s, t=%.0f, %s\n", p, cfg.Solver, cfg.Grid.Horizon, formatValues(cfg.Initial))
		}
	}
	fmt.Println("\nusage: lagsim run <geometry> --preset <name>")
	return nil
}

func formatValues(values map[string]float64) string {
	parts := make([]string, 0, len(values))
	for _, k := range sortedKeys(values) {
		parts = append(parts, fmt.Sprintf("%s=%g", k, values[k]))
	}
	return strings.Join(parts, " ")
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tGEOMETRY\tTIME\tHORIZON\tRECORDS\tSOLVER\tCOMPLETE")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%d\t%s\t%v\n",
			run.ID,
			run.Geometry,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Grid.Horizon,
			run.Records,
			run.Solver,
			run.Complete,
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	meta, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("geometry: %s\n", meta.Geometry)
	fmt.Printf("solver: %s (max dt %g)\n", meta.Solver, meta.MaxDt)
	fmt.Printf("params: %s\n", formatValues(meta.Params))
	fmt.Printf("initial: %s\n", formatValues(meta.Initial))
	if meta.Error != "" {
		fmt.Printf("error: %s\n", meta.Error)
	}

	s := metrics.Summarize(tr)
	fmt.Printf("\nrecords: %d over %.3fs, %d steps, complete: %v\n", s.Records, s.Duration, s.Steps, s.Complete)
	fmt.Printf("energy drift: %.3e\n\n", s.EnergyDrift)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SERIES\tMIN\tMAX\tMEAN\tSTDDEV")
	rows := append(append([]metrics.Series(nil), s.States...), s.Energy, s.Radius)
	for _, r := range rows {
		if r.Name == "" {
			continue
		}
		fmt.Fprintf(w, "%s\t%.5f\t%.5f\t%.5f\t%.5f\n", r.Name, r.Min, r.Max, r.Mean, r.StdDev)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if tr.Len() == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("geometry: %s\n", meta.Geometry)
	fmt.Printf("records: %d\n\n", tr.Len())

	numVars := min(len(tr.StateNames), 6)
	for varIdx := 0; varIdx < numVars; varIdx++ {
		data := make([]float64, tr.Len())
		for i, x := range tr.States {
			data[i] = x[varIdx]
		}
		graph := asciigraph.Plot(downsample(data, 70),
			asciigraph.Height(10),
			asciigraph.Width(70),
			asciigraph.Caption(tr.StateNames[varIdx]+" vs time"),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	if len(tr.Energies) > 0 {
		fmt.Println(asciigraph.Plot(downsample(tr.Energies, 70),
			asciigraph.Height(8),
			asciigraph.Width(70),
			asciigraph.Caption("energy"),
		))
	}

	if pngDir == "" {
		return nil
	}
	return writePNGs(tr, pngDir)
}

func writePNGs(tr *sim.Trajectory, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	bodies := len(tr.Positions[0])
	path, err := export.PathPlot(tr, bodies-1)
	if err != nil {
		return err
	}
	if err := export.SavePNG(filepath.Join(dir, "path.png"), path, 6, 6, 100); err != nil {
		return err
	}

	series, err := export.SeriesPlot(tr, tr.Coordinates...)
	if err != nil {
		return err
	}
	if err := export.SavePNG(filepath.Join(dir, "coordinates.png"), series, 8, 4, 100); err != nil {
		return err
	}

	if len(tr.Energies) > 0 {
		energy, err := export.EnergyPlot(tr)
		if err != nil {
			return err
		}
		if err := export.SavePNG(filepath.Join(dir, "energy.png"), energy, 8, 4, 100); err != nil {
			return err
		}
	}

	fmt.Printf("charts written to %s\n", dir)
	return nil
}

// downsample keeps at most n evenly spaced values.
func downsample(data []float64, n int) []float64 {
	if len(data) <= n {
		return data
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = data[i*(len(data)-1)/(n-1)]
	}
	return out
}

func phasePlot(cmd *cobra.Command, args []string) error {
	meta, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}

	xi, err := stateIndex(tr, xName, 0)
	if err != nil {
		return err
	}
	yi, err := stateIndex(tr, yName, xi+1)
	if err != nil {
		return err
	}

	if crossName != "" {
		ci, err := stateIndex(tr, crossName, 0)
		if err != nil {
			return err
		}
		section := analysis.PoincareSectionOf(tr, ci, 0, xi, yi)
		fmt.Printf("poincare section of %s: %s = 0 upward, %d crossings\n\n", meta.ID, crossName, len(section.Points))
		fmt.Println(analysis.PoincareSectionToASCII(section, 60, 20))
		return nil
	}

	portrait := analysis.PhasePortrait(tr, xi, yi)
	fmt.Printf("phase portrait of %s: %s vs %s\n\n", meta.ID, tr.StateNames[yi], tr.StateNames[xi])
	fmt.Println(analysis.PhasePortraitToASCII(portrait, 60, 20))
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}

	idx, err := stateIndex(tr, stateName, 0)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s (%s)\n\n", meta.ID, tr.StateNames[idx])

	spectrum, err := analysis.SpectrumOf(tr, idx)
	if err != nil {
		return err
	}
	if f := spectrum.Dominant(); f > 0 {
		fmt.Printf("dominant frequency: %.4f Hz (period %.4fs)\n", f, 1/f)
	} else {
		fmt.Println("dominant frequency: none")
	}

	if lyapTime <= 0 {
		return nil
	}

	compiled, err := registry.Compiled(meta.Geometry)
	if err != nil {
		return err
	}
	sys, err := sim.NewSystem(compiled.Model, meta.Params)
	if err != nil {
		return err
	}
	dt := meta.MaxDt
	if !(dt > 0) {
		dt = config.DefaultMaxDt
	}
	lambda := analysis.LyapunovExponent(sys, integrators.NewRK4(), tr.States[0], dt, lyapTime, 1e-8)

	verdict := "regular"
	if lambda > 0.05 {
		verdict = "chaotic"
	}
	fmt.Printf("largest lyapunov exponent: %.4f (%s)\n", lambda, verdict)
	if lambda > 0 && !math.IsInf(lambda, 0) {
		fmt.Printf("predictability horizon: %.2fs\n", 1/lambda)
	}
	return nil
}

func renderRun(cmd *cobra.Command, args []string) error {
	_, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if tr.Len() == 0 {
		return fmt.Errorf("no data to render")
	}

	svg, err := export.TrajectoryToSVG(tr, len(tr.Positions[0])-1, svgSize, "#00d7af")
	if err != nil {
		return err
	}
	if svgFile == "" {
		fmt.Print(svg)
		return nil
	}
	return os.WriteFile(svgFile, []byte(svg), 0644)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.WriteCSV(os.Stdout, tr)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, meta.Solver, tr)
}
