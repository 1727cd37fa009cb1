package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/lagsim/internal/config"
	"github.com/san-kum/lagsim/internal/dynamo"
	"github.com/san-kum/lagsim/internal/experiment"
	"github.com/san-kum/lagsim/internal/storage"
	"github.com/san-kum/lagsim/internal/viz"
)

// resolveConfig layers, lowest first: catalog defaults, a preset or a
// config file, then any flag the user set explicitly.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	geometry := config.DefaultGeometry
	if len(args) > 0 {
		geometry = args[0]
	}

	var cfg *config.Config
	switch {
	case configFile != "":
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		if len(args) > 0 && loaded.Geometry != geometry {
			return nil, dynamo.Invalidf("config file is for %q, not %q", loaded.Geometry, geometry)
		}
		cfg = loaded
	case preset != "":
		cfg = config.GetPreset(geometry, preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(geometry))
		}
	default:
		var err error
		if cfg, err = config.ForGeometry(geometry); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	changed := func(name string) bool {
		return flags.Lookup(name) != nil && flags.Changed(name)
	}
	if changed("solver") {
		cfg.Solver = solverName
	}
	if changed("max-dt") {
		cfg.MaxDt = maxDt
	}
	if changed("tol") {
		cfg.Tolerance = tolerance
	}
	if changed("max-steps") {
		cfg.MaxSteps = maxSteps
	}
	if changed("horizon") {
		cfg.Grid.Horizon = horizon
	}
	if changed("points") {
		cfg.Grid.Points, cfg.Grid.Step = points, 0
	}
	if changed("step") {
		cfg.Grid.Step, cfg.Grid.Points = step, 0
	}
	if changed("frames") {
		cfg.Frames = frames
	}
	if err := applyValues(cfg.Params, paramSets, "param"); err != nil {
		return nil, err
	}
	if err := applyValues(cfg.Initial, initSets, "init"); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyValues(dst map[string]float64, src map[string]string, flag string) error {
	for name, raw := range src {
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return dynamo.Invalidf("--%s %s=%q is not a number", flag, name, raw)
		}
		dst[name] = v
	}
	return nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	if saveConfig != "" {
		if err := config.Save(saveConfig, cfg); err != nil {
			return err
		}
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("running %s with %s...\n", cfg.Geometry, cfg.Solver)
	start := time.Now()

	exp := experiment.NewExperiment(cfg, logger)
	tr, runErr := exp.Run(ctx)
	if tr == nil {
		return runErr
	}
	elapsed := time.Since(start)

	runID := ""
	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		if runID, err = st.Save(cfg, tr, runErr); err != nil {
			return err
		}
	}

	fmt.Printf("completed in %v\n", elapsed)
	if runID != "" {
		fmt.Printf("run id: %s\n", runID)
	}
	fmt.Printf("records: %d\n", tr.Len())
	fmt.Printf("steps: %d\n", tr.Steps)
	fmt.Printf("complete: %v\n", tr.Complete)
	fmt.Printf("max radius: %.6f\n", tr.MaxRadius())
	fmt.Printf("energy drift: %.3e\n", tr.EnergyDrift())
	if len(tr.Metrics) > 0 {
		fmt.Println("\nmetrics:")
		for _, name := range sortedKeys(tr.Metrics) {
			fmt.Printf("  %s: %.6f\n", name, tr.Metrics[name])
		}
	}

	if runErr != nil {
		return runErr
	}
	if playAfter {
		return viz.Play(tr, cfg.Frames)
	}
	return nil
}

func compareSolvers(cmd *cobra.Command, args []string) error {
	base, err := resolveConfig(cmd, args[:1])
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("comparing solvers on %s (%d records to t=%.2f)\n\n",
		base.Geometry, base.Grid.Points, base.Grid.Horizon)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SOLVER\tSTEPS\tCOMPLETE\tDRIFT\tMAX_R\tTIME\tERROR")

	for _, name := range args[1:] {
		cfg := base.Clone()
		cfg.Solver = name

		start := time.Now()
		tr, runErr := experiment.NewExperiment(cfg, logger).Run(ctx)
		elapsed := time.Since(start)

		msg := "-"
		if runErr != nil {
			msg = runErr.Error()
		}
		if tr == nil {
			fmt.Fprintf(w, "%s\t-\t-\t-\t-\t%v\t%s\n", name, elapsed.Round(time.Millisecond), msg)
			continue
		}
		fmt.Fprintf(w, "%s\t%d\t%v\t%.3e\t%.4f\t%v\t%s\n",
			name, tr.Steps, tr.Complete, tr.EnergyDrift(), tr.MaxRadius(),
			elapsed.Round(time.Millisecond), msg)
	}

	return w.Flush()
}
