package main

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/lagsim/internal/analysis"
	"github.com/san-kum/lagsim/internal/dynamo"
	"github.com/san-kum/lagsim/internal/integrators"
	"github.com/san-kum/lagsim/internal/optim"
)

// parseAxis reads "k=5,10,20" or "init:theta=0.5,1".
func parseAxis(arg string) (optim.Axis, error) {
	var axis optim.Axis
	if rest, ok := strings.CutPrefix(arg, "init:"); ok {
		axis.Initial = true
		arg = rest
	}
	name, list, ok := strings.Cut(arg, "=")
	if !ok || name == "" || list == "" {
		return axis, dynamo.Invalidf("axis %q is not name=v1,v2,...", arg)
	}
	axis.Name = strings.TrimSpace(name)
	for _, raw := range strings.Split(list, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return axis, dynamo.Invalidf("axis %s: %q is not a number", axis.Name, raw)
		}
		axis.Values = append(axis.Values, v)
	}
	return axis, nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	parsed := make([]optim.Axis, 0, len(axes))
	for _, a := range axes {
		axis, err := parseAxis(a)
		if err != nil {
			return err
		}
		parsed = append(parsed, axis)
	}

	ctx, cancel := signalContext()
	defer cancel()

	search := optim.NewGridSearch(parsed, workers)
	fmt.Printf("sweeping %d points of %s, minimizing %s\n\n", len(search.Points()), cfg.Geometry, objective)

	result, err := search.Search(ctx, registry, cfg, objective)
	if err != nil {
		return err
	}

	trials := append([]optim.Trial(nil), result.Trials...)
	sort.SliceStable(trials, func(i, j int) bool { return trials[i].Score < trials[j].Score })

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VALUES\tSCORE\tCOMPLETE\tERROR")
	for _, t := range trials {
		msg := "-"
		if t.Err != nil {
			msg = t.Err.Error()
		}
		score := fmt.Sprintf("%.6g", t.Score)
		if math.IsInf(t.Score, 1) {
			score = "inf"
		}
		fmt.Fprintf(w, "%s\t%s\t%v\t%s\n", formatValues(t.Values), score, t.Complete, msg)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if result.Best == nil {
		return fmt.Errorf("no sweep point completed")
	}
	fmt.Printf("\nbest: %s (%s = %.6g)\n", formatValues(result.Best), objective, result.BestScore)
	return nil
}

func runBifurcation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	if sweepName == "" {
		return dynamo.Invalidf("--param is required")
	}

	compiled, err := registry.Compiled(cfg.Geometry)
	if err != nil {
		return err
	}
	x0, err := compiled.Equations.StateFrom(cfg.Initial)
	if err != nil {
		return err
	}

	idx := 0
	if stateName != "" {
		idx = -1
		for i, n := range compiled.Model.StateNames {
			if n == stateName {
				idx = i
			}
		}
		if idx < 0 {
			return dynamo.Invalidf("unknown state %q (available: %v)", stateName, compiled.Model.StateNames)
		}
	}

	points, err := analysis.BifurcationDiagram(compiled.Model, integrators.NewRK4(), cfg.Params, x0, analysis.Sweep{
		Param:      sweepName,
		Min:        sweepMin,
		Max:        sweepMax,
		Steps:      sweepN,
		StateIndex: idx,
		Dt:         cfg.MaxDt,
		Transient:  transient,
		Record:     window,
	})
	if err != nil {
		return err
	}

	fmt.Printf("bifurcation of %s: %s over %s in [%g, %g]\n\n",
		cfg.Geometry, compiled.Model.StateNames[idx], sweepName, sweepMin, sweepMax)
	fmt.Println(analysis.BifurcationToASCII(points, 70, 20))
	return nil
}
