package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/lagsim/internal/automation"
	"github.com/san-kum/lagsim/internal/storage"
)

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("scenario %s: %d steps\n", sc.Name, len(sc.Steps))
	if sc.Description != "" {
		fmt.Println(sc.Description)
	}
	fmt.Println()

	results, runErr := automation.RunScenario(ctx, sc, logger)

	st := storage.New(dataDir)
	if !noSave {
		if err := st.Init(); err != nil {
			return err
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tGEOMETRY\tRECORDS\tCOMPLETE\tDRIFT\tRUN\tERROR")
	failed := 0
	for i, r := range results {
		msg := "-"
		if r.Err != nil {
			msg = r.Err.Error()
			failed++
		}
		if r.Trajectory == nil {
			fmt.Fprintf(w, "%d\t%s\t-\t-\t-\t-\t%s\n", i+1, r.Step.Geometry, msg)
			continue
		}

		runID := "-"
		if !noSave {
			if runID, err = st.Save(r.Config, r.Trajectory, r.Err); err != nil {
				return err
			}
		}
		if r.Step.SaveAs != "" {
			if err := writeCSVFile(r.Step.SaveAs, r); err != nil {
				return err
			}
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%v\t%.3e\t%s\t%s\n",
			i+1, r.Step.Geometry, r.Trajectory.Len(), r.Trajectory.Complete,
			r.Trajectory.EnergyDrift(), runID, msg)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if runErr != nil {
		return runErr
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d steps failed", failed, len(results))
	}
	return nil
}

func writeCSVFile(path string, r automation.StepResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return storage.WriteCSV(f, r.Trajectory)
}
