package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/san-kum/lagsim/internal/config"
	"github.com/san-kum/lagsim/internal/physics"
	"github.com/san-kum/lagsim/internal/sim"
	"github.com/san-kum/lagsim/internal/tui"
	"github.com/san-kum/lagsim/internal/viz"
)

func runLive(cmd *cobra.Command, args []string) error {
	meta, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if tr.Len() == 0 {
		return fmt.Errorf("no data to replay")
	}

	if !ascii {
		return viz.Play(tr, frames)
	}

	r := tui.NewLiveRenderer(os.Stdout, meta.Geometry, tr.MaxRadius(), frameRate)
	r.Start()
	defer r.Stop()
	r.Replay(tr, tr.Frames(frames))
	return nil
}

func runBounce(cmd *cobra.Command, args []string) error {
	tcfg := config.DefaultTether()
	if configFile != "" {
		cfg, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		tcfg = cfg.Tether
	}

	tether, start := tcfg.Physics()
	stream, err := physics.NewTetherStream(tether, start)
	if err != nil {
		return err
	}
	logger.Debug("tether", "length", tether.Length, "stiffness", tether.Stiffness, "states", stream.Len())

	if tetherCSV {
		w := csv.NewWriter(os.Stdout)
		if err := w.Write([]string{"time", "x", "y", "vx", "vy"}); err != nil {
			return err
		}
		for stream.Next() {
			s := stream.State()
			row := []string{ff(s.T), ff(s.X), ff(s.Y), ff(s.VX), ff(s.VY)}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		w.Flush()
		return w.Error()
	}

	r := tui.NewLiveRenderer(os.Stdout, "tether", tether.Length, frameRate)
	r.Start()
	defer r.Stop()
	for stream.Next() {
		s := stream.State()
		status := "slack"
		if s.Radius() >= tether.Length-1e-9 {
			status = "taut"
		}
		r.Frame([]sim.Point{{X: s.X, Y: s.Y}}, s.T, status)
	}
	return nil
}

func ff(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
