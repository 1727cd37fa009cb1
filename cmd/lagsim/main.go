package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/san-kum/lagsim/internal/config"
	"github.com/san-kum/lagsim/internal/experiment"
	"github.com/san-kum/lagsim/internal/logging"
	"github.com/san-kum/lagsim/internal/viz"
)

var (
	dataDir  string
	logLevel string
	logger   *log.Logger
	registry *experiment.Registry

	// run settings
	preset     string
	configFile string
	solverName string
	maxDt      float64
	tolerance  float64
	maxSteps   int
	horizon    float64
	points     int
	step       float64
	paramSets  map[string]string
	initSets   map[string]string
	frames     int
	noSave     bool
	playAfter  bool
	saveConfig string

	// inspection
	latex     bool
	xName     string
	yName     string
	crossName string
	pngDir    string
	svgFile   string
	svgSize   int
	stateName string
	lyapTime  float64

	// playback
	ascii     bool
	frameRate int

	// sweeps
	axes      []string
	objective string
	workers   int
	sweepName string
	sweepMin  float64
	sweepMax  float64
	sweepN    int
	transient float64
	window    float64

	// tether
	tetherCSV bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "lagsim",
		Short: "lagrangian mechanics lab: derive, integrate and replay planar systems",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = logging.Stderr(logLevel)
			registry = experiment.NewRegistry(logger)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive(config.DefaultFrames, logging.Discard())
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".lagsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")

	runCmd := &cobra.Command{
		Use:   "run [geometry]",
		Short: "derive, compile and integrate a geometry",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&solverName, "solver", config.DefaultSolver, "integrator")
	runCmd.Flags().Float64Var(&maxDt, "max-dt", config.DefaultMaxDt, "largest internal step")
	runCmd.Flags().Float64Var(&tolerance, "tol", config.DefaultTolerance, "error tolerance for adaptive solvers")
	runCmd.Flags().IntVar(&maxSteps, "max-steps", 0, "step budget, 0 for none")
	runCmd.Flags().Float64Var(&horizon, "horizon", config.DefaultHorizon, "end of the output grid")
	runCmd.Flags().IntVar(&points, "points", config.DefaultPoints, "output points, endpoints included")
	runCmd.Flags().Float64Var(&step, "step", 0, "output spacing; overrides --points")
	runCmd.Flags().StringToStringVar(&paramSets, "param", nil, "parameter values, e.g. k=20,m=2")
	runCmd.Flags().StringToStringVar(&initSets, "init", nil, "initial values, e.g. theta=1.2,r_dot=0")
	runCmd.Flags().IntVar(&frames, "frames", config.DefaultFrames, "frames for playback")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	runCmd.Flags().BoolVar(&playAfter, "play", false, "replay the trajectory when done")
	runCmd.Flags().StringVar(&saveConfig, "save-config", "", "write the resolved configuration to this yaml file")

	deriveCmd := &cobra.Command{
		Use:   "derive [geometry]",
		Short: "print the solved equations of motion",
		Args:  cobra.ExactArgs(1),
		RunE:  deriveEquations,
	}
	deriveCmd.Flags().BoolVar(&latex, "latex", false, "render as LaTeX")

	geometriesCmd := &cobra.Command{
		Use:   "geometries",
		Short: "list catalog geometries",
		RunE:  listGeometries,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [geometry]",
		Short: "list presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show run metadata and statistics",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&pngDir, "png", "", "also write path, state and energy charts to this directory")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase portrait or poincare section of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().StringVar(&xName, "x", "", "state on the x-axis (default: first coordinate)")
	phaseCmd.Flags().StringVar(&yName, "y", "", "state on the y-axis (default: its velocity)")
	phaseCmd.Flags().StringVar(&crossName, "section", "", "record upward zero crossings of this state instead")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "spectrum and lyapunov estimate of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&stateName, "state", "", "state to analyze (default: first coordinate)")
	analyzeCmd.Flags().Float64Var(&lyapTime, "lyapunov", 20, "horizon for the lyapunov estimate, 0 to skip")

	renderCmd := &cobra.Command{
		Use:   "render [run_id]",
		Short: "render the path of the last body as svg",
		Args:  cobra.ExactArgs(1),
		RunE:  renderRun,
	}
	renderCmd.Flags().StringVarP(&svgFile, "output", "o", "", "output file (default: stdout)")
	renderCmd.Flags().IntVar(&svgSize, "size", 600, "image size in pixels")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export trajectory as csv",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export trajectory as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	liveCmd := &cobra.Command{
		Use:   "live [run_id]",
		Short: "replay a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().IntVar(&frames, "frames", config.DefaultFrames, "frames to replay")
	liveCmd.Flags().BoolVar(&ascii, "ascii", false, "plain ascii frames instead of the player")
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate for ascii playback")

	compareCmd := &cobra.Command{
		Use:   "compare [geometry] [solver1] [solver2] ...",
		Short: "run one configuration with several solvers",
		Args:  cobra.MinimumNArgs(2),
		RunE:  compareSolvers,
	}
	compareCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	sweepCmd := &cobra.Command{
		Use:   "sweep [geometry]",
		Short: "grid search over parameters and initial values",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	sweepCmd.Flags().StringArrayVar(&axes, "axis", nil, "swept values, e.g. k=5,10,20 or init:theta=0.5,1")
	sweepCmd.Flags().StringVar(&objective, "objective", "energy_drift", "score to minimize")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "concurrent runs, 0 for one per cpu")

	bifurcationCmd := &cobra.Command{
		Use:   "bifurcation [geometry]",
		Short: "sweep one parameter and plot the settled values of a state",
		Args:  cobra.ExactArgs(1),
		RunE:  runBifurcation,
	}
	bifurcationCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	bifurcationCmd.Flags().StringVar(&sweepName, "param", "", "parameter to sweep")
	bifurcationCmd.Flags().Float64Var(&sweepMin, "min", 0, "first value")
	bifurcationCmd.Flags().Float64Var(&sweepMax, "max", 1, "last value")
	bifurcationCmd.Flags().IntVar(&sweepN, "steps", 40, "number of values")
	bifurcationCmd.Flags().StringVar(&stateName, "state", "", "recorded state (default: first coordinate)")
	bifurcationCmd.Flags().Float64Var(&transient, "transient", 20, "settling time")
	bifurcationCmd.Flags().Float64Var(&window, "window", 10, "recording time")

	bounceCmd := &cobra.Command{
		Use:   "bounce",
		Short: "point mass on an inextensible-when-taut tether",
		RunE:  runBounce,
	}
	bounceCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml); its tether block is used")
	bounceCmd.Flags().BoolVar(&tetherCSV, "csv", false, "print states as csv instead of animating")
	bounceCmd.Flags().IntVar(&frameRate, "fps", 60, "frame rate")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run every step of a yaml scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the runs")

	rootCmd.AddCommand(scenarioCmd, runCmd, deriveCmd, geometriesCmd, presetsCmd, listCmd, showCmd, plotCmd,
		phaseCmd, analyzeCmd, renderCmd, exportCSVCmd, exportJSONCmd, liveCmd, compareCmd,
		sweepCmd, bifurcationCmd, bounceCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
