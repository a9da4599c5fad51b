package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"go.trai.ch/zerr"
)

var (
	dataDir string
	verbose bool

	// compile flags
	outPath   string
	format    string
	runT      float64
	runN      int
	fieldFile string
	isolate   bool
	toStore   bool

	// batch flags
	jobs   int
	outDir string

	// inspection flags
	component  string
	plotHeight int
	plotWidth  int
	asJSON     bool
	showSource bool
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, nil))

func main() {
	rootCmd := &cobra.Command{
		Use:           "mx3c",
		Short:         "compile micromagnetic simulations to mumax3 scripts",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			slog.SetDefault(logger)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".mx3c", "run store directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	compileCmd := &cobra.Command{
		Use:   "compile [config.yaml]",
		Short: "compile a simulation file",
		Args:  cobra.ExactArgs(1),
		RunE:  compileConfig,
	}
	addCompileFlags(compileCmd)

	presetCmd := &cobra.Command{
		Use:   "preset [name]",
		Short: "compile a built-in simulation",
		Args:  cobra.ExactArgs(1),
		RunE:  compilePreset,
	}
	addCompileFlags(presetCmd)
	presetCmd.Flags().BoolVar(&showSource, "source", false, "print the preset yaml instead of compiling")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in simulations",
		RunE:  listPresets,
	}

	batchCmd := &cobra.Command{
		Use:   "batch [config.yaml...]",
		Short: "compile several simulation files concurrently",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compileBatch,
	}
	batchCmd.Flags().IntVarP(&jobs, "jobs", "j", 4, "parallel compilations (0 = unbounded)")
	batchCmd.Flags().StringVar(&outDir, "out-dir", "out", "one sub-directory per simulation is created here")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
	showCmd.Flags().BoolVar(&asJSON, "json", false, "print metadata as json")

	profileCmd := &cobra.Command{
		Use:   "profile [config.yaml]",
		Short: "plot the initial magnetization along x",
		Args:  cobra.ExactArgs(1),
		RunE:  profileConfig,
	}
	addPlotFlags(profileCmd)

	inspectCmd := &cobra.Command{
		Use:   "inspect [file.ovf]",
		Short: "summarize and plot an ovf file",
		Args:  cobra.ExactArgs(1),
		RunE:  inspectOVF,
	}
	addPlotFlags(inspectCmd)

	browseCmd := &cobra.Command{
		Use:   "browse",
		Short: "browse stored runs interactively",
		RunE:  browseRuns,
	}

	rootCmd.AddCommand(compileCmd, presetCmd, presetsCmd, batchCmd, listCmd, showCmd, profileCmd, inspectCmd, browseCmd)

	if err := rootCmd.Execute(); err != nil {
		zerr.Log(context.Background(), logger, err)
		os.Exit(1)
	}
}

func addCompileFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "script path (stdout when empty)")
	cmd.Flags().StringVar(&format, "format", "bin4", "field file format: bin4, bin8 or txt")
	cmd.Flags().Float64Var(&runT, "t", 0, "total simulated time (time driver)")
	cmd.Flags().IntVar(&runN, "n", 0, "number of saved snapshots (time driver)")
	cmd.Flags().StringVar(&fieldFile, "field-file", "j.ovf", "current density file name")
	cmd.Flags().BoolVar(&isolate, "isolate", false, "derive the field file name from the config fingerprint")
	cmd.Flags().BoolVar(&toStore, "store", false, "save the compiled run in the run store")
}

func addPlotFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&component, "component", "c", "x", "component to plot: x, y or z")
	cmd.Flags().IntVar(&plotHeight, "height", 10, "plot height")
	cmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")
}
