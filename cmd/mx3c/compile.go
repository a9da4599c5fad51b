package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/san-kum/mx3c/internal/compiler"
	"github.com/san-kum/mx3c/internal/config"
	"github.com/san-kum/mx3c/internal/ovf"
	"github.com/san-kum/mx3c/internal/storage"
	"github.com/san-kum/mx3c/internal/viz"
	"github.com/spf13/cobra"
	"go.trai.ch/zerr"
)

func loadSimulation(path string) (*config.Simulation, error) {
	cfg, data, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	sim, err := cfg.Build()
	if err != nil {
		return nil, zerr.With(err, "config", path)
	}
	sim.Fingerprint = config.Fingerprint(data)
	return sim, nil
}

// applyFlags lets explicitly set flags override the simulation file.
func applyFlags(cmd *cobra.Command, sim *config.Simulation) error {
	if cmd.Flags().Changed("t") {
		sim.Run.T = runT
	}
	if cmd.Flags().Changed("n") {
		sim.Run.N = runN
	}
	if cmd.Flags().Changed("format") {
		f, err := ovf.ParseFormat(format)
		if err != nil {
			return err
		}
		sim.Format = f
	}
	if cmd.Flags().Changed("field-file") {
		sim.FieldFile = fieldFile
	}
	if isolate {
		sim.FieldFile = "j_" + sim.Fingerprint[:8] + ".ovf"
	}
	return nil
}

func compileConfig(cmd *cobra.Command, args []string) error {
	sim, err := loadSimulation(args[0])
	if err != nil {
		return err
	}
	return compileSimulation(cmd, sim)
}

func compilePreset(cmd *cobra.Command, args []string) error {
	name := args[0]
	src, ok := config.PresetSource(name)
	if !ok {
		return zerr.With(zerr.New("unknown preset"), "preset", name)
	}
	if showSource {
		fmt.Print(src)
		return nil
	}

	cfg := config.GetPreset(name)
	sim, err := cfg.Build()
	if err != nil {
		return zerr.With(err, "preset", name)
	}
	sim.Fingerprint = config.Fingerprint([]byte(src))
	return compileSimulation(cmd, sim)
}

func compileSimulation(cmd *cobra.Command, sim *config.Simulation) error {
	if err := applyFlags(cmd, sim); err != nil {
		return err
	}

	opts := compiler.Options{
		Format:    sim.Format,
		FieldFile: sim.FieldFile,
		Dir:       ".",
		Logger:    logger,
	}
	if outPath != "" {
		opts.Dir = filepath.Dir(outPath)
	}

	var (
		st    *storage.Store
		runID string
	)
	if toStore {
		st = storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		id, err := st.Create(sim.Name)
		if err != nil {
			return err
		}
		runID = id
		opts.Dir = st.Dir(runID)
	}

	logger.Debug("compiling", "name", sim.Name, "driver", sim.Driver.Kind.String(), "fingerprint", sim.Fingerprint)
	res, err := compiler.New(opts).Compile(sim.Driver, sim.System, sim.Run)
	if err != nil {
		if st != nil {
			os.RemoveAll(st.Dir(runID))
		}
		return zerr.With(err, "simulation", sim.Name)
	}
	text := res.Text()

	if outPath != "" {
		if err := os.WriteFile(outPath, []byte(text), 0o644); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to write script"), "path", outPath)
		}
	}
	if st != nil {
		meta := storage.RunMetadata{
			Name:        sim.Name,
			Driver:      sim.Driver.Kind.String(),
			Fingerprint: sim.Fingerprint,
			T:           sim.Run.T,
			N:           sim.Run.N,
			Format:      string(sim.Format),
			Statements:  res.Script.Len(),
			Warnings:    res.Warnings,
		}
		for _, f := range res.Files {
			meta.Files = append(meta.Files, filepath.Base(f))
		}
		if err := st.Save(runID, meta, text); err != nil {
			return err
		}
	}
	if outPath == "" && st == nil {
		fmt.Print(text)
	}

	fields := []viz.Field{
		{Label: "driver", Value: sim.Driver.Kind.String()},
		{Label: "statements", Value: strconv.Itoa(res.Script.Len())},
		{Label: "fingerprint", Value: sim.Fingerprint},
	}
	if outPath != "" {
		fields = append(fields, viz.Field{Label: "script", Value: outPath})
	}
	if runID != "" {
		fields = append(fields, viz.Field{Label: "run", Value: runID})
	}
	for _, f := range res.Files {
		fields = append(fields, viz.Field{Label: "field file", Value: f})
	}
	fmt.Fprintln(os.Stderr, viz.Summary(sim.Name, fields, res.Warnings))
	return nil
}

func compileBatch(cmd *cobra.Command, args []string) error {
	batch := make([]compiler.Job, 0, len(args))
	seen := make(map[string]string, len(args))
	for _, path := range args {
		sim, err := loadSimulation(path)
		if err != nil {
			return err
		}
		if other, ok := seen[sim.Name]; ok {
			return zerr.With(zerr.With(zerr.New("duplicate simulation name"), "name", sim.Name), "first", other)
		}
		seen[sim.Name] = path
		dir := filepath.Join(outDir, sim.Name)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to create output dir"), "dir", dir)
		}
		batch = append(batch, compiler.Job{
			Name:   sim.Name,
			Driver: sim.Driver,
			System: sim.System,
			Run:    sim.Run,
			Options: compiler.Options{
				Format:    sim.Format,
				FieldFile: sim.FieldFile,
				Dir:       dir,
				Logger:    logger.With("job", sim.Name),
			},
		})
	}

	results, err := compiler.CompileAll(cmd.Context(), batch, jobs)
	if err != nil {
		return err
	}

	fields := make([]viz.Field, 0, len(results))
	var warnings []string
	for i, res := range results {
		job := batch[i]
		path := filepath.Join(job.Options.Dir, job.Name+".mx3")
		if err := os.WriteFile(path, []byte(res.Text()), 0o644); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to write script"), "path", path)
		}
		fields = append(fields, viz.Field{Label: job.Name, Value: path})
		for _, w := range res.Warnings {
			warnings = append(warnings, job.Name+": "+w)
		}
	}
	fmt.Fprintln(os.Stderr, viz.Summary(fmt.Sprintf("batch (%d)", len(results)), fields, warnings))
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	fields := make([]viz.Field, 0, len(config.Presets))
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		if cfg == nil {
			continue
		}
		fields = append(fields, viz.Field{Label: name, Value: cfg.Driver.Type})
	}
	fmt.Println(viz.Summary("presets", fields, nil))
	return nil
}
