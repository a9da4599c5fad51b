package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/san-kum/mx3c/internal/field"
	"github.com/san-kum/mx3c/internal/ovf"
	"github.com/san-kum/mx3c/internal/storage"
	"github.com/san-kum/mx3c/internal/tui"
	"github.com/san-kum/mx3c/internal/viz"
	"github.com/spf13/cobra"
	"go.trai.ch/zerr"
)

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
	fmt.Fprintln(w, "ID\tDRIVER\tTIME\tSTATEMENTS\tFILES\tWARNINGS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%d\n",
			run.ID,
			run.Driver,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Statements,
			strings.Join(run.Files, ","),
			len(run.Warnings),
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	}

	script, err := st.LoadScript(runID)
	if err != nil {
		return err
	}

	fields := []viz.Field{
		{Label: "driver", Value: meta.Driver},
		{Label: "created", Value: meta.Timestamp.Format("2006-01-02 15:04:05")},
		{Label: "fingerprint", Value: meta.Fingerprint},
		{Label: "format", Value: meta.Format},
	}
	if meta.N > 0 {
		fields = append(fields,
			viz.Field{Label: "t", Value: strconv.FormatFloat(meta.T, 'g', -1, 64)},
			viz.Field{Label: "n", Value: strconv.Itoa(meta.N)},
		)
	}
	fmt.Println(viz.Summary(meta.ID, fields, meta.Warnings))
	fmt.Println(viz.Separator(60))
	fmt.Println(viz.Script(script))
	return nil
}

func parseComponent(s string) (int, error) {
	switch strings.ToLower(s) {
	case "x", "0":
		return 0, nil
	case "y", "1":
		return 1, nil
	case "z", "2":
		return 2, nil
	}
	return 0, zerr.With(zerr.Wrap(viz.ErrComponent, "unknown component"), "component", s)
}

func profileConfig(cmd *cobra.Command, args []string) error {
	c, err := parseComponent(component)
	if err != nil {
		return err
	}
	sim, err := loadSimulation(args[0])
	if err != nil {
		return err
	}

	plot, err := viz.Profile(sim.System.M, c, "m", plotHeight, plotWidth)
	if err != nil {
		return err
	}
	fmt.Println(plot)
	return nil
}

func inspectOVF(cmd *cobra.Command, args []string) error {
	path := args[0]
	c, err := parseComponent(component)
	if err != nil {
		return err
	}

	f, fmtTag, meta, err := ovf.ReadFile(path)
	if err != nil {
		return err
	}

	fields := []viz.Field{
		{Label: "format", Value: string(fmtTag)},
		{Label: "title", Value: meta.Title},
		{Label: "cells", Value: fmt.Sprintf("%d x %d x %d", f.Mesh.N[0], f.Mesh.N[1], f.Mesh.N[2])},
		{Label: "cell size", Value: formatVec(f.Mesh.Cell())},
		{Label: "components", Value: strconv.Itoa(f.Dim)},
		{Label: "average", Value: formatSlice(f.Average())},
		{Label: "max norm", Value: strconv.FormatFloat(maxNorm(f), 'g', 6, 64)},
	}
	fmt.Println(viz.Summary(path, fields, nil))

	if f.Dim == 1 {
		c = 0
	}
	plot, err := viz.Profile(f, c, meta.Title, plotHeight, plotWidth)
	if err != nil {
		return err
	}
	fmt.Println(plot)
	return nil
}

func browseRuns(cmd *cobra.Command, args []string) error {
	return tui.RunBrowser(storage.New(dataDir))
}

func maxNorm(f *field.Field) float64 {
	best := 0.0
	for _, v := range f.Norm().Values {
		best = max(best, v)
	}
	return best
}

func formatVec(v [3]float64) string {
	return formatSlice(v[:])
}

func formatSlice(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.FormatFloat(x, 'g', 6, 64)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
