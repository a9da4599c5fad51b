package compiler

import (
	"log/slog"
	"path/filepath"

	"github.com/san-kum/mx3c/internal/field"
	"github.com/san-kum/mx3c/internal/micromag"
	"github.com/san-kum/mx3c/internal/mx3"
	"github.com/san-kum/mx3c/internal/ovf"
	"go.trai.ch/zerr"
)

const (
	DefaultFieldFile = "j.ovf"
	DefaultSolver    = 5
)

// RunParams are the time-driver controls: total time T split into N steps.
type RunParams struct {
	T float64
	N int
}

// Options configure a Compiler. Zero values select the defaults.
type Options struct {
	Constants micromag.Constants
	Format    ovf.Format
	// Dir is where side-channel field files are written. The script refers
	// to them by FieldFile alone, so Dir should be the simulator's working
	// directory.
	Dir       string
	FieldFile string
	Solver    int
	Logger    *slog.Logger
}

// Compiler lowers drivers and systems to mumax3 scripts. It holds no state
// between calls and may be shared across goroutines.
type Compiler struct {
	opts Options
	log  *slog.Logger
}

func New(opts Options) *Compiler {
	if opts.Constants == (micromag.Constants{}) {
		opts.Constants = micromag.DefaultConstants()
	}
	if opts.Format == "" {
		opts.Format = ovf.Bin4
	}
	if opts.FieldFile == "" {
		opts.FieldFile = DefaultFieldFile
	}
	if opts.Solver == 0 {
		opts.Solver = DefaultSolver
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Compiler{opts: opts, log: log}
}

// Options returns the effective options after defaults were applied.
func (c *Compiler) Options() Options { return c.opts }

// Result is the output of one compilation.
type Result struct {
	Script   *mx3.Script
	Warnings []string
	// Files lists the side-channel files written, as paths under Options.Dir.
	Files []string
}

// Text renders the script.
func (r *Result) Text() string { return r.Script.Render() }

type pendingFile struct {
	name  string
	field *field.Field
	meta  ovf.Meta
}

// lowerer carries the state of a single Compile call.
type lowerer struct {
	c        *Compiler
	sys      *micromag.System
	script   *mx3.Script
	pending  []pendingFile
	warnings []string
}

// Compile lowers driver d acting on sys. run is only read for time drivers.
// On error nothing is returned and no file is written.
func (c *Compiler) Compile(d *micromag.Driver, sys *micromag.System, run RunParams) (*Result, error) {
	if d == nil || sys == nil {
		return nil, zerr.Wrap(micromag.ErrInvalidQuantity, "driver and system are required")
	}
	l := &lowerer{c: c, sys: sys, script: mx3.New()}

	l.tableColumns()

	var err error
	switch d.Kind {
	case micromag.MinDriver:
		l.minimize(d)
	case micromag.RelaxDriver:
		err = l.relax(d)
	case micromag.TimeDriver:
		err = l.evolve(run)
	default:
		err = zerr.With(zerr.Wrap(micromag.ErrUnknownDriver, "cannot compile driver"), "kind", int(d.Kind))
	}
	if err != nil {
		return nil, zerr.With(err, "driver", d.Kind.String())
	}

	files, err := l.flush()
	if err != nil {
		return nil, err
	}
	for _, w := range l.warnings {
		c.log.Warn(w, "system", sys.Name, "driver", d.Kind.String())
	}
	return &Result{Script: l.script, Warnings: l.warnings, Files: files}, nil
}

// tableColumns registers the diagnostic columns every driver records.
func (l *lowerer) tableColumns() {
	for _, col := range []string{"E_total", "dt", "maxtorque"} {
		l.script.Call("tableadd", mx3.Ident(col))
	}
}

func (l *lowerer) warn(msg string) {
	l.warnings = append(l.warnings, msg)
}

func (l *lowerer) flush() ([]string, error) {
	files := make([]string, 0, len(l.pending))
	for _, p := range l.pending {
		path := filepath.Join(l.c.opts.Dir, p.name)
		if err := ovf.WriteFile(path, p.field, l.c.opts.Format, p.meta); err != nil {
			return nil, err
		}
		files = append(files, path)
	}
	return files, nil
}
