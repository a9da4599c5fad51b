package compiler

import (
	"context"
	"path/filepath"

	"github.com/san-kum/mx3c/internal/micromag"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// ErrFieldFileCollision indicates two jobs that would write the same field file.
var ErrFieldFileCollision = zerr.New("compiler: field file collision")

// Job is one independent compilation.
type Job struct {
	Name    string
	Driver  *micromag.Driver
	System  *micromag.System
	Run     RunParams
	Options Options
}

// CompileAll compiles jobs concurrently with at most limit in flight
// (limit <= 0 means unbounded). Results are returned in job order. The first
// failure cancels jobs that have not started yet.
func CompileAll(ctx context.Context, jobs []Job, limit int) ([]*Result, error) {
	if err := checkCollisions(jobs); err != nil {
		return nil, err
	}

	results := make([]*Result, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			job := jobs[i]
			res, err := New(job.Options).Compile(job.Driver, job.System, job.Run)
			if err != nil {
				return zerr.With(zerr.Wrap(err, "job failed"), "job", job.Name)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// checkCollisions rejects jobs whose Zhang-Li lowering would write the same
// file path.
func checkCollisions(jobs []Job) error {
	seen := make(map[string]string, len(jobs))
	for _, job := range jobs {
		if job.System == nil || job.Driver == nil || job.Driver.Kind != micromag.TimeDriver {
			continue
		}
		if _, ok := job.System.Dynamics.ZhangLi(); !ok {
			continue
		}
		name := job.Options.FieldFile
		if name == "" {
			name = DefaultFieldFile
		}
		path := filepath.Clean(filepath.Join(job.Options.Dir, name))
		if other, ok := seen[path]; ok {
			err := zerr.With(zerr.Wrap(ErrFieldFileCollision, "jobs share a field file"), "path", path)
			err = zerr.With(err, "first", other)
			return zerr.With(err, "second", job.Name)
		}
		seen[path] = job.Name
	}
	return nil
}
