package compiler

import (
	"math"

	"github.com/san-kum/mx3c/internal/micromag"
	"github.com/san-kum/mx3c/internal/mx3"
	"go.trai.ch/zerr"
)

const loopCounter = "snap_counter"

// stepDuration validates run and returns t/n.
func stepDuration(run RunParams) (float64, error) {
	if run.N <= 0 || run.T <= 0 || math.IsNaN(run.T) || math.IsInf(run.T, 0) {
		err := zerr.Wrap(micromag.ErrInvalidRunParameters, "time driver needs t > 0 and n > 0")
		err = zerr.With(err, "t", run.T)
		return 0, zerr.With(err, "n", run.N)
	}
	dt := run.T / float64(run.N)
	if dt <= 0 {
		return 0, zerr.With(zerr.Wrap(micromag.ErrInvalidRunParameters, "step duration underflows"), "t", run.T)
	}
	return dt, nil
}

// timeStepping settles the state, fixes the step size and runs n steps of dt,
// saving magnetization and a table row after each.
func (l *lowerer) timeStepping(n int, dt float64) {
	l.script.
		Call("relax").
		Call("setsolver", mx3.Integer(l.c.opts.Solver)).
		Assign("fixDt", mx3.Number(dt)).
		Blank()

	body := append([]mx3.Statement{
		mx3.Call{Invoke: mx3.Invoke{Func: "run", Args: []mx3.Value{mx3.Number(dt)}}},
	}, checkpointBody()...)

	l.script.Append(mx3.Loop{Counter: loopCounter, Bound: n, Body: body})
}
