package compiler

import (
	"github.com/san-kum/mx3c/internal/micromag"
	"github.com/san-kum/mx3c/internal/mx3"
	"go.trai.ch/zerr"
)

func (l *lowerer) minimize(d *micromag.Driver) {
	l.attributes(d)
	l.script.Call("minimize").Blank()
	l.checkpoint()
	l.script.Blank()
}

func (l *lowerer) relax(d *micromag.Driver) error {
	damping, ok := l.sys.Dynamics.Damping()
	if !ok {
		return zerr.With(zerr.Wrap(micromag.ErrMissingTerm, "relax driver needs a damping term"), "term", micromag.DampingKind.String())
	}
	l.script.Assign("alpha", mx3.Number(damping.Alpha))
	l.attributes(d)
	l.script.Call("relax").Blank()
	l.checkpoint()
	l.script.Blank()
	return nil
}

// attributes emits one assignment per driver attribute, evolver excluded.
func (l *lowerer) attributes(d *micromag.Driver) {
	for _, a := range d.Emitted() {
		l.script.Assign(a.Name, attrLiteral(a.Value))
	}
}

// checkpoint saves the full magnetization and a table row.
func (l *lowerer) checkpoint() {
	l.script.
		Call("save", mx3.Ident("m_full")).
		Call("tablesave")
}

func checkpointBody() []mx3.Statement {
	return []mx3.Statement{
		mx3.Call{Invoke: mx3.Invoke{Func: "save", Args: []mx3.Value{mx3.Ident("m_full")}}},
		mx3.Call{Invoke: mx3.Invoke{Func: "tablesave"}},
	}
}

func attrLiteral(v micromag.AttrValue) mx3.Value {
	switch v := v.(type) {
	case micromag.Number:
		return mx3.Number(v)
	case micromag.Integer:
		return mx3.Integer(v)
	case micromag.Flag:
		return mx3.Bool(v)
	case micromag.Text:
		return mx3.Ident(v)
	}
	return mx3.Ident("")
}
