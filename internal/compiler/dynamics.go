package compiler

import (
	"github.com/san-kum/mx3c/internal/field"
	"github.com/san-kum/mx3c/internal/micromag"
	"github.com/san-kum/mx3c/internal/mx3"
	"github.com/san-kum/mx3c/internal/ovf"
	"go.trai.ch/zerr"
)

// SlonczewskiWarning is reported whenever a Slonczewski term is lowered.
const SlonczewskiWarning = "STT supported with cross-direction respective to P only."

// evolve lowers a time driver: equation-of-motion terms, then the stepping loop.
func (l *lowerer) evolve(run RunParams) error {
	dt, err := stepDuration(run)
	if err != nil {
		return err
	}

	l.equationOfMotion()

	if zl, ok := l.sys.Dynamics.ZhangLi(); ok {
		if err := l.zhangLi(zl); err != nil {
			return err
		}
	}
	if stt, ok := l.sys.Dynamics.Slonczewski(); ok {
		if err := l.slonczewski(stt); err != nil {
			return err
		}
	}

	l.timeStepping(run.N, dt)
	return nil
}

// equationOfMotion emits alpha and the precession toggle. A missing damping
// term means alpha = 0; a missing precession term and gamma0 = 0 both turn
// precession off.
func (l *lowerer) equationOfMotion() {
	alpha := 0.0
	if d, ok := l.sys.Dynamics.Damping(); ok {
		alpha = d.Alpha
	}
	gamma0 := 0.0
	if p, ok := l.sys.Dynamics.Precession(); ok {
		gamma0 = p.Gamma0
	}

	l.script.Assign("alpha", mx3.Number(alpha))
	if gamma0 == 0 {
		l.script.Assign("doprecess", mx3.Bool(false))
		return
	}
	l.script.
		Assign("gammaLL", mx3.Number(gamma0/l.c.opts.Constants.Mu0)).
		Assign("doprecess", mx3.Bool(true))
}

func (l *lowerer) zhangLi(zl micromag.ZhangLi) error {
	j, err := l.currentDensity(zl.U)
	if err != nil {
		return zerr.With(err, "term", micromag.ZhangLiKind.String())
	}
	name := l.c.opts.FieldFile
	l.pending = append(l.pending, pendingFile{
		name:  name,
		field: j,
		meta: ovf.Meta{
			Title:  "j",
			Labels: []string{"j_x", "j_y", "j_z"},
			Units:  []string{"A/m^2", "A/m^2", "A/m^2"},
		},
	})

	l.script.
		Comment("ZhangLi term").
		Assign("Xi", mx3.Number(zl.Beta)).
		Assign("Pol", mx3.Number(1)).
		Call("J.add", mx3.Invoke{Func: "LoadFile", Args: []mx3.Value{mx3.String(name)}}, mx3.Integer(1))
	return nil
}

// currentDensity converts the Zhang-Li drift velocity u into a current
// density j = -u·(e/(e·ħ/(2me)))·|m|. A uniform vector u is used as given;
// scalar and per-region u point along +x with the value as magnitude.
func (l *lowerer) currentDensity(u micromag.Quantity) (*field.Field, error) {
	m := l.sys.M
	if m == nil {
		return nil, zerr.Wrap(micromag.ErrInvalidQuantity, "system has no magnetization")
	}

	var uf *field.Field
	switch v := u.(type) {
	case micromag.SpatialField:
		if v.Field == nil || v.Field.Dim != 3 || v.Field.Mesh.Len() != m.Mesh.Len() {
			return nil, zerr.With(zerr.Wrap(micromag.ErrInvalidQuantity, "u field must be a vector field on the system mesh"), "quantity", "u")
		}
		uf = v.Field
	case micromag.Vector:
		uf = field.NewUniform(m.Mesh, v[0], v[1], v[2])
	default:
		var err error
		uf, err = micromag.DirectedField(m.Mesh, micromag.Vector{1, 0, 0}, u, "u")
		if err != nil {
			return nil, err
		}
	}

	k := l.c.opts.Constants
	factor := k.E / (k.E * k.Hbar / (2 * k.Me))
	return uf.Scale(-factor).Mul(m.Norm())
}

var slonczewskiParams = []struct {
	name  string
	value func(micromag.Slonczewski) micromag.Quantity
}{
	{"FixedLayer", func(s micromag.Slonczewski) micromag.Quantity { return s.Mp }},
	{"Lambda", func(s micromag.Slonczewski) micromag.Quantity { return s.Lambda }},
	{"Pol", func(s micromag.Slonczewski) micromag.Quantity { return s.P }},
	{"EpsilonPrime", func(s micromag.Slonczewski) micromag.Quantity { return s.EpsPrime }},
	{"J", func(s micromag.Slonczewski) micromag.Quantity { return s.J }},
}

func (l *lowerer) slonczewski(stt micromag.Slonczewski) error {
	l.script.
		Comment("STT term").
		Assign("DisableZhangLiTorque", mx3.Bool(true))
	l.warn(SlonczewskiWarning)

	for _, p := range slonczewskiParams {
		stmts, err := Resolve(p.value(stt), p.name, l.sys)
		if err != nil {
			return zerr.With(err, "term", micromag.SlonczewskiKind.String())
		}
		l.script.Append(stmts...)
	}
	return nil
}
