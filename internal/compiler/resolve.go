package compiler

import (
	"github.com/san-kum/mx3c/internal/micromag"
	"github.com/san-kum/mx3c/internal/mx3"
	"go.trai.ch/zerr"
)

// currentDensityName is the one quantity whose per-region scalars are
// written as vector(0, 0, value).
const currentDensityName = "J"

// Resolve lowers one region-capable quantity to statements:
//
//   - SpatialField fails with ErrUnsupportedSpatialVaryingParameter
//   - *PerRegion gives name.setregion(index, value) per region, in order
//   - Scalar and Vector give a single name = value
func Resolve(q micromag.Quantity, name string, sys *micromag.System) ([]mx3.Statement, error) {
	switch v := q.(type) {
	case micromag.SpatialField:
		return nil, zerr.With(zerr.Wrap(micromag.ErrUnsupportedSpatialVaryingParameter, "slonczewski parameter cannot vary in space"), "quantity", name)
	case *micromag.PerRegion:
		stmts := make([]mx3.Statement, 0, len(v.Entries))
		for _, e := range v.Entries {
			idx, err := sys.RegionIndex(e.Region)
			if err != nil {
				return nil, zerr.With(err, "quantity", name)
			}
			value := e.Value
			if s, ok := value.(micromag.Scalar); ok && name == currentDensityName {
				value = micromag.Vector{0, 0, float64(s)}
			}
			lit, err := literal(value, name)
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, mx3.SetRegion{Name: name, Region: idx, Value: lit})
		}
		return stmts, nil
	case micromag.Scalar, micromag.Vector:
		lit, err := literal(v, name)
		if err != nil {
			return nil, err
		}
		return []mx3.Statement{mx3.Assign{Name: name, Value: lit}}, nil
	case nil:
		return nil, zerr.With(zerr.Wrap(micromag.ErrInvalidQuantity, "quantity not set"), "quantity", name)
	}
	return nil, zerr.With(zerr.Wrap(micromag.ErrInvalidQuantity, "unsupported quantity shape"), "quantity", name)
}

func literal(q micromag.Quantity, name string) (mx3.Value, error) {
	switch v := q.(type) {
	case micromag.Scalar:
		return mx3.Number(v), nil
	case micromag.Vector:
		return mx3.Vector(v), nil
	}
	return nil, zerr.With(zerr.Wrap(micromag.ErrInvalidQuantity, "region value must be scalar or vector"), "quantity", name)
}
