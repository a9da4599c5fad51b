package micromag

import (
	"math"

	"github.com/san-kum/mx3c/internal/field"
	"go.trai.ch/zerr"
)

// RegionRelator maps a region name to the simulator's integer region index.
type RegionRelator interface {
	Index(name string) (int, bool)
}

// RegionIndex is a map-backed RegionRelator.
type RegionIndex map[string]int

func (r RegionIndex) Index(name string) (int, bool) {
	i, ok := r[name]
	return i, ok
}

// RelatorFromMesh numbers the mesh subregions from zero in declaration order.
func RelatorFromMesh(m *field.Mesh) RegionIndex {
	r := make(RegionIndex, len(m.Subregions))
	for i, sub := range m.Subregions {
		r[sub.Name] = i
	}
	return r
}

// System is the magnetic system a driver acts on.
type System struct {
	Name     string
	M        *field.Field
	Dynamics *Dynamics
	Regions  RegionRelator
}

// Mesh returns the magnetization mesh.
func (s *System) Mesh() *field.Mesh {
	if s.M == nil {
		return nil
	}
	return s.M.Mesh
}

// RegionIndex resolves name through the system's relator.
func (s *System) RegionIndex(name string) (int, error) {
	if s.Regions != nil {
		if i, ok := s.Regions.Index(name); ok {
			return i, nil
		}
	}
	return 0, zerr.With(zerr.Wrap(ErrUnknownRegion, "region has no simulator index"), "region", name)
}

// Constants is the physical-constant bundle the compiler scales with.
type Constants struct {
	Mu0  float64 // vacuum permeability, N/A²
	E    float64 // elementary charge, C
	Hbar float64 // reduced Planck constant, J s
	Me   float64 // electron mass, kg
}

// DefaultConstants returns CODATA 2018 values with mu0 fixed at 4π·1e-7.
func DefaultConstants() Constants {
	return Constants{
		Mu0:  4 * math.Pi * 1e-7,
		E:    1.602176634e-19,
		Hbar: 1.054571817e-34,
		Me:   9.1093837015e-31,
	}
}

// ScalarField expands q into a per-cell scalar field over mesh. Per-region
// values are looked up by the region containing each cell centre, falling
// back to the DefaultRegion entry and then to zero.
func ScalarField(mesh *field.Mesh, q Quantity, name string) (*field.Field, error) {
	switch v := q.(type) {
	case Scalar:
		return field.NewUniform(mesh, float64(v)), nil
	case *PerRegion:
		out := field.New(mesh, 1)
		for idx := 0; idx < mesh.Len(); idx++ {
			rv, ok := Quantity(nil), false
			if region, in := mesh.RegionOf(mesh.Centre(idx)); in {
				rv, ok = v.Get(region)
			}
			if !ok {
				rv, ok = v.Get(DefaultRegion)
			}
			if !ok {
				continue
			}
			s, isScalar := rv.(Scalar)
			if !isScalar {
				return nil, zerr.With(zerr.Wrap(ErrInvalidQuantity, "per-region value must be scalar"), "quantity", name)
			}
			out.Values[idx] = float64(s)
		}
		return out, nil
	case SpatialField:
		if v.Field == nil || v.Field.Dim != 1 || v.Field.Mesh.Len() != mesh.Len() {
			return nil, zerr.With(zerr.Wrap(ErrInvalidQuantity, "field must be scalar on the system mesh"), "quantity", name)
		}
		return v.Field, nil
	}
	return nil, zerr.With(zerr.Wrap(ErrInvalidQuantity, "expected a scalar-valued quantity"), "quantity", name)
}

// DirectedField builds a vector field pointing along dir with magnitude norm.
func DirectedField(mesh *field.Mesh, dir Vector, norm Quantity, name string) (*field.Field, error) {
	n, err := ScalarField(mesh, norm, name)
	if err != nil {
		return nil, err
	}
	return field.NewUniform(mesh, dir[0], dir[1], dir[2]).WithNorm(n)
}
