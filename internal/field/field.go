package field

import (
	"math"

	"go.trai.ch/zerr"
)

// Field holds Dim values per mesh cell, flattened with x fastest and the
// components of one cell stored contiguously.
type Field struct {
	Mesh   *Mesh
	Dim    int
	Values []float64
}

// New returns a zero field.
func New(mesh *Mesh, dim int) *Field {
	return &Field{Mesh: mesh, Dim: dim, Values: make([]float64, mesh.Len()*dim)}
}

// NewUniform returns a field with the same value in every cell.
func NewUniform(mesh *Mesh, value ...float64) *Field {
	f := New(mesh, len(value))
	for idx := 0; idx < mesh.Len(); idx++ {
		copy(f.At(idx), value)
	}
	return f
}

// FromFunc samples fn at every cell centre.
func FromFunc(mesh *Mesh, dim int, fn func(p [3]float64) []float64) (*Field, error) {
	f := New(mesh, dim)
	for idx := 0; idx < mesh.Len(); idx++ {
		v := fn(mesh.Centre(idx))
		if len(v) != dim {
			return nil, zerr.With(zerr.Wrap(ErrDimensionMismatch, "sample has wrong dimension"), "want", dim)
		}
		copy(f.At(idx), v)
	}
	return f, nil
}

// At returns the values of cell idx. The slice aliases the field storage.
func (f *Field) At(idx int) []float64 {
	return f.Values[idx*f.Dim : (idx+1)*f.Dim]
}

func (f *Field) Clone() *Field {
	c := &Field{Mesh: f.Mesh, Dim: f.Dim, Values: make([]float64, len(f.Values))}
	copy(c.Values, f.Values)
	return c
}

// Norm returns the scalar field of per-cell magnitudes.
func (f *Field) Norm() *Field {
	n := New(f.Mesh, 1)
	for idx := 0; idx < f.Mesh.Len(); idx++ {
		sum := 0.0
		for _, v := range f.At(idx) {
			sum += v * v
		}
		n.Values[idx] = math.Sqrt(sum)
	}
	return n
}

// WithNorm rescales every cell to the magnitude given by the scalar field
// norm. Zero cells stay zero.
func (f *Field) WithNorm(norm *Field) (*Field, error) {
	if norm.Dim != 1 || norm.Mesh.Len() != f.Mesh.Len() {
		return nil, zerr.Wrap(ErrDimensionMismatch, "norm must be a scalar field on the same mesh")
	}
	out := f.Clone()
	mag := f.Norm()
	for idx := 0; idx < f.Mesh.Len(); idx++ {
		m := mag.Values[idx]
		if m == 0 {
			continue
		}
		k := norm.Values[idx] / m
		for c, v := range out.At(idx) {
			out.At(idx)[c] = v * k
		}
	}
	return out, nil
}

// Scale multiplies every value by k.
func (f *Field) Scale(k float64) *Field {
	out := f.Clone()
	for i := range out.Values {
		out.Values[i] *= k
	}
	return out
}

// Mul multiplies f cell-wise by the scalar field s.
func (f *Field) Mul(s *Field) (*Field, error) {
	if s.Dim != 1 || s.Mesh.Len() != f.Mesh.Len() {
		return nil, zerr.Wrap(ErrDimensionMismatch, "multiplier must be a scalar field on the same mesh")
	}
	out := f.Clone()
	for idx := 0; idx < f.Mesh.Len(); idx++ {
		cell := out.At(idx)
		for c := range cell {
			cell[c] *= s.Values[idx]
		}
	}
	return out, nil
}

// Average returns the mean value over all cells.
func (f *Field) Average() []float64 {
	avg := make([]float64, f.Dim)
	n := f.Mesh.Len()
	for idx := 0; idx < n; idx++ {
		for c, v := range f.At(idx) {
			avg[c] += v
		}
	}
	for c := range avg {
		avg[c] /= float64(n)
	}
	return avg
}

// LineX averages component c over y and z for every x layer.
func (f *Field) LineX(c int) []float64 {
	nx, ny, nz := f.Mesh.N[0], f.Mesh.N[1], f.Mesh.N[2]
	line := make([]float64, nx)
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				line[i] += f.At(f.Mesh.Index(i, j, k))[c]
			}
		}
	}
	for i := range line {
		line[i] /= float64(ny * nz)
	}
	return line
}
