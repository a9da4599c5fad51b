package field

import (
	"math"

	"go.trai.ch/zerr"
)

var (
	// ErrInvalidMesh indicates a mesh with empty extent or non-positive discretisation.
	ErrInvalidMesh = zerr.New("field: invalid mesh")

	// ErrInvalidRegion indicates a subregion outside the mesh or with a duplicate name.
	ErrInvalidRegion = zerr.New("field: invalid subregion")

	// ErrDimensionMismatch indicates fields or values with incompatible dimensions.
	ErrDimensionMismatch = zerr.New("field: dimension mismatch")
)

const tolerance = 1e-9

// Region is a named axis-aligned box inside a mesh.
type Region struct {
	Name   string
	P1, P2 [3]float64
}

// Contains reports whether p lies inside the region, boundaries included.
func (r Region) Contains(p [3]float64) bool {
	for i := 0; i < 3; i++ {
		lo := math.Min(r.P1[i], r.P2[i])
		hi := math.Max(r.P1[i], r.P2[i])
		eps := tolerance * (hi - lo)
		if p[i] < lo-eps || p[i] > hi+eps {
			return false
		}
	}
	return true
}

// Mesh is a rectangular finite-difference mesh. P1 holds the minimum corner
// and P2 the maximum corner once constructed through NewMesh.
type Mesh struct {
	P1, P2     [3]float64
	N          [3]int
	Subregions []Region
}

// NewMesh builds a mesh spanning p1..p2 with n cells along each axis.
func NewMesh(p1, p2 [3]float64, n [3]int) (*Mesh, error) {
	m := &Mesh{N: n}
	for i := 0; i < 3; i++ {
		m.P1[i] = math.Min(p1[i], p2[i])
		m.P2[i] = math.Max(p1[i], p2[i])
		if m.P2[i]-m.P1[i] <= 0 {
			return nil, zerr.With(zerr.Wrap(ErrInvalidMesh, "empty extent"), "axis", i)
		}
		if n[i] <= 0 {
			return nil, zerr.With(zerr.Wrap(ErrInvalidMesh, "non-positive cell count"), "axis", i)
		}
	}
	return m, nil
}

// NewMeshFromCell builds a mesh spanning p1..p2 with the given cell size.
// The extent must be an integer multiple of the cell along every axis.
func NewMeshFromCell(p1, p2, cell [3]float64) (*Mesh, error) {
	var n [3]int
	for i := 0; i < 3; i++ {
		if cell[i] <= 0 {
			return nil, zerr.With(zerr.Wrap(ErrInvalidMesh, "non-positive cell size"), "axis", i)
		}
		ratio := math.Abs(p2[i]-p1[i]) / cell[i]
		rounded := math.Round(ratio)
		if rounded < 1 || math.Abs(ratio-rounded) > 1e-6*math.Max(1, ratio) {
			return nil, zerr.With(zerr.Wrap(ErrInvalidMesh, "extent is not a multiple of the cell size"), "axis", i)
		}
		n[i] = int(rounded)
	}
	return NewMesh(p1, p2, n)
}

// AddSubregion registers a named region. Names must be unique and the region
// must lie inside the mesh.
func (m *Mesh) AddSubregion(r Region) error {
	if r.Name == "" {
		return zerr.Wrap(ErrInvalidRegion, "empty name")
	}
	for _, existing := range m.Subregions {
		if existing.Name == r.Name {
			return zerr.With(zerr.Wrap(ErrInvalidRegion, "duplicate name"), "region", r.Name)
		}
	}
	bounds := Region{P1: m.P1, P2: m.P2}
	if !bounds.Contains(r.P1) || !bounds.Contains(r.P2) {
		return zerr.With(zerr.Wrap(ErrInvalidRegion, "region outside mesh"), "region", r.Name)
	}
	m.Subregions = append(m.Subregions, r)
	return nil
}

// Cell returns the cell edge lengths.
func (m *Mesh) Cell() [3]float64 {
	var c [3]float64
	for i := 0; i < 3; i++ {
		c[i] = (m.P2[i] - m.P1[i]) / float64(m.N[i])
	}
	return c
}

// Len returns the number of cells.
func (m *Mesh) Len() int { return m.N[0] * m.N[1] * m.N[2] }

// Index flattens cell coordinates, x fastest.
func (m *Mesh) Index(i, j, k int) int {
	return i + m.N[0]*(j+m.N[1]*k)
}

// Centre returns the centre of the cell with flat index idx.
func (m *Mesh) Centre(idx int) [3]float64 {
	i := idx % m.N[0]
	j := (idx / m.N[0]) % m.N[1]
	k := idx / (m.N[0] * m.N[1])
	c := m.Cell()
	return [3]float64{
		m.P1[0] + (float64(i)+0.5)*c[0],
		m.P1[1] + (float64(j)+0.5)*c[1],
		m.P1[2] + (float64(k)+0.5)*c[2],
	}
}

// RegionOf returns the first subregion containing p.
func (m *Mesh) RegionOf(p [3]float64) (string, bool) {
	for _, r := range m.Subregions {
		if r.Contains(p) {
			return r.Name, true
		}
	}
	return "", false
}
