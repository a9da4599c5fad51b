package micromag

import "github.com/san-kum/mx3c/internal/field"

// Quantity is a material or dynamics parameter: one of Scalar, Vector,
// *PerRegion or SpatialField.
type Quantity interface {
	isQuantity()
}

// Scalar is a uniform scalar value.
type Scalar float64

// Vector is a uniform 3-vector.
type Vector [3]float64

// SpatialField is a value sampled at every mesh cell.
type SpatialField struct {
	Field *field.Field
}

// RegionValue is one entry of a per-region mapping. Value is Scalar or Vector.
type RegionValue struct {
	Region string
	Value  Quantity
}

// PerRegion maps region names to values, keeping insertion order.
type PerRegion struct {
	Entries []RegionValue
}

func (Scalar) isQuantity()       {}
func (Vector) isQuantity()       {}
func (SpatialField) isQuantity() {}
func (*PerRegion) isQuantity()   {}

// Regions returns an empty per-region mapping; fill it with Set.
func Regions() *PerRegion { return &PerRegion{} }

// Set adds or replaces the value of region, keeping its first position.
func (p *PerRegion) Set(region string, v Quantity) *PerRegion {
	for i := range p.Entries {
		if p.Entries[i].Region == region {
			p.Entries[i].Value = v
			return p
		}
	}
	p.Entries = append(p.Entries, RegionValue{Region: region, Value: v})
	return p
}

// Get returns the value configured for region.
func (p *PerRegion) Get(region string) (Quantity, bool) {
	for _, e := range p.Entries {
		if e.Region == region {
			return e.Value, true
		}
	}
	return nil, false
}

// DefaultRegion is consulted for cells outside every named subregion.
const DefaultRegion = "default"
