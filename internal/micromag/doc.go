// Package micromag defines the micromagnetic model the script compiler reads:
//
//   - [Driver]: min, relax or time driver with ordered attributes
//   - [System]: magnetization field, [Dynamics] terms and a [RegionRelator]
//   - [Quantity]: Scalar, Vector, *PerRegion or SpatialField parameter values
//   - [Constants]: injected physical constants
//
// # Invariants
//
// A [Dynamics] holds at most one term of each [TermKind]; Add rejects a
// second one with [ErrDuplicateTerm]. Per-region mappings and driver
// attributes keep insertion order because later script assignments
// override earlier ones.
package micromag
