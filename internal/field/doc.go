// Package field provides the rectangular mesh and sampled vector fields
// the compiler reads magnetization from and builds current-density data on.
//
//   - [Mesh]: cell grid with named subregions
//   - [Field]: per-cell values, x fastest
//
// Fields are values: every arithmetic method returns a new [Field] and
// leaves the receiver untouched.
package field
