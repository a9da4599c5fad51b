// Package mx3 models mumax3 input scripts as ordered statement records and
// renders them to text in one pass.
//
// Statement forms:
//
//	name = value
//	name.setregion(index, value)
//	directive(args...)
//	// comment
//	for i:=0; i<N; i++{ ... }
//
// Values are numbers, booleans, identifiers, quoted strings, vector(x, y, z)
// literals and nested calls such as LoadFile("j.ovf").
package mx3
