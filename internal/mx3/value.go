package mx3

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is an expression on the right-hand side of a statement.
type Value interface {
	Render() string
	isValue()
}

// Number renders with Go's default float formatting.
type Number float64

// Integer is an integral literal.
type Integer int

// Bool renders as true or false.
type Bool bool

// Ident is a bare identifier or pre-formatted token, such as m_full.
type Ident string

// String is a double-quoted string literal.
type String string

// Vector renders as vector(x, y, z).
type Vector [3]float64

// Invoke is a function call used as a value, such as LoadFile("j.ovf").
type Invoke struct {
	Func string
	Args []Value
}

func (n Number) Render() string  { return fmt.Sprint(float64(n)) }
func (i Integer) Render() string { return strconv.Itoa(int(i)) }
func (b Bool) Render() string    { return strconv.FormatBool(bool(b)) }
func (id Ident) Render() string  { return string(id) }
func (s String) Render() string  { return strconv.Quote(string(s)) }

func (v Vector) Render() string {
	return "vector(" + Number(v[0]).Render() + ", " + Number(v[1]).Render() + ", " + Number(v[2]).Render() + ")"
}

func (c Invoke) Render() string {
	return c.Func + "(" + renderArgs(c.Args) + ")"
}

func (Number) isValue()  {}
func (Integer) isValue() {}
func (Bool) isValue()    {}
func (Ident) isValue()   {}
func (String) isValue()  {}
func (Vector) isValue()  {}
func (Invoke) isValue()  {}

func renderArgs(args []Value) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.Render()
	}
	return strings.Join(parts, ", ")
}
