package micromag

import (
	"strings"

	"go.trai.ch/zerr"
)

// DriverKind selects how the system is evolved.
type DriverKind int

const (
	MinDriver DriverKind = iota
	RelaxDriver
	TimeDriver
)

func (k DriverKind) String() string {
	switch k {
	case MinDriver:
		return "min"
	case RelaxDriver:
		return "relax"
	case TimeDriver:
		return "time"
	}
	return "unknown"
}

// ParseDriverKind accepts the short names and the class-style names
// (MinDriver, RelaxDriver, TimeDriver).
func ParseDriverKind(s string) (DriverKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "min", "mindriver", "minimize":
		return MinDriver, nil
	case "relax", "relaxdriver":
		return RelaxDriver, nil
	case "time", "timedriver":
		return TimeDriver, nil
	}
	return 0, zerr.With(zerr.Wrap(ErrUnknownDriver, "unrecognised driver"), "driver", s)
}

// EvolverAttr is the solver-selection attribute that never reaches a script.
const EvolverAttr = "evolver"

// AttrValue is a driver attribute value.
type AttrValue interface {
	isAttrValue()
}

type (
	Number  float64
	Integer int
	Text    string
	Flag    bool
)

func (Number) isAttrValue()  {}
func (Integer) isAttrValue() {}
func (Text) isAttrValue()    {}
func (Flag) isAttrValue()    {}

// Attr is one configured driver attribute.
type Attr struct {
	Name  string
	Value AttrValue
}

// Driver is a tagged driver variant with its attributes in configuration order.
type Driver struct {
	Kind  DriverKind
	Attrs []Attr
}

func NewDriver(kind DriverKind, attrs ...Attr) *Driver {
	return &Driver{Kind: kind, Attrs: attrs}
}

// Set appends an attribute. Setting a name twice keeps both entries; the
// later one wins once the script runs.
func (d *Driver) Set(name string, v AttrValue) *Driver {
	d.Attrs = append(d.Attrs, Attr{Name: name, Value: v})
	return d
}

// Emitted returns the attributes that belong in a script, in order,
// without the evolver.
func (d *Driver) Emitted() []Attr {
	out := make([]Attr, 0, len(d.Attrs))
	for _, a := range d.Attrs {
		if a.Name == EvolverAttr {
			continue
		}
		out = append(out, a)
	}
	return out
}
