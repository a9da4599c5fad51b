package config

import (
	"strconv"

	"github.com/san-kum/mx3c/internal/field"
	"github.com/san-kum/mx3c/internal/micromag"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Quantity holds the raw YAML of a parameter until the mesh is known.
//
//	alpha: 0.02                    # scalar
//	mp: [0, 1, 0]                  # vector
//	P: {A: 0.4, B: 0.6}            # per region
//	u:                             # spatial field
//	  field: {value: [1, 0, 0], norm: 2}
type Quantity struct {
	node *yaml.Node
}

func (q *Quantity) UnmarshalYAML(n *yaml.Node) error {
	q.node = n
	return nil
}

func (q Quantity) MarshalYAML() (any, error) {
	return q.node, nil
}

func (q Quantity) IsSet() bool {
	return q.node != nil && q.node.Kind != 0 && q.node.ShortTag() != "!!null"
}

// Build converts the quantity, sampling spatial fields on mesh.
func (q Quantity) Build(mesh *field.Mesh) (micromag.Quantity, error) {
	if !q.IsSet() {
		return nil, zerr.Wrap(ErrInvalidConfig, "quantity not set")
	}
	n := q.node
	switch n.Kind {
	case yaml.ScalarNode, yaml.SequenceNode:
		return uniform(n)
	case yaml.MappingNode:
		if len(n.Content) == 2 && n.Content[0].Value == "field" {
			return spatial(n.Content[1], mesh)
		}
		pr := micromag.Regions()
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := uniform(n.Content[i+1])
			if err != nil {
				return nil, zerr.With(err, "region", n.Content[i].Value)
			}
			pr.Set(n.Content[i].Value, v)
		}
		return pr, nil
	}
	return nil, zerr.With(zerr.Wrap(ErrInvalidConfig, "unsupported quantity"), "line", n.Line)
}

func uniform(n *yaml.Node) (micromag.Quantity, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		v, err := number(n)
		if err != nil {
			return nil, err
		}
		return micromag.Scalar(v), nil
	case yaml.SequenceNode:
		v, err := vector(n)
		if err != nil {
			return nil, err
		}
		return micromag.Vector(v), nil
	}
	return nil, zerr.With(zerr.Wrap(ErrInvalidConfig, "expected a number or a 3-vector"), "line", n.Line)
}

// spatial builds a field from {value: [x, y, z], norm: q} or {scalar: q}.
func spatial(n *yaml.Node, mesh *field.Mesh) (micromag.Quantity, error) {
	var spec struct {
		Value  *[3]float64 `yaml:"value"`
		Norm   Quantity    `yaml:"norm"`
		Scalar Quantity    `yaml:"scalar"`
	}
	if err := n.Decode(&spec); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "invalid field quantity"), "line", n.Line)
	}

	var (
		f   *field.Field
		err error
	)
	switch {
	case spec.Value != nil:
		norm := micromag.Quantity(micromag.Scalar(1))
		if spec.Norm.IsSet() {
			if norm, err = spec.Norm.Build(mesh); err != nil {
				return nil, err
			}
		}
		f, err = micromag.DirectedField(mesh, micromag.Vector(*spec.Value), norm, "field")
	case spec.Scalar.IsSet():
		var s micromag.Quantity
		if s, err = spec.Scalar.Build(mesh); err != nil {
			return nil, err
		}
		f, err = micromag.ScalarField(mesh, s, "field")
	default:
		return nil, zerr.With(zerr.Wrap(ErrInvalidConfig, "field needs value or scalar"), "line", n.Line)
	}
	if err != nil {
		return nil, err
	}
	return micromag.SpatialField{Field: f}, nil
}

func number(n *yaml.Node) (float64, error) {
	v, err := strconv.ParseFloat(n.Value, 64)
	if err != nil {
		return 0, zerr.With(zerr.Wrap(ErrInvalidConfig, "expected a number"), "line", n.Line)
	}
	return v, nil
}

func vector(n *yaml.Node) ([3]float64, error) {
	var out [3]float64
	if len(n.Content) != 3 {
		return out, zerr.With(zerr.Wrap(ErrInvalidConfig, "expected 3 components"), "line", n.Line)
	}
	for i, c := range n.Content {
		v, err := number(c)
		if err != nil {
			return out, err
		}
		out[i] = v
	}
	return out, nil
}

// driverAttrs reads the attrs mapping in document order. The YAML tag picks
// the attribute type.
func driverAttrs(n *yaml.Node) ([]micromag.Attr, error) {
	if n.Kind == 0 || n.ShortTag() == "!!null" {
		return nil, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, zerr.With(zerr.Wrap(ErrInvalidConfig, "driver attrs must be a mapping"), "line", n.Line)
	}
	attrs := make([]micromag.Attr, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		if val.Kind != yaml.ScalarNode {
			return nil, zerr.With(zerr.Wrap(ErrInvalidConfig, "driver attribute must be a scalar"), "attr", key.Value)
		}
		var v micromag.AttrValue
		switch val.ShortTag() {
		case "!!int":
			i, err := strconv.Atoi(val.Value)
			if err != nil {
				return nil, zerr.With(zerr.Wrap(ErrInvalidConfig, "invalid integer"), "attr", key.Value)
			}
			v = micromag.Integer(i)
		case "!!float":
			f, err := number(val)
			if err != nil {
				return nil, zerr.With(err, "attr", key.Value)
			}
			v = micromag.Number(f)
		case "!!bool":
			var b bool
			if err := val.Decode(&b); err != nil {
				return nil, zerr.With(zerr.Wrap(err, "invalid flag"), "attr", key.Value)
			}
			v = micromag.Flag(b)
		default:
			v = micromag.Text(val.Value)
		}
		attrs = append(attrs, micromag.Attr{Name: key.Value, Value: v})
	}
	return attrs, nil
}
