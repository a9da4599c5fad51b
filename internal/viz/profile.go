package viz

import (
	"fmt"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/mx3c/internal/field"
	"go.trai.ch/zerr"
)

var ErrComponent = zerr.New("viz: component out of range")

var componentNames = []string{"x", "y", "z"}

// Profile plots component c of f along x, averaged over y and z.
func Profile(f *field.Field, c int, title string, height, width int) (string, error) {
	if c < 0 || c >= f.Dim {
		return "", zerr.With(zerr.Wrap(ErrComponent, "cannot plot component"), "component", c)
	}
	line := f.LineX(c)

	name := fmt.Sprint(c)
	if f.Dim == 3 {
		name = componentNames[c]
	}
	caption := fmt.Sprintf("%s_%s along x (%d cells)", title, name, len(line))

	// asciigraph needs two points to draw a line
	if len(line) == 1 {
		line = append(line, line[0])
	}
	return asciigraph.Plot(line,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	), nil
}

// Sparkline renders values as a one-line bar chart.
func Sparkline(values []float64, width int) string {
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	if len(values) == 0 || width <= 0 {
		return ""
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	step := max(len(values)/width, 1)
	out := make([]rune, 0, width)
	for i := 0; i < width && i*step < len(values); i++ {
		norm := (values[i*step] - lo) / rng
		idx := int(norm * float64(len(chars)-1))
		out = append(out, chars[min(max(idx, 0), len(chars)-1)])
	}
	return string(out)
}
