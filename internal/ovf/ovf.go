// Package ovf writes and reads OOMMF OVF 2.0 field files.
package ovf

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/san-kum/mx3c/internal/field"
	"go.trai.ch/zerr"
)

var (
	ErrUnknownFormat = zerr.New("ovf: unknown representation")
	ErrMalformed     = zerr.New("ovf: malformed file")
)

// Format selects the data representation of a segment.
type Format string

const (
	Bin4 Format = "bin4"
	Bin8 Format = "bin8"
	Text Format = "txt"
)

const (
	check4 float32 = 1234567.0
	check8 float64 = 123456789012345.0
)

// ParseFormat accepts the representation names used on the command line.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case Bin4:
		return Bin4, nil
	case Bin8:
		return Bin8, nil
	case Text, "text":
		return Text, nil
	}
	return "", zerr.With(zerr.Wrap(ErrUnknownFormat, "unsupported representation"), "format", s)
}

func (f Format) dataTag() string {
	switch f {
	case Bin4:
		return "Binary 4"
	case Bin8:
		return "Binary 8"
	default:
		return "Text"
	}
}

// Meta carries the descriptive header entries of a file.
type Meta struct {
	Title  string
	Labels []string
	Units  []string
}

// Write encodes f as a single-segment OVF 2.0 file.
func Write(w io.Writer, f *field.Field, format Format, meta Meta) error {
	if format != Bin4 && format != Bin8 && format != Text {
		return zerr.With(zerr.Wrap(ErrUnknownFormat, "unsupported representation"), "format", string(format))
	}
	bw := bufio.NewWriter(w)
	m := f.Mesh
	cell := m.Cell()

	title := meta.Title
	if title == "" {
		title = "field"
	}
	labels := meta.Labels
	if len(labels) != f.Dim {
		labels = defaultLabels(title, f.Dim)
	}
	units := meta.Units
	if len(units) != f.Dim {
		units = make([]string, f.Dim)
		for i := range units {
			units[i] = "None"
		}
	}

	hdr := []string{
		"# OOMMF OVF 2.0",
		"# Segment count: 1",
		"# Begin: Segment",
		"# Begin: Header",
		"# Title: " + title,
		"# meshtype: rectangular",
		"# meshunit: m",
		"# xmin: " + num(m.P1[0]),
		"# ymin: " + num(m.P1[1]),
		"# zmin: " + num(m.P1[2]),
		"# xmax: " + num(m.P2[0]),
		"# ymax: " + num(m.P2[1]),
		"# zmax: " + num(m.P2[2]),
		"# valuedim: " + strconv.Itoa(f.Dim),
		"# valuelabels: " + strings.Join(labels, " "),
		"# valueunits: " + strings.Join(units, " "),
		"# xbase: " + num(m.P1[0]+cell[0]/2),
		"# ybase: " + num(m.P1[1]+cell[1]/2),
		"# zbase: " + num(m.P1[2]+cell[2]/2),
		"# xnodes: " + strconv.Itoa(m.N[0]),
		"# ynodes: " + strconv.Itoa(m.N[1]),
		"# znodes: " + strconv.Itoa(m.N[2]),
		"# xstepsize: " + num(cell[0]),
		"# ystepsize: " + num(cell[1]),
		"# zstepsize: " + num(cell[2]),
		"# End: Header",
		"# Begin: Data " + format.dataTag(),
	}
	for _, line := range hdr {
		if _, err := bw.WriteString(line + "\n"); err != nil {
			return err
		}
	}

	if err := writeData(bw, f, format); err != nil {
		return err
	}

	footer := "# End: Data " + format.dataTag() + "\n# End: Segment\n"
	if format != Text {
		footer = "\n" + footer
	}
	if _, err := bw.WriteString(footer); err != nil {
		return err
	}
	return bw.Flush()
}

func writeData(w io.Writer, f *field.Field, format Format) error {
	switch format {
	case Bin4:
		buf := make([]float32, 1+len(f.Values))
		buf[0] = check4
		for i, v := range f.Values {
			buf[i+1] = float32(v)
		}
		return binary.Write(w, binary.LittleEndian, buf)
	case Bin8:
		buf := make([]float64, 1+len(f.Values))
		buf[0] = check8
		copy(buf[1:], f.Values)
		return binary.Write(w, binary.LittleEndian, buf)
	default:
		for idx := 0; idx < f.Mesh.Len(); idx++ {
			parts := make([]string, f.Dim)
			for c, v := range f.At(idx) {
				parts[c] = num(v)
			}
			if _, err := io.WriteString(w, strings.Join(parts, " ")+"\n"); err != nil {
				return err
			}
		}
		return nil
	}
}

// WriteFile writes f to path, replacing any existing file.
func WriteFile(path string, f *field.Field, format Format, meta Meta) error {
	file, err := os.Create(path)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create field file"), "path", path)
	}
	if err := Write(file, f, format, meta); err != nil {
		file.Close()
		return zerr.With(zerr.Wrap(err, "failed to write field file"), "path", path)
	}
	return file.Close()
}

func defaultLabels(title string, dim int) []string {
	if dim == 1 {
		return []string{title}
	}
	labels := make([]string, dim)
	for i := range labels {
		labels[i] = fmt.Sprintf("%s_%c", title, "xyz"[i%3])
	}
	return labels
}

func num(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return "0"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
