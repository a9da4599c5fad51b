package ovf

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/san-kum/mx3c/internal/field"
	"go.trai.ch/zerr"
)

// Read decodes a single-segment OVF 2.0 file produced by Write.
func Read(r io.Reader) (*field.Field, Format, Meta, error) {
	br := bufio.NewReader(r)
	hdr := map[string]string{}
	var format Format

	for format == "" {
		line, err := br.ReadString('\n')
		if err != nil {
			return nil, "", Meta{}, zerr.Wrap(ErrMalformed, "header ended before data")
		}
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "#"))
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		if key == "begin" && strings.HasPrefix(value, "Data") {
			switch strings.TrimSpace(strings.TrimPrefix(value, "Data")) {
			case "Binary 4":
				format = Bin4
			case "Binary 8":
				format = Bin8
			case "Text":
				format = Text
			default:
				return nil, "", Meta{}, zerr.With(zerr.Wrap(ErrUnknownFormat, "unsupported data block"), "data", value)
			}
			continue
		}
		hdr[key] = value
	}

	mesh, dim, err := meshFromHeader(hdr)
	if err != nil {
		return nil, "", Meta{}, err
	}
	f := field.New(mesh, dim)

	switch format {
	case Bin4:
		var check float32
		if err := binary.Read(br, binary.LittleEndian, &check); err != nil || check != check4 {
			return nil, "", Meta{}, zerr.Wrap(ErrMalformed, "bad binary 4 check value")
		}
		buf := make([]float32, len(f.Values))
		if err := binary.Read(br, binary.LittleEndian, buf); err != nil {
			return nil, "", Meta{}, zerr.Wrap(ErrMalformed, "truncated data")
		}
		for i, v := range buf {
			f.Values[i] = float64(v)
		}
	case Bin8:
		var check float64
		if err := binary.Read(br, binary.LittleEndian, &check); err != nil || check != check8 {
			return nil, "", Meta{}, zerr.Wrap(ErrMalformed, "bad binary 8 check value")
		}
		if err := binary.Read(br, binary.LittleEndian, f.Values); err != nil {
			return nil, "", Meta{}, zerr.Wrap(ErrMalformed, "truncated data")
		}
	case Text:
		for i := range f.Values {
			var tok string
			if _, err := fscanToken(br, &tok); err != nil {
				return nil, "", Meta{}, zerr.Wrap(ErrMalformed, "truncated data")
			}
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return nil, "", Meta{}, zerr.With(zerr.Wrap(ErrMalformed, "bad number"), "token", tok)
			}
			f.Values[i] = v
		}
	}

	meta := Meta{
		Title:  hdr["title"],
		Labels: strings.Fields(hdr["valuelabels"]),
		Units:  strings.Fields(hdr["valueunits"]),
	}
	return f, format, meta, nil
}

// ReadFile reads the OVF file at path.
func ReadFile(path string) (*field.Field, Format, Meta, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, "", Meta{}, zerr.With(zerr.Wrap(err, "failed to open field file"), "path", path)
	}
	defer file.Close()
	return Read(file)
}

func meshFromHeader(hdr map[string]string) (*field.Mesh, int, error) {
	floats := func(keys ...string) ([3]float64, error) {
		var out [3]float64
		for i, k := range keys {
			v, err := strconv.ParseFloat(hdr[k], 64)
			if err != nil {
				return out, zerr.With(zerr.Wrap(ErrMalformed, "bad header value"), "key", k)
			}
			out[i] = v
		}
		return out, nil
	}
	p1, err := floats("xmin", "ymin", "zmin")
	if err != nil {
		return nil, 0, err
	}
	p2, err := floats("xmax", "ymax", "zmax")
	if err != nil {
		return nil, 0, err
	}
	var n [3]int
	for i, k := range []string{"xnodes", "ynodes", "znodes"} {
		v, err := strconv.Atoi(hdr[k])
		if err != nil {
			return nil, 0, zerr.With(zerr.Wrap(ErrMalformed, "bad header value"), "key", k)
		}
		n[i] = v
	}
	dim, err := strconv.Atoi(hdr["valuedim"])
	if err != nil || dim <= 0 {
		return nil, 0, zerr.With(zerr.Wrap(ErrMalformed, "bad header value"), "key", "valuedim")
	}
	mesh, err := field.NewMesh(p1, p2, n)
	if err != nil {
		return nil, 0, zerr.Wrap(err, "ovf header describes an invalid mesh")
	}
	return mesh, dim, nil
}

func fscanToken(r *bufio.Reader, tok *string) (int, error) {
	var sb strings.Builder
	for {
		b, err := r.ReadByte()
		if err != nil {
			if sb.Len() > 0 {
				*tok = sb.String()
				return sb.Len(), nil
			}
			return 0, err
		}
		if b == ' ' || b == '\n' || b == '\t' || b == '\r' {
			if sb.Len() > 0 {
				*tok = sb.String()
				return sb.Len(), nil
			}
			continue
		}
		sb.WriteByte(b)
	}
}
