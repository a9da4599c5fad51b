package config

import (
	"fmt"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/san-kum/mx3c/internal/compiler"
	"github.com/san-kum/mx3c/internal/field"
	"github.com/san-kum/mx3c/internal/micromag"
	"github.com/san-kum/mx3c/internal/ovf"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig indicates a simulation file that cannot be turned into a model.
var ErrInvalidConfig = zerr.New("config: invalid simulation")

const (
	DefaultFormat = "bin4"
	DefaultMs     = 8e5
)

type Config struct {
	Name          string              `yaml:"name"`
	Driver        DriverConfig        `yaml:"driver"`
	Run           RunConfig           `yaml:"run"`
	Mesh          MeshConfig          `yaml:"mesh"`
	Regions       map[string]int      `yaml:"regions"`
	Magnetization MagnetizationConfig `yaml:"magnetization"`
	Dynamics      DynamicsConfig      `yaml:"dynamics"`
	Output        OutputConfig        `yaml:"output"`
}

type DriverConfig struct {
	Type string `yaml:"type"`
	// Attrs is kept as a node so attribute order survives decoding.
	Attrs yaml.Node `yaml:"attrs"`
}

type RunConfig struct {
	T float64 `yaml:"t"`
	N int     `yaml:"n"`
}

type MeshConfig struct {
	P1         [3]float64        `yaml:"p1"`
	P2         [3]float64        `yaml:"p2"`
	N          *[3]int           `yaml:"n"`
	Cell       *[3]float64       `yaml:"cell"`
	Subregions []SubregionConfig `yaml:"subregions"`
}

type SubregionConfig struct {
	Name string     `yaml:"name"`
	P1   [3]float64 `yaml:"p1"`
	P2   [3]float64 `yaml:"p2"`
}

type MagnetizationConfig struct {
	Value [3]float64 `yaml:"value"`
	Norm  Quantity   `yaml:"norm"`
}

type DynamicsConfig struct {
	Damping     *DampingConfig     `yaml:"damping"`
	Precession  *PrecessionConfig  `yaml:"precession"`
	ZhangLi     *ZhangLiConfig     `yaml:"zhang_li"`
	Slonczewski *SlonczewskiConfig `yaml:"slonczewski"`
}

type DampingConfig struct {
	Alpha float64 `yaml:"alpha"`
}

type PrecessionConfig struct {
	Gamma0 float64 `yaml:"gamma0"`
}

type ZhangLiConfig struct {
	U    Quantity `yaml:"u"`
	Beta float64  `yaml:"beta"`
}

type SlonczewskiConfig struct {
	Mp       Quantity `yaml:"mp"`
	Lambda   Quantity `yaml:"Lambda"`
	P        Quantity `yaml:"P"`
	EpsPrime Quantity `yaml:"eps_prime"`
	J        Quantity `yaml:"J"`
}

type OutputConfig struct {
	Format    string `yaml:"format"`
	FieldFile string `yaml:"field_file"`
}

func DefaultConfig() *Config {
	return &Config{
		Driver: DriverConfig{Type: "min"},
		Magnetization: MagnetizationConfig{
			Value: [3]float64{0, 0, 1},
		},
		Output: OutputConfig{
			Format:    DefaultFormat,
			FieldFile: compiler.DefaultFieldFile,
		},
	}
}

// Simulation is a config turned into compiler inputs.
type Simulation struct {
	Name        string
	Driver      *micromag.Driver
	System      *micromag.System
	Run         compiler.RunParams
	Format      ovf.Format
	FieldFile   string
	Fingerprint string
}

func Load(path string) (*Config, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, zerr.With(zerr.Wrap(err, "failed to read config file"), "path", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, nil, zerr.With(err, "path", path)
	}
	return cfg, data, nil
}

func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, zerr.Wrap(err, "failed to parse config file")
	}
	return cfg, nil
}

// Fingerprint hashes raw config bytes.
func Fingerprint(data []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}

// Build constructs the driver, system and run parameters.
func (c *Config) Build() (*Simulation, error) {
	kind, err := micromag.ParseDriverKind(c.Driver.Type)
	if err != nil {
		return nil, err
	}
	attrs, err := driverAttrs(&c.Driver.Attrs)
	if err != nil {
		return nil, err
	}

	mesh, err := c.Mesh.build()
	if err != nil {
		return nil, err
	}

	normQ := micromag.Quantity(micromag.Scalar(DefaultMs))
	if c.Magnetization.Norm.IsSet() {
		if normQ, err = c.Magnetization.Norm.Build(mesh); err != nil {
			return nil, zerr.With(err, "section", "magnetization")
		}
	}
	m, err := micromag.DirectedField(mesh, micromag.Vector(c.Magnetization.Value), normQ, "m")
	if err != nil {
		return nil, zerr.With(err, "section", "magnetization")
	}

	dyn, err := c.Dynamics.build(mesh)
	if err != nil {
		return nil, err
	}

	var regions micromag.RegionRelator = micromag.RelatorFromMesh(mesh)
	if len(c.Regions) > 0 {
		regions = micromag.RegionIndex(c.Regions)
	}

	format, err := ovf.ParseFormat(c.Output.Format)
	if err != nil {
		return nil, err
	}

	name := c.Name
	if name == "" {
		name = "simulation"
	}
	return &Simulation{
		Name:   name,
		Driver: micromag.NewDriver(kind, attrs...),
		System: &micromag.System{
			Name:     name,
			M:        m,
			Dynamics: dyn,
			Regions:  regions,
		},
		Run:       compiler.RunParams{T: c.Run.T, N: c.Run.N},
		Format:    format,
		FieldFile: c.Output.FieldFile,
	}, nil
}

func (mc MeshConfig) build() (*field.Mesh, error) {
	var (
		mesh *field.Mesh
		err  error
	)
	switch {
	case mc.N != nil && mc.Cell != nil:
		return nil, zerr.With(zerr.Wrap(ErrInvalidConfig, "mesh takes either n or cell"), "section", "mesh")
	case mc.N != nil:
		mesh, err = field.NewMesh(mc.P1, mc.P2, *mc.N)
	case mc.Cell != nil:
		mesh, err = field.NewMeshFromCell(mc.P1, mc.P2, *mc.Cell)
	default:
		return nil, zerr.With(zerr.Wrap(ErrInvalidConfig, "mesh needs n or cell"), "section", "mesh")
	}
	if err != nil {
		return nil, zerr.With(err, "section", "mesh")
	}
	for _, sub := range mc.Subregions {
		if err := mesh.AddSubregion(field.Region{Name: sub.Name, P1: sub.P1, P2: sub.P2}); err != nil {
			return nil, zerr.With(err, "section", "mesh")
		}
	}
	return mesh, nil
}

func (dc DynamicsConfig) build(mesh *field.Mesh) (*micromag.Dynamics, error) {
	var terms []micromag.Term
	if dc.Damping != nil {
		terms = append(terms, micromag.Damping{Alpha: dc.Damping.Alpha})
	}
	if dc.Precession != nil {
		terms = append(terms, micromag.Precession{Gamma0: dc.Precession.Gamma0})
	}
	if zl := dc.ZhangLi; zl != nil {
		u, err := zl.U.Build(mesh)
		if err != nil {
			return nil, zerr.With(err, "section", "dynamics.zhang_li")
		}
		terms = append(terms, micromag.ZhangLi{U: u, Beta: zl.Beta})
	}
	if s := dc.Slonczewski; s != nil {
		stt := micromag.Slonczewski{}
		for _, p := range []struct {
			name string
			q    Quantity
			dst  *micromag.Quantity
		}{
			{"mp", s.Mp, &stt.Mp},
			{"Lambda", s.Lambda, &stt.Lambda},
			{"P", s.P, &stt.P},
			{"eps_prime", s.EpsPrime, &stt.EpsPrime},
			{"J", s.J, &stt.J},
		} {
			if !p.q.IsSet() {
				return nil, zerr.With(zerr.Wrap(ErrInvalidConfig, "slonczewski parameter missing"), "parameter", p.name)
			}
			v, err := p.q.Build(mesh)
			if err != nil {
				return nil, zerr.With(err, "parameter", p.name)
			}
			*p.dst = v
		}
		terms = append(terms, stt)
	}
	return micromag.NewDynamics(terms...)
}
