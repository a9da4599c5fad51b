package config

import (
	"slices"
	"strings"
)

// Presets holds ready-made simulation documents keyed by name.
var Presets = map[string]string{
	"min_film": `
name: min_film
driver:
  type: min
mesh:
  p1: [0, 0, 0]
  p2: [500e-9, 125e-9, 3e-9]
  n: [100, 25, 1]
magnetization:
  value: [1, 0.25, 0.1]
  norm: 8e5
`,
	"relax_square": `
name: relax_square
driver:
  type: relax
mesh:
  p1: [0, 0, 0]
  p2: [100e-9, 100e-9, 10e-9]
  cell: [5e-9, 5e-9, 5e-9]
magnetization:
  value: [0, 0, 1]
  norm: 8e5
dynamics:
  damping:
    alpha: 0.5
`,
	"zhang_li_wire": `
name: zhang_li_wire
driver:
  type: time
  attrs:
    evolver: rkf45
run:
  t: 5e-9
  n: 50
mesh:
  p1: [0, 0, 0]
  p2: [500e-9, 20e-9, 2.5e-9]
  n: [200, 8, 1]
magnetization:
  value: [1, 0, 0]
  norm: 8e5
dynamics:
  damping:
    alpha: 0.1
  precession:
    gamma0: 2.211e5
  zhang_li:
    u:
      field: {value: [1, 0, 0], norm: 10}
    beta: 0.05
output:
  format: bin8
`,
	"stt_pillar": `
name: stt_pillar
driver:
  type: time
run:
  t: 2e-9
  n: 100
mesh:
  p1: [0, 0, 0]
  p2: [160e-9, 80e-9, 5e-9]
  n: [64, 32, 1]
  subregions:
    - name: free
      p1: [0, 0, 0]
      p2: [80e-9, 80e-9, 5e-9]
    - name: pinned
      p1: [80e-9, 0, 0]
      p2: [160e-9, 80e-9, 5e-9]
magnetization:
  value: [1, 0, 0]
  norm: {free: 8e5, pinned: 1.1e6}
dynamics:
  damping:
    alpha: 0.01
  precession:
    gamma0: 2.211e5
  slonczewski:
    mp: [0.3420201433256687, 0.9396926207859084, 0]
    Lambda: 1
    P: {free: 0.5669, pinned: 0.4}
    eps_prime: 0
    J: {free: 8e9}
`,
}

func GetPreset(name string) *Config {
	doc, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg, err := Parse([]byte(strings.TrimSpace(doc)))
	if err != nil {
		return nil
	}
	return cfg
}

// PresetSource returns the YAML text of a preset.
func PresetSource(name string) (string, bool) {
	doc, ok := Presets[name]
	return strings.TrimSpace(doc) + "\n", ok
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
