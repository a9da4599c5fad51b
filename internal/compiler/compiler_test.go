package compiler_test

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/mx3c/internal/compiler"
	"github.com/san-kum/mx3c/internal/field"
	"github.com/san-kum/mx3c/internal/micromag"
	"github.com/san-kum/mx3c/internal/mx3"
	"github.com/san-kum/mx3c/internal/ovf"
	"go.trai.ch/zerr"
)

const header = "tableadd(E_total)\ntableadd(dt)\ntableadd(maxtorque)\n"

func newMesh() *field.Mesh {
	m, err := field.NewMesh([3]float64{0, 0, 0}, [3]float64{4e-9, 1e-9, 1e-9}, [3]int{4, 1, 1})
	Expect(err).NotTo(HaveOccurred())
	Expect(m.AddSubregion(field.Region{Name: "A", P1: [3]float64{0, 0, 0}, P2: [3]float64{2e-9, 1e-9, 1e-9}})).To(Succeed())
	Expect(m.AddSubregion(field.Region{Name: "B", P1: [3]float64{2e-9, 0, 0}, P2: [3]float64{4e-9, 1e-9, 1e-9}})).To(Succeed())
	return m
}

func newSystem(terms ...micromag.Term) *micromag.System {
	mesh := newMesh()
	m, err := micromag.DirectedField(mesh, micromag.Vector{0, 0, 1}, micromag.Scalar(8e5), "m")
	Expect(err).NotTo(HaveOccurred())
	dyn, err := micromag.NewDynamics(terms...)
	Expect(err).NotTo(HaveOccurred())
	return &micromag.System{
		Name:     "bar",
		M:        m,
		Dynamics: dyn,
		Regions:  micromag.RegionIndex{"A": 0, "B": 1},
	}
}

func quietCompiler(dir string) *compiler.Compiler {
	return compiler.New(compiler.Options{
		Dir:    dir,
		Format: ovf.Bin8,
		Logger: slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
	})
}

func render(stmts []mx3.Statement) string {
	return mx3.New().Append(stmts...).Render()
}

func metadata(err error) map[string]any {
	zErr, ok := err.(*zerr.Error)
	Expect(ok).To(BeTrue(), "expected *zerr.Error, got %T", err)
	return zErr.Metadata()
}

func uniformSlonczewski() micromag.Slonczewski {
	return micromag.Slonczewski{
		Mp:       micromag.Vector{0, 0, 1},
		Lambda:   micromag.Scalar(1),
		P:        micromag.Scalar(0.4),
		EpsPrime: micromag.Scalar(0),
		J:        micromag.Scalar(1e12),
	}
}

var _ = Describe("Compile", func() {
	var (
		dir string
		c   *compiler.Compiler
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		c = quietCompiler(dir)
	})

	Describe("min driver", func() {
		It("emits table columns, attributes, minimize and a checkpoint", func() {
			d := micromag.NewDriver(micromag.MinDriver).
				Set("MinimizerStop", micromag.Number(1e-6)).
				Set(micromag.EvolverAttr, micromag.Text("cg")).
				Set("MinimizerSamples", micromag.Integer(20))

			res, err := c.Compile(d, newSystem(), compiler.RunParams{})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Text()).To(Equal(header +
				"MinimizerStop = 1e-06\n" +
				"MinimizerSamples = 20\n" +
				"minimize()\n" +
				"\n" +
				"save(m_full)\n" +
				"tablesave()\n" +
				"\n"))
			Expect(res.Script.Calls()).To(Equal([]string{"tableadd", "tableadd", "tableadd", "minimize", "save", "tablesave"}))
			Expect(res.Files).To(BeEmpty())
		})

		It("keeps repeated attributes in order", func() {
			d := micromag.NewDriver(micromag.MinDriver).
				Set("DoBoundary", micromag.Flag(true)).
				Set("DoBoundary", micromag.Flag(false))

			res, err := c.Compile(d, newSystem(), compiler.RunParams{})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Text()).To(ContainSubstring("DoBoundary = true\nDoBoundary = false\n"))
		})
	})

	Describe("relax driver", func() {
		It("fails without a damping term and produces nothing", func() {
			res, err := c.Compile(micromag.NewDriver(micromag.RelaxDriver), newSystem(), compiler.RunParams{})
			Expect(err).To(MatchError(micromag.ErrMissingTerm))
			Expect(res).To(BeNil())
			Expect(metadata(err)).To(HaveKeyWithValue("term", "damping"))
		})

		It("reads alpha from the damping term before the attributes", func() {
			d := micromag.NewDriver(micromag.RelaxDriver).Set("RelaxTorqueThreshold", micromag.Number(1e-4))
			res, err := c.Compile(d, newSystem(micromag.Damping{Alpha: 0.5}), compiler.RunParams{})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Text()).To(Equal(header +
				"alpha = 0.5\n" +
				"RelaxTorqueThreshold = 0.0001\n" +
				"relax()\n" +
				"\n" +
				"save(m_full)\n" +
				"tablesave()\n" +
				"\n"))
		})
	})

	Describe("time driver", func() {
		run := compiler.RunParams{T: 1e-9, N: 100}

		It("emits the stepping loop with bound n and step t/n", func() {
			res, err := c.Compile(micromag.NewDriver(micromag.TimeDriver), newSystem(micromag.Damping{Alpha: 0.02}), run)
			Expect(err).NotTo(HaveOccurred())

			dt := fmt.Sprint(run.T / float64(run.N))
			Expect(res.Text()).To(Equal(header +
				"alpha = 0.02\n" +
				"doprecess = false\n" +
				"relax()\n" +
				"setsolver(5)\n" +
				"fixDt = " + dt + "\n" +
				"\n" +
				"for snap_counter:=0; snap_counter<100; snap_counter++{\n" +
				"    run(" + dt + ")\n" +
				"    save(m_full)\n" +
				"    tablesave()\n" +
				"}\n"))
		})

		DescribeTable("loop bound and step duration",
			func(t float64, n int) {
				res, err := c.Compile(micromag.NewDriver(micromag.TimeDriver), newSystem(), compiler.RunParams{T: t, N: n})
				Expect(err).NotTo(HaveOccurred())

				loop, ok := res.Script.Statements[len(res.Script.Statements)-1].(mx3.Loop)
				Expect(ok).To(BeTrue())
				Expect(loop.Bound).To(Equal(n))

				fixDt, ok := res.Script.Lookup("fixDt")
				Expect(ok).To(BeTrue())
				Expect(fixDt.Render()).To(Equal(fmt.Sprint(t / float64(n))))
			},
			Entry("single step", 5e-12, 1),
			Entry("nanosecond in 3", 1e-9, 3),
			Entry("large count", 2e-8, 4000),
		)

		DescribeTable("rejects invalid run parameters",
			func(t float64, n int) {
				res, err := c.Compile(micromag.NewDriver(micromag.TimeDriver), newSystem(), compiler.RunParams{T: t, N: n})
				Expect(err).To(MatchError(micromag.ErrInvalidRunParameters))
				Expect(res).To(BeNil())
			},
			Entry("zero steps", 1e-9, 0),
			Entry("negative steps", 1e-9, -3),
			Entry("zero time", 0.0, 10),
			Entry("negative time", -1e-9, 10),
		)

		It("treats a missing precession term like gamma0 = 0", func() {
			absent, err := c.Compile(micromag.NewDriver(micromag.TimeDriver), newSystem(), run)
			Expect(err).NotTo(HaveOccurred())
			zero, err := c.Compile(micromag.NewDriver(micromag.TimeDriver), newSystem(micromag.Precession{Gamma0: 0}), run)
			Expect(err).NotTo(HaveOccurred())

			Expect(absent.Text()).To(Equal(zero.Text()))
			Expect(absent.Text()).To(ContainSubstring("doprecess = false\n"))
			Expect(absent.Text()).NotTo(ContainSubstring("gammaLL"))
		})

		It("scales gamma0 by 1/mu0 and enables precession", func() {
			res, err := c.Compile(micromag.NewDriver(micromag.TimeDriver), newSystem(micromag.Precession{Gamma0: 2.211e5}), run)
			Expect(err).NotTo(HaveOccurred())

			gamma, ok := res.Script.Lookup("gammaLL")
			Expect(ok).To(BeTrue())
			Expect(gamma).To(Equal(mx3.Number(2.211e5 / micromag.DefaultConstants().Mu0)))
			Expect(res.Text()).To(ContainSubstring("gammaLL = " + fmt.Sprint(2.211e5/micromag.DefaultConstants().Mu0) + "\ndoprecess = true\n"))
		})

		It("uses injected constants", func() {
			custom := compiler.New(compiler.Options{
				Dir:       dir,
				Constants: micromag.Constants{Mu0: 2, E: 1, Hbar: 1, Me: 1},
			})
			res, err := custom.Compile(micromag.NewDriver(micromag.TimeDriver), newSystem(micromag.Precession{Gamma0: 10}), run)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Text()).To(ContainSubstring("gammaLL = 5\n"))
		})

		It("ignores time driver attributes", func() {
			d := micromag.NewDriver(micromag.TimeDriver).Set("MaxDt", micromag.Number(1e-13))
			res, err := c.Compile(d, newSystem(), run)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Text()).NotTo(ContainSubstring("MaxDt"))
		})

		It("is idempotent", func() {
			sys := newSystem(
				micromag.Damping{Alpha: 0.1},
				micromag.Precession{Gamma0: 2.211e5},
				micromag.ZhangLi{U: micromag.Scalar(5), Beta: 0.2},
			)
			d := micromag.NewDriver(micromag.TimeDriver)
			first, err := c.Compile(d, sys, run)
			Expect(err).NotTo(HaveOccurred())
			second, err := c.Compile(d, sys, run)
			Expect(err).NotTo(HaveOccurred())
			Expect(second.Text()).To(Equal(first.Text()))
		})
	})

	Describe("Zhang-Li term", func() {
		run := compiler.RunParams{T: 1e-10, N: 10}

		It("writes the current density and loads it into J", func() {
			sys := newSystem(micromag.ZhangLi{U: micromag.Scalar(2), Beta: 0.5})
			res, err := c.Compile(micromag.NewDriver(micromag.TimeDriver), sys, run)
			Expect(err).NotTo(HaveOccurred())

			Expect(res.Text()).To(ContainSubstring("// ZhangLi term\nXi = 0.5\nPol = 1\nJ.add(LoadFile(\"j.ovf\"), 1)\n"))
			Expect(res.Files).To(Equal([]string{filepath.Join(dir, "j.ovf")}))

			j, format, meta, err := ovf.ReadFile(res.Files[0])
			Expect(err).NotTo(HaveOccurred())
			Expect(format).To(Equal(ovf.Bin8))
			Expect(meta.Title).To(Equal("j"))

			k := micromag.DefaultConstants()
			want := -2 * (k.E / (k.E * k.Hbar / (2 * k.Me))) * 8e5
			for idx := 0; idx < j.Mesh.Len(); idx++ {
				Expect(j.At(idx)[0]).To(BeNumerically("~", want, 1e-6*-want))
				Expect(j.At(idx)[1]).To(BeZero())
				Expect(j.At(idx)[2]).To(BeZero())
			}
		})

		It("spreads per-region u over the mesh", func() {
			sys := newSystem(micromag.ZhangLi{U: micromag.Regions().Set("B", micromag.Scalar(1)), Beta: 0})
			res, err := c.Compile(micromag.NewDriver(micromag.TimeDriver), sys, run)
			Expect(err).NotTo(HaveOccurred())

			j, _, _, err := ovf.ReadFile(res.Files[0])
			Expect(err).NotTo(HaveOccurred())
			Expect(j.At(0)[0]).To(BeZero())
			Expect(j.At(3)[0]).To(BeNumerically("<", 0))
		})

		It("uses a spatial u field directly", func() {
			sys := newSystem()
			u := field.NewUniform(sys.Mesh(), 0, 3, 0)
			Expect(sys.Dynamics.Add(micromag.ZhangLi{U: micromag.SpatialField{Field: u}, Beta: 0.1})).To(Succeed())

			res, err := c.Compile(micromag.NewDriver(micromag.TimeDriver), sys, run)
			Expect(err).NotTo(HaveOccurred())
			j, _, _, err := ovf.ReadFile(res.Files[0])
			Expect(err).NotTo(HaveOccurred())
			Expect(j.At(1)[0]).To(BeZero())
			Expect(j.At(1)[1]).To(BeNumerically("<", 0))
		})

		It("spreads a uniform vector u as given", func() {
			sys := newSystem(micromag.ZhangLi{U: micromag.Vector{0, 0, 1}, Beta: 0})
			res, err := c.Compile(micromag.NewDriver(micromag.TimeDriver), sys, run)
			Expect(err).NotTo(HaveOccurred())

			j, _, _, err := ovf.ReadFile(res.Files[0])
			Expect(err).NotTo(HaveOccurred())
			Expect(j.At(2)[0]).To(BeZero())
			Expect(j.At(2)[2]).To(BeNumerically("<", 0))
		})

		It("honours a custom field file name", func() {
			custom := compiler.New(compiler.Options{Dir: dir, FieldFile: "j-run7.ovf"})
			sys := newSystem(micromag.ZhangLi{U: micromag.Scalar(1), Beta: 0})
			res, err := custom.Compile(micromag.NewDriver(micromag.TimeDriver), sys, run)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Text()).To(ContainSubstring(`J.add(LoadFile("j-run7.ovf"), 1)`))
			Expect(filepath.Join(dir, "j-run7.ovf")).To(BeAnExistingFile())
		})

		It("writes no file when a later term fails", func() {
			stt := uniformSlonczewski()
			stt.Lambda = micromag.SpatialField{Field: field.NewUniform(newMesh(), 1)}
			sys := newSystem(micromag.ZhangLi{U: micromag.Scalar(1), Beta: 0}, stt)

			_, err := c.Compile(micromag.NewDriver(micromag.TimeDriver), sys, run)
			Expect(err).To(MatchError(micromag.ErrUnsupportedSpatialVaryingParameter))

			entries, err := os.ReadDir(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(BeEmpty())
		})
	})

	Describe("Slonczewski term", func() {
		run := compiler.RunParams{T: 1e-10, N: 10}

		It("disables Zhang-Li torque, warns, and lowers parameters in fixed order", func() {
			var logs bytes.Buffer
			logged := compiler.New(compiler.Options{Dir: dir, Logger: slog.New(slog.NewTextHandler(&logs, nil))})

			res, err := logged.Compile(micromag.NewDriver(micromag.TimeDriver), newSystem(uniformSlonczewski()), run)
			Expect(err).NotTo(HaveOccurred())

			Expect(res.Warnings).To(ConsistOf(compiler.SlonczewskiWarning))
			Expect(logs.String()).To(ContainSubstring("STT supported with cross-direction"))
			Expect(res.Text()).To(ContainSubstring("// STT term\n" +
				"DisableZhangLiTorque = true\n" +
				"FixedLayer = vector(0, 0, 1)\n" +
				"Lambda = 1\n" +
				"Pol = 0.4\n" +
				"EpsilonPrime = 0\n" +
				"J = 1e+12\n" +
				"relax()\n"))
		})

		It("overrides a co-configured Zhang-Li term instead of refusing it", func() {
			sys := newSystem(micromag.ZhangLi{U: micromag.Scalar(1), Beta: 0}, uniformSlonczewski())
			res, err := c.Compile(micromag.NewDriver(micromag.TimeDriver), sys, run)
			Expect(err).NotTo(HaveOccurred())

			text := res.Text()
			Expect(strings.Index(text, "J.add(")).To(BeNumerically("<", strings.Index(text, "DisableZhangLiTorque = true")))
		})

		It("mixes shapes across parameters", func() {
			stt := uniformSlonczewski()
			stt.P = micromag.Regions().Set("A", micromag.Scalar(0.3)).Set("B", micromag.Scalar(0.6))
			stt.J = micromag.Regions().Set("B", micromag.Scalar(2e11))
			stt.Mp = micromag.Regions().Set("A", micromag.Vector{1, 0, 0})

			res, err := c.Compile(micromag.NewDriver(micromag.TimeDriver), newSystem(stt), run)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Text()).To(ContainSubstring("FixedLayer.setregion(0, vector(1, 0, 0))\n" +
				"Lambda = 1\n" +
				"Pol.setregion(0, 0.3)\n" +
				"Pol.setregion(1, 0.6)\n" +
				"EpsilonPrime = 0\n" +
				"J.setregion(1, vector(0, 0, 2e+11))\n"))
		})

		DescribeTable("rejects a spatially varying parameter regardless of the others",
			func(set func(*micromag.Slonczewski, micromag.Quantity), name string) {
				stt := uniformSlonczewski()
				stt.P = micromag.Regions().Set("A", micromag.Scalar(0.5))
				set(&stt, micromag.SpatialField{Field: field.NewUniform(newMesh(), 1)})

				res, err := c.Compile(micromag.NewDriver(micromag.TimeDriver), newSystem(stt), run)
				Expect(err).To(MatchError(micromag.ErrUnsupportedSpatialVaryingParameter))
				Expect(res).To(BeNil())
				Expect(metadata(err)).To(HaveKeyWithValue("quantity", name))
				Expect(metadata(err)).To(HaveKeyWithValue("term", "slonczewski"))
			},
			Entry("mp", func(s *micromag.Slonczewski, q micromag.Quantity) { s.Mp = q }, "FixedLayer"),
			Entry("Lambda", func(s *micromag.Slonczewski, q micromag.Quantity) { s.Lambda = q }, "Lambda"),
			Entry("P", func(s *micromag.Slonczewski, q micromag.Quantity) { s.P = q }, "Pol"),
			Entry("eps_prime", func(s *micromag.Slonczewski, q micromag.Quantity) { s.EpsPrime = q }, "EpsilonPrime"),
			Entry("J", func(s *micromag.Slonczewski, q micromag.Quantity) { s.J = q }, "J"),
		)

		It("fails on a region the relator does not know", func() {
			stt := uniformSlonczewski()
			stt.Lambda = micromag.Regions().Set("C", micromag.Scalar(1))
			_, err := c.Compile(micromag.NewDriver(micromag.TimeDriver), newSystem(stt), run)
			Expect(err).To(MatchError(micromag.ErrUnknownRegion))
		})
	})
})

var _ = Describe("Resolve", func() {
	It("emits one setregion per region in mapping order", func() {
		sys := &micromag.System{Regions: micromag.RegionIndex{"A": 0, "B": 1}}
		stmts, err := compiler.Resolve(micromag.Regions().Set("A", micromag.Scalar(1)).Set("B", micromag.Scalar(2)), "Pol", sys)
		Expect(err).NotTo(HaveOccurred())
		Expect(render(stmts)).To(Equal("Pol.setregion(0, 1)\nPol.setregion(1, 2)\n"))
	})

	It("promotes per-region J scalars to z vectors", func() {
		sys := &micromag.System{Regions: micromag.RegionIndex{"A": 4}}
		stmts, err := compiler.Resolve(micromag.Regions().Set("A", micromag.Scalar(3)), "J", sys)
		Expect(err).NotTo(HaveOccurred())
		Expect(render(stmts)).To(Equal("J.setregion(4, vector(0, 0, 3))\n"))
	})

	It("passes per-region J vectors through", func() {
		sys := &micromag.System{Regions: micromag.RegionIndex{"A": 0}}
		stmts, err := compiler.Resolve(micromag.Regions().Set("A", micromag.Vector{1, 2, 3}), "J", sys)
		Expect(err).NotTo(HaveOccurred())
		Expect(render(stmts)).To(Equal("J.setregion(0, vector(1, 2, 3))\n"))
	})

	It("assigns uniform values globally", func() {
		stmts, err := compiler.Resolve(micromag.Vector{0, 0, 1}, "FixedLayer", &micromag.System{})
		Expect(err).NotTo(HaveOccurred())
		Expect(render(stmts)).To(Equal("FixedLayer = vector(0, 0, 1)\n"))

		stmts, err = compiler.Resolve(micromag.Scalar(0.4), "Pol", &micromag.System{})
		Expect(err).NotTo(HaveOccurred())
		Expect(render(stmts)).To(Equal("Pol = 0.4\n"))
	})

	It("rejects unset and nested quantities", func() {
		_, err := compiler.Resolve(nil, "Lambda", &micromag.System{})
		Expect(err).To(MatchError(micromag.ErrInvalidQuantity))

		sys := &micromag.System{Regions: micromag.RegionIndex{"A": 0}}
		_, err = compiler.Resolve(micromag.Regions().Set("A", micromag.Regions()), "Lambda", sys)
		Expect(err).To(MatchError(micromag.ErrInvalidQuantity))
	})
})

var _ = Describe("CompileAll", func() {
	zhangLiJob := func(name, dir string) compiler.Job {
		return compiler.Job{
			Name:    name,
			Driver:  micromag.NewDriver(micromag.TimeDriver),
			System:  newSystem(micromag.ZhangLi{U: micromag.Scalar(1), Beta: 0}),
			Run:     compiler.RunParams{T: 1e-10, N: 2},
			Options: compiler.Options{Dir: dir, Logger: slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))},
		}
	}

	It("rejects jobs writing the same field file", func() {
		dir := GinkgoT().TempDir()
		_, err := compiler.CompileAll(context.Background(), []compiler.Job{zhangLiJob("a", dir), zhangLiJob("b", dir)}, 2)
		Expect(err).To(MatchError(compiler.ErrFieldFileCollision))
		Expect(metadata(err)).To(HaveKeyWithValue("second", "b"))
	})

	It("compiles independent jobs and keeps job order", func() {
		a := zhangLiJob("a", GinkgoT().TempDir())
		b := zhangLiJob("b", GinkgoT().TempDir())
		m := compiler.Job{
			Name:    "m",
			Driver:  micromag.NewDriver(micromag.MinDriver),
			System:  newSystem(),
			Options: compiler.Options{Dir: a.Options.Dir},
		}

		results, err := compiler.CompileAll(context.Background(), []compiler.Job{a, m, b}, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(3))
		Expect(results[1].Script.Calls()).To(ContainElement("minimize"))
		Expect(results[2].Files).To(Equal([]string{filepath.Join(b.Options.Dir, "j.ovf")}))
	})

	It("reports the failing job", func() {
		bad := compiler.Job{Name: "bad", Driver: micromag.NewDriver(micromag.RelaxDriver), System: newSystem()}
		_, err := compiler.CompileAll(context.Background(), []compiler.Job{bad}, 1)
		Expect(err).To(MatchError(micromag.ErrMissingTerm))
		Expect(metadata(err)).To(HaveKeyWithValue("job", "bad"))
	})
})
