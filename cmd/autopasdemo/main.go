// Command autopasdemo builds a cubic lattice of Lennard-Jones
// particles, drives a handful of IteratePairwise steps over it through
// the autopas facade, and prints the resulting potential energy each
// step. It exists to exercise the engine end to end, the way
// voxelrt/rt_main.go exercises its renderer end to end.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/autopas-go/autopas"
	"github.com/autopas-go/autopas/cell"
	"github.com/autopas-go/autopas/functor"
	"github.com/autopas-go/autopas/internal/accum"
	"github.com/autopas-go/autopas/internal/aperrors"
	"github.com/autopas-go/autopas/internal/applog"
	"github.com/autopas-go/autopas/particle"
	"github.com/autopas-go/autopas/selector"
	"github.com/autopas-go/autopas/soa"
)

// ljParticle is the demo's concrete particle type.
type ljParticle struct {
	r, f mgl64.Vec3
	id   uint64
	own  particle.OwnershipState
}

func (p *ljParticle) Position() mgl64.Vec3                   { return p.r }
func (p *ljParticle) SetPosition(r mgl64.Vec3)               { p.r = r }
func (p *ljParticle) Force() mgl64.Vec3                      { return p.f }
func (p *ljParticle) SetForce(f mgl64.Vec3)                  { p.f = f }
func (p *ljParticle) AddForce(f mgl64.Vec3)                  { p.f = p.f.Add(f) }
func (p *ljParticle) ID() uint64                             { return p.id }
func (p *ljParticle) Ownership() particle.OwnershipState     { return p.own }
func (p *ljParticle) SetOwnership(s particle.OwnershipState) { p.own = s }
func (p *ljParticle) Clone() *ljParticle                     { cp := *p; return &cp }

func zeroDummy() *ljParticle { return &ljParticle{} }

// ljFunctor is a shifted 12-6 Lennard-Jones pair kernel, the default
// interaction a molecular-dynamics demo needs. The potential sum goes
// through a padded accumulator bank, striped by particle id (by buffer
// row in the SoA paths), since a
// parallel traversal calls AoSFunctor from many goroutines at once.
type ljFunctor struct {
	epsilon, sigma, shift float64
	cutoff2               float64
	pot                   accum.Bank
	postProcessed         bool
}

func newLJFunctor(epsilon, sigma, shift, cutoff float64, workers int) *ljFunctor {
	return &ljFunctor{epsilon: epsilon, sigma: sigma, shift: shift, cutoff2: cutoff * cutoff, pot: accum.NewBank(workers)}
}

// pairForceAndPot returns false for pairs beyond the cutoff, which the
// traversal's cell-level pruning cannot exclude on its own.
func (f *ljFunctor) pairForceAndPot(ri, rj mgl64.Vec3) (mgl64.Vec3, float64, bool) {
	d := ri.Sub(rj)
	r2 := d.Dot(d)
	if r2 > f.cutoff2 {
		return mgl64.Vec3{}, 0, false
	}
	sr2 := (f.sigma * f.sigma) / r2
	sr6 := sr2 * sr2 * sr2
	sr12 := sr6 * sr6
	coeff := 24 * f.epsilon * (2*sr12 - sr6) / r2
	pot := 4*f.epsilon*(sr12-sr6) + f.shift
	return d.Mul(coeff), pot, true
}

func (f *ljFunctor) AoSFunctor(i, j *ljParticle, newton3 bool) {
	fv, pot, ok := f.pairForceAndPot(i.Position(), j.Position())
	if !ok {
		return
	}
	i.AddForce(fv)
	if newton3 {
		j.AddForce(fv.Mul(-1))
		f.pot.Add(int(i.ID()), pot)
	} else {
		f.pot.Add(int(i.ID()), pot/2)
	}
}

func (f *ljFunctor) SoAFunctorSingle(buf *soa.Buffer, newton3 bool) {
	px, py, pz := buf.Column(soa.AttrPosX), buf.Column(soa.AttrPosY), buf.Column(soa.AttrPosZ)
	fx, fy, fz := buf.Column(soa.AttrForceX), buf.Column(soa.AttrForceY), buf.Column(soa.AttrForceZ)
	for i := 0; i < buf.Size; i++ {
		for j := i + 1; j < buf.Size; j++ {
			ri := mgl64.Vec3{px[i], py[i], pz[i]}
			rj := mgl64.Vec3{px[j], py[j], pz[j]}
			fv, pot, ok := f.pairForceAndPot(ri, rj)
			if !ok {
				continue
			}
			fx[i] += fv.X()
			fy[i] += fv.Y()
			fz[i] += fv.Z()
			if newton3 {
				fx[j] -= fv.X()
				fy[j] -= fv.Y()
				fz[j] -= fv.Z()
			}
			f.pot.Add(i, pot)
		}
	}
}

func (f *ljFunctor) SoAFunctorPair(buf1, buf2 *soa.Buffer, newton3 bool) {
	px1, py1, pz1 := buf1.Column(soa.AttrPosX), buf1.Column(soa.AttrPosY), buf1.Column(soa.AttrPosZ)
	fx1, fy1, fz1 := buf1.Column(soa.AttrForceX), buf1.Column(soa.AttrForceY), buf1.Column(soa.AttrForceZ)
	px2, py2, pz2 := buf2.Column(soa.AttrPosX), buf2.Column(soa.AttrPosY), buf2.Column(soa.AttrPosZ)
	fx2, fy2, fz2 := buf2.Column(soa.AttrForceX), buf2.Column(soa.AttrForceY), buf2.Column(soa.AttrForceZ)
	for i := 0; i < buf1.Size; i++ {
		for j := 0; j < buf2.Size; j++ {
			ri := mgl64.Vec3{px1[i], py1[i], pz1[i]}
			rj := mgl64.Vec3{px2[j], py2[j], pz2[j]}
			fv, pot, ok := f.pairForceAndPot(ri, rj)
			if !ok {
				continue
			}
			fx1[i] += fv.X()
			fy1[i] += fv.Y()
			fz1[i] += fv.Z()
			if newton3 {
				fx2[j] -= fv.X()
				fy2[j] -= fv.Y()
				fz2[j] -= fv.Z()
				f.pot.Add(i, pot)
			} else {
				f.pot.Add(i, pot/2)
			}
		}
	}
}

func (f *ljFunctor) SoAFunctorVerlet(buf *soa.Buffer, neighbors [][]int32, iFrom, iTo int, newton3 bool) {
	px, py, pz := buf.Column(soa.AttrPosX), buf.Column(soa.AttrPosY), buf.Column(soa.AttrPosZ)
	fx, fy, fz := buf.Column(soa.AttrForceX), buf.Column(soa.AttrForceY), buf.Column(soa.AttrForceZ)
	for i := iFrom; i < iTo; i++ {
		for _, j := range neighbors[i] {
			ri := mgl64.Vec3{px[i], py[i], pz[i]}
			rj := mgl64.Vec3{px[j], py[j], pz[j]}
			fv, pot, ok := f.pairForceAndPot(ri, rj)
			if !ok {
				continue
			}
			fx[i] += fv.X()
			fy[i] += fv.Y()
			fz[i] += fv.Z()
			if newton3 {
				fx[j] -= fv.X()
				fy[j] -= fv.Y()
				fz[j] -= fv.Z()
				f.pot.Add(i, pot)
			} else {
				f.pot.Add(i, pot/2)
			}
		}
	}
}

func (f *ljFunctor) SoALoader(c cell.Cell[*ljParticle], buf *soa.Buffer, offset int) {
	functor.LoadPositionForceColumns[*ljParticle](c, buf, offset)
}

func (f *ljFunctor) SoAExtractor(c cell.Cell[*ljParticle], buf *soa.Buffer, offset int) {
	functor.ExtractForceColumns[*ljParticle](c, buf, offset)
}

func (f *ljFunctor) InitTraversal() {
	f.pot.Reset()
	f.postProcessed = false
}

func (f *ljFunctor) EndTraversal(bool) {
	if f.postProcessed {
		panic(aperrors.PostProcessingOrder("EndTraversal called twice without InitTraversal"))
	}
	f.postProcessed = true
}

// Potential reduces the per-bucket sums after a traversal; calling it
// before EndTraversal has run is an ordering error.
func (f *ljFunctor) Potential() (float64, error) {
	if !f.postProcessed {
		return 0, aperrors.PostProcessingOrder("Potential read before EndTraversal")
	}
	return f.pot.Sum(), nil
}

func (f *ljFunctor) AllowsNewton3() bool            { return true }
func (f *ljFunctor) AllowsNonNewton3() bool         { return true }
func (f *ljFunctor) IsRelevantForTuning() bool      { return true }
func (f *ljFunctor) NeededAttrs() []soa.AttributeID { return nil }
func (f *ljFunctor) ComputedAttrs() []soa.AttributeID {
	return []soa.AttributeID{soa.AttrForceX, soa.AttrForceY, soa.AttrForceZ}
}

func main() {
	gridSide := flag.Int("grid", 8, "particles per lattice edge")
	steps := flag.Int("steps", 5, "number of IteratePairwise steps")
	cutoff := flag.Float64("cutoff", 2.5, "Lennard-Jones cutoff radius")
	skin := flag.Float64("skin", 0.3, "Verlet skin width")
	workers := flag.Int("workers", 4, "traversal worker count")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	logger := applog.NewDefaultLogger("autopasdemo", *debug)

	extent := float64(*gridSide) + 2
	boxMin := mgl64.Vec3{0, 0, 0}
	boxMax := mgl64.Vec3{extent, extent, extent}

	cfg := selector.NewConfiguration().
		WithContainers(selector.ContainerLinkedCells).
		WithTraversals(selector.TagC08, selector.TagC18, selector.TagSliced).
		WithDataLayouts(functor.LayoutAoS).
		WithNewton3(true).
		WithVerletSkin(*skin)

	f := newLJFunctor(1, 1, 0, *cutoff, *workers)

	ap, err := autopas.NewBuilder[*ljParticle](boxMin, boxMax, *cutoff).
		WithConfiguration(cfg).
		WithNumWorkers(*workers).
		WithLogger(logger).
		Build(f)
	if err != nil {
		fmt.Fprintln(os.Stderr, "build:", err)
		os.Exit(1)
	}

	id := uint64(0)
	for x := 0; x < *gridSide; x++ {
		for y := 0; y < *gridSide; y++ {
			for z := 0; z < *gridSide; z++ {
				ap.AddParticle(&ljParticle{
					id: id,
					r:  mgl64.Vec3{float64(x) + 1, float64(y) + 1, float64(z) + 1},
				})
				id++
			}
		}
	}

	fmt.Printf("%s: %d particles, plan %+v\n", ap, ap.NumParticles(), ap.Plan())

	for step := 0; step < *steps; step++ {
		if err := ap.IteratePairwise(f); err != nil {
			fmt.Fprintln(os.Stderr, "step", step, "failed:", err)
			os.Exit(1)
		}
		pot, err := f.Potential()
		if err != nil {
			fmt.Fprintln(os.Stderr, "step", step, "failed:", err)
			os.Exit(1)
		}
		fmt.Printf("step %d: potential=%.6f\n", step, pot)
	}
}
