// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package multiscale_test

import (
	"math"
	"testing"

	"github.com/cpmech/gofea/asm"
	"github.com/cpmech/gofea/cell"
	"github.com/cpmech/gofea/coef"
	"github.com/cpmech/gofea/dof"
	"github.com/cpmech/gofea/ele"
	"github.com/cpmech/gofea/ele/diffusion"
	"github.com/cpmech/gofea/multiscale"
	"github.com/cpmech/gofea/solver"
)

// buildHalfBar wires one single-cell 1D diffusion domain [x0,x1] with
// unit conductivity, one Dirichlet end (at localDirichlet, value
// dirichletVal) and a SideMultiscale interface at the other end.
func buildHalfBar(tst *testing.T, block int, x0, x1 float64, dirichletNode int, dirichletVal float64, interfaceNode int, interfaceAxisValue float64) (*multiscale.Domain, *dof.Manager, *cell.Cell) {
	cf := coef.NewManager()
	must := func(err error) {
		if err != nil {
			tst.Fatalf("registering coefficient failed: %v", err)
		}
	}
	must(cf.RegisterConstant(block, coef.AtVolumeIp, "density", 1))
	must(cf.RegisterConstant(block, coef.AtVolumeIp, "specific heat", 1))
	must(cf.RegisterConstant(block, coef.AtVolumeIp, "thermal diffusion", 1))
	must(cf.RegisterConstant(block, coef.AtVolumeIp, "thermal source", 0))

	dm := dof.NewManager()
	dm.Number(0, []string{"u"}, 0)
	dm.Number(1, []string{"u"}, 0)
	dm.MarkStrongDirichlet(dm.MustEq(dirichletNode, "u"), dirichletVal)

	c := cell.NewCell(0, block, []int{0, 1}, [][]float64{{x0}, {x1}}, "lin2")
	c.Sides = []cell.Side{{
		LocalVerts: []int{interfaceNode},
		FixedAxis:  0,
		FixedValue: interfaceAxisValue,
		Info:       ele.SideInfo{Kind: ele.SideMultiscale},
	}}

	mod, err := diffusion.New(1)(block)
	if err != nil {
		tst.Fatalf("diffusion.New: %v", err)
	}
	a := asm.NewAssembler(dm, cf)
	a.Blocks = []asm.Block{{ID: block, Module: mod, VarNames: []string{"u"}, Cells: []*cell.Cell{c}, NGauss: 2}}

	d := &multiscale.Domain{
		Assembler: a,
		U:         make([]float64, dm.NEq()),
		Cfg:       solver.DefaultConfig(),
		InterfaceSides: []multiscale.InterfacePoint{
			{Cell: c, SideIdx: 0, Gid: dm.MustEq(interfaceNode, "u")},
		},
	}
	return d, dm, c
}

func TestDomainTraceAndBindLambda(tst *testing.T) {
	d, _, c := buildHalfBar(tst, 0, 0, 1, 0, 0, 1, 1)
	d.U[1] = 4.2
	trace := d.Trace()
	if len(trace) != 1 || trace[0] != 4.2 {
		tst.Fatalf("Trace() = %v, want [4.2]", trace)
	}

	d.BindLambda([]float64{7})
	if got := c.Sides[0].Lambda(); got != 7 {
		tst.Fatalf("bound Lambda() = %v, want 7", got)
	}
}

func TestCouplingConvergesToContinuousRamp(tst *testing.T) {
	// macro on [0,1]: node 0 (x=0) Dirichlet=0, node 1 (x=1) interface
	macro, macroDM, _ := buildHalfBar(tst, 0, 0, 1, 0, 0, 1, 1)
	// subgrid on [1,2]: node 0 (x=1) interface, node 1 (x=2) Dirichlet=2
	sub, subDM, _ := buildHalfBar(tst, 1, 1, 2, 1, 2, 0, -1)

	maxIt, tol, cfg := multiscale.DefaultConfig()
	macro.Cfg = cfg
	sub.Cfg = cfg

	coupling := &multiscale.Coupling{Macro: macro, Subgrid: sub, MaxOuterIt: maxIt, Tol: tol}
	result, err := coupling.Solve(0)
	if err != nil {
		tst.Fatalf("Coupling.Solve: %v", err)
	}
	if !result.Converged {
		tst.Fatalf("outer coupling did not converge: %+v", result)
	}

	// with matching conductivities on both sides and no source, the
	// exact continuous solution over [0,2] is the linear ramp u(x) = x,
	// so both domains' interface dofs should land near 1.
	const looseTol = 1e-2
	if math.Abs(macro.U[macroDM.MustEq(1, "u")]-1) > looseTol {
		tst.Fatalf("macro interface u = %v, want near 1", macro.U[macroDM.MustEq(1, "u")])
	}
	if math.Abs(sub.U[subDM.MustEq(0, "u")]-1) > looseTol {
		tst.Fatalf("subgrid interface u = %v, want near 1", sub.U[subDM.MustEq(0, "u")])
	}
}

// TestDomainTraceSensitivityMatchesDirectPerturbation checks
// TraceSensitivity's finite-difference tangent against a direct
// one-sided resolve: for this single-cell steady bar, u at the free
// node is an exactly linear function of the bound interface trace, so
// the central-difference tangent should match a direct perturbation to
// near machine precision regardless of step size.
func TestDomainTraceSensitivityMatchesDirectPerturbation(tst *testing.T) {
	d, dm, _ := buildHalfBar(tst, 0, 0, 1, 0, 0, 1, 1)
	trace := []float64{1}
	if _, err := solver.Newton(d.Assembler, d.U, 0, 0, nil, d.Cfg); err != nil {
		tst.Fatalf("Newton: %v", err)
	}

	const h = 1e-3
	duDLambda, err := d.TraceSensitivity(0, trace, 0, h)
	if err != nil {
		tst.Fatalf("TraceSensitivity: %v", err)
	}

	d.BindLambda([]float64{trace[0] + h})
	uPlus := make([]float64, dm.NEq())
	if _, err := solver.Newton(d.Assembler, uPlus, 0, 0, nil, d.Cfg); err != nil {
		tst.Fatalf("Newton (direct perturbation): %v", err)
	}
	d.BindLambda(trace)
	uBase := make([]float64, dm.NEq())
	if _, err := solver.Newton(d.Assembler, uBase, 0, 0, nil, d.Cfg); err != nil {
		tst.Fatalf("Newton (base): %v", err)
	}

	direct := (uPlus[1] - uBase[1]) / h
	if math.Abs(duDLambda[1]-direct) > 1e-6 {
		tst.Fatalf("TraceSensitivity[1] = %v, direct perturbation = %v", duDLambda[1], direct)
	}
}

// TestCouplingSolveNewtonConvergesToContinuousRamp checks the
// sensitivity-driven outer iteration reaches the same continuous ramp
// solution as the fixed-point TestCouplingConvergesToContinuousRamp,
// in no more outer iterations than the fixed point needs.
func TestCouplingSolveNewtonConvergesToContinuousRamp(tst *testing.T) {
	macro, macroDM, _ := buildHalfBar(tst, 0, 0, 1, 0, 0, 1, 1)
	sub, subDM, _ := buildHalfBar(tst, 1, 1, 2, 1, 2, 0, -1)

	maxIt, tol, cfg := multiscale.DefaultConfig()
	macro.Cfg = cfg
	sub.Cfg = cfg

	coupling := &multiscale.Coupling{Macro: macro, Subgrid: sub, MaxOuterIt: maxIt, Tol: tol}
	result, err := coupling.SolveNewton(0, 1e-3)
	if err != nil {
		tst.Fatalf("Coupling.SolveNewton: %v", err)
	}
	if !result.Converged {
		tst.Fatalf("outer coupling did not converge: %+v", result)
	}

	const looseTol = 1e-2
	if math.Abs(macro.U[macroDM.MustEq(1, "u")]-1) > looseTol {
		tst.Fatalf("macro interface u = %v, want near 1", macro.U[macroDM.MustEq(1, "u")])
	}
	if math.Abs(sub.U[subDM.MustEq(0, "u")]-1) > looseTol {
		tst.Fatalf("subgrid interface u = %v, want near 1", sub.U[subDM.MustEq(0, "u")])
	}
}
