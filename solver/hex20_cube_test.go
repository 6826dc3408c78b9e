// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solver_test

import (
	"math"
	"testing"

	"github.com/cpmech/gofea/ad"
	"github.com/cpmech/gofea/asm"
	"github.com/cpmech/gofea/cell"
	"github.com/cpmech/gofea/coef"
	"github.com/cpmech/gofea/dof"
	"github.com/cpmech/gofea/ele"
	"github.com/cpmech/gofea/ele/diffusion"
	"github.com/cpmech/gofea/solver"
)

// hex20CubeNodeCoords lays out a single quadratic hexahedron over the
// unit cube [0,1]^3, corners first then the 12 mid-edge nodes, matching
// discretization's hex20 vertex-at-natural-{-1,0,1} convention.
func hex20CubeNodeCoords() [][]float64 {
	return [][]float64{
		{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
		{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
		{0.5, 0, 0}, {1, 0.5, 0}, {0.5, 1, 0}, {0, 0.5, 0},
		{0.5, 0, 1}, {1, 0.5, 1}, {0.5, 1, 1}, {0, 0.5, 1},
		{0, 0, 0.5}, {1, 0, 0.5}, {1, 1, 0.5}, {0, 1, 0.5},
	}
}

// TestWeakDirichletCubeHex20ReproducesExactQuadratic is the HGRAD-2
// weak-Dirichlet cube scenario: kappa=1, a constant volume source
// matching -div(grad u) for u=x^2+y^2+z^2 (Laplacian 6, so source -6
// under this module's rho*cp*dudt - f - div(kappa gradU) = 0 strong
// form, verified directly against diffusion.VolumeResidual's sign), and
// every one of the six faces carrying a Nitsche weak-Dirichlet condition
// targeting the exact trace. u=x^2+y^2+z^2 is a sum of single-axis
// quadratics, which TestCalcAtIpHex20ReproducesQuadraticField already
// shows hex20's serendipity basis represents exactly, so a single
// element should recover it to solver tolerance with no discretization
// error left to shrink under refinement — the scenario's zero-error
// limit, one step short of the spec's uniform-refinement H1-order-2
// convergence study (left as an Open Question in DESIGN.md: the latter
// needs a multi-element hex20 mesh generator this engine does not have).
func TestWeakDirichletCubeHex20ReproducesExactQuadratic(tst *testing.T) {
	cf := coef.NewManager()
	must := func(err error) {
		if err != nil {
			tst.Fatalf("registering coefficient failed: %v", err)
		}
	}
	must(cf.RegisterConstant(0, coef.AtVolumeIp, "density", 1))
	must(cf.RegisterConstant(0, coef.AtVolumeIp, "specific heat", 1))
	must(cf.RegisterConstant(0, coef.AtVolumeIp, "thermal diffusion", 1))
	must(cf.RegisterConstant(0, coef.AtVolumeIp, "thermal source", -6))
	must(cf.RegisterConstant(0, coef.AtSideIp, "thermal diffusion", 1))
	must(cf.Register(0, coef.AtSideIp, &coef.Node{
		Name: "weak dirichlet value",
		Eval: func(ctx coef.Context, deps map[string]ad.Number) (ad.Number, error) {
			x, y, z := ctx.X[0], ctx.X[1], ctx.X[2]
			return ad.New(ctx.U.Width, x*x+y*y+z*z), nil
		},
	}))

	x := hex20CubeNodeCoords()
	nodeIDs := make([]int, len(x))
	dm := dof.NewManager()
	for i := range x {
		nodeIDs[i] = i
		dm.Number(i, []string{"u"}, 0)
	}

	c := cell.NewCell(0, 0, nodeIDs, x, "hex20")
	c.Sides = []cell.Side{
		{LocalVerts: []int{0, 4, 7, 3}, FixedAxis: 0, FixedValue: -1, Info: ele.SideInfo{Kind: ele.SideWeakDirichlet}},
		{LocalVerts: []int{1, 2, 6, 5}, FixedAxis: 0, FixedValue: 1, Info: ele.SideInfo{Kind: ele.SideWeakDirichlet}},
		{LocalVerts: []int{0, 1, 5, 4}, FixedAxis: 1, FixedValue: -1, Info: ele.SideInfo{Kind: ele.SideWeakDirichlet}},
		{LocalVerts: []int{2, 3, 7, 6}, FixedAxis: 1, FixedValue: 1, Info: ele.SideInfo{Kind: ele.SideWeakDirichlet}},
		{LocalVerts: []int{0, 3, 2, 1}, FixedAxis: 2, FixedValue: -1, Info: ele.SideInfo{Kind: ele.SideWeakDirichlet}},
		{LocalVerts: []int{4, 5, 6, 7}, FixedAxis: 2, FixedValue: 1, Info: ele.SideInfo{Kind: ele.SideWeakDirichlet}},
	}

	mod, err := diffusion.New(3)(0)
	if err != nil {
		tst.Fatalf("diffusion.New: %v", err)
	}
	a := asm.NewAssembler(dm, cf)
	a.Blocks = []asm.Block{{ID: 0, Module: mod, VarNames: []string{"u"}, Cells: []*cell.Cell{c}, NGauss: 3}}

	u := make([]float64, dm.NEq())
	cfg := solver.DefaultConfig()
	result, err := solver.Newton(a, u, 0, 0, nil, cfg)
	if err != nil {
		tst.Fatalf("Newton: %v", err)
	}
	if !result.Converged {
		tst.Fatalf("Newton did not converge: %+v", result)
	}

	for i, p := range x {
		want := p[0]*p[0] + p[1]*p[1] + p[2]*p[2]
		got := u[dm.MustEq(i, "u")]
		if math.Abs(got-want) > 1e-4 {
			tst.Fatalf("u[node %d] = %v, want %v (exact quadratic)", i, got, want)
		}
	}
}
