// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package discretization

import (
	"math"
	"testing"
)

func TestNewShapeLin2(tst *testing.T) {
	o := NewShape("lin2")
	if o.Ndim != 1 || o.Nverts != 2 {
		tst.Fatalf("lin2: Ndim=%d Nverts=%d, want 1 2", o.Ndim, o.Nverts)
	}
	if len(o.IpsVol) != 2 {
		tst.Fatalf("lin2: len(IpsVol) = %d, want 2 (2-point line rule)", len(o.IpsVol))
	}
}

func TestNewShapeUnknownPanics(tst *testing.T) {
	defer func() {
		if recover() == nil {
			tst.Fatalf("expected a panic for an unknown shape name")
		}
	}()
	NewShape("tri3")
}

func TestCalcAtIpLin2HalfLengthJacobian(tst *testing.T) {
	o := NewShape("lin2")
	x := [][]float64{{0}, {1}}
	if err := o.CalcAtIp(x, Ipoint{0, 0, 0, 2}, true); err != nil {
		tst.Fatalf("CalcAtIp: %v", err)
	}
	if math.Abs(o.J-0.5) > 1e-12 {
		tst.Fatalf("J = %v, want 0.5 (the half-length Jacobian for a unit segment)", o.J)
	}
	// dN0/dx = -0.5/J = -1, dN1/dx = 0.5/J = 1
	if math.Abs(o.G[0][0]+1) > 1e-12 || math.Abs(o.G[1][0]-1) > 1e-12 {
		tst.Fatalf("G = %v, want [[-1] [1]]", o.G)
	}
}

func TestCalcAtIpQua4UnitSquareJacobian(tst *testing.T) {
	o := NewShape("qua4")
	x := [][]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	if err := o.CalcAtIp(x, Ipoint{0, 0, 0, 1}, true); err != nil {
		tst.Fatalf("CalcAtIp: %v", err)
	}
	if math.Abs(o.J-0.25) > 1e-12 {
		tst.Fatalf("J = %v, want 0.25 (area element of a unit square mapped from [-1,1]^2)", o.J)
	}
}

func TestCalcAtIpShapeValuesSumToOne(tst *testing.T) {
	o := NewShape("hex8")
	x := [][]float64{
		{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
		{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
	}
	if err := o.CalcAtIp(x, Ipoint{0.3, -0.2, 0.1, 1}, false); err != nil {
		tst.Fatalf("CalcAtIp: %v", err)
	}
	var sum float64
	for _, v := range o.S {
		sum += v
	}
	if math.Abs(sum-1) > 1e-12 {
		tst.Fatalf("sum(S) = %v, want 1 (partition of unity)", sum)
	}
}

// hex20NodeCoords returns the real coordinates of the 20-node quadratic
// hexahedron mapped onto the unit cube, following the same
// vertex-at-natural-{-1,0,1} convention as TestCalcAtIpShapeValuesSumToOne's
// hex8 coordinates, with the 12 mid-edge nodes appended.
func hex20NodeCoords() [][]float64 {
	return [][]float64{
		{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
		{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
		{0.5, 0, 0}, {1, 0.5, 0}, {0.5, 1, 0}, {0, 0.5, 0},
		{0.5, 0, 1}, {1, 0.5, 1}, {0.5, 1, 1}, {0, 0.5, 1},
		{0, 0, 0.5}, {1, 0, 0.5}, {1, 1, 0.5}, {0, 1, 0.5},
	}
}

func TestCalcAtIpHex20ShapeValuesSumToOne(tst *testing.T) {
	o := NewShape("hex20")
	x := hex20NodeCoords()
	if err := o.CalcAtIp(x, Ipoint{0.3, -0.2, 0.1, 1}, false); err != nil {
		tst.Fatalf("CalcAtIp: %v", err)
	}
	var sum float64
	for _, v := range o.S {
		sum += v
	}
	if math.Abs(sum-1) > 1e-12 {
		tst.Fatalf("sum(S) = %v, want 1 (partition of unity)", sum)
	}
}

// TestCalcAtIpHex20ReproducesQuadraticField checks that hex20's basis,
// a serendipity quadratic complete through every pure-axis second-order
// term, exactly interpolates f(x,y,z)=x^2+y^2+z^2 at an interior point
// from its 20 nodal values — the completeness property the HGRAD-2
// weak-Dirichlet cube scenario relies on for its expected second-order
// H1 convergence.
func TestCalcAtIpHex20ReproducesQuadraticField(tst *testing.T) {
	o := NewShape("hex20")
	x := hex20NodeCoords()
	f := func(p []float64) float64 { return p[0]*p[0] + p[1]*p[1] + p[2]*p[2] }

	nodalF := make([]float64, len(x))
	for i, p := range x {
		nodalF[i] = f(p)
	}

	ip := Ipoint{0.3, -0.2, 0.1, 1}
	if err := o.CalcAtIp(x, ip, false); err != nil {
		tst.Fatalf("CalcAtIp: %v", err)
	}
	var interp float64
	for m, v := range o.S {
		interp += v * nodalF[m]
	}

	px := 0.5 * (1 + ip[0])
	py := 0.5 * (1 + ip[1])
	pz := 0.5 * (1 + ip[2])
	want := f([]float64{px, py, pz})
	if math.Abs(interp-want) > 1e-9 {
		tst.Fatalf("interpolated f = %v, want %v (exact)", interp, want)
	}
}

func TestInvertSingularPanics(tst *testing.T) {
	defer func() {
		if recover() == nil {
			tst.Fatalf("expected a panic for a singular Jacobian")
		}
	}()
	invert([][]float64{{0, 0}, {0, 0}})
}
