// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package cell builds the per-element workset-filling step: node
// coordinates and global ids, shape/quadrature evaluation at volume and
// side integration points, AD seeding of the gathered solution, and the
// local-to-global id list the assembler scatters with. Adapted from the
// teacher's fem/domain.go (cell-to-node bookkeeping) and
// fem/essenbcs.go (boundary-side iteration).
package cell

import (
	"math"

	"github.com/cpmech/gofea/ad"
	"github.com/cpmech/gofea/discretization"
	"github.com/cpmech/gofea/dof"
	"github.com/cpmech/gofea/ele"
)

// Cell is one volume element: its connectivity, geometry and reference
// shape.
type Cell struct {
	ID      int
	Block   int
	NodeIDs []int
	Coords  [][]float64 // [nverts][ndim]
	Shape   *discretization.Shape
	Sides   []Side // boundary/interface sides touching this cell, if any
}

// Side describes one face of a Cell that carries a boundary or
// multiscale condition: a subset of the cell's local vertex indices, the
// reference axis held fixed to trace out that face, and the uniform side
// tag. FixedAxis/FixedValue let SidePoints embed a reduced-dimension
// quadrature rule into the parent cell's own parametric space, so the
// trace shape values it returns are already sized over every cell vertex
// (matching ele.Workset's per-variable dof range), not just the side's.
type Side struct {
	LocalVerts []int // indices into Cell.NodeIDs/Coords, in winding order
	FixedAxis  int
	FixedValue float64
	Info       ele.SideInfo

	// Lambda supplies the mortar trace value for a SideMultiscale side,
	// one scalar replicated across every side integration point; a
	// multiscale coupling manager rebinds this closure every outer
	// iteration to the partner subdomain's current trace.
	Lambda func() float64
}

// NewCell allocates a cell with a reference shape resolved by name.
func NewCell(id, block int, nodeIDs []int, coords [][]float64, shapeName string) *Cell {
	return &Cell{ID: id, Block: block, NodeIDs: nodeIDs, Coords: coords, Shape: discretization.NewShape(shapeName)}
}

// Gids returns, for each declared variable in order, the global equation
// number of every local vertex — flattened in the
// [var0 vert0..vertN][var1 vert0..vertN] order matching
// ele.Workset.Offset.
func (c *Cell) Gids(dm *dof.Manager, varNames []string) []int {
	gids := make([]int, 0, len(varNames)*len(c.NodeIDs))
	for _, v := range varNames {
		for _, nid := range c.NodeIDs {
			gids = append(gids, dm.MustEq(nid, v))
		}
	}
	return gids
}

// History supplies, for one BDF step, the per-dof constant term of the
// time-derivative approximation: dudt_k ≈ Alpha*u_k - Hist[k]. Built by
// the solver from the stored solution history (BDF-1: Hist=Alpha*uOld;
// BDF-2: a two-level combination), so cell/gather stays agnostic of the
// time-stepping order in use.
type History struct {
	Alpha float64
	Hist  []float64 // length = total local dofs, one entry per gid slot
}

// Gather seeds w.U/w.Udot as AD numbers (one independent derivative
// direction per local dof) from the global solution vector u, and
// returns the local-to-global index list used both for that seeding and
// for the later scatter. Every variable shares the cell's vertex count
// (one basis family per block), which Gather stores in w.NVertsPerVar.
// adjPrev, when non-nil, is gathered
// by global id into w.AdjPrev the same way u is gathered into w.U; pass
// nil outside a reverse-time adjoint pass. Fails with an AssemblyError if
// the requested width overflows the AD engine's fixed derivative storage.
func (c *Cell) Gather(w *ele.Workset, dm *dof.Manager, varNames []string, u []float64, hist *History, adjPrev []float64, nActiveParam, nParamDof int) ([]int, error) {
	gids := c.Gids(dm, varNames)
	ndof := len(gids)
	if err := w.Reset(ndof, nActiveParam, nParamDof); err != nil {
		return nil, err
	}
	w.NVertsPerVar = len(c.NodeIDs)
	if cap(w.U) < ndof {
		w.U = make([]ad.Number, ndof)
		w.Udot = make([]ad.Number, ndof)
	}
	w.U = w.U[:ndof]
	w.Udot = w.Udot[:ndof]
	if cap(w.AdjPrev) < ndof {
		w.AdjPrev = make([]float64, ndof)
	}
	w.AdjPrev = w.AdjPrev[:ndof]
	for k, gid := range gids {
		w.U[k] = ad.Seed(w.Width, k, u[gid])
		if hist != nil {
			w.Udot[k] = ad.Plus(ad.Scale(hist.Alpha, w.U[k]), -hist.Hist[k])
		} else {
			w.Udot[k] = ad.New(w.Width, 0)
		}
		if adjPrev != nil && gid < len(adjPrev) {
			w.AdjPrev[k] = adjPrev[gid]
		} else {
			w.AdjPrev[k] = 0
		}
	}
	return gids, nil
}

// VolPoints evaluates the cell's volume integration points into the
// Workset-ready table, pre-multiplying shape values/gradients by the
// integration weight and |J|.
func (c *Cell) VolPoints(nGauss int) []ele.VolPoint {
	ips := gaussPoints(c.Shape.Ndim, nGauss)
	pts := make([]ele.VolPoint, 0, len(ips))
	for _, ip := range ips {
		if err := c.Shape.CalcAtIp(c.Coords, ip, true); err != nil {
			continue
		}
		w := ip[3] * c.Shape.J
		s := make([]float64, c.Shape.Nverts)
		g := make([][]float64, c.Shape.Nverts)
		x := make([]float64, c.Shape.Ndim)
		for m := 0; m < c.Shape.Nverts; m++ {
			s[m] = w * c.Shape.S[m]
			g[m] = make([]float64, c.Shape.Ndim)
			for d := 0; d < c.Shape.Ndim; d++ {
				g[m][d] = w * c.Shape.G[m][d]
				x[d] += c.Shape.S[m] * c.Coords[m][d]
			}
		}
		pts = append(pts, ele.VolPoint{S: s, G: g, X: x})
	}
	return pts
}

// gaussPoints dispatches to the 1D/2D/3D tensor-product quadrature by
// the cell's topological dimension.
func gaussPoints(ndim, n int) []discretization.Ipoint {
	switch ndim {
	case 1:
		return discretization.LineIps(n)
	case 2:
		return discretization.QuadIps(n)
	default:
		return discretization.HexIps(n)
	}
}

// SidePoints evaluates s's integration points: the parent shape is
// traced at a fixed parametric coordinate so its nodal values/gradients
// come back sized over the whole cell, while the outward normal and
// surface Jacobian are computed from the side's own straight-edge
// (2D) or flat-face (3D, corner-based) geometry. h is the characteristic
// length fed to the Nitsche penalty.
func (c *Cell) SidePoints(s Side, nGauss int) (pts []ele.SidePoint, h float64) {
	ndim := c.Shape.Ndim
	reduced := ndim - 1

	sideCoords := make([][]float64, len(s.LocalVerts))
	for i, lv := range s.LocalVerts {
		sideCoords[i] = c.Coords[lv]
	}

	var normal []float64
	var jac float64
	switch reduced {
	case 1:
		normal, jac = edgeNormal(sideCoords)
	case 2:
		normal, jac = faceNormal(sideCoords)
	default:
		normal, jac = []float64{math.Copysign(1, s.FixedValue)}, 1
	}
	h = 2 * jac

	var reducedIps []discretization.Ipoint
	switch reduced {
	case 1:
		reducedIps = discretization.LineIps(nGauss)
	case 2:
		reducedIps = discretization.QuadIps(nGauss)
	default:
		reducedIps = []discretization.Ipoint{{0, 0, 0, 1}}
	}

	for _, rip := range reducedIps {
		full := discretization.Ipoint{0, 0, 0, rip[3] * jac}
		ai := 0
		for d := 0; d < ndim; d++ {
			if d == s.FixedAxis {
				full[d] = s.FixedValue
			} else {
				full[d] = rip[ai]
				ai++
			}
		}
		if err := c.Shape.CalcAtIp(c.Coords, full, true); err != nil {
			continue
		}
		ns := make([]float64, c.Shape.Nverts)
		ng := make([][]float64, c.Shape.Nverts)
		x := make([]float64, ndim)
		for m := 0; m < c.Shape.Nverts; m++ {
			ns[m] = full[3] * c.Shape.S[m]
			ng[m] = make([]float64, ndim)
			for d := 0; d < ndim; d++ {
				ng[m][d] = full[3] * c.Shape.G[m][d]
				x[d] += c.Shape.S[m] * c.Coords[m][d]
			}
		}
		pts = append(pts, ele.SidePoint{S: ns, G: ng, Normal: normal, X: x})
	}
	return pts, h
}

// edgeNormal returns the outward unit normal and half-length (the 1D
// surface Jacobian) of a straight two-node edge. Winding convention:
// LocalVerts given counter-clockwise around the cell, so rotating the
// tangent by -90 degrees points outward.
func edgeNormal(sideCoords [][]float64) ([]float64, float64) {
	dx := sideCoords[1][0] - sideCoords[0][0]
	dy := sideCoords[1][1] - sideCoords[0][1]
	length := math.Hypot(dx, dy)
	if length == 0 {
		return []float64{1, 0}, 0
	}
	return []float64{dy / length, -dx / length}, length / 2
}

// faceNormal returns the outward unit normal and quarter-area (the
// surface Jacobian for a single full-range quadrature point) of a flat
// four-node quadrilateral face, from its corner coordinates.
func faceNormal(sideCoords [][]float64) ([]float64, float64) {
	e1 := subVec(sideCoords[1], sideCoords[0])
	e2 := subVec(sideCoords[3], sideCoords[0])
	n := crossVec(e1, e2)
	norm := math.Sqrt(n[0]*n[0] + n[1]*n[1] + n[2]*n[2])
	if norm == 0 {
		return []float64{0, 0, 1}, 0
	}
	for i := range n {
		n[i] /= norm
	}
	return n, norm / 4
}

func subVec(a, b []float64) []float64 {
	return []float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func crossVec(a, b []float64) []float64 {
	return []float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}
