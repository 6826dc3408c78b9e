// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package ele defines the physics-module contract: the uniform
// residual/flux interface every physics variant (thermal diffusion,
// Navier-Stokes, linear elasticity, Helmholtz, ...) must implement, and a
// string-keyed registry of allocators, mirroring the teacher's
// {Info,Element,factory} triad but re-targeted at the spec's
// {setVars, volumeResidual, boundaryResidual, computeFlux} capability set.
package ele

import (
	"github.com/cpmech/gofea/ad"
	"github.com/cpmech/gofea/coef"
)

// SideKind is the four-integer side tag's first component.
type SideKind int

const (
	SideNone          SideKind = 0
	SideWeakDirichlet SideKind = 1
	SideNeumann       SideKind = 2
	SideRobin         SideKind = 3
	SideMultiscale    SideKind = 4 // neighbor marker is -1 for an exterior-facing subgrid interface
	SideStrongDirichlet SideKind = 5
)

// SideInfo is the four-integer tag on each (element, variable, side):
// {kind, boundary-set-id, x, y}.
type SideInfo struct {
	Kind  SideKind
	BsetID int
	X, Y  int
}

// Workset is the per-block scratch shared by all cells of a block for one
// assembly pass. One Workset instance is reused across all
// elements of a batch; it is reset at the start of each cell's
// contribution and is logically owned by the assembler, which processes
// a block's cells one after another on a single Workset (no goroutines)
// — the struct therefore never needs a literal
// batch-shaped multi-dimensional array; that shape would only pay for
// itself on a real device execution space, which this engine does not target.
type Workset struct {

	// identity
	Block int // element block this workset belongs to
	Coef  *coef.Manager // function manager used by physics modules to pull named coefficients

	// pass configuration
	T         float64 // current time
	Alpha     float64 // 1/Δt-like dynamic coefficient
	IsAdjoint bool    // true during an adjoint linear solve
	FormParam float64 // Nitsche penalty symmetry parameter (s); 1 in adjoint mode

	// AD width bookkeeping
	NDof         int // dofsPerElem for the current cell
	NActiveParam int // number of active scalar parameters seeded this pass
	NParamDof    int // number of discretized-parameter local dofs seeded this pass
	Width        int // NDof + NActiveParam + NParamDof, checked against ad.MaxWidth

	// current local state, seeded as AD by the cell before calling physics
	U      []ad.Number // nodal values of the primary solution
	Udot   []ad.Number // nodal values of du/dt
	Param      []ad.Number // active/discretized parameter values visible to this cell, in ParamNames order
	ParamNames []string    // names matching Param, set once by the assembler per pass
	Aux        []ad.Number // λ: mortar Lagrange-multiplier trace on multiscale interfaces

	// AdjPrev carries the adjoint term of the previous backward step
	// (later in forward time) into the current backward step, gathered by
	// global id the same way U is, unseeded (plain floats, not AD). Zeroed
	// by the assembler's caller at the final time step of a reverse sweep;
	// solver.AdjointTrajectory passes its cross-step term (jac - jac0)^T phi
	// here. No physics module currently reads it directly — the transient
	// adjoint folds that term into the next right-hand side itself — but
	// it is gathered for real every
	// adjoint pass so a module wanting direct access to it (e.g. a
	// time-coupled Nitsche term) has it available without widening Param.
	AdjPrev []float64

	// per-side state for the side currently being processed by
	// boundaryResidual/computeFlux
	Side SideInfo
	H    float64 // characteristic element size, for the Nitsche penalty

	// quadrature tables, filled by the cell/boundary-cell before invoking
	// the physics module: values and gradients are already evaluated at
	// each integration point and pre-multiplied by the integration
	// weight; physics modules never touch raw basis
	// evaluators directly, matching the discretization component being
	// an opaque evaluator.
	VolPoints  []VolPoint
	SidePoints []SidePoint

	// output: AD residual accumulator, one entry per local dof
	Res []ad.Number

	// variable bookkeeping, filled by cell.Gather. Every scalar variable in a
	// block shares the same per-element vertex count, so a variable's local dof range is
	// simply [slot*NVertsPerVar, (slot+1)*NVertsPerVar).
	NVertsPerVar int
}

// Offset returns the starting index, within U/Udot, of the
// variable occupying slot.
func (o *Workset) Offset(slot int) int { return slot * o.NVertsPerVar }

// ParamMap builds the name-keyed view of Param that coefficient nodes
// read through Context.Params.
func (o *Workset) ParamMap() map[string]ad.Number {
	m := make(map[string]ad.Number, len(o.ParamNames))
	for i, n := range o.ParamNames {
		if i < len(o.Param) {
			m[n] = o.Param[i]
		}
	}
	return m
}

// VolPoint is one volume integration point's precomputed basis table:
// shape values S and real-coordinate gradients G, with the integration
// weight (w·|J|) already folded into both.
type VolPoint struct {
	S []float64   // [nverts] weighted shape values
	G [][]float64 // [nverts][ndim] weighted shape gradients
	X []float64   // real coordinates
}

// SidePoint is one boundary/side integration point's precomputed table,
// additionally carrying the outward unit normal and the trace of the
// volume shape functions restricted to the side.
type SidePoint struct {
	S      []float64   // [nverts] weighted trace shape values
	G      [][]float64 // [nverts][ndim] weighted trace shape gradients
	Normal []float64   // [ndim] outward unit normal
	X      []float64   // real coordinates
}

// NewWorkset allocates a Workset bound to a block and function manager.
func NewWorkset(block int, cf *coef.Manager) *Workset {
	return &Workset{Block: block, Coef: cf}
}

// Reset clears the residual accumulator and per-pass scalars at the start
// of a cell's contribution. Solution arrays are overwritten wholesale by
// the gather step, not zeroed here. Returns an AssemblyError of kind
// ErrDerivativeCountExceeded if the requested width would overflow a
// Number's fixed derivative storage.
func (o *Workset) Reset(ndof, nActiveParam, nParamDof int) error {
	width := ndof + nActiveParam + nParamDof
	if width > ad.MaxWidth {
		return newAssemblyError(ErrDerivativeCountExceeded,
			"workset width %d (ndof=%d + nActiveParam=%d + nParamDof=%d) exceeds ad.MaxWidth=%d",
			width, ndof, nActiveParam, nParamDof, ad.MaxWidth)
	}
	o.NDof = ndof
	o.NActiveParam = nActiveParam
	o.NParamDof = nParamDof
	o.Width = width
	if o.Res == nil || cap(o.Res) < ndof {
		o.Res = make([]ad.Number, ndof)
	}
	o.Res = o.Res[:ndof]
	for i := range o.Res {
		o.Res[i].Zero(o.Width)
	}
	return nil
}
