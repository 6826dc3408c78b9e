// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package multiscale is the multiscale coupling manager: it couples an
// independently-discretized macro domain to one or more subgrid domains
// across SideMultiscale interfaces by alternating Newton solves and
// exchanging trace values through cell.Side.Lambda, a Robin-Robin
// (Dirichlet-Neumann-style) domain-decomposition scheme rather than a
// monolithic mortar saddle-point system. Grounded on the teacher's
// rjoint material's connection of an independent 1D inclusion mesh to
// the surrounding continuum (mdl/solid/rjointm1.go, fem/t_rjoint_test.go),
// generalized from a single embedded-line coupling to an arbitrary
// interface between two full FE domains.
package multiscale

import (
	"github.com/cpmech/gofea/asm"
	"github.com/cpmech/gofea/cell"
	"github.com/cpmech/gofea/solver"
)

// Domain bundles everything one side of a multiscale interface needs to
// advance its own nonlinear (and, for transient runs, time-stepping)
// solve independently of its partner.
type Domain struct {
	Name      string
	Assembler *asm.Assembler
	U         []float64
	Stepper   *solver.Stepper // nil for a steady subgrid/macro solve
	Cfg       solver.Config

	// InterfaceSides lists, per logical interface point, the (cell,
	// side-index) owning the SideMultiscale boundary condition whose
	// trace this domain exposes to its partner.
	InterfaceSides []InterfacePoint
}

// InterfacePoint names one boundary location contributing to an
// interface's traded trace value.
type InterfacePoint struct {
	Cell    *cell.Cell
	SideIdx int
	Gid     int // this domain's own dof id at the matching interface location
}

// Trace returns the current nodal solution value at every interface
// point, the quantity handed to the partner domain as its next Lambda.
func (o *Domain) Trace() []float64 {
	out := make([]float64, len(o.InterfaceSides))
	for i, p := range o.InterfaceSides {
		out[i] = o.U[p.Gid]
	}
	return out
}

// BindLambda installs trace as the mortar value every InterfaceSides
// entry's cell.Side.Lambda closure returns, overwriting whatever the
// previous outer iteration set.
func (o *Domain) BindLambda(trace []float64) {
	for i, p := range o.InterfaceSides {
		v := trace[i]
		p.Cell.Sides[p.SideIdx].Lambda = func() float64 { return v }
	}
}

// Advance runs one Newton solve (or one time step, if o.Stepper is set)
// to convergence at the current lambda binding.
func (o *Domain) Advance(t float64) (solver.Result, error) {
	alpha, hist := o.currentAlphaHist()
	res, err := solver.Newton(o.Assembler, o.U, t, alpha, hist, o.Cfg)
	if err == nil && res.Converged && o.Stepper != nil {
		o.Stepper.Advance(o.U)
	}
	return res, err
}

// currentAlphaHist returns the (alpha, history) pair Advance and
// TraceSensitivity both solve with: the live Stepper's for a transient
// domain, or the steady (0, nil) pair otherwise.
func (o *Domain) currentAlphaHist() (float64, asm.HistoryFunc) {
	if o.Stepper != nil {
		return o.Stepper.Alpha(), o.Stepper.History
	}
	return 0, nil
}

// TraceSensitivity returns d(u)/dLambda_idx: the rate this domain's
// converged solution changes per unit change in interface point idx's
// bound trace value, by a central finite difference of two full
// re-solves at perturbed trace bindings. The cheap many-parameters
// sensitivity path (solver.Sensitivity) needs an extra AD derivative
// column seeded through the mortar trace, which this engine does not
// thread through cell.Side.Lambda, so this reuses the num.DerivCentral
// cross-check idiom (wired into solver's own tests) at vector scale
// instead of widening the AD workset further. trace is the domain's
// current interface binding (as returned by Trace); h is the
// perturbation step size. The domain's own U/Stepper state is left
// unperturbed — it re-solves from copies and restores the original
// lambda binding before returning.
func (o *Domain) TraceSensitivity(t float64, trace []float64, idx int, h float64) ([]float64, error) {
	alpha, hist := o.currentAlphaHist()

	plus := append([]float64(nil), trace...)
	plus[idx] += h
	o.BindLambda(plus)
	uPlus := append([]float64(nil), o.U...)
	if _, err := solver.Newton(o.Assembler, uPlus, t, alpha, hist, o.Cfg); err != nil {
		o.BindLambda(trace)
		return nil, err
	}

	minus := append([]float64(nil), trace...)
	minus[idx] -= h
	o.BindLambda(minus)
	uMinus := append([]float64(nil), o.U...)
	if _, err := solver.Newton(o.Assembler, uMinus, t, alpha, hist, o.Cfg); err != nil {
		o.BindLambda(trace)
		return nil, err
	}

	o.BindLambda(trace)
	d := make([]float64, len(uPlus))
	for i := range d {
		d[i] = (uPlus[i] - uMinus[i]) / (2 * h)
	}
	return d, nil
}
