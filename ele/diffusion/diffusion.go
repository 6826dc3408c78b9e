// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package diffusion implements the canonical scalar thermal diffusion
// physics module:
//
//	ρ cp du/dt + div w = f      with      w = -κ ∇u (+ v u convective term)
package diffusion

import (
	"github.com/cpmech/gofea/ad"
	"github.com/cpmech/gofea/coef"
	"github.com/cpmech/gofea/ele"
)

// Diffusion is the thermal diffusion physics module. One instance is
// bound to a block for the whole simulation; every call it receives
// passes its own Workset explicitly, so it retains no Workset itself.
type Diffusion struct {
	Block int

	// variable slots within the block's local dof list, set by SetVars
	iu          int  // slot of "u"
	iux, iuy, iuz int // slots of optional convective velocity components
	coupled     bool // true if a velocity field was detected
	Ndim        int
}

// New returns an allocator closure for registration under name
// "diffusion".
func New(ndim int) ele.Allocator {
	return func(block int) (ele.Module, error) {
		return &Diffusion{Block: block, Ndim: ndim}, nil
	}
}

func init() {
	// The dimension is resolved at registration time by the caller
	// (solver/physics setup), so no default allocator is installed here;
	// a caller installs one with `ele.RegisterAllocator("diffusion", diffusion.New(ndim))`
	// or, as the solver tests do, calls diffusion.New(ndim) directly.
}

// SetVars implements ele.Module: it resolves variable slots from the
// names slice directly, since slot assignment is purely a function of
// variable-name order within a block and never changes across passes.
func (o *Diffusion) SetVars(names []string) error {
	idx, ok := indexOf(names, "u")
	if !ok {
		return ele.ErrInconsistentVars("diffusion: block %d declares no %q variable", o.Block, "u")
	}
	o.iu = idx
	if i, ok := indexOf(names, "ux"); ok {
		o.iux, o.coupled = i, true
	}
	if i, ok := indexOf(names, "uy"); ok && o.Ndim >= 2 {
		o.iuy = i
	}
	if i, ok := indexOf(names, "uz"); ok && o.Ndim >= 3 {
		o.iuz = i
	}
	return nil
}

func indexOf(names []string, name string) (int, bool) {
	for i, n := range names {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

// interpU evaluates the AD value, time derivative and gradient of the
// primary field u at one volume point. The point's basis table is
// weight-multiplied, so it is divided by the point weight first.
func (o *Diffusion) interpU(w *ele.Workset, vp ele.VolPoint, nverts int) (u, dudt ad.Number, gradU []ad.Number) {
	u = ad.New(w.Width, 0)
	dudt = ad.New(w.Width, 0)
	gradU = make([]ad.Number, o.Ndim)
	for d := range gradU {
		gradU[d] = ad.New(w.Width, 0)
	}
	off := w.Offset(o.iu)
	inv := 1 / weightOf(vp.S)
	for m := 0; m < nverts; m++ {
		u = ad.Add(u, ad.Scale(inv*vp.S[m], w.U[off+m]))
		dudt = ad.Add(dudt, ad.Scale(inv*vp.S[m], w.Udot[off+m]))
		for d := range gradU {
			gradU[d] = ad.Add(gradU[d], ad.Scale(inv*vp.G[m][d], w.U[off+m]))
		}
	}
	return
}

// weightOf recovers a point's integration weight from its weight-multiplied
// shape values: the shape functions sum to one at every point.
func weightOf(s []float64) float64 {
	var sum float64
	for _, v := range s {
		sum += v
	}
	return sum
}

// VolumeResidual implements ele.Module.
func (o *Diffusion) VolumeResidual(w *ele.Workset) error {
	nverts := w.NVertsPerVar
	for _, vp := range w.VolPoints {

		u, dudt, gradU := o.interpU(w, vp, nverts)

		rho, err := w.Coef.Eval(o.Block, coef.AtVolumeIp, "density", ctxAt(w, vp, u, gradU))
		if err != nil {
			return ele.ErrMissingCoef("density")
		}
		cp, err := w.Coef.Eval(o.Block, coef.AtVolumeIp, "specific heat", ctxAt(w, vp, u, gradU))
		if err != nil {
			return ele.ErrMissingCoef("specific heat")
		}
		kappa, err := w.Coef.Eval(o.Block, coef.AtVolumeIp, "thermal diffusion", ctxAt(w, vp, u, gradU))
		if err != nil {
			return ele.ErrMissingCoef("thermal diffusion")
		}
		f, err := w.Coef.Eval(o.Block, coef.AtVolumeIp, "thermal source", ctxAt(w, vp, u, gradU))
		if err != nil {
			return ele.ErrMissingCoef("thermal source")
		}

		rhoCp := ad.Mul(rho, cp)

		for i := 0; i < nverts; i++ {
			term := ad.Scale(vp.S[i], ad.Sub(ad.Mul(rhoCp, dudt), f))
			for d := 0; d < o.Ndim; d++ {
				term = ad.Add(term, ad.Scale(vp.G[i][d], ad.Mul(kappa, gradU[d])))
			}
			if o.coupled {
				conv := ad.Mul(o.velocityComponent(w, o.iux, vp), gradU[0])
				if o.Ndim >= 2 {
					conv = ad.Add(conv, ad.Mul(o.velocityComponent(w, o.iuy, vp), gradU[1]))
				}
				if o.Ndim >= 3 {
					conv = ad.Add(conv, ad.Mul(o.velocityComponent(w, o.iuz, vp), gradU[2]))
				}
				term = ad.Add(term, ad.Scale(vp.S[i], conv))
			}
			w.Res[i].AddTo(term)
		}
	}
	return nil
}

// velocityComponent interpolates one convective velocity component at a
// volume point from the coupled variable's own nodal dof range.
func (o *Diffusion) velocityComponent(w *ele.Workset, slot int, vp ele.VolPoint) ad.Number {
	off := w.Offset(slot)
	v := ad.New(w.Width, 0)
	inv := 1 / weightOf(vp.S)
	for m := range vp.S {
		v = ad.Add(v, ad.Scale(inv*vp.S[m], w.U[off+m]))
	}
	return v
}

// BoundaryResidual implements ele.Module: weak Dirichlet (Nitsche),
// Neumann, and Robin sides.
func (o *Diffusion) BoundaryResidual(w *ele.Workset) error {
	nverts := w.NVertsPerVar
	switch w.Side.Kind {

	case ele.SideWeakDirichlet:
		s := w.FormParam
		if w.IsAdjoint {
			s = 1
		}
		off := w.Offset(o.iu)
		for _, sp := range w.SidePoints {
			u := ad.New(w.Width, 0)
			dudn := ad.New(w.Width, 0)
			inv := 1 / weightOf(sp.S)
			for m := 0; m < nverts; m++ {
				u = ad.Add(u, ad.Scale(inv*sp.S[m], w.U[off+m]))
				for d := 0; d < o.Ndim; d++ {
					dudn = ad.Add(dudn, ad.Scale(inv*sp.G[m][d]*sp.Normal[d], w.U[off+m]))
				}
			}
			kappa, err := w.Coef.Eval(o.Block, coef.AtSideIp, "thermal diffusion", ctxAtSide(w, sp, u))
			if err != nil {
				return ele.ErrMissingCoef("thermal diffusion")
			}
			g, err := w.Coef.Eval(o.Block, coef.AtSideIp, "weak dirichlet value", ctxAtSide(w, sp, u))
			if err != nil {
				return ele.ErrMissingCoef("weak dirichlet value")
			}
			penalty := 10 * kappa.Val / w.H
			uMinusG := ad.Sub(u, g)
			for i := 0; i < nverts; i++ {
				var dphidn float64
				for d := 0; d < o.Ndim; d++ {
					dphidn += sp.G[i][d] * sp.Normal[d]
				}
				term := ad.Scale(-sp.S[i], ad.Mul(kappa, dudn))
				term = ad.Sub(term, ad.Scale(s*dphidn, ad.Mul(kappa, uMinusG)))
				term = ad.Add(term, ad.Scale(penalty*sp.S[i], uMinusG))
				w.Res[i].AddTo(term)
			}
		}

	case ele.SideNeumann:
		off := w.Offset(o.iu)
		for _, sp := range w.SidePoints {
			u := ad.New(w.Width, 0)
			inv := 1 / weightOf(sp.S)
			for m := 0; m < nverts; m++ {
				u = ad.Add(u, ad.Scale(inv*sp.S[m], w.U[off+m]))
			}
			gN, err := w.Coef.Eval(o.Block, coef.AtSideIp, "neumann flux", ctxAtSide(w, sp, u))
			if err != nil {
				return ele.ErrMissingCoef("neumann flux")
			}
			for i := 0; i < nverts; i++ {
				w.Res[i].AddTo(ad.Scale(-sp.S[i], gN))
			}
		}

	case ele.SideRobin, ele.SideMultiscale:
		return o.ComputeFlux(w)
	}
	return nil
}

// ComputeFlux implements ele.Module: the outward numerical flux on
// multiscale interfaces, symmetric with the weak-Dirichlet penalty,
// using the auxiliary mortar trace λ.
func (o *Diffusion) ComputeFlux(w *ele.Workset) error {
	nverts := w.NVertsPerVar
	off := w.Offset(o.iu)
	for idx, sp := range w.SidePoints {
		u := ad.New(w.Width, 0)
		dudn := ad.New(w.Width, 0)
		inv := 1 / weightOf(sp.S)
		for m := 0; m < nverts; m++ {
			u = ad.Add(u, ad.Scale(inv*sp.S[m], w.U[off+m]))
			for d := 0; d < o.Ndim; d++ {
				dudn = ad.Add(dudn, ad.Scale(inv*sp.G[m][d]*sp.Normal[d], w.U[off+m]))
			}
		}
		lambda := ad.New(w.Width, 0)
		if idx < len(w.Aux) {
			lambda = w.Aux[idx]
		}
		kappa, err := w.Coef.Eval(o.Block, coef.AtSideIp, "thermal diffusion", ctxAtSide(w, sp, u))
		if err != nil {
			return ele.ErrMissingCoef("thermal diffusion")
		}
		penalty := 10 * kappa.Val / w.H
		uMinusLam := ad.Sub(u, lambda)
		for i := 0; i < nverts; i++ {
			flux := ad.Add(
				ad.Scale(-sp.S[i], ad.Mul(kappa, dudn)),
				ad.Scale(penalty*sp.S[i], uMinusLam),
			)
			w.Res[i].AddTo(flux)
		}
	}
	return nil
}

func ctxAt(w *ele.Workset, vp ele.VolPoint, u ad.Number, gradU []ad.Number) coef.Context {
	return coef.Context{T: w.T, X: vp.X, U: u, GradU: gradU, Params: w.ParamMap()}
}

func ctxAtSide(w *ele.Workset, sp ele.SidePoint, u ad.Number) coef.Context {
	return coef.Context{T: w.T, X: sp.X, U: u, Params: w.ParamMap()}
}
