// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package multiscale

import (
	"math"

	"github.com/cpmech/gofea/solver"
)

// Coupling alternates Newton solves between two domains sharing a
// multiscale interface, feeding each one the other's current trace as
// its Robin partner value, until the two traces agree within Tol.
type Coupling struct {
	Macro, Subgrid *Domain
	MaxOuterIt     int
	Tol            float64
}

// OuterResult reports the outcome of the fixed-point outer loop.
type OuterResult struct {
	OuterIterations int
	Converged       bool
	Imbalance       float64
}

// Solve runs the alternating solve at time t.
func (o *Coupling) Solve(t float64) (OuterResult, error) {
	macroTrace := o.Macro.Trace()
	subTrace := o.Subgrid.Trace()

	for it := 0; it < o.MaxOuterIt; it++ {
		o.Macro.BindLambda(subTrace)
		if _, err := o.Macro.Advance(t); err != nil {
			return OuterResult{}, err
		}
		macroTrace = o.Macro.Trace()

		o.Subgrid.BindLambda(macroTrace)
		if _, err := o.Subgrid.Advance(t); err != nil {
			return OuterResult{}, err
		}
		subTrace = o.Subgrid.Trace()

		imbalance := maxAbsDiff(macroTrace, subTrace)
		if imbalance < o.Tol {
			return OuterResult{OuterIterations: it + 1, Converged: true, Imbalance: imbalance}, nil
		}
	}
	return OuterResult{OuterIterations: o.MaxOuterIt, Converged: false, Imbalance: maxAbsDiff(macroTrace, subTrace)}, nil
}

// InterfaceSensitivity composes a subgrid trace sensitivity
// du_sub/dLambda with an already-known dF/du_sub into the chain rule
// dF/dLambda = dF/dLambda_explicit + dF/du_sub . du_sub/dLambda, the
// general form of propagating a macro-side quantity's sensitivity
// through the coupled subgrid solve.
func InterfaceSensitivity(dFdLambdaExplicit float64, dFdUsub, duSubdLambda []float64) float64 {
	total := dFdLambdaExplicit
	for i := range dFdUsub {
		total += dFdUsub[i] * duSubdLambda[i]
	}
	return total
}

// ImbalanceSensitivity returns d(imbalance_idx)/dLambda_idx at
// interface point idx, where imbalance(lambda) =
// macroTrace(lambda)-subTrace(lambda). The macro side's own trace is
// fed lambda directly as its partner's Dirichlet/Robin data, so
// d(macroTrace[idx])/dLambda_idx = 1; the subgrid term composes through
// InterfaceSensitivity via Domain.TraceSensitivity's finite-difference
// vector.
func (o *Coupling) ImbalanceSensitivity(t float64, idx int, subTrace []float64, h float64) (float64, error) {
	duSubdLambda, err := o.Subgrid.TraceSensitivity(t, subTrace, idx, h)
	if err != nil {
		return 0, err
	}
	dFdUsub := make([]float64, len(duSubdLambda))
	gid := o.Subgrid.InterfaceSides[idx].Gid
	dFdUsub[gid] = -1
	return InterfaceSensitivity(1, dFdUsub, duSubdLambda), nil
}

// SolveNewton runs the outer interface coupling with a damped-Newton
// update driven by ImbalanceSensitivity instead of Solve's plain
// fixed-point Robin-Robin relaxation — useful when the subgrid is
// stiff enough relative to the macro side that the fixed point
// converges slowly or not at all. h is the finite-difference step size
// TraceSensitivity perturbs the interface trace by.
func (o *Coupling) SolveNewton(t, h float64) (OuterResult, error) {
	macroTrace := o.Macro.Trace()
	subTrace := o.Subgrid.Trace()
	n := len(macroTrace)

	for it := 0; it < o.MaxOuterIt; it++ {
		o.Macro.BindLambda(subTrace)
		if _, err := o.Macro.Advance(t); err != nil {
			return OuterResult{}, err
		}
		macroTrace = o.Macro.Trace()

		o.Subgrid.BindLambda(macroTrace)
		if _, err := o.Subgrid.Advance(t); err != nil {
			return OuterResult{}, err
		}
		subTrace = o.Subgrid.Trace()

		imbalance := maxAbsDiff(macroTrace, subTrace)
		if imbalance < o.Tol {
			return OuterResult{OuterIterations: it + 1, Converged: true, Imbalance: imbalance}, nil
		}

		next := make([]float64, n)
		for idx := range next {
			dFdLambda, err := o.ImbalanceSensitivity(t, idx, subTrace, h)
			if err != nil {
				return OuterResult{}, err
			}
			resid := macroTrace[idx] - subTrace[idx]
			if dFdLambda == 0 {
				next[idx] = macroTrace[idx]
				continue
			}
			next[idx] = macroTrace[idx] - resid/dFdLambda
		}
		subTrace = next
	}
	return OuterResult{OuterIterations: o.MaxOuterIt, Converged: false, Imbalance: maxAbsDiff(macroTrace, subTrace)}, nil
}

func maxAbsDiff(a, b []float64) float64 {
	var m float64
	for i := range a {
		if d := math.Abs(a[i] - b[i]); d > m {
			m = d
		}
	}
	return m
}

// DefaultConfig returns outer-loop defaults paired with the solver's
// own Newton defaults for both domains.
func DefaultConfig() (int, float64, solver.Config) {
	return 30, 1e-8, solver.DefaultConfig()
}
