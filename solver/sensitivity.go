// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solver

import (
	"github.com/cpmech/gofea/asm"
	"github.com/cpmech/gofea/linalg"
)

// Sensitivity solves the tangent linear system J * du/dp = -dR/dp for
// every active scalar parameter in a.Params, at a state u already
// converged by Newton. dR/dp comes straight off the AD columns Assemble
// produces when parameters are seeded, so this costs one assembly plus
// one linear solve per active parameter (cheap when there are few
// parameters; Adjoint below is the complementary many-parameters path).
func Sensitivity(a *asm.Assembler, u []float64, t, alpha float64, hist asm.HistoryFunc, cfg Config) (dudp [][]float64, err error) {
	_, jac, dRdP, err := a.Assemble(u, t, alpha, hist, nil, false, 1)
	if err != nil {
		return nil, err
	}
	pc := linalg.DefaultPreconditioner()
	dudp = make([][]float64, len(dRdP[0]))
	for k := range dudp {
		rhs := make([]float64, len(dRdP))
		for i, row := range dRdP {
			rhs[i] = -row[k]
		}
		x, _, err := linalg.SolveCascade(jac, rhs, cfg.LinSolName, pc, 4, cfg.Restart, cfg.LinMaxIter, cfg.LinTol)
		if err != nil {
			return nil, err
		}
		dudp[k] = x
	}
	return dudp, nil
}

// CostGradFunc returns a cost functional's gradient with respect to the
// state u, evaluated at the current solution (e.g. 2*(u-uTarget) for a
// least-squares misfit).
type CostGradFunc func(u []float64) []float64

// Adjoint solves J^T * phi = dCost/dU once, then returns the gradient of
// the cost with respect to every active scalar parameter:
// dCost/dp_k = -phi . dR/dp_k (plus any explicit dCost/dp_k the caller
// adds separately, e.g. a regularization term). This is the
// many-parameters-cheap counterpart to Sensitivity: one linear solve
// regardless of how many parameters are active.
func Adjoint(a *asm.Assembler, u []float64, t, alpha float64, hist asm.HistoryFunc, costGrad CostGradFunc, cfg Config) (phi []float64, gradP []float64, err error) {
	_, jac, dRdP, err := a.Assemble(u, t, alpha, hist, nil, true, 1)
	if err != nil {
		return nil, nil, err
	}
	jacT := jac.Transpose()
	rhs := costGrad(u)
	pc := linalg.DefaultPreconditioner()
	phi, _, err = linalg.SolveCascade(jacT, rhs, cfg.LinSolName, pc, 4, cfg.Restart, cfg.LinMaxIter, cfg.LinTol)
	if err != nil {
		return nil, nil, err
	}
	if len(dRdP) == 0 {
		return phi, nil, nil
	}
	nParam := len(dRdP[0])
	gradP = make([]float64, nParam)
	for i, row := range dRdP {
		for k, v := range row {
			gradP[k] -= phi[i] * v
		}
	}
	return phi, gradP, nil
}

// TrajectoryStep is one stored forward time step: the converged state,
// the (t, alpha) pair it was solved at, and the history closure that
// reproduces the same BDF term the forward solve used, so the backward
// sweep rebuilds an identical Jacobian at that step.
type TrajectoryStep struct {
	T     float64
	Alpha float64
	U     []float64
	Hist  asm.HistoryFunc
}

// Trajectory is the ordered forward-time solution history a transient
// adjoint walks backward over. A caller driving Stepper records one
// TrajectoryStep per converged Newton solve (see solver_test for the
// recording pattern) instead of discarding the state once Stepper.Advance
// is called.
type Trajectory []TrajectoryStep

// AdjointTrajectory walks a stored forward trajectory in reverse,
// solving one adjoint linear system per step and accumulating the
// gradient contribution -phi_i . dR_i/dp at every step — the
// many-parameters-cheap generalization of Adjoint to a transient path,
// matching the single-state Adjoint's one-solve-per-parameter-count
// economics but over an entire time history instead of one state.
//
// adjPrev is reset to nil (the zero adjoint state) at the last-in-time
// step, the reverse sweep's initial condition, and afterwards carries
// (jac - jac0)^T phi of the step just solved into the next (earlier)
// step's right-hand side alongside costGrad, where jac0 is the same
// step's Jacobian assembled with Alpha 0 and no history. jac - jac0 is
// the step's time-derivative block, which under BDF-1 is exactly
// -dR_i/du_{i-1}, so the carry is the exact cross-step term for BDF-1
// steps. For BDF-2 steps, whose history reaches two steps back with other
// coefficients, the carry is not the exact cross-step term.
func AdjointTrajectory(a *asm.Assembler, traj Trajectory, costGrad CostGradFunc, cfg Config) (gradP []float64, err error) {
	var adjPrev []float64
	for i := len(traj) - 1; i >= 0; i-- {
		step := traj[i]
		if i == len(traj)-1 {
			adjPrev = nil
		}
		_, jac, dRdP, aerr := a.Assemble(step.U, step.T, step.Alpha, step.Hist, adjPrev, true, 1)
		if aerr != nil {
			return nil, aerr
		}
		jacT := jac.Transpose()
		rhs := costGrad(step.U)
		if adjPrev != nil {
			for k := range rhs {
				if k < len(adjPrev) {
					rhs[k] += adjPrev[k]
				}
			}
		}
		pc := linalg.DefaultPreconditioner()
		phi, _, serr := linalg.SolveCascade(jacT, rhs, cfg.LinSolName, pc, 4, cfg.Restart, cfg.LinMaxIter, cfg.LinTol)
		if serr != nil {
			return nil, serr
		}
		if len(dRdP) > 0 {
			if gradP == nil {
				gradP = make([]float64, len(dRdP[0]))
			}
			for ri, row := range dRdP {
				for k, v := range row {
					gradP[k] -= phi[ri] * v
				}
			}
		}
		_, jac0, _, aerr := a.Assemble(step.U, step.T, 0, nil, nil, true, 1)
		if aerr != nil {
			return nil, aerr
		}
		adjPrev = make([]float64, len(phi))
		for r := range phi {
			for c := range adjPrev {
				adjPrev[c] += (jac.Get(r, c) - jac0.Get(r, c)) * phi[r]
			}
		}
	}
	return gradP, nil
}
