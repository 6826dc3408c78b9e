// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package solver is the nonlinear/time-stepping/adjoint engine: a damped
// Newton-Raphson iteration driving the assembler to a converged state at
// each time step, BDF-1/BDF-2 time stepping via Stepper, and forward-AD
// sensitivity plus adjoint gradient computation for active scalar
// parameters (the assembler does not seed discretized field parameters).
// Adapted from the teacher's
// fem/s_implicit.go run_iterations (largFb/FbTol/FbMin convergence,
// conditional Jacobian re-assembly, damped update).
package solver

import (
	"math"

	"github.com/cpmech/gofea/asm"
	"github.com/cpmech/gofea/linalg"
)

// Config mirrors the teacher's Solver settings block (NmaxIt, FbTol,
// FbMin) plus a fixed damping factor and the linear-solve
// cascade parameters.
type Config struct {
	NMaxIt     int
	FbTol      float64
	FbMin      float64
	DuTol      float64
	Damping    float64 // step scale applied to the Newton update, e.g. 1.0 for full steps
	LinSolName string
	Restart    int
	LinMaxIter int
	LinTol     float64
}

// DefaultConfig returns reasonable defaults for a well-conditioned
// diffusion-class problem.
func DefaultConfig() Config {
	return Config{
		NMaxIt: 20, FbTol: 1e-10, FbMin: 1e-14, DuTol: 1e-12,
		Damping: 1.0, LinSolName: "umfpack", Restart: 30, LinMaxIter: 500, LinTol: 1e-10,
	}
}

// Result reports how a Newton solve finished.
type Result struct {
	Iterations int
	Converged  bool
	LargFb     float64
}

// Newton drives one time step (or, with alpha=0/hist=nil, one steady
// solve) to convergence, mutating u in place.
func Newton(a *asm.Assembler, u []float64, t, alpha float64, hist asm.HistoryFunc, cfg Config) (Result, error) {
	var largFb0 float64
	var it int
	for it = 0; it < cfg.NMaxIt; it++ {
		res, jac, _, err := a.Assemble(u, t, alpha, hist, nil, false, 1)
		if err != nil {
			return Result{}, err
		}
		largFb := maxAbs(res.Owned())
		if it == 0 {
			largFb0 = largFb
		} else if largFb < cfg.FbTol*largFb0 || largFb < cfg.FbMin {
			return Result{Iterations: it, Converged: true, LargFb: largFb}, nil
		}

		rhs := make([]float64, len(res.Owned()))
		for i, v := range res.Owned() {
			rhs[i] = -v
		}
		pc := linalg.DefaultPreconditioner()
		du, _, err := linalg.SolveCascade(jac, rhs, cfg.LinSolName, pc, 4, cfg.Restart, cfg.LinMaxIter, cfg.LinTol)
		if err != nil {
			return Result{Iterations: it, Converged: false, LargFb: largFb}, err
		}

		step := cfg.Damping
		if step <= 0 {
			step = 1
		}
		var duNorm float64
		for i := range u {
			u[i] += step * du[i]
			duNorm += du[i] * du[i]
		}
		if math.Sqrt(duNorm) < cfg.DuTol {
			return Result{Iterations: it + 1, Converged: true, LargFb: largFb}, nil
		}
	}
	return Result{Iterations: it, Converged: false}, nil
}

func maxAbs(v []float64) float64 {
	var m float64
	for _, x := range v {
		if a := math.Abs(x); a > m {
			m = a
		}
	}
	return m
}
