// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solver

import "github.com/cpmech/gofea/cell"

// Stepper tracks the solution history needed to turn du/dt into an
// algebraic Alpha*u - Hist term for BDF-1 or BDF-2 time integration,
// generalizing the teacher's DynCoefs dynamic-coefficient computation
// (fem/s_implicit.go's Global.DynCoefs.CalcBoth) to an order-agnostic
// two-level history.
type Stepper struct {
	Order  int // 1 or 2
	Dt     float64
	uOld   []float64
	uOlder []float64
	first  bool
}

// NewStepper returns a stepper starting from u0 at t=0.
func NewStepper(order int, dt float64, u0 []float64) *Stepper {
	return &Stepper{Order: order, Dt: dt, uOld: append([]float64(nil), u0...), first: true}
}

// Alpha returns the coefficient multiplying u in dudt ≈ Alpha*u - Hist.
func (o *Stepper) Alpha() float64 {
	if o.Order == 2 && !o.first {
		return 1.5 / o.Dt
	}
	return 1 / o.Dt
}

// History returns the per-gid BDF history term for the given global
// equation numbers.
func (o *Stepper) History(gids []int) *cell.History {
	hist := make([]float64, len(gids))
	if o.Order == 2 && !o.first {
		for k, g := range gids {
			hist[k] = (2*o.uOld[g] - 0.5*o.uOlder[g]) / o.Dt
		}
	} else {
		for k, g := range gids {
			hist[k] = o.uOld[g] / o.Dt
		}
	}
	return &cell.History{Alpha: o.Alpha(), Hist: hist}
}

// Advance shifts the history window forward after a converged step.
func (o *Stepper) Advance(uNew []float64) {
	o.uOlder = o.uOld
	o.uOld = append([]float64(nil), uNew...)
	o.first = false
}

// Freeze captures the stepper's current history state (alpha, order,
// uOld/uOlder) into an immutable snapshot closure, safe to store in a
// TrajectoryStep and evaluate later in a reverse-time pass even after
// the live Stepper has moved on to later steps via further Advance
// calls — the plain History method value would alias the Stepper's
// still-mutating fields instead.
func (o *Stepper) Freeze() func(gids []int) *cell.History {
	alpha := o.Alpha()
	order := o.Order
	first := o.first
	dt := o.Dt
	uOld := append([]float64(nil), o.uOld...)
	var uOlder []float64
	if o.uOlder != nil {
		uOlder = append([]float64(nil), o.uOlder...)
	}
	return func(gids []int) *cell.History {
		hist := make([]float64, len(gids))
		if order == 2 && !first {
			for k, g := range gids {
				hist[k] = (2*uOld[g] - 0.5*uOlder[g]) / dt
			}
		} else {
			for k, g := range gids {
				hist[k] = uOld[g] / dt
			}
		}
		return &cell.History{Alpha: alpha, Hist: hist}
	}
}
