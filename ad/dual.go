// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package ad implements forward-mode automatic differentiation with a
// fixed maximum derivative count, used by the assembler to carry residual
// values and their exact Jacobian / sensitivity rows through a single
// quadrature-point evaluation.
package ad

import "github.com/cpmech/gosl/chk"

// MaxWidth is the compile-time upper bound on the number of simultaneous
// derivative slots a Number can carry. The size check in
// ele.Workset.Reset, run by cell.Gather for every cell, enforces
//
//	MaxWidth >= dofsPerElem + nActiveParams + nLocalParamDofs
//
// for every block; exceeding it is an AssemblyError, never silent
// truncation.
const MaxWidth = 96

// Number is a forward-mode dual number: a value plus up to MaxWidth
// partial derivatives. Only the first Width entries of Der are meaningful;
// the rest are always zero so that arithmetic between Numbers of different
// Width is safe (zero derivatives simply do not contribute).
type Number struct {
	Val   float64
	Der   [MaxWidth]float64
	Width int // number of active derivative slots for this Number
}

// New returns a constant dual number (all derivatives zero).
func New(width int, value float64) (o Number) {
	o.Val = value
	o.Width = width
	return
}

// Seed returns a dual number representing an independent variable: value
// with derivative 1 at slot j and 0 elsewhere.
func Seed(width, j int, value float64) (o Number) {
	if j < 0 || j >= width {
		chk.Panic("ad: seed slot %d out of range [0,%d)", j, width)
	}
	o.Val = value
	o.Width = width
	o.Der[j] = 1
	return
}

// Dx returns the partial derivative at slot j, or 0 if j is outside this
// number's active width.
func (o Number) Dx(j int) float64 {
	if j < 0 || j >= o.Width {
		return 0
	}
	return o.Der[j]
}

func maxWidth(a, b Number) int {
	if a.Width > b.Width {
		return a.Width
	}
	return b.Width
}

// Add returns a+b
func Add(a, b Number) (o Number) {
	o.Width = maxWidth(a, b)
	o.Val = a.Val + b.Val
	for i := 0; i < o.Width; i++ {
		o.Der[i] = a.Der[i] + b.Der[i]
	}
	return
}

// Sub returns a-b
func Sub(a, b Number) (o Number) {
	o.Width = maxWidth(a, b)
	o.Val = a.Val - b.Val
	for i := 0; i < o.Width; i++ {
		o.Der[i] = a.Der[i] - b.Der[i]
	}
	return
}

// Mul returns a*b
func Mul(a, b Number) (o Number) {
	o.Width = maxWidth(a, b)
	o.Val = a.Val * b.Val
	for i := 0; i < o.Width; i++ {
		o.Der[i] = a.Der[i]*b.Val + a.Val*b.Der[i]
	}
	return
}

// Div returns a/b
func Div(a, b Number) (o Number) {
	o.Width = maxWidth(a, b)
	inv := 1.0 / b.Val
	o.Val = a.Val * inv
	for i := 0; i < o.Width; i++ {
		o.Der[i] = (a.Der[i] - o.Val*b.Der[i]) * inv
	}
	return
}

// Neg returns -a
func Neg(a Number) (o Number) {
	o.Width = a.Width
	o.Val = -a.Val
	for i := 0; i < o.Width; i++ {
		o.Der[i] = -a.Der[i]
	}
	return
}

// Scale returns c*a for a plain float64 scalar c
func Scale(c float64, a Number) (o Number) {
	o.Width = a.Width
	o.Val = c * a.Val
	for i := 0; i < o.Width; i++ {
		o.Der[i] = c * a.Der[i]
	}
	return
}

// Plus returns a+c for a plain float64 scalar c
func Plus(a Number, c float64) (o Number) {
	o.Width = a.Width
	o.Val = a.Val + c
	o.Der = a.Der
	return
}

// AddTo accumulates b into a in place: a += b. Used by residual
// accumulation loops where allocating a fresh Number per quadrature point
// would otherwise dominate the hot loop.
func (a *Number) AddTo(b Number) {
	if b.Width > a.Width {
		a.Width = b.Width
	}
	a.Val += b.Val
	for i := 0; i < a.Width; i++ {
		a.Der[i] += b.Der[i]
	}
}

// Zero resets o to a constant zero of the given width.
func (o *Number) Zero(width int) {
	o.Val = 0
	o.Width = width
	for i := 0; i < width; i++ {
		o.Der[i] = 0
	}
}
