// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ad

import (
	"math"
	"testing"
)

func checkScalar(tst *testing.T, msg string, val, correct, tol float64) {
	if math.Abs(val-correct) > tol {
		tst.Errorf("%s failed: %v != %v\n", msg, val, correct)
	}
}

func TestDualArith(tst *testing.T) {

	// f(x,y) = x*y + x/y, at x=3 y=2
	x := Seed(2, 0, 3)
	y := Seed(2, 1, 2)
	f := Add(Mul(x, y), Div(x, y))

	checkScalar(tst, "f", f.Val, 3*2+3.0/2.0, 1e-15)
	checkScalar(tst, "df/dx", f.Dx(0), 2+1.0/2.0, 1e-15)
	checkScalar(tst, "df/dy", f.Dx(1), 3-3.0/4.0, 1e-15)
}

func TestDualAddTo(tst *testing.T) {
	var acc Number
	acc.Zero(3)
	acc.AddTo(Seed(3, 0, 1))
	acc.AddTo(Seed(3, 1, 2))
	checkScalar(tst, "acc.Val", acc.Val, 3, 1e-15)
	checkScalar(tst, "acc.Dx(0)", acc.Dx(0), 1, 1e-15)
	checkScalar(tst, "acc.Dx(1)", acc.Dx(1), 1, 1e-15)
	checkScalar(tst, "acc.Dx(2)", acc.Dx(2), 0, 1e-15)
}
