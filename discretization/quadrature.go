// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package discretization implements reference-element integration rules
// and basis-function evaluators. Basis evaluators are treated as opaque:
// they return values and gradients at quadrature points and know nothing
// about automatic differentiation or physics.
package discretization

// Ipoint holds the natural coordinates and weight of an integration point:
// {r, s, t, w}.
type Ipoint [4]float64

// gaussLegendre1D returns the n-point Gauss-Legendre rule on [-1,1].
// Only the orders actually needed by the canonical element library are
// tabulated; requesting another order is a programming error.
func gaussLegendre1D(n int) (pts []float64, wts []float64) {
	switch n {
	case 1:
		return []float64{0}, []float64{2}
	case 2:
		a := 0.5773502691896257 // 1/sqrt(3)
		return []float64{-a, a}, []float64{1, 1}
	case 3:
		a := 0.7745966692414834 // sqrt(3/5)
		return []float64{-a, 0, a}, []float64{5.0 / 9.0, 8.0 / 9.0, 5.0 / 9.0}
	default:
		panic("discretization: unsupported Gauss-Legendre order")
	}
}

// LineIps returns n integration points for a 1D reference segment [-1,1].
func LineIps(n int) (ips []Ipoint) {
	pts, wts := gaussLegendre1D(n)
	ips = make([]Ipoint, n)
	for i := range pts {
		ips[i] = Ipoint{pts[i], 0, 0, wts[i]}
	}
	return
}

// QuadIps returns an n×n tensor-product rule on the reference square
// [-1,1]×[-1,1].
func QuadIps(n int) (ips []Ipoint) {
	pts, wts := gaussLegendre1D(n)
	ips = make([]Ipoint, 0, n*n)
	for i := range pts {
		for j := range pts {
			ips = append(ips, Ipoint{pts[i], pts[j], 0, wts[i] * wts[j]})
		}
	}
	return
}

// HexIps returns an n×n×n tensor-product rule on the reference cube
// [-1,1]³.
func HexIps(n int) (ips []Ipoint) {
	pts, wts := gaussLegendre1D(n)
	ips = make([]Ipoint, 0, n*n*n)
	for i := range pts {
		for j := range pts {
			for k := range pts {
				ips = append(ips, Ipoint{pts[i], pts[j], pts[k], wts[i] * wts[j] * wts[k]})
			}
		}
	}
	return
}
