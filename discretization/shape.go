// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package discretization

import "github.com/cpmech/gosl/chk"

// Shape is a reference-element basis evaluator. Implementations are
// opaque to the rest of the engine: they return per-quadrature-point
// values and gradients, nothing more.
type Shape struct {
	Name   string  // e.g. "lin2", "qua4", "hex8", "hex20"
	Ndim   int     // space dimension of the cell (not necessarily of the embedding space)
	Nverts int     // number of vertices / basis functions
	IpsVol []Ipoint // default volume integration points

	// scratch filled by CalcAtIp: current shape values, gradients and
	// Jacobian determinant at the last-evaluated integration point.
	S []float64   // [nverts] shape function values
	G [][]float64 // [nverts][ndim] shape function gradients w.r.t. real coordinates
	J float64     // determinant of the isoparametric Jacobian
}

// NewShape returns a Shape for one of the canonical element topologies.
func NewShape(name string) (o *Shape) {
	o = new(Shape)
	o.Name = name
	switch name {
	case "lin2":
		o.Ndim, o.Nverts = 1, 2
		o.IpsVol = LineIps(2)
	case "qua4":
		o.Ndim, o.Nverts = 2, 4
		o.IpsVol = QuadIps(2)
	case "hex8":
		o.Ndim, o.Nverts = 3, 8
		o.IpsVol = HexIps(2)
	case "hex20":
		o.Ndim, o.Nverts = 3, 20
		o.IpsVol = HexIps(3)
	default:
		chk.Panic("discretization: unknown shape %q", name)
	}
	o.S = make([]float64, o.Nverts)
	o.G = make([][]float64, o.Nverts)
	for m := range o.G {
		o.G[m] = make([]float64, o.Ndim)
	}
	return
}

// funcsAndDerivs fills s (shape values) and dsdr (local derivatives
// w.r.t. natural coordinates r,s,t) at the given natural point ip.
func (o *Shape) funcsAndDerivs(ip Ipoint) (s []float64, dsdr [][]float64) {
	s = make([]float64, o.Nverts)
	dsdr = make([][]float64, o.Nverts)
	for m := range dsdr {
		dsdr[m] = make([]float64, o.Ndim)
	}
	r, t, u := ip[0], ip[1], ip[2]
	switch o.Name {
	case "lin2":
		s[0] = 0.5 * (1 - r)
		s[1] = 0.5 * (1 + r)
		dsdr[0][0] = -0.5
		dsdr[1][0] = 0.5
	case "qua4":
		rs := []float64{-1, 1, 1, -1}
		ss := []float64{-1, -1, 1, 1}
		for m := 0; m < 4; m++ {
			s[m] = 0.25 * (1 + rs[m]*r) * (1 + ss[m]*t)
			dsdr[m][0] = 0.25 * rs[m] * (1 + ss[m]*t)
			dsdr[m][1] = 0.25 * ss[m] * (1 + rs[m]*r)
		}
	case "hex8":
		rs := []float64{-1, 1, 1, -1, -1, 1, 1, -1}
		ss := []float64{-1, -1, 1, 1, -1, -1, 1, 1}
		ts := []float64{-1, -1, -1, -1, 1, 1, 1, 1}
		for m := 0; m < 8; m++ {
			s[m] = 0.125 * (1 + rs[m]*r) * (1 + ss[m]*t) * (1 + ts[m]*u)
			dsdr[m][0] = 0.125 * rs[m] * (1 + ss[m]*t) * (1 + ts[m]*u)
			dsdr[m][1] = 0.125 * ss[m] * (1 + rs[m]*r) * (1 + ts[m]*u)
			dsdr[m][2] = 0.125 * ts[m] * (1 + rs[m]*r) * (1 + ss[m]*t)
		}
	case "hex20":
		// quadratic (HGRAD-2) serendipity hexahedron: 8 corner nodes
		// plus 12 mid-edge nodes, no mid-face or center node, grounded
		// in the same vertex-at-{-1,0,1} natural-coordinate convention
		// as hex8 above, generalized to the biquadratic edge terms.
		rp1, rm1 := 1+r, 1-r
		sp1, sm1 := 1+t, 1-t // o's local ip components are (r,t,u); "s" here is ip[1]
		tp1, tm1 := 1+u, 1-u
		s[0] = rm1 * sm1 * tm1 * (-r - t - u - 2) / 8
		s[1] = rp1 * sm1 * tm1 * (r - t - u - 2) / 8
		s[2] = rp1 * sp1 * tm1 * (r + t - u - 2) / 8
		s[3] = rm1 * sp1 * tm1 * (-r + t - u - 2) / 8
		s[4] = rm1 * sm1 * tp1 * (-r - t + u - 2) / 8
		s[5] = rp1 * sm1 * tp1 * (r - t + u - 2) / 8
		s[6] = rp1 * sp1 * tp1 * (r + t + u - 2) / 8
		s[7] = rm1 * sp1 * tp1 * (-r + t + u - 2) / 8
		s[8] = (1 - r*r) * sm1 * tm1 / 4
		s[9] = rp1 * (1 - t*t) * tm1 / 4
		s[10] = (1 - r*r) * sp1 * tm1 / 4
		s[11] = rm1 * (1 - t*t) * tm1 / 4
		s[12] = (1 - r*r) * sm1 * tp1 / 4
		s[13] = rp1 * (1 - t*t) * tp1 / 4
		s[14] = (1 - r*r) * sp1 * tp1 / 4
		s[15] = rm1 * (1 - t*t) * tp1 / 4
		s[16] = rm1 * sm1 * (1 - u*u) / 4
		s[17] = rp1 * sm1 * (1 - u*u) / 4
		s[18] = rp1 * sp1 * (1 - u*u) / 4
		s[19] = rm1 * sp1 * (1 - u*u) / 4

		dsdr[0][0] = -0.125*sm1*tm1*(-r-t-u-2) - 0.125*rm1*sm1*tm1
		dsdr[1][0] = 0.125*sm1*tm1*(r-t-u-2) + 0.125*rp1*sm1*tm1
		dsdr[2][0] = 0.125*sp1*tm1*(r+t-u-2) + 0.125*rp1*sp1*tm1
		dsdr[3][0] = -0.125*sp1*tm1*(-r+t-u-2) - 0.125*rm1*sp1*tm1
		dsdr[4][0] = -0.125*sm1*tp1*(-r-t+u-2) - 0.125*rm1*sm1*tp1
		dsdr[5][0] = 0.125*sm1*tp1*(r-t+u-2) + 0.125*rp1*sm1*tp1
		dsdr[6][0] = 0.125*sp1*tp1*(r+t+u-2) + 0.125*rp1*sp1*tp1
		dsdr[7][0] = -0.125*sp1*tp1*(-r+t+u-2) - 0.125*rm1*sp1*tp1
		dsdr[8][0] = -0.5 * r * sm1 * tm1
		dsdr[9][0] = 0.25 * (1 - t*t) * tm1
		dsdr[10][0] = -0.5 * r * sp1 * tm1
		dsdr[11][0] = -0.25 * (1 - t*t) * tm1
		dsdr[12][0] = -0.5 * r * sm1 * tp1
		dsdr[13][0] = 0.25 * (1 - t*t) * tp1
		dsdr[14][0] = -0.5 * r * sp1 * tp1
		dsdr[15][0] = -0.25 * (1 - t*t) * tp1
		dsdr[16][0] = -0.25 * sm1 * (1 - u*u)
		dsdr[17][0] = 0.25 * sm1 * (1 - u*u)
		dsdr[18][0] = 0.25 * sp1 * (1 - u*u)
		dsdr[19][0] = -0.25 * sp1 * (1 - u*u)

		dsdr[0][1] = -0.125*rm1*tm1*(-r-t-u-2) - 0.125*rm1*sm1*tm1
		dsdr[1][1] = -0.125*rp1*tm1*(r-t-u-2) - 0.125*rp1*sm1*tm1
		dsdr[2][1] = 0.125*rp1*tm1*(r+t-u-2) + 0.125*rp1*sp1*tm1
		dsdr[3][1] = 0.125*rm1*tm1*(-r+t-u-2) + 0.125*rm1*sp1*tm1
		dsdr[4][1] = -0.125*rm1*tp1*(-r-t+u-2) - 0.125*rm1*sm1*tp1
		dsdr[5][1] = -0.125*rp1*tp1*(r-t+u-2) - 0.125*rp1*sm1*tp1
		dsdr[6][1] = 0.125*rp1*tp1*(r+t+u-2) + 0.125*rp1*sp1*tp1
		dsdr[7][1] = 0.125*rm1*tp1*(-r+t+u-2) + 0.125*rm1*sp1*tp1
		dsdr[8][1] = -0.25 * (1 - r*r) * tm1
		dsdr[9][1] = -0.5 * t * rp1 * tm1
		dsdr[10][1] = 0.25 * (1 - r*r) * tm1
		dsdr[11][1] = -0.5 * t * rm1 * tm1
		dsdr[12][1] = -0.25 * (1 - r*r) * tp1
		dsdr[13][1] = -0.5 * t * rp1 * tp1
		dsdr[14][1] = 0.25 * (1 - r*r) * tp1
		dsdr[15][1] = -0.5 * t * rm1 * tp1
		dsdr[16][1] = -0.25 * rm1 * (1 - u*u)
		dsdr[17][1] = -0.25 * rp1 * (1 - u*u)
		dsdr[18][1] = 0.25 * rp1 * (1 - u*u)
		dsdr[19][1] = 0.25 * rm1 * (1 - u*u)

		dsdr[0][2] = -0.125*rm1*sm1*(-r-t-u-2) - 0.125*rm1*sm1*tm1
		dsdr[1][2] = -0.125*rp1*sm1*(r-t-u-2) - 0.125*rp1*sm1*tm1
		dsdr[2][2] = -0.125*rp1*sp1*(r+t-u-2) - 0.125*rp1*sp1*tm1
		dsdr[3][2] = -0.125*rm1*sp1*(-r+t-u-2) - 0.125*rm1*sp1*tm1
		dsdr[4][2] = 0.125*rm1*sm1*(-r-t+u-2) + 0.125*rm1*sm1*tp1
		dsdr[5][2] = 0.125*rp1*sm1*(r-t+u-2) + 0.125*rp1*sm1*tp1
		dsdr[6][2] = 0.125*rp1*sp1*(r+t+u-2) + 0.125*rp1*sp1*tp1
		dsdr[7][2] = 0.125*rm1*sp1*(-r+t+u-2) + 0.125*rm1*sp1*tp1
		dsdr[8][2] = -0.25 * (1 - r*r) * sm1
		dsdr[9][2] = -0.25 * rp1 * (1 - t*t)
		dsdr[10][2] = -0.25 * (1 - r*r) * sp1
		dsdr[11][2] = -0.25 * rm1 * (1 - t*t)
		dsdr[12][2] = 0.25 * (1 - r*r) * sm1
		dsdr[13][2] = 0.25 * rp1 * (1 - t*t)
		dsdr[14][2] = 0.25 * (1 - r*r) * sp1
		dsdr[15][2] = 0.25 * rm1 * (1 - t*t)
		dsdr[16][2] = -0.5 * u * rm1 * sm1
		dsdr[17][2] = -0.5 * u * rp1 * sm1
		dsdr[18][2] = -0.5 * u * rp1 * sp1
		dsdr[19][2] = -0.5 * u * rm1 * sp1
	default:
		chk.Panic("discretization: unknown shape %q", o.Name)
	}
	return
}

// CalcAtIp evaluates shape values S, real-coordinate gradients G and the
// Jacobian determinant J at integration point ip, given the cell's nodal
// coordinate matrix x [nverts][ndim].
func (o *Shape) CalcAtIp(x [][]float64, ip Ipoint, derivs bool) (err error) {
	s, dsdr := o.funcsAndDerivs(ip)
	copy(o.S, s)
	if !derivs {
		return
	}

	// isoparametric Jacobian: dxdr[i][j] = sum_m x[m][i] * dsdr[m][j]
	dxdr := make([][]float64, o.Ndim)
	for i := range dxdr {
		dxdr[i] = make([]float64, o.Ndim)
		for j := 0; j < o.Ndim; j++ {
			for m := 0; m < o.Nverts; m++ {
				dxdr[i][j] += x[m][i] * dsdr[m][j]
			}
		}
	}

	drdx, det, err := invert(dxdr)
	if err != nil {
		return
	}
	o.J = det

	for m := 0; m < o.Nverts; m++ {
		for j := 0; j < o.Ndim; j++ {
			o.G[m][j] = 0
			for k := 0; k < o.Ndim; k++ {
				o.G[m][j] += dsdr[m][k] * drdx[k][j]
			}
		}
	}
	return
}

// invert returns the inverse and determinant of a small (1x1..3x3) matrix.
func invert(a [][]float64) (inv [][]float64, det float64, err error) {
	n := len(a)
	inv = make([][]float64, n)
	for i := range inv {
		inv[i] = make([]float64, n)
	}
	switch n {
	case 1:
		det = a[0][0]
		inv[0][0] = 1 / det
	case 2:
		det = a[0][0]*a[1][1] - a[0][1]*a[1][0]
		inv[0][0] = a[1][1] / det
		inv[0][1] = -a[0][1] / det
		inv[1][0] = -a[1][0] / det
		inv[1][1] = a[0][0] / det
	case 3:
		det = a[0][0]*(a[1][1]*a[2][2]-a[1][2]*a[2][1]) -
			a[0][1]*(a[1][0]*a[2][2]-a[1][2]*a[2][0]) +
			a[0][2]*(a[1][0]*a[2][1]-a[1][1]*a[2][0])
		inv[0][0] = (a[1][1]*a[2][2] - a[1][2]*a[2][1]) / det
		inv[0][1] = (a[0][2]*a[2][1] - a[0][1]*a[2][2]) / det
		inv[0][2] = (a[0][1]*a[1][2] - a[0][2]*a[1][1]) / det
		inv[1][0] = (a[1][2]*a[2][0] - a[1][0]*a[2][2]) / det
		inv[1][1] = (a[0][0]*a[2][2] - a[0][2]*a[2][0]) / det
		inv[1][2] = (a[0][2]*a[1][0] - a[0][0]*a[1][2]) / det
		inv[2][0] = (a[1][0]*a[2][1] - a[1][1]*a[2][0]) / det
		inv[2][1] = (a[0][1]*a[2][0] - a[0][0]*a[2][1]) / det
		inv[2][2] = (a[0][0]*a[1][1] - a[0][1]*a[1][0]) / det
	}
	if det == 0 {
		chk.Panic("discretization: singular Jacobian")
	}
	return
}
