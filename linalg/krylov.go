// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linalg

import "math"

// SolveCascade attempts the direct solve first (the teacher's own
// umfpack/mumps path); on failure it retries with a restarted,
// diagonally-preconditioned GMRES, re-setting up the preconditioner with
// progressively stronger thresholding each attempt. It returns the
// number of attempts made and the final error, which is nil iff some
// attempt converged within tol.
func SolveCascade(mtx *Matrix, rhs []float64, name string, pc Preconditioner, maxAttempts, restart, maxIter int, tol float64) (x []float64, attempts int, err error) {
	x, err = Solve(mtx, rhs, name, false, false, false)
	attempts = 1
	if err == nil {
		return
	}
	cur := pc
	for attempts < maxAttempts {
		attempts++
		x, err = gmres(mtx, rhs, cur, restart, maxIter, tol)
		if err == nil {
			return
		}
		cur = cur.Cascade()
	}
	return
}

// gmres is a restarted GMRES with a Jacobi diagonal preconditioner;
// diagonal entries smaller than pc.DropTol in magnitude are replaced by
// pc.DropTol, and pc's other fields are not read. This stands in for the smoothed-aggregation
// multigrid / domain-decomposition ILU backends this cascade parameterizes: gosl's
// retrieved surface exposes only direct factorisation, so the iterative
// cascade path is hand-rolled here in the teacher's small-numeric-kernel
// idiom (see mdl/* in the teacher pack) rather than invented against an
// unconfirmed library API.
func gmres(mtx *Matrix, rhs []float64, pc Preconditioner, restart, maxIter int, tol float64) ([]float64, error) {
	n := mtx.M.NOwned
	d := mtx.diag()
	precond := func(r []float64) []float64 {
		z := make([]float64, n)
		for i := range z {
			di := d[i]
			if math.Abs(di) < pc.DropTol {
				di = pc.DropTol
			}
			z[i] = r[i] / di
		}
		return z
	}

	x := make([]float64, n)
	bnorm := norm2(rhs)
	if bnorm == 0 {
		return x, nil
	}

	for outer := 0; outer*restart < maxIter; outer++ {
		r := make([]float64, n)
		ax := make([]float64, n)
		mtx.matvec(x, ax)
		for i := range r {
			r[i] = rhs[i] - ax[i]
		}
		z := precond(r)
		beta := norm2(z)
		if beta/bnorm < tol {
			return x, nil
		}

		m := restart
		v := make([][]float64, m+1)
		h := make([][]float64, m+1)
		for i := range h {
			h[i] = make([]float64, m)
		}
		v[0] = scaleVec(z, 1/beta)
		g := make([]float64, m+1)
		g[0] = beta

		k := 0
		for ; k < m; k++ {
			w := make([]float64, n)
			mtx.matvec(v[k], w)
			w = precond(w)
			for i := 0; i <= k; i++ {
				h[i][k] = dot(w, v[i])
				axpy(-h[i][k], v[i], w)
			}
			h[k+1][k] = norm2(w)
			if h[k+1][k] < 1e-14 {
				k++
				break
			}
			v[k+1] = scaleVec(w, 1/h[k+1][k])
		}

		y := leastSquaresHessenberg(h, g, k)
		for i := 0; i < k; i++ {
			axpy(y[i], v[i], x)
		}

		ax2 := make([]float64, n)
		mtx.matvec(x, ax2)
		res := make([]float64, n)
		for i := range res {
			res[i] = rhs[i] - ax2[i]
		}
		if norm2(res)/bnorm < tol {
			return x, nil
		}
	}
	return x, errNonConvergedLinear
}

var errNonConvergedLinear = &linearSolveError{"gmres: did not converge within preconditioner cascade budget"}

type linearSolveError struct{ msg string }

func (e *linearSolveError) Error() string { return e.msg }

// leastSquaresHessenberg solves the small (k+1)xk least-squares problem
// min ‖g - H y‖ by plain Givens-free normal equations (k is always small:
// bounded by the restart parameter).
func leastSquaresHessenberg(h [][]float64, g []float64, k int) []float64 {
	// form H^T H y = H^T g
	a := make([][]float64, k)
	b := make([]float64, k)
	for i := 0; i < k; i++ {
		a[i] = make([]float64, k)
		for j := 0; j < k; j++ {
			var s float64
			for r := 0; r <= k; r++ {
				s += h[r][i] * h[r][j]
			}
			a[i][j] = s
		}
		var s float64
		for r := 0; r <= k; r++ {
			s += h[r][i] * g[r]
		}
		b[i] = s
	}
	return solveDense(a, b)
}

// solveDense solves a small dense linear system via Gaussian elimination
// with partial pivoting.
func solveDense(a [][]float64, b []float64) []float64 {
	n := len(b)
	for i := 0; i < n; i++ {
		piv := i
		for r := i + 1; r < n; r++ {
			if math.Abs(a[r][i]) > math.Abs(a[piv][i]) {
				piv = r
			}
		}
		a[i], a[piv] = a[piv], a[i]
		b[i], b[piv] = b[piv], b[i]
		if a[i][i] == 0 {
			continue
		}
		for r := i + 1; r < n; r++ {
			f := a[r][i] / a[i][i]
			for c := i; c < n; c++ {
				a[r][c] -= f * a[i][c]
			}
			b[r] -= f * b[i]
		}
	}
	x := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		s := b[i]
		for c := i + 1; c < n; c++ {
			s -= a[i][c] * x[c]
		}
		if a[i][i] == 0 {
			x[i] = 0
			continue
		}
		x[i] = s / a[i][i]
	}
	return x
}

func norm2(v []float64) float64 {
	var s float64
	for _, x := range v {
		s += x * x
	}
	return math.Sqrt(s)
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func axpy(alpha float64, x, y []float64) {
	for i := range y {
		y[i] += alpha * x[i]
	}
}

func scaleVec(v []float64, c float64) []float64 {
	o := make([]float64, len(v))
	for i := range v {
		o[i] = v[i] * c
	}
	return o
}
