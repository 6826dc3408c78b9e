// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linalg

import (
	"math"
	"testing"
)

func TestMapAndVectorOwned(tst *testing.T) {
	m := NewMap(2, 1)
	if m.Total != 3 {
		tst.Fatalf("Total = %d, want 3", m.Total)
	}
	v := NewVector(m)
	v.Data[0], v.Data[1], v.Data[2] = 1, 2, 3
	owned := v.Owned()
	if len(owned) != 2 || owned[0] != 1 || owned[1] != 2 {
		tst.Fatalf("Owned() = %v, want [1 2]", owned)
	}
	v.Zero()
	for i, x := range v.Data {
		if x != 0 {
			tst.Fatalf("Zero() left Data[%d] = %v", i, x)
		}
	}
}

// smallSPD builds a 2x2 SPD Matrix [[4,1],[1,3]] via ADD-semantics Put,
// exercising the same accumulation path asm.Assembler uses.
func smallSPD(tst *testing.T) *Matrix {
	m := NewMap(2, 0)
	mtx := NewMatrix(m, 4)
	mtx.Start()
	mtx.Put(0, 0, 3)
	mtx.Put(0, 0, 1) // accumulates: 3+1 = 4, same (i,j) twice
	mtx.Put(0, 1, 1)
	mtx.Put(1, 0, 1)
	mtx.Put(1, 1, 3)
	return mtx
}

func TestMatrixPutAccumulatesAndDiag(tst *testing.T) {
	mtx := smallSPD(tst)
	d := mtx.diag()
	if d[0] != 4 || d[1] != 3 {
		tst.Fatalf("diag = %v, want [4 3]", d)
	}
	y := make([]float64, 2)
	mtx.matvec([]float64{1, 2}, y)
	// [[4,1],[1,3]] * [1,2] = [4+2, 1+6] = [6,7]
	if y[0] != 6 || y[1] != 7 {
		tst.Fatalf("matvec = %v, want [6 7]", y)
	}
}

func TestMatrixTranspose(tst *testing.T) {
	m := NewMap(2, 0)
	mtx := NewMatrix(m, 4)
	mtx.Start()
	mtx.Put(0, 0, 1)
	mtx.Put(0, 1, 5)
	mtx.Put(1, 0, -2)
	mtx.Put(1, 1, 3)

	t := mtx.Transpose()
	y := make([]float64, 2)
	t.matvec([]float64{1, 1}, y)
	// A^T = [[1,-2],[5,3]]; A^T*[1,1] = [1-2, 5+3] = [-1, 8]
	if y[0] != -1 || y[1] != 8 {
		tst.Fatalf("A^T * [1,1] = %v, want [-1 8]", y)
	}
}

func TestGmresConvergesOnSmallSPDSystem(tst *testing.T) {
	mtx := smallSPD(tst)
	rhs := []float64{1, 2}
	pc := DefaultPreconditioner()

	x, err := gmres(mtx, rhs, pc, 2, 50, 1e-10)
	if err != nil {
		tst.Fatalf("gmres: %v", err)
	}
	// 4x+y=1, x+3y=2 => x=1/11, y=7/11
	wantX, wantY := 1.0/11.0, 7.0/11.0
	if math.Abs(x[0]-wantX) > 1e-6 || math.Abs(x[1]-wantY) > 1e-6 {
		tst.Fatalf("x = %v, want [%v %v]", x, wantX, wantY)
	}
}

func TestPreconditionerCascadeSharpens(tst *testing.T) {
	pc := DefaultPreconditioner()
	next := pc.Cascade()
	if next.DropTol >= pc.DropTol {
		tst.Fatalf("Cascade() DropTol = %v, want smaller than %v", next.DropTol, pc.DropTol)
	}
	if next.FillParam <= pc.FillParam {
		tst.Fatalf("Cascade() FillParam = %v, want larger than %v", next.FillParam, pc.FillParam)
	}
	if next.MaxLevels != pc.MaxLevels-1 {
		tst.Fatalf("Cascade() MaxLevels = %d, want %d", next.MaxLevels, pc.MaxLevels-1)
	}
}

func TestLinSolName(tst *testing.T) {
	if LinSolName(false) != "umfpack" {
		tst.Fatalf("LinSolName(false) = %q, want umfpack", LinSolName(false))
	}
	if LinSolName(true) != "mumps" {
		tst.Fatalf("LinSolName(true) = %q, want mumps", LinSolName(true))
	}
}
