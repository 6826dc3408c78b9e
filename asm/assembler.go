// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package asm is the assembly manager: it loops every cell of every
// block, gathers and AD-seeds its local state, invokes the bound
// physics module, and scatters the resulting AD residual into the
// global residual vector and (from the AD derivatives) the global
// Jacobian, finishing with strong-Dirichlet row replacement. Adapted
// from the teacher's fem/solver.go assembly loop and fem/essenbcs.go's
// row-replacement pass.
package asm

import (
	"fmt"

	"github.com/cpmech/gofea/ad"
	"github.com/cpmech/gofea/cell"
	"github.com/cpmech/gofea/coef"
	"github.com/cpmech/gofea/dof"
	"github.com/cpmech/gofea/ele"
	"github.com/cpmech/gofea/linalg"
	"github.com/cpmech/gofea/param"
)

// Block binds one physics module, its declared variables, its cells and
// the number of Gauss points its quadrature uses.
type Block struct {
	ID       int
	Module   ele.Module
	VarNames []string
	Cells    []*cell.Cell
	NGauss   int
}

// Assembler owns the global numbering and the set of blocks it
// assembles over.
type Assembler struct {
	DM     *dof.Manager
	CF     *coef.Manager
	Params *param.Manager // optional; when set, its active scalar parameters are seeded into every cell's Workset
	Blocks []Block
	nnz    int
}

// NewAssembler returns an assembler bound to a numbering and coefficient
// manager; EstimateNNZ should be called once blocks are added to size
// the Jacobian's Triplet.
func NewAssembler(dm *dof.Manager, cf *coef.Manager) *Assembler {
	return &Assembler{DM: dm, CF: cf}
}

// EstimateNNZ sizes the Triplet conservatively: every cell contributes a
// dense local-dof x local-dof block.
func (a *Assembler) EstimateNNZ() int {
	n := 0
	for _, b := range a.Blocks {
		for _, c := range b.Cells {
			ndof := len(b.VarNames) * len(c.NodeIDs)
			n += ndof * ndof
		}
	}
	a.nnz = n
	return n
}

// HistoryFunc returns, for a cell's gathered global ids, the per-dof BDF
// history term (Alpha*uOld combination) the time integrator has
// precomputed for this step.
type HistoryFunc func(gids []int) *cell.History

// Assemble runs one full residual+Jacobian pass over every block/cell,
// seeding u (and, when a.Params is set, every active scalar parameter)
// through every declared variable. It returns the global
// residual/Jacobian with strong-Dirichlet rows already replaced by
// (u_gid - prescribedValue), plus dRdP: the dense NEq x len(activeParams)
// sensitivity of the residual to each active scalar parameter, read
// straight off the same AD pass's extra derivative slots (strong-Dirichlet
// rows of dRdP are left zero). adjPrev is gathered into every cell's Workset.AdjPrev (nil
// outside a reverse-time adjoint pass); it never participates in the AD
// seeding itself.
func (a *Assembler) Assemble(u []float64, t, alpha float64, hist HistoryFunc, adjPrev []float64, isAdjoint bool, formParam float64) (res *linalg.Vector, jac *linalg.Matrix, dRdP [][]float64, err error) {
	m := linalg.NewMap(a.DM.NEq(), 0)
	res = linalg.NewVector(m)
	if a.nnz == 0 {
		a.EstimateNNZ()
	}
	jac = linalg.NewMatrix(m, a.nnz)
	jac.Start()

	var activeParams []*param.Parameter
	if a.Params != nil {
		activeParams = a.Params.ActiveScalars()
	}
	nActiveParam := len(activeParams)
	paramNames := make([]string, nActiveParam)
	for i, p := range activeParams {
		paramNames[i] = p.Name
	}
	if nActiveParam > 0 {
		dRdP = make([][]float64, m.NOwned)
		for i := range dRdP {
			dRdP[i] = make([]float64, nActiveParam)
		}
	}

	for _, b := range a.Blocks {
		w := ele.NewWorkset(b.ID, a.CF)
		w.T = t
		w.Alpha = alpha
		w.IsAdjoint = isAdjoint
		w.FormParam = formParam
		w.ParamNames = paramNames
		if err := b.Module.SetVars(b.VarNames); err != nil {
			return nil, nil, nil, fmt.Errorf("asm: block %d: %w", b.ID, err)
		}
		for _, c := range b.Cells {
			var h *cell.History
			gids := c.Gids(a.DM, b.VarNames)
			if hist != nil {
				h = hist(gids)
			}
			if _, err := c.Gather(w, a.DM, b.VarNames, u, h, adjPrev, nActiveParam, 0); err != nil {
				return nil, nil, nil, fmt.Errorf("asm: cell %d gather: %w", c.ID, err)
			}
			w.Param = w.Param[:0]
			ndof := len(gids)
			for i, p := range activeParams {
				w.Param = append(w.Param, ad.Seed(w.Width, ndof+i, p.Value))
			}
			w.VolPoints = c.VolPoints(b.NGauss)
			if err := b.Module.VolumeResidual(w); err != nil {
				return nil, nil, nil, fmt.Errorf("asm: cell %d volume: %w", c.ID, err)
			}
			for _, s := range c.Sides {
				w.Side = s.Info
				w.SidePoints, w.H = c.SidePoints(s, b.NGauss)
				if s.Info.Kind == ele.SideMultiscale && s.Lambda != nil {
					lv := s.Lambda()
					w.Aux = w.Aux[:0]
					for range w.SidePoints {
						w.Aux = append(w.Aux, ad.New(w.Width, lv))
					}
				}
				if err := b.Module.BoundaryResidual(w); err != nil {
					return nil, nil, nil, fmt.Errorf("asm: cell %d side: %w", c.ID, err)
				}
			}
			scatter(res, jac, dRdP, a.DM, gids, w, ndof)
		}
	}

	applyStrongDirichlet(res, jac, a.DM, u)
	jac.ExportOwned()
	return res, jac, dRdP, nil
}

// scatter adds one cell's AD residual/Jacobian block into the global
// structures, using ADD (Tpetra-style) combine semantics, and folds its
// parameter-derivative columns into dRdP when present.
func scatter(res *linalg.Vector, jac *linalg.Matrix, dRdP [][]float64, dm *dof.Manager, gids []int, w *ele.Workset, ndof int) {
	for i, gi := range gids {
		if _, ok := dm.StrongDirichlet(gi); ok {
			continue // row replaced wholesale after assembly
		}
		res.Data[gi] += w.Res[i].Val
		for j, gj := range gids {
			if v := w.Res[i].Dx(j); v != 0 {
				jac.Put(gi, gj, v)
			}
		}
		if dRdP != nil {
			for k := range w.ParamNames {
				dRdP[gi][k] += w.Res[i].Dx(ndof + k)
			}
		}
	}
}

// applyStrongDirichlet zeroes and re-identifies every strong-Dirichlet
// row so the linear solve drives that dof's residual to
// u[gid]-prescribed, leaving the variable pinned at its target value.
func applyStrongDirichlet(res *linalg.Vector, jac *linalg.Matrix, dm *dof.Manager, u []float64) {
	for _, gid := range dm.StrongDirichletEqs() {
		val, _ := dm.StrongDirichlet(gid)
		res.Data[gid] = u[gid] - val
		jac.Put(gid, gid, 1)
	}
}
