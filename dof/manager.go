// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package dof implements global DOF numbering (every numbered equation
// counts as owned; no ghosted partition is built) and Dirichlet identification, adapted from the teacher's Domain equation-numbering
// section (fem/domain.go's SetStage / node-to-equation bookkeeping).
package dof

import "github.com/cpmech/gosl/chk"

// RemeshHook is the out-of-scope "solution-driven node displacement"
// seam: a no-op by default, it
// lets Mesh.Remesh settings round-trip without the manager acting on
// them. A real implementation would renumber equations after moving
// nodes; that algorithm itself is explicitly out of scope.
type RemeshHook func(nodeID int, newCoords []float64)

// Manager owns the global equation numbering for one stage.
type Manager struct {
	eq        map[int]map[string]int // nodeID -> varName -> global equation number
	nEqOwned  int
	nEqGhost  int
	dirichlet map[int]float64 // strong-Dirichlet eq -> prescribed value
	owner     map[int]int     // eq -> owning rank (0 in a single-rank run)
	Remesh    RemeshHook
}

// NewManager returns an empty numbering for a single stage.
func NewManager() *Manager {
	return &Manager{
		eq:        make(map[int]map[string]int),
		dirichlet: make(map[int]float64),
		owner:     make(map[int]int),
	}
}

// Number assigns a fresh, contiguous equation number to every
// (node, variable) pair not yet numbered, in the order given. Numbering
// order matters for reproducibility across ranks: callers must
// present nodeIDs/varNames in a rank-independent (e.g. sorted-by-GID)
// order.
func (o *Manager) Number(nodeID int, varNames []string, owningRank int) {
	if o.eq[nodeID] == nil {
		o.eq[nodeID] = make(map[string]int)
	}
	for _, v := range varNames {
		if _, done := o.eq[nodeID][v]; done {
			continue
		}
		e := o.nEqOwned
		o.eq[nodeID][v] = e
		o.owner[e] = owningRank
		o.nEqOwned++
	}
}

// Eq returns the global equation number for (nodeID, varName).
func (o *Manager) Eq(nodeID int, varName string) (int, bool) {
	m, ok := o.eq[nodeID]
	if !ok {
		return 0, false
	}
	e, ok := m[varName]
	return e, ok
}

// MustEq is Eq but panics with an AssemblyError-flavoured message if the
// equation is missing, used by cell construction where a missing
// equation means an inconsistent index table.
func (o *Manager) MustEq(nodeID int, varName string) int {
	e, ok := o.Eq(nodeID, varName)
	if !ok {
		chk.Panic("dof: node %d has no equation for variable %q", nodeID, varName)
	}
	return e
}

// NEq returns the total number of owned equations numbered so far.
func (o *Manager) NEq() int { return o.nEqOwned }

// MarkStrongDirichlet records that eq is a strong (row-replacement)
// Dirichlet equation prescribed to value.
func (o *Manager) MarkStrongDirichlet(eq int, value float64) {
	o.dirichlet[eq] = value
}

// StrongDirichlet returns the prescribed value and whether eq is a strong
// Dirichlet row.
func (o *Manager) StrongDirichlet(eq int) (float64, bool) {
	v, ok := o.dirichlet[eq]
	return v, ok
}

// StrongDirichletEqs returns all strong-Dirichlet equation numbers,
// useful for the assembler's row-replacement pass.
func (o *Manager) StrongDirichletEqs() []int {
	eqs := make([]int, 0, len(o.dirichlet))
	for e := range o.dirichlet {
		eqs = append(eqs, e)
	}
	return eqs
}
