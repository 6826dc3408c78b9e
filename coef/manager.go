// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package coef implements the function manager: user coefficients
// ("thermal source", "thermal diffusion", "density", ...) are registered
// once per (name, location, block) and evaluated at quadrature points,
// returning AD fields so that any solution- or parameter-dependence
// automatically propagates derivatives into the assembler.
package coef

import (
	"fmt"

	"github.com/cpmech/gofea/ad"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
)

// Location distinguishes volume quadrature points from side (boundary)
// quadrature points; some coefficients are only meaningful at one or the
// other (e.g. a Robin α is side-only).
type Location int

const (
	AtVolumeIp Location = iota
	AtSideIp
)

// Context carries everything a coefficient node may read while evaluating
// at one quadrature point.
type Context struct {
	T      float64   // current time
	X      []float64 // real coordinates of the quadrature point
	U      ad.Number // solution value at the point, already AD-seeded by the caller
	GradU  []ad.Number // solution gradient at the point
	Params map[string]ad.Number // active/discretized parameter values visible here
}

// Node is one coefficient function in the DAG. DependsOn names other
// registered nodes that must be evaluated first; Eval receives their
// already-evaluated values keyed by name.
type Node struct {
	Name       string
	DependsOn  []string
	Eval       func(ctx Context, deps map[string]ad.Number) (ad.Number, error)
}

// key identifies one registration slot.
type key struct {
	name  string
	loc   Location
	block int
}

// Manager owns the registered coefficient DAG and a precomputed
// topological evaluation order per (name, location, block).
type Manager struct {
	nodes map[key]*Node
	order map[key][]string // topological order of dependency closure, including the node itself last
	all   map[int]map[string]*Node // block -> name -> last node registered under that name at any location; the fallback of lookup
}

// NewManager returns an empty function manager.
func NewManager() *Manager {
	return &Manager{
		nodes: make(map[key]*Node),
		order: make(map[key][]string),
		all:   make(map[int]map[string]*Node),
	}
}

// Register records a coefficient node for a given (name, location, block).
// Registration happens once; re-registering the same key is a ConfigError.
func (o *Manager) Register(block int, loc Location, node *Node) error {
	k := key{node.Name, loc, block}
	if _, exists := o.nodes[k]; exists {
		return chk.Err("coef: coefficient %q already registered for block %d", node.Name, block)
	}
	o.nodes[k] = node
	if o.all[block] == nil {
		o.all[block] = make(map[string]*Node)
	}
	o.all[block][node.Name] = node
	return nil
}

// RegisterConstant is a convenience wrapper for a coefficient that does
// not depend on the solution: a plain float64 value.
func (o *Manager) RegisterConstant(block int, loc Location, name string, value float64) error {
	return o.Register(block, loc, &Node{
		Name: name,
		Eval: func(ctx Context, deps map[string]ad.Number) (ad.Number, error) {
			return ad.New(ctx.U.Width, value), nil
		},
	})
}

// RegisterParam wraps a named entry of Context.Params as a coefficient
// node, so a physics module can pull a calibratable parameter (scalar,
// stochastic, or one dof of a discretized field) the same way it pulls
// any other coefficient, with its AD derivative columns flowing through
// untouched.
func (o *Manager) RegisterParam(block int, loc Location, name, paramKey string) error {
	return o.Register(block, loc, &Node{
		Name: name,
		Eval: func(ctx Context, deps map[string]ad.Number) (ad.Number, error) {
			v, ok := ctx.Params[paramKey]
			if !ok {
				return ad.Number{}, chk.Err("coef: parameter %q not present in context for %q", paramKey, name)
			}
			return v, nil
		},
	})
}

// RegisterTimeSpace wraps a gosl/fun.Func (time+space expression, no
// solution dependence) as a coefficient node.
func (o *Manager) RegisterTimeSpace(block int, loc Location, name string, f fun.Func) error {
	return o.Register(block, loc, &Node{
		Name: name,
		Eval: func(ctx Context, deps map[string]ad.Number) (ad.Number, error) {
			return ad.New(ctx.U.Width, f.F(ctx.T, ctx.X)), nil
		},
	})
}

// Prepare computes and caches the topological evaluation order for
// (name, location, block), so that repeated Eval calls (once per
// quadrature point) are a single linear sweep rather than a fresh DFS.
func (o *Manager) Prepare(block int, loc Location, name string) error {
	k := key{name, loc, block}
	if _, ok := o.order[k]; ok {
		return nil
	}
	visited := make(map[string]bool)
	visiting := make(map[string]bool)
	var order []string
	var visit func(n string) error
	visit = func(n string) error {
		if visited[n] {
			return nil
		}
		if visiting[n] {
			return chk.Err("coef: cyclic dependency detected at %q", n)
		}
		visiting[n] = true
		node, ok := o.lookup(block, loc, n)
		if !ok {
			return chk.Err("coef: missing required coefficient %q in block %d", n, block)
		}
		for _, dep := range node.DependsOn {
			if err := visit(dep); err != nil {
				return err
			}
		}
		visiting[n] = false
		visited[n] = true
		order = append(order, n)
		return nil
	}
	if err := visit(name); err != nil {
		return err
	}
	o.order[k] = order
	return nil
}

// Eval evaluates the coefficient named `name` at one quadrature point,
// running its full dependency closure in topological order. Returns
// ConfigError-shaped errors (via chk.Err) if a required coefficient was
// never registered for this block.
func (o *Manager) Eval(block int, loc Location, name string, ctx Context) (ad.Number, error) {
	if err := o.Prepare(block, loc, name); err != nil {
		return ad.Number{}, err
	}
	k := key{name, loc, block}
	values := make(map[string]ad.Number, len(o.order[k]))
	for _, n := range o.order[k] {
		node, _ := o.lookup(block, loc, n)
		v, err := node.Eval(ctx, values)
		if err != nil {
			return ad.Number{}, fmt.Errorf("coef: evaluating %q: %w", n, err)
		}
		values[n] = v
	}
	return values[name], nil
}

// lookup resolves name within block: the node registered at loc if there
// is one, otherwise the block's node of that name registered at any
// location.
func (o *Manager) lookup(block int, loc Location, name string) (*Node, bool) {
	if node, ok := o.nodes[key{name, loc, block}]; ok {
		return node, true
	}
	node, ok := o.all[block][name]
	return node, ok
}

// Has reports whether a coefficient is registered for this block/location.
func (o *Manager) Has(block int, loc Location, name string) bool {
	_, ok := o.nodes[key{name, loc, block}]
	return ok
}
