// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package param is the parameter manager: the scalar/stochastic/
// discretized parameter registry that feeds AD-seeded parameter values
// into assembly for sensitivity and adjoint passes, plus the
// regularization penalties used when calibrating discretized fields.
// Adapted from the teacher's inp/sim.go adjustable-parameter bookkeeping
// (Prm.Adj/Prm.Dep/Prm.D, append_adjustable_parameter, PrmAdjust/
// PrmGetAdj).
package param

import (
	"math"

	"github.com/cpmech/gofea/ad"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/rnd"
	"gonum.org/v1/gonum/stat"
)

// Kind distinguishes how a parameter enters the assembly pass.
type Kind int

const (
	Scalar       Kind = iota // one value shared by every cell it appears in
	Stochastic               // a scalar drawn from a probability distribution
	Discretized               // one value per node/dof, for field-valued parameters
)

// Parameter is one named quantity the coefficient manager may pull from
// during assembly, mirroring the teacher's fun.Prm (V, S, Min, Max, D,
// Adj, Dep) but generalized to the discretized case.
type Parameter struct {
	Name   string
	Kind   Kind
	Value  float64   // current value, for Scalar/Stochastic
	Nodal  []float64 // current values, for Discretized (one per dof)
	Active bool       // included in the current sensitivity/gradient pass
	Min    float64
	Max    float64
	DistName string // gosl/rnd distribution key, e.g. "normal", for Stochastic
	Std    float64
}

// Manager holds every registered parameter and assigns AD-seed slots to
// the active ones for the current assembly pass.
type Manager struct {
	byName map[string]*Parameter
	order  []string
}

// NewManager returns an empty parameter registry.
func NewManager() *Manager {
	return &Manager{byName: make(map[string]*Parameter)}
}

// AddScalar registers a plain scalar parameter.
func (o *Manager) AddScalar(name string, value float64) *Parameter {
	p := &Parameter{Name: name, Kind: Scalar, Value: value}
	o.add(p)
	return p
}

// AddStochastic registers a scalar parameter tagged with a named
// distribution (validated via gosl/rnd.GetDistribution), mean value and
// standard deviation. Value is set to the mean; nothing is sampled here.
func (o *Manager) AddStochastic(name, distName string, mean, std float64) *Parameter {
	rnd.GetDistribution(distName) // validates the distribution is registered
	p := &Parameter{Name: name, Kind: Stochastic, Value: mean, DistName: distName, Std: std}
	o.add(p)
	return p
}

// AddDiscretized registers a field-valued parameter with one value per
// dof.
func (o *Manager) AddDiscretized(name string, nodal []float64) *Parameter {
	p := &Parameter{Name: name, Kind: Discretized, Nodal: append([]float64(nil), nodal...)}
	o.add(p)
	return p
}

func (o *Manager) add(p *Parameter) {
	if _, exists := o.byName[p.Name]; exists {
		chk.Panic("param: %q already registered", p.Name)
	}
	o.byName[p.Name] = p
	o.order = append(o.order, p.Name)
}

// Get returns a registered parameter by name.
func (o *Manager) Get(name string) (*Parameter, bool) {
	p, ok := o.byName[name]
	return p, ok
}

// SetActive marks a subset of registered parameters as active for the
// current gradient/sensitivity pass; all others are treated as fixed
// constants during assembly.
func (o *Manager) SetActive(names ...string) {
	for _, p := range o.byName {
		p.Active = false
	}
	for _, n := range names {
		p, ok := o.byName[n]
		if !ok {
			chk.Panic("param: cannot activate unknown parameter %q", n)
		}
		p.Active = true
	}
}

// ActiveScalars returns the active Scalar/Stochastic parameters in
// registration order, the set whose AD width slots go into
// ele.Workset.NActiveParam.
func (o *Manager) ActiveScalars() []*Parameter {
	var out []*Parameter
	for _, n := range o.order {
		p := o.byName[n]
		if p.Active && p.Kind != Discretized {
			out = append(out, p)
		}
	}
	return out
}

// ActiveDiscretized returns the active Discretized parameters, whose
// combined nodal-dof count goes into ele.Workset.NParamDof.
func (o *Manager) ActiveDiscretized() []*Parameter {
	var out []*Parameter
	for _, n := range o.order {
		p := o.byName[n]
		if p.Active && p.Kind == Discretized {
			out = append(out, p)
		}
	}
	return out
}

// SeedScalars returns AD numbers for the active scalar parameters,
// seeded at consecutive derivative slots starting at firstSlot.
func SeedScalars(params []*Parameter, width, firstSlot int) []ad.Number {
	out := make([]ad.Number, len(params))
	for i, p := range params {
		out[i] = ad.Seed(width, firstSlot+i, p.Value)
	}
	return out
}

// Regularization kinds for discretized-parameter calibration penalties.
const (
	RegL1 = "l1"
	RegL2 = "l2"
	RegTV = "tv" // total variation, approximated as the sum of absolute differences between neighboring dofs
)

// Regularize evaluates a regularization penalty and its gradient with
// respect to p.Nodal, scaled by weight.
func Regularize(p *Parameter, kind string, weight float64) (penalty float64, grad []float64) {
	n := len(p.Nodal)
	grad = make([]float64, n)
	switch kind {
	case RegL1:
		for i, v := range p.Nodal {
			penalty += math.Abs(v)
			grad[i] = weight * sign(v)
		}
	case RegL2:
		mean := stat.Mean(p.Nodal, nil)
		for i, v := range p.Nodal {
			d := v - mean
			penalty += d * d
			grad[i] = weight * 2 * d
		}
	case RegTV:
		for i := 1; i < n; i++ {
			d := p.Nodal[i] - p.Nodal[i-1]
			penalty += math.Abs(d)
			grad[i] += weight * sign(d)
			grad[i-1] -= weight * sign(d)
		}
	default:
		chk.Panic("param: unknown regularization kind %q", kind)
	}
	penalty *= weight
	return
}

func sign(v float64) float64 {
	if v > 0 {
		return 1
	}
	if v < 0 {
		return -1
	}
	return 0
}
