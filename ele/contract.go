// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ele

import "github.com/cpmech/gosl/chk"

// Module is the uniform contract every physics variant obeys.
// A Module instance is bound to one block and one Workset for its whole
// lifetime; it never allocates global state.
type Module interface {

	// SetVars records the index of each variable this module uses within
	// the workset's per-block variable list, and detects any optional
	// coupled variables (e.g. a velocity field).
	SetVars(names []string) error

	// VolumeResidual accumulates into workset.Res the local weak-form
	// contribution over the block's volume quadrature.
	VolumeResidual(w *Workset) error

	// BoundaryResidual accumulates boundary contributions (weak
	// Dirichlet / Neumann / Robin) for the side currently set on w.Side.
	BoundaryResidual(w *Workset) error

	// ComputeFlux produces the outward numerical flux on a multiscale
	// interface side, using w.Aux as the mortar trace.
	ComputeFlux(w *Workset) error
}

// AssemblyErrorKind enumerates the AssemblyError sub-kinds a physics
// module may raise.
type AssemblyErrorKind int

const (
	ErrMissingCoefficient AssemblyErrorKind = iota
	ErrUnsupportedDimension
	ErrInconsistentVariables
	ErrDerivativeCountExceeded
	ErrIndexSizeMismatch
)

// AssemblyError is the error type physics modules and the assembler raise
// to report a classified assembly failure.
type AssemblyError struct {
	Kind AssemblyErrorKind
	Msg  string
}

func (e *AssemblyError) Error() string { return e.Msg }

func newAssemblyError(kind AssemblyErrorKind, format string, args ...interface{}) error {
	return &AssemblyError{Kind: kind, Msg: chk.Err(format, args...).Error()}
}

// ErrMissingCoef returns a ConfigError-flavoured AssemblyError for a
// missing required coefficient function.
func ErrMissingCoef(name string) error {
	return newAssemblyError(ErrMissingCoefficient, "missing required coefficient function %q", name)
}

// ErrUnsupportedDim returns an AssemblyError for a dimension this module
// cannot handle.
func ErrUnsupportedDim(ndim int) error {
	return newAssemblyError(ErrUnsupportedDimension, "unsupported space dimension %d", ndim)
}

// ErrInconsistentVars returns an AssemblyError for a declared-but-unused
// or otherwise inconsistent variable list.
func ErrInconsistentVars(msg string, args ...interface{}) error {
	return newAssemblyError(ErrInconsistentVariables, msg, args...)
}

// Allocator builds a Module bound to a block. Every call it receives
// afterwards passes its own Workset explicitly (volume, boundary and
// flux calls all take w *Workset), so a Module never needs to retain
// one itself; SetVars resolves variable slots from the names slice it
// is given directly.
type Allocator func(block int) (Module, error)

var allocators = make(map[string]Allocator)

// RegisterAllocator installs a factory function keyed by physics module
// name.
// Re-registering an existing name is a programming error.
func RegisterAllocator(name string, fn Allocator) {
	if _, exists := allocators[name]; exists {
		chk.Panic("ele: allocator for %q already registered", name)
	}
	allocators[name] = fn
}

// New allocates a physics module by name for the given block.
func New(name string, block int) (Module, error) {
	fn, ok := allocators[name]
	if !ok {
		return nil, chk.Err("ele: unknown physics module %q", name)
	}
	return fn(block)
}

// Registered reports whether a physics module name has an allocator.
func Registered(name string) bool {
	_, ok := allocators[name]
	return ok
}
