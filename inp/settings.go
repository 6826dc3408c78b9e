// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package inp is the settings tree: the hierarchical Mesh/Solver/
// Physics/Functions/Parameters/Postprocess configuration loaded from a
// JSON or YAML file, following the teacher's inp/sim.go Simulation
// struct (json-tagged, ReadSim's load/default/derive sequence) extended
// with yaml tags and a YAML-loading path for the gopkg.in/yaml.v3
// alternate encoder.
package inp

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"gopkg.in/yaml.v3"
)

// MeshData points at an externally-produced mesh; parsing mesh files
// themselves is out of scope here, so this is an opaque path plus a
// format tag a caller's own mesh reader resolves.
type MeshData struct {
	File    string `json:"file" yaml:"file"`
	Format  string `json:"format" yaml:"format"` // e.g. "msh", "vtu"
	Remesh  bool   `json:"remesh" yaml:"remesh"` // enable the no-op remesh hook
}

// SolverData mirrors the teacher's Solver sub-struct (NmaxIt/FbTol/FbMin)
// plus the time-stepping and linear-solve knobs this engine adds.
type SolverData struct {
	NMaxIt     int     `json:"nmaxit" yaml:"nmaxit"`
	FbTol      float64 `json:"fbtol" yaml:"fbtol"`
	FbMin      float64 `json:"fbmin" yaml:"fbmin"`
	DuTol      float64 `json:"dutol" yaml:"dutol"`
	BdfOrder   int     `json:"bdforder" yaml:"bdforder"`
	Dt         float64 `json:"dt" yaml:"dt"`
	Tf         float64 `json:"tf" yaml:"tf"`
	LinSol     string  `json:"linsol" yaml:"linsol"` // "umfpack" or "mumps"
	Symmetric  bool    `json:"symmetric" yaml:"symmetric"`
	Restart    int     `json:"restart" yaml:"restart"`
	LinMaxIter int     `json:"linmaxiter" yaml:"linmaxiter"`
}

// SetDefault fills unset SolverData fields with the teacher-style
// conservative defaults.
func (o *SolverData) SetDefault() {
	if o.NMaxIt == 0 {
		o.NMaxIt = 20
	}
	if o.FbTol == 0 {
		o.FbTol = 1e-10
	}
	if o.FbMin == 0 {
		o.FbMin = 1e-14
	}
	if o.DuTol == 0 {
		o.DuTol = 1e-12
	}
	if o.BdfOrder == 0 {
		o.BdfOrder = 1
	}
	if o.LinSol == "" {
		o.LinSol = "umfpack"
	}
	if o.Restart == 0 {
		o.Restart = 30
	}
	if o.LinMaxIter == 0 {
		o.LinMaxIter = 500
	}
}

// PhysicsBlock names one element block's physics module and variables.
type PhysicsBlock struct {
	ID       int      `json:"id" yaml:"id"`
	Module   string   `json:"module" yaml:"module"` // registered ele.Allocator name, e.g. "diffusion"
	VarNames []string `json:"vars" yaml:"vars"`
	NGauss   int      `json:"ngauss" yaml:"ngauss"`
}

// FunctionData describes one named time/space function handed to
// coef.Manager.RegisterTimeSpace, matching the teacher's fun.Prm shape.
type FunctionData struct {
	Name string             `json:"name" yaml:"name"`
	Type string             `json:"type" yaml:"type"` // gosl/fun.Func type key, e.g. "cte", "lin"
	Prms []map[string]float64 `json:"prms" yaml:"prms"`
}

// ParameterData describes one registered param.Parameter.
type ParameterData struct {
	Name     string  `json:"name" yaml:"name"`
	Kind     string  `json:"kind" yaml:"kind"` // "scalar", "stochastic", "discretized"
	Value    float64 `json:"value" yaml:"value"`
	DistName string  `json:"dist" yaml:"dist"`
	Std      float64 `json:"std" yaml:"std"`
	Active   bool    `json:"active" yaml:"active"`
}

// PostprocessData controls the plain-text sensitivity dump and other
// lightweight reporting this engine performs on its own, without a
// plotting/visualization dependency.
type PostprocessData struct {
	SensFile string `json:"sensfile" yaml:"sensfile"`
}

// Settings is the root of the configuration tree.
type Settings struct {
	Desc       string           `json:"desc" yaml:"desc"`
	DirOut     string           `json:"dirout" yaml:"dirout"`
	Mesh       MeshData         `json:"mesh" yaml:"mesh"`
	Solver     SolverData       `json:"solver" yaml:"solver"`
	Physics    []PhysicsBlock   `json:"physics" yaml:"physics"`
	Functions  []FunctionData   `json:"functions" yaml:"functions"`
	Parameters []ParameterData  `json:"parameters" yaml:"parameters"`
	Postprocess PostprocessData `json:"postprocess" yaml:"postprocess"`

	Key string `json:"-" yaml:"-"` // filename key, derived at load time
}

// ReadJSON reads a Settings tree from a JSON file, following the
// teacher's ReadSim sequence: read bytes, set defaults, unmarshal,
// derive the key/output directory.
func ReadJSON(path string) *Settings {
	var o Settings
	b, err := io.ReadFile(path)
	if err != nil {
		chk.Panic("inp: cannot read settings file %q", path)
	}
	o.Solver.SetDefault()
	if err := json.Unmarshal(b, &o); err != nil {
		chk.Panic("inp: cannot unmarshal settings file %q: %v", path, err)
	}
	o.finish(path)
	return &o
}

// ReadYAML reads a Settings tree from a YAML file, the alternate encoder
// path wired alongside the teacher's JSON format.
func ReadYAML(path string) *Settings {
	var o Settings
	b, err := io.ReadFile(path)
	if err != nil {
		chk.Panic("inp: cannot read settings file %q", path)
	}
	o.Solver.SetDefault()
	if err := yaml.Unmarshal(b, &o); err != nil {
		chk.Panic("inp: cannot unmarshal settings file %q: %v", path, err)
	}
	o.finish(path)
	return &o
}

func (o *Settings) finish(path string) {
	fn := filepath.Base(path)
	o.Key = io.FnKey(fn)
	if o.DirOut == "" {
		o.DirOut = filepath.Join(os.TempDir(), "gofea", o.Key)
	}
}
