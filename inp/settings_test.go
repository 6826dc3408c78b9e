// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleJSON = `{
  "desc": "two-block steady diffusion",
  "mesh": {"file": "bar.msh", "format": "msh"},
  "solver": {"dt": 0.1, "tf": 1.0},
  "physics": [{"id": 0, "module": "diffusion", "vars": ["u"], "ngauss": 2}],
  "functions": [{"name": "src", "type": "cte", "prms": [{"v": 0}]}],
  "parameters": [{"name": "kappa", "kind": "scalar", "value": 1.5, "active": true}]
}`

const sampleYAML = `
desc: two-block steady diffusion
mesh:
  file: bar.msh
  format: msh
solver:
  dt: 0.1
  tf: 1.0
physics:
  - id: 0
    module: diffusion
    vars: [u]
    ngauss: 2
parameters:
  - name: kappa
    kind: scalar
    value: 1.5
    active: true
`

func writeTemp(tst *testing.T, name, content string) string {
	dir := tst.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		tst.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestReadJSON(tst *testing.T) {
	path := writeTemp(tst, "bar.json", sampleJSON)
	s := ReadJSON(path)

	if s.Desc != "two-block steady diffusion" {
		tst.Fatalf("Desc = %q", s.Desc)
	}
	if s.Mesh.File != "bar.msh" || s.Mesh.Format != "msh" {
		tst.Fatalf("Mesh = %+v", s.Mesh)
	}
	if len(s.Physics) != 1 || s.Physics[0].Module != "diffusion" {
		tst.Fatalf("Physics = %+v", s.Physics)
	}
	if len(s.Parameters) != 1 || s.Parameters[0].Value != 1.5 {
		tst.Fatalf("Parameters = %+v", s.Parameters)
	}

	// defaults filled in by SolverData.SetDefault, not overridden by the sample
	if s.Solver.NMaxIt != 20 || s.Solver.FbTol != 1e-10 || s.Solver.LinSol != "umfpack" {
		tst.Fatalf("Solver defaults not applied: %+v", s.Solver)
	}
	// overridden by the sample
	if s.Solver.Dt != 0.1 || s.Solver.Tf != 1.0 {
		tst.Fatalf("Solver.Dt/Tf = %v/%v, want 0.1/1.0", s.Solver.Dt, s.Solver.Tf)
	}

	if s.Key == "" || strings.Contains(s.Key, ".") {
		tst.Fatalf("Key = %q, want a bare filename key", s.Key)
	}
	if s.DirOut == "" {
		tst.Fatalf("DirOut should default when unset")
	}
}

func TestReadYAML(tst *testing.T) {
	path := writeTemp(tst, "bar.yaml", sampleYAML)
	s := ReadYAML(path)

	if s.Desc != "two-block steady diffusion" {
		tst.Fatalf("Desc = %q", s.Desc)
	}
	if len(s.Physics) != 1 || s.Physics[0].Module != "diffusion" || s.Physics[0].NGauss != 2 {
		tst.Fatalf("Physics = %+v", s.Physics)
	}
	if len(s.Parameters) != 1 || s.Parameters[0].Name != "kappa" || !s.Parameters[0].Active {
		tst.Fatalf("Parameters = %+v", s.Parameters)
	}
	if s.Solver.NMaxIt != 20 {
		tst.Fatalf("Solver default NMaxIt = %d, want 20", s.Solver.NMaxIt)
	}
}

func TestSolverDataSetDefaultDoesNotOverride(tst *testing.T) {
	sd := SolverData{NMaxIt: 5, FbTol: 1e-3}
	sd.SetDefault()
	if sd.NMaxIt != 5 || sd.FbTol != 1e-3 {
		tst.Fatalf("SetDefault overrode explicit values: %+v", sd)
	}
	if sd.FbMin == 0 || sd.LinSol == "" {
		tst.Fatalf("SetDefault left zero-value fields unset: %+v", sd)
	}
}
