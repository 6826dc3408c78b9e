// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"strings"

	"github.com/cpmech/gofea/inp"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/mpi"
)

func main() {

	verbose := true

	defer func() {
		if err := recover(); err != nil {
			if mpi.Rank() == 0 {
				chk.Verbose = true
				for i := 8; i > 3; i-- {
					chk.CallerInfo(i)
				}
				io.PfRed("ERROR: %v\n", err)
			}
		}
		mpi.Stop(false)
	}()
	mpi.Start(false)

	if mpi.Rank() == 0 {
		io.PfWhite("\ngofea -- multi-physics finite element assembly and adjoint engine\n\n")
	}

	flag.Parse()
	var fnamepath string
	if len(flag.Args()) > 0 {
		fnamepath = flag.Arg(0)
	} else {
		chk.Panic("please provide a settings file. Ex.: problem.json")
	}

	var settings *inp.Settings
	if strings.HasSuffix(fnamepath, ".yaml") || strings.HasSuffix(fnamepath, ".yml") {
		settings = inp.ReadYAML(fnamepath)
	} else {
		settings = inp.ReadJSON(fnamepath)
	}

	if mpi.Rank() == 0 {
		io.Pf("loaded settings %q: %d physics block(s), dt=%v tf=%v\n",
			settings.Key, len(settings.Physics), settings.Solver.Dt, settings.Solver.Tf)
	}

	if verbose && mpi.Rank() == 0 {
		io.Pf("run wiring (mesh loading, block/physics assembly, time stepping) is assembled per-case by the caller embedding this engine; see solver, asm and multiscale for the programmatic entry points.\n")
	}
}
