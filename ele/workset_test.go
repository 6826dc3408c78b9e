// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ele

import (
	"testing"

	"github.com/cpmech/gofea/ad"
	"github.com/cpmech/gofea/coef"
)

func TestWorksetResetWidth(tst *testing.T) {
	w := NewWorkset(0, coef.NewManager())
	if err := w.Reset(4, 1, 0); err != nil {
		tst.Fatalf("Reset(4,1,0) failed: %v", err)
	}
	if w.Width != 5 {
		tst.Fatalf("Width = %d, want 5", w.Width)
	}
	if len(w.Res) != 4 {
		tst.Fatalf("len(Res) = %d, want 4", len(w.Res))
	}
	for _, r := range w.Res {
		if r.Val != 0 || r.Width != 5 {
			tst.Fatalf("Res entry not cleared to width 5: %+v", r)
		}
	}
}

func TestWorksetResetOverflow(tst *testing.T) {
	w := NewWorkset(0, coef.NewManager())
	err := w.Reset(ad.MaxWidth, 1, 0)
	if err == nil {
		tst.Fatalf("Reset should fail when requested width exceeds ad.MaxWidth")
	}
	ae, ok := err.(*AssemblyError)
	if !ok || ae.Kind != ErrDerivativeCountExceeded {
		tst.Fatalf("expected ErrDerivativeCountExceeded AssemblyError, got %#v", err)
	}
}

func TestWorksetParamMap(tst *testing.T) {
	w := NewWorkset(0, coef.NewManager())
	w.ParamNames = []string{"kappa", "rho"}
	w.Param = []ad.Number{ad.New(2, 3.0), ad.New(2, 7.0)}
	m := w.ParamMap()
	if m["kappa"].Val != 3 || m["rho"].Val != 7 {
		tst.Fatalf("ParamMap = %v, want kappa=3 rho=7", m)
	}
}
