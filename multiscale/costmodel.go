// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package multiscale

import "gonum.org/v1/gonum/stat"

// SubgridCost is one subgrid's share of work for one outer iteration:
// cell count times the Newton iterations it took, a cheap proxy for
// wall-clock cost without instrumenting the solver itself.
type SubgridCost struct {
	Name        string
	NCells      int
	NewtonIters int
}

// CostReport summarizes a batch of subgrid costs for load-balancing
// decisions: which subgrids to split or merge before the next outer
// iteration.
type CostReport struct {
	Mean           float64
	StdDev         float64
	ImbalanceFactor float64 // max cost / mean cost; 1 is perfectly balanced
	Heaviest       string
}

// Report computes the load-imbalance statistics for a set of subgrid
// costs.
func Report(costs []SubgridCost) CostReport {
	if len(costs) == 0 {
		return CostReport{}
	}
	vals := make([]float64, len(costs))
	var maxVal float64
	var heaviest string
	for i, c := range costs {
		v := float64(c.NCells * c.NewtonIters)
		vals[i] = v
		if v > maxVal {
			maxVal = v
			heaviest = c.Name
		}
	}
	mean := stat.Mean(vals, nil)
	std := stat.StdDev(vals, nil)
	factor := 1.0
	if mean > 0 {
		factor = maxVal / mean
	}
	return CostReport{Mean: mean, StdDev: std, ImbalanceFactor: factor, Heaviest: heaviest}
}
