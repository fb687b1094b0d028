// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package legality implements the schedule legality oracle: given a
// candidate schedule and a may-dependence relation, decide whether the
// schedule preserves every dependence, and (as a narrower question)
// whether a single band dimension may be marked parallel.
package legality

import (
	"github.com/hikettei/tadashi/poly"
	"github.com/hikettei/tadashi/schedule"
)

// Result is the outcome of a legality check: whether the schedule is
// legal, and the delta set computed along the way (surfaced for the
// driver's introspection and for tests that assert on the offending
// delta).
type Result struct {
	Legal bool
	Delta [][]int64
}

// Check decides legality: if dep is empty, legal; otherwise compose the
// schedule with each dependence edge's direction and reject if any
// resulting delta is lexicographically negative.
func Check(band *schedule.BandNode, dep poly.Relation) Result {
	if dep.Empty() {
		return Result{Legal: true}
	}
	deltas := make([][]int64, 0, len(dep.Edges))
	legal := true
	for _, e := range dep.Edges {
		d, ok := band.Partial.Delta(e.Direction)
		if !ok {
			continue
		}
		deltas = append(deltas, d)
		if poly.LexNegative(d) {
			legal = false
		}
	}
	return Result{Legal: legal, Delta: deltas}
}

// CheckParallel implements the parallel variant: band dimension dim may
// be marked parallel iff no dependence has a nonzero component at that
// dimension.
func CheckParallel(band *schedule.BandNode, dep poly.Relation, dim int) bool {
	if dep.Empty() {
		return true
	}
	for _, e := range dep.Edges {
		d, ok := band.Partial.Delta(e.Direction)
		if !ok {
			continue
		}
		if dim < len(d) && d[dim] != 0 {
			return false
		}
	}
	return true
}

// CheckTree extends Check to every Band in the schedule rooted at root,
// not just one focused node: a candidate schedule is legal only if every
// band in the tree carries a non-negative delta against dep, and every
// band dimension already marked Coincident additionally passes the
// stricter CheckParallel test (a coincident dimension must carry a
// provably zero delta, not merely a non-negative one). This is what the
// session manager's commit step consults, since a transformation such as
// Tile or Fuse can change or introduce bands anywhere in the tree, not
// only at the cursor's focus.
func CheckTree(root schedule.Node, dep poly.Relation) Result {
	all := Result{Legal: true}
	for _, b := range schedule.Bands(root) {
		r := Check(b, dep)
		all.Delta = append(all.Delta, r.Delta...)
		if !r.Legal {
			all.Legal = false
		}
		for dim, coincident := range b.Coincident {
			if coincident && !CheckParallel(b, dep, dim) {
				all.Legal = false
			}
		}
	}
	return all
}
