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

package legality

import (
	"testing"

	"github.com/hikettei/tadashi/poly"
	"github.com/hikettei/tadashi/schedule"
)

func twoDimBand() *schedule.BandNode {
	partial := poly.MultiAff{
		InputDims: 2,
		OutputID:  "ij",
		Pieces: []poly.Piece{{
			Domain:  poly.Universe(),
			Outputs: []poly.Expr{poly.Ident(0), poly.Ident(1)},
		}},
	}
	return schedule.NewBand(partial, true, schedule.Leaf())
}

func TestCheckEmptyDependenceIsLegal(t *testing.T) {
	b := twoDimBand()
	r := Check(b, poly.Relation{})
	if !r.Legal {
		t.Fatal("empty dependence relation must always be legal")
	}
}

func TestCheckRejectsBackwardDependence(t *testing.T) {
	// A dependence (i,j) -> (i+1,j-1), direction (1,-1). Under a
	// schedule that interchanges and negates the second dimension,
	// S(i,j) = (j,-i), the resulting schedule-space delta is (-1,-1) --
	// lex-negative, so the candidate must be rejected.
	b := &schedule.BandNode{
		Partial: poly.MultiAff{
			InputDims: 2,
			OutputID:  "ji",
			Pieces: []poly.Piece{{
				Domain:  poly.Universe(),
				Outputs: []poly.Expr{poly.Ident(1), poly.Scale(poly.Ident(0), -1)},
			}},
		},
		Coincident: []bool{false, false},
		LoopTypes:  []schedule.LoopType{schedule.LoopDefault, schedule.LoopDefault},
		Child:      schedule.Leaf(),
	}
	dep := poly.Relation{Edges: []poly.Edge{{Source: "S", Sink: "S", Direction: []int64{1, -1}}}}
	r := Check(b, dep)
	if r.Legal {
		t.Fatal("expected schedule to be rejected as illegal")
	}
	if len(r.Delta) != 1 || r.Delta[0][0] != -1 || r.Delta[0][1] != -1 {
		t.Fatalf("expected delta (-1,-1), got %v", r.Delta)
	}
	if !poly.LexNegative(r.Delta[0]) {
		t.Fatal("delta (-1,-1) should be lexicographically negative")
	}
}

func TestCheckParallelInner(t *testing.T) {
	// matmul-like: dependence only on dimension 0 (the accumulator
	// direction), never on dimension 1 -- dimension 1 may be parallel.
	b := twoDimBand()
	dep := poly.Relation{Edges: []poly.Edge{{Source: "S", Sink: "S", Direction: []int64{1, 0}}}}
	if !CheckParallel(b, dep, 1) {
		t.Fatal("dimension 1 should be parallelizable")
	}
	if CheckParallel(b, dep, 0) {
		t.Fatal("dimension 0 carries the dependence and must not be parallelizable")
	}
}

func TestCacheMemoizes(t *testing.T) {
	b := twoDimBand()
	dep := poly.Relation{}
	c := NewCache(1, 2)
	c.Check(b, dep)
	c.Check(b, dep)
	if c.Len() != 1 {
		t.Fatalf("expected one memoized entry, got %d", c.Len())
	}
}
