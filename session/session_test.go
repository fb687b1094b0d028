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

package session

import (
	"testing"

	"github.com/hikettei/tadashi/poly"
	"github.com/hikettei/tadashi/schedule"
	"github.com/hikettei/tadashi/transform"
)

type stubGenerator struct{}

func (stubGenerator) Generate(root schedule.Node, statements map[string]string) (string, error) {
	return "generated", nil
}

func oneDimBand(outputID string) *schedule.BandNode {
	partial := poly.MultiAff{
		InputDims: 1,
		OutputID:  outputID,
		Pieces:    []poly.Piece{{Domain: poly.Universe(), Outputs: []poly.Expr{poly.Ident(0)}}},
	}
	return schedule.NewBand(partial, true, schedule.Leaf())
}

func TestTransformCommitsLegalPrimitive(t *testing.T) {
	band := oneDimBand("i")
	s := NewSCoP("scop0", "original text", band, poly.Relation{}, map[string]string{"S": "body;"})
	sess := New(stubGenerator{})
	idx := sess.AddSCoP(s)

	ok, cursor, err := sess.Transform(idx, "tile", func(c schedule.Cursor) (schedule.Cursor, error) {
		return transform.Tile(c, 4)
	})
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	if !ok {
		t.Fatal("expected tile to commit")
	}
	if cursor.Node().Kind() != schedule.KindBand {
		t.Fatalf("expected band focus after tile, got %s", cursor.Node().Kind())
	}
	if !s.Dirty() {
		t.Fatal("expected scop to be dirty after a committed transform")
	}
}

func TestTransformRejectsIllegalPrimitive(t *testing.T) {
	band := &schedule.BandNode{
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
	// Direction (1,-1) under S(i,j) = (j,-i) gives delta (-1,-1), which is
	// lex-negative, so even a no-op scale of this band cannot commit.
	dep := poly.Relation{Edges: []poly.Edge{{Source: "S", Sink: "S", Direction: []int64{1, -1}}}}
	s := NewSCoP("scop0", "original text", band, dep, nil)
	sess := New(stubGenerator{})
	idx := sess.AddSCoP(s)

	before := s.Current()
	ok, _, err := sess.Transform(idx, "noop-scale", func(c schedule.Cursor) (schedule.Cursor, error) {
		return transform.Scale(c, 1)
	})
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	if ok {
		t.Fatal("expected commit to be rejected as illegal")
	}
	if s.Dirty() {
		t.Fatal("scop must not be marked dirty after a rejected commit")
	}
	if s.Current().Node() != before.Node() {
		t.Fatal("current cursor must be untouched after a rejected commit")
	}
}

func TestCommitRejectsParallelMarkWithNonzeroDelta(t *testing.T) {
	band := oneDimBand("i")
	// Direction (1) advances the dimension's own schedule by one -- a
	// non-negative (hence ordinarily legal) delta, but set_parallel
	// additionally requires a provably zero delta on any dimension it
	// marks Coincident.
	dep := poly.Relation{Edges: []poly.Edge{{Source: "S", Sink: "S", Direction: []int64{1}}}}
	s := NewSCoP("scop0", "original text", band, dep, nil)
	sess := New(stubGenerator{})
	idx := sess.AddSCoP(s)

	ok, _, err := sess.Transform(idx, "set_parallel", func(c schedule.Cursor) (schedule.Cursor, error) {
		return transform.SetParallel(c, 0)
	})
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	if ok {
		t.Fatal("expected set_parallel to be rejected: dimension 0 carries a nonzero dependence delta")
	}
}

func TestGenerateEmitsVerbatimWhenNotDirty(t *testing.T) {
	band := oneDimBand("i")
	s := NewSCoP("scop0", "verbatim-source", band, poly.Relation{}, nil)
	sess := New(stubGenerator{})
	sess.AddSCoP(s)

	text, err := sess.Generate()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if text != "verbatim-source" {
		t.Fatalf("expected verbatim source, got %q", text)
	}
}

func TestCommitChecksEveryBandInFusedTree(t *testing.T) {
	bandA := oneDimBand("s")
	bandB := oneDimBand("s")
	illegalBand := &schedule.BandNode{
		Partial: poly.MultiAff{
			InputDims: 1,
			OutputID:  "s",
			Pieces:    []poly.Piece{{Domain: poly.Universe(), Outputs: []poly.Expr{poly.Scale(poly.Ident(0), -1)}}},
		},
		Coincident: []bool{false},
		LoopTypes:  []schedule.LoopType{schedule.LoopDefault},
		Child:      schedule.Leaf(),
	}
	seq, err := schedule.NewSequence(
		schedule.NewFilter(poly.NewInstanceSet("A"), bandA),
		schedule.NewFilter(poly.NewInstanceSet("B"), bandB),
		schedule.NewFilter(poly.NewInstanceSet("C"), illegalBand),
	)
	if err != nil {
		t.Fatalf("build sequence: %v", err)
	}
	// Direction (1) advances statement C by one iteration; illegalBand's
	// schedule runs that dimension backwards, so the resulting delta is
	// negative and must reject the commit -- even though Fuse's own
	// post-transform cursor never lands on illegalBand itself.
	dep := poly.Relation{Edges: []poly.Edge{{Source: "C", Sink: "C", Direction: []int64{1}}}}
	s := NewSCoP("scop0", "original text", seq, dep, nil)
	sess := New(stubGenerator{})
	idx := sess.AddSCoP(s)

	ok, _, err := sess.Transform(idx, "fuse", func(c schedule.Cursor) (schedule.Cursor, error) {
		return transform.Fuse(c, 0, 1)
	})
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	if ok {
		t.Fatal("expected fuse to be rejected: sibling C carries an illegal schedule elsewhere in the tree")
	}
	if s.Dirty() {
		t.Fatal("scop must not be marked dirty after a rejected commit")
	}
}

func TestGenerateEmitsGeneratedWhenDirty(t *testing.T) {
	band := oneDimBand("i")
	s := NewSCoP("scop0", "verbatim-source", band, poly.Relation{}, nil)
	sess := New(stubGenerator{})
	idx := sess.AddSCoP(s)

	if _, _, err := sess.Transform(idx, "scale", func(c schedule.Cursor) (schedule.Cursor, error) {
		return transform.Scale(c, 2)
	}); err != nil {
		t.Fatalf("transform: %v", err)
	}

	text, err := sess.Generate()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if text != "generated" {
		t.Fatalf("expected generated text, got %q", text)
	}
}
