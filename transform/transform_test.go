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

package transform

import (
	"testing"

	"github.com/hikettei/tadashi/poly"
	"github.com/hikettei/tadashi/schedule"
)

func oneDimBand(outputID string, child schedule.Node) *schedule.BandNode {
	partial := poly.MultiAff{
		InputDims: 1,
		OutputID:  outputID,
		Pieces:    []poly.Piece{{Domain: poly.Universe(), Outputs: []poly.Expr{poly.Ident(0)}}},
	}
	return schedule.NewBand(partial, true, child)
}

func TestTileInversionProperty(t *testing.T) {
	band := oneDimBand("i", schedule.Leaf())
	c := schedule.NewCursor(band)

	tiled, err := Tile(c, 4)
	if err != nil {
		t.Fatalf("tile: %v", err)
	}
	if tiled.Node().Kind() != schedule.KindBand {
		t.Fatalf("expected band focus after tile, got %s", tiled.Node().Kind())
	}
	inner, ok := tiled.Node().(*schedule.BandNode).Child.(*schedule.BandNode)
	if !ok {
		t.Fatalf("expected a band child after tile")
	}
	if inner.Dims() != 1 {
		t.Fatalf("expected 1-D inner band, got %d dims", inner.Dims())
	}

	densified, err := Densify(tiled, 4)
	if err != nil {
		t.Fatalf("densify: %v", err)
	}
	db := densified.Node().(*schedule.BandNode)
	for _, x := range []int64{0, 1, 3, 4, 5, 7, 8, 17} {
		got := db.Partial.Pieces[0].Outputs[0].Eval([]int64{x})
		if got != x {
			t.Fatalf("tile+densify did not recover identity at c0=%d: got %d", x, got)
		}
	}
}

func TestInterchangeInvolution(t *testing.T) {
	inner := oneDimBand("j", schedule.Leaf())
	outer := oneDimBand("i", inner)
	c := schedule.NewCursor(outer)

	once, err := Interchange(c)
	if err != nil {
		t.Fatalf("interchange: %v", err)
	}
	twice, err := Interchange(once)
	if err != nil {
		t.Fatalf("interchange again: %v", err)
	}

	origBand := c.Node().(*schedule.BandNode)
	gotBand := twice.Node().(*schedule.BandNode)
	if !poly.Equal(origBand.Partial.Pieces[0].Outputs[0], gotBand.Partial.Pieces[0].Outputs[0]) {
		t.Fatalf("interchange twice did not restore original outer schedule")
	}
}

func TestFuseTwoCompatibleLoops(t *testing.T) {
	bandA := oneDimBand("s", schedule.Leaf())
	bandB := oneDimBand("s", schedule.Leaf())
	seq, err := schedule.NewSequence(
		schedule.NewFilter(poly.NewInstanceSet("A"), bandA),
		schedule.NewFilter(poly.NewInstanceSet("B"), bandB),
	)
	if err != nil {
		t.Fatalf("build sequence: %v", err)
	}
	c := schedule.NewCursor(seq)

	fused, err := Fuse(c, 0, 1)
	if err != nil {
		t.Fatalf("fuse: %v", err)
	}
	s := fused.Node().(*schedule.SequenceNode)
	if len(s.Kids) != 1 {
		t.Fatalf("expected one fused child, got %d", len(s.Kids))
	}
	f := s.Kids[0].(*schedule.FilterNode)
	if !poly.SetEqual(f.Stmts, poly.NewInstanceSet("A", "B")) {
		t.Fatalf("fused filter should cover both statements, got %v", f.Stmts.Sorted())
	}
	fb, ok := f.Child.(*schedule.BandNode)
	if !ok {
		t.Fatalf("expected band under fused filter")
	}
	inner, ok := fb.Child.(*schedule.SequenceNode)
	if !ok || len(inner.Kids) != 2 {
		t.Fatalf("expected inner sequence preserving both original bodies")
	}
}

func TestSplitUndoesFuse(t *testing.T) {
	bandA := oneDimBand("s", schedule.Leaf())
	bandB := oneDimBand("s", schedule.Leaf())
	seq, err := schedule.NewSequence(
		schedule.NewFilter(poly.NewInstanceSet("A"), bandA),
		schedule.NewFilter(poly.NewInstanceSet("B"), bandB),
	)
	if err != nil {
		t.Fatalf("build sequence: %v", err)
	}
	c := schedule.NewCursor(seq)
	fused, err := Fuse(c, 0, 1)
	if err != nil {
		t.Fatalf("fuse: %v", err)
	}
	fusedFilterCursor, err := fused.Child(0)
	if err != nil {
		t.Fatalf("descend to fused filter: %v", err)
	}
	split, err := Split(fusedFilterCursor, poly.NewInstanceSet("A"), poly.NewInstanceSet("B"))
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	newFilter := split.Node().(*schedule.FilterNode)
	if !poly.SetEqual(newFilter.Stmts, poly.NewInstanceSet("A", "B")) {
		t.Fatalf("split should preserve the outer filter's statement set")
	}
	seqAfter, ok := newFilter.Child.(*schedule.SequenceNode)
	if !ok || len(seqAfter.Kids) != 2 {
		t.Fatalf("split should produce two filter children")
	}
}

func TestCompleteFuseStopsAtFirstIllegalPair(t *testing.T) {
	bandA := oneDimBand("s", schedule.Leaf())
	bandB := oneDimBand("s", schedule.Leaf())
	bandC := oneDimBand("s", schedule.Leaf())
	seq, err := schedule.NewSequence(
		schedule.NewFilter(poly.NewInstanceSet("A"), bandA),
		schedule.NewFilter(poly.NewInstanceSet("B"), bandB),
		schedule.NewFilter(poly.NewInstanceSet("C"), bandC),
	)
	if err != nil {
		t.Fatalf("build sequence: %v", err)
	}
	c := schedule.NewCursor(seq)

	calls := 0
	result, err := CompleteFuse(c, func(b *schedule.BandNode) bool {
		calls++
		return calls == 1
	})
	if err != nil {
		t.Fatalf("complete_fuse: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected legalCheck consulted for exactly 2 pairings (one accepted, one rejected), got %d", calls)
	}
	s, ok := result.Node().(*schedule.SequenceNode)
	if !ok || len(s.Kids) != 2 {
		t.Fatalf("expected the first pairing fused and the third sibling left alone, got %#v", result.Node())
	}
	first := s.Kids[0].(*schedule.FilterNode)
	if !poly.SetEqual(first.Stmts, poly.NewInstanceSet("A", "B")) {
		t.Fatalf("expected A and B fused first, got %v", first.Stmts.Sorted())
	}
	second := s.Kids[1].(*schedule.FilterNode)
	if !poly.SetEqual(second.Stmts, poly.NewInstanceSet("C")) {
		t.Fatalf("expected C left unfused once legalCheck rejected the second pairing, got %v", second.Stmts.Sorted())
	}
}

func TestShiftValueThenNegate(t *testing.T) {
	band := oneDimBand("i", schedule.Leaf())
	c := schedule.NewCursor(band)

	shifted, err := PartialShiftVal(c, 0, 5)
	if err != nil {
		t.Fatalf("shift +5: %v", err)
	}
	back, err := PartialShiftVal(shifted, 0, -5)
	if err != nil {
		t.Fatalf("shift -5: %v", err)
	}
	orig := c.Node().(*schedule.BandNode)
	got := back.Node().(*schedule.BandNode)
	if !poly.Equal(orig.Partial.Pieces[0].Outputs[0], got.Partial.Pieces[0].Outputs[0]) {
		t.Fatalf("shift +5 then -5 did not round-trip")
	}
}

func TestSetParallelAndLoopTypeOrthogonal(t *testing.T) {
	band := oneDimBand("j", schedule.Leaf())
	c := schedule.NewCursor(band)

	marked, err := SetParallel(c, 0)
	if err != nil {
		t.Fatalf("set_parallel: %v", err)
	}
	b := marked.Node().(*schedule.BandNode)
	if !b.Coincident[0] {
		t.Fatalf("expected dimension 0 to be marked coincident")
	}
	if b.LoopTypes[0] != schedule.LoopDefault {
		t.Fatalf("set_parallel must not implicitly change loop type")
	}

	typed, err := SetLoopType(marked, 0, schedule.LoopParallel)
	if err != nil {
		t.Fatalf("set_loop_opt: %v", err)
	}
	tb := typed.Node().(*schedule.BandNode)
	if tb.LoopTypes[0] != schedule.LoopParallel {
		t.Fatalf("expected loop type parallel after set_loop_opt")
	}
	if !tb.Coincident[0] {
		t.Fatalf("set_loop_opt must not clear a prior coincident flag")
	}
}

func TestNavigation(t *testing.T) {
	inner := oneDimBand("j", schedule.Leaf())
	outer := oneDimBand("i", inner)
	c := schedule.NewCursor(outer)

	toInner, err := GotoChild(c, 0)
	if err != nil {
		t.Fatalf("goto_child: %v", err)
	}
	if toInner.Node().Kind() != schedule.KindBand {
		t.Fatalf("expected band at child 0")
	}
	back, err := GotoParent(toInner)
	if err != nil {
		t.Fatalf("goto_parent: %v", err)
	}
	if back.Node() != c.Node() {
		t.Fatalf("goto_parent did not return to the original node")
	}
	root := GotoRoot(toInner)
	if !root.AtRoot() {
		t.Fatalf("goto_root did not land at root")
	}
}
