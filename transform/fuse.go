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
	"fmt"

	"github.com/hikettei/tadashi/poly"
	"github.com/hikettei/tadashi/schedule"
)

// filterBand extracts the Filter->Band pair directly under a Sequence
// or Set's i-th child, as Fuse's precondition requires.
func filterBand(kid schedule.Node) (*schedule.FilterNode, *schedule.BandNode, error) {
	f, ok := kid.(*schedule.FilterNode)
	if !ok {
		return nil, nil, fmt.Errorf("transform: fuse requires filter children, got %s", kid.Kind())
	}
	b, ok := f.Child.(*schedule.BandNode)
	if !ok {
		return nil, nil, fmt.Errorf("transform: fuse requires a band directly under each filter, got %s", f.Child.Kind())
	}
	if b.Dims() != 1 {
		return nil, nil, fmt.Errorf("transform: fuse requires 1-D partial schedules, got %d dims", b.Dims())
	}
	return f, b, nil
}

// Fuse unions sibling Filter children i1 and i2 of the focused
// Sequence/Set into one Filter, with a new Band below it (the
// domain-wise union of the two originals' schedules, parameter-aligned,
// keeping the first band's output identifier) and, below that, an inner
// Sequence preserving each original Filter/Band subtree so per-statement
// body content survives. Focus remains on the outer Sequence/Set.
func Fuse(c schedule.Cursor, i1, i2 int) (schedule.Cursor, error) {
	next, _, err := fuseAt(c, i1, i2)
	return next, err
}

// fuseAt is Fuse's implementation, additionally returning the newly
// created fused band itself -- CompleteFuse needs it to run the legality
// oracle against a concrete Band rather than the Sequence/Set cursor
// focus Fuse leaves behind.
func fuseAt(c schedule.Cursor, i1, i2 int) (schedule.Cursor, *schedule.BandNode, error) {
	kids, rebuild, err := seqOrSetKids(c.Node())
	if err != nil {
		return c, nil, err
	}
	if i1 == i2 || i1 < 0 || i2 < 0 || i1 >= len(kids) || i2 >= len(kids) {
		return c, nil, fmt.Errorf("transform: fuse indices %d,%d out of range for %d children", i1, i2, len(kids))
	}
	if i1 > i2 {
		i1, i2 = i2, i1
	}

	f1, b1, err := filterBand(kids[i1])
	if err != nil {
		return c, nil, err
	}
	f2, b2, err := filterBand(kids[i2])
	if err != nil {
		return c, nil, err
	}

	unionStmts := poly.Union(f1.Stmts, f2.Stmts)
	fusedOutputID := b1.Partial.OutputID

	p1 := b1.Partial.Clone()
	p2 := b2.Partial.Clone()
	p1.OutputID = fusedOutputID
	p2.OutputID = fusedOutputID
	fusedPartial := poly.MultiAff{
		InputDims: maxInt(p1.InputDims, p2.InputDims),
		OutputID:  fusedOutputID,
		Pieces:    append(append([]poly.Piece(nil), p1.Pieces...), p2.Pieces...),
	}

	innerSeq, err := schedule.NewSequence(
		schedule.NewFilter(f1.Stmts.Clone(), b1.Child),
		schedule.NewFilter(f2.Stmts.Clone(), b2.Child),
	)
	if err != nil {
		return c, nil, err
	}
	fusedBand := schedule.NewBand(fusedPartial, b1.Permutable && b2.Permutable, innerSeq)
	fusedFilter := schedule.NewFilter(unionStmts, fusedBand)

	newKids := make([]schedule.Node, 0, len(kids)-1)
	for i, k := range kids {
		switch i {
		case i1:
			newKids = append(newKids, fusedFilter)
		case i2:
			// dropped: merged into fusedFilter
		default:
			newKids = append(newKids, k)
		}
	}
	return c.Replace(rebuild(newKids)), fusedBand, nil
}

// Split is the structural inverse of Fuse: given a Filter/Band subtree
// whose statement set is the union of two known-disjoint subsets, it
// produces two Filter children restricted to each subset, each carrying
// a copy of the band's partial schedule. It exists so the fuse/split
// duality is a checkable, testable property rather than just an
// assertion.
func Split(c schedule.Cursor, first, second poly.InstanceSet) (schedule.Cursor, error) {
	f, ok := c.Node().(*schedule.FilterNode)
	if !ok {
		return c, fmt.Errorf("transform: split requires a filter focus, got %s", c.Node().Kind())
	}
	b, ok := f.Child.(*schedule.BandNode)
	if !ok {
		return c, fmt.Errorf("transform: split requires a band directly under the filter, got %s", f.Child.Kind())
	}
	if !poly.Disjoint(first, second) {
		return c, fmt.Errorf("transform: split requires disjoint statement sets")
	}
	if !poly.SetEqual(poly.Union(first, second), f.Stmts) {
		return c, fmt.Errorf("transform: split sets must union back to the filter's statements")
	}

	seq, err := schedule.NewSequence(
		schedule.NewFilter(first, schedule.NewBand(b.Partial.Clone(), b.Permutable, b.Child)),
		schedule.NewFilter(second, schedule.NewBand(b.Partial.Clone(), b.Permutable, b.Child)),
	)
	if err != nil {
		return c, err
	}
	newFilter := schedule.NewFilter(f.Stmts.Clone(), seq)
	return c.Replace(newFilter), nil
}

// CompleteFuse fuses every sibling Filter child of the focused
// Sequence/Set pairwise, left to right, stopping at the first pairing
// legalCheck rejects: an all-children fuse, not a no-op stub. legalCheck
// is called with the band each pairwise Fuse step would produce -- not a
// cursor, since Fuse always leaves focus on the surviving Sequence/Set,
// never on the fused band itself -- and must report whether the session
// accepts it; CompleteFuse itself performs no legality reasoning.
func CompleteFuse(c schedule.Cursor, legalCheck func(*schedule.BandNode) bool) (schedule.Cursor, error) {
	kids, _, err := seqOrSetKids(c.Node())
	if err != nil {
		return c, err
	}
	if len(kids) < 2 {
		return c, nil
	}
	cur := c
	for {
		n, _, err := seqOrSetKids(cur.Node())
		if err != nil || len(n) < 2 {
			break
		}
		candidate, fusedBand, err := fuseAt(cur, 0, 1)
		if err != nil || !legalCheck(fusedBand) {
			break
		}
		cur = candidate
	}
	return cur, nil
}

func seqOrSetKids(n schedule.Node) ([]schedule.Node, func([]schedule.Node) schedule.Node, error) {
	switch v := n.(type) {
	case *schedule.SequenceNode:
		return v.Kids, func(k []schedule.Node) schedule.Node { return &schedule.SequenceNode{Kids: k} }, nil
	case *schedule.SetNode:
		return v.Kids, func(k []schedule.Node) schedule.Node { return &schedule.SetNode{Kids: k} }, nil
	default:
		return nil, nil, fmt.Errorf("transform: fuse requires a sequence/set focus, got %s", n.Kind())
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
