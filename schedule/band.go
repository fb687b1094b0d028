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

package schedule

import "github.com/hikettei/tadashi/poly"

// NewBand builds a BandNode over partial with every dimension defaulted
// to non-coincident, default loop type, the permutable flag as given.
func NewBand(partial poly.MultiAff, permutable bool, child Node) *BandNode {
	dims := partial.Dims()
	return &BandNode{
		Partial:    partial,
		Coincident: make([]bool, dims),
		Permutable: permutable,
		LoopTypes:  make([]LoopType, dims),
		Child:      child,
	}
}

// NewFilter builds a FilterNode restricting to stmts.
func NewFilter(stmts poly.InstanceSet, child Node) *FilterNode {
	return &FilterNode{Stmts: stmts, Child: child}
}

// NewSequence builds a SequenceNode, returning an error if any kid is
// not a *FilterNode (invariant 1).
func NewSequence(kids ...Node) (*SequenceNode, error) {
	if err := mustFilters(kids); err != nil {
		return nil, err
	}
	return &SequenceNode{Kids: kids}, nil
}

// NewSet builds a SetNode, returning an error if any kid is not a
// *FilterNode or if two kids' statement sets overlap (invariants 1, 3).
func NewSet(kids ...Node) (*SetNode, error) {
	if err := mustFilters(kids); err != nil {
		return nil, err
	}
	for i := 0; i < len(kids); i++ {
		fi := kids[i].(*FilterNode)
		for j := i + 1; j < len(kids); j++ {
			fj := kids[j].(*FilterNode)
			if !poly.Disjoint(fi.Stmts, fj.Stmts) {
				return nil, errOverlappingSetChildren(i, j)
			}
		}
	}
	return &SetNode{Kids: kids}, nil
}

func errOverlappingSetChildren(i, j int) error {
	return &setOverlapError{i: i, j: j}
}

type setOverlapError struct{ i, j int }

func (e *setOverlapError) Error() string {
	return "schedule: set children overlap in statements"
}

// NewMark wraps child in a Mark node labeled label.
func NewMark(label string, child Node) *MarkNode {
	return &MarkNode{Label: label, Child: child}
}

// Leaf returns a new terminal node. Leaf nodes carry no state.
func Leaf() *LeafNode { return &LeafNode{} }
