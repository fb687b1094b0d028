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

import (
	"fmt"

	"github.com/hikettei/tadashi/poly"
)

// CheckInvariants validates the structural invariants of the schedule
// tree against root: a list of independent checks run in sequence, the
// first failure reported wrapped with context. It does not check
// legality (that is legality.Check's job) -- only tree shape.
func CheckInvariants(root Node) error {
	var rules = []func(Node) error{
		checkFilterChildren,
		checkSetDisjoint,
		checkSequenceUnionsToParent,
		checkBandWidths,
		checkSingleLeafPerBranch,
	}
	for _, rule := range rules {
		if err := rule(root); err != nil {
			return fmt.Errorf("schedule: invariant violated: %w", err)
		}
	}
	return nil
}

func walk(n Node, fn func(Node) error) error {
	if err := fn(n); err != nil {
		return err
	}
	for _, c := range n.children() {
		if err := walk(c, fn); err != nil {
			return err
		}
	}
	return nil
}

// Bands returns every Band node reachable from root, in pre-order. Callers
// outside this package (the legality oracle, most notably) cannot walk a
// Node generically themselves since children is unexported -- this is the
// one exported traversal they need to check legality across a whole
// candidate schedule rather than just the node under a cursor.
func Bands(root Node) []*BandNode {
	var out []*BandNode
	walk(root, func(n Node) error {
		if b, ok := n.(*BandNode); ok {
			out = append(out, b)
		}
		return nil
	})
	return out
}

// checkFilterChildren enforces invariant 1: every child of a Sequence or
// Set node is a Filter node.
func checkFilterChildren(root Node) error {
	return walk(root, func(n Node) error {
		switch n.Kind() {
		case KindSequence:
			return mustFilters(n.(*SequenceNode).Kids)
		case KindSet:
			return mustFilters(n.(*SetNode).Kids)
		}
		return nil
	})
}

// checkSetDisjoint enforces invariant 3: the Filter children of a Set
// node restrict to pairwise-disjoint statement sets.
func checkSetDisjoint(root Node) error {
	return walk(root, func(n Node) error {
		set, ok := n.(*SetNode)
		if !ok {
			return nil
		}
		for i := 0; i < len(set.Kids); i++ {
			fi := set.Kids[i].(*FilterNode)
			for j := i + 1; j < len(set.Kids); j++ {
				fj := set.Kids[j].(*FilterNode)
				if !poly.Disjoint(fi.Stmts, fj.Stmts) {
					return fmt.Errorf("set children %d and %d overlap in statements", i, j)
				}
			}
		}
		return nil
	})
}

// checkSequenceUnionsToParent covers invariant 2 only in part: it reports
// a Sequence or Set node that has no children at all. It does not check
// that the Filter children union back to exactly the statements visible
// above them; this module does not track a separately-computed
// "statements reaching this node" value.
func checkSequenceUnionsToParent(root Node) error {
	return walk(root, func(n Node) error {
		var kids []Node
		switch n.Kind() {
		case KindSequence:
			kids = n.(*SequenceNode).Kids
		case KindSet:
			kids = n.(*SetNode).Kids
		default:
			return nil
		}
		if len(kids) == 0 {
			return fmt.Errorf("sequence/set node has no children")
		}
		return nil
	})
}

// checkBandWidths enforces invariant 4: a Band's Coincident and
// LoopTypes slices have exactly as many entries as the band has
// dimensions.
func checkBandWidths(root Node) error {
	return walk(root, func(n Node) error {
		b, ok := n.(*BandNode)
		if !ok {
			return nil
		}
		dims := b.Dims()
		if len(b.Coincident) != dims {
			return fmt.Errorf("band has %d dims but %d coincident flags", dims, len(b.Coincident))
		}
		if len(b.LoopTypes) != dims {
			return fmt.Errorf("band has %d dims but %d loop-type annotations", dims, len(b.LoopTypes))
		}
		return nil
	})
}

// checkSingleLeafPerBranch enforces invariant 6: every root-to-Leaf path
// terminates at a Leaf and nowhere else does a childless node appear
// where a Leaf is expected to close off the branch.
func checkSingleLeafPerBranch(root Node) error {
	return walk(root, func(n Node) error {
		if len(n.children()) == 0 && n.Kind() != KindLeaf {
			return fmt.Errorf("node %s has no children but is not a leaf", n.Kind())
		}
		return nil
	})
}
