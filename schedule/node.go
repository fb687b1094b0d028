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

// Package schedule implements the schedule tree: the closed set of node
// variants (Domain, Context, Band, Sequence, Set, Filter, Mark, Leaf),
// their structural invariants, and the Cursor that navigates and
// rebuilds the tree immutably.
package schedule

import (
	"fmt"

	"github.com/hikettei/tadashi/poly"
)

// Kind tags the variant of a schedule-tree Node: a fixed enumeration
// rather than an open type switch, since the node variants are closed
// once and for all.
type Kind int

const (
	KindDomain Kind = iota
	KindContext
	KindBand
	KindSequence
	KindSet
	KindFilter
	KindMark
	KindLeaf
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindDomain:
		return "domain"
	case KindContext:
		return "context"
	case KindBand:
		return "band"
	case KindSequence:
		return "sequence"
	case KindSet:
		return "set"
	case KindFilter:
		return "filter"
	case KindMark:
		return "mark"
	case KindLeaf:
		return "leaf"
	default:
		return "unknown"
	}
}

// Node is one node of a schedule tree. Implementations are one of the
// eight concrete types in this file; the interface exists so cursor and
// invariant code can walk the tree generically rather than switching
// on a fixed list of concrete types at every call site.
type Node interface {
	Kind() Kind
	// children returns this node's structural children in order --
	// zero, one, or many depending on variant.
	children() []Node
	// withChildren returns a shallow clone of the node with its
	// children replaced by newChildren (len must match len(children())).
	// This is how cursor.Replace rebuilds ancestors without mutating
	// the original tree: every mutation produces a new tree and path.
	withChildren(newChildren []Node) Node
}

// DomainNode is the tree root: the full set of statement instances.
type DomainNode struct {
	Stmts poly.InstanceSet
	Child Node
}

func (n *DomainNode) Kind() Kind        { return KindDomain }
func (n *DomainNode) children() []Node  { return []Node{n.Child} }
func (n *DomainNode) withChildren(c []Node) Node {
	cp := *n
	cp.Child = c[0]
	return &cp
}

// ContextNode constrains the SCoP's parameters; it has one child.
type ContextNode struct {
	Params poly.Domain
	Child  Node
}

func (n *ContextNode) Kind() Kind       { return KindContext }
func (n *ContextNode) children() []Node { return []Node{n.Child} }
func (n *ContextNode) withChildren(c []Node) Node {
	cp := *n
	cp.Child = c[0]
	return &cp
}

// LoopType is the AST-build annotation for one Band dimension.
type LoopType int

const (
	LoopDefault LoopType = iota
	LoopAtomic
	LoopUnroll
	LoopSeparate
	LoopParallel
)

// String implements fmt.Stringer.
func (l LoopType) String() string {
	switch l {
	case LoopDefault:
		return "default"
	case LoopAtomic:
		return "atomic"
	case LoopUnroll:
		return "unroll"
	case LoopSeparate:
		return "separate"
	case LoopParallel:
		return "parallel"
	default:
		return "unknown"
	}
}

// BandNode carries a block of schedule dimensions as a
// multi-piecewise-affine function, plus one annotation triple per
// dimension.
type BandNode struct {
	Partial    poly.MultiAff
	Coincident []bool
	Permutable bool
	LoopTypes  []LoopType
	Child      Node
}

func (n *BandNode) Kind() Kind       { return KindBand }
func (n *BandNode) children() []Node { return []Node{n.Child} }
func (n *BandNode) withChildren(c []Node) Node {
	cp := *n
	cp.Child = c[0]
	return &cp
}

// Dims returns the number of schedule dimensions this band carries.
func (n *BandNode) Dims() int { return n.Partial.Dims() }

// clone returns a deep-ish copy of n safe to mutate independently of the
// original (Partial is value-cloned; Child is shared -- callers that
// change Child must replace it, not mutate it in place).
func (n *BandNode) clone() *BandNode {
	cp := *n
	cp.Partial = n.Partial.Clone()
	cp.Coincident = append([]bool(nil), n.Coincident...)
	cp.LoopTypes = append([]LoopType(nil), n.LoopTypes...)
	return &cp
}

// SequenceNode orders its Filter children; they execute in the given
// order.
type SequenceNode struct {
	Kids []Node // each must be *FilterNode
}

func (n *SequenceNode) Kind() Kind       { return KindSequence }
func (n *SequenceNode) children() []Node { return n.Kids }
func (n *SequenceNode) withChildren(c []Node) Node {
	return &SequenceNode{Kids: c}
}

// SetNode is like SequenceNode but its children are unordered.
type SetNode struct {
	Kids []Node // each must be *FilterNode
}

func (n *SetNode) Kind() Kind       { return KindSet }
func (n *SetNode) children() []Node { return n.Kids }
func (n *SetNode) withChildren(c []Node) Node {
	return &SetNode{Kids: c}
}

// FilterNode restricts its subtree to Stmts.
type FilterNode struct {
	Stmts poly.InstanceSet
	Child Node
}

func (n *FilterNode) Kind() Kind       { return KindFilter }
func (n *FilterNode) children() []Node { return []Node{n.Child} }
func (n *FilterNode) withChildren(c []Node) Node {
	cp := *n
	cp.Child = c[0]
	return &cp
}

// MarkNode attaches a symbolic label to its subtree.
type MarkNode struct {
	Label string
	Child Node
}

func (n *MarkNode) Kind() Kind       { return KindMark }
func (n *MarkNode) children() []Node { return []Node{n.Child} }
func (n *MarkNode) withChildren(c []Node) Node {
	cp := *n
	cp.Child = c[0]
	return &cp
}

// LeafNode is terminal: it has no children.
type LeafNode struct{}

func (n *LeafNode) Kind() Kind                 { return KindLeaf }
func (n *LeafNode) children() []Node           { return nil }
func (n *LeafNode) withChildren(c []Node) Node { return &LeafNode{} }

// mustFilters asserts every child of kids is a *FilterNode, as every
// Sequence/Set child is required to be.
func mustFilters(kids []Node) error {
	for i, k := range kids {
		if _, ok := k.(*FilterNode); !ok {
			return fmt.Errorf("schedule: child %d is a %s node, not a filter", i, k.Kind())
		}
	}
	return nil
}
