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

import "fmt"

// Cursor names one node of a tree by the path of child indices from the
// root, together with the root itself. Cursor is a value type: every
// navigation method returns a new Cursor rather than mutating the
// receiver, and Replace returns a new root rather than editing the tree
// in place.
type Cursor struct {
	root Node
	path []int
}

// NewCursor builds a Cursor positioned at the root of tree.
func NewCursor(root Node) Cursor {
	return Cursor{root: root}
}

// Root returns the tree root this cursor was built from (not the node
// under the cursor -- use Node for that).
func (c Cursor) Root() Node { return c.root }

// Path returns the child-index path from root to the cursor's node.
func (c Cursor) Path() []int {
	return append([]int(nil), c.path...)
}

// Node returns the node currently under the cursor.
func (c Cursor) Node() Node {
	n := c.root
	for _, idx := range c.path {
		n = n.children()[idx]
	}
	return n
}

// NumChildren returns the number of children of the node under the
// cursor.
func (c Cursor) NumChildren() int {
	return len(c.Node().children())
}

// Child moves the cursor to child i of the current node. It returns an
// error if i is out of range, leaving the receiver cursor untouched --
// the caller keeps its own current cursor on failure.
func (c Cursor) Child(i int) (Cursor, error) {
	n := c.Node()
	kids := n.children()
	if i < 0 || i >= len(kids) {
		return c, fmt.Errorf("schedule: node %s has no child %d (has %d)", n.Kind(), i, len(kids))
	}
	next := Cursor{root: c.root, path: append(append([]int(nil), c.path...), i)}
	return next, nil
}

// Parent moves the cursor to the parent of the current node. It is an
// error to call Parent at the root.
func (c Cursor) Parent() (Cursor, error) {
	if len(c.path) == 0 {
		return c, fmt.Errorf("schedule: cursor is already at root")
	}
	return Cursor{root: c.root, path: c.path[:len(c.path)-1]}, nil
}

// GotoRoot moves the cursor to the tree root.
func (c Cursor) GotoRoot() Cursor {
	return Cursor{root: c.root}
}

// AtRoot reports whether the cursor is positioned at the tree root.
func (c Cursor) AtRoot() bool {
	return len(c.path) == 0
}

// Replace returns a new Cursor whose node at the current position has
// been replaced by newNode, with every ancestor on the path rebuilt
// (via withChildren) to point at the new subtree. The original tree that
// c.root refers to is untouched; only the returned Cursor observes
// newNode. This is the single place a transformation primitive commits a
// local edit back up to a whole new root.
func (c Cursor) Replace(newNode Node) Cursor {
	if len(c.path) == 0 {
		return Cursor{root: newNode}
	}
	// Walk down to collect each ancestor along the path, then rebuild
	// bottom-up.
	ancestors := make([]Node, len(c.path)+1)
	ancestors[0] = c.root
	for i, idx := range c.path {
		ancestors[i+1] = ancestors[i].children()[idx]
	}
	cur := newNode
	for i := len(c.path) - 1; i >= 0; i-- {
		parent := ancestors[i]
		idx := c.path[i]
		kids := append([]Node(nil), parent.children()...)
		kids[idx] = cur
		cur = parent.withChildren(kids)
	}
	return Cursor{root: cur, path: c.path}
}

// Ancestors returns the chain of nodes from the root down to (but not
// including) the current node.
func (c Cursor) Ancestors() []Node {
	out := make([]Node, 0, len(c.path))
	n := c.root
	for _, idx := range c.path {
		out = append(out, n)
		n = n.children()[idx]
	}
	return out
}
