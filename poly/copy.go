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

package poly

// CloneExprs deep-copies a slice of expressions. Code that splices an
// output expression into more than one place in a tree (as Split places
// a band's schedule under two filters, and Tile derives both the outer
// and inner band from the original dimension) must copy it first so that
// later in-place rewrites of one copy never leak into the other -- the
// same discipline expr.Copy enforces for AST nodes that get spliced into
// more than one place in a query plan.
func CloneExprs(es []Expr) []Expr {
	out := make([]Expr, len(es))
	for i, e := range es {
		out[i] = e.Clone()
	}
	return out
}

// CloneMultiAffs deep-copies a slice of partial schedules.
func CloneMultiAffs(ms []MultiAff) []MultiAff {
	out := make([]MultiAff, len(ms))
	for i, m := range ms {
		out[i] = m.Clone()
	}
	return out
}
