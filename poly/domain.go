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

import "golang.org/x/exp/slices"

// Constraint is one affine inequality e >= 0 (or, if Eq is set, e == 0)
// over the parameter space. Constraints gate which Piece of a MultiAff
// applies.
type Constraint struct {
	Expr Term
	Eq   bool
}

// Domain is a conjunction of Constraints: the parameter-space region in
// which a Piece's affine expressions apply.
type Domain struct {
	Constraints []Constraint
}

// Universe is the unconstrained (always-true) domain.
func Universe() Domain { return Domain{} }

func (d Domain) clone() Domain {
	out := make([]Constraint, len(d.Constraints))
	for i, c := range d.Constraints {
		out[i] = Constraint{Expr: c.Expr.clone(), Eq: c.Eq}
	}
	return Domain{Constraints: out}
}

// Contains reports whether the parameter point p satisfies every
// constraint in d.
func (d Domain) Contains(p []int64) bool {
	for _, c := range d.Constraints {
		v := c.Expr.Dot(p) + c.Expr.Const
		if c.Eq {
			if v != 0 {
				return false
			}
		} else if v < 0 {
			return false
		}
	}
	return true
}

// Equal reports whether d and o have the same constraint set (after
// constant-only normalization). This is a syntactic check, not a
// decision procedure for semantic domain equivalence -- see the package
// doc comment on the positional, non-Presburger nature of this kernel.
func (d Domain) Equal(o Domain) bool {
	if len(d.Constraints) != len(o.Constraints) {
		return false
	}
	return slices.EqualFunc(d.Constraints, o.Constraints, func(a, b Constraint) bool {
		return a.Eq == b.Eq && Equal(Expr{Terms: []weighted{{Coeff: 1, Floor: Floor{Term: a.Expr, Div: 1}}}},
			Expr{Terms: []weighted{{Coeff: 1, Floor: Floor{Term: b.Expr, Div: 1}}}})
	})
}

// DisjointFrom conservatively decides whether d and o can never both
// hold. It only recognizes one case -- a lower bound in one domain and
// an upper bound in the other on the same linear form (opposite
// coefficient patterns) whose constant bounds leave no common point --
// and otherwise reports "not proven disjoint" rather than guessing. It
// is sound but not complete: a pair it reports disjoint is disjoint, but
// not every semantically-disjoint pair is recognized. Equality
// constraints are never used to prove disjointness.
func (d Domain) DisjointFrom(o Domain) bool {
	for _, a := range d.Constraints {
		for _, b := range o.Constraints {
			// a: e + ca >= 0 (i.e. e >= -ca) ; b: -e + cb >= 0 (i.e. e <= cb) => disjoint if -ca > cb
			if a.Eq || b.Eq {
				continue
			}
			if negatedShape(a.Expr, b.Expr) && -a.Expr.Const > b.Expr.Const {
				return true
			}
		}
	}
	return false
}

func sameShape(a, b Term) bool {
	n := maxInt(len(a.Coeffs), len(b.Coeffs))
	aw, bw := a.width(n), b.width(n)
	return slices.Equal(aw.Coeffs, bw.Coeffs)
}

func negatedShape(a, b Term) bool {
	n := maxInt(len(a.Coeffs), len(b.Coeffs))
	aw, bw := a.width(n), b.width(n)
	for i := range aw.Coeffs {
		if aw.Coeffs[i] != -bw.Coeffs[i] {
			return false
		}
	}
	return true
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// AtLeast builds the single constraint term - bound >= 0, i.e. term >= bound.
func AtLeast(term Term, bound int64) Constraint {
	t := term.clone()
	t.Const -= bound
	return Constraint{Expr: t}
}

// AtMost builds the constraint bound - term >= 0, i.e. term <= bound.
func AtMost(term Term, bound int64) Constraint {
	neg := Term{Coeffs: make([]int64, len(term.Coeffs)), Const: bound - term.Const}
	for i, c := range term.Coeffs {
		neg.Coeffs[i] = -c
	}
	return Constraint{Expr: neg}
}
