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

import "golang.org/x/exp/maps"

// InstanceSet names the statements whose instances a Filter node
// restricts its subtree to.
//
// A real polyhedral kernel represents a Filter's restriction as an
// iteration-domain set (a union of integer polyhedra). This module
// approximates that at the granularity the schedule tree's structural
// invariants actually require: a Sequence/Set's children union back to
// the parent filter, and no two Set siblings overlap -- both are
// statement-membership properties, so a named set of statement
// identifiers is sufficient to check them exactly, without needing a
// general polyhedral set-union/disjointness decision procedure.
type InstanceSet map[string]struct{}

// NewInstanceSet builds an InstanceSet from a list of statement names.
func NewInstanceSet(stmts ...string) InstanceSet {
	s := make(InstanceSet, len(stmts))
	for _, n := range stmts {
		s[n] = struct{}{}
	}
	return s
}

// Clone returns an independent copy of s.
func (s InstanceSet) Clone() InstanceSet {
	return maps.Clone(s)
}

// Union returns the set union of s and o.
func Union(s, o InstanceSet) InstanceSet {
	out := s.Clone()
	for k := range o {
		out[k] = struct{}{}
	}
	return out
}

// Disjoint reports whether s and o share no statement.
func Disjoint(s, o InstanceSet) bool {
	small, big := s, o
	if len(big) < len(small) {
		small, big = big, small
	}
	for k := range small {
		if _, ok := big[k]; ok {
			return false
		}
	}
	return true
}

// SetEqual reports whether s and o contain exactly the same statements.
func SetEqual(s, o InstanceSet) bool {
	return maps.Equal(s, o)
}

// Contains reports whether s contains every statement in o.
func Contains(s, o InstanceSet) bool {
	for k := range o {
		if _, ok := s[k]; !ok {
			return false
		}
	}
	return true
}

// Sorted returns the statement names of s in sorted order, useful for
// deterministic printing.
func (s InstanceSet) Sorted() []string {
	out := maps.Keys(s)
	sortStrings(out)
	return out
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
