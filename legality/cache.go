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

package legality

import (
	"fmt"

	"github.com/dchest/siphash"
	"github.com/hikettei/tadashi/poly"
	"github.com/hikettei/tadashi/schedule"
)

// Cache memoizes Check results by a 64-bit SipHash-2-4 digest of the
// candidate schedule and dependence relation's textual form. A driver backtracking a search frequently
// re-checks the same candidate; this avoids recomputing the delta set
// for a schedule already seen.
type Cache struct {
	k0, k1 uint64
	hits   map[uint64]Result
}

// NewCache builds an empty Cache keyed by (k0, k1), an arbitrary
// attacker-non-relevant seed pair (this is a memoization key, not a
// security boundary).
func NewCache(k0, k1 uint64) *Cache {
	return &Cache{k0: k0, k1: k1, hits: make(map[uint64]Result)}
}

// Check returns the memoized Result for (band, dep) if present,
// otherwise computes it via Check, stores it, and returns it.
func (c *Cache) Check(band *schedule.BandNode, dep poly.Relation) Result {
	key := c.key(band, dep)
	if r, ok := c.hits[key]; ok {
		return r
	}
	r := Check(band, dep)
	c.hits[key] = r
	return r
}

func (c *Cache) key(band *schedule.BandNode, dep poly.Relation) uint64 {
	text := band.Partial.String() + "|" + relationText(dep)
	return siphash.Hash(c.k0, c.k1, []byte(text))
}

func relationText(r poly.Relation) string {
	s := ""
	for _, e := range r.Edges {
		s += fmt.Sprintf("%s->%s:%v;", e.Source, e.Sink, e.Direction)
	}
	return s
}

// Len reports the number of memoized entries, for test/introspection use.
func (c *Cache) Len() int { return len(c.hits) }
