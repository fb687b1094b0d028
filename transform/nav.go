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
	"github.com/hikettei/tadashi/poly"
	"github.com/hikettei/tadashi/schedule"
)

// GotoRoot, GotoParent and GotoChild are thin, cursor-only forwards to
// schedule.Cursor's navigation methods: navigation must never mutate the
// tree, which schedule.Cursor already guarantees by being a value type,
// so there is nothing beyond argument validation for this package to
// add.

func GotoRoot(c schedule.Cursor) schedule.Cursor { return c.GotoRoot() }

func GotoParent(c schedule.Cursor) (schedule.Cursor, error) { return c.Parent() }

func GotoChild(c schedule.Cursor, i int) (schedule.Cursor, error) { return c.Child(i) }

// Introspect gathers the transient, driver-facing description of the
// node under c: its type tag, child count, partial-schedule text (empty
// for non-Band nodes), and loop signature (zero value for non-Band
// nodes), bundled for convenience of the driver layer.
type Introspect struct {
	Kind            schedule.Kind
	NumChildren     int
	PartialSchedule string
	Signature       poly.LoopSignature
	TreeDump        string
}

// Describe builds an Introspect snapshot of the node under c.
func Describe(c schedule.Cursor) Introspect {
	n := c.Node()
	out := Introspect{
		Kind:        n.Kind(),
		NumChildren: c.NumChildren(),
		TreeDump:    schedule.Dump(n),
	}
	if b, ok := n.(*schedule.BandNode); ok {
		text, err := schedule.PartialSchedule(b)
		if err == nil {
			out.PartialSchedule = text
		}
		out.Signature = b.Partial.Signature(0)
	}
	return out
}
