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

	"github.com/hikettei/tadashi/schedule"
)

// Interchange swaps the partial schedules of the focused Band and its
// direct Band child. Focus ends on the node that was originally the
// inner band (now outer).
func Interchange(c schedule.Cursor) (schedule.Cursor, error) {
	outer, ok := c.Node().(*schedule.BandNode)
	if !ok {
		return c, fmt.Errorf("transform: interchange requires a band focus, got %s", c.Node().Kind())
	}
	inner, ok := outer.Child.(*schedule.BandNode)
	if !ok {
		return c, fmt.Errorf("transform: interchange requires a band child, got %s", outer.Child.Kind())
	}

	newInner := schedule.NewBand(outer.Partial.Clone(), outer.Permutable, inner.Child)
	newInner.Coincident = append([]bool(nil), outer.Coincident...)
	newInner.LoopTypes = append([]schedule.LoopType(nil), outer.LoopTypes...)

	newOuter := schedule.NewBand(inner.Partial.Clone(), inner.Permutable, newInner)
	newOuter.Coincident = append([]bool(nil), inner.Coincident...)
	newOuter.LoopTypes = append([]schedule.LoopType(nil), inner.LoopTypes...)

	return c.Replace(newOuter), nil
}
