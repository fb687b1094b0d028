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

// SetParallel marks dimension dim of the focused Band as coincident
// (candidate-parallel). It performs no legality reasoning itself -- the
// session manager's commit step afterwards checks every Coincident
// dimension of the candidate tree with the legality package's parallel
// variant.
//
// set_parallel and set_loop_opt are kept orthogonal: marking a
// dimension coincident does not implicitly change its LoopTypes entry.
func SetParallel(c schedule.Cursor, dim int) (schedule.Cursor, error) {
	b, ok := c.Node().(*schedule.BandNode)
	if !ok {
		return c, fmt.Errorf("transform: set_parallel requires a band focus, got %s", c.Node().Kind())
	}
	if dim < 0 || dim >= b.Dims() {
		return c, fmt.Errorf("transform: set_parallel dimension %d out of range (%d dims)", dim, b.Dims())
	}
	newBand := *b
	newBand.Coincident = append([]bool(nil), b.Coincident...)
	newBand.Coincident[dim] = true
	return c.Replace(&newBand), nil
}

// SetLoopType sets the AST-build annotation for dimension pos of the
// focused Band. It is purely a codegen-time directive and requires no
// legality check.
func SetLoopType(c schedule.Cursor, pos int, lt schedule.LoopType) (schedule.Cursor, error) {
	b, ok := c.Node().(*schedule.BandNode)
	if !ok {
		return c, fmt.Errorf("transform: set_loop_opt requires a band focus, got %s", c.Node().Kind())
	}
	if pos < 0 || pos >= b.Dims() {
		return c, fmt.Errorf("transform: set_loop_opt dimension %d out of range (%d dims)", pos, b.Dims())
	}
	newBand := *b
	newBand.LoopTypes = append([]schedule.LoopType(nil), b.LoopTypes...)
	newBand.LoopTypes[pos] = lt
	return c.Replace(&newBand), nil
}
