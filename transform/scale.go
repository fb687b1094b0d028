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

	"github.com/hikettei/tadashi/poly"
	"github.com/hikettei/tadashi/schedule"
)

// Scale multiplies every output dimension of the focused Band's partial
// schedule by scale.
func Scale(c schedule.Cursor, scale int64) (schedule.Cursor, error) {
	if scale <= 0 {
		return c, fmt.Errorf("transform: scale must be positive, got %d", scale)
	}
	b, ok := c.Node().(*schedule.BandNode)
	if !ok {
		return c, fmt.Errorf("transform: scale requires a band focus, got %s", c.Node().Kind())
	}
	scaled := *b
	scaled.Partial = b.Partial.MapOutputs(func(_, _ int, e poly.Expr) poly.Expr {
		return poly.Scale(e, scale)
	})
	return c.Replace(&scaled), nil
}
