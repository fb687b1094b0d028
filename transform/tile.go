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

// Package transform implements the schedule-tree transformations as one
// pure function per primitive: each primitive takes a schedule.Cursor
// and parameters and returns a new schedule.Cursor, preserving the
// structural invariants of the tree but not dependence legality -- that
// check belongs to the legality package, applied by the session manager
// around every primitive call.
package transform

import (
	"fmt"

	"github.com/hikettei/tadashi/poly"
	"github.com/hikettei/tadashi/schedule"
)

// Tile replaces the focused 1-D Band with a two-level band tower: the
// outer dimension is floor(d/tileSize), the inner is d mod tileSize.
// Focus remains on the outer band.
func Tile(c schedule.Cursor, tileSize int64) (schedule.Cursor, error) {
	if tileSize <= 0 {
		return c, fmt.Errorf("transform: tile size must be positive, got %d", tileSize)
	}
	band, ok := c.Node().(*schedule.BandNode)
	if !ok {
		return c, fmt.Errorf("transform: tile requires a band focus, got %s", c.Node().Kind())
	}
	if band.Dims() != 1 {
		return c, fmt.Errorf("transform: tile requires a 1-D band, got %d dims", band.Dims())
	}

	outerPartial := band.Partial.MapOutputs(func(_, _ int, e poly.Expr) poly.Expr {
		return poly.FloorDiv(e, tileSize)
	})
	innerPartial := band.Partial.MapOutputs(func(_, _ int, e poly.Expr) poly.Expr {
		return poly.Mod(e, tileSize)
	})
	innerPartial.OutputID = band.Partial.OutputID + ".inner"

	innerBand := schedule.NewBand(innerPartial, band.Permutable, band.Child)
	outerBand := schedule.NewBand(outerPartial, band.Permutable, innerBand)
	// Inherit annotations on the outer dimension; the inner dimension
	// starts with defaults, since it did not exist before tiling.
	outerBand.Coincident = append([]bool(nil), band.Coincident...)
	outerBand.LoopTypes = append([]schedule.LoopType(nil), band.LoopTypes...)

	return c.Replace(outerBand), nil
}

// Densify collapses a two-level band tower back into a single band whose
// schedule is outer*tileSize + inner, piece by piece -- the inverse of
// Tile that a tile/densify round-trip test exercises. It is the
// "coalesce band" counterpart to Tile. It checks only that the focus is
// a Band with a Band child of equal width; it does not check that the
// tower was produced by Tile or that tileSize is the size used there.
func Densify(c schedule.Cursor, tileSize int64) (schedule.Cursor, error) {
	outer, ok := c.Node().(*schedule.BandNode)
	if !ok {
		return c, fmt.Errorf("transform: densify requires a band focus, got %s", c.Node().Kind())
	}
	inner, ok := outer.Child.(*schedule.BandNode)
	if !ok {
		return c, fmt.Errorf("transform: densify requires a band-over-band tower")
	}
	if outer.Dims() != inner.Dims() {
		return c, fmt.Errorf("transform: densify requires matching dimensionality between outer and inner bands")
	}
	recombined := outer.Partial.MapOutputs(func(pi, oi int, e poly.Expr) poly.Expr {
		return poly.Add(poly.Scale(e, tileSize), inner.Partial.Pieces[pi].Outputs[oi])
	})
	recombined.OutputID = outer.Partial.OutputID
	densified := schedule.NewBand(recombined, outer.Permutable && inner.Permutable, inner.Child)
	return c.Replace(densified), nil
}
