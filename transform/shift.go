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

// The four Shift variants differ in what delta expression they add and
// whether it applies to one piece of a piecewise partial schedule or to
// all of them: partial_shift_var and full_shift_var genuinely differ in
// scope, not merely in name.

func shiftBand(c schedule.Cursor, pieceIdx int, allPieces bool, delta poly.Expr) (schedule.Cursor, error) {
	b, ok := c.Node().(*schedule.BandNode)
	if !ok {
		return c, fmt.Errorf("transform: shift requires a band focus, got %s", c.Node().Kind())
	}
	if b.Dims() != 1 {
		return c, fmt.Errorf("transform: shift requires a 1-D partial schedule, got %d dims", b.Dims())
	}
	if !allPieces && (pieceIdx < 0 || pieceIdx >= len(b.Partial.Pieces)) {
		return c, fmt.Errorf("transform: shift piece index %d out of range (%d pieces)", pieceIdx, len(b.Partial.Pieces))
	}
	shifted := b.Partial.MapOutputs(func(pi, _ int, e poly.Expr) poly.Expr {
		if !allPieces && pi != pieceIdx {
			return e
		}
		return poly.Add(e, delta)
	})
	shifted.OutputID = b.Partial.OutputID // output identifier preserved across a shift
	newBand := *b
	newBand.Partial = shifted
	return c.Replace(&newBand), nil
}

// PartialShiftVal adds constant v to piece pieceIdx only.
func PartialShiftVal(c schedule.Cursor, pieceIdx int, v int64) (schedule.Cursor, error) {
	return shiftBand(c, pieceIdx, false, poly.Const(v))
}

// PartialShiftVar adds the identity projection of input dimension k,
// restricted to piece pieceIdx only.
func PartialShiftVar(c schedule.Cursor, pieceIdx int, k int) (schedule.Cursor, error) {
	return shiftBand(c, pieceIdx, false, poly.Ident(k))
}

// FullShiftVal adds constant v to every piece.
func FullShiftVal(c schedule.Cursor, v int64) (schedule.Cursor, error) {
	return shiftBand(c, 0, true, poly.Const(v))
}

// FullShiftVar adds the identity projection of input dimension k to
// every piece.
func FullShiftVar(c schedule.Cursor, k int) (schedule.Cursor, error) {
	return shiftBand(c, 0, true, poly.Ident(k))
}
