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

import "fmt"

// Piece is one branch of a piecewise-affine function: the Outputs
// expressions apply when Domain holds over the parameter space.
type Piece struct {
	Domain  Domain
	Outputs []Expr
}

func (p Piece) clone() Piece {
	out := make([]Expr, len(p.Outputs))
	for i, e := range p.Outputs {
		out[i] = e.Clone()
	}
	return Piece{Domain: p.Domain.clone(), Outputs: out}
}

// MultiAff is a multi-piecewise-affine function from instances to an
// integer tuple -- the representation of a Band node's partial
// schedule.
type MultiAff struct {
	// InputDims is informational only (used for printing); expressions
	// address input dimensions positionally.
	InputDims int
	// OutputID identifies this schedule's output tuple; it must stay
	// consistent across rewrites of the same band.
	OutputID string
	Pieces   []Piece
}

// Dims returns the number of output (schedule) dimensions.
func (m MultiAff) Dims() int {
	if len(m.Pieces) == 0 {
		return 0
	}
	return len(m.Pieces[0].Outputs)
}

// Clone deep-copies m.
func (m MultiAff) Clone() MultiAff {
	pcs := make([]Piece, len(m.Pieces))
	for i, p := range m.Pieces {
		pcs[i] = p.clone()
	}
	return MultiAff{InputDims: m.InputDims, OutputID: m.OutputID, Pieces: pcs}
}

// At evaluates m at the parameter/instance point x, selecting the first
// piece whose Domain contains x.
func (m MultiAff) At(x []int64) ([]int64, bool) {
	for _, p := range m.Pieces {
		if !p.Domain.Contains(x) {
			continue
		}
		out := make([]int64, len(p.Outputs))
		for i, e := range p.Outputs {
			out[i] = e.Eval(x)
		}
		return out, true
	}
	return nil, false
}

// Delta evaluates the schedule-space displacement produced by direction
// d, using the first piece's Outputs only. Fuse is the one primitive in
// this module that builds a multi-piece schedule (one piece per fused
// band); the later pieces of such a schedule are not consulted here.
func (m MultiAff) Delta(d []int64) ([]int64, bool) {
	if len(m.Pieces) == 0 {
		return nil, false
	}
	p := m.Pieces[0]
	out := make([]int64, len(p.Outputs))
	for i, e := range p.Outputs {
		out[i] = e.Delta(d)
	}
	return out, true
}

// MapOutputs returns a copy of m with every output expression in every
// piece replaced by fn(pieceIndex, outIndex, expr).
func (m MultiAff) MapOutputs(fn func(piece, out int, e Expr) Expr) MultiAff {
	out := m.Clone()
	for pi := range out.Pieces {
		for oi := range out.Pieces[pi].Outputs {
			out.Pieces[pi].Outputs[oi] = fn(pi, oi, out.Pieces[pi].Outputs[oi])
		}
	}
	return out
}

// String implements fmt.Stringer.
func (m MultiAff) String() string {
	if len(m.Pieces) == 1 {
		return exprsString(m.Pieces[0].Outputs)
	}
	s := ""
	for i, p := range m.Pieces {
		if i > 0 {
			s += "; "
		}
		s += exprsString(p.Outputs)
	}
	return s
}

func exprsString(es []Expr) string {
	s := "["
	for i, e := range es {
		if i > 0 {
			s += ", "
		}
		s += e.String()
	}
	return s + "]"
}

// LoopSignature is the structured, driver-parseable description of one
// piece of a partial schedule, surfaced by a driver's introspection
// operations.
type LoopSignature struct {
	Params []string
	Vars   []string
}

// Signature describes piece i of m using generic positional names,
// matching the spec's requirement for a parseable (not free-form)
// format.
func (m MultiAff) Signature(piece int) LoopSignature {
	sig := LoopSignature{}
	for i := 0; i < m.InputDims; i++ {
		sig.Vars = append(sig.Vars, fmt.Sprintf("c%d", i))
	}
	if piece >= 0 && piece < len(m.Pieces) {
		for _, c := range m.Pieces[piece].Domain.Constraints {
			for i, coeff := range c.Expr.Coeffs {
				if coeff != 0 {
					sig.Params = append(sig.Params, fmt.Sprintf("p%d", i))
				}
			}
		}
	}
	return sig
}
