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

// Package driver implements a flat, index-addressed operation surface
// over a session.Session, the way an external search process (or the
// cmd/tadashi CLI) drives the core without linking against schedule,
// transform, or legality directly.
package driver

import (
	"fmt"
	"io"
	"os"

	"github.com/hikettei/tadashi/codegen"
	"github.com/hikettei/tadashi/frontend"
	"github.com/hikettei/tadashi/legality"
	"github.com/hikettei/tadashi/poly"
	"github.com/hikettei/tadashi/schedule"
	"github.com/hikettei/tadashi/session"
	"github.com/hikettei/tadashi/transform"
)

// Driver wraps a session.Session with the flat operation table, addressing
// SCoPs positionally by an integer index column.
type Driver struct {
	fe   frontend.FrontEnd
	gen  codegen.Generator
	sess *session.Session
}

// New builds a Driver that extracts SCoPs through fe and regenerates code
// through gen.
func New(fe frontend.FrontEnd, gen codegen.Generator) *Driver {
	return &Driver{fe: fe, gen: gen}
}

// InitScops implements init_scops(path): it loads path, extracts its
// SCoPs, and replaces any previously loaded session.
func (d *Driver) InitScops(path string) (int, error) {
	scops, err := d.fe.Extract(path)
	if err != nil {
		return 0, fmt.Errorf("driver: init_scops: %w", err)
	}
	d.sess = session.New(d.gen)
	for _, s := range scops {
		statements := map[string]string{}
		for _, stmt := range s.Statements {
			statements[stmt.Name] = stmt.Body
		}
		d.sess.AddSCoP(session.NewSCoP(s.ID, s.SourceText, s.Root, s.Dependence, statements))
	}
	return d.sess.NumSCoPs(), nil
}

// FreeScops implements free_scops(): it releases all session state.
func (d *Driver) FreeScops() {
	if d.sess != nil {
		d.sess.Close()
	}
	d.sess = nil
}

func (d *Driver) scop(i int) (*session.SCoP, error) {
	if d.sess == nil {
		return nil, fmt.Errorf("driver: no session loaded (call init_scops first)")
	}
	return d.sess.SCoP(i)
}

// GetType implements get_type(i).
func (d *Driver) GetType(i int) (string, error) {
	s, err := d.scop(i)
	if err != nil {
		return "", err
	}
	return s.Current().Node().Kind().String(), nil
}

// GetNumChildren implements get_num_children(i).
func (d *Driver) GetNumChildren(i int) (int, error) {
	s, err := d.scop(i)
	if err != nil {
		return 0, err
	}
	return s.Current().NumChildren(), nil
}

// GetExpr implements get_expr(i): partial-schedule text, empty for a
// non-Band node.
func (d *Driver) GetExpr(i int) (string, error) {
	s, err := d.scop(i)
	if err != nil {
		return "", err
	}
	text, err := schedule.PartialSchedule(s.Current().Node())
	if err != nil {
		return "", nil
	}
	return text, nil
}

// GetLoopSignature implements get_loop_signature(i): the zero value for a
// non-Band node.
func (d *Driver) GetLoopSignature(i int) (poly.LoopSignature, error) {
	s, err := d.scop(i)
	if err != nil {
		return poly.LoopSignature{}, err
	}
	b, ok := s.Current().Node().(*schedule.BandNode)
	if !ok {
		return poly.LoopSignature{}, nil
	}
	return b.Partial.Signature(0), nil
}

// PrintScheduleNode implements print_schedule_node(i): a full subtree
// dump rooted at the current cursor.
func (d *Driver) PrintScheduleNode(i int) (string, error) {
	s, err := d.scop(i)
	if err != nil {
		return "", err
	}
	return schedule.Dump(s.Current().Node()), nil
}

// GotoRoot implements goto_root(i).
func (d *Driver) GotoRoot(i int) error {
	s, err := d.scop(i)
	if err != nil {
		return err
	}
	return s.Navigate(func(c schedule.Cursor) (schedule.Cursor, error) {
		return transform.GotoRoot(c), nil
	})
}

// GotoParent implements goto_parent(i).
func (d *Driver) GotoParent(i int) error {
	s, err := d.scop(i)
	if err != nil {
		return err
	}
	return s.Navigate(transform.GotoParent)
}

// GotoChild implements goto_child(i, k).
func (d *Driver) GotoChild(i, k int) error {
	s, err := d.scop(i)
	if err != nil {
		return err
	}
	return s.Navigate(func(c schedule.Cursor) (schedule.Cursor, error) {
		return transform.GotoChild(c, k)
	})
}

// commit runs the begin/apply/commit protocol for one primitive,
// returning 1/0 as the table's "1 if committed (legal), 0 if rolled back"
// contract maps to a Go bool.
func (d *Driver) commit(i int, op string, prim func(schedule.Cursor) (schedule.Cursor, error)) (bool, error) {
	if d.sess == nil {
		return false, fmt.Errorf("driver: no session loaded (call init_scops first)")
	}
	ok, _, err := d.sess.Transform(i, op, prim)
	return ok, err
}

// Tile implements tile(i, tile_size).
func (d *Driver) Tile(i int, tileSize int64) (bool, error) {
	return d.commit(i, "tile", func(c schedule.Cursor) (schedule.Cursor, error) {
		return transform.Tile(c, tileSize)
	})
}

// Interchange implements interchange(i).
func (d *Driver) Interchange(i int) (bool, error) {
	return d.commit(i, "interchange", transform.Interchange)
}

// Fuse implements fuse(i, i1, i2).
func (d *Driver) Fuse(i, i1, i2 int) (bool, error) {
	return d.commit(i, "fuse", func(c schedule.Cursor) (schedule.Cursor, error) {
		return transform.Fuse(c, i1, i2)
	})
}

// Split implements the structural inverse of fuse.
func (d *Driver) Split(i int, first, second poly.InstanceSet) (bool, error) {
	return d.commit(i, "split", func(c schedule.Cursor) (schedule.Cursor, error) {
		return transform.Split(c, first, second)
	})
}

// CompleteFuse fuses every pair of compatible siblings under the current
// cursor until the legality oracle rejects further fusion, checking each
// pairwise step's fused band directly against the SCoP's dependence
// relation rather than waiting for the outer session.Commit's tree-wide
// check, so it can actually stop at the first illegal pairing instead of
// fusing everything unconditionally.
func (d *Driver) CompleteFuse(i int) (bool, error) {
	s, err := d.scop(i)
	if err != nil {
		return false, err
	}
	return d.commit(i, "complete_fuse", func(c schedule.Cursor) (schedule.Cursor, error) {
		return transform.CompleteFuse(c, func(b *schedule.BandNode) bool {
			return legality.Check(b, s.Dependence).Legal
		})
	})
}

// Scale implements scale(i, factor).
func (d *Driver) Scale(i int, scale int64) (bool, error) {
	return d.commit(i, "scale", func(c schedule.Cursor) (schedule.Cursor, error) {
		return transform.Scale(c, scale)
	})
}

// PartialShiftVal implements shift_val(i, piece, value) (the single-piece
// variant).
func (d *Driver) PartialShiftVal(i, pieceIdx int, v int64) (bool, error) {
	return d.commit(i, "partial_shift_val", func(c schedule.Cursor) (schedule.Cursor, error) {
		return transform.PartialShiftVal(c, pieceIdx, v)
	})
}

// PartialShiftVar implements shift_var(i, piece, k).
func (d *Driver) PartialShiftVar(i, pieceIdx, k int) (bool, error) {
	return d.commit(i, "partial_shift_var", func(c schedule.Cursor) (schedule.Cursor, error) {
		return transform.PartialShiftVar(c, pieceIdx, k)
	})
}

// FullShiftVal implements shift_val(i, value) (every piece).
func (d *Driver) FullShiftVal(i int, v int64) (bool, error) {
	return d.commit(i, "full_shift_val", func(c schedule.Cursor) (schedule.Cursor, error) {
		return transform.FullShiftVal(c, v)
	})
}

// FullShiftVar implements shift_var(i, k) (every piece).
func (d *Driver) FullShiftVar(i, k int) (bool, error) {
	return d.commit(i, "full_shift_var", func(c schedule.Cursor) (schedule.Cursor, error) {
		return transform.FullShiftVar(c, k)
	})
}

// SetParallel implements set_parallel(i).
func (d *Driver) SetParallel(i, dim int) (bool, error) {
	return d.commit(i, "set_parallel", func(c schedule.Cursor) (schedule.Cursor, error) {
		return transform.SetParallel(c, dim)
	})
}

// SetLoopOpt implements set_loop_opt(i, pos, opt): the table documents
// this operation as always returning 1, matching commit's unconditional
// acceptance of an annotation-only change (annotations never affect
// legality).
func (d *Driver) SetLoopOpt(i, pos int, opt schedule.LoopType) (bool, error) {
	return d.commit(i, "set_loop_opt", func(c schedule.Cursor) (schedule.Cursor, error) {
		return transform.SetLoopType(c, pos, opt)
	})
}

// GenerateCode implements generate_code(in_path, out_path): it re-streams
// inPath through the front-end's Transform, substituting the generated
// text of each dirty SCoP (verbatim source for every SCoP untouched since
// init_scops) and writing the result to outPath.
func (d *Driver) GenerateCode(inPath, outPath string) error {
	if d.sess == nil {
		return fmt.Errorf("driver: no session loaded (call init_scops first)")
	}
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("driver: generate_code: %w", err)
	}
	defer out.Close()

	idx := 0
	return d.fe.Transform(inPath, out, func(w io.Writer, scop *frontend.ScopInfo) error {
		s, err := d.sess.SCoP(idx)
		idx++
		if err != nil {
			return err
		}
		if !s.Dirty() {
			_, werr := io.WriteString(w, scop.SourceText)
			return werr
		}
		text, err := d.gen.Generate(s.Current().Root(), s.Statements)
		if err != nil {
			return err
		}
		_, werr := io.WriteString(w, text)
		return werr
	})
}
