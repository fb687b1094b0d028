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

package session

import (
	"fmt"

	"github.com/hikettei/tadashi/legality"
	"github.com/hikettei/tadashi/poly"
	"github.com/hikettei/tadashi/schedule"
)

// SCoP is one static control part: its original source text (emitted
// verbatim if never made dirty), its cached may-dependence relation, and
// the two cursor slots its begin/apply/commit/rollback transaction uses.
type SCoP struct {
	ID         string
	SourceText string
	Dependence poly.Relation
	// Statements maps each statement name appearing in the schedule
	// tree's Filter/Domain nodes to its verbatim body text, so the code
	// generator can splice bodies back in at each Leaf without the
	// schedule tree itself carrying source text.
	Statements map[string]string

	current schedule.Cursor
	scratch *schedule.Cursor
	dirty   bool
	log     []string
}

// NewSCoP builds a SCoP rooted at root with the given dependence
// relation and statement-body texts.
func NewSCoP(id, sourceText string, root schedule.Node, dep poly.Relation, statements map[string]string) *SCoP {
	return &SCoP{ID: id, SourceText: sourceText, Dependence: dep, Statements: statements, current: schedule.NewCursor(root)}
}

// Current returns the SCoP's committed cursor.
func (s *SCoP) Current() schedule.Cursor { return s.current }

// Dirty reports whether any primitive has been committed on this SCoP.
func (s *SCoP) Dirty() bool { return s.dirty }

// Log returns the change log of committed primitive invocations, for
// introspection only (see log.go) -- it carries no commit/rollback
// semantics of its own.
func (s *SCoP) Log() []string { return append([]string(nil), s.log...) }

// Begin releases any existing scratch cursor and copies the current
// cursor into the scratch slot.
func (s *SCoP) Begin() {
	s.scratch = nil
	cp := s.current
	s.scratch = &cp
}

// Apply invokes prim on the scratch cursor, replacing it with the
// result. It is an error to call Apply before Begin.
func (s *SCoP) Apply(op string, prim func(schedule.Cursor) (schedule.Cursor, error)) error {
	if s.scratch == nil {
		return ErrFatal(op, fmt.Errorf("apply called without a preceding begin"))
	}
	next, err := prim(*s.scratch)
	if err != nil {
		return ErrPrecondition(op, err)
	}
	s.scratch = &next
	return nil
}

// Commit extracts the candidate schedule from the scratch cursor and
// consults the legality oracle against the SCoP's cached dependence
// relation, unconditionally and over the whole candidate tree -- not just
// the node under cursor focus. This matters beyond the obvious case of
// Fuse/Split/CompleteFuse (which leave focus on a Sequence/Set, not a
// Band): Tile, for instance, leaves focus on the new outer band but also
// introduces a new inner band that legality.CheckTree must see. On
// success, scratch becomes the new current and dirty is set; on failure,
// current is untouched and scratch keeps the rejected candidate for
// inspection.
func (s *SCoP) Commit(op string) (bool, error) {
	if s.scratch == nil {
		return false, ErrFatal(op, fmt.Errorf("commit called without a preceding begin"))
	}
	if !legality.CheckTree(s.scratch.Root(), s.Dependence).Legal {
		return false, nil
	}
	s.current, s.scratch = *s.scratch, nil
	s.dirty = true
	s.log = append(s.log, op)
	return true, nil
}

// Rollback discards the in-flight scratch mutation, restoring the
// scratch slot to empty without touching current.
func (s *SCoP) Rollback() {
	s.scratch = nil
}

// Navigate moves the SCoP's current cursor with fn (one of
// transform.GotoRoot/GotoParent/GotoChild). Navigation never touches the
// tree itself, only the cursor's focus, so it bypasses begin/apply/commit
// entirely -- there is nothing for the legality oracle or the dirty flag
// to react to.
func (s *SCoP) Navigate(fn func(schedule.Cursor) (schedule.Cursor, error)) error {
	next, err := fn(s.current)
	if err != nil {
		return err
	}
	s.current = next
	return nil
}
