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
	"errors"
	"fmt"

	"github.com/hikettei/tadashi/poly"
	"github.com/hikettei/tadashi/schedule"
)

// Generator is the code generator boundary a Session emits through; it
// matches codegen.Generator without this package importing codegen
// directly, keeping session free of a dependency on the reference
// generator implementation.
type Generator interface {
	Generate(root schedule.Node, statements map[string]string) (string, error)
}

// Session owns an ordered list of SCoPs extracted from one source file,
// and the two-slot transaction applied through it. Operations on a
// Session must be serialized by the caller: the core is single-threaded
// and synchronous by design, so Session does no locking of its own.
type Session struct {
	scops []*SCoP
	gen   Generator
}

// New builds an empty Session that emits code through gen.
func New(gen Generator) *Session {
	return &Session{gen: gen}
}

// AddSCoP appends s to the session's ordered SCoP list and returns its
// index.
func (sess *Session) AddSCoP(s *SCoP) int {
	sess.scops = append(sess.scops, s)
	return len(sess.scops) - 1
}

// SCoP returns the SCoP at index i, or a KindInput error if i is out of
// range.
func (sess *Session) SCoP(i int) (*SCoP, error) {
	if i < 0 || i >= len(sess.scops) {
		return nil, ErrInput("scop", fmt.Errorf("index %d out of range (%d scops)", i, len(sess.scops)))
	}
	return sess.scops[i], nil
}

// NumSCoPs returns the number of SCoPs the session owns.
func (sess *Session) NumSCoPs() int { return len(sess.scops) }

// Transform runs the full begin/apply/commit protocol for one primitive
// against SCoP i, returning whether it committed and the cursor focus
// after the operation: the new current cursor on success, the rejected
// (observable but not committed) scratch cursor on failure.
func (sess *Session) Transform(i int, op string, prim func(schedule.Cursor) (schedule.Cursor, error)) (bool, schedule.Cursor, error) {
	s, err := sess.SCoP(i)
	if err != nil {
		return false, schedule.Cursor{}, err
	}
	s.Begin()
	if err := s.Apply(op, prim); err != nil {
		s.Rollback()
		return false, schedule.Cursor{}, err
	}
	legal, err := s.Commit(op)
	if err != nil {
		s.Rollback()
		return false, schedule.Cursor{}, err
	}
	if !legal {
		return false, *s.scratch, nil
	}
	return true, s.current, nil
}

// Generate emits code for every SCoP in order: verbatim source text for
// SCoPs never made dirty, generated text (via the Session's Generator)
// for dirty ones. Non-SCoP regions of the source are the front-end's
// concern, not this package's -- Session only ever sees SCoP bodies.
func (sess *Session) Generate() (string, error) {
	var out string
	var errs []error
	for _, s := range sess.scops {
		if !s.dirty {
			out += s.SourceText
			continue
		}
		text, err := sess.gen.Generate(s.current.Root(), s.Statements)
		if err != nil {
			errs = append(errs, fmt.Errorf("scop %s: %w", s.ID, err))
			continue
		}
		out += text
	}
	if len(errs) > 0 {
		return "", ErrFatal("generate", errors.Join(errs...))
	}
	return out, nil
}

// Close releases the session's SCoPs in a fixed order: statement list ->
// dependence -> scratch -> current -> SCoP. There is no explicit
// polyhedral context to release and no manual memory to free; Close
// exists to make that
// release order an explicit, auditable step rather than leaving it to
// garbage collection in an arbitrary order, and to give drivers a single
// point to call when a session's resources (however lightweight) should
// be considered gone.
func (sess *Session) Close() {
	for _, s := range sess.scops {
		s.Statements = nil
		s.Dependence = poly.Relation{}
		s.scratch = nil
		s.current = schedule.Cursor{}
	}
	sess.scops = nil
}
