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

package schedule

import "github.com/google/uuid"

// NewMarkLabel mints a process-unique label for a Mark node, for a
// caller that introduces a Mark without supplying its own name.
func NewMarkLabel(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// FindMark returns the cursor positioned at the first Mark node in root
// (pre-order) whose Label equals label, or an error if none matches.
func FindMark(root Node, label string) (Cursor, error) {
	c := NewCursor(root)
	found, ok := findMark(c, label)
	if !ok {
		return Cursor{}, errMarkNotFound(label)
	}
	return found, nil
}

func findMark(c Cursor, label string) (Cursor, bool) {
	if m, ok := c.Node().(*MarkNode); ok && m.Label == label {
		return c, true
	}
	for i := 0; i < c.NumChildren(); i++ {
		child, err := c.Child(i)
		if err != nil {
			continue
		}
		if found, ok := findMark(child, label); ok {
			return found, true
		}
	}
	return Cursor{}, false
}

func errMarkNotFound(label string) error {
	return &markNotFoundError{label: label}
}

type markNotFoundError struct{ label string }

func (e *markNotFoundError) Error() string {
	return "schedule: no mark node labeled " + e.label
}
