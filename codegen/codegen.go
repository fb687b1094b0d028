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

// Package codegen implements the generate_code operation: lowering a
// (possibly rewritten) schedule tree back to source text for the SCoPs
// a session has marked dirty.
package codegen

import "github.com/hikettei/tadashi/schedule"

// Generator turns a schedule tree, plus the body text of each statement it
// references, into source text. statements maps a statement name (as it
// appears in Domain/Filter InstanceSets) to its verbatim body.
type Generator interface {
	Generate(root schedule.Node, statements map[string]string) (string, error)
}
