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

// Package frontend defines the boundary the core depends on for SCoP
// extraction and code regeneration, plus a reference implementation
// (PragmaFrontEnd) that recognizes a small rectangular, pragma-delimited
// subset of C.
package frontend

import (
	"io"

	"github.com/hikettei/tadashi/poly"
	"github.com/hikettei/tadashi/schedule"
)

// Statement is one user statement inside a SCoP: its iteration-domain
// membership (tracked at the granularity this module's InstanceSet-based
// kernel supports), its body text, and the array names it may read or
// (must) write -- enough for a front-end to build a conservative
// dependence relation without a full alias/points-to analysis.
type Statement struct {
	Name      string
	Body      string
	MayRead   []string
	MayWrite  []string
	MustWrite []string
}

// ScopInfo is everything extract(source_path) produces for one SCoP:
// the context set, the statement list, the initial schedule tree, the
// dependence relation computed from the statements' access sets, and
// the SCoP's original source text for verbatim re-emission when never
// made dirty.
type ScopInfo struct {
	ID         string
	Context    poly.Domain
	Statements []Statement
	Root       schedule.Node
	Dependence poly.Relation
	SourceText string
}

// FrontEnd is the polyhedral front-end boundary. Extract parses a source
// file into a list of SCoPs; Transform streams the file back out,
// invoking callback in place of each recognized SCoP region and copying
// every other byte through verbatim.
type FrontEnd interface {
	Extract(sourcePath string) ([]ScopInfo, error)
	Transform(sourcePath string, out io.Writer, callback func(w io.Writer, scop *ScopInfo) error) error
}
