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

package frontend

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/hikettei/tadashi/poly"
	"github.com/hikettei/tadashi/schedule"
)

// PragmaFrontEnd recognizes `#pragma scop` / `#pragma endscop` delimited
// regions containing a perfectly-nested rectangular for-loop tower (one
// `for (int v = lo; v < hi; v++)` per line) around a block of assignment
// statements. It is deliberately narrow, recognizing just enough C to
// drive the primitives and the legality oracle end to end.
type PragmaFrontEnd struct{}

var forRe = regexp.MustCompile(`^\s*for\s*\(\s*int\s+(\w+)\s*=\s*(-?\d+)\s*;\s*\w+\s*<\s*(-?\d+)\s*;\s*\w+\+\+\s*\)\s*\{?\s*$`)
var arrayRefRe = regexp.MustCompile(`(\w+)\s*\[`)
var assignRe = regexp.MustCompile(`^\s*([A-Za-z_]\w*(?:\s*\[[^\]]*\])*)\s*=`)

// Extract implements FrontEnd.
func (PragmaFrontEnd) Extract(sourcePath string) ([]ScopInfo, error) {
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("frontend: reading %s: %w", sourcePath, err)
	}
	return extractScops(string(data))
}

// Transform implements FrontEnd: it streams the source file, invoking
// callback for each pragma-delimited SCoP and copying every other line
// verbatim.
func (PragmaFrontEnd) Transform(sourcePath string, out io.Writer, callback func(w io.Writer, scop *ScopInfo) error) error {
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return fmt.Errorf("frontend: reading %s: %w", sourcePath, err)
	}
	scops, err := extractScops(string(data))
	if err != nil {
		return err
	}
	lines := strings.Split(string(data), "\n")
	idx := 0
	inScop := false
	for _, line := range lines {
		if strings.Contains(line, "#pragma scop") {
			inScop = true
			continue
		}
		if strings.Contains(line, "#pragma endscop") {
			inScop = false
			if idx >= len(scops) {
				return fmt.Errorf("frontend: more pragma regions than extracted scops")
			}
			s := scops[idx]
			idx++
			if err := callback(out, &s); err != nil {
				return err
			}
			continue
		}
		if inScop {
			continue
		}
		if _, err := io.WriteString(out, line+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func extractScops(source string) ([]ScopInfo, error) {
	var scops []ScopInfo
	scanner := bufio.NewScanner(strings.NewReader(source))
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	n := 0
	for i := 0; i < len(lines); i++ {
		if !strings.Contains(lines[i], "#pragma scop") {
			continue
		}
		start := i + 1
		end := start
		for end < len(lines) && !strings.Contains(lines[end], "#pragma endscop") {
			end++
		}
		body := lines[start:end]
		scop, err := parseScop(fmt.Sprintf("scop%d", n), body)
		if err != nil {
			return nil, err
		}
		scop.SourceText = "#pragma scop\n" + strings.Join(body, "\n") + "\n#pragma endscop\n"
		scops = append(scops, scop)
		n++
		i = end
	}
	return scops, nil
}

// parseScop builds a ScopInfo from the lines between a pragma pair: a
// tower of for-loops (each becomes one 1-D Band) around a flat list of
// assignment statements (with two or more, each becomes one Leaf under a
// Filter naming it; a single statement gets a bare Leaf).
func parseScop(id string, lines []string) (ScopInfo, error) {
	type loopVar struct {
		name   string
		lo, hi int64
	}
	var loops []loopVar
	var stmtLines []string
	for _, l := range lines {
		if strings.TrimSpace(l) == "" || strings.TrimSpace(l) == "}" {
			continue
		}
		if m := forRe.FindStringSubmatch(l); m != nil {
			lo, _ := strconv.ParseInt(m[2], 10, 64)
			hi, _ := strconv.ParseInt(m[3], 10, 64)
			loops = append(loops, loopVar{name: m[1], lo: lo, hi: hi})
			continue
		}
		t := strings.TrimSpace(l)
		if t != "" {
			stmtLines = append(stmtLines, t)
		}
	}

	depth := len(loops)
	var statements []Statement
	for i, raw := range stmtLines {
		name := fmt.Sprintf("S%d", i)
		writes := assignTargets(raw)
		reads := arrayRefs(raw)
		statements = append(statements, Statement{
			Name:      name,
			Body:      raw,
			MayRead:   reads,
			MustWrite: writes,
		})
	}

	dep := buildConservativeDependence(statements, depth)

	stmtSet := poly.NewInstanceSet()
	for _, s := range statements {
		stmtSet[s.Name] = struct{}{}
	}

	var root schedule.Node = buildLeafSequence(statements)
	for d := depth - 1; d >= 0; d-- {
		partial := poly.MultiAff{
			InputDims: depth,
			OutputID:  loops[d].name,
			Pieces:    []poly.Piece{{Domain: poly.Universe(), Outputs: []poly.Expr{poly.Ident(d)}}},
		}
		root = schedule.NewBand(partial, true, root)
	}
	root = &schedule.DomainNode{Stmts: stmtSet, Child: &schedule.ContextNode{Params: poly.Universe(), Child: root}}

	return ScopInfo{
		ID:         id,
		Context:    poly.Universe(),
		Statements: statements,
		Root:       root,
		Dependence: dep,
	}, nil
}

// buildLeafSequence wraps each statement's Leaf under its own Filter,
// all siblings of one Sequence, so Fuse/Split have a realistic tree to
// operate on even for a single-band SCoP.
func buildLeafSequence(statements []Statement) schedule.Node {
	if len(statements) <= 1 {
		return schedule.Leaf()
	}
	kids := make([]schedule.Node, len(statements))
	for i, s := range statements {
		kids[i] = schedule.NewFilter(poly.NewInstanceSet(s.Name), schedule.Leaf())
	}
	seq, err := schedule.NewSequence(kids...)
	if err != nil {
		// Every kid here is freshly built as a Filter, so this cannot
		// fail; fall back to a single leaf rather than propagate a
		// theoretically-unreachable error through a non-erroring path.
		return schedule.Leaf()
	}
	return seq
}

func assignTargets(line string) []string {
	m := assignRe.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	refs := arrayRefRe.FindAllStringSubmatch(m[1], -1)
	if len(refs) == 0 {
		return []string{strings.TrimSpace(m[1])}
	}
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, r[1])
	}
	return out
}

func arrayRefs(line string) []string {
	refs := arrayRefRe.FindAllStringSubmatch(line, -1)
	seen := map[string]bool{}
	var out []string
	for _, r := range refs {
		if !seen[r[1]] {
			seen[r[1]] = true
			out = append(out, r[1])
		}
	}
	return out
}

// buildConservativeDependence adds a may-dependence edge from each
// statement to every later statement that shares a name with it among
// their array references and assignment targets, whether the shared
// name is read or written (no self-edges are added), with
// direction (1,1,...,1) of the loop nest's depth -- the most
// conservative direction a rectangular perfectly-nested loop can carry,
// since this reference front-end does no subscript analysis.
func buildConservativeDependence(statements []Statement, depth int) poly.Relation {
	dir := make([]int64, depth)
	for i := range dir {
		dir[i] = 1
	}
	var edges []poly.Edge
	touches := func(s Statement) map[string]bool {
		m := map[string]bool{}
		for _, a := range s.MayRead {
			m[a] = true
		}
		for _, a := range s.MustWrite {
			m[a] = true
		}
		return m
	}
	for i := 0; i < len(statements); i++ {
		ti := touches(statements[i])
		for j := i; j < len(statements); j++ {
			if i == j {
				continue
			}
			tj := touches(statements[j])
			shared := false
			for a := range ti {
				if tj[a] {
					shared = true
					break
				}
			}
			if !shared {
				continue
			}
			edges = append(edges, poly.Edge{
				Source:    statements[i].Name,
				Sink:      statements[j].Name,
				Direction: append([]int64(nil), dir...),
			})
		}
	}
	return poly.Relation{Edges: edges}
}
