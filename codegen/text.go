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

package codegen

import (
	"fmt"
	"strings"

	"github.com/hikettei/tadashi/poly"
	"github.com/hikettei/tadashi/schedule"
)

// TextGenerator is the reference Generator: it walks a schedule tree and
// emits one nested for-loop per Band dimension, annotated with the band's
// loop-type and coincidence flags, splicing each Leaf's active statement
// bodies in at the bottom. The schedule model in this module tracks
// iteration domains only as statement-membership sets (poly.InstanceSet),
// not concrete integer bounds, so loop headers carry symbolic lo_/hi_
// bound placeholders rather than literal numbers -- a driver that wants
// concrete bounds substitutes them from its own domain description before
// compiling the result.
type TextGenerator struct{}

// Generate implements Generator.
func (TextGenerator) Generate(root schedule.Node, statements map[string]string) (string, error) {
	all := poly.InstanceSet{}
	for name := range statements {
		all[name] = struct{}{}
	}
	var out strings.Builder
	if err := gen(root, 0, all, &out, statements); err != nil {
		return "", err
	}
	return out.String(), nil
}

func tabify(n int, dst *strings.Builder) {
	for n > 0 {
		dst.WriteByte('\t')
		n--
	}
}

func tabfprintf(dst *strings.Builder, indent int, f string, args ...interface{}) {
	tabify(indent, dst)
	fmt.Fprintf(dst, f, args...)
}

func tabline(dst *strings.Builder, indent int, line string) {
	tabify(indent, dst)
	dst.WriteString(line)
	dst.WriteByte('\n')
}

func gen(n schedule.Node, indent int, active poly.InstanceSet, out *strings.Builder, statements map[string]string) error {
	switch v := n.(type) {
	case *schedule.DomainNode:
		return gen(v.Child, indent, v.Stmts, out, statements)
	case *schedule.ContextNode:
		return gen(v.Child, indent, active, out, statements)
	case *schedule.BandNode:
		return genBand(v, indent, active, out, statements)
	case *schedule.SequenceNode:
		for _, k := range v.Kids {
			if err := gen(k, indent, active, out, statements); err != nil {
				return err
			}
		}
		return nil
	case *schedule.SetNode:
		tabline(out, indent, "// unordered: iterations below may run in any order")
		for _, k := range v.Kids {
			if err := gen(k, indent, active, out, statements); err != nil {
				return err
			}
		}
		return nil
	case *schedule.FilterNode:
		return gen(v.Child, indent, v.Stmts, out, statements)
	case *schedule.MarkNode:
		tabfprintf(out, indent, "// mark: %s\n", v.Label)
		return gen(v.Child, indent, active, out, statements)
	case *schedule.LeafNode:
		for _, name := range active.Sorted() {
			body, ok := statements[name]
			if !ok {
				return fmt.Errorf("codegen: no body text recorded for statement %q", name)
			}
			tabline(out, indent, body)
		}
		return nil
	default:
		return fmt.Errorf("codegen: unhandled node kind %s", n.Kind())
	}
}

func genBand(b *schedule.BandNode, indent int, active poly.InstanceSet, out *strings.Builder, statements map[string]string) error {
	dims := b.Dims()
	for d := 0; d < dims; d++ {
		v := fmt.Sprintf("%s_%d", b.Partial.OutputID, d)
		tabfprintf(out, indent, "for (int %s = lo_%s; %s < hi_%s; %s++) {", v, v, v, v, v)
		if d < len(b.LoopTypes) {
			if note := loopTypeNote(b.LoopTypes[d]); note != "" {
				out.WriteString(" " + note)
			}
		}
		if d < len(b.Coincident) && b.Coincident[d] {
			out.WriteString(" // coincident")
		}
		out.WriteByte('\n')
		indent++
	}
	tabfprintf(out, indent, "// schedule: %s\n", b.Partial.String())
	if err := gen(b.Child, indent, active, out, statements); err != nil {
		return err
	}
	for d := 0; d < dims; d++ {
		indent--
		tabline(out, indent, "}")
	}
	return nil
}

func loopTypeNote(lt schedule.LoopType) string {
	switch lt {
	case schedule.LoopParallel:
		return "// #pragma omp parallel for"
	case schedule.LoopUnroll:
		return "// #pragma unroll"
	case schedule.LoopAtomic:
		return "// atomic"
	case schedule.LoopSeparate:
		return "// separate"
	default:
		return ""
	}
}
