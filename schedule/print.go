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

import (
	"fmt"
	"strings"
)

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

// Dump renders root as an indented tree, one line per node -- the
// introspection text a driver's print_schedule_node returns.
func Dump(root Node) string {
	var out strings.Builder
	dump(root, 0, &out)
	return out.String()
}

func dump(n Node, indent int, dst *strings.Builder) {
	switch v := n.(type) {
	case *DomainNode:
		tabline(dst, indent, fmt.Sprintf("domain %v", v.Stmts.Sorted()))
		dump(v.Child, indent+1, dst)
	case *ContextNode:
		tabline(dst, indent, "context")
		dump(v.Child, indent+1, dst)
	case *BandNode:
		tabfprintf(dst, indent, "band permutable=%v %s\n", v.Permutable, v.Partial.String())
		dump(v.Child, indent+1, dst)
	case *SequenceNode:
		tabline(dst, indent, "sequence")
		for _, k := range v.Kids {
			dump(k, indent+1, dst)
		}
	case *SetNode:
		tabline(dst, indent, "set")
		for _, k := range v.Kids {
			dump(k, indent+1, dst)
		}
	case *FilterNode:
		tabline(dst, indent, fmt.Sprintf("filter %v", v.Stmts.Sorted()))
		dump(v.Child, indent+1, dst)
	case *MarkNode:
		tabline(dst, indent, fmt.Sprintf("mark %q", v.Label))
		dump(v.Child, indent+1, dst)
	case *LeafNode:
		tabline(dst, indent, "leaf")
	default:
		tabline(dst, indent, "?")
	}
}

// PartialSchedule renders a Band node's affine expressions as text, the
// form the driver's get_expr operation returns.
func PartialSchedule(n Node) (string, error) {
	b, ok := n.(*BandNode)
	if !ok {
		return "", fmt.Errorf("schedule: node %s has no partial schedule", n.Kind())
	}
	return b.Partial.String(), nil
}
