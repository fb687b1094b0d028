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
	"strconv"
	"strings"
)

// FormatLog renders a SCoP's committed-operation log as one line per
// entry, numbered in commit order. It exists purely for a human operator
// inspecting why a schedule looks the way it does; a driver doing an
// automated search has no need of it and the commit/rollback protocol
// does not consult it.
func FormatLog(s *SCoP) string {
	var sb strings.Builder
	for i, op := range s.Log() {
		sb.WriteString(strconv.Itoa(i + 1))
		sb.WriteString(": ")
		sb.WriteString(op)
		sb.WriteByte('\n')
	}
	return sb.String()
}
