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
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hikettei/tadashi/schedule"
)

const gemmSource = `void gemm(double C[10][10], double A[10][10], double B[10][10]) {
#pragma scop
for (int i = 0; i < 10; i++)
for (int j = 0; j < 10; j++)
for (int k = 0; k < 10; k++)
C[i][j] = C[i][j] + A[i][k] * B[k][j];
#pragma endscop
}
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "gemm.c")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp source: %v", err)
	}
	return path
}

func TestExtractGemmBandTower(t *testing.T) {
	path := writeTemp(t, gemmSource)
	scops, err := PragmaFrontEnd{}.Extract(path)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(scops) != 1 {
		t.Fatalf("expected 1 scop, got %d", len(scops))
	}
	s := scops[0]
	if len(s.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(s.Statements))
	}
	domain, ok := s.Root.(*schedule.DomainNode)
	if !ok {
		t.Fatalf("expected domain root, got different node")
	}
	ctx, ok := domain.Child.(*schedule.ContextNode)
	if !ok {
		t.Fatalf("expected context under domain")
	}
	depth := 0
	var n schedule.Node = ctx.Child
	for {
		b, ok := n.(*schedule.BandNode)
		if !ok {
			break
		}
		depth++
		n = b.Child
	}
	if depth != 3 {
		t.Fatalf("expected a 3-deep band tower (i,j,k), got depth %d", depth)
	}
}

func TestTransformStreamsNonScopVerbatim(t *testing.T) {
	path := writeTemp(t, gemmSource)
	var out bytes.Buffer
	called := 0
	err := PragmaFrontEnd{}.Transform(path, &out, func(w io.Writer, scop *ScopInfo) error {
		called++
		_, werr := w.Write([]byte("/* replaced */\n"))
		return werr
	})
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	if called != 1 {
		t.Fatalf("expected callback invoked once, got %d", called)
	}
	if !strings.Contains(out.String(), "void gemm") {
		t.Fatalf("expected non-scop prologue to be streamed verbatim, got %q", out.String())
	}
	if !strings.Contains(out.String(), "/* replaced */") {
		t.Fatalf("expected callback output to be present, got %q", out.String())
	}
	if strings.Contains(out.String(), "#pragma scop") {
		t.Fatalf("pragma region should not be copied verbatim")
	}
}
