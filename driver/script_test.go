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

package driver

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hikettei/tadashi/codegen"
	"github.com/hikettei/tadashi/frontend"
)

const scriptTestSource = `void mm(double C[10][10], double A[10][10], double B[10][10]) {
#pragma scop
for (int i = 0; i < 10; i++)
for (int j = 0; j < 10; j++)
C[i][j] = C[i][j] + A[i][j];
#pragma endscop
}
`

func TestLoadAndRunScript(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "mm.c")
	if err := os.WriteFile(srcPath, []byte(scriptTestSource), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	outPath := filepath.Join(dir, "mm.out.c")
	scriptPath := filepath.Join(dir, "script.yaml")
	yamlText := "source: " + srcPath + "\noutput: " + outPath + "\nsteps:\n" +
		"  - op: goto_child\n    scop: 0\n    k: 0\n" +
		"  - op: goto_child\n    scop: 0\n    k: 0\n" +
		"  - op: tile\n    scop: 0\n    tile_size: 2\n" +
		"  - op: set_parallel\n    scop: 0\n    dim: 0\n" +
		"  - op: set_loop_opt\n    scop: 0\n    pos: 0\n    loop_type: parallel\n"
	if err := os.WriteFile(scriptPath, []byte(yamlText), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}

	script, err := LoadScript(scriptPath)
	if err != nil {
		t.Fatalf("load script: %v", err)
	}
	if script.Source != srcPath || script.Output != outPath {
		t.Fatalf("unexpected script fields: %+v", script)
	}
	if len(script.Steps) != 5 {
		t.Fatalf("expected 5 steps, got %d", len(script.Steps))
	}

	d := New(frontend.PragmaFrontEnd{}, codegen.TextGenerator{})
	if err := d.Run(script); err != nil {
		t.Fatalf("run: %v", err)
	}

	out, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(out), "#pragma omp parallel for") {
		t.Fatalf("expected parallel annotation in generated output, got:\n%s", out)
	}
	if strings.Count(string(out), "for (int") < 3 {
		t.Fatalf("expected tile to add a nested loop level, got:\n%s", out)
	}
}

func TestRunScriptStopsOnUnknownOp(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "mm.c")
	if err := os.WriteFile(srcPath, []byte(scriptTestSource), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	script := &Script{
		Source: srcPath,
		Steps:  []Step{{Op: "not_a_real_op", SCoP: 0}},
	}
	d := New(frontend.PragmaFrontEnd{}, codegen.TextGenerator{})
	if err := d.Run(script); err == nil {
		t.Fatal("expected an error for an unknown op")
	}
}
