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

// Command tadashi drives the polyhedral schedule transformer over a
// pragma-delimited C source file, either replaying a YAML driver script
// or running a fixed tile/parallelize demo sequence against the first
// SCoP's outermost band.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hikettei/tadashi/codegen"
	"github.com/hikettei/tadashi/driver"
	"github.com/hikettei/tadashi/frontend"
)

var (
	dashscript string
	dasho      string
	dashtile   int64
)

func init() {
	flag.StringVar(&dashscript, "script", "", "YAML driver script to replay (overrides the demo sequence)")
	flag.StringVar(&dasho, "o", "", "output path for generated code (default: <source>.tadashi.c)")
	flag.Int64Var(&dashtile, "tile", 32, "tile size for the demo sequence")
}

func main() {
	flag.Parse()

	d := driver.New(frontend.PragmaFrontEnd{}, codegen.TextGenerator{})

	if dashscript != "" {
		script, err := driver.LoadScript(dashscript)
		if err != nil {
			exit(err)
		}
		if err := d.Run(script); err != nil {
			exit(err)
		}
		return
	}

	args := flag.Args()
	if len(args) != 1 {
		flag.CommandLine.Usage()
		os.Exit(1)
	}
	source := args[0]
	out := dasho
	if out == "" {
		out = source + ".tadashi.c"
	}
	runDemo(d, source, out)
}

// runDemo drives a fixed sequence against SCoP 0's outermost band: tile
// it by -tile, mark the outer dimension parallel, and regenerate code.
func runDemo(d *driver.Driver, source, out string) {
	n, err := d.InitScops(source)
	if err != nil {
		exit(err)
	}
	if n == 0 {
		exitf("no SCoPs found in %s (missing #pragma scop?)", source)
	}

	if err := d.GotoChild(0, 0); err != nil {
		exit(err)
	}
	if err := d.GotoChild(0, 0); err != nil {
		exit(err)
	}

	ok, err := d.Tile(0, dashtile)
	if err != nil {
		exit(err)
	}
	if !ok {
		fmt.Fprintln(os.Stderr, "tadashi: tile rejected as illegal, leaving schedule untouched")
	} else if _, err := d.SetParallel(0, 0); err != nil {
		exit(err)
	}

	if err := d.GenerateCode(source, out); err != nil {
		exit(err)
	}
	fmt.Println(out)
}

func exitf(f string, args ...any) {
	exit(fmt.Errorf(f, args...))
}

func exit(err error) {
	fmt.Fprintln(os.Stderr, "tadashi:", err)
	os.Exit(1)
}
