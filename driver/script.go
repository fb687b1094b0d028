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
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/hikettei/tadashi/schedule"
)

// Step is one line of a driver script: an operation name plus whichever
// parameters that operation needs. Unused fields are simply left at their
// zero value; each Op case below reads only the fields it needs.
type Step struct {
	Op       string   `yaml:"op"`
	SCoP     int      `yaml:"scop"`
	K        int      `yaml:"k,omitempty"`
	TileSize int64    `yaml:"tile_size,omitempty"`
	I1       int      `yaml:"i1,omitempty"`
	I2       int      `yaml:"i2,omitempty"`
	First    []string `yaml:"first,omitempty"`
	Second   []string `yaml:"second,omitempty"`
	Scale    int64    `yaml:"scale,omitempty"`
	Piece    int      `yaml:"piece,omitempty"`
	Value    int64    `yaml:"value,omitempty"`
	Var      int      `yaml:"var,omitempty"`
	Dim      int      `yaml:"dim,omitempty"`
	Pos      int      `yaml:"pos,omitempty"`
	LoopType string   `yaml:"loop_type,omitempty"`
}

// Script is a driver-script replay file: a source path to load, an output
// path to write generate_code's result to, and an ordered list of Steps
// to apply in between -- the fixed-config counterpart to an interactive
// search driver invoking Driver's methods one at a time.
type Script struct {
	Source string `yaml:"source"`
	Output string `yaml:"output"`
	Steps  []Step `yaml:"steps"`
}

// LoadScript reads and parses a YAML driver script from path.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("driver: reading script %s: %w", path, err)
	}
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("driver: parsing script %s: %w", path, err)
	}
	return &s, nil
}

// Run replays script against d: it loads script.Source, applies every
// Step in order, and (if script.Output is set) calls generate_code at the
// end. It stops at the first error or the first rejected (illegal)
// primitive.
func (d *Driver) Run(script *Script) error {
	if _, err := d.InitScops(script.Source); err != nil {
		return err
	}
	for n, step := range script.Steps {
		if err := d.runStep(step); err != nil {
			return fmt.Errorf("driver: script step %d (%s): %w", n, step.Op, err)
		}
	}
	if script.Output != "" {
		if err := d.GenerateCode(script.Source, script.Output); err != nil {
			return fmt.Errorf("driver: script generate_code: %w", err)
		}
	}
	return nil
}

func (d *Driver) runStep(s Step) error {
	switch s.Op {
	case "goto_root":
		return d.GotoRoot(s.SCoP)
	case "goto_parent":
		return d.GotoParent(s.SCoP)
	case "goto_child":
		return d.GotoChild(s.SCoP, s.K)
	case "tile":
		return rejectIfIllegal(d.Tile(s.SCoP, s.TileSize))
	case "interchange":
		return rejectIfIllegal(d.Interchange(s.SCoP))
	case "fuse":
		return rejectIfIllegal(d.Fuse(s.SCoP, s.I1, s.I2))
	case "split":
		return rejectIfIllegal(d.Split(s.SCoP, setOf(s.First), setOf(s.Second)))
	case "complete_fuse":
		return rejectIfIllegal(d.CompleteFuse(s.SCoP))
	case "scale":
		return rejectIfIllegal(d.Scale(s.SCoP, s.Scale))
	case "partial_shift_val":
		return rejectIfIllegal(d.PartialShiftVal(s.SCoP, s.Piece, s.Value))
	case "partial_shift_var":
		return rejectIfIllegal(d.PartialShiftVar(s.SCoP, s.Piece, s.Var))
	case "full_shift_val":
		return rejectIfIllegal(d.FullShiftVal(s.SCoP, s.Value))
	case "full_shift_var":
		return rejectIfIllegal(d.FullShiftVar(s.SCoP, s.Var))
	case "set_parallel":
		return rejectIfIllegal(d.SetParallel(s.SCoP, s.Dim))
	case "set_loop_opt":
		lt, err := parseLoopType(s.LoopType)
		if err != nil {
			return err
		}
		return rejectIfIllegal(d.SetLoopOpt(s.SCoP, s.Pos, lt))
	default:
		return fmt.Errorf("unknown op %q", s.Op)
	}
}

func rejectIfIllegal(ok bool, err error) error {
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("primitive rejected as illegal")
	}
	return nil
}

func setOf(names []string) (set map[string]struct{}) {
	set = make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

func parseLoopType(s string) (schedule.LoopType, error) {
	switch s {
	case "default", "":
		return schedule.LoopDefault, nil
	case "atomic":
		return schedule.LoopAtomic, nil
	case "unroll":
		return schedule.LoopUnroll, nil
	case "separate":
		return schedule.LoopSeparate, nil
	case "parallel":
		return schedule.LoopParallel, nil
	default:
		return schedule.LoopDefault, fmt.Errorf("unknown loop type %q", s)
	}
}
