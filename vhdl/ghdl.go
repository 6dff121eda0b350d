package vhdl

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sarchlab/hlimgo/hlim"
)

// WriteGHDLScript emits a POSIX shell script at <dir>/<name>.sh that drives
// GHDL through analysis, elaboration, and a VCD/GHW-dumping run of the
// testbench entity testbenchName, per spec.md §6's `writeGHDLScript(name)`
// entry point: analyze the helper package, then every entity file in
// dependency order so no entity is analyzed before a sub-entity it
// instantiates, then the testbench file itself, then elaborate and run.
func WriteGHDLScript(ast *AST, testbenchName, dir, name string) error {
	ext := ".vhdl"

	var b strings.Builder
	b.WriteString("#!/bin/sh\n")
	b.WriteString("# generated GHDL analyze/elaborate/run script\n")
	b.WriteString("set -e\n\n")
	b.WriteString(fmt.Sprintf("ghdl -a --std=93 %q\n", ast.Helper.Name+ext))

	for _, ent := range getDependencySortedEntities(ast) {
		b.WriteString(fmt.Sprintf("ghdl -a --std=93 %q\n", ent.Name+ext))
	}

	b.WriteString(fmt.Sprintf("ghdl -a --std=93 %q\n\n", testbenchName+ext))
	b.WriteString(fmt.Sprintf("ghdl -e --std=93 %q\n\n", testbenchName))
	b.WriteString(fmt.Sprintf(
		"ghdl -r --std=93 %q --vcd=%s.vcd --wave=%s.ghw\n",
		testbenchName, testbenchName, testbenchName,
	))

	path := filepath.Join(dir, name+".sh")
	f, err := os.Create(path)
	if err != nil {
		panic(&hlim.Error{Kind: hlim.VHDLOutputOpenFailed, Message: err.Error()})
	}
	defer f.Close()

	if _, err := f.WriteString(b.String()); err != nil {
		return err
	}
	return os.Chmod(path, 0o755)
}
