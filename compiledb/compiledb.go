// Package compiledb serializes the compile-kind nodes of a plan.Plan into
// the standard clangd-consumable compile_commands.json format.
package compiledb

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nobgo/nob/plan"
)

// entry is one compile_commands.json object. Using encoding/json (rather
// than hand-built string concatenation) is what makes command/file
// properly escaped -- see REDESIGN FLAGS.
type entry struct {
	Directory string `json:"directory"`
	Command   string `json:"command"`
	File      string `json:"file"`
}

// Filename is the fixed output path written by Write, matching clangd's
// default lookup.
const Filename = "compile_commands.json"

// Write emits exactly one entry per compile-kind node in p, overwriting
// Filename in the current directory.
func Write(p *plan.Plan) error {
	return WriteTo(p, Filename)
}

// WriteTo is Write with an explicit output path, for testing.
func WriteTo(p *plan.Plan, path string) error {
	cmds := p.CompileCommands()
	entries := make([]entry, 0, len(cmds))
	for _, cmd := range cmds {
		file, err := absSourceFile(cmd)
		if err != nil {
			return fmt.Errorf("compiledb: %w", err)
		}

		entries = append(entries, entry{
			Directory: ".",
			Command:   cmd.Command + " " + strings.Join(cmd.Args, " "),
			File:      file,
		})
	}

	data, err := json.MarshalIndent(entries, "", "\t")
	if err != nil {
		return fmt.Errorf("compiledb: marshal: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("compiledb: write %s: %w", path, err)
	}

	return nil
}

// absSourceFile returns the absolute path of cmd's last positional
// argument, which is the source file for every compile command the
// planner emits.
func absSourceFile(cmd plan.Command) (string, error) {
	if len(cmd.Args) == 0 {
		return "", fmt.Errorf("compile command %q has no arguments", cmd.Command)
	}
	last := cmd.Args[len(cmd.Args)-1]
	abs, err := filepath.Abs(last)
	if err != nil {
		return "", fmt.Errorf("absolute path of %q: %w", last, err)
	}
	return abs, nil
}
