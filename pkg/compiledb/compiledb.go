// Package compiledb writes clang-style compile_commands.json files
package compiledb

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"

	"github.com/coffee-is-power/c-project-manager/pkg/builder"
)

// FileName is the conventional name of a compilation database
const FileName = "compile_commands.json"

// Entry is a single translation unit. Only absolute paths are used.
type Entry struct {
	Directory string   `json:"directory"`
	Arguments []string `json:"arguments"`
	File      string   `json:"file"`
	Output    string   `json:"output,omitempty"`
}

// FromSteps converts builder compile steps into database entries
func FromSteps(steps []builder.CompileStep) []Entry {
	entries := make([]Entry, len(steps))
	for idx, step := range steps {
		entries[idx] = Entry{
			Directory: step.Invocation.Dir,
			Arguments: step.Invocation.Argv(),
			File:      step.Source,
			Output:    step.Object,
		}
	}

	return entries
}

// Write stores entries as JSON at path
func Write(path string, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return eris.Wrap(err, "failed to encode output")
	}

	err = os.WriteFile(path, data, 0o660)
	if err != nil {
		return eris.Wrapf(err, "failed to write to %s", path)
	}

	return nil
}

// Merge concatenates several compile_commands.json files. Entries are kept
// as opaque JSON objects so that fields cpm doesn't know about survive.
func Merge(output string, inputs ...string) error {
	if len(inputs) == 0 {
		return eris.New("expected at least one input file")
	}

	merged := make([]json.RawMessage, 0)
	for _, fpath := range inputs {
		data, err := os.ReadFile(fpath)
		if err != nil {
			return eris.Wrapf(err, "failed to read %s", fpath)
		}

		var chunk []json.RawMessage
		err = json.Unmarshal(data, &chunk)
		if err != nil {
			return eris.Wrapf(err, "failed to decode %s", fpath)
		}

		merged = append(merged, chunk...)
	}

	data, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return eris.Wrap(err, "failed to encode output")
	}

	err = os.WriteFile(output, data, 0o660)
	if err != nil {
		return eris.Wrapf(err, "failed to write to %s", output)
	}

	return nil
}
