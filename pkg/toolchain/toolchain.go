// Package toolchain turns build intent into compiler process invocations.
//
// A Toolchain never runs anything itself; it only describes the processes
// the builder should spawn. New compilers are added as new implementations
// of the Toolchain interface.
package toolchain

import (
	"path/filepath"
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"github.com/coffee-is-power/c-project-manager/pkg/manifest"
)

// Invocation describes a single external process
type Invocation struct {
	Program string
	Args    []string
	// Dir is the working directory of the process. Empty means the caller's directory.
	Dir string
}

// Argv returns the program followed by its arguments
func (i Invocation) Argv() []string {
	return append([]string{i.Program}, i.Args...)
}

// String renders the invocation as a shell command line
func (i Invocation) String() string {
	parts := make([]string, 0, len(i.Args)+1)
	for _, arg := range i.Argv() {
		quoted, err := syntax.Quote(arg, syntax.LangBash)
		if err != nil {
			// only happens for strings that can't be represented (i.e. NUL bytes)
			quoted = arg
		}
		parts = append(parts, quoted)
	}

	return strings.Join(parts, " ")
}

// Target couples a package description with the directory it was loaded from
type Target struct {
	Dir     string
	Package *manifest.Package
}

// IncludeDir returns the absolute public header folder of the target
func (t Target) IncludeDir() string {
	if filepath.IsAbs(t.Package.IncludeFolder) {
		return t.Package.IncludeFolder
	}
	return filepath.Join(t.Dir, t.Package.IncludeFolder)
}

// Toolchain produces compile and link invocations for a compiler
type Toolchain interface {
	// CompileInvocation compiles a single source file into an object file
	CompileInvocation(source, object string, target Target) Invocation
	// LinkInvocation links all object files of a package into output
	LinkInvocation(objects []string, output string, target Target) Invocation
}
