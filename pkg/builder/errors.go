package builder

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

var (
	// ErrPackageSectionMissing is returned when the package manifest has no [package] section
	ErrPackageSectionMissing = eris.New("`package` section not found")
	// ErrWorkspaceSectionMissing is returned when a workspace root has neither a [workspace] nor a [package] section
	ErrWorkspaceSectionMissing = eris.New("`workspace` section not found")
	// ErrNoFilesToCompile is returned when the source folder contains no source files
	ErrNoFilesToCompile = eris.New("no files to compile (no source files found)")
)

// Scope tells which manifest a ConstructionError refers to
type Scope int

const (
	ScopePackage Scope = iota
	ScopeWorkspace
)

func (s Scope) String() string {
	if s == ScopeWorkspace {
		return "workspace"
	}
	return "package"
}

// ConstructionError is returned by New when a Builder can't be created.
// Err is one of *manifest.NotFoundError, *manifest.ParseError,
// *manifest.ReadError, ErrPackageSectionMissing or ErrWorkspaceSectionMissing.
type ConstructionError struct {
	Scope Scope
	Path  string
	Err   error
}

var _ error = (*ConstructionError)(nil)

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("invalid %s manifest in %s: %v", e.Scope, e.Path, e.Err)
}

func (e *ConstructionError) Unwrap() error {
	return e.Err
}

// CompileFileError describes a single source file that failed to compile
type CompileFileError struct {
	Source   string
	Object   string
	ExitCode int
	Stderr   string
}

var _ error = CompileFileError{}

func (e CompileFileError) Error() string {
	return fmt.Sprintf("failed to compile file %s (exit code %d)", e.Source, e.ExitCode)
}

// CompilationError aggregates every file that failed during a build. Linking
// never happens when this error is returned.
type CompilationError struct {
	Failures []CompileFileError
}

var _ error = (*CompilationError)(nil)

func (e *CompilationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "compilation errors occurred in %d file(s):", len(e.Failures))
	for _, failure := range e.Failures {
		b.WriteString("\n  ")
		b.WriteString(failure.Error())
		if failure.Stderr != "" {
			b.WriteString("\n")
			b.WriteString(failure.Stderr)
		}
	}
	return b.String()
}

// LinkingError is returned when the linker exits with a non-zero status
type LinkingError struct {
	Output   string
	ExitCode int
	Stderr   string
}

var _ error = (*LinkingError)(nil)

func (e *LinkingError) Error() string {
	msg := fmt.Sprintf("failed to link %s (exit code %d)", e.Output, e.ExitCode)
	if e.Stderr != "" {
		msg += "\n" + e.Stderr
	}
	return msg
}

// IOError wraps filesystem and process spawn failures. These abort the
// build of the affected package immediately.
type IOError struct {
	Op   string
	Path string
	Err  error
}

var _ error = (*IOError)(nil)

func (e *IOError) Error() string {
	return fmt.Sprintf("io error: failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
