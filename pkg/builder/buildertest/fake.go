// Package buildertest provides a fake compiler for builder and workspace tests
package buildertest

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/coffee-is-power/c-project-manager/pkg/builder"
	"github.com/coffee-is-power/c-project-manager/pkg/manifest"
	"github.com/coffee-is-power/c-project-manager/pkg/toolchain"
)

// Executor pretends to be gcc: it writes the file passed to -o and records
// every invocation. Produced files get timestamps from a fake clock that
// advances one second per invocation so staleness checks are deterministic.
type Executor struct {
	lock sync.Mutex
	now  time.Time

	// Failures maps source file base names to the stderr of a failing compile
	Failures map[string]string
	// LinkFailure makes every link invocation fail with this stderr when set
	LinkFailure string

	Calls []toolchain.Invocation
}

var _ builder.Executor = (*Executor)(nil)

// NewExecutor returns an executor whose clock starts ten minutes in the past
func NewExecutor() *Executor {
	return &Executor{
		now:      time.Now().Add(-10 * time.Minute).Truncate(time.Second),
		Failures: map[string]string{},
	}
}

// Tick advances the fake clock and returns the new time
func (e *Executor) Tick() time.Time {
	e.lock.Lock()
	defer e.lock.Unlock()

	e.now = e.now.Add(time.Second)
	return e.now
}

// Touch marks path as modified "now" according to the fake clock
func (e *Executor) Touch(t *testing.T, path string) {
	ts := e.Tick()
	require.NoError(t, os.Chtimes(path, ts, ts))
}

// Reset forgets all recorded calls
func (e *Executor) Reset() {
	e.lock.Lock()
	defer e.lock.Unlock()
	e.Calls = nil
}

// Compiled returns the sources passed to compile invocations, in call order
func (e *Executor) Compiled() []string {
	e.lock.Lock()
	defer e.lock.Unlock()

	var result []string
	for _, call := range e.Calls {
		if src, ok := compileSource(call); ok {
			result = append(result, src)
		}
	}
	return result
}

// Links returns all link invocations
func (e *Executor) Links() []toolchain.Invocation {
	e.lock.Lock()
	defer e.lock.Unlock()

	var result []toolchain.Invocation
	for _, call := range e.Calls {
		if _, ok := compileSource(call); !ok {
			result = append(result, call)
		}
	}
	return result
}

func compileSource(inv toolchain.Invocation) (string, bool) {
	for idx, arg := range inv.Args {
		if arg == "-c" && idx > 0 {
			return inv.Args[idx-1], true
		}
	}
	return "", false
}

func outputOf(inv toolchain.Invocation) string {
	for idx, arg := range inv.Args {
		if arg == "-o" && idx+1 < len(inv.Args) {
			return inv.Args[idx+1]
		}
	}
	return ""
}

// Run implements builder.Executor
func (e *Executor) Run(ctx context.Context, inv toolchain.Invocation) (builder.Result, error) {
	e.lock.Lock()
	e.Calls = append(e.Calls, inv)
	e.lock.Unlock()

	if src, ok := compileSource(inv); ok {
		if stderr, fail := e.Failures[filepath.Base(src)]; fail {
			return builder.Result{ExitCode: 1, Stderr: stderr}, nil
		}
	} else if e.LinkFailure != "" {
		return builder.Result{ExitCode: 1, Stderr: e.LinkFailure}, nil
	}

	out := outputOf(inv)
	if out == "" {
		return builder.Result{ExitCode: 2, Stderr: "no output file"}, nil
	}

	if err := os.WriteFile(out, []byte("fake artifact\n"), 0o755); err != nil {
		return builder.Result{}, err
	}

	ts := e.Tick()
	if err := os.Chtimes(out, ts, ts); err != nil {
		return builder.Result{}, err
	}

	return builder.Result{}, nil
}

// Package describes a package written by WritePackage
type Package struct {
	Dir     string
	Name    string
	Version string
	Kind    string
	Extra   string
	Sources map[string]string
}

// WritePackage creates a package directory with a manifest and sources. All
// files are dated one hour before the executor's clock.
func WritePackage(t *testing.T, exec *Executor, pkg Package) {
	require.NoError(t, os.MkdirAll(pkg.Dir, 0o755))

	version := pkg.Version
	if version == "" {
		version = "1.0.0"
	}
	kind := pkg.Kind
	if kind == "" {
		kind = "exe"
	}

	content := "[package]\nname = \"" + pkg.Name + "\"\nversion = \"" + version + "\"\nkind = \"" + kind + "\"\n" + pkg.Extra
	WriteFile(t, exec, manifest.Path(pkg.Dir), content)

	for rel, body := range pkg.Sources {
		WriteFile(t, exec, filepath.Join(pkg.Dir, "src", filepath.FromSlash(rel)), body)
	}
}

// WriteFile writes content to path and dates it one hour before the executor's clock
func WriteFile(t *testing.T, exec *Executor, path, content string) {
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	exec.lock.Lock()
	ts := exec.now.Add(-time.Hour)
	exec.lock.Unlock()

	require.NoError(t, os.Chtimes(path, ts, ts))
}
