// Package builder compiles a single cpm package.
//
// A Builder reads the package and workspace manifests once, derives every
// output location from the workspace root and recompiles only the source
// files whose object files are stale before linking all of them into the
// package's artifact.
package builder

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"github.com/coffee-is-power/c-project-manager/pkg/buildlog"
	"github.com/coffee-is-power/c-project-manager/pkg/manifest"
	"github.com/coffee-is-power/c-project-manager/pkg/toolchain"
)

// ProgressFunc is called once for every source file during Compile
type ProgressFunc func(source string, index, total int)

// Builder compiles the package found at a package path. All outputs are
// placed below the workspace path.
type Builder struct {
	packagePath   string
	workspacePath string
	manifest      *manifest.Manifest
	workspace     *manifest.Workspace

	toolchain toolchain.Toolchain
	executor  Executor
	progress  ProgressFunc
	goos      string
	force     bool
	dryRun    bool
}

// Option configures a Builder
type Option func(*Builder)

// WithToolchain selects the compiler binding (defaults to gcc)
func WithToolchain(tc toolchain.Toolchain) Option {
	return func(b *Builder) {
		b.toolchain = tc
	}
}

// WithExecutor replaces the process runner
func WithExecutor(e Executor) Option {
	return func(b *Builder) {
		b.executor = e
	}
}

// WithGOOS overrides the host platform used to pick artifact extensions
func WithGOOS(goos string) Option {
	return func(b *Builder) {
		b.goos = goos
	}
}

// WithForce treats every input as stale
func WithForce(force bool) Option {
	return func(b *Builder) {
		b.force = force
	}
}

// WithDryRun only logs the invocations that would run
func WithDryRun(dryRun bool) Option {
	return func(b *Builder) {
		b.dryRun = dryRun
	}
}

// WithProgress registers a callback for per-file progress
func WithProgress(fn ProgressFunc) Option {
	return func(b *Builder) {
		b.progress = fn
	}
}

// New loads the manifests in packagePath and workspacePath. Both may point to
// the same directory for packages which aren't part of a workspace.
func New(packagePath, workspacePath string, opts ...Option) (*Builder, error) {
	packagePath, err := filepath.Abs(packagePath)
	if err != nil {
		return nil, &ConstructionError{Scope: ScopePackage, Path: packagePath, Err: err}
	}

	workspacePath, err = filepath.Abs(workspacePath)
	if err != nil {
		return nil, &ConstructionError{Scope: ScopeWorkspace, Path: workspacePath, Err: err}
	}

	pkgManifest, err := manifest.Load(packagePath)
	if err != nil {
		return nil, &ConstructionError{Scope: ScopePackage, Path: packagePath, Err: err}
	}

	if pkgManifest.Package == nil {
		return nil, &ConstructionError{Scope: ScopePackage, Path: packagePath, Err: ErrPackageSectionMissing}
	}

	wsManifest := pkgManifest
	if workspacePath != packagePath {
		wsManifest, err = manifest.Load(workspacePath)
		if err != nil {
			return nil, &ConstructionError{Scope: ScopeWorkspace, Path: workspacePath, Err: err}
		}
	}

	b := &Builder{
		packagePath:   packagePath,
		workspacePath: workspacePath,
		manifest:      pkgManifest,
		workspace:     wsManifest.Workspace,
		toolchain:     toolchain.NewGCC(""),
		executor:      &ProcessExecutor{Stdout: os.Stdout},
		goos:          runtime.GOOS,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b, nil
}

// PackagePath returns the absolute package directory
func (b *Builder) PackagePath() string {
	return b.packagePath
}

// WorkspacePath returns the absolute workspace root; outputs go to <workspace>/target
func (b *Builder) WorkspacePath() string {
	return b.workspacePath
}

// Workspace returns the [workspace] section of the workspace manifest, if any
func (b *Builder) Workspace() *manifest.Workspace {
	return b.workspace
}

// Package returns the [package] section of the package manifest
func (b *Builder) Package() *manifest.Package {
	return b.manifest.Package
}

// Manifest returns the full package manifest
func (b *Builder) Manifest() *manifest.Manifest {
	return b.manifest
}

// ManifestPath returns the path of the package's cpm.toml
func (b *Builder) ManifestPath() string {
	return manifest.Path(b.packagePath)
}

// SourceDir returns the absolute source folder
func (b *Builder) SourceDir() string {
	src := b.Package().SrcFolder
	if filepath.IsAbs(src) {
		return src
	}
	return filepath.Join(b.packagePath, src)
}

// ObjectDir returns the folder holding this package's object files
func (b *Builder) ObjectDir() string {
	pkg := b.Package()
	return ObjectDir(b.workspacePath, pkg.Name, pkg.Version)
}

// ObjectPath returns the object file for a source file below SourceDir
func (b *Builder) ObjectPath(source string) string {
	pkg := b.Package()
	rel, err := filepath.Rel(b.SourceDir(), source)
	if err != nil {
		rel = filepath.Base(source)
	}
	return ObjectPath(b.workspacePath, pkg.Name, pkg.Version, rel)
}

// OutputDir returns the folder receiving the linked artifact
func (b *Builder) OutputDir() string {
	pkg := b.Package()
	return OutputDir(b.workspacePath, pkg.Name, pkg.Version, pkg.Kind)
}

// OutputPath returns the path of the linked artifact
func (b *Builder) OutputPath() string {
	pkg := b.Package()
	return OutputPath(b.workspacePath, pkg.Name, pkg.Version, pkg.Kind, b.goos)
}

func (b *Builder) target() toolchain.Target {
	return toolchain.Target{Dir: b.packagePath, Package: b.Package()}
}

// WalkSourceFiles calls fn for every source file below SourceDir. The walk
// happens lazily and can be repeated. A missing source folder has no files.
func (b *Builder) WalkSourceFiles(fn func(path string) error) error {
	root := b.SourceDir()
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root && errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipDir
			}
			return err
		}

		if d.IsDir() || filepath.Ext(path) != SourceExtension {
			return nil
		}

		return fn(path)
	})

	return err
}

// SourceFiles collects all source files of the package
func (b *Builder) SourceFiles() ([]string, error) {
	var result []string
	err := b.WalkSourceFiles(func(path string) error {
		result = append(result, path)
		return nil
	})

	return result, err
}

// NeedsRecompilation reports whether the manifest or any source file is
// newer than the linked artifact.
func (b *Builder) NeedsRecompilation() bool {
	output := b.OutputPath()
	if NeedsRebuild(b.ManifestPath(), output) {
		return true
	}

	errStale := errors.New("stale")
	err := b.WalkSourceFiles(func(path string) error {
		if NeedsRebuild(path, output) {
			return errStale
		}
		return nil
	})

	// walk errors count as stale as well
	return err != nil
}

// CompileStep is a single source file together with its compile invocation
type CompileStep struct {
	Source     string
	Object     string
	Invocation toolchain.Invocation
}

// CompileSteps returns the compile invocation for every current source file
func (b *Builder) CompileSteps() ([]CompileStep, error) {
	sources, err := b.SourceFiles()
	if err != nil {
		return nil, &IOError{Op: "walk", Path: b.SourceDir(), Err: err}
	}

	steps := make([]CompileStep, len(sources))
	for idx, src := range sources {
		obj := b.ObjectPath(src)
		steps[idx] = CompileStep{
			Source:     src,
			Object:     obj,
			Invocation: b.toolchain.CompileInvocation(src, obj, b.target()),
		}
	}

	return steps, nil
}

// Compile brings the linked artifact up to date.
//
// Every stale source file is compiled, even after another file failed. If
// any file failed a *CompilationError is returned and nothing is linked.
// Otherwise all object files of the package are linked into OutputPath.
func (b *Builder) Compile(ctx context.Context) error {
	pkg := b.Package()
	ctx = buildlog.WithPackage(ctx, pkg.Identity())
	logger := buildlog.Log(ctx)

	if !b.force && !b.NeedsRecompilation() {
		logger.Info().Msg("nothing to do (output is up to date)")
		return nil
	}

	steps, err := b.CompileSteps()
	if err != nil {
		return err
	}

	stampPath := filepath.Join(b.ObjectDir(), stampsFile)
	stamps := readStamps(stampPath)

	var failures []CompileFileError
	objects := make([]string, 0, len(steps))

	for idx, step := range steps {
		if b.progress != nil {
			b.progress(step.Source, idx, len(steps))
		}

		key, err := filepath.Rel(b.ObjectDir(), step.Object)
		if err != nil {
			key = step.Object
		}
		cmdline := step.Invocation.String()

		if !b.force && !NeedsRebuild(step.Source, step.Object) && stamps[key] == cmdline {
			logger.Debug().Str("path", step.Source).Msg("object is up to date")
			objects = append(objects, step.Object)
			continue
		}

		logger.Debug().Str("path", step.Source).Msgf("compiling %s", step.Source)
		logger.Debug().Bool("command", true).Msg(cmdline)

		if b.dryRun {
			objects = append(objects, step.Object)
			continue
		}

		err = os.MkdirAll(filepath.Dir(step.Object), 0o770)
		if err != nil {
			return &IOError{Op: "create folder", Path: filepath.Dir(step.Object), Err: err}
		}

		result, err := b.executor.Run(ctx, step.Invocation)
		if err != nil {
			return &IOError{Op: "run", Path: step.Invocation.Program, Err: err}
		}

		if result.ExitCode != 0 {
			logger.Error().Str("path", step.Source).Int("exit_code", result.ExitCode).Msgf("failed to compile %s", step.Source)
			failures = append(failures, CompileFileError{
				Source:   step.Source,
				Object:   step.Object,
				ExitCode: result.ExitCode,
				Stderr:   result.Stderr,
			})
			delete(stamps, key)
			continue
		}

		stamps[key] = cmdline
		objects = append(objects, step.Object)
	}

	if !b.dryRun && len(steps) > 0 {
		err = writeStamps(stampPath, stamps)
		if err != nil {
			return &IOError{Op: "write", Path: stampPath, Err: err}
		}
	}

	if len(failures) > 0 {
		return &CompilationError{Failures: failures}
	}

	if len(objects) == 0 {
		return ErrNoFilesToCompile
	}

	output := b.OutputPath()
	link := b.toolchain.LinkInvocation(objects, output, b.target())
	logger.Info().Str("path", output).Msgf("linking %s", output)
	logger.Debug().Bool("command", true).Msg(link.String())

	if b.dryRun {
		return nil
	}

	err = os.MkdirAll(b.OutputDir(), 0o770)
	if err != nil {
		return &IOError{Op: "create folder", Path: b.OutputDir(), Err: err}
	}

	result, err := b.executor.Run(ctx, link)
	if err != nil {
		return &IOError{Op: "run", Path: link.Program, Err: err}
	}

	if result.ExitCode != 0 {
		return &LinkingError{
			Output:   output,
			ExitCode: result.ExitCode,
			Stderr:   result.Stderr,
		}
	}

	return nil
}

// Clean removes the object files and the linked artifact of this package version
func (b *Builder) Clean() error {
	for _, dir := range []string{b.ObjectDir(), b.OutputDir()} {
		err := os.RemoveAll(dir)
		if err != nil {
			return &IOError{Op: "remove", Path: dir, Err: err}
		}
	}

	return nil
}
