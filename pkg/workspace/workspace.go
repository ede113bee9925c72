// Package workspace builds every package of a cpm workspace.
//
// Members are independent: each one gets its own Builder and a failing
// member never stops the remaining ones from being built.
package workspace

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/coffee-is-power/c-project-manager/pkg/builder"
	"github.com/coffee-is-power/c-project-manager/pkg/buildlog"
	"github.com/coffee-is-power/c-project-manager/pkg/manifest"
)

// Result is the outcome of building a single package
type Result struct {
	Path string
	// Builder is nil if the package manifest couldn't be loaded
	Builder *builder.Builder
	Err     error
}

// OK reports whether the package was built successfully
func (r Result) OK() bool {
	return r.Err == nil
}

// Name returns the package identity or the directory name if the manifest couldn't be loaded
func (r Result) Name() string {
	if r.Builder != nil {
		return r.Builder.Package().Identity()
	}
	return filepath.Base(r.Path)
}

// Report collects the results of a workspace build in build order
type Report struct {
	Root    string
	Results []Result
}

// Succeeded returns all packages which were built successfully
func (r *Report) Succeeded() []Result {
	var result []Result
	for _, item := range r.Results {
		if item.OK() {
			result = append(result, item)
		}
	}
	return result
}

// Failed returns all packages which failed to build
func (r *Report) Failed() []Result {
	var result []Result
	for _, item := range r.Results {
		if !item.OK() {
			result = append(result, item)
		}
	}
	return result
}

// PackagePaths returns the package directories of the workspace rooted at
// root: root itself if its manifest has a package section, followed by all
// members in manifest order.
func PackagePaths(root string, m *manifest.Manifest) []string {
	var paths []string
	if m.Package != nil {
		paths = append(paths, root)
	}

	if m.Workspace != nil {
		for _, member := range m.Workspace.Members {
			paths = append(paths, filepath.Join(root, filepath.FromSlash(member)))
		}
	}

	return paths
}

// LoadRoot reads the manifest of a workspace root. A manifest without any
// section is rejected with builder.ErrWorkspaceSectionMissing.
func LoadRoot(root string) (*manifest.Manifest, error) {
	m, err := manifest.Load(root)
	if err != nil {
		return nil, &builder.ConstructionError{Scope: builder.ScopeWorkspace, Path: root, Err: err}
	}

	if m.Package == nil && m.Workspace == nil {
		return nil, &builder.ConstructionError{Scope: builder.ScopeWorkspace, Path: root, Err: builder.ErrWorkspaceSectionMissing}
	}

	return m, nil
}

// Open constructs a Builder for every package of the workspace without building anything
func Open(ctx context.Context, root string, opts ...builder.Option) (*Report, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to resolve %s", root)
	}

	m, err := LoadRoot(root)
	if err != nil {
		return nil, err
	}

	for _, key := range m.UnknownKeys {
		buildlog.Log(ctx).Warn().Str("path", m.Path).Msgf("unknown manifest key %s", key)
	}

	report := &Report{Root: root}
	for _, path := range PackagePaths(root, m) {
		b, err := builder.New(path, root, opts...)
		if err == nil && path != root {
			for _, key := range b.Manifest().UnknownKeys {
				buildlog.Log(ctx).Warn().Str("path", b.ManifestPath()).Msgf("unknown manifest key %s", key)
			}
		}

		report.Results = append(report.Results, Result{Path: path, Builder: b, Err: err})
	}

	return report, nil
}

// Build compiles every package of the workspace rooted at root. The returned
// error is only set if the workspace manifest itself is unusable; package
// failures are recorded in the report.
func Build(ctx context.Context, root string, opts ...builder.Option) (*Report, error) {
	report, err := Open(ctx, root, opts...)
	if err != nil {
		return nil, err
	}

	logger := buildlog.Log(ctx)
	for idx := range report.Results {
		item := &report.Results[idx]
		if item.Err != nil {
			logger.Error().Err(item.Err).Str("path", item.Path).Msgf("failed to load package %s", item.Name())
			continue
		}

		if err := ctx.Err(); err != nil {
			item.Err = err
			continue
		}

		item.Err = item.Builder.Compile(ctx)
		if item.Err != nil {
			logger.Error().Err(item.Err).Msgf("failed to build %s", item.Name())
		} else {
			logger.Info().Str("path", item.Builder.OutputPath()).Msgf("built %s", item.Name())
		}
	}

	return report, nil
}

// FindPackage walks up from dir to the closest directory containing a cpm.toml
func FindPackage(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", eris.Wrapf(err, "failed to resolve %s", dir)
	}

	for current := dir; ; {
		_, err := os.Stat(manifest.Path(current))
		if err == nil {
			return current, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", eris.Wrapf(err, "failed to check %s", manifest.Path(current))
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", &manifest.NotFoundError{Path: manifest.Path(dir)}
		}
		current = parent
	}
}

// FindRoot returns the workspace root for the package containing dir: the
// closest directory which is a workspace and either is the package
// directory or lists it as a member. A package outside of any workspace is
// its own root.
func FindRoot(dir string) (string, error) {
	pkgDir, err := FindPackage(dir)
	if err != nil {
		return "", err
	}

	for current := pkgDir; ; {
		m, err := manifest.Load(current)
		if err == nil && m.Workspace != nil {
			if current == pkgDir {
				return current, nil
			}

			for _, member := range m.Workspace.Members {
				if filepath.Join(current, filepath.FromSlash(member)) == pkgDir {
					return current, nil
				}
			}
		}

		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}

	return pkgDir, nil
}
