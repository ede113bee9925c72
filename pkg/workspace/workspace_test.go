package workspace

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/coffee-is-power/c-project-manager/pkg/builder"
	"github.com/coffee-is-power/c-project-manager/pkg/builder/buildertest"
	"github.com/coffee-is-power/c-project-manager/pkg/manifest"
)

func buildOpts(exec *buildertest.Executor) []builder.Option {
	return []builder.Option{builder.WithExecutor(exec), builder.WithGOOS("linux")}
}

func TestPackagePaths(t *testing.T) {
	root := filepath.FromSlash("/ws")
	m := &manifest.Manifest{
		Package:   &manifest.Package{Name: "root"},
		Workspace: &manifest.Workspace{Members: []string{"a", "libs/b"}},
	}

	require.Equal(t, []string{
		root,
		filepath.Join(root, "a"),
		filepath.Join(root, "libs", "b"),
	}, PackagePaths(root, m))

	m.Package = nil
	require.Equal(t, []string{filepath.Join(root, "a"), filepath.Join(root, "libs", "b")}, PackagePaths(root, m))
}

func TestBuild_MemberWithoutPackageSection(t *testing.T) {
	root := t.TempDir()
	exec := buildertest.NewExecutor()
	buildertest.WriteFile(t, exec, manifest.Path(root), "[workspace]\nmembers = [\"app\", \"broken\"]\n")
	buildertest.WritePackage(t, exec, buildertest.Package{
		Dir:     filepath.Join(root, "app"),
		Name:    "app",
		Sources: map[string]string{"main.c": "int main(void) { return 0; }"},
	})
	buildertest.WriteFile(t, exec, manifest.Path(filepath.Join(root, "broken")), "[workspace]\nmembers = []\n")

	report, err := Build(context.Background(), root, buildOpts(exec)...)
	require.NoError(t, err)
	require.Len(t, report.Results, 2)

	app := report.Results[0]
	require.True(t, app.OK())
	require.Equal(t, "app-1.0.0", app.Name())
	require.FileExists(t, filepath.Join(root, "target", "executables", "app-1.0.0", "app-1.0.0"))

	broken := report.Results[1]
	require.False(t, broken.OK())
	require.ErrorIs(t, broken.Err, builder.ErrPackageSectionMissing)
	require.Nil(t, broken.Builder)
	require.Equal(t, "broken", broken.Name())

	require.Len(t, report.Succeeded(), 1)
	require.Len(t, report.Failed(), 1)
}

func TestBuild_FailureDoesNotStopLaterMembers(t *testing.T) {
	root := t.TempDir()
	exec := buildertest.NewExecutor()
	exec.Failures["bad.c"] = "bad.c: error"
	buildertest.WriteFile(t, exec, manifest.Path(root), "[workspace]\nmembers = [\"first\", \"second\"]\n")
	buildertest.WritePackage(t, exec, buildertest.Package{
		Dir:     filepath.Join(root, "first"),
		Name:    "first",
		Sources: map[string]string{"bad.c": "oops"},
	})
	buildertest.WritePackage(t, exec, buildertest.Package{
		Dir:     filepath.Join(root, "second"),
		Name:    "second",
		Sources: map[string]string{"main.c": "int main(void) { return 0; }"},
	})

	report, err := Build(context.Background(), root, buildOpts(exec)...)
	require.NoError(t, err)

	var compErr *builder.CompilationError
	require.True(t, errors.As(report.Results[0].Err, &compErr))
	require.True(t, report.Results[1].OK())

	// the failed package is never picked as a run target
	target, err := report.RunTarget("")
	require.NoError(t, err)
	require.Equal(t, "second", target.Builder.Package().Name)

	_, err = report.RunTarget("first")
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to build")
}

func TestBuild_RootPackageAndMembers(t *testing.T) {
	root := t.TempDir()
	exec := buildertest.NewExecutor()
	buildertest.WritePackage(t, exec, buildertest.Package{
		Dir:     root,
		Name:    "tool",
		Extra:   "\n[workspace]\nmembers = [\"lib\"]\n",
		Sources: map[string]string{"main.c": "int main(void) { return 0; }"},
	})
	buildertest.WritePackage(t, exec, buildertest.Package{
		Dir:     filepath.Join(root, "lib"),
		Name:    "lib",
		Kind:    "staticlib",
		Sources: map[string]string{"lib.c": "int x;"},
	})

	report, err := Build(context.Background(), root, buildOpts(exec)...)
	require.NoError(t, err)
	require.Len(t, report.Results, 2)
	require.Equal(t, root, report.Results[0].Path)
	require.Empty(t, report.Failed())

	require.FileExists(t, filepath.Join(root, "target", "staticlibs", "lib-1.0.0", "lib-1.0.0.a"))

	target, err := report.RunTarget("")
	require.NoError(t, err)
	require.Equal(t, "tool", target.Builder.Package().Name)

	_, err = report.RunTarget("lib")
	require.Error(t, err)
}

func TestBuild_RootErrors(t *testing.T) {
	t.Run("missing manifest", func(t *testing.T) {
		_, err := Build(context.Background(), t.TempDir())
		var nfErr *manifest.NotFoundError
		require.ErrorAs(t, err, &nfErr)
	})

	t.Run("empty manifest", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.WriteFile(manifest.Path(root), []byte("# nothing here\n"), 0o644))

		_, err := Build(context.Background(), root)
		require.ErrorIs(t, err, builder.ErrWorkspaceSectionMissing)
	})
}

func TestRunTarget_Ambiguous(t *testing.T) {
	root := t.TempDir()
	exec := buildertest.NewExecutor()
	buildertest.WriteFile(t, exec, manifest.Path(root), "[workspace]\nmembers = [\"a\", \"b\"]\n")
	for _, name := range []string{"a", "b"} {
		buildertest.WritePackage(t, exec, buildertest.Package{
			Dir:     filepath.Join(root, name),
			Name:    name,
			Sources: map[string]string{"main.c": "int main(void) { return 0; }"},
		})
	}

	report, err := Build(context.Background(), root, buildOpts(exec)...)
	require.NoError(t, err)

	_, err = report.RunTarget("")
	require.Error(t, err)
	require.Contains(t, err.Error(), "a, b")

	target, err := report.RunTarget("b")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "target", "executables", "b-1.0.0", "b-1.0.0"), target.Builder.OutputPath())
}

func TestReport_WriteYAML(t *testing.T) {
	root := t.TempDir()
	exec := buildertest.NewExecutor()
	buildertest.WriteFile(t, exec, manifest.Path(root), "[workspace]\nmembers = [\"app\", \"missing\"]\n")
	buildertest.WritePackage(t, exec, buildertest.Package{
		Dir:     filepath.Join(root, "app"),
		Name:    "app",
		Sources: map[string]string{"main.c": "int main(void) { return 0; }"},
	})

	report, err := Build(context.Background(), root, buildOpts(exec)...)
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "report.yml")
	require.NoError(t, report.WriteYAML(out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var doc reportFile
	require.NoError(t, yaml.Unmarshal(data, &doc))
	require.Equal(t, 1, doc.Succeeded)
	require.Equal(t, 1, doc.Failed)
	require.Len(t, doc.Packages, 2)
	require.Equal(t, "app-1.0.0", doc.Packages[0].Package)
	require.Equal(t, "exe", doc.Packages[0].Kind)
	require.Equal(t, "ok", doc.Packages[0].Status)
	require.Equal(t, "failed", doc.Packages[1].Status)
	require.Contains(t, doc.Packages[1].Error, "not found")
}

func TestFindRoot(t *testing.T) {
	root := t.TempDir()
	exec := buildertest.NewExecutor()
	buildertest.WriteFile(t, exec, manifest.Path(root), "[workspace]\nmembers = [\"apps/one\"]\n")
	buildertest.WritePackage(t, exec, buildertest.Package{Dir: filepath.Join(root, "apps", "one"), Name: "one"})
	buildertest.WritePackage(t, exec, buildertest.Package{Dir: filepath.Join(root, "other"), Name: "other"})
	require.NoError(t, os.MkdirAll(filepath.Join(root, "apps", "one", "src", "nested"), 0o755))

	found, err := FindRoot(filepath.Join(root, "apps", "one"))
	require.NoError(t, err)
	require.Equal(t, root, found)

	found, err = FindRoot(filepath.Join(root, "apps", "one", "src", "nested"))
	require.NoError(t, err)
	require.Equal(t, root, found)

	found, err = FindRoot(root)
	require.NoError(t, err)
	require.Equal(t, root, found)

	// not listed as a member, so it's its own root
	found, err = FindRoot(filepath.Join(root, "other"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "other"), found)
}

func TestWatch_RebuildsOnChange(t *testing.T) {
	root := t.TempDir()
	exec := buildertest.NewExecutor()
	buildertest.WritePackage(t, exec, buildertest.Package{
		Dir:     root,
		Name:    "app",
		Sources: map[string]string{"main.c": "int main(void) { return 0; }"},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	builds := make(chan *Report, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, root, 20*time.Millisecond, func(report *Report, err error) {
			if err != nil {
				report = &Report{Results: []Result{{Path: root, Err: err}}}
			}
			builds <- report
		}, buildOpts(exec)...)
	}()

	select {
	case report := <-builds:
		require.Empty(t, report.Failed())
	case <-time.After(5 * time.Second):
		t.Fatal("initial build didn't happen")
	}
	exec.Reset()

	// changes to build outputs don't trigger anything
	require.NoError(t, os.WriteFile(filepath.Join(root, "target", "ignored.c"), []byte("x"), 0o644))

	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "main.c"), []byte("int main(void) { return 1; }"), 0o644))

	select {
	case report := <-builds:
		require.Empty(t, report.Failed())
	case <-time.After(5 * time.Second):
		t.Fatal("change didn't trigger a rebuild")
	}
	require.Equal(t, []string{filepath.Join(root, "src", "main.c")}, exec.Compiled())

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch didn't stop")
	}
}

func TestRelevant(t *testing.T) {
	require.True(t, relevant(filepath.Join("a", "cpm.toml")))
	require.True(t, relevant("main.c"))
	require.True(t, relevant("util.h"))
	require.False(t, relevant("README.md"))

	root := filepath.FromSlash("/ws")
	require.True(t, ignored(root, filepath.Join(root, "target", "objects", "x.o")))
	require.False(t, ignored(root, filepath.Join(root, "src", "main.c")))
}
