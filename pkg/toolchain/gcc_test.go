package toolchain

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coffee-is-power/c-project-manager/pkg/manifest"
)

func testTarget(mutate func(pkg *manifest.Package)) Target {
	pkg := &manifest.Package{
		Name:          "foo",
		Version:       manifest.MustParseVersion("1.2.0"),
		SrcFolder:     "src",
		IncludeFolder: "include",
	}
	if mutate != nil {
		mutate(pkg)
	}

	return Target{Dir: filepath.FromSlash("/work/foo"), Package: pkg}
}

func TestCompileInvocation_Defaults(t *testing.T) {
	gcc := NewGCC("")
	inv := gcc.CompileInvocation("a.c", "a.o", testTarget(nil))

	require.Equal(t, "gcc", inv.Program)
	require.Equal(t, []string{
		"a.c", "-c", "-o", "a.o",
		"-I" + filepath.Join(filepath.FromSlash("/work/foo"), "include"),
	}, inv.Args)
	require.Equal(t, filepath.FromSlash("/work/foo"), inv.Dir)
}

func TestCompileInvocation_FlagsInOrder(t *testing.T) {
	gcc := &GCC{Path: "clang", ExtraCompileFlags: []string{"-g"}}
	inv := gcc.CompileInvocation("a.c", "a.o", testTarget(func(pkg *manifest.Package) {
		pkg.AdditionalCompilerFlags = []string{"-Wall", "-O2", "-DFOO=1"}
		pkg.DisableStdLibrary = true
	}))

	require.Equal(t, "clang", inv.Program)
	require.Equal(t, "-ffreestanding", inv.Args[0])
	require.Equal(t, []string{"-Wall", "-O2", "-DFOO=1", "-g"}, inv.Args[5:9])
	require.Equal(t, "-I"+filepath.Join(filepath.FromSlash("/work/foo"), "include"), inv.Args[len(inv.Args)-1])
}

func TestCompileInvocation_AbsoluteIncludeFolder(t *testing.T) {
	abs := filepath.FromSlash("/opt/headers")
	inv := NewGCC("").CompileInvocation("a.c", "a.o", testTarget(func(pkg *manifest.Package) {
		pkg.IncludeFolder = abs
	}))

	require.Equal(t, "-I"+abs, inv.Args[len(inv.Args)-1])
}

func TestCompileInvocation_Launcher(t *testing.T) {
	gcc := &GCC{Launcher: []string{"ccache", "--verbose"}}
	target := testTarget(nil)

	inv := gcc.CompileInvocation("a.c", "a.o", target)
	require.Equal(t, "ccache", inv.Program)
	require.Equal(t, []string{"--verbose", "gcc", "a.c", "-c", "-o", "a.o"}, inv.Args[:6])

	link := gcc.LinkInvocation([]string{"a.o"}, "a", target)
	require.Equal(t, "gcc", link.Program)
}

func TestLinkInvocation_Executable(t *testing.T) {
	inv := NewGCC("").LinkInvocation([]string{"a.o", "b.o"}, "out", testTarget(func(pkg *manifest.Package) {
		pkg.AdditionalLinkerFlags = []string{"-L/opt/lib", "-lfoo"}
	}))

	require.Equal(t, []string{"a.o", "b.o", "-L/opt/lib", "-lfoo", "-lc", "-o", "out"}, inv.Args)
}

func TestLinkInvocation_DynlibWithMath(t *testing.T) {
	inv := NewGCC("").LinkInvocation([]string{"a.o"}, "libfoo.so", testTarget(func(pkg *manifest.Package) {
		pkg.Kind = manifest.DynamicLibrary
		pkg.EnableMathLibrary = true
	}))

	require.Contains(t, inv.Args, "-shared")
	require.Contains(t, inv.Args, "-lm")
	require.Contains(t, inv.Args, "-lc")
	require.NotContains(t, inv.Args, "-lpthread")
	require.NotContains(t, inv.Args, "-static")

	freestanding := NewGCC("").LinkInvocation([]string{"a.o"}, "libfoo.so", testTarget(func(pkg *manifest.Package) {
		pkg.Kind = manifest.DynamicLibrary
		pkg.EnableMathLibrary = true
		pkg.DisableStdLibrary = true
	}))

	require.Contains(t, freestanding.Args, "-shared")
	require.Contains(t, freestanding.Args, "-lm")
	require.NotContains(t, freestanding.Args, "-lc")
	require.Contains(t, freestanding.Args, "-nostdlib")
}

func TestLinkInvocation_StaticWithPthread(t *testing.T) {
	inv := NewGCC("").LinkInvocation([]string{"a.o"}, "libfoo.a", testTarget(func(pkg *manifest.Package) {
		pkg.Kind = manifest.StaticLibrary
		pkg.EnablePthreadLibrary = true
	}))

	require.Equal(t, []string{"a.o", "-lc", "-lpthread", "-static", "-o", "libfoo.a"}, inv.Args)
}

func TestInvocation_String(t *testing.T) {
	inv := Invocation{Program: "gcc", Args: []string{"my file.c", "-c", "-o", "out.o"}}
	require.Equal(t, "gcc 'my file.c' -c -o out.o", inv.String())
	require.Equal(t, []string{"gcc", "my file.c", "-c", "-o", "out.o"}, inv.Argv())
}
