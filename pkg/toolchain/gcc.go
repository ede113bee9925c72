package toolchain

import (
	"github.com/coffee-is-power/c-project-manager/pkg/manifest"
)

// DefaultCompiler is the program used when GCC.Path is empty
const DefaultCompiler = "gcc"

// GCC drives gcc or any compiler driver with a compatible command line (cc, clang)
type GCC struct {
	// Path of the compiler driver, defaults to DefaultCompiler
	Path string
	// ExtraCompileFlags are appended after the package's own compiler flags
	ExtraCompileFlags []string
	// ExtraLinkFlags are appended after the package's own linker flags
	ExtraLinkFlags []string
	// Launcher wraps compile commands, e.g. ["ccache"]. Links run the driver directly.
	Launcher []string
}

var _ Toolchain = (*GCC)(nil)

// NewGCC returns a GCC toolchain using the given driver
func NewGCC(path string) *GCC {
	return &GCC{Path: path}
}

func (g *GCC) program() string {
	if g.Path == "" {
		return DefaultCompiler
	}
	return g.Path
}

// CompileInvocation returns
//
//	gcc [-ffreestanding] <source> -c -o <object> <flags...> -I<include dir>
func (g *GCC) CompileInvocation(source, object string, target Target) Invocation {
	pkg := target.Package
	args := make([]string, 0, 6+len(pkg.AdditionalCompilerFlags)+len(g.ExtraCompileFlags))

	if pkg.DisableStdLibrary {
		args = append(args, "-ffreestanding")
	}

	args = append(args, source, "-c", "-o", object)
	args = append(args, pkg.AdditionalCompilerFlags...)
	args = append(args, g.ExtraCompileFlags...)
	args = append(args, "-I"+target.IncludeDir())

	if len(g.Launcher) > 0 {
		wrapped := make([]string, 0, len(g.Launcher)+len(args))
		wrapped = append(wrapped, g.Launcher[1:]...)
		wrapped = append(wrapped, g.program())

		return Invocation{
			Program: g.Launcher[0],
			Args:    append(wrapped, args...),
			Dir:     target.Dir,
		}
	}

	return Invocation{
		Program: g.program(),
		Args:    args,
		Dir:     target.Dir,
	}
}

// LinkInvocation returns
//
//	gcc <objects...> <flags...> (-lc|-nostdlib) [-lm] [-lpthread] [-shared|-static] -o <output>
func (g *GCC) LinkInvocation(objects []string, output string, target Target) Invocation {
	pkg := target.Package
	args := make([]string, 0, len(objects)+len(pkg.AdditionalLinkerFlags)+len(g.ExtraLinkFlags)+6)

	args = append(args, objects...)
	args = append(args, pkg.AdditionalLinkerFlags...)
	args = append(args, g.ExtraLinkFlags...)

	if pkg.DisableStdLibrary {
		args = append(args, "-nostdlib")
	} else {
		args = append(args, "-lc")
	}

	if pkg.EnableMathLibrary {
		args = append(args, "-lm")
	}

	if pkg.EnablePthreadLibrary {
		args = append(args, "-lpthread")
	}

	switch pkg.Kind {
	case manifest.DynamicLibrary:
		args = append(args, "-shared")
	case manifest.StaticLibrary:
		args = append(args, "-static")
	}

	args = append(args, "-o", output)

	return Invocation{
		Program: g.program(),
		Args:    args,
		Dir:     target.Dir,
	}
}
