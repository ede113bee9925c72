package builder

import (
	"path/filepath"
	"strings"

	"github.com/coffee-is-power/c-project-manager/pkg/manifest"
)

// TargetFolder is the directory below the workspace root which receives all build outputs
const TargetFolder = "target"

// SourceExtension is the extension of the files compiled by cpm
const SourceExtension = ".c"

const objectExtension = ".o"

func identity(name string, version manifest.Version) string {
	return name + "-" + version.String()
}

// ObjectDir returns the folder holding all object files of a package version
func ObjectDir(workspace, name string, version manifest.Version) string {
	return filepath.Join(workspace, TargetFolder, "objects", identity(name, version))
}

// ObjectPath maps a source path relative to the source folder to its object file.
// "net/http.c" becomes "<object dir>/net/http.o".
func ObjectPath(workspace, name string, version manifest.Version, relSource string) string {
	rel := filepath.Clean(relSource)
	rel = strings.TrimSuffix(rel, filepath.Ext(rel)) + objectExtension
	return filepath.Join(ObjectDir(workspace, name, version), rel)
}

func kindFolder(kind manifest.Kind) string {
	switch kind {
	case manifest.StaticLibrary:
		return "staticlibs"
	case manifest.DynamicLibrary:
		return "dynlibs"
	default:
		return "executables"
	}
}

// Extension returns the file extension of a linked artifact on the given platform
func Extension(kind manifest.Kind, goos string) string {
	windows := goos == "windows"

	switch kind {
	case manifest.StaticLibrary:
		if windows {
			return ".lib"
		}
		return ".a"
	case manifest.DynamicLibrary:
		if windows {
			return ".dll"
		}
		return ".so"
	default:
		if windows {
			return ".exe"
		}
		return ""
	}
}

// OutputDir returns the folder which receives the linked artifact of a package version
func OutputDir(workspace, name string, version manifest.Version, kind manifest.Kind) string {
	return filepath.Join(workspace, TargetFolder, kindFolder(kind), identity(name, version))
}

// OutputPath returns the path of the linked artifact of a package version
func OutputPath(workspace, name string, version manifest.Version, kind manifest.Kind, goos string) string {
	id := identity(name, version)
	return filepath.Join(OutputDir(workspace, name, version, kind), id+Extension(kind, goos))
}
