// Package manifest loads and validates cpm.toml files.
//
// A manifest may describe a package, a workspace, both or neither. The
// package section is what the builder compiles; the workspace section only
// lists member directories which are built independently of each other.
package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"

	"github.com/BurntSushi/toml"
)

// FileName is the name of the manifest file inside a package or workspace directory
const FileName = "cpm.toml"

const (
	defaultSrcFolder     = "src"
	defaultIncludeFolder = "include"
)

var nameMatcher = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Package contains the [package] section of a manifest
type Package struct {
	// Name must be snake_case (lower case ASCII letters, digits and underscores)
	Name    string  `toml:"name"`
	Version Version `toml:"version"`
	// SrcFolder contains the C sources, relative to the package directory
	SrcFolder string `toml:"src_folder"`
	// IncludeFolder contains the public headers and is added to the include path
	IncludeFolder           string   `toml:"include_folder"`
	AdditionalCompilerFlags []string `toml:"additional_compiler_flags"`
	AdditionalLinkerFlags   []string `toml:"additional_linker_flags"`
	EnableMathLibrary       bool     `toml:"enable_math_library"`
	EnablePthreadLibrary    bool     `toml:"enable_pthread_library"`
	DisableStdLibrary       bool     `toml:"disable_std_library"`
	Kind                    Kind     `toml:"kind"`
}

// Workspace contains the [workspace] section of a manifest
type Workspace struct {
	// Members are package directories relative to the workspace root
	Members []string `toml:"members"`
}

// Manifest is a decoded cpm.toml file
type Manifest struct {
	Package   *Package   `toml:"package"`
	Workspace *Workspace `toml:"workspace"`

	// Path is the file this manifest was loaded from
	Path string `toml:"-"`
	// UnknownKeys lists keys which were present in the file but aren't understood by cpm
	UnknownKeys []string `toml:"-"`
}

// Identity returns "<name>-<version>" which is used to name all outputs of this package
func (p *Package) Identity() string {
	return p.Name + "-" + p.Version.String()
}

// Path returns the manifest path for the given package or workspace directory
func Path(dir string) string {
	return filepath.Join(dir, FileName)
}

// Load reads the manifest inside dir
func Load(dir string) (*Manifest, error) {
	return LoadFile(Path(dir))
}

// LoadFile reads and validates the manifest at path
func LoadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &NotFoundError{Path: path}
		}

		return nil, &ReadError{Path: path, Err: err}
	}

	m, err := Parse(data)
	if err != nil {
		var pErr *ParseError
		if errors.As(err, &pErr) {
			pErr.Path = path
		}
		return nil, err
	}

	m.Path = path
	return m, nil
}

// Parse decodes and validates manifest contents. Missing optional fields are
// filled with their defaults.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	meta, err := toml.Decode(string(data), &m)
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	for _, key := range meta.Undecoded() {
		m.UnknownKeys = append(m.UnknownKeys, key.String())
	}

	if m.Package != nil {
		if !meta.IsDefined("package", "name") {
			return nil, &ParseError{Field: "package.name", Reason: "missing required field"}
		}
		if !meta.IsDefined("package", "version") {
			return nil, &ParseError{Field: "package.version", Reason: "missing required field"}
		}
		if err := ValidateName(m.Package.Name); err != nil {
			return nil, &ParseError{Field: "package.name", Reason: err.Error()}
		}

		if m.Package.SrcFolder == "" {
			m.Package.SrcFolder = defaultSrcFolder
		}
		if m.Package.IncludeFolder == "" {
			m.Package.IncludeFolder = defaultIncludeFolder
		}
	}

	if m.Workspace != nil {
		for _, member := range m.Workspace.Members {
			if member == "" {
				return nil, &ParseError{Field: "workspace.members", Reason: "member paths can't be empty"}
			}
			if filepath.IsAbs(member) {
				return nil, &ParseError{Field: "workspace.members", Reason: "member " + member + " must be relative to the workspace root"}
			}
		}
	}

	return &m, nil
}

// ValidateName checks that name is a valid snake_case package name
func ValidateName(name string) error {
	if name == "" {
		return errors.New("the package name can't be empty")
	}

	if !nameMatcher.MatchString(name) {
		return errors.New("the package name must be in snake_case (ascii lower case characters with underscores instead of spaces)")
	}

	return nil
}
