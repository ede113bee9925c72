package manifest

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/rotisserie/eris"
)

// Kind describes the artifact produced by linking a package
type Kind int

const (
	// Executable is the default kind
	Executable Kind = iota
	StaticLibrary
	DynamicLibrary
)

var kindNames = map[Kind]string{
	Executable:     "exe",
	StaticLibrary:  "staticlib",
	DynamicLibrary: "dynlib",
}

// ParseKind converts the manifest spelling ("exe", "staticlib" or "dynlib") to a Kind
func ParseKind(value string) (Kind, error) {
	for kind, name := range kindNames {
		if name == value {
			return kind, nil
		}
	}

	return Executable, eris.Errorf("unknown package kind %q (expected exe, staticlib or dynlib)", value)
}

func (k Kind) String() string {
	name, ok := kindNames[k]
	if !ok {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return name
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *Kind) UnmarshalText(text []byte) error {
	kind, err := ParseKind(string(text))
	if err != nil {
		return err
	}

	*k = kind
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Version is a strict semantic version (MAJOR.MINOR.PATCH with optional
// pre-release and build metadata).
//
// String always returns the canonical form so that output paths stay stable
// no matter how the version was spelled in the manifest.
type Version struct {
	v *semver.Version
}

// ParseVersion parses a strict semver string
func ParseVersion(value string) (Version, error) {
	v, err := semver.StrictNewVersion(value)
	if err != nil {
		return Version{}, eris.Wrapf(err, "invalid version %q", value)
	}

	return Version{v: v}, nil
}

// MustParseVersion is like ParseVersion but panics on invalid input
func MustParseVersion(value string) Version {
	v, err := ParseVersion(value)
	if err != nil {
		panic(err)
	}
	return v
}

func (v Version) String() string {
	if v.v == nil {
		return "0.0.0"
	}
	return v.v.String()
}

// Semver exposes the parsed version
func (v Version) Semver() *semver.Version {
	return v.v
}

// UnmarshalText implements encoding.TextUnmarshaler
func (v *Version) UnmarshalText(text []byte) error {
	parsed, err := ParseVersion(string(text))
	if err != nil {
		return err
	}

	*v = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}
