package manifest

import "fmt"

// NotFoundError is returned when a directory has no cpm.toml
type NotFoundError struct {
	Path string
}

var _ error = (*NotFoundError)(nil)

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("failed to read manifest file %s: not found", e.Path)
}

// ReadError is returned when a manifest exists but couldn't be read
type ReadError struct {
	Path string
	Err  error
}

var _ error = (*ReadError)(nil)

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read manifest file %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// ParseError is returned for malformed TOML and for manifests that violate
// the schema (missing required fields, invalid names, ...)
type ParseError struct {
	Path   string
	Field  string
	Reason string
	Err    error
}

var _ error = (*ParseError)(nil)

func (e *ParseError) Error() string {
	path := e.Path
	if path == "" {
		path = FileName
	}

	if e.Err != nil {
		return fmt.Sprintf("invalid manifest file %s: %v", path, e.Err)
	}
	return fmt.Sprintf("invalid manifest file %s: %s: %s", path, e.Field, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
