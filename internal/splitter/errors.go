package splitter

import (
	"errors"
	"fmt"
)

var (
	// ErrParse marks malformed input for a format-specific segmenter.
	ErrParse = errors.New("parse error")
	// ErrReference marks a $ref that could not be materialized.
	ErrReference = errors.New("unresolved reference")
	// ErrConfig marks an invalid splitter configuration.
	ErrConfig = errors.New("invalid configuration")
	// ErrUnsupportedFormat is returned by the factory for unknown file types.
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// ParseError reports input a segmenter could not parse.
type ParseError struct {
	Format string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// ReferenceError reports a $ref that was left unresolved.
type ReferenceError struct {
	Ref string
	Err error
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("resolve %q: %v", e.Ref, e.Err)
}

func (e *ReferenceError) Unwrap() error { return e.Err }

func (e *ReferenceError) Is(target error) bool { return target == ErrReference }

// ConfigError reports an invalid option value.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Is(target error) bool { return target == ErrConfig }
