package splitter

import (
	"fmt"
	"strings"

	"github.com/roivaz/ragsplit/internal/logging"
)

// KeepSeparator controls where a matched separator ends up after a split.
type KeepSeparator int

const (
	// KeepNone drops separators; merged pieces are re-joined with the separator.
	KeepNone KeepSeparator = iota
	// KeepStart attaches each separator to the piece that follows it.
	KeepStart
	// KeepEnd attaches each separator to the piece that precedes it.
	KeepEnd
)

func (k KeepSeparator) String() string {
	switch k {
	case KeepStart:
		return "start"
	case KeepEnd:
		return "end"
	default:
		return "none"
	}
}

// ParseKeepSeparator accepts none, start or end ("false"/"true" are aliases
// for none/start).
func ParseKeepSeparator(s string) (KeepSeparator, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "false":
		return KeepNone, nil
	case "start", "true":
		return KeepStart, nil
	case "end":
		return KeepEnd, nil
	default:
		return KeepNone, &ConfigError{Field: "keep_separator", Reason: fmt.Sprintf("unknown value %q", s)}
	}
}

// Options configures the segmentation pipeline. Zero sizes disable the
// matching stage.
type Options struct {
	ContextSize      int
	ChunkSize        int
	ChunkOverlap     int
	LengthFunc       LengthFunc
	KeepSeparator    KeepSeparator
	StripWhitespace  bool
	Separators       []string
	IsSeparatorRegex bool
	Logger           logging.Logger
}

// Option mutates Options.
type Option func(*Options)

func defaultOptions() Options {
	return Options{
		ChunkSize:       1000,
		LengthFunc:      CharLength,
		StripWhitespace: true,
		Logger:          logging.Discard(),
	}
}

// WithContextSize enables context stitching with windows of n length units.
func WithContextSize(n int) Option { return func(o *Options) { o.ContextSize = n } }

// WithChunkSize sets the fixed re-chunk size; 0 disables re-chunking.
func WithChunkSize(n int) Option { return func(o *Options) { o.ChunkSize = n } }

// WithChunkOverlap sets the overlap between consecutive re-chunked pieces.
func WithChunkOverlap(n int) Option { return func(o *Options) { o.ChunkOverlap = n } }

// WithLengthFunc sets how chunk sizes are measured.
func WithLengthFunc(fn LengthFunc) Option { return func(o *Options) { o.LengthFunc = fn } }

// WithKeepSeparator sets where separators are kept.
func WithKeepSeparator(k KeepSeparator) Option { return func(o *Options) { o.KeepSeparator = k } }

// WithStripWhitespace toggles trimming of re-chunked pieces.
func WithStripWhitespace(strip bool) Option { return func(o *Options) { o.StripWhitespace = strip } }

// WithSeparators overrides the re-chunk separators, in priority order.
func WithSeparators(seps ...string) Option {
	return func(o *Options) { o.Separators = append([]string(nil), seps...) }
}

// WithSeparatorRegex treats separators as regular expressions.
func WithSeparatorRegex(regex bool) Option { return func(o *Options) { o.IsSeparatorRegex = regex } }

// WithLogger injects the logger used for warnings and debug traces.
func WithLogger(l logging.Logger) Option { return func(o *Options) { o.Logger = l } }

func (o Options) validate() error {
	switch {
	case o.ContextSize < 0:
		return &ConfigError{Field: "context_size", Reason: "must be >= 0"}
	case o.ChunkSize < 0:
		return &ConfigError{Field: "chunk_size", Reason: "must be >= 0"}
	case o.ChunkOverlap < 0:
		return &ConfigError{Field: "chunk_overlap", Reason: "must be >= 0"}
	case o.ChunkSize > 0 && o.ChunkOverlap > o.ChunkSize:
		return &ConfigError{Field: "chunk_overlap", Reason: fmt.Sprintf("%d is larger than chunk size %d", o.ChunkOverlap, o.ChunkSize)}
	case o.LengthFunc == nil:
		return &ConfigError{Field: "length_function", Reason: "is required"}
	}
	return nil
}
