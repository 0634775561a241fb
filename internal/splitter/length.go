package splitter

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// LengthFunc measures text in the unit chunk sizes are expressed in.
type LengthFunc func(string) int

// CharLength counts Unicode code points.
func CharLength(s string) int {
	return utf8.RuneCountInString(s)
}

// TokenLength returns a LengthFunc counting tiktoken tokens for the named
// encoding (e.g. cl100k_base) or, failing that, the named model.
func TokenLength(name string) (LengthFunc, error) {
	enc, err := tiktoken.GetEncoding(name)
	if err != nil {
		var modelErr error
		enc, modelErr = tiktoken.EncodingForModel(name)
		if modelErr != nil {
			return nil, &ConfigError{Field: "token_encoding", Reason: fmt.Sprintf("unknown encoding or model %q: %v", name, err)}
		}
	}
	return func(s string) int {
		return len(enc.Encode(s, nil, nil))
	}, nil
}

// LengthByName resolves the length_function setting: "chars" (default) or
// "tokens", which uses the given tiktoken encoding.
func LengthByName(kind, encoding string) (LengthFunc, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "chars", "characters":
		return CharLength, nil
	case "tokens":
		if encoding == "" {
			encoding = "cl100k_base"
		}
		return TokenLength(encoding)
	default:
		return nil, &ConfigError{Field: "length_function", Reason: fmt.Sprintf("unknown value %q", kind)}
	}
}
