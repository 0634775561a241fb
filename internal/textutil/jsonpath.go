package textutil

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

var (
	// ErrExternalPointer is returned for references that do not start with "#".
	ErrExternalPointer = errors.New("only local json pointers are supported")
	// ErrPointerNotFound is returned when a pointer token does not resolve.
	ErrPointerNotFound = errors.New("json pointer not found")
)

// ResolvePointer resolves a local RFC 6901 pointer ("#/a/b~1c/0") against
// doc. Tokens are unescaped (~1 to "/", then ~0 to "~") and percent-decoded.
func ResolvePointer(pointer string, doc any) (any, error) {
	if pointer == "#" {
		return doc, nil
	}
	if !strings.HasPrefix(pointer, "#/") {
		return nil, fmt.Errorf("%w: %q", ErrExternalPointer, pointer)
	}
	cur := doc
	for _, raw := range strings.Split(pointer[2:], "/") {
		token := strings.ReplaceAll(raw, "~1", "/")
		token = strings.ReplaceAll(token, "~0", "~")
		if decoded, err := url.PathUnescape(token); err == nil {
			token = decoded
		}
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[token]
			if !ok {
				return nil, fmt.Errorf("%w: %q has no key %q", ErrPointerNotFound, pointer, token)
			}
			cur = next
		case []any:
			idx, err := strconv.Atoi(token)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, fmt.Errorf("%w: %q has no index %q", ErrPointerNotFound, pointer, token)
			}
			cur = node[idx]
		default:
			return nil, fmt.Errorf("%w: %q cannot descend into %T", ErrPointerNotFound, pointer, cur)
		}
	}
	return cur, nil
}

// DeepCopy copies JSON-shaped values (maps, slices, scalars).
func DeepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = DeepCopy(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = DeepCopy(val)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}

// CopyProperty copies the value found at the dotted path in src into the
// same path of dst, creating intermediate objects. Missing paths are a no-op.
func CopyProperty(src, dst map[string]any, path string) {
	head, rest, nested := strings.Cut(path, ".")
	val, ok := src[head]
	if !ok {
		return
	}
	if !nested {
		dst[head] = DeepCopy(val)
		return
	}
	child, ok := val.(map[string]any)
	if !ok {
		return
	}
	target, ok := dst[head].(map[string]any)
	if !ok {
		target = map[string]any{}
		dst[head] = target
	}
	CopyProperty(child, target, rest)
}
