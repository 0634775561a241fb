// Package openapi resolves local $ref pointers in OpenAPI documents and
// enumerates their operations.
package openapi

import (
	"github.com/roivaz/ragsplit/internal/textutil"
)

// RefWarning is called for every $ref that could not be materialized. The
// original {"$ref": ...} object stays in place.
type RefWarning func(ref string, err error)

// Dereference returns a copy of root with every local $ref replaced by a copy
// of its target. A reference that is already being resolved higher up the
// stack is left as-is, so cyclic schemas terminate with a placeholder.
func Dereference(root map[string]any, warn RefWarning) map[string]any {
	r := resolver{root: textutil.DeepCopy(root), resolving: map[string]bool{}, warn: warn}
	out, _ := r.walk(root).(map[string]any)
	return out
}

type resolver struct {
	root      any
	resolving map[string]bool
	warn      RefWarning
}

func (r *resolver) walk(node any) any {
	switch t := node.(type) {
	case map[string]any:
		if ref, ok := t["$ref"].(string); ok {
			return r.follow(ref, t)
		}
		out := make(map[string]any, len(t))
		for k, v := range t {
			out[k] = r.walk(v)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, v := range t {
			out[i] = r.walk(v)
		}
		return out
	default:
		return node
	}
}

func (r *resolver) follow(ref string, node map[string]any) any {
	if r.resolving[ref] {
		return textutil.DeepCopy(node)
	}
	target, err := textutil.ResolvePointer(ref, r.root)
	if err != nil {
		if r.warn != nil {
			r.warn(ref, err)
		}
		return textutil.DeepCopy(node)
	}
	r.resolving[ref] = true
	defer delete(r.resolving, ref)
	return r.walk(textutil.DeepCopy(target))
}
