package openapi

import (
	"sort"
	"strings"

	"github.com/tidwall/gjson"
)

// Operation is one path + method pair of a dereferenced document.
type Operation struct {
	Path       string
	Method     string
	Parameters any
	Spec       map[string]any
}

var supportedMethods = map[string]bool{
	"get":    true,
	"post":   true,
	"put":    true,
	"delete": true,
	"patch":  true,
}

// Operations lists the operations of resolved in the order they appear in
// raw, the JSON text resolved was parsed from. Keys that only exist after
// dereferencing (a path item pulled in through $ref) follow in lexical order.
func Operations(raw string, resolved map[string]any) []Operation {
	paths, _ := resolved["paths"].(map[string]any)
	if len(paths) == 0 {
		return nil
	}
	rawPaths := gjson.Get(raw, "paths")

	var ops []Operation
	for _, path := range orderedKeys(rawPaths, paths) {
		item, ok := paths[path].(map[string]any)
		if !ok {
			continue
		}
		rawItem := gjson.Result{}
		rawPaths.ForEach(func(k, v gjson.Result) bool {
			if k.String() == path {
				rawItem = v
				return false
			}
			return true
		})
		for _, key := range orderedKeys(rawItem, item) {
			if !supportedMethods[strings.ToLower(key)] {
				continue
			}
			op, ok := item[key].(map[string]any)
			if !ok {
				continue
			}
			ops = append(ops, Operation{
				Path:       path,
				Method:     key,
				Parameters: item["parameters"],
				Spec:       op,
			})
		}
	}
	return ops
}

func orderedKeys(raw gjson.Result, m map[string]any) []string {
	keys := make([]string, 0, len(m))
	seen := make(map[string]bool, len(m))
	if raw.IsObject() {
		raw.ForEach(func(k, _ gjson.Result) bool {
			key := k.String()
			if _, ok := m[key]; ok && !seen[key] {
				keys = append(keys, key)
				seen[key] = true
			}
			return true
		})
	}
	var rest []string
	for k := range m {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}
