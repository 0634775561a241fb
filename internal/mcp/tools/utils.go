package tools

import (
	"encoding/json"
	"fmt"
	"strings"
)

const defaultLimit = 10

// limitArgument reads a positive integer argument, falling back to def when
// it is absent. JSON numbers arrive as float64.
func limitArgument(args map[string]any, name string, def int) (int, error) {
	switch v := args[name].(type) {
	case nil:
		return def, nil
	case float64:
		if v < 1 {
			return 0, fmt.Errorf("%s must be positive", name)
		}
		return int(v), nil
	case int:
		if v < 1 {
			return 0, fmt.Errorf("%s must be positive", name)
		}
		return v, nil
	default:
		return 0, fmt.Errorf("%s must be a number", name)
	}
}

func stringArgument(args map[string]any, name string) string {
	v, _ := args[name].(string)
	return strings.TrimSpace(v)
}

func mustMarshal(v interface{}) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
