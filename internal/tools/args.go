package tools

import (
	"strings"

	"github.com/cristofima/maf-graphrag-series/pkg/graph"
)

type arguments map[string]any

func (a arguments) getString(key string) string {
	s, _ := graph.AsString(a[key])
	return strings.TrimSpace(s)
}

// getInt returns the argument as an integer. An explicit 0 is kept; only an
// absent or null argument falls back to def. ok is false for values that are
// not integers.
func (a arguments) getInt(key string, def int) (int, bool) {
	v, present := a[key]
	if !present || v == nil {
		return def, true
	}
	n, ok := graph.AsInt(v)
	if !ok {
		return def, false
	}
	return int(n), true
}
