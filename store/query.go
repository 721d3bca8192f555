package store

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// LooseEqual compares two scalar values the way the query predicate does:
// numeric 5 matches string "5", true matches "true". Keys held in URLs and
// drafts arrive as strings while stored values keep their JSON types, and
// call sites depend on the two matching.
func LooseEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return af == bf
	}

	return fmt.Sprint(a) == fmt.Sprint(b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	case bool:
		return 0, false
	}
	return 0, false
}

// matches reports whether rec satisfies every predicate field (logical AND).
// An empty predicate matches everything.
func matches(rec Record, predicate map[string]any) bool {
	for field, want := range predicate {
		if !LooseEqual(rec[field], want) {
			return false
		}
	}
	return true
}
