package entity

import (
	"fmt"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/dmorenog/bancalocal/store"
)

var intPrinter = message.NewPrinter(language.English)

// Format renders every declared field of rec as a display string:
// BOOLEAN as a sí/no token, DECIMAL fixed to 2 decimals, INTEGER with
// locale grouping, STRING as-is.
func (m *Manager) Format(rec store.Record) map[string]string {
	out := map[string]string{}
	for _, f := range m.Spec.Fields {
		out[f.Name] = FormatValue(f, rec[f.Name])
	}
	return out
}

func FormatValue(f Field, value any) string {
	if value == nil {
		return ""
	}

	switch f.Type {
	case Boolean:
		if b, ok := value.(bool); ok && b {
			return "sí"
		}
		return "no"
	case Decimal:
		if n, ok := asFloat(value); ok {
			return strconv.FormatFloat(n, 'f', 2, 64)
		}
	case Integer:
		if n, ok := asInt(value); ok {
			return intPrinter.Sprintf("%d", n)
		}
	}
	return fmt.Sprint(value)
}

func asFloat(value any) (float64, bool) {
	switch n := value.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}

func asInt(value any) (int64, bool) {
	switch n := value.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}
