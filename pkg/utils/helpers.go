package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// Stringify renders a decoded JSON value as a countable/printable key.
// JSON numbers arrive as float64; whole values print without a decimal
// point. nil renders as an empty string.
func Stringify(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// TitleWords turns a snake_case field name into a display title,
// e.g. "location_tags" -> "Location Tags".
func TitleWords(field string) string {
	words := strings.Split(field, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// HeaderWords turns a snake_case analysis name into a section header,
// e.g. "related_content" -> "RELATED CONTENT".
func HeaderWords(name string) string {
	return strings.ToUpper(strings.ReplaceAll(name, "_", " "))
}
