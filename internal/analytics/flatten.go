package analytics

import (
	"fmt"

	"content-analytics/internal/model"
	"content-analytics/pkg/utils"
)

// FieldError reports a record that lacks the field an analysis needs.
// Analyses fail fast on the first such record.
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("record missing field %q", e.Field)
}

// FlattenField extracts field from every record and flattens the values
// into countable keys. Each value is classified explicitly:
//
//	scalar          -> stringified as-is
//	reference map   -> slug, falling back to url, falling back to raw
//	list of scalars -> each element stringified
//	list of refs    -> each element's slug, falling back to url
//
// Lists flatten one level only; the APIs never nest deeper.
func FlattenField(records []model.Record, field string) ([]string, error) {
	keys := make([]string, 0, len(records))
	for _, rec := range records {
		value, ok := rec[field]
		if !ok {
			return nil, &FieldError{Field: field}
		}
		switch v := value.(type) {
		case map[string]interface{}:
			keys = append(keys, referenceLabel(v, utils.Stringify(v)))
		case []interface{}:
			for _, item := range v {
				if ref, ok := item.(map[string]interface{}); ok {
					keys = append(keys, referenceLabel(ref, ""))
				} else {
					keys = append(keys, utils.Stringify(item))
				}
			}
		default:
			keys = append(keys, utils.Stringify(v))
		}
	}
	return keys, nil
}

// referenceLabel picks the countable key for a reference map, preferring
// slug over url.
func referenceLabel(ref map[string]interface{}, fallback string) string {
	if slug, ok := ref["slug"].(string); ok && slug != "" {
		return slug
	}
	if u, ok := ref["url"].(string); ok && u != "" {
		return u
	}
	return fallback
}
