package model

// Record is a schema-agnostic map for one content item or log match.
// The APIs return untyped JSON; values are strings, numbers, nested
// lists/maps, or nil.
type Record map[string]interface{}

// Has reports whether the record carries the given field.
func (r Record) Has(field string) bool {
	_, ok := r[field]
	return ok
}
