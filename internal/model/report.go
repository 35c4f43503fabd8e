package model

// Entry is one tabulation row: a label plus an int count or a
// preformatted string value (trailing PER STORY / TOTAL / AVERAGE rows).
type Entry struct {
	Label string      `json:"label"`
	Value interface{} `json:"value"`
}

// Count returns the entry's value as an int count. ok is false for
// synthetic string rows.
func (e Entry) Count() (int, bool) {
	n, ok := e.Value.(int)
	return n, ok
}

// Tabulation is the ordered result of one named analysis,
// most common first.
type Tabulation []Entry

// ReportRow is one printable CSV row.
type ReportRow []string

// Summary is an insertion-ordered metric-name to value mapping used for
// the chat notification. Order is preserved so output is deterministic.
type Summary struct {
	keys   []string
	values map[string]string
}

// Metric is one summary entry.
type Metric struct {
	Name  string
	Value string
}

// NewSummary returns an empty summary.
func NewSummary() *Summary {
	return &Summary{values: make(map[string]string)}
}

// Set records a metric, keeping first-set order for existing keys.
func (s *Summary) Set(name, value string) {
	if _, ok := s.values[name]; !ok {
		s.keys = append(s.keys, name)
	}
	s.values[name] = value
}

// Get returns a metric value.
func (s *Summary) Get(name string) (string, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Len returns the number of metrics recorded.
func (s *Summary) Len() int {
	return len(s.keys)
}

// Metrics returns all entries in insertion order.
func (s *Summary) Metrics() []Metric {
	out := make([]Metric, 0, len(s.keys))
	for _, k := range s.keys {
		out = append(out, Metric{Name: k, Value: s.values[k]})
	}
	return out
}
