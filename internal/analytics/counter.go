package analytics

import (
	"sort"

	"content-analytics/internal/model"
)

// Counter counts occurrences of string keys. First-seen order is kept so
// MostCommon is deterministic when counts tie.
type Counter struct {
	counts map[string]int
	order  []string
}

// NewCounter returns an empty counter.
func NewCounter() *Counter {
	return &Counter{counts: make(map[string]int)}
}

// Add counts one occurrence of key.
func (c *Counter) Add(key string) {
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

// Len returns the number of distinct keys.
func (c *Counter) Len() int { return len(c.counts) }

// Total returns the sum of all counts.
func (c *Counter) Total() int {
	total := 0
	for _, n := range c.counts {
		total += n
	}
	return total
}

// MostCommon returns every key as a tabulation entry, descending by
// count, ties broken by first-seen order.
func (c *Counter) MostCommon() model.Tabulation {
	tab := make(model.Tabulation, 0, len(c.order))
	for _, key := range c.order {
		tab = append(tab, model.Entry{Label: key, Value: c.counts[key]})
	}
	sort.SliceStable(tab, func(i, j int) bool {
		return tab[i].Value.(int) > tab[j].Value.(int)
	})
	return tab
}
