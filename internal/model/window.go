package model

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Window is an inclusive start/end date range scoping an API query.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow builds a window from explicit start and end dates.
func NewWindow(start, end time.Time) Window {
	return Window{Start: dateOnly(start), End: dateOnly(end)}
}

// LastNDays builds a window covering the last n days ending today.
func LastNDays(days int, today time.Time) Window {
	end := dateOnly(today)
	return Window{Start: end.AddDate(0, 0, -days), End: end}
}

// StartDate returns the start as YYYY-MM-DD.
func (w Window) StartDate() string {
	return w.Start.Format(dateLayout)
}

// EndDate returns the end as YYYY-MM-DD.
func (w Window) EndDate() string {
	return w.End.Format(dateLayout)
}

// QueryStart returns the start formatted the way the content API expects.
func (w Window) QueryStart() string {
	return w.StartDate() + "T00:00"
}

// QueryEnd returns the end formatted the way the content API expects.
func (w Window) QueryEnd() string {
	return w.EndDate() + "T00:00"
}

// Filename builds the report filename for this window,
// e.g. content-analytics_2016-01-01_2016-01-07.csv.
func (w Window) Filename(prefix string) string {
	return fmt.Sprintf("%s_%s_%s.csv", prefix, w.StartDate(), w.EndDate())
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
