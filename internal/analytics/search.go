package analytics

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"content-analytics/internal/model"
	"content-analytics/internal/scalyr"
	"content-analytics/pkg/utils"
)

// queryColumn is the access-log attribute carrying the search query
// string.
const queryColumn = "uriQ"

// summaryTopN caps how many search terms go into the notification.
const summaryTopN = 10

// SearchAPI is the slice of the log-search client the analysis consumes.
type SearchAPI interface {
	Query(ctx context.Context, p scalyr.QueryParams) (*scalyr.QueryResponse, error)
}

// SearchAnalytics counts on-site search terms from access-log matches.
type SearchAnalytics struct {
	api      SearchAPI
	window   model.Window
	days     int
	filter   string
	maxCount int
	exclude  []string
	log      *zap.Logger
	data     model.Tabulation
}

// NewSearch builds the search report. exclude lists substrings whose
// queries are discarded before counting.
func NewSearch(api SearchAPI, w model.Window, days int, filter string, maxCount int, exclude []string, log *zap.Logger) *SearchAnalytics {
	return &SearchAnalytics{
		api:      api,
		window:   w,
		days:     days,
		filter:   filter,
		maxCount: maxCount,
		exclude:  exclude,
		log:      log,
	}
}

// Kind identifies the report in notifications and errors.
func (a *SearchAnalytics) Kind() string { return "search" }

// Filename names the CSV after the window dates.
func (a *SearchAnalytics) Filename() string {
	return a.window.Filename("search-analytics")
}

// Rows queries the log-search API once and returns counted search terms
// headed by a SEARCHES label row.
func (a *SearchAnalytics) Rows(ctx context.Context) ([]model.ReportRow, error) {
	resp, err := a.api.Query(ctx, scalyr.QueryParams{
		Filter:    a.filter,
		StartTime: fmt.Sprintf("%d days", a.days),
		MaxCount:  a.maxCount,
		Columns:   queryColumn,
	})
	if err != nil {
		return nil, err
	}

	ctr := NewCounter()
	dropped := 0
	for _, match := range resp.Matches {
		raw, ok := match.Attributes[queryColumn]
		if !ok {
			continue
		}
		term := utils.Stringify(raw)
		if a.excluded(term) {
			dropped++
			continue
		}
		ctr.Add(term)
	}
	if ctr.Len() == 0 {
		a.log.Warn("no results for window",
			zap.String("start", a.window.StartDate()),
			zap.String("end", a.window.EndDate()))
	}
	if dropped > 0 {
		a.log.Debug("excluded search terms", zap.Int("dropped", dropped))
	}

	a.data = ctr.MostCommon()
	rows := []model.ReportRow{{"SEARCHES", ""}}
	for _, e := range a.data {
		rows = append(rows, model.ReportRow{e.Label, utils.Stringify(e.Value)})
	}
	return rows, nil
}

// Summary returns the top search terms only; the full list lives in the
// CSV.
func (a *SearchAnalytics) Summary() *model.Summary {
	s := model.NewSummary()
	for i, e := range a.data {
		if i == summaryTopN {
			break
		}
		s.Set(e.Label, utils.Stringify(e.Value))
	}
	return s
}

func (a *SearchAnalytics) excluded(term string) bool {
	for _, sub := range a.exclude {
		if sub != "" && strings.Contains(term, sub) {
			return true
		}
	}
	return false
}
