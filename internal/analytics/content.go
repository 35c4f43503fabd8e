// Package analytics runs the fixed set of tabulations over fetched
// records and accumulates the compact summary used for notification.
package analytics

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"content-analytics/internal/model"
	"content-analytics/pkg/utils"
)

// frontPageSection is excluded from the sections per-story ratio; nearly
// every story lands on the front page, so counting it hides the signal.
const frontPageSection = "front-page"

// ContentAPI is the slice of the content API the analyses consume.
type ContentAPI interface {
	Content(ctx context.Context, w model.Window) ([]model.Record, error)
	Stories(ctx context.Context, w model.Window) ([]model.Record, error)
}

// analysis is one registered tabulation. Run order is static and
// explicit.
type analysis struct {
	name string
	run  func(ctx context.Context) (model.Tabulation, error)
}

// ContentAnalytics runs every registered analysis over the records in a
// window and renders the results as report rows.
type ContentAnalytics struct {
	api     ContentAPI
	window  model.Window
	log     *zap.Logger
	records []model.Record
	summary *model.Summary
}

// NewContent builds the content report for a window.
func NewContent(api ContentAPI, w model.Window, log *zap.Logger) *ContentAnalytics {
	return &ContentAnalytics{
		api:     api,
		window:  w,
		log:     log,
		summary: model.NewSummary(),
	}
}

// Kind identifies the report in notifications and errors.
func (a *ContentAnalytics) Kind() string { return "content" }

// Filename names the CSV after the window dates.
func (a *ContentAnalytics) Filename() string {
	return a.window.Filename("content-analytics")
}

// Summary returns the metric map accumulated while building rows.
func (a *ContentAnalytics) Summary() *model.Summary { return a.summary }

// registry lists every analysis in its fixed run order.
func (a *ContentAnalytics) registry() []analysis {
	generic := func(field string) func(context.Context) (model.Tabulation, error) {
		return func(context.Context) (model.Tabulation, error) {
			return a.analyze(field)
		}
	}
	return []analysis{
		{"authors", generic("authors")},
		{"content_type", func(context.Context) (model.Tabulation, error) { return a.analyzeContentType() }},
		{"location_tags", generic("location_tags")},
		{"primary_location", generic("primary_location")},
		{"pub_date", func(context.Context) (model.Tabulation, error) { return a.analyzePubDate() }},
		{"related_content", func(context.Context) (model.Tabulation, error) { return a.analyzeRelatedContent() }},
		{"sections", func(context.Context) (model.Tabulation, error) { return a.analyzeSections() }},
		{"tags", generic("tags")},
		{"tribpedia_entries", generic("tribpedia_entries")},
		{"word_count", a.analyzeWordCount},
	}
}

// Rows fetches the window's records once, runs every analysis in
// registry order, and flattens the results into CSV-ready rows: a blank
// separator, an ALL-CAPS section title, then the tabulation.
func (a *ContentAnalytics) Rows(ctx context.Context) ([]model.ReportRow, error) {
	if err := a.load(ctx); err != nil {
		return nil, err
	}

	var rows []model.ReportRow
	for _, an := range a.registry() {
		tab, err := an.run(ctx)
		if err != nil {
			return nil, fmt.Errorf("analysis %s: %w", an.name, err)
		}
		rows = append(rows, model.ReportRow{""}, model.ReportRow{utils.HeaderWords(an.name)})
		for _, e := range tab {
			rows = append(rows, model.ReportRow{e.Label, utils.Stringify(e.Value)})
		}
	}
	return rows, nil
}

func (a *ContentAnalytics) load(ctx context.Context) error {
	if a.records != nil {
		return nil
	}
	records, err := a.api.Content(ctx, a.window)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		a.log.Warn("no results for window",
			zap.String("start", a.window.StartDate()),
			zap.String("end", a.window.EndDate()))
		records = []model.Record{}
	}
	a.records = records
	return nil
}

// analyze is the generic procedure: flatten the field, count, and append
// the per-story ratio. An empty record set short-circuits to an empty
// tabulation instead of dividing by zero.
func (a *ContentAnalytics) analyze(field string) (model.Tabulation, error) {
	if len(a.records) == 0 {
		return nil, nil
	}
	keys, err := FlattenField(a.records, field)
	if err != nil {
		return nil, err
	}

	ctr := NewCounter()
	for _, k := range keys {
		ctr.Add(k)
	}

	perStory := float64(ctr.Total()) / float64(len(a.records))
	tab := append(ctr.MostCommon(), model.Entry{Label: "PER STORY", Value: formatRatio(perStory)})
	a.summary.Set(utils.TitleWords(field)+" per story", formatRatio(perStory))
	return tab, nil
}

// analyzeSections recomputes the trailing ratio without front-page,
// which still appears as its own counted row.
func (a *ContentAnalytics) analyzeSections() (model.Tabulation, error) {
	tab, err := a.analyze("sections")
	if err != nil || len(tab) == 0 {
		return tab, err
	}

	totals := 0
	for _, e := range tab[:len(tab)-1] {
		if n, ok := e.Count(); ok && e.Label != frontPageSection {
			totals += n
		}
	}
	perStory := float64(totals) / float64(len(a.records))
	tab[len(tab)-1] = model.Entry{Label: "PER STORY", Value: formatRatio(perStory)}
	a.summary.Set("Sections per story", formatRatio(perStory))
	return tab, nil
}

// analyzeRelatedContent keeps only entries referenced more than twice;
// the trailing ratio row is a string and always survives the filter.
func (a *ContentAnalytics) analyzeRelatedContent() (model.Tabulation, error) {
	tab, err := a.analyze("related_content")
	if err != nil {
		return nil, err
	}
	filtered := make(model.Tabulation, 0, len(tab))
	for _, e := range tab {
		if n, ok := e.Count(); ok && n <= 2 {
			continue
		}
		filtered = append(filtered, e)
	}
	return filtered, nil
}

// analyzePubDate counts publish days: the date portion of pub_date only,
// with no flattening and no per-story row.
func (a *ContentAnalytics) analyzePubDate() (model.Tabulation, error) {
	if len(a.records) == 0 {
		return nil, nil
	}
	ctr := NewCounter()
	for _, rec := range a.records {
		v, ok := rec["pub_date"]
		if !ok {
			return nil, &FieldError{Field: "pub_date"}
		}
		day := utils.Stringify(v)
		if len(day) > 10 {
			day = day[:10]
		}
		ctr.Add(day)
	}
	return ctr.MostCommon(), nil
}

// analyzeContentType replaces the trailing ratio with the total link
// count, which doubles as the headline summary number.
func (a *ContentAnalytics) analyzeContentType() (model.Tabulation, error) {
	tab, err := a.analyze("content_type")
	if err != nil || len(tab) == 0 {
		return tab, err
	}
	tab[len(tab)-1] = model.Entry{Label: "TOTAL", Value: len(a.records)}
	a.summary.Set("Total links", strconv.Itoa(len(a.records)))
	return tab, nil
}

// analyzeWordCount issues the separate body-only fetch and reports the
// average word count per record. The division is floored integer
// division.
func (a *ContentAnalytics) analyzeWordCount(ctx context.Context) (model.Tabulation, error) {
	if len(a.records) == 0 {
		return nil, nil
	}
	stories, err := a.api.Stories(ctx, a.window)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, story := range stories {
		body, ok := story["body"]
		if !ok {
			return nil, &FieldError{Field: "body"}
		}
		total += len(strings.Fields(utils.Stringify(body)))
	}

	avg := total / len(a.records)
	a.summary.Set("Average word count", strconv.Itoa(avg))
	return model.Tabulation{
		{Label: "AVERAGE", Value: fmt.Sprintf("%.2f", float64(avg))},
	}, nil
}

func formatRatio(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}
