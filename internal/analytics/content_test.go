package analytics

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"content-analytics/internal/model"
)

type fakeContentAPI struct {
	content      []model.Record
	stories      []model.Record
	contentErr   error
	storiesErr   error
	storiesCalls int
}

func (f *fakeContentAPI) Content(context.Context, model.Window) ([]model.Record, error) {
	return f.content, f.contentErr
}

func (f *fakeContentAPI) Stories(context.Context, model.Window) ([]model.Record, error) {
	f.storiesCalls++
	return f.stories, f.storiesErr
}

func newTestContent(records []model.Record) *ContentAnalytics {
	a := NewContent(&fakeContentAPI{}, testWindow(), zap.NewNop())
	a.records = records
	return a
}

func testWindow() model.Window {
	return model.Window{}
}

func tagged(tags ...interface{}) model.Record {
	return model.Record{"tags": tags}
}

func TestAnalyzeTagsScenario(t *testing.T) {
	a := newTestContent([]model.Record{
		{"tags": []interface{}{"a", "b"}},
		{"tags": []interface{}{"a"}},
		{"tags": []interface{}{}},
		{"tags": []interface{}{"b", "c"}},
	})

	tab, err := a.analyze("tags")
	require.NoError(t, err)
	assert.Equal(t, model.Tabulation{
		{Label: "a", Value: 2},
		{Label: "b", Value: 2},
		{Label: "c", Value: 1},
		{Label: "PER STORY", Value: "1.25"},
	}, tab)

	perStory, ok := a.summary.Get("Tags per story")
	require.True(t, ok)
	assert.Equal(t, "1.25", perStory)
}

func TestAnalyzeEmptyRecordSet(t *testing.T) {
	a := newTestContent([]model.Record{})

	tab, err := a.analyze("tags")
	require.NoError(t, err)
	assert.Empty(t, tab)
	assert.Zero(t, a.summary.Len())
}

func TestAnalyzeSectionsExcludesFrontPage(t *testing.T) {
	a := newTestContent([]model.Record{
		{"sections": []interface{}{
			map[string]interface{}{"slug": "front-page"},
			map[string]interface{}{"slug": "politics"},
		}},
		{"sections": []interface{}{
			map[string]interface{}{"slug": "politics"},
		}},
	})

	tab, err := a.analyzeSections()
	require.NoError(t, err)

	// front-page still appears as a counted row...
	assert.Contains(t, tab, model.Entry{Label: "front-page", Value: 1})
	// ...but the ratio counts only the 2 politics occurrences over 2 records.
	assert.Equal(t, model.Entry{Label: "PER STORY", Value: "1.00"}, tab[len(tab)-1])

	perStory, ok := a.summary.Get("Sections per story")
	require.True(t, ok)
	assert.Equal(t, "1.00", perStory)
}

func TestAnalyzeContentTypeTotal(t *testing.T) {
	a := newTestContent([]model.Record{
		{"content_type": "story"},
		{"content_type": "story"},
		{"content_type": "video"},
	})

	tab, err := a.analyzeContentType()
	require.NoError(t, err)

	// Single-valued field: counts sum to the record count.
	sum := 0
	for _, e := range tab[:len(tab)-1] {
		n, ok := e.Count()
		require.True(t, ok)
		sum += n
	}
	assert.Equal(t, 3, sum)

	// Trailing row is the total, never a ratio string.
	assert.Equal(t, model.Entry{Label: "TOTAL", Value: 3}, tab[len(tab)-1])

	total, ok := a.summary.Get("Total links")
	require.True(t, ok)
	assert.Equal(t, "3", total)
}

func TestAnalyzeRelatedContentThreshold(t *testing.T) {
	related := func(slugs ...string) model.Record {
		items := make([]interface{}, 0, len(slugs))
		for _, s := range slugs {
			items = append(items, map[string]interface{}{"slug": s})
		}
		return model.Record{"related_content": items}
	}
	a := newTestContent([]model.Record{
		related("popular", "rare"),
		related("popular"),
		related("popular", "other"),
		related(),
	})

	tab, err := a.analyzeRelatedContent()
	require.NoError(t, err)

	// Every row except the trailing summary has a count > 2.
	require.NotEmpty(t, tab)
	for _, e := range tab[:len(tab)-1] {
		n, ok := e.Count()
		require.True(t, ok)
		assert.Greater(t, n, 2)
	}
	assert.Equal(t, "PER STORY", tab[len(tab)-1].Label)
}

func TestAnalyzePubDate(t *testing.T) {
	a := newTestContent([]model.Record{
		{"pub_date": "2016-01-03T10:00:00"},
		{"pub_date": "2016-01-03T11:00:00"},
		{"pub_date": "2016-01-04T00:00:00"},
	})

	tab, err := a.analyzePubDate()
	require.NoError(t, err)
	assert.Equal(t, model.Tabulation{
		{Label: "2016-01-03", Value: 2},
		{Label: "2016-01-04", Value: 1},
	}, tab)
}

func TestAnalyzeWordCountFloorsAverage(t *testing.T) {
	api := &fakeContentAPI{
		stories: []model.Record{
			{"body": "one two three"},
			{"body": "four five"},
		},
	}
	a := NewContent(api, testWindow(), zap.NewNop())
	a.records = []model.Record{{}, {}, {}, {}}

	tab, err := a.analyzeWordCount(context.Background())
	require.NoError(t, err)

	// 5 words over 4 records floors to 1.
	assert.Equal(t, model.Tabulation{{Label: "AVERAGE", Value: "1.00"}}, tab)

	avg, ok := a.summary.Get("Average word count")
	require.True(t, ok)
	assert.Equal(t, "1", avg)
	assert.Equal(t, 1, api.storiesCalls)
}

func fullRecord(contentType, pubDate string, tags ...interface{}) model.Record {
	rec := tagged(tags...)
	rec["content_type"] = contentType
	rec["pub_date"] = pubDate
	rec["authors"] = []interface{}{map[string]interface{}{"slug": "jane-doe"}}
	rec["sections"] = []interface{}{map[string]interface{}{"slug": "politics"}}
	rec["location_tags"] = []interface{}{"travis-county"}
	rec["primary_location"] = map[string]interface{}{"slug": "austin"}
	rec["tribpedia_entries"] = []interface{}{}
	rec["related_content"] = []interface{}{}
	return rec
}

func TestRowsSectionOrder(t *testing.T) {
	api := &fakeContentAPI{
		content: []model.Record{
			fullRecord("story", "2016-01-03T10:00:00", "a"),
			fullRecord("video", "2016-01-04T00:00:00", "a", "b"),
		},
		stories: []model.Record{{"body": "some words here"}},
	}
	a := NewContent(api, testWindow(), zap.NewNop())

	rows, err := a.Rows(context.Background())
	require.NoError(t, err)

	var headers []string
	for i, row := range rows {
		if len(row) == 1 && row[0] == "" {
			require.Less(t, i+1, len(rows))
			headers = append(headers, rows[i+1][0])
		}
	}
	assert.Equal(t, []string{
		"AUTHORS",
		"CONTENT TYPE",
		"LOCATION TAGS",
		"PRIMARY LOCATION",
		"PUB DATE",
		"RELATED CONTENT",
		"SECTIONS",
		"TAGS",
		"TRIBPEDIA ENTRIES",
		"WORD COUNT",
	}, headers)
}

func TestRowsEmptyWindow(t *testing.T) {
	api := &fakeContentAPI{}
	a := NewContent(api, testWindow(), zap.NewNop())

	rows, err := a.Rows(context.Background())
	require.NoError(t, err)

	// Only separators and section titles; no data rows, no fetch of
	// story bodies, no panic on division.
	assert.Len(t, rows, 20)
	assert.Zero(t, api.storiesCalls)
	assert.Zero(t, a.Summary().Len())
}

func TestRowsMissingFieldFailsFast(t *testing.T) {
	api := &fakeContentAPI{
		content: []model.Record{{"id": float64(1)}},
	}
	a := NewContent(api, testWindow(), zap.NewNop())

	_, err := a.Rows(context.Background())
	var fieldErr *FieldError
	require.True(t, errors.As(err, &fieldErr))
	assert.Contains(t, err.Error(), "authors")
}

func TestRowsPropagatesFetchError(t *testing.T) {
	api := &fakeContentAPI{contentErr: errors.New("boom")}
	a := NewContent(api, testWindow(), zap.NewNop())

	_, err := a.Rows(context.Background())
	require.Error(t, err)
}
