package analytics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-analytics/internal/model"
)

func TestFlattenFieldScalars(t *testing.T) {
	records := []model.Record{
		{"content_type": "story"},
		{"content_type": "video"},
	}

	keys, err := FlattenField(records, "content_type")
	require.NoError(t, err)
	assert.Equal(t, []string{"story", "video"}, keys)
}

func TestFlattenFieldReferencePrefersSlug(t *testing.T) {
	records := []model.Record{
		{"primary_location": map[string]interface{}{"slug": "austin", "url": "/austin/"}},
		{"primary_location": map[string]interface{}{"url": "/houston/"}},
	}

	keys, err := FlattenField(records, "primary_location")
	require.NoError(t, err)
	assert.Equal(t, []string{"austin", "/houston/"}, keys)
}

func TestFlattenFieldScalarList(t *testing.T) {
	records := []model.Record{
		{"tags": []interface{}{"a", "b"}},
		{"tags": []interface{}{}},
		{"tags": []interface{}{"c"}},
	}

	keys, err := FlattenField(records, "tags")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, keys)
}

func TestFlattenFieldReferenceList(t *testing.T) {
	records := []model.Record{
		{"authors": []interface{}{
			map[string]interface{}{"slug": "jane-doe"},
			map[string]interface{}{"url": "/staff/joe/"},
		}},
	}

	keys, err := FlattenField(records, "authors")
	require.NoError(t, err)
	assert.Equal(t, []string{"jane-doe", "/staff/joe/"}, keys)
}

// Flattening an already-flat scalar list is idempotent: running the
// output back through produces the same keys.
func TestFlattenFieldIdempotent(t *testing.T) {
	records := []model.Record{
		{"tags": []interface{}{"a", "b"}},
		{"tags": []interface{}{"c"}},
	}

	once, err := FlattenField(records, "tags")
	require.NoError(t, err)

	again := make([]model.Record, 0, len(once))
	for _, k := range once {
		again = append(again, model.Record{"tags": k})
	}
	twice, err := FlattenField(again, "tags")
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestFlattenFieldNilValue(t *testing.T) {
	records := []model.Record{
		{"primary_location": nil},
	}

	keys, err := FlattenField(records, "primary_location")
	require.NoError(t, err)
	assert.Equal(t, []string{""}, keys)
}

func TestFlattenFieldMissingFailsFast(t *testing.T) {
	records := []model.Record{
		{"tags": []interface{}{"a"}},
		{"id": float64(2)},
	}

	_, err := FlattenField(records, "tags")
	var fieldErr *FieldError
	require.True(t, errors.As(err, &fieldErr))
	assert.Equal(t, "tags", fieldErr.Field)
}
