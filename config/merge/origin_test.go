package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldOrigins(t *testing.T) {
	t.Parallel()

	entries := []SourceEntry{
		{Index: 0, FilePath: "first.json", LoaderType: "json"},
		{Index: 1, FilePath: "second.json", LoaderType: "json"},
	}

	trees := []any{
		map[string]any{"host": "first-host", "port": int64(1000)},
		map[string]any{"host": "second-host", "port": int64(2000)},
	}

	t.Run("last wins credits the last source", func(t *testing.T) {
		t.Parallel()

		origins := FieldOrigins(trees, entries, LastWins)

		assert.Equal(t, []FieldOrigin{
			{Key: "host", Value: "second-host", SourceIndex: 1, SourceFile: "second.json", SourceLoaderType: "json"},
			{Key: "port", Value: int64(2000), SourceIndex: 1, SourceFile: "second.json", SourceLoaderType: "json"},
		}, origins)
	})

	t.Run("first wins credits the first source with its value", func(t *testing.T) {
		t.Parallel()

		origins := FieldOrigins(trees, entries, FirstWins)

		assert.Equal(t, []FieldOrigin{
			{Key: "host", Value: "first-host", SourceIndex: 0, SourceFile: "first.json", SourceLoaderType: "json"},
			{Key: "port", Value: int64(1000), SourceIndex: 0, SourceFile: "first.json", SourceLoaderType: "json"},
		}, origins)
	})
}

func TestFieldOrigins_Nested(t *testing.T) {
	t.Parallel()

	entries := []SourceEntry{
		{Index: 0, FilePath: "defaults.json", LoaderType: "json"},
		{Index: 1, LoaderType: "env"},
	}

	trees := []any{
		map[string]any{"database": map[string]any{"host": "localhost", "port": int64(5432)}, "tags": []any{"a"}},
		map[string]any{"database": map[string]any{"host": "prod-host"}},
	}

	origins := FieldOrigins(trees, entries, LastWins)

	assert.Equal(t, []FieldOrigin{
		{Key: "database.host", Value: "prod-host", SourceIndex: 1, SourceLoaderType: "env"},
		{Key: "database.port", Value: int64(5432), SourceIndex: 0, SourceFile: "defaults.json", SourceLoaderType: "json"},
		{Key: "tags", Value: []any{"a"}, SourceIndex: 0, SourceFile: "defaults.json", SourceLoaderType: "json"},
	}, origins)
}

func TestFieldOrigins_SkipsNonMappingRoots(t *testing.T) {
	t.Parallel()

	origins := FieldOrigins([]any{[]any{int64(1)}, map[string]any{"a": true}}, []SourceEntry{
		{Index: 0, LoaderType: "json"},
		{Index: 1, LoaderType: "yaml"},
	}, LastWins)

	assert.Equal(t, []FieldOrigin{{Key: "a", Value: true, SourceIndex: 1, SourceLoaderType: "yaml"}}, origins)
}
